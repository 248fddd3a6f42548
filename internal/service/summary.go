package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fintrack/fintrack-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Monthly Summary
// ============================================================

// DefaultSummaryMonths is the lookback used when the caller does not
// specify one.
const DefaultSummaryMonths = 6

// GetMonthlySummary reports income, expenses and net per calendar month
// over the trailing monthsBack months. Months with no activity are
// omitted, never zero-filled; chart consumers must tolerate gaps.
func (s *AnalyticsService) GetMonthlySummary(ctx context.Context, userID string, monthsBack int) ([]domain.MonthlySummary, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.GetMonthlySummary")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.Int("months", monthsBack))

	if monthsBack <= 0 {
		return nil, &domain.ErrValidation{Field: "months", Message: "must be a positive integer"}
	}

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("monthly_summary", time.Since(start))
	}()

	now := time.Now()
	from := now.AddDate(0, -monthsBack, 0)
	filter := domain.TransactionFilter{DateFrom: &from, DateTo: &now}

	txns, err := s.store.ListTransactions(ctx, userID, filter)
	if err != nil {
		s.metrics.IncrStoreError("ledger")
		s.metrics.IncrRequest("error")
		return nil, err
	}

	// One pass, bucketing by month and type.
	type bucket struct {
		income   float64
		expenses float64
	}
	months := make(map[string]bucket)
	for _, tx := range txns {
		key := tx.Date.Format("2006-01")
		b := months[key]
		if tx.Type == domain.TypeIncome {
			b.income += math.Abs(tx.Amount)
		} else {
			b.expenses += math.Abs(tx.Amount)
		}
		months[key] = b
	}

	summaries := make([]domain.MonthlySummary, 0, len(months))
	for key, b := range months {
		summaries = append(summaries, domain.MonthlySummary{
			Month:    key,
			Income:   b.income,
			Expenses: b.expenses,
			Net:      b.income - b.expenses,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Month < summaries[j].Month
	})

	s.metrics.IncrRequest("success")
	return summaries, nil
}

// ============================================================
// Category Spending
// ============================================================

// GetCategorySpending breaks expense spending down by category over an
// optional inclusive date range, sorted by descending amount. Each row
// carries the category's share of the total and, when the category name
// still matches a stored category, its display color and icon.
func (s *AnalyticsService) GetCategorySpending(ctx context.Context, userID string, from, to *time.Time) ([]domain.CategorySpending, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.GetCategorySpending")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("category_spending", time.Since(start))
	}()

	filter := domain.TransactionFilter{Type: domain.TypeExpense, DateFrom: from, DateTo: to}
	sums, err := s.aggregate(ctx, userID, filter, domain.GroupByCategory)
	if err != nil {
		s.metrics.IncrRequest("error")
		return nil, err
	}

	var total float64
	for _, gs := range sums {
		total += gs.Sum
	}

	lookup, err := s.categoryLookup(ctx, userID)
	if err != nil {
		s.metrics.IncrRequest("error")
		return nil, err
	}

	spending := make([]domain.CategorySpending, 0, len(sums))
	for _, gs := range sums {
		row := domain.CategorySpending{
			Category:   gs.Key,
			Amount:     gs.Sum,
			Percentage: pct(gs.Sum, total),
		}
		// Renamed or deleted categories simply get no color/icon.
		if cat, ok := lookup[gs.Key]; ok {
			row.Color = cat.Color
			row.Icon = cat.Icon
		}
		spending = append(spending, row)
	}

	s.metrics.IncrRequest("success")
	return spending, nil
}

// categoryLookup returns the user's categories keyed by name, behind a
// short-lived cache. Category writes invalidate the key, so analytics
// stay idempotent between writes.
func (s *AnalyticsService) categoryLookup(ctx context.Context, userID string) (map[string]domain.Category, error) {
	cacheKey := categoriesCacheKey(userID)

	cats, ok := s.catCache.Get(cacheKey)
	if ok {
		s.metrics.IncrCacheHit("categories")
	} else {
		s.metrics.IncrCacheMiss("categories")
		var err error
		cats, err = s.store.ListCategories(ctx, userID)
		if err != nil {
			s.metrics.IncrStoreError("ledger")
			return nil, err
		}
		s.catCache.Set(cacheKey, cats)
	}

	lookup := make(map[string]domain.Category, len(cats))
	for _, cat := range cats {
		lookup[cat.Name] = cat
	}
	return lookup, nil
}

func categoriesCacheKey(userID string) string {
	return fmt.Sprintf("categories:%s", userID)
}

// ============================================================
// Spending Trends
// ============================================================

// GetSpendingTrends reports expense totals bucketed by the requested
// period over the trailing twelve months. The lookback window is fixed
// at one year for every period value — weekly trend consumers get a
// year of weekly buckets, matching the historical chart contract.
// Labels: "2006" for year, "2006-01" for month, "2006-W02" for week
// (ISO 8601 week numbering, consistent with the bucketing itself).
func (s *AnalyticsService) GetSpendingTrends(ctx context.Context, userID, period string) ([]domain.SpendingTrend, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.GetSpendingTrends")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("period", period))

	var groupBy domain.GroupBy
	switch period {
	case domain.PeriodWeek:
		groupBy = domain.GroupByWeek
	case domain.PeriodMonth:
		groupBy = domain.GroupByMonth
	case domain.PeriodYear:
		groupBy = domain.GroupByYear
	default:
		// Fail fast rather than silently defaulting: a typo in the
		// period would otherwise be masked by plausible-looking data.
		return nil, &domain.ErrValidation{Field: "period", Message: "must be one of week, month, year"}
	}

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("spending_trends", time.Since(start))
	}()

	now := time.Now()
	from := now.AddDate(-1, 0, 0)
	filter := domain.TransactionFilter{Type: domain.TypeExpense, DateFrom: &from, DateTo: &now}

	sums, err := s.aggregate(ctx, userID, filter, groupBy)
	if err != nil {
		s.metrics.IncrRequest("error")
		return nil, err
	}

	trends := make([]domain.SpendingTrend, 0, len(sums))
	for i, gs := range sums {
		change := float64(0)
		if i > 0 {
			change = pct(gs.Sum-sums[i-1].Sum, sums[i-1].Sum)
		}
		trends = append(trends, domain.SpendingTrend{
			Period: gs.Key,
			Amount: gs.Sum,
			Change: change,
		})
	}

	s.metrics.IncrRequest("success")
	s.logger.Debug("spending trends computed",
		zap.String("user_id", userID),
		zap.String("period", period),
		zap.Int("points", len(trends)),
	)
	return trends, nil
}
