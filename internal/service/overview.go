package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fintrack/fintrack-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ============================================================
// Financial Overview
// ============================================================

// TopCategoryLimit caps the overview's category breakdown.
const TopCategoryLimit = 5

// GetFinancialOverview composes the dashboard payload from three
// independent read queries (current-month totals, year-to-date totals
// and the month's top expense categories) run concurrently and joined
// before composition. Any sub-query failure fails the whole call; partial
// overviews are never returned.
func (s *AnalyticsService) GetFinancialOverview(ctx context.Context, userID string) (*domain.FinancialOverview, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.GetFinancialOverview")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("financial_overview", time.Since(start))
	}()

	now := time.Now()
	mStart := monthStart(now)
	mEnd := monthEnd(now)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	var (
		monthly       domain.PeriodTotals
		yearly        domain.PeriodTotals
		topCategories []domain.CategorySpending
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		totals, err := s.totalsByType(gCtx, userID, mStart, mEnd)
		if err != nil {
			return fmt.Errorf("monthly totals: %w", err)
		}
		monthly = totals
		return nil
	})

	g.Go(func() error {
		totals, err := s.totalsByType(gCtx, userID, yearStart, mEnd)
		if err != nil {
			return fmt.Errorf("yearly totals: %w", err)
		}
		yearly = totals
		return nil
	})

	g.Go(func() error {
		spending, err := s.GetCategorySpending(gCtx, userID, &mStart, &mEnd)
		if err != nil {
			return fmt.Errorf("top categories: %w", err)
		}
		if len(spending) > TopCategoryLimit {
			spending = spending[:TopCategoryLimit]
		}
		topCategories = spending
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("financial overview failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		s.metrics.IncrRequest("error")
		return nil, err
	}

	s.metrics.IncrRequest("success")
	return &domain.FinancialOverview{
		Monthly:       monthly,
		Yearly:        yearly,
		TopCategories: topCategories,
	}, nil
}

// totalsByType aggregates income vs expenses over an inclusive window.
func (s *AnalyticsService) totalsByType(ctx context.Context, userID string, from, to time.Time) (domain.PeriodTotals, error) {
	filter := domain.TransactionFilter{DateFrom: &from, DateTo: &to}
	sums, err := s.aggregate(ctx, userID, filter, domain.GroupByType)
	if err != nil {
		return domain.PeriodTotals{}, err
	}

	var totals domain.PeriodTotals
	for _, gs := range sums {
		switch gs.Key {
		case domain.TypeIncome:
			totals.Income = gs.Sum
		case domain.TypeExpense:
			totals.Expenses = gs.Sum
		}
	}
	totals.Net = totals.Income - totals.Expenses
	totals.SavingsRate = pct(totals.Net, totals.Income)
	return totals, nil
}
