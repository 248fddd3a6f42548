package service

import (
	"context"
	"time"

	"github.com/fintrack/fintrack-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Budget Reconciliation
// ============================================================

// GetBudgetProgress reconciles the stored budget for a month against the
// expense transactions actually recorded in that month. The month defaults
// to the current one and is pinned to its first day. A missing budget is a
// nil result, not an error; new users commonly have no budget yet.
//
// The stored per-category spent snapshots are ignored; spend is always
// recomputed from live transactions.
func (s *AnalyticsService) GetBudgetProgress(ctx context.Context, userID string, month *time.Time) (*domain.BudgetProgress, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.GetBudgetProgress")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("budget_progress", time.Since(start))
	}()

	target := time.Now()
	if month != nil {
		target = *month
	}

	budget, err := s.store.GetBudget(ctx, userID, monthStart(target))
	if err != nil {
		s.metrics.IncrStoreError("ledger")
		s.metrics.IncrRequest("error")
		return nil, err
	}
	if budget == nil {
		s.metrics.IncrRequest("success")
		return nil, nil
	}

	progress, err := s.reconcile(ctx, budget)
	if err != nil {
		s.metrics.IncrRequest("error")
		return nil, err
	}
	s.metrics.IncrRequest("success")
	return progress, nil
}

// GetCurrentBudget reconciles the most recent budget dated at or before the
// current month. When the exact month has no budget this falls back to the
// latest prior one, reconciled against that budget's own month window —
// not the caller's current month. Nil when the user has no budget at all.
func (s *AnalyticsService) GetCurrentBudget(ctx context.Context, userID string) (*domain.BudgetProgress, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.GetCurrentBudget")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("current_budget", time.Since(start))
	}()

	budget, err := s.store.FindLatestBudgetAtOrBefore(ctx, userID, monthStart(time.Now()))
	if err != nil {
		s.metrics.IncrStoreError("ledger")
		s.metrics.IncrRequest("error")
		return nil, err
	}
	if budget == nil {
		s.metrics.IncrRequest("success")
		return nil, nil
	}

	progress, err := s.reconcile(ctx, budget)
	if err != nil {
		s.metrics.IncrRequest("error")
		return nil, err
	}
	s.metrics.IncrRequest("success")
	return progress, nil
}

// reconcile joins a budget's allocations against actual expense spend in
// the budget's own month. Categories with spend but no allocation are
// excluded from the report; totals derive only from allocated categories.
func (s *AnalyticsService) reconcile(ctx context.Context, budget *domain.Budget) (*domain.BudgetProgress, error) {
	from := monthStart(budget.Month)
	to := monthEnd(budget.Month)
	filter := domain.TransactionFilter{Type: domain.TypeExpense, DateFrom: &from, DateTo: &to}

	sums, err := s.aggregate(ctx, budget.UserID, filter, domain.GroupByCategory)
	if err != nil {
		return nil, err
	}

	spendByCategory := make(map[string]float64, len(sums))
	for _, gs := range sums {
		spendByCategory[gs.Key] = gs.Sum
	}

	progress := &domain.BudgetProgress{
		Month:       from.Format("2006-01"),
		TotalBudget: budget.TotalBudget,
		Currency:    budget.Currency,
		Categories:  make([]domain.CategoryProgress, 0, len(budget.CategoryBudgets)),
	}

	for _, cb := range budget.CategoryBudgets {
		spent := spendByCategory[cb.Category]
		progress.Categories = append(progress.Categories, domain.CategoryProgress{
			Category:   cb.Category,
			Budget:     cb.Budget,
			Spent:      spent,
			Remaining:  cb.Budget - spent,
			Percentage: pct(spent, cb.Budget),
			Overspent:  spent > cb.Budget,
		})
		progress.TotalSpent += spent
	}

	progress.TotalRemaining = progress.TotalBudget - progress.TotalSpent
	progress.TotalPercentage = pct(progress.TotalSpent, progress.TotalBudget)
	progress.Overspent = progress.TotalSpent > progress.TotalBudget

	return progress, nil
}
