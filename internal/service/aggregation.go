// Package service provides the business logic layer (use cases).
// AnalyticsService is the read-only analytics and budget-reconciliation
// engine; LedgerService and AuthService cover the write paths.
package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fintrack/fintrack-go/internal/domain"
	"github.com/fintrack/fintrack-go/internal/infra/observability"
	"github.com/fintrack/fintrack-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var analyticsTracer = otel.Tracer("service/analytics")

// AnalyticsService turns the raw transaction ledger into time-bucketed
// summaries, category breakdowns, trend series, and budget-vs-actual
// reports. It is stateless and never writes: every call recomputes from
// the store, so identical inputs with no intervening writes yield
// identical results.
type AnalyticsService struct {
	store    port.LedgerStore
	catCache port.Cache[[]domain.Category]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAnalyticsService creates the analytics service with all dependencies injected.
func NewAnalyticsService(
	store port.LedgerStore,
	catCache port.Cache[[]domain.Category],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		store:    store,
		catCache: catCache,
		metrics:  metrics,
		logger:   logger,
	}
}

// aggregate fetches the user's transactions matching the filter and folds
// them into grouped sums. Amounts are summed as abs(amount) regardless of
// stored sign; some write paths may not normalize, and direction comes
// from the type field, never from the numeric sign.
//
// Ordering: chronological ascending for time buckets, descending sum for
// category grouping (spending breakdowns and top-category views), key
// ascending otherwise.
func (s *AnalyticsService) aggregate(ctx context.Context, userID string, filter domain.TransactionFilter, groupBy domain.GroupBy) ([]domain.GroupedSum, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.aggregate")
	defer span.End()

	txns, err := s.store.ListTransactions(ctx, userID, filter)
	if err != nil {
		s.metrics.IncrStoreError("ledger")
		return nil, err
	}

	sums := make(map[string]float64)
	for _, tx := range txns {
		sums[bucketKey(tx, groupBy)] += math.Abs(tx.Amount)
	}

	result := make([]domain.GroupedSum, 0, len(sums))
	for key, sum := range sums {
		result = append(result, domain.GroupedSum{Key: key, Sum: sum})
	}

	if groupBy == domain.GroupByCategory {
		sort.Slice(result, func(i, j int) bool {
			if result[i].Sum != result[j].Sum {
				return result[i].Sum > result[j].Sum
			}
			return result[i].Key < result[j].Key
		})
	} else {
		// Bucket keys are zero-padded, so lexicographic order is
		// chronological for year, year-month and year-week keys.
		sort.Slice(result, func(i, j int) bool {
			return result[i].Key < result[j].Key
		})
	}

	return result, nil
}

// bucketKey derives the grouping key from a transaction's date field
// (not created_at). Weeks use ISO 8601 numbering.
func bucketKey(tx domain.Transaction, groupBy domain.GroupBy) string {
	switch groupBy {
	case domain.GroupByType:
		return tx.Type
	case domain.GroupByCategory:
		return tx.Category
	case domain.GroupByYear:
		return tx.Date.Format("2006")
	case domain.GroupByMonth:
		return tx.Date.Format("2006-01")
	case domain.GroupByWeek:
		year, week := tx.Date.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return ""
	}
}

// monthStart pins t to midnight on the first day of its calendar month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// monthEnd returns the last day of t's calendar month.
func monthEnd(t time.Time) time.Time {
	return monthStart(t).AddDate(0, 1, -1)
}

// pct divides safely, defaulting to 0 on a zero denominator. Percentages
// and savings rates never produce NaN or errors.
func pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
