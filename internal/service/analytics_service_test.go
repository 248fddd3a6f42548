package service_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/fintrack/fintrack-go/internal/domain"
	"github.com/fintrack/fintrack-go/internal/infra/cache"
	"github.com/fintrack/fintrack-go/internal/infra/observability"
	"github.com/fintrack/fintrack-go/internal/service"

	"go.uber.org/zap"
)

func newAnalytics(store *mockStore) *service.AnalyticsService {
	return service.NewAnalyticsService(
		store,
		cache.New[[]domain.Category](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

// --- Monthly summary ---

func TestGetMonthlySummary_SingleMonth(t *testing.T) {
	now := time.Now()
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "tx-1", UserID: "u1", Date: now, Category: "Salary", Amount: 300, Type: "income"},
			{ID: "tx-2", UserID: "u1", Date: now, Category: "Food", Amount: 100, Type: "expense"},
		},
	}
	svc := newAnalytics(store)

	summaries, err := svc.GetMonthlySummary(context.Background(), "u1", 6)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(summaries))
	}

	s := summaries[0]
	if s.Month != now.Format("2006-01") {
		t.Errorf("expected month %s, got %s", now.Format("2006-01"), s.Month)
	}
	if s.Income != 300 || s.Expenses != 100 || s.Net != 200 {
		t.Errorf("expected income=300 expenses=100 net=200, got %+v", s)
	}
}

func TestGetMonthlySummary_AbsoluteAmounts(t *testing.T) {
	// A write path that stored a negative expense amount must still
	// contribute its magnitude to the expense total.
	now := time.Now()
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "tx-1", UserID: "u1", Date: now, Category: "Food", Amount: -50, Type: "expense"},
		},
	}
	svc := newAnalytics(store)

	summaries, err := svc.GetMonthlySummary(context.Background(), "u1", 6)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(summaries) != 1 || summaries[0].Expenses != 50 {
		t.Fatalf("expected expenses=50, got %+v", summaries)
	}
}

func TestGetMonthlySummary_OmitsEmptyMonths(t *testing.T) {
	now := time.Now()
	twoMonthsAgo := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -2, 0)
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "tx-1", UserID: "u1", Date: now, Category: "Food", Amount: 10, Type: "expense"},
			{ID: "tx-2", UserID: "u1", Date: twoMonthsAgo, Category: "Food", Amount: 20, Type: "expense"},
		},
	}
	svc := newAnalytics(store)

	summaries, err := svc.GetMonthlySummary(context.Background(), "u1", 6)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// The month in between has no activity and is not synthesized.
	if len(summaries) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(summaries))
	}
	if summaries[0].Month >= summaries[1].Month {
		t.Errorf("expected chronological order, got %s then %s", summaries[0].Month, summaries[1].Month)
	}
}

func TestGetMonthlySummary_RejectsNonPositiveMonths(t *testing.T) {
	svc := newAnalytics(&mockStore{})

	_, err := svc.GetMonthlySummary(context.Background(), "u1", 0)
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetMonthlySummary_PropagatesStoreFailure(t *testing.T) {
	svc := newAnalytics(&mockStore{err: errors.New("store down")})

	_, err := svc.GetMonthlySummary(context.Background(), "u1", 6)
	if err == nil {
		t.Fatal("expected store error to propagate")
	}
}

// --- Category spending ---

func TestGetCategorySpending_PercentagesAndEnrichment(t *testing.T) {
	now := time.Now()
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "tx-1", UserID: "u1", Date: now, Category: "Food", Amount: 75, Type: "expense"},
			{ID: "tx-2", UserID: "u1", Date: now, Category: "Transport", Amount: 25, Type: "expense"},
			{ID: "tx-3", UserID: "u1", Date: now, Category: "Salary", Amount: 500, Type: "income"},
		},
		categories: []domain.Category{
			{ID: "c-1", UserID: "u1", Name: "Food", Color: "#ff6b6b", Icon: "utensils", Type: "expense"},
		},
	}
	svc := newAnalytics(store)

	spending, err := svc.GetCategorySpending(context.Background(), "u1", nil, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(spending) != 2 {
		t.Fatalf("expected 2 categories (income excluded), got %d", len(spending))
	}

	// Sorted by descending amount.
	if spending[0].Category != "Food" || spending[1].Category != "Transport" {
		t.Errorf("expected Food then Transport, got %s then %s", spending[0].Category, spending[1].Category)
	}
	if !almostEqual(spending[0].Percentage, 75) || !almostEqual(spending[1].Percentage, 25) {
		t.Errorf("expected 75%% / 25%%, got %v / %v", spending[0].Percentage, spending[1].Percentage)
	}

	var totalPct float64
	for _, row := range spending {
		totalPct += row.Percentage
	}
	if !almostEqual(totalPct, 100) {
		t.Errorf("expected percentages to sum to 100, got %v", totalPct)
	}

	// Name-keyed enrichment: Food matches a stored category, Transport
	// does not (renamed or deleted) and keeps empty display fields.
	if spending[0].Color != "#ff6b6b" || spending[0].Icon != "utensils" {
		t.Errorf("expected Food enriched, got %+v", spending[0])
	}
	if spending[1].Color != "" || spending[1].Icon != "" {
		t.Errorf("expected Transport unenriched, got %+v", spending[1])
	}
}

func TestGetCategorySpending_EmptyWhenNoExpenses(t *testing.T) {
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "tx-1", UserID: "u1", Date: time.Now(), Category: "Salary", Amount: 500, Type: "income"},
		},
	}
	svc := newAnalytics(store)

	spending, err := svc.GetCategorySpending(context.Background(), "u1", nil, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(spending) != 0 {
		t.Fatalf("expected empty breakdown, got %d rows", len(spending))
	}
}

// --- Spending trends ---

func TestGetSpendingTrends_MonthlyChange(t *testing.T) {
	now := time.Now()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := thisMonth.AddDate(0, -1, 0)
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "tx-1", UserID: "u1", Date: lastMonth, Category: "Food", Amount: 100, Type: "expense"},
			{ID: "tx-2", UserID: "u1", Date: thisMonth, Category: "Food", Amount: 150, Type: "expense"},
		},
	}
	svc := newAnalytics(store)

	trends, err := svc.GetSpendingTrends(context.Background(), "u1", "month")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(trends) != 2 {
		t.Fatalf("expected 2 points, got %d", len(trends))
	}
	if trends[0].Change != 0 {
		t.Errorf("expected first point change=0, got %v", trends[0].Change)
	}
	if !almostEqual(trends[1].Change, 50) {
		t.Errorf("expected second point change=50, got %v", trends[1].Change)
	}
}

func TestGetSpendingTrends_WeekLabels(t *testing.T) {
	now := time.Now()
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "tx-1", UserID: "u1", Date: now, Category: "Food", Amount: 40, Type: "expense"},
		},
	}
	svc := newAnalytics(store)

	trends, err := svc.GetSpendingTrends(context.Background(), "u1", "week")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(trends) != 1 {
		t.Fatalf("expected 1 point, got %d", len(trends))
	}

	year, week := now.ISOWeek()
	expected := fmt.Sprintf("%d-W%02d", year, week)
	if trends[0].Period != expected {
		t.Errorf("expected label %s, got %s", expected, trends[0].Period)
	}
}

func TestGetSpendingTrends_RejectsUnknownPeriod(t *testing.T) {
	svc := newAnalytics(&mockStore{})

	_, err := svc.GetSpendingTrends(context.Background(), "u1", "quarter")
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error for unknown period, got %v", err)
	}
}
