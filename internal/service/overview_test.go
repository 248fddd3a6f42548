package service_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/fintrack/fintrack-go/internal/domain"
)

func TestGetFinancialOverview_ComposesAllSections(t *testing.T) {
	now := time.Now()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "tx-1", UserID: "u1", Date: thisMonth, Category: "Salary", Amount: 1000, Type: "income"},
			{ID: "tx-2", UserID: "u1", Date: thisMonth, Category: "Food", Amount: 400, Type: "expense"},
			{ID: "tx-3", UserID: "u1", Date: thisMonth, Category: "Transport", Amount: 100, Type: "expense"},
		},
	}
	svc := newAnalytics(store)

	overview, err := svc.GetFinancialOverview(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if overview.Monthly.Income != 1000 || overview.Monthly.Expenses != 500 {
		t.Errorf("expected monthly income=1000 expenses=500, got %+v", overview.Monthly)
	}
	if overview.Monthly.Net != 500 {
		t.Errorf("expected monthly net=500, got %v", overview.Monthly.Net)
	}
	if !almostEqual(overview.Monthly.SavingsRate, 50) {
		t.Errorf("expected savings rate 50, got %v", overview.Monthly.SavingsRate)
	}

	// Everything this year is in this month, so yearly matches monthly.
	if overview.Yearly.Income != 1000 || overview.Yearly.Expenses != 500 {
		t.Errorf("expected yearly income=1000 expenses=500, got %+v", overview.Yearly)
	}

	if len(overview.TopCategories) != 2 {
		t.Fatalf("expected 2 top categories, got %d", len(overview.TopCategories))
	}
	if overview.TopCategories[0].Category != "Food" {
		t.Errorf("expected Food as top category, got %s", overview.TopCategories[0].Category)
	}
}

func TestGetFinancialOverview_ZeroIncomeSavingsRate(t *testing.T) {
	now := time.Now()
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "tx-1", UserID: "u1", Date: now, Category: "Food", Amount: 200, Type: "expense"},
		},
	}
	svc := newAnalytics(store)

	overview, err := svc.GetFinancialOverview(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if overview.Monthly.SavingsRate != 0 {
		t.Errorf("expected savings rate 0 with no income, got %v", overview.Monthly.SavingsRate)
	}
}

func TestGetFinancialOverview_TopCategoriesCapped(t *testing.T) {
	now := time.Now()
	store := &mockStore{}
	for i := 0; i < 8; i++ {
		store.transactions = append(store.transactions, domain.Transaction{
			ID:       fmt.Sprintf("tx-%d", i),
			UserID:   "u1",
			Date:     now,
			Category: fmt.Sprintf("Category %d", i),
			Amount:   float64(10 + i),
			Type:     "expense",
		})
	}
	svc := newAnalytics(store)

	overview, err := svc.GetFinancialOverview(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(overview.TopCategories) != 5 {
		t.Fatalf("expected top categories capped at 5, got %d", len(overview.TopCategories))
	}
	// Highest spender first.
	if overview.TopCategories[0].Amount != 17 {
		t.Errorf("expected top amount 17, got %v", overview.TopCategories[0].Amount)
	}
}

func TestGetFinancialOverview_FailsWhole(t *testing.T) {
	svc := newAnalytics(&mockStore{err: errors.New("store down")})

	overview, err := svc.GetFinancialOverview(context.Background(), "u1")
	if err == nil {
		t.Fatal("expected failure when a sub-query fails")
	}
	if overview != nil {
		t.Fatalf("expected no partial overview, got %+v", overview)
	}
}

func TestAnalytics_Idempotent(t *testing.T) {
	now := time.Now()
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "tx-1", UserID: "u1", Date: now, Category: "Salary", Amount: 900, Type: "income"},
			{ID: "tx-2", UserID: "u1", Date: now, Category: "Food", Amount: 300, Type: "expense"},
		},
	}
	svc := newAnalytics(store)

	first, err := svc.GetFinancialOverview(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.GetFinancialOverview(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results for identical inputs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
