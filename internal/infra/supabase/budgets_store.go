package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fintrack/fintrack-go/internal/domain"
)

// ============================================================
// Budgets — implements port.BudgetStore
// ============================================================

// budgetRow maps the Supabase budgets table. The month column is a plain
// SQL date pinned to the first of the month; category_budgets is jsonb.
type budgetRow struct {
	ID              string                  `json:"id,omitempty"`
	UserID          string                  `json:"user_id"`
	Month           string                  `json:"month"`
	TotalBudget     float64                 `json:"total_budget"`
	CategoryBudgets []domain.CategoryBudget `json:"category_budgets"`
	Currency        string                  `json:"currency,omitempty"`
}

func (r budgetRow) toDomain() domain.Budget {
	month, _ := time.Parse(dateLayout, r.Month)
	return domain.Budget{
		ID:              r.ID,
		UserID:          r.UserID,
		Month:           month,
		TotalBudget:     r.TotalBudget,
		CategoryBudgets: r.CategoryBudgets,
		Currency:        r.Currency,
	}
}

func budgetToRow(b *domain.Budget) budgetRow {
	return budgetRow{
		ID:              b.ID,
		UserID:          b.UserID,
		Month:           b.Month.Format(dateLayout),
		TotalBudget:     b.TotalBudget,
		CategoryBudgets: b.CategoryBudgets,
		Currency:        b.Currency,
	}
}

// decodeBudgets parses a PostgREST response into budgets, mapping an empty
// result to nil without error — an absent budget is a valid state.
func decodeBudgets(body []byte) ([]domain.Budget, error) {
	if body == nil || string(body) == "[]" {
		return nil, nil
	}
	var rows []budgetRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode budgets: %w", err)
	}
	budgets := make([]domain.Budget, 0, len(rows))
	for _, r := range rows {
		budgets = append(budgets, r.toDomain())
	}
	return budgets, nil
}

// GetBudget returns the budget for an exact (user, month) pair, or
// (nil, nil) when none exists.
func (c *Client) GetBudget(ctx context.Context, userID string, month time.Time) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetBudget")
	defer span.End()

	path := fmt.Sprintf("budgets?user_id=eq.%s&month=eq.%s&limit=1", userID, month.Format(dateLayout))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	budgets, err := decodeBudgets(body)
	if err != nil || len(budgets) == 0 {
		return nil, err
	}
	return &budgets[0], nil
}

// FindLatestBudgetAtOrBefore returns the most recent budget whose month is
// at or before the given month, or (nil, nil) when the user has none.
func (c *Client) FindLatestBudgetAtOrBefore(ctx context.Context, userID string, month time.Time) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FindLatestBudgetAtOrBefore")
	defer span.End()

	path := fmt.Sprintf("budgets?user_id=eq.%s&month=lte.%s&order=month.desc&limit=1", userID, month.Format(dateLayout))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	budgets, err := decodeBudgets(body)
	if err != nil || len(budgets) == 0 {
		return nil, err
	}
	return &budgets[0], nil
}

func (c *Client) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBudgets")
	defer span.End()

	path := fmt.Sprintf("budgets?user_id=eq.%s&order=month.desc", userID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	budgets, err := decodeBudgets(body)
	if err != nil {
		return nil, err
	}
	if budgets == nil {
		budgets = []domain.Budget{}
	}
	return budgets, nil
}

func (c *Client) CreateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateBudget")
	defer span.End()

	body, err := c.doPost(ctx, "budgets", budgetToRow(budget))
	if err != nil {
		return nil, err
	}

	budgets, err := decodeBudgets(body)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return nil, fmt.Errorf("decode created budget: empty response")
	}
	return &budgets[0], nil
}

func (c *Client) UpdateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateBudget")
	defer span.End()

	path := fmt.Sprintf("budgets?id=eq.%s&user_id=eq.%s", budget.ID, budget.UserID)
	updates := map[string]any{
		"total_budget":     budget.TotalBudget,
		"category_budgets": budget.CategoryBudgets,
		"currency":         budget.Currency,
	}

	body, err := c.doPatch(ctx, path, updates)
	if err != nil {
		return nil, err
	}

	budgets, err := decodeBudgets(body)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return nil, &domain.ErrNotFound{Resource: "budget", ID: budget.ID}
	}
	return &budgets[0], nil
}

func (c *Client) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteBudget")
	defer span.End()

	path := fmt.Sprintf("budgets?id=eq.%s&user_id=eq.%s", budgetID, userID)
	return c.doDelete(ctx, path)
}
