package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fintrack/fintrack-go/internal/domain"
)

// ============================================================
// Categories — implements port.CategoryStore
// ============================================================

type categoryRow struct {
	ID        string  `json:"id,omitempty"`
	UserID    string  `json:"user_id"`
	Name      string  `json:"name"`
	Icon      string  `json:"icon,omitempty"`
	Color     string  `json:"color,omitempty"`
	Type      string  `json:"type"`
	Budget    float64 `json:"budget,omitempty"`
	IsDefault bool    `json:"is_default"`
}

func (r categoryRow) toDomain() domain.Category {
	return domain.Category(r)
}

func (c *Client) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCategories")
	defer span.End()

	path := fmt.Sprintf("categories?user_id=eq.%s&order=name.asc", userID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Category{}, nil
	}

	var rows []categoryRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	cats := make([]domain.Category, 0, len(rows))
	for _, r := range rows {
		cats = append(cats, r.toDomain())
	}
	return cats, nil
}

func (c *Client) GetCategory(ctx context.Context, userID, categoryID string) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCategory")
	defer span.End()

	path := fmt.Sprintf("categories?id=eq.%s&user_id=eq.%s&limit=1", categoryID, userID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}

	var rows []categoryRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode category: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}

	cat := rows[0].toDomain()
	return &cat, nil
}

func (c *Client) CreateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCategory")
	defer span.End()

	body, err := c.doPost(ctx, "categories", categoryRow(*cat))
	if err != nil {
		return nil, err
	}

	var rows []categoryRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil, fmt.Errorf("decode created category: %w", err)
	}

	created := rows[0].toDomain()
	return &created, nil
}

func (c *Client) UpdateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCategory")
	defer span.End()

	path := fmt.Sprintf("categories?id=eq.%s&user_id=eq.%s", cat.ID, cat.UserID)
	updates := map[string]any{
		"name":   cat.Name,
		"icon":   cat.Icon,
		"color":  cat.Color,
		"type":   cat.Type,
		"budget": cat.Budget,
	}

	body, err := c.doPatch(ctx, path, updates)
	if err != nil {
		return nil, err
	}

	var rows []categoryRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode updated category: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "category", ID: cat.ID}
	}

	updated := rows[0].toDomain()
	return &updated, nil
}

func (c *Client) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteCategory")
	defer span.End()

	path := fmt.Sprintf("categories?id=eq.%s&user_id=eq.%s", categoryID, userID)
	return c.doDelete(ctx, path)
}
