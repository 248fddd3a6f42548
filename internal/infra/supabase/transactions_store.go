package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fintrack/fintrack-go/internal/domain"
)

// ============================================================
// Transactions — implements port.TransactionStore
// ============================================================

const dateLayout = "2006-01-02"

// transactionRow maps the Supabase transactions table to our domain.
// The date column is a plain SQL date, so it round-trips as YYYY-MM-DD.
type transactionRow struct {
	ID                 string   `json:"id,omitempty"`
	UserID             string   `json:"user_id"`
	Date               string   `json:"date"`
	Category           string   `json:"category"`
	Description        string   `json:"description,omitempty"`
	Amount             float64  `json:"amount"`
	Type               string   `json:"type"`
	PaymentMethod      string   `json:"payment_method,omitempty"`
	Tags               []string `json:"tags,omitempty"`
	Recurring          bool     `json:"recurring,omitempty"`
	RecurringFrequency string   `json:"recurring_frequency,omitempty"`
	Notes              string   `json:"notes,omitempty"`
	CreatedAt          string   `json:"created_at,omitempty"`
}

func (r transactionRow) toDomain() domain.Transaction {
	date, _ := time.Parse(dateLayout, r.Date)
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return domain.Transaction{
		ID:                 r.ID,
		UserID:             r.UserID,
		Date:               date,
		Category:           r.Category,
		Description:        r.Description,
		Amount:             r.Amount,
		Type:               r.Type,
		PaymentMethod:      r.PaymentMethod,
		Tags:               r.Tags,
		Recurring:          r.Recurring,
		RecurringFrequency: r.RecurringFrequency,
		Notes:              r.Notes,
		CreatedAt:          created,
	}
}

func transactionToRow(tx *domain.Transaction) transactionRow {
	return transactionRow{
		ID:                 tx.ID,
		UserID:             tx.UserID,
		Date:               tx.Date.Format(dateLayout),
		Category:           tx.Category,
		Description:        tx.Description,
		Amount:             tx.Amount,
		Type:               tx.Type,
		PaymentMethod:      tx.PaymentMethod,
		Tags:               tx.Tags,
		Recurring:          tx.Recurring,
		RecurringFrequency: tx.RecurringFrequency,
		Notes:              tx.Notes,
	}
}

// ListTransactions returns the user's transactions matching the filter,
// ordered by date ascending. Date bounds are inclusive on both ends.
func (c *Client) ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()

	path := fmt.Sprintf("transactions?user_id=eq.%s&order=date.asc", userID)
	if filter.Type != "" {
		path += "&type=eq." + url.QueryEscape(filter.Type)
	}
	if filter.Category != "" {
		path += "&category=eq." + url.QueryEscape(filter.Category)
	}
	if filter.DateFrom != nil {
		path += "&date=gte." + filter.DateFrom.Format(dateLayout)
	}
	if filter.DateTo != nil {
		path += "&date=lte." + filter.DateTo.Format(dateLayout)
	}

	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Transaction{}, nil
	}

	var rows []transactionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	txns := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		txns = append(txns, r.toDomain())
	}
	return txns, nil
}

func (c *Client) GetTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTransaction")
	defer span.End()

	path := fmt.Sprintf("transactions?id=eq.%s&user_id=eq.%s&limit=1", transactionID, userID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}

	var rows []transactionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}

	tx := rows[0].toDomain()
	return &tx, nil
}

func (c *Client) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransaction")
	defer span.End()

	body, err := c.doPost(ctx, "transactions", transactionToRow(tx))
	if err != nil {
		return nil, err
	}

	var rows []transactionRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil, fmt.Errorf("decode created transaction: %w", err)
	}

	created := rows[0].toDomain()
	return &created, nil
}

// UpdateTransaction patches every mutable field. user_id is never part of
// the patch — ownership is immutable once created.
func (c *Client) UpdateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateTransaction")
	defer span.End()

	path := fmt.Sprintf("transactions?id=eq.%s&user_id=eq.%s", tx.ID, tx.UserID)
	updates := map[string]any{
		"date":                tx.Date.Format(dateLayout),
		"category":            tx.Category,
		"description":         tx.Description,
		"amount":              tx.Amount,
		"type":                tx.Type,
		"payment_method":      tx.PaymentMethod,
		"tags":                tx.Tags,
		"recurring":           tx.Recurring,
		"recurring_frequency": tx.RecurringFrequency,
		"notes":               tx.Notes,
	}

	body, err := c.doPatch(ctx, path, updates)
	if err != nil {
		return nil, err
	}

	var rows []transactionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode updated transaction: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: tx.ID}
	}

	updated := rows[0].toDomain()
	return &updated, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTransaction")
	defer span.End()

	path := fmt.Sprintf("transactions?id=eq.%s&user_id=eq.%s", transactionID, userID)
	return c.doDelete(ctx, path)
}

// CountTransactionsByCategory reports how many of the user's transactions
// reference a category name. Used as a delete guard for categories.
func (c *Client) CountTransactionsByCategory(ctx context.Context, userID, category string) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountTransactionsByCategory")
	defer span.End()

	path := fmt.Sprintf("transactions?user_id=eq.%s&category=eq.%s&select=id", userID, url.QueryEscape(category))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return 0, err
	}
	if body == nil {
		return 0, nil
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("decode transaction ids: %w", err)
	}
	return len(rows), nil
}
