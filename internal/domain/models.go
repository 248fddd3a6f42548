// Package domain contains the core entities of the personal finance tracker.
package domain

import "time"

// Transaction type values. Amounts are always stored as non-negative
// magnitudes; a transaction's financial direction comes from Type.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction is a single dated ledger entry owned by a user.
// Category is a denormalized name string, not a foreign key: renaming a
// category does not cascade to existing transactions.
type Transaction struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Date               time.Time `json:"date"`
	Category           string    `json:"category"`
	Description        string    `json:"description"`
	Amount             float64   `json:"amount"`
	Type               string    `json:"type"` // income, expense
	PaymentMethod      string    `json:"payment_method,omitempty"`
	Tags               []string  `json:"tags,omitempty"`
	Recurring          bool      `json:"recurring,omitempty"`
	RecurringFrequency string    `json:"recurring_frequency,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"created_at,omitempty"`
}

// Category classifies transactions. Name is unique per user.
type Category struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Name      string  `json:"name"`
	Icon      string  `json:"icon,omitempty"`
	Color     string  `json:"color,omitempty"` // hex, e.g. #ff6b6b
	Type      string  `json:"type"`            // income, expense, both
	Budget    float64 `json:"budget,omitempty"`
	IsDefault bool    `json:"is_default"`
}

// CategoryBudget is a per-category allocation inside a monthly Budget.
// Spent is a stale display snapshot; reconciliation always recomputes
// spend from live transactions and never trusts this field.
type CategoryBudget struct {
	Category string  `json:"category"`
	Budget   float64 `json:"budget"`
	Spent    float64 `json:"spent,omitempty"`
}

// Budget is the spending plan for one calendar month, unique per
// (user, month). Month is normalized to the first day of the month.
// Write-time invariant: TotalBudget == sum of CategoryBudgets budgets.
type Budget struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	Month           time.Time        `json:"month"`
	TotalBudget     float64          `json:"total_budget"`
	CategoryBudgets []CategoryBudget `json:"category_budgets"`
	Currency        string           `json:"currency,omitempty"`
}

// User is an account holder. PasswordHash never leaves the backend.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// ============================================================
// Auth request/response payloads
// ============================================================

// RegisterRequest creates a new user account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest authenticates an existing user.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token and basic profile data.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// SuccessResponse is a generic confirmation payload.
type SuccessResponse struct {
	Message string `json:"message"`
}

// ============================================================
// Health
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}
