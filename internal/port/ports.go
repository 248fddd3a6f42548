// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/fintrack/fintrack-go/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// TransactionStore handles ledger transaction persistence and retrieval.
// ListTransactions applies the filter with inclusive date bounds; it is
// the single read path the aggregation engine builds on.
type TransactionStore interface {
	ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error)
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	CountTransactionsByCategory(ctx context.Context, userID, category string) (int, error)
}

// CategoryStore handles category persistence.
type CategoryStore interface {
	ListCategories(ctx context.Context, userID string) ([]domain.Category, error)
	GetCategory(ctx context.Context, userID, categoryID string) (*domain.Category, error)
	CreateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID string) error
}

// BudgetStore handles monthly budget persistence. GetBudget and
// FindLatestBudgetAtOrBefore return (nil, nil) when no budget exists —
// absence is a valid, common state, not an error.
type BudgetStore interface {
	GetBudget(ctx context.Context, userID string, month time.Time) (*domain.Budget, error)
	FindLatestBudgetAtOrBefore(ctx context.Context, userID string, month time.Time) (*domain.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error)
	CreateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error)
	UpdateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID string) error
}

// LedgerStore is the full persistence surface required by the services.
// Implemented by the Supabase adapter (or any other persistence layer).
type LedgerStore interface {
	TransactionStore
	CategoryStore
	BudgetStore
}

// UserStore handles account lookup and creation for authentication.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
}
