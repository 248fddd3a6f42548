package service_test

import (
	"context"
	"time"

	"github.com/fintrack/fintrack-go/internal/domain"
)

// --- Mock ledger store ---

// mockStore is an in-memory port.LedgerStore. ListTransactions applies the
// filter the same way the real adapter does (inclusive date bounds), so the
// aggregation paths are exercised honestly.
type mockStore struct {
	transactions []domain.Transaction
	categories   []domain.Category
	budgets      []domain.Budget
	err          error

	createdTransactions []domain.Transaction
	deletedCategories   []string
}

func (m *mockStore) ListTransactions(_ context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Transaction
	for _, tx := range m.transactions {
		if tx.UserID != userID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.Category != "" && tx.Category != filter.Category {
			continue
		}
		if filter.DateFrom != nil && tx.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && tx.Date.After(*filter.DateTo) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (m *mockStore) GetTransaction(_ context.Context, userID, id string) (*domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, tx := range m.transactions {
		if tx.UserID == userID && tx.ID == id {
			return &tx, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: id}
}

func (m *mockStore) CreateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.createdTransactions = append(m.createdTransactions, *tx)
	return tx, nil
}

func (m *mockStore) UpdateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	return tx, m.err
}

func (m *mockStore) DeleteTransaction(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockStore) CountTransactionsByCategory(_ context.Context, userID, category string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	count := 0
	for _, tx := range m.transactions {
		if tx.UserID == userID && tx.Category == category {
			count++
		}
	}
	return count, nil
}

func (m *mockStore) ListCategories(_ context.Context, userID string) ([]domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Category
	for _, cat := range m.categories {
		if cat.UserID == userID {
			out = append(out, cat)
		}
	}
	return out, nil
}

func (m *mockStore) GetCategory(_ context.Context, userID, id string) (*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, cat := range m.categories {
		if cat.UserID == userID && cat.ID == id {
			return &cat, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "category", ID: id}
}

func (m *mockStore) CreateCategory(_ context.Context, cat *domain.Category) (*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.categories = append(m.categories, *cat)
	return cat, nil
}

func (m *mockStore) UpdateCategory(_ context.Context, cat *domain.Category) (*domain.Category, error) {
	return cat, m.err
}

func (m *mockStore) DeleteCategory(_ context.Context, _, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deletedCategories = append(m.deletedCategories, id)
	return nil
}

func (m *mockStore) GetBudget(_ context.Context, userID string, month time.Time) (*domain.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, b := range m.budgets {
		if b.UserID == userID && b.Month.Year() == month.Year() && b.Month.Month() == month.Month() {
			budget := b
			return &budget, nil
		}
	}
	return nil, nil
}

func (m *mockStore) FindLatestBudgetAtOrBefore(_ context.Context, userID string, month time.Time) (*domain.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	var latest *domain.Budget
	for i := range m.budgets {
		b := m.budgets[i]
		if b.UserID != userID || b.Month.After(month) {
			continue
		}
		if latest == nil || b.Month.After(latest.Month) {
			latest = &m.budgets[i]
		}
	}
	return latest, nil
}

func (m *mockStore) ListBudgets(_ context.Context, userID string) ([]domain.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Budget
	for _, b := range m.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockStore) CreateBudget(_ context.Context, budget *domain.Budget) (*domain.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.budgets = append(m.budgets, *budget)
	return budget, nil
}

func (m *mockStore) UpdateBudget(_ context.Context, budget *domain.Budget) (*domain.Budget, error) {
	return budget, m.err
}

func (m *mockStore) DeleteBudget(_ context.Context, _, _ string) error {
	return m.err
}

// --- Mock user store ---

type mockUserStore struct {
	users map[string]*domain.User // keyed by email
	err   error
}

func (m *mockUserStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: email}
}

func (m *mockUserStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: id}
}

func (m *mockUserStore) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.users == nil {
		m.users = make(map[string]*domain.User)
	}
	m.users[user.Email] = user
	return user, nil
}

// --- Test helpers ---

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
