package service

import (
	"context"
	"math"
	"strings"

	"github.com/fintrack/fintrack-go/internal/domain"
	"github.com/fintrack/fintrack-go/internal/infra/observability"
	"github.com/fintrack/fintrack-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var ledgerTracer = otel.Tracer("service/ledger")

// LedgerService handles the CRUD write paths for transactions, categories
// and budgets, enforcing the write-time invariants the analytics engine
// depends on.
type LedgerService struct {
	store    port.LedgerStore
	catCache port.Cache[[]domain.Category]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewLedgerService creates the ledger CRUD service.
func NewLedgerService(store port.LedgerStore, catCache port.Cache[[]domain.Category], metrics *observability.Metrics, logger *zap.Logger) *LedgerService {
	return &LedgerService{store: store, catCache: catCache, metrics: metrics, logger: logger}
}

// ============================================================
// Transactions
// ============================================================

func (s *LedgerService) ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListTransactions")
	defer span.End()

	return s.store.ListTransactions(ctx, userID, filter)
}

func (s *LedgerService) GetTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetTransaction")
	defer span.End()

	return s.store.GetTransaction(ctx, userID, transactionID)
}

func (s *LedgerService) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateTransaction")
	defer span.End()

	if err := validateTransaction(tx); err != nil {
		return nil, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	// Amounts are stored as non-negative magnitudes; direction lives in
	// the type field.
	tx.Amount = math.Abs(tx.Amount)

	return s.store.CreateTransaction(ctx, tx)
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateTransaction")
	defer span.End()

	if err := validateTransaction(tx); err != nil {
		return nil, err
	}
	// Ownership is immutable: the store patch is scoped to (id, user_id)
	// and never touches user_id itself.
	tx.Amount = math.Abs(tx.Amount)

	return s.store.UpdateTransaction(ctx, tx)
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteTransaction")
	defer span.End()

	return s.store.DeleteTransaction(ctx, userID, transactionID)
}

func validateTransaction(tx *domain.Transaction) error {
	if tx.Amount == 0 {
		return &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if tx.Type != domain.TypeIncome && tx.Type != domain.TypeExpense {
		return &domain.ErrValidation{Field: "type", Message: "must be income or expense"}
	}
	if tx.Category == "" {
		return &domain.ErrValidation{Field: "category", Message: "required"}
	}
	if tx.Date.IsZero() {
		return &domain.ErrValidation{Field: "date", Message: "required"}
	}
	return nil
}

// ============================================================
// Categories
// ============================================================

func (s *LedgerService) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListCategories")
	defer span.End()

	return s.store.ListCategories(ctx, userID)
}

func (s *LedgerService) CreateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateCategory")
	defer span.End()

	if err := validateCategory(cat); err != nil {
		return nil, err
	}
	taken, err := s.categoryNameTaken(ctx, cat.UserID, cat.Name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &domain.ErrConflict{Message: "category name already exists"}
	}
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}

	created, err := s.store.CreateCategory(ctx, cat)
	if err != nil {
		return nil, err
	}
	s.catCache.Delete(categoriesCacheKey(cat.UserID))
	return created, nil
}

// UpdateCategory renames or restyles a category. Renames do NOT cascade
// to existing transactions: they keep the old name string and fall out of
// color/icon enrichment until recategorized.
func (s *LedgerService) UpdateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateCategory")
	defer span.End()

	if err := validateCategory(cat); err != nil {
		return nil, err
	}
	taken, err := s.categoryNameTaken(ctx, cat.UserID, cat.Name, cat.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &domain.ErrConflict{Message: "category name already exists"}
	}

	updated, err := s.store.UpdateCategory(ctx, cat)
	if err != nil {
		return nil, err
	}
	s.catCache.Delete(categoriesCacheKey(cat.UserID))
	s.logger.Info("category updated",
		zap.String("user_id", cat.UserID),
		zap.String("category_id", cat.ID),
		zap.String("name", cat.Name),
	)
	return updated, nil
}

// DeleteCategory refuses to delete default categories and categories
// still referenced by at least one transaction.
func (s *LedgerService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteCategory")
	defer span.End()

	cat, err := s.store.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	if cat.IsDefault {
		return &domain.ErrForbidden{Action: "delete default category"}
	}

	inUse, err := s.store.CountTransactionsByCategory(ctx, userID, cat.Name)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return &domain.ErrConflict{Message: "category is in use by existing transactions"}
	}

	if err := s.store.DeleteCategory(ctx, userID, categoryID); err != nil {
		return err
	}
	s.catCache.Delete(categoriesCacheKey(userID))
	return nil
}

func validateCategory(cat *domain.Category) error {
	if strings.TrimSpace(cat.Name) == "" {
		return &domain.ErrValidation{Field: "name", Message: "required"}
	}
	switch cat.Type {
	case domain.TypeIncome, domain.TypeExpense, "both":
	default:
		return &domain.ErrValidation{Field: "type", Message: "must be income, expense or both"}
	}
	return nil
}

func (s *LedgerService) categoryNameTaken(ctx context.Context, userID, name, excludeID string) (bool, error) {
	cats, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, existing := range cats {
		if existing.ID != excludeID && strings.EqualFold(existing.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// ============================================================
// Budgets
// ============================================================

func (s *LedgerService) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListBudgets")
	defer span.End()

	return s.store.ListBudgets(ctx, userID)
}

func (s *LedgerService) CreateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateBudget")
	defer span.End()

	budget.Month = monthStart(budget.Month)
	if err := validateBudget(budget); err != nil {
		return nil, err
	}

	existing, err := s.store.GetBudget(ctx, budget.UserID, budget.Month)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ErrConflict{Message: "budget already exists for this month"}
	}
	if budget.ID == "" {
		budget.ID = uuid.NewString()
	}

	return s.store.CreateBudget(ctx, budget)
}

func (s *LedgerService) UpdateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateBudget")
	defer span.End()

	if err := validateBudget(budget); err != nil {
		return nil, err
	}

	return s.store.UpdateBudget(ctx, budget)
}

func (s *LedgerService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteBudget")
	defer span.End()

	return s.store.DeleteBudget(ctx, userID, budgetID)
}

// validateBudget enforces that the total equals the sum of the
// per-category allocations (within a float tolerance).
func validateBudget(budget *domain.Budget) error {
	if budget.Month.IsZero() {
		return &domain.ErrValidation{Field: "month", Message: "required"}
	}
	if budget.TotalBudget < 0 {
		return &domain.ErrValidation{Field: "total_budget", Message: "must not be negative"}
	}

	var sum float64
	seen := make(map[string]bool, len(budget.CategoryBudgets))
	for _, cb := range budget.CategoryBudgets {
		if cb.Category == "" {
			return &domain.ErrValidation{Field: "category_budgets", Message: "category name required"}
		}
		if cb.Budget < 0 {
			return &domain.ErrValidation{Field: "category_budgets", Message: "allocation must not be negative"}
		}
		if seen[cb.Category] {
			return &domain.ErrValidation{Field: "category_budgets", Message: "duplicate category: " + cb.Category}
		}
		seen[cb.Category] = true
		sum += cb.Budget
	}

	if math.Abs(sum-budget.TotalBudget) > 0.005 {
		return &domain.ErrValidation{Field: "total_budget", Message: "must equal the sum of category allocations"}
	}
	return nil
}
