package domain

import "time"

// ============================================================
// Aggregation inputs
// ============================================================

// Trend period values accepted by the spending-trends report.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// GroupBy selects the bucket granularity for an aggregation.
type GroupBy string

const (
	GroupByNone     GroupBy = "none"
	GroupByType     GroupBy = "type"
	GroupByCategory GroupBy = "category"
	GroupByYear     GroupBy = "year"
	GroupByMonth    GroupBy = "year-month"
	GroupByWeek     GroupBy = "year-week"
)

// TransactionFilter narrows a ledger query. Zero values mean "no filter".
// Date bounds are inclusive on both ends; a one-sided range leaves the
// other end unbounded. An inverted range (From after To) simply matches
// nothing — callers may pass bounds in either order.
type TransactionFilter struct {
	Type     string
	Category string
	DateFrom *time.Time
	DateTo   *time.Time
}

// GroupedSum is one bucket of an aggregation result.
// Key format depends on grouping: "2006" for year, "2006-01" for
// year-month, "2006-W02" for year-week (ISO 8601 week numbering),
// the type or category name otherwise, "" for ungrouped totals.
type GroupedSum struct {
	Key string  `json:"key"`
	Sum float64 `json:"sum"`
}

// ============================================================
// Derived analytics entities (computed per request, never persisted)
// ============================================================

// MonthlySummary is one month of income vs expenses.
// Expenses is a non-negative magnitude; Net = Income - Expenses.
type MonthlySummary struct {
	Month    string  `json:"month"` // YYYY-MM
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// CategorySpending is one category's share of expense spending.
// Color and Icon are looked up by category name; rows whose name no
// longer matches a stored category keep empty values.
type CategorySpending struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color,omitempty"`
	Icon       string  `json:"icon,omitempty"`
}

// SpendingTrend is one point of an expense trend series.
// Change is the percentage delta vs the previous point; the first
// point reports 0.
type SpendingTrend struct {
	Period string  `json:"period"`
	Amount float64 `json:"amount"`
	Change float64 `json:"change"`
}

// CategoryProgress reconciles one budget allocation against live spend.
type CategoryProgress struct {
	Category   string  `json:"category"`
	Budget     float64 `json:"budget"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
	Overspent  bool    `json:"overspent"`
}

// BudgetProgress is the full budget-vs-actual report for one month.
// Totals are derived only from the allocated categories listed on the
// budget; spend in unallocated categories is not counted.
type BudgetProgress struct {
	Month           string             `json:"month"` // YYYY-MM
	TotalBudget     float64            `json:"total_budget"`
	TotalSpent      float64            `json:"total_spent"`
	TotalRemaining  float64            `json:"total_remaining"`
	TotalPercentage float64            `json:"total_percentage"`
	Overspent       bool               `json:"overspent"`
	Currency        string             `json:"currency,omitempty"`
	Categories      []CategoryProgress `json:"categories"`
}

// PeriodTotals is income vs expenses for one reporting window.
// SavingsRate is (income-expenses)/income*100, reported as 0 when
// income is 0 — callers cannot distinguish "no income" from a true
// 0% rate from this field alone.
type PeriodTotals struct {
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	Net         float64 `json:"net"`
	SavingsRate float64 `json:"savings_rate"`
}

// FinancialOverview is the composite dashboard payload.
type FinancialOverview struct {
	Monthly       PeriodTotals       `json:"monthly"`
	Yearly        PeriodTotals       `json:"yearly"`
	TopCategories []CategorySpending `json:"top_categories"`
}

// EngineMetrics is a snapshot of analytics-engine health counters,
// served by GET /v1/metrics/engine.
type EngineMetrics struct {
	TotalRequests int64   `json:"total_requests"`
	ErrorRate     float64 `json:"error_rate"`
	StoreErrors   int64   `json:"store_errors"`
	CacheHitRate  float64 `json:"cache_hit_rate"`
	Period        string  `json:"period"`
}
