package handler

import (
	"net/http"
	"time"

	"github.com/fintrack/fintrack-go/internal/domain"
	"github.com/fintrack/fintrack-go/internal/infra/observability"
	"github.com/fintrack/fintrack-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(analyticsSvc *service.AnalyticsService, ledgerSvc *service.LedgerService, authSvc *service.AuthService, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(ledgerSvc, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Authentication (public)
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			if authSvc == nil {
				r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusServiceUnavailable, "auth service unavailable: Supabase not configured")
				}))
				return
			}
			r.Post("/register", authRegisterHandler(authSvc, logger))
			r.Post("/login", authLoginHandler(authSvc, logger))
		})

		// =============================================
		// Everything below requires a Bearer token.
		// =============================================
		r.Group(func(r chi.Router) {
			if authSvc != nil {
				r.Use(JWTAuthMiddleware(authSvc, logger))
			}

			// Analytics
			r.Get("/analytics/summary", monthlySummaryHandler(analyticsSvc, logger))
			r.Get("/analytics/categories", categorySpendingHandler(analyticsSvc, logger))
			r.Get("/analytics/trends", spendingTrendsHandler(analyticsSvc, logger))
			r.Get("/analytics/budget/progress", budgetProgressHandler(analyticsSvc, logger))
			r.Get("/analytics/budget/current", currentBudgetHandler(analyticsSvc, logger))
			r.Get("/analytics/overview", financialOverviewHandler(analyticsSvc, logger))

			// Transactions
			r.Get("/transactions", listTransactionsHandler(ledgerSvc, logger))
			r.Post("/transactions", createTransactionHandler(ledgerSvc, logger))
			r.Get("/transactions/{transactionId}", getTransactionHandler(ledgerSvc, logger))
			r.Put("/transactions/{transactionId}", updateTransactionHandler(ledgerSvc, logger))
			r.Delete("/transactions/{transactionId}", deleteTransactionHandler(ledgerSvc, logger))

			// Categories
			r.Get("/categories", listCategoriesHandler(ledgerSvc, logger))
			r.Post("/categories", createCategoryHandler(ledgerSvc, logger))
			r.Put("/categories/{categoryId}", updateCategoryHandler(ledgerSvc, logger))
			r.Delete("/categories/{categoryId}", deleteCategoryHandler(ledgerSvc, logger))

			// Budgets
			r.Get("/budgets", listBudgetsHandler(ledgerSvc, logger))
			r.Post("/budgets", createBudgetHandler(ledgerSvc, logger))
			r.Put("/budgets/{budgetId}", updateBudgetHandler(ledgerSvc, logger))
			r.Delete("/budgets/{budgetId}", deleteBudgetHandler(ledgerSvc, logger))
		})

		// =============================================
		// Engine metrics
		// =============================================
		r.Get("/metrics/engine", engineMetricsHandler(metrics, logger))
	})

	return r
}

// ============================================================
// Metrics & Health
// ============================================================

func engineMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := metrics.GetEngineSnapshot()
		writeJSON(w, http.StatusOK, snapshot)
	}
}

func healthzHandler(ledgerSvc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "fintrack-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if ledgerSvc != nil {
			start := time.Now()
			_, err := ledgerSvc.ListCategories(ctx, "health-check")
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
