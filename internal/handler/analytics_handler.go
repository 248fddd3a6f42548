package handler

import (
	"net/http"
	"strconv"

	"github.com/fintrack/fintrack-go/internal/domain"
	"github.com/fintrack/fintrack-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Analytics
// ============================================================

func monthlySummaryHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analytics/summary")
		defer span.End()

		userID := UserIDFromContext(ctx)
		months := service.DefaultSummaryMonths
		if v := r.URL.Query().Get("months"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "months must be an integer")
				return
			}
			months = parsed
		}

		summary, err := svc.GetMonthlySummary(ctx, userID, months)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func categorySpendingHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analytics/categories")
		defer span.End()

		userID := UserIDFromContext(ctx)
		from, err := parseDateParam(r, "from")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		to, err := parseDateParam(r, "to")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		spending, err := svc.GetCategorySpending(ctx, userID, from, to)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, spending)
	}
}

func spendingTrendsHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analytics/trends")
		defer span.End()

		userID := UserIDFromContext(ctx)
		period := r.URL.Query().Get("period")
		if period == "" {
			period = domain.PeriodMonth
		}

		trends, err := svc.GetSpendingTrends(ctx, userID, period)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, trends)
	}
}

func budgetProgressHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analytics/budget/progress")
		defer span.End()

		userID := UserIDFromContext(ctx)
		month, err := parseMonthParam(r, "month")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		progress, err := svc.GetBudgetProgress(ctx, userID, month)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if progress == nil {
			writeError(w, http.StatusNotFound, "no budget defined for the requested month")
			return
		}
		writeJSON(w, http.StatusOK, progress)
	}
}

func currentBudgetHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analytics/budget/current")
		defer span.End()

		userID := UserIDFromContext(ctx)
		progress, err := svc.GetCurrentBudget(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if progress == nil {
			writeError(w, http.StatusNotFound, "no budget defined yet")
			return
		}
		writeJSON(w, http.StatusOK, progress)
	}
}

func financialOverviewHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analytics/overview")
		defer span.End()

		userID := UserIDFromContext(ctx)
		overview, err := svc.GetFinancialOverview(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, overview)
	}
}
