package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gastos-app/gastos-gateway/internal/domain"
	"github.com/gastos-app/gastos-gateway/internal/export"
	"github.com/gastos-app/gastos-gateway/internal/service"
	"github.com/gastos-app/gastos-gateway/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Expense Handlers
// ============================================================

func listExpensesHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /expenses")
		defer span.End()
		s := session.FromContext(ctx)
		expenses, err := svc.List(ctx, s.Token, parseExpenseFilter(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, expenses)
	}
}

func createExpenseHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /expenses")
		defer span.End()
		var input domain.ExpenseInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		s := session.FromContext(ctx)
		created, err := svc.Create(ctx, s.Token, input)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateExpenseHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /expenses/{expenseId}")
		defer span.End()
		var input domain.ExpenseInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		s := session.FromContext(ctx)
		updated, err := svc.Update(ctx, s.Token, chi.URLParam(r, "expenseId"), input)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteExpenseHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /expenses/{expenseId}")
		defer span.End()
		s := session.FromContext(ctx)
		if err := svc.Delete(ctx, s.Token, chi.URLParam(r, "expenseId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "expense deleted"})
	}
}

func dashboardHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /dashboard")
		defer span.End()
		s := session.FromContext(ctx)
		summary, err := svc.Dashboard(ctx, s.Token)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func subscriptionsHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /expenses/subscriptions")
		defer span.End()
		s := session.FromContext(ctx)
		expenses, err := svc.Subscriptions(ctx, s.Token)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, expenses)
	}
}

func exportExpensesHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /expenses/export")
		defer span.End()
		s := session.FromContext(ctx)
		data, err := svc.ExportCSV(ctx, s.Token, parseExpenseFilter(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}
