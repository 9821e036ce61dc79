package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gastos-app/gastos-gateway/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parseExpenseFilter reads the listing filter from query parameters.
// Accepts either month=YYYY-MM or separate year= and month= numbers.
func parseExpenseFilter(r *http.Request) domain.ExpenseFilter {
	q := r.URL.Query()
	filter := domain.ExpenseFilter{
		Category: q.Get("category"),
	}

	if m := q.Get("month"); len(m) == 7 && m[4] == '-' {
		if y, err := strconv.Atoi(m[:4]); err == nil {
			filter.Year = y
		}
		if mo, err := strconv.Atoi(m[5:]); err == nil && mo >= 1 && mo <= 12 {
			filter.Month = mo
		}
	} else {
		if y, err := strconv.Atoi(q.Get("year")); err == nil && y > 0 {
			filter.Year = y
		}
		if mo, err := strconv.Atoi(q.Get("month")); err == nil && mo >= 1 && mo <= 12 {
			filter.Month = mo
		}
	}

	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		filter.Limit = l
	}
	return filter
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var unauthorized *domain.ErrUnauthorized
	var duplicateEmail *domain.ErrDuplicateEmail
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &duplicateEmail):
		logger.Debug("duplicate email", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &external):
		logger.Error("upstream failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, "expenses backend unavailable")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
