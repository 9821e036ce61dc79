package handler

import (
	"net/http"

	"github.com/gastos-app/gastos-gateway/internal/service"
	"github.com/gastos-app/gastos-gateway/internal/session"

	"go.uber.org/zap"
)

// ============================================================
// Report Handlers
// ============================================================

func monthlyReportHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /reports/monthly")
		defer span.End()
		s := session.FromContext(ctx)
		q := r.URL.Query()
		report, err := svc.GetMonthly(ctx, s.Token, q.Get("month"), q.Get("category"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}
