package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gastos-app/gastos-gateway/internal/domain"
	"github.com/gastos-app/gastos-gateway/internal/infra/observability"
	"github.com/gastos-app/gastos-gateway/internal/port"
	"github.com/gastos-app/gastos-gateway/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Auth endpoints are public; everything else sits behind the session gate.
func NewRouter(expSvc *service.ExpenseService, reportSvc *service.ReportService, authSvc *service.AuthService, health port.HealthChecker, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(RequestMetrics(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(health))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Public: credentials in, token out.
		r.Post("/auth/login", loginHandler(authSvc, logger))
		r.Post("/auth/register", registerHandler(authSvc, logger))

		// Everything else requires a session token.
		r.Group(func(r chi.Router) {
			r.Use(SessionGate(logger))

			r.Get("/expenses", listExpensesHandler(expSvc, logger))
			r.Post("/expenses", createExpenseHandler(expSvc, logger))
			r.Get("/expenses/subscriptions", subscriptionsHandler(expSvc, logger))
			r.Get("/subscriptions", subscriptionsHandler(expSvc, logger))
			r.Get("/expenses/export", exportExpensesHandler(expSvc, logger))
			r.Put("/expenses/{expenseId}", updateExpenseHandler(expSvc, logger))
			r.Delete("/expenses/{expenseId}", deleteExpenseHandler(expSvc, logger))

			r.Get("/dashboard", dashboardHandler(expSvc, logger))
			r.Get("/reports/monthly", monthlyReportHandler(reportSvc, logger))

			r.Put("/auth/profile", updateProfileHandler(authSvc, logger))
			r.Get("/session", sessionInfoHandler())

			r.Get("/metrics/gateway", gatewayMetricsHandler(metrics))
		})
	})

	return r
}

func healthzHandler(health port.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := domain.HealthStatus{Status: "ok"}

		if health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			upstream := health.CheckHealth(ctx)
			status.Services = append(status.Services, upstream)
			if upstream.Status != "healthy" {
				status.Status = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, status)
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func gatewayMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetGatewaySnapshot())
	}
}
