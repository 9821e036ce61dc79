package gastosapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/gastos-app/gastos-gateway/internal/domain"
	"github.com/gastos-app/gastos-gateway/internal/infra/resilience"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

// expenseRow maps the backend's Spanish field names to our domain.
type expenseRow struct {
	ID          string  `json:"id"`
	Monto       float64 `json:"monto"`
	Fecha       string  `json:"fecha"`
	Categoria   string  `json:"categoria"`
	Descripcion string  `json:"descripcion"`
}

// parseDate accepts the two date shapes the backend emits. Anything else
// becomes the zero time, which the aggregation layer knows how to handle.
func parseDate(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, _ = time.Parse("2006-01-02", s)
	}
	return t
}

func (r expenseRow) toDomain() domain.Expense {
	return domain.Expense{
		ID:          r.ID,
		Amount:      r.Monto,
		Date:        parseDate(r.Fecha),
		Category:    r.Categoria,
		Description: r.Descripcion,
	}
}

func toRow(exp domain.Expense) expenseRow {
	return expenseRow{
		ID:          exp.ID,
		Monto:       exp.Amount,
		Fecha:       exp.Date.Format("2006-01-02"),
		Categoria:   exp.Category,
		Descripcion: exp.Description,
	}
}

// ListExpenses fetches the full expense list for the session. Reads are
// idempotent, so they retry with backoff inside the circuit breaker.
func (c *Client) ListExpenses(ctx context.Context, token string) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "GastosAPI.ListExpenses")
	defer span.End()

	var expenses []domain.Expense

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, status, err := c.doRequest(ctx, http.MethodGet, "/expenses", token, nil, nil)
			if err != nil {
				return err
			}
			if err := statusError(status, "expenses", "", body); err != nil {
				return err
			}

			var rows []expenseRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode expenses: %w", err)
			}

			expenses = make([]domain.Expense, 0, len(rows))
			for _, r := range rows {
				expenses = append(expenses, r.toDomain())
			}
			return nil
		})
	})

	if err != nil {
		return nil, c.wrapUpstream("expenses", err)
	}

	span.SetAttributes(attribute.Int("expenses.count", len(expenses)))
	return expenses, nil
}

// CreateExpense posts a new expense. Mutations run exactly once; an
// idempotency key lets the backend dedupe a replayed request on its side.
func (c *Client) CreateExpense(ctx context.Context, token string, exp domain.Expense) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "GastosAPI.CreateExpense")
	defer span.End()

	var created *domain.Expense
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.Once(ctx, func() error {
			body, status, err := c.doRequest(ctx, http.MethodPost, "/expenses", token, toRow(exp), headers)
			if err != nil {
				return err
			}
			if err := statusError(status, "expense", "", body); err != nil {
				return err
			}

			var row expenseRow
			if err := json.Unmarshal(body, &row); err != nil {
				return fmt.Errorf("failed to decode created expense: %w", err)
			}
			e := row.toDomain()
			created = &e
			return nil
		})
	})

	if err != nil {
		return nil, c.wrapUpstream("expenses", err)
	}

	return created, nil
}

// UpdateExpense replaces an existing expense.
func (c *Client) UpdateExpense(ctx context.Context, token, id string, exp domain.Expense) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "GastosAPI.UpdateExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", id))

	var updated *domain.Expense

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.Once(ctx, func() error {
			path := fmt.Sprintf("/expenses/%s", url.PathEscape(id))
			body, status, err := c.doRequest(ctx, http.MethodPut, path, token, toRow(exp), nil)
			if err != nil {
				return err
			}
			if err := statusError(status, "expense", id, body); err != nil {
				return err
			}

			// Some deployments answer PUT with 204 and no body.
			if len(body) == 0 {
				e := exp
				e.ID = id
				updated = &e
				return nil
			}

			var row expenseRow
			if err := json.Unmarshal(body, &row); err != nil {
				return fmt.Errorf("failed to decode updated expense: %w", err)
			}
			e := row.toDomain()
			updated = &e
			return nil
		})
	})

	if err != nil {
		return nil, c.wrapUpstream("expenses", err)
	}

	return updated, nil
}

// DeleteExpense removes an expense by id.
func (c *Client) DeleteExpense(ctx context.Context, token, id string) error {
	ctx, span := tracer.Start(ctx, "GastosAPI.DeleteExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", id))

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.Once(ctx, func() error {
			path := fmt.Sprintf("/expenses/%s", url.PathEscape(id))
			body, status, err := c.doRequest(ctx, http.MethodDelete, path, token, nil, nil)
			if err != nil {
				return err
			}
			return statusError(status, "expense", id, body)
		})
	})

	if err != nil {
		return c.wrapUpstream("expenses", err)
	}

	return nil
}

// monthlyReportBody is the wrapped report shape. Older backend versions
// return the bare category map instead.
type monthlyReportBody struct {
	Categorias map[string]float64 `json:"categorias"`
	Total      float64            `json:"total"`
}

// GetMonthlyReport fetches the server-computed aggregation for one YYYY-MM
// month. The endpoint moved between backend versions, so a 404 on the
// canonical path falls through to the legacy one.
func (c *Client) GetMonthlyReport(ctx context.Context, token, month string) (*domain.MonthlyReport, error) {
	ctx, span := tracer.Start(ctx, "GastosAPI.GetMonthlyReport")
	defer span.End()
	span.SetAttributes(attribute.String("report.month", month))

	var report *domain.MonthlyReport

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			query := "?month=" + url.QueryEscape(month)
			body, status, err := c.doRequest(ctx, http.MethodGet, "/reports/monthly"+query, token, nil, nil)
			if err != nil {
				return err
			}
			if status == http.StatusNotFound {
				body, status, err = c.doRequest(ctx, http.MethodGet, "/expenses/reports/monthly"+query, token, nil, nil)
				if err != nil {
					return err
				}
			}
			if err := statusError(status, "report", month, body); err != nil {
				return err
			}

			r, err := decodeMonthlyReport(month, body)
			if err != nil {
				return err
			}
			report = r
			return nil
		})
	})

	if err != nil {
		return nil, c.wrapUpstream("reports", err)
	}

	return report, nil
}

func decodeMonthlyReport(month string, body []byte) (*domain.MonthlyReport, error) {
	var wrapped monthlyReportBody
	if err := json.Unmarshal(body, &wrapped); err != nil || wrapped.Categorias == nil {
		// Bare map fallback.
		var bare map[string]float64
		if err := json.Unmarshal(body, &bare); err != nil {
			return nil, fmt.Errorf("failed to decode monthly report: %w", err)
		}
		wrapped.Categorias = bare
		wrapped.Total = 0
	}

	categories := make([]domain.CategorySum, 0, len(wrapped.Categorias))
	total := wrapped.Total
	for cat, amount := range wrapped.Categorias {
		categories = append(categories, domain.CategorySum{Category: cat, Amount: amount})
		if wrapped.Total == 0 {
			total += amount
		}
	}
	// The backend's map has no order; keep the output deterministic.
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Category < categories[j].Category
	})

	return &domain.MonthlyReport{Month: month, Categories: categories, Total: total}, nil
}

// wrapUpstream keeps typed domain errors visible through errors.As while
// tagging everything else as an external service failure. Expected outcomes
// (not found, rejected session, duplicate email) don't count as upstream
// errors; breaker trips and transport/decode failures do.
func (c *Client) wrapUpstream(service string, err error) error {
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		c.metrics.IncrExternalError(service)
		return &domain.ErrCircuitOpen{Service: service}
	}
	switch err.(type) {
	case *domain.ErrNotFound, *domain.ErrUnauthorized, *domain.ErrDuplicateEmail:
		return err
	default:
		c.metrics.IncrExternalError(service)
		return &domain.ErrExternalService{Service: service, Err: err}
	}
}
