package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gastos-app/gastos-gateway/internal/analytics"
	"github.com/gastos-app/gastos-gateway/internal/config"
	"github.com/gastos-app/gastos-gateway/internal/domain"
	"github.com/gastos-app/gastos-gateway/internal/export"
	"github.com/gastos-app/gastos-gateway/internal/infra/observability"
	"github.com/gastos-app/gastos-gateway/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service")

// ExpenseService orchestrates expense listings, mutations and the derived
// views (dashboard, export). All aggregation happens here, on the gateway,
// over the listing fetched for the session.
type ExpenseService struct {
	store   port.ExpenseStore
	reports port.ReportFetcher
	cache   port.ExpenseCache
	cfg     *config.Config
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewExpenseService creates an ExpenseService.
func NewExpenseService(store port.ExpenseStore, reports port.ReportFetcher, cache port.ExpenseCache, cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		store:   store,
		reports: reports,
		cache:   cache,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

func cacheKey(token string) string {
	return "expenses:" + token
}

// fetchAll returns the session's full listing, from cache when warm.
func (s *ExpenseService) fetchAll(ctx context.Context, token string) ([]domain.Expense, error) {
	key := cacheKey(token)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("expenses")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("expenses")

	expenses, err := s.store.ListExpenses(ctx, token)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, expenses)
	return expenses, nil
}

// invalidate drops every cached view for the session. Called after any
// mutation so the next read refetches.
func (s *ExpenseService) invalidate(token string) {
	s.cache.DeletePrefix(cacheKey(token))
}

// List returns the session's expenses narrowed by filter, most recent first.
func (s *ExpenseService) List(ctx context.Context, token string, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "ExpenseService.List")
	defer span.End()

	expenses, err := s.fetchAll(ctx, token)
	if err != nil {
		return nil, err
	}

	expenses = analytics.FilterByPeriod(expenses, filter.Year, filter.Month)
	expenses = analytics.FilterByCategory(expenses, filter.Category)
	expenses = analytics.SortByDateDescending(expenses)
	if filter.Limit > 0 {
		expenses = analytics.Top(expenses, filter.Limit)
	}
	return expenses, nil
}

// validateInput checks a submitted expense before any network call and
// converts it into a domain expense. Amount must parse as a positive number.
func validateInput(input domain.ExpenseInput) (domain.Expense, error) {
	amount, err := strconv.ParseFloat(input.Amount, 64)
	if err != nil {
		return domain.Expense{}, &domain.ErrValidation{Field: "amount", Message: fmt.Sprintf("not a number: %q", input.Amount)}
	}
	if amount <= 0 {
		return domain.Expense{}, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}

	if input.Date == "" {
		return domain.Expense{}, &domain.ErrValidation{Field: "date", Message: "required"}
	}
	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return domain.Expense{}, &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
	}

	if input.Category == "" {
		return domain.Expense{}, &domain.ErrValidation{Field: "category", Message: "required"}
	}

	return domain.Expense{
		Amount:      amount,
		Date:        date,
		Category:    input.Category,
		Description: input.Description,
	}, nil
}

// Create validates and records a new expense.
func (s *ExpenseService) Create(ctx context.Context, token string, input domain.ExpenseInput) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "ExpenseService.Create")
	defer span.End()

	exp, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateExpense(ctx, token, exp)
	if err != nil {
		return nil, err
	}

	s.invalidate(token)
	s.logger.Info("expense created",
		zap.String("expense_id", created.ID),
		zap.String("category", created.Category),
	)
	return created, nil
}

// Update validates and replaces an existing expense.
func (s *ExpenseService) Update(ctx context.Context, token, id string, input domain.ExpenseInput) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "ExpenseService.Update")
	defer span.End()

	if id == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "required"}
	}
	exp, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateExpense(ctx, token, id, exp)
	if err != nil {
		return nil, err
	}

	s.invalidate(token)
	return updated, nil
}

// Delete removes an expense by id.
func (s *ExpenseService) Delete(ctx context.Context, token, id string) error {
	ctx, span := tracer.Start(ctx, "ExpenseService.Delete")
	defer span.End()

	if id == "" {
		return &domain.ErrValidation{Field: "id", Message: "required"}
	}

	if err := s.store.DeleteExpense(ctx, token, id); err != nil {
		return err
	}

	s.invalidate(token)
	return nil
}

// Dashboard builds the aggregated home view. The full listing and the
// current-month report are fetched concurrently; the report is best-effort
// and the dashboard still renders without it.
func (s *ExpenseService) Dashboard(ctx context.Context, token string) (*domain.DashboardSummary, error) {
	ctx, span := tracer.Start(ctx, "ExpenseService.Dashboard")
	defer span.End()

	var (
		expenses []domain.Expense
		report   *domain.MonthlyReport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.fetchAll(gctx, token)
		return err
	})
	g.Go(func() error {
		month := time.Now().Format("2006-01")
		r, err := s.reports.GetMonthlyReport(gctx, token, month)
		if err != nil {
			s.logger.Warn("dashboard: monthly report unavailable",
				zap.String("month", month),
				zap.Error(err),
			)
			return nil
		}
		report = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := analytics.Total(expenses)
	subscriptions := analytics.TotalByCategory(expenses, analytics.CategoryContains(s.cfg.CategorySubscription))

	return &domain.DashboardSummary{
		Total:              total,
		TotalSubscriptions: subscriptions,
		TotalOneOff:        total - subscriptions,
		ByCategory:         analytics.GroupByCategory(expenses),
		Recent:             analytics.Top(analytics.SortByDateDescending(expenses), s.cfg.RecentCount),
		CurrentMonth:       report,
	}, nil
}

// Subscriptions lists the recurring expenses, most recent first.
func (s *ExpenseService) Subscriptions(ctx context.Context, token string) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "ExpenseService.Subscriptions")
	defer span.End()

	expenses, err := s.fetchAll(ctx, token)
	if err != nil {
		return nil, err
	}

	match := analytics.CategoryContains(s.cfg.CategorySubscription)
	out := make([]domain.Expense, 0)
	for _, e := range expenses {
		if match(e.Category) {
			out = append(out, e)
		}
	}
	return analytics.SortByDateDescending(out), nil
}

// ExportCSV renders the filtered listing as a CSV document.
func (s *ExpenseService) ExportCSV(ctx context.Context, token string, filter domain.ExpenseFilter) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "ExpenseService.ExportCSV")
	defer span.End()

	expenses, err := s.List(ctx, token, filter)
	if err != nil {
		return nil, err
	}

	data, err := export.EncodeCSV(expenses)
	if err != nil {
		return nil, err
	}

	s.metrics.AddExportedRows(len(expenses))
	return data, nil
}
