package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gastos-app/gastos-gateway/internal/config"
	"github.com/gastos-app/gastos-gateway/internal/domain"
	"github.com/gastos-app/gastos-gateway/internal/handler"
	"github.com/gastos-app/gastos-gateway/internal/infra/observability"
	"github.com/gastos-app/gastos-gateway/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ============================================================
// Fakes wired through the real services
// ============================================================

type fakeStore struct {
	expenses []domain.Expense
}

func (f *fakeStore) ListExpenses(ctx context.Context, token string) ([]domain.Expense, error) {
	return f.expenses, nil
}

func (f *fakeStore) CreateExpense(ctx context.Context, token string, exp domain.Expense) (*domain.Expense, error) {
	exp.ID = "new-1"
	f.expenses = append(f.expenses, exp)
	return &exp, nil
}

func (f *fakeStore) UpdateExpense(ctx context.Context, token, id string, exp domain.Expense) (*domain.Expense, error) {
	exp.ID = id
	return &exp, nil
}

func (f *fakeStore) DeleteExpense(ctx context.Context, token, id string) error {
	if id == "missing" {
		return &domain.ErrNotFound{Resource: "expense", ID: id}
	}
	return nil
}

type fakeReports struct{}

func (f *fakeReports) GetMonthlyReport(ctx context.Context, token, month string) (*domain.MonthlyReport, error) {
	return &domain.MonthlyReport{
		Month:      month,
		Categories: []domain.CategorySum{{Category: "comida", Amount: 120}},
		Total:      120,
	}, nil
}

type fakeAuth struct{}

func (f *fakeAuth) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if req.Password != "secret" {
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}
	return &domain.LoginResponse{Token: "tok-1", Email: req.Email}, nil
}

func (f *fakeAuth) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error) {
	if req.Email == "dup@b.com" {
		return nil, &domain.ErrDuplicateEmail{Email: req.Email}
	}
	return &domain.RegisterResponse{Message: "account created"}, nil
}

func (f *fakeAuth) UpdateProfile(ctx context.Context, token string, req domain.UpdateProfileRequest) (*domain.UpdateProfileResponse, error) {
	return &domain.UpdateProfileResponse{Message: "profile updated"}, nil
}

type fakeCache struct{}

func (f *fakeCache) Get(key string) ([]domain.Expense, bool) { return nil, false }
func (f *fakeCache) Set(key string, value []domain.Expense)  {}
func (f *fakeCache) DeletePrefix(prefix string)              {}

func newTestRouter(store *fakeStore) http.Handler {
	cfg := &config.Config{
		RecentCount:          5,
		CategorySubscription: "suscripcion",
	}
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	reports := &fakeReports{}
	expSvc := service.NewExpenseService(store, reports, &fakeCache{}, cfg, metrics, logger)
	reportSvc := service.NewReportService(reports, logger)
	authSvc := service.NewAuthService(&fakeAuth{}, logger)
	return handler.NewRouter(expSvc, reportSvc, authSvc, nil, metrics, logger)
}

func doRequest(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// ============================================================
// Operational endpoints
// ============================================================

func TestHealthz(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec := doRequest(router, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec := doRequest(router, http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec := doRequest(router, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

// ============================================================
// Session gate
// ============================================================

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/v1/expenses"},
		{http.MethodPost, "/v1/expenses"},
		{http.MethodGet, "/v1/dashboard"},
		{http.MethodGet, "/v1/expenses/export"},
		{http.MethodGet, "/v1/reports/monthly?month=2025-01"},
		{http.MethodPut, "/v1/auth/profile"},
	} {
		rec := doRequest(router, tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestSessionGate_MalformedHeaderRejected(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/v1/expenses", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionInfo(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec := doRequest(router, http.MethodGet, "/v1/session", "opaque-tok", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var info domain.SessionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.True(t, info.Authenticated)
	assert.Empty(t, info.Email, "opaque tokens carry no claims")
}

// ============================================================
// Auth flow
// ============================================================

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec := doRequest(router, http.MethodPost, "/v1/auth/login", "", `{"email":"a@b.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tok-1", resp.Token)

	rec = doRequest(router, http.MethodPost, "/v1/auth/login", "", `{"email":"a@b.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterEndpoint_DuplicateEmailIs409(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec := doRequest(router, http.MethodPost, "/v1/auth/register", "", `{"email":"new@b.com","password":"secret1"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(router, http.MethodPost, "/v1/auth/register", "", `{"email":"dup@b.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// ============================================================
// Expense endpoints
// ============================================================

func expenseFixture() *fakeStore {
	return &fakeStore{expenses: []domain.Expense{
		{ID: "1", Amount: 100, Date: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), Category: "comida"},
		{ID: "2", Amount: 50, Date: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), Category: "suscripcion"},
		{ID: "3", Amount: 30, Date: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), Category: "comida"},
	}}
}

func TestListExpenses_FiltersByMonth(t *testing.T) {
	router := newTestRouter(expenseFixture())

	rec := doRequest(router, http.MethodGet, "/v1/expenses?month=2025-01", "tok", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []domain.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "2", out[0].ID, "most recent first")
}

func TestCreateExpense_ValidationError(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec := doRequest(router, http.MethodPost, "/v1/expenses", "tok", `{"amount":"abc","date":"2025-01-05","category":"comida"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateExpense_Succeeds(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec := doRequest(router, http.MethodPost, "/v1/expenses", "tok", `{"amount":"42.50","date":"2025-03-10","category":"comida","description":"pan"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "new-1", created.ID)
	assert.Equal(t, 42.5, created.Amount)
}

func TestDeleteExpense_NotFound(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec := doRequest(router, http.MethodDelete, "/v1/expenses/missing", "tok", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardEndpoint(t *testing.T) {
	router := newTestRouter(expenseFixture())

	rec := doRequest(router, http.MethodGet, "/v1/dashboard", "tok", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sum domain.DashboardSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 180.0, sum.Total)
	assert.Equal(t, 50.0, sum.TotalSubscriptions)
	assert.Equal(t, 130.0, sum.TotalOneOff)
	require.NotNil(t, sum.CurrentMonth)
}

func TestMonthlyReportEndpoint(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec := doRequest(router, http.MethodGet, "/v1/reports/monthly?month=2025-01", "tok", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report domain.MonthlyReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "2025-01", report.Month)
	assert.Equal(t, 120.0, report.Total)

	rec = doRequest(router, http.MethodGet, "/v1/reports/monthly?month=bad", "tok", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportEndpoint_CSVHeaders(t *testing.T) {
	router := newTestRouter(expenseFixture())

	rec := doRequest(router, http.MethodGet, "/v1/expenses/export", "tok", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "gastos_exportados.csv")

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 4, "header plus three rows")
	assert.Equal(t, "Fecha,Categoría,Monto", lines[0])
	assert.Equal(t, "20/01/2025,suscripcion,50.00", lines[1], "most recent row first")
}

func TestGatewayMetricsEndpoint(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	// Generate some traffic first.
	doRequest(router, http.MethodGet, "/v1/expenses", "tok", "")

	rec := doRequest(router, http.MethodGet, "/v1/metrics/gateway", "tok", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot domain.GatewayMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Greater(t, snapshot.TotalRequests, int64(0))
}
