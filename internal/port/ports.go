// Package port defines the interfaces between the services and the
// infrastructure adapters that talk to the upstream expenses backend.
package port

import (
	"context"

	"github.com/gastos-app/gastos-gateway/internal/domain"
)

// ExpenseStore is the upstream CRUD surface for expenses. Every call acts on
// behalf of one session; token is the raw bearer token forwarded upstream.
type ExpenseStore interface {
	ListExpenses(ctx context.Context, token string) ([]domain.Expense, error)
	CreateExpense(ctx context.Context, token string, exp domain.Expense) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, token, id string, exp domain.Expense) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, token, id string) error
}

// ReportFetcher retrieves server-computed monthly aggregations.
type ReportFetcher interface {
	GetMonthlyReport(ctx context.Context, token, month string) (*domain.MonthlyReport, error)
}

// AuthGateway forwards credential operations to the upstream backend. The
// gateway never stores or hashes passwords itself.
type AuthGateway interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error)
	UpdateProfile(ctx context.Context, token string, req domain.UpdateProfileRequest) (*domain.UpdateProfileResponse, error)
}

// HealthChecker probes an upstream dependency for the readiness report.
type HealthChecker interface {
	CheckHealth(ctx context.Context) domain.ServiceHealth
}

// ExpenseCache caches expense listings per session key.
type ExpenseCache interface {
	Get(key string) ([]domain.Expense, bool)
	Set(key string, value []domain.Expense)
	DeletePrefix(prefix string)
}
