// Package domain holds the core types shared across the gateway.
package domain

import "time"

// Expense is one logged transaction. The upstream backend assigns the ID;
// the gateway never generates ids for expenses.
type Expense struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
}

// ExpenseInput is the mutable part of an expense, as submitted by a form.
// Amount arrives as a string so it can be validated before any network call.
type ExpenseInput struct {
	Amount      string `json:"amount"`
	Date        string `json:"date"` // YYYY-MM-DD
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

// ExpenseFilter narrows a listing. Zero values leave a dimension unconstrained.
type ExpenseFilter struct {
	Year     int    // 0 = any year
	Month    int    // 0 = any month, otherwise 1-12
	Category string // "" or "Todas" = all categories
	Limit    int    // 0 = no cap
}

// CategorySum is one slice of a category breakdown.
type CategorySum struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// DashboardSummary is the aggregated view the dashboard renders.
type DashboardSummary struct {
	Total              float64       `json:"total"`
	TotalSubscriptions float64       `json:"totalSubscriptions"`
	TotalOneOff        float64       `json:"totalOneOff"`
	ByCategory         []CategorySum `json:"byCategory"`
	Recent             []Expense     `json:"recent"`

	// CurrentMonth carries the server-computed report for the running month.
	// It is best-effort: nil when the reports endpoint is unavailable.
	CurrentMonth *MonthlyReport `json:"currentMonth,omitempty"`
}

// MonthlyReport is the server-computed category -> amount mapping for one
// year-month, optionally narrowed client-side, plus the resulting total.
type MonthlyReport struct {
	Month      string        `json:"month"` // YYYY-MM
	Categories []CategorySum `json:"categories"`
	Total      float64       `json:"total"`
}
