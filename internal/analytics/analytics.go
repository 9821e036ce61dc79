// Package analytics is the pure aggregation engine: totals, category
// breakdowns, period filters and orderings over an in-memory expense list.
// Every function treats its input as an immutable snapshot and returns
// derived values or fresh slices; none of them can fail.
package analytics

import (
	"sort"
	"strings"

	"github.com/gastos-app/gastos-gateway/internal/domain"
)

// CategoryAll is the sentinel the UI sends for "no category filter".
const CategoryAll = "Todas"

// CategoryPredicate decides whether a category label matches.
type CategoryPredicate func(category string) bool

// CategoryEquals matches the exact label. An empty argument matches only the
// literal empty-string category, never "all".
func CategoryEquals(category string) CategoryPredicate {
	return func(c string) bool { return c == category }
}

// CategoryContains matches case-insensitively on a substring, mirroring the
// free-text category filter of the monthly report view.
func CategoryContains(substr string) CategoryPredicate {
	needle := strings.ToLower(substr)
	return func(c string) bool { return strings.Contains(strings.ToLower(c), needle) }
}

// Total sums Amount over all records. Empty input yields 0.
func Total(records []domain.Expense) float64 {
	var sum float64
	for _, r := range records {
		sum += r.Amount
	}
	return sum
}

// TotalByCategory sums Amount over the records whose category satisfies the
// predicate.
func TotalByCategory(records []domain.Expense, match CategoryPredicate) float64 {
	var sum float64
	for _, r := range records {
		if match(r.Category) {
			sum += r.Amount
		}
	}
	return sum
}

// GroupByCategory maps every distinct category label to its summed amount.
// Labels appear in first-occurrence order; the empty string is a real label.
// Summing all groups always equals Total over the same records.
func GroupByCategory(records []domain.Expense) []domain.CategorySum {
	sums := make(map[string]float64, len(records))
	order := make([]string, 0, len(records))
	for _, r := range records {
		if _, seen := sums[r.Category]; !seen {
			order = append(order, r.Category)
		}
		sums[r.Category] += r.Amount
	}

	out := make([]domain.CategorySum, 0, len(order))
	for _, c := range order {
		out = append(out, domain.CategorySum{Category: c, Amount: sums[c]})
	}
	return out
}

// FilterByPeriod keeps the records whose date falls in the given calendar
// month (1-12) and year. A zero year or month leaves that dimension
// unconstrained. Records with a zero date never match a constrained
// dimension; they pass through only when both dimensions are open.
func FilterByPeriod(records []domain.Expense, year, month int) []domain.Expense {
	if year == 0 && month == 0 {
		return append([]domain.Expense(nil), records...)
	}
	out := make([]domain.Expense, 0, len(records))
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		if year != 0 && r.Date.Year() != year {
			continue
		}
		if month != 0 && int(r.Date.Month()) != month {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterByCategory keeps the records whose category equals the given label.
// An empty label or the CategoryAll sentinel passes everything through.
func FilterByCategory(records []domain.Expense, category string) []domain.Expense {
	if category == "" || category == CategoryAll {
		return append([]domain.Expense(nil), records...)
	}
	out := make([]domain.Expense, 0, len(records))
	for _, r := range records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// SortByDateDescending returns a new slice ordered most-recent-first.
// The sort is stable: ties (and zero dates, which sort as oldest) keep
// their original relative order. The input is never mutated.
func SortByDateDescending(records []domain.Expense) []domain.Expense {
	out := append([]domain.Expense(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Top returns the first n records. Short inputs are returned whole; a
// non-positive n yields an empty slice.
func Top(records []domain.Expense, n int) []domain.Expense {
	if n <= 0 {
		return []domain.Expense{}
	}
	if n > len(records) {
		n = len(records)
	}
	return append([]domain.Expense(nil), records[:n]...)
}
