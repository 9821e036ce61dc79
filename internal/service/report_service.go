package service

import (
	"context"
	"regexp"

	"github.com/gastos-app/gastos-gateway/internal/analytics"
	"github.com/gastos-app/gastos-gateway/internal/domain"
	"github.com/gastos-app/gastos-gateway/internal/port"

	"go.uber.org/zap"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ReportService serves monthly aggregation reports. The month total always
// comes from the backend; the optional category narrowing happens here.
type ReportService struct {
	fetcher port.ReportFetcher
	logger  *zap.Logger
}

// NewReportService creates a ReportService.
func NewReportService(fetcher port.ReportFetcher, logger *zap.Logger) *ReportService {
	return &ReportService{fetcher: fetcher, logger: logger}
}

// GetMonthly fetches the report for one YYYY-MM month. A non-empty category
// narrows the breakdown to matching labels and recomputes the total over the
// kept slices.
func (s *ReportService) GetMonthly(ctx context.Context, token, month, category string) (*domain.MonthlyReport, error) {
	ctx, span := tracer.Start(ctx, "ReportService.GetMonthly")
	defer span.End()

	if !monthPattern.MatchString(month) {
		return nil, &domain.ErrValidation{Field: "month", Message: "must be YYYY-MM"}
	}

	report, err := s.fetcher.GetMonthlyReport(ctx, token, month)
	if err != nil {
		return nil, err
	}

	if category == "" || category == analytics.CategoryAll {
		return report, nil
	}

	match := analytics.CategoryContains(category)
	kept := make([]domain.CategorySum, 0, len(report.Categories))
	var total float64
	for _, c := range report.Categories {
		if match(c.Category) {
			kept = append(kept, c)
			total += c.Amount
		}
	}

	return &domain.MonthlyReport{
		Month:      report.Month,
		Categories: kept,
		Total:      total,
	}, nil
}
