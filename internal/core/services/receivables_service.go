package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/creamline/milkbooks_backend/internal/core/domain"
	portsrepo "github.com/creamline/milkbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/creamline/milkbooks_backend/internal/core/ports/services"
	"github.com/creamline/milkbooks_backend/internal/dto"
)

// receivablesService is a pure read-model over invoice records: it selects
// the tenant's outstanding invoices in one direction, ages each one, and
// aggregates by counterparty and aging bucket.
type receivablesService struct {
	BaseService
	invoiceRepo portsrepo.InvoiceRepository
	now         func() time.Time
}

// NewReceivablesService creates the receivables/payables reporter.
func NewReceivablesService(invoiceRepo portsrepo.InvoiceRepository) portssvc.ReceivablesSvcFacade {
	return &receivablesService{
		invoiceRepo: invoiceRepo,
		now:         time.Now,
	}
}

var _ portssvc.ReceivablesSvcFacade = (*receivablesService)(nil)

// GetReceivables reports what the tenant is owed.
func (s *receivablesService) GetReceivables(ctx context.Context, tenantID string, filters dto.ReportFilters) (*domain.OutstandingReport, error) {
	return s.report(ctx, tenantID, domain.Receivable, filters)
}

// GetPayables reports what the tenant owes.
func (s *receivablesService) GetPayables(ctx context.Context, tenantID string, filters dto.ReportFilters) (*domain.OutstandingReport, error) {
	return s.report(ctx, tenantID, domain.Payable, filters)
}

func (s *receivablesService) report(ctx context.Context, tenantID string, direction domain.InvoiceDirection, filters dto.ReportFilters) (*domain.OutstandingReport, error) {
	filter := portsrepo.InvoiceFilter{
		CounterpartyID: filters.CounterpartyID,
		DateFrom:       filters.DateFrom,
		DateTo:         filters.DateTo,
		PaymentStatus:  filters.PaymentStatus,
	}

	// The repository returns records sorted occurred_at descending with
	// insertion order as the tie-breaker; all derived lists preserve it.
	invoices, err := s.invoiceRepo.ListOutstandingInvoices(ctx, tenantID, direction, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list outstanding invoices",
			slog.String("tenant_id", tenantID),
			slog.String("direction", string(direction)))
		return nil, fmt.Errorf("failed to retrieve outstanding invoices: %w", err)
	}

	now := s.now().UTC()
	report := &domain.OutstandingReport{
		Direction:        direction,
		TotalOutstanding: decimal.Zero,
		AgingSummary:     domain.NewAgingSummary(),
		ByCounterparty:   []domain.CounterpartyGroup{},
		AllInvoices:      make([]domain.OutstandingView, 0, len(invoices)),
	}

	groupIndex := make(map[string]int)
	for i := range invoices {
		view := invoices[i].ToOutstandingView(now)
		report.AllInvoices = append(report.AllInvoices, view)
		report.TotalOutstanding = report.TotalOutstanding.Add(view.Outstanding)
		report.InvoiceCount++
		report.AgingSummary.Add(view.AgingBucket, view.Outstanding)

		idx, ok := groupIndex[view.CounterpartyID]
		if !ok {
			idx = len(report.ByCounterparty)
			groupIndex[view.CounterpartyID] = idx
			report.ByCounterparty = append(report.ByCounterparty, domain.CounterpartyGroup{
				CounterpartyID:   view.CounterpartyID,
				TotalOutstanding: decimal.Zero,
			})
		}
		group := &report.ByCounterparty[idx]
		group.TotalOutstanding = group.TotalOutstanding.Add(view.Outstanding)
		group.InvoiceCount++
		group.Invoices = append(group.Invoices, view)
	}

	s.LogDebug(ctx, "Outstanding report generated",
		slog.String("tenant_id", tenantID),
		slog.String("direction", string(direction)),
		slog.Int("invoice_count", report.InvoiceCount))
	return report, nil
}
