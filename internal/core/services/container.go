package services

import (
	portsrepo "github.com/creamline/milkbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/creamline/milkbooks_backend/internal/core/ports/services"
)

// NewServiceContainer wires all services over the repository provider.
func NewServiceContainer(repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	chartSvc := NewChartService(repos.Account)
	journalSvc := NewJournalService(repos.Journal, repos.Account)
	invoiceSvc := NewInvoiceService(repos.Invoice, chartSvc)
	paymentSvc := NewPaymentService(repos.Invoice, chartSvc)
	receivablesSvc := NewReceivablesService(repos.Invoice)

	return &portssvc.ServiceContainer{
		Chart:       chartSvc,
		Journal:     journalSvc,
		Invoice:     invoiceSvc,
		Payment:     paymentSvc,
		Receivables: receivablesSvc,
	}
}
