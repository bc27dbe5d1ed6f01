package services

import (
	"context"

	"github.com/creamline/milkbooks_backend/internal/core/domain"
	"github.com/creamline/milkbooks_backend/internal/dto"
)

// ChartSvcFacade provisions and manages the tenant chart of accounts.
type ChartSvcFacade interface {
	// GetOrCreate resolves a default account for the tenant and purpose,
	// creating it lazily. When specificAccountID is non-nil it is validated
	// against the purpose's expected account type instead.
	GetOrCreate(ctx context.Context, tenantID string, purpose domain.AccountPurpose, specificAccountID *string, userID string) (*domain.Account, error)

	GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, tenantID string, params dto.ListAccountsParams) ([]domain.Account, error)
	DeactivateAccount(ctx context.Context, tenantID, accountID, userID string) error
}

// JournalSvcFacade posts and reads balanced journals.
type JournalSvcFacade interface {
	PostJournal(ctx context.Context, tenantID string, req dto.PostJournalRequest, userID string) (*domain.Journal, error)
	GetJournalByID(ctx context.Context, tenantID, journalID string) (*domain.Journal, error)
	ListJournals(ctx context.Context, tenantID string, params dto.ListJournalsParams) ([]domain.Journal, error)
	ListEntriesByAccount(ctx context.Context, tenantID, accountID string, params dto.ListJournalsParams) ([]domain.JournalEntry, error)
	ReverseJournal(ctx context.Context, tenantID, journalID, userID string) (*domain.Journal, error)
}

// InvoiceSvcFacade manages invoice record lifecycles.
type InvoiceSvcFacade interface {
	CreateInvoice(ctx context.Context, tenantID string, req dto.CreateInvoiceRequest, userID string) (*domain.InvoiceRecord, error)
	GetInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.InvoiceRecord, error)
	UpdateInvoice(ctx context.Context, tenantID, invoiceID string, req dto.UpdateInvoiceRequest, userID string) (*domain.InvoiceRecord, error)
	TransitionInvoice(ctx context.Context, tenantID, invoiceID string, next domain.RecordStatus, userID string) error
}

// PaymentSvcFacade applies payments against invoice records.
type PaymentSvcFacade interface {
	ApplyPayment(ctx context.Context, tenantID, invoiceID string, req dto.ApplyPaymentRequest, userID string) (*dto.PaymentResult, error)
}

// ReceivablesSvcFacade produces aged receivables/payables reports.
type ReceivablesSvcFacade interface {
	GetReceivables(ctx context.Context, tenantID string, filters dto.ReportFilters) (*domain.OutstandingReport, error)
	GetPayables(ctx context.Context, tenantID string, filters dto.ReportFilters) (*domain.OutstandingReport, error)
}

// ServiceContainer bundles all service facades for handler registration.
type ServiceContainer struct {
	Chart       ChartSvcFacade
	Journal     JournalSvcFacade
	Invoice     InvoiceSvcFacade
	Payment     PaymentSvcFacade
	Receivables ReceivablesSvcFacade
}
