package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/creamline/milkbooks_backend/internal/core/domain"
)

// InvoiceFilter narrows invoice record selections for reporting.
type InvoiceFilter struct {
	CounterpartyID *string
	DateFrom       *time.Time
	DateTo         *time.Time
	PaymentStatus  *domain.PaymentStatus
}

// InvoiceReader defines read operations for invoice records.
type InvoiceReader interface {
	// FindInvoiceByID retrieves an invoice record scoped to a tenant.
	FindInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.InvoiceRecord, error)

	// ListOutstandingInvoices retrieves all non-deleted, not fully paid
	// invoice records of a tenant in the given direction, occurred_at
	// descending with insertion order as the tie-breaker.
	ListOutstandingInvoices(ctx context.Context, tenantID string, direction domain.InvoiceDirection, filter InvoiceFilter) ([]domain.InvoiceRecord, error)
}

// InvoiceWriter defines write operations for invoice records.
type InvoiceWriter interface {
	// SaveInvoiceWithJournal persists a new invoice record together with its
	// initial journal in one database transaction.
	SaveInvoiceWithJournal(ctx context.Context, invoice domain.InvoiceRecord, journal domain.Journal, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error

	// UpdateInvoiceFields updates pre-settlement fields (quantity, unit
	// price, occurred_at, notes) and the derived total.
	UpdateInvoiceFields(ctx context.Context, invoice domain.InvoiceRecord) error

	// UpdateInvoiceStatus records a lifecycle transition.
	UpdateInvoiceStatus(ctx context.Context, tenantID, invoiceID string, status domain.RecordStatus, userID string, now time.Time) error
}

// PaymentApplier applies a payment to an invoice and posts the matching
// journal in one database transaction: either both the invoice mutation and
// the ledger posting are persisted, or neither is.
type PaymentApplier interface {
	ApplyPaymentWithJournal(ctx context.Context, invoice domain.InvoiceRecord, event domain.PaymentEvent, journal domain.Journal, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error
}

// InvoiceRepository combines all invoice repository interfaces.
type InvoiceRepository interface {
	InvoiceReader
	InvoiceWriter
	PaymentApplier
}
