package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceKind tags the variant of a source document carrying an outstanding
// balance. All variants share the same payment lifecycle and projection.
type InvoiceKind string

const (
	KindMilkCollection InvoiceKind = "MILK_COLLECTION" // tenant buys milk from a supplier
	KindMilkSale       InvoiceKind = "MILK_SALE"       // tenant sells milk to a customer
	KindInventorySale  InvoiceKind = "INVENTORY_SALE"  // tenant sells inventory on credit
	KindLoan           InvoiceKind = "LOAN"            // tenant lends money to a counterparty
)

// InvoiceDirection tells which way the money flows relative to the tenant.
type InvoiceDirection string

const (
	Receivable InvoiceDirection = "RECEIVABLE" // tenant is owed
	Payable    InvoiceDirection = "PAYABLE"    // tenant owes
)

// Direction derives the money direction from the invoice kind. Collections
// are the only payable variant: the tenant owes the supplier for the milk.
func (k InvoiceKind) Direction() InvoiceDirection {
	if k == KindMilkCollection {
		return Payable
	}
	return Receivable
}

// PaymentStatus tracks how much of an invoice record has been settled.
type PaymentStatus string

const (
	Unpaid  PaymentStatus = "UNPAID"
	Partial PaymentStatus = "PARTIAL"
	Paid    PaymentStatus = "PAID"
)

// RecordStatus is the lifecycle state of an invoice record. Terminal states
// (REJECTED, CANCELLED, DELETED) never re-enter non-terminal ones.
type RecordStatus string

const (
	StatusPending   RecordStatus = "PENDING"
	StatusAccepted  RecordStatus = "ACCEPTED"
	StatusRejected  RecordStatus = "REJECTED"
	StatusCancelled RecordStatus = "CANCELLED"
	StatusDeleted   RecordStatus = "DELETED"
)

// IsTerminal reports whether a lifecycle state admits no further transitions.
func (s RecordStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCancelled || s == StatusDeleted
}

// CanTransitionTo enforces the lifecycle state machine:
// pending -> accepted|rejected, accepted -> cancelled|deleted.
func (s RecordStatus) CanTransitionTo(next RecordStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusAccepted || next == StatusRejected
	case StatusAccepted:
		return next == StatusCancelled || next == StatusDeleted
	default:
		return false
	}
}

// PaymentEvent is one entry in an invoice's append-only payment history.
type PaymentEvent struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes,omitempty"`
}

// InvoiceRecord is the umbrella source document for anything that carries an
// outstanding balance: milk collections, milk sales, inventory sales on
// credit, and loans. It is owned exclusively by the tenant that created it;
// CounterpartyID is a back-reference only.
type InvoiceRecord struct {
	InvoiceID      string          `json:"invoiceID"`
	TenantID       string          `json:"tenantID"`
	Kind           InvoiceKind     `json:"kind"`
	CounterpartyID string          `json:"counterpartyID"`
	Quantity       decimal.Decimal `json:"quantity"`  // litres or units; 1 for loans
	UnitPrice      decimal.Decimal `json:"unitPrice"` // price per unit; principal for loans
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	AmountPaid     decimal.Decimal `json:"amountPaid"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus"`
	PaymentHistory []PaymentEvent  `json:"paymentHistory"`
	OccurredAt     time.Time       `json:"occurredAt"`
	Status         RecordStatus    `json:"status"`
	Notes          string          `json:"notes"`
	AuditFields
}

// Outstanding is the unpaid remainder. Derived, never stored.
func (r *InvoiceRecord) Outstanding() decimal.Decimal {
	return r.TotalAmount.Sub(r.AmountPaid)
}

// DaysOutstanding is the whole-day age of the record relative to now.
func (r *InvoiceRecord) DaysOutstanding(now time.Time) int {
	return DaysBetween(r.OccurredAt, now)
}

// DerivePaymentStatus computes the payment status implied by the amounts.
// Comparisons are exact decimal comparisons, no tolerance.
func DerivePaymentStatus(amountPaid, totalAmount decimal.Decimal) PaymentStatus {
	if amountPaid.GreaterThanOrEqual(totalAmount) {
		return Paid
	}
	if amountPaid.GreaterThan(decimal.Zero) {
		return Partial
	}
	return Unpaid
}

// OutstandingView is the shared projection of any invoice variant into the
// receivables/payables report. One projection for all four kinds.
type OutstandingView struct {
	InvoiceID       string           `json:"invoiceID"`
	Kind            InvoiceKind      `json:"kind"`
	Direction       InvoiceDirection `json:"direction"`
	CounterpartyID  string           `json:"counterpartyID"`
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
	AmountPaid      decimal.Decimal  `json:"amountPaid"`
	Outstanding     decimal.Decimal  `json:"outstanding"`
	PaymentStatus   PaymentStatus    `json:"paymentStatus"`
	OccurredAt      time.Time        `json:"occurredAt"`
	DaysOutstanding int              `json:"daysOutstanding"`
	AgingBucket     AgingBucket      `json:"agingBucket"`
}

// ToOutstandingView projects the record for reporting as of now.
func (r *InvoiceRecord) ToOutstandingView(now time.Time) OutstandingView {
	days := r.DaysOutstanding(now)
	return OutstandingView{
		InvoiceID:       r.InvoiceID,
		Kind:            r.Kind,
		Direction:       r.Kind.Direction(),
		CounterpartyID:  r.CounterpartyID,
		TotalAmount:     r.TotalAmount,
		AmountPaid:      r.AmountPaid,
		Outstanding:     r.Outstanding(),
		PaymentStatus:   r.PaymentStatus,
		OccurredAt:      r.OccurredAt,
		DaysOutstanding: days,
		AgingBucket:     ClassifyAge(days),
	}
}
