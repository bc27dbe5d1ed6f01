package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/creamline/milkbooks_backend/internal/core/domain"
)

// CreateInvoiceRequest defines the data needed to record a collection, sale,
// inventory sale or loan. For loans, Quantity is 1 and UnitPrice is the
// principal. RevenueAccountID/ExpenseAccountID optionally direct the posting
// at a specific account instead of the tenant default.
type CreateInvoiceRequest struct {
	Kind             domain.InvoiceKind `json:"kind" binding:"required,oneof=MILK_COLLECTION MILK_SALE INVENTORY_SALE LOAN"`
	CounterpartyID   string             `json:"counterpartyID" binding:"required"`
	Quantity         decimal.Decimal    `json:"quantity" binding:"required,dgt0"`
	UnitPrice        decimal.Decimal    `json:"unitPrice" binding:"required,dgt0"`
	OccurredAt       time.Time          `json:"occurredAt" binding:"required"`
	Prepaid          bool               `json:"prepaid"`
	Notes            string             `json:"notes"`
	RevenueAccountID *string            `json:"revenueAccountID"`
	ExpenseAccountID *string            `json:"expenseAccountID"`
}

// UpdateInvoiceRequest defines pre-settlement edits to an invoice record.
// Pointers distinguish omitted fields from zero values.
type UpdateInvoiceRequest struct {
	Quantity   *decimal.Decimal `json:"quantity"`
	UnitPrice  *decimal.Decimal `json:"unitPrice"`
	OccurredAt *time.Time       `json:"occurredAt"`
	Notes      *string          `json:"notes"`
}

// TransitionInvoiceRequest requests a lifecycle transition.
type TransitionInvoiceRequest struct {
	Status domain.RecordStatus `json:"status" binding:"required,oneof=ACCEPTED REJECTED CANCELLED DELETED"`
}

// PaymentEventResponse is one entry of an invoice's payment history.
type PaymentEventResponse struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes,omitempty"`
}

// InvoiceResponse defines the data returned for an invoice record.
type InvoiceResponse struct {
	InvoiceID      string                 `json:"invoiceID"`
	Kind           domain.InvoiceKind     `json:"kind"`
	Direction      string                 `json:"direction"`
	CounterpartyID string                 `json:"counterpartyID"`
	Quantity       decimal.Decimal        `json:"quantity"`
	UnitPrice      decimal.Decimal        `json:"unitPrice"`
	TotalAmount    decimal.Decimal        `json:"totalAmount"`
	AmountPaid     decimal.Decimal        `json:"amountPaid"`
	Outstanding    decimal.Decimal        `json:"outstanding"`
	PaymentStatus  domain.PaymentStatus   `json:"paymentStatus"`
	PaymentHistory []PaymentEventResponse `json:"paymentHistory"`
	OccurredAt     time.Time              `json:"occurredAt"`
	Status         domain.RecordStatus    `json:"status"`
	Notes          string                 `json:"notes,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// ToInvoiceResponse converts a domain.InvoiceRecord to its DTO.
func ToInvoiceResponse(r *domain.InvoiceRecord) InvoiceResponse {
	history := make([]PaymentEventResponse, len(r.PaymentHistory))
	for i, ev := range r.PaymentHistory {
		history[i] = PaymentEventResponse{Date: ev.Date, Amount: ev.Amount, Notes: ev.Notes}
	}
	return InvoiceResponse{
		InvoiceID:      r.InvoiceID,
		Kind:           r.Kind,
		Direction:      string(r.Kind.Direction()),
		CounterpartyID: r.CounterpartyID,
		Quantity:       r.Quantity,
		UnitPrice:      r.UnitPrice,
		TotalAmount:    r.TotalAmount,
		AmountPaid:     r.AmountPaid,
		Outstanding:    r.Outstanding(),
		PaymentStatus:  r.PaymentStatus,
		PaymentHistory: history,
		OccurredAt:     r.OccurredAt,
		Status:         r.Status,
		Notes:          r.Notes,
		CreatedAt:      r.CreatedAt,
	}
}
