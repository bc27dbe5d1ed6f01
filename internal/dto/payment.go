package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/creamline/milkbooks_backend/internal/core/domain"
)

// ApplyPaymentRequest defines the data needed to apply a payment against an
// invoice record. Date defaults to now when omitted.
type ApplyPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Date   *time.Time      `json:"date"`
	Notes  string          `json:"notes"`
}

// PaymentResult reports the invoice state after a payment was applied.
type PaymentResult struct {
	InvoiceID     string               `json:"invoiceID"`
	AmountPaid    decimal.Decimal      `json:"amountPaid"`
	Outstanding   decimal.Decimal      `json:"outstanding"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	JournalID     string               `json:"journalID"`
}
