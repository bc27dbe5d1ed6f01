package domain

import (
	"github.com/shopspring/decimal"
)

// CounterpartyGroup aggregates outstanding invoices for one counterparty.
type CounterpartyGroup struct {
	CounterpartyID   string            `json:"counterparty"`
	TotalOutstanding decimal.Decimal   `json:"totalOutstanding"`
	InvoiceCount     int               `json:"invoiceCount"`
	Invoices         []OutstandingView `json:"invoices"`
}

// OutstandingReport is the aged receivables or payables summary for a tenant.
type OutstandingReport struct {
	Direction        InvoiceDirection    `json:"direction"`
	TotalOutstanding decimal.Decimal     `json:"totalOutstanding"`
	InvoiceCount     int                 `json:"totalInvoices"`
	ByCounterparty   []CounterpartyGroup `json:"byCounterparty"`
	AgingSummary     AgingSummary        `json:"agingSummary"`
	AllInvoices      []OutstandingView   `json:"allInvoices"`
}
