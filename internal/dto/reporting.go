package dto

import (
	"time"

	"github.com/creamline/milkbooks_backend/internal/core/domain"
)

// ReportFilters narrows the receivables/payables report selection.
type ReportFilters struct {
	CounterpartyID *string               `form:"counterparty"`
	DateFrom       *time.Time            `form:"dateFrom" time_format:"2006-01-02"`
	DateTo         *time.Time            `form:"dateTo" time_format:"2006-01-02"`
	PaymentStatus  *domain.PaymentStatus `form:"paymentStatus"`
}
