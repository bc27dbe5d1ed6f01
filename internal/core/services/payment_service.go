package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/creamline/milkbooks_backend/internal/apperrors"
	"github.com/creamline/milkbooks_backend/internal/core/domain"
	portsrepo "github.com/creamline/milkbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/creamline/milkbooks_backend/internal/core/ports/services"
	"github.com/creamline/milkbooks_backend/internal/dto"
)

// ErrInvoiceNotPayable is returned when a payment targets an invoice in a
// terminal lifecycle state.
var ErrInvoiceNotPayable = errors.New("invoice does not accept payments in its current state")

// paymentService applies partial or full payments against invoice records.
// The invoice mutation and the matching AR/AP journal are committed in one
// database transaction; they can never diverge.
type paymentService struct {
	BaseService
	invoiceRepo portsrepo.InvoiceRepository
	chartSvc    portssvc.ChartSvcFacade
}

// NewPaymentService creates a new payment application service.
func NewPaymentService(invoiceRepo portsrepo.InvoiceRepository, chartSvc portssvc.ChartSvcFacade) portssvc.PaymentSvcFacade {
	return &paymentService{
		invoiceRepo: invoiceRepo,
		chartSvc:    chartSvc,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// ApplyPayment applies req.Amount against the invoice's outstanding balance.
// Payments never decrement; payment history is append-only. The AR/AP and
// Cash accounts are provisioned lazily, since the invoice may have been
// created already-paid before any balance account existed.
func (s *paymentService) ApplyPayment(ctx context.Context, tenantID, invoiceID string, req dto.ApplyPaymentRequest, userID string) (*dto.PaymentResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, tenantID, invoiceID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load invoice for payment", slog.String("invoice_id", invoiceID))
		}
		return nil, err
	}

	if invoice.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: invoice %s is %s", ErrInvoiceNotPayable, invoiceID, invoice.Status)
	}

	outstanding := invoice.Outstanding()
	if req.Amount.GreaterThan(outstanding) {
		return nil, &apperrors.OverpaymentError{InvoiceID: invoiceID, Outstanding: outstanding}
	}

	now := time.Now().UTC()
	paymentDate := now
	if req.Date != nil {
		paymentDate = *req.Date
	}

	event := domain.PaymentEvent{
		Date:   paymentDate,
		Amount: req.Amount,
		Notes:  req.Notes,
	}

	invoice.AmountPaid = invoice.AmountPaid.Add(req.Amount)
	invoice.PaymentStatus = domain.DerivePaymentStatus(invoice.AmountPaid, invoice.TotalAmount)
	invoice.PaymentHistory = append(invoice.PaymentHistory, event)
	invoice.LastUpdatedAt = now
	invoice.LastUpdatedBy = userID

	cashAccount, err := s.chartSvc.GetOrCreate(ctx, tenantID, domain.PurposeCash, nil, userID)
	if err != nil {
		return nil, err
	}

	var debitAccount, creditAccount *domain.Account
	var description string
	if invoice.Kind.Direction() == domain.Receivable {
		// Receivable payment received: Debit Cash, Credit AR.
		creditAccount, err = s.chartSvc.GetOrCreate(ctx, tenantID, domain.PurposeAccountsReceivable, nil, userID)
		if err != nil {
			return nil, err
		}
		debitAccount = cashAccount
		description = fmt.Sprintf("Payment received from %s", invoice.CounterpartyID)
	} else {
		// Payable payment made: Debit AP, Credit Cash.
		debitAccount, err = s.chartSvc.GetOrCreate(ctx, tenantID, domain.PurposeAccountsPayable, nil, userID)
		if err != nil {
			return nil, err
		}
		creditAccount = cashAccount
		description = fmt.Sprintf("Payment made to %s", invoice.CounterpartyID)
	}

	journal, entries := buildTwoLineJournal(tenantID, paymentDate, description, debitAccount.AccountID, creditAccount.AccountID, req.Amount, userID, now)

	balanceChanges, err := computeBalanceChanges(entries, map[string]domain.AccountType{
		debitAccount.AccountID:  debitAccount.AccountType,
		creditAccount.AccountID: creditAccount.AccountType,
	})
	if err != nil {
		return nil, fmt.Errorf("internal error calculating balance changes: %w", err)
	}

	if err := s.invoiceRepo.ApplyPaymentWithJournal(ctx, *invoice, event, journal, entries, balanceChanges); err != nil {
		s.LogError(ctx, err, "Failed to apply payment",
			slog.String("invoice_id", invoiceID),
			slog.String("amount", req.Amount.String()))
		return nil, err
	}

	s.LogInfo(ctx, "Payment applied",
		slog.String("invoice_id", invoiceID),
		slog.String("amount", req.Amount.String()),
		slog.String("payment_status", string(invoice.PaymentStatus)),
		slog.String("journal_id", journal.JournalID))

	return &dto.PaymentResult{
		InvoiceID:     invoice.InvoiceID,
		AmountPaid:    invoice.AmountPaid,
		Outstanding:   invoice.Outstanding(),
		PaymentStatus: invoice.PaymentStatus,
		JournalID:     journal.JournalID,
	}, nil
}
