package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/creamline/milkbooks_backend/internal/apperrors"
	"github.com/creamline/milkbooks_backend/internal/core/domain"
	portsrepo "github.com/creamline/milkbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/creamline/milkbooks_backend/internal/core/ports/services"
	"github.com/creamline/milkbooks_backend/internal/dto"
)

var (
	ErrInvalidTransition = errors.New("invalid invoice status transition")
	ErrAlreadySettling   = errors.New("invoice fields cannot change after a payment was recorded")
)

// invoiceService manages the lifecycle of invoice records: milk collections,
// milk sales, inventory sales on credit and loans. Creation posts the initial
// journal in the same database transaction as the invoice row.
type invoiceService struct {
	BaseService
	invoiceRepo portsrepo.InvoiceRepository
	chartSvc    portssvc.ChartSvcFacade
}

// NewInvoiceService creates a new invoice service.
func NewInvoiceService(invoiceRepo portsrepo.InvoiceRepository, chartSvc portssvc.ChartSvcFacade) portssvc.InvoiceSvcFacade {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		chartSvc:    chartSvc,
	}
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// initialPosting builds the journal lines for a freshly created invoice:
//
//	milk/inventory sale, prepaid:  Debit Cash      / Credit Revenue
//	milk/inventory sale, unpaid:   Debit AR        / Credit Revenue
//	loan disbursement:             Debit AR        / Credit Cash
//	milk collection, prepaid:      Debit Expense   / Credit Cash
//	milk collection, unpaid:       Debit Expense   / Credit AP
func (s *invoiceService) initialPosting(ctx context.Context, tenantID string, req dto.CreateInvoiceRequest, prepaid bool, userID string) (debit, credit *domain.Account, err error) {
	switch {
	case req.Kind == domain.KindLoan:
		debit, err = s.chartSvc.GetOrCreate(ctx, tenantID, domain.PurposeAccountsReceivable, nil, userID)
		if err != nil {
			return nil, nil, err
		}
		credit, err = s.chartSvc.GetOrCreate(ctx, tenantID, domain.PurposeCash, nil, userID)
		return debit, credit, err

	case req.Kind.Direction() == domain.Receivable:
		credit, err = s.chartSvc.GetOrCreate(ctx, tenantID, domain.PurposeRevenue, req.RevenueAccountID, userID)
		if err != nil {
			return nil, nil, err
		}
		debitPurpose := domain.PurposeAccountsReceivable
		if prepaid {
			debitPurpose = domain.PurposeCash
		}
		debit, err = s.chartSvc.GetOrCreate(ctx, tenantID, debitPurpose, nil, userID)
		return debit, credit, err

	default: // milk collection, payable
		debit, err = s.chartSvc.GetOrCreate(ctx, tenantID, domain.PurposeExpense, req.ExpenseAccountID, userID)
		if err != nil {
			return nil, nil, err
		}
		creditPurpose := domain.PurposeAccountsPayable
		if prepaid {
			creditPurpose = domain.PurposeCash
		}
		credit, err = s.chartSvc.GetOrCreate(ctx, tenantID, creditPurpose, nil, userID)
		return debit, credit, err
	}
}

// CreateInvoice records a collection, sale or loan, seeds the payment state,
// and posts the initial journal atomically with the invoice row.
func (s *invoiceService) CreateInvoice(ctx context.Context, tenantID string, req dto.CreateInvoiceRequest, userID string) (*domain.InvoiceRecord, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	if req.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: unit price must be positive", apperrors.ErrValidation)
	}
	if req.Kind == domain.KindLoan && req.Prepaid {
		return nil, fmt.Errorf("%w: a loan cannot be created pre-paid", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	totalAmount := req.Quantity.Mul(req.UnitPrice)

	amountPaid := decimal.Zero
	paymentHistory := []domain.PaymentEvent{}
	if req.Prepaid {
		amountPaid = totalAmount
		paymentHistory = append(paymentHistory, domain.PaymentEvent{
			Date:   req.OccurredAt,
			Amount: totalAmount,
			Notes:  "settled at creation",
		})
	}

	invoice := domain.InvoiceRecord{
		InvoiceID:      uuid.NewString(),
		TenantID:       tenantID,
		Kind:           req.Kind,
		CounterpartyID: req.CounterpartyID,
		Quantity:       req.Quantity,
		UnitPrice:      req.UnitPrice,
		TotalAmount:    totalAmount,
		AmountPaid:     amountPaid,
		PaymentStatus:  domain.DerivePaymentStatus(amountPaid, totalAmount),
		PaymentHistory: paymentHistory,
		OccurredAt:     req.OccurredAt,
		Status:         domain.StatusPending,
		Notes:          req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	debitAccount, creditAccount, err := s.initialPosting(ctx, tenantID, req, req.Prepaid, userID)
	if err != nil {
		return nil, err
	}

	journal, entries := buildTwoLineJournal(tenantID, req.OccurredAt, describeInvoice(invoice), debitAccount.AccountID, creditAccount.AccountID, totalAmount, userID, now)

	balanceChanges, err := computeBalanceChanges(entries, map[string]domain.AccountType{
		debitAccount.AccountID:  debitAccount.AccountType,
		creditAccount.AccountID: creditAccount.AccountType,
	})
	if err != nil {
		return nil, fmt.Errorf("internal error calculating balance changes: %w", err)
	}

	if err := s.invoiceRepo.SaveInvoiceWithJournal(ctx, invoice, journal, entries, balanceChanges); err != nil {
		s.LogError(ctx, err, "Failed to save invoice with initial journal",
			slog.String("tenant_id", tenantID),
			slog.String("kind", string(req.Kind)))
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.LogInfo(ctx, "Invoice created",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("kind", string(invoice.Kind)),
		slog.String("journal_id", journal.JournalID))
	return &invoice, nil
}

// GetInvoiceByID retrieves one invoice record of the tenant.
func (s *invoiceService) GetInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.InvoiceRecord, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, tenantID, invoiceID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find invoice by ID", slog.String("invoice_id", invoiceID))
		}
		return nil, err
	}
	return invoice, nil
}

// UpdateInvoice applies pre-settlement edits. Once any payment has been
// recorded the quantity and price are frozen; only notes may change.
func (s *invoiceService) UpdateInvoice(ctx context.Context, tenantID, invoiceID string, req dto.UpdateInvoiceRequest, userID string) (*domain.InvoiceRecord, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: invoice %s is %s", apperrors.ErrConflict, invoiceID, invoice.Status)
	}

	settled := invoice.AmountPaid.GreaterThan(decimal.Zero)
	updated := false

	if req.Quantity != nil || req.UnitPrice != nil || req.OccurredAt != nil {
		if settled {
			return nil, fmt.Errorf("%w: invoice %s", ErrAlreadySettling, invoiceID)
		}
		if req.Quantity != nil {
			if req.Quantity.LessThanOrEqual(decimal.Zero) {
				return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
			}
			invoice.Quantity = *req.Quantity
			updated = true
		}
		if req.UnitPrice != nil {
			if req.UnitPrice.LessThanOrEqual(decimal.Zero) {
				return nil, fmt.Errorf("%w: unit price must be positive", apperrors.ErrValidation)
			}
			invoice.UnitPrice = *req.UnitPrice
			updated = true
		}
		if req.OccurredAt != nil {
			invoice.OccurredAt = *req.OccurredAt
			updated = true
		}
		invoice.TotalAmount = invoice.Quantity.Mul(invoice.UnitPrice)
		invoice.PaymentStatus = domain.DerivePaymentStatus(invoice.AmountPaid, invoice.TotalAmount)
	}

	if req.Notes != nil {
		invoice.Notes = *req.Notes
		updated = true
	}

	if !updated {
		return invoice, nil
	}

	invoice.LastUpdatedAt = time.Now().UTC()
	invoice.LastUpdatedBy = userID

	if err := s.invoiceRepo.UpdateInvoiceFields(ctx, *invoice); err != nil {
		s.LogError(ctx, err, "Failed to update invoice fields", slog.String("invoice_id", invoiceID))
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	s.LogInfo(ctx, "Invoice updated", slog.String("invoice_id", invoiceID))
	return invoice, nil
}

// TransitionInvoice applies a lifecycle transition, enforcing the state
// machine in the domain type. Terminal states never transition again.
func (s *invoiceService) TransitionInvoice(ctx context.Context, tenantID, invoiceID string, next domain.RecordStatus, userID string) error {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, tenantID, invoiceID)
	if err != nil {
		return err
	}

	if !invoice.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, invoice.Status, next)
	}

	if err := s.invoiceRepo.UpdateInvoiceStatus(ctx, tenantID, invoiceID, next, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to update invoice status",
			slog.String("invoice_id", invoiceID),
			slog.String("status", string(next)))
		return fmt.Errorf("failed to update invoice status: %w", err)
	}

	s.LogInfo(ctx, "Invoice status changed",
		slog.String("invoice_id", invoiceID),
		slog.String("from", string(invoice.Status)),
		slog.String("to", string(next)))
	return nil
}

// describeInvoice builds the journal description for an invoice posting.
func describeInvoice(invoice domain.InvoiceRecord) string {
	switch invoice.Kind {
	case domain.KindMilkCollection:
		return fmt.Sprintf("Milk collection from %s (%s L @ %s)", invoice.CounterpartyID, invoice.Quantity.String(), invoice.UnitPrice.String())
	case domain.KindMilkSale:
		return fmt.Sprintf("Milk sale to %s (%s L @ %s)", invoice.CounterpartyID, invoice.Quantity.String(), invoice.UnitPrice.String())
	case domain.KindInventorySale:
		return fmt.Sprintf("Inventory sale to %s", invoice.CounterpartyID)
	default:
		return fmt.Sprintf("Loan disbursed to %s", invoice.CounterpartyID)
	}
}

// buildTwoLineJournal assembles the standard two-line posting used by invoice
// creation and payment application.
func buildTwoLineJournal(tenantID string, date time.Time, description, debitAccountID, creditAccountID string, amount decimal.Decimal, userID string, now time.Time) (domain.Journal, []domain.JournalEntry) {
	journalID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	journal := domain.Journal{
		JournalID:   journalID,
		TenantID:    tenantID,
		JournalDate: date,
		Description: description,
		Status:      domain.Posted,
		Amount:      amount,
		AuditFields: audit,
	}

	entries := []domain.JournalEntry{
		{
			EntryID:     uuid.NewString(),
			JournalID:   journalID,
			AccountID:   debitAccountID,
			Amount:      amount,
			Side:        domain.Debit,
			AuditFields: audit,
		},
		{
			EntryID:     uuid.NewString(),
			JournalID:   journalID,
			AccountID:   creditAccountID,
			Amount:      amount,
			Side:        domain.Credit,
			AuditFields: audit,
		},
	}
	return journal, entries
}
