package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/creamline/milkbooks_backend/internal/apperrors"
	"github.com/creamline/milkbooks_backend/internal/core/domain"
	portsrepo "github.com/creamline/milkbooks_backend/internal/core/ports/repositories"
)

const invoiceColumns = `invoice_id, tenant_id, kind, counterparty_id, quantity, unit_price, total_amount, amount_paid, payment_status, payment_history, occurred_at, status, notes, created_at, created_by, last_updated_at, last_updated_by`

type PgxInvoiceRepository struct {
	BaseRepository
	accountRepo *PgxAccountRepository
}

// newPgxInvoiceRepository creates a new repository for invoice record data.
func newPgxInvoiceRepository(pool *pgxpool.Pool, accountRepo *PgxAccountRepository) *PgxInvoiceRepository {
	return &PgxInvoiceRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.InvoiceRepository = (*PgxInvoiceRepository)(nil)

func scanInvoice(row pgx.Row) (*domain.InvoiceRecord, error) {
	var inv domain.InvoiceRecord
	err := row.Scan(
		&inv.InvoiceID,
		&inv.TenantID,
		&inv.Kind,
		&inv.CounterpartyID,
		&inv.Quantity,
		&inv.UnitPrice,
		&inv.TotalAmount,
		&inv.AmountPaid,
		&inv.PaymentStatus,
		&inv.PaymentHistory,
		&inv.OccurredAt,
		&inv.Status,
		&inv.Notes,
		&inv.CreatedAt,
		&inv.CreatedBy,
		&inv.LastUpdatedAt,
		&inv.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan invoice row", err)
	}
	return &inv, nil
}

// SaveInvoiceWithJournal persists a new invoice record together with its
// initial journal, entries, and balance updates in a single transaction.
func (r *PgxInvoiceRepository) SaveInvoiceWithJournal(ctx context.Context, invoice domain.InvoiceRecord, journal domain.Journal, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error {
	historyJSON, err := json.Marshal(invoice.PaymentHistory)
	if err != nil {
		return apperrors.NewAppError(500, "failed to marshal payment history for invoice "+invoice.InvoiceID, err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	insertQuery := `
		INSERT INTO invoice_records (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err = tx.Exec(ctx, insertQuery,
		invoice.InvoiceID,
		invoice.TenantID,
		invoice.Kind,
		invoice.CounterpartyID,
		invoice.Quantity,
		invoice.UnitPrice,
		invoice.TotalAmount,
		invoice.AmountPaid,
		invoice.PaymentStatus,
		historyJSON,
		invoice.OccurredAt,
		invoice.Status,
		invoice.Notes,
		invoice.CreatedAt,
		invoice.CreatedBy,
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert invoice "+invoice.InvoiceID, err)
	}

	if err := insertJournalWithEntries(ctx, tx, r.accountRepo, journal, entries, balanceChanges); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// FindInvoiceByID retrieves an invoice record scoped to a tenant.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.InvoiceRecord, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoice_records
		WHERE invoice_id = $1 AND tenant_id = $2;
	`
	return scanInvoice(r.Pool.QueryRow(ctx, query, invoiceID, tenantID))
}

// ListOutstandingInvoices retrieves the non-deleted, not fully paid invoice
// records of a tenant in the given direction. Collections are payable, all
// other kinds receivable. Newest occurrence first, insertion order breaks
// ties.
func (r *PgxInvoiceRepository) ListOutstandingInvoices(ctx context.Context, tenantID string, direction domain.InvoiceDirection, filter portsrepo.InvoiceFilter) ([]domain.InvoiceRecord, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoice_records
		WHERE tenant_id = $1
		  AND status != 'DELETED'
		  AND payment_status != 'PAID'
	`
	args := []any{tenantID}

	if direction == domain.Payable {
		query += ` AND kind = 'MILK_COLLECTION'`
	} else {
		query += ` AND kind != 'MILK_COLLECTION'`
	}

	if filter.CounterpartyID != nil {
		args = append(args, *filter.CounterpartyID)
		query += fmt.Sprintf(" AND counterparty_id = $%d", len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(" AND occurred_at >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(" AND occurred_at <= $%d", len(args))
	}
	if filter.PaymentStatus != nil {
		args = append(args, *filter.PaymentStatus)
		query += fmt.Sprintf(" AND payment_status = $%d", len(args))
	}

	query += ` ORDER BY occurred_at DESC, seq DESC;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query outstanding invoices for tenant "+tenantID, err)
	}
	defer rows.Close()

	invoices := []domain.InvoiceRecord{}
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating invoice rows", err)
	}
	return invoices, nil
}

// UpdateInvoiceFields updates the pre-settlement fields and the derived total.
func (r *PgxInvoiceRepository) UpdateInvoiceFields(ctx context.Context, invoice domain.InvoiceRecord) error {
	query := `
		UPDATE invoice_records
		SET quantity = $3, unit_price = $4, total_amount = $5, payment_status = $6, occurred_at = $7, notes = $8, last_updated_at = $9, last_updated_by = $10
		WHERE invoice_id = $1 AND tenant_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query,
		invoice.InvoiceID,
		invoice.TenantID,
		invoice.Quantity,
		invoice.UnitPrice,
		invoice.TotalAmount,
		invoice.PaymentStatus,
		invoice.OccurredAt,
		invoice.Notes,
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update invoice "+invoice.InvoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateInvoiceStatus records a lifecycle transition.
func (r *PgxInvoiceRepository) UpdateInvoiceStatus(ctx context.Context, tenantID, invoiceID string, status domain.RecordStatus, userID string, now time.Time) error {
	query := `
		UPDATE invoice_records
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE invoice_id = $1 AND tenant_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, invoiceID, tenantID, status, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update invoice status for "+invoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ApplyPaymentWithJournal applies a payment mutation and posts the settlement
// journal in one transaction. The invoice row is locked and its stored
// amount_paid compared against the state the service computed from; a
// mismatch means a concurrent payment landed first and surfaces as
// ErrConflict so the caller can re-read and retry.
func (r *PgxInvoiceRepository) ApplyPaymentWithJournal(ctx context.Context, invoice domain.InvoiceRecord, event domain.PaymentEvent, journal domain.Journal, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewAppError(500, "failed to marshal payment event for invoice "+invoice.InvoiceID, err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `
		SELECT amount_paid
		FROM invoice_records
		WHERE invoice_id = $1 AND tenant_id = $2
		FOR UPDATE;
	`
	var storedAmountPaid decimal.Decimal
	if err := tx.QueryRow(ctx, lockQuery, invoice.InvoiceID, invoice.TenantID).Scan(&storedAmountPaid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock invoice "+invoice.InvoiceID, err)
	}

	expectedPrevious := invoice.AmountPaid.Sub(event.Amount)
	if !storedAmountPaid.Equal(expectedPrevious) {
		return fmt.Errorf("%w: invoice %s was modified concurrently", apperrors.ErrConflict, invoice.InvoiceID)
	}

	updateQuery := `
		UPDATE invoice_records
		SET amount_paid = $3, payment_status = $4, payment_history = payment_history || $5::jsonb, last_updated_at = $6, last_updated_by = $7
		WHERE invoice_id = $1 AND tenant_id = $2;
	`
	_, err = tx.Exec(ctx, updateQuery,
		invoice.InvoiceID,
		invoice.TenantID,
		invoice.AmountPaid,
		invoice.PaymentStatus,
		eventJSON,
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to apply payment to invoice "+invoice.InvoiceID, err)
	}

	if err := insertJournalWithEntries(ctx, tx, r.accountRepo, journal, entries, balanceChanges); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}
