package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/creamline/milkbooks_backend/internal/apperrors"
	"github.com/creamline/milkbooks_backend/internal/core/domain"
	portsrepo "github.com/creamline/milkbooks_backend/internal/core/ports/repositories"
	"github.com/creamline/milkbooks_backend/internal/utils/accounting"
)

const journalColumns = `journal_id, tenant_id, journal_date, description, status, amount, original_journal_id, reversing_journal_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
	accountRepo *PgxAccountRepository
}

// newPgxJournalRepository creates a new repository for journal data.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo *PgxAccountRepository) *PgxJournalRepository {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.JournalRepository = (*PgxJournalRepository)(nil)

// insertJournalWithEntries writes a journal, locks and updates the affected
// account balances, and inserts the entry lines with running balances, all on
// the caller's transaction. Entry lines persist as debit_amount XOR
// credit_amount; a check constraint enforces exactly one side per row.
func insertJournalWithEntries(ctx context.Context, tx pgx.Tx, accountRepo *PgxAccountRepository, journal domain.Journal, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error {
	journalQuery := `
		INSERT INTO journals (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, journalQuery,
		journal.JournalID,
		journal.TenantID,
		journal.JournalDate,
		journal.Description,
		journal.Status,
		journal.Amount,
		journal.OriginalJournalID,
		journal.ReversingJournalID,
		journal.CreatedAt,
		journal.CreatedBy,
		journal.LastUpdatedAt,
		journal.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert journal "+journal.JournalID, err)
	}

	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID := range balanceChanges {
		accountIDs = append(accountIDs, accountID)
	}

	lockedAccounts, err := accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return err
	}

	if err := accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, journal.CreatedBy, journal.CreatedAt); err != nil {
		return err
	}

	// Deterministic entry order for running balance calculation.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EntryID < entries[j].EntryID
	})

	runningBalances := make(map[string]decimal.Decimal, len(lockedAccounts))
	for accountID, account := range lockedAccounts {
		runningBalances[accountID] = account.Balance
	}

	entryQuery := `
		INSERT INTO journal_entries (entry_id, journal_id, account_id, debit_amount, credit_amount, notes, running_balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	batch := &pgx.Batch{}
	for _, entry := range entries {
		account, ok := lockedAccounts[entry.AccountID]
		if !ok {
			return apperrors.NewAppError(500, "locked account "+entry.AccountID+" missing during entry insert", nil)
		}

		signedAmount, err := accounting.CalculateSignedAmount(entry, account.AccountType)
		if err != nil {
			return apperrors.NewAppError(500, "failed to calculate signed amount for entry "+entry.EntryID, err)
		}
		newRunningBalance := runningBalances[entry.AccountID].Add(signedAmount)
		runningBalances[entry.AccountID] = newRunningBalance

		var debitAmount, creditAmount decimal.NullDecimal
		if entry.Side == domain.Debit {
			debitAmount = decimal.NullDecimal{Decimal: entry.Amount, Valid: true}
		} else {
			creditAmount = decimal.NullDecimal{Decimal: entry.Amount, Valid: true}
		}

		batch.Queue(entryQuery,
			entry.EntryID,
			entry.JournalID,
			entry.AccountID,
			debitAmount,
			creditAmount,
			entry.Notes,
			newRunningBalance,
			journal.CreatedAt,
			journal.CreatedBy,
			journal.CreatedAt,
			journal.CreatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute entry batch for journal "+journal.JournalID, err)
	}
	return nil
}

// SaveJournal persists a journal with its entries and balance changes in a
// single database transaction: all rows land or none do.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertJournalWithEntries(ctx, tx, r.accountRepo, journal, entries, balanceChanges); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func scanJournal(row pgx.Row) (*domain.Journal, error) {
	var j domain.Journal
	err := row.Scan(
		&j.JournalID,
		&j.TenantID,
		&j.JournalDate,
		&j.Description,
		&j.Status,
		&j.Amount,
		&j.OriginalJournalID,
		&j.ReversingJournalID,
		&j.CreatedAt,
		&j.CreatedBy,
		&j.LastUpdatedAt,
		&j.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan journal row", err)
	}
	return &j, nil
}

// FindJournalByID retrieves a journal by its ID, without entries.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	query := `
		SELECT ` + journalColumns + `
		FROM journals
		WHERE journal_id = $1;
	`
	return scanJournal(r.Pool.QueryRow(ctx, query, journalID))
}

// ListJournalsByTenant retrieves a page of journals, newest date first.
func (r *PgxJournalRepository) ListJournalsByTenant(ctx context.Context, tenantID string, limit, offset int) ([]domain.Journal, error) {
	query := `
		SELECT ` + journalColumns + `
		FROM journals
		WHERE tenant_id = $1
		ORDER BY journal_date DESC, created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query journals for tenant "+tenantID, err)
	}
	defer rows.Close()

	journals := []domain.Journal{}
	for rows.Next() {
		journal, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		journals = append(journals, *journal)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating journal rows", err)
	}
	return journals, nil
}

// SaveReversalJournal persists a reversing journal with its entries and
// balance changes, and marks the original journal REVERSED with the reversal
// link, in one database transaction. The status guard on the UPDATE makes a
// concurrent second reversal lose with ErrConflict instead of double-posting.
func (r *PgxJournalRepository) SaveReversalJournal(ctx context.Context, journal domain.Journal, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error {
	if journal.OriginalJournalID == nil {
		return apperrors.NewAppError(500, "reversing journal "+journal.JournalID+" has no original journal link", nil)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertJournalWithEntries(ctx, tx, r.accountRepo, journal, entries, balanceChanges); err != nil {
		return err
	}

	query := `
		UPDATE journals
		SET status = $2, reversing_journal_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE journal_id = $1 AND status = $6;
	`
	tag, err := tx.Exec(ctx, query, *journal.OriginalJournalID, domain.Reversed, journal.JournalID, journal.LastUpdatedAt, journal.LastUpdatedBy, domain.Posted)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark journal "+*journal.OriginalJournalID+" reversed", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: journal %s is no longer POSTED", apperrors.ErrConflict, *journal.OriginalJournalID)
	}
	return r.Commit(ctx, tx)
}

const entrySelect = `
	SELECT entry_id, journal_id, account_id, debit_amount, credit_amount, notes, running_balance, created_at, created_by, last_updated_at, last_updated_by
`

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	var debitAmount, creditAmount decimal.NullDecimal
	err := row.Scan(
		&e.EntryID,
		&e.JournalID,
		&e.AccountID,
		&debitAmount,
		&creditAmount,
		&e.Notes,
		&e.RunningBalance,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan journal entry row", err)
	}
	if debitAmount.Valid {
		e.Side = domain.Debit
		e.Amount = debitAmount.Decimal
	} else {
		e.Side = domain.Credit
		e.Amount = creditAmount.Decimal
	}
	return &e, nil
}

// FindEntriesByJournalID retrieves all entry lines of a journal.
func (r *PgxJournalRepository) FindEntriesByJournalID(ctx context.Context, journalID string) ([]domain.JournalEntry, error) {
	query := entrySelect + `
		FROM journal_entries
		WHERE journal_id = $1
		ORDER BY entry_id;
	`
	rows, err := r.Pool.Query(ctx, query, journalID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for journal "+journalID, err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows for journal "+journalID, err)
	}
	return entries, nil
}

// ListEntriesByAccountID retrieves a page of entry lines posted against an
// account of the tenant, newest journal first.
func (r *PgxJournalRepository) ListEntriesByAccountID(ctx context.Context, tenantID, accountID string, limit, offset int) ([]domain.JournalEntry, error) {
	query := `
		SELECT e.entry_id, e.journal_id, e.account_id, e.debit_amount, e.credit_amount, e.notes, e.running_balance, e.created_at, e.created_by, e.last_updated_at, e.last_updated_by
		FROM journal_entries e
		JOIN journals j ON e.journal_id = j.journal_id
		WHERE e.account_id = $1 AND j.tenant_id = $2
		ORDER BY j.journal_date DESC, e.created_at DESC, e.entry_id
		LIMIT $3 OFFSET $4;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, tenantID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for account "+accountID, err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows for account "+accountID, err)
	}
	return entries, nil
}
