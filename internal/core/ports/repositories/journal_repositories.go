package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/creamline/milkbooks_backend/internal/core/domain"
)

// JournalReader defines read operations for journal data.
type JournalReader interface {
	// FindJournalByID retrieves a specific journal by its unique identifier.
	FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// ListJournalsByTenant retrieves a page of journals for a tenant,
	// newest journal date first.
	ListJournalsByTenant(ctx context.Context, tenantID string, limit, offset int) ([]domain.Journal, error)
}

// JournalWriter defines write operations for journal data.
type JournalWriter interface {
	// SaveJournal persists a journal with its entries and applies account
	// balance deltas, all within a single database transaction.
	SaveJournal(ctx context.Context, journal domain.Journal, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error

	// SaveReversalJournal persists a reversing journal and marks the
	// original (journal.OriginalJournalID) REVERSED with its reversal link,
	// all within the same database transaction as SaveJournal uses.
	SaveReversalJournal(ctx context.Context, journal domain.Journal, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error
}

// EntryReader defines read operations for journal entry lines.
type EntryReader interface {
	// FindEntriesByJournalID retrieves all entry lines of a journal.
	FindEntriesByJournalID(ctx context.Context, journalID string) ([]domain.JournalEntry, error)

	// ListEntriesByAccountID retrieves a page of entry lines posted against
	// an account, newest first.
	ListEntriesByAccountID(ctx context.Context, tenantID, accountID string, limit, offset int) ([]domain.JournalEntry, error)
}

// JournalRepository combines all journal repository interfaces.
type JournalRepository interface {
	JournalReader
	JournalWriter
	EntryReader
}
