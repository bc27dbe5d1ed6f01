package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal.
type JournalStatus string

const (
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// EntrySide indicates whether a journal entry line is a debit or a credit.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// Journal represents a single, balanced financial event composed of multiple
// entry lines. Journals are immutable once posted; corrections are reversing
// journals, never updates.
type Journal struct {
	JournalID          string          `json:"journalID"`
	TenantID           string          `json:"tenantID"`
	JournalDate        time.Time       `json:"journalDate"`
	Description        string          `json:"description"`
	Status             JournalStatus   `json:"status"`
	Amount             decimal.Decimal `json:"amount"` // sum of the debit side
	OriginalJournalID  *string         `json:"originalJournalID,omitempty"`
	ReversingJournalID *string         `json:"reversingJournalID,omitempty"`
	Entries            []JournalEntry  `json:"entries,omitempty"`
	AuditFields
}

// JournalEntry represents a single line within a Journal, affecting one account.
// Amount is always positive; the side carries the direction.
type JournalEntry struct {
	EntryID        string          `json:"entryID"`
	JournalID      string          `json:"journalID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"`
	Side           EntrySide       `json:"side"`
	Notes          string          `json:"notes"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	AuditFields
}

// Opposite returns the reversing side for an entry.
func (s EntrySide) Opposite() EntrySide {
	if s == Debit {
		return Credit
	}
	return Debit
}
