package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/creamline/milkbooks_backend/internal/core/domain"
)

// JournalLineRequest is one debit or credit line of a journal to be posted.
type JournalLineRequest struct {
	AccountID string           `json:"accountID" binding:"required"`
	Side      domain.EntrySide `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	Amount    decimal.Decimal  `json:"amount" binding:"required,dgt0"`
	Notes     string           `json:"notes"`
}

// PostJournalRequest defines the data needed to post a balanced journal.
type PostJournalRequest struct {
	Date        time.Time            `json:"date" binding:"required"`
	Description string               `json:"description" binding:"required"`
	Lines       []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// ListJournalsParams holds paging parameters for journal listings.
type ListJournalsParams struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// JournalEntryResponse defines the data returned for a journal entry line.
type JournalEntryResponse struct {
	EntryID        string          `json:"entryID"`
	JournalID      string          `json:"journalID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"`
	Side           string          `json:"side"`
	Notes          string          `json:"notes,omitempty"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// JournalResponse defines the data returned for a journal.
type JournalResponse struct {
	JournalID          string                 `json:"journalID"`
	Date               time.Time              `json:"date"`
	Description        string                 `json:"description"`
	Status             string                 `json:"status"`
	Amount             decimal.Decimal        `json:"amount"`
	OriginalJournalID  *string                `json:"originalJournalID,omitempty"`
	ReversingJournalID *string                `json:"reversingJournalID,omitempty"`
	Entries            []JournalEntryResponse `json:"entries,omitempty"`
	CreatedAt          time.Time              `json:"createdAt"`
	CreatedBy          string                 `json:"createdBy"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to its DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	return JournalEntryResponse{
		EntryID:        e.EntryID,
		JournalID:      e.JournalID,
		AccountID:      e.AccountID,
		Amount:         e.Amount,
		Side:           string(e.Side),
		Notes:          e.Notes,
		RunningBalance: e.RunningBalance,
	}
}

// ToJournalEntryResponses converts a slice of entries to DTOs.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	responses := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToJournalEntryResponse(&entries[i])
	}
	return responses
}

// ToJournalResponse converts a domain.Journal to its DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	resp := JournalResponse{
		JournalID:          j.JournalID,
		Date:               j.JournalDate,
		Description:        j.Description,
		Status:             string(j.Status),
		Amount:             j.Amount,
		OriginalJournalID:  j.OriginalJournalID,
		ReversingJournalID: j.ReversingJournalID,
		CreatedAt:          j.CreatedAt,
		CreatedBy:          j.CreatedBy,
	}
	if len(j.Entries) > 0 {
		resp.Entries = ToJournalEntryResponses(j.Entries)
	}
	return resp
}

// ToJournalResponses converts a slice of journals to DTOs.
func ToJournalResponses(journals []domain.Journal) []JournalResponse {
	responses := make([]JournalResponse, len(journals))
	for i := range journals {
		responses[i] = ToJournalResponse(&journals[i])
	}
	return responses
}
