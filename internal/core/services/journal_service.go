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
	"github.com/creamline/milkbooks_backend/internal/utils/accounting"
)

var (
	ErrJournalUnbalanced  = errors.New("journal entries do not balance")
	ErrJournalMinEntries  = errors.New("journal must have at least two entry lines")
	ErrJournalMinAccounts = errors.New("journal must affect at least two different accounts")
	ErrAccountNotFound    = errors.New("account not found")
	ErrDescriptionMissing = errors.New("journal description is required")
)

// journalService creates and reads balanced double-entry journals. Posting is
// the only way entries are ever created; a correction is a reversing journal.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepository
	accountRepo portsrepo.AccountRepository
}

// NewJournalService creates a new journal service.
func NewJournalService(journalRepo portsrepo.JournalRepository, accountRepo portsrepo.AccountRepository) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// validateJournalBalance checks the double-entry invariant: at least two
// lines, every amount strictly positive, and the debit total exactly equal to
// the credit total.
func validateJournalBalance(entries []domain.JournalEntry) error {
	if len(entries) < 2 {
		return ErrJournalMinEntries
	}

	debitsSum := decimal.Zero
	creditsSum := decimal.Zero
	for _, e := range entries {
		if e.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: entry amount must be positive for account %s", apperrors.ErrValidation, e.AccountID)
		}
		if e.Side == domain.Debit {
			debitsSum = debitsSum.Add(e.Amount)
		} else {
			creditsSum = creditsSum.Add(e.Amount)
		}
	}

	if !debitsSum.Equal(creditsSum) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			ErrJournalUnbalanced, debitsSum.String(), creditsSum.String())
	}
	return nil
}

// resolveAccountTypes fetches the referenced accounts and verifies they belong
// to the tenant and are active.
func (s *journalService) resolveAccountTypes(ctx context.Context, tenantID string, entries []domain.JournalEntry) (map[string]domain.AccountType, error) {
	accountIDs := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.AccountID]; !ok {
			seen[e.AccountID] = struct{}{}
			accountIDs = append(accountIDs, e.AccountID)
		}
	}
	if len(accountIDs) < 2 {
		return nil, ErrJournalMinAccounts
	}

	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, tenantID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	accountTypes := make(map[string]domain.AccountType, len(accountIDs))
	for _, id := range accountIDs {
		acc, found := accountsMap[id]
		if !found {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
		accountTypes[id] = acc.AccountType
	}
	return accountTypes, nil
}

// computeBalanceChanges nets the signed effect of all entries per account.
func computeBalanceChanges(entries []domain.JournalEntry, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	balanceChanges := make(map[string]decimal.Decimal, len(accountTypes))
	for _, e := range entries {
		signedAmount, err := accounting.CalculateSignedAmount(e, accountTypes[e.AccountID])
		if err != nil {
			return nil, err
		}
		balanceChanges[e.AccountID] = balanceChanges[e.AccountID].Add(signedAmount)
	}
	return balanceChanges, nil
}

// PostJournal validates and persists a balanced journal atomically.
func (s *journalService) PostJournal(ctx context.Context, tenantID string, req dto.PostJournalRequest, userID string) (*domain.Journal, error) {
	if req.Description == "" {
		return nil, ErrDescriptionMissing
	}

	now := time.Now().UTC()
	journalID := uuid.NewString()

	entries := make([]domain.JournalEntry, len(req.Lines))
	for i, line := range req.Lines {
		entries[i] = domain.JournalEntry{
			EntryID:   uuid.NewString(),
			JournalID: journalID,
			AccountID: line.AccountID,
			Amount:    line.Amount,
			Side:      line.Side,
			Notes:     line.Notes,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	if err := validateJournalBalance(entries); err != nil {
		return nil, err
	}

	accountTypes, err := s.resolveAccountTypes(ctx, tenantID, entries)
	if err != nil {
		return nil, err
	}

	balanceChanges, err := computeBalanceChanges(entries, accountTypes)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute balance changes", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("internal error calculating balance changes: %w", err)
	}

	journal := domain.Journal{
		JournalID:   journalID,
		TenantID:    tenantID,
		JournalDate: req.Date,
		Description: req.Description,
		Status:      domain.Posted,
		Amount:      accounting.SumSide(entries, domain.Debit),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.journalRepo.SaveJournal(ctx, journal, entries, balanceChanges); err != nil {
		s.LogError(ctx, err, "Failed to save journal", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}

	s.LogInfo(ctx, "Journal posted", slog.String("journal_id", journalID))
	journal.Entries = nil
	return &journal, nil
}

// GetJournalByID retrieves a journal with its entry lines.
func (s *journalService) GetJournalByID(ctx context.Context, tenantID, journalID string) (*domain.Journal, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal by ID", slog.String("journal_id", journalID))
		}
		return nil, err
	}

	// Obscure existence of other tenants' journals.
	if journal.TenantID != tenantID {
		return nil, apperrors.ErrNotFound
	}

	entries, err := s.journalRepo.FindEntriesByJournalID(ctx, journalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch entries for journal", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to retrieve entries for journal %s: %w", journalID, apperrors.ErrInternal)
	}
	journal.Entries = entries
	return journal, nil
}

// ListJournals retrieves a page of the tenant's journals.
func (s *journalService) ListJournals(ctx context.Context, tenantID string, params dto.ListJournalsParams) ([]domain.Journal, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	journals, err := s.journalRepo.ListJournalsByTenant(ctx, tenantID, limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journals", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to retrieve journals: %w", err)
	}
	return journals, nil
}

// ListEntriesByAccount retrieves a page of entry lines for one account.
func (s *journalService) ListEntriesByAccount(ctx context.Context, tenantID, accountID string, params dto.ListJournalsParams) ([]domain.JournalEntry, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	entries, err := s.journalRepo.ListEntriesByAccountID(ctx, tenantID, accountID, limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list entries by account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}
	return entries, nil
}

// ReverseJournal posts a new journal that mirrors the original with each
// line's side flipped and marks the original REVERSED, both in one database
// transaction so a failure leaves neither half behind. The original is never
// mutated beyond its status and reversal link.
func (s *journalService) ReverseJournal(ctx context.Context, tenantID, journalID, userID string) (*domain.Journal, error) {
	originalJournal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to fetch original journal for reversal", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to retrieve original journal: %w", err)
	}
	if originalJournal.TenantID != tenantID {
		return nil, apperrors.ErrNotFound
	}
	if originalJournal.Status != domain.Posted {
		return nil, fmt.Errorf("%w: journal status is %s, expected POSTED", apperrors.ErrConflict, originalJournal.Status)
	}
	if originalJournal.OriginalJournalID != nil {
		return nil, fmt.Errorf("%w: cannot reverse a journal that is already a reversal", apperrors.ErrConflict)
	}

	originalEntries, err := s.journalRepo.FindEntriesByJournalID(ctx, journalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch original entries for reversal", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to retrieve original entries: %w", err)
	}

	now := time.Now().UTC()
	newJournalID := uuid.NewString()

	reversingEntries := make([]domain.JournalEntry, len(originalEntries))
	for i, orig := range originalEntries {
		reversingEntries[i] = domain.JournalEntry{
			EntryID:   uuid.NewString(),
			JournalID: newJournalID,
			AccountID: orig.AccountID,
			Amount:    orig.Amount,
			Side:      orig.Side.Opposite(),
			Notes:     orig.Notes,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	accountTypes, err := s.resolveAccountTypes(ctx, tenantID, reversingEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to get account details for reversal: %w", err)
	}
	balanceChanges, err := computeBalanceChanges(reversingEntries, accountTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate balance changes for reversal: %w", err)
	}

	reversingJournal := domain.Journal{
		JournalID:         newJournalID,
		TenantID:          tenantID,
		JournalDate:       originalJournal.JournalDate,
		Description:       fmt.Sprintf("Reversal of: %s", originalJournal.Description),
		Status:            domain.Posted,
		Amount:            originalJournal.Amount,
		OriginalJournalID: &originalJournal.JournalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.journalRepo.SaveReversalJournal(ctx, reversingJournal, reversingEntries, balanceChanges); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save reversing journal", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to save reversing journal: %w", err)
	}

	s.LogInfo(ctx, "Journal reversed", slog.String("reversing_journal_id", newJournalID))
	return &reversingJournal, nil
}
