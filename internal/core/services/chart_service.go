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

// chartService provisions the tenant chart of accounts lazily, with
// deterministic codes per purpose.
type chartService struct {
	BaseService
	accountRepo portsrepo.AccountRepository
}

// NewChartService creates the chart-of-accounts service.
func NewChartService(accountRepo portsrepo.AccountRepository) portssvc.ChartSvcFacade {
	return &chartService{accountRepo: accountRepo}
}

var _ portssvc.ChartSvcFacade = (*chartService)(nil)

// GetOrCreate resolves the account for a tenant and purpose. A caller-supplied
// account is validated against the purpose's expected type; otherwise the
// deterministic default account is looked up or created. Idempotency under
// concurrent first-use is guaranteed by the repository upsert, which is backed
// by a unique constraint on (code, account_type) for active accounts.
func (s *chartService) GetOrCreate(ctx context.Context, tenantID string, purpose domain.AccountPurpose, specificAccountID *string, userID string) (*domain.Account, error) {
	expectedType := purpose.ExpectedType()

	if specificAccountID != nil {
		account, err := s.accountRepo.FindAccountByID(ctx, tenantID, *specificAccountID)
		if err != nil {
			return nil, err
		}
		if account.AccountType != expectedType {
			return nil, &apperrors.AccountTypeMismatchError{
				AccountID: account.AccountID,
				Expected:  string(expectedType),
				Actual:    string(account.AccountType),
			}
		}
		if !account.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, account.AccountID)
		}
		return account, nil
	}

	now := time.Now().UTC()
	candidate := domain.Account{
		AccountID:   uuid.NewString(),
		TenantID:    tenantID,
		Code:        purpose.Code(tenantID),
		Name:        purpose.DefaultName(),
		AccountType: expectedType,
		IsActive:    true,
		Balance:     decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	account, err := s.accountRepo.EnsureAccount(ctx, candidate)
	if err != nil {
		s.LogError(ctx, err, "Failed to ensure default account",
			slog.String("tenant_id", tenantID),
			slog.String("code", candidate.Code))
		return nil, err
	}

	if account.AccountID == candidate.AccountID {
		s.LogInfo(ctx, "Default account provisioned",
			slog.String("account_id", account.AccountID),
			slog.String("code", account.Code))
	}
	return account, nil
}

// GetAccountByID retrieves one account of the tenant.
func (s *chartService) GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

// ListAccounts retrieves the tenant's accounts.
func (s *chartService) ListAccounts(ctx context.Context, tenantID string, params dto.ListAccountsParams) ([]domain.Account, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// DeactivateAccount marks an account inactive; accounts are never deleted.
func (s *chartService) DeactivateAccount(ctx context.Context, tenantID, accountID, userID string) error {
	err := s.accountRepo.DeactivateAccount(ctx, tenantID, accountID, userID, time.Now().UTC())
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		}
		return err
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}
