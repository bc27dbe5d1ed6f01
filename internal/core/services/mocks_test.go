package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/creamline/milkbooks_backend/internal/core/domain"
	portsrepo "github.com/creamline/milkbooks_backend/internal/core/ports/repositories"
	"github.com/creamline/milkbooks_backend/internal/dto"
)

// MockAccountRepository is a mock type for the AccountRepository interface.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) EnsureAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, tenantID string, limit, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, tenantID, accountID, userID string, now time.Time) error {
	args := m.Called(ctx, tenantID, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

// MockJournalRepository is a mock type for the JournalRepository interface.
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, journal, entries, balanceChanges)
	return args.Error(0)
}

func (m *MockJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) ListJournalsByTenant(ctx context.Context, tenantID string, limit, offset int) ([]domain.Journal, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) SaveReversalJournal(ctx context.Context, journal domain.Journal, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, journal, entries, balanceChanges)
	return args.Error(0)
}

func (m *MockJournalRepository) FindEntriesByJournalID(ctx context.Context, journalID string) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListEntriesByAccountID(ctx context.Context, tenantID, accountID string, limit, offset int) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

// MockInvoiceRepository is a mock type for the InvoiceRepository interface.
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.InvoiceRecord, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceRecord), args.Error(1)
}

func (m *MockInvoiceRepository) ListOutstandingInvoices(ctx context.Context, tenantID string, direction domain.InvoiceDirection, filter portsrepo.InvoiceFilter) ([]domain.InvoiceRecord, error) {
	args := m.Called(ctx, tenantID, direction, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvoiceRecord), args.Error(1)
}

func (m *MockInvoiceRepository) SaveInvoiceWithJournal(ctx context.Context, invoice domain.InvoiceRecord, journal domain.Journal, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, invoice, journal, entries, balanceChanges)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateInvoiceFields(ctx context.Context, invoice domain.InvoiceRecord) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateInvoiceStatus(ctx context.Context, tenantID, invoiceID string, status domain.RecordStatus, userID string, now time.Time) error {
	args := m.Called(ctx, tenantID, invoiceID, status, userID, now)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ApplyPaymentWithJournal(ctx context.Context, invoice domain.InvoiceRecord, event domain.PaymentEvent, journal domain.Journal, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, invoice, event, journal, entries, balanceChanges)
	return args.Error(0)
}

// MockChartService is a mock type for the ChartSvcFacade interface.
type MockChartService struct {
	mock.Mock
}

func (m *MockChartService) GetOrCreate(ctx context.Context, tenantID string, purpose domain.AccountPurpose, specificAccountID *string, userID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, purpose, specificAccountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockChartService) GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockChartService) ListAccounts(ctx context.Context, tenantID string, params dto.ListAccountsParams) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockChartService) DeactivateAccount(ctx context.Context, tenantID, accountID, userID string) error {
	args := m.Called(ctx, tenantID, accountID, userID)
	return args.Error(0)
}
