package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/creamline/milkbooks_backend/internal/apperrors"
	"github.com/creamline/milkbooks_backend/internal/core/domain"
	portssvc "github.com/creamline/milkbooks_backend/internal/core/ports/services"
	"github.com/creamline/milkbooks_backend/internal/core/services"
	"github.com/creamline/milkbooks_backend/internal/dto"
)

type InvoiceServiceTestSuite struct {
	suite.Suite
	mockInvoiceRepo *MockInvoiceRepository
	mockChartSvc    *MockChartService
	service         portssvc.InvoiceSvcFacade

	tenantID string
	userID   string

	cashAccount    *domain.Account
	arAccount      *domain.Account
	apAccount      *domain.Account
	revenueAccount *domain.Account
	expenseAccount *domain.Account
}

func (suite *InvoiceServiceTestSuite) SetupTest() {
	suite.mockInvoiceRepo = new(MockInvoiceRepository)
	suite.mockChartSvc = new(MockChartService)
	suite.service = services.NewInvoiceService(suite.mockInvoiceRepo, suite.mockChartSvc)

	suite.tenantID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.cashAccount = &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Asset, IsActive: true}
	suite.arAccount = &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Asset, IsActive: true}
	suite.apAccount = &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Liability, IsActive: true}
	suite.revenueAccount = &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Revenue, IsActive: true}
	suite.expenseAccount = &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Expense, IsActive: true}
}

func (suite *InvoiceServiceTestSuite) expectAccount(ctx context.Context, purpose domain.AccountPurpose, account *domain.Account) {
	suite.mockChartSvc.On("GetOrCreate", ctx, suite.tenantID, purpose, (*string)(nil), suite.userID).
		Return(account, nil).Once()
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_MilkCollectionUnpaid() {
	ctx := context.Background()
	req := dto.CreateInvoiceRequest{
		Kind:           domain.KindMilkCollection,
		CounterpartyID: "supplier-7",
		Quantity:       decimal.RequireFromString("1044.33"),
		UnitPrice:      decimal.NewFromInt(45),
		OccurredAt:     time.Date(2025, 5, 2, 6, 30, 0, 0, time.UTC),
	}

	suite.expectAccount(ctx, domain.PurposeExpense, suite.expenseAccount)
	suite.expectAccount(ctx, domain.PurposeAccountsPayable, suite.apAccount)

	var savedInvoice domain.InvoiceRecord
	var savedEntries []domain.JournalEntry
	suite.mockInvoiceRepo.On("SaveInvoiceWithJournal", ctx, mock.AnythingOfType("domain.InvoiceRecord"), mock.AnythingOfType("domain.Journal"), mock.AnythingOfType("[]domain.JournalEntry"), mock.Anything).
		Run(func(args mock.Arguments) {
			savedInvoice = args.Get(1).(domain.InvoiceRecord)
			savedEntries = args.Get(3).([]domain.JournalEntry)
		}).
		Return(nil).Once()

	invoice, err := suite.service.CreateInvoice(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(invoice)
	suite.True(invoice.TotalAmount.Equal(decimal.RequireFromString("46994.85")))
	suite.Equal(domain.Unpaid, invoice.PaymentStatus)
	suite.Equal(domain.StatusPending, invoice.Status)
	suite.Empty(invoice.PaymentHistory)
	suite.True(savedInvoice.AmountPaid.Equal(decimal.Zero))

	// Unpaid collection: Debit Expense, Credit AP.
	suite.Require().Len(savedEntries, 2)
	suite.Equal(suite.expenseAccount.AccountID, savedEntries[0].AccountID)
	suite.Equal(domain.Debit, savedEntries[0].Side)
	suite.Equal(suite.apAccount.AccountID, savedEntries[1].AccountID)
	suite.Equal(domain.Credit, savedEntries[1].Side)

	suite.mockChartSvc.AssertExpectations(suite.T())
	suite.mockInvoiceRepo.AssertExpectations(suite.T())
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_PrepaidMilkSale() {
	ctx := context.Background()
	req := dto.CreateInvoiceRequest{
		Kind:           domain.KindMilkSale,
		CounterpartyID: "customer-2",
		Quantity:       decimal.NewFromInt(200),
		UnitPrice:      decimal.NewFromInt(60),
		OccurredAt:     time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC),
		Prepaid:        true,
	}

	suite.expectAccount(ctx, domain.PurposeRevenue, suite.revenueAccount)
	suite.expectAccount(ctx, domain.PurposeCash, suite.cashAccount)

	var savedEntries []domain.JournalEntry
	suite.mockInvoiceRepo.On("SaveInvoiceWithJournal", ctx, mock.AnythingOfType("domain.InvoiceRecord"), mock.AnythingOfType("domain.Journal"), mock.AnythingOfType("[]domain.JournalEntry"), mock.Anything).
		Run(func(args mock.Arguments) {
			savedEntries = args.Get(3).([]domain.JournalEntry)
		}).
		Return(nil).Once()

	invoice, err := suite.service.CreateInvoice(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Paid, invoice.PaymentStatus)
	suite.True(invoice.AmountPaid.Equal(decimal.NewFromInt(12000)))
	suite.Require().Len(invoice.PaymentHistory, 1)
	suite.Equal("settled at creation", invoice.PaymentHistory[0].Notes)
	suite.True(invoice.PaymentHistory[0].Amount.Equal(decimal.NewFromInt(12000)))

	// Prepaid sale: Debit Cash, Credit Revenue.
	suite.Require().Len(savedEntries, 2)
	suite.Equal(suite.cashAccount.AccountID, savedEntries[0].AccountID)
	suite.Equal(domain.Debit, savedEntries[0].Side)
	suite.Equal(suite.revenueAccount.AccountID, savedEntries[1].AccountID)
	suite.Equal(domain.Credit, savedEntries[1].Side)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_LoanDisbursement() {
	ctx := context.Background()
	req := dto.CreateInvoiceRequest{
		Kind:           domain.KindLoan,
		CounterpartyID: "farmer-12",
		Quantity:       decimal.NewFromInt(1),
		UnitPrice:      decimal.NewFromInt(70000),
		OccurredAt:     time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC),
	}

	suite.expectAccount(ctx, domain.PurposeAccountsReceivable, suite.arAccount)
	suite.expectAccount(ctx, domain.PurposeCash, suite.cashAccount)

	var savedEntries []domain.JournalEntry
	suite.mockInvoiceRepo.On("SaveInvoiceWithJournal", ctx, mock.AnythingOfType("domain.InvoiceRecord"), mock.AnythingOfType("domain.Journal"), mock.AnythingOfType("[]domain.JournalEntry"), mock.Anything).
		Run(func(args mock.Arguments) {
			savedEntries = args.Get(3).([]domain.JournalEntry)
		}).
		Return(nil).Once()

	invoice, err := suite.service.CreateInvoice(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(invoice.TotalAmount.Equal(decimal.NewFromInt(70000)))
	suite.Equal(domain.Unpaid, invoice.PaymentStatus)

	// Loan disbursement: Debit AR, Credit Cash.
	suite.Require().Len(savedEntries, 2)
	suite.Equal(suite.arAccount.AccountID, savedEntries[0].AccountID)
	suite.Equal(domain.Debit, savedEntries[0].Side)
	suite.Equal(suite.cashAccount.AccountID, savedEntries[1].AccountID)
	suite.Equal(domain.Credit, savedEntries[1].Side)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_PrepaidLoanRejected() {
	ctx := context.Background()
	req := dto.CreateInvoiceRequest{
		Kind:           domain.KindLoan,
		CounterpartyID: "farmer-12",
		Quantity:       decimal.NewFromInt(1),
		UnitPrice:      decimal.NewFromInt(70000),
		OccurredAt:     time.Now().UTC(),
		Prepaid:        true,
	}

	_, err := suite.service.CreateInvoice(ctx, suite.tenantID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockInvoiceRepo.AssertNotCalled(suite.T(), "SaveInvoiceWithJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_NonPositiveQuantity() {
	ctx := context.Background()
	req := dto.CreateInvoiceRequest{
		Kind:           domain.KindMilkSale,
		CounterpartyID: "customer-2",
		Quantity:       decimal.Zero,
		UnitPrice:      decimal.NewFromInt(60),
		OccurredAt:     time.Now().UTC(),
	}

	_, err := suite.service.CreateInvoice(ctx, suite.tenantID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *InvoiceServiceTestSuite) TestUpdateInvoice_QuantityFrozenAfterPayment() {
	ctx := context.Background()
	invoiceID := uuid.NewString()
	newQuantity := decimal.NewFromInt(50)

	suite.mockInvoiceRepo.On("FindInvoiceByID", ctx, suite.tenantID, invoiceID).
		Return(&domain.InvoiceRecord{
			InvoiceID:   invoiceID,
			TenantID:    suite.tenantID,
			Kind:        domain.KindMilkSale,
			Quantity:    decimal.NewFromInt(100),
			UnitPrice:   decimal.NewFromInt(60),
			TotalAmount: decimal.NewFromInt(6000),
			AmountPaid:  decimal.NewFromInt(1000),
			Status:      domain.StatusAccepted,
		}, nil).Once()

	_, err := suite.service.UpdateInvoice(ctx, suite.tenantID, invoiceID, dto.UpdateInvoiceRequest{
		Quantity: &newQuantity,
	}, suite.userID)

	suite.ErrorIs(err, services.ErrAlreadySettling)
	suite.mockInvoiceRepo.AssertNotCalled(suite.T(), "UpdateInvoiceFields", mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestUpdateInvoice_NotesAllowedAfterPayment() {
	ctx := context.Background()
	invoiceID := uuid.NewString()
	notes := "quality dispute resolved"

	suite.mockInvoiceRepo.On("FindInvoiceByID", ctx, suite.tenantID, invoiceID).
		Return(&domain.InvoiceRecord{
			InvoiceID:   invoiceID,
			TenantID:    suite.tenantID,
			Kind:        domain.KindMilkSale,
			Quantity:    decimal.NewFromInt(100),
			UnitPrice:   decimal.NewFromInt(60),
			TotalAmount: decimal.NewFromInt(6000),
			AmountPaid:  decimal.NewFromInt(1000),
			Status:      domain.StatusAccepted,
		}, nil).Once()
	suite.mockInvoiceRepo.On("UpdateInvoiceFields", ctx, mock.AnythingOfType("domain.InvoiceRecord")).Return(nil).Once()

	invoice, err := suite.service.UpdateInvoice(ctx, suite.tenantID, invoiceID, dto.UpdateInvoiceRequest{
		Notes: &notes,
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(notes, invoice.Notes)
	suite.mockInvoiceRepo.AssertExpectations(suite.T())
}

func (suite *InvoiceServiceTestSuite) TestUpdateInvoice_RecalculatesTotal() {
	ctx := context.Background()
	invoiceID := uuid.NewString()
	newQuantity := decimal.NewFromInt(150)

	suite.mockInvoiceRepo.On("FindInvoiceByID", ctx, suite.tenantID, invoiceID).
		Return(&domain.InvoiceRecord{
			InvoiceID:   invoiceID,
			TenantID:    suite.tenantID,
			Kind:        domain.KindMilkSale,
			Quantity:    decimal.NewFromInt(100),
			UnitPrice:   decimal.NewFromInt(60),
			TotalAmount: decimal.NewFromInt(6000),
			AmountPaid:  decimal.Zero,
			Status:      domain.StatusPending,
		}, nil).Once()

	var savedInvoice domain.InvoiceRecord
	suite.mockInvoiceRepo.On("UpdateInvoiceFields", ctx, mock.AnythingOfType("domain.InvoiceRecord")).
		Run(func(args mock.Arguments) {
			savedInvoice = args.Get(1).(domain.InvoiceRecord)
		}).
		Return(nil).Once()

	invoice, err := suite.service.UpdateInvoice(ctx, suite.tenantID, invoiceID, dto.UpdateInvoiceRequest{
		Quantity: &newQuantity,
	}, suite.userID)

	suite.Require().NoError(err)
	suite.True(invoice.TotalAmount.Equal(decimal.NewFromInt(9000)))
	suite.True(savedInvoice.TotalAmount.Equal(decimal.NewFromInt(9000)))
}

func (suite *InvoiceServiceTestSuite) TestTransitionInvoice_PendingToAccepted() {
	ctx := context.Background()
	invoiceID := uuid.NewString()

	suite.mockInvoiceRepo.On("FindInvoiceByID", ctx, suite.tenantID, invoiceID).
		Return(&domain.InvoiceRecord{InvoiceID: invoiceID, TenantID: suite.tenantID, Status: domain.StatusPending}, nil).Once()
	suite.mockInvoiceRepo.On("UpdateInvoiceStatus", ctx, suite.tenantID, invoiceID, domain.StatusAccepted, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.TransitionInvoice(ctx, suite.tenantID, invoiceID, domain.StatusAccepted, suite.userID)

	suite.NoError(err)
	suite.mockInvoiceRepo.AssertExpectations(suite.T())
}

func (suite *InvoiceServiceTestSuite) TestTransitionInvoice_TerminalIsFinal() {
	ctx := context.Background()
	invoiceID := uuid.NewString()

	suite.mockInvoiceRepo.On("FindInvoiceByID", ctx, suite.tenantID, invoiceID).
		Return(&domain.InvoiceRecord{InvoiceID: invoiceID, TenantID: suite.tenantID, Status: domain.StatusRejected}, nil).Once()

	err := suite.service.TransitionInvoice(ctx, suite.tenantID, invoiceID, domain.StatusAccepted, suite.userID)

	suite.ErrorIs(err, services.ErrInvalidTransition)
	suite.mockInvoiceRepo.AssertNotCalled(suite.T(), "UpdateInvoiceStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestTransitionInvoice_PendingCannotCancel() {
	ctx := context.Background()
	invoiceID := uuid.NewString()

	suite.mockInvoiceRepo.On("FindInvoiceByID", ctx, suite.tenantID, invoiceID).
		Return(&domain.InvoiceRecord{InvoiceID: invoiceID, TenantID: suite.tenantID, Status: domain.StatusPending}, nil).Once()

	err := suite.service.TransitionInvoice(ctx, suite.tenantID, invoiceID, domain.StatusCancelled, suite.userID)

	suite.ErrorIs(err, services.ErrInvalidTransition)
}

func TestInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}
