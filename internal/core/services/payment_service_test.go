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

type PaymentServiceTestSuite struct {
	suite.Suite
	mockInvoiceRepo *MockInvoiceRepository
	mockChartSvc    *MockChartService
	service         portssvc.PaymentSvcFacade

	tenantID string
	userID   string

	cashAccount *domain.Account
	arAccount   *domain.Account
	apAccount   *domain.Account
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	suite.mockInvoiceRepo = new(MockInvoiceRepository)
	suite.mockChartSvc = new(MockChartService)
	suite.service = services.NewPaymentService(suite.mockInvoiceRepo, suite.mockChartSvc)

	suite.tenantID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.cashAccount = &domain.Account{AccountID: uuid.NewString(), TenantID: suite.tenantID, AccountType: domain.Asset, IsActive: true}
	suite.arAccount = &domain.Account{AccountID: uuid.NewString(), TenantID: suite.tenantID, AccountType: domain.Asset, IsActive: true}
	suite.apAccount = &domain.Account{AccountID: uuid.NewString(), TenantID: suite.tenantID, AccountType: domain.Liability, IsActive: true}
}

func (suite *PaymentServiceTestSuite) loanInvoice(totalAmount, amountPaid decimal.Decimal) *domain.InvoiceRecord {
	return &domain.InvoiceRecord{
		InvoiceID:      uuid.NewString(),
		TenantID:       suite.tenantID,
		Kind:           domain.KindLoan,
		CounterpartyID: "farmer-12",
		Quantity:       decimal.NewFromInt(1),
		UnitPrice:      totalAmount,
		TotalAmount:    totalAmount,
		AmountPaid:     amountPaid,
		PaymentStatus:  domain.DerivePaymentStatus(amountPaid, totalAmount),
		PaymentHistory: []domain.PaymentEvent{},
		OccurredAt:     time.Now().UTC().AddDate(0, 0, -10),
		Status:         domain.StatusAccepted,
	}
}

func (suite *PaymentServiceTestSuite) expectReceivableAccounts(ctx context.Context) {
	suite.mockChartSvc.On("GetOrCreate", ctx, suite.tenantID, domain.PurposeCash, (*string)(nil), suite.userID).
		Return(suite.cashAccount, nil).Once()
	suite.mockChartSvc.On("GetOrCreate", ctx, suite.tenantID, domain.PurposeAccountsReceivable, (*string)(nil), suite.userID).
		Return(suite.arAccount, nil).Once()
}

func (suite *PaymentServiceTestSuite) TestApplyPayment_PartialOnReceivable() {
	ctx := context.Background()
	invoice := suite.loanInvoice(decimal.NewFromInt(70000), decimal.Zero)

	suite.mockInvoiceRepo.On("FindInvoiceByID", ctx, suite.tenantID, invoice.InvoiceID).Return(invoice, nil).Once()
	suite.expectReceivableAccounts(ctx)

	var savedInvoice domain.InvoiceRecord
	var savedEntries []domain.JournalEntry
	var savedChanges map[string]decimal.Decimal
	suite.mockInvoiceRepo.On("ApplyPaymentWithJournal", ctx, mock.AnythingOfType("domain.InvoiceRecord"), mock.AnythingOfType("domain.PaymentEvent"), mock.AnythingOfType("domain.Journal"), mock.AnythingOfType("[]domain.JournalEntry"), mock.Anything).
		Run(func(args mock.Arguments) {
			savedInvoice = args.Get(1).(domain.InvoiceRecord)
			savedEntries = args.Get(4).([]domain.JournalEntry)
			savedChanges = args.Get(5).(map[string]decimal.Decimal)
		}).
		Return(nil).Once()

	result, err := suite.service.ApplyPayment(ctx, suite.tenantID, invoice.InvoiceID, dto.ApplyPaymentRequest{
		Amount: decimal.NewFromInt(35000),
		Notes:  "first installment",
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.Equal(domain.Partial, result.PaymentStatus)
	suite.True(result.AmountPaid.Equal(decimal.NewFromInt(35000)))
	suite.True(result.Outstanding.Equal(decimal.NewFromInt(35000)))
	suite.NotEmpty(result.JournalID)

	// History is append-only; the mutation carries the new event.
	suite.Require().Len(savedInvoice.PaymentHistory, 1)
	suite.Equal("first installment", savedInvoice.PaymentHistory[0].Notes)

	// Receivable payment: Debit Cash, Credit AR.
	suite.Require().Len(savedEntries, 2)
	suite.Equal(suite.cashAccount.AccountID, savedEntries[0].AccountID)
	suite.Equal(domain.Debit, savedEntries[0].Side)
	suite.Equal(suite.arAccount.AccountID, savedEntries[1].AccountID)
	suite.Equal(domain.Credit, savedEntries[1].Side)

	// Cash (asset) grows, AR (asset) shrinks.
	suite.True(savedChanges[suite.cashAccount.AccountID].Equal(decimal.NewFromInt(35000)))
	suite.True(savedChanges[suite.arAccount.AccountID].Equal(decimal.NewFromInt(-35000)))

	suite.mockInvoiceRepo.AssertExpectations(suite.T())
	suite.mockChartSvc.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestApplyPayment_SecondInstallmentSettles() {
	ctx := context.Background()
	invoice := suite.loanInvoice(decimal.NewFromInt(70000), decimal.NewFromInt(35000))
	invoice.PaymentHistory = []domain.PaymentEvent{{Date: time.Now().UTC(), Amount: decimal.NewFromInt(35000)}}

	suite.mockInvoiceRepo.On("FindInvoiceByID", ctx, suite.tenantID, invoice.InvoiceID).Return(invoice, nil).Once()
	suite.expectReceivableAccounts(ctx)

	var savedInvoice domain.InvoiceRecord
	suite.mockInvoiceRepo.On("ApplyPaymentWithJournal", ctx, mock.AnythingOfType("domain.InvoiceRecord"), mock.AnythingOfType("domain.PaymentEvent"), mock.AnythingOfType("domain.Journal"), mock.AnythingOfType("[]domain.JournalEntry"), mock.Anything).
		Run(func(args mock.Arguments) {
			savedInvoice = args.Get(1).(domain.InvoiceRecord)
		}).
		Return(nil).Once()

	result, err := suite.service.ApplyPayment(ctx, suite.tenantID, invoice.InvoiceID, dto.ApplyPaymentRequest{
		Amount: decimal.NewFromInt(35000),
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Paid, result.PaymentStatus)
	suite.True(result.Outstanding.Equal(decimal.Zero))
	suite.Len(savedInvoice.PaymentHistory, 2)
}

func (suite *PaymentServiceTestSuite) TestApplyPayment_OverpaymentRejected() {
	ctx := context.Background()
	invoice := suite.loanInvoice(decimal.NewFromInt(70000), decimal.NewFromInt(70000))

	suite.mockInvoiceRepo.On("FindInvoiceByID", ctx, suite.tenantID, invoice.InvoiceID).Return(invoice, nil).Once()

	result, err := suite.service.ApplyPayment(ctx, suite.tenantID, invoice.InvoiceID, dto.ApplyPaymentRequest{
		Amount: decimal.NewFromInt(1),
	}, suite.userID)

	suite.Require().Error(err)
	suite.Nil(result)
	var overErr *apperrors.OverpaymentError
	suite.ErrorAs(err, &overErr)
	suite.True(overErr.Outstanding.Equal(decimal.Zero))
	suite.mockInvoiceRepo.AssertNotCalled(suite.T(), "ApplyPaymentWithJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestApplyPayment_ExceedsOutstandingByFraction() {
	ctx := context.Background()
	invoice := suite.loanInvoice(decimal.NewFromInt(70000), decimal.NewFromInt(35000))

	suite.mockInvoiceRepo.On("FindInvoiceByID", ctx, suite.tenantID, invoice.InvoiceID).Return(invoice, nil).Once()

	_, err := suite.service.ApplyPayment(ctx, suite.tenantID, invoice.InvoiceID, dto.ApplyPaymentRequest{
		Amount: decimal.RequireFromString("35000.01"),
	}, suite.userID)

	var overErr *apperrors.OverpaymentError
	suite.ErrorAs(err, &overErr)
	suite.True(overErr.Outstanding.Equal(decimal.NewFromInt(35000)))
}

func (suite *PaymentServiceTestSuite) TestApplyPayment_NonPositiveAmount() {
	ctx := context.Background()

	_, err := suite.service.ApplyPayment(ctx, suite.tenantID, uuid.NewString(), dto.ApplyPaymentRequest{
		Amount: decimal.Zero,
	}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockInvoiceRepo.AssertNotCalled(suite.T(), "FindInvoiceByID", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestApplyPayment_TerminalInvoice() {
	ctx := context.Background()
	invoice := suite.loanInvoice(decimal.NewFromInt(500), decimal.Zero)
	invoice.Status = domain.StatusCancelled

	suite.mockInvoiceRepo.On("FindInvoiceByID", ctx, suite.tenantID, invoice.InvoiceID).Return(invoice, nil).Once()

	_, err := suite.service.ApplyPayment(ctx, suite.tenantID, invoice.InvoiceID, dto.ApplyPaymentRequest{
		Amount: decimal.NewFromInt(100),
	}, suite.userID)

	suite.ErrorIs(err, services.ErrInvoiceNotPayable)
}

func (suite *PaymentServiceTestSuite) TestApplyPayment_PayableDirection() {
	ctx := context.Background()
	invoice := &domain.InvoiceRecord{
		InvoiceID:      uuid.NewString(),
		TenantID:       suite.tenantID,
		Kind:           domain.KindMilkCollection,
		CounterpartyID: "supplier-3",
		Quantity:       decimal.RequireFromString("1044.33"),
		UnitPrice:      decimal.NewFromInt(45),
		TotalAmount:    decimal.RequireFromString("46994.85"),
		AmountPaid:     decimal.Zero,
		PaymentStatus:  domain.Unpaid,
		PaymentHistory: []domain.PaymentEvent{},
		Status:         domain.StatusAccepted,
	}

	suite.mockInvoiceRepo.On("FindInvoiceByID", ctx, suite.tenantID, invoice.InvoiceID).Return(invoice, nil).Once()
	suite.mockChartSvc.On("GetOrCreate", ctx, suite.tenantID, domain.PurposeCash, (*string)(nil), suite.userID).
		Return(suite.cashAccount, nil).Once()
	suite.mockChartSvc.On("GetOrCreate", ctx, suite.tenantID, domain.PurposeAccountsPayable, (*string)(nil), suite.userID).
		Return(suite.apAccount, nil).Once()

	var savedJournal domain.Journal
	var savedEntries []domain.JournalEntry
	suite.mockInvoiceRepo.On("ApplyPaymentWithJournal", ctx, mock.AnythingOfType("domain.InvoiceRecord"), mock.AnythingOfType("domain.PaymentEvent"), mock.AnythingOfType("domain.Journal"), mock.AnythingOfType("[]domain.JournalEntry"), mock.Anything).
		Run(func(args mock.Arguments) {
			savedJournal = args.Get(3).(domain.Journal)
			savedEntries = args.Get(4).([]domain.JournalEntry)
		}).
		Return(nil).Once()

	result, err := suite.service.ApplyPayment(ctx, suite.tenantID, invoice.InvoiceID, dto.ApplyPaymentRequest{
		Amount: decimal.RequireFromString("46994.85"),
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Paid, result.PaymentStatus)

	// Payable payment: Debit AP, Credit Cash.
	suite.Require().Len(savedEntries, 2)
	suite.Equal(suite.apAccount.AccountID, savedEntries[0].AccountID)
	suite.Equal(domain.Debit, savedEntries[0].Side)
	suite.Equal(suite.cashAccount.AccountID, savedEntries[1].AccountID)
	suite.Equal(domain.Credit, savedEntries[1].Side)
	suite.Contains(savedJournal.Description, "Payment made to supplier-3")
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
