package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/stocklot/stocklot_erp_app/internal/apperrors"
	"github.com/stocklot/stocklot_erp_app/internal/core/domain"
	portssvc "github.com/stocklot/stocklot_erp_app/internal/core/ports/services"
	"github.com/stocklot/stocklot_erp_app/internal/core/services"
	"github.com/stocklot/stocklot_erp_app/internal/dto"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) PostEntry(ctx context.Context, req dto.PostEntryRequest, actorUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, req, actorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) GetEntry(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, journalEntryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) ListEntries(ctx context.Context, params dto.ListEntriesParams) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) ReverseEntry(ctx context.Context, journalEntryID string, actorUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, journalEntryID, actorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

// --- Test Suite Setup ---
type AutoJournalServiceTestSuite struct {
	suite.Suite
	mockLedgerSvc *MockLedgerService
	service       portssvc.AutoJournalSvcFacade
	userID        string
	date          time.Time
}

func (suite *AutoJournalServiceTestSuite) SetupTest() {
	suite.mockLedgerSvc = new(MockLedgerService)
	suite.service = services.NewAutoJournalService(suite.mockLedgerSvc)
	suite.userID = "user-1"
	suite.date = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
}

// expectPost captures the request handed to the posting engine and returns a
// canned posted entry.
func (suite *AutoJournalServiceTestSuite) expectPost(captured *dto.PostEntryRequest) {
	suite.mockLedgerSvc.On("PostEntry", mock.Anything, mock.AnythingOfType("dto.PostEntryRequest"), suite.userID).
		Run(func(args mock.Arguments) {
			*captured = args.Get(1).(dto.PostEntryRequest)
		}).
		Return(&domain.JournalEntry{JournalEntryID: "je-1", EntryNumber: "JE-20250310-001", Status: domain.Posted}, nil).Once()
}

func lineFor(req dto.PostEntryRequest, code string) (dto.PostLineRequest, bool) {
	for _, l := range req.Lines {
		if l.AccountCode == code {
			return l, true
		}
	}
	return dto.PostLineRequest{}, false
}

// --- Test Cases ---

func (suite *AutoJournalServiceTestSuite) TestRecordInvoiceIssued_FullLegs() {
	ctx := context.Background()
	ev := dto.InvoiceIssuedEvent{
		InvoiceID:     "inv-1",
		InvoiceNumber: "INV-001",
		Date:          suite.date,
		Subtotal:      decimal.NewFromInt(1000),
		TaxAmount:     decimal.NewFromInt(150),
		CostOfGoods:   decimal.NewFromInt(600),
	}

	var req dto.PostEntryRequest
	suite.expectPost(&req)

	entry, err := suite.service.RecordInvoiceIssued(ctx, ev, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("JE-20250310-001", entry.EntryNumber)
	suite.Equal(domain.RefInvoice, req.ReferenceType)
	suite.Equal("inv-1", req.ReferenceID)
	suite.Require().Len(req.Lines, 5)

	ar, ok := lineFor(req, domain.CodeAccountsReceivable)
	suite.Require().True(ok)
	suite.True(ar.Debit.Equal(decimal.NewFromInt(1150)), "receivable carries the gross amount")

	revenue, ok := lineFor(req, domain.CodeSalesRevenue)
	suite.Require().True(ok)
	suite.True(revenue.Credit.Equal(decimal.NewFromInt(1000)))

	tax, ok := lineFor(req, domain.CodeTaxPayable)
	suite.Require().True(ok)
	suite.True(tax.Credit.Equal(decimal.NewFromInt(150)))

	cogs, ok := lineFor(req, domain.CodeCOGS)
	suite.Require().True(ok)
	suite.True(cogs.Debit.Equal(decimal.NewFromInt(600)))

	inventory, ok := lineFor(req, domain.CodeInventory)
	suite.Require().True(ok)
	suite.True(inventory.Credit.Equal(decimal.NewFromInt(600)))
}

func (suite *AutoJournalServiceTestSuite) TestRecordInvoiceIssued_NoTaxNoCOGS() {
	ctx := context.Background()
	ev := dto.InvoiceIssuedEvent{
		InvoiceID:     "inv-2",
		InvoiceNumber: "INV-002",
		Date:          suite.date,
		Subtotal:      decimal.NewFromInt(500),
	}

	var req dto.PostEntryRequest
	suite.expectPost(&req)

	_, err := suite.service.RecordInvoiceIssued(ctx, ev, suite.userID)

	suite.Require().NoError(err)
	suite.Len(req.Lines, 2)
}

func (suite *AutoJournalServiceTestSuite) TestRecordInvoiceIssued_NonPositiveSubtotal() {
	ctx := context.Background()
	ev := dto.InvoiceIssuedEvent{InvoiceID: "inv-3", InvoiceNumber: "INV-003", Date: suite.date}

	_, err := suite.service.RecordInvoiceIssued(ctx, ev, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AutoJournalServiceTestSuite) TestRecordPaymentReceived_DefaultBank() {
	ctx := context.Background()
	ev := dto.PaymentReceivedEvent{
		PaymentID:     "pay-1",
		PaymentNumber: "PAY-001",
		Date:          suite.date,
		Amount:        decimal.NewFromInt(1150),
	}

	var req dto.PostEntryRequest
	suite.expectPost(&req)

	_, err := suite.service.RecordPaymentReceived(ctx, ev, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.RefPayment, req.ReferenceType)

	bank, ok := lineFor(req, domain.CodeMainBank)
	suite.Require().True(ok, "falls back to the main bank account")
	suite.True(bank.Debit.Equal(decimal.NewFromInt(1150)))

	ar, ok := lineFor(req, domain.CodeAccountsReceivable)
	suite.Require().True(ok)
	suite.True(ar.Credit.Equal(decimal.NewFromInt(1150)))
}

func (suite *AutoJournalServiceTestSuite) TestRecordPaymentReceived_ExplicitBankAccount() {
	ctx := context.Background()
	ev := dto.PaymentReceivedEvent{
		PaymentID:       "pay-2",
		PaymentNumber:   "PAY-002",
		Date:            suite.date,
		Amount:          decimal.NewFromInt(50),
		BankAccountCode: domain.CodePettyCash,
	}

	var req dto.PostEntryRequest
	suite.expectPost(&req)

	_, err := suite.service.RecordPaymentReceived(ctx, ev, suite.userID)

	suite.Require().NoError(err)
	_, ok := lineFor(req, domain.CodePettyCash)
	suite.True(ok)
}

func (suite *AutoJournalServiceTestSuite) TestRecordExpense_CategoryMapping() {
	ctx := context.Background()
	ev := dto.ExpenseRecordedEvent{
		ExpenseID: "exp-1",
		Category:  "RENT",
		Date:      suite.date,
		Amount:    decimal.NewFromInt(2000),
	}

	var req dto.PostEntryRequest
	suite.expectPost(&req)

	_, err := suite.service.RecordExpense(ctx, ev, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.RefExpense, req.ReferenceType)

	rent, ok := lineFor(req, "5200")
	suite.Require().True(ok)
	suite.True(rent.Debit.Equal(decimal.NewFromInt(2000)))

	bank, ok := lineFor(req, domain.CodeMainBank)
	suite.Require().True(ok)
	suite.True(bank.Credit.Equal(decimal.NewFromInt(2000)))
}

func (suite *AutoJournalServiceTestSuite) TestRecordExpense_UnknownCategoryFallsBackToMisc() {
	ctx := context.Background()
	ev := dto.ExpenseRecordedEvent{
		ExpenseID: "exp-2",
		Category:  "SNACKS",
		Date:      suite.date,
		Amount:    decimal.NewFromInt(30),
	}

	var req dto.PostEntryRequest
	suite.expectPost(&req)

	_, err := suite.service.RecordExpense(ctx, ev, suite.userID)

	suite.Require().NoError(err)
	_, ok := lineFor(req, "5900")
	suite.True(ok)
}

func (suite *AutoJournalServiceTestSuite) TestRecordGoodsReceipt() {
	ctx := context.Background()
	ev := dto.GoodsReceivedEvent{
		GRNID:     "grn-1",
		GRNNumber: "GRN-001",
		Date:      suite.date,
		GoodsCost: decimal.NewFromInt(800),
		InputTax:  decimal.NewFromInt(120),
	}

	var req dto.PostEntryRequest
	suite.expectPost(&req)

	_, err := suite.service.RecordGoodsReceipt(ctx, ev, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.RefGoodsReceipt, req.ReferenceType)
	suite.Require().Len(req.Lines, 3)

	inventory, ok := lineFor(req, domain.CodeInventory)
	suite.Require().True(ok)
	suite.True(inventory.Debit.Equal(decimal.NewFromInt(800)))

	inputTax, ok := lineFor(req, domain.CodeInputTax)
	suite.Require().True(ok)
	suite.True(inputTax.Debit.Equal(decimal.NewFromInt(120)))

	payable, ok := lineFor(req, domain.CodeAccountsPayable)
	suite.Require().True(ok)
	suite.True(payable.Credit.Equal(decimal.NewFromInt(920)), "payable carries goods cost plus input tax")
}

func (suite *AutoJournalServiceTestSuite) TestRecord_PostingFailurePropagates() {
	ctx := context.Background()
	ev := dto.PaymentReceivedEvent{
		PaymentID:     "pay-3",
		PaymentNumber: "PAY-003",
		Date:          suite.date,
		Amount:        decimal.NewFromInt(10),
	}

	suite.mockLedgerSvc.On("PostEntry", mock.Anything, mock.Anything, suite.userID).
		Return(nil, services.ErrAccountNotFound).Once()

	_, err := suite.service.RecordPaymentReceived(ctx, ev, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountNotFound)
}

func TestAutoJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AutoJournalServiceTestSuite))
}
