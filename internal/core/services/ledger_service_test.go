package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/stocklot/stocklot_erp_app/internal/apperrors"
	"github.com/stocklot/stocklot_erp_app/internal/core/domain"
	portsrepo "github.com/stocklot/stocklot_erp_app/internal/core/ports/repositories"
	portssvc "github.com/stocklot/stocklot_erp_app/internal/core/ports/services"
	"github.com/stocklot/stocklot_erp_app/internal/core/services"
	"github.com/stocklot/stocklot_erp_app/internal/dto"
)

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, deltas map[string]decimal.Decimal) (string, error) {
	args := m.Called(ctx, entry, lines, deltas)
	return args.String(0), args.Error(1)
}

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, journalEntryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindLinesByEntryID(ctx context.Context, journalEntryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, journalEntryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, limit, offset int, includeReversals bool) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, limit, offset, includeReversals)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) SaveReversal(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, deltas map[string]decimal.Decimal) (string, error) {
	args := m.Called(ctx, entry, lines, deltas)
	return args.String(0), args.Error(1)
}

// --- Mock AccountHeadService (as used by LedgerService) ---
type MockAccountHeadService struct {
	mock.Mock
}

var _ portssvc.AccountHeadSvcFacade = (*MockAccountHeadService)(nil)

func (m *MockAccountHeadService) CreateAccountHead(ctx context.Context, req dto.CreateAccountHeadRequest, creatorUserID string) (*domain.AccountHead, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountHead), args.Error(1)
}

func (m *MockAccountHeadService) GetAccountHeadByID(ctx context.Context, accountHeadID string) (*domain.AccountHead, error) {
	args := m.Called(ctx, accountHeadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountHead), args.Error(1)
}

func (m *MockAccountHeadService) GetAccountHeadsByCodes(ctx context.Context, codes []string) (map[string]domain.AccountHead, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.AccountHead), args.Error(1)
}

func (m *MockAccountHeadService) ListAccountHeads(ctx context.Context, limit, offset int) ([]domain.AccountHead, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountHead), args.Error(1)
}

func (m *MockAccountHeadService) SeedDefaultAccountHeads(ctx context.Context, creatorUserID string) ([]domain.AccountHead, error) {
	args := m.Called(ctx, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountHead), args.Error(1)
}

// --- Test Suite Setup ---
type LedgerServiceTestSuite struct {
	suite.Suite
	mockJournalRepo    *MockJournalRepository
	mockAccountHeadSvc *MockAccountHeadService
	service            portssvc.LedgerSvcFacade
	bankAccount        domain.AccountHead
	revenueAccount     domain.AccountHead
	payableAccount     domain.AccountHead
	userID             string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAccountHeadSvc = new(MockAccountHeadService)
	suite.service = services.NewLedgerService(suite.mockJournalRepo, suite.mockAccountHeadSvc)

	suite.userID = uuid.NewString()

	suite.bankAccount = domain.AccountHead{
		AccountHeadID: uuid.NewString(),
		Code:          "1101",
		Name:          "Main Bank Account",
		AccountType:   domain.Asset,
		IsActive:      true,
	}
	suite.revenueAccount = domain.AccountHead{
		AccountHeadID: uuid.NewString(),
		Code:          "4100",
		Name:          "Sales Revenue",
		AccountType:   domain.Revenue,
		IsActive:      true,
	}
	suite.payableAccount = domain.AccountHead{
		AccountHeadID: uuid.NewString(),
		Code:          "2100",
		Name:          "Accounts Payable",
		AccountType:   domain.Liability,
		IsActive:      true,
	}
}

func (suite *LedgerServiceTestSuite) balancedRequest() dto.PostEntryRequest {
	return dto.PostEntryRequest{
		Date:        time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "Cash sale",
		Lines: []dto.PostLineRequest{
			{AccountCode: "1101", Debit: decimal.NewFromInt(100)},
			{AccountCode: "4100", Credit: decimal.NewFromInt(100)},
		},
	}
}

func (suite *LedgerServiceTestSuite) accountsByCode() map[string]domain.AccountHead {
	return map[string]domain.AccountHead{
		"1101": suite.bankAccount,
		"4100": suite.revenueAccount,
	}
}

// --- Test Cases ---

func (suite *LedgerServiceTestSuite) TestPostEntry_Success() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.mockAccountHeadSvc.On("GetAccountHeadsByCodes", ctx, []string{"1101", "4100"}).Return(suite.accountsByCode(), nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), mock.AnythingOfType("map[string]decimal.Decimal")).Return("JE-20250115-001", nil).Once()

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal("JE-20250115-001", entry.EntryNumber)
	suite.Equal(domain.Posted, entry.Status)
	suite.Equal(domain.RefManual, entry.ReferenceType)
	suite.Equal(suite.userID, entry.CreatedBy)
	suite.Len(entry.Lines, 2)
	suite.Equal(1, entry.Lines[0].LineNo)
	suite.Equal(2, entry.Lines[1].LineNo)

	suite.mockAccountHeadSvc.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPostEntry_BalanceDeltas() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.mockAccountHeadSvc.On("GetAccountHeadsByCodes", ctx, []string{"1101", "4100"}).Return(suite.accountsByCode(), nil).Once()

	var capturedDeltas map[string]decimal.Decimal
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			capturedDeltas = args.Get(3).(map[string]decimal.Decimal)
		}).
		Return("JE-20250115-001", nil).Once()

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(capturedDeltas, 2)
	// Debit to an asset raises the balance, credit to revenue raises it too.
	suite.True(capturedDeltas[suite.bankAccount.AccountHeadID].Equal(decimal.NewFromInt(100)))
	suite.True(capturedDeltas[suite.revenueAccount.AccountHeadID].Equal(decimal.NewFromInt(100)))
}

func (suite *LedgerServiceTestSuite) TestPostEntry_LessThanTwoLines() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Lines = req.Lines[:1]

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryMinLines)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_MissingDescription() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Description = ""

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrDescriptionMissing)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_UnknownAccountCode() {
	ctx := context.Background()
	req := suite.balancedRequest()

	// Resolver returns only one of the two requested codes.
	suite.mockAccountHeadSvc.On("GetAccountHeadsByCodes", ctx, []string{"1101", "4100"}).
		Return(map[string]domain.AccountHead{"1101": suite.bankAccount}, nil).Once()

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountNotFound)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_InactiveAccount() {
	ctx := context.Background()
	req := suite.balancedRequest()

	inactive := suite.revenueAccount
	inactive.IsActive = false
	accounts := map[string]domain.AccountHead{"1101": suite.bankAccount, "4100": inactive}
	suite.mockAccountHeadSvc.On("GetAccountHeadsByCodes", ctx, []string{"1101", "4100"}).Return(accounts, nil).Once()

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountInactive)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_Unbalanced() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Lines[1].Credit = decimal.RequireFromString("99.99")

	suite.mockAccountHeadSvc.On("GetAccountHeadsByCodes", ctx, []string{"1101", "4100"}).Return(suite.accountsByCode(), nil).Once()

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryUnbalanced)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_RoundsAmountsBeforeSaving() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Lines[0].Debit = decimal.RequireFromString("100.004")
	req.Lines[1].Credit = decimal.RequireFromString("100.001")

	suite.mockAccountHeadSvc.On("GetAccountHeadsByCodes", ctx, []string{"1101", "4100"}).Return(suite.accountsByCode(), nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.Anything, mock.Anything, mock.Anything).Return("JE-20250115-001", nil).Once()

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	// Both sides round to 100.00 and balance.
	suite.Require().NoError(err)
	suite.True(entry.Lines[0].Debit.Equal(decimal.NewFromInt(100)))
	suite.True(entry.Lines[1].Credit.Equal(decimal.NewFromInt(100)))
}

func (suite *LedgerServiceTestSuite) TestPostEntry_RetriesOnTransientConflict() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.mockAccountHeadSvc.On("GetAccountHeadsByCodes", ctx, []string{"1101", "4100"}).Return(suite.accountsByCode(), nil).Once()
	// First attempt loses the number race, second succeeds with a fresh number.
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.Anything, mock.Anything, mock.Anything).Return("", apperrors.ErrRetryable).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.Anything, mock.Anything, mock.Anything).Return("JE-20250115-002", nil).Once()

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("JE-20250115-002", entry.EntryNumber)
	suite.mockJournalRepo.AssertNumberOfCalls(suite.T(), "SaveEntry", 2)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_RetriesExhausted() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.mockAccountHeadSvc.On("GetAccountHeadsByCodes", ctx, []string{"1101", "4100"}).Return(suite.accountsByCode(), nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.Anything, mock.Anything, mock.Anything).Return("", apperrors.ErrRetryable).Times(3)

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRetryable)
	suite.mockJournalRepo.AssertNumberOfCalls(suite.T(), "SaveEntry", 3)
}

func (suite *LedgerServiceTestSuite) TestPostEntry_NonRetryableFailsImmediately() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.mockAccountHeadSvc.On("GetAccountHeadsByCodes", ctx, []string{"1101", "4100"}).Return(suite.accountsByCode(), nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.Anything, mock.Anything, mock.Anything).Return("", apperrors.NewAppError(500, "boom", nil)).Once()

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.mockJournalRepo.AssertNumberOfCalls(suite.T(), "SaveEntry", 1)
}

func (suite *LedgerServiceTestSuite) TestGetEntry_Success() {
	ctx := context.Background()
	entryID := uuid.NewString()
	stored := &domain.JournalEntry{JournalEntryID: entryID, EntryNumber: "JE-20250115-001", Status: domain.Posted}
	lines := []domain.JournalLine{
		{JournalLineID: uuid.NewString(), AccountHeadID: suite.bankAccount.AccountHeadID, LineNo: 1, Debit: decimal.NewFromInt(100)},
		{JournalLineID: uuid.NewString(), AccountHeadID: suite.revenueAccount.AccountHeadID, LineNo: 2, Credit: decimal.NewFromInt(100)},
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(stored, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, entryID).Return(lines, nil).Once()

	entry, err := suite.service.GetEntry(ctx, entryID)

	suite.Require().NoError(err)
	suite.Equal("JE-20250115-001", entry.EntryNumber)
	suite.Len(entry.Lines, 2)
}

func (suite *LedgerServiceTestSuite) TestGetEntry_NotFound() {
	ctx := context.Background()
	entryID := uuid.NewString()
	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetEntry(ctx, entryID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestListEntries() {
	ctx := context.Background()
	stored := []domain.JournalEntry{{JournalEntryID: uuid.NewString(), EntryNumber: "JE-20250115-001"}}
	suite.mockJournalRepo.On("ListEntries", ctx, 20, 0, false).Return(stored, nil).Once()

	entries, err := suite.service.ListEntries(ctx, dto.ListEntriesParams{Limit: 20, Offset: 0})

	suite.Require().NoError(err)
	suite.Len(entries, 1)
}

func (suite *LedgerServiceTestSuite) TestReverseEntry_Success() {
	ctx := context.Background()
	originalID := uuid.NewString()
	original := &domain.JournalEntry{
		JournalEntryID: originalID,
		EntryNumber:    "JE-20250115-001",
		EntryDate:      time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Description:    "Cash sale",
		Status:         domain.Posted,
	}
	originalLines := []domain.JournalLine{
		{JournalLineID: uuid.NewString(), AccountHeadID: suite.bankAccount.AccountHeadID, LineNo: 1, Debit: decimal.NewFromInt(100), Credit: decimal.Zero},
		{JournalLineID: uuid.NewString(), AccountHeadID: suite.revenueAccount.AccountHeadID, LineNo: 2, Debit: decimal.Zero, Credit: decimal.NewFromInt(100)},
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, originalID).Return(original, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, originalID).Return(originalLines, nil).Once()
	suite.mockAccountHeadSvc.On("GetAccountHeadByID", ctx, suite.bankAccount.AccountHeadID).Return(&suite.bankAccount, nil).Once()
	suite.mockAccountHeadSvc.On("GetAccountHeadByID", ctx, suite.revenueAccount.AccountHeadID).Return(&suite.revenueAccount, nil).Once()

	var savedEntry domain.JournalEntry
	var savedLines []domain.JournalLine
	var savedDeltas map[string]decimal.Decimal
	suite.mockJournalRepo.On("SaveReversal", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedEntry = args.Get(1).(domain.JournalEntry)
			savedLines = args.Get(2).([]domain.JournalLine)
			savedDeltas = args.Get(3).(map[string]decimal.Decimal)
		}).
		Return("JE-20250115-002", nil).Once()

	reversing, err := suite.service.ReverseEntry(ctx, originalID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("JE-20250115-002", reversing.EntryNumber)
	suite.Equal(domain.RefReversal, reversing.ReferenceType)
	suite.Require().NotNil(reversing.OriginalEntryID)
	suite.Equal(originalID, *reversing.OriginalEntryID)

	// The repository call carries the original's ID so the status flip and
	// the mirrored posting commit together.
	suite.Require().NotNil(savedEntry.OriginalEntryID)
	suite.Equal(originalID, *savedEntry.OriginalEntryID)

	// Debits and credits are swapped line for line.
	suite.Require().Len(savedLines, 2)
	suite.True(savedLines[0].Credit.Equal(decimal.NewFromInt(100)))
	suite.True(savedLines[0].Debit.IsZero())
	suite.True(savedLines[1].Debit.Equal(decimal.NewFromInt(100)))
	suite.True(savedLines[1].Credit.IsZero())

	// Deltas exactly undo the original posting.
	suite.True(savedDeltas[suite.bankAccount.AccountHeadID].Equal(decimal.NewFromInt(-100)))
	suite.True(savedDeltas[suite.revenueAccount.AccountHeadID].Equal(decimal.NewFromInt(-100)))

	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestReverseEntry_AlreadyReversed() {
	ctx := context.Background()
	originalID := uuid.NewString()
	original := &domain.JournalEntry{JournalEntryID: originalID, Status: domain.Reversed}

	suite.mockJournalRepo.On("FindEntryByID", ctx, originalID).Return(original, nil).Once()

	_, err := suite.service.ReverseEntry(ctx, originalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAlreadyReversed)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveReversal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestReverseEntry_ConcurrentReversalLosesRace() {
	ctx := context.Background()
	originalID := uuid.NewString()
	original := &domain.JournalEntry{
		JournalEntryID: originalID,
		EntryNumber:    "JE-20250115-001",
		EntryDate:      time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Description:    "Cash sale",
		Status:         domain.Posted,
	}
	originalLines := []domain.JournalLine{
		{JournalLineID: uuid.NewString(), AccountHeadID: suite.bankAccount.AccountHeadID, LineNo: 1, Debit: decimal.NewFromInt(100)},
		{JournalLineID: uuid.NewString(), AccountHeadID: suite.revenueAccount.AccountHeadID, LineNo: 2, Credit: decimal.NewFromInt(100)},
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, originalID).Return(original, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, originalID).Return(originalLines, nil).Once()
	suite.mockAccountHeadSvc.On("GetAccountHeadByID", ctx, suite.bankAccount.AccountHeadID).Return(&suite.bankAccount, nil).Once()
	suite.mockAccountHeadSvc.On("GetAccountHeadByID", ctx, suite.revenueAccount.AccountHeadID).Return(&suite.revenueAccount, nil).Once()

	// Another reversal flipped the original between the read and the write.
	// The repository rolls the whole attempt back and reports the conflict.
	suite.mockJournalRepo.On("SaveReversal", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return("", fmt.Errorf("%w: entry %s is not POSTED or does not exist", apperrors.ErrConflict, originalID)).Once()

	_, err := suite.service.ReverseEntry(ctx, originalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	// The mirrored entry is never persisted on its own.
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockJournalRepo.AssertNumberOfCalls(suite.T(), "SaveReversal", 1)
}

func (suite *LedgerServiceTestSuite) TestReverseEntry_ReversalOfReversal() {
	ctx := context.Background()
	someOriginal := uuid.NewString()
	reversalID := uuid.NewString()
	reversal := &domain.JournalEntry{JournalEntryID: reversalID, Status: domain.Posted, OriginalEntryID: &someOriginal}

	suite.mockJournalRepo.On("FindEntryByID", ctx, reversalID).Return(reversal, nil).Once()

	_, err := suite.service.ReverseEntry(ctx, reversalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrReversalOfReversal)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
