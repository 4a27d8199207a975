package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
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

// --- Mock AccountHeadRepository ---
type MockAccountHeadRepository struct {
	mock.Mock
}

var _ portsrepo.AccountHeadRepositoryFacade = (*MockAccountHeadRepository)(nil)

func (m *MockAccountHeadRepository) SaveAccountHead(ctx context.Context, account domain.AccountHead) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountHeadRepository) FindAccountHeadByID(ctx context.Context, accountHeadID string) (*domain.AccountHead, error) {
	args := m.Called(ctx, accountHeadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountHead), args.Error(1)
}

func (m *MockAccountHeadRepository) FindAccountHeadsByCodes(ctx context.Context, codes []string) (map[string]domain.AccountHead, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.AccountHead), args.Error(1)
}

func (m *MockAccountHeadRepository) ListAccountHeads(ctx context.Context, limit, offset int) ([]domain.AccountHead, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountHead), args.Error(1)
}

func (m *MockAccountHeadRepository) FindAccountHeadsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountHeadIDs []string) (map[string]domain.AccountHead, error) {
	args := m.Called(ctx, tx, accountHeadIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.AccountHead), args.Error(1)
}

func (m *MockAccountHeadRepository) IncrementBalancesInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, deltas, userID, now)
	return args.Error(0)
}

// --- Test Suite Setup ---
type AccountHeadServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountHeadRepository
	service  portssvc.AccountHeadSvcFacade
	userID   string
}

func (suite *AccountHeadServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountHeadRepository)
	suite.service = services.NewAccountHeadService(suite.mockRepo)
	suite.userID = "user-1"
}

// --- Test Cases ---

func (suite *AccountHeadServiceTestSuite) TestCreateAccountHead_Success() {
	ctx := context.Background()
	req := dto.CreateAccountHeadRequest{
		Code:        "1101",
		Name:        "Main Bank Account",
		AccountType: domain.Asset,
	}

	suite.mockRepo.On("SaveAccountHead", ctx, mock.AnythingOfType("domain.AccountHead")).Return(nil).Once()

	account, err := suite.service.CreateAccountHead(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.NotEmpty(account.AccountHeadID)
	suite.Equal("1101", account.Code)
	suite.Equal(domain.Asset, account.AccountType)
	suite.True(account.IsActive)
	suite.True(account.CurrentBalance.IsZero())
	suite.Equal(suite.userID, account.CreatedBy)

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountHeadServiceTestSuite) TestCreateAccountHead_InvalidType() {
	ctx := context.Background()
	req := dto.CreateAccountHeadRequest{
		Code:        "1101",
		Name:        "Main Bank Account",
		AccountType: domain.AccountType("CONTRA"),
	}

	_, err := suite.service.CreateAccountHead(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccountHead", mock.Anything, mock.Anything)
}

func (suite *AccountHeadServiceTestSuite) TestCreateAccountHead_MissingCode() {
	ctx := context.Background()
	req := dto.CreateAccountHeadRequest{Name: "No Code", AccountType: domain.Expense}

	_, err := suite.service.CreateAccountHead(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountHeadServiceTestSuite) TestCreateAccountHead_DuplicateCode() {
	ctx := context.Background()
	req := dto.CreateAccountHeadRequest{
		Code:        "1101",
		Name:        "Main Bank Account",
		AccountType: domain.Asset,
	}

	suite.mockRepo.On("SaveAccountHead", ctx, mock.AnythingOfType("domain.AccountHead")).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateAccountHead(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *AccountHeadServiceTestSuite) TestGetAccountHeadByID_NotFound() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountHeadByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetAccountHeadByID(ctx, "missing")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountHeadServiceTestSuite) TestGetAccountHeadsByCodes() {
	ctx := context.Background()
	accounts := map[string]domain.AccountHead{
		"1101": {AccountHeadID: "ah-1", Code: "1101"},
	}
	suite.mockRepo.On("FindAccountHeadsByCodes", ctx, []string{"1101"}).Return(accounts, nil).Once()

	got, err := suite.service.GetAccountHeadsByCodes(ctx, []string{"1101"})

	suite.Require().NoError(err)
	suite.Len(got, 1)
	suite.Equal("ah-1", got["1101"].AccountHeadID)
}

func (suite *AccountHeadServiceTestSuite) TestSeedDefaultAccountHeads_SkipsExisting() {
	ctx := context.Background()

	// Every save succeeds except one duplicate, which is skipped silently.
	suite.mockRepo.On("SaveAccountHead", ctx, mock.MatchedBy(func(a domain.AccountHead) bool {
		return a.Code == domain.CodeMainBank
	})).Return(apperrors.ErrDuplicate).Once()
	suite.mockRepo.On("SaveAccountHead", ctx, mock.AnythingOfType("domain.AccountHead")).Return(nil)

	created, err := suite.service.SeedDefaultAccountHeads(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.NotEmpty(created)
	for _, account := range created {
		suite.NotEqual(domain.CodeMainBank, account.Code)
	}
}

func (suite *AccountHeadServiceTestSuite) TestSeedDefaultAccountHeads_StopsOnHardError() {
	ctx := context.Background()

	suite.mockRepo.On("SaveAccountHead", ctx, mock.AnythingOfType("domain.AccountHead")).Return(apperrors.NewAppError(500, "db down", nil))

	_, err := suite.service.SeedDefaultAccountHeads(ctx, suite.userID)

	suite.Require().Error(err)
}

func TestAccountHeadServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountHeadServiceTestSuite))
}
