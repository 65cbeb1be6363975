package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger_engine/internal/core/services"
	"github.com/SscSPs/erp_ledger_engine/internal/dto"
	"github.com/SscSPs/erp_ledger_engine/internal/repositories/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, companyID, code string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, companyID string) ([]domain.Account, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) InsertAccountIfAbsent(ctx context.Context, account domain.Account) (*domain.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// --- Test Suite Setup ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	service  portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockRepo, services.WithClock(func() time.Time { return testNow }))
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

// --- Test Cases ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "1010", Name: "Cash", AccountType: domain.Asset}

	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	created, err := suite.service.CreateAccount(ctx, testCompany, req, alice)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.AccountID)
	suite.Equal(testCompany, created.CompanyID)
	suite.Equal("1010", created.Code)
	suite.True(created.Balance.IsZero())
	suite.Equal(alice, created.CreatedBy)
	suite.Equal(testNow, created.CreatedAt)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "1010", Name: "Cash", AccountType: domain.Asset}

	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(domain.ErrDuplicateAccountCode).Once()

	_, err := suite.service.CreateAccount(ctx, testCompany, req, alice)

	suite.Require().Error(err)
	suite.ErrorIs(err, domain.ErrDuplicateAccountCode)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.NotErrorIs(err, domain.ErrStorageFailure)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_StorageError() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "1010", Name: "Cash", AccountType: domain.Asset}
	dbErr := errors.New("connection reset")

	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(dbErr).Once()

	_, err := suite.service.CreateAccount(ctx, testCompany, req, alice)

	suite.ErrorIs(err, domain.ErrStorageFailure)
	suite.ErrorIs(err, dbErr)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_InvalidType() {
	req := dto.CreateAccountRequest{Code: "9000", Name: "Odd", AccountType: domain.AccountType("INCOME")}

	_, err := suite.service.CreateAccount(context.Background(), testCompany, req, alice)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_UnknownParent() {
	ctx := context.Background()
	parent := "missing"
	req := dto.CreateAccountRequest{Code: "1011", Name: "Petty Cash", AccountType: domain.Asset, ParentAccountID: &parent}

	suite.mockRepo.On("FindAccountByID", ctx, testCompany, parent).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateAccount(ctx, testCompany, req, alice)

	suite.ErrorIs(err, domain.ErrUnknownAccount)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_SelfParentRejected() {
	ctx := context.Background()
	acc := &domain.Account{AccountID: "a1", CompanyID: testCompany, Code: "1010", Name: "Cash", AccountType: domain.Asset}
	suite.mockRepo.On("FindAccountByID", ctx, testCompany, "a1").Return(acc, nil).Once()

	self := "a1"
	_, err := suite.service.UpdateAccount(ctx, testCompany, "a1", dto.UpdateAccountRequest{ParentAccountID: &self}, alice)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_KeepsCode() {
	ctx := context.Background()
	acc := &domain.Account{AccountID: "a1", CompanyID: testCompany, Code: "1010", Name: "Cash", AccountType: domain.Asset}
	suite.mockRepo.On("FindAccountByID", ctx, testCompany, "a1").Return(acc, nil).Once()
	suite.mockRepo.On("UpdateAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Code == "1010" && a.Name == "Cash on hand" && a.LastUpdatedBy == bob
	})).Return(nil).Once()

	name := "Cash on hand"
	updated, err := suite.service.UpdateAccount(ctx, testCompany, "a1", dto.UpdateAccountRequest{Name: &name}, bob)

	suite.Require().NoError(err)
	suite.Equal("Cash on hand", updated.Name)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetAccount_NotFoundIsNotStorageFailure() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByID", ctx, testCompany, "x").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetAccount(ctx, testCompany, "x")

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.NotErrorIs(err, domain.ErrStorageFailure)
}

func (suite *AccountServiceTestSuite) TestListAccounts_NilBecomesEmpty() {
	ctx := context.Background()
	suite.mockRepo.On("ListAccounts", ctx, testCompany).Return(nil, nil).Once()

	accounts, err := suite.service.ListAccounts(ctx, testCompany)

	suite.Require().NoError(err)
	suite.NotNil(accounts)
	suite.Empty(accounts)
}

// --- Memory-backed behaviour ---

func TestCreateAccount_DuplicateCodePerCompany(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "1010", Name: "Cash", AccountType: domain.Asset}

	_, err := env.svc.Account.CreateAccount(ctx, testCompany, req, alice)
	require.NoError(t, err)
	_, err = env.svc.Account.CreateAccount(ctx, testCompany, req, alice)
	assert.ErrorIs(t, err, domain.ErrDuplicateAccountCode)

	_, err = env.svc.Account.CreateAccount(ctx, otherCompany, req, alice)
	assert.NoError(t, err, "codes are unique per company only")
}

func TestGetAccount_OtherCompanyIsNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createAccount(t, "1010", domain.Asset)

	_, err := env.svc.Account.GetAccount(context.Background(), otherCompany, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListAccounts_OrderedByCode(t *testing.T) {
	env := newTestEnv(t, nil)
	env.createAccount(t, "4000", domain.Revenue)
	env.createAccount(t, "1010", domain.Asset)
	env.createAccount(t, "2100", domain.Liability)

	accounts, err := env.svc.Account.ListAccounts(context.Background(), testCompany)
	require.NoError(t, err)
	codes := make([]string, len(accounts))
	for i, a := range accounts {
		codes[i] = a.Code
	}
	assert.Equal(t, []string{"1010", "2100", "4000"}, codes)
}

func TestGetOrCreateStandardAccount_Concurrent(t *testing.T) {
	store := memory.New()
	svc := services.NewAccountService(store)
	ctx := context.Background()

	const callers = 32
	var mu sync.Mutex
	ids := make(map[string]int)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			acc, err := svc.GetOrCreateStandardAccount(ctx, testCompany, "1100", "Accounts Receivable", domain.Asset, alice)
			if err != nil {
				return err
			}
			mu.Lock()
			ids[acc.AccountID]++
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Len(t, ids, 1, "every caller sees the same account")
	accounts, err := store.ListAccounts(ctx, testCompany)
	require.NoError(t, err)
	assert.Len(t, accounts, 1, "exactly one row exists")
	assert.True(t, accounts[0].Balance.IsZero())
}

func TestGetOrCreateStandardAccount_ReturnsExisting(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createAccount(t, "1100", domain.Asset)

	acc, err := env.svc.Account.GetOrCreateStandardAccount(context.Background(), testCompany, "1100", "Accounts Receivable", domain.Asset, bob)
	require.NoError(t, err)
	assert.Equal(t, id, acc.AccountID)
	assert.Equal(t, "Account 1100", acc.Name, "existing account is returned unchanged")
}
