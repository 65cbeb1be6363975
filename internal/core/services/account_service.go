package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger_engine/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountService owns the chart of accounts.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, opts ...Option) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: newBaseService(opts),
		accountRepo: accountRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) ListAccounts(ctx context.Context, companyID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("company_id", companyID))
		return nil, domain.StorageFailure("list accounts", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	s.LogDebug(ctx, "Accounts listed", slog.Int("count", len(accounts)))
	return accounts, nil
}

func (s *accountService) GetAccount(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, companyID, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		return nil, domain.StorageFailure("find account", err)
	}
	return account, nil
}

func (s *accountService) CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, actorID string) (*domain.Account, error) {
	if req.Code == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: code and name are required", apperrors.ErrValidation)
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, req.AccountType)
	}

	parentID := ""
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parentID = *req.ParentAccountID
		if err := s.ensureParent(ctx, companyID, parentID); err != nil {
			return nil, err
		}
	}

	now := s.Now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		CompanyID:       companyID,
		Code:            req.Code,
		Name:            req.Name,
		AccountType:     req.AccountType,
		ParentAccountID: parentID,
		Balance:         decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, domain.ErrDuplicateAccountCode) {
			s.LogWarn(ctx, "Account code already in use", slog.String("code", req.Code))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("code", req.Code))
		return nil, domain.StorageFailure("save account", err)
	}

	s.LogInfo(ctx, "Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, companyID, accountID string, req dto.UpdateAccountRequest, actorID string) (*domain.Account, error) {
	account, err := s.GetAccount(ctx, companyID, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", apperrors.ErrValidation)
		}
		account.Name = *req.Name
	}
	if req.AccountType != nil {
		if !req.AccountType.IsValid() {
			return nil, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, *req.AccountType)
		}
		account.AccountType = *req.AccountType
	}
	if req.ParentAccountID != nil {
		parentID := *req.ParentAccountID
		if parentID == accountID {
			return nil, fmt.Errorf("%w: an account cannot be its own parent", apperrors.ErrValidation)
		}
		if parentID != "" {
			if err := s.ensureParent(ctx, companyID, parentID); err != nil {
				return nil, err
			}
		}
		account.ParentAccountID = parentID
	}

	account.LastUpdatedAt = s.Now()
	account.LastUpdatedBy = actorID
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, domain.StorageFailure("update account", err)
	}

	s.LogInfo(ctx, "Account updated", slog.String("account_id", accountID))
	return account, nil
}

func (s *accountService) GetOrCreateStandardAccount(ctx context.Context, companyID, code, name string, accountType domain.AccountType, actorID string) (*domain.Account, error) {
	now := s.Now()
	candidate := domain.Account{
		AccountID:   uuid.NewString(),
		CompanyID:   companyID,
		Code:        code,
		Name:        name,
		AccountType: accountType,
		Balance:     decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	account, err := s.accountRepo.InsertAccountIfAbsent(ctx, candidate)
	if err != nil {
		s.LogError(ctx, err, "Failed to get or create standard account", slog.String("code", code))
		return nil, domain.StorageFailure("get or create standard account", err)
	}
	if account.AccountID == candidate.AccountID {
		s.LogInfo(ctx, "Standard account created", slog.String("account_id", account.AccountID), slog.String("code", code))
	}
	return account, nil
}

func (s *accountService) ensureParent(ctx context.Context, companyID, parentID string) error {
	if _, err := s.accountRepo.FindAccountByID(ctx, companyID, parentID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: parent account %s", domain.ErrUnknownAccount, parentID)
		}
		return domain.StorageFailure("find parent account", err)
	}
	return nil
}
