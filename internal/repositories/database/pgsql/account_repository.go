package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, company_id, code, name, account_type, parent_account_id, balance,
	created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	var parentID *string
	err := row.Scan(
		&acc.AccountID,
		&acc.CompanyID,
		&acc.Code,
		&acc.Name,
		&acc.AccountType,
		&parentID,
		&acc.Balance,
		&acc.CreatedAt,
		&acc.CreatedBy,
		&acc.LastUpdatedAt,
		&acc.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	acc.ParentAccountID = valueOrEmpty(parentID)
	return &acc, nil
}

func (r *PgxAccountRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return acc, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE company_id = $1 AND account_id = $2;`, companyID, accountID)
}

// FindAccountByCode retrieves an account by its per-company code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, companyID, code string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE company_id = $1 AND code = $2;`, companyID, code)
}

// ListAccounts retrieves all accounts of a company ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, companyID string) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE company_id = $1 ORDER BY code;`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for company %s: %w", companyID, err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

const insertAccount = `
	INSERT INTO accounts (account_id, company_id, code, name, account_type, parent_account_id, balance,
		created_at, created_by, last_updated_at, last_updated_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

func accountArgs(a domain.Account) []any {
	return []any{
		a.AccountID, a.CompanyID, a.Code, a.Name, a.AccountType, nullIfEmpty(a.ParentAccountID), a.Balance,
		a.CreatedAt, a.CreatedBy, a.LastUpdatedAt, a.LastUpdatedBy,
	}
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	_, err := r.Pool.Exec(ctx, insertAccount+`;`, accountArgs(account)...)
	if err != nil {
		switch code, _ := pgErrorCode(err); code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrDuplicateAccountCode, account.Code)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: parent account %s", apperrors.ErrValidation, account.ParentAccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// InsertAccountIfAbsent relies on the (company_id, code) unique key so concurrent callers
// converge on a single row.
func (r *PgxAccountRepository) InsertAccountIfAbsent(ctx context.Context, account domain.Account) (*domain.Account, error) {
	_, err := r.Pool.Exec(ctx, insertAccount+` ON CONFLICT (company_id, code) DO NOTHING;`, accountArgs(account)...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert account %s: %w", account.Code, err)
	}
	return r.FindAccountByCode(ctx, account.CompanyID, account.Code)
}

// UpdateAccount updates the mutable account attributes.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE accounts
		SET name = $3, account_type = $4, parent_account_id = $5, last_updated_at = $6, last_updated_by = $7
		WHERE company_id = $1 AND account_id = $2;`,
		account.CompanyID, account.AccountID, account.Name, account.AccountType,
		nullIfEmpty(account.ParentAccountID), account.LastUpdatedAt, account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
