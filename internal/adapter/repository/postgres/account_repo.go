package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akozlov/bookkeep/internal/domain"
	"github.com/akozlov/bookkeep/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const insertAccountSQL = `
INSERT INTO accounts (id, name, type, contra, currency, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const selectAccountSQL = `
SELECT id, name, type, contra, currency, created_at, updated_at
FROM accounts`

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx, insertAccountSQL,
		account.ID, account.Name, string(account.Type), account.Contra,
		account.Currency, account.CreatedAt, account.UpdatedAt)

	return mapAccountError(err)
}

// CreateTx creates a new account within a transaction.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, insertAccountSQL,
		account.ID, account.Name, string(account.Type), account.Contra,
		account.Currency, account.CreatedAt, account.UpdatedAt)

	return mapAccountError(err)
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, selectAccountSQL+" WHERE id = $1", id)

	return scanAccount(row)
}

// GetByName retrieves an account by its unique name.
func (r *AccountRepository) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, selectAccountSQL+" WHERE name = $1", name)

	return scanAccount(row)
}

// List returns the whole chart of accounts ordered by name.
func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, selectAccountSQL+" ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// Truncate removes all accounts. Test fixtures only.
func (r *AccountRepository) Truncate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE accounts CASCADE")

	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		account              domain.Account
		accountType          string
		createdAt, updatedAt time.Time
	)

	err := row.Scan(&account.ID, &account.Name, &accountType, &account.Contra,
		&account.Currency, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	account.Type = domain.AccountType(accountType)
	account.CreatedAt = createdAt
	account.UpdatedAt = updatedAt

	return &account, nil
}

func mapAccountError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return domain.ErrDuplicateAccount
	}

	return err
}
