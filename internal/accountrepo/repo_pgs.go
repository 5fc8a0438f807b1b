// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const accountColumns = `
	account_id, account_number, holder_name, email, phone, address, balance, status, created_at`

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Number,
		&a.HolderName,
		&a.Email,
		&a.Phone,
		&a.Address,
		&a.Balance,
		&a.Status,
		&a.CreatedAt,
	)

	return a, err
}

const createQuery = `
INSERT INTO
    accounts (account_number, holder_name, email, phone, address, balance)
VALUES
    ($1, $2, $3, $4, $5, $6)
RETURNING` + accountColumns

// Create inserts the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.InsertAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Number,
		arg.HolderName,
		arg.Email,
		arg.Phone,
		arg.Address,
		arg.Balance,
	)

	a, err := scanAccount(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "accounts_account_number_key":
				l.Info().Err(err).Str("account_number", arg.Number).Send()
				return domain.Account{}, domain.ErrAccountNumberTaken
			case "accounts_balance_check":
				l.Info().Err(err).Send()
				return domain.Account{}, domain.ErrNegativeInitialDeposit
			case "accounts_holder_name_check":
				l.Info().Err(err).Send()
				return domain.Account{}, domain.ErrHolderNameRequired
			}
		}

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrStorage
	}

	return a, nil
}

const getByNumberQuery = `
SELECT` + accountColumns + `
FROM accounts
WHERE account_number = $1
`

// GetByNumber returns the account with the given account number.
func (r *RepoPGS) GetByNumber(ctx context.Context, number string) (domain.Account, error) {
	return r.get(ctx, getByNumberQuery, number)
}

const getByNumberForUpdateQuery = getByNumberQuery + `FOR UPDATE
`

// GetByNumberForUpdate returns the account and locks its row until the surrounding
// transaction ends. Outside of a transaction the lock is released right away.
func (r *RepoPGS) GetByNumberForUpdate(ctx context.Context, number string) (domain.Account, error) {
	return r.get(ctx, getByNumberForUpdateQuery, number)
}

func (r *RepoPGS) get(ctx context.Context, query, number string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Str("account_number", number).Msg(domain.ErrAccountNotFound.Error())
			return domain.Account{}, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrStorage
	}

	return a, nil
}

const numberExistsQuery = `
SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)
`

// NumberExists reports whether an account already uses the number.
func (r *RepoPGS) NumberExists(ctx context.Context, number string) (bool, error) {
	l := zerolog.Ctx(ctx)

	var exists bool

	if err := r.db.QueryRowContext(ctx, numberExistsQuery, number).Scan(&exists); err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrStorage
	}

	return exists, nil
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE account_id = $2
RETURNING` + accountColumns

// AddBalance changes the account's balance by amount, which may be negative,
// and returns the changed account.
func (r *RepoPGS) AddBalance(ctx context.Context, id int64, amount decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, addBalanceQuery, amount, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Int64("account_id", id).Msg(domain.ErrAccountNotFound.Error())
			return domain.Account{}, domain.ErrAccountNotFound
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "accounts_balance_check" {
			l.Info().Err(err).Int64("account_id", id).Send()
			return domain.Account{}, domain.ErrInsufficientFunds
		}

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrStorage
	}

	return a, nil
}

const listQuery = `
SELECT
	account_number, holder_name, balance, status, created_at
FROM accounts
ORDER BY created_at DESC, account_id DESC
`

// List returns a summary of every account, newest first.
func (r *RepoPGS) List(ctx context.Context) ([]domain.AccountSummary, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStorage
	}
	defer rows.Close()

	items := []domain.AccountSummary{}

	for rows.Next() {
		var a domain.AccountSummary
		if err := rows.Scan(&a.Number, &a.HolderName, &a.Balance, &a.Status, &a.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrStorage
		}

		items = append(items, a)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStorage
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStorage
	}

	return items, nil
}

const deleteQuery = `
DELETE FROM accounts
WHERE account_id = $1
`

// Delete removes the account with the given id. Its ledger entries are removed by the
// foreign key cascade. Used by maintenance tooling and tests only.
func (r *RepoPGS) Delete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	if _, err := r.db.ExecContext(ctx, deleteQuery, id); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrStorage
	}

	return nil
}
