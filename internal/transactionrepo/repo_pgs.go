// Package transactionrepo manages repository layer of ledger transactions.
//
// The ledger is append-only: there are no update or delete statements here.
package transactionrepo

import (
	"context"
	"errors"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const createQuery = `
INSERT INTO
    transactions (account_id, transaction_type, amount, description)
VALUES
    ($1, $2, $3, $4)
RETURNING transaction_id, account_id, transaction_type, amount, description, transaction_date
`

// Create appends the ledger entry and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, arg.AccountID, string(arg.Type), arg.Amount, arg.Description)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Type,
		&t.Amount,
		&t.Description,
		&t.Date,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "transactions_account_id_fkey":
				l.Info().Err(err).Int64("account_id", arg.AccountID).Send()
				return domain.Transaction{}, domain.ErrAccountNotFound
			case "transactions_amount_check":
				l.Info().Err(err).Str("amount", arg.Amount.String()).Send()
				return domain.Transaction{}, domain.ErrInvalidAmount
			}
		}

		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		return domain.Transaction{}, errorspkg.ErrStorage
	}

	return t, nil
}

const listQuery = `
SELECT transaction_id, account_id, transaction_type, amount, description, transaction_date
FROM transactions
WHERE account_id = $1
ORDER BY transaction_date DESC, transaction_id DESC
LIMIT $2
`

// List returns the newest entries of the account, newest first.
//
// A limit of zero returns every entry.
func (r *RepoPGS) List(ctx context.Context, accountID int64, limit int32) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	// LIMIT NULL is LIMIT ALL.
	var pgLimit any
	if limit > 0 {
		pgLimit = limit
	}

	rows, err := r.db.QueryContext(ctx, listQuery, accountID, pgLimit)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStorage
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.AccountID,
			&t.Type,
			&t.Amount,
			&t.Description,
			&t.Date,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrStorage
		}

		items = append(items, t)
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

const totalsQuery = `
SELECT
	COALESCE(SUM(amount) FILTER (WHERE transaction_type IN ('deposit', 'account_creation')), 0),
	COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'withdrawal'), 0)
FROM transactions
WHERE account_id = $1
`

// Totals replays the full ledger of the account into credit and debit sums.
func (r *RepoPGS) Totals(ctx context.Context, accountID int64) (domain.LedgerTotals, error) {
	l := zerolog.Ctx(ctx)

	var t domain.LedgerTotals

	if err := r.db.QueryRowContext(ctx, totalsQuery, accountID).Scan(&t.Credits, &t.Debits); err != nil {
		l.Error().Err(err).Send()
		return domain.LedgerTotals{}, errorspkg.ErrStorage
	}

	return t, nil
}
