// Package bankstore composes the account and transaction repositories into units of work.
//
// Every balance change and its ledger entry are written through ExecTx, so they commit
// or roll back together.
package bankstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Querier provides all account and ledger queries.
type Querier interface {
	AccountNumberExists(ctx context.Context, number string) (bool, error)
	CreateAccount(ctx context.Context, arg domain.InsertAccountParams) (domain.Account, error)
	GetAccount(ctx context.Context, number string) (domain.Account, error)
	GetAccountForUpdate(ctx context.Context, number string) (domain.Account, error)
	AddAccountBalance(ctx context.Context, id int64, amount decimal.Decimal) (domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.AccountSummary, error)
	CreateTransaction(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
	ListTransactions(ctx context.Context, accountID int64, limit int32) ([]domain.Transaction, error)
	LedgerTotals(ctx context.Context, accountID int64) (domain.LedgerTotals, error)
}

// Store provides all queries plus execution of a function within one unit of work.
type Store interface {
	Querier
	ExecTx(ctx context.Context, fn func(q Querier) error) error
}

// Queries runs account and ledger queries against a connection or a transaction.
type Queries struct {
	accounts     *accountrepo.RepoPGS
	transactions *transactionrepo.RepoPGS
}

// NewQueries returns Queries bound to db.
func NewQueries(db dbpkg.SQLInterface) *Queries {
	return &Queries{
		accounts:     accountrepo.NewRepoPGS(db),
		transactions: transactionrepo.NewRepoPGS(db),
	}
}

// AccountNumberExists reports whether an account already uses the number.
func (q *Queries) AccountNumberExists(ctx context.Context, number string) (bool, error) {
	return q.accounts.NumberExists(ctx, number)
}

// CreateAccount inserts the account row.
func (q *Queries) CreateAccount(ctx context.Context, arg domain.InsertAccountParams) (domain.Account, error) {
	return q.accounts.Create(ctx, arg)
}

// GetAccount returns the account with the given number.
func (q *Queries) GetAccount(ctx context.Context, number string) (domain.Account, error) {
	return q.accounts.GetByNumber(ctx, number)
}

// GetAccountForUpdate returns the account with the given number and locks its row.
func (q *Queries) GetAccountForUpdate(ctx context.Context, number string) (domain.Account, error) {
	return q.accounts.GetByNumberForUpdate(ctx, number)
}

// AddAccountBalance changes the balance of the account by amount.
func (q *Queries) AddAccountBalance(ctx context.Context, id int64, amount decimal.Decimal) (domain.Account, error) {
	return q.accounts.AddBalance(ctx, id, amount)
}

// ListAccounts returns summaries of all accounts, newest first.
func (q *Queries) ListAccounts(ctx context.Context) ([]domain.AccountSummary, error) {
	return q.accounts.List(ctx)
}

// CreateTransaction appends a ledger entry.
func (q *Queries) CreateTransaction(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	return q.transactions.Create(ctx, arg)
}

// ListTransactions returns the newest ledger entries of the account.
func (q *Queries) ListTransactions(ctx context.Context, accountID int64, limit int32) ([]domain.Transaction, error) {
	return q.transactions.List(ctx, accountID, limit)
}

// LedgerTotals returns credit and debit sums of the account's full ledger.
func (q *Queries) LedgerTotals(ctx context.Context, accountID int64) (domain.LedgerTotals, error) {
	return q.transactions.Totals(ctx, accountID)
}

// SQLStore provides all queries and units of work backed by a database.
type SQLStore struct {
	*Queries
	db *sql.DB
}

// NewSQLStore returns SQLStore with connection to start transactions.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		Queries: NewQueries(db),
		db:      db,
	}
}

// ExecTx executes fn within a database transaction.
//
// The transaction commits only when fn returns nil. Any error from fn, a cancelled
// context or a failed commit rolls every write of fn back.
func (s *SQLStore) ExecTx(ctx context.Context, fn func(q Querier) error) error {
	l := zerolog.Ctx(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrStorage
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	if err := fn(NewQueries(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrStorage
	}

	return nil
}
