package main

import (
	"context"
	"database/sql"
	"io"

	"github.com/go-petr/pet-ledger/internal/accountnumber"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/bankstore"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/reportservice"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/shopspring/decimal"
)

// AccountService mutates accounts.
type AccountService interface {
	CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Deposit(ctx context.Context, number string, amount decimal.Decimal, description string) (decimal.Decimal, error)
	Withdraw(ctx context.Context, number string, amount decimal.Decimal, description string) (decimal.Decimal, error)
}

// ReportService produces read-only reports.
type ReportService interface {
	GetBalance(ctx context.Context, number string) (domain.BalanceView, error)
	GetHistory(ctx context.Context, number string, limit int32) (domain.History, error)
	ListAccounts(ctx context.Context) (domain.AccountList, error)
	Reconcile(ctx context.Context, number string) (domain.Reconciliation, error)
}

// env is passed to every command. The database is opened on first use so that commands
// failing on their arguments never touch it.
type env struct {
	config configpkg.Config
	out    io.Writer

	db       *sql.DB
	accounts AccountService
	reports  ReportService
}

func (e *env) open() error {
	if e.accounts != nil {
		return nil
	}

	db, err := dbpkg.Setup(e.config.DBDriver, e.config.DBSource)
	if err != nil {
		return err
	}

	store := bankstore.NewSQLStore(db)

	e.db = db
	e.accounts = accountservice.New(store, accountnumber.New(e.config.AccountNumberAttempts))
	e.reports = reportservice.New(store)

	return nil
}

func (e *env) close() {
	if e.db != nil {
		_ = e.db.Close()
	}
}
