package test

import (
	"context"
	"testing"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/shopspring/decimal"
)

// SeedAccount creates Account with the given balance inside a test transaction.
//
// No ledger entry is written, so the seeded balance is not backed by the ledger.
func SeedAccount(t *testing.T, tx dbpkg.SQLInterface, balance decimal.Decimal) domain.Account {
	t.Helper()

	arg := domain.InsertAccountParams{
		Number:     RandomAccountNumber(),
		HolderName: randompkg.HolderName(),
		Email:      randompkg.Email(),
		Phone:      randompkg.Phone(),
		Address:    randompkg.String(12),
		Balance:    balance,
	}

	accountRepo := accountrepo.NewRepoPGS(tx)

	account, err := accountRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return account
}

// SeedTransaction creates ledger entry inside a test transaction.
func SeedTransaction(t *testing.T, tx dbpkg.SQLInterface, accountID int64, typ domain.TransactionType, amount decimal.Decimal) domain.Transaction {
	t.Helper()

	arg := domain.CreateTransactionParams{
		AccountID:   accountID,
		Type:        typ,
		Amount:      amount,
		Description: randompkg.String(10),
	}

	transactionRepo := transactionrepo.NewRepoPGS(tx)

	transaction, err := transactionRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("transactionRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return transaction
}

// SeedFundedAccount creates Account whose balance is backed by an account_creation entry.
func SeedFundedAccount(t *testing.T, tx dbpkg.SQLInterface, balance decimal.Decimal) domain.Account {
	t.Helper()

	account := SeedAccount(t, tx, balance)
	SeedTransaction(t, tx, account.ID, domain.TypeAccountCreation, balance)

	return account
}
