package test

import (
	"strconv"
	"time"

	"github.com/go-petr/pet-ledger/internal/accountnumber"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

// RandomAccountNumber returns a random well-formed account number.
func RandomAccountNumber() string {
	n := randompkg.Int64Between(accountnumber.Min, accountnumber.Max)
	return strconv.FormatInt(n, 10)
}

// RandomAccount returns random active account held by the given holder.
func RandomAccount(holder string) domain.Account {
	return domain.Account{
		ID:         randompkg.Int64Between(1, 100),
		Number:     RandomAccountNumber(),
		HolderName: holder,
		Email:      randompkg.Email(),
		Phone:      randompkg.Phone(),
		Address:    randompkg.String(12),
		Balance:    randompkg.MoneyAmountBetween(1_000, 10_000),
		Status:     domain.StatusActive,
		CreatedAt:  time.Now().Truncate(time.Second).UTC(),
	}
}

// RandomTransaction returns random ledger entry of the given type for the account.
func RandomTransaction(accountID int64, typ domain.TransactionType) domain.Transaction {
	return domain.Transaction{
		ID:          randompkg.Int64Between(1, 1_000),
		AccountID:   accountID,
		Type:        typ,
		Amount:      randompkg.MoneyAmountBetween(1, 500),
		Description: randompkg.String(10),
		Date:        time.Now().Truncate(time.Second).UTC(),
	}
}
