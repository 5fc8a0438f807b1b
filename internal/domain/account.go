package domain

import (
	"errors"
	"iter"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that no account matches the given account number.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountNumberTaken indicates that the account number is already used by another account.
	ErrAccountNumberTaken = errors.New("account number already exists")
	// ErrGenerationExhausted indicates that no free account number was found.
	ErrGenerationExhausted = errors.New("account number generation exhausted")
)

// Storage limits of the holder fields in runes. The address is unbounded.
const (
	MaxHolderNameLength = 100
	MaxEmailLength      = 100
	MaxPhoneLength      = 20
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

// Account statuses. New accounts are active.
const (
	StatusActive    AccountStatus = "active"
	StatusInactive  AccountStatus = "inactive"
	StatusSuspended AccountStatus = "suspended"
)

// Valid reports whether s is a known status.
func (s AccountStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}

	return false
}

// Account holds the holder data and the current balance.
//
// Balance is only ever changed together with a ledger entry.
type Account struct {
	ID         int64           `json:"id"`
	Number     string          `json:"account_number"`
	HolderName string          `json:"holder_name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Address    string          `json:"address"`
	Balance    decimal.Decimal `json:"balance"`
	Status     AccountStatus   `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CreateAccountParams is the input data to open an account.
type CreateAccountParams struct {
	HolderName     string          `json:"holder_name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

// InsertAccountParams is the row written by the account store.
type InsertAccountParams struct {
	Number     string
	HolderName string
	Email      string
	Phone      string
	Address    string
	Balance    decimal.Decimal
}

// BalanceView is the balance report of one account.
type BalanceView struct {
	Number     string          `json:"account_number"`
	HolderName string          `json:"holder_name"`
	Status     AccountStatus   `json:"status"`
	Balance    decimal.Decimal `json:"balance"`
}

// AccountSummary is one line of the all-accounts report.
type AccountSummary struct {
	Number     string          `json:"account_number"`
	HolderName string          `json:"holder_name"`
	Balance    decimal.Decimal `json:"balance"`
	Status     AccountStatus   `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AccountList is a snapshot of all accounts, newest first, with totals.
type AccountList struct {
	Accounts     []AccountSummary `json:"accounts"`
	TotalBalance decimal.Decimal  `json:"total_balance"`
	Count        int              `json:"count"`
}

// NewAccountList builds the list and its totals from summaries already in report order.
func NewAccountList(accounts []AccountSummary) AccountList {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}

	return AccountList{
		Accounts:     slices.Clone(accounts),
		TotalBalance: total,
		Count:        len(accounts),
	}
}

// All yields the summaries in report order. The sequence can be ranged over repeatedly and
// always yields the same snapshot.
func (l AccountList) All() iter.Seq[AccountSummary] {
	return func(yield func(AccountSummary) bool) {
		for _, a := range l.Accounts {
			if !yield(a) {
				return
			}
		}
	}
}

// Reconciliation compares the stored balance with the balance replayed from the ledger.
type Reconciliation struct {
	Number        string          `json:"account_number"`
	StoredBalance decimal.Decimal `json:"stored_balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	Consistent    bool            `json:"consistent"`
}
