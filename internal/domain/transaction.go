package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInsufficientFunds indicates that a withdrawal exceeds the current balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// TransactionType is the kind of a ledger entry. The sign of the amount is implied by it.
type TransactionType string

// Transaction types. TypeTransfer is reserved and never written by the engine.
const (
	TypeDeposit         TransactionType = "deposit"
	TypeWithdrawal      TransactionType = "withdrawal"
	TypeTransfer        TransactionType = "transfer"
	TypeAccountCreation TransactionType = "account_creation"
)

// Default ledger descriptions.
const (
	DescriptionAccountCreation = "Initial deposit - Account creation"
	DescriptionDeposit         = "Cash deposit"
	DescriptionWithdrawal      = "Cash withdrawal"
)

// MaxDescriptionLength is the storage limit of a description in runes.
const MaxDescriptionLength = 255

// IsCredit reports whether entries of this type add to the balance.
func (t TransactionType) IsCredit() bool {
	return t == TypeDeposit || t == TypeAccountCreation
}

// IsDebit reports whether entries of this type subtract from the balance.
func (t TransactionType) IsDebit() bool {
	return t == TypeWithdrawal
}

// Transaction is an immutable ledger entry. Amount is never negative.
type Transaction struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"account_id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"transaction_date"`
}

// SignedAmount returns the balance effect of the entry.
func (t Transaction) SignedAmount() decimal.Decimal {
	switch {
	case t.Type.IsCredit():
		return t.Amount
	case t.Type.IsDebit():
		return t.Amount.Neg()
	}

	return decimal.Zero
}

// CreateTransactionParams is the input data to append a ledger entry.
type CreateTransactionParams struct {
	AccountID   int64
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
}

// LedgerTotals are the credit and debit sums of an account's full ledger.
type LedgerTotals struct {
	Credits decimal.Decimal
	Debits  decimal.Decimal
}

// Balance is the balance replayed from the ledger.
func (t LedgerTotals) Balance() decimal.Decimal {
	return t.Credits.Sub(t.Debits)
}

// History is the transaction report of one account.
//
// The totals cover the returned entries only.
type History struct {
	Number           string          `json:"account_number"`
	HolderName       string          `json:"holder_name"`
	Transactions     []Transaction   `json:"transactions"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	NetChange        decimal.Decimal `json:"net_change"`
}

// NewHistory builds a history and its totals over the given entries.
func NewHistory(number, holder string, txs []Transaction) History {
	deposits, withdrawals := decimal.Zero, decimal.Zero

	for _, t := range txs {
		switch {
		case t.Type.IsCredit():
			deposits = deposits.Add(t.Amount)
		case t.Type.IsDebit():
			withdrawals = withdrawals.Add(t.Amount)
		}
	}

	if txs == nil {
		txs = []Transaction{}
	}

	return History{
		Number:           number,
		HolderName:       holder,
		Transactions:     txs,
		TotalDeposits:    deposits,
		TotalWithdrawals: withdrawals,
		NetChange:        deposits.Sub(withdrawals),
	}
}
