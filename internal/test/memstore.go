// Package test provides shared test helpers.
package test

import (
	"context"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-petr/pet-ledger/internal/bankstore"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/shopspring/decimal"
)

// Write operation names passed to MemStore.Fault.
const (
	OpCreateAccount     = "CreateAccount"
	OpAddAccountBalance = "AddAccountBalance"
	OpCreateTransaction = "CreateTransaction"
)

// MemStore is an in-memory bankstore.Store for tests.
//
// Units of work run one at a time and work on a copy of the state that replaces the
// committed state only when the unit succeeds. The constraints of the SQL schema
// (unique account number, non-negative balance, existing account) and its column limits
// are enforced.
type MemStore struct {
	mu    sync.Mutex
	state memState

	// Fault, when set, is called before every write; a non-nil error fails that write.
	Fault func(op string) error
}

type memState struct {
	accounts      []domain.Account
	transactions  []domain.Transaction
	nextAccountID int64
	nextTxID      int64
	ticks         int64
}

var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func (s memState) clone() memState {
	s.accounts = slices.Clone(s.accounts)
	s.transactions = slices.Clone(s.transactions)

	return s
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

var _ bankstore.Store = (*MemStore)(nil)

// ExecTx runs fn in isolation and commits its writes only if it returns nil.
func (m *MemStore) ExecTx(ctx context.Context, fn func(q bankstore.Querier) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.state.clone()
	q := &memQueries{state: &work, fault: m.Fault}

	if err := fn(q); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return errorspkg.ErrStorage
	}

	m.state = work

	return nil
}

func (m *MemStore) autocommit(fn func(q *memQueries) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.state.clone()
	q := &memQueries{state: &work, fault: m.Fault}

	if err := fn(q); err != nil {
		return err
	}

	m.state = work

	return nil
}

// AccountNumberExists implements bankstore.Querier.
func (m *MemStore) AccountNumberExists(ctx context.Context, number string) (exists bool, err error) {
	err = m.autocommit(func(q *memQueries) error {
		exists, err = q.AccountNumberExists(ctx, number)
		return err
	})

	return exists, err
}

// CreateAccount implements bankstore.Querier.
func (m *MemStore) CreateAccount(ctx context.Context, arg domain.InsertAccountParams) (a domain.Account, err error) {
	err = m.autocommit(func(q *memQueries) error {
		a, err = q.CreateAccount(ctx, arg)
		return err
	})

	return a, err
}

// GetAccount implements bankstore.Querier.
func (m *MemStore) GetAccount(ctx context.Context, number string) (a domain.Account, err error) {
	err = m.autocommit(func(q *memQueries) error {
		a, err = q.GetAccount(ctx, number)
		return err
	})

	return a, err
}

// GetAccountForUpdate implements bankstore.Querier.
func (m *MemStore) GetAccountForUpdate(ctx context.Context, number string) (domain.Account, error) {
	return m.GetAccount(ctx, number)
}

// AddAccountBalance implements bankstore.Querier.
func (m *MemStore) AddAccountBalance(ctx context.Context, id int64, amount decimal.Decimal) (a domain.Account, err error) {
	err = m.autocommit(func(q *memQueries) error {
		a, err = q.AddAccountBalance(ctx, id, amount)
		return err
	})

	return a, err
}

// ListAccounts implements bankstore.Querier.
func (m *MemStore) ListAccounts(ctx context.Context) (items []domain.AccountSummary, err error) {
	err = m.autocommit(func(q *memQueries) error {
		items, err = q.ListAccounts(ctx)
		return err
	})

	return items, err
}

// CreateTransaction implements bankstore.Querier.
func (m *MemStore) CreateTransaction(ctx context.Context, arg domain.CreateTransactionParams) (t domain.Transaction, err error) {
	err = m.autocommit(func(q *memQueries) error {
		t, err = q.CreateTransaction(ctx, arg)
		return err
	})

	return t, err
}

// ListTransactions implements bankstore.Querier.
func (m *MemStore) ListTransactions(ctx context.Context, accountID int64, limit int32) (items []domain.Transaction, err error) {
	err = m.autocommit(func(q *memQueries) error {
		items, err = q.ListTransactions(ctx, accountID, limit)
		return err
	})

	return items, err
}

// LedgerTotals implements bankstore.Querier.
func (m *MemStore) LedgerTotals(ctx context.Context, accountID int64) (t domain.LedgerTotals, err error) {
	err = m.autocommit(func(q *memQueries) error {
		t, err = q.LedgerTotals(ctx, accountID)
		return err
	})

	return t, err
}

// Accounts returns a copy of every committed account.
func (m *MemStore) Accounts() []domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.state.accounts)
}

// Transactions returns a copy of every committed ledger entry in insertion order.
func (m *MemStore) Transactions() []domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.state.transactions)
}

type memQueries struct {
	state *memState
	fault func(op string) error
}

func (q *memQueries) fail(op string) error {
	if q.fault == nil {
		return nil
	}

	return q.fault(op)
}

func (q *memQueries) now() time.Time {
	q.state.ticks++
	return epoch.Add(time.Duration(q.state.ticks) * time.Millisecond)
}

func (q *memQueries) find(number string) int {
	return slices.IndexFunc(q.state.accounts, func(a domain.Account) bool {
		return a.Number == number
	})
}

func (q *memQueries) AccountNumberExists(_ context.Context, number string) (bool, error) {
	return q.find(number) >= 0, nil
}

func (q *memQueries) CreateAccount(_ context.Context, arg domain.InsertAccountParams) (domain.Account, error) {
	if err := q.fail(OpCreateAccount); err != nil {
		return domain.Account{}, err
	}

	if q.find(arg.Number) >= 0 {
		return domain.Account{}, domain.ErrAccountNumberTaken
	}

	if arg.Balance.IsNegative() {
		return domain.Account{}, domain.ErrNegativeInitialDeposit
	}

	// Overlong values and out-of-range numerics fail in the driver without a constraint name.
	if utf8.RuneCountInString(arg.HolderName) > domain.MaxHolderNameLength ||
		utf8.RuneCountInString(arg.Email) > domain.MaxEmailLength ||
		utf8.RuneCountInString(arg.Phone) > domain.MaxPhoneLength ||
		!moneypkg.Valid(arg.Balance) {
		return domain.Account{}, errorspkg.ErrStorage
	}

	q.state.nextAccountID++

	a := domain.Account{
		ID:         q.state.nextAccountID,
		Number:     arg.Number,
		HolderName: arg.HolderName,
		Email:      arg.Email,
		Phone:      arg.Phone,
		Address:    arg.Address,
		Balance:    arg.Balance,
		Status:     domain.StatusActive,
		CreatedAt:  q.now(),
	}

	q.state.accounts = append(q.state.accounts, a)

	return a, nil
}

func (q *memQueries) GetAccount(_ context.Context, number string) (domain.Account, error) {
	i := q.find(number)
	if i < 0 {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return q.state.accounts[i], nil
}

func (q *memQueries) GetAccountForUpdate(ctx context.Context, number string) (domain.Account, error) {
	return q.GetAccount(ctx, number)
}

func (q *memQueries) AddAccountBalance(_ context.Context, id int64, amount decimal.Decimal) (domain.Account, error) {
	if err := q.fail(OpAddAccountBalance); err != nil {
		return domain.Account{}, err
	}

	i := slices.IndexFunc(q.state.accounts, func(a domain.Account) bool { return a.ID == id })
	if i < 0 {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	balance := q.state.accounts[i].Balance.Add(amount)
	if balance.IsNegative() {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	if !moneypkg.Valid(balance) {
		return domain.Account{}, errorspkg.ErrStorage
	}

	q.state.accounts[i].Balance = balance

	return q.state.accounts[i], nil
}

func (q *memQueries) ListAccounts(_ context.Context) ([]domain.AccountSummary, error) {
	items := make([]domain.AccountSummary, 0, len(q.state.accounts))

	for i := len(q.state.accounts) - 1; i >= 0; i-- {
		a := q.state.accounts[i]
		items = append(items, domain.AccountSummary{
			Number:     a.Number,
			HolderName: a.HolderName,
			Balance:    a.Balance,
			Status:     a.Status,
			CreatedAt:  a.CreatedAt,
		})
	}

	return items, nil
}

func (q *memQueries) CreateTransaction(_ context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	if err := q.fail(OpCreateTransaction); err != nil {
		return domain.Transaction{}, err
	}

	if !slices.ContainsFunc(q.state.accounts, func(a domain.Account) bool { return a.ID == arg.AccountID }) {
		return domain.Transaction{}, domain.ErrAccountNotFound
	}

	if arg.Amount.IsNegative() {
		return domain.Transaction{}, domain.ErrInvalidAmount
	}

	q.state.nextTxID++

	t := domain.Transaction{
		ID:          q.state.nextTxID,
		AccountID:   arg.AccountID,
		Type:        arg.Type,
		Amount:      arg.Amount,
		Description: arg.Description,
		Date:        q.now(),
	}

	q.state.transactions = append(q.state.transactions, t)

	return t, nil
}

func (q *memQueries) ListTransactions(_ context.Context, accountID int64, limit int32) ([]domain.Transaction, error) {
	items := []domain.Transaction{}

	for i := len(q.state.transactions) - 1; i >= 0; i-- {
		if limit > 0 && len(items) == int(limit) {
			break
		}

		if t := q.state.transactions[i]; t.AccountID == accountID {
			items = append(items, t)
		}
	}

	return items, nil
}

func (q *memQueries) LedgerTotals(_ context.Context, accountID int64) (domain.LedgerTotals, error) {
	totals := domain.LedgerTotals{Credits: decimal.Zero, Debits: decimal.Zero}

	for _, t := range q.state.transactions {
		if t.AccountID != accountID {
			continue
		}

		switch {
		case t.Type.IsCredit():
			totals.Credits = totals.Credits.Add(t.Amount)
		case t.Type.IsDebit():
			totals.Debits = totals.Debits.Add(t.Amount)
		}
	}

	return totals, nil
}
