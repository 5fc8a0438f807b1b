package reportservice

import (
	"context"
	"testing"

	"github.com/go-petr/pet-ledger/internal/accountnumber"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/test"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	gomock "github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestGetBalance(t *testing.T) {
	t.Parallel()

	account := test.RandomAccount(randompkg.HolderName())

	testCases := []struct {
		name          string
		buildStubs    func(repo *MockRepo)
		checkResponse func(t *testing.T, got domain.BalanceView, err error)
	}{
		{
			name: "OK",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					GetAccount(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(account, nil)
			},
			checkResponse: func(t *testing.T, got domain.BalanceView, err error) {
				require.NoError(t, err)

				want := domain.BalanceView{
					Number:     account.Number,
					HolderName: account.HolderName,
					Status:     account.Status,
					Balance:    account.Balance,
				}

				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("GetBalance returned unexpected difference (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "ErrAccountNotFound",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					GetAccount(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(t *testing.T, got domain.BalanceView, err error) {
				require.ErrorIs(t, err, domain.ErrAccountNotFound)
				require.Empty(t, got)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			got, err := New(repo).GetBalance(context.Background(), account.Number)
			tc.checkResponse(t, got, err)
		})
	}
}

func TestGetHistory(t *testing.T) {
	t.Parallel()

	account := test.RandomAccount(randompkg.HolderName())
	deposit := test.RandomTransaction(account.ID, domain.TypeDeposit)
	withdrawal := test.RandomTransaction(account.ID, domain.TypeWithdrawal)

	testCases := []struct {
		name          string
		limit         int32
		buildStubs    func(repo *MockRepo)
		checkResponse func(t *testing.T, got domain.History, err error)
	}{
		{
			name:  "OK",
			limit: 2,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					GetAccount(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(account, nil)
				repo.EXPECT().
					ListTransactions(gomock.Any(), gomock.Eq(account.ID), gomock.Eq(int32(2))).
					Times(1).
					Return([]domain.Transaction{withdrawal, deposit}, nil)
			},
			checkResponse: func(t *testing.T, got domain.History, err error) {
				require.NoError(t, err)
				require.Equal(t, account.Number, got.Number)
				require.Equal(t, account.HolderName, got.HolderName)
				require.Len(t, got.Transactions, 2)
				require.True(t, got.TotalDeposits.Equal(deposit.Amount))
				require.True(t, got.TotalWithdrawals.Equal(withdrawal.Amount))
				require.True(t, got.NetChange.Equal(deposit.Amount.Sub(withdrawal.Amount)))
			},
		},
		{
			name:  "ZeroLimitMeansAll",
			limit: 0,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					GetAccount(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(account, nil)
				repo.EXPECT().
					ListTransactions(gomock.Any(), gomock.Eq(account.ID), gomock.Eq(int32(0))).
					Times(1).
					Return([]domain.Transaction{}, nil)
			},
			checkResponse: func(t *testing.T, got domain.History, err error) {
				require.NoError(t, err)
				require.NotNil(t, got.Transactions)
				require.Empty(t, got.Transactions)
				require.True(t, got.NetChange.IsZero())
			},
		},
		{
			name:  "NegativeLimit",
			limit: -1,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().ListTransactions(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, got domain.History, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidLimit)
				require.ErrorIs(t, err, domain.ErrInvalidInput)
			},
		},
		{
			name:  "ErrAccountNotFound",
			limit: 10,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					GetAccount(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
				repo.EXPECT().ListTransactions(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, got domain.History, err error) {
				require.ErrorIs(t, err, domain.ErrAccountNotFound)
			},
		},
		{
			name:  "ListTransactionsErr",
			limit: 10,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					GetAccount(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(account, nil)
				repo.EXPECT().
					ListTransactions(gomock.Any(), gomock.Eq(account.ID), gomock.Eq(int32(10))).
					Times(1).
					Return(nil, errorspkg.ErrStorage)
			},
			checkResponse: func(t *testing.T, got domain.History, err error) {
				require.ErrorIs(t, err, errorspkg.ErrStorage)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			got, err := New(repo).GetHistory(context.Background(), account.Number, tc.limit)
			tc.checkResponse(t, got, err)
		})
	}
}

func TestListAccounts(t *testing.T) {
	t.Parallel()

	a1 := test.RandomAccount(randompkg.HolderName())
	a2 := test.RandomAccount(randompkg.HolderName())

	summaries := []domain.AccountSummary{
		{Number: a2.Number, HolderName: a2.HolderName, Balance: a2.Balance, Status: a2.Status, CreatedAt: a2.CreatedAt},
		{Number: a1.Number, HolderName: a1.HolderName, Balance: a1.Balance, Status: a1.Status, CreatedAt: a1.CreatedAt},
	}

	testCases := []struct {
		name          string
		buildStubs    func(repo *MockRepo)
		checkResponse func(t *testing.T, got domain.AccountList, err error)
	}{
		{
			name: "OK",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().ListAccounts(gomock.Any()).Times(1).Return(summaries, nil)
			},
			checkResponse: func(t *testing.T, got domain.AccountList, err error) {
				require.NoError(t, err)
				require.Equal(t, 2, got.Count)
				require.True(t, got.TotalBalance.Equal(a1.Balance.Add(a2.Balance)))

				if diff := cmp.Diff(summaries, got.Accounts); diff != "" {
					t.Errorf("ListAccounts returned unexpected difference (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "Empty",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().ListAccounts(gomock.Any()).Times(1).Return([]domain.AccountSummary{}, nil)
			},
			checkResponse: func(t *testing.T, got domain.AccountList, err error) {
				require.NoError(t, err)
				require.Zero(t, got.Count)
				require.True(t, got.TotalBalance.IsZero())
			},
		},
		{
			name: "StorageErr",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().ListAccounts(gomock.Any()).Times(1).Return(nil, errorspkg.ErrStorage)
			},
			checkResponse: func(t *testing.T, got domain.AccountList, err error) {
				require.ErrorIs(t, err, errorspkg.ErrStorage)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			got, err := New(repo).ListAccounts(context.Background())
			tc.checkResponse(t, got, err)
		})
	}
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	account := test.RandomAccount(randompkg.HolderName())

	testCases := []struct {
		name          string
		totals        domain.LedgerTotals
		wantConsistent bool
	}{
		{
			name:          "Consistent",
			totals:        domain.LedgerTotals{Credits: account.Balance.Add(decimal.NewFromInt(7)), Debits: decimal.NewFromInt(7)},
			wantConsistent: true,
		},
		{
			name:          "Drifted",
			totals:        domain.LedgerTotals{Credits: account.Balance, Debits: decimal.RequireFromString("0.01")},
			wantConsistent: false,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			repo.EXPECT().GetAccount(gomock.Any(), gomock.Eq(account.Number)).Times(1).Return(account, nil)
			repo.EXPECT().LedgerTotals(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(tc.totals, nil)

			got, err := New(repo).Reconcile(context.Background(), account.Number)
			require.NoError(t, err)
			require.Equal(t, tc.wantConsistent, got.Consistent)
			require.True(t, got.StoredBalance.Equal(account.Balance))
			require.True(t, got.LedgerBalance.Equal(tc.totals.Balance()))
		})
	}
}

func TestHistoryAfterScenarios(t *testing.T) {
	ctx := context.Background()
	store := test.NewMemStore()
	engine := accountservice.New(store, accountnumber.New(accountnumber.DefaultMaxAttempts))
	reports := New(store)

	account, err := engine.CreateAccount(ctx, domain.CreateAccountParams{
		HolderName:     "Alice",
		Email:          "a@x.com",
		Phone:          "555",
		Address:        "1 Rd",
		InitialDeposit: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	_, err = engine.Deposit(ctx, account.Number, decimal.RequireFromString("50.00"), "")
	require.NoError(t, err)

	_, err = engine.Withdraw(ctx, account.Number, decimal.RequireFromString("200.00"), "")
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	_, err = engine.Withdraw(ctx, account.Number, decimal.RequireFromString("150.00"), "")
	require.NoError(t, err)

	history, err := reports.GetHistory(ctx, account.Number, 2)
	require.NoError(t, err)
	require.Len(t, history.Transactions, 2)

	require.Equal(t, domain.TypeWithdrawal, history.Transactions[0].Type)
	require.Equal(t, "150.00", history.Transactions[0].Amount.StringFixed(2))
	require.Equal(t, domain.TypeDeposit, history.Transactions[1].Type)
	require.Equal(t, "50.00", history.Transactions[1].Amount.StringFixed(2))

	require.Equal(t, "50.00", history.TotalDeposits.StringFixed(2))
	require.Equal(t, "150.00", history.TotalWithdrawals.StringFixed(2))
	require.Equal(t, "-100.00", history.NetChange.StringFixed(2))

	all, err := reports.GetHistory(ctx, account.Number, 0)
	require.NoError(t, err)
	require.Len(t, all.Transactions, 3)
	require.Equal(t, domain.TypeAccountCreation, all.Transactions[2].Type)

	reconciliation, err := reports.Reconcile(ctx, account.Number)
	require.NoError(t, err)
	require.True(t, reconciliation.Consistent)
	require.True(t, reconciliation.StoredBalance.IsZero())
}

func TestReadsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	store := test.NewMemStore()
	engine := accountservice.New(store, accountnumber.New(accountnumber.DefaultMaxAttempts))
	reports := New(store)

	for i := 0; i < 3; i++ {
		account, err := engine.CreateAccount(ctx, domain.CreateAccountParams{
			HolderName:     randompkg.HolderName(),
			InitialDeposit: randompkg.MoneyAmountBetween(1, 100),
		})
		require.NoError(t, err)

		_, err = engine.Deposit(ctx, account.Number, randompkg.MoneyAmountBetween(1, 100), "")
		require.NoError(t, err)
	}

	accountsBefore := store.Accounts()
	txsBefore := store.Transactions()

	list1, err := reports.ListAccounts(ctx)
	require.NoError(t, err)

	list2, err := reports.ListAccounts(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(list1, list2); diff != "" {
		t.Errorf("ListAccounts is not idempotent (-first +second):\n%s", diff)
	}

	require.Equal(t, 3, list1.Count)

	// All can be ranged over more than once with the same result.
	var first, second []string
	for a := range list1.All() {
		first = append(first, a.Number)
	}
	for a := range list1.All() {
		second = append(second, a.Number)
	}
	require.Equal(t, first, second)
	require.Len(t, first, 3)

	for _, a := range list1.Accounts {
		b1, err := reports.GetBalance(ctx, a.Number)
		require.NoError(t, err)

		b2, err := reports.GetBalance(ctx, a.Number)
		require.NoError(t, err)

		if diff := cmp.Diff(b1, b2); diff != "" {
			t.Errorf("GetBalance is not idempotent (-first +second):\n%s", diff)
		}

		h1, err := reports.GetHistory(ctx, a.Number, 0)
		require.NoError(t, err)

		h2, err := reports.GetHistory(ctx, a.Number, 0)
		require.NoError(t, err)

		if diff := cmp.Diff(h1, h2); diff != "" {
			t.Errorf("GetHistory is not idempotent (-first +second):\n%s", diff)
		}
	}

	if diff := cmp.Diff(accountsBefore, store.Accounts()); diff != "" {
		t.Errorf("reads changed accounts (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(txsBefore, store.Transactions()); diff != "" {
		t.Errorf("reads changed the ledger (-want +got):\n%s", diff)
	}
}
