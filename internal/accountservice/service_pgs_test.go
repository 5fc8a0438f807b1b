//go:build integration

package accountservice_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-petr/pet-ledger/internal/accountnumber"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/bankstore"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/integrationtest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestConcurrentWithdrawalsPGS(t *testing.T) {
	config := integrationtest.Config(t)
	db := integrationtest.SetupDB(t, config)
	store := bankstore.NewSQLStore(db)
	s := accountservice.New(store, accountnumber.New(config.AccountNumberAttempts))
	ctx := context.Background()

	account, err := s.CreateAccount(ctx, domain.CreateAccountParams{
		HolderName:     "Alice",
		InitialDeposit: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	const n = 10

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := s.Withdraw(ctx, account.Number, decimal.RequireFromString("30.00"), "")
			if err != nil && !errors.Is(err, domain.ErrInsufficientFunds) {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	require.Equal(t, 3, succeeded)

	got, err := store.GetAccount(ctx, account.Number)
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(decimal.RequireFromString("10")), "balance %s", got.Balance)

	totals, err := store.LedgerTotals(ctx, account.ID)
	require.NoError(t, err)
	require.True(t, totals.Balance().Equal(got.Balance))
}
