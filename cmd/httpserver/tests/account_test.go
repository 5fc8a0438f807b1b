//go:build integration

package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-petr/pet-ledger/internal/accountdelivery"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/integrationtest"
	"github.com/go-petr/pet-ledger/internal/transactiondelivery"
	"github.com/go-petr/pet-ledger/pkg/web"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, method, path string, body any, data any) (int, web.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	res := web.Response{Data: data}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))

	return recorder.Code, res
}

func TestAccountLifecycleAPI(t *testing.T) {
	defer integrationtest.Flush(t, server.DB)

	// Scenario 1
	created := &struct {
		Account accountdelivery.AccountResponse `json:"account"`
	}{}
	code, res := do(t, http.MethodPost, "/accounts", map[string]any{
		"holder_name":     "Alice",
		"email":           "a@x.com",
		"phone":           "555",
		"address":         "1 Rd",
		"initial_deposit": "100.00",
	}, created)
	require.Equal(t, http.StatusCreated, code, res.Error)
	require.Equal(t, "100.00", created.Account.Balance)
	require.Equal(t, string(domain.StatusActive), created.Account.Status)

	number := created.Account.AccountNumber
	require.Len(t, number, 10)

	// Scenario 2
	changed := &transactiondelivery.BalanceChangeResponse{}
	code, res = do(t, http.MethodPost, "/accounts/"+number+"/deposits", map[string]any{"amount": "50.00"}, changed)
	require.Equal(t, http.StatusOK, code, res.Error)
	require.Equal(t, "150.00", changed.Balance)

	// Scenario 3
	code, res = do(t, http.MethodPost, "/accounts/"+number+"/withdrawals", map[string]any{"amount": "200.00"}, nil)
	require.Equal(t, http.StatusConflict, code)
	require.Contains(t, res.Error, domain.ErrInsufficientFunds.Error())

	balance := &struct {
		Balance accountdelivery.BalanceResponse `json:"balance"`
	}{}
	code, _ = do(t, http.MethodGet, "/accounts/"+number, nil, balance)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "150.00", balance.Balance.Balance)

	// Scenario 4
	changed = &transactiondelivery.BalanceChangeResponse{}
	code, res = do(t, http.MethodPost, "/accounts/"+number+"/withdrawals", map[string]any{"amount": "150.00"}, changed)
	require.Equal(t, http.StatusOK, code, res.Error)
	require.Equal(t, "0.00", changed.Balance)

	// Scenario 5
	history := &transactiondelivery.HistoryResponse{}
	code, res = do(t, http.MethodGet, "/accounts/"+number+"/transactions?limit=2", nil, history)
	require.Equal(t, http.StatusOK, code, res.Error)
	require.Len(t, history.Transactions, 2)
	require.Equal(t, string(domain.TypeWithdrawal), history.Transactions[0].Type)
	require.Equal(t, "150.00", history.Transactions[0].Amount)
	require.Equal(t, string(domain.TypeDeposit), history.Transactions[1].Type)
	require.Equal(t, "50.00", history.Transactions[1].Amount)
	require.Equal(t, domain.DescriptionDeposit, history.Transactions[1].Description)
	require.Equal(t, "50.00", history.TotalDeposits)
	require.Equal(t, "150.00", history.TotalWithdrawals)
	require.Equal(t, "-100.00", history.NetChange)

	reconciliation := &struct {
		Reconciliation accountdelivery.ReconciliationResponse `json:"reconciliation"`
	}{}
	code, _ = do(t, http.MethodGet, "/accounts/"+number+"/reconciliation", nil, reconciliation)
	require.Equal(t, http.StatusOK, code)
	require.True(t, reconciliation.Reconciliation.Consistent)

	list := &accountdelivery.ListResponse{}
	code, _ = do(t, http.MethodGet, "/accounts", nil, list)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, len(list.Accounts), list.Count)

	found := false
	for _, a := range list.Accounts {
		if a.AccountNumber == number {
			found = true
			require.Equal(t, "0.00", a.Balance)
		}
	}
	require.True(t, found, "account %s is not listed", number)
}

func TestUnknownAccountAPI(t *testing.T) {
	code, res := do(t, http.MethodGet, "/accounts/1000000000", nil, nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, domain.ErrAccountNotFound.Error(), res.Error)

	code, res = do(t, http.MethodPost, "/accounts/1000000000/deposits", map[string]any{"amount": "1"}, nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, domain.ErrAccountNotFound.Error(), res.Error)
}
