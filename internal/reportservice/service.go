// Package reportservice manages read-only reports over accounts and the ledger.
package reportservice

import (
	"context"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by report service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package reportservice
type Repo interface {
	GetAccount(ctx context.Context, number string) (domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.AccountSummary, error)
	ListTransactions(ctx context.Context, accountID int64, limit int32) ([]domain.Transaction, error)
	LedgerTotals(ctx context.Context, accountID int64) (domain.LedgerTotals, error)
}

// Service facilitates report service layer logic.
type Service struct {
	repo Repo
}

// New returns report service struct to manage read-only reports.
func New(repo Repo) *Service {
	return &Service{
		repo: repo,
	}
}

// GetBalance returns the current balance of the account.
func (s *Service) GetBalance(ctx context.Context, number string) (domain.BalanceView, error) {
	a, err := s.repo.GetAccount(ctx, number)
	if err != nil {
		return domain.BalanceView{}, err
	}

	return domain.BalanceView{
		Number:     a.Number,
		HolderName: a.HolderName,
		Status:     a.Status,
		Balance:    a.Balance,
	}, nil
}

// GetHistory returns at most limit newest ledger entries of the account, newest first,
// and their totals. A zero limit returns the whole ledger.
func (s *Service) GetHistory(ctx context.Context, number string, limit int32) (domain.History, error) {
	if limit < 0 {
		zerolog.Ctx(ctx).Info().Int32("limit", limit).Msg(domain.ErrInvalidLimit.Error())
		return domain.History{}, domain.ErrInvalidLimit
	}

	a, err := s.repo.GetAccount(ctx, number)
	if err != nil {
		return domain.History{}, err
	}

	txs, err := s.repo.ListTransactions(ctx, a.ID, limit)
	if err != nil {
		return domain.History{}, err
	}

	return domain.NewHistory(a.Number, a.HolderName, txs), nil
}

// ListAccounts returns every account, newest first, with the bank totals.
func (s *Service) ListAccounts(ctx context.Context) (domain.AccountList, error) {
	items, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return domain.AccountList{}, err
	}

	return domain.NewAccountList(items), nil
}

// Reconcile replays the ledger of the account and compares the result with the stored balance.
func (s *Service) Reconcile(ctx context.Context, number string) (domain.Reconciliation, error) {
	a, err := s.repo.GetAccount(ctx, number)
	if err != nil {
		return domain.Reconciliation{}, err
	}

	totals, err := s.repo.LedgerTotals(ctx, a.ID)
	if err != nil {
		return domain.Reconciliation{}, err
	}

	r := domain.Reconciliation{
		Number:        a.Number,
		StoredBalance: a.Balance,
		LedgerBalance: totals.Balance(),
	}
	r.Consistent = r.StoredBalance.Equal(r.LedgerBalance)

	if !r.Consistent {
		zerolog.Ctx(ctx).Warn().
			Str("account_number", a.Number).
			Str("stored_balance", moneypkg.String(r.StoredBalance)).
			Str("ledger_balance", moneypkg.String(r.LedgerBalance)).
			Msg("balance does not match ledger")
	}

	return r, nil
}
