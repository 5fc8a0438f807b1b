// Package accountservice manages business logic layer of accounts.
//
// It is the only writer of accounts and ledger entries. Each operation is one unit of
// work of the store: the balance change and its ledger entry commit together or not at all.
package accountservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-petr/pet-ledger/internal/accountnumber"
	"github.com/go-petr/pet-ledger/internal/bankstore"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// NumberGenerator provides free account numbers.
//
// Generate draws at most attempts numbers and reports how many it drew. MaxAttempts is the
// draw budget of one account creation.
type NumberGenerator interface {
	Generate(ctx context.Context, c accountnumber.Checker, attempts int) (number string, draws int, err error)
	MaxAttempts() int
}

// Service facilitates account service layer logic.
type Service struct {
	store     bankstore.Store
	generator NumberGenerator
}

// New returns account service struct to manage account business logic.
func New(store bankstore.Store, generator NumberGenerator) *Service {
	return &Service{
		store:     store,
		generator: generator,
	}
}

// CreateAccount opens an account with the initial deposit as its balance and records the
// account_creation ledger entry.
func (s *Service) CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	insert := domain.InsertAccountParams{
		HolderName: strings.TrimSpace(arg.HolderName),
		Email:      strings.TrimSpace(arg.Email),
		Phone:      strings.TrimSpace(arg.Phone),
		Address:    strings.TrimSpace(arg.Address),
		Balance:    arg.InitialDeposit,
	}

	if insert.HolderName == "" {
		l.Info().Msg(domain.ErrHolderNameRequired.Error())
		return domain.Account{}, domain.ErrHolderNameRequired
	}

	if err := checkHolderFields(insert); err != nil {
		l.Info().Err(err).Send()
		return domain.Account{}, err
	}

	if arg.InitialDeposit.IsNegative() {
		l.Info().Str("initial_deposit", arg.InitialDeposit.String()).Msg(domain.ErrNegativeInitialDeposit.Error())
		return domain.Account{}, domain.ErrNegativeInitialDeposit
	}

	if !moneypkg.Valid(arg.InitialDeposit) {
		l.Info().Str("initial_deposit", arg.InitialDeposit.String()).Msg(domain.ErrInvalidAmount.Error())
		return domain.Account{}, domain.ErrInvalidAmount
	}

	var account domain.Account

	// A number taken between the generator check and the insert is retried with a fresh
	// number. Draws made by every try count against one budget.
	remaining := s.generator.MaxAttempts()

	for {
		var draws int

		err := s.store.ExecTx(ctx, func(q bankstore.Querier) error {
			number, n, err := s.generator.Generate(ctx, q, remaining)
			draws = n
			if err != nil {
				return err
			}

			insert.Number = number

			account, err = q.CreateAccount(ctx, insert)
			if err != nil {
				return err
			}

			_, err = q.CreateTransaction(ctx, domain.CreateTransactionParams{
				AccountID:   account.ID,
				Type:        domain.TypeAccountCreation,
				Amount:      arg.InitialDeposit,
				Description: domain.DescriptionAccountCreation,
			})

			return err
		})

		if err == nil {
			break
		}

		remaining -= draws

		if !errors.Is(err, domain.ErrAccountNumberTaken) {
			return domain.Account{}, err
		}

		if remaining <= 0 {
			l.Error().Int("attempts", s.generator.MaxAttempts()).Msg(domain.ErrGenerationExhausted.Error())
			return domain.Account{}, domain.ErrGenerationExhausted
		}

		l.Info().Int("remaining_attempts", remaining).Msg("account number taken concurrently, retrying")
	}

	l.Info().Str("account_number", account.Number).Msg("account created")

	return account, nil
}

// Deposit adds amount to the account balance and records a deposit ledger entry.
//
// It returns the committed balance.
func (s *Service) Deposit(ctx context.Context, number string, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	return s.apply(ctx, number, amount, description, domain.TypeDeposit)
}

// Withdraw subtracts amount from the account balance and records a withdrawal ledger entry.
//
// The balance check runs under the account row lock, so concurrent withdrawals cannot
// jointly overdraw the account. It returns the committed balance.
func (s *Service) Withdraw(ctx context.Context, number string, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	return s.apply(ctx, number, amount, description, domain.TypeWithdrawal)
}

func (s *Service) apply(
	ctx context.Context,
	number string, amount decimal.Decimal, description string,
	typ domain.TransactionType,
) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx).With().Str("account_number", number).Str("type", string(typ)).Logger()

	description, err := normalizeDescription(description, typ)
	if err != nil {
		l.Info().Err(err).Send()
		return decimal.Zero, err
	}

	var balance decimal.Decimal

	err = s.store.ExecTx(ctx, func(q bankstore.Querier) error {
		account, err := q.GetAccountForUpdate(ctx, number)
		if err != nil {
			return err
		}

		if !amount.IsPositive() || !moneypkg.Valid(amount) {
			return domain.ErrInvalidAmount
		}

		delta := amount
		if typ.IsDebit() {
			if amount.GreaterThan(account.Balance) {
				return fmt.Errorf("%w: balance %s, requested %s",
					domain.ErrInsufficientFunds, moneypkg.String(account.Balance), moneypkg.String(amount))
			}

			delta = amount.Neg()
		}

		if !moneypkg.Valid(account.Balance.Add(delta)) {
			return domain.ErrBalanceLimit
		}

		updated, err := q.AddAccountBalance(ctx, account.ID, delta)
		if err != nil {
			return err
		}

		_, err = q.CreateTransaction(ctx, domain.CreateTransactionParams{
			AccountID:   account.ID,
			Type:        typ,
			Amount:      amount,
			Description: description,
		})
		if err != nil {
			return err
		}

		balance = updated.Balance

		return nil
	})

	if err != nil {
		l.Info().Err(err).Str("amount", moneypkg.String(amount)).Msg("balance change rejected")
		return decimal.Zero, err
	}

	l.Info().Str("amount", moneypkg.String(amount)).Str("balance", moneypkg.String(balance)).Msg("balance changed")

	return balance, nil
}

func checkHolderFields(arg domain.InsertAccountParams) error {
	fields := []struct {
		name  string
		value string
		limit int
	}{
		{"holder name", arg.HolderName, domain.MaxHolderNameLength},
		{"email", arg.Email, domain.MaxEmailLength},
		{"phone", arg.Phone, domain.MaxPhoneLength},
	}

	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > f.limit {
			return fmt.Errorf("%w: %s exceeds %d characters", domain.ErrHolderFieldTooLong, f.name, f.limit)
		}
	}

	return nil
}

func normalizeDescription(description string, typ domain.TransactionType) (string, error) {
	description = strings.TrimSpace(description)

	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		return "", domain.ErrDescriptionTooLong
	}

	if description != "" {
		return description, nil
	}

	if typ == domain.TypeWithdrawal {
		return domain.DescriptionWithdrawal, nil
	}

	return domain.DescriptionDeposit, nil
}
