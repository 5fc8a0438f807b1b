// Package accountnumber generates external account numbers.
package accountnumber

import (
	"context"
	"strconv"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/rs/zerolog"
)

// Account numbers are 10-digit strings drawn uniformly from [Min, Max].
const (
	Min int64 = 1_000_000_000
	Max int64 = 9_999_999_999
)

// DefaultMaxAttempts is used when the generator is configured without a positive limit.
const DefaultMaxAttempts = 16

// Checker reports whether a number is already used by an account.
type Checker interface {
	AccountNumberExists(ctx context.Context, number string) (bool, error)
}

// Generator draws account numbers that are free at the time of the check.
//
// It reserves nothing: the caller inserts the account and relies on the unique
// constraint to catch a concurrent insert of the same number.
type Generator struct {
	maxAttempts int
	draw        func() int64
}

// New returns Generator with a budget of maxAttempts draws per account.
func New(maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return &Generator{
		maxAttempts: maxAttempts,
		draw: func() int64 {
			return randompkg.Int64Between(Min, Max)
		},
	}
}

// MaxAttempts returns the draw budget of one account creation.
func (g *Generator) MaxAttempts() int {
	return g.maxAttempts
}

// Generate returns a number that c does not know yet, drawing at most attempts times.
// It also returns the number of draws made, so that callers retrying after an insert
// collision can keep one budget across calls.
func (g *Generator) Generate(ctx context.Context, c Checker, attempts int) (string, int, error) {
	l := zerolog.Ctx(ctx)

	for attempt := 1; attempt <= attempts; attempt++ {
		number := strconv.FormatInt(g.draw(), 10)

		exists, err := c.AccountNumberExists(ctx, number)
		if err != nil {
			return "", attempt, err
		}

		if !exists {
			return number, attempt, nil
		}

		l.Debug().Str("account_number", number).Int("attempt", attempt).Msg("account number collision")
	}

	l.Error().Int("attempts", attempts).Msg(domain.ErrGenerationExhausted.Error())

	return "", max(attempts, 0), domain.ErrGenerationExhausted
}

// Valid reports whether s has the shape of an account number.
func Valid(s string) bool {
	if len(s) != 10 || s[0] == '0' {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
