package accountnumber

import (
	"context"
	"strconv"
	"testing"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/stretchr/testify/require"
)

type setChecker struct {
	taken map[string]bool
	calls int
	err   error
}

func (c *setChecker) AccountNumberExists(_ context.Context, number string) (bool, error) {
	c.calls++
	if c.err != nil {
		return false, c.err
	}

	return c.taken[number], nil
}

func sequence(values ...int64) func() int64 {
	i := 0

	return func() int64 {
		v := values[i%len(values)]
		i++

		return v
	}
}

func TestGenerate(t *testing.T) {
	testCases := []struct {
		name          string
		maxAttempts   int
		draws         []int64
		taken         []string
		checkerErr    error
		checkResponse func(t *testing.T, number string, draws int, err error, c *setChecker)
	}{
		{
			name:        "FirstDrawFree",
			maxAttempts: 3,
			draws:       []int64{1234567890},
			checkResponse: func(t *testing.T, number string, draws int, err error, c *setChecker) {
				require.NoError(t, err)
				require.Equal(t, "1234567890", number)
				require.Equal(t, 1, draws)
				require.Equal(t, 1, c.calls)
			},
		},
		{
			name:        "RedrawOnCollision",
			maxAttempts: 3,
			draws:       []int64{1111111111, 2222222222, 3333333333},
			taken:       []string{"1111111111", "2222222222"},
			checkResponse: func(t *testing.T, number string, draws int, err error, c *setChecker) {
				require.NoError(t, err)
				require.Equal(t, "3333333333", number)
				require.Equal(t, 3, draws)
				require.Equal(t, 3, c.calls)
			},
		},
		{
			name:        "Exhausted",
			maxAttempts: 2,
			draws:       []int64{1111111111},
			taken:       []string{"1111111111"},
			checkResponse: func(t *testing.T, number string, draws int, err error, c *setChecker) {
				require.ErrorIs(t, err, domain.ErrGenerationExhausted)
				require.Empty(t, number)
				require.Equal(t, 2, draws)
				require.Equal(t, 2, c.calls)
			},
		},
		{
			name:        "CheckerError",
			maxAttempts: 2,
			draws:       []int64{1111111111},
			checkerErr:  errorspkg.ErrStorage,
			checkResponse: func(t *testing.T, number string, draws int, err error, c *setChecker) {
				require.ErrorIs(t, err, errorspkg.ErrStorage)
				require.Empty(t, number)
				require.Equal(t, 1, draws)
				require.Equal(t, 1, c.calls)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			g := New(tc.maxAttempts)
			g.draw = sequence(tc.draws...)

			c := &setChecker{taken: map[string]bool{}, err: tc.checkerErr}
			for _, n := range tc.taken {
				c.taken[n] = true
			}

			number, draws, err := g.Generate(context.Background(), c, g.MaxAttempts())
			tc.checkResponse(t, number, draws, err, c)
		})
	}
}

func TestGenerateUniqueAgainstStore(t *testing.T) {
	g := New(DefaultMaxAttempts)
	c := &setChecker{taken: map[string]bool{}}

	for i := 0; i < 1_000; i++ {
		number, _, err := g.Generate(context.Background(), c, g.MaxAttempts())
		require.NoError(t, err)
		require.False(t, c.taken[number], "generated number %s already present", number)
		require.True(t, Valid(number))

		n, err := strconv.ParseInt(number, 10, 64)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, Min)
		require.LessOrEqual(t, n, Max)

		c.taken[number] = true
	}
}

func TestGenerateStopsAtGivenAttempts(t *testing.T) {
	g := New(5)
	g.draw = sequence(1111111111)

	c := &setChecker{taken: map[string]bool{"1111111111": true}}

	number, draws, err := g.Generate(context.Background(), c, 2)
	require.ErrorIs(t, err, domain.ErrGenerationExhausted)
	require.Empty(t, number)
	require.Equal(t, 2, draws)
	require.Equal(t, 2, c.calls)

	_, draws, err = g.Generate(context.Background(), c, 0)
	require.ErrorIs(t, err, domain.ErrGenerationExhausted)
	require.Zero(t, draws)
	require.Equal(t, 2, c.calls)
}

func TestNewDefaultsAttempts(t *testing.T) {
	require.Equal(t, DefaultMaxAttempts, New(0).MaxAttempts())
	require.Equal(t, 5, New(5).MaxAttempts())
}

func TestValid(t *testing.T) {
	require.True(t, Valid("1000000000"))
	require.True(t, Valid("9999999999"))
	require.False(t, Valid("0999999999"))
	require.False(t, Valid("999999999"))
	require.False(t, Valid("12345678901"))
	require.False(t, Valid("12345a7890"))
}
