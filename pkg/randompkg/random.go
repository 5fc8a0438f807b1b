// Package randompkg provides functionality for generating random application items.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Int63n is a shortcut for generating a random integer in [0, n) using crypto/rand.
func Int63n(n int64) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Intn is Int63n for int bounds.
func Intn(n int) int {
	return int(Int63n(int64(n)))
}

// Int64Between generates a uniformly distributed integer in the closed range [min, max].
func Int64Between(min, max int64) int64 {
	return min + Int63n(max-min+1)
}

// String generates a random string of length n.
func String(n int) string {
	var sb strings.Builder

	k := len(alphabet)

	for i := 0; i < n; i++ {
		c := alphabet[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// HolderName generates a random account holder name.
func HolderName() string {
	return strings.ToUpper(String(1)) + String(7)
}

// Email generates a random email.
func Email() string {
	return fmt.Sprintf("%s@email.com", String(10))
}

// Phone generates a random phone number.
func Phone() string {
	return fmt.Sprintf("555-%04d", Intn(10_000))
}

// MoneyAmountBetween generates a random amount of money in cents precision between min and max.
func MoneyAmountBetween(min, max int64) decimal.Decimal {
	cents := Int64Between(min*100, max*100)
	return decimal.New(cents, -2)
}
