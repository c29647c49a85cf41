// Package otp generates the numeric one-time codes emailed to users
// before a sensitive-settings unlock.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const Digits = 6

// NewCode returns a zero-padded 6-digit code drawn from crypto/rand.
func NewCode() (string, error) {
	// 10^Digits
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(Digits), nil)

	n, err := rand.Int(rand.Reader, max)

	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	return fmt.Sprintf("%0*d", Digits, n), nil
}
