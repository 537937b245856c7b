package vault

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// DefaultPasswordLength is used whenever the caller does not supply a
	// password of their own.
	DefaultPasswordLength = 12

	// MinPasswordLength is the floor for generated passwords.
	MinPasswordLength = 8

	passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GeneratePassword produces a random password of n characters drawn from a
// mixed-case alphanumeric alphabet using crypto/rand. Lengths below
// MinPasswordLength are raised to it.
func GeneratePassword(n int) (string, error) {
	if n < MinPasswordLength {
		n = MinPasswordLength
	}
	alphabetLen := big.NewInt(int64(len(passwordAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		buf[i] = passwordAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
