package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// CodeDigits is the length of a verification code.
	CodeDigits = 6

	// DefaultCost is the default bcrypt cost for stored codes
	DefaultCost = bcrypt.DefaultCost
)

var (
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	randomRead                 = rand.Read
)

// GenerateCode returns a uniformly distributed numeric code of CodeDigits digits.
func GenerateCode() (string, error) {
	out := make([]byte, CodeDigits)
	buf := make([]byte, 1)
	for i := 0; i < CodeDigits; {
		if _, err := randomRead(buf); err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		// 250 is the largest multiple of 10 below 256; rejecting above it keeps digits unbiased.
		if buf[0] >= 250 {
			continue
		}
		out[i] = '0' + buf[0]%10
		i++
	}
	return string(out), nil
}

// HashCode hashes a verification code using bcrypt
func HashCode(code string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	bytes, err := bcryptGenerateFromPassword([]byte(code), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}
	return string(bytes), nil
}

// CheckCode compares a submitted code with a stored hash.
// A malformed hash is reported as an error, a plain mismatch is not.
func CheckCode(code, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to compare code: %w", err)
}

// IsNumericCode reports whether s looks like a verification code.
func IsNumericCode(s string) bool {
	if len(s) != CodeDigits {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
