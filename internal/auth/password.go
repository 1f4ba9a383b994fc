// Package auth implements the single-admin login, token verification and
// password change.
package auth

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used in production.
const DefaultCost = 12

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores anything longer
)

var errMismatch = errors.New("auth: invalid password")

// Passwords hashes and compares bcrypt passwords. The cost is injectable so
// tests can use bcrypt.MinCost.
type Passwords struct {
	cost int
}

func NewPasswords(cost int) *Passwords {
	if cost < bcrypt.MinCost {
		cost = DefaultCost
	}
	return &Passwords{cost: cost}
}

func (p *Passwords) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordLen {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", maxPasswordLen)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil when plaintext matches hash.
func (p *Passwords) Verify(hash, plaintext string) error {
	if hash == "" {
		return errMismatch
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return errMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// PolicyViolations lists every rule pw breaks; empty means acceptable.
func PolicyViolations(pw string) []string {
	var out []string
	if len(pw) < minPasswordLen {
		out = append(out, fmt.Sprintf("New password must be at least %d characters", minPasswordLen))
	}
	if len(pw) > maxPasswordLen {
		out = append(out, fmt.Sprintf("New password must be at most %d bytes", maxPasswordLen))
	}
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			symbol = true
		}
	}
	if !lower {
		out = append(out, "New password must contain a lowercase letter")
	}
	if !upper {
		out = append(out, "New password must contain an uppercase letter")
	}
	if !digit {
		out = append(out, "New password must contain a number")
	}
	if !symbol {
		out = append(out, "New password must contain a special character")
	}
	return out
}
