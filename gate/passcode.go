package gate

import (
	"context"
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Checker decides whether a passcode is right.
type Checker interface {
	Check(passcode string) bool
}

// Plain compares against a plaintext secret in constant time.
type Plain string

func (p Plain) Check(passcode string) bool {
	return subtle.ConstantTimeCompare([]byte(p), []byte(passcode)) == 1
}

// Hashed compares against a bcrypt hash of the secret.
type Hashed []byte

func (h Hashed) Check(passcode string) bool {
	return bcrypt.CompareHashAndPassword(h, []byte(passcode)) == nil
}

// HashPasscode returns the bcrypt hash to put in configuration.
func HashPasscode(passcode string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	return string(h), err
}

// NewChecker prefers hash when set.
func NewChecker(plain, hash string) Checker {
	if hash != "" {
		return Hashed(hash)
	}
	return Plain(plain)
}

// Local verifies passcodes without a server and issues no token.
type Local struct {
	Checker Checker
}

func (l Local) Verify(_ context.Context, passcode string) (string, error) {
	if !l.Checker.Check(passcode) {
		return "", ErrWrongPasscode
	}
	return "", nil
}
