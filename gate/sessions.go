package gate

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSession = errors.New("invalid session")

const issuer = "lovenest"

// Claims of a session token. There is one shared passcode, so no subject.
type Claims struct {
	jwt.RegisteredClaims
}

// Sessions exchanges a correct passcode for an HS256 token.
type Sessions struct {
	checker Checker
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

func NewSessions(checker Checker, secret []byte, ttl time.Duration) *Sessions {
	return &Sessions{checker: checker, secret: secret, ttl: ttl, now: time.Now}
}

func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue returns a token valid for the configured TTL.
func (s *Sessions) Issue(passcode string) (string, time.Time, error) {
	if !s.checker.Check(passcode) {
		return "", time.Time{}, ErrWrongPasscode
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, exp, nil
}

func (s *Sessions) Validate(token string) error {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return nil
}
