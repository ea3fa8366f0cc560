// Package appstate builds the client's context object: session and local
// storage, the passcode gate and the theme switcher. It is created once at
// startup and passed down to the views.
package appstate

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lovenest/gate"
	"lovenest/theme"
)

type Context struct {
	Session Storage
	Local   Storage
	Gate    *gate.Gate
	Theme   *theme.Switcher
}

func New(session, local Storage, verifier gate.Verifier) *Context {
	return &Context{
		Session: session,
		Local:   local,
		Gate:    gate.New(session, verifier),
		Theme:   theme.NewSwitcher(local),
	}
}

// Paths locates the two storage files.
type Paths struct {
	Session string
	Local   string
}

// DefaultPaths puts the session under the user cache dir and settings under
// the user config dir.
func DefaultPaths() (Paths, error) {
	cache, err := os.UserCacheDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user cache dir: %w", err)
	}
	cfg, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	return Paths{
		Session: filepath.Join(cache, "lovenest", "session.json"),
		Local:   filepath.Join(cfg, "lovenest", "settings.json"),
	}, nil
}

// Open loads both storages from disk. A session whose token has expired is
// cleared, so the gate starts locked.
func Open(p Paths, verifier gate.Verifier, now time.Time) (*Context, error) {
	session, err := OpenFileStorage(p.Session)
	if err != nil {
		return nil, err
	}
	if SessionExpired(session, now) {
		if err := session.Clear(); err != nil {
			return nil, err
		}
	}
	local, err := OpenFileStorage(p.Local)
	if err != nil {
		return nil, err
	}
	return New(session, local, verifier), nil
}

// SessionExpired reports whether the stored token carries an exp claim in
// the past. The signature is not checked; the server does that.
func SessionExpired(s Storage, now time.Time) bool {
	exp, ok := TokenExpiry(s)
	return ok && !now.Before(exp)
}

func TokenExpiry(s Storage) (time.Time, bool) {
	raw, ok := s.Get(gate.KeyToken)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
