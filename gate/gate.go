// Package gate is the passcode lock in front of the app. The client side is
// a two-state machine persisted in session storage; the server side checks
// the passcode and issues signed session tokens. It keeps casual eyes out and
// is not a security boundary.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrWrongPasscode = errors.New("wrong passcode")

// Session storage keys.
const (
	KeyAuthenticated = "authenticated"
	KeyToken         = "token"
)

// Storage is a string key/value store such as appstate.FileStorage.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Verifier checks a passcode and returns a session token (possibly empty).
type Verifier interface {
	Verify(ctx context.Context, passcode string) (string, error)
}

type State int

const (
	Locked State = iota
	Unlocked
)

func (s State) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

type Gate struct {
	mu         sync.Mutex
	session    Storage
	verifier   Verifier
	state      State
	rejections int
}

// New restores the gate from session storage: a gate created over a session
// that was unlocked before starts unlocked.
func New(session Storage, verifier Verifier) *Gate {
	g := &Gate{session: session, verifier: verifier}
	if v, ok := session.Get(KeyAuthenticated); ok && v == "true" {
		g.state = Unlocked
	}
	return g
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Rejections counts wrong attempts since the gate was created.
func (g *Gate) Rejections() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rejections
}

// Token is the session token stored by the last successful unlock.
func (g *Gate) Token() string {
	t, _ := g.session.Get(KeyToken)
	return t
}

// Unlock tries passcode. A wrong passcode leaves the gate locked and
// returns ErrWrongPasscode; other errors (server unreachable) do not count
// as a rejection.
func (g *Gate) Unlock(ctx context.Context, passcode string) error {
	token, err := g.verifier.Verify(ctx, passcode)

	g.mu.Lock()
	defer g.mu.Unlock()
	if errors.Is(err, ErrWrongPasscode) {
		g.rejections++
		return err
	}
	if err != nil {
		return fmt.Errorf("unlock: %w", err)
	}
	// The flag goes last so a restart never finds it without its token.
	if token != "" {
		if err := g.session.Set(KeyToken, token); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}
	if err := g.session.Set(KeyAuthenticated, "true"); err != nil {
		_ = g.session.Delete(KeyToken)
		return fmt.Errorf("persist session: %w", err)
	}
	g.state = Unlocked
	return nil
}

// Lock forgets the session, e.g. after the server rejected the token.
func (g *Gate) Lock() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Locked
	if err := g.session.Delete(KeyAuthenticated); err != nil {
		return err
	}
	return g.session.Delete(KeyToken)
}
