package appstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovenest/gate"
	"lovenest/theme"
)

type tokenVerifier struct{ token string }

func (v tokenVerifier) Verify(_ context.Context, passcode string) (string, error) {
	if passcode != "0214" {
		return "", gate.ErrWrongPasscode
	}
	return v.token, nil
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func paths(t *testing.T) Paths {
	dir := t.TempDir()
	return Paths{Session: filepath.Join(dir, "cache", "session.json"), Local: filepath.Join(dir, "config", "settings.json")}
}

func TestFileStorage_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "s.json")
	s, err := OpenFileStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, s.Set("b", "2"))
	require.NoError(t, s.Delete("a"))

	again, err := OpenFileStorage(path)
	require.NoError(t, err)
	_, ok := again.Get("a")
	assert.False(t, ok)
	v, ok := again.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	require.NoError(t, again.Clear())
	cleared, err := OpenFileStorage(path)
	require.NoError(t, err)
	_, ok = cleared.Get("b")
	assert.False(t, ok)
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := OpenFileStorage(path)
	assert.Error(t, err)
}

func TestOpen_UnlockSurvivesRestart(t *testing.T) {
	p := paths(t)
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	verifier := tokenVerifier{token: signed(t, now.Add(time.Hour))}

	app, err := Open(p, verifier, now)
	require.NoError(t, err)
	assert.Equal(t, gate.Locked, app.Gate.State())
	require.ErrorIs(t, app.Gate.Unlock(context.Background(), "nope"), gate.ErrWrongPasscode)
	require.NoError(t, app.Gate.Unlock(context.Background(), "0214"))
	_, err = app.Theme.Toggle()
	require.NoError(t, err)

	restarted, err := Open(p, verifier, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, gate.Unlocked, restarted.Gate.State())
	assert.Equal(t, theme.Starry, restarted.Theme.Mode())
}

func TestOpen_ExpiredSessionStartsLocked(t *testing.T) {
	p := paths(t)
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	verifier := tokenVerifier{token: signed(t, now.Add(time.Hour))}

	app, err := Open(p, verifier, now)
	require.NoError(t, err)
	require.NoError(t, app.Gate.Unlock(context.Background(), "0214"))

	later, err := Open(p, verifier, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, gate.Locked, later.Gate.State())
	assert.Empty(t, later.Gate.Token())
}

func TestTokenExpiry_NoToken(t *testing.T) {
	s := NewMemoryStorage()
	_, ok := TokenExpiry(s)
	assert.False(t, ok)
	require.NoError(t, s.Set(gate.KeyToken, "garbage"))
	assert.False(t, SessionExpired(s, time.Now()))
}
