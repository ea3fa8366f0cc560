// Package auth serves the passcode session endpoints and validates session
// tokens for the middleware.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"lovenest/gate"
	"lovenest/logging"
	"lovenest/utils"
)

const CookieName = "lovenest_session"

type Service struct {
	sessions *gate.Sessions
	revoked  Revoker
	log      logging.Logger
}

// NewService wires the session issuer to a revocation list; revoked may be
// nil when logouts need not outlive the process.
func NewService(sessions *gate.Sessions, revoked Revoker, log logging.Logger) *Service {
	if revoked == nil {
		revoked = NewMemoryRevoker()
	}
	return &Service{sessions: sessions, revoked: revoked, log: log.With("component", "auth")}
}

// ValidateToken accepts signed, unexpired tokens that were not logged out.
func (s *Service) ValidateToken(ctx context.Context, token string) error {
	if token == "" {
		return gate.ErrInvalidSession
	}
	if err := s.sessions.Validate(token); err != nil {
		return err
	}
	revoked, err := s.revoked.Revoked(ctx, token)
	if err != nil {
		return err
	}
	if revoked {
		return gate.ErrInvalidSession
	}
	return nil
}

// TokenFromRequest reads "Authorization: Bearer <token>" or the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// POST /api/session {passcode}
func (s *Service) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Passcode string `json:"passcode"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.RespondWithErr(w, err)
		return
	}

	token, exp, err := s.sessions.Issue(body.Passcode)
	if errors.Is(err, gate.ErrWrongPasscode) {
		s.log.Warn(r.Context(), "wrong passcode", "remote", r.RemoteAddr)
		utils.RespondWithError(w, http.StatusUnauthorized, "wrong passcode")
		return
	}
	if err != nil {
		s.log.Error(r.Context(), "issue session", "error", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"token": token, "expiresAt": exp.UTC().Format(time.RFC3339)})
}

// DELETE /api/session
func (s *Service) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if token := TokenFromRequest(r); token != "" {
		if err := s.revoked.Revoke(ctx, token, s.sessions.TTL()); err != nil {
			s.log.Error(ctx, "revoke session", "error", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "failed to invalidate session")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
	})
	w.WriteHeader(http.StatusNoContent)
}
