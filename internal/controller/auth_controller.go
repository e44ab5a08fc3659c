package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/unclebandit/mailtrack-backend/internal/logger"
	"github.com/unclebandit/mailtrack-backend/internal/model"
	"github.com/unclebandit/mailtrack-backend/internal/service"
)

type AuthService interface {
	SignUp(ctx context.Context, c service.Credentials) (*service.SessionToken, error)
	SignIn(ctx context.Context, c service.Credentials) (*service.SessionToken, error)
	SignOut(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*model.Staff, error)
}

var _ AuthService = (*service.AuthService)(nil)

type AuthController struct {
	AuthService AuthService
	Log         logger.Logger
	// SecureCookie marks the session cookie Secure; enable behind HTTPS.
	SecureCookie bool
}

func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	c.startSession(w, r, http.StatusCreated, c.AuthService.SignUp)
}

func (c *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	c.startSession(w, r, http.StatusOK, c.AuthService.SignIn)
}

func (c *AuthController) startSession(w http.ResponseWriter, r *http.Request, status int,
	fn func(context.Context, service.Credentials) (*service.SessionToken, error)) {
	var body service.Credentials
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, c.Log, err)
		return
	}

	tok, err := fn(r.Context(), body)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.ExpiresAt,
		HttpOnly: true,
		Secure:   c.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, status, tok)
}

func (c *AuthController) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := c.AuthService.SignOut(r.Context(), SessionToken(r)); err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the staff member resolved by the session middleware.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	staff := StaffFromContext(r.Context())
	if staff == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": staff})
}
