package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/unclebandit/mailtrack-backend/internal/model"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "mailtrack_session"

type ctxKey int

const staffKey ctxKey = iota

func WithStaff(ctx context.Context, s *model.Staff) context.Context {
	return context.WithValue(ctx, staffKey, s)
}

// StaffFromContext returns the signed-in staff member, or nil.
func StaffFromContext(ctx context.Context) *model.Staff {
	s, _ := ctx.Value(staffKey).(*model.Staff)
	return s
}

// SessionToken reads the token from "Authorization: Bearer" or the session cookie.
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
