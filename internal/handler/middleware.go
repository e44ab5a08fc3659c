package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/unclebandit/mailtrack-backend/internal/controller"
	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/logger"
	"github.com/unclebandit/mailtrack-backend/internal/metrics"
	"github.com/unclebandit/mailtrack-backend/internal/model"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Staff, error)
}

// RequireStaff rejects requests without a valid session and stores the
// staff member in the request context.
func RequireStaff(auth Authenticator, lggr logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			staff, err := auth.Authenticate(r.Context(), controller.SessionToken(r))
			if err != nil {
				status := http.StatusUnauthorized
				if !errors.Is(err, appErrors.ErrUnauthorized) {
					lggr.Errorw("Session lookup failed", "err", err)
					status = http.StatusInternalServerError
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				w.Write([]byte(`{"error":"` + http.StatusText(status) + `"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(controller.WithStaff(r.Context(), staff)))
		})
	}
}

// OptionalStaff resolves the session when present but never rejects.
func OptionalStaff(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := controller.SessionToken(r); token != "" {
				if staff, err := auth.Authenticate(r.Context(), token); err == nil {
					r = r.WithContext(controller.WithStaff(r.Context(), staff))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per request.
func RequestLogger(lggr logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			lggr.Infow("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// Instrument records request counts and latency by route pattern.
func Instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
