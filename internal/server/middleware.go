package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/digkill/PromptLibrary/internal/service"
)

type ctxKey int

const accountKey ctxKey = iota

// accountFrom returns the caller's account. Requests that skipped
// authentication are guests.
func accountFrom(ctx context.Context) service.Account {
	if acct, ok := ctx.Value(accountKey).(service.Account); ok {
		return acct
	}
	return service.GuestAccount()
}

func withAccount(ctx context.Context, acct service.Account) context.Context {
	return context.WithValue(ctx, accountKey, acct)
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// authenticate resolves the account on every request so plan and admin
// changes apply immediately. A missing token means guest; a bad one is
// rejected.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r.WithContext(withAccount(r.Context(), service.GuestAccount())))
			return
		}
		userID, err := s.svc.Auth.ParseToken(token)
		if err != nil {
			writeErrorCode(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		acct, err := s.svc.Accounts.Load(r.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				writeErrorCode(w, http.StatusUnauthorized, "unauthorized", "unknown user")
				return
			}
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withAccount(r.Context(), acct)))
	})
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if accountFrom(r.Context()).IsGuest() {
			writeErrorCode(w, http.StatusUnauthorized, "unauthorized", "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acct := accountFrom(r.Context())
		if acct.IsGuest() {
			writeErrorCode(w, http.StatusUnauthorized, "unauthorized", "sign in required")
			return
		}
		if !acct.Permissions.IsAdmin {
			writeErrorCode(w, http.StatusForbidden, "forbidden", "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
