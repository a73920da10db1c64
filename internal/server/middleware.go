package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"barangay/pkg/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeyAccount   contextKey = "account"
	contextKeyRequestID contextKey = "request_id"
)

const headerRequestID = "X-Request-ID"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		rw.Header().Set(headerRequestID, requestID)
		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)

		next.ServeHTTP(rw, r.WithContext(ctx))

		elapsed := time.Since(started)
		s.metrics.ObserveHTTP(r.Method, rw.statusCode, elapsed)

		s.logger.WithFields(logrus.Fields{
			"request_id":  requestID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": elapsed.Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth resolves the session cookie to an account and adds it to the
// request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, err := s.sessionAccount(r)
		if err != nil {
			s.logger.WithError(err).Debug("request without a valid session")
			s.writeError(w, types.ErrNotAuthenticated)
			return
		}

		s.logger.WithFields(logrus.Fields{
			"user_id":   account.ID,
			"user_type": account.UserType,
		}).Debug("authenticated user")

		ctx := context.WithValue(r.Context(), contextKeyAccount, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after RequireAuth.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := accountFromContext(r.Context())
		if account == nil {
			s.writeError(w, types.ErrNotAuthenticated)
			return
		}
		if !account.IsAdmin() {
			s.writeError(w, types.ErrAdminRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			// 308 keeps the method and body of API writes
			http.Redirect(w, r, newURL.String(), http.StatusPermanentRedirect)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func accountFromContext(ctx context.Context) *types.Account {
	account, _ := ctx.Value(contextKeyAccount).(*types.Account)
	return account
}

// sessionAccount decodes the session cookie and looks the account up in the
// store, so a deleted account loses its session on the next reload.
func (s *Service) sessionAccount(r *http.Request) (*types.Account, error) {
	cookie, err := r.Cookie(s.config.CookieName)
	if err != nil {
		return nil, err
	}

	var accountID string
	if err := s.cookie.Decode(s.config.CookieName, cookie.Value, &accountID); err != nil {
		return nil, err
	}
	if accountID == "" {
		return nil, errors.New("empty session")
	}

	return s.store.Account(accountID)
}
