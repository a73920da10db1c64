package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"barangay/internal/complaint"
	"barangay/internal/metrics"
	"barangay/internal/records"
	"barangay/internal/session"
	"barangay/internal/store"
	"barangay/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger     *logrus.Logger
	config     *types.Config
	store      *store.Store
	sessions   *session.Manager
	complaints *complaint.Manager
	records    *records.Facade
	metrics    *metrics.Metrics

	cookie *securecookie.SecureCookie

	handler http.Handler
	server  *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	store *store.Store,
	sessions *session.Manager,
	complaints *complaint.Manager,
	records *records.Facade,
	metrics *metrics.Metrics,
) (*Service, error) {
	mux := flow.New()

	hashKey, blockKey, err := cookieKeys(config, logger)
	if err != nil {
		return nil, err
	}

	cookie := securecookie.New(hashKey, blockKey)
	if config.SessionMaxAgeSec > 0 {
		cookie.MaxAge(config.SessionMaxAgeSec)
	}

	s := &Service{
		logger:     logger,
		config:     config,
		store:      store,
		sessions:   sessions,
		complaints: complaints,
		records:    records,
		metrics:    metrics,
		cookie:     cookie,
		handler:    mux,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

// cookieKeys decodes the configured cookie keys. Missing keys are generated,
// which means sessions do not survive a restart.
func cookieKeys(config *types.Config, logger *logrus.Logger) ([]byte, []byte, error) {
	if config.CookieHashKey == "" {
		logger.Warn("COOKIE_HASH_KEY not set, generating an ephemeral session key")
		return securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32), nil
	}

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode cookie hash key: %w", err)
	}

	var blockKey []byte
	if config.CookieBlockKey != "" {
		blockKey, err = base64.StdEncoding.DecodeString(config.CookieBlockKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode cookie block key: %w", err)
		}
	}

	return hashKey, blockKey, nil
}

func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler(), http.MethodGet)

	r.HandleFunc("/api/signup", s.handleSignup, http.MethodPost)
	r.HandleFunc("/api/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/api/logout", s.handleLogout, http.MethodPost)

	r.HandleFunc("/api/complaints", s.handleComplaints, http.MethodGet)
	r.HandleFunc("/api/complaints/:id", s.handleComplaint, http.MethodGet)
	r.HandleFunc("/api/announcements", s.handleAnnouncements, http.MethodGet)
	r.HandleFunc("/api/officials", s.handleOfficials, http.MethodGet)
	r.HandleFunc("/api/hotlines", s.handleHotlines, http.MethodGet)
	r.HandleFunc("/api/households", s.handleHouseholds, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/api/me", s.handleMe, http.MethodGet)
		r.HandleFunc("/api/complaints", s.handleSubmitComplaint, http.MethodPost)
		r.HandleFunc("/api/complaints/:id/upvote", s.handleUpvote, http.MethodPost)

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireAdmin)

			r.HandleFunc("/api/complaints/:id/status", s.handleSetStatus, http.MethodPut)
			r.HandleFunc("/api/admin/report", s.handleReport, http.MethodGet)
			r.HandleFunc("/api/admin/reconcile", s.handleReconcile, http.MethodPost)
			r.HandleFunc("/api/admin/:kind", s.handleAdminCreate, http.MethodPost)
			r.HandleFunc("/api/admin/:kind/:id", s.handleAdminUpdate, http.MethodPatch)
			r.HandleFunc("/api/admin/:kind/:id", s.handleAdminDelete, http.MethodDelete)
		})
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"generation": s.store.Generation(),
		"loadedAt":   s.store.LoadedAt(),
	})
}
