package server

import (
	"net/http"

	"barangay/internal/notify"
	"barangay/internal/session"
	"barangay/pkg/types"
)

type accountView struct {
	ID       string         `json:"id"`
	Username string         `json:"username"`
	FullName string         `json:"fullName"`
	UserType types.UserType `json:"userType"`
	Created  string         `json:"createdAt"`
}

func newAccountView(a *types.Account) accountView {
	return accountView{
		ID:       a.ID,
		Username: a.Username,
		FullName: a.DisplayName(),
		UserType: a.UserType,
		Created:  a.CreatedAt(),
	}
}

func (s *Service) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, types.NewValidationError("", "invalid form"))
		return
	}

	var in session.SignupInput
	if err := decoder.Decode(&in, r.PostForm); err != nil {
		s.logger.WithError(err).Debug("failed to decode signup form")
		s.writeError(w, types.NewValidationError("", "invalid form"))
		return
	}

	account, err := s.sessions.Signup(r.Context(), in)
	if account == nil {
		s.writeError(w, err)
		return
	}

	s.writeResult(w, http.StatusCreated, err, "Account created! Please login.", map[string]any{
		"account": newAccountView(account),
	})
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, types.NewValidationError("", "invalid form"))
		return
	}

	var creds session.Credentials
	if err := decoder.Decode(&creds, r.PostForm); err != nil {
		s.logger.WithError(err).Debug("failed to decode login form")
		s.writeError(w, types.NewValidationError("", "invalid form"))
		return
	}

	account, err := s.sessions.Authenticate(creds)
	if err != nil {
		s.writeError(w, err)
		return
	}

	encoded, err := s.cookie.Encode(s.config.CookieName, account.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to encode session cookie")
		s.writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    encoded,
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.config.SessionMaxAgeSec,
		Path:     "/",
	})

	s.writeJSON(w, http.StatusOK, map[string]any{
		"notice":  notify.Success("Welcome, " + account.DisplayName()),
		"account": newAccountView(account),
	})
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})

	s.writeJSON(w, http.StatusOK, map[string]any{
		"notice": notify.Success("Logged out"),
	})
}

func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"account": newAccountView(accountFromContext(r.Context())),
	})
}

func (s *Service) secureCookies() bool {
	return s.config.Environment == "production"
}
