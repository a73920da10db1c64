// Package session authenticates portal accounts and tracks the active one.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"barangay/internal/guard"
	"barangay/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AccountSource interface {
	Reload(ctx context.Context) error
	Accounts() []types.Account
	AccountByUsername(username string) (*types.Account, bool)
}

type RecordCreator interface {
	Create(ctx context.Context, record types.Record) (types.Record, error)
}

type Options struct {
	BcryptCost int
	// AllowLegacyPasswords accepts accounts whose stored password is not a
	// bcrypt hash, comparing it in constant time.
	AllowLegacyPasswords bool
}

type Credentials struct {
	Username string         `form:"username"`
	Password string         `form:"password"`
	UserType types.UserType `form:"user_type"`
	AdminID  string         `form:"admin_id"`
}

type SignupInput struct {
	Username string         `form:"username"`
	Password string         `form:"password"`
	FullName string         `form:"full_name"`
	UserType types.UserType `form:"user_type"`
	AdminID  string         `form:"admin_id"`
}

type Manager struct {
	accounts AccountSource
	records  RecordCreator
	guard    *guard.Guard
	logger   *logrus.Logger
	opts     Options

	mu     sync.RWMutex
	active *types.Account
}

func NewManager(accounts AccountSource, records RecordCreator, g *guard.Guard, logger *logrus.Logger, opts Options) *Manager {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	return &Manager{
		accounts: accounts,
		records:  records,
		guard:    g,
		logger:   logger,
		opts:     opts,
	}
}

// Authenticate finds the account matching username and user type (and the
// admin id, for admins) whose password verifies. It does not touch the
// active session.
func (m *Manager) Authenticate(creds Credentials) (*types.Account, error) {
	username := strings.TrimSpace(creds.Username)
	userType := creds.UserType
	if userType == "" {
		userType = types.UserTypeResident
	}

	for _, account := range m.accounts.Accounts() {
		if account.Username != username || account.UserType != userType {
			continue
		}
		if userType == types.UserTypeAdmin && account.AdminID != creds.AdminID {
			continue
		}
		if !m.verify(&account, creds.Password) {
			continue
		}

		return &account, nil
	}

	return nil, types.ErrInvalidCredentials
}

func (m *Manager) verify(account *types.Account, password string) bool {
	if IsHashed(account.Password) {
		return VerifyPassword(account.Password, password)
	}

	entry := m.logger.WithField("user_id", account.ID)
	if !m.opts.AllowLegacyPasswords {
		entry.Warn("account has an unhashed password, rejecting login")
		return false
	}

	entry.Warn("account has an unhashed password, comparing as legacy")
	return verifyLegacy(account.Password, password)
}

// Login authenticates and makes the account the active session.
func (m *Manager) Login(creds Credentials) (*types.Account, error) {
	account, err := m.Authenticate(creds)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.active = account
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"user_id":   account.ID,
		"user_type": account.UserType,
	}).Info("user logged in")

	return account, nil
}

func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		m.logger.WithField("user_id", m.active.ID).Info("user logged out")
	}
	m.active = nil
}

func (m *Manager) Current() (*types.Account, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.active == nil {
		return nil, false
	}
	account := *m.active
	return &account, true
}

// Require returns the active account or types.ErrNotAuthenticated.
func (m *Manager) Require() (*types.Account, error) {
	account, ok := m.Current()
	if !ok {
		return nil, types.ErrNotAuthenticated
	}
	return account, nil
}

// Signup creates a new account. The username must not be taken by any
// existing account; the admin id is kept only for admins. The new account is
// not logged in.
func (m *Manager) Signup(ctx context.Context, in SignupInput) (*types.Account, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, types.NewValidationError("", "provide username and password")
	}

	userType := in.UserType
	if userType == "" {
		userType = types.UserTypeResident
	}
	if !userType.Valid() {
		return nil, types.NewValidationError("user_type", "must be resident or admin")
	}

	release, err := m.guard.Acquire(ctx, guard.Key("signup", username))
	if err != nil {
		return nil, err
	}
	defer release()

	// The check runs under the token and against fresh accounts, so a
	// signup that finished since the last reload is seen.
	if err := m.accounts.Reload(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh accounts: %w", err)
	}
	if _, taken := m.accounts.AccountByUsername(username); taken {
		return nil, fmt.Errorf("%w: %s", types.ErrDuplicateUsername, username)
	}

	hash, err := HashPassword(in.Password, m.opts.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, types.NewValidationError("password", "is too long")
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &types.Account{
		Username: username,
		Password: hash,
		FullName: strings.TrimSpace(in.FullName),
		UserType: userType,
	}
	if userType == types.UserTypeAdmin {
		account.AdminID = in.AdminID
	}

	created, err := m.records.Create(ctx, account)
	if created == nil {
		return nil, err
	}

	m.logger.WithFields(logrus.Fields{
		"user_id":   created.RecordID(),
		"user_type": userType,
	}).Info("account created")

	return created.(*types.Account), err
}
