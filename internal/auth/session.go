package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"scholarvault/internal/domain"
	"scholarvault/internal/domain/models"
	"scholarvault/internal/domain/models/library"
)

// Session is the authenticated state of the process. It is never mutated
// after creation; login and logout replace it.
type Session struct {
	Token  string
	User   library.User
	Claims *models.SessionClaims
	// Offline is set when the stored token could not be exchanged because
	// the API was unreachable. Cached data may still be read.
	Offline bool
}

// UserID prefers the server's user record over the token subject
func (s *Session) UserID() string {
	if s.User.ID != "" {
		return s.User.ID
	}
	if s.Claims != nil {
		return s.Claims.GetUserID()
	}
	return ""
}

// Authenticator is the slice of the API client the session needs
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*library.LoginResponse, error)
	Register(ctx context.Context, email, password, username string) (*library.User, error)
	Me(ctx context.Context) (*library.User, error)
}

// Manager owns the single process-wide session. Init and Logout are the
// explicit setup and teardown points.
type Manager struct {
	api      Authenticator
	store    CredentialStore
	verifier TokenVerifier
	apiURL   string
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.RWMutex
	current *Session
}

func NewManager(api Authenticator, store CredentialStore, verifier TokenVerifier, apiURL string, logger *slog.Logger) *Manager {
	return &Manager{
		api:      api,
		store:    store,
		verifier: verifier,
		apiURL:   apiURL,
		logger:   logger,
		now:      time.Now,
	}
}

// Init restores the session from stored credentials.
//
// No stored token leaves the process logged out. An expired or malformed
// token, or one the server rejects, is cleared. When the server cannot be
// reached the session is restored offline from the token claims.
func (m *Manager) Init(ctx context.Context) error {
	creds, err := m.store.Load()
	if errors.Is(err, os.ErrNotExist) {
		m.logger.Debug("no stored credentials")
		return nil
	}
	if err != nil {
		m.logger.Warn("discarding unreadable credentials", "error", err)
		return m.store.Clear()
	}

	claims, err := m.verifier.VerifyToken(creds.Token)
	if err != nil {
		m.logger.Info("stored token rejected", "error", err)
		return m.store.Clear()
	}

	probe := &Session{Token: creds.Token, Claims: claims}
	user, err := m.api.Me(WithSession(ctx, probe))
	switch {
	case err == nil:
		m.set(&Session{Token: creds.Token, User: *user, Claims: claims})
		m.logger.Debug("session restored", "user_id", user.ID)
		return nil
	case errors.Is(err, domain.ErrRemote):
		m.logger.Info("server rejected stored token", "error", err)
		return m.store.Clear()
	default:
		m.logger.Warn("API unreachable, restoring session offline", "error", err)
		m.set(&Session{
			Token:   creds.Token,
			User:    library.User{ID: claims.GetUserID(), Email: claims.Email},
			Claims:  claims,
			Offline: true,
		})
		return nil
	}
}

// Login authenticates, persists the token and installs the session
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	claims, err := m.verifier.VerifyToken(resp.Token)
	if err != nil {
		return nil, fmt.Errorf("login returned unusable token: %w", err)
	}

	session := &Session{Token: resp.Token, User: resp.User, Claims: claims}
	if err := m.store.Save(&Credentials{
		Token:   resp.Token,
		UserID:  resp.User.ID,
		Email:   resp.User.Email,
		APIURL:  m.apiURL,
		SavedAt: m.now(),
	}); err != nil {
		return nil, err
	}

	m.set(session)
	m.logger.Info("logged in", "user_id", resp.User.ID)
	return session, nil
}

// Register creates the account and then logs in with the same credentials
func (m *Manager) Register(ctx context.Context, email, password, username string) (*Session, error) {
	if _, err := m.api.Register(ctx, email, password, username); err != nil {
		return nil, err
	}
	return m.Login(ctx, email, password)
}

// Logout drops the session and the stored token
func (m *Manager) Logout() error {
	m.set(nil)
	return m.store.Clear()
}

// Current returns the active session or domain.ErrUnauthorized
func (m *Manager) Current() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, fmt.Errorf("%w: not logged in", domain.ErrUnauthorized)
	}
	return m.current, nil
}

// Context attaches the active session to ctx
func (m *Manager) Context(ctx context.Context) (context.Context, error) {
	s, err := m.Current()
	if err != nil {
		return ctx, err
	}
	return WithSession(ctx, s), nil
}

// Close releases the verifier
func (m *Manager) Close() error {
	return m.verifier.Close()
}

func (m *Manager) set(s *Session) {
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
}
