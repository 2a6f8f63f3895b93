package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alecgard/enclave/internal/apiclient"
	"github.com/alecgard/enclave/internal/transition"
)

const loginPath = "/admin-login/"

// LoginObserver is told about every login attempt that reached the backend.
type LoginObserver interface {
	ObserveLogin(success bool)
}

// Manager owns the authenticated session: the in-memory copy read by guards
// and screens, and the durable copy in Store. Password is never retained.
type Manager struct {
	client   *apiclient.Client
	store    Store
	logger   *slog.Logger
	observer LoginObserver
	now      func() time.Time

	mu      sync.RWMutex
	current *Session
}

func NewManager(client *apiclient.Client, store Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		client: client,
		store:  store,
		logger: logger.With("component", "session"),
		now:    time.Now,
	}
}

func (m *Manager) SetObserver(o LoginObserver) { m.observer = o }

// Hydrate loads the durable session into memory. A missing session is not
// an error.
func (m *Manager) Hydrate(ctx context.Context) error {
	entries, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	s, err := decode(entries)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	if s != nil {
		m.logger.Debug("session restored", "email", s.Profile.Email, "role", s.Profile.Role)
	}
	return nil
}

// Login exchanges credentials for tokens and persists the session.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	if err := transition.Validate(transition.Required(email, password)); err != nil {
		return Session{}, err
	}

	var resp LoginResponse
	err := m.client.Do(ctx, http.MethodPost, loginPath, nil,
		LoginRequest{Email: email, Password: password}, &resp,
		"email", "password", apiclient.NonFieldKey)
	if err != nil {
		m.observe(false)
		return Session{}, err
	}
	if resp.Access == "" {
		m.observe(false)
		return Session{}, &apiclient.Error{Kind: apiclient.KindServer, Message: "login response did not include an access token"}
	}

	s := &Session{
		Profile:      resp.Profile(),
		AccessToken:  resp.Access,
		RefreshToken: resp.Refresh,
	}
	entries, err := encode(s)
	if err != nil {
		return Session{}, err
	}
	if err := m.store.Save(ctx, entries); err != nil {
		return Session{}, fmt.Errorf("saving session: %w", err)
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	m.observe(true)
	m.logger.Info("logged in", "email", s.Profile.Email, "role", s.Profile.Role)
	return *s, nil
}

// Logout clears all durable keys, then the in-memory session. The
// in-memory copy is dropped even when the store fails, so the caller is
// logged out for this process and sees the error.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.store.Clear(ctx)

	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	m.logger.Info("logged out")
	return nil
}

func (m *Manager) IsLoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil && m.current.AccessToken != ""
}

// Current returns a copy of the session.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// Role returns the session role, or "" when logged out.
func (m *Manager) Role() string {
	s, ok := m.Current()
	if !ok {
		return ""
	}
	return s.Profile.Role
}

// AccessToken implements apiclient.TokenSource.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.AccessToken
}

var errNoExpiry = errors.New("token carries no expiry")

// ExpiresAt reads the exp claim of the access token without verifying it;
// the backend remains the authority on validity.
func (m *Manager) ExpiresAt() (time.Time, error) {
	tok := m.AccessToken()
	if tok == "" {
		return time.Time{}, errNoExpiry
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, fmt.Errorf("parsing access token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errNoExpiry
	}
	return exp.Time, nil
}

// Expired reports whether the access token is a JWT whose exp has passed.
// Opaque tokens are never considered expired here.
func (m *Manager) Expired() bool {
	exp, err := m.ExpiresAt()
	if err != nil {
		return false
	}
	return !m.now().Before(exp)
}

func (m *Manager) observe(success bool) {
	if m.observer != nil {
		m.observer.ObserveLogin(success)
	}
}
