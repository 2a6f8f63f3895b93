package session

import "github.com/alecgard/enclave/internal/auth"

// AuthAdapter exposes a Manager to the auth guard.
type AuthAdapter struct {
	m *Manager
}

func NewAuthAdapter(m *Manager) *AuthAdapter {
	return &AuthAdapter{m: m}
}

// CurrentUser returns nil when nobody is logged in.
func (a *AuthAdapter) CurrentUser() *auth.User {
	s, ok := a.m.Current()
	if !ok || s.AccessToken == "" {
		return nil
	}
	return &auth.User{
		ID:    s.Profile.ID,
		Email: s.Profile.Email,
		Name:  s.Profile.DisplayName(),
		Role:  s.Profile.Role,
	}
}

func (a *AuthAdapter) Expired() bool {
	return a.m.Expired()
}
