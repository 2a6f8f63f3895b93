package api

import (
	"errors"
	"net/http"

	"github.com/alecgard/enclave/internal/apiclient"
	"github.com/alecgard/enclave/internal/auth"
	"github.com/alecgard/enclave/internal/dashboard"
	"github.com/alecgard/enclave/internal/session"
)

// authHandler groups login, logout and the signed-in views.
type authHandler struct {
	sessions  *session.Manager
	dashboard *dashboard.Service
}

func newAuthHandler(sessions *session.Manager, dash *dashboard.Service) *authHandler {
	return &authHandler{sessions: sessions, dashboard: dash}
}

type loginResponse struct {
	User     session.Profile `json:"user"`
	Menu     []auth.MenuItem `json:"menu"`
	Redirect string          `json:"redirect"`
}

// Login handles POST /api/login.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req session.LoginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	s, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if loginRejected(err) {
			writeError(w, http.StatusUnauthorized, "login_failed", apiclient.Message(err))
			return
		}
		writeServiceError(w, err, nil)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		User:     s.Profile,
		Menu:     auth.MenuFor(s.Profile.Role),
		Redirect: auth.RouteDashboard,
	})
}

// loginRejected reports whether the backend turned the credentials down, as
// opposed to failing. 5xx responses stay backend errors.
func loginRejected(err error) bool {
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Kind {
	case apiclient.KindAuth:
		return true
	case apiclient.KindServer:
		return apiErr.Status >= 400 && apiErr.Status < 500
	}
	return false
}

// Logout handles POST /api/logout.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to clear session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me.
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessions.Current()
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", auth.ErrNotLoggedIn.Error())
		return
	}
	resp := map[string]any{"user": s.Profile}
	if exp, err := h.sessions.ExpiresAt(); err == nil {
		resp["expires_at"] = exp
	}
	writeJSON(w, http.StatusOK, resp)
}

// Menu handles GET /api/menu.
func (h *authHandler) Menu(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", auth.ErrNotLoggedIn.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": auth.MenuFor(u.Role)})
}

// Dashboard handles GET /api/dashboard.
func (h *authHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessions.Current()
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", auth.ErrNotLoggedIn.Error())
		return
	}
	summary, err := h.dashboard.Build(r.Context(), s.Profile)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
