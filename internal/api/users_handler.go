package api

import (
	"log/slog"
	"net/http"

	"github.com/alecgard/enclave/internal/confirm"
	"github.com/alecgard/enclave/internal/member"
)

// usersHandler serves the member-user approval screen.
type usersHandler struct {
	svc    *member.Service
	gate   *confirm.Gate
	logger *slog.Logger
}

// SetActive handles POST /api/users/{id}/activate and /deactivate.
func (h *usersHandler) SetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		gate, p := gateFor(w, r, h.gate)
		if gate == nil {
			return
		}
		if err := h.svc.WithGate(gate).SetActive(r.Context(), id, active); err != nil {
			writeServiceError(w, err, p.notice)
			return
		}
		auditLog(h.logger, r, "user.set_active", "member_user", id, "active", active)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ChangeStatus handles PUT /api/users/{id}/status.
func (h *usersHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	gate, p := gateFor(w, r, h.gate)
	if gate == nil {
		return
	}
	if err := h.svc.WithGate(gate).ChangeStatus(r.Context(), id, req.Status); err != nil {
		writeServiceError(w, err, p.notice)
		return
	}
	auditLog(h.logger, r, "user.status", "member_user", id, "status", req.Status)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"allowed_statuses": member.AllowedStatuses(req.Status),
	})
}
