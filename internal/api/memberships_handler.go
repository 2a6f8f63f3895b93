package api

import (
	"log/slog"
	"net/http"

	"github.com/alecgard/enclave/internal/confirm"
	"github.com/alecgard/enclave/internal/membership"
)

type membershipsHandler struct {
	svc    *membership.Service
	gate   *confirm.Gate
	logger *slog.Logger
}

// Create handles POST /api/memberships.
func (h *membershipsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in membership.Input
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	created, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	auditLog(h.logger, r, "membership.create", "membership", created.ID, "echs_no", created.EchsNo)
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/memberships/{id}. An unchanged form sends nothing.
func (h *membershipsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in membership.Input
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	updated, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	auditLog(h.logger, r, "membership.update", "membership", id)
	writeJSON(w, http.StatusOK, updated)
}

// SetActive handles POST /api/memberships/{id}/activate and /deactivate.
func (h *membershipsHandler) SetActive(active bool) http.HandlerFunc {
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
		auditLog(h.logger, r, "membership.set_active", "membership", id, "active", active)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Delete handles DELETE /api/memberships/{id}?confirm=.
func (h *membershipsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	gate, p := gateFor(w, r, h.gate)
	if gate == nil {
		return
	}
	if err := h.svc.WithGate(gate).Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, p.notice)
		return
	}
	auditLog(h.logger, r, "membership.delete", "membership", id)
	w.WriteHeader(http.StatusNoContent)
}
