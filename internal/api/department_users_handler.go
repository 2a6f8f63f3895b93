package api

import (
	"log/slog"
	"net/http"

	"github.com/alecgard/enclave/internal/confirm"
	"github.com/alecgard/enclave/internal/deptuser"
)

type departmentUsersHandler struct {
	svc    *deptuser.Service
	gate   *confirm.Gate
	logger *slog.Logger
}

// Create handles POST /api/department-users.
func (h *departmentUsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	in := deptuser.Input{Gender: deptuser.GenderMale}
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	created, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	auditLog(h.logger, r, "department_user.create", "department_user", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/department-users/{id}: the edit form values.
func (h *departmentUsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	d, err := h.svc.Edit(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"form": d.Current})
}

// Update handles PUT /api/department-users/{id}. An unchanged form sends
// nothing.
func (h *departmentUsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in deptuser.Input
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	updated, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	auditLog(h.logger, r, "department_user.update", "department_user", id)
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/department-users/{id}?confirm=.
func (h *departmentUsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	auditLog(h.logger, r, "department_user.delete", "department_user", id)
	w.WriteHeader(http.StatusNoContent)
}
