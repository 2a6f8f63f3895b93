package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alecgard/enclave/internal/department"
)

type departmentsHandler struct {
	svc    *department.Service
	logger *slog.Logger
}

type departmentRequest struct {
	DepartmentName string `json:"department_name"`
	UserID         int    `json:"user_id"`
	Password       string `json:"password"`
}

// Create handles POST /api/departments.
func (h *departmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	created, err := h.svc.Create(r.Context(), department.CreateInput(req))
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	auditLog(h.logger, r, "department.create", "department", created.ID, "user_id", req.UserID)
	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/departments/{id}: the department plus the users it
// may be reassigned to.
func (h *departmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	d, users, err := h.svc.Edit(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"department": d, "users": users})
}

// Update handles PUT /api/departments/{id}.
func (h *departmentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req departmentRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	updated, err := h.svc.Update(r.Context(), id, department.UpdateInput(req))
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	auditLog(h.logger, r, "department.update", "department", id, "user_id", req.UserID)
	writeJSON(w, http.StatusOK, updated)
}

// Users handles GET /api/departments/users?user_id=.
func (h *departmentsHandler) Users(w http.ResponseWriter, r *http.Request) {
	current := 0
	if v := r.URL.Query().Get("user_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_user_id", "user_id must be a non-negative integer")
			return
		}
		current = n
	}
	users, err := h.svc.Users(r.Context(), current)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": users})
}
