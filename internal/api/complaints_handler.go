package api

import (
	"log/slog"
	"net/http"

	"github.com/alecgard/enclave/internal/complaint"
)

type complaintsHandler struct {
	svc    *complaint.Service
	logger *slog.Logger
}

// UpdateStatus handles PUT /api/complaints/{id}/status.
func (h *complaintsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req complaint.StatusUpdate
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	updated, err := h.svc.UpdateStatus(r.Context(), id, req.Status, req.ClosedReason)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	auditLog(h.logger, r, "complaint.status", "complaint", id, "status", req.Status)
	writeJSON(w, http.StatusOK, map[string]any{
		"complaint":        updated,
		"allowed_statuses": complaint.AllowedStatuses(req.Status),
	})
}
