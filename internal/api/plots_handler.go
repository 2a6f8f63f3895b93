package api

import (
	"log/slog"
	"net/http"

	"github.com/alecgard/enclave/internal/confirm"
	"github.com/alecgard/enclave/internal/plot"
)

type plotsHandler struct {
	svc    *plot.Service
	gate   *confirm.Gate
	logger *slog.Logger
}

// Create handles POST /api/plots.
func (h *plotsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in plot.Input
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	created, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	auditLog(h.logger, r, "plot.create", "plot", created.ID, "plot_no", created.PlotNo)
	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/plots/{id}: the plot and its edit form values.
func (h *plotsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Lookup(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plot": p, "form": plot.InputFrom(*p)})
}

// Update handles PUT /api/plots/{id}.
func (h *plotsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in plot.Input
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	updated, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	auditLog(h.logger, r, "plot.update", "plot", id)
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/plots/{id}?confirm=.
func (h *plotsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	auditLog(h.logger, r, "plot.delete", "plot", id)
	w.WriteHeader(http.StatusNoContent)
}

// Memberships handles GET /api/plots/memberships?search=.
func (h *plotsHandler) Memberships(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Memberships(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": items})
}
