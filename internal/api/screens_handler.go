package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alecgard/enclave/internal/auth"
	"github.com/alecgard/enclave/internal/listing"
	"github.com/alecgard/enclave/internal/report"
)

// screensHandler serves the list screens. There is one controller per
// screen, shared by every request.
type screensHandler struct {
	screens map[string]listing.Screen
	now     func() time.Time
}

func newScreensHandler(screens []listing.Screen) *screensHandler {
	h := &screensHandler{screens: make(map[string]listing.Screen, len(screens)), now: time.Now}
	for _, s := range screens {
		h.screens[s.Name()] = s
	}
	return h
}

// screenRoute resolves {screen} to its menu route for auth.RequireRoute.
// Unknown screens resolve to "" and are rejected as not found.
func screenRoute(r *http.Request) string {
	route, _ := auth.RouteForScreen(chi.URLParam(r, "screen"))
	return route
}

func (h *screensHandler) screen(w http.ResponseWriter, r *http.Request) (listing.Screen, bool) {
	s, ok := h.screens[chi.URLParam(r, "screen")]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", auth.ErrUnknownRoute.Error())
		return nil, false
	}
	return s, true
}

type screenInfo struct {
	listing.Snapshot
	Searchable bool                `json:"searchable"`
	FilterDefs []listing.FilterDef `json:"filter_defs,omitempty"`
}

func info(s listing.Screen) screenInfo {
	return screenInfo{Snapshot: s.Snapshot(), Searchable: s.Searchable(), FilterDefs: s.Filters()}
}

// Get handles GET /api/screens/{screen}. The first visit loads page 1.
func (h *screensHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	if !s.Snapshot().Loaded {
		if err := s.Refresh(r.Context()); err != nil {
			writeServiceError(w, err, nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, info(s))
}

type queryRequest struct {
	Page    int               `json:"page"`
	Search  *string           `json:"search"`
	Filters map[string]string `json:"filters"`
}

// Query handles POST /api/screens/{screen}/query. Filters and search reset
// to page 1 before page is applied.
func (h *screensHandler) Query(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	var req queryRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	ctx := r.Context()
	if err := s.SetFilters(ctx, req.Filters); err != nil {
		writeServiceError(w, err, nil)
		return
	}
	if req.Search != nil {
		if err := s.SetSearch(ctx, *req.Search); err != nil {
			writeServiceError(w, err, nil)
			return
		}
	}
	if req.Page > 0 {
		if err := s.GoToPage(ctx, req.Page); err != nil {
			writeServiceError(w, err, nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, info(s))
}

// Refresh handles POST /api/screens/{screen}/refresh.
func (h *screensHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	if err := s.Refresh(r.Context()); err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, info(s))
}

// Export handles GET /api/screens/{screen}/export: the current page as PDF.
func (h *screensHandler) Export(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	snap := s.Snapshot()
	if !snap.Loaded {
		if err := s.Refresh(r.Context()); err != nil {
			writeServiceError(w, err, nil)
			return
		}
		snap = s.Snapshot()
	}

	var buf bytes.Buffer
	err := report.WritePDF(&buf, report.Table{
		Title:       snap.Title,
		Subtitle:    snap.Describe(),
		Columns:     snap.Columns,
		Rows:        snap.Rows,
		GeneratedAt: h.now(),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-page-%d.pdf", snap.Screen, snap.Page)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
