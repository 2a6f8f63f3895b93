package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/alecgard/enclave/internal/audit"
)

// AuditLister reads back recorded events, e.g. an *audit.Store.
type AuditLister interface {
	List(ctx context.Context, q audit.Query) ([]audit.Event, int64, error)
}

type auditHandler struct {
	events AuditLister
}

func newAuditHandler(events AuditLister) *auditHandler {
	return &auditHandler{events: events}
}

type auditPage struct {
	Events []audit.Event `json:"events"`
	Next   int64         `json:"next,omitempty"`
}

// List handles GET /api/audit?action=&resource_type=&resource_id=&since=&before=&limit=.
func (h *auditHandler) List(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q := audit.Query{
		Action:       qs.Get("action"),
		ResourceType: qs.Get("resource_type"),
	}

	ints := map[string]*int{"resource_id": &q.ResourceID, "limit": &q.Limit}
	for name, dst := range ints {
		if v := qs.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "invalid_query", name+" must be a non-negative integer")
				return
			}
			*dst = n
		}
	}
	if q.Limit > 500 {
		q.Limit = 500
	}
	if v := qs.Get("before"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_query", "before must be a non-negative integer")
			return
		}
		q.Before = n
	}
	if v := qs.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_query", "since must be an RFC 3339 timestamp")
			return
		}
		q.Since = t
	}

	events, next, err := h.events.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	writeJSON(w, http.StatusOK, auditPage{Events: events, Next: next})
}
