package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alecgard/enclave/internal/audit"
	"github.com/alecgard/enclave/internal/auth"
	"github.com/alecgard/enclave/internal/ratelimit"
)

// AuditRecorder persists audit events, e.g. an *audit.Collector.
type AuditRecorder interface {
	Record(ev audit.Event)
}

const auditRecorderKey contextKey = "audit_recorder"

func withAuditRecorder(rec AuditRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), auditRecorderKey, rec)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// auditLog emits a structured audit entry for a write made through the
// console, and records it when an AuditRecorder is configured. detail is a
// list of key/value pairs.
func auditLog(logger *slog.Logger, r *http.Request, action, resourceType string, resourceID int, detail ...any) {
	ev := audit.Event{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    RequestIDFromContext(r.Context()),
		IP:           ratelimit.ClientIP(r),
	}
	attrs := []any{
		"action", action,
		"resource_type", resourceType,
		"resource_id", resourceID,
		"ip", ev.IP,
		"request_id", ev.RequestID,
	}

	if u := auth.UserFromContext(r.Context()); u != nil {
		ev.UserID, ev.UserEmail = u.ID, u.Email
		attrs = append(attrs, "user_id", u.ID, "user_email", u.Email, "user_role", u.Role)
	}

	attrs = append(attrs, detail...)
	logger.Info("audit", attrs...)

	if rec, ok := r.Context().Value(auditRecorderKey).(AuditRecorder); ok && rec != nil {
		ev.Detail = detailMap(detail)
		rec.Record(ev)
	}
}

func detailMap(kv []any) map[string]any {
	if len(kv) == 0 {
		return nil
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return m
}
