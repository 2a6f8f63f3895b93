package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads and writes the audit_events table.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// BatchInsert writes events in one multi-row INSERT. No-op when empty.
func (s *Store) BatchInsert(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	const cols = 9
	args := make([]any, 0, len(events)*cols)
	rows := make([]string, 0, len(events))

	for i, ev := range events {
		base := i * cols
		rows = append(rows, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		detail, err := json.Marshal(ev.Detail)
		if err != nil {
			return fmt.Errorf("encoding audit detail for %s: %w", ev.Action, err)
		}
		args = append(args,
			ev.Time,
			ev.Action,
			ev.ResourceType,
			ev.ResourceID,
			ev.RequestID,
			ev.IP,
			ev.UserID,
			ev.UserEmail,
			string(detail),
		)
	}

	query := `INSERT INTO audit_events
		(occurred_at, action, resource_type, resource_id, request_id, ip, user_id, user_email, detail)
		VALUES ` + strings.Join(rows, ", ")

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("batch inserting audit events: %w", err)
	}
	return nil
}

// List returns a page of events, newest first, and the id to pass as
// Before for the next page (0 when there is none).
func (s *Store) List(ctx context.Context, q Query) ([]Event, int64, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	where, args := buildWhereClause(q)
	query := `SELECT id, occurred_at, action, resource_type, resource_id, request_id, ip,
		user_id, user_email, detail
	FROM audit_events` + where +
		` ORDER BY id DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit+1)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var detail []byte
		if err := rows.Scan(
			&ev.ID, &ev.Time, &ev.Action, &ev.ResourceType, &ev.ResourceID,
			&ev.RequestID, &ev.IP, &ev.UserID, &ev.UserEmail, &detail,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning audit event: %w", err)
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &ev.Detail); err != nil {
				return nil, 0, fmt.Errorf("decoding audit detail %d: %w", ev.ID, err)
			}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating audit events: %w", err)
	}

	var next int64
	if len(events) > limit {
		next = events[limit-1].ID
		events = events[:limit]
	}
	return events, next, nil
}

// buildWhereClause returns " WHERE ..." or "" with its positional args.
func buildWhereClause(q Query) (string, []any) {
	var conditions []string
	var args []any

	add := func(cond string, v any) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if q.Action != "" {
		add("action = $%d", q.Action)
	}
	if q.ResourceType != "" {
		add("resource_type = $%d", q.ResourceType)
	}
	if q.ResourceID > 0 {
		add("resource_id = $%d", q.ResourceID)
	}
	if !q.Since.IsZero() {
		add("occurred_at >= $%d", q.Since)
	}
	if q.Before > 0 {
		add("id < $%d", q.Before)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
