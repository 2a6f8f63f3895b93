package audit

import "time"

// Event is one write made through the console.
type Event struct {
	ID           int64          `json:"id"`
	Time         time.Time      `json:"time"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   int            `json:"resource_id"`
	RequestID    string         `json:"request_id"`
	IP           string         `json:"ip"`
	UserID       int            `json:"user_id,omitempty"`
	UserEmail    string         `json:"user_email,omitempty"`
	Detail       map[string]any `json:"detail,omitempty"`
}

// Query filters and pages the event log, newest first.
type Query struct {
	Action       string    `json:"action,omitempty"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceID   int       `json:"resource_id,omitempty"`
	Since        time.Time `json:"since"`
	Before       int64     `json:"before,omitempty"` // only events with a smaller id
	Limit        int       `json:"limit"`
}
