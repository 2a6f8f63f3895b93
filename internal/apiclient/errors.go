package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call.
type Kind string

const (
	KindValidation Kind = "validation" // rejected locally, no request sent
	KindServer     Kind = "server"
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth" // 401/403: the session must be re-established
)

// Error is the single error shape every resource call returns.
type Error struct {
	Kind        Kind
	Status      int
	Message     string
	FieldErrors map[string]string
	Err         error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a local validation error. field may be empty.
func Validation(field, message string) *Error {
	e := &Error{Kind: KindValidation, Message: message}
	if field != "" {
		e.FieldErrors = map[string]string{field: message}
	}
	return e
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// Message returns the display string for err.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// NonFieldKey holds form-wide errors. Callers that expect it, such as login,
// pass it as a field key.
const NonFieldKey = "non_field_errors"

// decodeError turns a non-2xx response into an *Error. The display message is
// picked in order: a JSON string body, the first of fieldKeys present, then
// detail, else the compacted body.
func decodeError(status int, body []byte, fieldKeys []string) *Error {
	e := &Error{Kind: KindServer, Status: status}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		e.Kind = KindAuth
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		e.Message = http.StatusText(status)
		return e
	}

	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		e.Message = string(trimmed)
		return e
	}

	switch v := decoded.(type) {
	case string:
		e.Message = v
	case []any:
		if s, ok := firstString(v); ok {
			e.Message = s
		}
	case map[string]any:
		e.FieldErrors = make(map[string]string, len(v))
		for key, val := range v {
			e.FieldErrors[key] = flatten(val)
		}
		keys := append(append([]string{}, fieldKeys...), "detail")
		for _, key := range keys {
			if msg, ok := e.FieldErrors[key]; ok && msg != "" {
				e.Message = msg
				break
			}
		}
	}

	if e.Message == "" {
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err == nil {
			e.Message = buf.String()
		} else {
			e.Message = string(trimmed)
		}
	}
	return e
}

func firstString(list []any) (string, bool) {
	if len(list) == 0 {
		return "", false
	}
	s, ok := list[0].(string)
	return s, ok
}

func flatten(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		if s, ok := firstString(t); ok {
			return s
		}
	case nil:
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(string(data))
}
