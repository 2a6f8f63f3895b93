package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/alecgard/enclave/internal/apiclient"
	"github.com/alecgard/enclave/internal/auth"
	"github.com/alecgard/enclave/internal/complaint"
	"github.com/alecgard/enclave/internal/confirm"
	"github.com/alecgard/enclave/internal/deptuser"
	"github.com/alecgard/enclave/internal/member"
	"github.com/alecgard/enclave/internal/membership"
	"github.com/alecgard/enclave/internal/plot"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// errorEnvelope is the standard error response shape.
type errorEnvelope struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Prompt   *confirm.Prompt   `json:"prompt,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeErrorDetail(w, statusCode, errorDetail{Code: code, Message: message})
}

func writeErrorDetail(w http.ResponseWriter, statusCode int, d errorDetail) {
	writeJSON(w, statusCode, errorEnvelope{Error: d})
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// readJSON decodes the request body into v, enforcing a size limit.
func readJSON(r *http.Request, v any) error {
	lr := io.LimitReader(r.Body, maxBodySize)
	return json.NewDecoder(lr).Decode(v)
}

// writeServiceError maps an error from a screen or service onto the
// envelope. notice is the informational prompt shown while handling the
// request, if any.
func writeServiceError(w http.ResponseWriter, err error, notice *confirm.Prompt) {
	var needs *confirm.NeedsConfirmation
	if errors.As(err, &needs) {
		writeErrorDetail(w, http.StatusConflict, errorDetail{
			Code:    "confirmation_required",
			Message: needs.Prompt.Message,
			Prompt:  &needs.Prompt,
		})
		return
	}

	switch {
	case errors.Is(err, confirm.ErrDeclined):
		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
		return
	case errors.Is(err, membership.ErrNoChanges), errors.Is(err, deptuser.ErrNoChanges):
		writeJSON(w, http.StatusOK, map[string]string{"status": "unchanged"})
		return
	case errors.Is(err, confirm.ErrBusy), errors.Is(err, apiclient.ErrSubmitting):
		writeError(w, http.StatusConflict, "busy", err.Error())
		return
	case errors.Is(err, plot.ErrHasMembers), errors.Is(err, membership.ErrHasPlots):
		d := errorDetail{Code: "refused", Message: err.Error(), Prompt: notice}
		if notice != nil {
			d.Message = notice.Message
		}
		writeErrorDetail(w, http.StatusConflict, d)
		return
	case errors.Is(err, member.ErrNotOnPage), errors.Is(err, membership.ErrNotOnPage),
		errors.Is(err, complaint.ErrNotOnPage), errors.Is(err, deptuser.ErrNotOnPage):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}

	var failed *confirm.FailedError
	if errors.As(err, &failed) && notice != nil {
		writeErrorDetail(w, http.StatusBadGateway, errorDetail{
			Code:    "action_failed",
			Message: notice.Message,
			Prompt:  notice,
		})
		return
	}

	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	d := errorDetail{Message: apiErr.Message, Fields: apiErr.FieldErrors}
	status := http.StatusBadGateway
	switch apiErr.Kind {
	case apiclient.KindValidation:
		status, d.Code = http.StatusUnprocessableEntity, "validation_error"
	case apiclient.KindAuth:
		status, d.Code, d.Redirect = http.StatusUnauthorized, "unauthorized", auth.LoginRoute
	case apiclient.KindNetwork:
		d.Code = "backend_unreachable"
	default:
		d.Code = "backend_error"
		if apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusBadRequest {
			status = apiErr.Status
		}
	}
	writeErrorDetail(w, status, d)
}
