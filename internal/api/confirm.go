package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alecgard/enclave/internal/confirm"
)

// requestPrompter answers from the request's confirm parameter and keeps the
// last informational notice so the response can carry it.
type requestPrompter struct {
	confirm.Deferred
	notice *confirm.Prompt
}

func (p *requestPrompter) Ask(ctx context.Context, pr confirm.Prompt) (bool, error) {
	if pr.Informational() {
		p.notice = &pr
	}
	return p.Deferred.Ask(ctx, pr)
}

// promptFor reads ?confirm=true|false. Absent means the question has not
// been put to the operator yet.
func promptFor(r *http.Request) (*requestPrompter, error) {
	p := &requestPrompter{}
	raw := r.URL.Query().Get("confirm")
	if raw == "" {
		return p, nil
	}
	answer, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	p.Answer = &answer
	return p, nil
}

// gateFor builds a per-request gate from base, or writes a 400 and returns
// nil when the confirm parameter is malformed.
func gateFor(w http.ResponseWriter, r *http.Request, base *confirm.Gate) (*confirm.Gate, *requestPrompter) {
	p, err := promptFor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_confirm", "confirm must be true or false")
		return nil, nil
	}
	return base.WithPrompter(p), p
}

// idParam parses the {id} URL parameter, writing a 400 on failure.
func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return 0, false
	}
	return id, true
}
