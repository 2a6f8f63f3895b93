package apiclient

import (
	"errors"
	"sync/atomic"
)

// ErrSubmitting is returned when a write is attempted while another one from
// the same form is still outstanding.
var ErrSubmitting = errors.New("a submission is already in progress")

// Submitter is the in-flight flag for one form. The zero value is ready.
type Submitter struct {
	busy atomic.Bool
}

// Submit runs fn unless another Submit is still running. The flag is cleared
// on both success and failure.
func (s *Submitter) Submit(fn func() error) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrSubmitting
	}
	defer s.busy.Store(false)
	return fn()
}

func (s *Submitter) Submitting() bool {
	return s.busy.Load()
}
