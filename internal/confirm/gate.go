package confirm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrDeclined = errors.New("action cancelled")
	ErrBusy     = errors.New("another confirmation is already open")
)

// Prompt is a yes/no question. An empty CancelLabel makes it informational:
// the only answer is acknowledgement.
type Prompt struct {
	Title        string `json:"title"`
	Message      string `json:"message"`
	ConfirmLabel string `json:"confirm_label"`
	CancelLabel  string `json:"cancel_label"`
}

func (p Prompt) Informational() bool { return p.CancelLabel == "" }

// Prompter asks a human.
type Prompter interface {
	Ask(ctx context.Context, p Prompt) (bool, error)
}

// Outcome is reported to an Observer after each gated action.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeDeclined  Outcome = "declined"
	OutcomeFailed    Outcome = "failed"
)

type Observer interface {
	ObserveConfirmation(title string, outcome Outcome)
}

// FailedError means the user confirmed but the write failed. The optimistic
// change has already been reverted.
type FailedError struct {
	Err error
}

func (e *FailedError) Error() string { return fmt.Sprintf("action failed: %v", e.Err) }
func (e *FailedError) Unwrap() error { return e.Err }

// Action is a gated state change. Apply and Revert are optional.
type Action struct {
	Apply  func()
	Revert func()
	Commit func(ctx context.Context) error
}

// Gate serializes confirmations: at most one is outstanding at a time.
type Gate struct {
	prompter Prompter
	observer Observer
	mu       sync.Mutex
}

func NewGate(p Prompter, o Observer) *Gate {
	return &Gate{prompter: p, observer: o}
}

// WithPrompter returns a gate sharing g's observer but asking through p.
func (g *Gate) WithPrompter(p Prompter) *Gate {
	return &Gate{prompter: p, observer: g.observer}
}

// Confirm asks p and returns the answer. It fails with ErrBusy if another
// confirmation is still open.
func (g *Gate) Confirm(ctx context.Context, p Prompt) (bool, error) {
	if !g.mu.TryLock() {
		return false, ErrBusy
	}
	defer g.mu.Unlock()
	return g.prompter.Ask(ctx, p)
}

// Inform shows an informational prompt (no cancel option).
func (g *Gate) Inform(ctx context.Context, title, message string) error {
	_, err := g.Confirm(ctx, Prompt{Title: title, Message: message, ConfirmLabel: "OK"})
	return err
}

// Run applies a.Apply, asks, then commits. Declining reverts and returns
// ErrDeclined. A commit error reverts and is returned as *FailedError.
func (g *Gate) Run(ctx context.Context, p Prompt, a Action) error {
	if a.Apply != nil {
		a.Apply()
	}
	revert := func() {
		if a.Revert != nil {
			a.Revert()
		}
	}

	ok, err := g.Confirm(ctx, p)
	if err != nil {
		revert()
		return err
	}
	if !ok {
		revert()
		g.observe(p.Title, OutcomeDeclined)
		return ErrDeclined
	}

	if err := a.Commit(ctx); err != nil {
		revert()
		g.observe(p.Title, OutcomeFailed)
		return &FailedError{Err: err}
	}
	g.observe(p.Title, OutcomeConfirmed)
	return nil
}

func (g *Gate) observe(title string, o Outcome) {
	if g.observer != nil {
		g.observer.ObserveConfirmation(title, o)
	}
}
