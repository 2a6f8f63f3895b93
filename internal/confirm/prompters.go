package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Static answers every prompt the same way. Used for --yes.
type Static bool

func (s Static) Ask(ctx context.Context, p Prompt) (bool, error) {
	return bool(s), nil
}

// Terminal asks on a line-oriented reader/writer pair. A single reader
// goroutine owns in, so a prompt abandoned on cancellation leaves its line
// for the next one instead of racing it.
type Terminal struct {
	in    *bufio.Reader
	out   io.Writer
	once  sync.Once
	lines chan lineResult
}

type lineResult struct {
	line string
	err  error
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out, lines: make(chan lineResult)}
}

func (t *Terminal) Ask(ctx context.Context, p Prompt) (bool, error) {
	fmt.Fprintf(t.out, "\n%s\n%s\n", p.Title, p.Message)
	if p.Informational() {
		fmt.Fprintf(t.out, "[%s] ", label(p.ConfirmLabel, "OK"))
		_, err := t.readLine(ctx)
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		return true, nil
	}

	fmt.Fprintf(t.out, "%s? [y/N] ", label(p.ConfirmLabel, "Confirm"))
	line, err := t.readLine(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (t *Terminal) readLine(ctx context.Context) (string, error) {
	t.once.Do(func() { go t.readLoop() })
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-t.lines:
		return r.line, r.err
	}
}

// readLoop stops after the first read error; later prompts see that error
// again.
func (t *Terminal) readLoop() {
	for {
		line, err := t.in.ReadString('\n')
		t.lines <- lineResult{line, err}
		if err != nil {
			for {
				t.lines <- lineResult{err: err}
			}
		}
	}
}

func label(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// NeedsConfirmation is returned by Deferred when the caller has not yet
// answered Prompt. HTTP callers resend the request with the answer.
type NeedsConfirmation struct {
	Prompt Prompt
}

func (e *NeedsConfirmation) Error() string {
	return "confirmation required: " + e.Prompt.Title
}

// Deferred answers from a value supplied with the request: nil means the
// question has not been put to the user yet. Informational prompts are
// acknowledged; the caller reports the refusal itself.
type Deferred struct {
	Answer *bool
}

func (d Deferred) Ask(ctx context.Context, p Prompt) (bool, error) {
	if p.Informational() {
		return true, nil
	}
	if d.Answer == nil {
		return false, &NeedsConfirmation{Prompt: p}
	}
	return *d.Answer, nil
}
