package member

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alecgard/enclave/internal/confirm"
	"github.com/alecgard/enclave/internal/listing"
	"github.com/alecgard/enclave/internal/transition"
)

var ErrNotOnPage = errors.New("user is not on the current page")

const resource = "users"

// Service drives the Manage Users screen.
type Service struct {
	store   *Store
	gate    *confirm.Gate
	list    *listing.Controller[User]
	counter transition.RejectionCounter
	logger  *slog.Logger
}

func NewService(store *Store, gate *confirm.Gate, settings listing.Settings, counter transition.RejectionCounter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := settings.Config(resource, "Manage Users", false, Columns, listing.FilterDef{
		Name:  "status",
		Label: "Status",
		Choices: []listing.Choice{
			{Value: StatusPending, Label: "Pending"},
			{Value: StatusApproved, Label: "Approved"},
			{Value: StatusRejected, Label: "Rejected"},
		},
	})
	return &Service{
		store:   store,
		gate:    gate,
		list:    listing.New(cfg, store.List, logger),
		counter: counter,
		logger:  logger.With("component", "member"),
	}
}

func (s *Service) List() *listing.Controller[User] { return s.list }

// WithGate returns a Service sharing s's list state but confirming through g.
func (s *Service) WithGate(g *confirm.Gate) *Service {
	cp := *s
	cp.gate = g
	return &cp
}

func (s *Service) find(id int) (User, error) {
	u, ok := s.list.Find(func(u User) bool { return u.ID == id })
	if !ok {
		return User{}, ErrNotOnPage
	}
	return u, nil
}

// SetActive activates or deactivates a user after confirmation. The row is
// flipped immediately and restored on decline or failure.
func (s *Service) SetActive(ctx context.Context, id int, active bool) error {
	u, err := s.find(id)
	if err != nil {
		return err
	}
	action := "deactivate"
	if active {
		action = "activate"
	}
	label := strings.ToUpper(action[:1]) + action[1:]

	var revert func()
	err = s.gate.Run(ctx, confirm.Prompt{
		Title:        label + " User",
		Message:      fmt.Sprintf("Are you sure you want to %s %s?", action, u.FullName),
		ConfirmLabel: label,
		CancelLabel:  "Cancel",
	}, confirm.Action{
		Apply: func() {
			revert, _ = s.list.Patch(byID(id), func(u *User) { u.IsActive = active })
		},
		Revert: func() { revert() },
		Commit: func(ctx context.Context) error {
			return s.store.SetActive(ctx, id, active)
		},
	})
	if err == nil {
		s.logger.Info("user active state changed", "id", id, "active", active)
	}
	return err
}

// ChangeStatus moves a user through the approval workflow. Choosing the
// current status does nothing.
func (s *Service) ChangeStatus(ctx context.Context, id int, status string) error {
	u, err := s.find(id)
	if err != nil {
		return err
	}
	if status == u.Status {
		return nil
	}
	if err := transition.Count(s.counter, resource, Statuses.Check(u.Status, status)); err != nil {
		return err
	}

	var revert func()
	err = s.gate.Run(ctx, confirm.Prompt{
		Title:        "Change Status",
		Message:      fmt.Sprintf("Are you sure you want to change %s's status to %s?", u.FullName, status),
		ConfirmLabel: "Change Status",
		CancelLabel:  "Cancel",
	}, confirm.Action{
		Apply: func() {
			revert, _ = s.list.Patch(byID(id), func(u *User) { u.Status = status })
		},
		Revert: func() { revert() },
		Commit: func(ctx context.Context) error {
			return s.store.SetStatus(ctx, id, status)
		},
	})
	if err == nil {
		s.logger.Info("user status changed", "id", id, "from", u.Status, "to", status)
	}
	return err
}

// AllowedStatuses lists the statuses a user in current may be moved to.
func AllowedStatuses(current string) []string {
	return Statuses.Allowed(current)
}

func byID(id int) func(User) bool {
	return func(u User) bool { return u.ID == id }
}
