package complaint

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alecgard/enclave/internal/apiclient"
	"github.com/alecgard/enclave/internal/listing"
	"github.com/alecgard/enclave/internal/transition"
)

const (
	MsgReasonRequired = "Reason is required when closing a complaint."
	MsgIDMissing      = "Complaint ID is missing."
)

var ErrNotOnPage = errors.New("complaint is not on the current page")

const resource = "complaints"

// Service drives the Manage Complains screen. Status edits are not gated:
// the form itself is the confirmation.
type Service struct {
	store   *Store
	list    *listing.Controller[Complaint]
	counter transition.RejectionCounter
	logger  *slog.Logger
	form    *apiclient.Submitter
}

func NewService(store *Store, settings listing.Settings, counter transition.RejectionCounter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := settings.Config(resource, "Manage Complains", true, Columns,
		listing.FilterDef{Name: "priority", Label: "Priority", Choices: []listing.Choice{
			{Value: PriorityLow, Label: "Low"},
			{Value: PriorityMedium, Label: "Medium"},
			{Value: PriorityHigh, Label: "High"},
		}},
		listing.FilterDef{Name: "status", Label: "Status", Choices: []listing.Choice{
			{Value: StatusPending, Label: "Pending"},
			{Value: StatusInProgress, Label: "In Progress"},
			{Value: StatusResolved, Label: "Resolved"},
			{Value: StatusClosed, Label: "Closed"},
		}},
	)
	return &Service{
		store:   store,
		list:    listing.New(cfg, store.List, logger),
		counter: counter,
		logger:  logger.With("component", "complaint"),
		form:    &apiclient.Submitter{},
	}
}

func (s *Service) List() *listing.Controller[Complaint] { return s.list }

// CheckStatus validates moving a complaint from current to target.
func CheckStatus(id int, current, target, reason string) error {
	return transition.Validate(
		func() error { return Statuses.Check(current, target) },
		func() error {
			if target == StatusClosed {
				return transition.NonEmpty("closed_reason", reason, MsgReasonRequired)()
			}
			return nil
		},
		func() error {
			if id <= 0 {
				return apiclient.Validation("id", MsgIDMissing)
			}
			return nil
		},
	)
}

// AllowedStatuses lists current and every later status.
func AllowedStatuses(current string) []string {
	return Statuses.Allowed(current)
}

// UpdateStatus moves a complaint on the current page forward, then reloads.
func (s *Service) UpdateStatus(ctx context.Context, id int, status, reason string) (*Complaint, error) {
	current := ""
	if id > 0 {
		c, ok := s.list.Find(func(c Complaint) bool { return c.ID == id })
		if !ok {
			return nil, ErrNotOnPage
		}
		current = c.Status
	}
	if err := transition.Count(s.counter, resource, CheckStatus(id, current, status, reason)); err != nil {
		return nil, err
	}

	u := StatusUpdate{Status: status}
	if status == StatusClosed {
		u.ClosedReason = reason
	}
	var updated *Complaint
	if err := s.form.Submit(func() (err error) {
		updated, err = s.store.UpdateStatus(ctx, id, u)
		return err
	}); err != nil {
		return nil, err
	}
	s.logger.Info("complaint status changed", "id", id, "from", current, "to", status)
	s.list.Reload(ctx)
	return updated, nil
}
