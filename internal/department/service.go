package department

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/alecgard/enclave/internal/apiclient"
	"github.com/alecgard/enclave/internal/listing"
	"github.com/alecgard/enclave/internal/transition"
)

const (
	MsgPasswordOnReassign = "Password is required when changing the assigned user."
	MsgIDMissing          = "Department ID is missing."
)

const resource = "departments"

// Service drives the Manage Department screen.
type Service struct {
	store   *Store
	list    *listing.Controller[Department]
	counter transition.RejectionCounter
	logger  *slog.Logger
	form    *apiclient.Submitter
}

func NewService(store *Store, settings listing.Settings, counter transition.RejectionCounter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := settings.Config(resource, "Manage Department", true, Columns,
		listing.FilterDef{Name: "is_active", Label: "Active", Choices: []listing.Choice{
			{Value: "true", Label: "Active"},
			{Value: "false", Label: "Inactive"},
		}},
	)
	return &Service{
		store:   store,
		list:    listing.New(cfg, store.List, logger),
		counter: counter,
		logger:  logger.With("component", "department"),
		form:    &apiclient.Submitter{},
	}
}

func (s *Service) List() *listing.Controller[Department] { return s.list }

func idString(id int) string {
	if id <= 0 {
		return ""
	}
	return strconv.Itoa(id)
}

// ValidateCreate checks the new-department form.
func ValidateCreate(in CreateInput) error {
	return transition.Validate(
		transition.Required(in.DepartmentName, idString(in.UserID), in.Password),
		transition.Password(in.Password),
	)
}

// ValidateUpdate checks an edit against the department's assigned user.
// Reassigning requires a password; keeping the user never does.
func ValidateUpdate(id, originalUserID int, in UpdateInput) error {
	return transition.Validate(
		transition.Required(in.DepartmentName, idString(in.UserID)),
		func() error {
			if in.UserID != originalUserID && in.Password == "" {
				return apiclient.Validation("password", MsgPasswordOnReassign)
			}
			return nil
		},
		transition.Password(in.Password),
		func() error {
			if id <= 0 {
				return apiclient.Validation("id", MsgIDMissing)
			}
			return nil
		},
	)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Department, error) {
	if err := transition.Count(s.counter, resource, ValidateCreate(in)); err != nil {
		return nil, err
	}
	var created *Department
	if err := s.form.Submit(func() (err error) {
		created, err = s.store.Create(ctx, in)
		return err
	}); err != nil {
		return nil, err
	}
	s.logger.Info("department created", "id", created.ID, "name", created.DepartmentName)
	s.list.Reload(ctx)
	return created, nil
}

// Edit loads the department's current details for the edit form.
func (s *Service) Edit(ctx context.Context, id int) (*Department, []UserOption, error) {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	users, err := s.store.Users(ctx, d.UserID)
	if err != nil {
		return nil, nil, err
	}
	return d, users, nil
}

// Update fetches the assigned user, validates the edit against it and
// submits. The password is only sent when the user changed.
func (s *Service) Update(ctx context.Context, id int, in UpdateInput) (*Department, error) {
	original := 0
	if id > 0 {
		d, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		original = d.UserID
	}
	if err := transition.Count(s.counter, resource, ValidateUpdate(id, original, in)); err != nil {
		return nil, err
	}

	p := updatePayload{DepartmentName: in.DepartmentName, UserID: in.UserID}
	if in.UserID != original {
		p.Password = in.Password
	}
	var updated *Department
	if err := s.form.Submit(func() (err error) {
		updated, err = s.store.Update(ctx, id, p)
		return err
	}); err != nil {
		return nil, err
	}
	s.logger.Info("department updated", "id", id, "reassigned", in.UserID != original)
	s.list.Reload(ctx)
	return updated, nil
}

// Users returns the dropdown of assignable users.
func (s *Service) Users(ctx context.Context, currentUserID int) ([]UserOption, error) {
	return s.store.Users(ctx, currentUserID)
}
