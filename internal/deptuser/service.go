package deptuser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alecgard/enclave/internal/apiclient"
	"github.com/alecgard/enclave/internal/confirm"
	"github.com/alecgard/enclave/internal/listing"
	"github.com/alecgard/enclave/internal/transition"
)

const (
	MsgCNICDigits  = "CNIC must contain only numbers."
	MsgPhoneDigits = "Phone number must contain only numbers."
	MsgIDMissing   = "User ID is missing."
)

var (
	ErrNotOnPage = errors.New("department user is not on the current page")
	ErrNoChanges = errors.New("no changes to save")
)

const resource = "department-users"

var genders = []string{GenderMale, GenderFemale}

// Service drives the Manage Department Users screen.
type Service struct {
	store   *Store
	gate    *confirm.Gate
	list    *listing.Controller[User]
	counter transition.RejectionCounter
	logger  *slog.Logger
	form    *apiclient.Submitter
}

func NewService(store *Store, gate *confirm.Gate, settings listing.Settings, counter transition.RejectionCounter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := settings.Config(resource, "Manage Department Users", true, Columns,
		listing.FilterDef{Name: "gender", Label: "Gender", Choices: []listing.Choice{
			{Value: GenderMale, Label: "Male"},
			{Value: GenderFemale, Label: "Female"},
		}},
	)
	return &Service{
		store:   store,
		gate:    gate,
		list:    listing.New(cfg, store.List, logger),
		counter: counter,
		logger:  logger.With("component", "deptuser"),
		form:    &apiclient.Submitter{},
	}
}

func (s *Service) List() *listing.Controller[User] { return s.list }

func (s *Service) WithGate(g *confirm.Gate) *Service {
	cp := *s
	cp.gate = g
	return &cp
}

// Validate checks the create/edit form.
func Validate(in Input) error {
	return transition.Validate(
		transition.Required(in.Email, in.FirstName, in.LastName, in.Gender),
		transition.Digits("cnic", in.Cnic, MsgCNICDigits),
		transition.Digits("phone_number", in.PhoneNumber, MsgPhoneDigits),
		transition.Email("email", in.Email),
		transition.OneOf("gender", in.Gender, genders, "Please select a valid gender."),
	)
}

func (s *Service) Create(ctx context.Context, in Input) (*User, error) {
	if err := transition.Count(s.counter, resource, Validate(in)); err != nil {
		return nil, err
	}
	var created *User
	if err := s.form.Submit(func() (err error) {
		created, err = s.store.Create(ctx, in)
		return err
	}); err != nil {
		return nil, err
	}
	s.logger.Info("department user created", "id", created.ID)
	s.list.Reload(ctx)
	return created, nil
}

// Edit fetches the user's full details into a draft.
func (s *Service) Edit(ctx context.Context, id int) (*listing.Draft[Input], error) {
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return listing.NewDraft(InputFrom(*u))
}

// Save submits a draft. An unchanged draft sends nothing.
func (s *Service) Save(ctx context.Context, id int, d *listing.Draft[Input]) (*User, error) {
	if !d.Dirty() {
		return nil, ErrNoChanges
	}
	err := Validate(d.Current)
	if err == nil && id <= 0 {
		err = apiclient.Validation("id", MsgIDMissing)
	}
	if err := transition.Count(s.counter, resource, err); err != nil {
		return nil, err
	}
	var updated *User
	if err := s.form.Submit(func() (err error) {
		updated, err = s.store.Update(ctx, id, d.Current)
		return err
	}); err != nil {
		return nil, err
	}
	s.logger.Info("department user updated", "id", id)
	s.list.Reload(ctx)
	return updated, nil
}

// Update is Edit followed by Save with in as the edited values.
func (s *Service) Update(ctx context.Context, id int, in Input) (*User, error) {
	d, err := s.Edit(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Current = in
	return s.Save(ctx, id, d)
}

// Delete removes a user on the current page after confirmation.
func (s *Service) Delete(ctx context.Context, id int) error {
	u, ok := s.list.Find(func(u User) bool { return u.ID == id })
	if !ok {
		return ErrNotOnPage
	}
	err := s.gate.Run(ctx, confirm.Prompt{
		Title:        "Delete User",
		Message:      fmt.Sprintf("Are you sure you want to delete %s? This action cannot be undone.", u.FullName),
		ConfirmLabel: "Delete",
		CancelLabel:  "Cancel",
	}, confirm.Action{
		Commit: func(ctx context.Context) error { return s.store.Delete(ctx, id) },
	})
	if err != nil {
		return err
	}
	s.logger.Info("department user deleted", "id", id)
	s.list.Reload(ctx)
	return nil
}
