package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alecgard/enclave/internal/apiclient"
	"github.com/alecgard/enclave/internal/confirm"
	"github.com/alecgard/enclave/internal/listing"
	"github.com/alecgard/enclave/internal/transition"
)

var (
	ErrNotOnPage = errors.New("membership is not on the current page")
	ErrHasPlots  = errors.New("membership has plots assigned")
	ErrNoChanges = errors.New("no changes to save")
)

const resource = "memberships"

// Service drives the Manage Membership screen.
type Service struct {
	store   *Store
	gate    *confirm.Gate
	list    *listing.Controller[Membership]
	counter transition.RejectionCounter
	logger  *slog.Logger
	form    *apiclient.Submitter
}

func NewService(store *Store, gate *confirm.Gate, settings listing.Settings, counter transition.RejectionCounter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := settings.Config(resource, "Manage Membership", true, Columns)
	return &Service{
		store:   store,
		gate:    gate,
		list:    listing.New(cfg, store.List, logger),
		counter: counter,
		logger:  logger.With("component", "membership"),
		form:    &apiclient.Submitter{},
	}
}

func (s *Service) List() *listing.Controller[Membership] { return s.list }

func (s *Service) WithGate(g *confirm.Gate) *Service {
	cp := *s
	cp.gate = g
	return &cp
}

func (s *Service) find(id int) (Membership, error) {
	m, ok := s.list.Find(byID(id))
	if !ok {
		return Membership{}, ErrNotOnPage
	}
	return m, nil
}

func validate(in Input) error {
	return transition.Validate(transition.Required(in.EchsNo, in.Name))
}

func (s *Service) Create(ctx context.Context, in Input) (*Membership, error) {
	if err := transition.Count(s.counter, resource, validate(in)); err != nil {
		return nil, err
	}
	var created *Membership
	if err := s.form.Submit(func() (err error) {
		created, err = s.store.Create(ctx, in)
		return err
	}); err != nil {
		return nil, err
	}
	s.logger.Info("membership created", "id", created.ID, "echs_no", created.EchsNo)
	s.list.Reload(ctx)
	return created, nil
}

// Edit opens an edit draft for a membership on the current page.
func (s *Service) Edit(id int) (*listing.Draft[Input], error) {
	m, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return listing.NewDraft(InputFrom(m))
}

// Save submits a draft. An unchanged draft sends nothing and returns
// ErrNoChanges.
func (s *Service) Save(ctx context.Context, id int, d *listing.Draft[Input]) (*Membership, error) {
	if !d.Dirty() {
		return nil, ErrNoChanges
	}
	if err := transition.Count(s.counter, resource, validate(d.Current)); err != nil {
		return nil, err
	}
	var updated *Membership
	if err := s.form.Submit(func() (err error) {
		updated, err = s.store.Update(ctx, id, d.Current)
		return err
	}); err != nil {
		return nil, err
	}
	s.logger.Info("membership updated", "id", id)
	s.list.Reload(ctx)
	return updated, nil
}

// Update is Edit followed by Save with in as the edited values.
func (s *Service) Update(ctx context.Context, id int, in Input) (*Membership, error) {
	d, err := s.Edit(id)
	if err != nil {
		return nil, err
	}
	d.Current = in
	return s.Save(ctx, id, d)
}

// SetActive toggles is_active after confirmation, flipping the row first.
func (s *Service) SetActive(ctx context.Context, id int, active bool) error {
	m, err := s.find(id)
	if err != nil {
		return err
	}
	action := "deactivate"
	if active {
		action = "activate"
	}
	label := strings.ToUpper(action[:1]) + action[1:]

	var revert func()
	return s.gate.Run(ctx, confirm.Prompt{
		Title:        label + " Membership",
		Message:      fmt.Sprintf("Are you sure you want to %s %s?", action, m.label()),
		ConfirmLabel: label,
		CancelLabel:  "Cancel",
	}, confirm.Action{
		Apply: func() {
			revert, _ = s.list.Patch(byID(id), func(m *Membership) { m.IsActive = active })
		},
		Revert: func() { revert() },
		Commit: func(ctx context.Context) error { return s.store.SetActive(ctx, id, active) },
	})
}

// Delete removes a membership after confirmation. Memberships with plots are
// refused with an informational notice and no request.
func (s *Service) Delete(ctx context.Context, id int) error {
	m, err := s.find(id)
	if err != nil {
		return err
	}
	if m.PlotsCount > 0 {
		msg := fmt.Sprintf("Cannot delete %s because they have %d plot(s) assigned. Please remove all plots before deleting.",
			m.label(), m.PlotsCount)
		if err := s.gate.Inform(ctx, "Cannot Delete Membership", msg); err != nil {
			return err
		}
		return ErrHasPlots
	}

	err = s.gate.Run(ctx, confirm.Prompt{
		Title:        "Delete Membership",
		Message:      fmt.Sprintf("Are you sure you want to delete %s? This action cannot be undone.", m.label()),
		ConfirmLabel: "Delete",
		CancelLabel:  "Cancel",
	}, confirm.Action{
		Commit: func(ctx context.Context) error { return s.store.Delete(ctx, id) },
	})
	var failed *confirm.FailedError
	if errors.As(err, &failed) {
		_ = s.gate.Inform(ctx, "Delete Failed", "Failed to delete membership. Please try again.")
		return err
	}
	if err != nil {
		return err
	}
	s.logger.Info("membership deleted", "id", id, "echs_no", m.EchsNo)
	s.list.Reload(ctx)
	return nil
}

func byID(id int) func(Membership) bool {
	return func(m Membership) bool { return m.ID == id }
}
