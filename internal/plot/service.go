package plot

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

var ErrHasMembers = errors.New("plot has members associated")

const resource = "plots"

// Service drives the Manage Plots screen.
type Service struct {
	store   *Store
	gate    *confirm.Gate
	list    *listing.Controller[Plot]
	counter transition.RejectionCounter
	logger  *slog.Logger
	form    *apiclient.Submitter
}

func NewService(store *Store, gate *confirm.Gate, settings listing.Settings, counter transition.RejectionCounter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := settings.Config(resource, "Manage Plots", true, Columns,
		listing.FilterDef{Name: "plot_status", Label: "Status", Choices: choices(Statuses)},
		listing.FilterDef{Name: "plot_type", Label: "Type", Choices: choices(Types)},
	)
	return &Service{
		store:   store,
		gate:    gate,
		list:    listing.New(cfg, store.List, logger),
		counter: counter,
		logger:  logger.With("component", "plot"),
		form:    &apiclient.Submitter{},
	}
}

func (s *Service) List() *listing.Controller[Plot] { return s.list }

func (s *Service) WithGate(g *confirm.Gate) *Service {
	cp := *s
	cp.gate = g
	return &cp
}

func validate(in Input) error {
	return transition.Validate(
		transition.Required(in.PlotNo, in.PlotType, in.PlotStatus),
		transition.OneOf("plot_type", in.PlotType, Types, fmt.Sprintf("Plot type must be one of: %s, %s.", TypeResidential, TypeCommercial)),
		transition.OneOf("plot_status", in.PlotStatus, Statuses, "Please select a valid plot status."),
	)
}

// Create validates and submits a new plot, then reloads the list.
func (s *Service) Create(ctx context.Context, in Input) (*Plot, error) {
	if err := transition.Count(s.counter, resource, validate(in)); err != nil {
		return nil, err
	}
	var created *Plot
	err := s.form.Submit(func() error {
		p, err := s.store.Create(ctx, in)
		created = p
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("plot created", "id", created.ID, "plot_no", created.PlotNo)
	s.list.Reload(ctx)
	return created, nil
}

// Update validates and submits an edit, then reloads the list.
func (s *Service) Update(ctx context.Context, id int, in Input) (*Plot, error) {
	if err := transition.Count(s.counter, resource, validate(in)); err != nil {
		return nil, err
	}
	var updated *Plot
	err := s.form.Submit(func() error {
		p, err := s.store.Update(ctx, id, in)
		updated = p
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("plot updated", "id", id)
	s.list.Reload(ctx)
	return updated, nil
}

// Lookup returns the plot from the current page, or fetches it.
func (s *Service) Lookup(ctx context.Context, id int) (*Plot, error) {
	if p, ok := s.list.Find(func(p Plot) bool { return p.ID == id }); ok {
		return &p, nil
	}
	return s.store.Get(ctx, id)
}

// Delete removes a plot after confirmation. Plots with members are refused
// with an informational notice and no request.
func (s *Service) Delete(ctx context.Context, id int) error {
	p, err := s.Lookup(ctx, id)
	if err != nil {
		return err
	}

	if p.TotalActiveMembership > 0 {
		msg := fmt.Sprintf("Cannot delete plot %s because it has %d member(s) associated. Please remove all members before deleting.",
			p.PlotNo, p.TotalActiveMembership)
		if err := s.gate.Inform(ctx, "Cannot Delete Plot", msg); err != nil {
			return err
		}
		return ErrHasMembers
	}

	err = s.gate.Run(ctx, confirm.Prompt{
		Title:        "Delete Plot",
		Message:      fmt.Sprintf("Are you sure you want to delete plot %s? This action cannot be undone.", p.PlotNo),
		ConfirmLabel: "Delete",
		CancelLabel:  "Cancel",
	}, confirm.Action{
		Commit: func(ctx context.Context) error { return s.store.Delete(ctx, id) },
	})
	var failed *confirm.FailedError
	if errors.As(err, &failed) {
		_ = s.gate.Inform(ctx, "Delete Failed", "Failed to delete plot. Please try again.")
		return err
	}
	if err != nil {
		return err
	}
	s.logger.Info("plot deleted", "id", id, "plot_no", p.PlotNo)
	s.list.Reload(ctx)
	return nil
}

// Memberships returns the dropdown narrowed by term.
func (s *Service) Memberships(ctx context.Context, term string) ([]Membership, error) {
	all, err := s.store.Memberships(ctx)
	if err != nil {
		return nil, err
	}
	return FilterMemberships(all, term), nil
}

func choices(values []string) []listing.Choice {
	out := make([]listing.Choice, len(values))
	for i, v := range values {
		out[i] = listing.Choice{Value: v, Label: v}
	}
	return out
}
