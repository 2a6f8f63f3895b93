package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alecgard/enclave/internal/apiclient"
	"github.com/alecgard/enclave/internal/auth"
	"github.com/alecgard/enclave/internal/complaint"
	"github.com/alecgard/enclave/internal/config"
	"github.com/alecgard/enclave/internal/confirm"
	"github.com/alecgard/enclave/internal/dashboard"
	"github.com/alecgard/enclave/internal/department"
	"github.com/alecgard/enclave/internal/deptuser"
	"github.com/alecgard/enclave/internal/listing"
	"github.com/alecgard/enclave/internal/member"
	"github.com/alecgard/enclave/internal/membership"
	"github.com/alecgard/enclave/internal/metrics"
	"github.com/alecgard/enclave/internal/pet"
	"github.com/alecgard/enclave/internal/plot"
	"github.com/alecgard/enclave/internal/session"
)

// app is everything a command needs, wired from config.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	client   *apiclient.Client
	sessions *session.Manager
	guard    *auth.Guard
	gate     *confirm.Gate

	dashboard       *dashboard.Service
	users           *member.Service
	plots           *plot.Service
	memberships     *membership.Service
	pets            *pet.Service
	complaints      *complaint.Service
	departments     *department.Service
	departmentUsers *deptuser.Service

	pool *pgxpool.Pool
}

// cliLogger is a text logger on stderr, at debug level with --verbose.
func cliLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// cliPrompter asks on the terminal unless --yes was given.
func cliPrompter(in io.Reader, out io.Writer) confirm.Prompter {
	if assumeYes {
		return confirm.Static(true)
	}
	return confirm.NewTerminal(in, out)
}

func newApp(ctx context.Context, logger *slog.Logger, prompter confirm.Prompter) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}
	a.client = apiclient.New(cfg.APIBaseURL(), cfg.API.Timeout, logger, apiclient.WithRecorder(a.metrics))

	store, err := a.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	a.sessions = session.NewManager(a.client, store, logger)
	a.sessions.SetObserver(a.metrics)
	a.client.SetTokenSource(a.sessions)
	if err := a.sessions.Hydrate(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.guard = auth.NewGuard(session.NewAuthAdapter(a.sessions))
	a.gate = confirm.NewGate(prompter, a.metrics)

	settings := listing.Settings{
		PageSize:   cfg.Listing.PageSize,
		MaxVisible: cfg.Listing.MaxVisiblePages,
		OnStale:    a.metrics.IncStaleResponse,
	}
	a.dashboard = dashboard.NewService(a.client, logger)
	a.users = member.NewService(member.NewStore(a.client), a.gate, settings, a.metrics, logger)
	a.plots = plot.NewService(plot.NewStore(a.client), a.gate, settings, a.metrics, logger)
	a.memberships = membership.NewService(membership.NewStore(a.client), a.gate, settings, a.metrics, logger)
	a.pets = pet.NewService(pet.NewStore(a.client), settings, logger)
	a.complaints = complaint.NewService(complaint.NewStore(a.client), settings, a.metrics, logger)
	a.departments = department.NewService(department.NewStore(a.client), settings, a.metrics, logger)
	a.departmentUsers = deptuser.NewService(deptuser.NewStore(a.client), a.gate, settings, a.metrics, logger)
	return a, nil
}

func (a *app) sessionStore(ctx context.Context) (session.Store, error) {
	if a.cfg.Session.Store != "postgres" {
		return session.NewFileStore(a.cfg.Session.Path, a.cfg.Session.Key), nil
	}

	pool, err := a.database(ctx)
	if err != nil {
		return nil, err
	}
	store := session.NewPGStore(pool, a.cfg.Session.Name, a.cfg.Session.Key)
	a.metrics.RegisterDBPoolCollector(store.PoolStats)
	return store, nil
}

// database opens the shared pool on first use.
func (a *app) database(ctx context.Context) (*pgxpool.Pool, error) {
	if a.pool != nil {
		return a.pool, nil
	}
	pool, err := pgxpool.New(ctx, a.cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	a.pool = pool
	a.logger.Debug("connected to database")
	return pool, nil
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// screens lists every list controller, in menu order.
func (a *app) screens() []listing.Screen {
	return []listing.Screen{
		a.users.List(),
		a.plots.List(),
		a.memberships.List(),
		a.pets.List(),
		a.complaints.List(),
		a.departments.List(),
		a.departmentUsers.List(),
	}
}

func (a *app) screen(name string) (listing.Screen, error) {
	for _, s := range a.screens() {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, auth.ErrUnknownRoute
}

// authorize checks the stored session against the screen's route.
func (a *app) authorize(screen string) (*auth.User, error) {
	route, ok := auth.RouteForScreen(screen)
	if !ok {
		return nil, auth.ErrUnknownRoute
	}
	return a.guard.Check(route)
}

// describe turns an error into the line shown to the operator.
func describe(err error) string {
	var needs *confirm.NeedsConfirmation
	switch {
	case errors.As(err, &needs):
		return needs.Prompt.Message
	case errors.Is(err, auth.ErrNotLoggedIn), errors.Is(err, auth.ErrSessionExpired):
		return err.Error() + " (run: enclave login)"
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if apiErr.Kind == apiclient.KindAuth {
			msg += " (run: enclave login)"
		}
		return "error: " + msg
	}
	return "error: " + err.Error()
}
