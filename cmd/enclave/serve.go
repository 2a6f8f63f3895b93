package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/alecgard/enclave/internal/api"
	"github.com/alecgard/enclave/internal/audit"
	"github.com/alecgard/enclave/internal/confirm"
	"github.com/alecgard/enclave/internal/ratelimit"
	"github.com/alecgard/enclave/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local console server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Confirmations come with each request; nothing is asked on the terminal.
	a, err := newApp(ctx, logger, confirm.Static(false))
	if err != nil {
		return err
	}
	defer a.Close()

	shutdownTracing, err := telemetry.Setup(ctx, a.cfg.Telemetry.ServiceName, a.cfg.Telemetry.OTLPEndpoint, a.cfg.Telemetry.Insecure)
	if err != nil {
		return err
	}

	limiter := ratelimit.New(a.cfg.RateLimit.Login, a.cfg.RateLimit.Window)
	go pruneLimiter(ctx, limiter, a.cfg.RateLimit.Window, logger)

	deps := api.RouterDeps{
		Sessions:        a.sessions,
		Guard:           a.guard,
		Gate:            a.gate,
		Dashboard:       a.dashboard,
		Users:           a.users,
		Plots:           a.plots,
		Memberships:     a.memberships,
		Pets:            a.pets,
		Complaints:      a.complaints,
		Departments:     a.departments,
		DepartmentUsers: a.departmentUsers,
		Metrics:         a.metrics,
		LoginLimiter:    limiter,
		AllowedOrigins:  a.cfg.CORS.AllowedOrigins,
		Logger:          logger,
	}
	if a.cfg.Audit.Enabled {
		pool, err := a.database(ctx)
		if err != nil {
			return err
		}
		store := audit.NewStore(pool)
		collector := audit.NewCollector(store, a.cfg.Audit.BatchSize, a.cfg.Audit.FlushInterval, logger)
		collector.OnDropped(a.metrics.AddAuditDropped)
		flushed := make(chan struct{})
		go func() {
			collector.Start(ctx)
			close(flushed)
		}()
		defer func() {
			collector.Stop()
			<-flushed
		}()
		deps.Audit = collector
		deps.AuditLog = store
	}
	router := api.NewRouter(deps)

	srv := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      otelhttp.NewHandler(router, "enclave-console"),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", a.cfg.Addr(), "api", a.cfg.APIBaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("flushing traces", "error", err)
	}
	return nil
}

// pruneLimiter drops idle login buckets once per window.
func pruneLimiter(ctx context.Context, l *ratelimit.Limiter, every time.Duration, logger *slog.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := l.Prune(); n > 0 {
				logger.Debug("pruned login rate limit buckets", "count", n)
			}
		}
	}
}
