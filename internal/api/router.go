package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alecgard/enclave/internal/auth"
	"github.com/alecgard/enclave/internal/complaint"
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
	"github.com/alecgard/enclave/internal/ratelimit"
	"github.com/alecgard/enclave/internal/session"
	"github.com/alecgard/enclave/internal/ui"
)

// RouterDeps holds all dependencies for the console router.
type RouterDeps struct {
	Sessions        *session.Manager
	Guard           *auth.Guard
	Gate            *confirm.Gate
	Dashboard       *dashboard.Service
	Users           *member.Service
	Plots           *plot.Service
	Memberships     *membership.Service
	Pets            *pet.Service
	Complaints      *complaint.Service
	Departments     *department.Service
	DepartmentUsers *deptuser.Service
	Metrics         *metrics.Metrics
	LoginLimiter    *ratelimit.Limiter
	Audit           AuditRecorder
	AuditLog        AuditLister
	AllowedOrigins  []string
	Logger          *slog.Logger
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "console")
	if deps.Gate == nil {
		deps.Gate = confirm.NewGate(confirm.Static(false), nil)
	}

	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(secureHeaders)
	r.Use(corsMiddleware(deps.AllowedOrigins))
	var obs HTTPObserver
	if deps.Metrics != nil {
		obs = deps.Metrics
	}
	r.Use(slogRequestLogger(logger, obs))
	if deps.Audit != nil {
		r.Use(withAuditRecorder(deps.Audit))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Registry(), promhttp.HandlerOpts{}))
		r.Get("/metrics/summary", deps.Metrics.Handler())
	}

	if deps.Sessions == nil || deps.Guard == nil {
		return r
	}

	r.Handle("/", ui.Handler())

	authH := newAuthHandler(deps.Sessions, deps.Dashboard)
	screens := newScreensHandler(screenList(deps))

	r.Route("/api", func(ar chi.Router) {
		ar.Group(func(pr chi.Router) {
			if deps.LoginLimiter != nil {
				var onReject []func()
				if deps.Metrics != nil {
					onReject = append(onReject, func() { deps.Metrics.IncRateLimitRejection("login") })
				}
				pr.Use(ratelimit.Middleware(deps.LoginLimiter, ratelimit.ClientIP, onReject...))
			}
			pr.Post("/login", authH.Login)
		})
		ar.Post("/logout", authH.Logout)

		// Everything below needs a live session.
		ar.Group(func(sr chi.Router) {
			sr.Use(auth.RequireSession(deps.Guard))

			sr.Get("/me", authH.Me)
			sr.Get("/menu", authH.Menu)
			if deps.Dashboard != nil {
				sr.With(auth.RequireRoute(auth.StaticRoute(auth.RouteDashboard))).Get("/dashboard", authH.Dashboard)
			}

			sr.Route("/screens/{screen}", func(lr chi.Router) {
				lr.Use(auth.RequireRoute(screenRoute))
				lr.Get("/", screens.Get)
				lr.Post("/query", screens.Query)
				lr.Post("/refresh", screens.Refresh)
				lr.Get("/export", screens.Export)
			})

			if deps.AuditLog != nil {
				sr.With(auth.RequireRoute(auth.StaticRoute(auth.RouteDashboard))).Get("/audit", newAuditHandler(deps.AuditLog).List)
			}

			mountWrites(sr, deps, logger)
		})
	})

	return r
}

// screenList collects the list controller of every configured service.
func screenList(deps RouterDeps) []listing.Screen {
	var out []listing.Screen
	if deps.Users != nil {
		out = append(out, deps.Users.List())
	}
	if deps.Plots != nil {
		out = append(out, deps.Plots.List())
	}
	if deps.Memberships != nil {
		out = append(out, deps.Memberships.List())
	}
	if deps.Pets != nil {
		out = append(out, deps.Pets.List())
	}
	if deps.Complaints != nil {
		out = append(out, deps.Complaints.List())
	}
	if deps.Departments != nil {
		out = append(out, deps.Departments.List())
	}
	if deps.DepartmentUsers != nil {
		out = append(out, deps.DepartmentUsers.List())
	}
	return out
}

func mountWrites(r chi.Router, deps RouterDeps, logger *slog.Logger) {
	guarded := func(route string) func(http.Handler) http.Handler {
		return auth.RequireRoute(auth.StaticRoute(route))
	}

	if deps.Users != nil {
		h := &usersHandler{svc: deps.Users, gate: deps.Gate, logger: logger}
		r.Route("/users/{id}", func(ur chi.Router) {
			ur.Use(guarded(auth.RouteUsers))
			ur.Post("/activate", h.SetActive(true))
			ur.Post("/deactivate", h.SetActive(false))
			ur.Put("/status", h.ChangeStatus)
		})
	}

	if deps.Plots != nil {
		h := &plotsHandler{svc: deps.Plots, gate: deps.Gate, logger: logger}
		r.Route("/plots", func(pr chi.Router) {
			pr.Use(guarded(auth.RoutePlots))
			pr.Post("/", h.Create)
			pr.Get("/memberships", h.Memberships)
			pr.Get("/{id}", h.Get)
			pr.Put("/{id}", h.Update)
			pr.Delete("/{id}", h.Delete)
		})
	}

	if deps.Memberships != nil {
		h := &membershipsHandler{svc: deps.Memberships, gate: deps.Gate, logger: logger}
		r.Route("/memberships", func(mr chi.Router) {
			mr.Use(guarded(auth.RouteMembership))
			mr.Post("/", h.Create)
			mr.Put("/{id}", h.Update)
			mr.Delete("/{id}", h.Delete)
			mr.Post("/{id}/activate", h.SetActive(true))
			mr.Post("/{id}/deactivate", h.SetActive(false))
		})
	}

	if deps.Complaints != nil {
		h := &complaintsHandler{svc: deps.Complaints, logger: logger}
		r.With(guarded(auth.RouteComplaints)).Put("/complaints/{id}/status", h.UpdateStatus)
	}

	if deps.Departments != nil {
		h := &departmentsHandler{svc: deps.Departments, logger: logger}
		r.Route("/departments", func(dr chi.Router) {
			dr.Use(guarded(auth.RouteDepartments))
			dr.Post("/", h.Create)
			dr.Get("/users", h.Users)
			dr.Get("/{id}", h.Get)
			dr.Put("/{id}", h.Update)
		})
	}

	if deps.DepartmentUsers != nil {
		h := &departmentUsersHandler{svc: deps.DepartmentUsers, gate: deps.Gate, logger: logger}
		r.Route("/department-users", func(dr chi.Router) {
			dr.Use(guarded(auth.RouteDepartmentUsers))
			dr.Post("/", h.Create)
			dr.Get("/{id}", h.Get)
			dr.Put("/{id}", h.Update)
			dr.Delete("/{id}", h.Delete)
		})
	}
}
