// Package dashboard builds the landing page: who is signed in and how many
// records each visible screen holds.
package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alecgard/enclave/internal/apiclient"
	"github.com/alecgard/enclave/internal/auth"
	"github.com/alecgard/enclave/internal/session"
)

const fetchTimeout = 10 * time.Second

// Tile is one count on the dashboard. Error is set when that count failed;
// the other tiles are still shown.
type Tile struct {
	Screen string `json:"screen"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

type Summary struct {
	Greeting string `json:"greeting"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Tiles    []Tile `json:"tiles"`
}

type source struct {
	screen  string
	label   string
	path    string
	filters map[string]string
}

// sources are counted in this order, skipping screens the role cannot open.
var sources = []source{
	{screen: "users", label: "Member users", path: "/member-users/"},
	{screen: "users", label: "Pending approvals", path: "/member-users/", filters: map[string]string{"status": "pending"}},
	{screen: "plots", label: "Plots", path: "/plots/"},
	{screen: "memberships", label: "Memberships", path: "/membership-numbers/"},
	{screen: "pets", label: "Pets", path: "/pets/"},
	{screen: "complaints", label: "Complaints", path: "/complaints/"},
	{screen: "complaints", label: "Open complaints", path: "/complaints/", filters: map[string]string{"status": "pending"}},
	{screen: "departments", label: "Departments", path: "/departments/"},
	{screen: "department-users", label: "Department users", path: "/department-users/"},
}

type Service struct {
	client *apiclient.Client
	logger *slog.Logger
	now    func() time.Time
}

func NewService(client *apiclient.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger.With("component", "dashboard"), now: time.Now}
}

// Build fetches every visible count concurrently. A failed count is reported
// on its tile; an auth failure aborts the whole dashboard.
func (s *Service) Build(ctx context.Context, p session.Profile) (*Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	var visible []source
	for _, src := range sources {
		if route, ok := auth.RouteForScreen(src.screen); ok && auth.CanAccess(p.Role, route) {
			visible = append(visible, src)
		}
	}

	tiles := make([]Tile, len(visible))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, src := range visible {
		tiles[i] = Tile{Screen: src.screen, Label: src.label}
		g.Go(func() error {
			q := apiclient.Query{Page: 1, PageSize: 1, Filters: src.filters}
			page, err := apiclient.List[json.RawMessage](ctx, s.client, src.path, q)
			if err != nil {
				if apiclient.KindOf(err) == apiclient.KindAuth {
					return err
				}
				s.logger.Warn("dashboard count failed", "label", src.label, "error", err)
				tiles[i].Error = apiclient.Message(err)
				return nil
			}
			tiles[i].Count = page.Count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Summary{
		Greeting: Greeting(s.now()) + ", " + p.DisplayName(),
		Name:     p.DisplayName(),
		Email:    p.Email,
		Role:     p.Role,
		Tiles:    tiles,
	}, nil
}

// Greeting picks a salutation for the local hour.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}
