package auth

import (
	"errors"
	"slices"
)

const (
	RoleSuperadmin = "superadmin"
	RoleAccounts   = "accounts"
)

// LoginRoute is where unauthenticated callers are sent.
const LoginRoute = "/login"

const (
	RouteDashboard       = "/admin"
	RouteUsers           = "/admin/users"
	RoutePlots           = "/admin/plots"
	RouteMembership      = "/admin/membership"
	RoutePets            = "/admin/pets"
	RouteSOSAlerts       = "/admin/sos-alerts"
	RouteComplaints      = "/admin/complains"
	RouteDepartments     = "/admin/departments"
	RouteDepartmentUsers = "/admin/department-users"
	RouteBilling         = "/admin/billing"
	RouteAnnouncements   = "/admin/announcements"
)

// User is the authenticated administrator as seen by the guard.
type User struct {
	ID    int
	Email string
	Name  string
	Role  string
}

// MenuItem is one navigation entry. Disabled entries are listed but have
// no screen behind them.
type MenuItem struct {
	Label    string   `json:"label"`
	Icon     string   `json:"icon"`
	Route    string   `json:"route"`
	Screen   string   `json:"screen,omitempty"`
	Roles    []string `json:"-"`
	Disabled bool     `json:"disabled,omitempty"`
}

func (m MenuItem) allows(role string) bool {
	return slices.Contains(m.Roles, role)
}

var both = []string{RoleSuperadmin, RoleAccounts}
var superOnly = []string{RoleSuperadmin}

// Menu is the full navigation, in display order.
var Menu = []MenuItem{
	{Label: "Dashboard", Icon: "fa-home", Route: RouteDashboard, Screen: "dashboard", Roles: both},
	{Label: "Manage Users", Icon: "fa-users", Route: RouteUsers, Screen: "users", Roles: superOnly},
	{Label: "Manage Plots", Icon: "fa-map-marked-alt", Route: RoutePlots, Screen: "plots", Roles: both},
	{Label: "Manage Membership", Icon: "fa-id-card", Route: RouteMembership, Screen: "memberships", Roles: both},
	{Label: "Manage Pets", Icon: "fa-paw", Route: RoutePets, Screen: "pets", Roles: both},
	{Label: "Manage SOs Alerts", Icon: "fa-bell", Route: RouteSOSAlerts, Roles: both, Disabled: true},
	{Label: "Manage Complains", Icon: "fa-thumbs-up", Route: RouteComplaints, Screen: "complaints", Roles: both},
	{Label: "Manage Department", Icon: "fa-sitemap", Route: RouteDepartments, Screen: "departments", Roles: superOnly},
	{Label: "Manage Department Users", Icon: "fa-user-tie", Route: RouteDepartmentUsers, Screen: "department-users", Roles: superOnly},
	{Label: "Manage Billing", Icon: "fa-file-invoice-dollar", Route: RouteBilling, Roles: both, Disabled: true},
	{Label: "Announcements", Icon: "fa-bullhorn", Route: RouteAnnouncements, Roles: both, Disabled: true},
}

// MenuFor returns the entries visible to role.
func MenuFor(role string) []MenuItem {
	var items []MenuItem
	for _, m := range Menu {
		if m.allows(role) {
			items = append(items, m)
		}
	}
	return items
}

func lookup(route string) (MenuItem, bool) {
	for _, m := range Menu {
		if m.Route == route {
			return m, true
		}
	}
	return MenuItem{}, false
}

// CanAccess reports whether role may open route.
func CanAccess(role, route string) bool {
	m, ok := lookup(route)
	return ok && !m.Disabled && m.allows(role)
}

// RouteForScreen maps a screen name ("plots") to its route.
func RouteForScreen(screen string) (string, bool) {
	for _, m := range Menu {
		if m.Screen == screen && m.Screen != "" {
			return m.Route, true
		}
	}
	return "", false
}

var (
	ErrNotLoggedIn    = errors.New("please log in")
	ErrSessionExpired = errors.New("session expired, please log in again")
	ErrForbidden      = errors.New("you do not have access to this page")
	ErrUnknownRoute   = errors.New("no such page")
)

// SessionLookup exposes the current session to the guard.
type SessionLookup interface {
	CurrentUser() *User
	Expired() bool
}

// Guard decides whether navigation to an administrative route may proceed.
type Guard struct {
	sessions SessionLookup
}

func NewGuard(sessions SessionLookup) *Guard {
	return &Guard{sessions: sessions}
}

// Authenticate returns the current user, or ErrNotLoggedIn /
// ErrSessionExpired.
func (g *Guard) Authenticate() (*User, error) {
	u := g.sessions.CurrentUser()
	if u == nil {
		return nil, ErrNotLoggedIn
	}
	if g.sessions.Expired() {
		return nil, ErrSessionExpired
	}
	return u, nil
}

// Check authenticates and then checks u's role against route.
func (g *Guard) Check(route string) (*User, error) {
	u, err := g.Authenticate()
	if err != nil {
		return nil, err
	}
	if err := Authorize(u, route); err != nil {
		return nil, err
	}
	return u, nil
}

// Authorize checks an already authenticated user against route.
func Authorize(u *User, route string) error {
	if _, ok := lookup(route); !ok {
		return ErrUnknownRoute
	}
	if !CanAccess(u.Role, route) {
		return ErrForbidden
	}
	return nil
}
