package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecgard/enclave/internal/apiclient"
	"github.com/alecgard/enclave/internal/audit"
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
)

// ---------------------------------------------------------------------------
// Fake society backend
// ---------------------------------------------------------------------------

type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	// plotsDown fails plot list reads with 503; loginDown fails logins with 500.
	plotsDown bool
	loginDown bool
}

func (b *fakeBackend) set(fn func(b *fakeBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

func (b *fakeBackend) count(prefix string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (b *fakeBackend) record(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	call := r.Method + " " + r.URL.Path
	if r.URL.RawQuery != "" {
		call += "?" + r.URL.RawQuery
	}
	b.calls = append(b.calls, call)
}

func (b *fakeBackend) saw(prefix string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	b.mu.Lock()
	plotsDown, loginDown := b.plotsDown, b.loginDown
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.Method + " " + r.URL.Path {
	case "POST /api/admin-login/":
		if loginDown {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"database unavailable"}`))
			return
		}
		var req session.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "s3cretpass" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"non_field_errors":["Invalid credentials"]}`))
			return
		}
		role := auth.RoleSuperadmin
		if strings.HasPrefix(req.Email, "accounts") {
			role = auth.RoleAccounts
		}
		_ = json.NewEncoder(w).Encode(session.LoginResponse{
			ID: 1, Email: req.Email, FirstName: "Sara", LastName: "Ali",
			Role: role, IsActive: true, Access: "access-token", Refresh: "refresh-token",
		})
	case "GET /api/plots/":
		if plotsDown {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"detail":"list temporarily unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"count":12,"results":[
			{"id":1,"plot_no":"A-1","plot_type":"Residential","plot_status":"Completed","total_active_membership":2},
			{"id":2,"plot_no":"B-2","plot_type":"Commercial","plot_status":"Completed","total_active_membership":0}]}`))
	case "POST /api/plots/":
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":3,"plot_no":"C-3","plot_type":"Residential","plot_status":"Completed","total_active_membership":0}`))
	case "DELETE /api/plots/2/":
		w.WriteHeader(http.StatusNoContent)
	case "GET /api/pets/":
		_, _ = w.Write([]byte(`{"count":1,"results":[{"id":3,"name":"Moti","pet_type":"dog","age":4}]}`))
	case "GET /api/member-users/":
		_, _ = w.Write([]byte(`{"count":1,"results":[{"id":5,"full_name":"Bilal Khan","status":"pending","is_active":false}]}`))
	case "PATCH /api/member-users/5/":
		_, _ = w.Write([]byte(`{}`))
	default:
		_, _ = w.Write([]byte(`{"count":0,"results":[]}`))
	}
}

type console struct {
	handler http.Handler
	backend *fakeBackend
	metrics *metrics.Metrics
	audit   *fakeAudit
}

// fakeAudit records events in memory and lists them newest first.
type fakeAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (f *fakeAudit) Record(ev audit.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev.ID = int64(len(f.events) + 1)
	f.events = append(f.events, ev)
}

func (f *fakeAudit) List(_ context.Context, q audit.Query) ([]audit.Event, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []audit.Event
	for i := len(f.events) - 1; i >= 0; i-- {
		if q.Action == "" || f.events[i].Action == q.Action {
			out = append(out, f.events[i])
		}
	}
	return out, 0, nil
}

func newConsole(t *testing.T, limiter *ratelimit.Limiter) *console {
	t.Helper()
	be := &fakeBackend{}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	m := metrics.New()
	client := apiclient.New(srv.URL+"/api", 5*time.Second, nil,
		apiclient.WithHTTPClient(srv.Client()), apiclient.WithRecorder(m))
	sessions := session.NewManager(client, session.NewFileStore(filepath.Join(t.TempDir(), "session.json"), ""), nil)
	sessions.SetObserver(m)
	client.SetTokenSource(sessions)

	gate := confirm.NewGate(confirm.Static(false), m)
	trail := &fakeAudit{}
	settings := listing.Settings{PageSize: 10, MaxVisible: 5, OnStale: m.IncStaleResponse}

	deps := RouterDeps{
		Sessions:        sessions,
		Guard:           auth.NewGuard(session.NewAuthAdapter(sessions)),
		Gate:            gate,
		Dashboard:       dashboard.NewService(client, nil),
		Users:           member.NewService(member.NewStore(client), gate, settings, m, nil),
		Plots:           plot.NewService(plot.NewStore(client), gate, settings, m, nil),
		Memberships:     membership.NewService(membership.NewStore(client), gate, settings, m, nil),
		Pets:            pet.NewService(pet.NewStore(client), settings, nil),
		Complaints:      complaint.NewService(complaint.NewStore(client), settings, m, nil),
		Departments:     department.NewService(department.NewStore(client), settings, m, nil),
		DepartmentUsers: deptuser.NewService(deptuser.NewStore(client), gate, settings, m, nil),
		Metrics:         m,
		LoginLimiter:    limiter,
		Audit:           trail,
		AuditLog:        trail,
		AllowedOrigins:  []string{"*"},
	}
	return &console{handler: NewRouter(deps), backend: be, metrics: m, audit: trail}
}

func (c *console) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func (c *console) login(t *testing.T, email string) {
	t.Helper()
	rec := c.do(t, http.MethodPost, "/api/login", map[string]string{"email": email, "password": "s3cretpass"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	return env.Error
}

// ---------------------------------------------------------------------------
// Health, metrics, middleware
// ---------------------------------------------------------------------------

func TestHealthCheck(t *testing.T) {
	handler := NewRouter(RouterDeps{AllowedOrigins: []string{"*"}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", body["status"])
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected an X-Request-ID header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected secure headers")
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	handler := NewRouter(RouterDeps{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "  abc123 ")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc123" {
		t.Errorf("expected trimmed request id abc123, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := NewRouter(RouterDeps{AllowedOrigins: []string{"https://admin.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://admin.example.com" {
		t.Errorf("expected origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow-origin for unknown origin, got %q", got)
	}
}

func TestMetricsEndpoints(t *testing.T) {
	c := newConsole(t, nil)
	c.do(t, http.MethodGet, "/health", nil)

	rec := c.do(t, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `enclave_http_requests_total{method="GET",path_pattern="/health",status_code="200"} 1`) {
		t.Errorf("expected /health to be counted under its route pattern:\n%s", rec.Body.String())
	}

	rec = c.do(t, http.MethodGet, "/metrics/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from summary, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("expected JSON summary, got %q", ct)
	}
}

func TestConsolePage(t *testing.T) {
	c := newConsole(t, nil)
	rec := c.do(t, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected HTML, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Enclave Console") {
		t.Error("expected the console page body")
	}
}

// ---------------------------------------------------------------------------
// Session and navigation
// ---------------------------------------------------------------------------

func TestGuardedRoutesRequireSession(t *testing.T) {
	c := newConsole(t, nil)

	for _, path := range []string{"/api/me", "/api/menu", "/api/dashboard", "/api/screens/plots"} {
		rec := c.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
			continue
		}
		var env struct {
			Error struct {
				Code     string `json:"code"`
				Redirect string `json:"redirect"`
			} `json:"error"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
			t.Fatal(err)
		}
		if env.Error.Redirect != auth.LoginRoute {
			t.Errorf("%s: expected redirect to %s, got %q", path, auth.LoginRoute, env.Error.Redirect)
		}
	}
	if c.backend.saw("GET /api/plots/") {
		t.Error("unauthenticated request must not reach the backend")
	}
}

func TestLoginMeMenuLogout(t *testing.T) {
	c := newConsole(t, nil)

	rec := c.do(t, http.MethodPost, "/api/login", map[string]string{"email": "sara@example.com", "password": "s3cretpass"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var login loginResponse
	if err := json.NewDecoder(rec.Body).Decode(&login); err != nil {
		t.Fatal(err)
	}
	if login.Redirect != auth.RouteDashboard || login.User.Role != auth.RoleSuperadmin {
		t.Errorf("unexpected login response %+v", login)
	}
	if len(login.Menu) != len(auth.Menu) {
		t.Errorf("superadmin should see all %d menu entries, got %d", len(auth.Menu), len(login.Menu))
	}

	rec = c.do(t, http.MethodGet, "/api/me", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "sara@example.com") {
		t.Errorf("expected profile from /api/me, got %d %s", rec.Code, rec.Body.String())
	}

	rec = c.do(t, http.MethodPost, "/api/logout", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from logout, got %d", rec.Code)
	}
	rec = c.do(t, http.MethodGet, "/api/me", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestLoginFailures(t *testing.T) {
	c := newConsole(t, nil)

	rec := c.do(t, http.MethodPost, "/api/login", map[string]string{"email": "sara@example.com", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if d := decodeError(t, rec); d.Code != "login_failed" || d.Message != "Invalid credentials" {
		t.Errorf("unexpected error %+v", d)
	}

	rec = c.do(t, http.MethodPost, "/api/login", map[string]string{"email": "", "password": ""})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty credentials, got %d", rec.Code)
	}
	if n := len(c.backend.calls); n != 1 {
		t.Errorf("empty credentials must not reach the backend, saw %d calls", n)
	}

	rec = c.do(t, http.MethodPost, "/api/login", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing body, got %d", rec.Code)
	}
}

func TestLoginBackendFailureIsNotRejection(t *testing.T) {
	c := newConsole(t, nil)
	c.backend.set(func(b *fakeBackend) { b.loginDown = true })

	rec := c.do(t, http.MethodPost, "/api/login", map[string]string{"email": "sara@example.com", "password": "s3cretpass"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for a backend 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if d := decodeError(t, rec); d.Code == "login_failed" {
		t.Errorf("a backend outage must not read as bad credentials: %+v", d)
	}
}

func TestLoginRateLimited(t *testing.T) {
	c := newConsole(t, ratelimit.New(1, time.Minute))

	c.login(t, "sara@example.com")
	rec := c.do(t, http.MethodPost, "/api/login", map[string]string{"email": "sara@example.com", "password": "s3cretpass"})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if d := decodeError(t, rec); d.Code != "rate_limited" {
		t.Errorf("expected rate_limited, got %q", d.Code)
	}

	summary, err := c.metrics.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if summary.RateLimit.Rejections != 1 {
		t.Errorf("expected 1 rate limit rejection, got %v", summary.RateLimit.Rejections)
	}
}

func TestRoleRestrictedScreens(t *testing.T) {
	c := newConsole(t, nil)
	c.login(t, "accounts@example.com")

	rec := c.do(t, http.MethodGet, "/api/screens/users", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("accounts opening users: expected 403, got %d", rec.Code)
	}
	rec = c.do(t, http.MethodPost, "/api/departments", map[string]any{"department_name": "Security"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("accounts creating a department: expected 403, got %d", rec.Code)
	}
	rec = c.do(t, http.MethodGet, "/api/screens/sos-alerts", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown screen: expected 404, got %d", rec.Code)
	}
	rec = c.do(t, http.MethodGet, "/api/screens/plots", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("accounts opening plots: expected 200, got %d", rec.Code)
	}

	rec = c.do(t, http.MethodGet, "/api/menu", nil)
	var menu struct {
		Items []auth.MenuItem `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&menu); err != nil {
		t.Fatal(err)
	}
	for _, item := range menu.Items {
		if item.Route == auth.RouteUsers || item.Route == auth.RouteDepartments {
			t.Errorf("accounts menu should not include %s", item.Route)
		}
	}
}

func TestDashboard(t *testing.T) {
	c := newConsole(t, nil)
	c.login(t, "sara@example.com")

	rec := c.do(t, http.MethodGet, "/api/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var summary dashboard.Summary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(summary.Greeting, ", Sara Ali") {
		t.Errorf("unexpected greeting %q", summary.Greeting)
	}
	found := false
	for _, tile := range summary.Tiles {
		if tile.Screen == "plots" && tile.Count == 12 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a plots tile with count 12, got %+v", summary.Tiles)
	}
}

// ---------------------------------------------------------------------------
// Screens
// ---------------------------------------------------------------------------

func TestScreenSnapshotAndQuery(t *testing.T) {
	c := newConsole(t, nil)
	c.login(t, "sara@example.com")

	rec := c.do(t, http.MethodGet, "/api/screens/plots", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var snap screenInfo
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if !snap.Loaded || snap.Count != 12 || snap.TotalPages != 2 || len(snap.Rows) != 2 {
		t.Errorf("unexpected snapshot %+v", snap.Snapshot)
	}
	if snap.Rows[0][1] != "A-1" {
		t.Errorf("expected first row plot A-1, got %v", snap.Rows[0])
	}

	rec = c.do(t, http.MethodPost, "/api/screens/plots/query", map[string]any{
		"filters": map[string]string{"plot_status": "Completed"},
		"page":    2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Page != 2 || snap.Filters["plot_status"] != "Completed" {
		t.Errorf("expected page 2 filtered by Completed, got %+v", snap.Snapshot)
	}
	if !c.backend.saw("GET /api/plots/?page=2&page_size=10&plot_status=Completed") {
		t.Errorf("expected filtered page 2 request, got %v", c.backend.calls)
	}

	rec = c.do(t, http.MethodPost, "/api/screens/plots/query", map[string]any{
		"filters": map[string]string{"plot_status": "Demolished"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for an invalid filter value, got %d", rec.Code)
	}

	rec = c.do(t, http.MethodPost, "/api/screens/users/query", map[string]any{"search": "bilal"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for search on a screen without search, got %d", rec.Code)
	}
}

func TestExportPDF(t *testing.T) {
	c := newConsole(t, nil)
	c.login(t, "sara@example.com")

	rec := c.do(t, http.MethodGet, "/api/screens/pets/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "pets-page-1.pdf") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("expected a PDF body")
	}
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

func TestPlotDeleteNeedsConfirmation(t *testing.T) {
	c := newConsole(t, nil)
	c.login(t, "sara@example.com")
	c.do(t, http.MethodGet, "/api/screens/plots", nil)

	rec := c.do(t, http.MethodDelete, "/api/plots/2", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	d := decodeError(t, rec)
	if d.Code != "confirmation_required" || d.Prompt == nil || d.Prompt.Title != "Delete Plot" {
		t.Errorf("expected a Delete Plot prompt, got %+v", d)
	}
	if c.backend.saw("DELETE") {
		t.Fatal("nothing may be deleted before confirmation")
	}

	rec = c.do(t, http.MethodDelete, "/api/plots/2?confirm=false", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "cancelled") {
		t.Errorf("expected cancelled, got %d %s", rec.Code, rec.Body.String())
	}
	if c.backend.saw("DELETE") {
		t.Fatal("declined delete reached the backend")
	}

	rec = c.do(t, http.MethodDelete, "/api/plots/2?confirm=true", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if !c.backend.saw("DELETE /api/plots/2/") {
		t.Error("expected the delete request")
	}

	rec = c.do(t, http.MethodDelete, "/api/plots/2?confirm=maybe", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed confirm, got %d", rec.Code)
	}
}

func TestAuditTrail(t *testing.T) {
	c := newConsole(t, nil)
	c.login(t, "sara@example.com")
	c.do(t, http.MethodGet, "/api/screens/plots", nil)

	c.do(t, http.MethodDelete, "/api/plots/2", nil)
	if len(c.audit.events) != 0 {
		t.Fatalf("an unconfirmed delete must not be audited, got %+v", c.audit.events)
	}
	if rec := c.do(t, http.MethodDelete, "/api/plots/2?confirm=true", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec := c.do(t, http.MethodGet, "/api/audit?action=plot.delete", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var page auditPage
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if len(page.Events) != 1 {
		t.Fatalf("expected one event, got %+v", page.Events)
	}
	ev := page.Events[0]
	if ev.ResourceType != "plot" || ev.ResourceID != 2 || ev.UserEmail != "sara@example.com" || ev.RequestID == "" {
		t.Errorf("unexpected event %+v", ev)
	}

	if rec := c.do(t, http.MethodGet, "/api/audit?limit=-1", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a negative limit, got %d", rec.Code)
	}
}

func TestPlotDeleteRefusedWithMembers(t *testing.T) {
	c := newConsole(t, nil)
	c.login(t, "sara@example.com")
	c.do(t, http.MethodGet, "/api/screens/plots", nil)

	rec := c.do(t, http.MethodDelete, "/api/plots/1?confirm=true", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	d := decodeError(t, rec)
	if d.Code != "refused" || d.Prompt == nil || d.Prompt.Title != "Cannot Delete Plot" {
		t.Errorf("expected the Cannot Delete Plot notice, got %+v", d)
	}
	if !strings.Contains(d.Message, "2 member(s)") {
		t.Errorf("expected the member count in the message, got %q", d.Message)
	}
	if c.backend.saw("DELETE") {
		t.Error("refused delete reached the backend")
	}
}

func TestUserActivateFlow(t *testing.T) {
	c := newConsole(t, nil)
	c.login(t, "sara@example.com")

	rec := c.do(t, http.MethodPost, "/api/users/5/activate", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("user not on a loaded page: expected 404, got %d", rec.Code)
	}

	c.do(t, http.MethodGet, "/api/screens/users", nil)
	rec = c.do(t, http.MethodPost, "/api/users/5/activate", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if d := decodeError(t, rec); d.Prompt == nil || d.Prompt.Message != "Are you sure you want to activate Bilal Khan?" {
		t.Errorf("unexpected prompt %+v", d.Prompt)
	}

	// The optimistic flip must be reverted while the question is open.
	rec = c.do(t, http.MethodGet, "/api/screens/users", nil)
	if !strings.Contains(rec.Body.String(), `"is_active":false`) {
		t.Errorf("row should not stay activated before confirmation: %s", rec.Body.String())
	}

	rec = c.do(t, http.MethodPost, "/api/users/5/activate?confirm=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !c.backend.saw("PATCH /api/member-users/5/") {
		t.Error("expected the PATCH request")
	}
}

func TestUserStatusBackwardsRejected(t *testing.T) {
	c := newConsole(t, nil)
	c.login(t, "sara@example.com")
	c.do(t, http.MethodGet, "/api/screens/users", nil)

	rec := c.do(t, http.MethodPut, "/api/users/5/status?confirm=true", map[string]string{"status": "archived"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if c.backend.saw("PATCH") {
		t.Error("rejected transition reached the backend")
	}
}

func TestCreatePlotValidation(t *testing.T) {
	c := newConsole(t, nil)
	c.login(t, "sara@example.com")

	rec := c.do(t, http.MethodPost, "/api/plots", map[string]any{"plot_no": "C-3"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if d := decodeError(t, rec); d.Code != "validation_error" {
		t.Errorf("expected validation_error, got %q", d.Code)
	}
	if c.backend.saw("POST /api/plots/") {
		t.Error("invalid plot reached the backend")
	}
}

func TestCreatePlotSurvivesListReloadFailure(t *testing.T) {
	c := newConsole(t, nil)
	c.login(t, "sara@example.com")
	c.backend.set(func(b *fakeBackend) { b.plotsDown = true })

	rec := c.do(t, http.MethodPost, "/api/plots", map[string]any{
		"plot_no": "C-3", "plot_type": "Residential", "plot_status": "Completed",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("an accepted write should report 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if n := c.backend.count("POST /api/plots/"); n != 1 {
		t.Errorf("expected one POST, got %d", n)
	}
	if !c.backend.saw("GET /api/plots/") {
		t.Error("expected the list reload to be attempted")
	}

	rec = c.do(t, http.MethodGet, "/api/audit?action=plot.create", nil)
	var page auditPage
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if len(page.Events) != 1 || page.Events[0].ResourceID != 3 {
		t.Errorf("expected one plot.create event for plot 3, got %+v", page.Events)
	}
}

func TestComplaintCloseNeedsReason(t *testing.T) {
	c := newConsole(t, nil)
	c.login(t, "sara@example.com")

	rec := c.do(t, http.MethodPut, "/api/complaints/9/status", map[string]string{"status": "closed"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("complaint not on a loaded page: expected 404, got %d", rec.Code)
	}
}

func TestInvalidID(t *testing.T) {
	c := newConsole(t, nil)
	c.login(t, "sara@example.com")

	rec := c.do(t, http.MethodDelete, "/api/plots/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
