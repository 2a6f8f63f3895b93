package listing

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/alecgard/enclave/internal/apiclient"
)

// Lister fetches one page for a query.
type Lister[T any] func(ctx context.Context, q apiclient.Query) (*apiclient.Page[T], error)

// Choice is one allowed value of a filter.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterDef declares a discrete filter. An empty Choices list accepts any value.
type FilterDef struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Choices []Choice `json:"choices,omitempty"`
}

func (f FilterDef) allows(value string) bool {
	if value == "" || len(f.Choices) == 0 {
		return true
	}
	for _, c := range f.Choices {
		if c.Value == value {
			return true
		}
	}
	return false
}

// Config describes one list screen.
type Config struct {
	Name       string
	Title      string
	PageSize   int
	MaxVisible int
	Search     bool
	Filters    []FilterDef
	Columns    []string

	// OnStale is called when a response is dropped because a newer one
	// has already been applied.
	OnStale func(screen string)
}

// Tabular rows can be rendered as a table or exported.
type Tabular interface {
	Cells() []string
}

// Controller owns the query, the current page of results and the total
// count for one screen. Every filter or search change resets to page 1
// before fetching. Safe for concurrent use.
type Controller[T any] struct {
	cfg    Config
	list   Lister[T]
	logger *slog.Logger

	mu      sync.Mutex
	query   apiclient.Query
	results []T
	count   int
	loaded  bool
	issued  uint64
	applied uint64
}

// New creates a Controller on page 1 with no filters. Nothing is fetched
// until Refresh.
func New[T any](cfg Config, list Lister[T], logger *slog.Logger) *Controller[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.MaxVisible <= 0 {
		cfg.MaxVisible = DefaultMaxVisible
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller[T]{
		cfg:     cfg,
		list:    list,
		logger:  logger.With("component", "listing", "screen", cfg.Name),
		query:   apiclient.Query{Page: 1, PageSize: cfg.PageSize, Filters: map[string]string{}},
		results: []T{},
	}
}

func (c *Controller[T]) Name() string         { return c.cfg.Name }
func (c *Controller[T]) Title() string        { return c.cfg.Title }
func (c *Controller[T]) Filters() []FilterDef { return c.cfg.Filters }
func (c *Controller[T]) Searchable() bool     { return c.cfg.Search }

func (c *Controller[T]) filterDef(name string) (FilterDef, bool) {
	for _, f := range c.cfg.Filters {
		if f.Name == name {
			return f, true
		}
	}
	return FilterDef{}, false
}

// SetFilter sets (or with an empty value, clears) a filter, resets to page 1
// and refreshes.
func (c *Controller[T]) SetFilter(ctx context.Context, name, value string) error {
	def, ok := c.filterDef(name)
	if !ok {
		return apiclient.Validation(name, fmt.Sprintf("Unknown filter %q.", name))
	}
	value = strings.TrimSpace(value)
	if !def.allows(value) {
		return apiclient.Validation(name, fmt.Sprintf("Invalid value %q for %s.", value, def.Label))
	}

	c.mu.Lock()
	if value == "" {
		delete(c.query.Filters, name)
	} else {
		c.query.Filters[name] = value
	}
	c.query.Page = 1
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// SetFilters applies several filters at once (empty values clear), resets
// to page 1 and refreshes once. Nothing changes if any value is invalid.
func (c *Controller[T]) SetFilters(ctx context.Context, values map[string]string) error {
	cleaned := make(map[string]string, len(values))
	for _, name := range slices.Sorted(maps.Keys(values)) {
		def, ok := c.filterDef(name)
		if !ok {
			return apiclient.Validation(name, fmt.Sprintf("Unknown filter %q.", name))
		}
		value := strings.TrimSpace(values[name])
		if !def.allows(value) {
			return apiclient.Validation(name, fmt.Sprintf("Invalid value %q for %s.", value, def.Label))
		}
		cleaned[name] = value
	}
	if len(cleaned) == 0 {
		return nil
	}

	c.mu.Lock()
	for name, value := range cleaned {
		if value == "" {
			delete(c.query.Filters, name)
		} else {
			c.query.Filters[name] = value
		}
	}
	c.query.Page = 1
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// SetSearch sets the free-text term, resets to page 1 and refreshes.
func (c *Controller[T]) SetSearch(ctx context.Context, term string) error {
	if !c.cfg.Search {
		return apiclient.Validation("search", "Search is not available on this screen.")
	}

	c.mu.Lock()
	c.query.Search = strings.TrimSpace(term)
	c.query.Page = 1
	c.mu.Unlock()

	return c.Refresh(ctx)
}

func (c *Controller[T]) ClearSearch(ctx context.Context) error {
	return c.SetSearch(ctx, "")
}

// GoToPage moves to page n. Out-of-range pages are ignored without a
// request. If the fetch fails the previous page number is restored.
func (c *Controller[T]) GoToPage(ctx context.Context, n int) error {
	c.mu.Lock()
	total := TotalPages(c.count, c.query.PageSize)
	if n < 1 || n > total {
		c.mu.Unlock()
		return nil
	}
	prev := c.query.Page
	c.query.Page = n
	c.mu.Unlock()

	if err := c.Refresh(ctx); err != nil {
		c.mu.Lock()
		if c.query.Page == n {
			c.query.Page = prev
		}
		c.mu.Unlock()
		return err
	}
	return nil
}

func (c *Controller[T]) NextPage(ctx context.Context) error {
	return c.GoToPage(ctx, c.CurrentPage()+1)
}

func (c *Controller[T]) PreviousPage(ctx context.Context) error {
	return c.GoToPage(ctx, c.CurrentPage()-1)
}

// Refresh fetches the current query once. On failure the previous results
// stay in place. A response is dropped if a newer one was applied first.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	q := c.query.Clone()
	c.mu.Unlock()

	page, err := c.list(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.applied {
		c.logger.Debug("dropping stale response", "seq", seq, "applied", c.applied)
		if c.cfg.OnStale != nil {
			c.cfg.OnStale(c.cfg.Name)
		}
		return nil
	}
	if err != nil {
		return err
	}

	c.results = page.Results
	if c.results == nil {
		c.results = []T{}
	}
	c.count = page.Count
	c.loaded = true
	c.applied = seq
	return nil
}

// Reload refreshes after a write the backend already accepted. A failure
// only leaves the previous page in place, so it is logged, not returned.
func (c *Controller[T]) Reload(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("reloading list after write", "error", err)
	}
}

// Query returns a copy of the current query.
func (c *Controller[T]) Query() apiclient.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Clone()
}

func (c *Controller[T]) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Page
}

func (c *Controller[T]) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return TotalPages(c.count, c.query.PageSize)
}

func (c *Controller[T]) PageNumbers() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return PageNumbers(c.query.Page, TotalPages(c.count, c.query.PageSize), c.cfg.MaxVisible)
}

// Results returns a copy of the current page.
func (c *Controller[T]) Results() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.results)
}

func (c *Controller[T]) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Find returns the first row on the current page matching fn.
func (c *Controller[T]) Find(match func(T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.results {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Patch applies an optimistic change to the first matching row and returns
// a func restoring the row as it was. The revert does nothing once a newer
// page has replaced the results.
func (c *Controller[T]) Patch(match func(T) bool, mutate func(*T)) (revert func(), ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := slices.IndexFunc(c.results, match)
	if idx < 0 {
		return func() {}, false
	}
	before := c.results[idx]
	gen := c.applied
	mutate(&c.results[idx])

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.applied == gen && idx < len(c.results) {
				c.results[idx] = before
			}
		})
	}, true
}

// Snapshot is a type-erased view of a controller's state.
type Snapshot struct {
	Screen      string            `json:"screen"`
	Title       string            `json:"title"`
	Page        int               `json:"page"`
	PageSize    int               `json:"page_size"`
	Search      string            `json:"search"`
	Filters     map[string]string `json:"filters"`
	Count       int               `json:"count"`
	TotalPages  int               `json:"total_pages"`
	PageNumbers []int             `json:"page_numbers"`
	HasPrevious bool              `json:"has_previous"`
	HasNext     bool              `json:"has_next"`
	Loaded      bool              `json:"loaded"`
	Columns     []string          `json:"columns,omitempty"`
	Rows        [][]string        `json:"rows,omitempty"`
	Results     any               `json:"results"`
}

func (c *Controller[T]) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := TotalPages(c.count, c.query.PageSize)
	q := c.query.Clone()
	results := slices.Clone(c.results)

	s := Snapshot{
		Screen:      c.cfg.Name,
		Title:       c.cfg.Title,
		Page:        q.Page,
		PageSize:    q.PageSize,
		Search:      q.Search,
		Filters:     q.Filters,
		Count:       c.count,
		TotalPages:  total,
		PageNumbers: PageNumbers(q.Page, total, c.cfg.MaxVisible),
		HasPrevious: q.Page > 1,
		HasNext:     q.Page < total,
		Loaded:      c.loaded,
		Columns:     c.cfg.Columns,
		Results:     results,
	}
	for _, item := range results {
		if row, ok := any(item).(Tabular); ok {
			s.Rows = append(s.Rows, row.Cells())
		}
	}
	return s
}

// Describe summarises which slice of the list s holds.
func (s Snapshot) Describe() string {
	out := fmt.Sprintf("Page %d of %d, %d records", s.Page, max(s.TotalPages, 1), s.Count)
	if s.Search != "" {
		out += fmt.Sprintf(", search %q", s.Search)
	}
	for _, k := range slices.Sorted(maps.Keys(s.Filters)) {
		out += fmt.Sprintf(", %s=%s", k, s.Filters[k])
	}
	return out
}

// Screen is the type-erased controller surface used by the console server
// and the CLI.
type Screen interface {
	Name() string
	Title() string
	Filters() []FilterDef
	Searchable() bool
	SetFilter(ctx context.Context, name, value string) error
	SetFilters(ctx context.Context, values map[string]string) error
	SetSearch(ctx context.Context, term string) error
	GoToPage(ctx context.Context, n int) error
	Refresh(ctx context.Context) error
	Snapshot() Snapshot
}

var _ Screen = (*Controller[struct{}])(nil)
