// ABOUTME: List controller composing filters, paging, fetching and optimistic mutations
// ABOUTME: Discards superseded fetches by generation and keeps stale data when a refresh fails

package listctl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Page is one fetched window of entities
type Page[E Entity] struct {
	Items []E
	Total int
}

// Fetcher loads a page of entities for a filter set and window. A zero Limit means unpaged.
type Fetcher[E Entity] interface {
	Fetch(ctx context.Context, filters FilterSet, window PageWindow) (Page[E], error)
}

// FetchFunc adapts a function to Fetcher
type FetchFunc[E Entity] func(ctx context.Context, filters FilterSet, window PageWindow) (Page[E], error)

// Fetch implements Fetcher
func (f FetchFunc[E]) Fetch(ctx context.Context, filters FilterSet, window PageWindow) (Page[E], error) {
	return f(ctx, filters, window)
}

// Matcher reports whether an entity satisfies a filter value
type Matcher[E Entity] func(e E, value string) bool

// Snapshot is the last successfully fetched page
type Snapshot[E Entity] struct {
	Items     []E
	Total     int
	FetchedAt time.Time
}

// FetchTicket identifies one fetch request. Only the newest generation may commit.
type FetchTicket struct {
	Generation uint64
	Filters    FilterSet
	Window     PageWindow
}

// FetchResult is the settled form of a ticket
type FetchResult[E Entity] struct {
	Generation uint64
	Page       Page[E]
	Err        error
}

// EmptyKind says which empty-state message a view should show
type EmptyKind int

const (
	EmptyNone EmptyKind = iota
	EmptyNothingYet
	EmptyNoMatches
)

// ViewState is everything a renderer needs to draw the list
type ViewState[E Entity] struct {
	Items          []E
	Total          int
	Page           int
	PageCount      int
	ShowPagination bool
	Loading        bool
	HasData        bool
	// Banner is set when a refresh failed but older data is still shown.
	Banner string
	// Fatal is set when nothing was ever loaded; the caller should offer a retry.
	Fatal      error
	Empty      EmptyKind
	Filters    string
	InProgress map[string]bool
	Notices    []Notice
	FetchedAt  time.Time
}

// Option configures a Controller
type Option[E Entity] func(*Controller[E])

// WithPageSize sets the page size. Zero fetches the whole list in one request.
func WithPageSize[E Entity](size int) Option[E] {
	return func(c *Controller[E]) {
		if size >= 0 {
			c.pageSize = size
		}
	}
}

// WithMatcher registers a predicate for a filter key. Local keys rely on it for
// filtering; server-side keys use it to hide entities a mutation moved out of the view.
func WithMatcher[E Entity](key string, m Matcher[E]) Option[E] {
	return func(c *Controller[E]) {
		c.matchers[key] = m
	}
}

// WithClock overrides time.Now, mostly for tests
func WithClock[E Entity](now func() time.Time) Option[E] {
	return func(c *Controller[E]) {
		c.now = now
	}
}

// WithNoticeTTL sets how long notices stay visible
func WithNoticeTTL[E Entity](ttl time.Duration) Option[E] {
	return func(c *Controller[E]) {
		c.noticeTTL = ttl
	}
}

// WithLogger sets the logger used for fetch and mutation events
func WithLogger[E Entity](logger *slog.Logger) Option[E] {
	return func(c *Controller[E]) {
		c.logger = logger
	}
}

// WithLabel names the list in log lines
func WithLabel[E Entity](label string) Option[E] {
	return func(c *Controller[E]) {
		c.label = label
	}
}

// Controller owns the snapshot, filter state and in-flight mutations of one list
type Controller[E Entity] struct {
	mu sync.Mutex

	label     string
	fetcher   Fetcher[E]
	filters   *FilterState
	pageSize  int
	matchers  map[string]Matcher[E]
	now       func() time.Time
	noticeTTL time.Duration
	logger    *slog.Logger

	snapshot   *Snapshot[E]
	generation uint64
	loading    bool
	lastErr    error
	closed     bool

	notices *Notices
	mutator *Mutator[E]
}

// New creates a controller for fetcher with the filter keys of schema
func New[E Entity](fetcher Fetcher[E], schema *Schema, opts ...Option[E]) *Controller[E] {
	c := &Controller[E]{
		label:    "list",
		fetcher:  fetcher,
		filters:  NewFilterState(schema),
		pageSize: DefaultPageSize,
		matchers: make(map[string]Matcher[E]),
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.notices = NewNotices(c.noticeTTL, c.now)
	c.mutator = NewMutator[E](c.notices)
	return c
}

// Filters returns a copy of the active filters
func (c *Controller[E]) Filters() FilterSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.Values()
}

// FilterString returns the serialized filter state
func (c *Controller[E]) FilterString() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.String()
}

// PageSize returns the configured page size
func (c *Controller[E]) PageSize() int {
	return c.pageSize
}

// Refresh starts a fetch for the current filters and page
func (c *Controller[E]) Refresh() FetchTicket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.begin()
}

// SetFilter updates one key. It returns a ticket and true when the change needs a fetch:
// server-side keys always do, local keys only when they moved the list off a later page.
func (c *Controller[E]) SetFilter(name, value string) (FetchTicket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prevPage := c.filters.Page()
	if !c.filters.Set(name, value) {
		return FetchTicket{}, false
	}
	if c.filters.Schema().IsLocal(name) && c.filters.Page() == prevPage && c.snapshot != nil {
		return FetchTicket{}, false
	}
	return c.begin(), true
}

// OnFilterChange replaces the whole filter set and resets to the first page
func (c *Controller[E]) OnFilterChange(filters FilterSet) (FetchTicket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.serverFilters()
	prevPage := c.filters.Page()

	next := filters.Clone()
	delete(next, PageKey)
	c.filters.Replace(next)

	if c.snapshot != nil && before.Equal(c.serverFilters()) && prevPage == 1 {
		return FetchTicket{}, false
	}
	return c.begin(), true
}

// LoadFilters replaces the filter state from a query string, keeping its page
func (c *Controller[E]) LoadFilters(raw string) FetchTicket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Load(raw)
	return c.begin()
}

// ClearFilters drops every filter and refetches
func (c *Controller[E]) ClearFilters() FetchTicket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Clear()
	return c.begin()
}

// OnPageChange moves to page and starts the fetch for its window
func (c *Controller[E]) OnPageChange(page int) (FetchTicket, error) {
	if page < 1 {
		return FetchTicket{}, fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidArgument, page)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pageSize <= 0 && page > 1 {
		return FetchTicket{}, fmt.Errorf("%w: %s is not paged", ErrInvalidArgument, c.label)
	}
	c.filters.Set(PageKey, fmt.Sprint(page))
	return c.begin(), nil
}

// begin bumps the generation so any older in-flight fetch is ignored on arrival
func (c *Controller[E]) begin() FetchTicket {
	c.generation++
	c.loading = true

	// an unpaged list has a single page, whatever a saved filter string says
	if c.pageSize <= 0 {
		c.filters.Set(PageKey, "")
	}

	window := PageWindow{}
	if c.pageSize > 0 {
		// page is always >= 1 and pageSize > 0 here
		window, _ = Window(c.filters.Page(), c.pageSize)
	}
	return FetchTicket{
		Generation: c.generation,
		Filters:    c.serverFilters(),
		Window:     window,
	}
}

// serverFilters returns the filters sent to the backend: no local keys, no page
func (c *Controller[E]) serverFilters() FilterSet {
	out := FilterSet{}
	schema := c.filters.Schema()
	for k, v := range c.filters.Values() {
		if k == PageKey || schema.IsLocal(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// Load performs the network call for t. It does not touch controller state and may
// run on any goroutine.
func (c *Controller[E]) Load(ctx context.Context, t FetchTicket) FetchResult[E] {
	page, err := c.fetcher.Fetch(ctx, t.Filters.Clone(), t.Window)
	if err == nil && page.Total < len(page.Items) {
		page.Total = len(page.Items)
	}
	return FetchResult[E]{Generation: t.Generation, Page: page, Err: err}
}

// Apply commits a fetch result. Results from superseded generations are dropped and
// Apply returns false.
func (c *Controller[E]) Apply(r FetchResult[E]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || r.Generation != c.generation {
		c.logger.Debug("Discarding stale fetch", "list", c.label, "generation", r.Generation, "current", c.generation)
		return false
	}
	c.loading = false

	if r.Err != nil {
		c.lastErr = r.Err
		if c.snapshot != nil {
			c.logger.Warn("Refresh failed, keeping stale data", "list", c.label, "error", r.Err)
		} else {
			c.logger.Error("Initial load failed", "list", c.label, "error", r.Err)
		}
		return true
	}

	items := make([]E, len(r.Page.Items))
	copy(items, r.Page.Items)
	c.snapshot = &Snapshot[E]{
		Items:     c.mutator.Rebase(items),
		Total:     r.Page.Total,
		FetchedAt: c.now(),
	}
	c.lastErr = nil
	c.logger.Debug("List refreshed", "list", c.label, "items", len(items), "total", r.Page.Total)
	return true
}

// Reload fetches synchronously and applies the result
func (c *Controller[E]) Reload(ctx context.Context) error {
	r := c.Load(ctx, c.Refresh())
	c.Apply(r)
	return r.Err
}

// Close invalidates in-flight fetches. Later results are discarded.
func (c *Controller[E]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.generation++
	c.loading = false
}

// Snapshot returns a copy of the last-known-good snapshot, or nil before the first load
func (c *Controller[E]) Snapshot() *Snapshot[E] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return nil
	}
	items := make([]E, len(c.snapshot.Items))
	copy(items, c.snapshot.Items)
	return &Snapshot[E]{Items: items, Total: c.snapshot.Total, FetchedAt: c.snapshot.FetchedAt}
}

// Mutate applies intent to id locally and returns the pending mutation to perform
func (c *Controller[E]) Mutate(id string, intent Intent[E]) (*Pending[E], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}
	items, p, err := c.mutator.Begin(c.snapshot.Items, id, intent)
	if err != nil {
		return nil, err
	}
	c.snapshot.Items = items
	return p, nil
}

// Perform runs the backend call of p. It does not touch controller state.
func (c *Controller[E]) Perform(ctx context.Context, p *Pending[E]) MutationResult[E] {
	if p.Intent.Call == nil {
		return MutationResult[E]{Pending: p}
	}
	updated, err := p.Intent.Call(ctx, p.ID)
	return MutationResult[E]{Pending: p, Updated: updated, Err: err}
}

// SettleMutation commits or reverts a performed mutation
func (c *Controller[E]) SettleMutation(r MutationResult[E]) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	var items []E
	if c.snapshot != nil {
		items = c.snapshot.Items
	}
	items, out := c.mutator.Settle(items, r.Pending, r.Updated, r.Err)
	if c.snapshot != nil {
		c.snapshot.Items = items
		if out.State == StateCommitted && r.Pending.Intent.Remove && r.Pending.present && c.snapshot.Total > 0 {
			c.snapshot.Total--
		}
	}

	switch {
	case out.State == StateCommitted:
		c.logger.Info("Mutation committed", "list", c.label, "id", out.ID, "op", r.Pending.Intent.Label)
	case out.Conflict:
		c.logger.Info("Mutation already pending", "list", c.label, "id", out.ID, "op", r.Pending.Intent.Label)
	default:
		c.logger.Warn("Mutation reverted", "list", c.label, "id", out.ID, "op", r.Pending.Intent.Label, "error", out.Err)
	}
	return out
}

// MutateSync runs a whole mutation on the calling goroutine
func (c *Controller[E]) MutateSync(ctx context.Context, id string, intent Intent[E]) (Outcome, error) {
	p, err := c.Mutate(id, intent)
	if err != nil {
		return Outcome{ID: id}, err
	}
	return c.SettleMutation(c.Perform(ctx, p)), nil
}

// Busy reports whether id has a mutation in flight
func (c *Controller[E]) Busy(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mutator.Busy(id)
}

// DismissNotice removes a notice before it expires
func (c *Controller[E]) DismissNotice(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices.Dismiss(id)
}

// DismissNotices removes all notices
func (c *Controller[E]) DismissNotices() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices.DismissAll()
}

// View derives the renderable state from the snapshot. Matchers run here, so local
// filtering never triggers a fetch.
func (c *Controller[E]) View() ViewState[E] {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := ViewState[E]{
		Page:       c.filters.Page(),
		Loading:    c.loading,
		Filters:    c.filters.String(),
		InProgress: make(map[string]bool),
		Notices:    c.notices.Active(),
	}
	for _, id := range c.mutator.InProgress() {
		v.InProgress[id] = true
	}

	if c.snapshot == nil {
		if c.lastErr != nil {
			v.Fatal = c.lastErr
		}
		return v
	}

	v.HasData = true
	v.FetchedAt = c.snapshot.FetchedAt
	if c.lastErr != nil {
		v.Banner = "Unable to refresh: " + c.lastErr.Error()
	}

	filters := c.filters.Values()
	v.Items = make([]E, 0, len(c.snapshot.Items))
	for _, item := range c.snapshot.Items {
		if c.matches(item, filters) {
			v.Items = append(v.Items, item)
		}
	}

	hidden := len(c.snapshot.Items) - len(v.Items) + c.mutator.removedCount()
	if c.isLocalOnly() {
		v.Total = len(v.Items)
	} else {
		v.Total = c.snapshot.Total - hidden
		if v.Total < len(v.Items) {
			v.Total = len(v.Items)
		}
	}

	if c.pageSize > 0 {
		v.PageCount = PageCount(v.Total, c.pageSize)
		v.ShowPagination = ShowControls(v.Total, c.pageSize)
	} else if v.Total > 0 {
		v.PageCount = 1
	}

	if len(v.Items) == 0 {
		if c.filters.Active() {
			v.Empty = EmptyNoMatches
		} else {
			v.Empty = EmptyNothingYet
		}
	}
	return v
}

func (c *Controller[E]) matches(item E, filters FilterSet) bool {
	for key, value := range filters {
		if key == PageKey {
			continue
		}
		m, ok := c.matchers[key]
		if !ok {
			continue
		}
		if !m(item, value) {
			return false
		}
	}
	return true
}

// isLocalOnly reports whether every filter key besides page is client-side
func (c *Controller[E]) isLocalOnly() bool {
	schema := c.filters.Schema()
	for _, name := range schema.Keys() {
		if name != PageKey && !schema.IsLocal(name) {
			return false
		}
	}
	return true
}
