package controller

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/popcorn/tmdb"
)

const (
	// DefaultDebounce is the quiet period after the last keystroke before a search runs
	DefaultDebounce = 500 * time.Millisecond
	// DefaultPrefetchThreshold is how close to the end of the list an item must be
	// to trigger loading the next page
	DefaultPrefetchThreshold = 5
)

// Mode is the list's data source
type Mode int

const (
	ModeBrowse Mode = iota
	ModeSearch
)

func (m Mode) String() string {
	if m == ModeSearch {
		return "search"
	}
	return "browse"
}

// ListState is a snapshot of the list controller
type ListState struct {
	Items      []tmdb.Movie
	Page       int
	TotalPages int
	Mode       Mode
	// Query is the raw search text as typed
	Query   string
	Loading bool
	// Pending is true while a debounced evaluation has not run yet
	Pending bool
	Error   string
}

// ListOption configures a List
type ListOption func(*List)

// WithDebounce sets the search debounce window
func WithDebounce(d time.Duration) ListOption {
	return func(c *List) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// WithPrefetchThreshold sets how many items from the end trigger the next page
func WithPrefetchThreshold(n int) ListOption {
	return func(c *List) {
		if n > 0 {
			c.threshold = n
		}
	}
}

// List drives the popular/search movie list with pagination and debounced search
type List struct {
	catalog   tmdb.API
	favorites Favorites
	logger    zerolog.Logger
	debounce  time.Duration
	threshold int

	ctx    context.Context
	cancel context.CancelFunc
	events *broadcaster[ListState]

	mu          sync.Mutex
	state       ListState
	activeQuery string
	generation  uint64
	closed      bool

	// debounce bookkeeping
	timer      *time.Timer
	timerSeq   uint64
	evaluating bool
	deferred   bool
	lastQuery  *string
}

// NewList creates a list controller in browse mode. Nothing is fetched until
// LoadBrowse is called.
func NewList(catalog tmdb.API, favorites Favorites, logger zerolog.Logger, opts ...ListOption) *List {
	ctx, cancel := context.WithCancel(context.Background())
	c := &List{
		catalog:   catalog,
		favorites: favorites,
		logger:    logger.With().Str("component", "list").Logger(),
		debounce:  DefaultDebounce,
		threshold: DefaultPrefetchThreshold,
		ctx:       ctx,
		cancel:    cancel,
		events:    newBroadcaster[ListState](),
		state: ListState{
			Page:       1,
			TotalPages: 1,
			Mode:       ModeBrowse,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current snapshot
func (c *List) State() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe returns a channel receiving the latest snapshot after every change.
// The channel starts with the current snapshot and is closed by Close.
func (c *List) Subscribe() (<-chan ListState, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events.subscribe(c.state)
}

// SetSearchText records the typed query and restarts the debounce window. When
// the window elapses the query is evaluated: blank text reloads popular movies,
// anything else runs a search.
func (c *List) SetSearchText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.state.Query = text
	c.deferred = false
	c.timerSeq++
	seq := c.timerSeq
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() { c.fireDebounce(seq) })
	c.publishLocked()
}

func (c *List) fireDebounce(seq uint64) {
	c.mu.Lock()
	if c.closed || seq != c.timerSeq {
		c.mu.Unlock()
		return
	}
	c.timer = nil

	text := c.state.Query
	if c.lastQuery != nil && *c.lastQuery == text {
		c.logger.Debug().Str("query", text).Msg("Query unchanged, skipping evaluation")
		c.publishLocked()
		c.mu.Unlock()
		return
	}
	c.lastQuery = &text
	c.evaluating = true
	c.mu.Unlock()

	c.evaluate(c.ctx, text)
}

// evaluate runs the fetch for a debounced query. If another fetch holds the
// in-flight slot the evaluation is deferred until it completes.
func (c *List) evaluate(ctx context.Context, text string) {
	for {
		var started bool
		if strings.TrimSpace(text) == "" {
			started = c.loadBrowse(ctx, true)
		} else {
			started = c.runSearch(ctx)
		}
		if started {
			return
		}

		c.mu.Lock()
		if c.closed {
			c.evaluating = false
			c.mu.Unlock()
			return
		}
		if c.state.Loading {
			c.logger.Debug().Str("query", text).Msg("Fetch in flight, deferring search")
			c.evaluating = false
			c.deferred = true
			c.publishLocked()
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

func (c *List) runDeferred() {
	c.mu.Lock()
	text := c.state.Query
	c.lastQuery = &text
	c.mu.Unlock()

	c.evaluate(c.ctx, text)
}

// LoadBrowse fetches the current page of popular movies and appends it. With
// refresh set the list is reset to page 1 first. It is a no-op while another
// fetch is in flight.
func (c *List) LoadBrowse(ctx context.Context, refresh bool) {
	c.loadBrowse(ctx, refresh)
}

func (c *List) loadBrowse(ctx context.Context, refresh bool) bool {
	c.mu.Lock()
	gen, ok := c.beginLocked()
	if !ok {
		c.mu.Unlock()
		return false
	}
	if refresh {
		c.state.Page = 1
		c.state.Items = nil
	}
	c.state.Mode = ModeBrowse
	c.activeQuery = ""
	page := max(c.state.Page, 1)
	c.publishLocked()
	c.mu.Unlock()
	defer c.release(gen)

	resp, err := c.fetchPage(ctx, ModeBrowse, "", page)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		return true
	}
	if err != nil {
		c.logger.Error().Err(err).Int("page", page).Msg("Error fetching popular movies")
		c.state.Error = err.Error()
	} else if refresh {
		c.applyLocked(resp, page, nil)
	} else {
		c.applyLocked(resp, page, c.state.Items)
	}
	return true
}

// RunSearch replaces the list with the first page of results for the current
// query. A blank query falls back to reloading popular movies.
func (c *List) RunSearch(ctx context.Context) {
	c.runSearch(ctx)
}

func (c *List) runSearch(ctx context.Context) bool {
	c.mu.Lock()
	query := strings.TrimSpace(c.state.Query)
	if query == "" {
		c.mu.Unlock()
		return c.loadBrowse(ctx, true)
	}

	gen, ok := c.beginLocked()
	if !ok {
		c.mu.Unlock()
		return false
	}
	c.state.Mode = ModeSearch
	c.state.Page = 1
	c.state.Items = nil
	c.activeQuery = query
	c.publishLocked()
	c.mu.Unlock()
	defer c.release(gen)

	resp, err := c.fetchPage(ctx, ModeSearch, query, 1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		return true
	}
	if err != nil {
		c.logger.Error().Err(err).Str("query", query).Msg("Error searching movies")
		c.state.Error = err.Error()
	} else {
		c.applyLocked(resp, 1, nil)
	}
	return true
}

// LoadMoreIfNeeded fetches the next page when anchor is within the prefetch
// threshold of the end of the list, more pages exist and nothing is in flight.
func (c *List) LoadMoreIfNeeded(ctx context.Context, anchor tmdb.Movie) {
	c.mu.Lock()
	idx := slices.IndexFunc(c.state.Items, func(m tmdb.Movie) bool { return m.ID == anchor.ID })
	if idx < 0 || idx < len(c.state.Items)-c.threshold || c.state.Page >= c.state.TotalPages {
		c.mu.Unlock()
		return
	}

	gen, ok := c.beginLocked()
	if !ok {
		c.mu.Unlock()
		return
	}
	mode, query := c.state.Mode, c.activeQuery
	next := c.state.Page + 1
	c.publishLocked()
	c.mu.Unlock()
	defer c.release(gen)

	resp, err := c.fetchPage(ctx, mode, query, next)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		return
	}
	if err != nil {
		c.logger.Error().Err(err).Int("page", next).Str("mode", mode.String()).Msg("Error loading next page")
		c.state.Error = err.Error()
	} else {
		c.applyLocked(resp, next, c.state.Items)
	}
}

// Refresh reloads the current mode from page 1
func (c *List) Refresh(ctx context.Context) {
	c.mu.Lock()
	mode := c.state.Mode
	c.mu.Unlock()

	if mode == ModeSearch {
		c.RunSearch(ctx)
		return
	}
	c.LoadBrowse(ctx, true)
}

// WaitIdle blocks until no fetch is in flight and no debounced evaluation is
// outstanding, or until ctx is done.
func (c *List) WaitIdle(ctx context.Context) error {
	ch, unsubscribe := c.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-ch:
			if !ok || (!s.Loading && !s.Pending) {
				return nil
			}
		}
	}
}

// IsFavorite reports whether the movie is in the favorites set
func (c *List) IsFavorite(id int) bool {
	return c.favorites.Contains(id)
}

// ToggleFavorite flips the movie's favorite status
func (c *List) ToggleFavorite(ctx context.Context, id int) (bool, error) {
	return c.favorites.Toggle(ctx, id)
}

// Close cancels in-flight requests and pending searches and closes subscriber channels
func (c *List) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.evaluating = false
	c.deferred = false
	c.state.Loading = false
	c.state.Pending = false
	c.mu.Unlock()

	c.cancel()
	c.events.close()
}

func (c *List) fetchPage(ctx context.Context, mode Mode, query string, page int) (*tmdb.PageResponse, error) {
	ctx, cancel := requestContext(ctx, c.ctx)
	defer cancel()

	if mode == ModeSearch {
		return c.catalog.SearchMovies(ctx, query, page)
	}
	return c.catalog.PopularMovies(ctx, page)
}

// beginLocked claims the single in-flight slot. The caller must defer
// release with the returned generation once the slot is claimed.
func (c *List) beginLocked() (uint64, bool) {
	if c.closed {
		return 0, false
	}
	if c.state.Loading {
		c.logger.Debug().Msg("Fetch already in flight, ignoring request")
		return 0, false
	}
	c.generation++
	c.evaluating = false
	c.state.Loading = true
	c.state.Error = ""
	return c.generation, true
}

func (c *List) currentLocked(gen uint64) bool {
	if c.closed || gen != c.generation {
		c.logger.Debug().Uint64("generation", gen).Msg("Discarding stale result")
		return false
	}
	return true
}

// applyLocked appends a fetched page to base. base is clipped so earlier
// snapshots keep their backing array.
func (c *List) applyLocked(resp *tmdb.PageResponse, page int, base []tmdb.Movie) {
	items := append(slices.Clip(base), resp.Results...)
	if items == nil {
		items = []tmdb.Movie{}
	}
	c.state.Items = items
	c.state.Page = page
	c.state.TotalPages = max(resp.TotalPages, page)
}

// release frees the in-flight slot claimed by gen and publishes the settled
// state. Results of a stale generation were already discarded.
func (c *List) release(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		return
	}
	c.finishLocked()
}

func (c *List) finishLocked() {
	c.state.Loading = false
	if c.deferred {
		c.deferred = false
		c.evaluating = true
		go c.runDeferred()
	}
	c.publishLocked()
}

func (c *List) publishLocked() {
	c.state.Pending = c.timer != nil || c.evaluating || c.deferred
	if c.closed {
		return
	}
	c.events.publish(c.state)
}
