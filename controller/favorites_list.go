package controller

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/popcorn/tmdb"
)

// DefaultConcurrency bounds the number of detail requests a favorites load runs at once
const DefaultConcurrency = 4

// FavoritesState is a snapshot of the favorites list controller
type FavoritesState struct {
	// Items are the resolved favorites sorted by title
	Items   []tmdb.Movie
	Loading bool
	Error   string
}

// FavoritesListOption configures a FavoritesList
type FavoritesListOption func(*FavoritesList)

// WithConcurrency sets how many detail requests run in parallel
func WithConcurrency(n int) FavoritesListOption {
	return func(c *FavoritesList) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// FavoritesList resolves the favorite ids into movie summaries and reloads
// whenever the favorites set changes.
type FavoritesList struct {
	catalog     tmdb.API
	favorites   Favorites
	logger      zerolog.Logger
	concurrency int

	ctx         context.Context
	cancel      context.CancelFunc
	events      *broadcaster[FavoritesState]
	unsubscribe func()

	// reloadMu guards stopped and wg.Add; the store invokes the subscription
	// callback while holding its own locks, so it must not take mu.
	reloadMu sync.Mutex
	stopped  bool
	wg       sync.WaitGroup

	mu         sync.Mutex
	state      FavoritesState
	generation uint64
	closed     bool
}

// NewFavoritesList creates the controller and subscribes it to favorites changes
func NewFavoritesList(catalog tmdb.API, favorites Favorites, logger zerolog.Logger, opts ...FavoritesListOption) *FavoritesList {
	ctx, cancel := context.WithCancel(context.Background())
	c := &FavoritesList{
		catalog:     catalog,
		favorites:   favorites,
		logger:      logger.With().Str("component", "favorites").Logger(),
		concurrency: DefaultConcurrency,
		ctx:         ctx,
		cancel:      cancel,
		events:      newBroadcaster[FavoritesState](),
		state:       FavoritesState{Items: []tmdb.Movie{}},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.unsubscribe = favorites.Subscribe(func([]int) {
		c.reloadMu.Lock()
		defer c.reloadMu.Unlock()
		if c.stopped {
			return
		}
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.LoadFavorites(c.ctx)
		}()
	})

	return c
}

// State returns the current snapshot
func (c *FavoritesList) State() FavoritesState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe returns a channel receiving the latest snapshot after every change.
// The channel starts with the current snapshot and is closed by Close.
func (c *FavoritesList) Subscribe() (<-chan FavoritesState, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events.subscribe(c.state)
}

// LoadFavorites fetches the detail of every favorite in parallel and publishes
// the successful ones sorted by title. Failed ids are logged and skipped; the
// load only reports an error when nothing could be resolved. When loads overlap
// only the most recently started one publishes.
func (c *FavoritesList) LoadFavorites(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.generation++
	gen := c.generation
	ids := c.favorites.All()

	if len(ids) == 0 {
		c.state = FavoritesState{Items: []tmdb.Movie{}}
		c.events.publish(c.state)
		c.mu.Unlock()
		return
	}

	c.state.Loading = true
	c.state.Error = ""
	c.events.publish(c.state)
	c.mu.Unlock()
	defer c.release(gen)

	movies, err := c.resolve(ctx, ids)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		c.logger.Debug().Uint64("generation", gen).Msg("Discarding superseded favorites load")
		return
	}

	c.state.Items = movies
	if len(movies) == 0 && err != nil {
		c.state.Error = fmt.Sprintf("failed to load favorites: %v", err)
	}
}

// release clears the loading flag set for gen and publishes the result
func (c *FavoritesList) release(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		return
	}
	c.state.Loading = false
	c.events.publish(c.state)
}

// resolve returns the summaries of every id that could be fetched and the first
// failure, if any.
func (c *FavoritesList) resolve(ctx context.Context, ids []int) ([]tmdb.Movie, error) {
	ctx, cancel := requestContext(ctx, c.ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		firstErr error
		failed   int
	)
	results := make([]*tmdb.Movie, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			detail, err := c.catalog.MovieDetail(ctx, id)
			if err != nil {
				c.logger.Warn().Err(err).Int("movie_id", id).Msg("Failed to fetch favorite movie")
				mu.Lock()
				failed++
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return nil // keep loading the rest
			}
			summary := detail.Summary()
			results[i] = &summary
			return nil
		})
	}

	_ = g.Wait()

	movies := make([]tmdb.Movie, 0, len(ids)-failed)
	for _, m := range results {
		if m != nil {
			movies = append(movies, *m)
		}
	}
	slices.SortStableFunc(movies, func(a, b tmdb.Movie) int {
		return strings.Compare(a.Title, b.Title)
	})

	if failed > 0 {
		c.logger.Info().Int("loaded", len(movies)).Int("failed", failed).Msg("Loaded favorites with failures")
	}

	return movies, firstErr
}

// RemoveFavorite removes the movie from the favorites set. The list reloads
// through the store subscription.
func (c *FavoritesList) RemoveFavorite(ctx context.Context, id int) error {
	return c.favorites.Remove(ctx, id)
}

// IsFavorite reports whether the movie is in the favorites set
func (c *FavoritesList) IsFavorite(id int) bool {
	return c.favorites.Contains(id)
}

// Close stops reacting to favorites changes, cancels in-flight loads and
// closes subscriber channels.
func (c *FavoritesList) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.generation++
	c.mu.Unlock()

	c.reloadMu.Lock()
	c.stopped = true
	c.reloadMu.Unlock()

	c.unsubscribe()
	c.cancel()
	c.wg.Wait()
	c.events.close()
}
