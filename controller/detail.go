package controller

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/popcorn/tmdb"
)

// DetailState is a snapshot of the detail controller
type DetailState struct {
	Detail  *tmdb.MovieDetail
	Loading bool
	Error   string
}

// Detail loads a single movie's full record
type Detail struct {
	catalog   tmdb.API
	favorites Favorites
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	events *broadcaster[DetailState]

	mu         sync.Mutex
	state      DetailState
	generation uint64
	closed     bool
}

// NewDetail creates a detail controller
func NewDetail(catalog tmdb.API, favorites Favorites, logger zerolog.Logger) *Detail {
	ctx, cancel := context.WithCancel(context.Background())
	return &Detail{
		catalog:   catalog,
		favorites: favorites,
		logger:    logger.With().Str("component", "detail").Logger(),
		ctx:       ctx,
		cancel:    cancel,
		events:    newBroadcaster[DetailState](),
	}
}

// State returns the current snapshot
func (c *Detail) State() DetailState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe returns a channel receiving the latest snapshot after every change.
// The channel starts with the current snapshot and is closed by Close.
func (c *Detail) Subscribe() (<-chan DetailState, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events.subscribe(c.state)
}

// FetchDetail loads the movie with the given id. It is a no-op while a fetch is
// in flight. On failure the previously loaded detail is kept.
func (c *Detail) FetchDetail(ctx context.Context, id int) {
	c.mu.Lock()
	if c.closed || c.state.Loading {
		c.mu.Unlock()
		return
	}
	c.generation++
	gen := c.generation
	c.state.Loading = true
	c.state.Error = ""
	c.events.publish(c.state)
	c.mu.Unlock()
	defer c.release(gen)

	reqCtx, cancel := requestContext(ctx, c.ctx)
	detail, err := c.catalog.MovieDetail(reqCtx, id)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		return
	}
	if err != nil {
		c.logger.Error().Err(err).Int("movie_id", id).Msg("Error fetching movie detail")
		c.state.Error = err.Error()
	} else {
		c.state.Detail = detail
	}
}

// release clears the loading flag set for gen and publishes the result
func (c *Detail) release(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		return
	}
	c.state.Loading = false
	c.events.publish(c.state)
}

// IsFavorite reports whether the movie is in the favorites set
func (c *Detail) IsFavorite(id int) bool {
	return c.favorites.Contains(id)
}

// ToggleFavorite flips the movie's favorite status and reports whether it is now a favorite
func (c *Detail) ToggleFavorite(ctx context.Context, id int) (bool, error) {
	return c.favorites.Toggle(ctx, id)
}

// Close cancels an in-flight fetch and closes subscriber channels
func (c *Detail) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.generation++
	c.state.Loading = false
	c.mu.Unlock()

	c.cancel()
	c.events.close()
}
