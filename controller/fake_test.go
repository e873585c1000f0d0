package controller

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/popcorn/favorites"
	"github.com/s0up4200/popcorn/kv"
	"github.com/s0up4200/popcorn/tmdb"
)

const perPage = 20

// fakeCatalog serves generated pages and configurable details. While gate is
// set every call blocks until it is closed or the context ends.
type fakeCatalog struct {
	mu sync.Mutex

	totalPages int
	popularErr error
	panicking  bool
	titles     map[int]string
	failing    map[int]bool
	gate       chan struct{}

	popularCalls []int
	searchCalls  []string
	detailCalls  []int
}

var _ tmdb.API = (*fakeCatalog)(nil)

func newFakeCatalog(totalPages int) *fakeCatalog {
	return &fakeCatalog{
		totalPages: totalPages,
		titles:     make(map[int]string),
		failing:    make(map[int]bool),
	}
}

func (f *fakeCatalog) wait(ctx context.Context) error {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()

	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return &tmdb.TransportError{Err: ctx.Err()}
	}
}

func (f *fakeCatalog) block() func() {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.gate = nil
			f.mu.Unlock()
			close(gate)
		})
	}
}

func (f *fakeCatalog) setPopularErr(err error) {
	f.mu.Lock()
	f.popularErr = err
	f.mu.Unlock()
}

func (f *fakeCatalog) setPanicking(panicking bool) {
	f.mu.Lock()
	f.panicking = panicking
	f.mu.Unlock()
}

func (f *fakeCatalog) page(page int) *tmdb.PageResponse {
	results := make([]tmdb.Movie, perPage)
	for i := range results {
		id := page*100 + i
		results[i] = tmdb.Movie{ID: id, Title: fmt.Sprintf("Movie %d", id)}
	}
	return &tmdb.PageResponse{
		Page:         page,
		Results:      results,
		TotalPages:   f.totalPages,
		TotalResults: f.totalPages * perPage,
	}
}

func (f *fakeCatalog) PopularMovies(ctx context.Context, page int) (*tmdb.PageResponse, error) {
	f.mu.Lock()
	f.popularCalls = append(f.popularCalls, page)
	popularErr, panicking := f.popularErr, f.panicking
	f.mu.Unlock()

	if panicking {
		panic("popular movies exploded")
	}

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if popularErr != nil {
		return nil, popularErr
	}
	return f.page(page), nil
}

func (f *fakeCatalog) SearchMovies(ctx context.Context, query string, page int) (*tmdb.PageResponse, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, query)
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.page(page), nil
}

func (f *fakeCatalog) MovieDetail(ctx context.Context, id int) (*tmdb.MovieDetail, error) {
	f.mu.Lock()
	f.detailCalls = append(f.detailCalls, id)
	title, ok := f.titles[id]
	failing := f.failing[id]
	panicking := f.panicking
	f.mu.Unlock()

	if panicking {
		panic("movie detail exploded")
	}

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if failing {
		return nil, &tmdb.APIError{StatusCode: 500}
	}
	if !ok {
		return nil, &tmdb.APIError{StatusCode: 404}
	}
	return &tmdb.MovieDetail{ID: id, Title: title, Genres: []tmdb.Genre{{ID: 18, Name: "Drama"}}}, nil
}

func (f *fakeCatalog) calls() (popular []int, search []string, detail []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.popularCalls...),
		append([]string(nil), f.searchCalls...),
		append([]int(nil), f.detailCalls...)
}

func newFavorites(t *testing.T) *favorites.Store {
	t.Helper()
	store, err := kv.NewFileStore(filepath.Join(t.TempDir(), "favorites.json"))
	require.NoError(t, err)
	return favorites.New(context.Background(), store, zerolog.Nop())
}

var errBadJSON = &tmdb.DecodeError{Err: errors.New("unexpected end of JSON input")}
