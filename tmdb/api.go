package tmdb

import (
	"context"
)

// API defines the catalog operations the controllers depend on
type API interface {
	// PopularMovies fetches one page of the popular movies list
	PopularMovies(ctx context.Context, page int) (*PageResponse, error)

	// SearchMovies fetches one page of search results for a non-empty query
	SearchMovies(ctx context.Context, query string, page int) (*PageResponse, error)

	// MovieDetail fetches the full record of a single movie
	MovieDetail(ctx context.Context, id int) (*MovieDetail, error)
}

var _ API = (*Client)(nil)
