package tmdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovieDisplayHelpers(t *testing.T) {
	poster := "/poster.jpg"
	movie := Movie{
		Title:       "Alien",
		PosterPath:  &poster,
		ReleaseDate: "1979-05-25",
		VoteAverage: 8.149,
	}

	assert.Equal(t, "https://image.tmdb.org/t/p/w500/poster.jpg", movie.PosterURL())
	assert.Equal(t, "", movie.BackdropURL())
	assert.Equal(t, 1979, movie.ReleaseYear())
	assert.Equal(t, "May 25, 1979", movie.FormattedReleaseDate())
	assert.Equal(t, "8.1", movie.FormattedVoteAverage())
}

func TestReleaseDateEdgeCases(t *testing.T) {
	tests := []struct {
		date      string
		year      int
		formatted string
	}{
		{"", 0, ""},
		{"2024", 2024, "2024"},
		{"soon", 0, "soon"},
		{"2023-13-40", 2023, "2023-13-40"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			m := Movie{ReleaseDate: tt.date}
			assert.Equal(t, tt.year, m.ReleaseYear())
			assert.Equal(t, tt.formatted, m.FormattedReleaseDate())
		})
	}
}

func TestFormattedRuntime(t *testing.T) {
	minutes := func(n int) *int { return &n }

	tests := []struct {
		name    string
		runtime *int
		want    string
	}{
		{"unknown", nil, "N/A"},
		{"under an hour", minutes(45), "45m"},
		{"exact hour", minutes(120), "2h 0m"},
		{"hours and minutes", minutes(125), "2h 5m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &MovieDetail{Runtime: tt.runtime}
			assert.Equal(t, tt.want, d.FormattedRuntime())
		})
	}
}

func TestSummaryWithoutGenres(t *testing.T) {
	d := &MovieDetail{ID: 7, Title: "Untitled"}
	s := d.Summary()
	assert.Equal(t, 7, s.ID)
	assert.NotNil(t, s.GenreIDs)
	assert.Empty(t, s.GenreIDs)
}
