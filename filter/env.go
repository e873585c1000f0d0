package filter

import (
	"slices"
	"strings"
	"time"

	"github.com/s0up4200/popcorn/tmdb"
)

const dateLayout = "2006-01-02"

// newEnv builds the evaluation environment for one movie. The compiler
// type-checks against the environment of a zero movie, so every key must be
// present with the same type regardless of the movie.
func newEnv(movie tmdb.Movie) map[string]any {
	env := make(map[string]any, 24)

	env["Movie"] = movie
	env["ID"] = movie.ID
	env["Title"] = movie.Title
	env["OriginalTitle"] = movie.OriginalTitle
	env["Overview"] = movie.Overview
	env["ReleaseDate"] = movie.ReleaseDate
	env["Year"] = movie.ReleaseYear()
	env["VoteAverage"] = movie.VoteAverage
	env["VoteCount"] = movie.VoteCount
	env["Popularity"] = movie.Popularity
	env["Adult"] = movie.Adult
	env["Language"] = movie.OriginalLanguage
	env["GenreIDs"] = genreIDs(movie.GenreIDs)

	env["hasGenre"] = hasGenreFunc(movie.GenreIDs)
	env["releasedAfter"] = releasedAfterFunc(movie.ReleaseDate)
	env["releasedBefore"] = releasedBeforeFunc(movie.ReleaseDate)
	env["containsFold"] = func(s, substr string) bool {
		return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
	}
	env["yearsAgo"] = func(n int) int {
		return time.Now().Year() - n
	}
	env["daysSince"] = func(date string) int {
		t, err := time.Parse(dateLayout, date)
		if err != nil {
			return 0
		}
		return int(time.Since(t).Hours() / 24)
	}

	return env
}

func genreIDs(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}

func hasGenreFunc(ids []int) func(int) bool {
	return func(id int) bool {
		return slices.Contains(ids, id)
	}
}

// releasedAfterFunc compares release dates as YYYY-MM-DD strings. Movies with no
// parseable release date never match.
func releasedAfterFunc(releaseDate string) func(string) bool {
	released, err := time.Parse(dateLayout, releaseDate)
	return func(date string) bool {
		t, perr := time.Parse(dateLayout, date)
		return err == nil && perr == nil && released.After(t)
	}
}

func releasedBeforeFunc(releaseDate string) func(string) bool {
	released, err := time.Parse(dateLayout, releaseDate)
	return func(date string) bool {
		t, perr := time.Parse(dateLayout, date)
		return err == nil && perr == nil && released.Before(t)
	}
}
