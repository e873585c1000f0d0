package filter

import (
	"fmt"
	"testing"

	"github.com/s0up4200/popcorn/tmdb"
)

// generateTestMovies creates test movie data
func generateTestMovies(count int) []tmdb.Movie {
	movies := make([]tmdb.Movie, count)
	for i := range movies {
		movies[i] = tmdb.Movie{
			ID:          i + 1,
			Title:       fmt.Sprintf("Movie %d", i),
			ReleaseDate: fmt.Sprintf("%d-06-15", 1990+i%35),
			VoteAverage: float64(i%100) / 10,
			VoteCount:   i * 7,
			Popularity:  float64(i % 250),
			GenreIDs:    []int{28, 18, 878}[:(i%3)+1],
		}
	}
	return movies
}

func BenchmarkCompile(b *testing.B) {
	expressions := []struct {
		name string
		expr string
	}{
		{"simple", `hasGenre(28)`},
		{"complex", `hasGenre(878) and Year > 2010 and VoteAverage > 7.0`},
	}

	for _, tc := range expressions {
		b.Run(tc.name, func(b *testing.B) {
			compiler := NewCompiler()
			b.ReportAllocs()
			for b.Loop() {
				if _, err := compiler.Compile(tc.expr); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCompileWithCache(b *testing.B) {
	compiler := NewCompiler(WithCache(100))
	expression := `hasGenre(28) and Year > 2015`

	b.ReportAllocs()
	for b.Loop() {
		if _, err := compiler.Compile(expression); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkApply(b *testing.B) {
	movies := generateTestMovies(1000)
	f, err := NewCompiler().Compile(`hasGenre(878) and VoteAverage >= 5`)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		_ = Apply(f, movies)
	}
}

func BenchmarkHasGenre(b *testing.B) {
	hasGenre := hasGenreFunc([]int{28, 12, 878, 53})
	b.ReportAllocs()
	for b.Loop() {
		_ = hasGenre(878)
	}
}
