package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/popcorn/tmdb"
)

func testMovie() tmdb.Movie {
	return tmdb.Movie{
		ID:               603,
		Title:            "The Matrix",
		OriginalTitle:    "The Matrix",
		Overview:         "Set in the 22nd century...",
		ReleaseDate:      "1999-03-30",
		VoteAverage:      8.2,
		VoteCount:        24000,
		Popularity:       85.3,
		OriginalLanguage: "en",
		GenreIDs:         []int{28, 878},
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `hasGenre(878)`,
		},
		{
			name:        "empty expression",
			expression:  "   ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `hasGenre(878`,
			wantErr:    true,
		},
		{
			name:       "unknown identifier",
			expression: `Rating > 5`,
			wantErr:    true,
		},
		{
			name:       "non boolean result",
			expression: `VoteAverage + 1`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `hasGenre(28) and Year > 1990 and VoteAverage >= 7.0 and not Adult`,
		},
	}

	compiler := NewCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := compiler.Compile(tt.expression)
			if tt.wantErr {
				require.Error(t, err)
				var compErr *CompilationError
				assert.ErrorAs(t, err, &compErr)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expression, f.Expression())
		})
	}
}

func TestMatch(t *testing.T) {
	movie := testMovie()

	tests := []struct {
		name       string
		expression string
		movie      tmdb.Movie
		expected   bool
	}{
		{"has genre", `hasGenre(878)`, movie, true},
		{"missing genre", `hasGenre(27)`, movie, false},
		{"year comparison", `Year == 1999`, movie, true},
		{"rating threshold", `VoteAverage >= 8.0 and VoteCount > 1000`, movie, true},
		{"contains operator", `Title contains "Matrix"`, movie, true},
		{"contains is case sensitive", `Title contains "matrix"`, movie, false},
		{"containsFold", `containsFold(Title, "MATRIX")`, movie, true},
		{"builtin lower", `lower(Title) startsWith "the"`, movie, true},
		{"released after", `releasedAfter("1999-01-01")`, movie, true},
		{"released before", `releasedBefore("1999-01-01")`, movie, false},
		{"no release date", `releasedAfter("1900-01-01") or releasedBefore("3000-01-01")`, tmdb.Movie{Title: "TBA"}, false},
		{"years ago", `Year >= yearsAgo(5)`, movie, false},
		{"days since", `daysSince(ReleaseDate) > 9000`, movie, true},
		{"days since unknown date", `daysSince(ReleaseDate) == 0`, tmdb.Movie{}, true},
		{"language", `Language == "en"`, movie, true},
		{"genre list", `len(GenreIDs) == 2`, movie, true},
		{"genre list empty", `len(GenreIDs) == 0`, tmdb.Movie{}, true},
		{"movie struct", `Movie.ID == 603`, movie, true},
	}

	compiler := NewCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := compiler.Compile(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f.Match(tt.movie))
		})
	}
}

func TestApply(t *testing.T) {
	movies := []tmdb.Movie{
		{ID: 1, Title: "Alien", VoteAverage: 8.1},
		{ID: 2, Title: "Jaws 4", VoteAverage: 3.1},
		{ID: 3, Title: "Heat", VoteAverage: 7.9},
	}

	f, err := NewCompiler().Compile(`VoteAverage > 5`)
	require.NoError(t, err)

	matched := Apply(f, movies)
	require.Len(t, matched, 2)
	assert.Equal(t, 1, matched[0].ID)
	assert.Equal(t, 3, matched[1].ID)

	assert.Equal(t, movies, Apply(nil, movies))
}

func TestCompilerCache(t *testing.T) {
	compiler := NewCompiler(WithCache(2))

	a, err := compiler.Compile(`Year > 2000`)
	require.NoError(t, err)
	again, err := compiler.Compile(`  Year > 2000  `)
	require.NoError(t, err)
	assert.Same(t, a, again)

	_, err = compiler.Compile(`Year > 2010`)
	require.NoError(t, err)
	_, err = compiler.Compile(`Year > 2020`)
	require.NoError(t, err)
	assert.Equal(t, 2, compiler.Size())

	// the oldest entry was evicted
	evicted, err := compiler.Compile(`Year > 2000`)
	require.NoError(t, err)
	assert.NotSame(t, a, evicted)

	compiler.Clear()
	assert.Equal(t, 0, compiler.Size())
	assert.Equal(t, 0, NewCompiler().Size())
}

func TestLRUCache(t *testing.T) {
	cache := newLRUCache[int](2)
	cache.Put("a", 1)
	cache.Put("b", 2)

	// touch a so b becomes the oldest
	v, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	cache.Put("c", 3)
	_, ok = cache.Get("b")
	assert.False(t, ok)

	cache.Put("a", 10)
	v, _ = cache.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, cache.Size())
}
