// Package filter compiles expr-lang expressions into predicates over movie summaries.
//
// Expressions see the movie's fields directly (Title, Year, VoteAverage, GenreIDs, ...)
// and a handful of helpers:
//
//	VoteAverage >= 7.5 and Year >= yearsAgo(10)
//	hasGenre(878) and not Adult
//	containsFold(Title, "star") or releasedAfter("2020-01-01")
package filter

import (
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/popcorn/tmdb"
)

// Filter is a compiled predicate over movie summaries
type Filter interface {
	// Match reports whether the movie satisfies the filter. Evaluation errors
	// count as no match.
	Match(movie tmdb.Movie) bool

	// Expression returns the source expression
	Expression() string
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache keeps up to size compiled filters keyed by expression
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache[*exprFilter](size)
		}
	}
}

// Compiler turns expressions into filters. It is safe for concurrent use.
type Compiler struct {
	env   map[string]any
	cache *lruCache[*exprFilter]
}

// NewCompiler creates a compiler
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		env: newEnv(tmdb.Movie{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile type-checks expression against the movie environment. The result
// must be boolean and unknown identifiers are rejected.
func (c *Compiler) Compile(expression string) (Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
			Position:   -1,
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.env),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Position:   -1,
			Err:        err,
		}
	}

	f := &exprFilter{expression: expression, program: program}
	if c.cache != nil {
		c.cache.Put(expression, f)
	}
	return f, nil
}

// Clear empties the compiled filter cache
func (c *Compiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *Compiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Apply returns the movies f matches, in order. A nil filter matches everything.
func Apply(f Filter, movies []tmdb.Movie) []tmdb.Movie {
	if f == nil {
		return movies
	}
	matched := make([]tmdb.Movie, 0, len(movies))
	for _, m := range movies {
		if f.Match(m) {
			matched = append(matched, m)
		}
	}
	return matched
}

type exprFilter struct {
	expression string
	program    *vm.Program
}

func (f *exprFilter) Match(movie tmdb.Movie) bool {
	ok, err := f.Eval(movie)
	return err == nil && ok
}

// Eval runs the filter and reports evaluation failures
func (f *exprFilter) Eval(movie tmdb.Movie) (bool, error) {
	result, err := expr.Run(f.program, newEnv(movie))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			MovieTitle: movie.Title,
			Reason:     "failed to run expression",
			Err:        err,
		}
	}
	// AsBool guarantees the type
	return result.(bool), nil
}

func (f *exprFilter) Expression() string {
	return f.expression
}
