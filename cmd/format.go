package cmd

import (
	"fmt"
	"strings"

	"github.com/s0up4200/popcorn/controller"
	"github.com/s0up4200/popcorn/tmdb"
)

const overviewWidth = 76

// ConsoleFormatter provides console output formatting for movies
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// FormatMovieList formats movie summaries as a tree. isFavorite marks favorites with a star.
func (f *ConsoleFormatter) FormatMovieList(movies []tmdb.Movie, isFavorite func(int) bool) string {
	if len(movies) == 0 {
		return "No movies found\n"
	}

	var sb strings.Builder

	sb.WriteString("\nMovie")
	if len(movies) != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " (%d):\n\n", len(movies))

	for i, movie := range movies {
		isLast := i == len(movies)-1
		prefix := "├"
		indent := "│   "
		if isLast {
			prefix = "╰"
			indent = "    "
		}

		fmt.Fprintf(&sb, "%s── %s", prefix, f.title(movie))
		if isFavorite != nil && isFavorite(movie.ID) {
			sb.WriteString(" ★")
		}
		sb.WriteString("\n")

		fmt.Fprintf(&sb, "%sID: %d | Rating: %s (%d votes)\n", indent, movie.ID, movie.FormattedVoteAverage(), movie.VoteCount)
		if date := movie.FormattedReleaseDate(); date != "" {
			fmt.Fprintf(&sb, "%sReleased: %s\n", indent, date)
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatDetail formats a movie's full record
func (f *ConsoleFormatter) FormatDetail(d *tmdb.MovieDetail, favorite bool) string {
	if d == nil {
		return "No movie loaded\n"
	}

	var sb strings.Builder

	title := d.Title
	if year := d.Summary().ReleaseYear(); year > 0 {
		title = fmt.Sprintf("%s (%d)", title, year)
	}
	fmt.Fprintf(&sb, "\n%s", title)
	if favorite {
		sb.WriteString(" ★")
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("━", 50))
	sb.WriteString("\n")

	if d.Tagline != nil && *d.Tagline != "" {
		fmt.Fprintf(&sb, "%q\n\n", *d.Tagline)
	}

	fmt.Fprintf(&sb, "Rating:   %.1f (%d votes)\n", d.VoteAverage, d.VoteCount)
	fmt.Fprintf(&sb, "Released: %s\n", orNA(d.FormattedReleaseDate()))
	fmt.Fprintf(&sb, "Runtime:  %s\n", d.FormattedRuntime())
	if genres := d.GenreNames(); genres != "" {
		fmt.Fprintf(&sb, "Genres:   %s\n", genres)
	}
	if d.Status != "" {
		fmt.Fprintf(&sb, "Status:   %s\n", d.Status)
	}
	if d.Budget > 0 {
		fmt.Fprintf(&sb, "Budget:   $%s\n", thousands(d.Budget))
	}
	if d.Revenue > 0 {
		fmt.Fprintf(&sb, "Revenue:  $%s\n", thousands(d.Revenue))
	}
	if d.IMDbID != nil && *d.IMDbID != "" {
		fmt.Fprintf(&sb, "IMDb:     https://www.imdb.com/title/%s\n", *d.IMDbID)
	}
	if poster := d.PosterURL(); poster != "" {
		fmt.Fprintf(&sb, "Poster:   %s\n", poster)
	}

	if d.Overview != "" {
		sb.WriteString("\n")
		for _, line := range wrap(d.Overview, overviewWidth) {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	if len(d.ProductionCompanies) > 0 {
		sb.WriteString("\nProduction:\n")
		for i, company := range d.ProductionCompanies {
			prefix := "├"
			if i == len(d.ProductionCompanies)-1 {
				prefix = "╰"
			}
			fmt.Fprintf(&sb, "%s── %s\n", prefix, company.Name)
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatListState formats a compact one-screen view of the list controller
func (f *ConsoleFormatter) FormatListState(state controller.ListState, isFavorite func(int) bool) string {
	var sb strings.Builder

	switch state.Mode {
	case controller.ModeSearch:
		fmt.Fprintf(&sb, "Search %q", strings.TrimSpace(state.Query))
	default:
		sb.WriteString("Popular")
	}
	fmt.Fprintf(&sb, " | page %d/%d | %d movies", state.Page, state.TotalPages, len(state.Items))
	if state.Error != "" {
		fmt.Fprintf(&sb, " | error: %s", state.Error)
	}
	sb.WriteString("\n")
	sb.WriteString(f.FormatMovieList(state.Items, isFavorite))
	return sb.String()
}

func (f *ConsoleFormatter) title(m tmdb.Movie) string {
	if year := m.ReleaseYear(); year > 0 {
		return fmt.Sprintf("%s (%d)", m.Title, year)
	}
	return m.Title
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// thousands formats n with comma separators
func thousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return "-" + thousands(-n)
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}

// wrap splits text into lines of at most width characters on word boundaries
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}
