package tmdb

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultImageBaseURL is the prefix poster and backdrop paths are resolved against
const DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"

const releaseDateLayout = "2006-01-02"

// Movie is the summary record returned by list endpoints
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	Adult            bool    `json:"adult"`
	OriginalLanguage string  `json:"original_language"`
	OriginalTitle    string  `json:"original_title"`
	GenreIDs         []int   `json:"genre_ids"`
}

// PosterURL returns the displayable poster URL, or "" when the movie has none
func (m Movie) PosterURL() string {
	return ImageURL(m.PosterPath)
}

// BackdropURL returns the displayable backdrop URL, or "" when the movie has none
func (m Movie) BackdropURL() string {
	return ImageURL(m.BackdropPath)
}

// ReleaseYear returns the year part of the release date, 0 if unknown
func (m Movie) ReleaseYear() int {
	return releaseYear(m.ReleaseDate)
}

// FormattedReleaseDate renders the release date as "Jan 02, 2006".
// Dates that don't parse are returned as-is.
func (m Movie) FormattedReleaseDate() string {
	return formatReleaseDate(m.ReleaseDate)
}

// FormattedVoteAverage renders the vote average with one decimal
func (m Movie) FormattedVoteAverage() string {
	return fmt.Sprintf("%.1f", m.VoteAverage)
}

// PageResponse is one page of a paginated list endpoint
type PageResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// HasMorePages checks if there are more pages to fetch
func (p *PageResponse) HasMorePages() bool {
	return p.Page < p.TotalPages
}

// Genre is a named genre
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ProductionCompany is a company credited on a movie
type ProductionCompany struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	LogoPath      *string `json:"logo_path"`
	OriginCountry string  `json:"origin_country"`
}

// ProductionCountry is an ISO 3166-1 country credited on a movie
type ProductionCountry struct {
	ISO31661 string `json:"iso_3166_1"`
	Name     string `json:"name"`
}

// SpokenLanguage is an ISO 639-1 language spoken in a movie
type SpokenLanguage struct {
	EnglishName string `json:"english_name"`
	ISO6391     string `json:"iso_639_1"`
	Name        string `json:"name"`
}

// MovieDetail is the full record returned by the movie detail endpoint
type MovieDetail struct {
	ID                  int                 `json:"id"`
	Title               string              `json:"title"`
	Overview            string              `json:"overview"`
	PosterPath          *string             `json:"poster_path"`
	BackdropPath        *string             `json:"backdrop_path"`
	ReleaseDate         string              `json:"release_date"`
	VoteAverage         float64             `json:"vote_average"`
	VoteCount           int                 `json:"vote_count"`
	Popularity          float64             `json:"popularity"`
	Adult               bool                `json:"adult"`
	OriginalLanguage    string              `json:"original_language"`
	OriginalTitle       string              `json:"original_title"`
	Genres              []Genre             `json:"genres"`
	Runtime             *int                `json:"runtime"`
	Budget              int64               `json:"budget"`
	Revenue             int64               `json:"revenue"`
	Homepage            *string             `json:"homepage"`
	IMDbID              *string             `json:"imdb_id"`
	Tagline             *string             `json:"tagline"`
	Status              string              `json:"status"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
	ProductionCountries []ProductionCountry `json:"production_countries"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages"`
}

// Summary collapses the detail record into a Movie, keeping only genre ids
func (d *MovieDetail) Summary() Movie {
	genreIDs := make([]int, 0, len(d.Genres))
	for _, g := range d.Genres {
		genreIDs = append(genreIDs, g.ID)
	}

	return Movie{
		ID:               d.ID,
		Title:            d.Title,
		Overview:         d.Overview,
		PosterPath:       d.PosterPath,
		BackdropPath:     d.BackdropPath,
		ReleaseDate:      d.ReleaseDate,
		VoteAverage:      d.VoteAverage,
		VoteCount:        d.VoteCount,
		Popularity:       d.Popularity,
		Adult:            d.Adult,
		OriginalLanguage: d.OriginalLanguage,
		OriginalTitle:    d.OriginalTitle,
		GenreIDs:         genreIDs,
	}
}

// PosterURL returns the displayable poster URL, or "" when the movie has none
func (d *MovieDetail) PosterURL() string {
	return ImageURL(d.PosterPath)
}

// BackdropURL returns the displayable backdrop URL, or "" when the movie has none
func (d *MovieDetail) BackdropURL() string {
	return ImageURL(d.BackdropPath)
}

// FormattedReleaseDate renders the release date as "Jan 02, 2006"
func (d *MovieDetail) FormattedReleaseDate() string {
	return formatReleaseDate(d.ReleaseDate)
}

// FormattedRuntime renders the runtime as "2h 5m", "45m" or "N/A"
func (d *MovieDetail) FormattedRuntime() string {
	if d.Runtime == nil {
		return "N/A"
	}
	hours := *d.Runtime / 60
	minutes := *d.Runtime % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// GenreNames joins the genre names for display
func (d *MovieDetail) GenreNames() string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

// ImageURL resolves an image path fragment against DefaultImageBaseURL.
// A nil or empty path has no image.
func ImageURL(path *string) string {
	return imageURL(DefaultImageBaseURL, path)
}

func imageURL(base string, path *string) string {
	if path == nil || *path == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + *path
}

func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func formatReleaseDate(date string) string {
	t, err := time.Parse(releaseDateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Jan 02, 2006")
}
