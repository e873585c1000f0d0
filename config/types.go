package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	TMDB      TMDBConfig      `mapstructure:"tmdb"`
	List      ListConfig      `mapstructure:"list"`
	Favorites FavoritesConfig `mapstructure:"favorites"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Filters   FilterConfig    `mapstructure:"filters"`
	Logging   LoggingConfig   `mapstructure:"logging"`

	// File is the config file Load read, empty when only defaults and the
	// environment applied
	File string `mapstructure:"-"`
}

// TMDBConfig holds TMDb API connection details
type TMDBConfig struct {
	APIKey              string        `mapstructure:"api_key"`
	BaseURL             string        `mapstructure:"base_url"`
	ImageBaseURL        string        `mapstructure:"image_base_url"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	ResourceTimeout     time.Duration `mapstructure:"resource_timeout"`
	WaitForConnectivity bool          `mapstructure:"wait_for_connectivity"`
}

// ListConfig tunes the movie list controller
type ListConfig struct {
	Debounce          time.Duration `mapstructure:"debounce"`
	PrefetchThreshold int           `mapstructure:"prefetch_threshold"`
}

// FavoritesConfig tunes the favorites list controller
type FavoritesConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// StorageConfig selects where favorites are persisted
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// FilterConfig maps filter names to expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
