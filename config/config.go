package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	appDir    = ".popcorn"
	envPrefix = "POPCORN"

	placeholderAPIKey = "your-api-key-here"
)

// Load reads the configuration file, if any, and applies POPCORN_* environment
// overrides. A missing file is only an error when configPath is given.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, appDir))
		}
		v.AddConfigPath("/etc/popcorn/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultStoragePath(cfg.Storage.Driver)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// TMDb defaults
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.image_base_url", "https://image.tmdb.org/t/p/w500")
	v.SetDefault("tmdb.request_timeout", "30s")
	v.SetDefault("tmdb.resource_timeout", "60s")
	v.SetDefault("tmdb.wait_for_connectivity", true)

	v.SetDefault("list.debounce", "500ms")
	v.SetDefault("list.prefetch_threshold", 5)
	v.SetDefault("favorites.concurrency", 4)

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

func defaultStoragePath(driver string) string {
	name := "favorites.json"
	if driver == "sqlite" {
		name = "favorites.db"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, appDir, name)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.TMDB.APIKey == "" || cfg.TMDB.APIKey == placeholderAPIKey {
		return fmt.Errorf("tmdb.api_key must be set to a valid API key (or POPCORN_TMDB_API_KEY)")
	}
	if cfg.TMDB.BaseURL == "" {
		return fmt.Errorf("tmdb.base_url is required")
	}
	if cfg.TMDB.RequestTimeout <= 0 {
		return fmt.Errorf("tmdb.request_timeout must be positive")
	}
	if cfg.TMDB.ResourceTimeout <= 0 {
		return fmt.Errorf("tmdb.resource_timeout must be positive")
	}

	if cfg.List.Debounce < 0 {
		return fmt.Errorf("list.debounce must not be negative")
	}
	if cfg.List.PrefetchThreshold < 1 {
		return fmt.Errorf("list.prefetch_threshold must be at least 1")
	}
	if cfg.Favorites.Concurrency < 1 {
		return fmt.Errorf("favorites.concurrency must be at least 1")
	}

	switch cfg.Storage.Driver {
	case "file", "sqlite":
	default:
		return fmt.Errorf("invalid storage.driver: %s (must be 'file' or 'sqlite')", cfg.Storage.Driver)
	}

	for name, expression := range cfg.Filters {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter '%s' has an empty expression", name)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
