package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func validConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			APIKey:          "valid-api-key",
			BaseURL:         "https://api.themoviedb.org/3",
			RequestTimeout:  30 * time.Second,
			ResourceTimeout: 60 * time.Second,
		},
		List:      ListConfig{Debounce: 500 * time.Millisecond, PrefetchThreshold: 5},
		Favorites: FavoritesConfig{Concurrency: 4},
		Storage:   StorageConfig{Driver: "file", Path: "/tmp/favorites.json"},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
tmdb:
  api_key: abc123
  request_timeout: 5s
list:
  debounce: 250ms
storage:
  driver: sqlite
  path: /var/lib/popcorn/state.db
filters:
  scifi: hasGenre(878)
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.TMDB.APIKey)
	assert.Equal(t, 5*time.Second, cfg.TMDB.RequestTimeout)
	assert.Equal(t, 60*time.Second, cfg.TMDB.ResourceTimeout)
	assert.True(t, cfg.TMDB.WaitForConnectivity)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.List.Debounce)
	assert.Equal(t, 5, cfg.List.PrefetchThreshold)
	assert.Equal(t, 4, cfg.Favorites.Concurrency)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/popcorn/state.db", cfg.Storage.Path)
	assert.Equal(t, "hasGenre(878)", cfg.Filters["scifi"])
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, path, cfg.File)
}

func TestLoadEnvOnly(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("POPCORN_TMDB_API_KEY", "from-env")
	t.Setenv("POPCORN_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.TMDB.APIKey)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(home, ".popcorn", "favorites.json"), cfg.Storage.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.List.Debounce)
	assert.Empty(t, cfg.File)
}

func TestLoadFindsYmlInHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".popcorn")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("tmdb:\n  api_key: from-yml\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-yml", cfg.TMDB.APIKey)
	assert.Equal(t, path, cfg.File)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "tmdb:\n  api_key: from-file\n")
	t.Setenv("POPCORN_TMDB_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.TMDB.APIKey)
}

func TestLoadErrors(t *testing.T) {
	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("placeholder key", func(t *testing.T) {
		_, err := Load(writeConfig(t, "tmdb:\n  api_key: your-api-key-here\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tmdb.api_key")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "tmdb: [\n"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing api key", func(c *Config) { c.TMDB.APIKey = "" }, "tmdb.api_key"},
		{"zero request timeout", func(c *Config) { c.TMDB.RequestTimeout = 0 }, "tmdb.request_timeout"},
		{"negative resource timeout", func(c *Config) { c.TMDB.ResourceTimeout = -time.Second }, "tmdb.resource_timeout"},
		{"negative debounce", func(c *Config) { c.List.Debounce = -time.Millisecond }, "list.debounce"},
		{"zero debounce", func(c *Config) { c.List.Debounce = 0 }, ""},
		{"zero threshold", func(c *Config) { c.List.PrefetchThreshold = 0 }, "list.prefetch_threshold"},
		{"zero concurrency", func(c *Config) { c.Favorites.Concurrency = 0 }, "favorites.concurrency"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "bolt" }, "storage.driver"},
		{"empty filter", func(c *Config) { c.Filters = FilterConfig{"x": " "} }, "filter 'x'"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultStoragePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".popcorn", "favorites.json"), defaultStoragePath("file"))
	assert.Equal(t, filepath.Join(home, ".popcorn", "favorites.db"), defaultStoragePath("sqlite"))
}
