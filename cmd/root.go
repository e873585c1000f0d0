package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/popcorn/config"
	"github.com/s0up4200/popcorn/controller"
	"github.com/s0up4200/popcorn/favorites"
	"github.com/s0up4200/popcorn/filter"
	"github.com/s0up4200/popcorn/kv"
	"github.com/s0up4200/popcorn/tmdb"
)

var (
	cfgFile   string
	cfg       *config.Config
	logger    zerolog.Logger
	catalog   *tmdb.Client
	store     kv.Store
	favs      *favorites.Store
	filters   *filter.Manager
	formatter = NewConsoleFormatter()

	// Command flags
	filterExpr string
	pages      int
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "popcorn",
	Short: "Browse and search TMDb movies and keep a list of favorites",
	Long: `popcorn is a CLI for The Movie Database. It lists popular movies, searches
the catalog, shows movie details and keeps a locally persisted set of favorites.`,
	SilenceUsage:      true,
	PersistentPreRunE: initializeApp,
}

// SetVersion sets the version reported by --version
func SetVersion(version, buildTime string) {
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeApp()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ~/.popcorn/config.yaml)")
}

// initializeApp loads the configuration and wires the catalog client and favorites store
func initializeApp(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || (cmd.HasParent() && cmd.Parent().Name() == "completion") {
		return nil
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	catalog, err = tmdb.NewClient(cfg.TMDB.APIKey, logger,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithImageBaseURL(cfg.TMDB.ImageBaseURL),
		tmdb.WithRequestTimeout(cfg.TMDB.RequestTimeout),
		tmdb.WithResourceTimeout(cfg.TMDB.ResourceTimeout),
		tmdb.WithWaitForConnectivity(cfg.TMDB.WaitForConnectivity),
	)
	if err != nil {
		return fmt.Errorf("failed to create TMDb client: %w", err)
	}

	store, err = kv.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s storage at %s: %w", cfg.Storage.Driver, cfg.Storage.Path, err)
	}
	favs = favorites.New(cmd.Context(), store, logger)

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filters); err != nil {
		return fmt.Errorf("invalid filter in config: %w", err)
	}

	logger.Debug().
		Str("storage", cfg.Storage.Driver).
		Str("path", cfg.Storage.Path).
		Int("favorites", favs.Len()).
		Msg("Initialized")

	return nil
}

func closeApp() {
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func newListController(opts ...controller.ListOption) *controller.List {
	opts = append([]controller.ListOption{
		controller.WithDebounce(cfg.List.Debounce),
		controller.WithPrefetchThreshold(cfg.List.PrefetchThreshold),
	}, opts...)
	return controller.NewList(catalog, favs, logger, opts...)
}

// loadPages scrolls the list to its last item until n pages are loaded, no
// more exist or a scroll loads nothing. The last item may repeat an earlier
// id, in which case the list sees it at its first position and does not page.
func loadPages(ctx context.Context, list *controller.List, n int) controller.ListState {
	for {
		state := list.State()
		if state.Page >= n || state.Page >= state.TotalPages || state.Error != "" || len(state.Items) == 0 {
			return state
		}
		list.LoadMoreIfNeeded(ctx, state.Items[len(state.Items)-1])
		if ctx.Err() != nil {
			return list.State()
		}
		if next := list.State(); next.Page == state.Page && next.Error == "" {
			logger.Debug().Int("page", next.Page).Msg("No further pages loaded")
			return next
		}
	}
}

// printMovies applies the --filter flag and prints the result
func printMovies(cmd *cobra.Command, state controller.ListState) error {
	if state.Error != "" {
		if len(state.Items) == 0 {
			return fmt.Errorf("%s", state.Error)
		}
		logger.Warn().Str("error", state.Error).Msg("Showing partial results")
	}

	f, err := filters.Resolve(filterExpr)
	if err != nil {
		return fmt.Errorf("invalid filter expression: %w", err)
	}

	movies := filter.Apply(f, state.Items)
	if f != nil {
		logger.Debug().Str("filter", f.Expression()).Int("before", len(state.Items)).Int("after", len(movies)).Msg("Applied filter")
	}

	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMovieList(movies, favs.Contains))
	return nil
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or name of a filter from config")
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "number of pages to load")
}
