package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s0up4200/popcorn/controller"
)

var toggleFavorite bool

// detailCmd represents the detail command
var detailCmd = &cobra.Command{
	Use:   "detail ID",
	Short: "Show the full details of a movie",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetail,
}

func init() {
	detailCmd.Flags().BoolVar(&toggleFavorite, "toggle-favorite", false, "add the movie to favorites, or remove it if already present")
	rootCmd.AddCommand(detailCmd)
}

func runDetail(cmd *cobra.Command, args []string) error {
	id, err := parseMovieID(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	dc := controller.NewDetail(catalog, favs, logger)
	defer dc.Close()

	dc.FetchDetail(ctx, id)
	state := dc.State()
	if state.Error != "" {
		return fmt.Errorf("failed to load movie %d: %s", id, state.Error)
	}

	if toggleFavorite {
		added, err := dc.ToggleFavorite(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to update favorites: %w", err)
		}
		logger.Info().Int("movie_id", id).Bool("favorite", added).Msg("Updated favorites")
	}

	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDetail(state.Detail, dc.IsFavorite(id)))
	return nil
}

func parseMovieID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid movie id: %q", s)
	}
	return id, nil
}
