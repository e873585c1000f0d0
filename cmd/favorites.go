package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/popcorn/controller"
)

// favoritesCmd represents the favorites command
var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage favorite movies",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite movies sorted by title",
	Args:  cobra.NoArgs,
	RunE:  runFavoritesList,
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add ID",
	Short: "Add a movie to favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseMovieID(args[0])
		if err != nil {
			return err
		}
		if err := favs.Add(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to add favorite: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "★ %d added to favorites\n", id)
		return nil
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a movie from favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseMovieID(args[0])
		if err != nil {
			return err
		}
		if err := favs.Remove(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to remove favorite: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "☆ %d removed from favorites\n", id)
		return nil
	},
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle ID",
	Short: "Add a movie to favorites, or remove it if already present",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseMovieID(args[0])
		if err != nil {
			return err
		}
		added, err := favs.Toggle(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to toggle favorite: %w", err)
		}
		if added {
			fmt.Fprintf(cmd.OutOrStdout(), "★ %d added to favorites\n", id)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "☆ %d removed from favorites\n", id)
		}
		return nil
	},
}

func init() {
	favoritesListCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or name of a filter from config")

	favoritesCmd.AddCommand(favoritesListCmd, favoritesAddCmd, favoritesRemoveCmd, favoritesToggleCmd)
	rootCmd.AddCommand(favoritesCmd)
}

func runFavoritesList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fl := controller.NewFavoritesList(catalog, favs, logger, controller.WithConcurrency(cfg.Favorites.Concurrency))
	defer fl.Close()

	fl.LoadFavorites(ctx)
	state := fl.State()

	return printMovies(cmd, controller.ListState{Items: state.Items, Error: state.Error})
}
