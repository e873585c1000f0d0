package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/popcorn/controller"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search QUERY...",
	Short: "Search movies by title",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	addListFlags(searchCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if pages < 1 {
		return fmt.Errorf("--pages must be at least 1")
	}
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("search query is empty")
	}

	ctx := cmd.Context()
	list := newListController(controller.WithDebounce(0))
	defer list.Close()

	logger.Info().Str("query", query).Msg("Searching movies")

	list.SetSearchText(query)
	if err := list.WaitIdle(ctx); err != nil {
		return err
	}

	return printMovies(cmd, loadPages(ctx, list, pages))
}
