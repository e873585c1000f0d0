package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// popularCmd represents the popular command
var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List popular movies",
	Args:  cobra.NoArgs,
	RunE:  runPopular,
}

func init() {
	addListFlags(popularCmd)
	rootCmd.AddCommand(popularCmd)
}

func runPopular(cmd *cobra.Command, args []string) error {
	if pages < 1 {
		return fmt.Errorf("--pages must be at least 1")
	}

	ctx := cmd.Context()
	list := newListController()
	defer list.Close()

	list.LoadBrowse(ctx, false)
	return printMovies(cmd, loadPages(ctx, list, pages))
}
