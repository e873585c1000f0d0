package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection to TMDb",
	Long:  `Verify the API key against TMDb and show the active configuration.`,
	Args:  cobra.NoArgs,
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if path := cfg.File; path != "" {
		fmt.Fprintf(out, "Config: %s\n", path)
	} else {
		fmt.Fprintln(out, "Config: environment only")
	}

	fmt.Fprintf(out, "Testing connection to TMDb at %s...\n", cfg.TMDB.BaseURL)
	if err := catalog.TestConnection(cmd.Context()); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	fmt.Fprintln(out, "✓ Connection successful!")

	fmt.Fprintf(out, "\nStorage: %s (%s)\n", cfg.Storage.Driver, cfg.Storage.Path)
	fmt.Fprintf(out, "- Favorites: %d\n", favs.Len())

	if names := filters.Names(); len(names) > 0 {
		fmt.Fprintf(out, "\nConfigured filters:\n")
		for _, name := range names {
			f, _ := filters.Get(name)
			fmt.Fprintf(out, "  • %s: %s\n", name, f.Expression())
		}
	}

	return nil
}
