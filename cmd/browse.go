package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/s0up4200/popcorn/controller"
)

const browseHelp = `Type to search (blank line shows popular movies). Commands:
  :more        load the next page
  :refresh     reload the current list
  :fav ID      toggle a favorite
  :quit        exit
`

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive popular/search session",
	Long: `Start an interactive session reading from stdin. Plain lines become the search
text and are debounced like keystrokes; the list is printed whenever it settles.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	list := newListController()

	fmt.Fprint(out, browseHelp)

	updates, unsubscribe := list.Subscribe()
	defer unsubscribe()

	var printed sync.WaitGroup
	printed.Add(1)
	go func() {
		defer printed.Done()
		printStates(out, updates, list.IsFavorite)
	}()

	// fetches block, so they run off the input loop
	var fetches sync.WaitGroup
	run := func(fn func(context.Context)) {
		fetches.Add(1)
		go func() {
			defer fetches.Done()
			fn(ctx)
		}()
	}

	run(func(ctx context.Context) { list.LoadBrowse(ctx, false) })

	err := browseLoop(ctx, cmd.InOrStdin(), out, list, run)

	list.Close()
	fetches.Wait()
	printed.Wait()
	return err
}

func browseLoop(ctx context.Context, in io.Reader, out io.Writer, list *controller.List, run func(func(context.Context))) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			line = l
		}

		verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		switch verb {
		case ":quit", ":q":
			return nil
		case ":more":
			state := list.State()
			if len(state.Items) == 0 {
				continue
			}
			last := state.Items[len(state.Items)-1]
			run(func(ctx context.Context) { list.LoadMoreIfNeeded(ctx, last) })
		case ":refresh":
			run(list.Refresh)
		case ":fav":
			id, err := parseMovieID(strings.TrimSpace(arg))
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			added, err := list.ToggleFavorite(ctx, id)
			if err != nil {
				fmt.Fprintf(out, "failed to toggle favorite: %v\n", err)
				continue
			}
			if added {
				fmt.Fprintf(out, "★ %d added to favorites\n", id)
			} else {
				fmt.Fprintf(out, "☆ %d removed from favorites\n", id)
			}
		case ":help":
			fmt.Fprint(out, browseHelp)
		default:
			list.SetSearchText(line)
		}
	}
}

// printStates prints the list each time it settles until updates is closed
func printStates(out io.Writer, updates <-chan controller.ListState, isFavorite func(int) bool) {
	var last string
	for state := range updates {
		if state.Loading || state.Pending {
			continue
		}
		view := formatter.FormatListState(state, isFavorite)
		if view == last {
			continue
		}
		last = view
		fmt.Fprint(out, view)
	}
}
