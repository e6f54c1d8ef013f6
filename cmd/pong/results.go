package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pong/internal/platform/tui"
	"github.com/vovakirdan/tui-pong/internal/registry"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

var (
	flagPlain bool
	flagLimit int
	flagClear bool
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show finished matches",
	Long: `Browse match history. With --plain the list is printed instead.

Examples:
  pong results
  pong results --plain --mode classic --limit 5
  pong results --clear`,
	Args: cobra.NoArgs,
	RunE: runResults,
}

func init() {
	resultsCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print a table instead of the interactive view")
	resultsCmd.Flags().IntVar(&flagLimit, "limit", 20, "Rows to print with --plain")
	resultsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all recorded matches")
}

func runResults(_ *cobra.Command, _ []string) error {
	if flagMode != "" && !registry.Exists(flagMode) {
		return fmt.Errorf("unknown mode %q, run 'pong modes' to see available modes", flagMode)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	switch {
	case flagClear:
		if err := store.ClearMatches(); err != nil {
			return err
		}
		fmt.Println("Match history cleared.")
		return nil
	case flagPlain:
		return printResults(store)
	}
	w, h := termSize()
	return tui.RunResults(store, w, h)
}

func printResults(store *storage.Store) error {
	records, err := store.RecentMatches(flagMode, flagLimit)
	if err != nil {
		return err
	}

	title := "all modes"
	if flagMode != "" {
		title = flagMode
	}
	fmt.Printf("Recent matches - %s\n\n", title)

	if len(records) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Play 'pong local' to record the first one!")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  When\tMode\tScores\tWinner\tLength\tEnd")
	fmt.Fprintln(tw, "  ----\t----\t------\t------\t------\t---")
	for _, row := range tui.ResultRows(records) {
		fmt.Fprintln(tw, "  "+strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	stats, err := store.AllModeStats()
	if err != nil {
		return err
	}
	fmt.Println()
	for _, info := range registry.List() {
		s, ok := stats[info.ID]
		if !ok || (flagMode != "" && flagMode != info.ID) {
			continue
		}
		fmt.Printf("%s: %d matches, %d played to the limit, last %s\n",
			info.Title, s.Matches, s.Completed, s.LastPlayed().Format("2006-01-02 15:04"))
	}
	return nil
}
