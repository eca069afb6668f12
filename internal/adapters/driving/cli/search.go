package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/weave-nn/weave/internal/core/domain"
)

var (
	searchLimit       int
	searchJSON        bool
	searchSourcesOnly bool
	searchSources     []string
	searchAllowDupes  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Hybrid keyword + semantic search over indexed memory",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "emit results as JSON")
	searchCmd.Flags().BoolVar(&searchSourcesOnly, "sources-only", false, "print only the distinct source ids of matching chunks")
	searchCmd.Flags().StringSliceVar(&searchSources, "source", nil, "restrict results to these source ids (repeatable)")
	searchCmd.Flags().BoolVar(&searchAllowDupes, "allow-duplicates", false, "allow multiple results from the same source")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errNotWired
	}

	query := strings.Join(args, " ")
	opts := domain.SearchOptions{
		TopK:                  searchLimit,
		SourceIDs:             searchSources,
		AllowDuplicateSources: searchAllowDupes,
	}

	resp, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	out := cmd.OutOrStdout()

	if resp.Degraded {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: partial results (%s)\n", resp.DegradedReason)
	}

	if searchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if searchSourcesOnly {
		seen := make(map[string]bool)
		for _, r := range resp.Results {
			if !seen[r.SourceID] {
				seen[r.SourceID] = true
				fmt.Fprintln(out, r.SourceID)
			}
		}
		return nil
	}

	if len(resp.Results) == 0 {
		fmt.Fprintln(out, "No results.")
		return nil
	}

	if isTerminal() {
		printResultsTable(out, resp.Results)
	} else {
		printResultsPlain(out, resp.Results)
	}
	return nil
}

// isTerminal reports whether stdout is attached to a TTY.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func printResultsTable(out io.Writer, results []domain.SearchResult) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tSIGNAL\tSOURCE\tCONTENT")
	for _, r := range results {
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n", r.Score, r.Source, r.SourceID, snippet(r.Content, 80))
	}
	w.Flush() //nolint:errcheck
}

func printResultsPlain(out io.Writer, results []domain.SearchResult) {
	for _, r := range results {
		fmt.Fprintf(out, "%.3f\t%s\t%s\t%s\n", r.Score, r.Source, r.SourceID, snippet(r.Content, 200))
	}
}

// snippet collapses whitespace and truncates content for display.
func snippet(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
