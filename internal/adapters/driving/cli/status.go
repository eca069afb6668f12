package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report stored and indexed memory counts",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "emit status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if memoryService == nil {
		return errNotWired
	}

	stats, err := memoryService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	out := cmd.OutOrStdout()

	if statusJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Sources:\t%d\n", stats.Sources)
	fmt.Fprintf(w, "Chunks:\t%d\n", stats.Chunks)
	fmt.Fprintf(w, "Embeddings:\t%d\n", stats.Embeddings)
	fmt.Fprintf(w, "Index size:\t%d\n", stats.IndexSize)
	fmt.Fprintf(w, "Model:\t%s\n", stats.ModelVersion)
	fmt.Fprintf(w, "Dimensions:\t%d\n", stats.Dimensions)
	return w.Flush()
}
