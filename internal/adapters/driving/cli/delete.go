package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <source-id>",
	Short: "Remove every chunk and embedding belonging to a source",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if memoryService == nil {
		return errNotWired
	}

	sourceID := args[0]
	if err := memoryService.DeleteSource(cmd.Context(), sourceID); err != nil {
		return fmt.Errorf("deleting source %s: %w", sourceID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted source %q.\n", sourceID)
	return nil
}
