package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weave-nn/weave/internal/logger"
)

var (
	indexSource         string
	indexClassification string
)

var indexCmd = &cobra.Command{
	Use:   "index [file]",
	Short: "Chunk, embed and index content",
	Long: `Index reads content from a file (or stdin when the argument is "-"
or omitted), chunks it according to its classification, embeds every
chunk and stores the result for search.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexSource, "source", "s", "", "source identifier for the content (required)")
	indexCmd.Flags().StringVarP(&indexClassification, "classification", "c", "", "content classification: conversation, document, preference or procedure")
	indexCmd.MarkFlagRequired("source") //nolint:errcheck
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if memoryService == nil {
		return errNotWired
	}

	content, err := readIndexInput(cmd, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to index.")
		return nil
	}

	logger.Debug("indexing %d bytes for source %s", len(content), indexSource)

	chunks, err := memoryService.ChunkAndIndex(cmd.Context(), content, indexSource, indexClassification)
	if err != nil {
		return fmt.Errorf("indexing content: %w", err)
	}

	if len(chunks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to index.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunk(s) from source %q using the %s strategy.\n",
		len(chunks), indexSource, chunks[0].Strategy)
	return nil
}

// readIndexInput reads the file argument, or stdin for "-" or no argument.
func readIndexInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}
