package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weave-nn/weave/internal/adapters/driving/mcp"
	"github.com/weave-nn/weave/internal/logger"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the memory engine over the Model Context Protocol",
	Long: `Mcp exposes indexing, search, deletion and status as MCP tools.
By default it serves on stdio for use as an assistant subprocess; pass
--http to serve streamable HTTP instead.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve over HTTP on this address instead of stdio (e.g. :8377)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	if memoryService == nil || searchService == nil {
		return errNotWired
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Memory:   memoryService,
		Search:   searchService,
		Settings: settingsService,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	if mcpHTTPAddr != "" {
		logger.Info("serving MCP over HTTP on %s", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}

	logger.Debug("serving MCP over stdio")
	return server.Run(cmd.Context())
}
