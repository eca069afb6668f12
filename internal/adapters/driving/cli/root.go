// Package cli implements the weave command-line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/weave-nn/weave/internal/core/ports/driving"
	"github.com/weave-nn/weave/internal/logger"
)

// Injected driving ports. Set by Inject before Execute.
var (
	memoryService   driving.MemoryService
	searchService   driving.SearchService
	settingsService driving.SettingsService
)

// errNotWired is returned when a command runs before services are injected.
var errNotWired = errors.New("cli: services not initialised")

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "weave",
	Short: "Weave - local semantic memory engine",
	Long: `Weave chunks content by strategy, embeds it, and serves hybrid
keyword + semantic search over the result.

Index content with 'weave index', query it with 'weave search'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Inject wires the driving ports the commands run against.
func Inject(memory driving.MemoryService, search driving.SearchService, settings driving.SettingsService) {
	memoryService = memory
	searchService = search
	settingsService = settings
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under the given context, so
// signal cancellation reaches long-running commands like mcp.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
