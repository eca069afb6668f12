package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and edit the engine configuration",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting with its effective value",
	Args:  cobra.NoArgs,
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the effective value of one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Validate and persist one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsWeightsCmd = &cobra.Command{
	Use:   "weights <keyword> <semantic>",
	Short: "Set both fusion weights in one atomic change",
	Long: `Weights sets the keyword and semantic fusion weights together.
The pair must sum to 1.0; setting them one key at a time would pass
through an invalid intermediate configuration.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsWeights,
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWeightsCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotWired
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, s := range settingsService.List() {
		fmt.Fprintf(w, "%s\t%s\n", s.Key, s.Value)
	}
	return w.Flush()
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotWired
	}

	value, err := settingsService.Get(args[0])
	if err != nil {
		return fmt.Errorf("getting %s: %w", args[0], err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotWired
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
	return nil
}

func runSettingsWeights(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotWired
	}

	keyword, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("parsing keyword weight %q: %w", args[0], err)
	}
	semantic, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("parsing semantic weight %q: %w", args[1], err)
	}

	if err := settingsService.SetWeights(keyword, semantic); err != nil {
		return fmt.Errorf("setting weights: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "keyword = %g, semantic = %g\n", keyword, semantic)
	return nil
}
