package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/wbwatch/cmd/wbwatch/commands"
	"github.com/teranos/wbwatch/logger"
)

var rootCmd = &cobra.Command{
	Use:   "wbwatch",
	Short: "wbwatch - World Bank GIS opportunities monitor",
	Long: `wbwatch - World Bank GIS opportunities monitor.

Polls World Bank projects, procurement plans, tenders and contract awards
for one borrower country, filters them by GIS keywords, and posts an alert
for every new or changed record. Meant to run from a scheduler once a day.

Available commands:
  run     - Run one monitoring cycle
  am      - Manage configuration ("I am")
  state   - Inspect and edit change-detection state
  version - Show build information

Examples:
  wbwatch run                    # One cycle with ./wbwatch.toml
  wbwatch run --dry-run -v       # Show what would be alerted
  wbwatch am show --format yaml  # Effective configuration
  wbwatch state ls projects      # Alerted project ids and markers`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that print machine-readable output keep the no-op logger
		if cmd.Name() == "show" || cmd.Name() == "version" {
			return nil
		}
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./wbwatch.toml, then ~/.wbwatch/wbwatch.toml)")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (-v for debug)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.StateCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
