package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/wbwatch/am"
)

// loadConfig loads configuration honoring the --config flag
func loadConfig(cmd *cobra.Command) (*am.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return am.Load(path)
}
