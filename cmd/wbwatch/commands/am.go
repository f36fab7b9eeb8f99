package commands

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/errors"
	"github.com/teranos/wbwatch/sym"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: sym.AM + " Manage wbwatch configuration",
	Long: sym.AM + ` am - Manage wbwatch configuration ("I am")

Display, validate and create wbwatch configuration.

Configuration sources (in order of precedence):
1. Environment variables (WBWATCH_* prefix, WB_DISCORD_WEBHOOK_URL)
2. Project config (./wbwatch.toml), or the file given with --config
3. User config (~/.wbwatch/wbwatch.toml)
4. Default values

Examples:
  wbwatch am show                    # Show current configuration
  wbwatch am show --format json      # Show configuration in JSON format
  wbwatch am validate                # Validate current configuration
  wbwatch am init                    # Write a starter ./wbwatch.toml`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective configuration from all sources, with secrets masked",
	RunE:  runAmShow,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long: `Validate that the current configuration is usable for a run.

Keys present in a config file that wbwatch does not know are reported as
warnings; they are usually typos and are otherwise silently ignored.`,
	RunE: runAmValidate,
}

var amInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter config file",
	Long:  "Write the default configuration to path (default ./wbwatch.toml). An existing file is kept as .back1",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAmInit,
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	data, err := renderConfig(cfg.Redacted(), configFormat)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), data)
	return nil
}

// renderConfig encodes cfg for display
func renderConfig(cfg am.Config, format string) (string, error) {
	switch format {
	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return "", errors.Wrap(err, "failed to marshal config to TOML")
		}
		return "# wbwatch configuration\n" + string(data), nil

	case "json", "yaml":
		m, err := cfg.ToMap()
		if err != nil {
			return "", err
		}
		if format == "json" {
			data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(m, "", "  ")
			if err != nil {
				return "", errors.Wrap(err, "failed to marshal config to JSON")
			}
			return string(data) + "\n", nil
		}
		data, err := yaml.Marshal(m)
		if err != nil {
			return "", errors.Wrap(err, "failed to marshal config to YAML")
		}
		return "# wbwatch configuration\n" + string(data), nil
	}
	return "", errors.Newf("unsupported format: %s (supported: toml, json, yaml)", format)
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	files, err := am.Sources(path)
	if err != nil {
		return err
	}
	for _, f := range files {
		unknown, err := am.UnknownKeys(f)
		if err != nil {
			return err
		}
		for _, k := range unknown {
			pterm.Warning.Printfln("%s: unknown key %q", f, k)
		}
	}

	cfg, err := am.Load(path)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		for _, hint := range errors.GetAllHints(err) {
			pterm.Info.Println(hint)
		}
		return errors.Wrap(err, "configuration validation failed")
	}

	if len(files) == 0 {
		pterm.Info.Println("No config file found, using defaults")
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := am.DefaultConfigName
	if len(args) == 1 {
		path = args[0]
	}
	if err := am.WriteDefault(path); err != nil {
		return err
	}
	pterm.Success.Printfln("Wrote %s", path)
	pterm.Info.Println("Set webhook.url (or WB_DISCORD_WEBHOOK_URL) before the first run")
	return nil
}
