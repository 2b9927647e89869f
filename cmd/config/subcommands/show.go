package subcommands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tsstech/billingbot/internal/config"
)

var (
	showRaw bool
)

// secretKeys are the settings redacted from the effective-config dump.
var secretKeys = map[string][]string{
	"telegram":  {"token"},
	"smtp":      {"password"},
	"workdrive": {"client_secret", "refresh_token"},
}

// ShowCmd displays the current configuration.
var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	Long: "Display the current configuration.\n\n" +
		"Shows the current billingbot configuration values with secrets redacted. " +
		"By default, shows the effective configuration with defaults applied. " +
		"Use --raw to show the config file as written.",
	Example: `  # Show effective configuration
  billingbot config show

  # Show the config file as written
  billingbot config show --raw`,
	PreRunE: validateShow,
	RunE:    runShow,
}

func init() {
	ShowCmd.Flags().BoolVar(&showRaw, "raw", false, "Show the config file contents verbatim (no defaults)")
}

func validateShow(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if showRaw {
		return showRawConfig()
	}
	return showEffectiveConfig()
}

func showRawConfig() error {
	configPath := config.GetConfigPath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("# No configuration file found")
			fmt.Printf("# Default location: %s\n", configPath)
			return nil
		}
		return fmt.Errorf("failed to read config file; %w", err)
	}

	fmt.Printf("# Configuration file: %s\n", configPath)
	fmt.Println(string(data))
	return nil
}

func showEffectiveConfig() error {
	settings := config.GetAllSettings()
	redactSecrets(settings)

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to format configuration; %w", err)
	}

	fmt.Println("# Effective configuration (with defaults, secrets redacted)")
	fmt.Printf("# Config file: %s\n", config.GetConfigPath())
	fmt.Println(string(data))
	return nil
}

func redactSecrets(settings map[string]any) {
	for section, keys := range secretKeys {
		sub, ok := settings[section].(map[string]any)
		if !ok {
			continue
		}
		for _, key := range keys {
			if v, ok := sub[key].(string); ok && v != "" {
				sub[key] = "<redacted>"
			}
		}
	}
}
