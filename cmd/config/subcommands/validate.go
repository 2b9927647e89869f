package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsstech/billingbot/internal/config"
)

// ValidateCmd validates the current configuration.
var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current configuration",
	Long: "Validate the current configuration.\n\n" +
		"Checks the configuration file for syntax errors and validates that all " +
		"credentials and category folder mappings are present. Returns exit code 0 " +
		"if valid, 1 if invalid.",
	Example: `  # Validate the configuration
  billingbot config validate`,
	PreRunE: validateValidate,
	RunE:    runValidate,
}

func validateValidate(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := config.GetConfigPath()

	if !config.ConfigExistsAt(configPath) {
		fmt.Printf("No configuration file found at %s\n", configPath)
		fmt.Println("Run 'billingbot initialize' to create one.")
		return fmt.Errorf("configuration is missing")
	}

	// Load the configuration (this also validates it)
	_, err := config.LoadFromPath(configPath)
	if err != nil {
		fmt.Println("Configuration validation failed:")
		fmt.Printf("  %v\n", err)
		return fmt.Errorf("configuration is invalid")
	}

	fmt.Printf("Configuration is valid: %s\n", configPath)
	return nil
}
