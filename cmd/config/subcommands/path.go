package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsstech/billingbot/internal/config"
)

// PathCmd prints the config file location.
var PathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	Long: "Print the configuration file location.\n\n" +
		"Shows the path of the loaded config file, or the default location " +
		"when no config file exists yet.",
	Example: `  # Print the config file path
  billingbot config path`,
	PreRunE: validatePath,
	RunE:    runPath,
}

func validatePath(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runPath(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), config.GetConfigPath())
	return nil
}
