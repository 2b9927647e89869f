// Package config provides the config parent command and subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/tsstech/billingbot/cmd/config/subcommands"
)

// ConfigCmd is the parent command for all config-related subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage billingbot configuration",
	Long: "Manage billingbot configuration.\n\n" +
		"The config command allows you to view and validate the billingbot " +
		"configuration. Configuration is stored in a YAML file located at " +
		"~/.config/billingbot/config.yaml by default.",
}

func init() {
	ConfigCmd.AddCommand(subcommands.ShowCmd)
	ConfigCmd.AddCommand(subcommands.ValidateCmd)
	ConfigCmd.AddCommand(subcommands.PathCmd)
}
