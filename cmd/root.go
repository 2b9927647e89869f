package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	configcmd "github.com/tsstech/billingbot/cmd/config"
	"github.com/tsstech/billingbot/cmd/initialize"
	"github.com/tsstech/billingbot/cmd/serve"
	versioncmd "github.com/tsstech/billingbot/cmd/version"
	"github.com/tsstech/billingbot/internal/config"
	"github.com/tsstech/billingbot/internal/logging"
)

// logManager is the global logging manager, created in init() and upgraded
// after config loads
var logManager *logging.Manager

var billingbotCmd = &cobra.Command{
	Use:   "billingbot",
	Short: "A Telegram-Driven Billing Document Dispatcher",
	Long: "BillingBot emails billing documents straight out of Zoho WorkDrive.\n\n" +
		"An authorized operator picks a document category in a Telegram chat and pastes carrier IDs. " +
		"The bot matches each ID against the PDFs in the category's WorkDrive folder, extracts the recipient " +
		"address from the document itself, sends it over SMTP with the category's template, archives the sent " +
		"file, and reports live progress plus a final summary back into the chat.\n\n",
	PersistentPreRunE: runInitialize,
}

func init() {
	logManager = logging.NewManager()

	billingbotCmd.AddCommand(serve.ServeCmd)
	billingbotCmd.AddCommand(initialize.InitializeCmd)
	billingbotCmd.AddCommand(configcmd.ConfigCmd)
	billingbotCmd.AddCommand(versioncmd.VersionCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()

	// Initialize config subsystem
	if err := config.Init(); err != nil {
		return err
	}

	// Upgrade logging after config is available
	logFile := config.GetPath("log_file")
	levelStr := config.GetString("log_level")
	level, ok := logging.ParseLevel(levelStr)
	if !ok {
		level = logging.DefaultLevel
		if levelStr != "" {
			logger.Warn("invalid log level configured, using default", "configured", levelStr, "default", "info")
		}
	}

	if err := logManager.Upgrade(logFile, level); err != nil {
		logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
		// Don't return error - continue with bootstrap mode
	}

	slog.SetDefault(logManager.Logger())

	return nil
}

func Execute() error {
	billingbotCmd.SilenceErrors = true
	billingbotCmd.SilenceUsage = true

	// Ensure logging is properly closed on exit
	defer func() { _ = logManager.Close() }()

	err := billingbotCmd.Execute()

	if err != nil {
		cmd, _, _ := billingbotCmd.Find(os.Args[1:])
		if cmd == nil {
			cmd = billingbotCmd
		}

		fmt.Printf("Error: %v\n", err)
		if !cmd.SilenceUsage {
			fmt.Printf("\n")
			cmd.SetOut(os.Stdout)
			_ = cmd.Usage()
		}

		return err
	}

	return nil
}
