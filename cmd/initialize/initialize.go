// Package initialize implements the initialize command for first-time setup.
package initialize

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsstech/billingbot/internal/config"
)

// Flag variables for the initialize command.
var (
	initializeForce bool

	initializeSMTPHost        string
	initializeSMTPFrom        string
	initializeAPIDomain       string
	initializeArchiveFolderID string
	initializeInvoiceFolderID string
	initializeZelleFolderID   string
	initializeDebtorFolderID  string
	initializeAllowedUsers    []int64
)

// InitializeCmd writes a starter configuration file.
var InitializeCmd = &cobra.Command{
	Use:   "initialize",
	Short: "Write a starter configuration file",
	Long: "Write a starter configuration file.\n\n" +
		"Creates ~/.config/billingbot/config.yaml populated with defaults and any " +
		"values supplied via flags. Secrets are not written to the file; the generated " +
		"config names the environment variables they are read from instead " +
		"(BOT_TOKEN, EMAIL_PASSWORD, ZOHO_CLIENT_SECRET, ZOHO_REFRESH_TOKEN).",
	Example: `  # Write a starter config with defaults only
  billingbot initialize

  # Pre-fill the WorkDrive folder mapping and allow-list
  billingbot initialize \
      --smtp-host=smtp.zoho.com \
      --smtp-from=billing@example.com \
      --api-domain=https://www.zohoapis.com \
      --invoice-folder-id=abc123 \
      --zelle-folder-id=def456 \
      --debtor-folder-id=ghi789 \
      --archive-folder-id=jkl012 \
      --allowed-user=123456789

  # Overwrite an existing config file
  billingbot initialize --force`,
	PreRunE: validateInitialize,
	RunE:    runInitialize,
}

func init() {
	InitializeCmd.Flags().BoolVar(&initializeForce, "force", false, "Overwrite an existing config file")

	InitializeCmd.Flags().StringVar(&initializeSMTPHost, "smtp-host", "", "SMTP server hostname")
	InitializeCmd.Flags().StringVar(&initializeSMTPFrom, "smtp-from", "", "From address for outgoing mail")
	InitializeCmd.Flags().StringVar(&initializeAPIDomain, "api-domain", "", "Zoho WorkDrive API domain")
	InitializeCmd.Flags().StringVar(&initializeArchiveFolderID, "archive-folder-id", "", "WorkDrive folder sent files are archived under")
	InitializeCmd.Flags().StringVar(&initializeInvoiceFolderID, "invoice-folder-id", "", "WorkDrive source folder for invoices")
	InitializeCmd.Flags().StringVar(&initializeZelleFolderID, "zelle-folder-id", "", "WorkDrive source folder for Zelle receipts")
	InitializeCmd.Flags().StringVar(&initializeDebtorFolderID, "debtor-folder-id", "", "WorkDrive source folder for debtor notices")
	InitializeCmd.Flags().Int64SliceVar(&initializeAllowedUsers, "allowed-user", nil, "Telegram user ID allowed to use the bot (repeatable)")
}

func validateInitialize(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runInitialize(cmd *cobra.Command, args []string) error {
	path := config.DefaultConfigPath()

	if config.ConfigExistsAt(path) && !initializeForce {
		return fmt.Errorf("config file already exists at %s; use --force to overwrite", path)
	}

	cfg := config.NewDefaultConfig()
	cfg.SMTP.Host = initializeSMTPHost
	cfg.SMTP.From = initializeSMTPFrom
	cfg.WorkDrive.APIDomain = initializeAPIDomain
	cfg.WorkDrive.ArchiveFolderID = initializeArchiveFolderID
	cfg.Categories.Invoice.FolderID = initializeInvoiceFolderID
	cfg.Categories.Zelle.FolderID = initializeZelleFolderID
	cfg.Categories.Debtor.FolderID = initializeDebtorFolderID
	cfg.Telegram.AllowedUserIDs = initializeAllowedUsers

	if err := config.Write(&cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
	fmt.Fprintln(cmd.OutOrStdout(), "Fill in the remaining values, export the secret environment variables, then run 'billingbot serve'.")
	return nil
}
