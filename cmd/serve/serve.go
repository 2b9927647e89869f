// Package serve implements the serve command that runs the bot.
package serve

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/tsstech/billingbot/internal/billing"
	"github.com/tsstech/billingbot/internal/bot"
	"github.com/tsstech/billingbot/internal/config"
	"github.com/tsstech/billingbot/internal/dispatch"
	"github.com/tsstech/billingbot/internal/extract"
	"github.com/tsstech/billingbot/internal/mailer"
	"github.com/tsstech/billingbot/internal/version"
	"github.com/tsstech/billingbot/internal/workdrive"
)

// ServeCmd runs the Telegram bot in the foreground.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the billing assistant bot",
	Long: "Run the billing assistant bot.\n\n" +
		"Starts Telegram long polling in the foreground and serves dispatch runs until " +
		"SIGINT or SIGTERM. Configuration is validated up front; missing credentials or " +
		"category folder mappings abort startup. SIGHUP reloads the config file and " +
		"applies allow-list and folder changes to new runs.",
	Example: `  # Run the bot
  billingbot serve`,
	PreRunE: validateServe,
	RunE:    runServe,
}

func validateServe(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.Default()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.ResolveToken())
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram; %w", err)
	}

	storage := workdrive.NewClient(workdrive.Config{
		ClientID:     cfg.WorkDrive.ClientID,
		ClientSecret: cfg.WorkDrive.ResolveClientSecret(),
		RefreshToken: cfg.WorkDrive.ResolveRefreshToken(),
		APIDomain:    cfg.WorkDrive.APIDomain,
	}, workdrive.WithLogger(logger))

	extractor := extract.New(cfg.Dispatch.ExcludedEmail, extract.WithLogger(logger))

	sender := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.ResolvePassword(),
		From:     cfg.SMTP.From,
		Timeout:  cfg.SMTP.Timeout(),
	}, mailer.WithLogger(logger))

	pipeline := dispatch.NewPipeline(dispatch.PipelineConfig{
		Storage:   storage,
		Extractor: extractor,
		Mailer:    sender,
		Logger:    logger,
	})

	b := bot.NewBot(bot.BotConfig{
		API:        api,
		Dispatcher: pipeline,
		Settings:   botSettings(cfg),
		Logger:     logger,
	})

	config.OnReload(func(newCfg *config.Config) {
		b.ApplySettings(botSettings(newCfg))
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := api.GetUpdatesChan(updateConfig)

	logger.Info("bot running",
		"version", version.Get().Version,
		"bot_user", api.Self.UserName,
		"allowed_users", len(cfg.Telegram.AllowedUserIDs),
	)

	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	b.Run(ctx, updates)

	logger.Info("bot stopped")
	return nil
}

// botSettings projects the typed config onto the bot's settings snapshot.
func botSettings(cfg *config.Config) bot.Settings {
	folders := make(map[billing.Category]string, len(billing.Categories()))
	for _, cat := range billing.Categories() {
		if id, ok := cfg.Categories.FolderID(cat); ok {
			folders[cat] = id
		}
	}

	return bot.Settings{
		AllowedUserIDs:  cfg.Telegram.AllowedUserIDs,
		SourceFolders:   folders,
		ArchiveFolderID: cfg.WorkDrive.ArchiveFolderID,
	}
}
