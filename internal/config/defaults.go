package config

import "github.com/spf13/viper"

// Default configuration values.
const (
	DefaultLogLevel = "info"
	DefaultLogFile  = "~/.config/billingbot/billingbot.log"

	DefaultTelegramTokenEnv = "BOT_TOKEN"

	DefaultSMTPPort           = 587
	DefaultSMTPUsername       = "emailapikey"
	DefaultSMTPPasswordEnv    = "EMAIL_PASSWORD"
	DefaultSMTPTimeoutSeconds = 25

	DefaultWorkDriveClientSecretEnv = "ZOHO_CLIENT_SECRET"
	DefaultWorkDriveRefreshTokenEnv = "ZOHO_REFRESH_TOKEN"

	DefaultExcludedEmail = "info@tsst.ai"
)

// setViperDefaults registers all default configuration values with a viper
// instance. Keys without a meaningful default get an empty one registered so
// viper resolves their BILLINGBOT_* environment overrides during Unmarshal.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", DefaultLogFile)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.token_env", DefaultTelegramTokenEnv)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", DefaultSMTPPort)
	v.SetDefault("smtp.username", DefaultSMTPUsername)
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.password_env", DefaultSMTPPasswordEnv)
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.timeout_seconds", DefaultSMTPTimeoutSeconds)

	v.SetDefault("workdrive.client_id", "")
	v.SetDefault("workdrive.client_secret", "")
	v.SetDefault("workdrive.client_secret_env", DefaultWorkDriveClientSecretEnv)
	v.SetDefault("workdrive.refresh_token", "")
	v.SetDefault("workdrive.refresh_token_env", DefaultWorkDriveRefreshTokenEnv)
	v.SetDefault("workdrive.api_domain", "")
	v.SetDefault("workdrive.archive_folder_id", "")

	v.SetDefault("categories.invoice.folder_id", "")
	v.SetDefault("categories.zelle.folder_id", "")
	v.SetDefault("categories.debtor.folder_id", "")

	v.SetDefault("dispatch.excluded_email", DefaultExcludedEmail)
}

// NewDefaultConfig returns a Config populated with defaults only. Credentials
// and folder IDs are left empty for the operator to fill in.
func NewDefaultConfig() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		LogFile:  DefaultLogFile,
		Telegram: TelegramConfig{
			TokenEnv: DefaultTelegramTokenEnv,
		},
		SMTP: SMTPConfig{
			Port:           DefaultSMTPPort,
			Username:       DefaultSMTPUsername,
			PasswordEnv:    DefaultSMTPPasswordEnv,
			TimeoutSeconds: DefaultSMTPTimeoutSeconds,
		},
		WorkDrive: WorkDriveConfig{
			ClientSecretEnv: DefaultWorkDriveClientSecretEnv,
			RefreshTokenEnv: DefaultWorkDriveRefreshTokenEnv,
		},
		Dispatch: DispatchConfig{
			ExcludedEmail: DefaultExcludedEmail,
		},
	}
}
