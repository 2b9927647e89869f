package config

import (
	"os"
	"time"

	"github.com/tsstech/billingbot/internal/billing"
)

// Config is the root configuration structure for the application.
type Config struct {
	LogLevel   string           `yaml:"log_level" mapstructure:"log_level"`
	LogFile    string           `yaml:"log_file" mapstructure:"log_file"`
	Telegram   TelegramConfig   `yaml:"telegram" mapstructure:"telegram"`
	SMTP       SMTPConfig       `yaml:"smtp" mapstructure:"smtp"`
	WorkDrive  WorkDriveConfig  `yaml:"workdrive" mapstructure:"workdrive"`
	Dispatch   DispatchConfig   `yaml:"dispatch" mapstructure:"dispatch"`
	Categories CategoriesConfig `yaml:"categories" mapstructure:"categories"`
}

// TelegramConfig holds the bot transport configuration.
type TelegramConfig struct {
	Token          *string `yaml:"token,omitempty" mapstructure:"token"`
	TokenEnv       string  `yaml:"token_env" mapstructure:"token_env"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids,flow" mapstructure:"allowed_user_ids"`
}

// ResolveToken returns the bot token from config or falls back to the
// configured environment variable.
func (c *TelegramConfig) ResolveToken() string {
	if c.Token != nil && *c.Token != "" {
		return *c.Token
	}
	return os.Getenv(c.TokenEnv)
}

// Allowed reports whether the Telegram user ID is on the allow-list.
func (c *TelegramConfig) Allowed(userID int64) bool {
	for _, id := range c.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// SMTPConfig holds outgoing mail configuration.
type SMTPConfig struct {
	Host           string  `yaml:"host" mapstructure:"host"`
	Port           int     `yaml:"port" mapstructure:"port"`
	Username       string  `yaml:"username" mapstructure:"username"`
	Password       *string `yaml:"password,omitempty" mapstructure:"password"`
	PasswordEnv    string  `yaml:"password_env" mapstructure:"password_env"`
	From           string  `yaml:"from" mapstructure:"from"`
	TimeoutSeconds int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// ResolvePassword returns the SMTP password from config or falls back to the
// configured environment variable.
func (c *SMTPConfig) ResolvePassword() string {
	if c.Password != nil && *c.Password != "" {
		return *c.Password
	}
	return os.Getenv(c.PasswordEnv)
}

// Timeout returns the connection timeout as a duration.
func (c *SMTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// WorkDriveConfig holds the Zoho WorkDrive gateway configuration.
type WorkDriveConfig struct {
	ClientID        string  `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret    *string `yaml:"client_secret,omitempty" mapstructure:"client_secret"`
	ClientSecretEnv string  `yaml:"client_secret_env" mapstructure:"client_secret_env"`
	RefreshToken    *string `yaml:"refresh_token,omitempty" mapstructure:"refresh_token"`
	RefreshTokenEnv string  `yaml:"refresh_token_env" mapstructure:"refresh_token_env"`
	APIDomain       string  `yaml:"api_domain" mapstructure:"api_domain"`
	ArchiveFolderID string  `yaml:"archive_folder_id" mapstructure:"archive_folder_id"`
}

// ResolveClientSecret returns the OAuth client secret from config or from the
// configured environment variable.
func (c *WorkDriveConfig) ResolveClientSecret() string {
	if c.ClientSecret != nil && *c.ClientSecret != "" {
		return *c.ClientSecret
	}
	return os.Getenv(c.ClientSecretEnv)
}

// ResolveRefreshToken returns the OAuth refresh token from config or from the
// configured environment variable.
func (c *WorkDriveConfig) ResolveRefreshToken() string {
	if c.RefreshToken != nil && *c.RefreshToken != "" {
		return *c.RefreshToken
	}
	return os.Getenv(c.RefreshTokenEnv)
}

// DispatchConfig holds dispatch-run tunables.
type DispatchConfig struct {
	// ExcludedEmail is the house address skipped during recipient extraction.
	ExcludedEmail string `yaml:"excluded_email" mapstructure:"excluded_email"`
}

// CategoriesConfig maps each document category to its source folder. Every
// category must have an entry; validation fails fast otherwise.
type CategoriesConfig struct {
	Invoice CategoryConfig `yaml:"invoice" mapstructure:"invoice"`
	Zelle   CategoryConfig `yaml:"zelle" mapstructure:"zelle"`
	Debtor  CategoryConfig `yaml:"debtor" mapstructure:"debtor"`
}

// CategoryConfig holds per-category settings.
type CategoryConfig struct {
	FolderID string `yaml:"folder_id" mapstructure:"folder_id"`
}

// FolderID returns the source folder for a category.
func (c *CategoriesConfig) FolderID(cat billing.Category) (string, bool) {
	switch cat {
	case billing.CategoryInvoice:
		return c.Invoice.FolderID, c.Invoice.FolderID != ""
	case billing.CategoryZelle:
		return c.Zelle.FolderID, c.Zelle.FolderID != ""
	case billing.CategoryDebtor:
		return c.Debtor.FolderID, c.Debtor.FolderID != ""
	}
	return "", false
}
