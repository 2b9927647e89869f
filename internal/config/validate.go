package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsstech/billingbot/internal/billing"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// Validate checks the configuration for errors. Missing credentials or
// category folder mappings are deployment errors, so they fail here rather
// than mid-run. Returns ValidationErrors if validation fails.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	// Telegram
	if cfg.Telegram.ResolveToken() == "" {
		errs = append(errs, ValidationError{
			Field:   "telegram.token",
			Message: fmt.Sprintf("must be set (or export %s)", cfg.Telegram.TokenEnv),
		})
	}

	// SMTP
	if cfg.SMTP.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "smtp.host",
			Message: "must not be empty",
		})
	}

	if cfg.SMTP.Port < 1 || cfg.SMTP.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "smtp.port",
			Message: fmt.Sprintf("must be between 1 and 65535, got %d", cfg.SMTP.Port),
		})
	}

	if cfg.SMTP.Username == "" {
		errs = append(errs, ValidationError{
			Field:   "smtp.username",
			Message: "must not be empty",
		})
	}

	if cfg.SMTP.From == "" {
		errs = append(errs, ValidationError{
			Field:   "smtp.from",
			Message: "must not be empty",
		})
	}

	if cfg.SMTP.ResolvePassword() == "" {
		errs = append(errs, ValidationError{
			Field:   "smtp.password",
			Message: fmt.Sprintf("must be set (or export %s)", cfg.SMTP.PasswordEnv),
		})
	}

	if cfg.SMTP.TimeoutSeconds < 1 {
		errs = append(errs, ValidationError{
			Field:   "smtp.timeout_seconds",
			Message: fmt.Sprintf("must be at least 1 second, got %d", cfg.SMTP.TimeoutSeconds),
		})
	}

	// WorkDrive
	if cfg.WorkDrive.ClientID == "" {
		errs = append(errs, ValidationError{
			Field:   "workdrive.client_id",
			Message: "must not be empty",
		})
	}

	if cfg.WorkDrive.ResolveClientSecret() == "" {
		errs = append(errs, ValidationError{
			Field:   "workdrive.client_secret",
			Message: fmt.Sprintf("must be set (or export %s)", cfg.WorkDrive.ClientSecretEnv),
		})
	}

	if cfg.WorkDrive.ResolveRefreshToken() == "" {
		errs = append(errs, ValidationError{
			Field:   "workdrive.refresh_token",
			Message: fmt.Sprintf("must be set (or export %s)", cfg.WorkDrive.RefreshTokenEnv),
		})
	}

	if cfg.WorkDrive.APIDomain == "" {
		errs = append(errs, ValidationError{
			Field:   "workdrive.api_domain",
			Message: "must not be empty",
		})
	}

	if cfg.WorkDrive.ArchiveFolderID == "" {
		errs = append(errs, ValidationError{
			Field:   "workdrive.archive_folder_id",
			Message: "must not be empty",
		})
	}

	// Categories: every category needs a source folder.
	for _, cat := range billing.Categories() {
		if _, ok := cfg.Categories.FolderID(cat); !ok {
			errs = append(errs, ValidationError{
				Field:   "categories." + cat.String() + ".folder_id",
				Message: "must not be empty",
			})
		}
	}

	if cfg.Dispatch.ExcludedEmail == "" {
		errs = append(errs, ValidationError{
			Field:   "dispatch.excluded_email",
			Message: "must not be empty",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}
