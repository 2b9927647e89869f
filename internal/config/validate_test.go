package config

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// validTestConfig returns a config that passes validation without relying on
// environment variables.
func validTestConfig() *Config {
	token := "bot-token"
	password := "smtp-pass"
	secret := "client-secret"
	refresh := "refresh-token"

	cfg := NewDefaultConfig()
	cfg.Telegram.Token = &token
	cfg.Telegram.AllowedUserIDs = []int64{1001}
	cfg.SMTP.Host = "smtp.zoho.com"
	cfg.SMTP.From = "billing@example.com"
	cfg.SMTP.Password = &password
	cfg.WorkDrive.ClientID = "client-id"
	cfg.WorkDrive.ClientSecret = &secret
	cfg.WorkDrive.RefreshToken = &refresh
	cfg.WorkDrive.APIDomain = "https://www.zohoapis.com"
	cfg.WorkDrive.ArchiveFolderID = "archive-id"
	cfg.Categories.Invoice.FolderID = "inv-id"
	cfg.Categories.Zelle.FolderID = "zel-id"
	cfg.Categories.Debtor.FolderID = "deb-id"
	return &cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validTestConfig()); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_MissingFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "MissingToken",
			mutate:    func(c *Config) { c.Telegram.Token = nil; c.Telegram.TokenEnv = "UNSET_TEST_VAR" },
			wantField: "telegram.token",
		},
		{
			name:      "MissingSMTPHost",
			mutate:    func(c *Config) { c.SMTP.Host = "" },
			wantField: "smtp.host",
		},
		{
			name:      "BadSMTPPort",
			mutate:    func(c *Config) { c.SMTP.Port = 0 },
			wantField: "smtp.port",
		},
		{
			name:      "MissingFrom",
			mutate:    func(c *Config) { c.SMTP.From = "" },
			wantField: "smtp.from",
		},
		{
			name:      "MissingPassword",
			mutate:    func(c *Config) { c.SMTP.Password = nil; c.SMTP.PasswordEnv = "UNSET_TEST_VAR" },
			wantField: "smtp.password",
		},
		{
			name:      "BadTimeout",
			mutate:    func(c *Config) { c.SMTP.TimeoutSeconds = 0 },
			wantField: "smtp.timeout_seconds",
		},
		{
			name:      "MissingClientID",
			mutate:    func(c *Config) { c.WorkDrive.ClientID = "" },
			wantField: "workdrive.client_id",
		},
		{
			name:      "MissingAPIDomain",
			mutate:    func(c *Config) { c.WorkDrive.APIDomain = "" },
			wantField: "workdrive.api_domain",
		},
		{
			name:      "MissingArchiveFolder",
			mutate:    func(c *Config) { c.WorkDrive.ArchiveFolderID = "" },
			wantField: "workdrive.archive_folder_id",
		},
		{
			name:      "MissingInvoiceFolder",
			mutate:    func(c *Config) { c.Categories.Invoice.FolderID = "" },
			wantField: "categories.invoice.folder_id",
		},
		{
			name:      "MissingDebtorFolder",
			mutate:    func(c *Config) { c.Categories.Debtor.FolderID = "" },
			wantField: "categories.debtor.folder_id",
		},
		{
			name:      "MissingExcludedEmail",
			mutate:    func(c *Config) { c.Dispatch.ExcludedEmail = "" },
			wantField: "dispatch.excluded_email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() error = nil, want validation error")
			}

			var ves ValidationErrors
			if !errors.As(err, &ves) {
				t.Fatalf("Validate() error type = %T, want ValidationErrors", err)
			}

			found := false
			for _, ve := range ves {
				if ve.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() errors = %v, want one for field %q", ves, tt.wantField)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validTestConfig()
	cfg.SMTP.Host = ""
	cfg.WorkDrive.ClientID = ""
	cfg.Categories.Zelle.FolderID = ""

	err := Validate(cfg)
	var ves ValidationErrors
	if !errors.As(err, &ves) {
		t.Fatalf("Validate() error type = %T, want ValidationErrors", err)
	}
	if len(ves) != 3 {
		t.Errorf("got %d validation errors, want 3: %v", len(ves), ves)
	}
	if !strings.Contains(ves.Error(), "config validation failed") {
		t.Errorf("multi-error message missing header: %q", ves.Error())
	}
}

func TestValidationErrors_SingleError(t *testing.T) {
	ves := ValidationErrors{{Field: "smtp.host", Message: "must not be empty"}}
	if got, want := ves.Error(), "smtp.host: must not be empty"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsValidationError(t *testing.T) {
	if !IsValidationError(ValidationErrors{{Field: "f", Message: "m"}}) {
		t.Error("IsValidationError(ValidationErrors) = false, want true")
	}
	if !IsValidationError(ValidationError{Field: "f", Message: "m"}) {
		t.Error("IsValidationError(ValidationError) = false, want true")
	}
	if IsValidationError(fmt.Errorf("plain error")) {
		t.Error("IsValidationError(plain) = true, want false")
	}
}
