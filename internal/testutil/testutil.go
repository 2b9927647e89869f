// Package testutil provides testing utilities for isolated test environments.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tsstech/billingbot/internal/config"
)

// TestEnv provides an isolated test environment with its own config directory.
type TestEnv struct {
	t         *testing.T
	ConfigDir string
}

// NewTestEnv creates an isolated test environment.
// It uses environment variables to override all paths and required
// credentials, ensuring complete isolation even when tests run in parallel
// across packages. Cleanup is automatic via t.Cleanup.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	configDir := filepath.Join(t.TempDir(), "config")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create test config dir: %v", err)
	}

	// These env vars override viper settings via AutomaticEnv()
	t.Setenv("BILLINGBOT_CONFIG_DIR", configDir)
	t.Setenv("BILLINGBOT_LOG_FILE", filepath.Join(configDir, "billingbot.log"))

	// Placeholder credentials so Load() validation passes in tests that
	// do not care about specific values.
	t.Setenv("BILLINGBOT_TELEGRAM_TOKEN", "test-bot-token")
	t.Setenv("BILLINGBOT_SMTP_HOST", "smtp.test.invalid")
	t.Setenv("BILLINGBOT_SMTP_FROM", "billing@test.invalid")
	t.Setenv("BILLINGBOT_SMTP_PASSWORD", "test-password")
	t.Setenv("BILLINGBOT_WORKDRIVE_CLIENT_ID", "test-client-id")
	t.Setenv("BILLINGBOT_WORKDRIVE_CLIENT_SECRET", "test-client-secret")
	t.Setenv("BILLINGBOT_WORKDRIVE_REFRESH_TOKEN", "test-refresh-token")
	t.Setenv("BILLINGBOT_WORKDRIVE_API_DOMAIN", "https://workdrive.test.invalid")
	t.Setenv("BILLINGBOT_WORKDRIVE_ARCHIVE_FOLDER_ID", "test-archive-folder")
	t.Setenv("BILLINGBOT_CATEGORIES_INVOICE_FOLDER_ID", "test-invoice-folder")
	t.Setenv("BILLINGBOT_CATEGORIES_ZELLE_FOLDER_ID", "test-zelle-folder")
	t.Setenv("BILLINGBOT_CATEGORIES_DEBTOR_FOLDER_ID", "test-debtor-folder")

	config.Reset()
	if err := config.Init(); err != nil {
		t.Fatalf("failed to initialize test config: %v", err)
	}

	env := &TestEnv{
		t:         t,
		ConfigDir: configDir,
	}

	t.Cleanup(func() {
		config.Reset()
	})

	return env
}

// WriteConfigFile writes content as the test environment's config.yaml and
// reinitializes the config subsystem so it is picked up.
func (e *TestEnv) WriteConfigFile(content string) string {
	e.t.Helper()

	path := filepath.Join(e.ConfigDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		e.t.Fatalf("failed to write test config file: %v", err)
	}

	config.Reset()
	if err := config.Init(); err != nil {
		e.t.Fatalf("failed to reinitialize test config: %v", err)
	}
	return path
}

// CreateTestFile creates a test file with the given content.
// Returns the absolute path to the created file.
func (e *TestEnv) CreateTestFile(dir, name, content string) string {
	e.t.Helper()

	filePath := filepath.Join(dir, name)
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		e.t.Fatalf("failed to create test file %s: %v", filePath, err)
	}
	return filePath
}
