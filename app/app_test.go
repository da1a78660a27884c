package app

import (
	"io"
	"log/slog"
	"testing"
)

// testLogger creates a discard logger for tests
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ANGEL_ONE_API_KEY",
		"ANGEL_ONE_USERNAME",
		"ANGEL_ONE_PASSWORD",
		"ANGEL_ONE_TOTP_SECRET",
		"ANGEL_ONE_CLIENT_CODE",
		"ANGEL_API_PORT",
		"APP_HOST",
		"SMARTAPI_BASE_URL",
		"SMARTAPI_FEED_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	app := NewApp(testLogger())
	if err := app.LoadConfig(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if app.Config.AppPort != DefaultPort {
		t.Errorf("Expected default port '%s', got '%s'", DefaultPort, app.Config.AppPort)
	}
	if app.Config.AppHost != DefaultHost {
		t.Errorf("Expected default host '%s', got '%s'", DefaultHost, app.Config.AppHost)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANGEL_API_PORT", "8080")
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("SMARTAPI_BASE_URL", "http://localhost:9000")
	t.Setenv("SMARTAPI_FEED_URL", "ws://localhost:9001")

	app := NewApp(testLogger())
	if err := app.LoadConfig(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if app.Config.AppPort != "8080" {
		t.Errorf("Expected port '8080', got '%s'", app.Config.AppPort)
	}
	if app.Config.AppHost != "127.0.0.1" {
		t.Errorf("Expected host '127.0.0.1', got '%s'", app.Config.AppHost)
	}
	if app.Config.BrokerBaseURL != "http://localhost:9000" {
		t.Errorf("Expected broker base URL override, got '%s'", app.Config.BrokerBaseURL)
	}
	if app.Config.FeedURL != "ws://localhost:9001" {
		t.Errorf("Expected feed URL override, got '%s'", app.Config.FeedURL)
	}
}

func TestLoadConfig_CredentialsFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANGEL_ONE_API_KEY", "test_key")
	t.Setenv("ANGEL_ONE_USERNAME", "test_user")
	t.Setenv("ANGEL_ONE_PASSWORD", "test_pin")
	t.Setenv("ANGEL_ONE_TOTP_SECRET", "test_seed")
	t.Setenv("ANGEL_ONE_CLIENT_CODE", "test_code")

	app := NewApp(testLogger())
	if err := app.LoadConfig(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	creds := app.Config.Credentials
	if creds.APIKey != "test_key" {
		t.Errorf("Expected API key 'test_key', got '%s'", creds.APIKey)
	}
	if creds.Username != "test_user" {
		t.Errorf("Expected username 'test_user', got '%s'", creds.Username)
	}
	if creds.ClientCode != "test_code" {
		t.Errorf("Expected client code 'test_code', got '%s'", creds.ClientCode)
	}
}

// Partial credentials must not stop the server from coming up: the
// bridge still serves /health, and login reports what is missing.
func TestLoadConfig_IncompleteCredentialsTolerated(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANGEL_ONE_API_KEY", "test_key")

	app := NewApp(testLogger())
	if err := app.LoadConfig(); err != nil {
		t.Errorf("Expected no error with incomplete credentials, got: %v", err)
	}
}

func TestNewApp(t *testing.T) {
	app := NewApp(testLogger())

	if app == nil {
		t.Error("Expected non-nil app")
		return
	}
	if app.Config == nil {
		t.Error("Expected non-nil config")
	}
	if app.Version != "v0.0.0" {
		t.Errorf("Expected default version 'v0.0.0', got '%s'", app.Version)
	}
}

func TestSetVersion(t *testing.T) {
	app := NewApp(testLogger())
	testVersion := "v1.2.3"

	app.SetVersion(testVersion)

	if app.Version != testVersion {
		t.Errorf("Expected version '%s', got '%s'", testVersion, app.Version)
	}
}
