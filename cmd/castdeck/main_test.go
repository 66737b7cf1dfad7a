package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nwrenn/castdeck/internal/infrastructure/config"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("CASTDECK_CONFIG")
	defer os.Setenv("CASTDECK_CONFIG", originalEnv)

	os.Setenv("CASTDECK_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	originalEnv := os.Getenv("CASTDECK_CONFIG")
	defer os.Setenv("CASTDECK_CONFIG", originalEnv)

	os.Unsetenv("CASTDECK_CONFIG")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	originalEnv := os.Getenv("CASTDECK_CONFIG")
	defer os.Setenv("CASTDECK_CONFIG", originalEnv)

	expected := "/custom/path/config.yaml"
	os.Setenv("CASTDECK_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestRun_StartupAndShutdown runs the full stack against a temp data
// directory and shuts it down via context timeout.
func TestRun_StartupAndShutdown(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
api:
  host: "127.0.0.1"
  port: 18530
  timeouts:
    read: 5
    write: 5
    idle: 5

registry:
  store_path: "` + filepath.Join(tmpDir, "devices.json") + `"

history:
  enabled: true
  path: "` + filepath.Join(tmpDir, "castdeck.db") + `"
  wal_mode: true
  busy_timeout: 5
  retention_days: 1

discovery:
  strategy_timeout: 1
  scan_on_startup: false

client:
  device_name: "castdeck-test"
  timeout: 1

logging:
  level: error
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("CASTDECK_CONFIG")
	defer os.Setenv("CASTDECK_CONFIG", originalEnv)
	os.Setenv("CASTDECK_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v, want clean shutdown", err)
	}
}

// TestEnsureDeviceID_Persists verifies a generated device ID survives a
// second call.
func TestEnsureDeviceID_Persists(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
registry:
  store_path: "` + filepath.Join(tmpDir, "devices.json") + `"
history:
  enabled: false
logging:
  level: error
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	first, err := ensureDeviceID(cfg)
	if err != nil {
		t.Fatalf("ensureDeviceID() error = %v", err)
	}
	if strings.TrimSpace(first) == "" {
		t.Fatal("ensureDeviceID() returned empty id")
	}

	second, err := ensureDeviceID(cfg)
	if err != nil {
		t.Fatalf("ensureDeviceID() second call error = %v", err)
	}
	if first != second {
		t.Errorf("device id changed between calls: %q then %q", first, second)
	}
}

// TestEnsureDeviceID_ConfiguredWins verifies a configured ID is used as-is.
func TestEnsureDeviceID_ConfiguredWins(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
registry:
  store_path: "` + filepath.Join(tmpDir, "devices.json") + `"
history:
  enabled: false
client:
  device_id: "configured-id"
logging:
  level: error
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	id, err := ensureDeviceID(cfg)
	if err != nil {
		t.Fatalf("ensureDeviceID() error = %v", err)
	}
	if id != "configured-id" {
		t.Errorf("ensureDeviceID() = %q, want configured-id", id)
	}
}
