package config

import (
	"os"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Initialize with empty config
	err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if AppConfig == nil {
		t.Fatal("AppConfig is nil")
	}

	// Check defaults
	if AppConfig.Server.Port != 8307 {
		t.Errorf("Expected default port 8307, got %d", AppConfig.Server.Port)
	}
	if AppConfig.Server.Mode != "release" {
		t.Errorf("Expected default mode 'release', got %s", AppConfig.Server.Mode)
	}
	if AppConfig.Database.Path != "data/tracktool.db" {
		t.Errorf("Expected default db path 'data/tracktool.db', got %s", AppConfig.Database.Path)
	}
	if AppConfig.Plex.Timeout != 20 {
		t.Errorf("Expected default plex timeout 20, got %d", AppConfig.Plex.Timeout)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	// Set environment variable
	os.Setenv("TRACKTOOL_SERVER_PORT", "9999")
	defer os.Unsetenv("TRACKTOOL_SERVER_PORT")

	err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if AppConfig.Server.Port != 9999 {
		t.Errorf("Expected port 9999 from env, got %d", AppConfig.Server.Port)
	}
}

func TestLoadConfig_GeneratesSecretKey(t *testing.T) {
	err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if AppConfig.SecretKey == "" {
		t.Error("Expected a generated secret key when none is configured")
	}
	if len(AppConfig.SecretKey) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(AppConfig.SecretKey))
	}
}
