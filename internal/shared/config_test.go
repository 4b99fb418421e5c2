package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Backend.BaseURL != "http://localhost:8000" {
			t.Errorf("expected backend base URL http://localhost:8000, got %s", config.Backend.BaseURL)
		}

		if config.Backend.RateLimit != 2.0 {
			t.Errorf("expected rate limit 2.0, got %f", config.Backend.RateLimit)
		}

		if config.Database.Path != "wedx.db" {
			t.Errorf("expected database path wedx.db, got %s", config.Database.Path)
		}

		if config.Relay.Host != "127.0.0.1" || config.Relay.Port != 8787 {
			t.Errorf("unexpected relay defaults: %s:%d", config.Relay.Host, config.Relay.Port)
		}

		if config.Mail.DefaultSubject == "" {
			t.Error("expected a default mail subject")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}
	})

	t.Run("CreateConfigFile refuses to overwrite", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatal(err)
		}
		if err := CreateConfigFile(configPath); err == nil {
			t.Error("expected an error for an existing file")
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("LoadConfig invalid TOML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("[backend\nbroken"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected a parse error")
		}
	})
}
