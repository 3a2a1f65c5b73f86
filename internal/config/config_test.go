package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSiteConfigMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlData := `
base_url: "http://localhost:9000/"
fetcher: browser
selectors:
  offer: "div.listing"
geocode:
  cache: true
`
	if err := os.WriteFile(path, []byte(yamlData), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadSiteConfig(path)
	if err != nil {
		t.Fatalf("LoadSiteConfig failed: %v", err)
	}

	defaults := DefaultSiteConfig()
	if cfg.BaseURL != "http://localhost:9000/" {
		t.Errorf("BaseURL not read from file: %s", cfg.BaseURL)
	}
	if cfg.Fetcher != FetcherBrowser {
		t.Errorf("Fetcher not read from file: %s", cfg.Fetcher)
	}
	if cfg.Selectors.Offer != "div.listing" {
		t.Errorf("Offer selector not read from file: %s", cfg.Selectors.Offer)
	}
	if cfg.Selectors.Link != defaults.Selectors.Link {
		t.Errorf("Link selector should fall back to default, got %s", cfg.Selectors.Link)
	}
	if cfg.Geocode.Region != defaults.Geocode.Region {
		t.Errorf("Region should fall back to default, got %s", cfg.Geocode.Region)
	}
	if !cfg.Geocode.Cache {
		t.Error("Geocode cache flag not read from file")
	}
}

func TestLoadSiteConfigMissingFile(t *testing.T) {
	cfg, err := LoadSiteConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should yield defaults, got error: %v", err)
	}
	if *cfg != DefaultSiteConfig() {
		t.Errorf("expected defaults, got %+v", *cfg)
	}
}

func TestLoadSiteConfigRejectsUnknownFetcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("fetcher: carrier-pigeon\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadSiteConfig(path); err == nil {
		t.Fatal("expected error for unknown fetcher")
	}
}

func TestGetAppConfig(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("GEOCODE_API_KEY", "secret")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FLUENTBIT_ENABLED", "true")
	t.Setenv("FLUENTBIT_HOST", "")

	cfg, err := GetAppConfig(filepath.Join(t.TempDir(), ".env"))
	if err != nil {
		t.Fatalf("GetAppConfig failed: %v", err)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath: got %s", cfg.DBPath)
	}
	if cfg.ConfigPath != "config.yaml" {
		t.Errorf("ConfigPath default: got %s", cfg.ConfigPath)
	}
	if cfg.GeocodeAPIKey != "secret" {
		t.Errorf("GeocodeAPIKey: got %s", cfg.GeocodeAPIKey)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log level: got %s", cfg.Log.Level)
	}
	if cfg.Log.Fluent.Enabled {
		t.Error("Fluent should be disabled when FLUENTBIT_HOST is empty")
	}
}

func TestGetAppConfigReadsEnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte("CONFIG_PATH=/etc/flat-scout.yaml\n"), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	// godotenv never overrides variables that are already present
	t.Setenv("CONFIG_PATH", "")
	os.Unsetenv("CONFIG_PATH")

	cfg, err := GetAppConfig(envPath)
	if err != nil {
		t.Fatalf("GetAppConfig failed: %v", err)
	}
	if cfg.ConfigPath != "/etc/flat-scout.yaml" {
		t.Errorf("ConfigPath from .env: got %s", cfg.ConfigPath)
	}
}
