package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	FetcherHTTP    = "http"
	FetcherBrowser = "browser"
)

// AppConfig holds infrastructure config from standard env vars
type AppConfig struct {
	DBPath        string
	ConfigPath    string // Path to the YAML config file
	GeocodeAPIKey string
	Log           LogConfig
}

type LogConfig struct {
	Level  string
	Format string // "text" or "json"
	Fluent FluentConfig
}

type FluentConfig struct {
	Enabled bool
	Host    string
	Port    int
	Level   string
}

// SiteConfig holds all target-site specific settings (from YAML)
type SiteConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Fetcher   string        `yaml:"fetcher"`
	UserAgent string        `yaml:"user_agent"`
	Selectors Selectors     `yaml:"selectors"`
	Geocode   GeocodeConfig `yaml:"geocode"`
}

type Selectors struct {
	Offer        string `yaml:"offer"`
	Link         string `yaml:"link"`
	Image        string `yaml:"image"`
	Emphasis     string `yaml:"emphasis"`
	Date         string `yaml:"date"`
	Place        string `yaml:"place"`
	CookieButton string `yaml:"cookie_button"` // browser fetcher only
}

type GeocodeConfig struct {
	Region   string `yaml:"region"`
	Language string `yaml:"language"`
	Cache    bool   `yaml:"cache"`
}

// DefaultSiteConfig matches the OLX real-estate listing markup.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		BaseURL: "https://www.olx.pl/",
		Fetcher: FetcherHTTP,
		Selectors: Selectors{
			Offer:    ".offer",
			Link:     "a[class^='thumb vtop inlblk rel tdnone linkWithHash']",
			Image:    "img",
			Emphasis: "strong",
			Date:     "p[class='color-9 lheight16 marginbott5 x-normal']",
			Place:    "small[class='breadcrumb x-normal'] span",
		},
		Geocode: GeocodeConfig{
			Region:   "pl",
			Language: "pl",
		},
	}
}

// GetAppConfig reads basic infrastructure settings from environment variables.
// A .env file in the working directory (or at envPath) is loaded first when present.
func GetAppConfig(envPath ...string) (AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath...)
	} else {
		err = godotenv.Load()
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("could not load .env file: %w", err)
	}

	cfg := AppConfig{
		DBPath:        getEnvAsString("DB_PATH", "./local-data/flat-scout.db"),
		ConfigPath:    getEnvAsString("CONFIG_PATH", "config.yaml"),
		GeocodeAPIKey: os.Getenv("GEOCODE_API_KEY"),
		Log: LogConfig{
			Level:  getEnvAsString("LOG_LEVEL", "info"),
			Format: getEnvAsString("LOG_FORMAT", "text"),
		},
	}

	cfg.Log.Fluent.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.Log.Fluent.Enabled {
		cfg.Log.Fluent.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.Log.Fluent.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.Log.Fluent.Enabled = false
		}
		cfg.Log.Fluent.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.Log.Fluent.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	return cfg, nil
}

// LoadSiteConfig reads the YAML file to configure the scraper.
// Fields left empty fall back to DefaultSiteConfig; a missing file yields the defaults.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	cfg := DefaultSiteConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at '%s': %w", path, err)
	}

	var fileCfg SiteConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	merge(&cfg, fileCfg)

	if cfg.Fetcher != FetcherHTTP && cfg.Fetcher != FetcherBrowser {
		return nil, fmt.Errorf("unknown fetcher %q (want %q or %q)", cfg.Fetcher, FetcherHTTP, FetcherBrowser)
	}
	return &cfg, nil
}

func merge(dst *SiteConfig, src SiteConfig) {
	setIfNotEmpty(&dst.BaseURL, src.BaseURL)
	setIfNotEmpty(&dst.Fetcher, src.Fetcher)
	setIfNotEmpty(&dst.UserAgent, src.UserAgent)

	setIfNotEmpty(&dst.Selectors.Offer, src.Selectors.Offer)
	setIfNotEmpty(&dst.Selectors.Link, src.Selectors.Link)
	setIfNotEmpty(&dst.Selectors.Image, src.Selectors.Image)
	setIfNotEmpty(&dst.Selectors.Emphasis, src.Selectors.Emphasis)
	setIfNotEmpty(&dst.Selectors.Date, src.Selectors.Date)
	setIfNotEmpty(&dst.Selectors.Place, src.Selectors.Place)
	setIfNotEmpty(&dst.Selectors.CookieButton, src.Selectors.CookieButton)

	setIfNotEmpty(&dst.Geocode.Region, src.Geocode.Region)
	setIfNotEmpty(&dst.Geocode.Language, src.Geocode.Language)
	dst.Geocode.Cache = src.Geocode.Cache
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt logs and falls back to the default when the value is not an int.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}
