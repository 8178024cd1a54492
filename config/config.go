package config

import (
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"strings"
	"time"
)

const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
)

type Config struct {
	Addr           string   `yaml:"addr"`
	BaseURL        string   `yaml:"base_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	ContentDir     string   `yaml:"content_dir"`
	AssetsDir      string   `yaml:"assets_dir"`

	Store  string `yaml:"store"`
	DBPath string `yaml:"db_path"`
	// StatsDir holds one file per page when Store is "file".
	StatsDir      string        `yaml:"stats_dir"`
	FlushInterval time.Duration `yaml:"flush_interval"`

	Views ViewsConfig `yaml:"views"`
	Log   LogConfig   `yaml:"log"`
}

// ViewsConfig points at a remote view counting service.
type ViewsConfig struct {
	URL             string        `yaml:"url"`
	RetryCount      int           `yaml:"retry_count"`
	Timeout         time.Duration `yaml:"timeout"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

var ErrUnknownStore = errors.New("unknown store")
var ErrInvalidInterval = errors.New("interval must be positive")

func Default() Config {
	return Config{
		Addr:           ":8080",
		BaseURL:        "http://localhost:8080",
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		ContentDir:     "content",
		AssetsDir:      "assets",
		Store:          StoreSQLite,
		DBPath:         "db/views.db",
		StatsDir:       "db/stats",
		FlushInterval:  time.Minute,
		Views: ViewsConfig{
			RetryCount:      3,
			Timeout:         5 * time.Second,
			RefreshInterval: 30 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, then applies FOLIO_* environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	setString(&c.Addr, "FOLIO_ADDR")
	setString(&c.BaseURL, "FOLIO_BASE_URL")
	setString(&c.ContentDir, "FOLIO_CONTENT_DIR")
	setString(&c.AssetsDir, "FOLIO_ASSETS_DIR")
	setString(&c.Store, "FOLIO_STORE")
	setString(&c.DBPath, "FOLIO_DB_PATH")
	setString(&c.StatsDir, "FOLIO_STATS_DIR")
	setString(&c.Views.URL, "FOLIO_VIEWS_URL")
	setString(&c.Log.Level, "FOLIO_LOG_LEVEL")

	if v, ok := os.LookupEnv("FOLIO_ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = strings.Split(v, ",")
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreFile:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Store)
	}

	if c.FlushInterval <= 0 {
		return fmt.Errorf("flush_interval: %w", ErrInvalidInterval)
	}
	if c.Views.RefreshInterval <= 0 {
		return fmt.Errorf("views.refresh_interval: %w", ErrInvalidInterval)
	}
	if c.Views.Timeout <= 0 {
		return fmt.Errorf("views.timeout: %w", ErrInvalidInterval)
	}
	if c.Views.RetryCount < 0 {
		return errors.New("views.retry_count must not be negative")
	}

	return nil
}
