// Package config loads Auditoria settings from defaults, an optional YAML file
// and AUDITORIA_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backends accepted by Config.Backend.
const (
	BackendLocal    = "local"
	BackendRemote   = "remote"
	BackendEmbedded = "embedded"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config captures process-wide settings for the CLI, the HTTP server and the store daemon.
type Config struct {
	DataDir  string `yaml:"data_dir"`
	HTTPAddr string `yaml:"http_addr"`

	// Backend selects the row store: local blobs, a remote daemon, or the
	// document engine embedded in this process.
	Backend    string `yaml:"backend"`
	StoreAddr  string `yaml:"store_addr"`
	StorePort  string `yaml:"store_port"`
	DisableTLS bool   `yaml:"disable_tls"`

	RowsCollection   string `yaml:"rows_collection"`
	ConfigCollection string `yaml:"config_collection"`
	AdminEmailsFile  string `yaml:"admin_emails_file"`

	Log Log `yaml:"log"`
}

// Log configures the slog handler and optional rotating file output.
type Log struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxAgeDay int    `yaml:"max_age_days"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		DataDir:          "./data",
		HTTPAddr:         ":8080",
		Backend:          BackendLocal,
		StorePort:        "7001",
		RowsCollection:   "auditorias",
		ConfigCollection: "configs",
		AdminEmailsFile:  "admin_emails.json",
		Log: Log{
			Level:     "info",
			Format:    "text",
			MaxSizeMB: 100,
			MaxAgeDay: 30,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path
// is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString(&c.DataDir, "AUDITORIA_DATA_DIR")
	setString(&c.HTTPAddr, "AUDITORIA_HTTP_ADDR")
	setString(&c.Backend, "AUDITORIA_BACKEND")
	setString(&c.StoreAddr, "AUDITORIA_STORE_ADDR")
	setString(&c.StorePort, "AUDITORIA_STORE_PORT")
	setString(&c.AdminEmailsFile, "AUDITORIA_ADMIN_EMAILS_FILE")
	setString(&c.Log.Level, "AUDITORIA_LOG_LEVEL")
	setString(&c.Log.Format, "AUDITORIA_LOG_FORMAT")
	setString(&c.Log.File, "AUDITORIA_LOG_FILE")
	if v := os.Getenv("AUDITORIA_DISABLE_TLS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: AUDITORIA_DISABLE_TLS=%q is not a boolean", ErrInvalidConfig, v)
		}
		c.DisableTLS = b
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate rejects settings the application cannot start with.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendLocal, BackendEmbedded:
	case BackendRemote:
		if c.StoreAddr == "" {
			return fmt.Errorf("%w: backend %q requires store_addr", ErrInvalidConfig, c.Backend)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.RowsCollection == "" || c.ConfigCollection == "" {
		return fmt.Errorf("%w: collection names must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
