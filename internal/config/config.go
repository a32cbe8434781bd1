// Package config loads the service configuration from TOML files with
// environment overlays and per-field environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/chronicle-ai/chronicle/internal/adapter"
	"github.com/chronicle-ai/chronicle/internal/agents"
	"github.com/chronicle-ai/chronicle/pkg/database"
	"github.com/chronicle-ai/chronicle/pkg/formatting"
	"github.com/chronicle-ai/chronicle/pkg/notify"
	"github.com/chronicle-ai/chronicle/pkg/pagination"
	"github.com/chronicle-ai/chronicle/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvChronicleEnv             = "CHRONICLE_ENV"
	EnvChronicleShutdownTimeout = "CHRONICLE_SHUTDOWN_TIMEOUT"
	EnvChronicleVersion         = "CHRONICLE_VERSION"
	EnvChronicleMaxUploadSize   = "CHRONICLE_MAX_UPLOAD_SIZE"
)

var databaseEnv = &database.Env{
	Host:            "CHRONICLE_DB_HOST",
	Port:            "CHRONICLE_DB_PORT",
	Name:            "CHRONICLE_DB_NAME",
	User:            "CHRONICLE_DB_USER",
	Password:        "CHRONICLE_DB_PASSWORD",
	SSLMode:         "CHRONICLE_DB_SSL_MODE",
	MaxOpenConns:    "CHRONICLE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CHRONICLE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CHRONICLE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CHRONICLE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "CHRONICLE_STORAGE_CONTAINER_NAME",
	ConnectionString: "CHRONICLE_STORAGE_CONNECTION_STRING",
}

var notifyEnv = &notify.Env{
	Addr:        "CHRONICLE_REDIS_ADDR",
	Password:    "CHRONICLE_REDIS_PASSWORD",
	DB:          "CHRONICLE_REDIS_DB",
	TopicPrefix: "CHRONICLE_REDIS_TOPIC_PREFIX",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "CHRONICLE_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "CHRONICLE_PAGINATION_MAX_PAGE_SIZE",
}

// Config is the root configuration for the Chronicle service.
type Config struct {
	Database   database.Config   `toml:"database"`
	Storage    storage.Config    `toml:"storage"`
	Notify     notify.Config     `toml:"notify"`
	Adapter    adapter.Config    `toml:"adapter"`
	Pipeline   PipelineConfig    `toml:"pipeline"`
	Pagination pagination.Config `toml:"pagination"`

	// Unit holds the defaults applied to every processing unit; Units
	// carries per-unit overrides keyed by unit name.
	Unit  agents.UnitConfig            `toml:"unit"`
	Units map[string]agents.UnitConfig `toml:"units"`

	MaxUploadSize   string `toml:"max_upload_size"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	Version         string `toml:"version"`
}

// Env returns the CHRONICLE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvChronicleEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// MaxUploadSizeBytes returns the parsed upload limit.
func (c *Config) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 50 * 1024 * 1024 // 50MB fallback
	}
	return size
}

// UnitConfigFor resolves the effective configuration for a named unit:
// the shared unit defaults overlaid with the unit's own section.
func (c *Config) UnitConfigFor(name string) (agents.UnitConfig, error) {
	resolved := c.Unit
	if overlay, ok := c.Units[name]; ok {
		resolved.Merge(&overlay)
	}

	if err := resolved.Finalize(); err != nil {
		return resolved, fmt.Errorf("unit %s: %w", name, err)
	}
	return resolved, nil
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}

	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Notify.Merge(&overlay.Notify)
	c.Adapter.Merge(&overlay.Adapter)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Pagination.Merge(&overlay.Pagination)
	c.Unit.Merge(&overlay.Unit)

	for name, unit := range overlay.Units {
		if c.Units == nil {
			c.Units = make(map[string]agents.UnitConfig)
		}
		existing := c.Units[name]
		existing.Merge(&unit)
		c.Units[name] = existing
	}
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Notify.Finalize(notifyEnv); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if err := c.Adapter.Finalize(); err != nil {
		return fmt.Errorf("adapter: %w", err)
	}
	if err := c.Pipeline.Finalize(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.Unit.Finalize(); err != nil {
		return fmt.Errorf("unit: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvChronicleMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvChronicleShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvChronicleVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvChronicleEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
