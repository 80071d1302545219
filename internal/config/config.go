package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/hylla/taskboard/internal/app"
	"github.com/hylla/taskboard/internal/domain"
)

// Backend selects the record store.
type Backend string

const (
	BackendSQLite  Backend = "sqlite"
	BackendFixture Backend = "fixture"
	BackendRemote  Backend = "remote"
)

// Environment overrides applied on top of the TOML file.
const (
	EnvConfigPath = "TASKBOARD_CONFIG"
	EnvDBPath     = "TASKBOARD_DB_PATH"
	EnvDevMode    = "TASKBOARD_DEV_MODE"
	EnvBackend    = "TASKBOARD_BACKEND"
)

type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	Database DatabaseConfig `toml:"database"`
	Fixture  FixtureConfig  `toml:"fixture"`
	Remote   RemoteConfig   `toml:"remote"`
	Server   ServerConfig   `toml:"server"`
	Board    BoardConfig    `toml:"board"`
	Confirm  ConfirmConfig  `toml:"confirm"`
	Logging  LoggingConfig  `toml:"logging"`
}

type StorageConfig struct {
	Backend Backend `toml:"backend"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type FixtureConfig struct {
	Latency  string `toml:"latency"` // Go duration; negative disables the delay
	SeedPath string `toml:"seed_path"`
}

// RemoteConfig holds the non-secret remote settings. The public key comes
// from the environment or the keyring.
type RemoteConfig struct {
	Endpoint  string `toml:"endpoint"`
	ProjectID string `toml:"project_id"`
	Timeout   string `toml:"timeout"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type BoardConfig struct {
	DefaultDateRange   string `toml:"default_date_range"`
	DefaultPriority    string `toml:"default_priority"`
	ShowCompletionRate bool   `toml:"show_completion_rate"`
	ShowLabels         bool   `toml:"show_labels"`
}

type ConfirmConfig struct {
	Delete bool `toml:"delete"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func Default(dbPath string) Config {
	return Config{
		Storage:  StorageConfig{Backend: BackendSQLite},
		Database: DatabaseConfig{Path: dbPath},
		Fixture:  FixtureConfig{Latency: "200ms"},
		Remote:   RemoteConfig{Timeout: "15s"},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		Board: BoardConfig{
			ShowCompletionRate: true,
			ShowLabels:         true,
		},
		Confirm: ConfirmConfig{Delete: true},
		Logging: LoggingConfig{
			Level:   "info",
			DevFile: DevFileConfig{Enabled: true},
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ApplyEnv overlays the backend and database path environment overrides.
func ApplyEnv(cfg Config, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvDBPath)); v != "" {
		cfg.Database.Path = v
	}
	if v := strings.TrimSpace(getenv(EnvBackend)); v != "" {
		cfg.Storage.Backend = Backend(strings.ToLower(v))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DevModeFromEnv reports the TASKBOARD_DEV_MODE override, if set to a valid bool.
func DevModeFromEnv(getenv func(string) string) (bool, bool) {
	if getenv == nil {
		getenv = os.Getenv
	}
	raw := strings.TrimSpace(getenv(EnvDevMode))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return errors.New("database path is required")
		}
	case BackendFixture, BackendRemote:
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}

	if _, err := c.FixtureLatency(); err != nil {
		return err
	}
	if _, err := c.RemoteTimeout(); err != nil {
		return err
	}
	if c.Remote.Endpoint != "" && !strings.HasPrefix(c.Remote.Endpoint, "http://") && !strings.HasPrefix(c.Remote.Endpoint, "https://") {
		return fmt.Errorf("remote.endpoint must be an http(s) URL: %q", c.Remote.Endpoint)
	}

	if strings.TrimSpace(c.Server.APIEndpoint) != "" && strings.TrimSpace(c.Server.APIEndpoint) == strings.TrimSpace(c.Server.MCPEndpoint) {
		return errors.New("server.api_endpoint and server.mcp_endpoint must differ")
	}

	if _, err := c.DefaultFilters(); err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	return nil
}

// FixtureLatency parses fixture.latency. Empty means the store default.
func (c Config) FixtureLatency() (time.Duration, error) {
	return parseDuration("fixture.latency", c.Fixture.Latency)
}

// RemoteTimeout parses remote.timeout. Empty means the client default.
func (c Config) RemoteTimeout() (time.Duration, error) {
	d, err := parseDuration("remote.timeout", c.Remote.Timeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("remote.timeout must be >= 0: %q", c.Remote.Timeout)
	}
	return d, nil
}

// DefaultFilters returns the board filters the TUI starts with.
func (c Config) DefaultFilters() (app.Filters, error) {
	dateRange, err := app.ParseDateRange(c.Board.DefaultDateRange)
	if err != nil {
		return app.Filters{}, fmt.Errorf("invalid board.default_date_range %q: %w", c.Board.DefaultDateRange, err)
	}
	var priority domain.Priority
	if raw := strings.TrimSpace(c.Board.DefaultPriority); raw != "" {
		priority, err = domain.ParsePriority(raw)
		if err != nil {
			return app.Filters{}, fmt.Errorf("invalid board.default_priority %q: %w", c.Board.DefaultPriority, err)
		}
	}
	return app.Filters{Priority: priority, DateRange: dateRange}, nil
}

func parseDuration(field, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q: %w", field, raw, err)
	}
	return d, nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Write encodes cfg as TOML at path, creating parent directories.
func Write(path string, cfg Config) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
