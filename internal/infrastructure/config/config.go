package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors" toml:"cors"`
	Browser   BrowserConfig   `yaml:"browser" toml:"browser"`
	Fetch     FetchConfig     `yaml:"fetch" toml:"fetch"`
	Sandbox   SandboxConfig   `yaml:"sandbox" toml:"sandbox"`
	Tracing   TracingConfig   `yaml:"tracing" toml:"tracing"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" yaml:"port" toml:"port"`
	Host string `envconfig:"HOST" yaml:"host" toml:"host"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" yaml:"rps" toml:"rps"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" yaml:"enabled" toml:"enabled"`
}

// CORSConfig lists the origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ORIGINS" yaml:"allowed_origins" toml:"allowed_origins"`
}

// BrowserConfig controls browsing context behaviour.
type BrowserConfig struct {
	InitialURL        string `envconfig:"BROWSER_INITIAL_URL" yaml:"initial_url" toml:"initial_url"`
	MaxHistoryEntries int    `envconfig:"BROWSER_MAX_HISTORY" yaml:"max_history_entries" toml:"max_history_entries"`
	MaxWindows        int    `envconfig:"BROWSER_MAX_WINDOWS" yaml:"max_windows" toml:"max_windows"`
	// ReloadKeepsFragmentOnNoStore keeps the fragment when reloading a
	// document that was served with Cache-Control: no-store.
	ReloadKeepsFragmentOnNoStore bool     `envconfig:"BROWSER_RELOAD_KEEPS_FRAGMENT" yaml:"reload_keeps_fragment_on_no_store" toml:"reload_keeps_fragment_on_no_store"`
	BlockedPatterns              []string `envconfig:"BROWSER_BLOCKED" yaml:"blocked_patterns" toml:"blocked_patterns"`
	AllowFileScheme              bool     `envconfig:"BROWSER_ALLOW_FILE" yaml:"allow_file_scheme" toml:"allow_file_scheme"`
	FileRoot                     string   `envconfig:"BROWSER_FILE_ROOT" yaml:"file_root" toml:"file_root"`
	IdleTimeout                  Duration `envconfig:"BROWSER_IDLE_TIMEOUT" yaml:"idle_timeout" toml:"idle_timeout"`
}

// FetchConfig controls the document loader.
type FetchConfig struct {
	Timeout      Duration `envconfig:"FETCH_TIMEOUT" yaml:"timeout" toml:"timeout"`
	Retries      int      `envconfig:"FETCH_RETRIES" yaml:"retries" toml:"retries"`
	UserAgent    string   `envconfig:"FETCH_USER_AGENT" yaml:"user_agent" toml:"user_agent"`
	RPS          float64  `envconfig:"FETCH_RPS" yaml:"rps" toml:"rps"`
	Burst        int      `envconfig:"FETCH_BURST" yaml:"burst" toml:"burst"`
	MaxBodyBytes int64    `envconfig:"FETCH_MAX_BODY" yaml:"max_body_bytes" toml:"max_body_bytes"`
	Sanitize     bool     `envconfig:"FETCH_SANITIZE" yaml:"sanitize" toml:"sanitize"`
}

// SandboxConfig controls script execution.
type SandboxConfig struct {
	Timeout  Duration `envconfig:"SANDBOX_TIMEOUT" yaml:"timeout" toml:"timeout"`
	PoolSize int      `envconfig:"SANDBOX_POOL_SIZE" yaml:"pool_size" toml:"pool_size"`
	MaxLogs  int      `envconfig:"SANDBOX_MAX_LOGS" yaml:"max_logs" toml:"max_logs"`
}

// TracingConfig controls OpenTelemetry spans.
type TracingConfig struct {
	Enabled     bool   `envconfig:"TRACING_ENABLED" yaml:"enabled" toml:"enabled"`
	ServiceName string `envconfig:"TRACING_SERVICE" yaml:"service_name" toml:"service_name"`
}

// Duration is a time.Duration that decodes from strings like "15s" in
// environment variables, YAML and TOML alike.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load loads configuration from environment variables on top of defaults.
func Load() (*Config, error) {
	cfg := Default()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// LoadFile layers defaults, then the YAML or TOML file at path, then the
// environment. An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decodeFile(path, data, cfg); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse TOML config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Browser: BrowserConfig{
			InitialURL:                   "about:blank",
			MaxHistoryEntries:            0, // unbounded
			MaxWindows:                   64,
			ReloadKeepsFragmentOnNoStore: true,
			IdleTimeout:                  Duration(30 * time.Minute),
		},
		Fetch: FetchConfig{
			Timeout:      Duration(30 * time.Second),
			Retries:      3,
			UserAgent:    "Mozilla/5.0 (compatible; AgentOS-Navigator/1.0)",
			RPS:          10,
			Burst:        20,
			MaxBodyBytes: 10 << 20,
			Sanitize:     false,
		},
		Sandbox: SandboxConfig{
			Timeout:  Duration(5 * time.Second),
			PoolSize: 4,
			MaxLogs:  1000,
		},
		Tracing: TracingConfig{
			Enabled:     true,
			ServiceName: "navigator",
		},
	}
}
