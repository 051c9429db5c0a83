package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the host configuration.
const (
	DefaultHost          = "127.0.0.1"
	DefaultHTTPPort      = 8790
	DefaultGRPCPort      = 50061
	DefaultStoreCapacity = 1000
	DefaultAuthHeader    = "x-api-key"
	DefaultLogLevel      = "info"
)

// Config is the top-level configuration parsed from hostbridge.yaml.
type Config struct {
	Bridge BridgeConfig `yaml:"bridge"`
}

// BridgeConfig holds all host-side settings.
type BridgeConfig struct {
	// Host is the interface every listener binds to. The bridge is meant for
	// a UI on the same machine, so it defaults to loopback.
	Host string `yaml:"host"`

	// HTTPPort serves the REST API, /metrics and the WebSocket IPC endpoint.
	HTTPPort int `yaml:"http_port"`

	// GRPCPort serves the hostbridge.v1.Bridge service.
	GRPCPort int `yaml:"grpc_port"`

	Auth  AuthConfig  `yaml:"auth"`
	Store StoreConfig `yaml:"store"`
	FS    FSConfig    `yaml:"fs"`
	Log   LogConfig   `yaml:"log"`
}

// AuthConfig controls caller authentication on every transport.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header and gRPC metadata key carrying the key.
	// Defaults to "x-api-key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return DefaultAuthHeader
}

// StoreConfig sizes the in-memory store.
type StoreConfig struct {
	// Capacity is the maximum number of keys held before FIFO eviction.
	// Changing it requires a restart.
	Capacity int `yaml:"capacity"`
}

// FSConfig tunes filesystem calls.
type FSConfig struct {
	// Timeout bounds each filesystem call. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig controls the slog level.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`
}

// SlogLevel maps Level to a slog.Level; unknown values fall back to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads and parses the config file at path.
// Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes into a defaulted, validated Config.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Defaults returns a Config pre-populated with default values. It is also
// the configuration used when no file is given.
func Defaults() *Config {
	return &Config{
		Bridge: BridgeConfig{
			Host:     DefaultHost,
			HTTPPort: DefaultHTTPPort,
			GRPCPort: DefaultGRPCPort,
			Auth:     AuthConfig{Mode: "none"},
			Store:    StoreConfig{Capacity: DefaultStoreCapacity},
			Log:      LogConfig{Level: DefaultLogLevel},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	b := cfg.Bridge
	if b.HTTPPort <= 0 || b.HTTPPort > 65535 {
		return fmt.Errorf("bridge.http_port %d is out of range [1, 65535]", b.HTTPPort)
	}
	if b.GRPCPort <= 0 || b.GRPCPort > 65535 {
		return fmt.Errorf("bridge.grpc_port %d is out of range [1, 65535]", b.GRPCPort)
	}
	if b.HTTPPort == b.GRPCPort {
		return fmt.Errorf("bridge.http_port and bridge.grpc_port must differ (both %d)", b.HTTPPort)
	}
	switch b.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("bridge.auth.mode %q unknown: want apikey|none", b.Auth.Mode)
	}
	if b.Auth.Mode == "apikey" && b.Auth.KeyEnv == "" {
		return fmt.Errorf("bridge.auth.key_env is required when mode is apikey")
	}
	if b.Store.Capacity <= 0 {
		return fmt.Errorf("bridge.store.capacity must be positive")
	}
	if b.FS.Timeout < 0 {
		return fmt.Errorf("bridge.fs.timeout must not be negative")
	}
	switch b.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("bridge.log.level %q unknown: want debug|info|warn|error", b.Log.Level)
	}
	return nil
}
