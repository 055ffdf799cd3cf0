package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that overlay the YAML file.
const (
	EnvNowPlayingPath = "NOW_PLAYING_PATH"
	EnvPort           = "PORT"
	EnvLogLevel       = "LOG_LEVEL"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort     = 8080
	DefaultPollInterval = 500 * time.Millisecond
	DefaultLogLevel     = "info"
	DefaultAuthHeader   = "x-api-key"
)

// ErrMissingPath is returned when neither the config file nor the environment
// names the file to watch.
var ErrMissingPath = errors.New("now_playing.path is required (or set " + EnvNowPlayingPath + ")")

// Config is the full configuration tree. It is built once by Load and never
// mutated afterwards; components receive it (or a sub-struct) explicitly.
type Config struct {
	NowPlaying NowPlayingConfig `yaml:"now_playing"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// NowPlayingConfig describes the watched status file.
type NowPlayingConfig struct {
	// Path is the file whose trimmed content is served. Required.
	Path string `yaml:"path"`

	// PollInterval is how long a push loop waits between modification-time
	// checks. Default: 500ms.
	PollInterval time.Duration `yaml:"poll_interval"`

	// Notify enables an fsnotify watch on Path that wakes push loops as soon
	// as the file is written, instead of waiting out the full interval.
	Notify bool `yaml:"notify"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// HTTPPort is the port the HTTP and WebSocket endpoints listen on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// AllowedOrigins enables CORS for the listed origins. Empty disables CORS.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Metrics mounts GET /metrics. Defaults to true.
	Metrics *bool `yaml:"metrics"`

	// Auth configures optional API key protection of every endpoint.
	Auth AuthConfig `yaml:"auth"`
}

// MetricsEnabled reports whether /metrics should be mounted.
func (s ServerConfig) MetricsEnabled() bool {
	return s.Metrics == nil || *s.Metrics
}

// AuthConfig controls client authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header name to read the key from.
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

// LogConfig selects the slog level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel maps Level to a slog.Level. Unknown values map to Info; validate
// rejects them before this is reached.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads the YAML file at path (if it exists), overlays the environment
// and validates the result.
//
// A missing file is not an error: the service can be configured entirely from
// NOW_PLAYING_PATH. Any other read error, or a parse error, is returned.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse yaml: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("config: file not found, using environment only", "path", path)
		default:
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		NowPlaying: NowPlayingConfig{
			PollInterval: DefaultPollInterval,
		},
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvNowPlayingPath); v != "" {
		cfg.NowPlaying.Path = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q is not a number", EnvPort, v)
		}
		cfg.Server.HTTPPort = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.NowPlaying.Path) == "" {
		return ErrMissingPath
	}
	if cfg.NowPlaying.PollInterval <= 0 {
		return errors.New("now_playing.poll_interval must be positive")
	}
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q unknown: want debug|info|warn|error", cfg.Log.Level)
	}
	return nil
}
