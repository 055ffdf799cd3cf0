package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

// clearEnv makes sure the developer's shell does not leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvNowPlayingPath, EnvPort, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	p := writeConfig(t, `now_playing:
  path: /tmp/np.txt
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NowPlaying.Path != "/tmp/np.txt" {
		t.Errorf("path: got %q, want /tmp/np.txt", cfg.NowPlaying.Path)
	}
	if cfg.NowPlaying.PollInterval != DefaultPollInterval {
		t.Errorf("poll_interval: got %v, want %v", cfg.NowPlaying.PollInterval, DefaultPollInterval)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if !cfg.Server.MetricsEnabled() {
		t.Error("metrics: want enabled by default")
	}
	if cfg.Log.SlogLevel() != slog.LevelInfo {
		t.Errorf("log level: got %v, want info", cfg.Log.SlogLevel())
	}
}

func TestLoad_Full(t *testing.T) {
	clearEnv(t)
	p := writeConfig(t, `now_playing:
  path: ./np.txt
  poll_interval: 2s
  notify: true
server:
  http_port: 9091
  allowed_origins: ["http://localhost:5173"]
  metrics: false
  auth:
    mode: apikey
    key_env: MY_KEY
    header: x-np-key
log:
  level: debug
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NowPlaying.PollInterval != 2*time.Second {
		t.Errorf("poll_interval: got %v, want 2s", cfg.NowPlaying.PollInterval)
	}
	if !cfg.NowPlaying.Notify {
		t.Error("notify: got false, want true")
	}
	if cfg.Server.HTTPPort != 9091 {
		t.Errorf("http_port: got %d, want 9091", cfg.Server.HTTPPort)
	}
	if len(cfg.Server.AllowedOrigins) != 1 {
		t.Errorf("allowed_origins: got %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.MetricsEnabled() {
		t.Error("metrics: got enabled, want disabled")
	}
	if cfg.Server.Auth.EffectiveHeader() != "x-np-key" {
		t.Errorf("header: got %q, want x-np-key", cfg.Server.Auth.EffectiveHeader())
	}
	if cfg.Log.SlogLevel() != slog.LevelDebug {
		t.Errorf("log level: got %v, want debug", cfg.Log.SlogLevel())
	}
}

func TestLoad_MissingPath(t *testing.T) {
	clearEnv(t)
	p := writeConfig(t, `server:
  http_port: 8080
`)
	_, err := Load(p)
	if !errors.Is(err, ErrMissingPath) {
		t.Fatalf("err: got %v, want ErrMissingPath", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvNowPlayingPath, "/env/np.txt")
	t.Setenv(EnvPort, "9999")
	t.Setenv(EnvLogLevel, "warn")
	p := writeConfig(t, `now_playing:
  path: /file/np.txt
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NowPlaying.Path != "/env/np.txt" {
		t.Errorf("path: got %q, want /env/np.txt", cfg.NowPlaying.Path)
	}
	if cfg.Server.HTTPPort != 9999 {
		t.Errorf("http_port: got %d, want 9999", cfg.Server.HTTPPort)
	}
	if cfg.Log.SlogLevel() != slog.LevelWarn {
		t.Errorf("log level: got %v, want warn", cfg.Log.SlogLevel())
	}
}

func TestLoad_MissingFile_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvNowPlayingPath, "/env/np.txt")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NowPlaying.Path != "/env/np.txt" {
		t.Errorf("path: got %q", cfg.NowPlaying.Path)
	}
}

func TestLoad_MissingFile_NoEnv(t *testing.T) {
	clearEnv(t)
	_, err := Load("/nonexistent/path/config.yaml")
	if !errors.Is(err, ErrMissingPath) {
		t.Fatalf("err: got %v, want ErrMissingPath", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad port", "now_playing: {path: x}\nserver: {http_port: 70000}\n", "server.http_port 70000"},
		{"negative interval", "now_playing: {path: x, poll_interval: -1s}\n", "now_playing.poll_interval must be positive"},
		{"zero interval", "now_playing: {path: x, poll_interval: 0s}\n", "now_playing.poll_interval must be positive"},
		{"unknown auth mode", "now_playing: {path: x}\nserver: {auth: {mode: oauth2}}\n", "server.auth.mode"},
		{"unknown log level", "now_playing: {path: x}\nlog: {level: loud}\n", "log.level"},
		{"broken yaml", "now_playing: [\n", "parse yaml"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tc.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error: got %q, want it to contain %q", err, tc.want)
			}
		})
	}
}

func TestLoad_BadPortEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvNowPlayingPath, "/env/np.txt")
	t.Setenv(EnvPort, "eighty")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric PORT, got nil")
	}
}

func TestAuthConfig_KeyEnvResolution(t *testing.T) {
	t.Setenv("TEST_SERVER_KEY", "supersecret")
	a := AuthConfig{Mode: "apikey", KeyEnv: "TEST_SERVER_KEY"}
	if k := a.Key(); k != "supersecret" {
		t.Errorf("Key(): got %q, want supersecret", k)
	}
	if h := a.EffectiveHeader(); h != DefaultAuthHeader {
		t.Errorf("EffectiveHeader: got %q, want %q", h, DefaultAuthHeader)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	if err := os.WriteFile(p, []byte("NOW_PLAYING_PATH=/dotenv/np.txt\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	// t.Setenv above registered cleanup, so the value set by godotenv is reverted.
	if err := os.Unsetenv(EnvNowPlayingPath); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}
	if err := LoadEnvFile(p); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NowPlaying.Path != "/dotenv/np.txt" {
		t.Errorf("path: got %q, want /dotenv/np.txt", cfg.NowPlaying.Path)
	}
}

func TestLoadEnvFile_DoesNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvNowPlayingPath, "/real/np.txt")
	p := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(p, []byte("NOW_PLAYING_PATH=/dotenv/np.txt\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	if err := LoadEnvFile(p); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if v := os.Getenv(EnvNowPlayingPath); v != "/real/np.txt" {
		t.Errorf("env: got %q, want /real/np.txt", v)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("LoadEnvFile on missing file: %v", err)
	}
}
