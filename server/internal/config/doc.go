// Package config loads the relay configuration from an optional YAML file,
// a .env file and the process environment.
//
// Config fields:
//   - NowPlaying.Path         — file to serve; required (env NOW_PLAYING_PATH)
//   - NowPlaying.PollInterval — wait between modification-time checks (default 500ms)
//   - NowPlaying.Notify       — wake push loops on fsnotify write events
//   - Server.HTTPPort         — listener port (default 8080, env PORT)
//   - Server.AllowedOrigins   — CORS origins; empty disables CORS
//   - Server.Metrics          — mount /metrics (default true)
//   - Server.Auth             — "apikey" or "none"; key resolved from KeyEnv
//   - Log.Level               — debug|info|warn|error (default info, env LOG_LEVEL)
//
// Load(path) applies defaults, unmarshals the file if present, overlays the
// environment, then validates. The returned Config is treated as immutable.
package config
