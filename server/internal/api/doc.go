// Package api implements the JSON endpoints of nowplaying-server.
//
// Endpoints:
//
//	GET /now-playing        → {"message": "<trimmed file content>"}
//	GET /now-playing/track  → {"artist": "...", "title": "...", "message": "..."}
//	GET /healthz            → {"status": "ok", "file": "ok|error", "clients": N, "pushes": N}
//
// The file is read on every request; nothing is cached. A read failure on
// /now-playing or /now-playing/track returns 500 with {"error": "..."}.
// All responses are Content-Type: application/json.
package api
