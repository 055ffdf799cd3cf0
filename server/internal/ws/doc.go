// Package ws implements the WebSocket side of GET /now-playing.
//
// New(src, opts) creates a Hub. Hub.ServeHTTP upgrades a connection and runs
// one stream.Session for it: the first poll always sends the current status,
// later polls send only when the file's modification time changed. Each
// message is a single text frame holding the trimmed file content.
//
// A per-connection read pump discards client frames and detects disconnects;
// a ping loop keeps idle connections alive. Hub.Run(ctx) blocks until ctx is
// cancelled, then cancels every session so their loops stop. Hub.Shutdown(ctx)
// also waits until every session has sent its close frame; later connections
// are refused with close 1001.
//
// If the file disappears mid-stream the connection is closed with code 1011
// (internal error) instead of being dropped.
package ws
