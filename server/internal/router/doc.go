// Package router wires the chi router: CORS, request metrics, API key auth,
// and the dispatch of /now-playing between the JSON handler and the
// WebSocket hub.
package router
