// Package metrics holds the Prometheus collectors for the relay: open
// WebSocket sessions, terminal states, pushed messages, file read failures
// and HTTP request durations. Register attaches them to a registry; Sum reads
// a family back for the health endpoint.
package metrics
