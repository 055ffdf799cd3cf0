package api

import "github.com/janktuber/nowplaying/server/internal/status"

// NowPlayingResponse is the payload for GET /now-playing.
type NowPlayingResponse struct {
	Message string `json:"message"`
}

// TrackResponse is the payload for GET /now-playing/track.
type TrackResponse struct {
	status.Track
	Message string `json:"message"`
}

// HealthResponse is the payload for GET /healthz.
type HealthResponse struct {
	Status  string  `json:"status"`
	File    string  `json:"file"`
	Clients int     `json:"clients"`
	Pushes  float64 `json:"pushes"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
