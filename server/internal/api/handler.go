package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/janktuber/nowplaying/server/internal/metrics"
	"github.com/janktuber/nowplaying/server/internal/status"
)

// ClientCounter reports connected WebSocket clients. *ws.Hub satisfies it.
type ClientCounter interface {
	Count() int
}

// Handler serves the JSON endpoints. Every request reads the file afresh.
type Handler struct {
	reader   *status.Reader
	clients  ClientCounter
	gatherer prometheus.Gatherer
}

// New creates a Handler. clients and g may be nil; health then reports zero.
func New(r *status.Reader, clients ClientCounter, g prometheus.Gatherer) *Handler {
	return &Handler{reader: r, clients: clients, gatherer: g}
}

// --- route handlers ---------------------------------------------------------

// NowPlaying handles GET /now-playing.
func (h *Handler) NowPlaying(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	msg, err := h.reader.Read()
	if err != nil {
		metrics.RecordReadError("http")
		slog.Error("api: read now playing", "err", err)
		jsonErr(w, http.StatusInternalServerError, "now playing unavailable")
		return
	}
	jsonResp(w, http.StatusOK, NowPlayingResponse{Message: msg})
}

// Track handles GET /now-playing/track: the same content split into artist
// and title.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	msg, err := h.reader.Read()
	if err != nil {
		metrics.RecordReadError("http")
		slog.Error("api: read now playing", "err", err)
		jsonErr(w, http.StatusInternalServerError, "now playing unavailable")
		return
	}
	jsonResp(w, http.StatusOK, TrackResponse{Track: status.ParseTrack(msg), Message: msg})
}

// Health handles GET /healthz. It stays 200 while the file is missing so
// orchestrators do not restart the relay over an external writer's gap.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{Status: "ok", File: "ok"}
	if _, err := h.reader.ModTime(); err != nil {
		// The error names the watched path; keep it in the log only.
		slog.Warn("api: health check cannot stat now playing file", "err", err)
		resp.File = "error"
	}
	if h.clients != nil {
		resp.Clients = h.clients.Count()
	}
	if h.gatherer != nil {
		if n, err := metrics.Sum(h.gatherer, metrics.PushesTotalName); err == nil {
			resp.Pushes = n
		}
	}
	jsonResp(w, http.StatusOK, resp)
}

// MethodNotAllowed is the router fallback for unsupported methods.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
}

// NotFound is the router fallback for unknown paths.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	jsonErr(w, http.StatusNotFound, "not found")
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
