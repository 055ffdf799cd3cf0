package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/janktuber/nowplaying/server/internal/api"
	"github.com/janktuber/nowplaying/server/internal/auth"
	"github.com/janktuber/nowplaying/server/internal/config"
	"github.com/janktuber/nowplaying/server/internal/metrics"
)

// New constructs the HTTP handler for the server. hub serves WebSocket
// upgrades on /now-playing; plain GETs on the same path go to a.NowPlaying.
// reg may be nil when metrics are disabled.
func New(cfg config.ServerConfig, a *api.Handler, hub http.Handler, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}
	r.Use(middleware.Recoverer)
	r.Use(observe)
	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	r.Get("/healthz", a.Health)
	if reg != nil && cfg.MetricsEnabled() {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	r.Group(func(g chi.Router) {
		g.Use(auth.APIKeyMiddleware(cfg.Auth.Mode, cfg.Auth.EffectiveHeader(), cfg.Auth.Key()))
		g.Get("/now-playing", func(w http.ResponseWriter, r *http.Request) {
			if websocket.IsWebSocketUpgrade(r) {
				hub.ServeHTTP(w, r)
				return
			}
			a.NowPlaying(w, r)
		})
		g.Get("/now-playing/track", a.Track)
	})

	return r
}

// observe records request durations by route pattern. WebSocket sessions are
// long-lived and tracked by the hub instead.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.ObserveHTTP(route, status, time.Since(start))
	})
}
