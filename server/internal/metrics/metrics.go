package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metric names referenced outside this package.
const (
	PushesTotalName = "nowplaying_ws_messages_sent_total"
)

var (
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nowplaying_ws_sessions",
			Help: "Currently open WebSocket sessions",
		},
	)

	sessionsEnded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nowplaying_ws_sessions_ended_total",
			Help: "WebSocket sessions that reached a terminal state",
		},
		[]string{"state"},
	)

	pushes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: PushesTotalName,
			Help: "Status messages pushed to WebSocket clients",
		},
	)

	readErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nowplaying_read_errors_total",
			Help: "Failed reads of the now playing file",
		},
		[]string{"source"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nowplaying_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "code"},
	)
)

// Register registers all collectors with r.
func Register(r prometheus.Registerer) {
	r.MustRegister(activeSessions, sessionsEnded, pushes, readErrors, httpDuration)
}

// SessionOpened increments the open session gauge.
func SessionOpened() {
	activeSessions.Inc()
}

// SessionClosed decrements the open session gauge and counts the terminal state.
func SessionClosed(state string) {
	activeSessions.Dec()
	sessionsEnded.WithLabelValues(state).Inc()
}

// RecordPush counts one message sent to a client.
func RecordPush() {
	pushes.Inc()
}

// RecordReadError counts a failed read; source is "http" or "ws".
func RecordReadError(source string) {
	readErrors.WithLabelValues(source).Inc()
}

// ObserveHTTP records the duration of one HTTP request.
func ObserveHTTP(route string, code int, d time.Duration) {
	httpDuration.WithLabelValues(route, strconv.Itoa(code)).Observe(d.Seconds())
}

// Sum gathers from g and adds up every counter, gauge, or untyped sample of
// the family called name. It returns 0 when the family is absent.
func Sum(g prometheus.Gatherer, name string) (float64, error) {
	mfs, err := g.Gather()
	if err != nil {
		return 0, err
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return sumFamily(mf), nil
		}
	}
	return 0, nil
}

func sumFamily(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		case m.Untyped != nil:
			total += m.Untyped.GetValue()
		}
	}
	return total
}
