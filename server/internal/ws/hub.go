package ws

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/janktuber/nowplaying/server/internal/metrics"
	"github.com/janktuber/nowplaying/server/internal/stream"
	"github.com/janktuber/nowplaying/server/internal/watch"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxReadSize caps frames from clients, which are read only to be discarded.
	maxReadSize = 512
)

// Options configures a Hub.
type Options struct {
	// Interval is the wait between modification-time polls.
	Interval time.Duration

	// Notifier, when set, wakes sessions early on file writes.
	Notifier *watch.Notifier

	// AllowedOrigins restricts the handshake Origin header. Empty allows all.
	AllowedOrigins []string
}

// Hub accepts WebSocket connections and runs one push loop per connection.
type Hub struct {
	src      stream.Source
	interval time.Duration
	notifier *watch.Notifier
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// client represents one connected WebSocket client. It implements stream.Conn.
type client struct {
	id     string
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Hub that serves src.
func New(src stream.Source, opts Options) *Hub {
	h := &Hub{
		src:      src,
		interval: opts.Interval,
		notifier: opts.Notifier,
		clients:  make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     checkOrigin(opts.AllowedOrigins),
	}
	return h
}

// Run blocks until ctx is cancelled, then cancels every active session so
// their loops end in the Cancelled state.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Shutdown cancels every active session and waits until each one has sent its
// close frame and returned. Sessions arriving afterwards are refused with 1001.
// Hijacked connections are invisible to http.Server.Shutdown, so callers wait
// here before exiting. Returns ctx.Err() if the sessions do not finish in time.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.closeAll()

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeHTTP upgrades the HTTP connection to WebSocket and runs the push loop
// for it. Blocks until the loop reaches a terminal state.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &client{
		id:     uuid.NewString(),
		conn:   conn,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	if !h.register(c) {
		c.closeWith(websocket.CloseGoingAway, "server shutting down")
		conn.Close()
		return
	}
	defer h.unregister(c)

	metrics.SessionOpened()
	log := slog.With("session", c.id, "remote_addr", r.RemoteAddr)
	log.Info("ws: client connected")

	go c.readPump()
	go c.pingLoop(ctx)

	var wake <-chan struct{}
	if h.notifier != nil {
		ch, unsubscribe := h.notifier.Subscribe()
		defer unsubscribe()
		wake = ch
	}

	sess := stream.NewSession(c.id, h.src)
	state := stream.Run(ctx, sess, c, &stream.TimerDelay{Interval: h.interval, Wake: wake})

	switch state {
	case stream.Failed:
		metrics.RecordReadError("ws")
		log.Error("ws: status file unavailable, closing", "err", sess.Err(), "sent", sess.Sent())
		c.closeWith(websocket.CloseInternalServerErr, "status unavailable")
	case stream.Cancelled:
		log.Error("ws: session cancelled", "sent", sess.Sent())
		c.closeWith(websocket.CloseGoingAway, "server shutting down")
	default:
		log.Error("ws: client disconnected", "sent", sess.Sent())
	}
	conn.Close()
	metrics.SessionClosed(state.String())
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

// register adds c unless the hub is closed. wg.Add happens under mu so it
// never races with the Wait in Shutdown.
func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.wg.Add(1)
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	h.wg.Done()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		c.cancel()
	}
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// Send writes msg as one text frame.
func (c *client) Send(_ context.Context, msg string) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		return err
	}
	metrics.RecordPush()
	return nil
}

// Done is closed when readPump sees the connection end.
func (c *client) Done() <-chan struct{} { return c.done }

func (c *client) closeWith(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout)) //nolint:errcheck
}

// readPump reads frames from the connection to process control messages (pong,
// close) and detect disconnects. Data frames are discarded. It closes c.done
// when the connection ends.
func (c *client) readPump() {
	defer close(c.done)
	c.conn.SetReadLimit(maxReadSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// pingLoop sends periodic ping frames until ctx is cancelled or the
// connection ends. WriteControl is safe alongside the loop's writes.
func (c *client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
