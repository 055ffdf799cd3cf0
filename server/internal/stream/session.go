package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Source is the watched file. *status.Reader satisfies it.
type Source interface {
	ModTime() (time.Time, error)
	Read() (string, error)
}

// Conn is the transport side of a session.
type Conn interface {
	// Send writes one text message.
	Send(ctx context.Context, msg string) error
	// Done is closed once the peer has gone away.
	Done() <-chan struct{}
}

// Session is the per-connection state of the push loop. It is owned by the
// goroutine running Run and is not safe for concurrent use.
type Session struct {
	id  string
	src Source

	state    State
	seen     bool
	lastMod  time.Time
	lastSent string
	sent     int
	err      error
}

// NewSession returns a Session in the Connecting state.
func NewSession(id string, src Source) *Session {
	return &Session{id: id, src: src, state: Connecting}
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// State returns the current state.
func (s *Session) State() State { return s.state }

// LastSent returns the content of the last message sent.
func (s *Session) LastSent() string { return s.lastSent }

// Sent returns the number of messages sent so far.
func (s *Session) Sent() int { return s.sent }

// Err returns the error that moved the session to Failed, if any.
func (s *Session) Err() error { return s.err }

// Tick performs one poll. It returns the content to send and true when the
// file's modification time differs from the last observation or nothing has
// been observed yet. Content is not compared: a rewrite with identical text
// and a new timestamp is reported again.
func (s *Session) Tick() (string, bool, error) {
	mod, err := s.src.ModTime()
	if err != nil {
		return "", false, err
	}
	if s.seen && mod.Equal(s.lastMod) {
		return "", false, nil
	}
	content, err := s.src.Read()
	if err != nil {
		return "", false, err
	}
	s.seen = true
	s.lastMod = mod
	return content, true, nil
}

func (s *Session) transition(to State) {
	if s.state == to || s.state.Terminal() {
		return
	}
	slog.Debug("stream: state change", "session", s.id, "from", s.state, "to", to)
	s.state = to
}

// Run drives sess until a terminal state is reached and returns that state.
// A terminal state is never left, so calling Run on a finished session
// returns immediately.
func Run(ctx context.Context, sess *Session, conn Conn, delay Delay) State {
	if sess.state.Terminal() {
		return sess.state
	}
	sess.transition(Streaming)

	for {
		select {
		case <-ctx.Done():
			sess.transition(Cancelled)
			return sess.state
		case <-conn.Done():
			sess.transition(Disconnected)
			return sess.state
		default:
		}

		msg, changed, err := sess.Tick()
		if err != nil {
			sess.err = err
			sess.transition(Failed)
			return sess.state
		}
		if changed {
			if err := conn.Send(ctx, msg); err != nil {
				if ctx.Err() != nil {
					sess.transition(Cancelled)
				} else {
					sess.err = fmt.Errorf("stream: send: %w", err)
					sess.transition(Disconnected)
				}
				return sess.state
			}
			sess.lastSent = msg
			sess.sent++
		}

		if err := delay.Wait(ctx, conn.Done()); err != nil {
			if errors.Is(err, ErrDisconnected) {
				sess.transition(Disconnected)
			} else {
				sess.transition(Cancelled)
			}
			return sess.state
		}
	}
}
