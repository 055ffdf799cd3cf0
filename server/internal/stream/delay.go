package stream

import (
	"context"
	"errors"
	"time"
)

// ErrDisconnected is returned by Delay.Wait when the connection's done
// channel closes during the wait.
var ErrDisconnected = errors.New("stream: connection closed")

// Delay suspends the loop between polls.
//
// Wait returns nil when the next poll should run, ErrDisconnected when done
// is closed, or ctx.Err() when ctx is cancelled.
type Delay interface {
	Wait(ctx context.Context, done <-chan struct{}) error
}

// TimerDelay waits for Interval. A receive on Wake ends the wait early, at
// most once per Interval: a wake that arrives sooner than Interval after the
// previous early return only shortens the wait to the remainder of that
// window. A nil Wake channel never fires.
//
// TimerDelay keeps state between calls; use one per session.
type TimerDelay struct {
	Interval time.Duration
	Wake     <-chan struct{}

	lastWake time.Time
}

// Wait implements Delay.
func (d *TimerDelay) Wait(ctx context.Context, done <-chan struct{}) error {
	t := time.NewTimer(d.Interval)
	defer t.Stop()

	wake := d.Wake
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return ErrDisconnected
		case <-t.C:
			return nil
		case <-wake:
			now := time.Now()
			if d.lastWake.IsZero() || now.Sub(d.lastWake) >= d.Interval {
				d.lastWake = now
				return nil
			}
			// Rate limited: poll when the window closes, ignoring further wakes.
			remaining := d.Interval - now.Sub(d.lastWake)
			t.Reset(remaining)
			d.lastWake = d.lastWake.Add(d.Interval)
			wake = nil
		}
	}
}
