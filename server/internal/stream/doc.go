// Package stream implements the change-watch push loop that backs the
// /now-playing WebSocket.
//
// A Session holds one connection's state: the last observed modification
// time, the last content sent and the current State. Session.Tick performs
// one poll with no transport involved, so the change rule can be tested on
// its own: content is read and returned only when the modification time
// differs from the last one seen, or on the first poll.
//
// Run drives a Session against a Conn until the client goes away
// (Disconnected), the context is cancelled (Cancelled) or the file cannot be
// read (Failed). Between polls it waits on a Delay; TimerDelay waits for the
// poll interval and returns early on cancellation, disconnect or a wake
// signal.
//
//	Connecting -> Streaming -> Disconnected | Cancelled | Failed
package stream
