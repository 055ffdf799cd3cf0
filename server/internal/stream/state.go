package stream

// State is the lifecycle position of a Session.
type State int

const (
	// Connecting is the state of a freshly created session.
	Connecting State = iota
	// Streaming means the poll loop is running.
	Streaming
	// Disconnected means the client closed the connection.
	Disconnected
	// Cancelled means the surrounding context was cancelled, e.g. on shutdown.
	Cancelled
	// Failed means the watched file could not be stat'ed or read.
	Failed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case Disconnected:
		return "disconnected"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == Disconnected || s == Cancelled || s == Failed
}
