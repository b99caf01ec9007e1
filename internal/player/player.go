package player

import (
	"context"
	"time"
)

// Player plays a single media URL at a time and reports its lifecycle on Events
type Player interface {
	// Load replaces any current playback with url. It returns once the
	// player process started; readiness and failures arrive as events.
	Load(ctx context.Context, url string, options PlayOptions) error
	Stop(ctx context.Context) error
	Events() <-chan Event
}

// PlayOptions contains options for starting playback
type PlayOptions struct {
	Title      string        `json:"title,omitempty"`
	StartTime  time.Duration `json:"start_time,omitempty"`
	Fullscreen bool          `json:"fullscreen"`

	// Headers for HTTP requests
	Referer   string `json:"referer,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`

	// mpv-specific options
	MPVArgs []string `json:"mpv_args,omitempty"`
}

// EventKind is the kind of a player lifecycle event
type EventKind int

const (
	EventLoading EventKind = iota
	EventReady
	EventError
	EventEnded
)

func (k EventKind) String() string {
	switch k {
	case EventLoading:
		return "loading"
	case EventReady:
		return "ready"
	case EventError:
		return "error"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Event is emitted by a Player. Err is set for EventError.
type Event struct {
	Kind EventKind
	Err  error
}
