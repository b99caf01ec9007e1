package playback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/justchokingaround/cicidraci/internal/player"
)

// State is the playback state of a Session
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateNoMedia
	StateError
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateNoMedia:
		return "no media"
	case StateError:
		return "error"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Session plays the current episode of a Selector on a Player
type Session struct {
	sel     *Selector
	player  player.Player
	options player.PlayOptions
	logger  *slog.Logger

	mu       sync.Mutex
	state    State
	onChange func(State)
}

// NewSession binds sel to p. options are applied to every load.
func NewSession(sel *Selector, p player.Player, options player.PlayOptions, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		sel:     sel,
		player:  p,
		options: options,
		logger:  logger.With("component", "session"),
	}
}

// OnChange registers a callback invoked on every state change
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// PlayCurrent loads the current episode into the player. Without a playable
// URL the player is not called and the state becomes StateNoMedia.
func (s *Session) PlayCurrent(ctx context.Context, title string) error {
	url, ok := s.sel.URL()
	if !ok {
		s.setState(StateNoMedia)
		return nil
	}

	opts := s.options
	if ep, ok := s.sel.Current(); ok && title != "" {
		opts.Title = fmt.Sprintf("%s - %s", title, episodeLabel(ep.Name, ep.Index))
	}

	s.setState(StateLoading)
	if err := s.player.Load(ctx, url, opts); err != nil {
		s.sel.ReportPlaybackError(err)
		s.setState(StateError)
		return err
	}
	return nil
}

// Stop stops the player
func (s *Session) Stop(ctx context.Context) error {
	err := s.player.Stop(ctx)
	s.setState(StateIdle)
	return err
}

// Run applies player events until ctx is done or the event channel closes
func (s *Session) Run(ctx context.Context) {
	events := s.player.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.Handle(ev)
		}
	}
}

// Handle applies a single player event
func (s *Session) Handle(ev player.Event) {
	s.logger.Debug("player event", "kind", ev.Kind)

	switch ev.Kind {
	case player.EventLoading:
		s.setState(StateLoading)
	case player.EventReady:
		s.setState(StateReady)
	case player.EventError:
		s.sel.ReportPlaybackError(ev.Err)
		s.setState(StateError)
	case player.EventEnded:
		s.setState(StateEnded)
	}
}

// State returns the current playback state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(state)
	}
}

func episodeLabel(name string, index int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("Episode %d", index+1)
}
