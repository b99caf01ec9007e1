// Package playback tracks the selected episode of a title and resolves what to play.
package playback

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/justchokingaround/cicidraci/internal/store"
	"github.com/justchokingaround/cicidraci/pkg/types"
)

// User-facing messages
const (
	MsgEpisodesFailed = "Failed to load episodes."
	MsgVideoFailed    = "Failed to load video. Please try another episode."
)

// EpisodeSource lists the episodes of a title
type EpisodeSource interface {
	Episodes(ctx context.Context, titleID string) ([]types.Episode, error)
}

// Options configures a Selector
type Options struct {
	// Quality is the preferred vertical resolution, 0 takes the first rendition
	Quality int
	// State persists the last-watched episode. Optional.
	State  *store.ViewState
	Logger *slog.Logger
}

// Selector holds the episode list of one title and the active episode
type Selector struct {
	src     EpisodeSource
	state   *store.ViewState
	quality int
	logger  *slog.Logger

	mu       sync.Mutex
	titleID  string
	episodes []types.Episode
	// current is a position in episodes, -1 when nothing is selected
	current int
	message string
	// gen identifies the latest Load; older results are dropped
	gen uint64
}

// NewSelector creates a Selector over src
func NewSelector(src EpisodeSource, opts Options) *Selector {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Selector{
		src:     src,
		state:   opts.State,
		quality: opts.Quality,
		logger:  opts.Logger.With("component", "playback"),
		current: -1,
	}
}

// Load fetches the episodes of titleID and selects the last-watched one,
// falling back to the first. Loading another title clears the list right
// away; a failed reload of the same title keeps it. A load superseded by a
// later one is discarded.
func (s *Selector) Load(ctx context.Context, titleID string) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if titleID != s.titleID {
		s.titleID = titleID
		s.episodes = nil
		s.current = -1
	}
	s.message = ""
	s.mu.Unlock()

	episodes, err := s.src.Episodes(ctx, titleID)
	if err == nil {
		slices.SortStableFunc(episodes, func(a, b types.Episode) int {
			return a.Index - b.Index
		})
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug("discarding stale episodes", "title", titleID)
		return nil
	}
	if err != nil {
		s.message = MsgEpisodesFailed
		s.mu.Unlock()
		s.logger.Error("failed to load episodes", "title", titleID, "error", err)
		return err
	}

	current := s.initialPosition(titleID, episodes)
	s.episodes = episodes
	s.current = current
	s.mu.Unlock()

	s.logger.Debug("episodes loaded", "title", titleID, "count", len(episodes), "selected", current)

	if current >= 0 {
		s.persist(titleID, episodes[current].Index)
	}
	return nil
}

// initialPosition is the last-watched episode of titleID if it is in
// episodes, otherwise the first one; -1 for an empty list
func (s *Selector) initialPosition(titleID string, episodes []types.Episode) int {
	if len(episodes) == 0 {
		return -1
	}
	if s.state == nil {
		return 0
	}
	last, ok := s.state.LastWatched(titleID)
	if !ok {
		return 0
	}
	if _, i, found := lo.FindIndexOf(episodes, func(ep types.Episode) bool {
		return ep.Index == last
	}); found {
		return i
	}
	return 0
}

// Select makes the episode with id current. Unknown ids are ignored.
func (s *Selector) Select(id string) bool {
	s.mu.Lock()
	_, i, ok := lo.FindIndexOf(s.episodes, func(ep types.Episode) bool { return ep.ID == id })
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.selectAt(i)
	return true
}

// SelectIndex makes the episode with the given ordinal current
func (s *Selector) SelectIndex(ordinal int) bool {
	s.mu.Lock()
	_, i, ok := lo.FindIndexOf(s.episodes, func(ep types.Episode) bool { return ep.Index == ordinal })
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.selectAt(i)
	return true
}

// Next moves to the following episode. It is a no-op at the end of the list.
func (s *Selector) Next() bool {
	return s.step(1)
}

// Prev moves to the preceding episode. It is a no-op at the start of the list.
func (s *Selector) Prev() bool {
	return s.step(-1)
}

func (s *Selector) step(delta int) bool {
	s.mu.Lock()
	target := s.current + delta
	ok := s.current >= 0 && target >= 0 && target < len(s.episodes)
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.selectAt(target)
	return true
}

// selectAt sets the current position and persists it as last watched
// right away, before playback is confirmed.
func (s *Selector) selectAt(i int) {
	s.mu.Lock()
	if i < 0 || i >= len(s.episodes) {
		s.mu.Unlock()
		return
	}
	s.current = i
	s.message = ""
	titleID, ordinal := s.titleID, s.episodes[i].Index
	s.mu.Unlock()

	s.persist(titleID, ordinal)
}

func (s *Selector) persist(titleID string, ordinal int) {
	if s.state == nil {
		return
	}
	if err := s.state.SetLastWatched(titleID, ordinal); err != nil {
		s.logger.Warn("failed to persist last watched episode", "title", titleID, "episode", ordinal, "error", err)
	}
}

// TitleID returns the title whose episodes are loaded
func (s *Selector) TitleID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.titleID
}

// Episodes returns the loaded episodes ordered by ordinal
func (s *Selector) Episodes() []types.Episode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Episode(nil), s.episodes...)
}

// Current returns the active episode
func (s *Selector) Current() (types.Episode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < 0 {
		return types.Episode{}, false
	}
	return s.episodes[s.current], true
}

// Position returns the position of the active episode in Episodes, -1 if none
func (s *Selector) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// HasNext reports whether Next would move
func (s *Selector) HasNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current >= 0 && s.current < len(s.episodes)-1
}

// HasPrev reports whether Prev would move
func (s *Selector) HasPrev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current > 0
}

// URL returns the playable URL of the active episode
func (s *Selector) URL() (string, bool) {
	ep, ok := s.Current()
	if !ok {
		return "", false
	}
	return ResolveURL(ep, s.quality)
}

// ReportPlaybackError records a playback failure without touching the selection
func (s *Selector) ReportPlaybackError(err error) {
	ep, _ := s.Current()
	s.logger.Error("playback failed", "title", s.TitleID(), "episode", ep.Index, "error", err)

	s.mu.Lock()
	s.message = MsgVideoFailed
	s.mu.Unlock()
}

// Message returns the pending user-facing error message, if any
func (s *Selector) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// DismissMessage clears the user-facing error message
func (s *Selector) DismissMessage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = ""
}

// ResolveURL picks the media URL of ep from its first source group: the
// rendition matching quality if there is one, otherwise the first.
// A missing group, rendition or URL yields false.
func ResolveURL(ep types.Episode, quality int) (string, bool) {
	if len(ep.Sources) == 0 || len(ep.Sources[0].Media) == 0 {
		return "", false
	}
	media := ep.Sources[0].Media

	if quality > 0 {
		if m, ok := lo.Find(media, func(m types.MediaSource) bool {
			return m.Quality == quality && m.URL != ""
		}); ok {
			return m.URL, true
		}
	}

	if media[0].URL == "" {
		return "", false
	}
	return media[0].URL, true
}
