// Package search keeps the search box state: debounced suggestions,
// recent searches and popular searches.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/justchokingaround/cicidraci/internal/store"
)

const (
	DefaultDebounce        = 300 * time.Millisecond
	DefaultSuggestionLimit = 5
	DefaultRecentLimit     = 5
	DefaultPopularLimit    = 5
)

// Source provides suggestion and popular-search lookups
type Source interface {
	Suggestions(ctx context.Context, query string) ([]string, error)
	PopularSearches(ctx context.Context) ([]string, error)
}

// Options configures an Assistant. Zero values take the defaults.
type Options struct {
	Debounce        time.Duration
	SuggestionLimit int
	RecentLimit     int
	PopularLimit    int

	// State persists recent searches. Optional.
	State *store.ViewState

	// OnSearch runs after a submitted term was recorded
	OnSearch func(term string)
	// OnClear runs after Clear
	OnClear func()
	// OnChange runs whenever suggestions or the loading flag change.
	// It is called from timer goroutines.
	OnChange func()

	Logger *slog.Logger
}

// Assistant is the search box state machine
type Assistant struct {
	src    Source
	opts   Options
	logger *slog.Logger

	mu          sync.Mutex
	query       string
	suggestions []string
	loading     bool
	recent      []string
	popular     []string
	timer       *time.Timer
	onChange    func()
	// gen identifies the latest query; fetches for older ones are discarded
	gen uint64
}

// New creates an Assistant over src
func New(src Source, opts Options) *Assistant {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.SuggestionLimit <= 0 {
		opts.SuggestionLimit = DefaultSuggestionLimit
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = DefaultRecentLimit
	}
	if opts.PopularLimit <= 0 {
		opts.PopularLimit = DefaultPopularLimit
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Assistant{
		src:      src,
		opts:     opts,
		logger:   opts.Logger.With("component", "search"),
		onChange: opts.OnChange,
	}
}

// SetOnChange replaces the change callback
func (a *Assistant) SetOnChange(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = fn
}

// Mount loads persisted recent searches and fetches popular searches once
func (a *Assistant) Mount(ctx context.Context) {
	if a.opts.State != nil {
		recent := a.opts.State.RecentSearches()
		a.mu.Lock()
		a.recent = lo.Subset(recent, 0, uint(a.opts.RecentLimit))
		a.mu.Unlock()
	}

	popular, err := a.src.PopularSearches(ctx)
	if err != nil {
		a.logger.Warn("failed to load popular searches", "error", err)
		return
	}

	a.mu.Lock()
	a.popular = lo.Subset(popular, 0, uint(a.opts.PopularLimit))
	a.mu.Unlock()
	a.notify()
}

// Type records query and schedules a suggestion fetch after the debounce
// window. Each call cancels the previously scheduled fetch.
func (a *Assistant) Type(ctx context.Context, query string) {
	a.mu.Lock()
	a.query = query
	a.gen++
	gen := a.gen
	a.stopTimerLocked()

	if strings.TrimSpace(query) == "" {
		a.suggestions = nil
		a.loading = false
		a.mu.Unlock()
		a.notify()
		return
	}

	a.timer = time.AfterFunc(a.opts.Debounce, func() {
		a.fetchSuggestions(ctx, gen, query)
	})
	a.mu.Unlock()
}

func (a *Assistant) fetchSuggestions(ctx context.Context, gen uint64, query string) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.loading = true
	a.mu.Unlock()
	a.notify()

	suggestions, err := a.src.Suggestions(ctx, query)

	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		a.logger.Debug("discarding stale suggestions", "query", query)
		return
	}
	a.loading = false
	if err != nil {
		a.logger.Warn("failed to fetch suggestions", "query", query, "error", err)
		a.suggestions = nil
	} else {
		a.suggestions = lo.Subset(suggestions, 0, uint(a.opts.SuggestionLimit))
	}
	a.mu.Unlock()
	a.notify()
}

// Submit records term as the most recent search and runs the search callback.
// Blank terms are ignored.
func (a *Assistant) Submit(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}

	a.mu.Lock()
	a.query = term
	a.gen++
	a.stopTimerLocked()
	a.suggestions = nil
	a.loading = false

	recent := append([]string{term}, lo.Without(a.recent, term)...)
	a.recent = lo.Subset(recent, 0, uint(a.opts.RecentLimit))
	recent = append([]string(nil), a.recent...)
	a.mu.Unlock()

	if a.opts.State != nil {
		if err := a.opts.State.SetRecentSearches(recent); err != nil {
			a.logger.Warn("failed to persist recent searches", "error", err)
		}
	}

	a.notify()
	if a.opts.OnSearch != nil {
		a.opts.OnSearch(term)
	}
}

// ClearRecent empties the recent searches, in memory and persisted
func (a *Assistant) ClearRecent() {
	a.mu.Lock()
	a.recent = nil
	a.mu.Unlock()

	if a.opts.State != nil {
		if err := a.opts.State.ClearRecentSearches(); err != nil {
			a.logger.Warn("failed to clear recent searches", "error", err)
		}
	}
	a.notify()
}

// Clear empties the query and suggestions and cancels pending fetches
func (a *Assistant) Clear() {
	a.mu.Lock()
	a.query = ""
	a.gen++
	a.stopTimerLocked()
	a.suggestions = nil
	a.loading = false
	a.mu.Unlock()

	a.notify()
	if a.opts.OnClear != nil {
		a.opts.OnClear()
	}
}

// Close stops a pending suggestion fetch
func (a *Assistant) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	a.stopTimerLocked()
}

func (a *Assistant) stopTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Assistant) notify() {
	a.mu.Lock()
	fn := a.onChange
	a.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Query returns the current query
func (a *Assistant) Query() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.query
}

// Suggestions returns the suggestions for the latest query
func (a *Assistant) Suggestions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.suggestions...)
}

// Recent returns the recent searches, most recent first
func (a *Assistant) Recent() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.recent...)
}

// Popular returns the popular searches
func (a *Assistant) Popular() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.popular...)
}

// Loading reports whether a suggestion fetch is in flight
func (a *Assistant) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// PopularVisible reports whether popular searches should be shown
func (a *Assistant) PopularVisible() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.query == "" && !a.loading
}
