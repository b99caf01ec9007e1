package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/samber/lo"

	"github.com/justchokingaround/cicidraci/pkg/types"
)

// Persisted key layout
const (
	titleKeyPrefix       = "drama_"
	favoriteKeyPrefix    = "favorite_"
	lastWatchedKeyPrefix = "last_watched_"
	recentSearchesKey    = "recent_searches"
)

// TitleKey returns the key of a title snapshot
func TitleKey(id string) string { return titleKeyPrefix + id }

// FavoriteKey returns the key of a title's favorite flag
func FavoriteKey(id string) string { return favoriteKeyPrefix + id }

// LastWatchedKey returns the key of a title's last-watched episode ordinal
func LastWatchedKey(id string) string { return lastWatchedKeyPrefix + id }

// RecentSearchesKey returns the key of the recent search list
func RecentSearchesKey() string { return recentSearchesKey }

// ViewState is typed access to the per-title and search state kept in a KV.
// Unreadable values are logged and treated as absent.
type ViewState struct {
	kv     KV
	logger *slog.Logger
}

// NewViewState wraps kv
func NewViewState(kv KV, logger *slog.Logger) *ViewState {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewState{kv: kv, logger: logger.With("component", "viewstate")}
}

// IsFavorite reports the favorite flag of a title
func (v *ViewState) IsFavorite(id string) bool {
	val, ok, err := v.kv.Get(FavoriteKey(id))
	if err != nil {
		v.logger.Warn("failed to read favorite", "id", id, "error", err)
		return false
	}
	return ok && val == "true"
}

// SetFavorite stores the favorite flag of a title
func (v *ViewState) SetFavorite(id string, favorite bool) error {
	return v.kv.Set(FavoriteKey(id), strconv.FormatBool(favorite))
}

// ToggleFavorite flips the favorite flag and returns the new value
func (v *ViewState) ToggleFavorite(id string) (bool, error) {
	next := !v.IsFavorite(id)
	if err := v.SetFavorite(id, next); err != nil {
		return !next, err
	}
	return next, nil
}

// LastWatched returns the last-watched episode ordinal of a title
func (v *ViewState) LastWatched(id string) (int, bool) {
	val, ok, err := v.kv.Get(LastWatchedKey(id))
	if err != nil {
		v.logger.Warn("failed to read last watched", "id", id, "error", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		v.logger.Warn("ignoring corrupt last watched value", "id", id, "value", val)
		return 0, false
	}
	return n, true
}

// SetLastWatched stores the last-watched episode ordinal of a title
func (v *ViewState) SetLastWatched(id string, ordinal int) error {
	return v.kv.Set(LastWatchedKey(id), strconv.Itoa(ordinal))
}

// RecentSearches returns the persisted recent searches, most recent first
func (v *ViewState) RecentSearches() []string {
	val, ok, err := v.kv.Get(RecentSearchesKey())
	if err != nil {
		v.logger.Warn("failed to read recent searches", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var terms []string
	if err := json.Unmarshal([]byte(val), &terms); err != nil {
		v.logger.Warn("ignoring corrupt recent searches", "error", err)
		return nil
	}
	return terms
}

// SetRecentSearches replaces the persisted recent searches
func (v *ViewState) SetRecentSearches(terms []string) error {
	if terms == nil {
		terms = []string{}
	}
	data, err := json.Marshal(terms)
	if err != nil {
		return fmt.Errorf("encode recent searches: %w", err)
	}
	return v.kv.Set(RecentSearchesKey(), string(data))
}

// ClearRecentSearches removes the persisted recent searches
func (v *ViewState) ClearRecentSearches() error {
	return v.kv.Remove(RecentSearchesKey())
}

// SaveTitle stores a snapshot of a title for the detail view, overwriting older ones
func (v *ViewState) SaveTitle(t types.Title) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode title %s: %w", t.ID, err)
	}
	return v.kv.Set(TitleKey(t.ID), string(data))
}

// Title loads a title snapshot with its favorite flag
func (v *ViewState) Title(id string) (types.Title, bool) {
	val, ok, err := v.kv.Get(TitleKey(id))
	if err != nil {
		v.logger.Warn("failed to read title", "id", id, "error", err)
		return types.Title{}, false
	}
	if !ok {
		return types.Title{}, false
	}
	var t types.Title
	if err := json.Unmarshal([]byte(val), &t); err != nil {
		v.logger.Warn("ignoring corrupt title snapshot", "id", id, "error", err)
		return types.Title{}, false
	}
	t.Favorite = v.IsFavorite(id)
	return t, true
}

// Annotate returns a copy of titles with Favorite resolved from the store
func (v *ViewState) Annotate(titles []types.Title) []types.Title {
	return lo.Map(titles, func(t types.Title, _ int) types.Title {
		t.Favorite = v.IsFavorite(t.ID)
		return t
	})
}
