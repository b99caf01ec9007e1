// Package catalog turns feed pages into a de-duplicated, paginated title list.
package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/justchokingaround/cicidraci/internal/store"
	"github.com/justchokingaround/cicidraci/pkg/types"
)

// DefaultPageSize is the nominal page size of the feed endpoints. A shorter
// page is read as the last one; this breaks silently if the API changes it.
const DefaultPageSize = 9

// User-facing messages
const (
	MsgLoadFailed   = "Failed to load dramas. Please check your connection."
	MsgSearchFailed = "Search failed. Please try again."
)

// FeedSource is the part of the API the aggregator needs
type FeedSource interface {
	Feed(ctx context.Context, category types.Category, page int) (types.FeedPage, error)
	Search(ctx context.Context, query string) ([]types.Title, error)
}

// Options configures an Aggregator
type Options struct {
	PageSize int
	// State resolves favorites and stores opened titles. Optional.
	State  *store.ViewState
	Logger *slog.Logger
}

// Aggregator holds the browse state of the home screen: the active category,
// its accumulated titles and pagination cursor, plus search results.
type Aggregator struct {
	src      FeedSource
	state    *store.ViewState
	pageSize int
	logger   *slog.Logger

	mu       sync.Mutex
	category types.Category
	page     int
	titles   []types.Title
	hasMore  bool
	loading  bool
	message  string
	// gen invalidates in-flight fetches when the category changes or refreshes
	gen uint64

	searching bool
	query     string
	results   []types.Title
	searchGen uint64
}

// New creates an Aggregator over src
func New(src FeedSource, opts Options) *Aggregator {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Aggregator{
		src:      src,
		state:    opts.State,
		pageSize: opts.PageSize,
		logger:   opts.Logger.With("component", "catalog"),
		category: types.CategoryForYou,
		hasMore:  true,
	}
}

// Load switches to category and fetches its first page
func (a *Aggregator) Load(ctx context.Context, category types.Category) error {
	a.mu.Lock()
	a.category = category
	gen := a.resetLocked()
	a.mu.Unlock()

	return a.fetch(ctx, gen, category, 1)
}

// Refresh re-fetches the first page of the active category
func (a *Aggregator) Refresh(ctx context.Context) error {
	a.mu.Lock()
	category := a.category
	gen := a.resetLocked()
	a.mu.Unlock()

	return a.fetch(ctx, gen, category, 1)
}

// LoadMore fetches the next page. It is a no-op when the end was reached,
// a fetch is in flight, or the combined category is active.
func (a *Aggregator) LoadMore(ctx context.Context) error {
	a.mu.Lock()
	if !a.hasMore || a.loading || a.category == types.CategoryAll {
		a.mu.Unlock()
		return nil
	}
	category, next, gen := a.category, a.page+1, a.gen
	a.loading = true
	a.mu.Unlock()

	return a.fetch(ctx, gen, category, next)
}

func (a *Aggregator) resetLocked() uint64 {
	a.gen++
	a.page = 1
	a.hasMore = true
	a.loading = true
	a.message = ""
	return a.gen
}

func (a *Aggregator) fetch(ctx context.Context, gen uint64, category types.Category, page int) error {
	if category == types.CategoryAll {
		a.fetchCombined(ctx, gen)
		return nil
	}
	return a.fetchPage(ctx, gen, category, page)
}

func (a *Aggregator) fetchPage(ctx context.Context, gen uint64, category types.Category, page int) error {
	feed, err := a.src.Feed(ctx, category, page)
	titles := feed.Titles

	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen {
		a.logger.Debug("discarding stale page", "category", category, "page", page)
		return nil
	}
	a.loading = false

	if err != nil {
		a.logger.Error("failed to load feed", "category", category, "page", page, "error", err)
		a.titles = nil
		a.hasMore = false
		a.message = MsgLoadFailed
		return err
	}

	if feed.Received == 0 {
		a.hasMore = false
		if page == 1 {
			a.titles = nil
		}
		return nil
	}

	if page == 1 {
		a.titles = lo.UniqBy(titles, titleID)
	} else {
		a.titles = appendNew(a.titles, titles)
	}
	a.page = page

	// rows dropped while decoding still count towards a full page
	if feed.Received < a.pageSize {
		a.hasMore = false
	}

	a.logger.Debug("feed page loaded",
		"category", category,
		"page", page,
		"received", feed.Received,
		"kept", len(titles),
		"total", len(a.titles),
		"has_more", a.hasMore)
	return nil
}

// fetchCombined fetches every feed in parallel. A failing feed contributes
// nothing; the aggregate never fails.
func (a *Aggregator) fetchCombined(ctx context.Context, gen uint64) {
	batch := uuid.NewString()
	categories := types.CombinedCategories
	results := make([][]types.Title, len(categories))

	var g errgroup.Group
	for i, category := range categories {
		g.Go(func() error {
			feed, err := a.src.Feed(ctx, category, 0)
			if err != nil {
				a.logger.Warn("feed failed in combined load", "batch", batch, "category", category, "error", err)
				return nil
			}
			results[i] = feed.Titles
			return nil
		})
	}
	_ = g.Wait()

	merged := mergeLastWins(results...)

	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen {
		return
	}
	a.loading = false
	a.titles = merged
	a.hasMore = false
	a.page = 1

	a.logger.Debug("combined load finished", "batch", batch, "total", len(merged))
}

// Search fetches results for query. A blank query leaves search mode.
func (a *Aggregator) Search(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		a.ClearSearch()
		return nil
	}

	a.mu.Lock()
	a.searchGen++
	gen := a.searchGen
	a.searching = true
	a.query = query
	a.message = ""
	a.mu.Unlock()

	titles, err := a.src.Search(ctx, query)

	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.searchGen {
		return nil
	}
	if err != nil {
		a.logger.Error("search failed", "query", query, "error", err)
		a.results = nil
		a.message = MsgSearchFailed
		return err
	}
	a.results = lo.UniqBy(titles, titleID)
	return nil
}

// ClearSearch leaves search mode and clears results and the message
func (a *Aggregator) ClearSearch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.searchGen++
	a.searching = false
	a.query = ""
	a.results = nil
	a.message = ""
}

// Open returns a visible title by id and stores a snapshot of it for the detail view
func (a *Aggregator) Open(id string) (types.Title, bool) {
	a.mu.Lock()
	t, ok := lo.Find(append(append([]types.Title{}, a.results...), a.titles...), func(t types.Title) bool {
		return t.ID == id
	})
	a.mu.Unlock()

	if !ok {
		return types.Title{}, false
	}
	if a.state != nil {
		if err := a.state.SaveTitle(t); err != nil {
			a.logger.Warn("failed to save title snapshot", "id", id, "error", err)
		}
		t.Favorite = a.state.IsFavorite(id)
	}
	return t, true
}

// Titles returns the accumulated titles of the active category
func (a *Aggregator) Titles() []types.Title {
	a.mu.Lock()
	titles := append([]types.Title(nil), a.titles...)
	a.mu.Unlock()
	return a.annotate(titles)
}

// SearchResults returns the latest search results
func (a *Aggregator) SearchResults() []types.Title {
	a.mu.Lock()
	results := append([]types.Title(nil), a.results...)
	a.mu.Unlock()
	return a.annotate(results)
}

// Visible returns search results in search mode and the category titles otherwise
func (a *Aggregator) Visible() []types.Title {
	if a.Searching() {
		return a.SearchResults()
	}
	return a.Titles()
}

func (a *Aggregator) annotate(titles []types.Title) []types.Title {
	if a.state == nil {
		return titles
	}
	return a.state.Annotate(titles)
}

// Category returns the active category
func (a *Aggregator) Category() types.Category {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.category
}

// Page returns the last loaded page
func (a *Aggregator) Page() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page
}

// HasMore reports whether LoadMore may return more titles
func (a *Aggregator) HasMore() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hasMore
}

// Loading reports whether a category fetch is in flight
func (a *Aggregator) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// Searching reports whether search mode is active
func (a *Aggregator) Searching() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.searching
}

// Query returns the active search query
func (a *Aggregator) Query() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.query
}

// Message returns the pending user-facing error message, if any
func (a *Aggregator) Message() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.message
}

// DismissMessage clears the user-facing error message
func (a *Aggregator) DismissMessage() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.message = ""
}

func titleID(t types.Title) string { return t.ID }

// appendNew appends the titles of page whose id is not in acc yet, keeping arrival order
func appendNew(acc, page []types.Title) []types.Title {
	seen := lo.SliceToMap(acc, func(t types.Title) (string, struct{}) {
		return t.ID, struct{}{}
	})
	for _, t := range page {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		acc = append(acc, t)
	}
	return acc
}

// mergeLastWins merges lists by id. A later duplicate replaces the earlier
// value in place, so the position is that of the first occurrence.
func mergeLastWins(lists ...[]types.Title) []types.Title {
	index := make(map[string]int)
	var merged []types.Title
	for _, list := range lists {
		for _, t := range list {
			if t.ID == "" {
				continue
			}
			if i, ok := index[t.ID]; ok {
				merged[i] = t
				continue
			}
			index[t.ID] = len(merged)
			merged = append(merged, t)
		}
	}
	return merged
}
