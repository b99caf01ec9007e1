package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justchokingaround/cicidraci/internal/store"
	"github.com/justchokingaround/cicidraci/pkg/types"
)

type pageKey struct {
	category types.Category
	page     int
}

type fakeSource struct {
	mu        sync.Mutex
	pages     map[pageKey][]types.Title
	errs      map[pageKey]error
	results   map[string][]types.Title
	calls     []pageKey
	// received overrides the raw item count of a page
	received  map[pageKey]int
	searches  int
	searchErr error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pages:   make(map[pageKey][]types.Title),
		errs:     make(map[pageKey]error),
		received: make(map[pageKey]int),
		results:  make(map[string][]types.Title),
	}
}

func (f *fakeSource) Feed(_ context.Context, category types.Category, page int) (types.FeedPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pageKey{category, page}
	f.calls = append(f.calls, key)
	if err := f.errs[key]; err != nil {
		return types.FeedPage{}, err
	}
	received, ok := f.received[key]
	if !ok {
		received = len(f.pages[key])
	}
	return types.FeedPage{Titles: f.pages[key], Received: received}, nil
}

func (f *fakeSource) Search(_ context.Context, query string) ([]types.Title, error) {
	f.mu.Lock()
	f.searches++
	f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results[query], nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func titles(ids ...string) []types.Title {
	out := make([]types.Title, len(ids))
	for i, id := range ids {
		out[i] = types.Title{ID: id, Name: "Drama " + id}
	}
	return out
}

func rangeTitles(from, n int) []types.Title {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprint(from + i)
	}
	return titles(ids...)
}

func ids(ts []types.Title) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestAggregator_Load(t *testing.T) {
	src := newFakeSource()
	src.pages[pageKey{types.CategoryLatest, 1}] = rangeTitles(1, 9)

	agg := New(src, Options{})
	require.NoError(t, agg.Load(context.Background(), types.CategoryLatest))

	assert.Len(t, agg.Titles(), 9)
	assert.Equal(t, 1, agg.Page())
	assert.True(t, agg.HasMore())
	assert.False(t, agg.Loading())
	assert.Equal(t, types.CategoryLatest, agg.Category())
	assert.Empty(t, agg.Message())
}

func TestAggregator_LoadMore(t *testing.T) {
	t.Run("appends only new ids", func(t *testing.T) {
		src := newFakeSource()
		src.pages[pageKey{types.CategoryTrending, 1}] = rangeTitles(1, 9)
		// 7, 8, 9 repeat from page 1
		src.pages[pageKey{types.CategoryTrending, 2}] = rangeTitles(7, 9)

		agg := New(src, Options{})
		ctx := context.Background()
		require.NoError(t, agg.Load(ctx, types.CategoryTrending))
		require.NoError(t, agg.LoadMore(ctx))

		got := agg.Titles()
		assert.Len(t, got, 15)
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, "15", got[14].ID)
		assert.Equal(t, 2, agg.Page())
		assert.True(t, agg.HasMore())
	})

	t.Run("short page ends pagination", func(t *testing.T) {
		src := newFakeSource()
		src.pages[pageKey{types.CategoryTrending, 1}] = rangeTitles(1, 9)
		src.pages[pageKey{types.CategoryTrending, 2}] = rangeTitles(10, 4)

		agg := New(src, Options{})
		ctx := context.Background()
		require.NoError(t, agg.Load(ctx, types.CategoryTrending))
		require.NoError(t, agg.LoadMore(ctx))

		assert.Len(t, agg.Titles(), 13)
		assert.False(t, agg.HasMore())

		calls := src.callCount()
		require.NoError(t, agg.LoadMore(ctx))
		assert.Equal(t, calls, src.callCount(), "no request after the last page")
	})

	t.Run("full page with dropped rows keeps paginating", func(t *testing.T) {
		src := newFakeSource()
		first := pageKey{types.CategoryTrending, 1}
		src.pages[first] = rangeTitles(1, 8)
		src.received[first] = 9
		src.pages[pageKey{types.CategoryTrending, 2}] = rangeTitles(9, 9)

		agg := New(src, Options{})
		ctx := context.Background()
		require.NoError(t, agg.Load(ctx, types.CategoryTrending))
		assert.Len(t, agg.Titles(), 8)
		assert.True(t, agg.HasMore())

		require.NoError(t, agg.LoadMore(ctx))
		assert.Len(t, agg.Titles(), 17)
		assert.Equal(t, 2, agg.Page())
	})

	t.Run("page of undecodable rows is not the end", func(t *testing.T) {
		src := newFakeSource()
		src.pages[pageKey{types.CategoryTrending, 1}] = rangeTitles(1, 9)
		second := pageKey{types.CategoryTrending, 2}
		src.received[second] = 9

		agg := New(src, Options{})
		ctx := context.Background()
		require.NoError(t, agg.Load(ctx, types.CategoryTrending))
		require.NoError(t, agg.LoadMore(ctx))

		assert.Len(t, agg.Titles(), 9)
		assert.Equal(t, 2, agg.Page())
		assert.True(t, agg.HasMore())
	})

	t.Run("empty page ends pagination and keeps titles", func(t *testing.T) {
		src := newFakeSource()
		src.pages[pageKey{types.CategoryTrending, 1}] = rangeTitles(1, 9)

		agg := New(src, Options{})
		ctx := context.Background()
		require.NoError(t, agg.Load(ctx, types.CategoryTrending))
		require.NoError(t, agg.LoadMore(ctx))

		assert.Len(t, agg.Titles(), 9)
		assert.False(t, agg.HasMore())
		assert.Equal(t, 1, agg.Page())
	})

	t.Run("combined category never paginates", func(t *testing.T) {
		src := newFakeSource()
		agg := New(src, Options{})
		ctx := context.Background()
		require.NoError(t, agg.Load(ctx, types.CategoryAll))

		calls := src.callCount()
		require.NoError(t, agg.LoadMore(ctx))
		assert.Equal(t, calls, src.callCount())
	})
}

func TestAggregator_EmptyFirstPage(t *testing.T) {
	src := newFakeSource()
	src.pages[pageKey{types.CategoryLatest, 1}] = rangeTitles(1, 9)

	agg := New(src, Options{})
	ctx := context.Background()
	require.NoError(t, agg.Load(ctx, types.CategoryLatest))
	require.NoError(t, agg.Load(ctx, types.CategoryForYou))

	assert.Empty(t, agg.Titles())
	assert.False(t, agg.HasMore())
}

func TestAggregator_LoadFailure(t *testing.T) {
	src := newFakeSource()
	src.pages[pageKey{types.CategoryLatest, 1}] = rangeTitles(1, 9)
	src.errs[pageKey{types.CategoryTrending, 1}] = errors.New("connection refused")

	agg := New(src, Options{})
	ctx := context.Background()
	require.NoError(t, agg.Load(ctx, types.CategoryLatest))

	err := agg.Load(ctx, types.CategoryTrending)
	require.Error(t, err)
	assert.Empty(t, agg.Titles())
	assert.False(t, agg.HasMore())
	assert.False(t, agg.Loading())
	assert.Equal(t, MsgLoadFailed, agg.Message())

	agg.DismissMessage()
	assert.Empty(t, agg.Message())
}

func TestAggregator_Refresh(t *testing.T) {
	src := newFakeSource()
	src.pages[pageKey{types.CategoryLatest, 1}] = rangeTitles(1, 9)
	src.pages[pageKey{types.CategoryLatest, 2}] = rangeTitles(10, 9)

	agg := New(src, Options{})
	ctx := context.Background()
	require.NoError(t, agg.Load(ctx, types.CategoryLatest))
	require.NoError(t, agg.LoadMore(ctx))
	require.Len(t, agg.Titles(), 18)

	src.pages[pageKey{types.CategoryLatest, 1}] = rangeTitles(100, 9)
	require.NoError(t, agg.Refresh(ctx))

	assert.Equal(t, ids(rangeTitles(100, 9)), ids(agg.Titles()))
	assert.Equal(t, 1, agg.Page())
	assert.True(t, agg.HasMore())
}

func TestAggregator_Combined(t *testing.T) {
	t.Run("merges feeds by id", func(t *testing.T) {
		src := newFakeSource()
		src.pages[pageKey{types.CategoryForYou, 0}] = titles("1", "2")
		src.pages[pageKey{types.CategoryTrending, 0}] = titles("2", "3")
		src.pages[pageKey{types.CategoryLatest, 0}] = titles("4")

		agg := New(src, Options{})
		require.NoError(t, agg.Load(context.Background(), types.CategoryAll))

		assert.ElementsMatch(t, []string{"1", "2", "3", "4"}, ids(agg.Titles()))
		assert.False(t, agg.HasMore())
		assert.Len(t, src.calls, len(types.CombinedCategories))
	})

	t.Run("failing feeds contribute nothing", func(t *testing.T) {
		src := newFakeSource()
		src.pages[pageKey{types.CategoryForYou, 0}] = titles("1", "2")
		src.pages[pageKey{types.CategoryTrending, 0}] = titles("3")
		src.errs[pageKey{types.CategoryLatest, 0}] = errors.New("boom")
		src.errs[pageKey{types.CategoryPopularSearch, 0}] = errors.New("boom")
		src.errs[pageKey{types.CategoryRandom, 0}] = errors.New("boom")

		agg := New(src, Options{})
		require.NoError(t, agg.Load(context.Background(), types.CategoryAll))

		assert.ElementsMatch(t, []string{"1", "2", "3"}, ids(agg.Titles()))
		assert.Empty(t, agg.Message())
	})

	t.Run("all feeds failing yields empty list", func(t *testing.T) {
		src := newFakeSource()
		for _, c := range types.CombinedCategories {
			src.errs[pageKey{c, 0}] = errors.New("boom")
		}

		agg := New(src, Options{})
		require.NoError(t, agg.Load(context.Background(), types.CategoryAll))
		assert.Empty(t, agg.Titles())
		assert.Empty(t, agg.Message())
	})
}

func TestMergeLastWins(t *testing.T) {
	first := []types.Title{{ID: "1", Name: "old"}, {ID: "2", Name: "two"}}
	second := []types.Title{{ID: "3", Name: "three"}, {ID: "1", Name: "new"}}

	merged := mergeLastWins(first, second)
	require.Len(t, merged, 3)
	assert.Equal(t, []string{"1", "2", "3"}, ids(merged))
	assert.Equal(t, "new", merged[0].Name)
}

func TestAggregator_Search(t *testing.T) {
	src := newFakeSource()
	src.pages[pageKey{types.CategoryForYou, 1}] = rangeTitles(1, 9)
	src.results["ceo"] = titles("50", "51", "50")

	agg := New(src, Options{})
	ctx := context.Background()
	require.NoError(t, agg.Load(ctx, types.CategoryForYou))

	require.NoError(t, agg.Search(ctx, "ceo"))
	assert.True(t, agg.Searching())
	assert.Equal(t, "ceo", agg.Query())
	assert.Equal(t, []string{"50", "51"}, ids(agg.SearchResults()))
	assert.Equal(t, []string{"50", "51"}, ids(agg.Visible()))
	assert.Len(t, agg.Titles(), 9, "category list is untouched")

	agg.ClearSearch()
	assert.False(t, agg.Searching())
	assert.Empty(t, agg.SearchResults())
	assert.Len(t, agg.Visible(), 9)

	t.Run("blank query leaves search mode", func(t *testing.T) {
		require.NoError(t, agg.Search(ctx, "ceo"))
		searches := src.searches
		require.NoError(t, agg.Search(ctx, "   "))
		assert.False(t, agg.Searching())
		assert.Equal(t, searches, src.searches)
	})

	t.Run("failure sets message", func(t *testing.T) {
		src.searchErr = errors.New("timeout")
		require.Error(t, agg.Search(ctx, "ceo"))
		assert.Empty(t, agg.SearchResults())
		assert.Equal(t, MsgSearchFailed, agg.Message())
		assert.True(t, agg.Searching())
	})
}

func TestAggregator_Favorites(t *testing.T) {
	src := newFakeSource()
	src.pages[pageKey{types.CategoryForYou, 1}] = titles("1", "2")

	kv := store.NewMemory()
	state := store.NewViewState(kv, nil)
	require.NoError(t, state.SetFavorite("2", true))

	agg := New(src, Options{State: state})
	require.NoError(t, agg.Load(context.Background(), types.CategoryForYou))

	got := agg.Titles()
	assert.False(t, got[0].Favorite)
	assert.True(t, got[1].Favorite)

	title, ok := agg.Open("2")
	require.True(t, ok)
	assert.True(t, title.Favorite)

	saved, ok := state.Title("2")
	require.True(t, ok)
	assert.Equal(t, "Drama 2", saved.Name)

	_, ok = agg.Open("missing")
	assert.False(t, ok)
}

func TestFilterTitles(t *testing.T) {
	list := []types.Title{
		{ID: "1", Name: "The CEO's Secret Wife", Tags: []string{"Romance"}},
		{ID: "2", Name: "Revenge of the Heiress", Tags: []string{"Revenge"}},
		{ID: "3", Name: "Hidden Billionaire", Tags: []string{"CEO", "Comedy"}},
	}

	assert.Equal(t, list, FilterTitles(list, ""))

	got := ids(FilterTitles(list, "revenge"))
	assert.Equal(t, []string{"2"}, got)

	got = ids(FilterTitles(list, "ceo"))
	assert.ElementsMatch(t, []string{"1", "3"}, got)
}
