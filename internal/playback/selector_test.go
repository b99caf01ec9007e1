package playback

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justchokingaround/cicidraci/internal/store"
	"github.com/justchokingaround/cicidraci/pkg/types"
)

type fakeEpisodes struct {
	episodes map[string][]types.Episode
	err      error
}

func (f *fakeEpisodes) Episodes(_ context.Context, titleID string) ([]types.Episode, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]types.Episode(nil), f.episodes[titleID]...), nil
}

func makeEpisodes(n int) []types.Episode {
	eps := make([]types.Episode, n)
	for i := range eps {
		eps[i] = types.Episode{
			ID:    fmt.Sprintf("ch-%d", i),
			Index: i,
			Name:  fmt.Sprintf("EP %d", i+1),
			Sources: []types.SourceGroup{{
				Domain: "cdn.example.com",
				Media: []types.MediaSource{
					{Quality: 720, URL: fmt.Sprintf("https://cdn.example.com/%d/720.mp4", i)},
					{Quality: 1080, URL: fmt.Sprintf("https://cdn.example.com/%d/1080.mp4", i)},
				},
			}},
		}
	}
	return eps
}

func newTestSelector(t *testing.T, n int) (*Selector, *store.ViewState, *fakeEpisodes) {
	t.Helper()
	src := &fakeEpisodes{episodes: map[string][]types.Episode{"41000": makeEpisodes(n)}}
	state := store.NewViewState(store.NewMemory(), nil)
	return NewSelector(src, Options{State: state}), state, src
}

func TestSelector_InitialSelection(t *testing.T) {
	tests := []struct {
		name        string
		lastWatched int
		hasLast     bool
		want        int
	}{
		{name: "no history selects first", want: 0},
		{name: "resumes last watched", lastWatched: 3, hasLast: true, want: 3},
		{name: "out of range falls back to first", lastWatched: 9, hasLast: true, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, state, _ := newTestSelector(t, 5)
			if tt.hasLast {
				require.NoError(t, state.SetLastWatched("41000", tt.lastWatched))
			}

			require.NoError(t, sel.Load(context.Background(), "41000"))

			ep, ok := sel.Current()
			require.True(t, ok)
			assert.Equal(t, tt.want, ep.Index)

			last, ok := state.LastWatched("41000")
			require.True(t, ok)
			assert.Equal(t, tt.want, last, "initial selection is persisted")
		})
	}
}

func TestSelector_SortsByIndex(t *testing.T) {
	eps := makeEpisodes(3)
	eps[0], eps[2] = eps[2], eps[0]
	src := &fakeEpisodes{episodes: map[string][]types.Episode{"7": eps}}

	sel := NewSelector(src, Options{})
	require.NoError(t, sel.Load(context.Background(), "7"))

	got := sel.Episodes()
	require.Len(t, got, 3)
	for i, ep := range got {
		assert.Equal(t, i, ep.Index)
	}
}

func TestSelector_EmptyList(t *testing.T) {
	src := &fakeEpisodes{episodes: map[string][]types.Episode{}}
	state := store.NewViewState(store.NewMemory(), nil)
	sel := NewSelector(src, Options{State: state})

	require.NoError(t, sel.Load(context.Background(), "1"))

	_, ok := sel.Current()
	assert.False(t, ok)
	assert.Equal(t, -1, sel.Position())
	assert.False(t, sel.Next())
	assert.False(t, sel.Prev())

	_, ok = sel.URL()
	assert.False(t, ok)

	_, ok = state.LastWatched("1")
	assert.False(t, ok)
}

func TestSelector_Navigation(t *testing.T) {
	sel, state, _ := newTestSelector(t, 5)
	require.NoError(t, sel.Load(context.Background(), "41000"))

	assert.False(t, sel.Prev(), "prev at start is a no-op")
	assert.Equal(t, 0, sel.Position())

	assert.True(t, sel.Next())
	assert.Equal(t, 1, sel.Position())
	last, _ := state.LastWatched("41000")
	assert.Equal(t, 1, last)

	require.True(t, sel.SelectIndex(4))
	assert.False(t, sel.HasNext())
	assert.False(t, sel.Next(), "next at end is a no-op")
	assert.Equal(t, 4, sel.Position())

	assert.True(t, sel.Prev())
	assert.True(t, sel.HasPrev())
	assert.Equal(t, 3, sel.Position())

	require.True(t, sel.Select("ch-2"))
	last, _ = state.LastWatched("41000")
	assert.Equal(t, 2, last)

	assert.False(t, sel.Select("missing"))
	assert.False(t, sel.SelectIndex(99))
	assert.Equal(t, 2, sel.Position())
}

func TestSelector_LoadFailureKeepsList(t *testing.T) {
	sel, _, src := newTestSelector(t, 5)
	ctx := context.Background()
	require.NoError(t, sel.Load(ctx, "41000"))
	require.True(t, sel.SelectIndex(2))

	src.err = errors.New("timeout")
	require.Error(t, sel.Load(ctx, "41000"))

	assert.Len(t, sel.Episodes(), 5)
	assert.Equal(t, 2, sel.Position())
	assert.Equal(t, MsgEpisodesFailed, sel.Message())

	sel.DismissMessage()
	assert.Empty(t, sel.Message())
}

func TestSelector_LoadOtherTitleClearsList(t *testing.T) {
	src := &fakeEpisodes{episodes: map[string][]types.Episode{"A": makeEpisodes(3)}}
	state := store.NewViewState(store.NewMemory(), nil)
	sel := NewSelector(src, Options{State: state})
	ctx := context.Background()
	require.NoError(t, sel.Load(ctx, "A"))

	src.err = errors.New("timeout")
	require.Error(t, sel.Load(ctx, "B"))

	assert.Equal(t, "B", sel.TitleID())
	assert.Empty(t, sel.Episodes())
	_, ok := sel.Current()
	assert.False(t, ok)
	assert.False(t, sel.Next())
	assert.Equal(t, MsgEpisodesFailed, sel.Message())

	_, ok = state.LastWatched("B")
	assert.False(t, ok)
}

// gatedEpisodes blocks Episodes for titles listed in gates until the gate closes
type gatedEpisodes struct {
	episodes map[string][]types.Episode
	gates    map[string]chan struct{}
	started  chan string
}

func (g *gatedEpisodes) Episodes(ctx context.Context, titleID string) ([]types.Episode, error) {
	if gate, ok := g.gates[titleID]; ok {
		g.started <- titleID
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return append([]types.Episode(nil), g.episodes[titleID]...), nil
}

func TestSelector_StaleLoadDiscarded(t *testing.T) {
	a := makeEpisodes(2)
	for i := range a {
		a[i].ID = fmt.Sprintf("A-%d", i)
	}
	src := &gatedEpisodes{
		episodes: map[string][]types.Episode{"A": a, "B": makeEpisodes(4)},
		gates:    map[string]chan struct{}{"A": make(chan struct{})},
		started:  make(chan string, 1),
	}
	state := store.NewViewState(store.NewMemory(), nil)
	sel := NewSelector(src, Options{State: state})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- sel.Load(ctx, "A") }()
	require.Equal(t, "A", <-src.started)

	require.NoError(t, sel.Load(ctx, "B"))
	close(src.gates["A"])
	require.NoError(t, <-done)

	assert.Equal(t, "B", sel.TitleID())
	assert.Len(t, sel.Episodes(), 4)
	ep, ok := sel.Current()
	require.True(t, ok)
	assert.Equal(t, "ch-0", ep.ID)

	_, ok = state.LastWatched("A")
	assert.False(t, ok)
}

func TestSelector_ReportPlaybackError(t *testing.T) {
	sel, _, _ := newTestSelector(t, 5)
	require.NoError(t, sel.Load(context.Background(), "41000"))
	require.True(t, sel.SelectIndex(1))

	sel.ReportPlaybackError(errors.New("403 from cdn"))

	assert.Equal(t, MsgVideoFailed, sel.Message())
	assert.Len(t, sel.Episodes(), 5)
	ep, ok := sel.Current()
	require.True(t, ok)
	assert.Equal(t, 1, ep.Index)
}

func TestSelector_URL(t *testing.T) {
	src := &fakeEpisodes{episodes: map[string][]types.Episode{"1": makeEpisodes(2)}}

	sel := NewSelector(src, Options{})
	require.NoError(t, sel.Load(context.Background(), "1"))
	url, ok := sel.URL()
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/0/720.mp4", url)

	hd := NewSelector(src, Options{Quality: 1080})
	require.NoError(t, hd.Load(context.Background(), "1"))
	url, ok = hd.URL()
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/0/1080.mp4", url)
}

func TestResolveURL(t *testing.T) {
	media := []types.MediaSource{
		{Quality: 540, URL: "https://a/540.mp4"},
		{Quality: 720, URL: "https://a/720.mp4"},
	}

	tests := []struct {
		name    string
		ep      types.Episode
		quality int
		want    string
		ok      bool
	}{
		{name: "no groups", ep: types.Episode{}},
		{name: "empty media", ep: types.Episode{Sources: []types.SourceGroup{{Domain: "a"}}}},
		{name: "empty url", ep: types.Episode{Sources: []types.SourceGroup{{Media: []types.MediaSource{{Quality: 720}}}}}},
		{name: "first rendition", ep: types.Episode{Sources: []types.SourceGroup{{Media: media}}}, want: "https://a/540.mp4", ok: true},
		{name: "preferred quality", ep: types.Episode{Sources: []types.SourceGroup{{Media: media}}}, quality: 720, want: "https://a/720.mp4", ok: true},
		{name: "unknown quality falls back", ep: types.Episode{Sources: []types.SourceGroup{{Media: media}}}, quality: 2160, want: "https://a/540.mp4", ok: true},
		{
			name: "only first group is used",
			ep: types.Episode{Sources: []types.SourceGroup{
				{Domain: "a", Media: media[:1]},
				{Domain: "b", Media: []types.MediaSource{{Quality: 720, URL: "https://b/720.mp4"}}},
			}},
			quality: 720,
			want:    "https://a/540.mp4",
			ok:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, ok := ResolveURL(tt.ep, tt.quality)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, url)
		})
	}
}
