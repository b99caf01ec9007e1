package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justchokingaround/cicidraci/internal/catalog"
	"github.com/justchokingaround/cicidraci/internal/playback"
	"github.com/justchokingaround/cicidraci/internal/search"
	"github.com/justchokingaround/cicidraci/internal/share"
	"github.com/justchokingaround/cicidraci/internal/store"
	"github.com/justchokingaround/cicidraci/internal/tui/styles"
	"github.com/justchokingaround/cicidraci/pkg/types"
)

type sessionState int

const (
	homeView sessionState = iota
	searchView
	detailView
)

// Tabs is the category order of the home screen
var Tabs = []types.Category{
	types.CategoryForYou,
	types.CategoryTrending,
	types.CategoryLatest,
	types.CategoryPopularSearch,
	types.CategoryRandom,
	types.CategoryAll,
}

// Deps are the components the TUI drives
type Deps struct {
	Catalog  *catalog.Aggregator
	Search   *search.Assistant
	Selector *playback.Selector
	// Session is nil when no player is installed
	Session *playback.Session
	State   *store.ViewState
	Sharer  *share.Sharer

	InitialCategory types.Category
	Logger          *slog.Logger
}

// App is the root bubbletea model
type App struct {
	ctx    context.Context
	deps   Deps
	logger *slog.Logger

	state  sessionState
	width  int
	height int

	// home
	tab    int
	cursor int
	filter *FuzzyFilter

	// search box
	input       textinput.Model
	searchIndex int // -1 while the cursor is in the input

	// detail
	title         types.Title
	episodeCursor int
	loadingDetail bool
	playState     playback.State
	link          string

	spinner   spinner.Model
	status    string
	statusErr bool
}

// New creates the root model
func New(ctx context.Context, deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "Search dramas, actors, or tags..."
	ti.Prompt = ""
	ti.CharLimit = 200
	ti.Width = 60
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.OxocarbonBase05)
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.OxocarbonPurple)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.OxocarbonPurple)

	tab := 0
	for i, c := range Tabs {
		if c == deps.InitialCategory {
			tab = i
		}
	}

	return &App{
		ctx:         ctx,
		deps:        deps,
		logger:      deps.Logger.With("component", "tui"),
		tab:         tab,
		filter:      NewFuzzyFilter(),
		input:       ti,
		searchIndex: -1,
		spinner:     sp,
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.spinner.Tick,
		a.loadCategory(Tabs[a.tab]),
		a.mountSearch(),
	)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = max(20, msg.Width-12)
		a.filter.SetWidth(msg.Width)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, a.quit()
		}
		switch a.state {
		case searchView:
			return a, a.handleSearchKey(msg)
		case detailView:
			return a, a.handleDetailKey(msg)
		default:
			return a, a.handleHomeKey(msg)
		}

	case feedLoadedMsg:
		a.clampCursor()
		return a, nil

	case searchDoneMsg:
		a.cursor = 0
		return a, nil

	case suggestionsChangedMsg:
		a.clampSearchIndex()
		return a, nil

	case episodesLoadedMsg:
		if msg.titleID != a.title.ID {
			return a, nil
		}
		a.loadingDetail = false
		a.episodeCursor = max(0, a.deps.Selector.Position())
		return a, nil

	case playbackStateMsg:
		// sends are unordered, the session holds the latest state
		a.playState = msg.state
		if a.deps.Session != nil {
			a.playState = a.deps.Session.State()
		}
		return a, nil

	case playResultMsg:
		if msg.err != nil {
			return a, a.setStatus("Playback failed: "+msg.err.Error(), true)
		}
		return a, nil

	case statusMsg:
		return a, a.setStatus(msg.text, msg.isErr)

	case clearStatusMsg:
		a.status = ""
		a.statusErr = false
		return a, nil
	}

	return a, nil
}

func (a *App) setStatus(text string, isErr bool) tea.Cmd {
	a.status = text
	a.statusErr = isErr
	return clearStatusAfter()
}

func (a *App) quit() tea.Cmd {
	a.deps.Search.Close()
	if a.deps.Session != nil {
		_ = a.deps.Session.Stop(context.Background())
	}
	return tea.Quit
}

// items returns the titles shown on the home list after filtering
func (a *App) items() []types.Title {
	return catalog.FilterTitles(a.deps.Catalog.Visible(), a.filter.Query())
}

// episodes returns the episode list of the open title, nil while it is
// loading or when the selector still holds another title
func (a *App) episodes() []types.Episode {
	if a.loadingDetail || a.deps.Selector.TitleID() != a.title.ID {
		return nil
	}
	return a.deps.Selector.Episodes()
}

func (a *App) clampCursor() {
	n := len(a.items())
	if a.cursor >= n {
		a.cursor = max(0, n-1)
	}
}

// searchEntries returns what the search dropdown lists for the current query
func (a *App) searchEntries() []string {
	if a.input.Value() == "" {
		entries := a.deps.Search.Recent()
		if a.deps.Search.PopularVisible() {
			entries = append(entries, a.deps.Search.Popular()...)
		}
		return entries
	}
	return a.deps.Search.Suggestions()
}

func (a *App) clampSearchIndex() {
	if a.searchIndex >= len(a.searchEntries()) {
		a.searchIndex = -1
	}
}

func (a *App) loadCategory(category types.Category) tea.Cmd {
	return func() tea.Msg {
		return feedLoadedMsg{err: a.deps.Catalog.Load(a.ctx, category)}
	}
}

func (a *App) refresh() tea.Cmd {
	return func() tea.Msg {
		return feedLoadedMsg{err: a.deps.Catalog.Refresh(a.ctx)}
	}
}

func (a *App) loadMore() tea.Cmd {
	if !a.deps.Catalog.HasMore() || a.deps.Catalog.Loading() || a.deps.Catalog.Searching() {
		return nil
	}
	return func() tea.Msg {
		return feedLoadedMsg{err: a.deps.Catalog.LoadMore(a.ctx)}
	}
}

func (a *App) runSearch(query string) tea.Cmd {
	return func() tea.Msg {
		return searchDoneMsg{query: query, err: a.deps.Catalog.Search(a.ctx, query)}
	}
}

func (a *App) mountSearch() tea.Cmd {
	return func() tea.Msg {
		a.deps.Search.Mount(a.ctx)
		return suggestionsChangedMsg{}
	}
}

func (a *App) loadEpisodes(titleID string) tea.Cmd {
	return func() tea.Msg {
		return episodesLoadedMsg{titleID: titleID, err: a.deps.Selector.Load(a.ctx, titleID)}
	}
}

func (a *App) playCurrent() tea.Cmd {
	if a.deps.Session == nil {
		url, ok := a.deps.Selector.URL()
		if !ok {
			return func() tea.Msg { return statusMsg{text: "No video available for this episode.", isErr: true} }
		}
		return func() tea.Msg { return statusMsg{text: "mpv not available, stream: " + url, isErr: true} }
	}

	name := a.title.Name
	return func() tea.Msg {
		return playResultMsg{err: a.deps.Session.PlayCurrent(a.ctx, name)}
	}
}
