package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/justchokingaround/cicidraci/internal/playback"
)

func (a *App) handleHomeKey(msg tea.KeyMsg) tea.Cmd {
	if a.filter.Editing() {
		switch msg.String() {
		case "enter":
			a.filter.Lock()
		case "esc":
			a.filter.Deactivate()
		default:
			cmd := a.filter.Update(msg)
			a.cursor = 0
			return cmd
		}
		return nil
	}

	items := a.items()

	switch msg.String() {
	case "q":
		return a.quit()

	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}

	case "down", "j":
		if a.cursor < len(items)-1 {
			a.cursor++
		}
		// reaching the end of the list pages in more titles
		if a.cursor >= len(items)-1 && !a.filter.Active() {
			return a.loadMore()
		}

	case "tab", "right", "l":
		return a.switchTab((a.tab + 1) % len(Tabs))

	case "shift+tab", "left", "h":
		return a.switchTab((a.tab + len(Tabs) - 1) % len(Tabs))

	case "m":
		return a.loadMore()

	case "r":
		a.cursor = 0
		return a.refresh()

	case "/":
		a.cursor = 0
		return a.filter.Activate()

	case "s", "i":
		a.state = searchView
		a.searchIndex = -1
		return a.input.Focus()

	case "f":
		if a.cursor < len(items) {
			a.toggleFavorite(items[a.cursor].ID)
		}

	case "x":
		a.deps.Catalog.DismissMessage()

	case "esc":
		if a.filter.Active() {
			a.filter.Deactivate()
			return nil
		}
		if a.deps.Catalog.Searching() {
			a.input.SetValue("")
			a.deps.Search.Clear()
			a.deps.Catalog.ClearSearch()
			a.cursor = 0
		}

	case "enter":
		if a.cursor < len(items) {
			return a.openTitle(items[a.cursor].ID)
		}
	}
	return nil
}

func (a *App) switchTab(tab int) tea.Cmd {
	a.tab = tab
	a.cursor = 0
	a.filter.Deactivate()
	if a.deps.Catalog.Searching() {
		a.input.SetValue("")
		a.deps.Search.Clear()
		a.deps.Catalog.ClearSearch()
	}
	return a.loadCategory(Tabs[tab])
}

func (a *App) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	entries := a.searchEntries()

	switch msg.String() {
	case "esc":
		a.state = homeView
		a.input.Blur()
		return nil

	case "up":
		if a.searchIndex >= 0 {
			a.searchIndex--
		}
		return nil

	case "down":
		if a.searchIndex < len(entries)-1 {
			a.searchIndex++
		}
		return nil

	case "ctrl+x":
		a.deps.Search.ClearRecent()
		a.searchIndex = -1
		return nil

	case "enter":
		term := a.input.Value()
		if a.searchIndex >= 0 && a.searchIndex < len(entries) {
			term = entries[a.searchIndex]
		}
		return a.submitSearch(term)
	}

	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if value := a.input.Value(); value != before {
		a.searchIndex = -1
		a.deps.Search.Type(a.ctx, value)
	}
	return cmd
}

func (a *App) submitSearch(term string) tea.Cmd {
	a.deps.Search.Submit(term)
	query := a.deps.Search.Query()
	if query == "" {
		return nil
	}

	a.input.SetValue(query)
	a.input.Blur()
	a.state = homeView
	a.searchIndex = -1
	a.cursor = 0
	a.filter.Deactivate()
	return a.runSearch(query)
}

func (a *App) openTitle(id string) tea.Cmd {
	title, ok := a.deps.Catalog.Open(id)
	if !ok {
		return nil
	}

	a.title = title
	a.state = detailView
	a.episodeCursor = 0
	a.loadingDetail = true
	a.playState = playback.StateIdle
	a.link = ""
	if a.deps.Sharer != nil {
		a.link = a.deps.Sharer.Link(id)
	}
	return a.loadEpisodes(id)
}

func (a *App) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	sel := a.deps.Selector
	episodes := a.episodes()

	switch msg.String() {
	case "q":
		return a.quit()

	case "esc", "backspace":
		a.state = homeView
		a.clampCursor()

	case "up", "k":
		if a.episodeCursor > 0 {
			a.episodeCursor--
		}

	case "down", "j":
		if a.episodeCursor < len(episodes)-1 {
			a.episodeCursor++
		}

	case "enter":
		if a.episodeCursor < len(episodes) && sel.Select(episodes[a.episodeCursor].ID) {
			return a.playCurrent()
		}

	case "n":
		if len(episodes) > 0 && sel.Next() {
			a.episodeCursor = sel.Position()
			return a.playCurrent()
		}

	case "p":
		if len(episodes) > 0 && sel.Prev() {
			a.episodeCursor = sel.Position()
			return a.playCurrent()
		}

	case "f":
		a.title.Favorite = a.toggleFavorite(a.title.ID)

	case "c":
		return a.copyLink()

	case "o":
		return a.openLink()

	case "x":
		sel.DismissMessage()
	}
	return nil
}

func (a *App) toggleFavorite(id string) bool {
	if a.deps.State == nil {
		return false
	}
	fav, err := a.deps.State.ToggleFavorite(id)
	if err != nil {
		a.logger.Error("failed to toggle favorite", "id", id, "error", err)
	}
	return fav
}

func (a *App) copyLink() tea.Cmd {
	if a.deps.Sharer == nil || a.link == "" {
		return nil
	}
	sharer, link := a.deps.Sharer, a.link
	return func() tea.Msg {
		if err := sharer.Copy(link); err != nil {
			return statusMsg{text: "Could not copy link: " + link, isErr: true}
		}
		return statusMsg{text: "Link copied to clipboard!"}
	}
}

func (a *App) openLink() tea.Cmd {
	if a.deps.Sharer == nil || a.link == "" {
		return nil
	}
	sharer, link := a.deps.Sharer, a.link
	return func() tea.Msg {
		if err := sharer.Open(link); err != nil {
			return statusMsg{text: err.Error(), isErr: true}
		}
		return statusMsg{text: "Opened in browser"}
	}
}
