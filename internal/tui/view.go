package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/justchokingaround/cicidraci/internal/display"
	"github.com/justchokingaround/cicidraci/internal/playback"
	"github.com/justchokingaround/cicidraci/internal/tui/styles"
	"github.com/justchokingaround/cicidraci/pkg/types"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	itemHeight    = 3
)

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	b.WriteString("\n" + styles.TitleStyle.Render(" CiciDraci ") + "\n\n")

	switch a.state {
	case detailView:
		b.WriteString(a.detailView())
	case searchView:
		b.WriteString(a.searchView())
	default:
		b.WriteString(a.homeView())
	}

	if a.status != "" {
		style := styles.FooterStyle
		if a.statusErr {
			style = styles.ErrorBannerStyle
		}
		b.WriteString("\n" + style.Render(a.status))
	}
	return b.String()
}

func (a *App) size() (int, int) {
	w, h := a.width, a.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func (a *App) tabsView() string {
	tabs := make([]string, 0, len(Tabs))
	for i, c := range Tabs {
		style := styles.TabStyle
		if i == a.tab {
			style = styles.ActiveTabStyle
		}
		tabs = append(tabs, style.Render(c.Label()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (a *App) homeView() string {
	cat := a.deps.Catalog
	width, height := a.size()

	var b strings.Builder
	b.WriteString(a.tabsView() + "\n\n")

	if cat.Searching() {
		b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("Results for %q", cat.Query())) + "\n")
	}
	if msg := cat.Message(); msg != "" {
		b.WriteString(styles.ErrorBannerStyle.Render(msg+"  (x to dismiss)") + "\n")
	}
	if a.filter.Active() {
		b.WriteString(a.filter.View() + "\n")
	}
	b.WriteString("\n")

	items := a.items()
	switch {
	case len(items) == 0 && cat.Loading():
		b.WriteString(a.spinner.View() + " Loading dramas...\n")
	case len(items) == 0:
		b.WriteString(styles.MutedStyle.Render("  No dramas found.") + "\n")
	default:
		rows := max(1, (height-12)/itemHeight)
		start := 0
		if a.cursor >= rows {
			start = a.cursor - rows + 1
		}
		end := min(len(items), start+rows)
		for i := start; i < end; i++ {
			b.WriteString(a.titleRow(items[i], i == a.cursor, width) + "\n")
		}
		b.WriteString(a.listFooter(len(items)))
	}

	b.WriteString(styles.HelpStyle.Render("↑/↓ move • enter open • ←/→ category • s search • / filter • f favorite • m more • r refresh • q quit"))
	return b.String()
}

func (a *App) titleRow(t types.Title, selected bool, width int) string {
	name := display.Truncate(t.Name, width-16)
	if t.Favorite {
		name = styles.FavoriteStyle.Render("♥ ") + name
	}

	meta := []string{display.Episodes(t.EpisodeCount)}
	if t.ViewCount != "" {
		meta = append(meta, display.Views(t.ViewCount)+" views")
	}
	if len(t.Tags) > 0 {
		meta = append(meta, strings.Join(t.Tags, ", "))
	}

	content := styles.ItemTitleStyle.Render(name) + "\n" +
		styles.MetadataStyle.Render(display.Truncate(strings.Join(meta, " • "), width-10))

	if selected {
		return styles.SelectedItemStyle.Render(content)
	}
	return styles.ItemStyle.Render(content)
}

func (a *App) listFooter(n int) string {
	cat := a.deps.Catalog
	line := fmt.Sprintf("  %d/%d", a.cursor+1, n)
	switch {
	case cat.Loading():
		line += "  " + a.spinner.View() + " loading more"
	case cat.HasMore() && !cat.Searching():
		line += "  (more available)"
	}
	return styles.MutedStyle.Render(line) + "\n"
}

func (a *App) searchView() string {
	s := a.deps.Search

	var b strings.Builder
	b.WriteString(styles.SearchBoxStyle.Render(a.input.View()) + "\n")

	entries := a.searchEntries()
	if a.input.Value() == "" {
		recent := s.Recent()
		if len(recent) > 0 {
			b.WriteString(styles.SectionStyle.Render("Recent searches") + styles.MutedStyle.Render("  (ctrl+x to clear)") + "\n")
			b.WriteString(a.entryList(recent, 0))
		}
		if s.PopularVisible() {
			if popular := s.Popular(); len(popular) > 0 {
				b.WriteString(styles.SectionStyle.Render("Popular searches") + "\n")
				b.WriteString(a.entryList(popular, len(recent)))
			}
		}
	} else if s.Loading() {
		b.WriteString("\n" + a.spinner.View() + " Loading suggestions...\n")
	} else if len(entries) > 0 {
		b.WriteString(styles.SectionStyle.Render("Suggestions") + "\n")
		b.WriteString(a.entryList(entries, 0))
	}

	b.WriteString(styles.HelpStyle.Render("enter search • ↑/↓ pick • esc back"))
	return b.String()
}

// entryList renders entries; offset is the position of the first one in searchEntries
func (a *App) entryList(entries []string, offset int) string {
	var b strings.Builder
	for i, e := range entries {
		if offset+i == a.searchIndex {
			b.WriteString(styles.ActiveEpisodeStyle.Render("  ▸ "+e) + "\n")
			continue
		}
		b.WriteString(styles.MetadataStyle.Render("    "+e) + "\n")
	}
	return b.String()
}

func (a *App) detailView() string {
	t := a.title
	sel := a.deps.Selector
	width, height := a.size()

	var b strings.Builder

	name := t.Name
	if t.Favorite {
		name = styles.FavoriteStyle.Render("♥ ") + name
	}
	b.WriteString(styles.ItemTitleStyle.Render(name) + "\n")
	b.WriteString(styles.MetadataStyle.Render(fmt.Sprintf("%s • %s views", display.Episodes(t.EpisodeCount), display.Views(t.ViewCount))) + "\n")

	if len(t.Tags) > 0 {
		var tags []string
		for _, tag := range t.Tags {
			tags = append(tags, styles.TagStyle.Render(tag))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tags...) + "\n")
	}
	if t.Synopsis != "" {
		b.WriteString("\n" + styles.SynopsisStyle.Render(display.Clamp(t.Synopsis, 4, width-6)) + "\n")
	}
	if a.link != "" {
		b.WriteString("\n" + styles.URLStyle.Render(a.link) + "\n")
	}

	if msg := sel.Message(); msg != "" {
		b.WriteString("\n" + styles.ErrorBannerStyle.Render(msg+"  (x to dismiss)") + "\n")
	}
	if line := a.playbackLine(); line != "" {
		b.WriteString("\n" + line + "\n")
	}

	b.WriteString(styles.SectionStyle.Render("Episodes") + "\n")
	episodes := a.episodes()
	switch {
	case a.loadingDetail:
		b.WriteString(a.spinner.View() + " Loading episodes...\n")
	case len(episodes) == 0:
		b.WriteString(styles.MutedStyle.Render("  No episodes available.") + "\n")
	default:
		b.WriteString(a.episodeList(episodes, max(3, height-20)))
	}

	b.WriteString(styles.HelpStyle.Render("enter play • n/p next/prev • f favorite • c copy link • o open link • esc back"))
	return b.String()
}

func (a *App) episodeList(episodes []types.Episode, rows int) string {
	current := a.deps.Selector.Position()
	start := 0
	if a.episodeCursor >= rows {
		start = a.episodeCursor - rows + 1
	}
	end := min(len(episodes), start+rows)

	var b strings.Builder
	for i := start; i < end; i++ {
		ep := episodes[i]
		label := fmt.Sprintf("%3d  %s", ep.Index+1, ep.Name)
		switch {
		case i == a.episodeCursor:
			b.WriteString(styles.ActiveEpisodeStyle.Render("▸ "+label) + "\n")
		case i == current:
			b.WriteString(styles.SubtitleStyle.Render("▶ "+label) + "\n")
		default:
			b.WriteString(styles.MetadataStyle.Render("  "+label) + "\n")
		}
	}
	if len(episodes) > rows {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("  %d/%d", a.episodeCursor+1, len(episodes))) + "\n")
	}
	return b.String()
}

func (a *App) playbackLine() string {
	if len(a.episodes()) == 0 {
		return ""
	}
	ep, ok := a.deps.Selector.Current()
	if !ok {
		return ""
	}
	label := styles.MetadataStyle.Render(fmt.Sprintf("Episode %d", ep.Index+1))

	switch a.playState {
	case playback.StateLoading:
		return a.spinner.View() + " Loading " + label
	case playback.StateReady:
		return styles.ActiveEpisodeStyle.Render("▶ Playing ") + label
	case playback.StateEnded:
		return styles.MutedStyle.Render("Finished ") + label + styles.MutedStyle.Render("  (n for next)")
	case playback.StateNoMedia:
		return styles.MutedStyle.Render("No video available for this episode.")
	default:
		return ""
	}
}
