package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/justchokingaround/cicidraci/internal/playback"
)

// feedLoadedMsg reports a finished category load, refresh or load-more
type feedLoadedMsg struct {
	err error
}

// searchDoneMsg reports a finished catalog search
type searchDoneMsg struct {
	query string
	err   error
}

// episodesLoadedMsg reports the episode list of the open title
type episodesLoadedMsg struct {
	titleID string
	err     error
}

// suggestionsChangedMsg is sent by the search assistant from its timer goroutine
type suggestionsChangedMsg struct{}

// playbackStateMsg carries a session state change
type playbackStateMsg struct {
	state playback.State
}

// playResultMsg reports whether the player accepted the URL
type playResultMsg struct {
	err error
}

// statusMsg shows a transient footer message
type statusMsg struct {
	text  string
	isErr bool
}

// clearStatusMsg clears the footer message
type clearStatusMsg struct{}

const statusTimeout = 3 * time.Second

func clearStatusAfter() tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
