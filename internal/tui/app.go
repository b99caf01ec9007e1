package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/justchokingaround/cicidraci/internal/playback"
)

// Start runs the TUI until the user quits
func Start(ctx context.Context, deps Deps) error {
	m := New(ctx, deps)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Callbacks may fire inside Update, where a blocking Send would deadlock
	deps.Search.SetOnChange(func() { go p.Send(suggestionsChangedMsg{}) })
	if deps.Session != nil {
		deps.Session.OnChange(func(s playback.State) { go p.Send(playbackStateMsg{state: s}) })

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go deps.Session.Run(runCtx)
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
