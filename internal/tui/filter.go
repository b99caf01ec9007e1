package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/justchokingaround/cicidraci/internal/tui/styles"
)

// FuzzyFilter is the "/" filter input of the home list
type FuzzyFilter struct {
	input  textinput.Model
	active bool
	// locked keeps the query applied while keys go back to the list
	locked bool
}

// NewFuzzyFilter creates an inactive filter
func NewFuzzyFilter() *FuzzyFilter {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Prompt = ""
	ti.CharLimit = 100
	ti.TextStyle = styles.MetadataStyle
	ti.PlaceholderStyle = styles.MutedStyle

	return &FuzzyFilter{input: ti}
}

// Activate starts editing an empty filter
func (f *FuzzyFilter) Activate() tea.Cmd {
	f.active = true
	f.locked = false
	f.input.SetValue("")
	f.input.Focus()
	return textinput.Blink
}

// Deactivate drops the filter
func (f *FuzzyFilter) Deactivate() {
	f.active = false
	f.locked = false
	f.input.Blur()
	f.input.SetValue("")
}

// Lock stops editing but keeps the query applied
func (f *FuzzyFilter) Lock() {
	if f.active {
		f.locked = true
		f.input.Blur()
	}
}

// Editing reports whether keystrokes go to the filter input
func (f *FuzzyFilter) Editing() bool {
	return f.active && !f.locked
}

// Active reports whether a filter is applied
func (f *FuzzyFilter) Active() bool {
	return f.active
}

// Query returns the filter text, empty when inactive
func (f *FuzzyFilter) Query() string {
	if !f.active {
		return ""
	}
	return f.input.Value()
}

// Update forwards input while editing
func (f *FuzzyFilter) Update(msg tea.Msg) tea.Cmd {
	if !f.Editing() {
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

// SetWidth sizes the input
func (f *FuzzyFilter) SetWidth(width int) {
	f.input.Width = max(10, width-20)
}

// View renders the filter line
func (f *FuzzyFilter) View() string {
	if !f.active {
		return ""
	}
	label := styles.MetadataStyle.Render("Filter: ")
	if f.locked {
		return label + styles.ItemTitleStyle.Render(f.input.Value()) +
			styles.MutedStyle.Render("  (/ to edit, esc to clear)")
	}
	return label + f.input.View() + styles.MutedStyle.Render("  (enter to apply)")
}
