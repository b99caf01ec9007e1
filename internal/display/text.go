// Package display holds width-aware text helpers shared by the TUI and the CLI output.
package display

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// Truncate shortens text to maxWidth terminal cells, ending with "..." when cut
func Truncate(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(text, maxWidth, ellipsis)
}

// Wrap breaks text at word boundaries into lines of at most maxWidth cells.
// A single word wider than maxWidth gets its own, truncated line.
func Wrap(text string, maxWidth int) []string {
	var lines []string
	var line strings.Builder
	width := 0

	for _, word := range strings.Fields(text) {
		w := runewidth.StringWidth(word)
		switch {
		case width == 0:
		case width+1+w <= maxWidth:
			line.WriteByte(' ')
			width++
		default:
			lines = append(lines, line.String())
			line.Reset()
			width = 0
		}
		if width == 0 && w > maxWidth {
			word = Truncate(word, maxWidth)
			w = runewidth.StringWidth(word)
		}
		line.WriteString(word)
		width += w
	}

	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// Clamp wraps text and keeps at most maxLines lines, marking the cut on the last one
func Clamp(text string, maxLines, maxWidth int) string {
	lines := Wrap(text, maxWidth)
	if len(lines) <= maxLines {
		return strings.Join(lines, "\n")
	}

	lines = lines[:maxLines]
	last := lines[maxLines-1]
	if runewidth.StringWidth(last)+len(ellipsis) > maxWidth {
		last = Truncate(last, maxWidth)
	} else {
		last += ellipsis
	}
	lines[maxLines-1] = last
	return strings.Join(lines, "\n")
}
