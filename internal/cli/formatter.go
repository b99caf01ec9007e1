// Package cli renders titles, episodes and messages for the non-interactive commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/justchokingaround/cicidraci/internal/display"
	"github.com/justchokingaround/cicidraci/pkg/types"
)

const (
	nameWidth     = 40
	synopsisWidth = 76
	tagsWidth     = 30
)

// Formatter writes command output
type Formatter struct {
	Writer io.Writer

	HeaderStyle    *color.Color
	TitleStyle     *color.Color
	SuccessStyle   *color.Color
	ErrorStyle     *color.Color
	WarningStyle   *color.Color
	LabelStyle     *color.Color
	ValueStyle     *color.Color
	SecondaryStyle *color.Color
	FavoriteStyle  *color.Color
}

// NewFormatter creates a Formatter writing to stdout
func NewFormatter(noColor bool) *Formatter {
	return NewFormatterTo(os.Stdout, noColor)
}

// NewFormatterTo creates a Formatter writing to w
func NewFormatterTo(w io.Writer, noColor bool) *Formatter {
	if noColor {
		color.NoColor = true
	}
	return &Formatter{
		Writer:         w,
		HeaderStyle:    color.New(color.Bold, color.FgCyan),
		TitleStyle:     color.New(color.Bold, color.FgWhite),
		SuccessStyle:   color.New(color.FgGreen),
		ErrorStyle:     color.New(color.FgRed),
		WarningStyle:   color.New(color.FgYellow),
		LabelStyle:     color.New(color.FgHiBlue),
		ValueStyle:     color.New(color.FgWhite),
		SecondaryStyle: color.New(color.FgHiBlack),
		FavoriteStyle:  color.New(color.FgHiRed),
	}
}

// PrintHeader prints a header line followed by a divider
func (f *Formatter) PrintHeader(text string) {
	_, _ = f.HeaderStyle.Fprintln(f.Writer, text)
	_, _ = f.SecondaryStyle.Fprintln(f.Writer, strings.Repeat("-", 80))
}

// PrintSuccess prints a success message
func (f *Formatter) PrintSuccess(text string) {
	_, _ = f.SuccessStyle.Fprintln(f.Writer, text)
}

// PrintError prints an error message
func (f *Formatter) PrintError(text string) {
	_, _ = f.ErrorStyle.Fprintln(f.Writer, text)
}

// PrintWarning prints a warning message
func (f *Formatter) PrintWarning(text string) {
	_, _ = f.WarningStyle.Fprintln(f.Writer, text)
}

// PrintDetail prints a labeled value
func (f *Formatter) PrintDetail(label, value string) {
	_, _ = f.LabelStyle.Fprintf(f.Writer, "%s: ", label)
	_, _ = f.ValueStyle.Fprintln(f.Writer, value)
}

// PrintTable prints rows under headers, left aligned
func (f *Formatter) PrintTable(headers []string, rows [][]string) error {
	table := tablewriter.NewTable(f.Writer)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Header.Alignment.Global = tw.AlignLeft
		cfg.Row.Alignment.Global = tw.AlignLeft
		cfg.Header.Padding.Global = tw.Padding{Left: " ", Right: " "}
		cfg.Row.Padding.Global = tw.Padding{Left: " ", Right: " "}
	})

	table.Header(headers)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build table: %w", err)
	}
	return table.Render()
}

// PrintTitles prints a numbered table of titles
func (f *Formatter) PrintTitles(titles []types.Title) error {
	if len(titles) == 0 {
		f.PrintWarning("No dramas found.")
		return nil
	}

	rows := make([][]string, 0, len(titles))
	for i, t := range titles {
		name := display.Truncate(t.Name, nameWidth)
		if t.Favorite {
			name = f.FavoriteStyle.Sprint("♥ ") + name
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			t.ID,
			name,
			strconv.Itoa(t.EpisodeCount),
			display.Views(t.ViewCount),
			display.Truncate(strings.Join(t.Tags, ", "), tagsWidth),
		})
	}
	return f.PrintTable([]string{"#", "ID", "Title", "Eps", "Views", "Tags"}, rows)
}

// PrintTitle prints the details of one title
func (f *Formatter) PrintTitle(t types.Title, link string) {
	_, _ = f.TitleStyle.Fprintln(f.Writer, t.Name)
	f.PrintDetail("ID", t.ID)
	f.PrintDetail("Episodes", display.Episodes(t.EpisodeCount))
	f.PrintDetail("Views", display.Views(t.ViewCount))
	if len(t.Tags) > 0 {
		f.PrintDetail("Tags", strings.Join(t.Tags, ", "))
	}
	f.PrintDetail("Favorite", strconv.FormatBool(t.Favorite))
	if link != "" {
		f.PrintDetail("Link", link)
	}
	if t.Synopsis != "" {
		_, _ = fmt.Fprintln(f.Writer)
		_, _ = f.ValueStyle.Fprintln(f.Writer, strings.Join(display.Wrap(t.Synopsis, synopsisWidth), "\n"))
	}
}

// PrintEpisodes prints the episode list, marking the current one
func (f *Formatter) PrintEpisodes(episodes []types.Episode, current int) error {
	if len(episodes) == 0 {
		f.PrintWarning("No episodes available.")
		return nil
	}

	rows := make([][]string, 0, len(episodes))
	for i, ep := range episodes {
		marker := ""
		if i == current {
			marker = "▶"
		}
		rows = append(rows, []string{
			marker,
			strconv.Itoa(ep.Index + 1),
			display.Truncate(ep.Name, nameWidth),
			qualities(ep),
		})
	}
	return f.PrintTable([]string{"", "#", "Episode", "Qualities"}, rows)
}

// PrintList prints a numbered list of plain strings
func (f *Formatter) PrintList(items []string, empty string) {
	if len(items) == 0 {
		_, _ = f.SecondaryStyle.Fprintln(f.Writer, empty)
		return
	}
	for i, item := range items {
		_, _ = f.SecondaryStyle.Fprintf(f.Writer, "%2d. ", i+1)
		_, _ = f.ValueStyle.Fprintln(f.Writer, item)
	}
}

// qualities lists the renditions of the first source group, the one used for playback
func qualities(ep types.Episode) string {
	if len(ep.Sources) == 0 || len(ep.Sources[0].Media) == 0 {
		return "-"
	}
	out := make([]string, 0, len(ep.Sources[0].Media))
	for _, m := range ep.Sources[0].Media {
		if m.Quality > 0 {
			out = append(out, fmt.Sprintf("%dp", m.Quality))
		}
	}
	if len(out) == 0 {
		return "auto"
	}
	return strings.Join(out, " ")
}
