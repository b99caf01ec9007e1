// Package share builds public links to titles and hands them to the
// clipboard or the browser.
package share

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"

	"github.com/justchokingaround/cicidraci/internal/config"
)

// ErrNoClipboard is returned when neither the system clipboard nor any
// clipboard tool could take the link
var ErrNoClipboard = errors.New("no clipboard available")

// Sharer produces and distributes share links
type Sharer struct {
	baseURL string
	command string
	logger  *slog.Logger

	// replaceable in tests
	writeClipboard func(string) error
	openBrowser    func(string) error
	lookPath       func(string) (string, error)
	runCommand     func(name string, args []string, stdin string) error
}

// New creates a Sharer from the share section of cfg
func New(cfg *config.ShareConfig, logger *slog.Logger) *Sharer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sharer{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		command:        cfg.ClipboardCommand,
		logger:         logger.With("component", "share"),
		writeClipboard: clipboard.WriteAll,
		openBrowser:    browser.OpenURL,
		lookPath:       exec.LookPath,
		runCommand:     runWithStdin,
	}
}

// Link returns the public page of a title: <base>/drama/<id>
func (s *Sharer) Link(titleID string) string {
	return s.baseURL + "/drama/" + url.PathEscape(titleID)
}

// Copy puts link on the clipboard. When the system clipboard fails it falls
// back to the configured command, then to the usual OS tools.
func (s *Sharer) Copy(link string) error {
	err := s.writeClipboard(link)
	if err == nil {
		s.logger.Debug("copied link to clipboard")
		return nil
	}
	s.logger.Warn("system clipboard failed, trying clipboard tools", "error", err)

	for _, candidate := range s.candidates() {
		if _, err := s.lookPath(candidate[0]); err != nil {
			continue
		}
		if err := s.runCommand(candidate[0], candidate[1:], link); err != nil {
			s.logger.Warn("clipboard tool failed", "command", candidate[0], "error", err)
			continue
		}
		s.logger.Debug("copied link to clipboard", "command", candidate[0])
		return nil
	}

	return ErrNoClipboard
}

// Open opens link in the default browser
func (s *Sharer) Open(link string) error {
	if err := s.openBrowser(link); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// candidates lists the clipboard commands to try, in order
func (s *Sharer) candidates() [][]string {
	var out [][]string
	if parts := parseCommand(s.command); len(parts) > 0 {
		out = append(out, parts)
	}

	switch runtime.GOOS {
	case "windows":
		out = append(out, []string{"clip.exe"})
	case "darwin":
		out = append(out, []string{"pbcopy"})
	default:
		if isWSL() {
			out = append(out, []string{"clip.exe"})
		}
		out = append(out,
			[]string{"wl-copy"},
			[]string{"xclip", "-selection", "clipboard"},
			[]string{"xsel", "--clipboard", "--input"},
		)
	}
	return out
}

func runWithStdin(name string, args []string, stdin string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	return cmd.Run()
}

func isWSL() bool {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// parseCommand splits a command line on spaces, keeping quoted arguments together
func parseCommand(command string) []string {
	var parts []string
	var current strings.Builder
	var quote rune

	for _, r := range command {
		switch {
		case quote == 0 && (r == '\'' || r == '"'):
			quote = r
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && r == ' ':
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
