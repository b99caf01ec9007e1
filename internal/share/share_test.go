package share

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justchokingaround/cicidraci/internal/config"
)

func newTestSharer(command string) *Sharer {
	return New(&config.ShareConfig{BaseURL: "https://cicidraci.vercel.app/", ClipboardCommand: command}, nil)
}

func TestLink(t *testing.T) {
	s := newTestSharer("")
	assert.Equal(t, "https://cicidraci.vercel.app/drama/41000", s.Link("41000"))
	assert.Equal(t, "https://cicidraci.vercel.app/drama/a%2Fb", s.Link("a/b"))
}

func TestCopy(t *testing.T) {
	t.Run("system clipboard", func(t *testing.T) {
		s := newTestSharer("")
		var got string
		s.writeClipboard = func(text string) error { got = text; return nil }

		require.NoError(t, s.Copy("https://x/drama/1"))
		assert.Equal(t, "https://x/drama/1", got)
	})

	t.Run("falls back to configured command", func(t *testing.T) {
		s := newTestSharer(`my-copy --to "primary board"`)
		s.writeClipboard = func(string) error { return errors.New("no display") }
		s.lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }

		var name string
		var args []string
		var stdin string
		s.runCommand = func(n string, a []string, in string) error {
			name, args, stdin = n, a, in
			return nil
		}

		require.NoError(t, s.Copy("https://x/drama/1"))
		assert.Equal(t, "my-copy", name)
		assert.Equal(t, []string{"--to", "primary board"}, args)
		assert.Equal(t, "https://x/drama/1", stdin)
	})

	t.Run("nothing works", func(t *testing.T) {
		s := newTestSharer("")
		s.writeClipboard = func(string) error { return errors.New("no display") }
		s.lookPath = func(string) (string, error) { return "", errors.New("not found") }

		assert.ErrorIs(t, s.Copy("https://x/drama/1"), ErrNoClipboard)
	})
}

func TestOpen(t *testing.T) {
	s := newTestSharer("")
	var opened string
	s.openBrowser = func(u string) error { opened = u; return nil }

	require.NoError(t, s.Open("https://x/drama/1"))
	assert.Equal(t, "https://x/drama/1", opened)

	s.openBrowser = func(string) error { return errors.New("no browser") }
	assert.Error(t, s.Open("https://x/drama/1"))
}

func TestParseCommand(t *testing.T) {
	assert.Nil(t, parseCommand(""))
	assert.Equal(t, []string{"xclip", "-selection", "clipboard"}, parseCommand("xclip  -selection clipboard"))
	assert.Equal(t, []string{"sh", "-c", "cat > /tmp/x"}, parseCommand(`sh -c 'cat > /tmp/x'`))
}
