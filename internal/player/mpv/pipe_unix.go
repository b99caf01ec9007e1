//go:build !windows

package mpv

// isPipeReady is never used on Unix, sockets are checked with os.Stat
func isPipeReady(string) bool {
	return false
}
