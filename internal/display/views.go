package display

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Views formats the API's view count. Numeric values get thousands
// separators, preformatted ones like "1.2M" pass through.
func Views(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "-"
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
	if err != nil {
		return raw
	}
	return humanize.Comma(n)
}

// Episodes formats an episode count
func Episodes(n int) string {
	if n == 1 {
		return "1 episode"
	}
	return humanize.Comma(int64(n)) + " episodes"
}
