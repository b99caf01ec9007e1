package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/justchokingaround/cicidraci/pkg/types"
)

// titleSource adapts titles to fuzzy.Source, matching on name and tags
type titleSource []types.Title

func (s titleSource) String(i int) string {
	return s[i].Name + " " + strings.Join(s[i].Tags, " ")
}

func (s titleSource) Len() int { return len(s) }

// FilterTitles ranks titles by fuzzy match of query against name and tags.
// An empty query returns titles unchanged.
func FilterTitles(titles []types.Title, query string) []types.Title {
	query = strings.TrimSpace(query)
	if query == "" {
		return titles
	}

	matches := fuzzy.FindFrom(query, titleSource(titles))
	out := make([]types.Title, 0, len(matches))
	for _, m := range matches {
		out = append(out, titles[m.Index])
	}
	return out
}

// Filter fuzzy-filters the visible titles without a network call
func (a *Aggregator) Filter(query string) []types.Title {
	return FilterTitles(a.Visible(), query)
}
