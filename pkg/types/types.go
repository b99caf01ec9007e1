package types

// Category names a listing feed of the catalog API
type Category string

const (
	CategoryForYou        Category = "foryou"
	CategoryTrending      Category = "trending"
	CategoryLatest        Category = "latest"
	CategoryPopularSearch Category = "populersearch"
	CategoryRandom        Category = "randomdrama"

	// CategoryAll is not an endpoint, it merges every feed in CombinedCategories
	CategoryAll Category = "all"
)

// CombinedCategories are the feeds fetched in parallel for CategoryAll
var CombinedCategories = []Category{
	CategoryForYou,
	CategoryTrending,
	CategoryLatest,
	CategoryPopularSearch,
	CategoryRandom,
}

// String returns the endpoint name
func (c Category) String() string {
	return string(c)
}

// Valid reports whether c is a known feed or the combined pseudo feed
func (c Category) Valid() bool {
	if c == CategoryAll {
		return true
	}
	for _, known := range CombinedCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns a human readable tab label
func (c Category) Label() string {
	switch c {
	case CategoryForYou:
		return "For You"
	case CategoryTrending:
		return "Trending"
	case CategoryLatest:
		return "Latest"
	case CategoryPopularSearch:
		return "Popular"
	case CategoryRandom:
		return "Random"
	case CategoryAll:
		return "All Dramas"
	default:
		return string(c)
	}
}

// Title is a drama returned by the catalog API
type Title struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Cover        string   `json:"cover,omitempty"`
	Synopsis     string   `json:"synopsis,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	EpisodeCount int      `json:"episodeCount"`
	ViewCount    string   `json:"viewCount,omitempty"`

	// Favorite comes from the view-state store, never from the API
	Favorite bool `json:"-"`
}

// FeedPage is one page of a category feed. Received counts the items the API
// sent, including ones dropped while decoding, and decides pagination.
type FeedPage struct {
	Titles   []Title
	Received int
}

// MediaSource is one playable rendition of an episode
type MediaSource struct {
	Quality int    `json:"quality"`
	URL     string `json:"url"`
}

// SourceGroup is a CDN with its renditions
type SourceGroup struct {
	Domain string        `json:"domain,omitempty"`
	Media  []MediaSource `json:"media"`
}

// Episode is a single playable chapter of a Title.
// ID decides selection equality, Index decides navigation order.
type Episode struct {
	ID      string        `json:"id"`
	Index   int           `json:"index"`
	Name    string        `json:"name"`
	Sources []SourceGroup `json:"sources,omitempty"`
}
