package api

import (
	"slices"
	"sync"

	"github.com/justchokingaround/cicidraci/pkg/types"
)

// EpisodeCache keeps the episode list of every title fetched in this session
type EpisodeCache struct {
	mu   sync.RWMutex
	data map[string][]types.Episode
}

// NewEpisodeCache creates an empty EpisodeCache
func NewEpisodeCache() *EpisodeCache {
	return &EpisodeCache{
		data: make(map[string][]types.Episode),
	}
}

// Get returns a copy of the cached episodes of titleID
func (c *EpisodeCache) Get(titleID string) ([]types.Episode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.data[titleID]
	return slices.Clone(val), ok
}

// Put stores the episodes of titleID. Empty lists are not cached.
func (c *EpisodeCache) Put(titleID string, episodes []types.Episode) {
	if len(episodes) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[titleID] = slices.Clone(episodes)
}
