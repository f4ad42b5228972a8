package server

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/abatilo/taskstats/internal/export"
	"github.com/abatilo/taskstats/internal/task"
)

// contentHash fingerprints a task list by value, so any edit to any task
// yields a new hash.
func contentHash(tasks []*task.Task) (string, error) {
	hasher := blake3.New()
	enc := json.NewEncoder(hasher)
	for _, t := range tasks {
		if err := enc.Encode(export.ToRecord(t)); err != nil {
			return "", fmt.Errorf("hash task %s: %w", t.ID, err)
		}
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// seriesCache memoizes computed series for the current task list. Entries
// from an older list are dropped as soon as a different hash shows up.
type seriesCache struct {
	mu      sync.Mutex
	hash    string
	entries map[string]any
}

func newSeriesCache() *seriesCache {
	return &seriesCache{entries: make(map[string]any)}
}

// get returns the cached value for key under hash, computing and storing it
// on a miss. The second result reports a hit.
func (c *seriesCache) get(hash, key string, compute func() any) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if hash != c.hash {
		c.hash = hash
		c.entries = make(map[string]any)
	}
	if v, ok := c.entries[key]; ok {
		return v, true
	}
	v := compute()
	c.entries[key] = v
	return v, false
}
