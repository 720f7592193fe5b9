package stats

import "linkmon/internal/models"

// DefaultCacheSize bounds the number of memoized stability results
const DefaultCacheSize = 10

// Fingerprint identifies the dataset state a result was computed from
type Fingerprint struct {
	Count  int
	Newest int64
}

// FingerprintOf returns the fingerprint of an ascending sample slice
func FingerprintOf(samples []models.PingSample) Fingerprint {
	if len(samples) == 0 {
		return Fingerprint{}
	}
	return Fingerprint{Count: len(samples), Newest: samples[len(samples)-1].Timestamp}
}

type cacheKey struct {
	window      string
	fingerprint Fingerprint
}

// Cache memoizes stability metrics per window and fingerprint.
// Eviction is by insertion order: the oldest inserted key goes first.
type Cache struct {
	size    int
	order   []cacheKey
	entries map[cacheKey]Metrics
}

// NewCache creates a cache holding at most size entries
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{
		size:    size,
		entries: make(map[cacheKey]Metrics, size),
	}
}

// Get returns the memoized metrics for a window and fingerprint
func (c *Cache) Get(window string, fp Fingerprint) (Metrics, bool) {
	m, ok := c.entries[cacheKey{window, fp}]
	return m, ok
}

// Put stores metrics, evicting the first inserted entry when full.
// Re-putting an existing key replaces its value in place.
func (c *Cache) Put(window string, fp Fingerprint, m Metrics) {
	key := cacheKey{window, fp}
	if _, ok := c.entries[key]; ok {
		c.entries[key] = m
		return
	}
	c.entries[key] = m
	c.order = append(c.order, key)
	for len(c.order) > c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	return len(c.entries)
}

// Clear drops every entry
func (c *Cache) Clear() {
	c.order = nil
	c.entries = make(map[cacheKey]Metrics, c.size)
}

// Cached returns stability metrics for the window over samples, computing them on a miss.
// The window reference time is the newest sample. A hit is returned as is.
func Cached(c *Cache, window string, samples []models.PingSample) (Metrics, bool) {
	fp := FingerprintOf(samples)
	if m, ok := c.Get(window, fp); ok {
		return m, true
	}
	m := Stability(samples, WindowMinutes(window), fp.Newest)
	c.Put(window, fp, m)
	return m, false
}
