package assets

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Asset kinds, taken from the first path segment.
const (
	KindBlockstate = "blockstates"
	KindModel      = "models"
	KindFace       = "faces"
	KindTexture    = "textures"
	KindOther      = "other"
)

var cacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "blockctm",
	Subsystem: "assets",
	Name:      "cache_requests_total",
	Help:      "File cache lookups by asset kind, split by hit or miss.",
}, []string{"kind", "result"})

// RegisterMetrics registers the asset cache collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(cacheRequests)
}

// KindOf returns the asset kind of a root-relative path.
func KindOf(path string) string {
	head, _, ok := strings.Cut(path, "/")
	if !ok {
		return KindOther
	}
	switch head {
	case KindBlockstate, KindModel, KindFace, KindTexture:
		return head
	}
	return KindOther
}

// CacheStats counts lookups for one asset kind.
type CacheStats struct {
	Hits   int
	Misses int
}

// Cache keeps raw asset bytes by path and counts lookups per asset kind.
type Cache struct {
	mu    sync.Mutex
	data  map[string][]byte
	stats map[string]*CacheStats
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		data:  make(map[string][]byte),
		stats: make(map[string]*CacheStats),
	}
}

// Get returns the bytes cached for path.
func (c *Cache) Get(path string) ([]byte, bool) {
	kind := KindOf(path)

	c.mu.Lock()
	data, ok := c.data[path]
	s := c.stats[kind]
	if s == nil {
		s = &CacheStats{}
		c.stats[kind] = s
	}
	if ok {
		s.Hits++
	} else {
		s.Misses++
	}
	c.mu.Unlock()

	if ok {
		cacheRequests.WithLabelValues(kind, "hit").Inc()
	} else {
		cacheRequests.WithLabelValues(kind, "miss").Inc()
	}
	return data, ok
}

// Set stores the bytes read for path.
func (c *Cache) Set(path string, data []byte) {
	c.mu.Lock()
	c.data[path] = data
	c.mu.Unlock()
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Clear drops every file and resets the per-kind counts. Prometheus
// counters keep running.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.data = make(map[string][]byte)
	c.stats = make(map[string]*CacheStats)
	c.mu.Unlock()
}

// Stats returns the lookups for one kind.
func (c *Cache) Stats(kind string) CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.stats[kind]; s != nil {
		return *s
	}
	return CacheStats{}
}

// Totals sums the lookups over every kind.
func (c *Cache) Totals() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.stats {
		hits += s.Hits
		misses += s.Misses
	}
	return hits, misses
}
