package nomads

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/wave-bulletin-service/internal/domain"
	"github.com/couchcryptid/wave-bulletin-service/internal/observability"
)

// Fetcher is the upstream bulletin source.
type Fetcher interface {
	ProbeExists(ctx context.Context, station string, cycle domain.ModelCycle) (bool, error)
	Fetch(ctx context.Context, station string, cycle domain.ModelCycle) (string, error)
}

// CachedFetcher wraps a Fetcher with an in-memory LRU cache of bulletin
// texts. A bulletin for a published cycle never changes, so entries need no
// expiry; only successful downloads are cached, so absent cycles keep being
// re-probed until they appear.
type CachedFetcher struct {
	inner   Fetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner Fetcher, maxEntries int, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func cacheKey(station string, cycle domain.ModelCycle) string {
	return fmt.Sprintf("%s|%s", station, cycle.String())
}

// ProbeExists answers from the cache when the bulletin text is already held,
// skipping the network round trip.
func (c *CachedFetcher) ProbeExists(ctx context.Context, station string, cycle domain.ModelCycle) (bool, error) {
	if _, ok := c.cache.get(cacheKey(station, cycle)); ok {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return true, nil
	}
	return c.inner.ProbeExists(ctx, station, cycle)
}

func (c *CachedFetcher) Fetch(ctx context.Context, station string, cycle domain.ModelCycle) (string, error) {
	key := cacheKey(station, cycle)
	if text, ok := c.cache.get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return text, nil
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	text, err := c.inner.Fetch(ctx, station, cycle)
	if err != nil {
		return "", err
	}
	c.cache.put(key, text)
	return text, nil
}

// lruCache is a simple thread-safe LRU cache for bulletin texts.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value string
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
