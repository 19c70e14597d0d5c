package store

import (
	"context"
	"errors"
	"sync"

	"github.com/couchcryptid/asthma-forecast-service/internal/domain"
)

// CachedEnvStore wraps an EnvStore with an in-memory LRU cache. A batch run
// reads the same (location, date) rows once per user, so the cache turns
// cross-user fan-out into a single store read per row. Only found rows are
// cached: a gap stays a live lookup and can be filled by later ingestion.
type CachedEnvStore struct {
	inner EnvStore
	cache *lruCache
	hit   func()
	miss  func()
}

// NewCachedEnvStore creates a cache decorator around an environmental store.
// The hit and miss callbacks feed metrics; either may be nil.
func NewCachedEnvStore(inner EnvStore, maxEntries int, hit, miss func()) *CachedEnvStore {
	if hit == nil {
		hit = func() {}
	}
	if miss == nil {
		miss = func() {}
	}
	return &CachedEnvStore{
		inner: inner,
		cache: newLRUCache(maxEntries),
		hit:   hit,
		miss:  miss,
	}
}

func (c *CachedEnvStore) Daily(ctx context.Context, locationID, date string) (domain.EnvironmentalRecord, error) {
	key := locationID + "|" + date
	if rec, ok := c.cache.get(key); ok {
		c.hit()
		return rec, nil
	}
	rec, err := c.inner.Daily(ctx, locationID, date)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return domain.EnvironmentalRecord{}, err
		}
		c.miss()
		return domain.EnvironmentalRecord{}, err
	}
	c.miss()
	c.cache.put(key, rec)
	return rec, nil
}

func (c *CachedEnvStore) Range(ctx context.Context, locationID, from, to string) ([]domain.EnvironmentalRecord, error) {
	// Range reads are one-shot (training export); no caching.
	return c.inner.Range(ctx, locationID, from, to)
}

// lruCache is a simple thread-safe LRU cache for environmental rows.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.EnvironmentalRecord
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.EnvironmentalRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.EnvironmentalRecord{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.EnvironmentalRecord) {
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
