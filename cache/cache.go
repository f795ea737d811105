// Package cache provides a generic, thread-safe LRU cache with metrics.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Cache is a generic thread-safe LRU cache with built-in metrics.
type Cache[K comparable, V any] struct {
	mu       sync.RWMutex
	items    map[K]*node[K, V]
	lru      *list.List
	capacity int

	// Metrics (lock-free using atomics)
	hits   atomic.Uint64
	misses atomic.Uint64
	evicts atomic.Uint64
}

// node holds a cached value and its position in the LRU list.
type node[K comparable, V any] struct {
	key     K
	value   V
	element *list.Element
}

// New creates a Cache with the specified capacity.
// When the cache is full, the least recently used item is evicted.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = 100
	}
	return &Cache[K, V]{
		items:    make(map[K]*node[K, V], capacity),
		lru:      list.New(),
		capacity: capacity,
	}
}

// Get retrieves a value from the cache.
// Accessing an item moves it to the front of the LRU list.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	n, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	c.hits.Add(1)

	c.mu.Lock()
	c.lru.MoveToFront(n.element)
	c.mu.Unlock()

	return n.value, true
}

// Set adds or updates a value in the cache.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

// set inserts without locking. Must be called with mu held.
func (c *Cache[K, V]) set(key K, value V) {
	if n, ok := c.items[key]; ok {
		n.value = value
		c.lru.MoveToFront(n.element)
		return
	}

	if len(c.items) >= c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			delete(c.items, oldest.Value.(K))
			c.lru.Remove(oldest)
			c.evicts.Add(1)
		}
	}

	element := c.lru.PushFront(key)
	c.items[key] = &node[K, V]{key: key, value: value, element: element}
}

// GetOrCompute returns the cached value for key, or calls fn to compute it.
// Failed computations are not cached, so a transient error does not poison
// the entry.
func (c *Cache[K, V]) GetOrCompute(key K, fn func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring the write lock
	if n, ok := c.items[key]; ok {
		c.lru.MoveToFront(n.element)
		return n.value, nil
	}

	value, err := fn()
	if err != nil {
		var zero V
		return zero, err
	}

	c.set(key, value)
	return value, nil
}

// Delete removes an item from the cache.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.items[key]; ok {
		delete(c.items, key)
		c.lru.Remove(n.element)
	}
}

// Len returns the current number of items in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear removes all items from the cache.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*node[K, V], c.capacity)
	c.lru.Init()
}

// Stats holds cache statistics.
type Stats struct {
	Size     int
	Capacity int
	Hits     uint64
	Misses   uint64
	Evicts   uint64
	HitRate  float64
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.RLock()
	size := len(c.items)
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Size:     size,
		Capacity: c.capacity,
		Hits:     hits,
		Misses:   misses,
		Evicts:   c.evicts.Load(),
		HitRate:  hitRate,
	}
}
