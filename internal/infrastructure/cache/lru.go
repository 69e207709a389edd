// Package cache provides in-memory cache implementations for infrastructure adapters.
package cache

import (
	"container/list"
	"sync"
)

// LRU is a thread-safe least recently used cache bounded by an entry count
// and, optionally, by the summed cost of its values. Get and Set both mark an
// entry as recently used.
type LRU[K comparable, V any] struct {
	maxEntries int
	maxCost    int64
	cost       func(V) int64

	mu    sync.Mutex
	total int64
	items map[K]*list.Element
	order *list.List // Front = most recent
}

type entry[K comparable, V any] struct {
	key   K
	value V
	cost  int64
}

// NewLRU creates a cache holding at most maxEntries values. A maxEntries
// of zero or less is treated as 1.
func NewLRU[K comparable, V any](maxEntries int) *LRU[K, V] {
	return NewCostLRU[K, V](maxEntries, 0, nil)
}

// NewCostLRU creates a cache that also evicts while the summed cost of its
// values exceeds maxCost. A value costing more than maxCost is not stored.
// maxCost <= 0 or a nil cost disables the budget.
func NewCostLRU[K comparable, V any](maxEntries int, maxCost int64, cost func(V) int64) *LRU[K, V] {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	if cost == nil {
		maxCost = 0
	}
	return &LRU[K, V]{
		maxEntries: maxEntries,
		maxCost:    maxCost,
		cost:       cost,
		items:      make(map[K]*list.Element),
		order:      list.New(),
	}
}

// Get returns the value for key and marks it as recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Set adds or replaces the value for key and evicts least recently used
// entries until both bounds hold. It reports whether the value was kept.
func (c *LRU[K, V]) Set(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	var cost int64
	if c.maxCost > 0 {
		cost = c.cost(value)
		if cost > c.maxCost {
			c.removeLocked(key)
			return false
		}
	}

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry[K, V])
		c.total += cost - e.cost
		e.value, e.cost = value, cost
		c.order.MoveToFront(elem)
	} else {
		c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, cost: cost})
		c.total += cost
	}

	for c.order.Len() > c.maxEntries || (c.maxCost > 0 && c.total > c.maxCost) {
		c.removeElement(c.order.Back())
	}
	return true
}

// Remove deletes key. Missing keys are ignored.
func (c *LRU[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
}

func (c *LRU[K, V]) removeLocked(key K) {
	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

func (c *LRU[K, V]) removeElement(elem *list.Element) {
	e := elem.Value.(*entry[K, V])
	c.order.Remove(elem)
	delete(c.items, e.key)
	c.total -= e.cost
}

// Len returns the number of cached values.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Cost returns the summed cost of cached values.
func (c *LRU[K, V]) Cost() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Clear removes every value.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*list.Element)
	c.order.Init()
	c.total = 0
}
