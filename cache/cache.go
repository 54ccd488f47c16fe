// Package cache provides a sharded LRU cache that is safe for concurrent use.
//
// Keys are spread over 16 shards by a caller-supplied hash; each shard has
// its own lock and evicts its least recently used entry when full.
package cache

import (
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

const (
	shardCount = 16
	shardMask  = shardCount - 1

	// DefaultCapacity is used by New for a non-positive capacity.
	DefaultCapacity = 1024
)

// Hasher computes the hash that selects a key's shard.
type Hasher[K any] func(K) uint64

// String hashes a string key with xxHash.
func String(s string) uint64 { return xxhash.Sum64String(s) }

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	if total := s.Hits + s.Misses; total > 0 {
		return float64(s.Hits) / float64(total)
	}
	return 0
}

// LRU is a sharded least-recently-used cache.
type LRU[K comparable, V any] struct {
	shards   [shardCount]shard[K, V]
	hash     Hasher[K]
	perShard int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]*node[K, V]
	// head is the most recently used entry.
	head, tail *node[K, V]
}

type node[K comparable, V any] struct {
	key        K
	val        V
	prev, next *node[K, V]
}

// New returns a cache holding about capacity entries.
func New[K comparable, V any](capacity int, hash Hasher[K]) *LRU[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &LRU[K, V]{hash: hash, perShard: max((capacity+shardMask)/shardCount, 1)}
	for i := range c.shards {
		c.shards[i].items = make(map[K]*node[K, V])
	}
	return c
}

func (c *LRU[K, V]) shardOf(key K) *shard[K, V] {
	return &c.shards[c.hash(key)&shardMask]
}

// Get returns the value cached for key and marks it recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	s := c.shardOf(key)
	s.mu.Lock()
	n, ok := s.items[key]
	if !ok {
		s.mu.Unlock()
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.moveToFront(n)
	v := n.val
	s.mu.Unlock()
	c.hits.Add(1)
	return v, true
}

// Put stores value under key, evicting the shard's oldest entry if full.
// The value is stored as is; callers must not modify it afterwards.
func (c *LRU[K, V]) Put(key K, value V) {
	s := c.shardOf(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.items[key]; ok {
		n.val = value
		s.moveToFront(n)
		return
	}
	for len(s.items) >= c.perShard && s.tail != nil {
		old := s.tail
		s.unlink(old)
		delete(s.items, old.key)
		c.evictions.Add(1)
	}
	n := &node[K, V]{key: key, val: value}
	s.items[key] = n
	s.pushFront(n)
}

// GetOrCreate returns the cached value for key, calling create and caching
// its result on a miss. create runs without the shard lock held, so
// concurrent misses on one key may each call it.
func (c *LRU[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := create()
	c.Put(key, v)
	return v
}

// Delete removes key. It reports whether the key was present.
func (c *LRU[K, V]) Delete(key K) bool {
	s := c.shardOf(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[key]
	if ok {
		s.unlink(n)
		delete(s.items, key)
	}
	return ok
}

// Clear removes every entry. Counters are kept.
func (c *LRU[K, V]) Clear() {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		clear(s.items)
		s.head, s.tail = nil, nil
		s.mu.Unlock()
	}
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += len(s.items)
		s.mu.Unlock()
	}
	return n
}

// Capacity returns the maximum number of entries.
func (c *LRU[K, V]) Capacity() int { return c.perShard * shardCount }

// Stats returns the current counters.
func (c *LRU[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Len:       c.Len(),
	}
}

func (s *shard[K, V]) pushFront(n *node[K, V]) {
	n.prev, n.next = nil, s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

func (s *shard[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (s *shard[K, V]) moveToFront(n *node[K, V]) {
	if s.head == n {
		return
	}
	s.unlink(n)
	s.pushFront(n)
}
