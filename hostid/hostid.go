// Package hostid maps host string keys to stable non-zero entity ids.
//
// An id is the 64-bit xxHash of the key folded to 32 bits. The null id is
// never produced; collisions probe linearly to the next free id. For a given
// sequence of allocations the result is deterministic, so a host replaying
// the same keys in the same order gets the same ids.
package hostid

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/gogpu/draft/entity"
)

// ErrTaken is returned by Restore when the id or the key is already bound.
var ErrTaken = errors.New("hostid: already bound")

// Allocator binds keys to ids. It is not safe for concurrent use.
type Allocator struct {
	hash func(string) uint32
	ids  map[string]entity.ID
	keys map[entity.ID]string
}

// New returns an empty allocator.
func New() *Allocator {
	return &Allocator{
		hash: Fold,
		ids:  make(map[string]entity.ID),
		keys: make(map[entity.ID]string),
	}
}

// Fold returns the 32-bit hash of key: the two halves of its xxHash64
// xored together.
func Fold(key string) uint32 {
	h := xxhash.Sum64String(key)
	return uint32(h) ^ uint32(h>>32)
}

// ID returns the id bound to key, allocating one on first use.
func (a *Allocator) ID(key string) entity.ID {
	if id, ok := a.ids[key]; ok {
		return id
	}
	id := entity.ID(a.hash(key))
	for {
		if id == entity.None {
			id = 1
		}
		if _, taken := a.keys[id]; !taken {
			break
		}
		id++
	}
	a.bind(key, id)
	return id
}

// Lookup returns the id bound to key without allocating.
func (a *Allocator) Lookup(key string) (entity.ID, bool) {
	id, ok := a.ids[key]
	return id, ok
}

// Key returns the key bound to id.
func (a *Allocator) Key(id entity.ID) (string, bool) {
	k, ok := a.keys[id]
	return k, ok
}

// Restore binds key to a known id, for example one read back from a saved
// document.
func (a *Allocator) Restore(key string, id entity.ID) error {
	if id == entity.None {
		return fmt.Errorf("%w: null id", ErrTaken)
	}
	if cur, ok := a.ids[key]; ok {
		if cur == id {
			return nil
		}
		return fmt.Errorf("%w: key %q has id %d", ErrTaken, key, cur)
	}
	if k, ok := a.keys[id]; ok {
		return fmt.Errorf("%w: id %d has key %q", ErrTaken, id, k)
	}
	a.bind(key, id)
	return nil
}

// Release unbinds key. It reports whether the key was bound.
func (a *Allocator) Release(key string) bool {
	id, ok := a.ids[key]
	if !ok {
		return false
	}
	delete(a.ids, key)
	delete(a.keys, id)
	return true
}

// Keys returns the bound keys in sorted order.
func (a *Allocator) Keys() []string {
	return slices.Sorted(maps.Keys(a.ids))
}

// Len returns the number of bound keys.
func (a *Allocator) Len() int { return len(a.ids) }

func (a *Allocator) bind(key string, id entity.ID) {
	a.ids[key] = id
	a.keys[id] = key
}
