// Package store holds the canonical document: the id-keyed entity table,
// the draw order, the layer table and the selection.
//
// The draw order is always a permutation of the stored ids. Every mutating
// method keeps that invariant, prunes the selection of deleted ids, and bumps
// the generation counters that renderers use to skip redundant work.
//
// A Store is not safe for concurrent use.
package store

import (
	"fmt"
	"slices"

	"github.com/gogpu/draft/entity"
	"github.com/gogpu/draft/geom"
)

// Generations are monotonic version counters. Content changes with every
// document mutation; Shapes and Text change when the respective render
// buffer would differ; Selection changes with the selection set.
type Generations struct {
	Content   uint64
	Shapes    uint64
	Text      uint64
	Selection uint64
}

// Store is the document arena.
type Store struct {
	entities map[entity.ID]*entity.Entity
	order    []entity.ID
	layers   map[entity.LayerID]Layer
	sel      Selection
	gen      Generations
	rec      *recorder
}

// New returns an empty store with only the default layer.
func New() *Store {
	return &Store{
		entities: make(map[entity.ID]*entity.Entity),
		layers:   map[entity.LayerID]Layer{entity.DefaultLayer: DefaultLayer()},
	}
}

// Len returns the number of stored entities.
func (s *Store) Len() int { return len(s.entities) }

// Has reports whether id is stored.
func (s *Store) Has(id entity.ID) bool {
	_, ok := s.entities[id]
	return ok
}

// Get returns a deep copy of the entity.
func (s *Store) Get(id entity.ID) (entity.Entity, bool) {
	e, ok := s.entities[id]
	if !ok {
		return entity.Entity{}, false
	}
	return e.Clone(), true
}

// Peek returns the stored entity without copying. The result must not be
// modified and is only valid until the next mutation.
func (s *Store) Peek(id entity.ID) (entity.Entity, bool) {
	e, ok := s.entities[id]
	if !ok {
		return entity.Entity{}, false
	}
	return *e, true
}

// Kind returns the kind of a stored entity, or KindInvalid.
func (s *Store) Kind(id entity.ID) entity.Kind {
	if e, ok := s.entities[id]; ok {
		return e.Kind()
	}
	return entity.KindInvalid
}

// Generation returns the current counters.
func (s *Store) Generation() Generations { return s.gen }

// NodePosition implements the node half of entity.Resolver.
func (s *Store) NodePosition(id entity.ID) (geom.Point, bool) {
	e, ok := s.entities[id]
	if !ok {
		return geom.Point{}, false
	}
	n, ok := e.Shape.(*entity.Node)
	if !ok {
		return geom.Point{}, false
	}
	return geom.Pt32(n.X, n.Y), true
}

// Upsert creates the entity or replaces its payload. A new entity goes on
// the default layer at the top of the draw order. An existing entity keeps
// its layer, draw-order position and selection state; its kind must not
// change.
func (s *Store) Upsert(id entity.ID, shape entity.Shape) (created bool, err error) {
	if id == entity.None {
		return false, ErrInvalidID
	}
	if shape == nil || !shape.Kind().Valid() {
		return false, ErrNilShape
	}
	if !entity.Finite(shape) {
		return false, fmt.Errorf("%w: entity %d", ErrNonFinite, id)
	}
	if cur, ok := s.entities[id]; ok {
		if cur.Kind() != shape.Kind() {
			return false, fmt.Errorf("%w: entity %d is %s, not %s", ErrKindMismatch, id, cur.Kind(), shape.Kind())
		}
		s.touch(id)
		cur.Shape = shape.Clone()
		s.bumpKind(shape.Kind())
		return false, nil
	}
	s.touch(id)
	s.touchOrder()
	s.entities[id] = &entity.Entity{ID: id, Layer: entity.DefaultLayer, Shape: shape.Clone()}
	s.order = append(s.order, id)
	s.bumpKind(shape.Kind())
	return true, nil
}

// Update applies fn to the stored payload of id in place. fn must not change
// the kind.
func (s *Store) Update(id entity.ID, fn func(entity.Shape)) error {
	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	next := e.Shape.Clone()
	fn(next)
	if next.Kind() != e.Kind() {
		return ErrKindMismatch
	}
	if !entity.Finite(next) {
		return fmt.Errorf("%w: entity %d", ErrNonFinite, id)
	}
	s.touch(id)
	e.Shape = next
	s.bumpKind(next.Kind())
	return nil
}

// Delete removes an entity from the table, the draw order and the
// selection. It reports whether anything was removed.
func (s *Store) Delete(id entity.ID) bool {
	e, ok := s.entities[id]
	if !ok {
		return false
	}
	s.touch(id)
	s.touchOrder()
	k := e.Kind()
	delete(s.entities, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	s.deselect(id)
	s.bumpKind(k)
	s.gen.Shapes++ // draw order changed
	s.gen.Text++
	return true
}

// Clear deletes every entity. Layers are kept.
func (s *Store) Clear() {
	if len(s.entities) == 0 {
		return
	}
	s.touchOrder()
	for id := range s.entities {
		s.touch(id)
	}
	clear(s.entities)
	s.order = s.order[:0]
	if s.sel.Len() > 0 {
		s.sel.clear()
		s.gen.Selection++
	}
	s.bumpAll()
}

// Order returns a copy of the draw order, bottom first.
func (s *Store) Order() []entity.ID { return slices.Clone(s.order) }

// Position returns the draw-order index of id, or -1.
func (s *Store) Position(id entity.ID) int { return slices.Index(s.order, id) }

// Each calls fn for every entity from bottom to top until fn returns false.
// The entity passed to fn is not a copy and must not be modified.
func (s *Store) Each(fn func(entity.Entity) bool) {
	for _, id := range s.order {
		if !fn(*s.entities[id]) {
			return
		}
	}
}

// EachTopDown is Each from top to bottom.
func (s *Store) EachTopDown(fn func(entity.Entity) bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		if !fn(*s.entities[s.order[i]]) {
			return
		}
	}
}

func (s *Store) bumpKind(k entity.Kind) {
	s.gen.Content++
	if k == entity.KindText {
		s.gen.Text++
	} else {
		s.gen.Shapes++
	}
}

func (s *Store) bumpAll() {
	s.gen.Content++
	s.gen.Shapes++
	s.gen.Text++
}
