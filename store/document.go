package store

import (
	"fmt"

	"github.com/gogpu/draft/entity"
)

// Document is a detached, self-contained copy of a store's content. It is
// the staging form used by snapshot save and load.
type Document struct {
	Generation uint64
	Layers     []Layer
	Entities   []entity.Entity // in draw order
	Order      []entity.ID
	Selection  []entity.ID
}

// Document returns a deep copy of the store content. Entities are listed in
// draw order.
func (s *Store) Document() Document {
	doc := Document{
		Generation: s.gen.Content,
		Layers:     s.Layers(),
		Order:      s.Order(),
		Selection:  s.sel.IDs(),
		Entities:   make([]entity.Entity, 0, len(s.order)),
	}
	for _, id := range s.order {
		doc.Entities = append(doc.Entities, s.entities[id].Clone())
	}
	return doc
}

// Validate checks that the document could be swapped into a store: ids are
// non-null and unique, every payload is present, every entity's layer
// exists, the order is a permutation of the entity ids and the selection is
// a subset of them.
func (d *Document) Validate() error {
	layers := map[entity.LayerID]bool{entity.DefaultLayer: true}
	for _, l := range d.Layers {
		if layers[l.ID] && l.ID != entity.DefaultLayer {
			return fmt.Errorf("%w: duplicate layer %d", ErrInvalidDocument, l.ID)
		}
		layers[l.ID] = true
	}
	ids := make(map[entity.ID]bool, len(d.Entities))
	for _, e := range d.Entities {
		switch {
		case e.ID == entity.None:
			return fmt.Errorf("%w: null entity id", ErrInvalidDocument)
		case ids[e.ID]:
			return fmt.Errorf("%w: duplicate entity %d", ErrInvalidDocument, e.ID)
		case e.Shape == nil || !e.Kind().Valid():
			return fmt.Errorf("%w: entity %d has no payload", ErrInvalidDocument, e.ID)
		case !layers[e.Layer]:
			return fmt.Errorf("%w: entity %d is on unknown layer %d", ErrInvalidDocument, e.ID, e.Layer)
		}
		ids[e.ID] = true
	}
	if len(d.Order) != len(ids) {
		return fmt.Errorf("%w: order has %d ids for %d entities", ErrInvalidDocument, len(d.Order), len(ids))
	}
	seen := make(map[entity.ID]bool, len(d.Order))
	for _, id := range d.Order {
		if !ids[id] || seen[id] {
			return fmt.Errorf("%w: order is not a permutation of the entities", ErrInvalidDocument)
		}
		seen[id] = true
	}
	for _, id := range d.Selection {
		if !ids[id] {
			return fmt.Errorf("%w: selected id %d is not an entity", ErrInvalidDocument, id)
		}
	}
	return nil
}

// Replace swaps the whole store content for doc. The document is validated
// first; on error the store is unchanged. Generations only move forward: the
// content generation becomes the larger of doc.Generation and the current
// one plus one. Replace is not recorded and discards any open recording.
func (s *Store) Replace(doc Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	entities := make(map[entity.ID]*entity.Entity, len(doc.Entities))
	for _, e := range doc.Entities {
		c := e.Clone()
		entities[e.ID] = &c
	}
	layers := map[entity.LayerID]Layer{entity.DefaultLayer: DefaultLayer()}
	for _, l := range doc.Layers {
		layers[l.ID] = l
	}
	order := append([]entity.ID(nil), doc.Order...)

	s.rec = nil
	s.entities = entities
	s.layers = layers
	s.order = order
	s.sel.clear()
	for _, id := range doc.Selection {
		s.sel.add(id)
	}
	s.gen.Content = max(doc.Generation, s.gen.Content+1)
	s.gen.Shapes++
	s.gen.Text++
	s.gen.Selection++
	return nil
}
