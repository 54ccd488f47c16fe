package store

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/gogpu/draft/entity"
)

// Layer is an entry of the layer table. Style is the layer's default paint,
// used by hosts when creating new shapes on it.
type Layer struct {
	ID    entity.LayerID
	Name  string
	Flags entity.LayerFlags
	Style entity.Style
}

// Visible reports whether entities on the layer are rendered.
func (l Layer) Visible() bool { return l.Flags&entity.LayerVisible != 0 }

// Pickable reports whether entities on the layer can be hit.
func (l Layer) Pickable() bool { return l.Visible() && l.Flags&entity.LayerLocked == 0 }

// DefaultLayer returns the layer that every document starts with.
func DefaultLayer() Layer {
	return Layer{ID: entity.DefaultLayer, Name: "default", Flags: entity.LayerVisible, Style: entity.DefaultStyle()}
}

// Layer returns the layer with the given id.
func (s *Store) Layer(id entity.LayerID) (Layer, bool) {
	l, ok := s.layers[id]
	return l, ok
}

// Layers returns the layer table ordered by id.
func (s *Store) Layers() []Layer {
	return sortedLayers(s.layers)
}

func sortedLayers(m map[entity.LayerID]Layer) []Layer {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b Layer) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// LayerOf returns the layer of a stored entity. Entities whose layer has
// vanished report the default layer.
func (s *Store) LayerOf(e entity.Entity) Layer {
	if l, ok := s.layers[e.Layer]; ok {
		return l
	}
	return s.layers[entity.DefaultLayer]
}

// PutLayer creates or replaces a layer.
func (s *Store) PutLayer(l Layer) {
	if cur, ok := s.layers[l.ID]; ok && cur == l {
		return
	}
	s.touchLayers()
	s.layers[l.ID] = l
	s.bumpAll()
}

// DeleteLayer removes a layer and moves its entities to the default layer.
func (s *Store) DeleteLayer(id entity.LayerID) error {
	if id == entity.DefaultLayer {
		return ErrDefaultLayer
	}
	if _, ok := s.layers[id]; !ok {
		return fmt.Errorf("%w: %d", ErrNoLayer, id)
	}
	s.touchLayers()
	delete(s.layers, id)
	for eid, e := range s.entities {
		if e.Layer == id {
			s.touch(eid)
			e.Layer = entity.DefaultLayer
		}
	}
	s.bumpAll()
	return nil
}

// SetLayer moves an entity to a layer.
func (s *Store) SetLayer(id entity.ID, layer entity.LayerID) error {
	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if _, ok := s.layers[layer]; !ok {
		return fmt.Errorf("%w: %d", ErrNoLayer, layer)
	}
	if e.Layer == layer {
		return nil
	}
	s.touch(id)
	e.Layer = layer
	s.bumpAll()
	return nil
}
