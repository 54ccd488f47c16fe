package store

import (
	"maps"
	"slices"

	"github.com/gogpu/draft/entity"
)

// Delta is a set of changes that moves the store from one state to another.
// Put entries are full entities (created or replaced); Remove lists deleted
// ids. Order and Layers replace the respective tables when their Set flag is
// true.
type Delta struct {
	Put       []entity.Entity
	Remove    []entity.ID
	Order     []entity.ID
	SetOrder  bool
	Layers    []Layer
	SetLayers bool
}

// Empty reports whether the delta changes nothing.
func (d Delta) Empty() bool {
	return len(d.Put) == 0 && len(d.Remove) == 0 && !d.SetOrder && !d.SetLayers
}

// Patch is a reversible change: applying Forward then Reverse restores the
// original state exactly.
type Patch struct {
	Forward Delta
	Reverse Delta
}

// recorder captures the state of everything touched during a recording the
// first time it is touched.
type recorder struct {
	before  map[entity.ID]*entity.Entity // nil: absent before
	touched []entity.ID
	order   []entity.ID
	orderOK bool
	layers  map[entity.LayerID]Layer
}

// BeginRecord starts capturing changes. Every mutation until EndRecord is
// folded into a single Patch.
func (s *Store) BeginRecord() error {
	if s.rec != nil {
		return ErrRecording
	}
	s.rec = &recorder{before: make(map[entity.ID]*entity.Entity)}
	return nil
}

// Recording reports whether a recording is open.
func (s *Store) Recording() bool { return s.rec != nil }

// EndRecord closes the recording. The result is false when the net effect of
// the recorded mutations is nothing.
func (s *Store) EndRecord() (Patch, bool) {
	rec := s.rec
	s.rec = nil
	if rec == nil {
		return Patch{}, false
	}

	var p Patch
	for _, id := range rec.touched {
		before := rec.before[id]
		after, ok := s.entities[id]
		switch {
		case before == nil && !ok:
			continue
		case before != nil && ok && entity.Equal(*before, *after):
			continue
		}
		if ok {
			p.Forward.Put = append(p.Forward.Put, after.Clone())
		} else {
			p.Forward.Remove = append(p.Forward.Remove, id)
		}
		if before != nil {
			p.Reverse.Put = append(p.Reverse.Put, before.Clone())
		} else {
			p.Reverse.Remove = append(p.Reverse.Remove, id)
		}
	}
	if rec.orderOK && !slices.Equal(rec.order, s.order) {
		p.Forward.Order, p.Forward.SetOrder = slices.Clone(s.order), true
		p.Reverse.Order, p.Reverse.SetOrder = rec.order, true
	}
	if rec.layers != nil && !maps.Equal(rec.layers, s.layers) {
		p.Forward.Layers, p.Forward.SetLayers = sortedLayers(s.layers), true
		p.Reverse.Layers, p.Reverse.SetLayers = sortedLayers(rec.layers), true
	}
	if p.Forward.Empty() {
		return Patch{}, false
	}
	return p, true
}

func (s *Store) touch(id entity.ID) {
	r := s.rec
	if r == nil {
		return
	}
	if _, seen := r.before[id]; seen {
		return
	}
	r.touched = append(r.touched, id)
	if e, ok := s.entities[id]; ok {
		c := e.Clone()
		r.before[id] = &c
	} else {
		r.before[id] = nil
	}
}

func (s *Store) touchOrder() {
	if r := s.rec; r != nil && !r.orderOK {
		r.order = slices.Clone(s.order)
		r.orderOK = true
	}
}

func (s *Store) touchLayers() {
	if r := s.rec; r != nil && r.layers == nil {
		r.layers = maps.Clone(s.layers)
	}
}

// Apply replays a delta. Removed ids leave the selection. If the delta does
// not carry an order, removed ids are dropped from the order and new ids are
// appended, so the order stays a permutation of the stored ids either way.
func (s *Store) Apply(d Delta) {
	if d.Empty() {
		return
	}
	if d.SetLayers {
		s.touchLayers()
		s.layers = make(map[entity.LayerID]Layer, len(d.Layers)+1)
		for _, l := range d.Layers {
			s.layers[l.ID] = l
		}
		if _, ok := s.layers[entity.DefaultLayer]; !ok {
			s.layers[entity.DefaultLayer] = DefaultLayer()
		}
	}
	s.touchOrder()
	for _, id := range d.Remove {
		if _, ok := s.entities[id]; !ok {
			continue
		}
		s.touch(id)
		delete(s.entities, id)
		s.deselect(id)
	}
	for _, e := range d.Put {
		s.touch(e.ID)
		c := e.Clone()
		s.entities[e.ID] = &c
	}
	if d.SetOrder {
		s.order = slices.Clone(d.Order)
	}
	s.normalizeOrder()
	s.bumpAll()
}

// normalizeOrder drops ids that are not stored or repeated and appends stored
// ids that are missing, in ascending id order.
func (s *Store) normalizeOrder() {
	seen := make(map[entity.ID]bool, len(s.entities))
	out := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.entities[id]; !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) < len(s.entities) {
		missing := make([]entity.ID, 0, len(s.entities)-len(out))
		for id := range s.entities {
			if !seen[id] {
				missing = append(missing, id)
			}
		}
		slices.Sort(missing)
		out = append(out, missing...)
	}
	s.order = out
}
