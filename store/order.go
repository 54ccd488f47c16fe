package store

import (
	"slices"

	"github.com/gogpu/draft/entity"
)

// movedSet returns the stored ids among ids, or nil if there are none.
func (s *Store) movedSet(ids []entity.ID) map[entity.ID]bool {
	var set map[entity.ID]bool
	for _, id := range ids {
		if _, ok := s.entities[id]; !ok {
			continue
		}
		if set == nil {
			set = make(map[entity.ID]bool, len(ids))
		}
		set[id] = true
	}
	return set
}

// permute replaces the draw order with next if it differs.
func (s *Store) permute(next []entity.ID) bool {
	if slices.Equal(next, s.order) {
		return false
	}
	s.touchOrder()
	s.order = next
	s.gen.Content++
	s.gen.Shapes++
	s.gen.Text++
	return true
}

// partition moves the ids in set to the front or back, keeping the relative
// order within both groups.
func (s *Store) partition(set map[entity.ID]bool, toFront bool) bool {
	if set == nil {
		return false
	}
	moved := make([]entity.ID, 0, len(set))
	rest := make([]entity.ID, 0, len(s.order))
	for _, id := range s.order {
		if set[id] {
			moved = append(moved, id)
		} else {
			rest = append(rest, id)
		}
	}
	if toFront {
		return s.permute(append(rest, moved...))
	}
	return s.permute(append(moved, rest...))
}

// BringToFront moves ids to the top of the draw order, preserving their
// relative order. Unknown ids are ignored. It reports whether the order
// changed.
func (s *Store) BringToFront(ids []entity.ID) bool {
	return s.partition(s.movedSet(ids), true)
}

// SendToBack moves ids to the bottom of the draw order.
func (s *Store) SendToBack(ids []entity.ID) bool {
	return s.partition(s.movedSet(ids), false)
}

// BringForward moves each id one step up past the next unmoved entity.
// Adjacent moved ids travel together; an id already on top stays there.
func (s *Store) BringForward(ids []entity.ID) bool {
	set := s.movedSet(ids)
	if set == nil {
		return false
	}
	next := slices.Clone(s.order)
	// Walk downward so that a block of moved ids shifts as a unit.
	for i := len(next) - 2; i >= 0; i-- {
		if set[next[i]] && !set[next[i+1]] {
			next[i], next[i+1] = next[i+1], next[i]
		}
	}
	return s.permute(next)
}

// SendBackward moves each id one step down past the previous unmoved entity.
func (s *Store) SendBackward(ids []entity.ID) bool {
	set := s.movedSet(ids)
	if set == nil {
		return false
	}
	next := slices.Clone(s.order)
	for i := 1; i < len(next); i++ {
		if set[next[i]] && !set[next[i-1]] {
			next[i], next[i-1] = next[i-1], next[i]
		}
	}
	return s.permute(next)
}

// SetOrder replaces the draw order. Unknown and repeated ids are dropped;
// stored ids missing from ids keep their current relative order above the
// listed ones.
func (s *Store) SetOrder(ids []entity.ID) bool {
	next := make([]entity.ID, 0, len(s.order))
	seen := make(map[entity.ID]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.entities[id]; !ok || seen[id] {
			continue
		}
		seen[id] = true
		next = append(next, id)
	}
	for _, id := range s.order {
		if !seen[id] {
			next = append(next, id)
		}
	}
	return s.permute(next)
}
