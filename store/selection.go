package store

import (
	"maps"
	"slices"

	"github.com/gogpu/draft/entity"
)

// SelectMode combines a set of ids with the current selection.
type SelectMode uint8

const (
	// SelectReplace makes the selection exactly the given ids.
	SelectReplace SelectMode = iota
	// SelectAdd unions the ids into the selection.
	SelectAdd
	// SelectRemove subtracts the ids from the selection.
	SelectRemove
	// SelectToggle flips the membership of each id.
	SelectToggle
)

func (m SelectMode) String() string {
	switch m {
	case SelectReplace:
		return "Replace"
	case SelectAdd:
		return "Add"
	case SelectRemove:
		return "Remove"
	case SelectToggle:
		return "Toggle"
	default:
		return "SelectMode(?)"
	}
}

// Selection is a set of entity ids. It is view state: it never enters
// history.
type Selection struct {
	ids map[entity.ID]struct{}
}

// Len returns the number of selected ids.
func (s *Selection) Len() int { return len(s.ids) }

// Contains reports whether id is selected.
func (s *Selection) Contains(id entity.ID) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selected ids in ascending order.
func (s *Selection) IDs() []entity.ID {
	return slices.Sorted(maps.Keys(s.ids))
}

func (s *Selection) add(id entity.ID) bool {
	if s.Contains(id) {
		return false
	}
	if s.ids == nil {
		s.ids = make(map[entity.ID]struct{})
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *Selection) remove(id entity.ID) bool {
	if !s.Contains(id) {
		return false
	}
	delete(s.ids, id)
	return true
}

func (s *Selection) clear() { clear(s.ids) }

// Selection returns the current selection. The result must not be retained
// across mutations.
func (s *Store) Selection() *Selection { return &s.sel }

// Selected reports whether id is selected.
func (s *Store) Selected(id entity.ID) bool { return s.sel.Contains(id) }

// Select applies ids to the selection with mode. Ids that are not stored are
// ignored. It reports whether the selection changed.
func (s *Store) Select(mode SelectMode, ids []entity.ID) bool {
	changed := false
	if mode == SelectReplace {
		want := make(map[entity.ID]bool, len(ids))
		for _, id := range ids {
			if s.Has(id) {
				want[id] = true
			}
		}
		for _, id := range s.sel.IDs() {
			if !want[id] && s.sel.remove(id) {
				changed = true
			}
		}
		for id := range want {
			if s.sel.add(id) {
				changed = true
			}
		}
	} else {
		seen := make(map[entity.ID]bool, len(ids))
		for _, id := range ids {
			if seen[id] || !s.Has(id) {
				continue
			}
			seen[id] = true
			switch mode {
			case SelectAdd:
				changed = s.sel.add(id) || changed
			case SelectRemove:
				changed = s.sel.remove(id) || changed
			case SelectToggle:
				if !s.sel.remove(id) {
					s.sel.add(id)
				}
				changed = true
			}
		}
	}
	if changed {
		s.gen.Selection++
	}
	return changed
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() bool {
	if s.sel.Len() == 0 {
		return false
	}
	s.sel.clear()
	s.gen.Selection++
	return true
}

func (s *Store) deselect(id entity.ID) {
	if s.sel.remove(id) {
		s.gen.Selection++
	}
}
