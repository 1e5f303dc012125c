// Package selection tracks which items are selected on a designer surface.
package selection

// Set is an ordered set of selected ids. IDs reports them in the order they
// were selected. A Set is not safe for concurrent use.
type Set[ID comparable] struct {
	order []ID
	index map[ID]struct{}
}

// New returns an empty Set.
func New[ID comparable]() *Set[ID] {
	return &Set[ID]{index: make(map[ID]struct{})}
}

// Toggle handles a click on id. With shift held it adds id if absent or
// removes it if present, leaving the rest untouched. Without shift the
// selection becomes exactly {id}.
//
// Example:
//
//	sel.Toggle("w1", false) // {w1}
//	sel.Toggle("w2", true)  // {w1, w2}
//	sel.Toggle("w1", true)  // {w2}
func (s *Set[ID]) Toggle(id ID, shift bool) {
	if !shift {
		s.SelectOne(id)
		return
	}
	if s.IsSelected(id) {
		s.Remove(id)
		return
	}
	s.add(id)
}

// SelectOne replaces the selection with id.
func (s *Set[ID]) SelectOne(id ID) {
	s.Clear()
	s.add(id)
}

// SelectMany replaces the selection with ids. Duplicates are kept once.
func (s *Set[ID]) SelectMany(ids ...ID) {
	s.Clear()
	for _, id := range ids {
		s.add(id)
	}
}

// Clear empties the selection.
func (s *Set[ID]) Clear() {
	s.order = nil
	clear(s.index)
}

// Remove drops ids from the selection, for example after the items were
// deleted. Unknown ids are ignored.
func (s *Set[ID]) Remove(ids ...ID) {
	removed := false
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			delete(s.index, id)
			removed = true
		}
	}
	if !removed {
		return
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.index[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
}

// IsSelected reports whether id is selected.
func (s *Set[ID]) IsSelected(id ID) bool {
	_, ok := s.index[id]
	return ok
}

// Count returns the number of selected ids.
func (s *Set[ID]) Count() int {
	return len(s.order)
}

// IDs returns the selected ids in selection order.
func (s *Set[ID]) IDs() []ID {
	return append([]ID(nil), s.order...)
}

func (s *Set[ID]) add(id ID) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
}
