package store

// Selection operations tolerate ids that are not in the element map:
// "phantom" selections are accepted and kept until something removes them.
// This matches the documented behavior of the selection set rather than a
// validation gap; deletion prunes selection entries for real elements.
//
// Selection changes emit events but do not push history entries; instead
// each operation folds the new selection into the current history snapshot,
// so undo after a later data mutation restores the selection that was in
// effect when that mutation happened.

// SelectElement selects an element id. Non-additive selection replaces the
// current set.
func (s *Store) SelectElement(id string, additive bool) {
	s.mu.Lock()
	if !additive {
		s.selection = s.selection[:0]
	}
	if !containsString(s.selection, id) {
		s.selection = append(s.selection, id)
	}
	s.lastSelected = id
	s.history.refreshSelection(s.selection, s.lastSelected)
	s.mu.Unlock()

	s.emit(EventSelectionChanged, id)
}

// SelectMultipleElements selects a set of ids, preserving order and
// skipping duplicates.
func (s *Store) SelectMultipleElements(ids []string, additive bool) {
	s.mu.Lock()
	if !additive {
		s.selection = s.selection[:0]
	}
	for _, id := range ids {
		if !containsString(s.selection, id) {
			s.selection = append(s.selection, id)
		}
	}
	if len(ids) > 0 {
		s.lastSelected = ids[len(ids)-1]
	}
	s.history.refreshSelection(s.selection, s.lastSelected)
	s.mu.Unlock()

	s.emit(EventSelectionChanged, nil)
}

// DeselectElement removes an id from the selection set.
func (s *Store) DeselectElement(id string) {
	s.mu.Lock()
	s.selection = removeString(s.selection, id)
	if s.lastSelected == id {
		s.lastSelected = ""
	}
	s.history.refreshSelection(s.selection, s.lastSelected)
	s.mu.Unlock()

	s.emit(EventSelectionChanged, id)
}

// ToggleElementSelection adds the id if absent, removes it if present.
func (s *Store) ToggleElementSelection(id string) {
	s.mu.Lock()
	if containsString(s.selection, id) {
		s.selection = removeString(s.selection, id)
		if s.lastSelected == id {
			s.lastSelected = ""
		}
	} else {
		s.selection = append(s.selection, id)
		s.lastSelected = id
	}
	s.history.refreshSelection(s.selection, s.lastSelected)
	s.mu.Unlock()

	s.emit(EventSelectionChanged, id)
}

// ClearSelection empties the selection set.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	cleared := len(s.selection) > 0
	s.selection = s.selection[:0]
	s.lastSelected = ""
	s.history.refreshSelection(s.selection, s.lastSelected)
	s.mu.Unlock()

	if cleared {
		s.emit(EventSelectionChanged, nil)
	}
}

// SelectedIDs returns the selected ids in selection order.
func (s *Store) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.selection...)
}

// LastSelectedID returns the most recently selected id, for shift-range
// operations.
func (s *Store) LastSelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSelected
}

// IsSelected reports whether the id is in the selection set.
func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return containsString(s.selection, id)
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
