package store

import "whiteboard/internal/element"

// maxHistory bounds the undo stack; the oldest snapshot is evicted when the
// cap is reached.
const maxHistory = 100

// snapshot is an immutable copy of the document state at one point in time.
// Selection is included so undo restores it along with the scene graph.
type snapshot struct {
	elements     map[string]*element.Element
	sections     map[string]*element.Section
	elementOrder []string
	sectionOrder []string
	selection    []string
	lastSelected string
}

type historyStack struct {
	entries []snapshot
	cursor  int // index of the snapshot matching current state
}

func (h *historyStack) push(snap snapshot) {
	// Discard the redo tail.
	if len(h.entries) > 0 {
		h.entries = h.entries[:h.cursor+1]
	}
	h.entries = append(h.entries, snap)
	if len(h.entries) > maxHistory {
		h.entries = h.entries[1:]
	}
	h.cursor = len(h.entries) - 1
}

func (h *historyStack) canUndo() bool { return h.cursor > 0 }
func (h *historyStack) canRedo() bool { return h.cursor < len(h.entries)-1 }

// refreshSelection folds the live selection into the current snapshot.
// Selection changes do not grow the stack; without this, the snapshot taken
// at the previous data mutation would carry the selection as it was back
// then, and undo would restore that stale set instead of the selection in
// effect just before the undone mutation.
func (h *historyStack) refreshSelection(selection []string, lastSelected string) {
	if len(h.entries) == 0 {
		return
	}
	snap := &h.entries[h.cursor]
	snap.selection = append([]string(nil), selection...)
	snap.lastSelected = lastSelected
}

// snapshotLocked deep-copies the current document state.
func (s *Store) snapshotLocked() snapshot {
	snap := snapshot{
		elements:     make(map[string]*element.Element, len(s.elements)),
		sections:     make(map[string]*element.Section, len(s.sections)),
		elementOrder: append([]string(nil), s.elementOrder...),
		sectionOrder: append([]string(nil), s.sectionOrder...),
		selection:    append([]string(nil), s.selection...),
		lastSelected: s.lastSelected,
	}
	for id, e := range s.elements {
		snap.elements[id] = e.Clone()
	}
	for id, sec := range s.sections {
		snap.sections[id] = sec.Clone()
	}
	return snap
}

// restoreLocked replaces the document state with a snapshot copy, so later
// mutations cannot corrupt history entries.
func (s *Store) restoreLocked(snap snapshot) {
	s.elements = make(map[string]*element.Element, len(snap.elements))
	for id, e := range snap.elements {
		s.elements[id] = e.Clone()
	}
	s.sections = make(map[string]*element.Section, len(snap.sections))
	for id, sec := range snap.sections {
		s.sections[id] = sec.Clone()
	}
	s.elementOrder = append([]string(nil), snap.elementOrder...)
	s.sectionOrder = append([]string(nil), snap.sectionOrder...)
	s.selection = append([]string(nil), snap.selection...)
	s.lastSelected = snap.lastSelected
}

// CanUndo reports whether an undo step is available.
func (s *Store) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.canUndo()
}

// CanRedo reports whether a redo step is available.
func (s *Store) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.canRedo()
}

// Undo restores the previous history snapshot, including element and
// section maps, ordering, and selection. Returns false at the bottom of
// the stack.
func (s *Store) Undo() bool {
	s.mu.Lock()
	if !s.history.canUndo() {
		s.mu.Unlock()
		return false
	}
	s.history.cursor--
	s.restoreLocked(s.history.entries[s.history.cursor])
	s.mu.Unlock()

	s.emit(EventHistoryApplied, nil)
	return true
}

// Redo re-applies the next history snapshot. Returns false at the top of
// the stack.
func (s *Store) Redo() bool {
	s.mu.Lock()
	if !s.history.canRedo() {
		s.mu.Unlock()
		return false
	}
	s.history.cursor++
	s.restoreLocked(s.history.entries[s.history.cursor])
	s.mu.Unlock()

	s.emit(EventHistoryApplied, nil)
	return true
}
