package store

import "whiteboard/internal/element"

// Load replaces the whole scene graph with the given elements and sections,
// in slice order. Selection, the drawing session, and history are reset; the
// loaded state becomes the new undo baseline. Containment is reconciled on
// the way in: ownership claims against missing sections are dropped and
// containment lists are rebuilt from the elements, so a document edited by
// hand cannot import an inconsistent state.
func (s *Store) Load(elements []*element.Element, sections []*element.Section) {
	s.mu.Lock()

	s.sections = make(map[string]*element.Section, len(sections))
	s.sectionOrder = make([]string, 0, len(sections))
	for _, sec := range sections {
		if sec == nil || sec.ID == "" {
			continue
		}
		if _, exists := s.sections[sec.ID]; exists {
			continue
		}
		copied := sec.Clone()
		copied.ContainedElementIDs = nil
		s.sections[sec.ID] = copied
		s.sectionOrder = append(s.sectionOrder, sec.ID)
	}

	s.elements = make(map[string]*element.Element, len(elements))
	s.elementOrder = make([]string, 0, len(elements))
	for _, e := range elements {
		if e == nil || e.ID == "" {
			continue
		}
		if _, exists := s.elements[e.ID]; exists {
			continue
		}
		copied := e.Clone()
		if copied.SectionID != "" {
			sec := s.sections[copied.SectionID]
			if sec == nil {
				copied.SectionID = ""
			} else {
				sec.AddContained(copied.ID)
			}
		}
		s.elements[copied.ID] = copied
		s.elementOrder = append(s.elementOrder, copied.ID)
	}

	s.selection = nil
	s.lastSelected = ""
	s.drawing = nil
	s.history = historyStack{}
	s.history.push(s.snapshotLocked())
	s.mu.Unlock()

	s.emit(EventElementsChanged, nil)
	s.emit(EventSectionsChanged, nil)
	s.emit(EventSelectionChanged, nil)
	s.emit(EventHistoryApplied, nil)
}

// ReconcileContainment rebuilds every section's containment list from the
// elements' ownership claims: ghost references are dropped, missing entries
// are re-added, and elements claiming a nonexistent section are detached.
// Returns the number of corrections made, 0 when the state was already
// consistent. A single commit covers all corrections.
func (s *Store) ReconcileContainment() int {
	s.mu.Lock()
	fixes := 0

	for _, e := range s.elements {
		if e.SectionID == "" {
			continue
		}
		sec := s.sections[e.SectionID]
		if sec == nil {
			e.SectionID = ""
			fixes++
			continue
		}
		if !sec.Contains(e.ID) {
			sec.AddContained(e.ID)
			fixes++
		}
	}

	for _, sec := range s.sections {
		kept := sec.ContainedElementIDs[:0]
		for _, id := range sec.ContainedElementIDs {
			e := s.elements[id]
			if e == nil || e.SectionID != sec.ID {
				fixes++
				continue
			}
			kept = append(kept, id)
		}
		sec.ContainedElementIDs = kept
	}

	if fixes > 0 {
		s.commitLocked()
	}
	s.mu.Unlock()

	if fixes > 0 {
		s.emit(EventElementsChanged, nil)
		s.emit(EventSectionsChanged, nil)
	}
	return fixes
}
