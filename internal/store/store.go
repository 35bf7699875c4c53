// Package store holds the canonical in-memory scene graph and exposes the
// atomic mutation API for elements, sections, selection, history, viewport,
// and drawing sessions.
//
// All mutations are synchronous and linearized in call order. Operations on
// ids that do not exist never panic and never return an error; they report
// false and leave the store untouched, so UI event handlers can call without
// pre-checking. Callers that need strict validation check the returned bool.
package store

import (
	"sync"

	"whiteboard/internal/element"
	"whiteboard/pkg/geometry"
)

// EventType identifies store change events.
type EventType int

const (
	EventElementsChanged EventType = iota
	EventSectionsChanged
	EventSelectionChanged
	EventViewportChanged
	EventHistoryApplied
	EventDrawingChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Store is the single source of truth for one canvas. Construct with New
// and pass the instance to tools, renderer, and UI explicitly; there is no
// package-level instance, so multiple canvases can coexist.
type Store struct {
	mu sync.RWMutex

	elements map[string]*element.Element
	sections map[string]*element.Section

	// Insertion order; sectionOrder doubles as z-order (last = topmost).
	elementOrder []string
	sectionOrder []string

	selection    []string
	lastSelected string

	viewport Viewport

	history historyStack

	drawing *drawingSession

	listeners map[EventType][]EventListener
}

// New creates an empty store with an initial history baseline.
func New() *Store {
	s := &Store{
		elements:  make(map[string]*element.Element),
		sections:  make(map[string]*element.Section),
		viewport:  Viewport{Zoom: 1},
		listeners: make(map[EventType][]EventListener),
	}
	s.history.push(s.snapshotLocked())
	return s
}

// On registers an event listener for the specified event type.
func (s *Store) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// emit triggers all listeners for the event type. Called without the lock
// held so listeners may read the store.
func (s *Store) emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// commitLocked records a history snapshot after a completed mutation.
// Must be called with the write lock held, before the corresponding emit.
func (s *Store) commitLocked() {
	s.history.push(s.snapshotLocked())
}

// Element returns the element with the given id, or nil.
func (s *Store) Element(id string) *element.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elements[id]
}

// Section returns the section with the given id, or nil.
func (s *Store) Section(id string) *element.Section {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sections[id]
}

// Elements returns all elements in insertion order.
func (s *Store) Elements() []*element.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*element.Element, 0, len(s.elementOrder))
	for _, id := range s.elementOrder {
		if e := s.elements[id]; e != nil {
			result = append(result, e)
		}
	}
	return result
}

// Sections returns all sections in z-order, bottom first.
func (s *Store) Sections() []*element.Section {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*element.Section, 0, len(s.sectionOrder))
	for _, id := range s.sectionOrder {
		if sec := s.sections[id]; sec != nil {
			result = append(result, sec)
		}
	}
	return result
}

// ElementCount returns the number of elements.
func (s *Store) ElementCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}

// SectionCount returns the number of sections.
func (s *Store) SectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sections)
}

// AbsolutePosition returns the element's position in canvas coordinates,
// resolving the owning section's origin when set.
func (s *Store) AbsolutePosition(e *element.Element) geometry.Point2D {
	p := geometry.NewPoint2D(e.X, e.Y)
	if e.SectionID == "" {
		return p
	}

	s.mu.RLock()
	sec := s.sections[e.SectionID]
	s.mu.RUnlock()
	if sec == nil {
		return p
	}
	return p.Add(sec.Origin())
}

// AbsoluteBounds returns the element's bounding box in canvas coordinates.
func (s *Store) AbsoluteBounds(e *element.Element) geometry.Rect {
	b := e.Bounds()
	if e.SectionID == "" {
		return b
	}

	s.mu.RLock()
	sec := s.sections[e.SectionID]
	s.mu.RUnlock()
	if sec == nil {
		return b
	}
	origin := sec.Origin()
	b.X += origin.X
	b.Y += origin.Y
	return b
}

// ElementAt returns the topmost visible element whose geometry contains the
// canvas-space point, or nil.
func (s *Store) ElementAt(p geometry.Point2D) *element.Element {
	s.mu.RLock()
	order := make([]string, len(s.elementOrder))
	copy(order, s.elementOrder)
	s.mu.RUnlock()

	for i := len(order) - 1; i >= 0; i-- {
		e := s.Element(order[i])
		if e == nil || !e.Visible {
			continue
		}

		local := p
		if e.SectionID != "" {
			if sec := s.Section(e.SectionID); sec != nil {
				local = p.Sub(sec.Origin())
			}
		}
		if e.HitTest(local) {
			return e
		}
	}
	return nil
}

// SectionAt returns the topmost section whose rectangle contains the
// canvas-space point, or nil. Topmost means last in z-order: when sections
// overlap the most recently created one wins. Every drop-target resolution
// in the store goes through this method so the tie-break is uniform.
func (s *Store) SectionAt(p geometry.Point2D) *element.Section {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sectionAtLocked(p)
}

func (s *Store) sectionAtLocked(p geometry.Point2D) *element.Section {
	for i := len(s.sectionOrder) - 1; i >= 0; i-- {
		sec := s.sections[s.sectionOrder[i]]
		if sec != nil && !sec.Hidden && sec.Bounds().Contains(p) {
			return sec
		}
	}
	return nil
}
