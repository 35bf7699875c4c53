package store

import (
	"time"

	"whiteboard/internal/element"
	"whiteboard/pkg/geometry"
)

// CascadePolicy controls what happens to contained elements when their
// section is deleted.
type CascadePolicy string

const (
	// CascadeDelete removes the section and all contained elements.
	CascadeDelete CascadePolicy = "delete"
	// CascadeRelease removes the section and converts contained elements
	// back to canvas coordinates. This is the default policy: deleting a
	// container should not silently destroy its contents.
	CascadeRelease CascadePolicy = "release"
)

// CreateSection inserts a new section with an empty containment list and
// returns its id. The new section is topmost in z-order.
func (s *Store) CreateSection(x, y, width, height float64, title string) string {
	sec := element.NewSection(x, y, width, height, title)

	s.mu.Lock()
	s.sections[sec.ID] = sec
	s.sectionOrder = append(s.sectionOrder, sec.ID)
	s.commitLocked()
	s.mu.Unlock()

	s.emit(EventSectionsChanged, sec.ID)
	return sec.ID
}

// CaptureElementsAfterSectionCreation scans top-level elements whose
// bounding box lies entirely within the section's rectangle and reassigns
// them into it, converting coordinates to section-relative. Elements that
// already belong to a section are never re-captured, so calling this twice
// produces the same contained set as calling it once. Returns the number of
// elements captured.
func (s *Store) CaptureElementsAfterSectionCreation(sectionID string) int {
	s.mu.Lock()
	sec := s.sections[sectionID]
	if sec == nil {
		s.mu.Unlock()
		return 0
	}

	bounds := sec.Bounds()
	captured := 0
	for _, id := range s.elementOrder {
		e := s.elements[id]
		if e == nil || e.SectionID != "" {
			continue
		}
		if !bounds.ContainsRect(e.Bounds()) {
			continue
		}

		s.reprojectLocked(e, nil, sec)
		e.SectionID = sec.ID
		sec.AddContained(e.ID)
		e.UpdatedAt = time.Now()
		captured++
	}

	if captured > 0 {
		s.commitLocked()
	}
	s.mu.Unlock()

	if captured > 0 {
		s.emit(EventSectionsChanged, sectionID)
	}
	return captured
}

// MoveElementBetweenSections reassigns an element's owning section,
// reprojecting its coordinates and adjusting both containment lists as one
// atomic commit. Empty section ids mean the canvas. Returns false without
// changes when the element or the target section does not exist.
//
// The from argument is advisory; the element's actual current section is
// authoritative, which keeps the containment invariant intact even if the
// caller's view is stale.
func (s *Store) MoveElementBetweenSections(elementID, from, to string) bool {
	s.mu.Lock()
	e := s.elements[elementID]
	if e == nil {
		s.mu.Unlock()
		return false
	}
	if to != "" && s.sections[to] == nil {
		s.mu.Unlock()
		return false
	}

	changed := s.transitionLocked(e, to)
	if changed {
		e.UpdatedAt = time.Now()
		s.commitLocked()
	}
	s.mu.Unlock()

	if changed {
		s.emit(EventElementsChanged, elementID)
	}
	return true
}

// transitionLocked is the single implementation of the three-way
// containment transition. It classifies the move by comparing the
// element's current section to the target:
//
//  1. same section (both possibly none): nothing to do here
//  2. canvas <-> section: one reprojection, one containment-list edit
//  3. section A -> section B: A-relative -> canvas -> B-relative, edit both lists
//
// Both the coordinate rewrite and the containment edits happen before the
// caller commits, so no observer sees them disagree. All SectionID changes
// in the store flow through this function.
func (s *Store) transitionLocked(e *element.Element, to string) bool {
	if e.SectionID == to {
		return false
	}

	var fromSec, toSec *element.Section
	if e.SectionID != "" {
		fromSec = s.sections[e.SectionID]
	}
	if to != "" {
		toSec = s.sections[to]
		if toSec == nil {
			return false
		}
	}

	s.reprojectLocked(e, fromSec, toSec)

	if fromSec != nil {
		fromSec.RemoveContained(e.ID)
	}
	if toSec != nil {
		toSec.AddContained(e.ID)
	}
	e.SectionID = to
	return true
}

// reprojectLocked rewrites the element's coordinates from the from-section
// frame to the to-section frame (nil = canvas). Connector endpoints and the
// path origin ride along with X/Y, so only X/Y need adjusting.
func (s *Store) reprojectLocked(e *element.Element, from, to *element.Section) {
	delta := geometry.Point2D{}
	if from != nil {
		delta = delta.Add(from.Origin())
	}
	if to != nil {
		delta = delta.Sub(to.Origin())
	}

	e.X += delta.X
	e.Y += delta.Y
	if e.Kind == element.KindConnector {
		if e.Start != nil {
			e.Start.X += delta.X
			e.Start.Y += delta.Y
		}
		if e.End != nil {
			e.End.X += delta.X
			e.End.Y += delta.Y
		}
	}
}

// MoveSection translates the section origin. Contained elements store
// relative coordinates, so they move with it untouched.
func (s *Store) MoveSection(id string, x, y float64) bool {
	s.mu.Lock()
	sec := s.sections[id]
	if sec == nil {
		s.mu.Unlock()
		return false
	}

	sec.X = x
	sec.Y = y
	sec.UpdatedAt = time.Now()
	s.commitLocked()
	s.mu.Unlock()

	s.emit(EventSectionsChanged, id)
	return true
}

// ResizeSection sets the section's size and scales every contained
// element's relative geometry proportionally. Horizontal scaling uses the
// plain width ratio; vertical scaling uses the content-area ratio, which
// excludes the fixed-height title bar.
func (s *Store) ResizeSection(id string, newWidth, newHeight float64) bool {
	s.mu.Lock()
	sec := s.sections[id]
	if sec == nil || newWidth <= 0 || newHeight <= sec.TitleBarHeight {
		s.mu.Unlock()
		return false
	}

	rx := newWidth / sec.Width
	ry := (newHeight - sec.TitleBarHeight) / (sec.Height - sec.TitleBarHeight)
	tb := sec.TitleBarHeight

	for _, eid := range sec.ContainedElementIDs {
		e := s.elements[eid]
		if e == nil {
			continue
		}
		scaleElementLocked(e, rx, ry, tb)
		e.UpdatedAt = time.Now()
	}

	sec.Width = newWidth
	sec.Height = newHeight
	sec.UpdatedAt = time.Now()
	s.commitLocked()
	s.mu.Unlock()

	s.emit(EventSectionsChanged, id)
	return true
}

// scaleElementLocked scales one element's relative geometry. Relative y is
// measured from the section origin; the portion above the title bar is not
// scaled, matching the non-scalable chrome region.
func scaleElementLocked(e *element.Element, rx, ry, titleBar float64) {
	scaleY := func(y float64) float64 {
		if y <= titleBar {
			return y
		}
		return titleBar + (y-titleBar)*ry
	}

	e.X *= rx
	e.Y = scaleY(e.Y)
	e.Width *= rx
	e.Height *= ry
	e.Radius *= rx

	if e.Kind == element.KindConnector {
		if e.Start != nil {
			e.Start.X *= rx
			e.Start.Y = scaleY(e.Start.Y)
		}
		if e.End != nil {
			e.End.X *= rx
			e.End.Y = scaleY(e.End.Y)
		}
	}
	for i := range e.Points {
		e.Points[i].X *= rx
		e.Points[i].Y *= ry
	}
}

// DeleteSection removes the section. CascadeDelete also removes all
// contained elements; CascadeRelease reprojects them back to canvas
// coordinates and clears their ownership. Either way the result is a
// single commit. No-op when the id does not exist.
func (s *Store) DeleteSection(id string, cascade CascadePolicy) bool {
	s.mu.Lock()
	sec := s.sections[id]
	if sec == nil {
		s.mu.Unlock()
		return false
	}

	contained := append([]string(nil), sec.ContainedElementIDs...)
	for _, eid := range contained {
		e := s.elements[eid]
		if e == nil {
			continue
		}
		if cascade == CascadeDelete {
			s.deleteElementLocked(e)
		} else {
			s.reprojectLocked(e, sec, nil)
			e.SectionID = ""
			e.UpdatedAt = time.Now()
		}
	}

	delete(s.sections, id)
	s.sectionOrder = removeString(s.sectionOrder, id)
	s.commitLocked()
	s.mu.Unlock()

	s.emit(EventSectionsChanged, id)
	return true
}

// SectionUpdate is a partial section update. Nil fields are unchanged.
// Width/Height changes route through ResizeSection's propagation.
type SectionUpdate struct {
	X          *float64
	Y          *float64
	Title      *string
	TitleColor *string
	Locked     *bool
	Hidden     *bool
	Opacity    *float64
}

// UpdateSection merges the non-nil fields of u into the section.
func (s *Store) UpdateSection(id string, u SectionUpdate) bool {
	s.mu.Lock()
	sec := s.sections[id]
	if sec == nil {
		s.mu.Unlock()
		return false
	}

	if u.X != nil {
		sec.X = *u.X
	}
	if u.Y != nil {
		sec.Y = *u.Y
	}
	if u.Title != nil {
		sec.Title = *u.Title
	}
	if u.TitleColor != nil {
		sec.TitleColor = *u.TitleColor
	}
	if u.Locked != nil {
		sec.Locked = *u.Locked
	}
	if u.Hidden != nil {
		sec.Hidden = *u.Hidden
	}
	if u.Opacity != nil {
		sec.Opacity = *u.Opacity
	}
	sec.UpdatedAt = time.Now()
	s.commitLocked()
	s.mu.Unlock()

	s.emit(EventSectionsChanged, id)
	return true
}
