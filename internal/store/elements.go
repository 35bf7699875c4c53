package store

import (
	"time"

	"whiteboard/internal/element"
	"whiteboard/pkg/geometry"
)

// ElementUpdate is a partial element update. Nil fields are left unchanged.
// A non-nil SectionID routes through the containment transition protocol:
// coordinates are reprojected and both sections' containment lists are
// adjusted in the same commit.
type ElementUpdate struct {
	X          *float64
	Y          *float64
	Width      *float64
	Height     *float64
	Radius     *float64
	Text       *string
	FontSize   *float64
	FontFamily *string
	Visible    *bool
	Locked     *bool
	Style      *element.Style
	Points     *[]geometry.Point2D
	Start      *element.Endpoint
	End        *element.Endpoint
	ImagePath  *string
	SectionID  *string // "" moves the element to the canvas
	Rows       *int
	Cols       *int
	Cells      *[][]string
}

// AddElement inserts an element into the scene graph. If the element names
// an owning section, its id is appended to that section's containment list;
// when the section does not exist the ownership claim is dropped so the
// containment invariant holds. No-op when the id is already present.
func (s *Store) AddElement(e *element.Element) bool {
	s.mu.Lock()
	if _, exists := s.elements[e.ID]; exists {
		s.mu.Unlock()
		return false
	}

	if e.SectionID != "" {
		sec := s.sections[e.SectionID]
		if sec == nil {
			e.SectionID = ""
		} else {
			sec.AddContained(e.ID)
		}
	}

	s.elements[e.ID] = e
	s.elementOrder = append(s.elementOrder, e.ID)
	s.commitLocked()
	s.mu.Unlock()

	s.emit(EventElementsChanged, e.ID)
	return true
}

// UpdateElement merges the non-nil fields of u into the element. Returns
// false without changes when the id does not exist.
func (s *Store) UpdateElement(id string, u ElementUpdate) bool {
	s.mu.Lock()
	e := s.elements[id]
	if e == nil {
		s.mu.Unlock()
		return false
	}

	if u.SectionID != nil && *u.SectionID != e.SectionID {
		s.transitionLocked(e, *u.SectionID)
	}
	applyUpdateLocked(e, u)
	e.UpdatedAt = time.Now()
	s.commitLocked()
	s.mu.Unlock()

	s.emit(EventElementsChanged, id)
	return true
}

// applyUpdateLocked merges scalar fields; SectionID is handled by the
// transition protocol, never here.
func applyUpdateLocked(e *element.Element, u ElementUpdate) {
	if u.X != nil {
		e.X = *u.X
	}
	if u.Y != nil {
		e.Y = *u.Y
	}
	if u.Width != nil {
		e.Width = *u.Width
	}
	if u.Height != nil {
		e.Height = *u.Height
	}
	if u.Radius != nil {
		e.Radius = *u.Radius
	}
	if u.Text != nil {
		e.Text = *u.Text
	}
	if u.FontSize != nil {
		e.FontSize = *u.FontSize
	}
	if u.FontFamily != nil {
		e.FontFamily = *u.FontFamily
	}
	if u.Visible != nil {
		e.Visible = *u.Visible
	}
	if u.Locked != nil {
		e.Locked = *u.Locked
	}
	if u.Style != nil {
		e.Style = *u.Style
	}
	if u.Points != nil {
		e.Points = append([]geometry.Point2D(nil), (*u.Points)...)
	}
	if u.Start != nil {
		start := *u.Start
		e.Start = &start
	}
	if u.End != nil {
		end := *u.End
		e.End = &end
	}
	if u.ImagePath != nil {
		e.ImagePath = *u.ImagePath
	}
	if u.Rows != nil {
		e.Rows = *u.Rows
	}
	if u.Cols != nil {
		e.Cols = *u.Cols
	}
	if u.Cells != nil {
		cells := make([][]string, len(*u.Cells))
		for i, row := range *u.Cells {
			cells[i] = append([]string(nil), row...)
		}
		e.Cells = cells
	}
}

// BatchEntry pairs an element id with its partial update.
type BatchEntry struct {
	ID     string
	Fields ElementUpdate
}

// BatchUpdate applies a list of updates as a single commit. Entries naming
// unknown ids are skipped without aborting the batch. Returns the number of
// entries applied.
func (s *Store) BatchUpdate(updates []BatchEntry) int {
	s.mu.Lock()
	applied := 0
	for _, entry := range updates {
		e := s.elements[entry.ID]
		if e == nil {
			continue
		}
		if entry.Fields.SectionID != nil && *entry.Fields.SectionID != e.SectionID {
			s.transitionLocked(e, *entry.Fields.SectionID)
		}
		applyUpdateLocked(e, entry.Fields)
		e.UpdatedAt = time.Now()
		applied++
	}
	if applied > 0 {
		s.commitLocked()
	}
	s.mu.Unlock()

	if applied > 0 {
		s.emit(EventElementsChanged, nil)
	}
	return applied
}

// DeleteElement removes an element from the map, order list, selection, and
// its owning section's containment list. No-op when the id does not exist.
func (s *Store) DeleteElement(id string) bool {
	s.mu.Lock()
	e := s.elements[id]
	if e == nil {
		s.mu.Unlock()
		return false
	}

	s.deleteElementLocked(e)
	s.commitLocked()
	s.mu.Unlock()

	s.emit(EventElementsChanged, id)
	return true
}

// deleteElementLocked removes the element everywhere without committing,
// so multi-element operations (section cascade) stay one commit.
func (s *Store) deleteElementLocked(e *element.Element) {
	if e.SectionID != "" {
		if sec := s.sections[e.SectionID]; sec != nil {
			sec.RemoveContained(e.ID)
		}
	}

	delete(s.elements, e.ID)
	s.elementOrder = removeString(s.elementOrder, e.ID)
	s.selection = removeString(s.selection, e.ID)
	if s.lastSelected == e.ID {
		s.lastSelected = ""
	}
}

func removeString(list []string, v string) []string {
	for i, item := range list {
		if item == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
