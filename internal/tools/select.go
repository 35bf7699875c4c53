package tools

import (
	"whiteboard/internal/element"
	"whiteboard/internal/store"
	"whiteboard/pkg/geometry"
)

// dragThreshold is the minimum pointer travel before a press becomes a move
// gesture instead of a click.
const dragThreshold = 3.0

// handleHitRadius is the grab distance around a selection corner handle, in
// canvas units.
const handleHitRadius = 8.0

// minResize is the smallest width or height a corner drag can shrink an
// element to.
const minResize = 10.0

// selectTool selects elements on click, moves them on drag, and resizes them
// by their selection corner handles. During a drag only the scene node is
// touched; the store commit happens once on release, together with the
// section drop resolution.
type selectTool struct {
	m *Manager

	target   *element.Element
	start    geometry.Point2D // pointer position at press
	origin   geometry.Point2D // target's absolute position at press
	anchor   geometry.Point2D // corner opposite the grabbed handle
	pressed  bool
	dragging bool
	resizing bool
}

func (t *selectTool) Down(ev PointerEvent) {
	if t.beginResize(ev) {
		return
	}

	hit := t.m.store.ElementAt(ev.Pos)
	if hit == nil {
		if !ev.Additive {
			t.m.store.ClearSelection()
		}
		return
	}

	if ev.Additive {
		t.m.store.ToggleElementSelection(hit.ID)
	} else if !t.m.store.IsSelected(hit.ID) {
		t.m.store.SelectElement(hit.ID, false)
	}

	if hit.Locked {
		return
	}
	t.target = hit
	t.start = ev.Pos
	t.origin = t.m.store.AbsolutePosition(hit)
	t.pressed = true
}

// beginResize starts a corner-handle resize when the press lands on a handle
// of an already-selected element.
func (t *selectTool) beginResize(ev PointerEvent) bool {
	for _, id := range t.m.store.SelectedIDs() {
		e := t.m.store.Element(id)
		if e == nil || e.Locked || !resizable(e.Kind) {
			continue
		}
		b := t.m.store.AbsoluteBounds(e)
		corners := [4]geometry.Point2D{
			b.TopLeft(),
			{X: b.X + b.Width, Y: b.Y},
			b.BottomRight(),
			{X: b.X, Y: b.Y + b.Height},
		}
		for i, c := range corners {
			if ev.Pos.Distance(c) > handleHitRadius {
				continue
			}
			t.target = e
			t.start = ev.Pos
			t.anchor = corners[(i+2)%4]
			t.pressed = true
			t.resizing = true
			return true
		}
	}
	return false
}

// resizable excludes the kinds whose geometry does not live in Width/Height.
func resizable(k element.Kind) bool {
	switch k {
	case element.KindCircle, element.KindConnector, element.KindFreehand:
		return false
	}
	return true
}

// resizeRect returns the bounds spanned by the fixed anchor corner and the
// pointer, holding both dimensions at minResize.
func (t *selectTool) resizeRect(p geometry.Point2D) geometry.Rect {
	dx := p.X - t.anchor.X
	dy := p.Y - t.anchor.Y
	if dx > -minResize && dx < minResize {
		if dx < 0 {
			dx = -minResize
		} else {
			dx = minResize
		}
	}
	if dy > -minResize && dy < minResize {
		if dy < 0 {
			dy = -minResize
		} else {
			dy = minResize
		}
	}
	opposite := geometry.NewPoint2D(t.anchor.X+dx, t.anchor.Y+dy)
	return geometry.FromCorners(t.anchor, opposite)
}

func (t *selectTool) Move(ev PointerEvent) {
	if !t.pressed {
		return
	}
	if !t.dragging && ev.Pos.Distance(t.start) < dragThreshold {
		return
	}
	t.dragging = true

	if t.resizing {
		r := t.resizeRect(ev.Pos)
		t.m.preview.ResizeNode(t.target.ID, r.X, r.Y, r.Width, r.Height)
		return
	}

	delta := ev.Pos.Sub(t.start)
	abs := t.origin.Add(delta)
	t.m.preview.MoveNode(t.target.ID, abs.X, abs.Y)
}

func (t *selectTool) Up(ev PointerEvent) {
	if !t.pressed {
		return
	}
	if t.resizing {
		target, dragging := t.target, t.dragging
		r := t.resizeRect(ev.Pos)
		t.reset()
		if !dragging {
			return
		}
		t.m.preview.ResizeNode(target.ID, r.X, r.Y, r.Width, r.Height)
		t.m.preview.CommitNodes(target.ID)
		t.m.preview.Refresh()
		return
	}

	target, dragging := t.target, t.dragging
	delta := ev.Pos.Sub(t.start)
	abs := t.origin.Add(delta)
	t.reset()
	if !dragging {
		return
	}
	sectionID := ""
	if sec := t.m.store.SectionAt(ev.Pos); sec != nil {
		sectionID = sec.ID
	}

	pos := abs
	if sectionID != "" {
		sec := t.m.store.Section(sectionID)
		pos = abs.Sub(sec.Origin())
	}
	update := store.ElementUpdate{
		X:         &pos.X,
		Y:         &pos.Y,
		SectionID: &sectionID,
	}
	if target.Kind == element.KindConnector {
		// Connector geometry lives in the endpoints, not in X/Y. Free
		// endpoints get their final frame-relative values computed here,
		// so the frame transition inside the store cannot shift them a
		// second time. Bound endpoints keep following their anchors.
		shift := delta.Add(t.frameOrigin(target.SectionID)).Sub(t.frameOrigin(sectionID))
		update.Start = shiftFreeEndpoint(target.Start, shift)
		update.End = shiftFreeEndpoint(target.End, shift)
	}
	t.m.store.UpdateElement(target.ID, update)
	t.m.preview.Refresh()
}

func (t *selectTool) Cancel() {
	if t.dragging {
		t.m.preview.Refresh()
	}
	t.reset()
}

func (t *selectTool) reset() {
	t.target = nil
	t.pressed = false
	t.dragging = false
	t.resizing = false
}

func (t *selectTool) frameOrigin(sectionID string) geometry.Point2D {
	if sectionID == "" {
		return geometry.Point2D{}
	}
	if sec := t.m.store.Section(sectionID); sec != nil {
		return sec.Origin()
	}
	return geometry.Point2D{}
}

// shiftFreeEndpoint returns a translated copy of a free endpoint, or nil for
// bound endpoints so the update leaves them attached.
func shiftFreeEndpoint(ep *element.Endpoint, shift geometry.Point2D) *element.Endpoint {
	if ep == nil || ep.Bound() {
		return nil
	}
	moved := *ep
	moved.X += shift.X
	moved.Y += shift.Y
	return &moved
}
