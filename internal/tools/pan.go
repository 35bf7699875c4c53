package tools

import (
	"whiteboard/internal/store"
	"whiteboard/pkg/geometry"
)

// panTool drags the viewport. It works in window coordinates so the pan
// itself does not shift the deltas it is computed from. Viewport changes are
// not history-tracked, so the store can be updated on every move.
type panTool struct {
	m *Manager

	panning bool
	start   geometry.Point2D // window coordinates at press
	panX    float64
	panY    float64
}

func (t *panTool) Down(ev PointerEvent) {
	vp := t.m.store.Viewport()
	t.panning = true
	t.start = ev.Screen
	t.panX = vp.PanX
	t.panY = vp.PanY
}

func (t *panTool) Move(ev PointerEvent) {
	if !t.panning {
		return
	}
	x := t.panX + (ev.Screen.X - t.start.X)
	y := t.panY + (ev.Screen.Y - t.start.Y)
	t.m.store.SetViewport(store.ViewportUpdate{PanX: &x, PanY: &y})
}

func (t *panTool) Up(ev PointerEvent) {
	t.Move(ev)
	t.panning = false
}

func (t *panTool) Cancel() {
	t.panning = false
}
