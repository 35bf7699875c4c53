package tools

import (
	"whiteboard/internal/element"
)

// freehandTool streams pointer samples into the store's drawing session.
// The session buffers the stroke outside history; one freehand element and
// one history entry appear only when the stroke finishes.
type freehandTool struct {
	m     *Manager
	Style element.Style
}

func (t *freehandTool) Down(ev PointerEvent) {
	t.m.store.StartDrawing(ev.Pos, t.Style)
}

func (t *freehandTool) Move(ev PointerEvent) {
	if !t.m.store.DrawingActive() {
		return
	}
	t.m.store.UpdateDrawing(ev.Pos)
}

func (t *freehandTool) Up(ev PointerEvent) {
	if !t.m.store.DrawingActive() {
		return
	}
	t.m.store.UpdateDrawing(ev.Pos)
	if id := t.m.store.FinishDrawing(); id != "" {
		t.m.preview.Refresh()
	}
}

func (t *freehandTool) Cancel() {
	t.m.store.CancelDrawing()
}
