package tools

import (
	"whiteboard/internal/element"
	"whiteboard/pkg/geometry"
)

// Default dimensions for click-to-place elements, centered on the pointer.
const (
	defaultShapeWidth  = 120.0
	defaultShapeHeight = 80.0
	defaultRadius      = 50.0
	defaultStickySize  = 160.0
	defaultTableWidth  = 240.0
	defaultTableHeight = 120.0
	defaultTableRows   = 3
	defaultTableCols   = 3
)

// shapeTool places one element per click. The element is committed on
// pointer-down, the tool switches back to select, and the new element
// becomes the selection. While idle, pointer moves show a placement ghost.
type shapeTool struct {
	m    *Manager
	tool Tool
}

func (t *shapeTool) build(p geometry.Point2D) *element.Element {
	switch t.tool {
	case ToolCircle:
		return element.NewCircle(p.X-defaultRadius, p.Y-defaultRadius, defaultRadius)
	case ToolTriangle:
		return element.NewTriangle(p.X-defaultShapeWidth/2, p.Y-defaultShapeHeight/2, defaultShapeWidth, defaultShapeHeight)
	case ToolText:
		return element.NewText(p.X, p.Y, "")
	case ToolSticky:
		return element.NewSticky(p.X-defaultStickySize/2, p.Y-defaultStickySize/2, "")
	case ToolTable:
		return element.NewTable(p.X-defaultTableWidth/2, p.Y-defaultTableHeight/2,
			defaultTableWidth, defaultTableHeight, defaultTableRows, defaultTableCols)
	default:
		return element.NewRectangle(p.X-defaultShapeWidth/2, p.Y-defaultShapeHeight/2,
			defaultShapeWidth, defaultShapeHeight)
	}
}

func (t *shapeTool) Down(ev PointerEvent) {
	e := t.build(ev.Pos)

	// Placing inside a section assigns ownership up front, so the insert
	// is a single commit with containment already consistent.
	if sec := t.m.store.SectionAt(ev.Pos); sec != nil {
		origin := sec.Origin()
		e.X -= origin.X
		e.Y -= origin.Y
		e.SectionID = sec.ID
	}

	t.m.preview.ClearGuides()
	if !t.m.store.AddElement(e) {
		return
	}
	t.m.store.SelectElement(e.ID, false)
	t.m.SetTool(ToolSelect)
}

func (t *shapeTool) Move(ev PointerEvent) {
	t.m.preview.ShowGuideRect(t.build(ev.Pos).Bounds())
}

func (t *shapeTool) Up(ev PointerEvent) {}

func (t *shapeTool) Cancel() {
	t.m.preview.ClearGuides()
}
