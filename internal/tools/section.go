package tools

import (
	"fmt"

	"whiteboard/pkg/geometry"
)

// Minimum committed section size. Smaller drags are discarded.
const (
	minSectionWidth  = 80.0
	minSectionHeight = 60.0
)

// sectionTool drags out a new section. The draft rectangle lives only in
// the guide overlay; on release the section is created and any top-level
// elements fully inside it are captured.
type sectionTool struct {
	m *Manager

	drawing bool
	start   geometry.Point2D
}

func (t *sectionTool) Down(ev PointerEvent) {
	t.drawing = true
	t.start = ev.Pos
}

func (t *sectionTool) Move(ev PointerEvent) {
	if !t.drawing {
		return
	}
	t.m.preview.ShowGuideRect(geometry.FromCorners(t.start, ev.Pos))
}

func (t *sectionTool) Up(ev PointerEvent) {
	if !t.drawing {
		return
	}
	t.drawing = false
	t.m.preview.ClearGuides()

	r := geometry.FromCorners(t.start, ev.Pos)
	if r.Width < minSectionWidth || r.Height < minSectionHeight {
		return
	}

	title := fmt.Sprintf("Section %d", t.m.store.SectionCount()+1)
	id := t.m.store.CreateSection(r.X, r.Y, r.Width, r.Height, title)
	t.m.store.CaptureElementsAfterSectionCreation(id)
	t.m.preview.Refresh()
	t.m.SetTool(ToolSelect)
}

func (t *sectionTool) Cancel() {
	t.drawing = false
	t.m.preview.ClearGuides()
}
