package tools

import (
	"whiteboard/internal/element"
	"whiteboard/pkg/geometry"
)

// SnapRadius is the pixel distance within which a connector endpoint locks
// onto an element anchor.
const SnapRadius = 12.0

// minConnectorLength discards accidental clicks that would produce a
// zero-length connector.
const minConnectorLength = 8.0

// connectorTool drags a connector between two points. Both endpoints snap
// to the nearest anchor in range; a snapped endpoint records the element id
// and anchor name instead of a free coordinate, so it follows the element
// when it later moves.
type connectorTool struct {
	m *Manager

	drawing bool
	start   element.Endpoint
	end     element.Endpoint
}

// snapEndpoint resolves p against every visible non-connector element's
// anchors and returns a bound endpoint for the nearest anchor within
// SnapRadius, or a free endpoint at p. Nearest wins when several anchors
// are in range.
func snapEndpoint(m *Manager, p geometry.Point2D) element.Endpoint {
	free := element.Endpoint{X: p.X, Y: p.Y}
	best := free
	bestDist := SnapRadius

	for _, e := range m.store.Elements() {
		if e.Kind == element.KindConnector || !e.Visible {
			continue
		}
		bounds := m.store.AbsoluteBounds(e)
		anchor, dist := bounds.NearestAnchor(p)
		if dist <= bestDist {
			at := bounds.AnchorPoint(anchor)
			best = element.Endpoint{X: at.X, Y: at.Y, ConnectedElementID: e.ID, Anchor: anchor}
			bestDist = dist
		}
	}
	return best
}

func (t *connectorTool) Down(ev PointerEvent) {
	t.drawing = true
	t.start = snapEndpoint(t.m, ev.Pos)
	t.end = t.start
}

func (t *connectorTool) Move(ev PointerEvent) {
	if !t.drawing {
		return
	}
	t.end = snapEndpoint(t.m, ev.Pos)
	t.m.preview.ShowGuideLine(
		geometry.NewPoint2D(t.start.X, t.start.Y),
		geometry.NewPoint2D(t.end.X, t.end.Y),
	)
}

func (t *connectorTool) Up(ev PointerEvent) {
	if !t.drawing {
		return
	}
	t.drawing = false
	t.m.preview.ClearGuides()

	t.end = snapEndpoint(t.m, ev.Pos)
	a := geometry.NewPoint2D(t.start.X, t.start.Y)
	b := geometry.NewPoint2D(t.end.X, t.end.Y)
	if a.Distance(b) < minConnectorLength {
		return
	}

	conn := element.NewConnector(t.start, t.end)
	if !t.m.store.AddElement(conn) {
		return
	}
	t.m.store.SelectElement(conn.ID, false)
	t.m.preview.Refresh()
	t.m.SetTool(ToolSelect)
}

func (t *connectorTool) Cancel() {
	t.drawing = false
	t.m.preview.ClearGuides()
}
