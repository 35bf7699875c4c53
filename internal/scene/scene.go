// Package scene draws canvas content into a gg context. It is shared by the
// interactive board widget and the PNG exporter, which differ only in how
// they pick element bounds and set up the context transform.
package scene

import (
	"whiteboard/internal/element"
	"whiteboard/internal/store"
	"whiteboard/pkg/geometry"
	"whiteboard/pkg/textlayout"

	"github.com/fogleman/gg"
)

const titleInset = 8.0

// DrawSection fills a section's body and title bar. Hidden sections are
// skipped.
func DrawSection(dc *gg.Context, sec *element.Section) {
	if sec.Hidden {
		return
	}

	dc.SetHexColor("#f4f4f6")
	dc.DrawRectangle(sec.X, sec.Y, sec.Width, sec.Height)
	dc.Fill()

	dc.SetHexColor("#d8d8de")
	dc.DrawRectangle(sec.X, sec.Y, sec.Width, sec.TitleBarHeight)
	dc.Fill()

	dc.SetHexColor("#8a8a94")
	dc.SetLineWidth(1)
	dc.DrawRectangle(sec.X, sec.Y, sec.Width, sec.Height)
	dc.Stroke()

	if sec.Title != "" {
		dc.SetHexColor(FillOr(sec.TitleColor, "#222228"))
		dc.DrawString(sec.Title, sec.X+titleInset, sec.Y+sec.TitleBarHeight-titleInset)
	}
}

// DrawElement draws one element at the given absolute bounds. Callers pass
// store bounds, or override them while a gesture is in flight.
func DrawElement(dc *gg.Context, st *store.Store, e *element.Element, b geometry.Rect) {
	stroke := FillOr(e.Style.Stroke, "#333333")
	width := e.Style.StrokeWidth
	if width <= 0 {
		width = 1
	}

	switch e.Kind {
	case element.KindRectangle, element.KindImage:
		fillRect(dc, b, e.Style.Fill)
		dc.SetHexColor(stroke)
		dc.SetLineWidth(width)
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		dc.Stroke()

	case element.KindCircle:
		c := b.Center()
		if e.Style.Fill != "" {
			dc.SetHexColor(e.Style.Fill)
			dc.DrawEllipse(c.X, c.Y, b.Width/2, b.Height/2)
			dc.Fill()
		}
		dc.SetHexColor(stroke)
		dc.SetLineWidth(width)
		dc.DrawEllipse(c.X, c.Y, b.Width/2, b.Height/2)
		dc.Stroke()

	case element.KindTriangle:
		v := geometry.TriangleVertices(b)
		dc.MoveTo(v[0].X, v[0].Y)
		dc.LineTo(v[1].X, v[1].Y)
		dc.LineTo(v[2].X, v[2].Y)
		dc.ClosePath()
		if e.Style.Fill != "" {
			dc.SetHexColor(e.Style.Fill)
			dc.FillPreserve()
		}
		dc.SetHexColor(stroke)
		dc.SetLineWidth(width)
		dc.Stroke()

	case element.KindText:
		dc.SetHexColor(stroke)
		drawTextLines(dc, e.Text, b)

	case element.KindSticky:
		fillRect(dc, b, FillOr(e.Style.Fill, "#fff9b1"))
		dc.SetHexColor("#c9bd56")
		dc.SetLineWidth(1)
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		dc.Stroke()
		dc.SetHexColor("#333333")
		drawTextLines(dc, e.Text, b)

	case element.KindTable:
		drawTable(dc, e, b, stroke, width)

	case element.KindConnector:
		drawConnector(dc, st, e, b, stroke, width)

	case element.KindFreehand:
		dc.SetHexColor(stroke)
		dc.SetLineWidth(width)
		for i := 1; i < len(e.Points); i++ {
			a := e.Points[i-1]
			p := e.Points[i]
			dc.DrawLine(b.X+a.X, b.Y+a.Y, b.X+p.X, b.Y+p.Y)
		}
		dc.Stroke()
	}
}

// DrawStroke draws an in-progress freehand path in canvas coordinates.
func DrawStroke(dc *gg.Context, points []geometry.Point2D, style element.Style) {
	if len(points) < 2 {
		return
	}
	width := style.StrokeWidth
	if width <= 0 {
		width = 2
	}
	dc.SetHexColor(FillOr(style.Stroke, "#333333"))
	dc.SetLineWidth(width)
	for i := 1; i < len(points); i++ {
		dc.DrawLine(points[i-1].X, points[i-1].Y, points[i].X, points[i].Y)
	}
	dc.Stroke()
}

func drawTable(dc *gg.Context, e *element.Element, b geometry.Rect, stroke string, width float64) {
	if e.Rows < 1 || e.Cols < 1 {
		return
	}
	fillRect(dc, b, e.Style.Fill)

	dc.SetHexColor(stroke)
	dc.SetLineWidth(width)
	dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
	rowH := b.Height / float64(e.Rows)
	colW := b.Width / float64(e.Cols)
	for r := 1; r < e.Rows; r++ {
		y := b.Y + float64(r)*rowH
		dc.DrawLine(b.X, y, b.X+b.Width, y)
	}
	for c := 1; c < e.Cols; c++ {
		x := b.X + float64(c)*colW
		dc.DrawLine(x, b.Y, x, b.Y+b.Height)
	}
	dc.Stroke()

	for r, row := range e.Cells {
		if r >= e.Rows {
			break
		}
		for c, cell := range row {
			if c >= e.Cols || cell == "" {
				continue
			}
			cw, ch := dc.MeasureString(cell)
			x := b.X + float64(c)*colW + (colW-cw)/2
			y := b.Y + float64(r)*rowH + (rowH+ch)/2
			dc.DrawString(cell, x, y)
		}
	}
}

func drawConnector(dc *gg.Context, st *store.Store, e *element.Element, b geometry.Rect, stroke string, width float64) {
	// While a gesture is in flight b differs from the store bounds; carry
	// that offset onto free endpoints so the line follows the drag. Bound
	// endpoints stay on their anchors regardless.
	off := b.TopLeft().Sub(st.AbsoluteBounds(e).TopLeft())
	a := EndpointPosition(st, e, e.Start)
	if !e.Start.Bound() {
		a = a.Add(off)
	}
	z := EndpointPosition(st, e, e.End)
	if !e.End.Bound() {
		z = z.Add(off)
	}

	dc.SetHexColor(stroke)
	dc.SetLineWidth(width)
	dc.DrawLine(a.X, a.Y, z.X, z.Y)
	dc.Stroke()
}

// EndpointPosition resolves a connector endpoint to canvas coordinates.
// Bound endpoints follow the anchor of their target element; free endpoints
// are offset by the connector's frame origin.
func EndpointPosition(st *store.Store, conn *element.Element, ep *element.Endpoint) geometry.Point2D {
	if ep == nil {
		return st.AbsolutePosition(conn)
	}
	if ep.Bound() {
		if target := st.Element(ep.ConnectedElementID); target != nil {
			return st.AbsoluteBounds(target).AnchorPoint(ep.Anchor)
		}
	}

	p := geometry.NewPoint2D(ep.X, ep.Y)
	if conn.SectionID != "" {
		if sec := st.Section(conn.SectionID); sec != nil {
			p = p.Add(sec.Origin())
		}
	}
	return p
}

func drawTextLines(dc *gg.Context, text string, b geometry.Rect) {
	if text == "" {
		return
	}
	measurer := textlayout.Default()
	lines := measurer.Wrap(text, b.Width-2*titleInset)
	lineH := measurer.LineHeight()
	y := b.Y + lineH + titleInset/2
	for _, line := range lines {
		if y > b.Y+b.Height {
			break
		}
		dc.DrawString(line, b.X+titleInset, y)
		y += lineH
	}
}

func fillRect(dc *gg.Context, b geometry.Rect, fill string) {
	if fill == "" {
		return
	}
	dc.SetHexColor(fill)
	dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
	dc.Fill()
}

// FillOr returns v, or fallback when v is empty.
func FillOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
