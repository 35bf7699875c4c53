package board

import (
	"image"
	"math"

	"whiteboard/internal/element"
	"whiteboard/internal/scene"
	"whiteboard/pkg/geometry"
	"whiteboard/pkg/textlayout"

	"fyne.io/fyne/v2"
	"github.com/fogleman/gg"
)

const (
	gridSpacing  = 32.0
	handleRadius = 4.0
)

// draw is the raster callback. A frame that panics is dropped by the error
// boundary and replaced with a blank image instead of tearing down the app.
func (b *Board) draw(w, h int) image.Image {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dc := gg.NewContext(w, h)
	if ok := b.boundary.Guard(func() { b.drawScene(dc, w, h) }); !ok {
		blank := gg.NewContext(w, h)
		blank.SetHexColor("#fafafa")
		blank.Clear()
		return blank.Image()
	}
	return dc.Image()
}

func (b *Board) drawScene(dc *gg.Context, w, h int) {
	vp := b.store.Viewport()

	dc.SetHexColor("#ffffff")
	dc.Clear()

	if b.ShowGrid() {
		b.drawGrid(dc, w, h)
	}

	dc.Translate(vp.PanX, vp.PanY)
	dc.Scale(vp.Zoom, vp.Zoom)
	dc.SetFontFace(textlayout.Default().Face())

	for _, sec := range b.store.Sections() {
		scene.DrawSection(dc, sec)
	}
	for _, e := range b.store.Elements() {
		if !e.Visible {
			continue
		}
		scene.DrawElement(dc, b.store, e, b.elementBounds(e))
	}

	if b.store.DrawingActive() {
		scene.DrawStroke(dc, b.store.DrawingPoints(), element.Style{})
	}

	b.drawSelection(dc, vp.Zoom)
	b.drawGuides(dc, vp.Zoom)
}

// elementBounds returns the element's absolute bounds, with any live node
// override from an in-flight gesture applied on top of store state.
func (b *Board) elementBounds(e *element.Element) geometry.Rect {
	bounds := b.store.AbsoluteBounds(e)

	b.mu.Lock()
	n := b.nodes[e.ID]
	b.mu.Unlock()
	if n == nil {
		return bounds
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.live {
		return bounds
	}
	bounds.X = n.pos.X
	bounds.Y = n.pos.Y
	if n.sized {
		bounds.Width = n.w
		bounds.Height = n.h
	}
	return bounds
}

// drawGrid covers the visible region with dots in canvas units, so the grid
// pans and zooms with the content.
func (b *Board) drawGrid(dc *gg.Context, w, h int) {
	vp := b.store.Viewport()

	topLeft := b.toCanvas(fyne.NewPos(0, 0))
	bottomRight := b.toCanvas(fyne.NewPos(float32(w), float32(h)))

	dc.Push()
	dc.Translate(vp.PanX, vp.PanY)
	dc.Scale(vp.Zoom, vp.Zoom)
	dc.SetHexColor("#d0d0d8")

	startX := math.Floor(topLeft.X/gridSpacing) * gridSpacing
	startY := math.Floor(topLeft.Y/gridSpacing) * gridSpacing
	for x := startX; x <= bottomRight.X; x += gridSpacing {
		for y := startY; y <= bottomRight.Y; y += gridSpacing {
			dc.DrawCircle(x, y, 1/vp.Zoom)
			dc.Fill()
		}
	}
	dc.Pop()
}

// drawSelection strokes a highlight box and corner handles around each
// selected element. Handle size is fixed in screen pixels.
func (b *Board) drawSelection(dc *gg.Context, zoom float64) {
	ids := b.store.SelectedIDs()
	if len(ids) == 0 {
		return
	}

	r := handleRadius / zoom
	dc.SetLineWidth(1.5 / zoom)
	for _, id := range ids {
		e := b.store.Element(id)
		if e == nil {
			continue
		}
		bounds := b.elementBounds(e)

		dc.SetHexColor("#3b5bdb")
		dc.DrawRectangle(bounds.X, bounds.Y, bounds.Width, bounds.Height)
		dc.Stroke()

		corners := []geometry.Point2D{
			bounds.TopLeft(),
			geometry.NewPoint2D(bounds.X+bounds.Width, bounds.Y),
			geometry.NewPoint2D(bounds.X, bounds.Y+bounds.Height),
			bounds.BottomRight(),
		}
		for _, c := range corners {
			dc.SetHexColor("#ffffff")
			dc.DrawRectangle(c.X-r, c.Y-r, 2*r, 2*r)
			dc.FillPreserve()
			dc.SetHexColor("#3b5bdb")
			dc.Stroke()
		}
	}
}

func (b *Board) drawGuides(dc *gg.Context, zoom float64) {
	b.mu.Lock()
	rect := b.guideRect
	line := b.guideLine
	b.mu.Unlock()

	dc.SetHexColor("#3b5bdb")
	dc.SetLineWidth(1 / zoom)
	dc.SetDash(4/zoom, 4/zoom)
	defer dc.SetDash()

	if rect != nil {
		dc.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
		dc.Stroke()
	}
	if line != nil {
		dc.DrawLine(line[0].X, line[0].Y, line[1].X, line[1].Y)
		dc.Stroke()
	}
}
