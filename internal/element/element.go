// Package element defines the canvas scene-graph data model: elements,
// sections, and connector endpoint bindings.
package element

import (
	"time"

	"whiteboard/pkg/geometry"

	"github.com/google/uuid"
)

// Kind identifies the shape kind of an element. The set is closed; every
// component that dispatches on Kind switches over all of these.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindCircle    Kind = "circle"
	KindTriangle  Kind = "triangle"
	KindText      Kind = "text"
	KindSticky    Kind = "sticky-note"
	KindTable     Kind = "table"
	KindConnector Kind = "connector"
	KindFreehand  Kind = "freehand"
	KindImage     Kind = "image"
)

// Kinds lists all element kinds in a stable order.
var Kinds = []Kind{
	KindRectangle, KindCircle, KindTriangle, KindText, KindSticky,
	KindTable, KindConnector, KindFreehand, KindImage,
}

// Style holds visual styling shared by all element kinds.
// Colors are hex strings ("#rrggbb" or "#rrggbbaa") for document portability.
type Style struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
}

// Endpoint is one end of a connector. When ConnectedElementID is set the
// endpoint is bound to the named anchor of that element and X/Y are the
// last resolved position; otherwise X/Y is a free canvas coordinate.
type Endpoint struct {
	X                  float64         `json:"x"`
	Y                  float64         `json:"y"`
	ConnectedElementID string          `json:"connectedElementId,omitempty"`
	Anchor             geometry.Anchor `json:"anchorPoint,omitempty"`
}

// Bound reports whether the endpoint is attached to an element anchor.
func (ep *Endpoint) Bound() bool {
	return ep != nil && ep.ConnectedElementID != ""
}

// Element is a single scene-graph object. The kind-specific fields are
// populated according to Kind; unused fields stay at their zero value and
// are omitted from JSON.
//
// X and Y are relative to the owning section's origin when SectionID is
// set, and to the canvas origin otherwise.
type Element struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	SectionID string    `json:"sectionId,omitempty"`
	Visible   bool      `json:"visible"`
	Locked    bool      `json:"locked,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Style     Style     `json:"style,omitempty"`

	// Rectangle, triangle, text, sticky-note, table, image
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Circle / ellipse
	Radius float64 `json:"radius,omitempty"`

	// Text content and typography (text, sticky-note, shapes with labels)
	Text       string  `json:"text,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`

	// Table
	Rows  int        `json:"rows,omitempty"`
	Cols  int        `json:"cols,omitempty"`
	Cells [][]string `json:"cells,omitempty"`

	// Connector
	Start *Endpoint `json:"start,omitempty"`
	End   *Endpoint `json:"end,omitempty"`

	// Freehand path, points relative to (X, Y)
	Points []geometry.Point2D `json:"points,omitempty"`

	// Image
	ImagePath string `json:"imagePath,omitempty"`
}

// NewID returns a fresh unique element id.
func NewID() string {
	return uuid.NewString()
}

func newElement(kind Kind, x, y float64) *Element {
	now := time.Now()
	return &Element{
		ID:        NewID(),
		Kind:      kind,
		X:         x,
		Y:         y,
		Visible:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewRectangle creates a rectangle element.
func NewRectangle(x, y, width, height float64) *Element {
	e := newElement(KindRectangle, x, y)
	e.Width = width
	e.Height = height
	return e
}

// NewCircle creates a circle element. X and Y are the top-left of the
// bounding square.
func NewCircle(x, y, radius float64) *Element {
	e := newElement(KindCircle, x, y)
	e.Radius = radius
	return e
}

// NewTriangle creates a triangle element.
func NewTriangle(x, y, width, height float64) *Element {
	e := newElement(KindTriangle, x, y)
	e.Width = width
	e.Height = height
	return e
}

// NewText creates a text element.
func NewText(x, y float64, text string) *Element {
	e := newElement(KindText, x, y)
	e.Text = text
	e.FontSize = 14
	e.Width = 160
	e.Height = 24
	return e
}

// NewSticky creates a sticky-note element.
func NewSticky(x, y float64, text string) *Element {
	e := newElement(KindSticky, x, y)
	e.Text = text
	e.FontSize = 14
	e.Width = 180
	e.Height = 180
	e.Style.Fill = "#fff9b1"
	return e
}

// NewTable creates a table element with empty cells.
func NewTable(x, y, width, height float64, rows, cols int) *Element {
	e := newElement(KindTable, x, y)
	e.Width = width
	e.Height = height
	e.Rows = rows
	e.Cols = cols
	e.Cells = make([][]string, rows)
	for i := range e.Cells {
		e.Cells[i] = make([]string, cols)
	}
	return e
}

// NewConnector creates a connector element between two endpoints.
// The element position is derived from the endpoints.
func NewConnector(start, end Endpoint) *Element {
	e := newElement(KindConnector, min(start.X, end.X), min(start.Y, end.Y))
	e.Start = &start
	e.End = &end
	return e
}

// NewFreehand creates a freehand path element from absolute points.
// Points are rebased so the element position is the path's top-left.
func NewFreehand(points []geometry.Point2D) *Element {
	box := geometry.BoundingBox(points)
	e := newElement(KindFreehand, box.X, box.Y)
	e.Points = make([]geometry.Point2D, len(points))
	for i, p := range points {
		e.Points[i] = p.Sub(box.TopLeft())
	}
	e.Style.StrokeWidth = 2
	return e
}

// NewImage creates an image element.
func NewImage(x, y, width, height float64, path string) *Element {
	e := newElement(KindImage, x, y)
	e.Width = width
	e.Height = height
	e.ImagePath = path
	return e
}

// Bounds returns the element's bounding box in its own coordinate frame
// (section-relative when owned, canvas-absolute otherwise).
func (e *Element) Bounds() geometry.Rect {
	switch e.Kind {
	case KindCircle:
		return geometry.NewRect(e.X, e.Y, e.Radius*2, e.Radius*2)
	case KindConnector:
		if e.Start != nil && e.End != nil {
			return geometry.FromCorners(
				geometry.NewPoint2D(e.Start.X, e.Start.Y),
				geometry.NewPoint2D(e.End.X, e.End.Y),
			)
		}
		return geometry.NewRect(e.X, e.Y, 0, 0)
	case KindFreehand:
		box := geometry.BoundingBox(e.Points)
		return geometry.NewRect(e.X+box.X, e.Y+box.Y, box.Width, box.Height)
	default:
		return geometry.NewRect(e.X, e.Y, e.Width, e.Height)
	}
}

// hitSlop widens hit targets for thin geometry (connectors, strokes).
const hitSlop = 4.0

// HitTest returns true if p (in the element's coordinate frame) hits the
// element's visible geometry.
func (e *Element) HitTest(p geometry.Point2D) bool {
	switch e.Kind {
	case KindCircle:
		return geometry.PointInEllipse(p, e.Bounds())
	case KindTriangle:
		v := geometry.TriangleVertices(e.Bounds())
		return geometry.PointInTriangle(p, v[0], v[1], v[2])
	case KindConnector:
		if e.Start == nil || e.End == nil {
			return false
		}
		a := geometry.NewPoint2D(e.Start.X, e.Start.Y)
		b := geometry.NewPoint2D(e.End.X, e.End.Y)
		return geometry.DistanceToSegment(p, a, b) <= e.strokeSlop()
	case KindFreehand:
		local := p.Sub(geometry.NewPoint2D(e.X, e.Y))
		return geometry.DistanceToPolyline(local, e.Points) <= e.strokeSlop()
	default:
		return e.Bounds().Contains(p)
	}
}

func (e *Element) strokeSlop() float64 {
	slop := e.Style.StrokeWidth/2 + hitSlop
	if slop < hitSlop {
		slop = hitSlop
	}
	return slop
}

// TextRegion returns the rectangle available for text content, shrunk to
// the inscribed region for circles and triangles.
func (e *Element) TextRegion() geometry.Rect {
	switch e.Kind {
	case KindCircle:
		return geometry.InscribedRectInEllipse(e.Bounds())
	case KindTriangle:
		return geometry.InscribedRectInTriangle(e.Bounds())
	default:
		return e.Bounds()
	}
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	c := *e
	if e.Start != nil {
		start := *e.Start
		c.Start = &start
	}
	if e.End != nil {
		end := *e.End
		c.End = &end
	}
	if e.Points != nil {
		c.Points = make([]geometry.Point2D, len(e.Points))
		copy(c.Points, e.Points)
	}
	if e.Cells != nil {
		c.Cells = make([][]string, len(e.Cells))
		for i, row := range e.Cells {
			c.Cells[i] = make([]string, len(row))
			copy(c.Cells[i], row)
		}
	}
	return &c
}
