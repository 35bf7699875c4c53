package geometry

import "math"

// Anchor names a fixed attachment position on an element's bounding box.
type Anchor string

const (
	AnchorCenter Anchor = "center"
	AnchorTop    Anchor = "top"
	AnchorBottom Anchor = "bottom"
	AnchorLeft   Anchor = "left"
	AnchorRight  Anchor = "right"
)

// Anchors lists all anchors in a stable order.
var Anchors = []Anchor{AnchorCenter, AnchorTop, AnchorBottom, AnchorLeft, AnchorRight}

// AnchorPoint returns the position of the named anchor on the rectangle.
func (r Rect) AnchorPoint(a Anchor) Point2D {
	switch a {
	case AnchorTop:
		return Point2D{X: r.X + r.Width/2, Y: r.Y}
	case AnchorBottom:
		return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height}
	case AnchorLeft:
		return Point2D{X: r.X, Y: r.Y + r.Height/2}
	case AnchorRight:
		return Point2D{X: r.X + r.Width, Y: r.Y + r.Height/2}
	default:
		return r.Center()
	}
}

// NearestAnchor returns the anchor on the rectangle closest to p and its distance.
func (r Rect) NearestAnchor(p Point2D) (Anchor, float64) {
	best := AnchorCenter
	bestDist := math.Inf(1)
	for _, a := range Anchors {
		d := r.AnchorPoint(a).Distance(p)
		if d < bestDist {
			best = a
			bestDist = d
		}
	}
	return best, bestDist
}

// DistanceToSegment returns the distance from p to the segment a-b.
func DistanceToSegment(p, a, b Point2D) float64 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return p.Distance(a)
	}

	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Distance(a.Add(ab.Scale(t)))
}

// DistanceToPolyline returns the minimum distance from p to any segment of
// the polyline. Returns +Inf for fewer than two points.
func DistanceToPolyline(p Point2D, points []Point2D) float64 {
	if len(points) < 2 {
		if len(points) == 1 {
			return p.Distance(points[0])
		}
		return math.Inf(1)
	}

	minDist := math.Inf(1)
	for i := 0; i < len(points)-1; i++ {
		if d := DistanceToSegment(p, points[i], points[i+1]); d < minDist {
			minDist = d
		}
	}
	return minDist
}

// PointInEllipse returns true if p lies inside the ellipse inscribed in
// bounds, boundary inclusive. The tolerance keeps points computed to sit on
// the boundary, like inscribed-rectangle corners, from falling out through
// float rounding.
func PointInEllipse(p Point2D, bounds Rect) bool {
	rx := bounds.Width / 2
	ry := bounds.Height / 2
	if rx <= 0 || ry <= 0 {
		return false
	}
	c := bounds.Center()
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1+1e-9
}

// TriangleVertices returns the vertices of the upward-pointing isoceles
// triangle inscribed in bounds: apex top-center, base along the bottom edge.
func TriangleVertices(bounds Rect) [3]Point2D {
	return [3]Point2D{
		{X: bounds.X + bounds.Width/2, Y: bounds.Y},
		{X: bounds.X + bounds.Width, Y: bounds.Y + bounds.Height},
		{X: bounds.X, Y: bounds.Y + bounds.Height},
	}
}

// PointInTriangle returns true if p lies inside the triangle abc
// (barycentric sign test, boundary inclusive).
func PointInTriangle(p, a, b, c Point2D) bool {
	sign := func(p1, p2, p3 Point2D) float64 {
		return (p1.X-p3.X)*(p2.Y-p3.Y) - (p2.X-p3.X)*(p1.Y-p3.Y)
	}

	d1 := sign(p, a, b)
	d2 := sign(p, b, c)
	d3 := sign(p, c, a)

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// InscribedRectInEllipse returns the largest axis-aligned rectangle that
// fits inside the ellipse inscribed in bounds. Used to place text inside
// circle and ellipse shapes.
func InscribedRectInEllipse(bounds Rect) Rect {
	// Maximal inscribed rect has half-extents rx/sqrt2, ry/sqrt2.
	w := bounds.Width / math.Sqrt2
	h := bounds.Height / math.Sqrt2
	c := bounds.Center()
	return Rect{X: c.X - w/2, Y: c.Y - h/2, Width: w, Height: h}
}

// InscribedRectInTriangle returns a rectangle that fits inside the
// upward-pointing triangle inscribed in bounds. Used to place text inside
// triangle shapes. The rectangle sits in the lower half where the triangle
// is widest.
func InscribedRectInTriangle(bounds Rect) Rect {
	w := bounds.Width / 2
	h := bounds.Height / 2
	return Rect{
		X:      bounds.X + bounds.Width/4,
		Y:      bounds.Y + bounds.Height/2,
		Width:  w,
		Height: h,
	}
}
