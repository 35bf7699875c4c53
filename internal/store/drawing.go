package store

import (
	"whiteboard/internal/element"
	"whiteboard/pkg/geometry"

	"gonum.org/v1/gonum/floats"
)

// drawingSession buffers the points of an in-progress freehand stroke.
// The stroke only becomes an element on FinishDrawing; until then nothing
// is committed and cancellation is free.
type drawingSession struct {
	points []geometry.Point2D
	style  element.Style
}

// minStrokePoints is the threshold below which a finished stroke is
// discarded as an accidental click.
const minStrokePoints = 2

// StartDrawing begins a freehand stroke at the given canvas point,
// replacing any session already in progress.
func (s *Store) StartDrawing(p geometry.Point2D, style element.Style) {
	s.mu.Lock()
	s.drawing = &drawingSession{
		points: []geometry.Point2D{p},
		style:  style,
	}
	s.mu.Unlock()

	s.emit(EventDrawingChanged, nil)
}

// UpdateDrawing appends a point to the stroke buffer. No-op when no
// session is active.
func (s *Store) UpdateDrawing(p geometry.Point2D) {
	s.mu.Lock()
	if s.drawing == nil {
		s.mu.Unlock()
		return
	}
	s.drawing.points = append(s.drawing.points, p)
	s.mu.Unlock()

	s.emit(EventDrawingChanged, nil)
}

// FinishDrawing promotes the buffered stroke to a persisted freehand
// element and returns its id. Strokes shorter than the minimum point count
// are discarded and "" is returned.
func (s *Store) FinishDrawing() string {
	s.mu.Lock()
	session := s.drawing
	s.drawing = nil
	if session == nil || len(session.points) < minStrokePoints {
		s.mu.Unlock()
		s.emit(EventDrawingChanged, nil)
		return ""
	}

	e := element.NewFreehand(smoothStroke(session.points))
	e.Style = session.style
	if e.Style.StrokeWidth <= 0 {
		e.Style.StrokeWidth = 2
	}
	s.elements[e.ID] = e
	s.elementOrder = append(s.elementOrder, e.ID)
	s.commitLocked()
	s.mu.Unlock()

	s.emit(EventDrawingChanged, nil)
	s.emit(EventElementsChanged, e.ID)
	return e.ID
}

// smoothWindow is the number of neighboring raw pointer samples averaged
// into each stored stroke point.
const smoothWindow = 3

// smoothStroke runs a centered moving average over the raw pointer samples
// to take the jitter out of fast strokes. Endpoints are kept exact so the
// stroke still starts and ends where the pointer did.
func smoothStroke(points []geometry.Point2D) []geometry.Point2D {
	if len(points) <= smoothWindow {
		return points
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	out := make([]geometry.Point2D, len(points))
	out[0] = points[0]
	out[len(points)-1] = points[len(points)-1]
	half := smoothWindow / 2
	for i := 1; i < len(points)-1; i++ {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(points) {
			hi = len(points)
		}
		n := float64(hi - lo)
		out[i] = geometry.NewPoint2D(
			floats.Sum(xs[lo:hi])/n,
			floats.Sum(ys[lo:hi])/n,
		)
	}
	return out
}

// CancelDrawing discards the stroke buffer without committing anything.
func (s *Store) CancelDrawing() {
	s.mu.Lock()
	active := s.drawing != nil
	s.drawing = nil
	s.mu.Unlock()

	if active {
		s.emit(EventDrawingChanged, nil)
	}
}

// DrawingActive reports whether a stroke is in progress.
func (s *Store) DrawingActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drawing != nil
}

// DrawingPoints returns a copy of the in-progress stroke for preview
// rendering, or nil when no session is active.
func (s *Store) DrawingPoints() []geometry.Point2D {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.drawing == nil {
		return nil
	}
	return append([]geometry.Point2D(nil), s.drawing.points...)
}
