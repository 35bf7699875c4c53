package store

// Zoom bounds. Pan is unconstrained: the canvas is infinite, so there is no
// content box to clamp against.
const (
	MinZoom = 0.1
	MaxZoom = 10.0
)

// Viewport holds the pan offset and zoom scale, independent of element data.
type Viewport struct {
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
	Zoom float64 `json:"zoom"`
}

// ViewportUpdate is a partial viewport update. Nil fields are unchanged.
type ViewportUpdate struct {
	PanX *float64
	PanY *float64
	Zoom *float64
}

// Viewport returns the current viewport.
func (s *Store) Viewport() Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// SetViewport merges pan/zoom fields. Zoom is clamped to [MinZoom, MaxZoom];
// out-of-range values are accepted and clamped rather than rejected, so
// wheel-driven zoom code does not need its own bounds checks. Viewport
// changes are not history-tracked.
func (s *Store) SetViewport(u ViewportUpdate) {
	s.mu.Lock()
	if u.PanX != nil {
		s.viewport.PanX = *u.PanX
	}
	if u.PanY != nil {
		s.viewport.PanY = *u.PanY
	}
	if u.Zoom != nil {
		zoom := *u.Zoom
		if zoom < MinZoom {
			zoom = MinZoom
		}
		if zoom > MaxZoom {
			zoom = MaxZoom
		}
		s.viewport.Zoom = zoom
	}
	s.mu.Unlock()

	s.emit(EventViewportChanged, s.Viewport())
}
