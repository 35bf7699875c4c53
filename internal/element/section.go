package element

import (
	"time"

	"whiteboard/pkg/geometry"
)

// DefaultTitleBarHeight is the height of a section's title bar. The title
// bar is excluded from the scalable content area.
const DefaultTitleBarHeight = 32.0

// Section is a rectangular container that owns a set of elements and
// establishes a relative coordinate frame at its origin.
//
// Invariant: for every element e with e.SectionID == s.ID,
// s.ContainedElementIDs contains e.ID, and every id listed resolves to an
// existing element whose SectionID equals s.ID. The store's move protocol
// is the only code allowed to edit either side of this relationship.
type Section struct {
	ID             string    `json:"id"`
	X              float64   `json:"x"`
	Y              float64   `json:"y"`
	Width          float64   `json:"width"`
	Height         float64   `json:"height"`
	Title          string    `json:"title"`
	TitleBarHeight float64   `json:"titleBarHeight"`
	TitleFontSize  float64   `json:"titleFontSize,omitempty"`
	TitleColor     string    `json:"titleColor,omitempty"`
	Locked         bool      `json:"locked,omitempty"`
	Hidden         bool      `json:"hidden,omitempty"`
	Opacity        float64   `json:"opacity,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// ContainedElementIDs lists owned element ids in insertion order.
	ContainedElementIDs []string `json:"containedElementIds"`
}

// NewSection creates a section with an empty containment list.
func NewSection(x, y, width, height float64, title string) *Section {
	now := time.Now()
	return &Section{
		ID:                  NewID(),
		X:                   x,
		Y:                   y,
		Width:               width,
		Height:              height,
		Title:               title,
		TitleBarHeight:      DefaultTitleBarHeight,
		TitleFontSize:       13,
		Opacity:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
		ContainedElementIDs: []string{},
	}
}

// Origin returns the section's top-left corner in canvas coordinates.
// Contained elements store coordinates relative to this point.
func (s *Section) Origin() geometry.Point2D {
	return geometry.NewPoint2D(s.X, s.Y)
}

// Bounds returns the section's full rectangle in canvas coordinates,
// including the title bar.
func (s *Section) Bounds() geometry.Rect {
	return geometry.NewRect(s.X, s.Y, s.Width, s.Height)
}

// ContentBounds returns the scalable content area in canvas coordinates,
// excluding the title bar.
func (s *Section) ContentBounds() geometry.Rect {
	return geometry.NewRect(s.X, s.Y+s.TitleBarHeight, s.Width, s.Height-s.TitleBarHeight)
}

// Contains reports whether the containment list includes the element id.
func (s *Section) Contains(id string) bool {
	for _, cid := range s.ContainedElementIDs {
		if cid == id {
			return true
		}
	}
	return false
}

// AddContained appends an element id to the containment list if absent.
func (s *Section) AddContained(id string) {
	if !s.Contains(id) {
		s.ContainedElementIDs = append(s.ContainedElementIDs, id)
	}
}

// RemoveContained removes an element id from the containment list.
// Returns false if the id was not listed.
func (s *Section) RemoveContained(id string) bool {
	for i, cid := range s.ContainedElementIDs {
		if cid == id {
			s.ContainedElementIDs = append(s.ContainedElementIDs[:i], s.ContainedElementIDs[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the section.
func (s *Section) Clone() *Section {
	c := *s
	c.ContainedElementIDs = make([]string, len(s.ContainedElementIDs))
	copy(c.ContainedElementIDs, s.ContainedElementIDs)
	return &c
}
