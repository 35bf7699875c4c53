package element

import (
	"encoding/json"
	"testing"

	"whiteboard/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundsPerKind(t *testing.T) {
	tests := []struct {
		name string
		el   *Element
		want geometry.Rect
	}{
		{"rectangle", NewRectangle(10, 20, 100, 50), geometry.NewRect(10, 20, 100, 50)},
		{"circle", NewCircle(10, 20, 25), geometry.NewRect(10, 20, 50, 50)},
		{"triangle", NewTriangle(0, 0, 60, 40), geometry.NewRect(0, 0, 60, 40)},
		{
			"connector",
			NewConnector(Endpoint{X: 100, Y: 50}, Endpoint{X: 20, Y: 80}),
			geometry.NewRect(20, 50, 80, 30),
		},
		{
			"freehand",
			NewFreehand([]geometry.Point2D{{X: 5, Y: 5}, {X: 25, Y: 15}}),
			geometry.NewRect(5, 5, 20, 10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.el.Bounds())
		})
	}
}

func TestFreehandPointsAreRebased(t *testing.T) {
	e := NewFreehand([]geometry.Point2D{{X: 100, Y: 200}, {X: 140, Y: 230}})

	assert.Equal(t, 100.0, e.X)
	assert.Equal(t, 200.0, e.Y)
	assert.Equal(t, geometry.Point2D{X: 0, Y: 0}, e.Points[0])
	assert.Equal(t, geometry.Point2D{X: 40, Y: 30}, e.Points[1])
}

func TestHitTest(t *testing.T) {
	rect := NewRectangle(0, 0, 100, 50)
	assert.True(t, rect.HitTest(geometry.Point2D{X: 50, Y: 25}))
	assert.False(t, rect.HitTest(geometry.Point2D{X: 150, Y: 25}))

	circle := NewCircle(0, 0, 50)
	assert.True(t, circle.HitTest(geometry.Point2D{X: 50, Y: 50}))
	// Bounding-box corner misses the circle.
	assert.False(t, circle.HitTest(geometry.Point2D{X: 3, Y: 3}))

	tri := NewTriangle(0, 0, 100, 100)
	assert.True(t, tri.HitTest(geometry.Point2D{X: 50, Y: 60}))
	assert.False(t, tri.HitTest(geometry.Point2D{X: 5, Y: 5}))

	conn := NewConnector(Endpoint{X: 0, Y: 0}, Endpoint{X: 100, Y: 0})
	assert.True(t, conn.HitTest(geometry.Point2D{X: 50, Y: 3}))
	assert.False(t, conn.HitTest(geometry.Point2D{X: 50, Y: 20}))

	free := NewFreehand([]geometry.Point2D{{X: 10, Y: 10}, {X: 110, Y: 10}})
	assert.True(t, free.HitTest(geometry.Point2D{X: 60, Y: 12}))
	assert.False(t, free.HitTest(geometry.Point2D{X: 60, Y: 40}))
}

func TestTextRegion(t *testing.T) {
	rect := NewRectangle(0, 0, 100, 100)
	assert.Equal(t, rect.Bounds(), rect.TextRegion())

	circle := NewCircle(0, 0, 50)
	region := circle.TextRegion()
	assert.True(t, circle.Bounds().ContainsRect(region))
	assert.Less(t, region.Width, 100.0)
}

func TestCloneIsDeep(t *testing.T) {
	e := NewConnector(Endpoint{X: 1, Y: 2}, Endpoint{X: 3, Y: 4, ConnectedElementID: "a", Anchor: geometry.AnchorRight})
	e.Points = []geometry.Point2D{{X: 1, Y: 1}}
	e.Cells = [][]string{{"x"}}

	c := e.Clone()
	c.End.ConnectedElementID = "b"
	c.Points[0].X = 99
	c.Cells[0][0] = "y"

	assert.Equal(t, "a", e.End.ConnectedElementID)
	assert.Equal(t, 1.0, e.Points[0].X)
	assert.Equal(t, "x", e.Cells[0][0])
}

func TestEndpointBound(t *testing.T) {
	assert.False(t, (*Endpoint)(nil).Bound())
	assert.False(t, (&Endpoint{X: 1}).Bound())
	assert.True(t, (&Endpoint{ConnectedElementID: "a"}).Bound())
}

func TestSectionContainment(t *testing.T) {
	s := NewSection(100, 100, 300, 200, "Notes")
	require.Empty(t, s.ContainedElementIDs)

	s.AddContained("a")
	s.AddContained("b")
	s.AddContained("a") // duplicate ignored
	assert.Equal(t, []string{"a", "b"}, s.ContainedElementIDs)
	assert.True(t, s.Contains("a"))

	assert.True(t, s.RemoveContained("a"))
	assert.False(t, s.RemoveContained("a"))
	assert.Equal(t, []string{"b"}, s.ContainedElementIDs)
}

func TestSectionBounds(t *testing.T) {
	s := NewSection(100, 100, 300, 200, "Notes")

	assert.Equal(t, geometry.NewRect(100, 100, 300, 200), s.Bounds())
	content := s.ContentBounds()
	assert.Equal(t, 100+s.TitleBarHeight, content.Y)
	assert.Equal(t, 200-s.TitleBarHeight, content.Height)
	assert.Equal(t, geometry.NewPoint2D(100, 100), s.Origin())
}

func TestSectionCloneIsDeep(t *testing.T) {
	s := NewSection(0, 0, 100, 100, "S")
	s.AddContained("a")

	c := s.Clone()
	c.AddContained("b")
	assert.Equal(t, []string{"a"}, s.ContainedElementIDs)
}

func TestElementJSONRoundTrip(t *testing.T) {
	e := NewConnector(
		Endpoint{X: 10, Y: 20},
		Endpoint{X: 30, Y: 40, ConnectedElementID: "target", Anchor: geometry.AnchorLeft},
	)
	e.SectionID = "sec"
	e.Style = Style{Stroke: "#333333", StrokeWidth: 2, Opacity: 1}

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var back Element
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, e.ID, back.ID)
	assert.Equal(t, KindConnector, back.Kind)
	assert.Equal(t, "sec", back.SectionID)
	require.NotNil(t, back.End)
	assert.Equal(t, "target", back.End.ConnectedElementID)
	assert.Equal(t, geometry.AnchorLeft, back.End.Anchor)
}
