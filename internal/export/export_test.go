package export

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"whiteboard/internal/element"
	"whiteboard/internal/store"
	"whiteboard/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmptyScene(t *testing.T) {
	_, err := Render(store.New(), Options{})
	assert.Error(t, err)
}

func TestRenderSizeIncludesPadding(t *testing.T) {
	st := store.New()
	st.AddElement(element.NewRectangle(0, 0, 100, 50))

	img, err := Render(st, Options{Padding: 10, Scale: 1})
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 70, img.Bounds().Dy())
}

func TestRenderScale(t *testing.T) {
	st := store.New()
	st.AddElement(element.NewRectangle(0, 0, 100, 50))

	img, err := Render(st, Options{Padding: 10, Scale: 2})
	require.NoError(t, err)
	assert.Equal(t, 240, img.Bounds().Dx())
}

func TestRenderFullScene(t *testing.T) {
	st := store.New()
	secID := st.CreateSection(0, 0, 400, 300, "Board")

	rect := element.NewRectangle(500, 50, 100, 60)
	st.AddElement(rect)
	circle := element.NewCircle(50, 50, 40)
	st.AddElement(circle)
	require.True(t, st.MoveElementBetweenSections(circle.ID, "", secID))

	sticky := element.NewSticky(650, 50, "hello world")
	st.AddElement(sticky)

	table := element.NewTable(500, 200, 180, 90, 2, 3)
	table.Cells = [][]string{{"a", "b", "c"}, {"d", "e", "f"}}
	st.AddElement(table)

	// One bound endpoint, one free.
	conn := element.NewConnector(
		element.Endpoint{X: 300, Y: 300},
		element.Endpoint{ConnectedElementID: rect.ID, Anchor: "left"},
	)
	st.AddElement(conn)

	stroke := element.NewFreehand([]geometry.Point2D{
		{X: 700, Y: 300}, {X: 720, Y: 320}, {X: 740, Y: 310},
	})
	st.AddElement(stroke)

	hidden := element.NewRectangle(0, 0, 10, 10)
	hidden.Visible = false
	st.AddElement(hidden)

	img, err := Render(st, Options{})
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
	assert.Positive(t, img.Bounds().Dy())
}

func TestPNGWritesFile(t *testing.T) {
	st := store.New()
	st.AddElement(element.NewRectangle(0, 0, 100, 50))

	path := filepath.Join(t.TempDir(), "board.png")
	require.NoError(t, PNG(st, path, Options{}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Positive(t, decoded.Bounds().Dx())
}
