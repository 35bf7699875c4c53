// Package export renders a canvas to a PNG image.
package export

import (
	"fmt"
	"image"

	"whiteboard/internal/scene"
	"whiteboard/internal/store"
	"whiteboard/pkg/geometry"
	"whiteboard/pkg/textlayout"

	"github.com/fogleman/gg"
)

// Options controls the exported image.
type Options struct {
	Padding    float64 // canvas units around the content bounds
	Scale      float64 // pixels per canvas unit, 1 when zero
	Background string  // hex color, white when empty
}

const defaultPadding = 24.0

func (o Options) normalized() Options {
	if o.Padding == 0 {
		o.Padding = defaultPadding
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Background == "" {
		o.Background = "#ffffff"
	}
	return o
}

// PNG renders the store's scene to a PNG file.
func PNG(st *store.Store, path string, opts Options) error {
	img, err := Render(st, opts)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("export png: %w", err)
	}
	return nil
}

// Render draws the store's scene into an image: sections bottom-up, then
// elements in z-order, with connector endpoints resolved against their
// bound anchors.
func Render(st *store.Store, opts Options) (image.Image, error) {
	opts = opts.normalized()

	bounds, ok := contentBounds(st)
	if !ok {
		return nil, fmt.Errorf("nothing to export")
	}
	bounds.X -= opts.Padding
	bounds.Y -= opts.Padding
	bounds.Width += 2 * opts.Padding
	bounds.Height += 2 * opts.Padding

	w := int(bounds.Width * opts.Scale)
	h := int(bounds.Height * opts.Scale)
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("degenerate export size %dx%d", w, h)
	}

	dc := gg.NewContext(w, h)
	dc.SetHexColor(opts.Background)
	dc.Clear()
	dc.Scale(opts.Scale, opts.Scale)
	dc.Translate(-bounds.X, -bounds.Y)
	dc.SetFontFace(textlayout.Default().Face())

	for _, sec := range st.Sections() {
		scene.DrawSection(dc, sec)
	}
	for _, e := range st.Elements() {
		if !e.Visible {
			continue
		}
		scene.DrawElement(dc, st, e, st.AbsoluteBounds(e))
	}
	return dc.Image(), nil
}

// contentBounds unions every visible element's and section's absolute
// bounds. ok is false for an empty scene.
func contentBounds(st *store.Store) (geometry.Rect, bool) {
	var bounds geometry.Rect
	found := false

	accumulate := func(r geometry.Rect) {
		if !found {
			bounds = r
			found = true
			return
		}
		bounds = bounds.Union(r)
	}

	for _, sec := range st.Sections() {
		if !sec.Hidden {
			accumulate(sec.Bounds())
		}
	}
	for _, e := range st.Elements() {
		if e.Visible {
			accumulate(st.AbsoluteBounds(e))
		}
	}
	return bounds, found
}
