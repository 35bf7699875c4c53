// Package textlayout measures and wraps text for canvas elements.
package textlayout

import (
	"os"
	"strings"

	"whiteboard/pkg/geometry"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Measurer measures text using a font face.
type Measurer struct {
	face       font.Face
	lineHeight float64
}

// Default returns a measurer backed by the built-in fixed-width face.
// Used when no TTF font is available (headless tools, tests).
func Default() *Measurer {
	face := basicfont.Face7x13
	return &Measurer{
		face:       face,
		lineHeight: float64(face.Metrics().Height.Ceil()),
	}
}

// LoadFace loads a TTF font from disk at the given point size.
func LoadFace(path string, size float64) (*Measurer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}

	face := truetype.NewFace(f, &truetype.Options{Size: size})
	return &Measurer{
		face:       face,
		lineHeight: float64(face.Metrics().Height.Ceil()),
	}, nil
}

// Face returns the underlying font face for rendering.
func (m *Measurer) Face() font.Face {
	return m.face
}

// StringWidth returns the advance width of a single line of text.
func (m *Measurer) StringWidth(s string) float64 {
	return float64(font.MeasureString(m.face, s).Ceil())
}

// LineHeight returns the height of one line of text.
func (m *Measurer) LineHeight() float64 {
	return m.lineHeight
}

// Wrap breaks text into lines no wider than maxWidth. Words longer than
// maxWidth occupy a line of their own. Explicit newlines are preserved.
func (m *Measurer) Wrap(s string, maxWidth float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := words[0]
		for _, word := range words[1:] {
			candidate := current + " " + word
			if m.StringWidth(candidate) <= maxWidth {
				current = candidate
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		lines = append(lines, current)
	}
	return lines
}

// Bounds returns the size of the text after wrapping to maxWidth.
// A maxWidth <= 0 means no wrapping.
func (m *Measurer) Bounds(s string, maxWidth float64) geometry.Size {
	var lines []string
	if maxWidth > 0 {
		lines = m.Wrap(s, maxWidth)
	} else {
		lines = strings.Split(s, "\n")
	}

	var widest float64
	for _, line := range lines {
		if w := m.StringWidth(line); w > widest {
			widest = w
		}
	}
	return geometry.NewSize(widest, float64(len(lines))*m.lineHeight)
}
