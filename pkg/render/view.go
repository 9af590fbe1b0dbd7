package render

import (
	"image"
	"image/color"

	"github.com/matzehuels/blockfit/pkg/geometry"
	"github.com/matzehuels/blockfit/pkg/scene"
)

// ExportFilename is the fixed name of the exported PNG.
const ExportFilename = "fit_test_plano.png"

// Placeholder is drawn in the middle of the canvas when no background is set.
const Placeholder = "Drop your reference plan here"

// Canvas defaults.
const (
	DefaultWidth  = 1200
	DefaultHeight = 800
)

// Palette.
var (
	colorCanvas      = color.NRGBA{255, 255, 255, 255}
	colorPlaceholder = color.NRGBA{0xcc, 0xcc, 0xcc, 255}
	colorAlert       = color.NRGBA{192, 57, 43, 204}
	colorBorder      = color.NRGBA{0, 0, 0, 77}
	colorSelected    = color.NRGBA{255, 255, 255, 255}
	colorColliding   = color.NRGBA{0x8b, 0, 0, 255} // darkred
	colorLabel       = color.NRGBA{255, 255, 255, 255}
	colorShadow      = color.NRGBA{0, 0, 0, 179}
	colorCalibration = color.NRGBA{0xc0, 0x39, 0x2b, 255}
)

// Drawing constants in canvas pixels.
const (
	blockAlpha       = 0.9
	borderWidth      = 1.0
	selectedWidth    = 2.0
	tickLength       = 20.0
	tickDotRadius    = 4.0
	markerRadius     = 5.0
	guideWidth       = 2.0
	placeholderSize  = 20.0
	shadowOffset     = 1.0
	selectedTickLine = 2.0
)

// View is everything the renderers need to draw one frame. Rendering never
// mutates it.
type View struct {
	Width, Height int

	Blocks     []scene.Block
	PxPerMeter float64

	// Selected is the selected block index, or scene.NoSelection.
	Selected int
	// Gesturing is true while a drag or rotate is in progress.
	Gesturing bool

	Background image.Image

	Calibrating       bool
	CalibrationPoints []geometry.Point
}

// NewView returns an empty view of the given size with nothing selected.
func NewView(w, h int) View {
	return View{Width: w, Height: h, PxPerMeter: 1, Selected: scene.NoSelection}
}

// Colliding reports whether block i should get the overlap highlight: it is
// selected, a gesture is in progress and it overlaps another block.
func (v View) Colliding(i int) bool {
	if i != v.Selected || !v.Gesturing {
		return false
	}
	s := scene.Scene{Blocks: v.Blocks}
	return s.AnyOverlap(i)
}

func (v View) size() (int, int) {
	w, h := v.Width, v.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(float64(c.A)*a + 0.5)
	return c
}

// fillColor is the block fill before the 90% block alpha is applied.
func fillColor(v View, i int) color.NRGBA {
	if v.Colliding(i) {
		return colorAlert
	}
	return scene.ColorOrFallback(v.Blocks[i].Color)
}

// strokeStyle returns the border color and width of block i.
func strokeStyle(v View, i int) (color.NRGBA, float64) {
	c, w := colorBorder, borderWidth
	if i == v.Selected {
		c, w = colorSelected, selectedWidth
	}
	if v.Colliding(i) {
		c = colorColliding
	}
	return c, w
}
