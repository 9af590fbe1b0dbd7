package render

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/blockfit/pkg/errors"
	"github.com/matzehuels/blockfit/pkg/geometry"
	"github.com/matzehuels/blockfit/pkg/scene"
)

func mustRender(t *testing.T, v View) image.Image {
	t.Helper()
	img, err := RenderImage(v)
	if err != nil {
		t.Fatalf("RenderImage() error: %v", err)
	}
	return img
}

func pixel(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

// blankView has a white background so the placeholder text stays out of
// pixel probes.
func blankView(w, h int) View {
	v := NewView(w, h)
	v.Background = solid(1, 1, color.White)
	return v
}

func TestRenderImageEmptyCanvas(t *testing.T) {
	img := mustRender(t, NewView(100, 80))
	if got := img.Bounds().Size(); got != (image.Point{100, 80}) {
		t.Fatalf("size = %v, want 100x80", got)
	}
	if got := pixel(img, 1, 1); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("corner pixel = %v, want white", got)
	}
}

func TestRenderImageDefaultSize(t *testing.T) {
	img := mustRender(t, View{Selected: scene.NoSelection})
	if got := img.Bounds().Size(); got != (image.Point{DefaultWidth, DefaultHeight}) {
		t.Errorf("size = %v, want %dx%d", got, DefaultWidth, DefaultHeight)
	}
}

func TestRenderImageBackgroundStretched(t *testing.T) {
	v := NewView(60, 40)
	v.Background = solid(3, 2, color.NRGBA{0, 200, 0, 255})
	img := mustRender(t, v)
	for _, p := range []image.Point{{2, 2}, {30, 20}, {57, 37}} {
		if got := pixel(img, p.X, p.Y); got.G < 180 || got.R > 40 {
			t.Errorf("pixel %v = %v, want background green", p, got)
		}
	}
}

func TestRenderImageBlockFill(t *testing.T) {
	v := NewView(100, 100)
	v.Blocks = []scene.Block{{X: 20, Y: 20, W: 60, H: 60, Color: "#000000"}}
	img := mustRender(t, v)

	got := pixel(img, 30, 30)
	// black at 90% over white
	if got.R < 15 || got.R > 40 {
		t.Errorf("block pixel = %v, want ~(25,25,25)", got)
	}
	if outside := pixel(img, 5, 5); outside.R != 255 {
		t.Errorf("outside pixel = %v, want white", outside)
	}
}

func TestRenderImageUnparseableColorUsesGray(t *testing.T) {
	v := NewView(100, 100)
	v.Blocks = []scene.Block{{X: 20, Y: 20, W: 60, H: 60, Color: "nope"}}
	got := pixel(mustRender(t, v), 30, 30)
	// #555555 at 90% over white
	if got.R < 90 || got.R > 110 || got.R != got.G || got.G != got.B {
		t.Errorf("block pixel = %v, want neutral gray ~(102,102,102)", got)
	}
}

func TestRenderImageCollisionHighlight(t *testing.T) {
	v := NewView(200, 100)
	v.Blocks = []scene.Block{
		{X: 10, Y: 10, W: 60, H: 60, Color: "#BDC6CA"},
		{X: 50, Y: 10, W: 60, H: 60, Color: "#BDC6CA"},
	}
	v.Selected = 1

	idle := pixel(mustRender(t, v), 100, 60)
	if idle.R >= idle.G {
		t.Errorf("selected block without gesture = %v, want its own color", idle)
	}

	v.Gesturing = true
	alert := pixel(mustRender(t, v), 100, 60)
	if alert.R < alert.G+50 {
		t.Errorf("colliding block = %v, want alert red", alert)
	}

	// Only the selected block is highlighted.
	other := pixel(mustRender(t, v), 20, 60)
	if other.R >= other.G {
		t.Errorf("unselected block = %v, want its own color", other)
	}
}

func TestRenderImageRotatedBlock(t *testing.T) {
	v := blankView(100, 100)
	// a 80x10 bar through the center, rotated to vertical
	v.Blocks = []scene.Block{{X: 10, Y: 45, W: 80, H: 10, Angle: 90, Color: "#000000"}}
	img := mustRender(t, v)
	if got := pixel(img, 50, 15); got.R > 60 {
		t.Errorf("pixel on rotated bar = %v, want dark", got)
	}
	if got := pixel(img, 15, 50); got.R != 255 {
		t.Errorf("pixel on unrotated extent = %v, want white", got)
	}
}

func TestRenderImageCalibrationMarkers(t *testing.T) {
	v := NewView(100, 100)
	v.Calibrating = true
	v.CalibrationPoints = []geometry.Point{{X: 20, Y: 20}, {X: 80, Y: 20}}
	img := mustRender(t, v)
	for _, p := range []image.Point{{20, 20}, {80, 20}, {50, 20}} {
		got := pixel(img, p.X, p.Y)
		if got.R < 150 || got.G > 120 {
			t.Errorf("pixel %v = %v, want calibration red", p, got)
		}
	}

	v.Calibrating = false
	if got := pixel(mustRender(t, v), 20, 20); got.R != 255 || got.G != 255 {
		t.Errorf("markers drawn outside calibration: %v", got)
	}
}

func TestRenderPNG(t *testing.T) {
	v := NewView(50, 30)
	v.Blocks = []scene.Block{{X: 5, Y: 5, W: 20, H: 10, Label: "1 Rec A", Color: "rgba(156, 123, 56, 1)"}}

	data, err := RenderPNG(v, WithScale(2))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if got := img.Bounds().Size(); got != (image.Point{100, 60}) {
		t.Errorf("size = %v, want 100x60", got)
	}
}

func TestRenderPNGRejectsBadScale(t *testing.T) {
	for _, scale := range []float64{-3, 0, math.NaN(), MaxScale + 0.5, 100000} {
		_, err := RenderPNG(NewView(10, 10), WithScale(scale))
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("scale %v: error = %v, want INVALID_INPUT", scale, err)
		}
	}
	if _, err := RenderPNG(NewView(10, 10), WithScale(MaxScale)); err != nil {
		t.Errorf("scale %v: error = %v", MaxScale, err)
	}
}

func TestRenderImageRejectsOversizedCanvas(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		scale float64
	}{
		{"wide canvas", MaxDimension + 1, 10, 1},
		{"tall canvas", 10, 1 << 30, 1},
		{"scaled past the limit", MaxDimension/2 + 1, 10, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderImage(NewView(tt.w, tt.h), WithScale(tt.scale))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("RenderImage() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	v := NewView(300, 200)
	v.Blocks = []scene.Block{
		{X: 10, Y: 10, W: 80, H: 40, Label: "<A&B>", Color: "#746559"},
		{X: 150, Y: 10, W: 80, H: 40, Angle: 30, Label: "Estudio A", Color: "#D0C7BB"},
	}
	v.Selected = 1
	v.Calibrating = true
	v.CalibrationPoints = []geometry.Point{{X: 1, Y: 1}, {X: 50, Y: 1}}

	svg := string(RenderSVG(v))
	wants := []string{
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 300 200"`,
		`id="block-0"`,
		`rotate(30.00)`,
		`&lt;A&amp;B&gt;`,
		Placeholder,
		`fill="#746559" fill-opacity="0.900"`,
		`<circle cx="0" cy="-40.00" r="4"`,
		"</svg>",
	}
	for _, want := range wants {
		if !strings.Contains(svg, want) {
			t.Errorf("RenderSVG() missing %q", want)
		}
	}
	if got := strings.Count(svg, `class="calibration"`); got != 3 {
		t.Errorf("calibration elements = %d, want 3", got)
	}
	if strings.Contains(svg, "@font-face") {
		t.Error("font embedded without WithEmbeddedFont")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	v := NewView(40, 40)
	v.Background = solid(2, 2, color.NRGBA{255, 0, 0, 255})

	svg := string(RenderSVG(v, WithEmbeddedFont()))
	if !strings.Contains(svg, "@font-face") {
		t.Error("WithEmbeddedFont() did not embed the font")
	}
	if !strings.Contains(svg, "data:image/png;base64,") {
		t.Error("background not embedded")
	}
	if strings.Contains(svg, Placeholder) {
		t.Error("placeholder drawn over a background")
	}

	bare := string(RenderSVG(v, WithoutBackground()))
	if strings.Contains(bare, "<image") {
		t.Error("WithoutBackground() still embedded the image")
	}
}

func TestRenderJSON(t *testing.T) {
	v := NewView(100, 100)
	v.PxPerMeter = 20
	v.Blocks = []scene.Block{
		{X: 0, Y: 0, W: 100, H: 180, Label: "1 Rec A"},
		{X: 50, Y: 50, W: 40, H: 40},
	}

	data, err := RenderJSON(v, WithJSONIndent())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.PxPerMeter != 20 || len(out.Blocks) != 2 {
		t.Fatalf("output = %+v", out)
	}
	if out.Blocks[0].WidthM != 5 || out.Blocks[0].HeightM != 9 {
		t.Errorf("meters = %vx%v, want 5x9", out.Blocks[0].WidthM, out.Blocks[0].HeightM)
	}
	if !out.Blocks[0].Overlapping || !out.Blocks[1].Overlapping {
		t.Error("overlapping blocks not flagged")
	}
}

func TestRenderJSONRejectsNaN(t *testing.T) {
	v := NewView(10, 10)
	v.Blocks = []scene.Block{{W: math.NaN(), H: 1}}
	if _, err := RenderJSON(v); err == nil {
		t.Error("RenderJSON() with NaN width succeeded, want error")
	}
}

func TestRenderSkipsNaNBlocks(t *testing.T) {
	v := blankView(20, 20)
	v.Blocks = []scene.Block{{X: 0, Y: 0, W: math.NaN(), H: math.NaN(), Color: "#000000"}}
	if got := pixel(mustRender(t, v), 10, 10); got.R != 255 {
		t.Errorf("NaN block drew pixels: %v", got)
	}
	if strings.Contains(string(RenderSVG(v)), "block-0") {
		t.Error("NaN block emitted in SVG")
	}
}
