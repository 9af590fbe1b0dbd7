package render

import (
	"bytes"
	"image"
	"image/png"
	"time"

	"github.com/fogleman/gg"

	"github.com/matzehuels/blockfit/pkg/background"
	"github.com/matzehuels/blockfit/pkg/errors"
	"github.com/matzehuels/blockfit/pkg/fonts"
	"github.com/matzehuels/blockfit/pkg/observability"
	"github.com/matzehuels/blockfit/pkg/scene"
)

// Raster output limits. Larger requests are refused with INVALID_INPUT.
const (
	MaxScale     = 8.0
	MaxDimension = 16384 // output pixels per side
)

// PNGOption configures raster rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
}

// WithScale sets the output scale factor (default 1, one output pixel per
// canvas pixel). It must be in (0, MaxScale].
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

func newPNGRenderer(opts ...PNGOption) (pngRenderer, error) {
	r := pngRenderer{scale: 1}
	for _, opt := range opts {
		opt(&r)
	}
	if !(r.scale > 0 && r.scale <= MaxScale) {
		return r, errors.New(errors.ErrCodeInvalidInput, "scale %g out of range (0, %g]", r.scale, MaxScale)
	}
	return r, nil
}

// rasterize draws v onto a new context sized for the scale.
func (r pngRenderer) rasterize(v View) (*gg.Context, error) {
	w, h := v.size()
	pw := int(float64(w)*r.scale + 0.5)
	ph := int(float64(h)*r.scale + 0.5)
	if pw < 1 || ph < 1 || pw > MaxDimension || ph > MaxDimension {
		return nil, errors.New(errors.ErrCodeInvalidInput, "output size %dx%d px exceeds %d px per side", pw, ph, MaxDimension)
	}
	dc := gg.NewContext(pw, ph)
	dc.Scale(r.scale, r.scale)
	drawFrame(dc, v)
	return dc, nil
}

// RenderImage rasterizes v.
func RenderImage(v View, opts ...PNGOption) (image.Image, error) {
	r, err := newPNGRenderer(opts...)
	if err != nil {
		return nil, err
	}
	dc, err := r.rasterize(v)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// RenderPNG rasterizes v and encodes it as PNG.
func RenderPNG(v View, opts ...PNGOption) ([]byte, error) {
	start := time.Now()
	var buf bytes.Buffer
	img, err := RenderImage(v, opts...)
	if err == nil {
		if encErr := png.Encode(&buf, img); encErr != nil {
			err = errors.Wrap(errors.ErrCodeInternal, encErr, "encode png")
		}
	}
	observability.Render().OnRenderComplete("png", len(v.Blocks), buf.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawFrame(dc *gg.Context, v View) {
	w, h := v.size()

	dc.SetColor(colorCanvas)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	if v.Background != nil {
		dc.DrawImage(background.Stretch(v.Background, w, h), 0, 0)
	} else if setFace(dc, placeholderSize, false) {
		dc.SetColor(colorPlaceholder)
		dc.DrawStringAnchored(Placeholder, float64(w)/2, float64(h)/2, 0.5, 0.5)
	}

	for i := range v.Blocks {
		drawBlock(dc, v, i)
	}

	if v.Calibrating {
		drawCalibration(dc, v)
	}
}

func drawBlock(dc *gg.Context, v View, i int) {
	b := v.Blocks[i]
	if !b.Box().Valid() {
		return
	}
	c := b.Center()

	dc.Push()
	defer dc.Pop()
	dc.Translate(c.X, c.Y)
	dc.Rotate(gg.Radians(b.Angle))

	dc.DrawRectangle(-b.W/2, -b.H/2, b.W, b.H)
	dc.SetColor(withAlpha(fillColor(v, i), blockAlpha))
	dc.Fill()

	stroke, width := strokeStyle(v, i)
	dc.DrawRectangle(-b.W/2, -b.H/2, b.W, b.H)
	dc.SetColor(stroke)
	dc.SetLineWidth(width)
	dc.Stroke()

	drawLabel(dc, b)

	if i == v.Selected {
		top := -b.H / 2
		dc.SetColor(colorSelected)
		dc.SetLineWidth(selectedTickLine)
		dc.DrawLine(0, top, 0, top-tickLength)
		dc.Stroke()
		dc.DrawCircle(0, top-tickLength, tickDotRadius)
		dc.Fill()
	}
}

func drawLabel(dc *gg.Context, b scene.Block) {
	if b.Label == "" {
		return
	}
	size := LabelFontSize(b.W, b.H, b.Label)
	if !setFace(dc, size, true) {
		return
	}
	label := TruncateLabel(b.Label, b.W, size)
	dc.SetColor(colorShadow)
	dc.DrawStringAnchored(label, shadowOffset, shadowOffset, 0.5, 0.5)
	dc.SetColor(colorLabel)
	dc.DrawStringAnchored(label, 0, 0, 0.5, 0.5)
}

func drawCalibration(dc *gg.Context, v View) {
	pts := v.CalibrationPoints
	dc.SetColor(colorCalibration)
	for _, p := range pts {
		dc.DrawCircle(p.X, p.Y, markerRadius)
		dc.Fill()
	}
	if len(pts) == 2 {
		dc.SetLineWidth(guideWidth)
		dc.DrawLine(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y)
		dc.Stroke()
	}
}

func setFace(dc *gg.Context, size float64, bold bool) bool {
	face, err := fonts.Face(size, bold)
	if err != nil {
		return false
	}
	dc.SetFontFace(face)
	return true
}
