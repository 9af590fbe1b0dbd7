package render

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image/color"
	"image/png"
	"time"

	"github.com/matzehuels/blockfit/pkg/background"
	"github.com/matzehuels/blockfit/pkg/fonts"
	"github.com/matzehuels/blockfit/pkg/observability"
)

// SVGOption configures vector rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	embedFont      bool
	skipBackground bool
}

// WithEmbeddedFont embeds the label font so the SVG renders identically
// without the font installed.
func WithEmbeddedFont() SVGOption { return func(r *svgRenderer) { r.embedFont = true } }

// WithoutBackground omits the background image (the placeholder is omitted
// too), which keeps the SVG small for overlays.
func WithoutBackground() SVGOption { return func(r *svgRenderer) { r.skipBackground = true } }

// RenderSVG renders v as a standalone SVG document.
func RenderSVG(v View, opts ...SVGOption) []byte {
	start := time.Now()
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}
	w, h := v.size()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n", w, h, w, h)
	renderDefs(&buf, r)

	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n", w, h, svgColor(colorCanvas))
	if !r.skipBackground {
		renderBackground(&buf, v, w, h)
	}
	for i := range v.Blocks {
		renderSVGBlock(&buf, v, i)
	}
	if v.Calibrating {
		renderSVGCalibration(&buf, v)
	}

	buf.WriteString("</svg>\n")
	observability.Render().OnRenderComplete("svg", len(v.Blocks), buf.Len(), time.Since(start), nil)
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer, r svgRenderer) {
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <filter id="label-shadow" x="-20%" y="-20%" width="140%" height="140%">` + "\n")
	buf.WriteString(`      <feDropShadow dx="0" dy="0" stdDeviation="1.5" flood-color="#000" flood-opacity="0.7"/>` + "\n")
	buf.WriteString("    </filter>\n")
	if r.embedFont {
		fmt.Fprintf(buf, "    <style>@font-face { font-family: '%s'; font-weight: bold; src: url(data:font/ttf;base64,%s) format('truetype'); }</style>\n",
			fonts.FontFamily, fonts.BoldTTFBase64())
	}
	buf.WriteString("  </defs>\n")
}

func renderBackground(buf *bytes.Buffer, v View, w, h int) {
	if v.Background == nil {
		fmt.Fprintf(buf, `  <text x="%d" y="%d" fill="%s" font-family="%s" font-size="%.0f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			w/2, h/2, svgColor(colorPlaceholder), escapeXML(fonts.FallbackFontFamily), placeholderSize, escapeXML(Placeholder))
		return
	}
	var img bytes.Buffer
	if err := png.Encode(&img, background.Stretch(v.Background, w, h)); err != nil {
		return
	}
	fmt.Fprintf(buf, `  <image x="0" y="0" width="%d" height="%d" preserveAspectRatio="none" href="data:image/png;base64,%s"/>`+"\n",
		w, h, base64.StdEncoding.EncodeToString(img.Bytes()))
}

func renderSVGBlock(buf *bytes.Buffer, v View, i int) {
	b := v.Blocks[i]
	if !b.Box().Valid() {
		return
	}
	c := b.Center()
	fill := fillColor(v, i)
	stroke, width := strokeStyle(v, i)

	fmt.Fprintf(buf, `  <g id="block-%d" class="block" transform="translate(%.2f %.2f) rotate(%.2f)">`+"\n", i, c.X, c.Y, b.Angle)
	fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" fill-opacity="%.3f" stroke="%s" stroke-opacity="%.3f" stroke-width="%.0f"/>`+"\n",
		-b.W/2, -b.H/2, b.W, b.H,
		svgColor(fill), float64(fill.A)/255*blockAlpha,
		svgColor(stroke), float64(stroke.A)/255, width)

	if b.Label != "" {
		size := LabelFontSize(b.W, b.H, b.Label)
		fmt.Fprintf(buf, `    <text x="0" y="0" fill="%s" font-family="%s" font-weight="600" font-size="%.1f" text-anchor="middle" dominant-baseline="middle" filter="url(#label-shadow)">%s</text>`+"\n",
			svgColor(colorLabel), escapeXML(fonts.FallbackFontFamily), size, escapeXML(TruncateLabel(b.Label, b.W, size)))
	}

	if i == v.Selected {
		top := -b.H / 2
		fmt.Fprintf(buf, `    <line x1="0" y1="%.2f" x2="0" y2="%.2f" stroke="%s" stroke-width="%.0f"/>`+"\n",
			top, top-tickLength, svgColor(colorSelected), selectedTickLine)
		fmt.Fprintf(buf, `    <circle cx="0" cy="%.2f" r="%.0f" fill="%s"/>`+"\n", top-tickLength, tickDotRadius, svgColor(colorSelected))
	}
	buf.WriteString("  </g>\n")
}

func renderSVGCalibration(buf *bytes.Buffer, v View) {
	pts := v.CalibrationPoints
	for _, p := range pts {
		fmt.Fprintf(buf, `  <circle class="calibration" cx="%.2f" cy="%.2f" r="%.0f" fill="%s"/>`+"\n", p.X, p.Y, markerRadius, svgColor(colorCalibration))
	}
	if len(pts) == 2 {
		fmt.Fprintf(buf, `  <line class="calibration" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.0f"/>`+"\n",
			pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, svgColor(colorCalibration), guideWidth)
	}
}

func svgColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
