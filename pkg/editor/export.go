package editor

import (
	"fmt"
	"image"
	"io"

	"github.com/matzehuels/blockfit/pkg/background"
	"github.com/matzehuels/blockfit/pkg/errors"
	"github.com/matzehuels/blockfit/pkg/render"
	"github.com/matzehuels/blockfit/pkg/scene"
)

// SetBackground replaces the reference image. A nil image removes it.
func (e *Editor) SetBackground(img image.Image) {
	e.background = img
	if img == nil {
		return
	}
	b := img.Bounds()
	e.setStatus(fmt.Sprintf("Background loaded (%dx%d).", b.Dx(), b.Dy()))
}

// LoadBackground decodes an image from r and makes it the background. On
// failure the background is left unset.
func (e *Editor) LoadBackground(r io.Reader) error {
	img, err := background.Decode(r)
	if err != nil {
		e.RejectBackground(err)
		return err
	}
	e.SetBackground(img)
	return nil
}

// RejectBackground records a failed image load decoded elsewhere: the
// background is removed and the status names the cause.
func (e *Editor) RejectBackground(err error) {
	e.background = nil
	e.setStatus("Could not read image: " + errors.UserMessage(err))
}

// HasBackground reports whether a background image is set.
func (e *Editor) HasBackground() bool { return e.background != nil }

// Background returns the background image, or nil.
func (e *Editor) Background() image.Image { return e.background }

// Export clears the selection, so the selection marker stays out of the
// picture, and renders the canvas as PNG.
func (e *Editor) Export(opts ...render.PNGOption) ([]byte, error) {
	if e.gesturing() {
		return nil, errGesture()
	}
	e.selected = scene.NoSelection
	data, err := render.RenderPNG(e.View(), opts...)
	if err != nil {
		return nil, err
	}
	e.setStatus("Exported " + render.ExportFilename + ".")
	return data, nil
}

// ExportSVG is Export for the vector sink.
func (e *Editor) ExportSVG(opts ...render.SVGOption) ([]byte, error) {
	if e.gesturing() {
		return nil, errGesture()
	}
	e.selected = scene.NoSelection
	return render.RenderSVG(e.View(), opts...), nil
}

// ExportJSON writes the blocks with their real-world sizes.
func (e *Editor) ExportJSON(opts ...render.JSONOption) ([]byte, error) {
	if e.gesturing() {
		return nil, errGesture()
	}
	return render.RenderJSON(e.View(), opts...)
}
