package ui

import (
	"image"
	"math"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/matzehuels/blockfit/pkg/editor"
	"github.com/matzehuels/blockfit/pkg/geometry"
	"github.com/matzehuels/blockfit/pkg/render"
)

// defaultLength prefills the calibration prompt, in meters.
const defaultLength = "10"

// buttonFor maps the pressed pointer buttons to an editor button.
func buttonFor(b pointer.Buttons) editor.Button {
	if b.Contain(pointer.ButtonSecondary) {
		return editor.ButtonSecondary
	}
	return editor.ButtonPrimary
}

// handlePointer feeds one canvas pointer event to the editor. Positions
// are canvas pixels because the input area starts at the canvas origin.
func (a *App) handlePointer(pe pointer.Event) {
	p := geometry.Point{X: float64(pe.Position.X), Y: float64(pe.Position.Y)}
	switch pe.Kind {
	case pointer.Press:
		a.confirmClear = false
		a.editor.Press(p, buttonFor(pe.Buttons))
		a.checkCalibration()
	case pointer.Drag, pointer.Move:
		if a.editor.Mode() == editor.ModeDragging || a.editor.Mode() == editor.ModeRotating {
			a.editor.Move(p)
		} else {
			return
		}
	case pointer.Release, pointer.Cancel:
		a.editor.Release()
	default:
		return
	}
	a.invalidate()
}

// layoutCanvas paints the current frame and collects pointer input.
func (a *App) layoutCanvas(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	if size != a.canvasSize && size.X > 0 && size.Y > 0 {
		a.canvasSize = size
		a.editor.SetCanvasSize(size.X, size.Y)
		a.dirty = true
	}

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: &a.canvasTag,
			Kinds:  pointer.Press | pointer.Drag | pointer.Move | pointer.Release | pointer.Cancel,
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			a.handlePointer(pe)
		}
	}

	if a.dirty {
		img, err := render.RenderImage(a.editor.View())
		if err != nil {
			a.logger.Warn("render canvas", "err", err)
		} else {
			a.frame = paint.NewImageOp(img)
		}
		a.dirty = false
	}

	area := clip.Rect(image.Rectangle{Max: size}).Push(gtx.Ops)
	a.frame.Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)
	event.Op(gtx.Ops, &a.canvasTag)
	pointer.CursorCrosshair.Add(gtx.Ops)
	area.Pop()

	return layout.Dimensions{Size: size}
}

func clipRect(size image.Point) clip.Op {
	return clip.Rect(image.Rectangle{Max: size}).Op()
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
