// Package editor implements the interaction controller of the layout editor.
//
// An [Editor] owns the scene, the selection, the gesture state, the undo
// history, calibration and the background image. It is driven by explicit
// pointer events ([Editor.Press], [Editor.Move], [Editor.Release]) and
// block operations, so the gesture logic runs without any UI attached.
//
// # Modes
//
// The editor is always in exactly one [Mode]:
//
//   - [ModeIdle]: waiting for input
//   - [ModeDragging]: a primary press grabbed a block; moves translate it
//   - [ModeRotating]: a secondary press grabbed a block; moves rotate it
//   - [ModeCalibrating]: presses collect the two calibration points
//
// A drag or rotate that ends with the block overlapping another one is
// rolled back to the block's pose at grab time. Every finished gesture
// records a history entry whether it was kept or rolled back.
//
// # Concurrency
//
// An Editor is not safe for concurrent use. Front-ends drive it from a
// single goroutine or serialize access themselves.
package editor

import (
	"image"

	"github.com/matzehuels/blockfit/pkg/geometry"
	"github.com/matzehuels/blockfit/pkg/history"
	"github.com/matzehuels/blockfit/pkg/render"
	"github.com/matzehuels/blockfit/pkg/scene"
)

// Mode is the interaction state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeCalibrating
	ModeDragging
	ModeRotating
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeCalibrating:
		return "calibrating"
	case ModeDragging:
		return "dragging"
	case ModeRotating:
		return "rotating"
	}
	return "unknown"
}

// Button identifies the pointer button of a press.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

func (b Button) String() string {
	if b == ButtonSecondary {
		return "secondary"
	}
	return "primary"
}

// Status line messages.
const (
	StatusReady          = "Ready."
	StatusMoving         = "Moving..."
	StatusRotating       = "Rotating... (release to finish)"
	StatusReverted       = "Overlapping block - move reverted"
	StatusCalibrate      = "Click point A, then point B"
	StatusCalibrateAsk   = "How many meters does the red line represent?"
	StatusCalibrated     = "Scale calibrated: 1m = %.2f px"
	StatusCalibrationOff = "Calibration cancelled."
	StatusNoBackground   = "Load an image first"
	StatusNoSelection    = "Select a block first"
)

// Defaults.
const (
	DefaultNudge           = 20.0
	DefaultDuplicateOffset = 20.0
	DefaultBlockLabel      = "Block"
)

// Prompter asks the user for the real-world length of the calibration line.
// It returns ok=false when the user cancels.
type Prompter interface {
	PromptLength(pixels float64) (input string, ok bool)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(pixels float64) (string, bool)

// PromptLength calls f.
func (f PrompterFunc) PromptLength(pixels float64) (string, bool) { return f(pixels) }

// Option configures an Editor.
type Option func(*Editor)

// WithCanvas sets the canvas size. New blocks are centered on it.
func WithCanvas(w, h int) Option {
	return func(e *Editor) { e.canvasW, e.canvasH = w, h }
}

// WithNudge sets the offset applied once to a new block that lands on top
// of another.
func WithNudge(d float64) Option { return func(e *Editor) { e.nudge = d } }

// WithDuplicateOffset sets how far a duplicate is placed from its source.
func WithDuplicateOffset(d float64) Option { return func(e *Editor) { e.dupOffset = d } }

// WithPrompter makes the editor ask for the calibration length as soon as
// the second point is placed instead of waiting for CompleteCalibration.
func WithPrompter(p Prompter) Option { return func(e *Editor) { e.prompter = p } }

// pose is the part of a block a gesture can change.
type pose struct {
	X, Y, Angle float64
}

// Editor is the interaction controller.
type Editor struct {
	scene    *scene.Scene
	history  *history.History
	selected int
	mode     Mode
	status   string

	// gesture state
	dragOffset        geometry.Point
	startPointerAngle float64
	blockStartAngle   float64
	rollback          *pose

	calibration []geometry.Point
	background  image.Image

	canvasW, canvasH int
	nudge            float64
	dupOffset        float64
	prompter         Prompter
}

// New creates an editor with an empty scene and an initial history entry.
func New(opts ...Option) *Editor {
	e := &Editor{
		scene:     scene.New(),
		selected:  scene.NoSelection,
		status:    StatusReady,
		canvasW:   render.DefaultWidth,
		canvasH:   render.DefaultHeight,
		nudge:     DefaultNudge,
		dupOffset: DefaultDuplicateOffset,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.canvasW <= 0 {
		e.canvasW = render.DefaultWidth
	}
	if e.canvasH <= 0 {
		e.canvasH = render.DefaultHeight
	}
	e.history = history.New(e.scene.Blocks)
	return e
}

// Mode returns the current interaction mode.
func (e *Editor) Mode() Mode { return e.mode }

// Status returns the last action or error message.
func (e *Editor) Status() string { return e.status }

// Selected returns the selected block index or scene.NoSelection.
func (e *Editor) Selected() int { return e.selected }

// PxPerMeter returns the current scale.
func (e *Editor) PxPerMeter() float64 { return e.scene.PxPerMeter }

// Len returns the number of blocks.
func (e *Editor) Len() int { return e.scene.Len() }

// Blocks returns a copy of the block list.
func (e *Editor) Blocks() []scene.Block { return scene.CloneBlocks(e.scene.Blocks) }

// Block returns the block at i.
func (e *Editor) Block(i int) (scene.Block, bool) {
	if !e.scene.Valid(i) {
		return scene.Block{}, false
	}
	return e.scene.Blocks[i], true
}

// CanUndo reports whether Undo would change the scene.
func (e *Editor) CanUndo() bool { return !e.gesturing() && e.history.CanUndo() }

// CanRedo reports whether Redo would change the scene.
func (e *Editor) CanRedo() bool { return !e.gesturing() && e.history.CanRedo() }

// HistoryLen returns the number of history entries.
func (e *Editor) HistoryLen() int { return e.history.Len() }

// CanvasSize returns the canvas size in pixels.
func (e *Editor) CanvasSize() (int, int) { return e.canvasW, e.canvasH }

// SetCanvasSize changes the canvas size, for example when the window is
// resized. Existing blocks keep their coordinates.
func (e *Editor) SetCanvasSize(w, h int) {
	if w > 0 && h > 0 {
		e.canvasW, e.canvasH = w, h
	}
}

// Overlapping reports whether the block under an active gesture currently
// overlaps another block.
func (e *Editor) Overlapping() bool {
	return e.gesturing() && e.scene.AnyOverlap(e.selected)
}

// CalibrationPoints returns the calibration points placed so far.
func (e *Editor) CalibrationPoints() []geometry.Point {
	return append([]geometry.Point(nil), e.calibration...)
}

// View returns a snapshot of everything needed to draw the current frame.
func (e *Editor) View() render.View {
	return render.View{
		Width:             e.canvasW,
		Height:            e.canvasH,
		Blocks:            e.Blocks(),
		PxPerMeter:        e.scene.PxPerMeter,
		Selected:          e.selected,
		Gesturing:         e.gesturing(),
		Background:        e.background,
		Calibrating:       e.mode == ModeCalibrating,
		CalibrationPoints: e.CalibrationPoints(),
	}
}

func (e *Editor) gesturing() bool {
	return e.mode == ModeDragging || e.mode == ModeRotating
}

func (e *Editor) setStatus(s string) { e.status = s }
