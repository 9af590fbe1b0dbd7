package editor

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/blockfit/pkg/catalog"
	"github.com/matzehuels/blockfit/pkg/errors"
	"github.com/matzehuels/blockfit/pkg/observability"
	"github.com/matzehuels/blockfit/pkg/scene"
)

// BlockSpec describes a block to add. Width and Height are in meters.
type BlockSpec struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Label  string  `json:"label"`
	Color  string  `json:"color"`
}

// SpecFromPreset converts a catalog preset to a BlockSpec.
func SpecFromPreset(p catalog.Preset) BlockSpec {
	return BlockSpec{Width: p.Width, Height: p.Height, Label: p.Label, Color: p.Color}
}

// ParseDimension parses a width or height form field. Text that is not a
// number yields NaN, which the engine carries without failing: NaN blocks
// never hit, overlap or render.
func ParseDimension(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func errGesture() error {
	return errors.New(errors.ErrCodeGestureActive, "finish the current gesture first")
}

func (e *Editor) errNoSelection() error {
	e.setStatus(StatusNoSelection)
	return errors.New(errors.ErrCodeNoSelection, StatusNoSelection)
}

// Add appends a block built from spec, centered on the canvas, and returns
// its index. Dimensions are scaled by the current px-per-meter. If the new
// block lands on another one it is nudged once; the nudge is not
// re-checked. The selection is unchanged.
func (e *Editor) Add(spec BlockSpec) (int, error) {
	if e.gesturing() {
		return scene.NoSelection, errGesture()
	}
	if err := errors.ValidateLabel(spec.Label); err != nil {
		return scene.NoSelection, err
	}
	label := spec.Label
	if label == "" {
		label = DefaultBlockLabel
	}
	color := spec.Color
	if color == "" {
		color = scene.FallbackColor
	}

	w := spec.Width * e.scene.PxPerMeter
	h := spec.Height * e.scene.PxPerMeter
	idx := e.scene.Append(scene.Block{
		X:     float64(e.canvasW)/2 - w/2,
		Y:     float64(e.canvasH)/2 - h/2,
		W:     w,
		H:     h,
		Label: label,
		Color: color,
	})

	nudged := e.scene.AnyOverlap(idx)
	if nudged {
		b := &e.scene.Blocks[idx]
		b.X += e.nudge
		b.Y += e.nudge
	}
	e.setStatus("Added " + label + ".")
	observability.Editor().OnBlockAdded(idx, nudged)
	e.record("add")
	return idx, nil
}

// Duplicate copies the selected block, offsets the copy and selects it. A
// copy that overlaps another block is moved back to the pose captured at
// the last grab, as a rejected gesture would be. It returns the index of
// the copy.
func (e *Editor) Duplicate() (int, error) {
	if e.gesturing() {
		return scene.NoSelection, errGesture()
	}
	if !e.scene.Valid(e.selected) {
		return scene.NoSelection, e.errNoSelection()
	}
	clone := e.scene.Blocks[e.selected]
	clone.X += e.dupOffset
	clone.Y += e.dupOffset
	idx := e.scene.Append(clone)
	e.selected = idx

	if !e.fixCollision(idx) {
		e.setStatus("Duplicated " + clone.Label + ".")
	}
	e.record("duplicate")
	return idx, nil
}

// Delete removes the selected block.
func (e *Editor) Delete() error {
	if e.gesturing() {
		return errGesture()
	}
	if !e.scene.Valid(e.selected) {
		return e.errNoSelection()
	}
	label := e.scene.Blocks[e.selected].Label
	e.scene.Remove(e.selected)
	e.selected = scene.NoSelection
	e.setStatus("Deleted " + label + ".")
	e.record("delete")
	return nil
}

// Clear removes every block. Asking the user for confirmation is up to the
// caller.
func (e *Editor) Clear() error {
	if e.gesturing() {
		return errGesture()
	}
	e.scene.Reset()
	e.selected = scene.NoSelection
	e.setStatus("All blocks removed.")
	e.record("clear")
	return nil
}

// SetLabel renames the selected block. Renaming is not recorded in the
// history; the next recorded action captures it.
func (e *Editor) SetLabel(label string) error {
	if !e.scene.Valid(e.selected) {
		return e.errNoSelection()
	}
	if err := errors.ValidateLabel(label); err != nil {
		return err
	}
	e.scene.Blocks[e.selected].Label = label
	return nil
}

// Select selects block i without starting a gesture.
func (e *Editor) Select(i int) error {
	if e.gesturing() {
		return errGesture()
	}
	if !e.scene.Valid(i) {
		return errors.New(errors.ErrCodeNotFound, "no block at index %d", i)
	}
	e.selected = i
	return nil
}

// Deselect clears the selection.
func (e *Editor) Deselect() {
	if e.gesturing() {
		return
	}
	e.selected = scene.NoSelection
}

// Undo restores the previous history entry and clears the selection. It
// reports false when there is nothing to undo or a gesture is active.
func (e *Editor) Undo() bool {
	if e.gesturing() {
		return false
	}
	blocks, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.restore(blocks, "undo")
	e.setStatus("Undone.")
	return true
}

// Redo re-applies the next history entry and clears the selection. It
// reports false when there is nothing to redo or a gesture is active.
func (e *Editor) Redo() bool {
	if e.gesturing() {
		return false
	}
	blocks, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.restore(blocks, "redo")
	e.setStatus("Redone.")
	return true
}

func (e *Editor) restore(blocks []scene.Block, action string) {
	e.scene.Blocks = blocks
	e.selected = scene.NoSelection
	observability.Editor().OnHistory(action, e.history.Cursor(), e.history.Len())
}
