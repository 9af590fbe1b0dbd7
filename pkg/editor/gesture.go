package editor

import (
	"github.com/matzehuels/blockfit/pkg/geometry"
	"github.com/matzehuels/blockfit/pkg/observability"
	"github.com/matzehuels/blockfit/pkg/scene"
)

// Press handles a pointer press at p.
//
// While calibrating, a primary press places the next calibration point.
// Otherwise the topmost block under p is selected and a drag (primary) or
// rotate (secondary) gesture starts; a press on empty space clears the
// selection. Presses during an active gesture are ignored.
func (e *Editor) Press(p geometry.Point, btn Button) {
	switch e.mode {
	case ModeDragging, ModeRotating:
		return
	case ModeCalibrating:
		e.placeCalibrationPoint(p, btn)
		return
	}

	idx := e.scene.BlockAt(p)
	if idx == scene.NoSelection {
		e.selected = scene.NoSelection
		return
	}

	b := e.scene.Blocks[idx]
	e.selected = idx
	e.rollback = &pose{X: b.X, Y: b.Y, Angle: b.Angle}

	if btn == ButtonSecondary {
		e.mode = ModeRotating
		e.startPointerAngle = geometry.AngleDeg(b.Center(), p)
		e.blockStartAngle = b.Angle
		e.setStatus(StatusRotating)
		return
	}
	e.mode = ModeDragging
	e.dragOffset = geometry.Point{X: p.X - b.X, Y: p.Y - b.Y}
	e.setStatus(StatusMoving)
}

// Move handles pointer motion. It only has an effect during a gesture.
// Motion is never blocked by collisions; see Overlapping.
func (e *Editor) Move(p geometry.Point) {
	if !e.gesturing() || !e.scene.Valid(e.selected) {
		return
	}
	b := &e.scene.Blocks[e.selected]
	switch e.mode {
	case ModeDragging:
		b.X = p.X - e.dragOffset.X
		b.Y = p.Y - e.dragOffset.Y
	case ModeRotating:
		current := geometry.AngleDeg(b.Center(), p)
		b.Angle = e.blockStartAngle + (current - e.startPointerAngle)
	}
}

// Release ends the active gesture. A block left overlapping another one is
// restored to its pose at grab time. Either way a history entry is
// recorded. Release outside a gesture does nothing.
func (e *Editor) Release() {
	if !e.gesturing() {
		return
	}
	kind := "drag"
	if e.mode == ModeRotating {
		kind = "rotate"
	}
	e.mode = ModeIdle

	accepted := !e.fixCollision(e.selected)
	if accepted {
		e.setStatus(StatusReady)
	}
	observability.Editor().OnGestureEnd(kind, e.selected, accepted)
	e.record(kind)
}

// fixCollision rolls the block at i back to the last grab pose if it
// overlaps another block. It reports whether a collision was found.
func (e *Editor) fixCollision(i int) bool {
	if !e.scene.AnyOverlap(i) {
		return false
	}
	e.setStatus(StatusReverted)
	if e.rollback != nil {
		b := &e.scene.Blocks[i]
		b.X, b.Y, b.Angle = e.rollback.X, e.rollback.Y, e.rollback.Angle
	}
	return true
}

func (e *Editor) record(action string) {
	e.history.Record(e.scene.Blocks)
	observability.Editor().OnHistory(action, e.history.Cursor(), e.history.Len())
}
