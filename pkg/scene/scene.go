// Package scene holds the editable layout: an ordered list of blocks placed
// over a reference plan, plus the pixels-per-meter scale set by calibration.
//
// Order is z-order. Later blocks are drawn on top and are hit-tested first.
// A block's index is its only identity, so indices are unstable across
// deletions.
package scene

import (
	"slices"

	"github.com/matzehuels/blockfit/pkg/geometry"
)

// NoSelection is the selection index meaning "nothing selected".
const NoSelection = -1

// Block is a placed rectangular unit footprint.
type Block struct {
	X     float64 `json:"x"`     // top-left before rotation, canvas px
	Y     float64 `json:"y"`     // top-left before rotation, canvas px
	W     float64 `json:"w"`     // width in px
	H     float64 `json:"h"`     // height in px
	Angle float64 `json:"angle"` // degrees about the center, clockwise
	Label string  `json:"label"`
	Color string  `json:"color"` // CSS color string
}

// Box returns the block's footprint for geometry tests.
func (b Block) Box() geometry.Box {
	return geometry.Box{X: b.X, Y: b.Y, W: b.W, H: b.H, Angle: b.Angle}
}

// Center returns the block's rotation center.
func (b Block) Center() geometry.Point {
	return b.Box().Center()
}

// Scene is the live layout state.
type Scene struct {
	Blocks     []Block `json:"blocks"`
	PxPerMeter float64 `json:"px_per_meter"`
}

// New returns an empty scene at the default scale of 1 px per meter.
func New() *Scene {
	return &Scene{PxPerMeter: 1}
}

// Len returns the number of blocks.
func (s *Scene) Len() int { return len(s.Blocks) }

// Valid reports whether i indexes a block.
func (s *Scene) Valid(i int) bool { return i >= 0 && i < len(s.Blocks) }

// Append adds b on top of the stack and returns its index.
func (s *Scene) Append(b Block) int {
	s.Blocks = append(s.Blocks, b)
	return len(s.Blocks) - 1
}

// Remove deletes the block at i. Blocks above it shift down by one.
func (s *Scene) Remove(i int) {
	if !s.Valid(i) {
		return
	}
	s.Blocks = slices.Delete(s.Blocks, i, i+1)
}

// Reset removes every block. The scale is kept.
func (s *Scene) Reset() {
	s.Blocks = nil
}

// CloneBlocks returns an independent copy of the block list. Block holds
// only value fields, so a shallow slice copy is a deep copy.
func CloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return []Block{}
	}
	return slices.Clone(blocks)
}

// AnyOverlap reports whether the block at i overlaps any other block.
// An out-of-range index never overlaps.
func (s *Scene) AnyOverlap(i int) bool {
	if !s.Valid(i) {
		return false
	}
	box := s.Blocks[i].Box()
	for j, other := range s.Blocks {
		if j != i && geometry.Overlap(box, other.Box()) {
			return true
		}
	}
	return false
}

// BlockAt returns the index of the topmost block containing p, or
// NoSelection.
func (s *Scene) BlockAt(p geometry.Point) int {
	for i := len(s.Blocks) - 1; i >= 0; i-- {
		if geometry.HitTest(p, s.Blocks[i].Box()) {
			return i
		}
	}
	return NoSelection
}
