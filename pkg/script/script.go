// Package script reads YAML session scripts and replays them against an
// editor.
//
// A script sets the canvas, optionally a background plan, and lists steps.
// Each step is either a bare word or a single-key mapping:
//
//	canvas: {width: 800, height: 600}
//	background: plan.png
//	steps:
//	  - add: {preset: 1bed_a}
//	  - add: {width: 3, height: 6, label: Garage, color: "#888888"}
//	  - drag: {from: {x: 400, y: 300}, to: {x: 100, y: 100}}
//	  - calibrate
//	  - press: {x: 10, y: 10}
//	  - press: {x: 210, y: 10}
//	  - answer: "10"
//	  - select: 0
//	  - label: Unit 1
//	  - duplicate
//	  - undo
package script

import (
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/blockfit/pkg/errors"
)

// Step kinds.
const (
	KindAdd       = "add"
	KindPress     = "press"
	KindMove      = "move"
	KindRelease   = "release"
	KindDrag      = "drag"
	KindCalibrate = "calibrate"
	KindAnswer    = "answer"
	KindCancel    = "cancel"
	KindDuplicate = "duplicate"
	KindDelete    = "delete"
	KindClear     = "clear"
	KindLabel     = "label"
	KindSelect    = "select"
	KindDeselect  = "deselect"
	KindUndo      = "undo"
	KindRedo      = "redo"
)

// bareKinds are the steps written as a plain word.
var bareKinds = []string{
	KindRelease, KindCalibrate, KindCancel, KindDuplicate, KindDelete,
	KindClear, KindDeselect, KindUndo, KindRedo,
}

// Script is a parsed session script.
type Script struct {
	Canvas     Canvas `yaml:"canvas"`
	Background string `yaml:"background"`
	Steps      []Step `yaml:"steps"`
}

// Canvas is the canvas size in pixels. Zero values use the editor defaults.
type Canvas struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Point is a canvas position.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// AddStep adds a block. Explicit fields override the preset.
type AddStep struct {
	Preset string   `yaml:"preset"`
	Width  *float64 `yaml:"width"`
	Height *float64 `yaml:"height"`
	Label  *string  `yaml:"label"`
	Color  *string  `yaml:"color"`
}

// PointerStep is a press or move.
type PointerStep struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Button string  `yaml:"button"`
}

// DragStep is a press at From, a move to To and a release.
type DragStep struct {
	From   Point  `yaml:"from"`
	To     Point  `yaml:"to"`
	Button string `yaml:"button"`
}

// Step is one scripted action. Kind says which of the other fields is set.
type Step struct {
	Kind    string
	Add     *AddStep
	Pointer *PointerStep
	Drag    *DragStep
	Text    string
	Index   int
}

// UnmarshalYAML decodes a bare word or a single-key mapping.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if !slices.Contains(bareKinds, node.Value) {
			return fmt.Errorf("line %d: unknown step %q", node.Line, node.Value)
		}
		s.Kind = node.Value
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: a step must have exactly one key", node.Line)
		}
	default:
		return fmt.Errorf("line %d: a step must be a word or a mapping", node.Line)
	}

	key, value := node.Content[0].Value, node.Content[1]
	s.Kind = key
	switch key {
	case KindAdd:
		s.Add = &AddStep{}
		return value.Decode(s.Add)
	case KindPress, KindMove:
		s.Pointer = &PointerStep{}
		return value.Decode(s.Pointer)
	case KindDrag:
		s.Drag = &DragStep{}
		return value.Decode(s.Drag)
	case KindAnswer, KindLabel:
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: %s takes a string", value.Line, key)
		}
		s.Text = value.Value
		return nil
	case KindSelect:
		return value.Decode(&s.Index)
	}
	if slices.Contains(bareKinds, key) {
		return nil
	}
	return fmt.Errorf("line %d: unknown step %q", node.Line, key)
}

// Parse reads a script from r.
func Parse(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return &s, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "parse script")
	}
	return &s, nil
}

// Load reads the script file at path.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "script %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open script %s", path)
	}
	defer f.Close()
	return Parse(f)
}
