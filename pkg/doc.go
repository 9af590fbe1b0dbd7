// Package pkg provides the core libraries for blockfit, a layout editor for
// fitting unit footprints over a reference floor plan.
//
// # Overview
//
// The pkg directory is organized leaves first:
//
//  1. [geometry] - Rotated rectangles and the separating-axis overlap test
//  2. [scene] - Block records, colors and the pixels-per-meter scale
//  3. [history] - Snapshot undo/redo over block lists
//  4. [editor] - The gesture state machine, calibration and block commands
//  5. [render] - PNG, SVG and JSON export of an editor view
//  6. [catalog] - Unit presets and TOML palette overrides
//  7. [script] - YAML session scripts replayed against an editor
//  8. [cache] - Content-addressed cache of rendered exports
//
// Supporting packages: [background] decodes plan images, [fonts] loads
// label faces, [errors] defines coded errors, [observability] carries
// event hooks and [buildinfo] holds version data.
//
// # Architecture
//
// Front-ends (the Gio window, the HTTP server, the render command) feed
// pointer events and commands into an [editor.Editor]:
//
//	pointer press/move/release, commands
//	         ↓
//	    [editor] (hit test, drag/rotate, collision rollback, history)
//	         ↓
//	    [render] (View → PNG/SVG/JSON)
//
// # Quick Start
//
//	e := editor.New(editor.WithCanvas(1200, 800))
//	p, _ := catalog.Default().Get("1bed_a")
//	e.Add(editor.SpecFromPreset(p))
//
//	e.Press(geometry.Point{X: 600, Y: 400}, editor.ButtonPrimary)
//	e.Move(geometry.Point{X: 300, Y: 200})
//	e.Release()
//
//	png, err := e.Export()
//
// Library packages never log. Install [observability] hooks to observe
// gestures, renders and script steps.
package pkg
