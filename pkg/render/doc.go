// Package render draws editor frames.
//
// # Overview
//
// Every renderer is a pure function of a [View]: the blocks, the selection,
// whether a gesture is in progress, the background image, the calibration
// markers and the canvas size. Nothing here mutates editor state.
//
// Draw order:
//
//   - White canvas fill
//   - Background image stretched to the canvas, or a centered placeholder
//   - Each block in z-order, rotated about its center, at 90% opacity
//   - Calibration markers and guide line while calibrating
//
// A block that is selected, mid-gesture and overlapping another block is
// filled with an alert color and outlined in dark red. The selected block
// gets a heavier white border and a tick marking its front edge.
//
// # Sinks
//
//   - [RenderPNG] / [RenderImage]: raster output via fogleman/gg
//   - [RenderSVG]: vector output, background embedded as a PNG data URI
//   - [RenderJSON]: block layout with sizes in meters
//
// Basic usage:
//
//	v := editor.View()
//	png, err := render.RenderPNG(v, render.WithScale(2))
//	svg := render.RenderSVG(v, render.WithEmbeddedFont())
package render
