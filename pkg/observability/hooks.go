// Package observability provides hooks for logging and metrics.
//
// Library packages never log directly. They emit events through the hooks
// registered here, and front-ends (the CLI, the desktop window, the HTTP
// server) install implementations that forward them to a logger.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEditorHooks(&myEditorHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Editor().OnGestureEnd("drag", idx, accepted)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from the interaction controller. Editor
// transitions are synchronous and carry no context.
type EditorHooks interface {
	// OnGestureEnd records a finished drag or rotate gesture and whether it
	// was kept or rolled back.
	OnGestureEnd(kind string, index int, accepted bool)

	// OnBlockAdded records a new block and whether it was nudged off an
	// overlap.
	OnBlockAdded(index int, nudged bool)

	// OnCalibrated records the end of a calibration attempt.
	OnCalibrated(pxPerMeter float64, ok bool)

	// OnHistory records undo/redo/record with the resulting cursor.
	OnHistory(action string, cursor, length int)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the renderer sinks.
type RenderHooks interface {
	OnRenderComplete(format string, blocks, size int, duration time.Duration, err error)
}

// =============================================================================
// Script Hooks
// =============================================================================

// ScriptHooks receives events from the session script runner.
type ScriptHooks interface {
	OnStep(ctx context.Context, index int, kind string, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnGestureEnd(string, int, bool) {}
func (NoopEditorHooks) OnBlockAdded(int, bool)         {}
func (NoopEditorHooks) OnCalibrated(float64, bool)     {}
func (NoopEditorHooks) OnHistory(string, int, int)     {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderComplete(string, int, int, time.Duration, error) {}

// NoopScriptHooks is a no-op implementation of ScriptHooks.
type NoopScriptHooks struct{}

func (NoopScriptHooks) OnStep(context.Context, int, string, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	editorHooks EditorHooks = NoopEditorHooks{}
	renderHooks RenderHooks = NoopRenderHooks{}
	scriptHooks ScriptHooks = NoopScriptHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetEditorHooks registers custom editor hooks.
func SetEditorHooks(h EditorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		editorHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetScriptHooks registers custom script hooks.
func SetScriptHooks(h ScriptHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		scriptHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Editor returns the registered editor hooks.
func Editor() EditorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return editorHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Script returns the registered script hooks.
func Script() ScriptHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return scriptHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	editorHooks = NoopEditorHooks{}
	renderHooks = NoopRenderHooks{}
	scriptHooks = NoopScriptHooks{}
	httpHooks = NoopHTTPHooks{}
}
