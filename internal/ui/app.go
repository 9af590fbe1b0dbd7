// Package ui is the desktop editor window.
//
// The window is a thin binding over pkg/editor: pointer events on the
// canvas become Press/Move/Release calls, the sidebar buttons call the
// block lifecycle operations, and every frame is painted from
// render.RenderImage. The editor is only touched from the window's event
// goroutine; file dialogs and image decoding run on their own goroutines
// and hand results back through a channel.
package ui

import (
	"image"
	"io"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockfit/pkg/catalog"
	"github.com/matzehuels/blockfit/pkg/editor"
)

// Options configures the editor window.
type Options struct {
	// Editor options, such as nudge distances.
	Editor []editor.Option
	// Catalog lists the preset buttons. Nil means the built-in catalog.
	Catalog *catalog.Catalog
	// Background is an optional plan image opened at start.
	Background string
	// Logger receives load and export messages. Nil means log.Default().
	Logger *log.Logger
}

// loaded is a background decoded off the event goroutine.
type loaded struct {
	name string
	img  image.Image
	err  error
}

// App is the editor window state.
type App struct {
	window   *app.Window
	theme    *material.Theme
	explorer *explorer.Explorer
	logger   *log.Logger

	editor  *editor.Editor
	catalog *catalog.Catalog
	results chan loaded

	// Canvas
	canvasTag    int
	canvasSize   image.Point
	frame        paint.ImageOp
	dirty        bool
	onInvalidate func()

	// Sidebar widgets
	sidebar      layout.List
	presetBtns   []*widget.Clickable
	presetKeys   []string
	widthEd      widget.Editor
	heightEd     widget.Editor
	labelEd      widget.Editor
	colorEd      widget.Editor
	addBtn       widget.Clickable
	loadBtn      widget.Clickable
	calibrateBtn widget.Clickable
	duplicateBtn widget.Clickable
	deleteBtn    widget.Clickable
	clearBtn     widget.Clickable
	undoBtn      widget.Clickable
	redoBtn      widget.Clickable
	exportBtn    widget.Clickable
	exportSVGBtn widget.Clickable

	// Selected block label
	selectedLabel widget.Editor
	shownSelected int

	// Calibration length prompt
	prompting  bool
	lengthEd   widget.Editor
	lengthOK   widget.Clickable
	lengthStop widget.Clickable

	confirmClear bool
}

// NewApp wires an editor to win. A nil window is allowed in tests; file
// dialogs are then unavailable.
func NewApp(win *app.Window, opts Options) *App {
	a := &App{
		window:        win,
		theme:         material.NewTheme(),
		logger:        opts.Logger,
		editor:        editor.New(opts.Editor...),
		catalog:       opts.Catalog,
		results:       make(chan loaded, 1),
		sidebar:       layout.List{Axis: layout.Vertical},
		shownSelected: -1,
		dirty:         true,
	}
	a.theme.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	if a.catalog == nil {
		a.catalog = catalog.Default()
	}
	if a.logger == nil {
		a.logger = log.Default()
	}
	if win != nil {
		a.explorer = explorer.NewExplorer(win)
		a.onInvalidate = win.Invalidate
	}

	a.presetKeys = append(a.catalog.Keys(), catalog.CustomKey)
	for range a.presetKeys {
		a.presetBtns = append(a.presetBtns, new(widget.Clickable))
	}
	for _, ed := range []*widget.Editor{&a.widthEd, &a.heightEd, &a.labelEd, &a.colorEd, &a.selectedLabel, &a.lengthEd} {
		ed.SingleLine = true
	}
	a.lengthEd.Submit = true
	if keys := a.catalog.Keys(); len(keys) > 0 {
		a.prefill(keys[0])
	}
	return a
}

// Run processes window events until the window is closed.
func (a *App) Run(background string) error {
	if background != "" {
		a.loadFile(background)
	}

	var ops op.Ops
	for {
		e := a.window.Event()
		a.explorer.ListenEvents(e)

		switch e := e.(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			ops.Reset()
			gtx := app.NewContext(&ops, e)
			a.drainResults()
			a.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

// Main opens the editor window. It blocks until the window closes.
func Main(win *app.Window, opts Options) error {
	return NewApp(win, opts).Run(opts.Background)
}

func (a *App) invalidate() {
	a.dirty = true
	if a.onInvalidate != nil {
		a.onInvalidate()
	}
}

// drainResults applies finished background loads.
func (a *App) drainResults() {
	for {
		select {
		case r := <-a.results:
			if r.err != nil {
				a.editor.RejectBackground(r.err)
				a.logger.Warn("Could not load plan", "file", r.name, "err", r.err)
				a.dirty = true
				continue
			}
			a.editor.SetBackground(r.img)
			a.logger.Info("Loaded plan", "file", r.name, "size", r.img.Bounds().Size())
			a.dirty = true
		default:
			return
		}
	}
}

// closeQuietly closes c, logging a failure.
func (a *App) closeQuietly(c io.Closer, what string) {
	if err := c.Close(); err != nil {
		a.logger.Warn("close failed", "what", what, "err", err)
	}
}
