package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"gioui.org/x/explorer"

	"github.com/matzehuels/blockfit/pkg/background"
	"github.com/matzehuels/blockfit/pkg/catalog"
	"github.com/matzehuels/blockfit/pkg/editor"
	"github.com/matzehuels/blockfit/pkg/render"
)

// prefill copies a preset into the add form. The custom key keeps the
// typed dimensions and resets the label and color.
func (a *App) prefill(key string) {
	form := catalog.Preset{
		Width:  editor.ParseDimension(a.widthEd.Text()),
		Height: editor.ParseDimension(a.heightEd.Text()),
		Label:  a.labelEd.Text(),
		Color:  a.colorEd.Text(),
	}
	p, err := a.catalog.Prefill(key, form)
	if err != nil {
		a.logger.Warn("unknown preset", "key", key)
		return
	}
	if key != catalog.CustomKey {
		a.widthEd.SetText(formatMeters(p.Width))
		a.heightEd.SetText(formatMeters(p.Height))
	}
	a.labelEd.SetText(p.Label)
	a.colorEd.SetText(p.Color)
}

func formatMeters(v float64) string {
	return fmt.Sprintf("%g", v)
}

// formSpec reads the add form. Unparseable dimensions become NaN.
func (a *App) formSpec() editor.BlockSpec {
	return editor.BlockSpec{
		Width:  editor.ParseDimension(a.widthEd.Text()),
		Height: editor.ParseDimension(a.heightEd.Text()),
		Label:  a.labelEd.Text(),
		Color:  a.colorEd.Text(),
	}
}

func (a *App) add() {
	if _, err := a.editor.Add(a.formSpec()); err != nil {
		a.logger.Debug("add refused", "err", err)
	}
	a.invalidate()
}

func (a *App) duplicate() {
	_, _ = a.editor.Duplicate()
	a.invalidate()
}

func (a *App) remove() {
	_ = a.editor.Delete()
	a.invalidate()
}

// clear asks for a second click before removing every block.
func (a *App) clear() {
	if !a.confirmClear {
		a.confirmClear = true
		a.invalidate()
		return
	}
	a.confirmClear = false
	_ = a.editor.Clear()
	a.invalidate()
}

func (a *App) undo() {
	a.editor.Undo()
	a.invalidate()
}

func (a *App) redo() {
	a.editor.Redo()
	a.invalidate()
}

func (a *App) calibrate() {
	_ = a.editor.StartCalibration()
	a.invalidate()
}

// checkCalibration opens the length prompt once the second point is on
// the canvas. The point is drawn in the same frame as the prompt.
func (a *App) checkCalibration() {
	if _, ok := a.editor.PendingCalibration(); ok && !a.prompting {
		a.prompting = true
		a.lengthEd.SetText(defaultLength)
	}
}

// answerCalibration completes the pending calibration. An empty answer
// cancels.
func (a *App) answerCalibration(input string) {
	a.prompting = false
	if err := a.editor.CompleteCalibration(input); err != nil {
		a.logger.Debug("calibration refused", "err", err)
	}
	a.invalidate()
}

func (a *App) escape() {
	switch {
	case a.prompting:
		a.answerCalibration("")
	case a.editor.Mode() == editor.ModeCalibrating:
		a.editor.CancelCalibration()
	default:
		a.editor.Deselect()
	}
	a.confirmClear = false
	a.invalidate()
}

// renameSelected applies the sidebar label field to the selected block.
// Programmatic refreshes of the field are ignored.
func (a *App) renameSelected(label string) {
	b, ok := a.editor.Block(a.editor.Selected())
	if !ok || b.Label == label {
		return
	}
	if err := a.editor.SetLabel(label); err != nil {
		a.logger.Debug("rename refused", "err", err)
	}
	a.invalidate()
}

// syncSelectedLabel refreshes the label field when the selection changes.
func (a *App) syncSelectedLabel() {
	sel := a.editor.Selected()
	if sel == a.shownSelected {
		return
	}
	a.shownSelected = sel
	if b, ok := a.editor.Block(sel); ok {
		a.selectedLabel.SetText(b.Label)
	} else {
		a.selectedLabel.SetText("")
	}
}

// =============================================================================
// Files
// =============================================================================

// loadFile decodes a plan image in the background.
func (a *App) loadFile(path string) {
	go func() {
		img, err := background.Load(path)
		a.results <- loaded{name: filepath.Base(path), img: img, err: err}
		if a.onInvalidate != nil {
			a.onInvalidate()
		}
	}()
}

// chooseBackground opens the file dialog and decodes the chosen image.
func (a *App) chooseBackground() {
	if a.explorer == nil {
		return
	}
	go func() {
		file, err := a.explorer.ChooseFile("png", "jpg", "jpeg", "gif", "bmp", "tiff", "webp")
		if err != nil {
			if err != explorer.ErrUserDecline {
				a.logger.Warn("file picker failed", "err", err)
			}
			return
		}
		defer a.closeQuietly(file, "plan")

		name := "plan"
		if f, ok := file.(*os.File); ok {
			name = filepath.Base(f.Name())
		}
		img, err := background.Decode(file)
		a.results <- loaded{name: name, img: img, err: err}
		if a.onInvalidate != nil {
			a.onInvalidate()
		}
	}()
}

// export renders on the event goroutine and saves through the file dialog.
func (a *App) export(svg bool) {
	var (
		data []byte
		err  error
		name = render.ExportFilename
	)
	if svg {
		data, err = a.editor.ExportSVG()
		name = "fit_test_plano.svg"
	} else {
		data, err = a.editor.Export()
	}
	a.invalidate()
	if err != nil {
		a.logger.Warn("export failed", "err", err)
		return
	}
	if a.explorer == nil {
		return
	}

	go func() {
		w, err := a.explorer.CreateFile(name)
		if err != nil {
			if err != explorer.ErrUserDecline {
				a.logger.Warn("save dialog failed", "err", err)
			}
			return
		}
		defer a.closeQuietly(w, name)
		if _, err := w.Write(data); err != nil {
			a.logger.Warn("write export failed", "err", err)
			return
		}
		a.logger.Info("Exported", "file", name, "bytes", len(data))
	}()
}
