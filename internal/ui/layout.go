package ui

import (
	"image/color"

	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/matzehuels/blockfit/pkg/catalog"
)

var (
	sidebarBg = color.NRGBA{R: 0xf4, G: 0xf5, B: 0xf7, A: 0xff}
	statusBg  = color.NRGBA{R: 0x2c, G: 0x3e, B: 0x50, A: 0xff}
	statusFg  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	alertFg   = color.NRGBA{R: 0xc0, G: 0x39, B: 0x2b, A: 0xff}
)

const sidebarWidth = unit.Dp(260)

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	a.handleKeys(gtx)
	a.handleClicks(gtx)
	a.checkCalibration()
	a.syncSelectedLabel()

	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
		layout.Rigid(a.layoutSidebar),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Flexed(1, a.layoutCanvas),
				layout.Rigid(a.layoutStatus),
			)
		}),
	)
}

// =============================================================================
// Input
// =============================================================================

func (a *App) handleKeys(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(
			key.Filter{Name: "Z", Required: key.ModShortcut, Optional: key.ModShift},
			key.Filter{Name: "Y", Required: key.ModShortcut},
			key.Filter{Name: "D", Required: key.ModShortcut},
			key.Filter{Name: key.NameDeleteForward},
			key.Filter{Name: key.NameEscape},
		)
		if !ok {
			break
		}
		ke, ok := ev.(key.Event)
		if !ok || ke.State != key.Press {
			continue
		}
		switch {
		case ke.Name == "Z" && ke.Modifiers.Contain(key.ModShift), ke.Name == "Y":
			a.redo()
		case ke.Name == "Z":
			a.undo()
		case ke.Name == "D":
			a.duplicate()
		case ke.Name == key.NameDeleteForward:
			a.remove()
		case ke.Name == key.NameEscape:
			a.escape()
		}
	}
}

func (a *App) handleClicks(gtx layout.Context) {
	for i, btn := range a.presetBtns {
		if btn.Clicked(gtx) {
			a.prefill(a.presetKeys[i])
		}
	}
	if a.addBtn.Clicked(gtx) {
		a.add()
	}
	if a.loadBtn.Clicked(gtx) {
		a.chooseBackground()
	}
	if a.calibrateBtn.Clicked(gtx) {
		a.calibrate()
	}
	if a.duplicateBtn.Clicked(gtx) {
		a.duplicate()
	}
	if a.deleteBtn.Clicked(gtx) {
		a.remove()
	}
	if a.clearBtn.Clicked(gtx) {
		a.clear()
	}
	if a.undoBtn.Clicked(gtx) {
		a.undo()
	}
	if a.redoBtn.Clicked(gtx) {
		a.redo()
	}
	if a.exportBtn.Clicked(gtx) {
		a.export(false)
	}
	if a.exportSVGBtn.Clicked(gtx) {
		a.export(true)
	}

	for {
		ev, ok := a.selectedLabel.Update(gtx)
		if !ok {
			break
		}
		if _, ok := ev.(widget.ChangeEvent); ok {
			a.renameSelected(a.selectedLabel.Text())
		}
	}

	if a.prompting {
		for {
			ev, ok := a.lengthEd.Update(gtx)
			if !ok {
				break
			}
			if _, ok := ev.(widget.SubmitEvent); ok {
				a.answerCalibration(a.lengthEd.Text())
			}
		}
		if a.lengthOK.Clicked(gtx) {
			a.answerCalibration(a.lengthEd.Text())
		}
		if a.lengthStop.Clicked(gtx) {
			a.answerCalibration("")
		}
	}
}

// =============================================================================
// Sidebar
// =============================================================================

func (a *App) layoutSidebar(gtx layout.Context) layout.Dimensions {
	width := gtx.Dp(sidebarWidth)
	gtx.Constraints.Min.X = width
	gtx.Constraints.Max.X = width
	paint.FillShape(gtx.Ops, sidebarBg, clipRect(gtx.Constraints.Max))

	sections := []layout.Widget{
		a.layoutPlanSection,
		a.layoutPresetSection,
		a.layoutFormSection,
		a.layoutSelectionSection,
		a.layoutHistorySection,
	}
	return layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return a.sidebar.Layout(gtx, len(sections), func(gtx layout.Context, i int) layout.Dimensions {
			return layout.Inset{Bottom: unit.Dp(14)}.Layout(gtx, sections[i])
		})
	})
}

func (a *App) heading(gtx layout.Context, text string) layout.Dimensions {
	l := material.Subtitle2(a.theme, text)
	return layout.Inset{Bottom: unit.Dp(4)}.Layout(gtx, l.Layout)
}

func (a *App) button(btn *widget.Clickable, text string) layout.FlexChild {
	return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Bottom: unit.Dp(4)}.Layout(gtx, material.Button(a.theme, btn, text).Layout)
	})
}

func (a *App) layoutPlanSection(gtx layout.Context) layout.Dimensions {
	children := []layout.FlexChild{
		layout.Rigid(func(gtx layout.Context) layout.Dimensions { return a.heading(gtx, "Plan") }),
		a.button(&a.loadBtn, "Load plan"),
		a.button(&a.calibrateBtn, "Calibrate scale"),
	}
	if a.prompting {
		px, _ := a.editor.PendingCalibration()
		children = append(children,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return material.Body2(a.theme, "Line length: "+formatMeters(round1(px))+" px. Real length in meters:").Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Inset{Top: unit.Dp(2), Bottom: unit.Dp(4)}.Layout(gtx, material.Editor(a.theme, &a.lengthEd, defaultLength).Layout)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{}.Layout(gtx,
					layout.Rigid(material.Button(a.theme, &a.lengthOK, "OK").Layout),
					layout.Rigid(layout.Spacer{Width: unit.Dp(6)}.Layout),
					layout.Rigid(material.Button(a.theme, &a.lengthStop, "Cancel").Layout),
				)
			}),
		)
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

func (a *App) layoutPresetSection(gtx layout.Context) layout.Dimensions {
	children := []layout.FlexChild{
		layout.Rigid(func(gtx layout.Context) layout.Dimensions { return a.heading(gtx, "Catalog") }),
	}
	for i, key := range a.presetKeys {
		text := "Custom"
		if p, ok := a.catalog.Get(key); ok {
			text = p.Label
		} else if key != catalog.CustomKey {
			text = key
		}
		children = append(children, a.button(a.presetBtns[i], text))
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

func (a *App) field(label string, ed *widget.Editor) layout.FlexChild {
	return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(material.Caption(a.theme, label).Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				e := material.Editor(a.theme, ed, "")
				e.TextSize = unit.Sp(14)
				return layout.Inset{Top: unit.Dp(2), Bottom: unit.Dp(6)}.Layout(gtx, e.Layout)
			}),
		)
	})
}

func (a *App) layoutFormSection(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions { return a.heading(gtx, "New block") }),
		a.field("Width (m)", &a.widthEd),
		a.field("Height (m)", &a.heightEd),
		a.field("Label", &a.labelEd),
		a.field("Color", &a.colorEd),
		a.button(&a.addBtn, "Add block"),
	)
}

func (a *App) layoutSelectionSection(gtx layout.Context) layout.Dimensions {
	clearText := "Clear all"
	if a.confirmClear {
		clearText = "Click again to clear"
	}
	children := []layout.FlexChild{
		layout.Rigid(func(gtx layout.Context) layout.Dimensions { return a.heading(gtx, "Selection") }),
	}
	if a.editor.Selected() >= 0 {
		children = append(children, a.field("Label", &a.selectedLabel))
	}
	children = append(children,
		a.button(&a.duplicateBtn, "Duplicate"),
		a.button(&a.deleteBtn, "Delete"),
		a.button(&a.clearBtn, clearText),
	)
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

func (a *App) layoutHistorySection(gtx layout.Context) layout.Dimensions {
	undo := a.historyButton(&a.undoBtn, "Undo", a.editor.CanUndo())
	redo := a.historyButton(&a.redoBtn, "Redo", a.editor.CanRedo())
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions { return a.heading(gtx, "History & export") }),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{}.Layout(gtx,
					layout.Rigid(undo),
					layout.Rigid(layout.Spacer{Width: unit.Dp(6)}.Layout),
					layout.Rigid(redo),
				)
			})
		}),
		a.button(&a.exportBtn, "Export PNG"),
		a.button(&a.exportSVGBtn, "Export SVG"),
	)
}

// historyButton greys out a button when its action is unavailable.
func (a *App) historyButton(btn *widget.Clickable, text string, enabled bool) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		b := material.Button(a.theme, btn, text)
		if !enabled {
			b.Background = color.NRGBA{R: 0xaa, G: 0xaa, B: 0xaa, A: 0xff}
			gtx = gtx.Disabled()
		}
		return b.Layout(gtx)
	}
}

// =============================================================================
// Status bar
// =============================================================================

func (a *App) layoutStatus(gtx layout.Context) layout.Dimensions {
	fg := statusFg
	if a.editor.Overlapping() {
		fg = alertFg
	}
	return layout.Background{}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			paint.FillShape(gtx.Ops, statusBg, clipRect(gtx.Constraints.Min))
			return layout.Dimensions{Size: gtx.Constraints.Min}
		},
		func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.X = gtx.Constraints.Max.X
			return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				l := material.Body2(a.theme, a.editor.Status())
				l.Color = fg
				return l.Layout(gtx)
			})
		},
	)
}
