package script

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/blockfit/pkg/background"
	"github.com/matzehuels/blockfit/pkg/catalog"
	"github.com/matzehuels/blockfit/pkg/editor"
	"github.com/matzehuels/blockfit/pkg/errors"
	"github.com/matzehuels/blockfit/pkg/geometry"
	"github.com/matzehuels/blockfit/pkg/observability"
)

// Runner replays scripts.
type Runner struct {
	// Catalog resolves add presets. Nil means catalog.Default().
	Catalog *catalog.Catalog
	// BaseDir resolves a relative background path, usually the script's
	// directory.
	BaseDir string
	// Strict makes user errors (no selection, no background, bad length)
	// abort the run instead of only updating the status line.
	Strict bool
	// Progress, if set, is called after each step with the number of
	// steps applied so far.
	Progress func(done, total int)
}

// NewEditor creates an editor sized for s.
func NewEditor(s *Script, opts ...editor.Option) *editor.Editor {
	return editor.New(append([]editor.Option{editor.WithCanvas(s.Canvas.Width, s.Canvas.Height)}, opts...)...)
}

// BackgroundPath returns the script's background file resolved against
// BaseDir, or "" when the script has none.
func (r *Runner) BackgroundPath(s *Script) string {
	path := s.Background
	if path != "" && !filepath.IsAbs(path) && r.BaseDir != "" {
		path = filepath.Join(r.BaseDir, path)
	}
	return path
}

// Run loads the script's background into e and applies its steps in order.
// It stops between steps when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, e *editor.Editor, s *Script) error {
	if path := r.BackgroundPath(s); path != "" {
		img, err := background.Load(path)
		if err != nil {
			return err
		}
		e.SetBackground(img)
	}

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := r.apply(e, step)
		observability.Script().OnStep(ctx, i, step.Kind, err)
		if r.Progress != nil {
			r.Progress(i+1, len(s.Steps))
		}
		if err == nil {
			continue
		}
		if errors.IsUserError(err) && !r.Strict {
			continue
		}
		return errors.Wrap(errors.ErrCodeInvalidScript, err, "step %d (%s)", i+1, step.Kind)
	}
	return nil
}

func (r *Runner) apply(e *editor.Editor, s Step) error {
	switch s.Kind {
	case KindAdd:
		spec, err := r.spec(s.Add)
		if err != nil {
			return err
		}
		_, err = e.Add(spec)
		return err
	case KindPress:
		btn, err := parseButton(s.Pointer.Button)
		if err != nil {
			return err
		}
		e.Press(geometry.Point{X: s.Pointer.X, Y: s.Pointer.Y}, btn)
	case KindMove:
		e.Move(geometry.Point{X: s.Pointer.X, Y: s.Pointer.Y})
	case KindRelease:
		e.Release()
	case KindDrag:
		btn, err := parseButton(s.Drag.Button)
		if err != nil {
			return err
		}
		e.Press(geometry.Point(s.Drag.From), btn)
		e.Move(geometry.Point(s.Drag.To))
		e.Release()
	case KindCalibrate:
		return e.StartCalibration()
	case KindAnswer:
		return e.CompleteCalibration(s.Text)
	case KindCancel:
		e.CancelCalibration()
	case KindDuplicate:
		_, err := e.Duplicate()
		return err
	case KindDelete:
		return e.Delete()
	case KindClear:
		return e.Clear()
	case KindLabel:
		return e.SetLabel(s.Text)
	case KindSelect:
		return e.Select(s.Index)
	case KindDeselect:
		e.Deselect()
	case KindUndo:
		e.Undo()
	case KindRedo:
		e.Redo()
	default:
		return errors.New(errors.ErrCodeInvalidScript, "unknown step %q", s.Kind)
	}
	return nil
}

func (r *Runner) spec(a *AddStep) (editor.BlockSpec, error) {
	cat := r.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	form := catalog.Preset{}
	if a.Preset != "" {
		p, err := cat.Prefill(a.Preset, form)
		if err != nil {
			return editor.BlockSpec{}, err
		}
		form = p
	}
	if a.Width != nil {
		form.Width = *a.Width
	}
	if a.Height != nil {
		form.Height = *a.Height
	}
	if a.Label != nil {
		form.Label = *a.Label
	}
	if a.Color != nil {
		form.Color = *a.Color
	}
	if a.Preset == "" && (a.Width == nil || a.Height == nil) {
		return editor.BlockSpec{}, errors.New(errors.ErrCodeInvalidScript, "add needs a preset or a width and height")
	}
	return editor.SpecFromPreset(form), nil
}

func parseButton(s string) (editor.Button, error) {
	switch s {
	case "", "primary", "left":
		return editor.ButtonPrimary, nil
	case "secondary", "right":
		return editor.ButtonSecondary, nil
	}
	return editor.ButtonPrimary, errors.New(errors.ErrCodeInvalidScript, "unknown button %q", s)
}
