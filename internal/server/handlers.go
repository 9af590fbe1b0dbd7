package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/blockfit/pkg/background"
	"github.com/matzehuels/blockfit/pkg/catalog"
	"github.com/matzehuels/blockfit/pkg/editor"
	"github.com/matzehuels/blockfit/pkg/errors"
	"github.com/matzehuels/blockfit/pkg/geometry"
	"github.com/matzehuels/blockfit/pkg/render"
	"github.com/matzehuels/blockfit/pkg/scene"
)

// =============================================================================
// Responses
// =============================================================================

type canvasSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type calibrationState struct {
	Points  []geometry.Point `json:"points"`
	Pending bool             `json:"pending"`
	Pixels  float64          `json:"pixels,omitempty"`
}

// SceneResponse is the editor state returned by GET /api/v1/scene and by
// every mutating endpoint.
type SceneResponse struct {
	Blocks        []scene.Block     `json:"blocks"`
	Selected      int               `json:"selected"`
	Mode          string            `json:"mode"`
	PxPerMeter    float64           `json:"px_per_meter"`
	Status        string            `json:"status"`
	CanUndo       bool              `json:"can_undo"`
	CanRedo       bool              `json:"can_redo"`
	Overlapping   bool              `json:"overlapping"`
	HasBackground bool              `json:"has_background"`
	Canvas        canvasSize        `json:"canvas"`
	Calibration   *calibrationState `json:"calibration,omitempty"`
	Index         *int              `json:"index,omitempty"`
}

// snapshot must be called with s.mu held.
func (s *Server) snapshot() SceneResponse {
	e := s.editor
	w, h := e.CanvasSize()
	resp := SceneResponse{
		Blocks:        e.Blocks(),
		Selected:      e.Selected(),
		Mode:          e.Mode().String(),
		PxPerMeter:    e.PxPerMeter(),
		Status:        e.Status(),
		CanUndo:       e.CanUndo(),
		CanRedo:       e.CanRedo(),
		Overlapping:   e.Overlapping(),
		HasBackground: e.HasBackground(),
		Canvas:        canvasSize{Width: w, Height: h},
	}
	if e.Mode() == editor.ModeCalibrating {
		px, pending := e.PendingCalibration()
		resp.Calibration = &calibrationState{Points: e.CalibrationPoints(), Pending: pending, Pixels: px}
	}
	return resp
}

// mutate runs fn under the lock and replies with the resulting scene, or
// with the mapped error.
func (s *Server) mutate(w http.ResponseWriter, status int, fn func(e *editor.Editor) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.editor); err != nil {
		writeError(w, err, s.editor.Status())
		return
	}
	writeJSON(w, status, s.snapshot())
}

// =============================================================================
// Read-only
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "session": s.session})
}

func (s *Server) handleScene(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.snapshot())
}

type presetResponse struct {
	Key    string  `json:"key"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Label  string  `json:"label"`
	Color  string  `json:"color"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	presets := s.catalog.Presets()
	out := make([]presetResponse, len(presets))
	for i, p := range presets {
		out[i] = presetResponse{Key: p.Key, Width: p.Width, Height: p.Height, Label: p.Label, Color: p.Color}
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// Blocks
// =============================================================================

// AddRequest is the body of POST /api/v1/blocks. Explicit fields override
// the preset; without a preset both width and height are required.
type AddRequest struct {
	Preset string   `json:"preset"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Label  *string  `json:"label"`
	Color  *string  `json:"color"`
}

func (s *Server) spec(req AddRequest) (editor.BlockSpec, error) {
	form := catalog.Preset{}
	if req.Preset != "" {
		p, err := s.catalog.Prefill(req.Preset, form)
		if err != nil {
			return editor.BlockSpec{}, err
		}
		form = p
	} else if req.Width == nil || req.Height == nil {
		return editor.BlockSpec{}, errors.New(errors.ErrCodeInvalidInput, "preset or width and height required")
	}
	if req.Width != nil {
		form.Width = *req.Width
	}
	if req.Height != nil {
		form.Height = *req.Height
	}
	if req.Label != nil {
		form.Label = *req.Label
	}
	if req.Color != nil {
		form.Color = *req.Color
	}
	if !(form.Width > 0) || !(form.Height > 0) {
		return editor.BlockSpec{}, errors.New(errors.ErrCodeInvalidInput, "width and height must be positive")
	}
	return editor.SpecFromPreset(form), nil
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "")
		return
	}
	spec, err := s.spec(req)
	if err != nil {
		writeError(w, err, "")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.editor.Add(spec)
	if err != nil {
		writeError(w, err, s.editor.Status())
		return
	}
	resp := s.snapshot()
	resp.Index = &idx
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	s.mutate(w, http.StatusOK, func(e *editor.Editor) error { return e.Clear() })
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid block index"), "")
		return
	}
	s.mutate(w, http.StatusOK, func(e *editor.Editor) error { return e.Select(idx) })
}

func (s *Server) handleDelete(w http.ResponseWriter, _ *http.Request) {
	s.mutate(w, http.StatusOK, func(e *editor.Editor) error { return e.Delete() })
}

func (s *Server) handleDuplicate(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.editor.Duplicate()
	if err != nil {
		writeError(w, err, s.editor.Status())
		return
	}
	resp := s.snapshot()
	resp.Index = &idx
	writeJSON(w, http.StatusCreated, resp)
}

type labelRequest struct {
	Label string `json:"label"`
}

func (s *Server) handleLabel(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "")
		return
	}
	s.mutate(w, http.StatusOK, func(e *editor.Editor) error { return e.SetLabel(req.Label) })
}

// =============================================================================
// Pointer & history
// =============================================================================

// PointerRequest is the body of POST /api/v1/pointer.
type PointerRequest struct {
	Kind   string  `json:"kind"` // press, move or release
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button string  `json:"button"` // primary (default) or secondary
}

func parseButton(s string) (editor.Button, error) {
	switch s {
	case "", "primary", "left":
		return editor.ButtonPrimary, nil
	case "secondary", "right":
		return editor.ButtonSecondary, nil
	}
	return editor.ButtonPrimary, errors.New(errors.ErrCodeInvalidInput, "unknown button %q", s)
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "")
		return
	}
	btn, err := parseButton(req.Button)
	if err != nil {
		writeError(w, err, "")
		return
	}
	p := geometry.Point{X: req.X, Y: req.Y}

	s.mutate(w, http.StatusOK, func(e *editor.Editor) error {
		switch req.Kind {
		case "press":
			e.Press(p, btn)
		case "move":
			e.Move(p)
		case "release":
			e.Release()
		default:
			return errors.New(errors.ErrCodeInvalidInput, "unknown pointer event %q", req.Kind)
		}
		return nil
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, _ *http.Request) {
	s.mutate(w, http.StatusOK, func(e *editor.Editor) error {
		e.Undo()
		return nil
	})
}

func (s *Server) handleRedo(w http.ResponseWriter, _ *http.Request) {
	s.mutate(w, http.StatusOK, func(e *editor.Editor) error {
		e.Redo()
		return nil
	})
}

// =============================================================================
// Background & calibration
// =============================================================================

func (s *Server) handleBackground(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, background.MaxBytes+1)
	s.mutate(w, http.StatusOK, func(e *editor.Editor) error { return e.LoadBackground(body) })
}

func (s *Server) handleCalibrationStart(w http.ResponseWriter, _ *http.Request) {
	s.mutate(w, http.StatusOK, func(e *editor.Editor) error { return e.StartCalibration() })
}

type lengthRequest struct {
	Length string `json:"length"`
}

func (s *Server) handleCalibrationLength(w http.ResponseWriter, r *http.Request) {
	var req lengthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "")
		return
	}
	s.mutate(w, http.StatusOK, func(e *editor.Editor) error { return e.CompleteCalibration(req.Length) })
}

func (s *Server) handleCalibrationCancel(w http.ResponseWriter, _ *http.Request) {
	s.mutate(w, http.StatusOK, func(e *editor.Editor) error {
		e.CancelCalibration()
		return nil
	})
}

// =============================================================================
// Export
// =============================================================================

// export runs fn under the lock and returns its bytes with the resulting
// status line.
func (s *Server) export(fn func(e *editor.Editor) ([]byte, error)) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := fn(s.editor)
	return data, s.editor.Status(), err
}

func (s *Server) handleExportPNG(w http.ResponseWriter, r *http.Request) {
	scale := 1.0
	if v := r.URL.Query().Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid scale"), "")
			return
		}
		if !(f > 0 && f <= render.MaxScale) {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, %g]", render.MaxScale), "")
			return
		}
		scale = f
	}

	data, status, err := s.export(func(e *editor.Editor) ([]byte, error) { return e.Export(render.WithScale(scale)) })
	if err != nil {
		writeError(w, err, status)
		return
	}
	writeFile(w, "image/png", render.ExportFilename, data)
}

func (s *Server) handleExportSVG(w http.ResponseWriter, _ *http.Request) {
	data, status, err := s.export(func(e *editor.Editor) ([]byte, error) { return e.ExportSVG() })
	if err != nil {
		writeError(w, err, status)
		return
	}
	writeFile(w, "image/svg+xml", "fit_test_plano.svg", data)
}

func (s *Server) handleExportJSON(w http.ResponseWriter, _ *http.Request) {
	data, status, err := s.export(func(e *editor.Editor) ([]byte, error) { return e.ExportJSON() })
	if err != nil {
		writeError(w, err, status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func writeFile(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}
