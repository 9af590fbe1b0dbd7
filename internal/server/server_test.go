package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/blockfit/pkg/editor"
	"github.com/matzehuels/blockfit/pkg/errors"
	"github.com/matzehuels/blockfit/pkg/render"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Options{Editor: []editor.Option{editor.WithCanvas(400, 400)}})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	return w
}

func decodeScene(t *testing.T, w *httptest.ResponseRecorder) SceneResponse {
	t.Helper()
	var resp SceneResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode scene: %v (body %s)", err, w.Body.String())
	}
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v (body %s)", err, w.Body.String())
	}
	return resp
}

func planPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for i := range img.Pix {
		img.Pix[i] = 0xee
	}
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestHealthAndSessionHeader(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get(SessionHeader); got == "" || got != s.SessionID() {
		t.Errorf("%s = %q, want %q", SessionHeader, got, s.SessionID())
	}
}

func TestSceneInitial(t *testing.T) {
	s := newTestServer(t)
	resp := decodeScene(t, do(t, s, http.MethodGet, "/api/v1/scene", ""))

	if len(resp.Blocks) != 0 || resp.Selected != -1 {
		t.Errorf("scene = %+v, want empty with no selection", resp)
	}
	if resp.Mode != "idle" || resp.PxPerMeter != 1 || resp.Status != editor.StatusReady {
		t.Errorf("mode/scale/status = %q/%v/%q", resp.Mode, resp.PxPerMeter, resp.Status)
	}
	if resp.CanUndo || resp.CanRedo {
		t.Error("fresh scene should not allow undo or redo")
	}
	if resp.Canvas.Width != 400 || resp.Canvas.Height != 400 {
		t.Errorf("canvas = %+v, want 400x400", resp.Canvas)
	}
}

func TestCatalog(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/v1/catalog", "")
	var presets []presetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &presets); err != nil {
		t.Fatal(err)
	}
	if len(presets) != 8 || presets[0].Key != "parking_std" {
		t.Errorf("catalog = %+v", presets)
	}
}

func TestAddBlock(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantW    float64
		wantErr  errors.Code
	}{
		{"preset", `{"preset":"1bed_a"}`, http.StatusCreated, 5, ""},
		{"explicit", `{"width":3,"height":4,"label":"Garage"}`, http.StatusCreated, 3, ""},
		{"preset override", `{"preset":"1bed_a","width":7}`, http.StatusCreated, 7, ""},
		{"missing size", `{"width":3}`, http.StatusBadRequest, 0, errors.ErrCodeInvalidInput},
		{"unknown preset", `{"preset":"castle"}`, http.StatusNotFound, 0, errors.ErrCodeNotFound},
		{"bad json", `{"width":`, http.StatusBadRequest, 0, errors.ErrCodeInvalidInput},
		{"unknown field", `{"depth":3}`, http.StatusBadRequest, 0, errors.ErrCodeInvalidInput},
		{"zero size", `{"width":0,"height":2}`, http.StatusBadRequest, 0, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			w := do(t, s, http.MethodPost, "/api/v1/blocks", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantErr != "" {
				if got := decodeError(t, w).Code; got != tt.wantErr {
					t.Errorf("code = %v, want %v", got, tt.wantErr)
				}
				return
			}
			resp := decodeScene(t, w)
			if resp.Index == nil || *resp.Index != 0 {
				t.Fatalf("index = %v, want 0", resp.Index)
			}
			if resp.Blocks[0].W != tt.wantW {
				t.Errorf("width = %v, want %v", resp.Blocks[0].W, tt.wantW)
			}
			if !resp.CanUndo {
				t.Error("add should be undoable")
			}
		})
	}
}

func TestSelectionEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/selection/duplicate", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate without selection: status = %d, want 409", w.Code)
	}
	if e := decodeError(t, w); e.Code != errors.ErrCodeNoSelection || e.Status != editor.StatusNoSelection {
		t.Errorf("error = %+v", e)
	}

	do(t, s, http.MethodPost, "/api/v1/blocks", `{"width":10,"height":10}`)

	if w := do(t, s, http.MethodPost, "/api/v1/blocks/7/select", ""); w.Code != http.StatusNotFound {
		t.Errorf("select out of range: status = %d, want 404", w.Code)
	}
	if w := do(t, s, http.MethodPost, "/api/v1/blocks/x/select", ""); w.Code != http.StatusBadRequest {
		t.Errorf("select non-number: status = %d, want 400", w.Code)
	}

	resp := decodeScene(t, do(t, s, http.MethodPost, "/api/v1/blocks/0/select", ""))
	if resp.Selected != 0 {
		t.Fatalf("selected = %d, want 0", resp.Selected)
	}

	resp = decodeScene(t, do(t, s, http.MethodPut, "/api/v1/selection/label", `{"label":"Unit 1"}`))
	if resp.Blocks[0].Label != "Unit 1" {
		t.Errorf("label = %q", resp.Blocks[0].Label)
	}

	w = do(t, s, http.MethodPost, "/api/v1/selection/duplicate", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("duplicate: status = %d", w.Code)
	}
	resp = decodeScene(t, w)
	if len(resp.Blocks) != 2 || resp.Selected != 1 {
		t.Errorf("after duplicate: %d blocks, selected %d", len(resp.Blocks), resp.Selected)
	}

	resp = decodeScene(t, do(t, s, http.MethodDelete, "/api/v1/selection", ""))
	if len(resp.Blocks) != 1 || resp.Selected != -1 {
		t.Errorf("after delete: %d blocks, selected %d", len(resp.Blocks), resp.Selected)
	}

	resp = decodeScene(t, do(t, s, http.MethodDelete, "/api/v1/blocks", ""))
	if len(resp.Blocks) != 0 {
		t.Errorf("after clear: %d blocks", len(resp.Blocks))
	}
}

func TestPointerDragAndUndo(t *testing.T) {
	s := newTestServer(t)
	// 100x100 block centered at (200,200): origin (150,150).
	do(t, s, http.MethodPost, "/api/v1/blocks", `{"width":100,"height":100}`)

	steps := []string{
		`{"kind":"press","x":200,"y":200}`,
		`{"kind":"move","x":100,"y":100}`,
	}
	for _, body := range steps {
		if w := do(t, s, http.MethodPost, "/api/v1/pointer", body); w.Code != http.StatusOK {
			t.Fatalf("pointer %s: status = %d", body, w.Code)
		}
	}

	mid := decodeScene(t, do(t, s, http.MethodGet, "/api/v1/scene", ""))
	if mid.Mode != "dragging" || mid.CanUndo {
		t.Errorf("mid-gesture mode = %q, canUndo = %v", mid.Mode, mid.CanUndo)
	}
	if w := do(t, s, http.MethodDelete, "/api/v1/blocks", ""); w.Code != http.StatusConflict {
		t.Errorf("clear during gesture: status = %d, want 409", w.Code)
	}

	resp := decodeScene(t, do(t, s, http.MethodPost, "/api/v1/pointer", `{"kind":"release"}`))
	if resp.Blocks[0].X != 50 || resp.Blocks[0].Y != 50 {
		t.Errorf("after drag origin = (%v,%v), want (50,50)", resp.Blocks[0].X, resp.Blocks[0].Y)
	}

	resp = decodeScene(t, do(t, s, http.MethodPost, "/api/v1/undo", ""))
	if resp.Blocks[0].X != 150 || !resp.CanRedo {
		t.Errorf("after undo x = %v canRedo = %v", resp.Blocks[0].X, resp.CanRedo)
	}
	resp = decodeScene(t, do(t, s, http.MethodPost, "/api/v1/redo", ""))
	if resp.Blocks[0].X != 50 {
		t.Errorf("after redo x = %v, want 50", resp.Blocks[0].X)
	}
}

func TestPointerRejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	for _, body := range []string{`{"kind":"hover"}`, `{"kind":"press","button":"middle"}`} {
		if w := do(t, s, http.MethodPost, "/api/v1/pointer", body); w.Code != http.StatusBadRequest {
			t.Errorf("pointer %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestCalibrationFlow(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/calibration", "")
	if w.Code != http.StatusConflict || decodeError(t, w).Code != errors.ErrCodeNoBackground {
		t.Fatalf("calibrate without background: status = %d body %s", w.Code, w.Body.String())
	}

	r := httptest.NewRequest(http.MethodPut, "/api/v1/background", bytes.NewReader(planPNG(t)))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, r)
	if rec.Code != http.StatusOK || !decodeScene(t, rec).HasBackground {
		t.Fatalf("upload background: status = %d", rec.Code)
	}

	resp := decodeScene(t, do(t, s, http.MethodPost, "/api/v1/calibration", ""))
	if resp.Mode != "calibrating" || resp.Calibration == nil {
		t.Fatalf("mode = %q calibration = %v", resp.Mode, resp.Calibration)
	}
	do(t, s, http.MethodPost, "/api/v1/pointer", `{"kind":"press","x":0,"y":0}`)
	resp = decodeScene(t, do(t, s, http.MethodPost, "/api/v1/pointer", `{"kind":"press","x":200,"y":0}`))
	if !resp.Calibration.Pending || resp.Calibration.Pixels != 200 {
		t.Fatalf("calibration = %+v, want pending 200px", resp.Calibration)
	}

	resp = decodeScene(t, do(t, s, http.MethodPost, "/api/v1/calibration/length", `{"length":"10"}`))
	if resp.PxPerMeter != 20 || resp.Mode != "idle" {
		t.Errorf("px/m = %v mode = %q, want 20 idle", resp.PxPerMeter, resp.Mode)
	}
	if resp.Status != "Scale calibrated: 1m = 20.00 px" {
		t.Errorf("status = %q", resp.Status)
	}

	do(t, s, http.MethodPost, "/api/v1/calibration", "")
	resp = decodeScene(t, do(t, s, http.MethodDelete, "/api/v1/calibration", ""))
	if resp.Mode != "idle" || resp.PxPerMeter != 20 {
		t.Errorf("after cancel mode = %q px/m = %v", resp.Mode, resp.PxPerMeter)
	}
}

func TestCalibrationInvalidLength(t *testing.T) {
	s := newTestServer(t)
	s.editor.SetBackground(image.NewNRGBA(image.Rect(0, 0, 10, 10)))
	do(t, s, http.MethodPost, "/api/v1/calibration", "")
	do(t, s, http.MethodPost, "/api/v1/pointer", `{"kind":"press","x":0,"y":0}`)
	do(t, s, http.MethodPost, "/api/v1/pointer", `{"kind":"press","x":100,"y":0}`)

	w := do(t, s, http.MethodPost, "/api/v1/calibration/length", `{"length":"abc"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if e := decodeError(t, w); e.Code != errors.ErrCodeInvalidLength || e.Status != editor.StatusCalibrationOff {
		t.Errorf("error = %+v", e)
	}
	resp := decodeScene(t, do(t, s, http.MethodGet, "/api/v1/scene", ""))
	if resp.PxPerMeter != 1 || resp.Mode != "idle" {
		t.Errorf("px/m = %v mode = %q", resp.PxPerMeter, resp.Mode)
	}
}

func TestBackgroundRejectsGarbage(t *testing.T) {
	s := newTestServer(t)
	put := func(body []byte) *httptest.ResponseRecorder {
		t.Helper()
		r := httptest.NewRequest(http.MethodPut, "/api/v1/background", bytes.NewReader(body))
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, r)
		return w
	}

	if w := put(planPNG(t)); w.Code != http.StatusOK || !decodeScene(t, w).HasBackground {
		t.Fatalf("good upload: status = %d body %s", w.Code, w.Body.String())
	}

	w := put([]byte("not an image"))
	if w.Code != http.StatusBadRequest || decodeError(t, w).Code != errors.ErrCodeDecodeFailed {
		t.Errorf("status = %d body %s", w.Code, w.Body.String())
	}
	resp := decodeScene(t, do(t, s, http.MethodGet, "/api/v1/scene", ""))
	if resp.HasBackground {
		t.Error("failed upload kept the previous background")
	}
	if !strings.HasPrefix(resp.Status, "Could not read image") {
		t.Errorf("status line = %q", resp.Status)
	}
}

// sceneAnswers fails the test if GET /api/v1/scene does not return promptly.
func sceneAnswers(t *testing.T, s *Server) {
	t.Helper()
	done := make(chan int, 1)
	go func() {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/scene", nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, r)
		done <- w.Code
	}()
	select {
	case code := <-done:
		if code != http.StatusOK {
			t.Errorf("scene status = %d", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scene request blocked after a failed export")
	}
}

func TestExportRejectsBadScale(t *testing.T) {
	for _, scale := range []string{"100000", "0", "-1", "NaN", "abc"} {
		t.Run(scale, func(t *testing.T) {
			s := newTestServer(t)
			w := do(t, s, http.MethodGet, "/api/v1/export.png?scale="+scale, "")
			if w.Code != http.StatusBadRequest || decodeError(t, w).Code != errors.ErrCodeInvalidInput {
				t.Errorf("status = %d body %s", w.Code, w.Body.String())
			}
			sceneAnswers(t, s)
		})
	}
}

func TestExportOversizedCanvasKeepsServing(t *testing.T) {
	s := New(Options{Editor: []editor.Option{editor.WithCanvas(render.MaxDimension+1, 10)}})
	w := do(t, s, http.MethodGet, "/api/v1/export.png", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d body %s", w.Code, w.Body.String())
	}
	sceneAnswers(t, s)
}

func TestExport(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/v1/blocks", `{"preset":"studio_a"}`)
	do(t, s, http.MethodPost, "/api/v1/blocks/0/select", "")

	w := do(t, s, http.MethodGet, "/api/v1/export.png?scale=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("export.png status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, render.ExportFilename) {
		t.Errorf("Content-Disposition = %q", got)
	}
	cfg, err := png.DecodeConfig(w.Body)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 800 {
		t.Errorf("png size = %dx%d, want 800x800", cfg.Width, cfg.Height)
	}
	if resp := decodeScene(t, do(t, s, http.MethodGet, "/api/v1/scene", "")); resp.Selected != -1 {
		t.Errorf("export kept selection %d", resp.Selected)
	}

	w = do(t, s, http.MethodGet, "/api/v1/export.svg", "")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "<svg") {
		t.Errorf("export.svg status = %d", w.Code)
	}
	if w := do(t, s, http.MethodGet, "/api/v1/export.png?scale=x", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad scale status = %d, want 400", w.Code)
	}

	w = do(t, s, http.MethodGet, "/api/v1/export.json", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"label":"Estudio A"`) {
		t.Errorf("export.json status = %d body %s", w.Code, w.Body.String())
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{errors.ErrCodeInvalidLength, http.StatusBadRequest},
		{errors.ErrCodeDecodeFailed, http.StatusBadRequest},
		{errors.ErrCodeNoSelection, http.StatusConflict},
		{errors.ErrCodeNoBackground, http.StatusConflict},
		{errors.ErrCodeGestureActive, http.StatusConflict},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeUnsupported, http.StatusUnsupportedMediaType},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := httpStatus(tt.code); got != tt.want {
			t.Errorf("httpStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
