package render

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/blockfit/pkg/errors"
	"github.com/matzehuels/blockfit/pkg/observability"
	"github.com/matzehuels/blockfit/pkg/scene"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent bool
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	PxPerMeter float64     `json:"px_per_meter"`
	Blocks     []jsonBlock `json:"blocks"`
}

type jsonBlock struct {
	Index       int     `json:"index"`
	Label       string  `json:"label"`
	Color       string  `json:"color"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	W           float64 `json:"w"`
	H           float64 `json:"h"`
	Angle       float64 `json:"angle"`
	WidthM      float64 `json:"width_m"`
	HeightM     float64 `json:"height_m"`
	Overlapping bool    `json:"overlapping,omitempty"`
}

// RenderJSON exports the block layout with sizes converted back to meters.
// Non-finite values cannot be encoded and are reported as an error.
func RenderJSON(v View, opts ...JSONOption) ([]byte, error) {
	start := time.Now()
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	w, h := v.size()
	scale := v.PxPerMeter
	if !(scale > 0) {
		scale = 1
	}
	s := scene.Scene{Blocks: v.Blocks}
	out := jsonOutput{Width: w, Height: h, PxPerMeter: scale, Blocks: make([]jsonBlock, 0, len(v.Blocks))}
	for i, b := range v.Blocks {
		out.Blocks = append(out.Blocks, jsonBlock{
			Index: i, Label: b.Label, Color: b.Color,
			X: b.X, Y: b.Y, W: b.W, H: b.H, Angle: b.Angle,
			WidthM: b.W / scale, HeightM: b.H / scale,
			Overlapping: s.AnyOverlap(i),
		})
	}

	var data []byte
	var err error
	if r.indent {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		err = errors.Wrap(errors.ErrCodeInvalidInput, err, "encode layout")
	}
	observability.Render().OnRenderComplete("json", len(v.Blocks), len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return data, nil
}
