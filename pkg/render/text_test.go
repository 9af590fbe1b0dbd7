package render

import (
	"math"
	"testing"
)

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		name  string
		w, h  float64
		label string
		want  float64
	}{
		{"large block caps at max", 400, 400, "1 Rec A", fontSizeMax},
		{"tiny block floors at min", 10, 5, "Estudio A", fontSizeMin},
		{"height bound", 400, 15, "A", 9},
		{"nan floors at min", math.NaN(), 10, "A", fontSizeMin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LabelFontSize(tt.w, tt.h, tt.label); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("LabelFontSize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		w        float64
		fontSize float64
		want     string
	}{
		{"fits", "Est. Std", 200, 13, "Est. Std"},
		{"truncated", "Estacionamiento", 40, 10, "Esta.."},
		{"keeps three", "Estacionamiento", 1, 13, "E.."},
		{"runes", "Área común grande", 40, 10, "Área.."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateLabel(tt.label, tt.w, tt.fontSize); got != tt.want {
				t.Errorf("TruncateLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}
