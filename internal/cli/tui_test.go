package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/blockfit/pkg/catalog"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPresetListModelNavigation(t *testing.T) {
	var m tea.Model = NewPresetListModel(catalog.Default().Presets())

	for _, k := range []string{"down", "j", "up", "down"} {
		m, _ = m.Update(keyMsg(k))
	}
	m, cmd := m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("enter should quit")
	}
	got := m.(PresetListModel)
	if got.Cursor != 2 || got.Selected == nil || got.Selected.Key != "studio_a" {
		t.Errorf("cursor = %d, selected = %+v, want studio_a", got.Cursor, got.Selected)
	}
}

func TestPresetListModelBounds(t *testing.T) {
	var m tea.Model = NewPresetListModel(catalog.Default().Presets())
	m, _ = m.Update(keyMsg("up"))
	if c := m.(PresetListModel).Cursor; c != 0 {
		t.Errorf("cursor = %d after up at top, want 0", c)
	}
	for range 20 {
		m, _ = m.Update(keyMsg("down"))
	}
	if c := m.(PresetListModel).Cursor; c != 7 {
		t.Errorf("cursor = %d after many downs, want 7", c)
	}
}

func TestPresetListModelScrolls(t *testing.T) {
	m := NewPresetListModel(catalog.Default().Presets())
	m.Height = 3
	var model tea.Model = m
	for range 4 {
		model, _ = model.Update(keyMsg("down"))
	}
	got := model.(PresetListModel)
	if got.Offset != 2 {
		t.Errorf("offset = %d, want 2", got.Offset)
	}
	if view := got.View(); !strings.Contains(view, "1bed_a") || strings.Contains(view, "parking_std") {
		t.Errorf("view does not show the scrolled window:\n%s", view)
	}
}

func TestLengthPromptModel(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		wantInput string
		wantDone  bool
		wantStop  bool
	}{
		{"accept default", []string{"enter"}, "10", true, false},
		{"edit", []string{"backspace", "backspace", "7.5", "enter"}, "7.5", true, false},
		{"backspace on empty", []string{"backspace", "backspace", "backspace"}, "", false, false},
		{"cancel", []string{"3", "esc"}, "103", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m tea.Model = NewLengthPromptModel(200, defaultCalibrationLength)
			for _, k := range tt.keys {
				m, _ = m.Update(keyMsg(k))
			}
			got := m.(LengthPromptModel)
			if got.Input != tt.wantInput || got.Done != tt.wantDone || got.Cancelled != tt.wantStop {
				t.Errorf("model = %+v", got)
			}
		})
	}
}

func TestLengthPromptViewShowsPixels(t *testing.T) {
	m := NewLengthPromptModel(123.45, "10")
	if v := m.View(); !strings.Contains(v, "123.5 px") {
		t.Errorf("view = %q", v)
	}
}

func TestPresetRow(t *testing.T) {
	p, _ := catalog.Default().Get("parking_std")
	row := presetRow(p)
	want := []string{"parking_std", "Est. Std", "2.5 m", "5.0 m", "██ #BDC6CA"}
	if strings.Join(row, "|") != strings.Join(want, "|") {
		t.Errorf("presetRow() = %v, want %v", row, want)
	}
}
