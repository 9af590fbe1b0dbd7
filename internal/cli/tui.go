package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/blockfit/pkg/catalog"
	"github.com/matzehuels/blockfit/pkg/scene"
)

// List styles
var (
	listNormalStyle = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	promptStyle     = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
)

// =============================================================================
// PresetListModel - Interactive preset selection
// =============================================================================

// PresetListModel is the bubbletea model for interactive preset selection.
type PresetListModel struct {
	Presets  []catalog.Preset
	Cursor   int
	Selected *catalog.Preset
	Height   int
	Offset   int
}

// NewPresetListModel creates a new preset list model.
func NewPresetListModel(presets []catalog.Preset) PresetListModel {
	return PresetListModel{
		Presets: presets,
		Height:  12,
	}
}

func (m PresetListModel) Init() tea.Cmd {
	return nil
}

func (m PresetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Presets)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Presets) == 0 {
				return m, tea.Quit
			}
			p := m.Presets[m.Cursor]
			m.Selected = &p
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PresetListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Preset"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Presets))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, presetRow(m.Presets[i])...))
	}

	t := presetTable(rows, true, func(row, col int) lipgloss.Style {
		idx := m.Offset + row
		if idx >= len(m.Presets) {
			return lipgloss.NewStyle()
		}
		if col == 5 {
			return swatchStyle(m.Presets[idx].Color)
		}
		if idx == m.Cursor {
			return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
		}
		return listNormalStyle
	})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Presets))))

	return b.String()
}

// =============================================================================
// LengthPromptModel - Calibration length input
// =============================================================================

// LengthPromptModel asks for the real-world length of a calibration line.
type LengthPromptModel struct {
	Pixels    float64
	Input     string
	Done      bool
	Cancelled bool
}

// NewLengthPromptModel creates a prompt prefilled with def.
func NewLengthPromptModel(pixels float64, def string) LengthPromptModel {
	return LengthPromptModel{Pixels: pixels, Input: def}
}

func (m LengthPromptModel) Init() tea.Cmd {
	return nil
}

func (m LengthPromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.Cancelled = true
		return m, tea.Quit
	case tea.KeyEnter:
		m.Done = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if r := []rune(m.Input); len(r) > 0 {
			m.Input = string(r[:len(r)-1])
		}
	case tea.KeyRunes:
		m.Input += string(key.Runes)
	}
	return m, nil
}

func (m LengthPromptModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Calibrate scale"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("The line is %.1f px long.", m.Pixels)))
	b.WriteString("\n\n")
	b.WriteString(promptStyle.Render("Real length in meters: "))
	b.WriteString(m.Input)
	b.WriteString("█\n\n")
	b.WriteString(listDimStyle.Render("⏎ confirm  esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// defaultCalibrationLength prefills the length prompt.
const defaultCalibrationLength = "10"

// terminalPrompter asks for calibration lengths on the terminal.
type terminalPrompter struct {
	opts []tea.ProgramOption
}

// PromptLength implements editor.Prompter.
func (p terminalPrompter) PromptLength(pixels float64) (string, bool) {
	final, err := tea.NewProgram(NewLengthPromptModel(pixels, defaultCalibrationLength), p.opts...).Run()
	if err != nil {
		return "", false
	}
	m := final.(LengthPromptModel)
	if m.Cancelled || !m.Done {
		return "", false
	}
	return m.Input, true
}

// =============================================================================
// Helpers
// =============================================================================

// presetRow formats a preset for the catalog table.
func presetRow(p catalog.Preset) []string {
	return []string{
		p.Key,
		p.Label,
		fmt.Sprintf("%.1f m", p.Width),
		fmt.Sprintf("%.1f m", p.Height),
		"██ " + p.Color,
	}
}

// presetTable builds the catalog table. withCursor adds a leading column
// for the selection marker.
func presetTable(rows [][]string, withCursor bool, style func(row, col int) lipgloss.Style) *table.Table {
	headers := []string{"Key", "Label", "Width", "Height", "Color"}
	if withCursor {
		headers = append([]string{""}, headers...)
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return style(row, col)
		})
}

// swatchStyle colors a table cell with a preset color.
func swatchStyle(s string) lipgloss.Style {
	c := scene.ColorOrFallback(s)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)))
}
