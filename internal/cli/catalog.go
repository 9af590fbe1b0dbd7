package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockfit/pkg/catalog"
)

// catalogCommand creates the catalog command for listing block presets.
func (c *CLI) catalogCommand() *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the block presets",
		Long: `List the block presets available to add. Sizes are in meters and are
scaled by the calibrated pixels-per-meter when a block is added.

Presets come from the built-in catalog merged with the [presets.<key>]
tables of the settings file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if pick {
				return runCatalogPick(cfg.Catalog)
			}
			fmt.Println(catalogTable(cfg.Catalog.Presets()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "choose a preset interactively and print its script step")
	return cmd
}

func catalogTable(presets []catalog.Preset) string {
	rows := make([][]string, len(presets))
	for i, p := range presets {
		rows[i] = presetRow(p)
	}
	return presetTable(rows, false, func(row, col int) lipgloss.Style {
		if row < len(presets) && col == 4 {
			return swatchStyle(presets[row].Color)
		}
		return listNormalStyle
	}).Render()
}

func runCatalogPick(cat *catalog.Catalog) error {
	final, err := tea.NewProgram(NewPresetListModel(cat.Presets())).Run()
	if err != nil {
		return fmt.Errorf("preset picker: %w", err)
	}
	m := final.(PresetListModel)
	if m.Selected == nil {
		printInfo("No preset selected")
		return nil
	}

	p := *m.Selected
	printSuccess("%s", p.Label)
	printKeyValue("Key", p.Key)
	printKeyValue("Size", fmt.Sprintf("%.1f x %.1f m", p.Width, p.Height))
	printKeyValue("Color", p.Color)
	printNewline()
	printNextStep("Script step", fmt.Sprintf("- add: {preset: %s}", p.Key))
	return nil
}
