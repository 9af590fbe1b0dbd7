package cli

import (
	"os"

	"gioui.org/app"
	"gioui.org/unit"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockfit/internal/ui"
)

// editCommand creates the edit command that opens the desktop editor.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [plan-image]",
		Short: "Open the desktop editor",
		Long: `Open the desktop editor, optionally with a reference plan image.

Left-drag moves a block, right-drag rotates it. A move or rotation that
ends on top of another block is reverted. Ctrl+Z / Ctrl+Shift+Z undo and
redo, Ctrl+D duplicates, Delete removes the selected block and Escape
cancels calibration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := ui.Options{
				Editor:  cfg.editorOptions(),
				Catalog: cfg.Catalog,
				Logger:  c.Logger,
			}
			if len(args) == 1 {
				opts.Background = args[0]
			}

			go func() {
				w := new(app.Window)
				w.Option(app.Title("blockfit"))
				w.Option(app.Size(unit.Dp(cfg.CanvasWidth)+260, unit.Dp(cfg.CanvasHeight)+32))

				if err := ui.Main(w, opts); err != nil {
					c.Logger.Error("editor window", "err", err)
					os.Exit(1)
				}
				os.Exit(0)
			}()
			app.Main()
			return nil
		},
	}
}
