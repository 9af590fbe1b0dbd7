package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// configCommand creates the settings management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configShowCommand())

	return cmd
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented settings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolvedConfigPath()
			if err != nil {
				return fmt.Errorf("get config path: %w", err)
			}

			if _, err := os.Stat(path); err == nil && !force {
				printWarning("Settings file already exists")
				printDetail("Use --force to overwrite %s", path)
				return nil
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			if err := os.WriteFile(path, []byte(defaultConfigTOML), 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			printSuccess("Wrote settings")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolvedConfigPath()
			if err != nil {
				return fmt.Errorf("get config path: %w", err)
			}
			fmt.Println(path)
			return nil
		},
	}
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			printKeyValue("Canvas", fmt.Sprintf("%d x %d px", cfg.CanvasWidth, cfg.CanvasHeight))
			printKeyValue("Nudge", fmt.Sprintf("%g px", cfg.Nudge))
			printKeyValue("Duplicate", fmt.Sprintf("%g px", cfg.DuplicateOffset))
			printKeyValue("Presets", fmt.Sprintf("%d", len(cfg.Catalog.Keys())))
			return nil
		},
	}
}

func (c *CLI) resolvedConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return defaultConfigPath()
}
