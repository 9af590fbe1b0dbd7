// Package cli implements the blockfit command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockfit/pkg/buildinfo"
	"github.com/matzehuels/blockfit/pkg/cache"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "blockfit"

	// configFileName is the settings file inside the config directory.
	configFileName = "config.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by --config. Empty means the XDG default.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Blockfit lays out unit footprints over a reference plan",
		Long: `Blockfit is a layout editor for fitting labeled, rotatable blocks
(parking spaces, studios, bedrooms) over a reference floor plan, with scale
calibration and collision detection.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			installHooks(c.Logger)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "settings file (default $XDG_CONFIG_HOME/blockfit/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Settings
// =============================================================================

// loadConfig reads the settings file. A missing default file yields the
// built-in defaults; a missing --config file is an error.
func (c *CLI) loadConfig() (*Config, error) {
	if c.configPath != "" {
		return LoadConfig(c.configPath)
	}
	path, err := defaultConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/blockfit/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// cacheDir returns the export cache directory (~/.cache/blockfit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// newCache opens the export cache. Without a usable directory exports are
// simply not cached.
func newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}

func defaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}
