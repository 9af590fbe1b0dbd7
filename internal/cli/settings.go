package cli

import (
	"bytes"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/blockfit/pkg/catalog"
	"github.com/matzehuels/blockfit/pkg/editor"
	"github.com/matzehuels/blockfit/pkg/errors"
	"github.com/matzehuels/blockfit/pkg/render"
)

// Config holds the editor settings shared by edit, render and serve.
type Config struct {
	CanvasWidth     int     `toml:"canvas_width"`
	CanvasHeight    int     `toml:"canvas_height"`
	Nudge           float64 `toml:"nudge"`
	DuplicateOffset float64 `toml:"duplicate_offset"`

	// Catalog is the default palette merged with the file's [presets.<key>]
	// tables.
	Catalog *catalog.Catalog `toml:"-"`
}

// DefaultConfig returns the settings used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		CanvasWidth:     render.DefaultWidth,
		CanvasHeight:    render.DefaultHeight,
		Nudge:           editor.DefaultNudge,
		DuplicateOffset: editor.DefaultDuplicateOffset,
		Catalog:         catalog.Default(),
	}
}

// LoadConfig reads a settings file from path.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open config %s", path)
	}
	defer f.Close()
	return ParseConfig(f)
}

// ParseConfig decodes settings from r over the defaults.
func ParseConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read config")
	}

	cfg := DefaultConfig()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "canvas size must be positive, got %dx%d", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if cfg.CanvasWidth > render.MaxDimension || cfg.CanvasHeight > render.MaxDimension {
		return nil, errors.New(errors.ErrCodeInvalidInput, "canvas size %dx%d exceeds %d px per side", cfg.CanvasWidth, cfg.CanvasHeight, render.MaxDimension)
	}
	if err := cfg.Catalog.Merge(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// editorOptions turns the settings into editor options.
func (cfg *Config) editorOptions() []editor.Option {
	return []editor.Option{
		editor.WithCanvas(cfg.CanvasWidth, cfg.CanvasHeight),
		editor.WithNudge(cfg.Nudge),
		editor.WithDuplicateOffset(cfg.DuplicateOffset),
	}
}

// fingerprint is the JSON-encodable view of the settings used in cache keys.
func (cfg *Config) fingerprint() any {
	return struct {
		Config
		Presets []catalog.Preset `json:"presets"`
	}{*cfg, cfg.Catalog.Presets()}
}

// defaultConfigTOML is written by "config init".
const defaultConfigTOML = `# blockfit settings

canvas_width = 1200
canvas_height = 800

# Offset applied once to a new block that lands on another one.
nudge = 20.0
# Offset of a duplicated block from its source.
duplicate_offset = 20.0

# Presets override or extend the built-in catalog. Sizes are in meters.
#
# [presets.studio_a]
# width = 4.2
#
# [presets.storage]
# width = 1.5
# height = 2.0
# label = "Bodega"
# color = "#8E9AAF"
`
