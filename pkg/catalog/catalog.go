// Package catalog provides the unit footprint presets used to prefill the
// add-block form.
//
// The built-in presets cover parking spaces, studios and one- and
// two-bedroom units. A TOML palette file can override any field of a
// built-in preset or add new ones:
//
//	[presets.garage]
//	width = 3.0
//	height = 6.0
//	label = "Garage"
//	color = "#888888"
package catalog

import (
	"io"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/blockfit/pkg/errors"
	"github.com/matzehuels/blockfit/pkg/scene"
)

// CustomKey selects a blank form instead of a preset.
const CustomKey = "custom"

// CustomColor is the neutral color prefilled for custom blocks.
const CustomColor = "#555555"

// Preset is a block template. Width and Height are in meters.
type Preset struct {
	Key    string  `json:"key" toml:"-"`
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
	Label  string  `json:"label" toml:"label"`
	Color  string  `json:"color" toml:"color"`
}

// Catalog is an ordered set of presets.
type Catalog struct {
	presets map[string]Preset
	order   []string
}

var defaults = []Preset{
	{Key: "parking_std", Width: 2.5, Height: 5.0, Label: "Est. Std", Color: "#BDC6CA"},
	{Key: "parking_compact", Width: 2.1, Height: 4.5, Label: "Est. Comp", Color: "#BDC6CA"},

	{Key: "studio_a", Width: 4.0, Height: 9.0, Label: "Estudio A", Color: "#D0C7BB"},
	{Key: "studio_b", Width: 5.0, Height: 7.2, Label: "Estudio B", Color: "#D0C7BB"},

	{Key: "1bed_a", Width: 5.0, Height: 9.0, Label: "1 Rec A", Color: "rgba(156, 123, 56, 1)"},
	{Key: "1bed_b", Width: 6.6, Height: 7.2, Label: "1 Rec B", Color: "rgba(156, 123, 56, 1)"},

	{Key: "2bed_a", Width: 7.2, Height: 9.0, Label: "2 Rec A", Color: "#746559"},
	{Key: "2bed_b", Width: 6.6, Height: 9.6, Label: "2 Rec B", Color: "#746559"},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c := &Catalog{presets: make(map[string]Preset, len(defaults))}
	for _, p := range defaults {
		c.set(p)
	}
	return c
}

func (c *Catalog) set(p Preset) {
	if _, ok := c.presets[p.Key]; !ok {
		c.order = append(c.order, p.Key)
	}
	c.presets[p.Key] = p
}

// Keys returns the preset keys in catalog order.
func (c *Catalog) Keys() []string {
	return slices.Clone(c.order)
}

// Presets returns all presets in catalog order.
func (c *Catalog) Presets() []Preset {
	out := make([]Preset, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.presets[k])
	}
	return out
}

// Get returns the preset for key.
func (c *Catalog) Get(key string) (Preset, bool) {
	p, ok := c.presets[key]
	return p, ok
}

// Prefill returns form with the fields of preset key filled in. CustomKey
// clears the label, sets CustomColor and leaves the dimensions as they are.
func (c *Catalog) Prefill(key string, form Preset) (Preset, error) {
	if key == CustomKey {
		form.Key = CustomKey
		form.Label = ""
		form.Color = CustomColor
		return form, nil
	}
	p, ok := c.presets[key]
	if !ok {
		return form, errors.New(errors.ErrCodeNotFound, "unknown preset %q", key)
	}
	return p, nil
}

type paletteFile struct {
	Presets map[string]Preset `toml:"presets"`
}

// Merge reads a TOML palette from r and applies it over c. Fields missing
// from an existing preset keep their current value. New presets are
// appended in file order and must set a positive width and height.
func (c *Catalog) Merge(r io.Reader) error {
	var file paletteFile
	md, err := toml.NewDecoder(r).Decode(&file)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse palette")
	}

	for _, key := range presetKeys(md) {
		in := file.Presets[key]
		p, exists := c.presets[key]
		if !exists {
			p = Preset{Key: key, Color: CustomColor}
		}
		if md.IsDefined("presets", key, "width") {
			p.Width = in.Width
		}
		if md.IsDefined("presets", key, "height") {
			p.Height = in.Height
		}
		if md.IsDefined("presets", key, "label") {
			p.Label = in.Label
		}
		if md.IsDefined("presets", key, "color") {
			p.Color = in.Color
		}
		if err := validate(p); err != nil {
			return err
		}
		c.set(p)
	}
	return nil
}

// presetKeys returns the [presets.<key>] table names in file order.
func presetKeys(md toml.MetaData) []string {
	var keys []string
	for _, k := range md.Keys() {
		if len(k) == 2 && k[0] == "presets" {
			keys = append(keys, k[1])
		}
	}
	return keys
}

func validate(p Preset) error {
	if p.Key == CustomKey {
		return errors.New(errors.ErrCodeInvalidInput, "preset key %q is reserved", CustomKey)
	}
	if !(p.Width > 0) || !(p.Height > 0) {
		return errors.New(errors.ErrCodeInvalidInput, "preset %q needs a positive width and height", p.Key)
	}
	if _, ok := scene.ParseColor(p.Color); !ok {
		return errors.New(errors.ErrCodeInvalidInput, "preset %q has an invalid color %q", p.Key, p.Color)
	}
	return errors.ValidateLabel(p.Label)
}

// Load returns the default catalog merged with the palette file at path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "palette %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open palette %s", path)
	}
	defer f.Close()

	c := Default()
	if err := c.Merge(f); err != nil {
		return nil, err
	}
	return c, nil
}
