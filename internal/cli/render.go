package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockfit/pkg/cache"
	"github.com/matzehuels/blockfit/pkg/editor"
	"github.com/matzehuels/blockfit/pkg/errors"
	"github.com/matzehuels/blockfit/pkg/render"
	"github.com/matzehuels/blockfit/pkg/scene"
	"github.com/matzehuels/blockfit/pkg/script"
)

const (
	formatPNG  = "png"
	formatSVG  = "svg"
	formatJSON = "json"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output       string  // output file path
	format       string  // png, svg or json; empty means infer from output
	scale        float64 // PNG pixel density
	strict       bool    // abort on refused steps
	prompt       bool    // ask for missing calibration lengths on the terminal
	embedFont    bool    // embed the label font in SVG output
	noBackground bool    // leave the background image out of SVG output
	indent       bool    // pretty-print JSON output
	noCache      bool    // always replay, never read or write the cache
}

// renderCommand creates the render command that replays a session script.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		output: render.ExportFilename,
		scale:  1,
	}

	cmd := &cobra.Command{
		Use:   "render [script.yaml]",
		Short: "Replay a session script and export the canvas",
		Long: `Replay a YAML session script against a fresh editor and export the
resulting canvas as PNG, SVG or JSON.

The script's background path is resolved relative to the script. Refused
steps (no selection, no background, bad length) only update the status
line unless --strict is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(opts.format, opts.output)
			if err != nil {
				return err
			}
			opts.format = format
			if format == formatPNG && !(opts.scale > 0 && opts.scale <= render.MaxScale) {
				return errors.New(errors.ErrCodeInvalidInput, "--scale must be in (0, %g]", render.MaxScale)
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png, svg, json (default: from output extension)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG pixel density")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "abort on the first refused step")
	cmd.Flags().BoolVar(&opts.prompt, "prompt", false, "ask for calibration lengths the script does not answer")
	cmd.Flags().BoolVar(&opts.embedFont, "embed-font", false, "embed the label font in SVG output")
	cmd.Flags().BoolVar(&opts.noBackground, "no-background", false, "omit the background image from SVG output")
	cmd.Flags().BoolVar(&opts.indent, "indent", false, "pretty-print JSON output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "replay even if an identical export is cached")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	s, err := script.Load(path)
	if err != nil {
		return err
	}
	logger.Debug("loaded script", "path", path, "steps", len(s.Steps))
	if s.Canvas.Width > render.MaxDimension || s.Canvas.Height > render.MaxDimension {
		return errors.New(errors.ErrCodeInvalidScript, "canvas %dx%d exceeds %d px per side", s.Canvas.Width, s.Canvas.Height, render.MaxDimension)
	}

	runner := &script.Runner{
		Catalog: cfg.Catalog,
		BaseDir: filepath.Dir(path),
		Strict:  opts.strict,
	}

	// Interactive answers are not part of the key.
	store := newCache(opts.noCache || opts.prompt)
	defer store.Close()
	key, err := exportKey(path, runner.BackgroundPath(s), cfg, opts)
	if err != nil {
		return err
	}
	if data, hit, _ := store.Get(ctx, key); hit {
		logger.Debug("cache hit", "key", key)
		if err := writeOutput(opts.output, data); err != nil {
			return err
		}
		prog.done("Rendered from cache")
		printSuccess("Exported %s %s", opts.format, StyleDim.Render("(cached)"))
		printFile(opts.output)
		return nil
	}

	e := editor.New(scriptEditorOptions(cfg, s, opts.prompt)...)

	spinner := newSpinnerWithContext(ctx, "Replaying "+filepath.Base(path)+"...")
	if !opts.prompt {
		runner.Progress = spinner.Step
		spinner.Start()
	}
	err = runner.Run(ctx, e, s)
	if !opts.prompt {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	data, err := export(e, opts)
	if err != nil {
		return err
	}
	if err := writeOutput(opts.output, data); err != nil {
		return err
	}
	if err := store.Set(ctx, key, data, cache.ExportTTL); err != nil {
		logger.Warn("cache write failed", "err", err)
	}

	prog.done(fmt.Sprintf("Rendered %d blocks", e.Len()))
	printSuccess("Exported %s", opts.format)
	printFile(opts.output)
	printKeyValue("Blocks", fmt.Sprintf("%d", e.Len()))
	printKeyValue("Scale", fmt.Sprintf("1m = %.2f px", e.PxPerMeter()))
	printKeyValue("Status", e.Status())
	if n := overlapCount(e); n > 0 {
		printKeyValue("Overlaps", StyleAlert.Render(fmt.Sprintf("%d blocks", n)))
	}
	return nil
}

// scriptEditorOptions layers the script canvas over the settings.
func scriptEditorOptions(cfg *Config, s *script.Script, prompt bool) []editor.Option {
	opts := cfg.editorOptions()
	if s.Canvas.Width > 0 && s.Canvas.Height > 0 {
		opts = append(opts, editor.WithCanvas(s.Canvas.Width, s.Canvas.Height))
	}
	if prompt {
		opts = append(opts, editor.WithPrompter(terminalPrompter{}))
	}
	return opts
}

func export(e *editor.Editor, opts renderOpts) ([]byte, error) {
	switch opts.format {
	case formatPNG:
		return e.Export(render.WithScale(opts.scale))
	case formatSVG:
		var svgOpts []render.SVGOption
		if opts.embedFont {
			svgOpts = append(svgOpts, render.WithEmbeddedFont())
		}
		if opts.noBackground {
			svgOpts = append(svgOpts, render.WithoutBackground())
		}
		return e.ExportSVG(svgOpts...)
	case formatJSON:
		var jsonOpts []render.JSONOption
		if opts.indent {
			jsonOpts = append(jsonOpts, render.WithJSONIndent())
		}
		return e.ExportJSON(jsonOpts...)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", opts.format)
}

// resolveFormat validates the output path and picks the format, either
// explicit or from the output extension.
func resolveFormat(format, output string) (string, error) {
	if err := errors.ValidateOutputPath(output); err != nil {
		return "", err
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	if format == "" {
		return ext, nil
	}
	format = strings.ToLower(format)
	switch format {
	case formatPNG, formatSVG, formatJSON:
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'png', 'svg' or 'json')", format)
	}
	if format != ext {
		return "", errors.New(errors.ErrCodeInvalidFormat, "format %s does not match output %s", format, output)
	}
	return format, nil
}

// exportKey hashes every input that affects the exported bytes.
func exportKey(scriptPath, bgPath string, cfg *Config, opts renderOpts) (string, error) {
	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "script %s", scriptPath)
	}
	k := cache.ExportKeyOpts{
		Script:       cache.Hash(src),
		Settings:     cfg.fingerprint(),
		Format:       opts.format,
		EmbedFont:    opts.embedFont,
		NoBackground: opts.noBackground,
		Indent:       opts.indent,
	}
	if opts.format == formatPNG {
		k.Scale = opts.scale
	}
	if bgPath != "" {
		// An unreadable background fails the replay, which never caches.
		if bg, err := os.ReadFile(bgPath); err == nil {
			k.Background = cache.Hash(bg)
		}
	}
	return cache.ExportKey(k), nil
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func overlapCount(e *editor.Editor) int {
	s := scene.Scene{Blocks: e.Blocks()}
	n := 0
	for i := range s.Blocks {
		if s.AnyOverlap(i) {
			n++
		}
	}
	return n
}
