// Package cli implements the fishbone command-line interface.
//
// # Commands
//
//   - render: diagram file → svg, png, pdf or json in one step
//   - layout: diagram file → layout.json
//   - visualize: layout.json → svg, png or pdf
//   - convert: normalize a YAML/TOML/JSON diagram to canonical JSON
//   - watch: re-render whenever the diagram file changes
//   - preview: interactive terminal preview with live resizing
//   - serve: run the HTTP API
//   - cache: inspect or clear the local cache
//   - config: show or create the configuration file
//
// # Configuration
//
// Defaults are read from fishbone.toml (see package config); flags always
// win. All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fishbone/pkg/buildinfo"
	"github.com/matzehuels/fishbone/pkg/cache"
	"github.com/matzehuels/fishbone/pkg/config"
	"github.com/matzehuels/fishbone/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "fishbone"

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

	// Config is loaded before any subcommand runs.
	Config     config.Config
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Fishbone lays out and renders cause-and-effect diagrams",
		Long:         `Fishbone turns a tree of causes into an Ishikawa (fishbone) diagram: the effect at the head, causes along diagonal bones above and below the spine, and sub-causes stacked on each bone.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./fishbone.toml or user config dir)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// newCache opens the configured backend. A file cache whose directory
// cannot be determined degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts := c.Config.CacheOptions()
	if opts.Backend == "" || opts.Backend == cache.BackendFile {
		if opts.Dir == "" {
			dir, err := cacheDir()
			if err != nil {
				c.Logger.Debug("no cache directory, caching disabled", "error", err)
				return cache.NewNullCache(), nil
			}
			opts.Dir = dir
		}
	}
	cc, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", opts.Backend, err)
	}
	return cc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/fishbone/).
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

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		if input == "" || input == "-" {
			return "fishbone"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the flags shared by every command that computes a layout.
type layoutFlags struct {
	opts    pipeline.Options
	formats string
}

func (f *layoutFlags) register(cmd *cobra.Command, withRender bool) {
	fl := cmd.Flags()
	fl.StringVarP(&f.opts.VizType, "type", "t", "", "visualization type: fishbone (default), tree")
	fl.StringVar(&f.opts.InputFormat, "input-format", "", "input format: json, yaml, toml (default: from extension)")
	fl.Float64Var(&f.opts.Width, "width", 0, fmt.Sprintf("viewport width in pixels (default %.0f)", pipeline.DefaultWidth))
	fl.IntVar(&f.opts.Cols, "cols", 0, fmt.Sprintf("grid columns the diagram spans, 1-%d (default %d)", pipeline.MaxCols, pipeline.DefaultCols))
	fl.StringVar(&f.opts.Color, "color", "", "color name or palette index (see 'serve' /api/v1/palette)")
	fl.BoolVar(&f.opts.HideIcon, "hide-icon", false, "draw a bordered title instead of the fish head and tail")
	fl.Float64Var(&f.opts.FontSize, "font-size", 0, "label font size in pixels (default 14)")
	fl.BoolVar(&f.opts.Full, "full", false, "draw every cause level (tree view)")
	fl.BoolVar(&f.opts.Refresh, "refresh", false, "ignore cached layouts and remote documents")
	if !withRender {
		return
	}
	f.registerRender(cmd)
}

func (f *layoutFlags) registerRender(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	fl.Float64Var(&f.opts.Scale, "scale", 0, fmt.Sprintf("PNG scale factor (default %g)", pipeline.DefaultScale))
	fl.BoolVar(&f.opts.Transparent, "transparent", false, "leave the background transparent")
	fl.BoolVar(&f.opts.EmbedFonts, "embed-fonts", false, "embed fonts in SVG output")
	fl.BoolVar(&f.opts.Outlines, "outlines", false, "outline every box (debugging)")
}

// resolve merges flags with the config file and checks the result.
func (c *CLI) resolve(f *layoutFlags) (pipeline.Options, error) {
	opts := f.opts
	if f.formats != "" {
		opts.Formats = parseFormats(f.formats)
	}
	c.Config.Apply(&opts)
	opts.Logger = c.Logger
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return opts, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return opts, err
	}
	return opts, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
