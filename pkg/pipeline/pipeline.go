// Package pipeline provides the load → layout → render pipeline shared by
// the CLI, the watch loop and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a diagram from a file, stdin or URL
//  2. Layout: build the visual tree, run the layout engine and export it
//  3. Render: draw the layout in the requested formats (SVG, PNG, PDF, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
// Layouts and artifacts are cached by content hash.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "incident.yaml",
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	d, err := runner.Load(ctx, opts)
//	layout, err := runner.GenerateLayout(ctx, d, opts)
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fishbone/pkg/cache"
	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/errors"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/theme"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Watcher
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = tree.DefaultWidth

	// DefaultCols is the default number of grid columns the diagram spans.
	DefaultCols = tree.DefaultCols

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0

	// MaxWidth bounds the viewport so a request cannot allocate huge images.
	MaxWidth = 10000.0

	// MaxCols is the width of the column grid.
	MaxCols = tree.GridCols
)

// DefaultVizType is the default visualization type.
const DefaultVizType = diagram.VizTypeFishbone

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	diagram.VizTypeFishbone: true,
	diagram.VizTypeTree:     true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Source      string `json:"source,omitempty"` // path, "-" or http(s) URL
	InputFormat string `json:"input_format,omitempty"`
	Refresh     bool   `json:"refresh,omitempty"`

	// Layout options
	VizType  string  `json:"viz_type,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Cols     int     `json:"cols,omitempty"`
	Color    string  `json:"color,omitempty"` // palette name or index
	HideIcon bool    `json:"hide_icon,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`
	Full     bool    `json:"full,omitempty"` // tree view: draw every level

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	Transparent bool     `json:"transparent,omitempty"`
	EmbedFonts  bool     `json:"embed_fonts,omitempty"`
	Outlines    bool     `json:"outlines,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Diagram is the loaded diagram.
	Diagram *diagram.Diagram

	// DiagramHash is the content hash of the diagram's canonical JSON.
	DiagramHash string

	// Layout is the exported layout.
	Layout diagram.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CauseCount int
	Depth      int
	Warnings   int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether layout result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidVizType, "invalid viz_type: %q (must be one of: fishbone, tree)", vizType)
	}
	return nil
}

// ValidateColor checks that a color resolves against the palette.
func ValidateColor(color string) error {
	_, err := theme.Resolve(color)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForLoad checks that a source is given.
func (o *Options) ValidateForLoad() error {
	if o.Source == "" {
		return errors.New(errors.ErrCodeInvalidInput, "source is required")
	}
	if o.InputFormat != "" {
		if _, err := diagram.ParseFormat(o.InputFormat); err != nil {
			return err
		}
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Cols <= 0 {
		o.Cols = DefaultCols
	}
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if o.Width > MaxWidth {
		return errors.New(errors.ErrCodeInvalidInput, "width %.0f exceeds %.0f", o.Width, MaxWidth)
	}
	if o.Cols > MaxCols {
		return errors.New(errors.ErrCodeInvalidInput, "cols must be between 1 and %d", MaxCols)
	}
	if o.FontSize < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "font size cannot be negative")
	}
	return ValidateColor(o.Color)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults checks every stage. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// IsFishbone reports whether the fishbone view is selected.
func (o *Options) IsFishbone() bool {
	return o.VizType == "" || o.VizType == diagram.VizTypeFishbone
}

// IsTree reports whether the cause tree view is selected.
func (o *Options) IsTree() bool {
	return o.VizType == diagram.VizTypeTree
}

// HasFormat reports whether format is requested.
func (o *Options) HasFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		VizType:  o.VizType,
		Width:    o.Width,
		Cols:     o.Cols,
		Color:    o.Color,
		HideIcon: o.HideIcon,
		FontSize: o.FontSize,
		Full:     o.Full,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, EmbedFonts: o.EmbedFonts}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	if o.Transparent {
		k.Background = "transparent"
	}
	if o.Outlines {
		k.Background += "+outlines"
	}
	return k
}

// String summarizes the layout-relevant options for logs.
func (o *Options) String() string {
	return fmt.Sprintf("%s %.0fpx cols=%d color=%q", o.VizType, o.Width, o.Cols, o.Color)
}
