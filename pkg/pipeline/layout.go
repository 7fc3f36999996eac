package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/observability"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/layout"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/theme"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/tree"
	"github.com/matzehuels/fishbone/pkg/render/nodelink"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout generates a complete layout for any visualization type.
// This is the unified entry point for generating serializable layout data.
//
// Fishbone layouts carry every positioned node plus the engine warnings;
// tree layouts carry the DOT source for Graphviz.
func GenerateLayout(ctx context.Context, d *diagram.Diagram, opts Options) (diagram.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return diagram.Layout{}, err
	}

	observability.Pipeline().OnLayoutStart(ctx, opts.VizType, d.CauseCount())
	start := time.Now()

	var (
		l   diagram.Layout
		err error
	)
	if opts.IsTree() {
		l, err = generateTreeLayout(ctx, d, opts)
	} else {
		l, err = generateFishboneLayout(ctx, d, opts)
	}

	observability.Pipeline().OnLayoutComplete(ctx, opts.VizType, time.Since(start), err)
	return l, err
}

// =============================================================================
// Fishbone
// =============================================================================

// BuildTree builds the painted visual tree for d without running the
// engine. Callers that resize the same tree repeatedly (the preview) keep
// it and call [Relayout].
func BuildTree(d *diagram.Diagram, opts Options) (*tree.Tree, error) {
	color, err := theme.Resolve(opts.Color)
	if err != nil {
		return nil, err
	}
	topts := tree.Options{
		Width:    opts.Width,
		Cols:     opts.Cols,
		Color:    color,
		HideIcon: opts.HideIcon,
	}
	if opts.FontSize > 0 {
		m := theme.DefaultMetrics()
		m = m.Scaled(opts.FontSize / m.FontSize)
		topts.Metrics = &m
	}
	return tree.Build(d, topts), nil
}

// Relayout runs the layout engine over t and exports the result.
func Relayout(ctx context.Context, t *tree.Tree, opts Options) (diagram.Layout, error) {
	opts.setLogger()
	eng := layout.New(layout.WithLogger(opts.Logger))
	res, err := eng.Run(ctx, t, t.Refs())
	if err != nil {
		return diagram.Layout{}, err
	}
	if t.Hidden > 0 {
		opts.Logger.Debug("causes beyond drawn depth omitted", "hidden", t.Hidden)
	}
	return t.Export(res.Warnings), nil
}

func generateFishboneLayout(ctx context.Context, d *diagram.Diagram, opts Options) (diagram.Layout, error) {
	t, err := BuildTree(d, opts)
	if err != nil {
		return diagram.Layout{}, err
	}
	return Relayout(ctx, t, opts)
}

// =============================================================================
// Tree
// =============================================================================

func generateTreeLayout(ctx context.Context, d *diagram.Diagram, opts Options) (diagram.Layout, error) {
	color, err := theme.Resolve(opts.Color)
	if err != nil {
		return diagram.Layout{}, err
	}
	return nodelink.Export(ctx, d, color, nodelink.Options{Full: opts.Full})
}
