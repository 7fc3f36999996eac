package nodelink

import (
	"context"
	"fmt"

	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/theme"
)

// Export creates a serializable tree layout for d.
//
// Graphviz computes positions during rendering, so the layout carries the
// DOT source. The SVG is rendered once to learn the frame size.
func Export(ctx context.Context, d *diagram.Diagram, color theme.Color, opts Options) (diagram.Layout, error) {
	if opts.Color == "" {
		opts.Color = color.Hex
	}
	dot := ToDOT(d, opts)
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return diagram.Layout{}, err
	}
	w, h, _ := svgSize(svg)
	return diagram.Layout{
		VizType:  diagram.VizTypeTree,
		DOT:      dot,
		Width:    w,
		Height:   h,
		Title:    d.Title,
		Color:    color.Name,
		ColorHex: color.Hex,
	}, nil
}

// Parse extracts the DOT string from a serialized tree layout.
func Parse(l diagram.Layout) (string, error) {
	if l.VizType != "" && l.VizType != diagram.VizTypeTree {
		return "", fmt.Errorf("invalid viz_type for tree layout: %q", l.VizType)
	}
	if l.DOT == "" {
		return "", fmt.Errorf("tree layout must contain DOT string")
	}
	return l.DOT, nil
}
