package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/render"
)

// Options configures cause tree rendering.
type Options struct {
	// Color is the hex stroke color of edges and cause nodes.
	// Defaults to the theme's default color.
	Color string

	// Full draws causes nested deeper than a fishbone can show. When
	// false, only [diagram.MaxDrawnDepth] levels are emitted.
	Full bool

	// Detailed appends the number of direct children to each label.
	Detailed bool
}

const defaultColor = "#111111"

// ToDOT converts a diagram to Graphviz DOT. Causes point at what they
// explain, so with left-to-right ranking the effect ends up on the right,
// where the fish head sits in the fishbone view.
func ToDOT(d *diagram.Diagram, opts Options) string {
	color := opts.Color
	if color == "" {
		color = defaultColor
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded\", color=%q, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n", color)
	fmt.Fprintf(&buf, "  edge [color=%q, arrowsize=0.7];\n", color)
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,filled\", fillcolor=%q, fontcolor=white, fontsize=16];\n",
		effectID, d.Title, color)

	depth := diagram.MaxDrawnDepth
	if opts.Full {
		depth = -1
	}
	var walk func(parent string, causes []diagram.Cause, level int)
	walk = func(parent string, causes []diagram.Cause, level int) {
		if depth >= 0 && level > depth {
			return
		}
		for i, c := range causes {
			id := nodeID(parent, i)
			fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(c, level, opts.Detailed), ", "))
			fmt.Fprintf(&buf, "  %q -> %q;\n", id, parent)
			walk(id, c.Children, level+1)
		}
	}
	walk(effectID, d.Causes, 1)

	buf.WriteString("}\n")
	return buf.String()
}

const effectID = "effect"

// nodeID derives a stable id from the cause's position, so repeated names
// stay distinct.
func nodeID(parent string, i int) string {
	if parent == effectID {
		return "c" + strconv.Itoa(i)
	}
	return parent + "_" + strconv.Itoa(i)
}

func fmtLabel(c diagram.Cause, detailed bool) string {
	if !detailed || len(c.Children) == 0 {
		return c.Name
	}
	return fmt.Sprintf("%s\n(%d)", c.Name, len(c.Children))
}

func fmtAttrs(c diagram.Cause, level int, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(c, detailed))}
	switch level {
	case 1:
		attrs = append(attrs, "style=\"rounded,bold\"", "fontsize=15")
	case 2:
	default:
		attrs = append(attrs, "shape=plaintext")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the drawing scales with its
// container and starts at the origin.
func normalizeViewBox(svg []byte) []byte {
	w, h, ok := svgSize(svg)
	if !ok {
		return svg
	}
	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// svgSize reads the viewBox extent of a Graphviz SVG.
func svgSize(svg []byte) (w, h float64, ok bool) {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return 0, 0, false
	}
	w, _ = strconv.ParseFloat(string(match[3]), 64)
	h, _ = strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return 0, 0, false
	}
	return w, h, true
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
