// Package nodelink renders the cause hierarchy of a diagram as a plain
// node-link tree.
//
// # Overview
//
// This is the "tree" visualization: the effect is a filled box, every
// cause points at what it explains, and Graphviz does the layout. It is an
// alternative to the fishbone view when labels are long or the hierarchy
// is deep.
//
// # Usage
//
//	dot := nodelink.ToDOT(d, nodelink.Options{Color: "#00c0ef"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// [Export] and [Parse] move the DOT source in and out of a
// [diagram.Layout] so tree layouts can be cached like fishbone ones.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
//
// [diagram.Layout]: github.com/matzehuels/fishbone/pkg/diagram.Layout
package nodelink
