// Package render provides output rendering for fishbone diagrams.
//
// # Overview
//
// This package holds the format conversion shared by every visualization:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Fishbone diagrams (in [fishbone] subpackages)
//   - Cause trees drawn by Graphviz (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := sink.RenderSVG(l)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Fishbone Diagrams
//
// A diagram is built into a visual tree, painted, and corrected by the
// layout engine before it is exported and drawn:
//   - [fishbone/tree]: visual tree construction and painting
//   - [fishbone/layout]: post-paint geometric corrections
//   - [fishbone/theme]: colors and metrics
//   - [fishbone/sink]: output formats (SVG, PNG, PDF, JSON)
//
// # Cause Trees
//
// The [nodelink] subpackage draws the cause hierarchy as a plain tree
// using Graphviz.
//
//	dot := nodelink.ToDOT(d, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [fishbone]: github.com/matzehuels/fishbone/pkg/render/fishbone
// [fishbone/tree]: github.com/matzehuels/fishbone/pkg/render/fishbone/tree
// [fishbone/layout]: github.com/matzehuels/fishbone/pkg/render/fishbone/layout
// [fishbone/theme]: github.com/matzehuels/fishbone/pkg/render/fishbone/theme
// [fishbone/sink]: github.com/matzehuels/fishbone/pkg/render/fishbone/sink
// [nodelink]: github.com/matzehuels/fishbone/pkg/render/nodelink
package render
