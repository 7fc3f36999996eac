// Package sink draws exported fishbone layouts.
//
// Every sink reads a [diagram.Layout], so a layout loaded from a file or a
// cache renders the same as one fresh from the engine.
//
//   - [RenderSVG]: vector output drawn with svgo
//   - [RenderPNG]: native raster output drawn with gg
//   - [RenderPDF]: SVG converted by rsvg-convert
//   - [RenderJSON]: the layout itself
//
// Guide lines are drawn as diagonals across their node box. Connector
// borders are clipped where they meet the guide line of their branch, which
// is why they are excluded from the exported frame.
//
// [diagram.Layout]: github.com/matzehuels/fishbone/pkg/diagram.Layout
package sink
