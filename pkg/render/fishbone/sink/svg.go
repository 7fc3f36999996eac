package sink

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/fonts"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	embedFonts bool
	outlines   bool
}

// WithBackground fills the canvas with a CSS color. An empty string leaves
// it transparent. Defaults to white.
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithEmbeddedFonts inlines the Go fonts as base64 so the output renders
// the same without them installed.
func WithEmbeddedFonts() SVGOption { return func(r *svgRenderer) { r.embedFonts = true } }

// WithOutlines strokes the box of every exported node, for debugging.
func WithOutlines() SVGOption { return func(r *svgRenderer) { r.outlines = true } }

// RenderSVG draws a fishbone layout. Element ids are prefixed with the
// layout instance so several diagrams can share one page.
func RenderSVG(l diagram.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{background: "#ffffff"}
	for _, opt := range opts {
		opt(&r)
	}
	sc := buildScene(l, r.outlines)

	var buf bytes.Buffer
	w, h := ceil(sc.width), ceil(sc.height)
	canvas := svg.New(&buf)
	canvas.Startview(w, h, 0, 0, w, h)
	if sc.title != "" {
		canvas.Title(sc.title)
	}
	canvas.Style("text/css", r.css(sc))

	id := sc.instance
	if id == "" {
		id = "fishbone"
	}
	canvas.Gid(id)
	if r.background != "" {
		canvas.Rect(0, 0, w, h, "fill:"+r.background)
	}

	for _, s := range sc.spines {
		canvas.Rect(round(s.x), round(s.y), round(s.w), round(s.h), `class="spine"`)
	}
	for _, ln := range sc.lines {
		canvas.Line(round(ln.x1), round(ln.y1), round(ln.x2), round(ln.y2),
			fmt.Sprintf(`class="%s"`, ln.class), "stroke-width:"+num(ln.width))
	}
	for _, f := range sc.frames {
		canvas.Rect(round(f.x), round(f.y), round(f.w), round(f.h), `class="frame"`)
	}
	for _, b := range sc.labels {
		canvas.Rect(round(b.x), round(b.y), round(b.w), round(b.h), `class="label"`)
	}
	for _, g := range sc.glyphs {
		drawGlyphSVG(canvas, g, sc.color)
	}
	for _, t := range sc.texts {
		style := "font-size:" + num(t.size) + "px;fill:" + t.fill
		if t.bold {
			style += ";font-weight:bold"
		}
		canvas.Text(round(t.cx), round(t.cy), t.s, fmt.Sprintf(`class="%s"`, t.class), style)
	}
	for _, o := range sc.outline {
		canvas.Rect(round(o.x), round(o.y), round(o.w), round(o.h), `class="outline"`)
	}

	canvas.Gend()
	canvas.End()
	return buf.Bytes()
}

func (r svgRenderer) css(sc scene) string {
	var buf bytes.Buffer
	if r.embedFonts {
		fmt.Fprintf(&buf, "@font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s); }\n",
			fonts.FontFamily, fonts.RegularTTFBase64())
		fmt.Fprintf(&buf, "@font-face { font-family: '%s'; font-weight: bold; src: url(data:font/ttf;base64,%s); }\n",
			fonts.FontFamily, fonts.BoldTTFBase64())
	}
	fmt.Fprintf(&buf, "text { font-family: %s; text-anchor: middle; dominant-baseline: central; }\n", fonts.FallbackFontFamily)
	fmt.Fprintf(&buf, ".spine, .label { fill: %s; }\n", sc.color)
	fmt.Fprintf(&buf, ".guide, .connector { stroke: %s; stroke-linecap: square; }\n", sc.color)
	fmt.Fprintf(&buf, ".frame { fill: none; stroke: %s; stroke-width: %s; }\n", sc.color, num(defaultStroke))
	buf.WriteString(".outline { fill: none; stroke: #ff00ff; stroke-width: 0.5; stroke-dasharray: 2 2; }\n")
	return buf.String()
}

func drawGlyphSVG(canvas *svg.SVG, g glyph, fill string) {
	ic := g.icon
	size := math.Min(g.box.w, g.box.h)
	x := g.box.x + (g.box.w-size)/2
	y := g.box.y + (g.box.h-size)/2

	canvas.Group(fmt.Sprintf(`class="%s"`, g.class),
		fmt.Sprintf(`transform="translate(%s,%s) scale(%s)"`, num(x), num(y), num(size/ic.viewBox)))
	if ic.transform != "" {
		canvas.Gtransform(ic.transform)
	}
	for i := range ic.paths {
		canvas.Path(ic.d(i), "fill:"+fill)
	}
	if ic.transform != "" {
		canvas.Gend()
	}
	canvas.Gend()
}

func round(v float64) int { return int(math.Round(v)) }
func ceil(v float64) int  { return int(math.Ceil(v)) }

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
