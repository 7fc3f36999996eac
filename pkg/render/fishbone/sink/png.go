package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/fonts"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	background string
	outlines   bool
	ruler      *fonts.Ruler
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithPNGBackground fills the image with a hex color. An empty string
// leaves it transparent. Defaults to white.
func WithPNGBackground(hex string) PNGOption {
	return func(r *pngRenderer) { r.background = hex }
}

// WithPNGOutlines strokes the box of every exported node.
func WithPNGOutlines() PNGOption { return func(r *pngRenderer) { r.outlines = true } }

// WithRuler sets the fonts used for text. Defaults to [fonts.Default].
func WithRuler(ru *fonts.Ruler) PNGOption { return func(r *pngRenderer) { r.ruler = ru } }

// RenderPNG rasterizes the layout natively. Glyph faces are loaded at the
// scaled size, so text stays sharp at any scale.
func RenderPNG(l diagram.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, background: "#ffffff"}
	for _, opt := range opts {
		opt(&r)
	}
	if r.ruler == nil {
		r.ruler = fonts.Default()
	}
	sc := buildScene(l, r.outlines)

	s := r.scale
	px := func(v float64) float64 { return v * s }
	w, h := int(math.Ceil(px(sc.width))), int(math.Ceil(px(sc.height)))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render png: empty canvas %dx%d", w, h)
	}

	dc := gg.NewContext(w, h)
	if r.background != "" {
		dc.SetHexColor(r.background)
		dc.Clear()
	}

	dc.SetHexColor(sc.color)
	for _, sp := range sc.spines {
		dc.DrawRectangle(px(sp.x), px(sp.y), px(sp.w), px(sp.h))
		dc.Fill()
	}
	dc.SetLineCapSquare()
	for _, ln := range sc.lines {
		dc.SetLineWidth(px(ln.width))
		dc.DrawLine(px(ln.x1), px(ln.y1), px(ln.x2), px(ln.y2))
		dc.Stroke()
	}
	dc.SetLineWidth(px(defaultStroke))
	for _, f := range sc.frames {
		dc.DrawRectangle(px(f.x), px(f.y), px(f.w), px(f.h))
		dc.Stroke()
	}
	for _, b := range sc.labels {
		dc.DrawRectangle(px(b.x), px(b.y), px(b.w), px(b.h))
		dc.Fill()
	}
	for _, g := range sc.glyphs {
		if err := drawGlyphPNG(dc, g, s); err != nil {
			return nil, err
		}
	}

	for _, t := range sc.texts {
		face, err := r.ruler.Face(px(t.size), t.bold)
		if err != nil {
			return nil, fmt.Errorf("render png: %w", err)
		}
		dc.SetFontFace(face)
		dc.SetHexColor(t.fill)
		dc.DrawStringAnchored(t.s, px(t.cx), px(t.cy), 0.5, 0.35)
	}

	if len(sc.outline) > 0 {
		dc.SetHexColor("#ff00ff")
		dc.SetLineWidth(1)
		dc.SetDash(2, 2)
		for _, o := range sc.outline {
			dc.DrawRectangle(px(o.x), px(o.y), px(o.w), px(o.h))
			dc.Stroke()
		}
		dc.SetDash()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawGlyphPNG(dc *gg.Context, g glyph, scale float64) error {
	paths, err := g.icon.Segments()
	if err != nil {
		return fmt.Errorf("render png: %s icon: %w", g.class, err)
	}
	size := math.Min(g.box.w, g.box.h)
	ox := g.box.x + (g.box.w-size)/2
	oy := g.box.y + (g.box.h-size)/2
	k := size / g.icon.viewBox
	at := func(p point) (float64, float64) {
		return (ox + p.x*k) * scale, (oy + p.y*k) * scale
	}

	for _, segs := range paths {
		for _, sg := range segs {
			switch sg.kind {
			case segMove:
				dc.NewSubPath()
				dc.MoveTo(at(sg.pts[0]))
			case segLine:
				dc.LineTo(at(sg.pts[0]))
			case segCubic:
				x1, y1 := at(sg.pts[0])
				x2, y2 := at(sg.pts[1])
				x3, y3 := at(sg.pts[2])
				dc.CubicTo(x1, y1, x2, y2, x3, y3)
			case segClose:
				dc.ClosePath()
			}
		}
		dc.Fill()
	}
	return nil
}
