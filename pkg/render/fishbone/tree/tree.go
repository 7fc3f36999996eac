package tree

import (
	"math"

	"github.com/google/uuid"

	"github.com/matzehuels/fishbone/pkg/fonts"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/layout"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/theme"
)

// Measurer sizes text. [fonts.Ruler] is the production implementation.
type Measurer interface {
	TextWidth(text string, size float64, bold bool) float64
	LineHeight(size float64, bold bool) float64
}

// Defaults for [Options].
const (
	DefaultWidth = 1200.0
	DefaultCols  = 12
	GridCols     = 12
)

// Options controls tree construction.
type Options struct {
	Width    float64 // viewport width in pixels
	Cols     int     // grid columns the diagram spans, out of 12
	Color    theme.Color
	HideIcon bool
	Metrics  *theme.Metrics
	Measurer Measurer
}

func (o *Options) setDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Cols <= 0 || o.Cols > GridCols {
		o.Cols = DefaultCols
	}
	if o.Color.Hex == "" {
		o.Color = theme.Default()
	}
	if o.Metrics == nil {
		m := theme.DefaultMetrics()
		o.Metrics = &m
	}
	if o.Measurer == nil {
		o.Measurer = fonts.Default()
	}
}

// Tree is a built visual tree. It is not safe for concurrent use.
type Tree struct {
	// ID is unique per tree and scopes element ids in rendered output.
	ID string

	Root *Node

	// Hidden counts causes nested too deep to be drawn.
	Hidden int

	title    string
	opts     Options
	metrics  theme.Metrics
	measurer Measurer
	nodes    []*Node
	refs     layout.Refs
	items    map[layout.Side][]*Node
	painted  bool
	dirty    bool
}

var _ layout.Surface = (*Tree)(nil)

// Options returns the options the tree was built with, defaults applied.
func (t *Tree) Options() Options { return t.opts }

// Node returns the node behind h.
func (t *Tree) Node(h layout.Handle) (*Node, bool) {
	i := int(h) - 1
	if i < 0 || i >= len(t.nodes) {
		return nil, false
	}
	return t.nodes[i], true
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Refs returns the handle graph for the layout engine.
func (t *Tree) Refs() layout.Refs { return t.refs }

// Painted reports whether the geometry reflects every applied patch.
func (t *Tree) Painted() bool { return t.painted && !t.dirty }

// Resize changes the viewport width. Branch widths follow; the tree must
// be repainted before it is measured again.
func (t *Tree) Resize(width float64) {
	if width <= 0 {
		width = DefaultWidth
	}
	t.opts.Width = width
	m := t.metrics

	fixed := 2 * m.Margin
	if !t.opts.HideIcon {
		fixed += 2 * m.IconSize
	} else {
		fixed += t.measurer.TextWidth(t.title, m.TitleFontSize, true) + 2*m.TitlePad
	}
	available := width*float64(t.opts.Cols)/GridCols - fixed

	for _, side := range layout.Sides {
		items := t.items[side]
		if len(items) == 0 {
			continue
		}
		n := float64(len(items))
		w := math.Max(m.BranchMinWidth, (available-m.BranchGap*(n-1))/n)
		for _, it := range items {
			it.MinW = w
		}
	}
	t.dirty = true
}

// =============================================================================
// layout.Surface
// =============================================================================

// Measure returns the painted rectangle of h. Nothing is measurable before
// the first paint.
func (t *Tree) Measure(h layout.Handle) (layout.Rect, bool) {
	if !t.painted {
		return layout.Rect{}, false
	}
	n, ok := t.Node(h)
	if !ok {
		return layout.Rect{}, false
	}
	return n.rect, true
}

// Style returns the positioning properties of h.
func (t *Tree) Style(h layout.Handle) layout.Style {
	if n, ok := t.Node(h); ok {
		return n.Style
	}
	return layout.Style{}
}

// Apply writes p onto h.
func (t *Tree) Apply(h layout.Handle, p layout.Patch) {
	if n, ok := t.Node(h); ok {
		n.Style = p.ApplyTo(n.Style)
		t.dirty = true
	}
}

// Reflow repaints the tree.
func (t *Tree) Reflow() { t.Paint() }

func newID() string { return uuid.NewString() }
