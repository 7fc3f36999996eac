package tree

import (
	"math"

	"github.com/matzehuels/fishbone/pkg/render/fishbone/layout"
)

// Paint recomputes every rectangle from scratch: sizes bottom-up, then
// positions top-down starting at the origin. Relative offsets move a node
// and its subtree without affecting siblings.
func (t *Tree) Paint() {
	t.measure(t.Root)
	t.place(t.Root, layout.Rect{Width: t.Root.w, Height: t.Root.h})
	t.painted = true
	t.dirty = false
}

func (t *Tree) measure(n *Node) {
	for _, c := range n.Children {
		t.measure(c)
	}

	var w, h float64
	if n.IsText {
		w = t.measurer.TextWidth(n.Text, n.FontSize, n.Bold)
		h = t.measurer.LineHeight(n.FontSize, n.Bold)
	} else {
		var main, cross float64
		count := 0
		for _, c := range n.Children {
			if !c.InFlow() {
				continue
			}
			cm, cc := axes(n.Flow, c.w, c.h)
			main += cm
			cross = math.Max(cross, cc)
			count++
		}
		if count > 1 {
			main += n.Gap * float64(count-1)
		}
		w, h = axes(n.Flow, main, cross)
	}

	w += n.Pad.Left + n.Pad.Right
	h += n.Pad.Top + n.Pad.Bottom
	w = math.Max(w, n.MinW)
	h = math.Max(h, n.MinH)
	if n.Style.Width.Set {
		w = n.Style.Width.Value
	}
	n.w, n.h = w, h
}

func (t *Tree) place(n *Node, r layout.Rect) {
	n.rect = r
	inner := layout.Rect{
		Left:   r.Left + n.Pad.Left,
		Top:    r.Top + n.Pad.Top,
		Width:  math.Max(0, r.Width-n.Pad.Left-n.Pad.Right),
		Height: math.Max(0, r.Height-n.Pad.Top-n.Pad.Bottom),
	}
	innerMain, innerCross := axes(n.Flow, inner.Width, inner.Height)

	var flow []*Node
	total, growers := 0.0, 0
	for _, c := range n.Children {
		if !c.InFlow() {
			continue
		}
		flow = append(flow, c)
		cm, _ := axes(n.Flow, c.w, c.h)
		total += cm
		if c.Grow {
			growers++
		}
	}
	if len(flow) > 1 {
		total += n.Gap * float64(len(flow)-1)
	}

	free := innerMain - total
	extra := 0.0
	if free > 0 && growers > 0 {
		extra = free / float64(growers)
		free = 0
	}
	centered := n.Style.Justify == layout.JustifyCenter

	cursor := 0.0
	if centered && free > 0 {
		cursor = free / 2
	}
	for _, c := range flow {
		cm, cc := axes(n.Flow, c.w, c.h)
		if c.Grow {
			cm += extra
		}
		if c.Stretch {
			cc = innerCross
		}
		align := c.Align
		if centered && !c.Stretch {
			align = AlignCenter
		}
		off := 0.0
		switch align {
		case AlignCenter:
			off = (innerCross - cc) / 2
		case AlignEnd:
			off = innerCross - cc
		}

		var cr layout.Rect
		if n.Flow == Row {
			cr = layout.Rect{Left: inner.Left + cursor, Top: inner.Top + off, Width: cm, Height: cc}
		} else {
			cr = layout.Rect{Left: inner.Left + off, Top: inner.Top + cursor, Width: cc, Height: cm}
		}
		if c.Style.Position == layout.Relative {
			cr = cr.Translate(c.Style.Left.Float(), c.Style.Top.Float())
		}
		t.place(c, cr)
		cursor += cm + n.Gap
	}

	for _, c := range n.Children {
		if c.InFlow() {
			continue
		}
		t.place(c, pinned(c, r))
	}
}

func pinned(c *Node, parent layout.Rect) layout.Rect {
	dx, dy := c.Style.Left.Float(), c.Style.Top.Float()
	switch c.Pin {
	case PinFill:
		return parent.Translate(dx, dy)
	case PinBottomLeft:
		return layout.Rect{Left: parent.Left + dx, Top: parent.Bottom() - c.h + dy, Width: c.w, Height: c.h}
	case PinCenter:
		return layout.Rect{
			Left:   parent.Left + (parent.Width-c.w)/2 + dx,
			Top:    parent.Top + (parent.Height-c.h)/2 + dy,
			Width:  c.w,
			Height: c.h,
		}
	default:
		return layout.Rect{Left: parent.Left + dx, Top: parent.Top + dy, Width: c.w, Height: c.h}
	}
}

// axes maps (width, height) to (main, cross) for f, and back.
func axes(f Flow, a, b float64) (float64, float64) {
	if f == Row {
		return a, b
	}
	return b, a
}
