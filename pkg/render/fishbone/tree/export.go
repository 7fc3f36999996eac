package tree

import (
	"math"

	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/layout"
)

// Export serializes the painted tree. Coordinates are shifted so that the
// bounding box of the nodes, offsets included, starts at the margin.
// The tree is repainted first if patches are pending.
func (t *Tree) Export(warnings []layout.Warning) diagram.Layout {
	if !t.Painted() {
		t.Paint()
	}

	// Borders run to the end of their guide line and are clipped there when
	// drawn, so they do not widen the frame.
	bounds := t.Root.rect
	t.Root.Walk(func(n *Node) bool {
		if n.Role != RoleBorder {
			bounds = bounds.Union(n.rect)
		}
		return true
	})
	m := t.metrics.Margin
	dx, dy := m-bounds.Left, m-bounds.Top

	l := diagram.Layout{
		VizType:  diagram.VizTypeFishbone,
		Width:    math.Ceil(bounds.Width + 2*m),
		Height:   math.Ceil(bounds.Height + 2*m),
		Title:    t.title,
		Color:    t.opts.Color.Name,
		ColorHex: t.opts.Color.Hex,
		HideIcon: t.opts.HideIcon,
		FontSize: t.metrics.FontSize,
		Instance: t.ID,
	}

	t.Root.Walk(func(n *Node) bool {
		r := n.rect.Translate(dx, dy)
		node := diagram.Node{
			ID:       int(n.ID),
			Role:     n.Role.String(),
			Branch:   n.Branch,
			Text:     n.Text,
			Bold:     n.Bold,
			FontSize: n.FontSize,
			X:        r.Left,
			Y:        r.Top,
			Width:    r.Width,
			Height:   r.Height,
			Style:    styleString(n.Style),
		}
		if n.Parent != nil {
			node.Parent = int(n.Parent.ID)
		}
		if n.HasSide {
			node.Side = n.Side.String()
		}
		l.Nodes = append(l.Nodes, node)
		return true
	})

	for _, w := range warnings {
		l.Warnings = append(l.Warnings, w.String())
	}
	return l
}

// styleString renders the non-default properties of s.
func styleString(s layout.Style) string {
	var p layout.Patch
	if s.Position != layout.Static {
		p = p.SetPosition(s.Position)
	}
	if s.Left.Set {
		p = p.SetLeft(s.Left.Value)
	}
	if s.Top.Set {
		p = p.SetTop(s.Top.Value)
	}
	if s.Width.Set {
		p = p.SetWidth(s.Width.Value)
	}
	if s.Justify != layout.JustifyStart {
		p = p.SetJustify(s.Justify)
	}
	return p.String()
}
