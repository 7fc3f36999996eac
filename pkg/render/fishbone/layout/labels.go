package layout

// LabelAnchor returns the reference point of a branch label: right of its
// horizontal center, on the edge facing the spine.
func LabelAnchor(side Side, label Rect) Point {
	x := label.Left + label.Width/LabelBias
	if side == Bottom {
		return Point{X: x, Y: label.Top}
	}
	return Point{X: x, Y: label.Bottom()}
}

// LineTarget returns the start of a guide line: its top-left corner on the
// top side, its bottom-left corner on the bottom side.
func LineTarget(side Side, line Rect) Point {
	if side == Bottom {
		return Point{X: line.Left, Y: line.Bottom()}
	}
	return Point{X: line.Left, Y: line.Top}
}

// AnchorLabels moves every branch label so its anchor touches the start of
// its guide line.
//
// The delta is added to the label's current offsets. Because the measured
// rectangle already includes those offsets, the anchor lands on the target
// after one pass and later passes over unchanged geometry write the same
// values again.
func (p *Pass) AnchorLabels() {
	for _, side := range Sides {
		for i, b := range p.refs.Branches(side) {
			p.anchorLabel(side, i, b)
		}
	}
}

func (p *Pass) anchorLabel(side Side, i int, b Branch) {
	label, ok := p.measure(b.Label)
	if !ok {
		p.warnBranch(StageLabels, side, i, "branch label not found")
		return
	}
	line, ok := p.measure(b.Line)
	if !ok {
		p.warnBranch(StageLabels, side, i, "guide line not found")
		return
	}

	delta := LineTarget(side, line).Sub(LabelAnchor(side, label))
	cur := p.surface.Style(b.Label)
	p.write(b.Label, Patch{}.
		SetPosition(Relative).
		SetLeft(cur.Left.Float()+delta.X).
		SetTop(cur.Top.Float()+delta.Y))
}
