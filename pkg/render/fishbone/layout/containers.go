package layout

import "math"

// Divisor returns the spread factor for n cause containers: 2 when there
// are more than two, 3 otherwise.
func Divisor(n int) float64 {
	if n > 2 {
		return 2
	}
	return 3
}

// Position returns the integer offset of container i out of n along a guide
// line of the given width. The sequence starts at 0 and is non-decreasing.
func Position(i, n int, lineWidth float64) float64 {
	if n <= 1 {
		return 0
	}
	return math.Floor((float64(i) / float64(n-1)) * (lineWidth / Divisor(n)))
}

// ContainerOffset converts a position into the left offset of a container.
// Bottom branches are mirrored around the line's horizontal midpoint.
func ContainerOffset(side Side, lineWidth, pos float64) float64 {
	if side == Bottom {
		return lineWidth/2 - pos
	}
	return pos
}

type containerPlan struct {
	side       Side
	branch     int
	lineWidth  float64
	containers []Container
}

// PositionContainers spreads the cause containers of every located branch
// along its guide line. A single container is centered instead.
func (p *Pass) PositionContainers() {
	p.plans = p.plans[:0]
	for _, side := range Sides {
		for _, lb := range p.branches(side) {
			p.positionBranch(side, lb)
		}
	}
}

func (p *Pass) positionBranch(side Side, lb locatedBranch) {
	b := lb.branch
	if !b.Causes.Valid() {
		p.warnBranch(StageContainers, side, lb.index, "causes container not found")
		return
	}
	line, ok := p.measure(b.Line)
	if !ok {
		p.warnBranch(StageContainers, side, lb.index, "guide line not found")
		return
	}
	n := len(b.Containers)
	if n == 0 {
		p.warnBranch(StageContainers, side, lb.index, "no cause containers found")
		return
	}

	if n == 1 {
		p.write(b.Causes, Patch{}.SetJustify(JustifyCenter))
	} else {
		p.write(b.Causes, Patch{}.SetJustify(JustifyStart))
		for i, c := range b.Containers {
			if !c.Box.Valid() {
				p.warnContainer(StageContainers, side, lb.index, i, "cause container not found")
				continue
			}
			off := ContainerOffset(side, line.Width, Position(i, n, line.Width))
			p.write(c.Box, Patch{}.SetPosition(Relative).SetLeft(off))
		}
	}

	p.plans = append(p.plans, containerPlan{
		side:       side,
		branch:     lb.index,
		lineWidth:  line.Width,
		containers: b.Containers,
	})
}

// AlignBorders makes the border of every positioned container start where
// the container ends and span the full guide line.
func (p *Pass) AlignBorders() {
	for _, plan := range p.plans {
		for i, c := range plan.containers {
			box, ok := p.measure(c.Box)
			if !ok {
				p.warnContainer(StageBorders, plan.side, plan.branch, i, "cause container not found")
				continue
			}
			if !c.Border.Valid() {
				p.warnContainer(StageBorders, plan.side, plan.branch, i, "border not found")
				continue
			}
			p.write(c.Border, Patch{}.SetLeft(box.Width).SetWidth(plan.lineWidth))
		}
	}
}

func (p *Pass) measure(h Handle) (Rect, bool) {
	if !h.Valid() {
		return Rect{}, false
	}
	return p.surface.Measure(h)
}
