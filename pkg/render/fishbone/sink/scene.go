package sink

import (
	"math"

	"github.com/matzehuels/fishbone/pkg/diagram"
)

// Node roles as exported by the visual tree.
const (
	roleSpine          = "spine"
	roleGuideLine      = "guide-line"
	roleBorder         = "border"
	roleBranchLabel    = "branch-label"
	roleCauseLabel     = "cause-label"
	roleSubItem        = "sub-item"
	roleCauseContainer = "cause-container"
	roleTitleBlock     = "title-block"
	roleTitle          = "title"
	roleInnerTitle     = "inner-title"
	roleIcon           = "icon"
	roleFishTail       = "fish-tail"
)

const (
	textColor      = "#333333"
	labelTextColor = "#ffffff"
	defaultStroke  = 2.0
)

type rect struct{ x, y, w, h float64 }

type line struct {
	x1, y1, x2, y2 float64
	width          float64
	class          string
}

type text struct {
	cx, cy float64
	s      string
	size   float64
	bold   bool
	fill   string
	class  string
}

type glyph struct {
	icon  *icon
	box   rect
	class string
}

// scene is the drawable content of a fishbone layout, independent of the
// output format.
type scene struct {
	width, height float64
	title         string
	instance      string
	color         string

	spines  []rect
	frames  []rect // stroked, unfilled
	labels  []rect // filled label boxes
	lines   []line
	texts   []text
	glyphs  []glyph
	outline []rect
}

type branchKey struct {
	side   string
	branch int
}

// buildScene turns exported nodes into primitives. Guide lines run from the
// label end toward the spine: top-left to bottom-right on the top side and
// bottom-left to top-right on the bottom side. Connector borders are
// clipped where they meet their branch's guide line.
func buildScene(l diagram.Layout, outlines bool) scene {
	sc := scene{
		width:    l.Width,
		height:   l.Height,
		title:    l.Title,
		instance: l.Instance,
		color:    l.ColorHex,
	}
	if sc.color == "" {
		sc.color = "#111111"
	}

	byID := make(map[int]diagram.Node, len(l.Nodes))
	guides := make(map[branchKey]diagram.Node)
	for _, n := range l.Nodes {
		byID[n.ID] = n
		if n.Role == roleGuideLine {
			guides[branchKey{n.Side, n.Branch}] = n
		}
	}

	fontSize := func(n diagram.Node) float64 {
		if n.FontSize > 0 {
			return n.FontSize
		}
		if l.FontSize > 0 {
			return l.FontSize
		}
		return 14
	}
	label := func(n diagram.Node, fill, class string) text {
		return text{
			cx: n.X + n.Width/2, cy: n.Y + n.Height/2,
			s: n.Text, size: fontSize(n), bold: n.Bold, fill: fill, class: class,
		}
	}

	for _, n := range l.Nodes {
		r := rect{n.X, n.Y, n.Width, n.Height}
		if outlines {
			sc.outline = append(sc.outline, r)
		}
		switch n.Role {
		case roleSpine:
			sc.spines = append(sc.spines, r)
		case roleGuideLine:
			ln := line{x1: r.x, y1: r.y, x2: r.x + r.w, y2: r.y + r.h, width: defaultStroke, class: "guide"}
			if n.Side == "bottom" {
				ln.y1, ln.y2 = r.y+r.h, r.y
			}
			sc.lines = append(sc.lines, ln)
		case roleBorder:
			g, ok := guides[branchKey{n.Side, n.Branch}]
			if !ok {
				continue
			}
			start := r.x
			if c, ok := byID[n.Parent]; ok && c.Role == roleCauseContainer {
				start = c.X
			}
			if ln, ok := connector(r, start, g); ok {
				sc.lines = append(sc.lines, ln)
			}
		case roleBranchLabel:
			sc.labels = append(sc.labels, r)
			sc.texts = append(sc.texts, label(n, labelTextColor, "branch-label"))
		case roleCauseLabel:
			sc.texts = append(sc.texts, label(n, textColor, "cause-label"))
		case roleSubItem:
			sc.texts = append(sc.texts, label(n, textColor, "sub-item"))
		case roleTitle:
			sc.texts = append(sc.texts, label(n, textColor, "title"))
		case roleInnerTitle:
			sc.texts = append(sc.texts, label(n, labelTextColor, "inner-title"))
		case roleTitleBlock:
			if l.HideIcon {
				sc.frames = append(sc.frames, r)
			}
		case roleIcon:
			sc.glyphs = append(sc.glyphs, glyph{icon: headIcon, box: r, class: "head"})
		case roleFishTail:
			sc.glyphs = append(sc.glyphs, glyph{icon: tailIcon, box: r, class: "tail"})
		}
	}
	return sc
}

// connector returns the horizontal line under a cause container, from
// start to where border b meets guide line g.
func connector(b rect, start float64, g diagram.Node) (line, bool) {
	y := b.y + b.h/2
	if g.Height <= 0 {
		return line{}, false
	}
	t := (y - g.Y) / g.Height
	if g.Side == "bottom" {
		t = (g.Y + g.Height - y) / g.Height
	}
	end := b.x + b.w
	if t >= 0 && t <= 1 {
		end = math.Min(end, g.X+t*g.Width)
	}
	if end <= start {
		return line{}, false
	}
	width := b.h
	if width <= 0 {
		width = defaultStroke
	}
	return line{x1: start, y1: y, x2: end, y2: y, width: width, class: "connector"}, true
}
