package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Handle identifies a node of the visual tree. The zero value means the
// node is absent.
type Handle int

// NoHandle is the absent handle.
const NoHandle Handle = 0

// Valid reports whether h refers to a node.
func (h Handle) Valid() bool { return h > 0 }

// Rect is a measured bounding rectangle in diagram coordinates.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Width: r.Width, Height: r.Height}
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	left := math.Min(r.Left, o.Left)
	top := math.Min(r.Top, o.Top)
	right := math.Max(r.Right(), o.Right())
	bottom := math.Max(r.Bottom(), o.Bottom())
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Point is a coordinate pair.
type Point struct{ X, Y float64 }

// Sub returns p - q componentwise.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Length is an optional pixel length. The zero value is unset, which reads
// as 0 wherever a number is needed.
type Length struct {
	Value float64
	Set   bool
}

// Px returns a set length of v pixels.
func Px(v float64) Length { return Length{Value: v, Set: true} }

// Float returns the numeric value, 0 when unset.
func (l Length) Float() float64 {
	if !l.Set {
		return 0
	}
	return l.Value
}

// String formats l as "30px", or "" when unset.
func (l Length) String() string {
	if !l.Set {
		return ""
	}
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + "px"
}

// ParseLength parses "30px", "30" or "" (unset).
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Length{}, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
	if err != nil {
		return Length{}, fmt.Errorf("parse length %q: %w", s, err)
	}
	return Px(v), nil
}

// PositionMode is the positioning mode of a node.
type PositionMode int

const (
	Static PositionMode = iota
	Relative
	Absolute
)

func (p PositionMode) String() string {
	switch p {
	case Relative:
		return "relative"
	case Absolute:
		return "absolute"
	default:
		return "static"
	}
}

// Justify is the main-axis alignment of a container's children.
type Justify int

const (
	JustifyStart Justify = iota
	JustifyCenter
)

func (j Justify) String() string {
	if j == JustifyCenter {
		return "center"
	}
	return "start"
}

// Style holds the mutable positioning properties of a node.
type Style struct {
	Position PositionMode
	Left     Length
	Top      Length
	Width    Length
	Justify  Justify
}

// Field selects which properties of a [Patch] are written.
type Field uint8

const (
	FieldPosition Field = 1 << iota
	FieldLeft
	FieldTop
	FieldWidth
	FieldJustify
)

// Patch is a partial write of positioning properties.
type Patch struct {
	Fields Field
	Style  Style
}

// Has reports whether f is written by p.
func (p Patch) Has(f Field) bool { return p.Fields&f != 0 }

// SetPosition returns p with the position mode written.
func (p Patch) SetPosition(pos PositionMode) Patch {
	p.Fields |= FieldPosition
	p.Style.Position = pos
	return p
}

// SetLeft returns p with the left offset written.
func (p Patch) SetLeft(v float64) Patch {
	p.Fields |= FieldLeft
	p.Style.Left = Px(v)
	return p
}

// SetTop returns p with the top offset written.
func (p Patch) SetTop(v float64) Patch {
	p.Fields |= FieldTop
	p.Style.Top = Px(v)
	return p
}

// SetWidth returns p with the width written.
func (p Patch) SetWidth(v float64) Patch {
	p.Fields |= FieldWidth
	p.Style.Width = Px(v)
	return p
}

// SetJustify returns p with the justify mode written.
func (p Patch) SetJustify(j Justify) Patch {
	p.Fields |= FieldJustify
	p.Style.Justify = j
	return p
}

// ApplyTo returns s with the fields of p written over it.
func (p Patch) ApplyTo(s Style) Style {
	if p.Has(FieldPosition) {
		s.Position = p.Style.Position
	}
	if p.Has(FieldLeft) {
		s.Left = p.Style.Left
	}
	if p.Has(FieldTop) {
		s.Top = p.Style.Top
	}
	if p.Has(FieldWidth) {
		s.Width = p.Style.Width
	}
	if p.Has(FieldJustify) {
		s.Justify = p.Style.Justify
	}
	return s
}

// Merge returns p overlaid with q; fields written by q win.
func (p Patch) Merge(q Patch) Patch {
	return Patch{Fields: p.Fields | q.Fields, Style: q.ApplyTo(p.Style)}
}

// String renders the written fields in CSS-like notation.
func (p Patch) String() string {
	var parts []string
	if p.Has(FieldPosition) {
		parts = append(parts, "position: "+p.Style.Position.String())
	}
	if p.Has(FieldLeft) {
		parts = append(parts, "left: "+p.Style.Left.String())
	}
	if p.Has(FieldTop) {
		parts = append(parts, "top: "+p.Style.Top.String())
	}
	if p.Has(FieldWidth) {
		parts = append(parts, "width: "+p.Style.Width.String())
	}
	if p.Has(FieldJustify) {
		parts = append(parts, "justify: "+p.Style.Justify.String())
	}
	return strings.Join(parts, "; ")
}
