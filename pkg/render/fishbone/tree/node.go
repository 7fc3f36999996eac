package tree

import "github.com/matzehuels/fishbone/pkg/render/fishbone/layout"

// Role names what a node is in the diagram.
type Role int

const (
	RoleRoot Role = iota + 1
	RoleFishTail
	RoleCauses
	RoleTopGroup
	RoleSpine
	RoleBottomGroup
	RoleBranchContent
	RoleBranchLabel
	RoleBranchItem
	RoleCausesContainer
	RoleCauseContainer
	RoleCauseLabel
	RoleBorder
	RoleSubList
	RoleSubItem
	RoleGuideLine
	RoleEffect
	RoleTitleBlock
	RoleIcon
	RoleInnerTitle
	RoleTitle
)

var roleNames = map[Role]string{
	RoleRoot:            "root",
	RoleFishTail:        "fish-tail",
	RoleCauses:          "causes",
	RoleTopGroup:        "top-group",
	RoleSpine:           "spine",
	RoleBottomGroup:     "bottom-group",
	RoleBranchContent:   "branch-content",
	RoleBranchLabel:     "branch-label",
	RoleBranchItem:      "branch-item",
	RoleCausesContainer: "causes-container",
	RoleCauseContainer:  "cause-container",
	RoleCauseLabel:      "cause-label",
	RoleBorder:          "border",
	RoleSubList:         "sub-list",
	RoleSubItem:         "sub-item",
	RoleGuideLine:       "guide-line",
	RoleEffect:          "effect",
	RoleTitleBlock:      "title-block",
	RoleIcon:            "icon",
	RoleInnerTitle:      "inner-title",
	RoleTitle:           "title",
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return "unknown"
}

// Flow is the main axis of a box.
type Flow int

const (
	Row Flow = iota
	Column
)

// Align places a child on its parent's cross axis.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

// Pin anchors an absolutely positioned child to its parent's border box.
// Left and Top offsets are added afterwards.
type Pin int

const (
	PinTopLeft Pin = iota
	PinFill
	PinBottomLeft
	PinCenter
)

// Edges are per-side paddings.
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Node is one element of the visual tree.
//
// Text nodes are leaves sized by their text. Box nodes are sized by their
// in-flow children along Flow, separated by Gap, then padded and clamped to
// MinW and MinH. A set Style.Width overrides the computed width.
type Node struct {
	ID     layout.Handle
	Parent *Node
	Role   Role

	// Side and Branch locate nodes inside a branch; Branch is -1 elsewhere.
	Side    layout.Side
	HasSide bool
	Branch  int

	Text     string
	IsText   bool
	Bold     bool
	FontSize float64

	Flow       Flow
	Pad        Edges
	Gap        float64
	MinW, MinH float64
	Stretch    bool // fill the parent's cross axis
	Grow       bool // take the parent's free main-axis space
	Align      Align
	Pin        Pin

	Style layout.Style

	Children []*Node

	rect layout.Rect
	w, h float64
}

// Rect returns the painted rectangle.
func (n *Node) Rect() layout.Rect { return n.rect }

// InFlow reports whether n takes part in its parent's flow.
func (n *Node) InFlow() bool { return n.Style.Position != layout.Absolute }

// Walk visits n and its descendants in paint order until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}
