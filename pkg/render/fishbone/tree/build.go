package tree

import (
	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/layout"
)

// Build maps d to a visual tree sized for opts.Width. The tree is not
// painted yet.
func Build(d *diagram.Diagram, opts Options) *Tree {
	opts.setDefaults()
	t := &Tree{
		ID:       newID(),
		title:    d.Title,
		opts:     opts,
		metrics:  *opts.Metrics,
		measurer: opts.Measurer,
		items:    make(map[layout.Side][]*Node),
	}
	m := t.metrics

	t.Root = t.box(nil, RoleRoot, Row)

	if !opts.HideIcon {
		tail := t.box(t.Root, RoleFishTail, Row)
		tail.MinW, tail.MinH = m.IconSize, m.IconSize
		tail.Style.Position = layout.Relative
		t.refs.FishTail = tail.ID
	}

	causes := t.box(t.Root, RoleCauses, Column)
	top, bottom := d.Split()

	topGroup := t.box(causes, RoleTopGroup, Row)
	topGroup.Stretch = true
	topGroup.Gap = m.BranchGap
	t.refs.TopGroup = topGroup.ID
	for i, c := range top {
		t.refs.TopBranches = append(t.refs.TopBranches, t.branch(topGroup, layout.Top, i, c))
	}

	spine := t.box(causes, RoleSpine, Row)
	spine.Stretch = true
	spine.MinH = m.SpineHeight

	bottomGroup := t.box(causes, RoleBottomGroup, Row)
	bottomGroup.Stretch = true
	bottomGroup.Gap = m.BranchGap
	t.refs.BottomGroup = bottomGroup.ID
	for i, c := range bottom {
		t.refs.BottomBranches = append(t.refs.BottomBranches, t.branch(bottomGroup, layout.Bottom, i, c))
	}

	effect := t.box(t.Root, RoleEffect, Column)
	block := t.box(effect, RoleTitleBlock, Column)
	block.Style.Position = layout.Relative
	t.refs.Title = block.ID
	if !opts.HideIcon {
		icon := t.box(block, RoleIcon, Row)
		icon.MinW, icon.MinH = m.IconSize, m.IconSize
		inner := t.text(block, RoleInnerTitle, d.Title, m.TitleFontSize, true)
		inner.Style.Position = layout.Absolute
		inner.Pin = PinCenter
		t.refs.InnerTitle = inner.ID
	} else {
		block.Pad = Edges{m.TitlePad, m.TitlePad, m.TitlePad, m.TitlePad}
		t.text(block, RoleTitle, d.Title, m.TitleFontSize, true)
	}

	t.Resize(opts.Width)
	return t
}

func (t *Tree) branch(group *Node, side layout.Side, index int, c diagram.Cause) layout.Branch {
	m := t.metrics
	content := t.box(group, RoleBranchContent, Column)
	content.Align = AlignEnd
	if side == layout.Bottom {
		content.Align = AlignStart
	}

	label := func() *Node {
		l := t.text(content, RoleBranchLabel, c.Name, m.FontSize, true)
		l.Pad = Edges{m.LabelPadY, m.LabelPadX, m.LabelPadY, m.LabelPadX}
		return l
	}
	var lbl *Node
	if side == layout.Top {
		lbl = label()
	}

	item := t.box(content, RoleBranchItem, Row)
	item.Stretch = true
	item.MinH = m.BranchHeight
	t.items[side] = append(t.items[side], item)

	causes := t.box(item, RoleCausesContainer, Column)
	causes.Grow, causes.Stretch = true, true
	causes.Gap = m.ContainerGap

	b := layout.Branch{Item: item.ID, Causes: causes.ID, Label: layout.NoHandle}
	for _, sub := range c.Children {
		b.Containers = append(b.Containers, t.container(causes, sub))
	}

	line := t.box(item, RoleGuideLine, Row)
	line.Style.Position = layout.Absolute
	line.Pin = PinFill
	b.Line = line.ID

	if side == layout.Bottom {
		lbl = label()
	}
	b.Label = lbl.ID

	content.Walk(func(n *Node) bool {
		n.Side, n.HasSide, n.Branch = side, true, index
		return true
	})
	return b
}

func (t *Tree) container(parent *Node, c diagram.Cause) layout.Container {
	m := t.metrics
	box := t.box(parent, RoleCauseContainer, Column)
	box.Pad = Edges{m.ContainerPad, m.ContainerPad, m.ContainerPad, m.ContainerPad}
	t.text(box, RoleCauseLabel, c.Name, m.FontSize, true)

	border := t.box(box, RoleBorder, Row)
	border.Style.Position = layout.Absolute
	border.Pin = PinBottomLeft
	border.MinH = m.StrokeWidth

	list := t.box(box, RoleSubList, Column)
	list.Pad.Left = m.SubIndent
	list.Gap = m.SubGap
	for _, leaf := range c.Children {
		t.text(list, RoleSubItem, leaf.Name, m.FontSize, false)
		t.Hidden += countHidden(leaf.Children)
	}
	return layout.Container{Box: box.ID, Border: border.ID}
}

func countHidden(cs []diagram.Cause) int {
	n := len(cs)
	for _, c := range cs {
		n += countHidden(c.Children)
	}
	return n
}

func (t *Tree) box(parent *Node, role Role, flow Flow) *Node {
	n := &Node{Role: role, Flow: flow, Branch: -1}
	t.add(parent, n)
	return n
}

func (t *Tree) text(parent *Node, role Role, text string, size float64, bold bool) *Node {
	n := &Node{Role: role, Text: text, IsText: true, FontSize: size, Bold: bold, Branch: -1}
	t.add(parent, n)
	return n
}

func (t *Tree) add(parent *Node, n *Node) {
	t.nodes = append(t.nodes, n)
	n.ID = layout.Handle(len(t.nodes))
	n.Parent = parent
	if parent != nil {
		parent.Children = append(parent.Children, n)
	}
}
