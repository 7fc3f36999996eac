package tree

import (
	"context"
	"math"
	"testing"
	"unicode/utf8"

	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/layout"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/theme"
)

// fixedMeasurer gives every rune 8px and every line 20px.
type fixedMeasurer struct{}

func (fixedMeasurer) TextWidth(text string, _ float64, _ bool) float64 {
	return 8 * float64(utf8.RuneCountInString(text))
}

func (fixedMeasurer) LineHeight(float64, bool) float64 { return 20 }

func sample() *diagram.Diagram {
	return &diagram.Diagram{
		Title: "Late deliveries",
		Causes: []diagram.Cause{
			{Name: "Machine", Children: []diagram.Cause{
				{Name: "Old trucks", Children: []diagram.Cause{{Name: "No spare parts"}}},
				{Name: "GPS outages"},
				{Name: "Flat tyres"},
			}},
			{Name: "Method", Children: []diagram.Cause{{Name: "Manual routing"}}},
			{Name: "People", Children: []diagram.Cause{
				{Name: "Understaffed"},
				{Name: "Training gaps"},
			}},
			{Name: "Environment", Children: []diagram.Cause{{Name: "Weather"}}},
			{Name: "Material", Children: []diagram.Cause{{Name: "Late parts"}, {Name: "Bad packaging"}}},
		},
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func rectNear(a, b layout.Rect) bool {
	return near(a.Left, b.Left) && near(a.Top, b.Top) && near(a.Width, b.Width) && near(a.Height, b.Height)
}

func build(t *testing.T, opts Options) *Tree {
	t.Helper()
	opts.Measurer = fixedMeasurer{}
	return Build(sample(), opts)
}

func role(t *testing.T, tr *Tree, h layout.Handle) Role {
	t.Helper()
	n, ok := tr.Node(h)
	if !ok {
		t.Fatalf("handle %d not found", h)
	}
	return n.Role
}

func TestBuildRefs(t *testing.T) {
	tr := build(t, Options{})
	refs := tr.Refs()

	if len(refs.TopBranches) != 2 || len(refs.BottomBranches) != 3 {
		t.Fatalf("branches = %d/%d, want 2/3", len(refs.TopBranches), len(refs.BottomBranches))
	}
	checks := []struct {
		name string
		h    layout.Handle
		want Role
	}{
		{"top group", refs.TopGroup, RoleTopGroup},
		{"bottom group", refs.BottomGroup, RoleBottomGroup},
		{"title", refs.Title, RoleTitleBlock},
		{"inner title", refs.InnerTitle, RoleInnerTitle},
		{"fish tail", refs.FishTail, RoleFishTail},
		{"item", refs.TopBranches[0].Item, RoleBranchItem},
		{"causes", refs.TopBranches[0].Causes, RoleCausesContainer},
		{"line", refs.TopBranches[0].Line, RoleGuideLine},
		{"label", refs.BottomBranches[2].Label, RoleBranchLabel},
		{"container", refs.TopBranches[0].Containers[2].Box, RoleCauseContainer},
		{"border", refs.TopBranches[0].Containers[2].Border, RoleBorder},
	}
	for _, c := range checks {
		if got := role(t, tr, c.h); got != c.want {
			t.Errorf("%s: role = %v, want %v", c.name, got, c.want)
		}
	}
	if n := len(refs.TopBranches[0].Containers); n != 3 {
		t.Errorf("Machine containers = %d, want 3", n)
	}
	label, _ := tr.Node(refs.BottomBranches[2].Label)
	if label.Text != "Material" || label.Side != layout.Bottom || label.Branch != 2 {
		t.Errorf("bottom label = %+v", label)
	}
	if tr.ID == "" {
		t.Error("tree should have an instance id")
	}
}

func TestLabelOrder(t *testing.T) {
	tr := build(t, Options{})
	refs := tr.Refs()

	topItem, _ := tr.Node(refs.TopBranches[0].Item)
	content := topItem.Parent
	if content.Children[0].Role != RoleBranchLabel || content.Children[1].Role != RoleBranchItem {
		t.Error("top branch should put the label above the item")
	}
	bottomItem, _ := tr.Node(refs.BottomBranches[0].Item)
	content = bottomItem.Parent
	if content.Children[0].Role != RoleBranchItem || content.Children[1].Role != RoleBranchLabel {
		t.Error("bottom branch should put the label below the item")
	}
}

func TestHideIcon(t *testing.T) {
	tr := build(t, Options{HideIcon: true})
	refs := tr.Refs()
	if refs.FishTail.Valid() || refs.InnerTitle.Valid() {
		t.Error("icons should be absent")
	}
	block, _ := tr.Node(refs.Title)
	if len(block.Children) != 1 || block.Children[0].Role != RoleTitle {
		t.Errorf("title block children = %v", block.Children)
	}
}

func TestMeasureBeforePaint(t *testing.T) {
	tr := build(t, Options{})
	if _, ok := tr.Measure(tr.Refs().TopGroup); ok {
		t.Error("Measure should fail before the first paint")
	}
	tr.Paint()
	if _, ok := tr.Measure(tr.Refs().TopGroup); !ok {
		t.Error("Measure should succeed after paint")
	}
	if _, ok := tr.Measure(layout.Handle(tr.Len() + 1)); ok {
		t.Error("unknown handle should not measure")
	}
	if _, ok := tr.Measure(layout.NoHandle); ok {
		t.Error("absent handle should not measure")
	}
}

func TestResize(t *testing.T) {
	tr := build(t, Options{Width: 1200})
	tr.Paint()
	refs := tr.Refs()

	// 1200 - 2*20 margin - 2*150 icons = 860 shared by each side.
	top, _ := tr.Measure(refs.TopBranches[0].Item)
	bottom, _ := tr.Measure(refs.BottomBranches[0].Item)
	if top.Width != 430 {
		t.Errorf("top item width = %v, want 430", top.Width)
	}
	if math.Abs(bottom.Width-860.0/3) > 1e-9 {
		t.Errorf("bottom item width = %v, want %v", bottom.Width, 860.0/3)
	}

	tr.Resize(400)
	if tr.Painted() {
		t.Error("Resize should mark the tree dirty")
	}
	tr.Reflow()
	top, _ = tr.Measure(refs.TopBranches[0].Item)
	if top.Width != theme.DefaultMetrics().BranchMinWidth {
		t.Errorf("narrow top item width = %v, want minimum", top.Width)
	}

	half := build(t, Options{Width: 2400, Cols: 6})
	half.Paint()
	top, _ = half.Measure(half.Refs().TopBranches[0].Item)
	if top.Width != 430 {
		t.Errorf("6-col item width = %v, want 430", top.Width)
	}
}

func TestGuideLineFillsItem(t *testing.T) {
	tr := build(t, Options{})
	tr.Paint()
	for _, side := range layout.Sides {
		for i, b := range tr.Refs().Branches(side) {
			item, _ := tr.Measure(b.Item)
			line, _ := tr.Measure(b.Line)
			causes, _ := tr.Measure(b.Causes)
			if !rectNear(line, item) || !rectNear(causes, item) {
				t.Errorf("%s branch %d: item %v line %v causes %v", side, i, item, line, causes)
			}
			if item.Height < theme.DefaultMetrics().BranchHeight {
				t.Errorf("%s branch %d: height %v below minimum", side, i, item.Height)
			}
		}
	}
}

func TestTopGroupAlignsToSpine(t *testing.T) {
	tr := build(t, Options{})
	tr.Paint()
	group, _ := tr.Measure(tr.Refs().TopGroup)
	for i, b := range tr.Refs().TopBranches {
		item, _ := tr.Measure(b.Item)
		if item.Bottom() != group.Bottom() {
			t.Errorf("top branch %d ends at %v, group at %v", i, item.Bottom(), group.Bottom())
		}
	}
}

func TestRelativeOffsetMovesSubtree(t *testing.T) {
	tr := build(t, Options{})
	tr.Paint()
	c := tr.Refs().TopBranches[0].Containers
	before0, _ := tr.Measure(c[0].Box)
	before1, _ := tr.Measure(c[1].Box)
	box, _ := tr.Node(c[0].Box)
	labelBefore := box.Children[0].Rect()

	tr.Apply(c[0].Box, layout.Patch{}.SetPosition(layout.Relative).SetLeft(30).SetTop(5))
	tr.Reflow()

	after0, _ := tr.Measure(c[0].Box)
	after1, _ := tr.Measure(c[1].Box)
	if after0 != before0.Translate(30, 5) {
		t.Errorf("container = %v, want %v", after0, before0.Translate(30, 5))
	}
	if box.Children[0].Rect() != labelBefore.Translate(30, 5) {
		t.Error("label should move with its container")
	}
	if after1 != before1 {
		t.Errorf("sibling moved: %v -> %v", before1, after1)
	}
}

func TestJustifyCenter(t *testing.T) {
	tr := build(t, Options{})
	b := tr.Refs().TopBranches[1] // Method: one container
	tr.Apply(b.Causes, layout.Patch{}.SetJustify(layout.JustifyCenter))
	tr.Reflow()

	causes, _ := tr.Measure(b.Causes)
	box, _ := tr.Measure(b.Containers[0].Box)
	if math.Abs((box.Left+box.Width/2)-(causes.Left+causes.Width/2)) > 1e-9 {
		t.Errorf("container %v not centered in %v", box, causes)
	}
	if math.Abs((box.Top+box.Height/2)-(causes.Top+causes.Height/2)) > 1e-9 {
		t.Errorf("container %v not vertically centered in %v", box, causes)
	}
}

func TestBorderPinnedBottomLeft(t *testing.T) {
	tr := build(t, Options{})
	tr.Paint()
	c := tr.Refs().TopBranches[0].Containers[1]
	box, _ := tr.Measure(c.Box)

	tr.Apply(c.Border, layout.Patch{}.SetLeft(box.Width).SetWidth(300))
	tr.Reflow()

	border, _ := tr.Measure(c.Border)
	if border.Left != box.Right() || border.Width != 300 || border.Bottom() != box.Bottom() {
		t.Errorf("border = %v, box = %v", border, box)
	}
}

func TestHiddenCauses(t *testing.T) {
	d := sample()
	d.Causes[0].Children[0].Children[0].Children = []diagram.Cause{{Name: "a", Children: []diagram.Cause{{Name: "b"}}}}
	tr := Build(d, Options{Measurer: fixedMeasurer{}})
	if tr.Hidden != 2 {
		t.Errorf("Hidden = %d, want 2", tr.Hidden)
	}
}

func TestEngineOnTree(t *testing.T) {
	tr := build(t, Options{})
	res, err := layout.New().Run(context.Background(), tr, tr.Refs())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v", res.Warnings)
	}

	for _, side := range layout.Sides {
		for i, b := range tr.Refs().Branches(side) {
			label, _ := tr.Measure(b.Label)
			line, _ := tr.Measure(b.Line)
			a, g := layout.LabelAnchor(side, label), layout.LineTarget(side, line)
			if math.Abs(a.X-g.X) > 1e-9 || math.Abs(a.Y-g.Y) > 1e-9 {
				t.Errorf("%s branch %d: anchor %v, target %v", side, i, a, g)
			}
		}
	}

	group, _ := tr.Measure(tr.Refs().TopGroup)
	title, _ := tr.Measure(tr.Refs().Title)
	if want := math.Floor(group.Height - title.Height/2); title.Top != want {
		t.Errorf("title top = %v, want %v", title.Top, want)
	}

	// A second run over the same geometry changes nothing.
	before := tr.Export(nil)
	if _, err := layout.New().Run(context.Background(), tr, tr.Refs()); err != nil {
		t.Fatal(err)
	}
	after := tr.Export(nil)
	for i := range before.Nodes {
		b, a := before.Nodes[i], after.Nodes[i]
		if !near(b.X, a.X) || !near(b.Y, a.Y) || !near(b.Width, a.Width) || !near(b.Height, a.Height) {
			t.Fatalf("node %d moved: %+v -> %+v", i, b, a)
		}
	}
}

func TestExport(t *testing.T) {
	tr := build(t, Options{Color: theme.ByIndex(1)})
	res, err := layout.New().Run(context.Background(), tr, tr.Refs())
	if err != nil {
		t.Fatal(err)
	}
	l := tr.Export(res.Warnings)

	if l.VizType != diagram.VizTypeFishbone || l.Instance != tr.ID || l.Color != "pink" || l.ColorHex != "#d81b60" {
		t.Errorf("header = %+v", l)
	}
	if len(l.Nodes) != tr.Len() {
		t.Errorf("nodes = %d, want %d", len(l.Nodes), tr.Len())
	}
	margin := theme.DefaultMetrics().Margin
	for _, n := range l.Nodes {
		if n.Role == "border" {
			continue
		}
		if n.X < margin-1e-9 || n.Y < margin-1e-9 {
			t.Errorf("node %d (%s) at (%v, %v) inside margin", n.ID, n.Role, n.X, n.Y)
		}
		if n.X+n.Width > l.Width+1e-9 || n.Y+n.Height > l.Height+1e-9 {
			t.Errorf("node %d (%s) outside frame", n.ID, n.Role)
		}
	}
	labels := l.NodesByRole("branch-label")
	if len(labels) != 5 || labels[0].Side != "top" || labels[0].Style == "" {
		t.Errorf("labels = %+v", labels)
	}
}

func TestStyleString(t *testing.T) {
	tests := []struct {
		s    layout.Style
		want string
	}{
		{layout.Style{}, ""},
		{layout.Style{Position: layout.Relative, Left: layout.Px(30)}, "position: relative; left: 30px"},
		{layout.Style{Top: layout.Px(-8), Justify: layout.JustifyCenter}, "top: -8px; justify: center"},
	}
	for _, tt := range tests {
		if got := styleString(tt.s); got != tt.want {
			t.Errorf("styleString(%+v) = %q, want %q", tt.s, got, tt.want)
		}
	}
}
