package sink

import (
	"bytes"
	"context"
	"image/png"
	"math"
	"regexp"
	"strings"
	"testing"

	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/layout"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/tree"
)

// handLayout is a minimal layout with one top branch holding one container.
func handLayout() diagram.Layout {
	return diagram.Layout{
		VizType:  diagram.VizTypeFishbone,
		Width:    400,
		Height:   300,
		Title:    "Effect & cause",
		Color:    "blue",
		ColorHex: "#00c0ef",
		FontSize: 14,
		Instance: "abc",
		Nodes: []diagram.Node{
			{ID: 1, Role: "root", Branch: -1, Width: 400, Height: 300},
			{ID: 2, Parent: 1, Role: "spine", Branch: -1, X: 20, Y: 200, Width: 300, Height: 4},
			{ID: 3, Parent: 1, Role: "branch-label", Side: "top", Branch: 0, Text: "Machine", Bold: true, X: 20, Y: 20, Width: 80, Height: 30},
			{ID: 4, Parent: 1, Role: "guide-line", Side: "top", Branch: 0, X: 100, Y: 50, Width: 100, Height: 150},
			{ID: 5, Parent: 1, Role: "cause-container", Side: "top", Branch: 0, X: 40, Y: 80, Width: 60, Height: 40},
			{ID: 6, Parent: 5, Role: "cause-label", Side: "top", Branch: 0, Text: "Old trucks", Bold: true, X: 42, Y: 82, Width: 56, Height: 20},
			{ID: 7, Parent: 5, Role: "border", Side: "top", Branch: 0, X: 100, Y: 119, Width: 100, Height: 2},
			{ID: 8, Parent: 1, Role: "icon", Branch: -1, X: 320, Y: 120, Width: 60, Height: 60},
			{ID: 9, Parent: 1, Role: "inner-title", Branch: -1, Text: "Effect & cause", Bold: true, X: 300, Y: 140, Width: 80, Height: 20},
		},
	}
}

func TestConnectorClipsAtGuideLine(t *testing.T) {
	guide := diagram.Node{Side: "top", X: 100, Y: 50, Width: 100, Height: 150}
	ln, ok := connector(rect{100, 119, 100, 2}, 40, guide)
	if !ok {
		t.Fatal("connector dropped")
	}
	// y = 120 is 70/150 down the line.
	want := 100 + 70.0/150*100
	if math.Abs(ln.x2-want) > 1e-9 || ln.x1 != 40 || ln.y1 != 120 || ln.width != 2 {
		t.Errorf("connector = %+v, want x2 %.3f", ln, want)
	}

	bottom := diagram.Node{Side: "bottom", X: 100, Y: 50, Width: 100, Height: 150}
	ln, _ = connector(rect{100, 119, 100, 2}, 40, bottom)
	want = 100 + 80.0/150*100
	if math.Abs(ln.x2-want) > 1e-9 {
		t.Errorf("bottom x2 = %.3f, want %.3f", ln.x2, want)
	}
}

func TestConnectorPastLineIsDropped(t *testing.T) {
	guide := diagram.Node{Side: "top", X: 100, Y: 50, Width: 100, Height: 150}
	// y = 60 meets the line at x = 100 + 10/150*100, about 106.7.
	if _, ok := connector(rect{100, 59, 100, 2}, 95, guide); !ok {
		t.Error("connector starting left of the line was dropped")
	}
	if _, ok := connector(rect{100, 59, 100, 2}, 110, guide); ok {
		t.Error("connector starting right of the line should be dropped")
	}
}

func TestBuildScene(t *testing.T) {
	sc := buildScene(handLayout(), false)

	if len(sc.spines) != 1 || len(sc.labels) != 1 || len(sc.glyphs) != 1 {
		t.Fatalf("spines/labels/glyphs = %d/%d/%d", len(sc.spines), len(sc.labels), len(sc.glyphs))
	}
	var guide, conn *line
	for i := range sc.lines {
		switch sc.lines[i].class {
		case "guide":
			guide = &sc.lines[i]
		case "connector":
			conn = &sc.lines[i]
		}
	}
	if guide == nil || conn == nil {
		t.Fatalf("lines = %+v", sc.lines)
	}
	if guide.x1 != 100 || guide.y1 != 50 || guide.x2 != 200 || guide.y2 != 200 {
		t.Errorf("top guide = %+v, want (100,50)-(200,200)", *guide)
	}
	if conn.x1 != 40 {
		t.Errorf("connector starts at %v, want container left 40", conn.x1)
	}
	if len(sc.outline) != 0 {
		t.Error("outlines drawn without option")
	}
}

func TestBuildSceneHideIcon(t *testing.T) {
	l := handLayout()
	l.HideIcon = true
	l.Nodes = append(l.Nodes, diagram.Node{ID: 10, Role: "title-block", Branch: -1, X: 300, Y: 100, Width: 90, Height: 40})
	sc := buildScene(l, true)
	if len(sc.frames) != 1 {
		t.Errorf("frames = %d, want 1", len(sc.frames))
	}
	if len(sc.outline) != len(l.Nodes) {
		t.Errorf("outlines = %d, want %d", len(sc.outline), len(l.Nodes))
	}
}

func TestRenderSVG(t *testing.T) {
	out := string(RenderSVG(handLayout()))

	for _, want := range []string{
		`<svg`,
		`viewBox="0 0 400 300"`,
		`<g id="abc"`,
		`Effect &amp; cause`,
		`class="guide"`,
		`class="connector"`,
		`class="head"`,
		`fill: #00c0ef`,
		`</svg>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if strings.Contains(out, "@font-face") {
		t.Error("fonts embedded without option")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	out := string(RenderSVG(handLayout(), WithEmbeddedFonts(), WithOutlines(), WithBackground("")))
	if !strings.Contains(out, "@font-face") {
		t.Error("fonts not embedded")
	}
	if !strings.Contains(out, `class="outline"`) {
		t.Error("outlines missing")
	}
	if backgroundRect.MatchString(out) {
		t.Error("background drawn")
	}

	if !backgroundRect.MatchString(string(RenderSVG(handLayout()))) {
		t.Error("default render has no background")
	}
}

var backgroundRect = regexp.MustCompile(`<rect x="0" y="0" width="\d+" height="\d+" style="fill:`)

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(handLayout(), WithScale(1.5))
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 600 || cfg.Height != 450 {
		t.Errorf("size = %dx%d, want 600x450", cfg.Width, cfg.Height)
	}
}

func TestRenderPNGEmpty(t *testing.T) {
	if _, err := RenderPNG(diagram.Layout{}); err == nil {
		t.Error("expected error for empty layout")
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(handLayout(), WithRoles("branch-label", "guide-line"), WithoutWarnings())
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	l, err := diagram.UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if len(l.Nodes) != 2 {
		t.Errorf("nodes = %d, want 2", len(l.Nodes))
	}
	if l.Instance != "abc" {
		t.Errorf("instance = %q", l.Instance)
	}
}

func TestParsePath(t *testing.T) {
	segs, err := parsePath("M10,10 l5 0 5-5 c1 1 2 2 3 3 Z m1 1 L0 0z")
	if err != nil {
		t.Fatal(err)
	}
	kinds := []segmentKind{segMove, segLine, segLine, segCubic, segClose, segMove, segLine, segClose}
	if len(segs) != len(kinds) {
		t.Fatalf("segments = %d, want %d", len(segs), len(kinds))
	}
	for i, k := range kinds {
		if segs[i].kind != k {
			t.Errorf("segment %d kind = %d, want %d", i, segs[i].kind, k)
		}
	}
	if p := segs[2].pts[0]; p != (point{20, 5}) {
		t.Errorf("implicit relative line = %+v, want {20 5}", p)
	}
	if p := segs[3].pts[2]; p != (point{23, 8}) {
		t.Errorf("relative cubic end = %+v, want {23 8}", p)
	}
	// z returns to the subpath start, so m is relative to (10,10).
	if p := segs[5].pts[0]; p != (point{11, 11}) {
		t.Errorf("move after close = %+v, want {11 11}", p)
	}
}

func TestParsePathErrors(t *testing.T) {
	for _, d := range []string{"10 10", "M10", "c1 2 3"} {
		if _, err := parsePath(d); err == nil {
			t.Errorf("parsePath(%q) succeeded", d)
		}
	}
}

func TestIconsParse(t *testing.T) {
	for name, ic := range map[string]*icon{"head": headIcon, "tail": tailIcon} {
		paths, err := ic.Segments()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		// Control points may overshoot the box slightly.
		lo, hi := -0.02*ic.viewBox, 1.02*ic.viewBox
		for _, segs := range paths {
			for _, s := range segs {
				for _, p := range s.pts {
					if p.x < lo || p.x > hi || p.y < lo || p.y > hi {
						t.Fatalf("%s: point %+v outside viewBox", name, p)
					}
				}
			}
		}
	}
}

func TestRenderFromEngine(t *testing.T) {
	d := &diagram.Diagram{
		Title: "Late deliveries",
		Causes: []diagram.Cause{
			{Name: "Machine", Children: []diagram.Cause{{Name: "Old trucks"}, {Name: "GPS outages"}}},
			{Name: "People", Children: []diagram.Cause{{Name: "Understaffed", Children: []diagram.Cause{{Name: "Sick leave"}}}}},
			{Name: "Method"},
		},
	}
	tr := tree.Build(d, tree.Options{Width: 1000})
	res, err := layout.New().Run(context.Background(), tr, tr.Refs())
	if err != nil {
		t.Fatal(err)
	}
	l := tr.Export(res.Warnings)

	out := string(RenderSVG(l))
	for _, want := range []string{"Late deliveries", "Machine", "GPS outages", "Sick leave", `id="` + tr.ID + `"`} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if _, err := RenderPNG(l, WithScale(1)); err != nil {
		t.Errorf("RenderPNG: %v", err)
	}
}
