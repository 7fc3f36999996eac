package layout

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fishbone/pkg/observability"
)

type recordingHooks struct {
	observability.NoopLayoutHooks
	mu     sync.Mutex
	stages []string
}

func (r *recordingHooks) OnStageComplete(_ context.Context, stage string, _ time.Duration, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func fullRefs() (Refs, *fakeSurface) {
	fx, s := newFixture()
	refs := Refs{
		TopBranches:    []Branch{fx.branch(200, 3), fx.branch(200, 1)},
		BottomBranches: []Branch{fx.branch(120, 2)},
	}
	refs.TopGroup = s.set(fx.handle(), Rect{Width: 400, Height: 160})
	refs.Title = s.set(fx.handle(), Rect{Width: 150, Height: 40})
	refs.FishTail = s.set(fx.handle(), Rect{Width: 150, Height: 150})
	return refs, s
}

func TestRun(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetLayoutHooks(hooks)
	defer observability.Reset()

	refs, s := fullRefs()
	res, err := New().Run(context.Background(), s, refs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{StageLocate, StageContainers, StageBorders, StageTitle, StageLabels}
	if len(res.Timings) != len(want) {
		t.Fatalf("timings = %v", res.Timings)
	}
	for i, st := range want {
		if res.Timings[i].Stage != st {
			t.Errorf("stage %d = %s, want %s", i, res.Timings[i].Stage, st)
		}
	}
	if strings.Join(hooks.stages, ",") != strings.Join(want, ",") {
		t.Errorf("hook stages = %v", hooks.stages)
	}
	if s.reflows != len(want)+1 {
		t.Errorf("reflows = %d, want %d", s.reflows, len(want)+1)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v", res.Warnings)
	}

	if got, _ := res.Patch(refs.Title); got.Style.Top.Float() != 140 {
		t.Errorf("title top = %v, want 140", got.Style.Top)
	}
	if got, _ := res.Patch(refs.TopBranches[1].Causes); got.Style.Justify != JustifyCenter {
		t.Errorf("single-container branch justify = %v", got.Style.Justify)
	}
	for _, b := range append(refs.TopBranches, refs.BottomBranches...) {
		if _, ok := res.Patch(b.Label); !ok {
			t.Errorf("label %d not anchored", b.Label)
		}
	}
}

func TestRunTwiceIsStable(t *testing.T) {
	refs, s := fullRefs()
	eng := New()

	first, err := eng.Run(context.Background(), s, refs)
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.Run(context.Background(), s, refs)
	if err != nil {
		t.Fatal(err)
	}
	for h, p := range first.Patches {
		if q := second.Patches[h]; q != p {
			t.Errorf("handle %d: second run wrote %v, first %v", h, q, p)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	refs, s := fullRefs()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New().Run(ctx, s, refs)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(res.Patches) != 0 || len(res.Timings) != 0 {
		t.Errorf("cancelled run wrote %d patches, %d stages", len(res.Patches), len(res.Timings))
	}
}

func TestRunEmptySide(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	fx, s := newFixture()
	refs := Refs{TopBranches: []Branch{fx.branch(100, 2)}}
	res, err := New(WithLogger(logger)).Run(context.Background(), s, refs)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", res.Warnings)
	}
	w := res.Warnings[0]
	if w.String() != "locate: no branch items found (bottom)" {
		t.Errorf("warning = %q", w)
	}
	if !strings.Contains(buf.String(), "no branch items found") {
		t.Errorf("warning not logged: %q", buf.String())
	}
}

func TestLocateBranches(t *testing.T) {
	fx, s := newFixture()
	a, b := fx.branch(10, 1), fx.branch(10, 1)
	refs := Refs{TopBranches: []Branch{a, {Label: 77}, b}}
	p := New().NewPass(s, refs)

	got := p.LocateBranches(Top)
	if len(got) != 2 || got[0].Item != a.Item || got[1].Item != b.Item {
		t.Errorf("LocateBranches = %v", got)
	}
}

func TestWarningString(t *testing.T) {
	tests := []struct {
		w    Warning
		want string
	}{
		{Warning{Stage: StageTitle, Branch: -1, Container: -1, Reason: "x"}, "title: x"},
		{Warning{Stage: StageLabels, Side: "top", Branch: 2, Container: -1, Reason: "x"}, "labels: x (top branch 2)"},
		{Warning{Stage: StageBorders, Side: "bottom", Branch: 0, Container: 3, Reason: "x"}, "borders: x (bottom branch 0, container 3)"},
	}
	for _, tt := range tests {
		if got := tt.w.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestPositionModeInPatch(t *testing.T) {
	tests := []struct {
		mode PositionMode
		want string
	}{
		{Static, "position: static"},
		{Relative, "position: relative"},
		{Absolute, "position: absolute"},
	}
	for _, tt := range tests {
		p := Patch{}.SetPosition(tt.mode)
		if got := p.String(); got != tt.want {
			t.Errorf("SetPosition(%d) = %q, want %q", tt.mode, got, tt.want)
		}
		if s := p.ApplyTo(Style{}); s.Position != tt.mode {
			t.Errorf("ApplyTo position = %v, want %v", s.Position, tt.mode)
		}
	}
	if got := Position(1, 3, 200); got != 50 {
		t.Errorf("Position(1, 3, 200) = %v, want 50", got)
	}
}
