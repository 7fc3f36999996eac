package layout

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fishbone/pkg/observability"
)

// Stage names, as reported in warnings, timings and hooks.
const (
	StageLocate     = "locate"
	StageContainers = "containers"
	StageBorders    = "borders"
	StageTitle      = "title"
	StageLabels     = "labels"
)

const (
	// DefaultInnerTitleShift pulls the inner title left so it clears the
	// icon glyph.
	DefaultInnerTitleShift = -36.0

	// DefaultTailPadding is the fixed vertical correction of the fish tail.
	DefaultTailPadding = 8.0

	// LabelBias divides the label width to find the anchor point. It sits
	// right of center on purpose.
	LabelBias = 1.5
)

// Engine runs the layout pipeline. An Engine holds no state between runs
// and may be shared by goroutines laying out different surfaces.
type Engine struct {
	logger          *log.Logger
	innerTitleShift float64
	tailPadding     float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for warnings and stage timings.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithInnerTitleShift overrides [DefaultInnerTitleShift].
func WithInnerTitleShift(px float64) Option {
	return func(e *Engine) { e.innerTitleShift = px }
}

// WithTailPadding overrides [DefaultTailPadding].
func WithTailPadding(px float64) Option {
	return func(e *Engine) { e.tailPadding = px }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:          log.NewWithOptions(io.Discard, log.Options{}),
		innerTitleShift: DefaultInnerTitleShift,
		tailPadding:     DefaultTailPadding,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Warning is a non-fatal diagnostic: an expected node was missing.
// Branch and Container are -1 when the warning is not about one.
type Warning struct {
	Stage     string
	Side      string
	Branch    int
	Container int
	Reason    string
}

func (w Warning) String() string {
	s := w.Stage + ": " + w.Reason
	switch {
	case w.Container >= 0:
		s += fmt.Sprintf(" (%s branch %d, container %d)", w.Side, w.Branch, w.Container)
	case w.Branch >= 0:
		s += fmt.Sprintf(" (%s branch %d)", w.Side, w.Branch)
	case w.Side != "":
		s += fmt.Sprintf(" (%s)", w.Side)
	}
	return s
}

// StageTiming records how long a stage took.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Result is the typed outcome of a pass: every patch written, keyed by
// handle, plus the diagnostics raised along the way.
type Result struct {
	Patches  map[Handle]Patch
	Warnings []Warning
	Timings  []StageTiming
}

func newResult() *Result {
	return &Result{Patches: make(map[Handle]Patch)}
}

// Patch returns the merged patch written to h.
func (r *Result) Patch(h Handle) (Patch, bool) {
	p, ok := r.Patches[h]
	return p, ok
}

// Run executes the full pipeline against s. It forces a reflow before the
// first stage, so callers only need the tree to be built. The returned
// error is non-nil only when ctx is cancelled between stages; the result
// then holds whatever the completed stages wrote.
func (e *Engine) Run(ctx context.Context, s Surface, refs Refs) (*Result, error) {
	p := e.NewPass(s, refs)

	stages := []struct {
		name string
		fn   func()
	}{
		{StageLocate, p.locateAll},
		{StageContainers, p.PositionContainers},
		{StageBorders, p.AlignBorders},
		{StageTitle, p.AnchorTitle},
		{StageLabels, p.AnchorLabels},
	}

	s.Reflow()
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return p.result, err
		}
		start := time.Now()
		before := len(p.result.Warnings)

		st.fn()
		s.Reflow()

		elapsed := time.Since(start)
		p.result.Timings = append(p.result.Timings, StageTiming{Stage: st.name, Duration: elapsed})
		warnings := len(p.result.Warnings) - before
		e.logger.Debug("layout stage complete", "stage", st.name, "duration", elapsed, "warnings", warnings)
		observability.Layout().OnStageComplete(ctx, st.name, elapsed, warnings)
	}
	return p.result, nil
}

// Pass is the state of one pipeline run. Its stage methods may be called
// individually; each expects the surface to be reflowed beforehand.
type Pass struct {
	engine  *Engine
	surface Surface
	refs    Refs
	result  *Result

	located map[Side][]locatedBranch
	plans   []containerPlan
}

type locatedBranch struct {
	index  int
	branch Branch
}

// NewPass prepares a pass over s without running any stage.
func (e *Engine) NewPass(s Surface, refs Refs) *Pass {
	return &Pass{
		engine:  e,
		surface: s,
		refs:    refs,
		result:  newResult(),
	}
}

// Result returns everything written so far.
func (p *Pass) Result() *Result { return p.result }

func (p *Pass) write(h Handle, patch Patch) {
	p.surface.Apply(h, patch)
	if prev, ok := p.result.Patches[h]; ok {
		patch = prev.Merge(patch)
	}
	p.result.Patches[h] = patch
}

func (p *Pass) warn(w Warning) {
	p.result.Warnings = append(p.result.Warnings, w)
	kv := []any{"stage", w.Stage}
	if w.Side != "" {
		kv = append(kv, "side", w.Side)
	}
	if w.Branch >= 0 {
		kv = append(kv, "branch", w.Branch)
	}
	if w.Container >= 0 {
		kv = append(kv, "container", w.Container)
	}
	p.engine.logger.Warn(w.Reason, kv...)
}

func (p *Pass) warnSide(stage string, side Side, reason string) {
	p.warn(Warning{Stage: stage, Side: side.String(), Branch: -1, Container: -1, Reason: reason})
}

func (p *Pass) warnBranch(stage string, side Side, branch int, reason string) {
	p.warn(Warning{Stage: stage, Side: side.String(), Branch: branch, Container: -1, Reason: reason})
}

func (p *Pass) warnContainer(stage string, side Side, branch, container int, reason string) {
	p.warn(Warning{Stage: stage, Side: side.String(), Branch: branch, Container: container, Reason: reason})
}
