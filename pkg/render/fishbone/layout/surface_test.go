package layout

// fakeSurface serves injected rectangles. Relative offsets are added to the
// measured rectangle so repeated passes see their own writes.
type fakeSurface struct {
	rects   map[Handle]Rect
	styles  map[Handle]Style
	applied map[Handle]int
	reflows int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		rects:   make(map[Handle]Rect),
		styles:  make(map[Handle]Style),
		applied: make(map[Handle]int),
	}
}

func (f *fakeSurface) set(h Handle, r Rect) Handle {
	f.rects[h] = r
	return h
}

func (f *fakeSurface) Measure(h Handle) (Rect, bool) {
	r, ok := f.rects[h]
	if !ok {
		return Rect{}, false
	}
	if s := f.styles[h]; s.Position == Relative {
		r = r.Translate(s.Left.Float(), s.Top.Float())
	}
	return r, true
}

func (f *fakeSurface) Style(h Handle) Style { return f.styles[h] }

func (f *fakeSurface) Apply(h Handle, p Patch) {
	f.styles[h] = p.ApplyTo(f.styles[h])
	f.applied[h]++
}

func (f *fakeSurface) Reflow() { f.reflows++ }

// branchFixture builds a branch whose guide line has the given width and
// which holds n containers of width 40.
type branchFixture struct {
	next Handle
	s    *fakeSurface
}

func (b *branchFixture) handle() Handle {
	b.next++
	return b.next
}

func (b *branchFixture) branch(lineWidth float64, n int) Branch {
	br := Branch{
		Item:   b.s.set(b.handle(), Rect{Width: lineWidth, Height: 160}),
		Causes: b.s.set(b.handle(), Rect{Width: lineWidth, Height: 160}),
		Line:   b.s.set(b.handle(), Rect{Left: 0, Top: 0, Width: lineWidth, Height: 160}),
		Label:  b.s.set(b.handle(), Rect{Left: 0, Top: 0, Width: 60, Height: 20}),
	}
	for i := 0; i < n; i++ {
		br.Containers = append(br.Containers, Container{
			Box:    b.s.set(b.handle(), Rect{Left: float64(i) * 40, Top: 20, Width: 40, Height: 30}),
			Border: b.s.set(b.handle(), Rect{Left: float64(i) * 40, Top: 50, Width: 0, Height: 1}),
		})
	}
	return br
}

func newFixture() (*branchFixture, *fakeSurface) {
	s := newFakeSurface()
	return &branchFixture{s: s}, s
}
