package layout

// Side selects one of the two mirrored branch groups.
type Side int

const (
	Top Side = iota
	Bottom
)

// Sides lists both groups in processing order.
var Sides = [...]Side{Top, Bottom}

func (s Side) String() string {
	if s == Bottom {
		return "bottom"
	}
	return "top"
}

// Surface is the painted visual tree as seen by the engine.
//
// Measure must return rectangles that reflect every patch applied before
// the last Reflow, including relative offsets.
type Surface interface {
	// Measure returns the painted rectangle of h. ok is false when h is
	// absent or has never been painted.
	Measure(h Handle) (r Rect, ok bool)
	// Style returns the current positioning properties of h.
	Style(h Handle) Style
	// Apply writes p onto h. The geometry is not updated until Reflow.
	Apply(h Handle, p Patch)
	// Reflow repaints the tree so that Measure sees applied patches.
	Reflow()
}

// Refs is the handle graph the rendering layer builds alongside the visual
// tree. Any handle may be absent.
type Refs struct {
	TopGroup    Handle
	BottomGroup Handle
	Title       Handle
	InnerTitle  Handle
	FishTail    Handle

	TopBranches    []Branch
	BottomBranches []Branch
}

// Branches returns the branch items of side.
func (r Refs) Branches(side Side) []Branch {
	if side == Bottom {
		return r.BottomBranches
	}
	return r.TopBranches
}

// Branch is one cause of the diagram: a content block holding the branch
// label and the item that pairs the causes container with its guide line.
type Branch struct {
	Item       Handle
	Causes     Handle
	Line       Handle
	Label      Handle
	Containers []Container
}

// Container is one sub-cause box.
type Container struct {
	Box    Handle
	Border Handle
}
