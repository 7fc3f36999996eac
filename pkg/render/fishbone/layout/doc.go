// Package layout implements the post-paint geometric pass for fishbone
// diagrams.
//
// A fishbone diagram is first mapped to a tree of visual nodes and painted,
// which is the only point where label widths and heights are known. The
// [Engine] then measures that painted geometry and writes positioning
// properties back so that variable-width labels line up along the diagonal
// guide lines of every branch.
//
// # Pipeline
//
// [Engine.Run] executes five stages in a fixed order, forcing a reflow of
// the [Surface] before the first stage and after each one:
//
//  1. Branch Locator: finds the branch items of the top and bottom groups.
//  2. Container Positioner: spreads the cause containers of each branch
//     along its guide line.
//  3. Border Aligner: makes each container's connector border start where
//     the container ends and span the whole guide line.
//  4. Title Anchor: centers the effect title block and the fish tail on the
//     boundary below the top branch group.
//  5. Label Anchor: moves every branch label so it touches the start of its
//     own guide line.
//
// # Surfaces and handles
//
// The engine never searches for nodes. The rendering layer hands it a
// [Refs] graph of [Handle] values built while the visual tree was
// constructed; a zero handle means the node does not exist. Missing nodes
// are never fatal: the affected item is skipped, a [Warning] is recorded
// and logged, and siblings and later stages proceed normally.
//
// All writes go through [Surface.Apply] and are also collected in a typed
// [Result], so the math can be tested against injected rectangles without
// a real paint substrate.
//
// # Example
//
//	eng := layout.New(layout.WithLogger(logger))
//	res, err := eng.Run(ctx, tree, tree.Refs())
//	if err != nil {
//	    return err // context cancelled between stages
//	}
//	for _, w := range res.Warnings {
//	    fmt.Println(w)
//	}
package layout
