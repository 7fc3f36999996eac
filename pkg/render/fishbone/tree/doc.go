// Package tree maps a fishbone diagram to a visual tree and paints it.
//
// [Build] creates one node per drawn element: the fish tail, the causes
// column with its top group, spine and bottom group, and the effect block.
// Each cause becomes a branch: a content block holding the branch label
// and the branch item, where the item pairs a column of cause containers
// with a diagonal guide line spanning the whole item.
//
// The painter is a small box model. Boxes flow their children in a row or
// a column with gaps and padding; children can stretch across the cross
// axis, grow along the main axis, or be positioned absolutely against a
// pin of their parent. Relative offsets translate a subtree after flow.
//
// A [Tree] implements [layout.Surface], so the layout engine measures it
// and writes positioning properties back through handles:
//
//	t := tree.Build(d, tree.Options{Width: 1200})
//	res, err := layout.New().Run(ctx, t, t.Refs())
//	l := t.Export(res.Warnings)
package tree
