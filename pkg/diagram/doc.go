// Package diagram defines the fishbone data model and its serialized forms.
//
// # Data Format
//
// A diagram is an effect title plus a tree of causes. The cause list uses
// the key "children" at every level:
//
//	{
//	  "title": "Late deliveries",
//	  "children": [
//	    {"name": "Machine", "children": [
//	      {"name": "Old trucks", "children": [{"name": "No spare parts"}]}
//	    ]},
//	    {"name": "People"}
//	  ]
//	}
//
// JSON, YAML and TOML encodings of the same shape are accepted; the format
// is chosen by file extension in [ReadFile] and explicitly in [Read].
//
// Only three levels are drawn: causes, their sub-causes, and the leaves of
// each sub-cause. Deeper nodes are kept in the model and shown by the tree
// view, but the fishbone drawing ignores them.
//
// # Split
//
// [Diagram.Split] places the first floor(n/2) causes above the spine and
// the rest below it, so the bottom side holds the extra cause when n is odd.
//
// # Layout
//
// [Layout] is the serialized result of a layout pass: every painted node
// with its role, side, text and rectangle, the positioning properties the
// engine wrote, and any warnings. It is the input of the visualize step
// and the value stored in the layout cache.
package diagram
