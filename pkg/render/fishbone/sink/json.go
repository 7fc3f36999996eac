package sink

import "github.com/matzehuels/fishbone/pkg/diagram"

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	dropWarnings bool
	roles        map[string]bool
}

// WithoutWarnings omits the layout diagnostics from the output.
func WithoutWarnings() JSONOption { return func(r *jsonRenderer) { r.dropWarnings = true } }

// WithRoles keeps only nodes with the given roles. Parent ids of kept
// nodes may then refer to nodes that are not in the output.
func WithRoles(roles ...string) JSONOption {
	return func(r *jsonRenderer) {
		r.roles = make(map[string]bool, len(roles))
		for _, role := range roles {
			r.roles[role] = true
		}
	}
}

// RenderJSON exports the layout as a pretty-printed JSON document that
// [diagram.UnmarshalLayout] reads back, so cached or saved layouts can be
// drawn again without a new layout pass. It does not modify l.
func RenderJSON(l diagram.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if r.dropWarnings {
		l.Warnings = nil
	}
	if r.roles != nil {
		nodes := make([]diagram.Node, 0, len(l.Nodes))
		for _, n := range l.Nodes {
			if r.roles[n.Role] {
				nodes = append(nodes, n)
			}
		}
		l.Nodes = nodes
	}
	return diagram.MarshalLayout(l)
}
