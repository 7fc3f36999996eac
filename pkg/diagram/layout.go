package diagram

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// Visualization types.
const (
	VizTypeFishbone = "fishbone"
	VizTypeTree     = "tree"
)

// =============================================================================
// Layout - Serialized Layout Result
// =============================================================================

// Layout is the serialization format of a finished layout.
//
// Check VizType to see which fields are populated:
//
//	Fishbone ("fishbone"):
//	  - Nodes: every painted node in paint order
//	  - Warnings: non-fatal layout diagnostics
//
//	Tree ("tree"):
//	  - DOT: Graphviz DOT string for rendering
//
// Width, Height, Title and Color are shared.
type Layout struct {
	// Discriminator
	VizType string `json:"viz_type" bson:"viz_type"`

	// Common dimensions and theme
	Width    float64 `json:"width" bson:"width"`
	Height   float64 `json:"height" bson:"height"`
	Title    string  `json:"title,omitempty" bson:"title,omitempty"`
	Color    string  `json:"color" bson:"color"`
	ColorHex string  `json:"color_hex" bson:"color_hex"`
	HideIcon bool    `json:"hide_icon,omitempty" bson:"hide_icon,omitempty"`
	FontSize float64 `json:"font_size,omitempty" bson:"font_size,omitempty"`

	// Instance scopes element ids in rendered output.
	Instance string `json:"instance,omitempty" bson:"instance,omitempty"`

	// Fishbone-specific
	Nodes    []Node   `json:"nodes,omitempty" bson:"nodes,omitempty"`
	Warnings []string `json:"warnings,omitempty" bson:"warnings,omitempty"`

	// Tree-specific
	DOT string `json:"dot,omitempty" bson:"dot,omitempty"`
}

// IsFishbone reports whether l is a fishbone layout.
func (l *Layout) IsFishbone() bool { return l.VizType == VizTypeFishbone }

// IsTree reports whether l is a tree layout.
func (l *Layout) IsTree() bool { return l.VizType == VizTypeTree }

// NodesByRole returns the nodes with the given role, in paint order.
func (l *Layout) NodesByRole(role string) []Node {
	var out []Node
	for _, n := range l.Nodes {
		if n.Role == role {
			out = append(out, n)
		}
	}
	return out
}

// =============================================================================
// Node - Painted Element
// =============================================================================

// Node is one painted element of a fishbone layout. Coordinates are
// absolute and non-negative.
type Node struct {
	ID       int     `json:"id" bson:"id"`
	Parent   int     `json:"parent,omitempty" bson:"parent,omitempty"`
	Role     string  `json:"role" bson:"role"`
	Side     string  `json:"side,omitempty" bson:"side,omitempty"`
	Branch   int     `json:"branch" bson:"branch"`
	Text     string  `json:"text,omitempty" bson:"text,omitempty"`
	Bold     bool    `json:"bold,omitempty" bson:"bold,omitempty"`
	FontSize float64 `json:"font_size,omitempty" bson:"font_size,omitempty"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	Width    float64 `json:"width" bson:"width"`
	Height   float64 `json:"height" bson:"height"`

	// Style is the positioning written by the layout engine, in CSS-like
	// notation ("position: relative; left: 30px").
	Style string `json:"style,omitempty" bson:"style,omitempty"`
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates that required fields are present for the viz type.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	if l.VizType == "" {
		l.VizType = VizTypeFishbone
	}

	switch {
	case l.IsFishbone() && len(l.Nodes) == 0:
		return Layout{}, fmt.Errorf("fishbone layout must contain nodes")
	case l.IsTree() && l.DOT == "":
		return Layout{}, fmt.Errorf("tree layout must contain DOT string")
	case !l.IsFishbone() && !l.IsTree():
		return Layout{}, fmt.Errorf("unknown viz type %q", l.VizType)
	}

	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	return UnmarshalLayout(data)
}
