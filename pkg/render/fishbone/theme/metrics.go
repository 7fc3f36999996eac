package theme

// Metrics are the box-model constants of the visual tree, in pixels.
type Metrics struct {
	FontSize      float64 // cause labels and sub-causes
	TitleFontSize float64 // effect title

	Margin         float64 // around the whole diagram
	IconSize       float64 // fish head and tail glyphs
	SpineHeight    float64 // thickness of the central line
	BranchHeight   float64 // minimum height of a branch item
	BranchMinWidth float64 // minimum width of a branch item
	BranchGap      float64 // between adjacent branches

	LabelPadX float64 // horizontal padding of branch labels
	LabelPadY float64 // vertical padding of branch labels

	ContainerGap float64 // between cause containers of one branch
	ContainerPad float64 // inside a cause container
	SubIndent    float64 // left indent of the sub-cause list
	SubGap       float64 // between sub-cause items
	TitlePad     float64 // inside the bordered title
	StrokeWidth  float64 // guide lines and borders
}

// DefaultMetrics returns the standard metrics.
func DefaultMetrics() Metrics {
	return Metrics{
		FontSize:      14,
		TitleFontSize: 16,

		Margin:         20,
		IconSize:       150,
		SpineHeight:    4,
		BranchHeight:   160,
		BranchMinWidth: 200,
		BranchGap:      0,

		LabelPadX: 10,
		LabelPadY: 5,

		ContainerGap: 4,
		ContainerPad: 2,
		SubIndent:    12,
		SubGap:       2,
		TitlePad:     10,
		StrokeWidth:  2,
	}
}

// Scaled returns m with every font size multiplied by f. Box metrics are
// unchanged.
func (m Metrics) Scaled(f float64) Metrics {
	if f <= 0 {
		return m
	}
	m.FontSize *= f
	m.TitleFontSize *= f
	return m
}
