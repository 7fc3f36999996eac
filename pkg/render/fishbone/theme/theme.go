// Package theme holds the colors and box metrics of fishbone diagrams.
package theme

import (
	"strconv"
	"strings"

	"github.com/matzehuels/fishbone/pkg/errors"
)

// Color is one palette entry.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Palette lists the available colors in index order.
var Palette = []Color{
	{"blue", "#00c0ef"},
	{"pink", "#d81b60"},
	{"gray", "#68738c"},
	{"green", "#30bbbb"},
	{"blue_two", "#0b78ce"},
	{"orange", "#ff7701"},
	{"black", "#111111"},
	{"purple", "#555299"},
}

// DefaultIndex selects "black".
const DefaultIndex = 6

// ByIndex returns the color at i, wrapping around the palette. Negative
// indices wrap from the end.
func ByIndex(i int) Color {
	n := len(Palette)
	return Palette[((i%n)+n)%n]
}

// Default returns the default color.
func Default() Color { return ByIndex(DefaultIndex) }

// Resolve accepts a palette name or a numeric index. The empty string
// resolves to the default color.
func Resolve(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Default(), nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return ByIndex(i), nil
	}
	for _, c := range Palette {
		if strings.EqualFold(c.Name, s) {
			return c, nil
		}
	}
	return Color{}, errors.New(errors.ErrCodeInvalidColor, "unknown color %q (use a name or index 0-%d)", s, len(Palette)-1)
}

// Names returns the palette names in index order.
func Names() []string {
	names := make([]string, len(Palette))
	for i, c := range Palette {
		names[i] = c.Name
	}
	return names
}
