// Package fonts provides the embedded Go fonts used to measure and draw
// diagram text.
//
// The same TrueType data backs text measurement during paint, the PNG
// rasterizer and the @font-face rule embedded in SVG output, so labels
// measure the same way they are drawn.
package fonts

import (
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontFamily is the CSS font-family name of the embedded regular face.
const FontFamily = "Go"

// FallbackFontFamily lists fallbacks for viewers that drop @font-face.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

// RegularTTF returns the regular TrueType font data.
func RegularTTF() []byte { return goregular.TTF }

// BoldTTF returns the bold TrueType font data.
func BoldTTF() []byte { return gobold.TTF }

// Cache for base64-encoded fonts (computed once on first access).
var (
	regularBase64     string
	regularBase64Once sync.Once
	boldBase64        string
	boldBase64Once    sync.Once
)

// RegularTTFBase64 returns the regular font as a base64 string.
func RegularTTFBase64() string {
	regularBase64Once.Do(func() {
		regularBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return regularBase64
}

// BoldTTFBase64 returns the bold font as a base64 string.
func BoldTTFBase64() string {
	boldBase64Once.Do(func() {
		boldBase64 = base64.StdEncoding.EncodeToString(gobold.TTF)
	})
	return boldBase64
}

// =============================================================================
// Ruler
// =============================================================================

type faceKey struct {
	size float64
	bold bool
}

// Ruler measures text with the embedded fonts. Faces are created lazily per
// size and weight. A Ruler is safe for concurrent use.
type Ruler struct {
	mu      sync.Mutex
	regular *opentype.Font
	bold    *opentype.Font
	faces   map[faceKey]font.Face
}

var (
	defaultRuler     *Ruler
	defaultRulerOnce sync.Once
)

// Default returns the shared Ruler.
func Default() *Ruler {
	defaultRulerOnce.Do(func() {
		r, err := NewRuler()
		if err != nil {
			panic(err) // embedded fonts always parse
		}
		defaultRuler = r
	})
	return defaultRuler
}

// NewRuler parses the embedded fonts.
func NewRuler() (*Ruler, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &Ruler{regular: regular, bold: bold, faces: make(map[faceKey]font.Face)}, nil
}

// Face returns the face for the given size in pixels and weight.
func (r *Ruler) Face(size float64, bold bool) (font.Face, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := faceKey{size: size, bold: bold}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	src := r.regular
	if bold {
		src = r.bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face %vpx: %w", size, err)
	}
	r.faces[key] = f
	return f, nil
}

// TextWidth returns the advance width of text in pixels.
func (r *Ruler) TextWidth(text string, size float64, bold bool) float64 {
	f, err := r.Face(size, bold)
	if err != nil {
		return float64(len(text)) * size * 0.6
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return float64(font.MeasureString(f, text)) / 64
}

// LineHeight returns the recommended line height in pixels.
func (r *Ruler) LineHeight(size float64, bold bool) float64 {
	f, err := r.Face(size, bold)
	if err != nil {
		return size * 1.2
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return float64(f.Metrics().Height) / 64
}

// Ascent returns the distance from the top of a line to its baseline.
func (r *Ruler) Ascent(size float64, bold bool) float64 {
	f, err := r.Face(size, bold)
	if err != nil {
		return size * 0.8
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return float64(f.Metrics().Ascent) / 64
}
