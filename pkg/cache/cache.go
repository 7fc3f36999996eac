// Package cache stores diagrams, layouts and rendered artifacts between runs.
//
// # Backends
//
//   - [FileCache]: one file per entry, for the CLI
//   - [NullCache]: caching disabled
//   - [RedisCache]: shared cache for server deployments
//   - [MongoCache]: document store with a TTL index
//
// # Keys
//
// A [Keyer] derives keys from content hashes plus the options that affect
// the stored value, so a changed width or color never hits a stale entry:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(cache.Hash(data), cache.LayoutKeyOpts{Width: 1200})
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. Get reports a miss with
// hit=false and a nil error; errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// TTLs per entry kind.
const (
	TTLHTTP     = time.Hour
	TTLDiagram  = 7 * 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// LayoutKeyOpts are the options that change a computed layout.
type LayoutKeyOpts struct {
	VizType  string  `json:"viz_type"`
	Width    float64 `json:"width"`
	Cols     int     `json:"cols"`
	Color    string  `json:"color"`
	HideIcon bool    `json:"hide_icon"`
	FontSize float64 `json:"font_size"`
	Full     bool    `json:"full"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Scale      float64 `json:"scale"`
	Background string  `json:"background"`
	EmbedFonts bool    `json:"embed_fonts"`
}

// Keyer generates cache keys.
type Keyer interface {
	// HTTPKey keys a fetched remote document.
	HTTPKey(namespace, key string) string
	// DiagramKey keys a parsed diagram by the hash of its canonical JSON.
	DiagramKey(diagramHash string) string
	// LayoutKey keys a layout of a diagram.
	LayoutKey(diagramHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// DiagramKey returns "diagram:<hash>".
func (DefaultKeyer) DiagramKey(diagramHash string) string {
	return "diagram:" + diagramHash
}

// LayoutKey hashes the diagram hash with the layout options.
func (DefaultKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", diagramHash, opts)
}

// ArtifactKey hashes the layout hash with the artifact options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
