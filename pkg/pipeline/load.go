package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/fishbone/pkg/cache"
	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/observability"
	"github.com/matzehuels/fishbone/pkg/source"
)

// Load reads and validates the diagram named by opts.Source.
// Remote documents are cached in c; pass nil to disable caching.
func Load(ctx context.Context, c cache.Cache, opts Options) (*diagram.Diagram, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	var format diagram.Format
	if opts.InputFormat != "" {
		format, _ = diagram.ParseFormat(opts.InputFormat)
	}

	loader := source.NewLoader(c, nil, opts.Logger)
	loader.Refresh = opts.Refresh

	observability.Pipeline().OnLoadStart(ctx, opts.Source)
	start := time.Now()
	d, err := loader.Load(ctx, opts.Source, format)
	n := 0
	if d != nil {
		n = d.CauseCount()
	}
	observability.Pipeline().OnLoadComplete(ctx, opts.Source, n, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DiagramHash returns the content hash of d's canonical JSON encoding.
func DiagramHash(d *diagram.Diagram) (string, error) {
	data, err := diagram.Marshal(d, diagram.FormatJSON)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
