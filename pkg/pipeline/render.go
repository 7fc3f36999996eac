package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/errors"
	"github.com/matzehuels/fishbone/pkg/observability"
	"github.com/matzehuels/fishbone/pkg/render/fishbone/sink"
	"github.com/matzehuels/fishbone/pkg/render/nodelink"
)

// RenderFromLayout renders output from a diagram.Layout.
// This is the preferred entry point when you have a layout, computed here or
// read back from a JSON file.
func RenderFromLayout(ctx context.Context, l diagram.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	var (
		artifacts map[string][]byte
		err       error
	)
	if l.IsTree() {
		artifacts, err = renderTree(ctx, l, opts)
	} else {
		artifacts, err = renderFishbone(ctx, l, opts)
	}

	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

// RenderFromLayoutData renders output from serialized layout data.
func RenderFromLayoutData(ctx context.Context, data []byte, opts Options) (map[string][]byte, error) {
	l, err := diagram.UnmarshalLayout(data)
	if err != nil {
		return nil, err
	}
	return RenderFromLayout(ctx, l, opts)
}

// renderFishbone draws a fishbone layout in each requested format.
func renderFishbone(ctx context.Context, l diagram.Layout, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(l, buildPNGOptions(opts)...)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, l, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(l)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported fishbone format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderTree draws a cause tree layout through Graphviz.
func renderTree(ctx context.Context, l diagram.Layout, opts Options) (map[string][]byte, error) {
	dot, err := nodelink.Parse(l)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "tree layout")
	}

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatJSON:
			data, err = diagram.MarshalLayout(l)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported tree format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.Transparent {
		svgOpts = append(svgOpts, sink.WithBackground(""))
	}
	if opts.EmbedFonts {
		svgOpts = append(svgOpts, sink.WithEmbeddedFonts())
	}
	if opts.Outlines {
		svgOpts = append(svgOpts, sink.WithOutlines())
	}
	return svgOpts
}

func buildPNGOptions(opts Options) []sink.PNGOption {
	pngOpts := []sink.PNGOption{sink.WithScale(opts.Scale)}
	if opts.Transparent {
		pngOpts = append(pngOpts, sink.WithPNGBackground(""))
	}
	if opts.Outlines {
		pngOpts = append(pngOpts, sink.WithPNGOutlines())
	}
	return pngOpts
}
