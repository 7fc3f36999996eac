// Package pkg provides the core libraries for fishbone cause-and-effect
// diagrams.
//
// # Overview
//
// Fishbone turns a tree of causes into an Ishikawa diagram: the effect sits
// at the head, top-level causes hang off diagonal bones above and below the
// spine, and sub-causes are stacked along each bone. Labels vary in width,
// so the diagram is first painted, then measured and corrected by a layout
// engine before it is drawn.
//
// # Architecture
//
// The typical data flow:
//
//	JSON / YAML / TOML (file, stdin or URL)
//	         ↓
//	    [source] + [diagram] (load and validate)
//	         ↓
//	    [render/fishbone/tree] (build and paint the visual tree)
//	         ↓
//	    [render/fishbone/layout] (measure and correct positions)
//	         ↓
//	    [render/fishbone/sink] (SVG/PNG/PDF/JSON output)
//
// [pipeline] runs these stages with caching and is shared by the CLI, the
// watch loop ([trigger]) and the HTTP API ([server]).
//
// # Main Packages
//
// [diagram] - The diagram model, its JSON/YAML/TOML codecs and the
// serialized layout format.
//
// [render/fishbone/layout] - The post-paint geometric pass: branch
// location, container positioning, border alignment, title and label
// anchoring. Works against a Surface interface so it can be tested with
// injected rectangles.
//
// [render/nodelink] - The alternative tree view, drawn by Graphviz.
//
// [cache] - Content-addressed caching with file, Redis and MongoDB backends.
//
// [config] - fishbone.toml loading.
//
// [observability] - Hooks for pipeline, cache, layout and HTTP events.
//
// # Testing
//
//	go test ./pkg/...
//	go test -run Example ./pkg/render/fishbone/layout
//
// [source]: https://pkg.go.dev/github.com/matzehuels/fishbone/pkg/source
// [diagram]: https://pkg.go.dev/github.com/matzehuels/fishbone/pkg/diagram
// [render/fishbone/tree]: https://pkg.go.dev/github.com/matzehuels/fishbone/pkg/render/fishbone/tree
// [render/fishbone/layout]: https://pkg.go.dev/github.com/matzehuels/fishbone/pkg/render/fishbone/layout
// [render/fishbone/sink]: https://pkg.go.dev/github.com/matzehuels/fishbone/pkg/render/fishbone/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/fishbone/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/fishbone/pkg/pipeline
// [trigger]: https://pkg.go.dev/github.com/matzehuels/fishbone/pkg/trigger
// [server]: https://pkg.go.dev/github.com/matzehuels/fishbone/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/fishbone/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/fishbone/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/fishbone/pkg/observability
package pkg
