// Package pkg provides the core libraries for pumldock documentation passes.
//
// # Overview
//
// pumldock keeps markdown documentation in sync with PlantUML diagram
// sources. Diagrams may reference other diagrams, documents embed diagrams
// through hidden comment directives, and every pass re-derives links and
// images from the current diagram text. The pkg directory is organized into
// four main areas:
//
//  1. [resolve] - Reference resolution (render cache, include expansion)
//  2. [plantuml] - Rendering (URL encoding, server client, link shortener)
//  3. [rewrite] - Documentation rewriting (directive scanning, link substitution)
//  4. [pipeline] - Orchestration (scan → resolve → export → rewrite)
//
// # Architecture
//
// The typical data flow through pumldock:
//
//	Diagram & documentation trees
//	         ↓
//	    [scan] package (discover files, honor ignore rules)
//	         ↓
//	    [graph] package (validate references are acyclic)
//	         ↓
//	    [resolve] package (substitute references, encode diagrams)
//	         ↓
//	    [export] + [rewrite] packages (image artifacts + updated markdown)
//
// # Quick Start
//
// Run a full documentation pass:
//
//	import (
//	    "context"
//	    "github.com/pumldock/pumldock/pkg/pipeline"
//	)
//
//	// 1. Configure the pass
//	opts := pipeline.Options{
//	    Root:   "/path/to/project",
//	    Server: "https://www.plantuml.com/plantuml",
//	    Export: true,
//	}
//
//	// 2. Execute it
//	runner := pipeline.NewRunner(nil)
//	result, err := runner.Execute(context.Background(), opts)
//
//	// 3. Inspect the outcome
//	for _, doc := range result.Rewritten {
//	    fmt.Println("updated", doc)
//	}
//
// # Main Packages
//
// ## Resolution
//
// [resolve] - The render cache and reference resolver. Each diagram resolves
// exactly once per pass regardless of how many diagrams or documents point at
// it. References to managed diagrams are substituted with their render URLs;
// !include directives are spliced in textually before encoding.
//
// [graph] - Directed graph over diagram paths with cycle detection and
// deterministic topological ordering. A pass refuses to start remote work
// while the reference graph contains a cycle.
//
// [scan] - Directory walking for diagram and documentation discovery with
// gitignore-style exclusion patterns.
//
// ## Rendering
//
// [plantuml] - The PlantUML text encoding (raw deflate + base64 variant
// alphabet) and the HTTP client for rendering servers and link shorteners.
//
// [export] - Concurrent artifact export mirroring the diagram tree into an
// output directory, one image per diagram per requested format.
//
// [httputil] - Retry with exponential backoff for transient failures against
// the rendering server.
//
// ## Rewriting
//
// [rewrite] - Markdown directive handling: finds hidden comment markers,
// skips fenced and inline code, and replaces the visible link or image that
// precedes each marker.
//
// ## Infrastructure
//
// [pipeline] - The pass runner used by both the CLI and watch mode. Executes
// scan → resolve → export → rewrite with per-stage logging and timing so a
// single pass behaves identically across entry points.
//
// [config] - The optional pumldock.toml project file with discovery walking
// up from the working directory.
//
// [errors] - Coded errors shared by every package, with user-facing messages
// separated from wrapped causes.
//
// [observability] - Optional instrumentation hooks for pass stages, the
// render cache, and rendering server calls.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Common Workflows
//
// Encode a single diagram without running a pass:
//
//	text, _ := os.ReadFile("arch.puml")
//	encoded, _ := plantuml.Encode(string(text))
//	client := plantuml.NewClient("https://www.plantuml.com/plantuml", "")
//	fmt.Println(client.RenderURL(encoded, plantuml.FormatSVG))
//
// Resolve a diagram tree by hand:
//
//	cache := resolve.NewCache(encoder)
//	for path, text := range diagrams {
//	    cache.Register(path, text)
//	}
//	resolver := resolve.NewResolver(cache)
//	entry, _ := resolver.Resolve(ctx, "diagrams/arch.puml")
//
// Rewrite one document against the resolved cache:
//
//	rw := rewrite.New(cache, nil)
//	changed, _ := rw.RewriteFile("docs/design.md", rewrite.Options{})
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/resolve/...    # Specific package
//	go test -run Example         # Examples only
//
// [resolve]: https://pkg.go.dev/github.com/pumldock/pumldock/pkg/resolve
// [graph]: https://pkg.go.dev/github.com/pumldock/pumldock/pkg/graph
// [scan]: https://pkg.go.dev/github.com/pumldock/pumldock/pkg/scan
// [plantuml]: https://pkg.go.dev/github.com/pumldock/pumldock/pkg/plantuml
// [export]: https://pkg.go.dev/github.com/pumldock/pumldock/pkg/export
// [httputil]: https://pkg.go.dev/github.com/pumldock/pumldock/pkg/httputil
// [rewrite]: https://pkg.go.dev/github.com/pumldock/pumldock/pkg/rewrite
// [pipeline]: https://pkg.go.dev/github.com/pumldock/pumldock/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/pumldock/pumldock/pkg/config
// [errors]: https://pkg.go.dev/github.com/pumldock/pumldock/pkg/errors
// [observability]: https://pkg.go.dev/github.com/pumldock/pumldock/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/pumldock/pumldock/pkg/buildinfo
package pkg
