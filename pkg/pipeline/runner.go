// Package pipeline orchestrates a full documentation pass over a
// project: scanning, reference resolution, optional image export and
// document rewriting.
//
// # Architecture
//
// A pass runs four stages in order:
//
//	scan     discover diagram and documentation files, honoring
//	         ignore patterns
//	resolve  index cross-file references, reject cycles, then encode
//	         every diagram bottom-up against the render server
//	export   optionally fetch rendered images into an output tree
//	rewrite  update hidden directives in documentation files
//
// Each stage consumes explicit values produced by the previous one; the
// render cache and the artifact map are created per pass and returned
// in the Result rather than held in shared state.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//		Root:   ".",
//		Export: true,
//	})
package pipeline

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	perrors "github.com/pumldock/pumldock/pkg/errors"
	"github.com/pumldock/pumldock/pkg/export"
	"github.com/pumldock/pumldock/pkg/graph"
	"github.com/pumldock/pumldock/pkg/observability"
	"github.com/pumldock/pumldock/pkg/plantuml"
	"github.com/pumldock/pumldock/pkg/resolve"
	"github.com/pumldock/pumldock/pkg/rewrite"
	"github.com/pumldock/pumldock/pkg/scan"
)

// Runner executes documentation passes. It is stateless apart from the
// logger, so one Runner can serve repeated passes in watch mode.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Result carries everything a single pass produced.
type Result struct {
	// Entries holds every resolved diagram keyed by source path.
	Entries map[string]*resolve.Entry

	// Artifacts records exported image locations. Empty without export.
	Artifacts export.Artifacts

	// Docs lists the documentation files scanned.
	Docs []string

	// Rewritten lists the documentation files whose content changed.
	Rewritten []string

	Stats Stats
}

// Stats records counts and stage timings for one pass.
type Stats struct {
	DiagramCount   int           `json:"diagram_count"`
	ReferenceCount int           `json:"reference_count"`
	DocCount       int           `json:"doc_count"`
	RewrittenCount int           `json:"rewritten_count"`
	ArtifactCount  int           `json:"artifact_count"`
	ScanTime       time.Duration `json:"scan_time"`
	ResolveTime    time.Duration `json:"resolve_time"`
	ExportTime     time.Duration `json:"export_time"`
	RewriteTime    time.Duration `json:"rewrite_time"`
}

// Execute runs the complete scan → resolve → export → rewrite pass.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	client := plantuml.NewClient(opts.Server, opts.Shortener)
	result := &Result{}

	diagrams, err := r.scanStage(ctx, opts, result)
	if err != nil {
		return nil, err
	}

	cache, err := r.resolveStage(ctx, client, opts, diagrams, result)
	if err != nil {
		return nil, err
	}

	if opts.Export {
		if err := r.exportStage(ctx, client, opts, result); err != nil {
			return nil, err
		}
	}

	if err := r.rewriteStage(ctx, cache, opts, result); err != nil {
		return nil, err
	}

	return result, nil
}

// scanStage discovers diagram and documentation files.
func (r *Runner) scanStage(ctx context.Context, opts Options, result *Result) (diagrams []string, err error) {
	start := time.Now()
	observability.Pass().OnStageStart(ctx, "scan", 0)
	defer func() {
		observability.Pass().OnStageComplete(ctx, "scan", len(diagrams)+len(result.Docs), time.Since(start), err)
	}()

	scanner, err := scan.New(opts.Root, opts.IgnoreFile)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	diagrams, err = scanner.Diagrams(opts.Diagrams)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	docs, err := scanner.Docs(opts.Docs)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	result.Docs = docs
	result.Stats.DiagramCount = len(diagrams)
	result.Stats.DocCount = len(docs)
	result.Stats.ScanTime = time.Since(start)

	opts.Logger.Info("scanned project",
		"diagrams", len(diagrams),
		"docs", len(docs),
		"duration", result.Stats.ScanTime)
	return diagrams, nil
}

// resolveStage registers every diagram, validates the reference graph and
// encodes all entries bottom-up.
func (r *Runner) resolveStage(ctx context.Context, client *plantuml.Client, opts Options, diagrams []string, result *Result) (cache *resolve.Cache, err error) {
	start := time.Now()
	observability.Pass().OnStageStart(ctx, "resolve", len(diagrams))
	defer func() {
		observability.Pass().OnStageComplete(ctx, "resolve", len(diagrams), time.Since(start), err)
	}()

	cache = resolve.NewCache(&clientEncoder{client: client, shorten: opts.Shorten})
	texts := make(map[string]string, len(diagrams))
	for _, path := range diagrams {
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, readErr, "read diagram %s", path)
		}
		texts[path] = string(raw)
		cache.Register(path, string(raw))
	}

	g, err := buildGraph(texts)
	if err != nil {
		return nil, fmt.Errorf("index references: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeDiagramCycle, err, "diagram references must not form a cycle")
	}
	result.Stats.ReferenceCount = g.EdgeCount()

	if err := r.resolveAll(ctx, cache, g, opts); err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	result.Entries = cache.Entries()
	result.Stats.ResolveTime = time.Since(start)

	opts.Logger.Info("resolved diagrams",
		"diagrams", cache.Len(),
		"references", g.EdgeCount(),
		"duration", result.Stats.ResolveTime)
	return cache, nil
}

// exportStage fetches rendered images for every resolved entry.
func (r *Runner) exportStage(ctx context.Context, client *plantuml.Client, opts Options, result *Result) (err error) {
	start := time.Now()
	observability.Pass().OnStageStart(ctx, "export", len(result.Entries))
	defer func() {
		observability.Pass().OnStageComplete(ctx, "export", result.Stats.ArtifactCount, time.Since(start), err)
	}()

	exporter := export.New(client, opts.Logger)
	artifacts, err := exporter.Export(ctx, export.Job{
		Entries: result.Entries,
		Root:    opts.Diagrams,
		OutDir:  opts.OutputDir,
		Formats: opts.Formats,
		Workers: opts.Workers,
	})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ArtifactCount = artifacts.Count()
	result.Stats.ExportTime = time.Since(start)

	opts.Logger.Info("exported images",
		"files", artifacts.Count(),
		"dir", opts.OutputDir,
		"duration", result.Stats.ExportTime)
	return nil
}

// rewriteStage updates the hidden directives inside every documentation
// file.
func (r *Runner) rewriteStage(ctx context.Context, cache *resolve.Cache, opts Options, result *Result) (err error) {
	start := time.Now()
	observability.Pass().OnStageStart(ctx, "rewrite", len(result.Docs))
	defer func() {
		observability.Pass().OnStageComplete(ctx, "rewrite", len(result.Rewritten), time.Since(start), err)
	}()

	rewriter := rewrite.New(cache, opts.Logger)
	rwOpts := rewrite.Options{
		Embed:     opts.Embed,
		Artifacts: result.Artifacts.ForFormat(plantuml.FormatSVG),
	}
	for _, doc := range result.Docs {
		changed, rwErr := rewriter.RewriteFile(doc, rwOpts)
		if rwErr != nil {
			return fmt.Errorf("rewrite: %w", rwErr)
		}
		if changed {
			result.Rewritten = append(result.Rewritten, doc)
		}
	}
	result.Stats.RewrittenCount = len(result.Rewritten)
	result.Stats.RewriteTime = time.Since(start)

	opts.Logger.Info("rewrote documentation",
		"docs", len(result.Docs),
		"changed", len(result.Rewritten),
		"duration", result.Stats.RewriteTime)
	return nil
}

// resolveAll fans out over the dependency roots. Shared children are
// resolved once through the cache; the graph was validated acyclic, so
// no resolution can wait on itself.
func (r *Runner) resolveAll(ctx context.Context, cache *resolve.Cache, g *graph.Graph, opts Options) error {
	resolver := resolve.NewResolver(cache)
	roots := g.Sources()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(min(opts.Workers, max(len(roots), 1)))
	for _, path := range roots {
		eg.Go(func() error {
			_, err := resolver.Resolve(ctx, path)
			return err
		})
	}
	return eg.Wait()
}

// buildGraph indexes the references between managed diagrams so cycles
// are caught before any remote work starts.
func buildGraph(texts map[string]string) (*graph.Graph, error) {
	g := graph.New()
	paths := slices.Sorted(maps.Keys(texts))
	for _, path := range paths {
		if err := g.AddNode(path); err != nil {
			return nil, err
		}
	}
	for _, path := range paths {
		dir := filepath.Dir(path)
		for _, ref := range resolve.FindReferences(texts[path]) {
			target := resolve.CanonicalPath(dir, ref.Target)
			if _, ok := texts[target]; !ok {
				continue // unmanaged reference, the resolver leaves it as-is
			}
			if err := g.AddEdge(path, target); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// clientEncoder adapts the PlantUML client to the resolver's Encoder
// interface. Entry URLs always use the SVG format; export fetches other
// formats from the same encoding.
type clientEncoder struct {
	client  *plantuml.Client
	shorten bool
}

func (e *clientEncoder) EncodeDiagram(ctx context.Context, text string) (string, string, error) {
	encoded, err := plantuml.Encode(text)
	if err != nil {
		return "", "", err
	}
	url := e.client.RenderURL(encoded, plantuml.FormatSVG)
	if e.shorten {
		short, err := e.client.Shorten(ctx, url)
		if err != nil {
			return "", "", err
		}
		url = short
	}
	return encoded, url, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
