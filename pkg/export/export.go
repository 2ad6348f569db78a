// Package export writes rendered diagram images to an output directory
// that mirrors the diagram source tree.
//
// Every resolved diagram is fetched from the render server once per
// requested format and stored under the output root at the same relative
// path as its source, with the extension swapped for the image format.
// The output root is wiped before the first write, so an export always
// reflects exactly the current diagram set.
package export

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	perrors "github.com/pumldock/pumldock/pkg/errors"
	"github.com/pumldock/pumldock/pkg/plantuml"
	"github.com/pumldock/pumldock/pkg/resolve"
)

// DefaultWorkers bounds concurrent render requests when a job does not
// request its own limit.
const DefaultWorkers = 4

// Artifacts records where exported images were written, keyed by format
// and then by diagram source path.
type Artifacts map[plantuml.Format]map[string]string

// ForFormat returns the source-to-output mapping for one format.
// The result is nil when the format was not exported.
func (a Artifacts) ForFormat(format plantuml.Format) map[string]string {
	return a[format]
}

// Count returns the total number of recorded artifact files.
func (a Artifacts) Count() int {
	n := 0
	for _, paths := range a {
		n += len(paths)
	}
	return n
}

// Job describes one export run.
type Job struct {
	// Entries holds the resolved diagrams to render, keyed by source path.
	Entries map[string]*resolve.Entry

	// Root is the diagram directory whose layout the output mirrors.
	Root string

	// OutDir is deleted and recreated before any artifact is written.
	OutDir string

	// Formats lists the image formats rendered for every entry.
	Formats []plantuml.Format

	// Workers bounds concurrent render requests. Zero means DefaultWorkers.
	Workers int
}

// Exporter fetches rendered images from a PlantUML server and persists
// them to disk.
type Exporter struct {
	client *plantuml.Client
	logger *log.Logger
}

// New creates an exporter. A nil logger discards all output.
func New(client *plantuml.Client, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Exporter{client: client, logger: logger}
}

// Export renders every entry in every requested format and writes the
// images below job.OutDir. It returns the full artifact map so callers
// can thread output locations into later steps without shared state.
//
// A 400 reply from the render server is not fatal: the server answers
// unrenderable input (for example a pure constant-definition file) with
// an error image, which is written like any other artifact. Every other
// remote failure aborts the export.
func (e *Exporter) Export(ctx context.Context, job Job) (Artifacts, error) {
	if len(job.Formats) == 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidFormat, "no image formats requested")
	}
	if job.OutDir == "" {
		return nil, perrors.New(perrors.ErrCodeInvalidConfig, "output directory not set")
	}

	// Clean rebuild: stale artifacts from removed diagrams must not survive.
	if err := os.RemoveAll(job.OutDir); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "clear output directory %s", job.OutDir)
	}
	if err := os.MkdirAll(job.OutDir, 0o755); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "create output directory %s", job.OutDir)
	}

	workers := job.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	artifacts := make(Artifacts, len(job.Formats))
	for _, format := range job.Formats {
		artifacts[format] = make(map[string]string, len(job.Entries))
	}

	var mu sync.Mutex
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, path := range sortedPaths(job.Entries) {
		entry := job.Entries[path]
		for _, format := range job.Formats {
			eg.Go(func() error {
				out, err := e.writeArtifact(ctx, entry, format, job)
				if err != nil {
					return err
				}
				mu.Lock()
				artifacts[format][entry.Path] = out
				mu.Unlock()
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// writeArtifact renders one entry in one format and writes it to disk,
// returning the output path.
func (e *Exporter) writeArtifact(ctx context.Context, entry *resolve.Entry, format plantuml.Format, job Job) (string, error) {
	out, err := OutputPath(job.OutDir, job.Root, entry.Path, format)
	if err != nil {
		return "", err
	}

	data, err := e.client.FetchImage(ctx, entry.Encoded, format)
	var bad *plantuml.BadRequestError
	if errors.As(err, &bad) {
		e.logger.Warn("render server rejected diagram, keeping error image",
			"path", entry.Path,
			"format", format,
			"url", bad.URL)
		data = bad.Body
	} else if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", perrors.Wrap(perrors.ErrCodeInternal, err, "create directory %s", filepath.Dir(out))
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", perrors.Wrap(perrors.ErrCodeInternal, err, "write artifact %s", out)
	}

	// The file must be visible to later steps (embed rewriting stats it),
	// so surface a vanished write loudly but keep the pass going.
	if _, statErr := os.Stat(out); statErr != nil {
		e.logger.Error("artifact missing after write",
			"path", out,
			"bytes", len(data))
	} else {
		e.logger.Debug("wrote artifact", "path", out, "bytes", len(data))
	}
	return out, nil
}

// OutputPath maps a diagram source path to its artifact location for the
// given format: the same path relative to root, below outDir, with the
// extension replaced.
func OutputPath(outDir, root, src string, format plantuml.Format) (string, error) {
	rel, err := filepath.Rel(root, src)
	if err != nil {
		return "", perrors.Wrap(perrors.ErrCodeInvalidPath, err, "diagram %s outside root %s", src, root)
	}
	ext := filepath.Ext(rel)
	return filepath.Join(outDir, strings.TrimSuffix(rel, ext)+format.Ext()), nil
}

func sortedPaths(entries map[string]*resolve.Entry) []string {
	paths := make([]string, 0, len(entries))
	for path := range entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
