package resolve

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	perrors "github.com/pumldock/pumldock/pkg/errors"
	"github.com/pumldock/pumldock/pkg/observability"
)

// Resolver computes resolved entries for registered diagrams. References to
// other managed diagrams are substituted with their render URLs before
// include expansion; each unique child resolves exactly once even when many
// parents reference it concurrently.
type Resolver struct {
	cache *Cache
}

// NewResolver creates a Resolver over cache.
func NewResolver(cache *Cache) *Resolver { return &Resolver{cache: cache} }

// Resolve returns the entry for a canonical diagram path, computing it on
// first use. Concurrent calls for the same path share one computation.
// Unregistered paths fail with ErrNotManaged.
func (r *Resolver) Resolve(ctx context.Context, path string) (*Entry, error) {
	return r.resolve(ctx, path, nil)
}

func (r *Resolver) resolve(ctx context.Context, path string, ancestry []string) (*Entry, error) {
	if i := slices.Index(ancestry, path); i >= 0 {
		chain := append(slices.Clone(ancestry[i:]), path)
		return nil, perrors.New(perrors.ErrCodeDiagramCycle, "diagram reference cycle: %s", strings.Join(chain, " -> "))
	}

	out, s := r.cache.acquire(path)
	switch out {
	case outcomeUnknown:
		return nil, fmt.Errorf("%s: %w", path, ErrNotManaged)
	case outcomeDone:
		observability.Cache().OnHit(ctx, path)
		return s.result()
	case outcomeWait:
		observability.Cache().OnWait(ctx, path)
		select {
		case <-s.done:
			return s.result()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	entry, err := r.compute(ctx, path, s.text, ancestry)
	if err != nil {
		return r.cache.complete(s, nil, err)
	}
	return entry, nil
}

// compute produces the final text for a claimed path: resolve children,
// substitute their markers, splice includes, then finalize through the
// cache.
func (r *Resolver) compute(ctx context.Context, path, text string, ancestry []string) (*Entry, error) {
	dir := filepath.Dir(path)

	if refs := FindReferences(text); len(refs) > 0 {
		urls, err := r.resolveChildren(ctx, dir, path, refs, ancestry)
		if err != nil {
			return nil, err
		}
		text = substitute(text, refs, dir, urls)
	}

	return r.cache.Resolve(ctx, path, ExpandIncludes(text, dir))
}

// resolveChildren resolves every unique reference target concurrently and
// returns render URLs keyed by canonical child path. Unmanaged targets are
// skipped; any other failure aborts the whole fan-out.
func (r *Resolver) resolveChildren(ctx context.Context, dir, path string, refs []Reference, ancestry []string) (map[string]string, error) {
	next := make([]string, len(ancestry)+1)
	copy(next, ancestry)
	next[len(ancestry)] = path

	unique := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		unique[CanonicalPath(dir, ref.Target)] = struct{}{}
	}

	var mu sync.Mutex
	urls := make(map[string]string, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	for child := range unique {
		g.Go(func() error {
			entry, err := r.resolve(gctx, child, next)
			if errors.Is(err, ErrNotManaged) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			urls[child] = entry.URL
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// substitute replaces every marker whose target resolved with the same
// marker carrying the render URL. Single pass; substituted text is not
// rescanned.
func substitute(text string, refs []Reference, dir string, urls map[string]string) string {
	var pairs []string
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if _, dup := seen[ref.Marker]; dup {
			continue
		}
		seen[ref.Marker] = struct{}{}
		if url, ok := urls[CanonicalPath(dir, ref.Target)]; ok {
			pairs = append(pairs, ref.Marker, ref.WithTarget(url))
		}
	}
	if len(pairs) == 0 {
		return text
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
