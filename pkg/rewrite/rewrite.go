// Package rewrite updates documentation files that reference diagrams
// through hidden comment directives.
//
// A directive is an HTML comment of the form <!--[text](path)--> or,
// with a leading exclamation mark, <!--![alt](path)-->. The path names
// a diagram file relative to the document. On every pass the rewriter
// replaces the visible markdown directly in front of the comment with a
// fresh rendering (a link, an image link, or an embedded image) and
// re-appends the comment unchanged, so later passes find the same
// directive again and the operation stays idempotent.
//
// Directives inside fenced code blocks or inline code spans are left
// untouched, which keeps documentation about the directive syntax
// intact.
package rewrite

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	perrors "github.com/pumldock/pumldock/pkg/errors"
	"github.com/pumldock/pumldock/pkg/resolve"
)

// markerPattern locates a hidden reference directive together with the
// visible markdown a previous pass emitted for it. The visible part is
// optional so that a freshly written directive is found as well.
var markerPattern = regexp.MustCompile(
	`(?:\[!\[[^\]]*\]\([^)]*\)\]\([^)]*\)|!\[[^\]]*\]\([^)]*\)|\[[^\]]*\]\([^)]*\))?` +
		`(<!--(!?)\[([^\]]*)\]\(([^)\s]+)\)-->)`)

// Options controls how directive replacements are rendered.
type Options struct {
	// Embed switches image directives from linking the render URL to
	// embedding the exported SVG artifact.
	Embed bool

	// Artifacts maps diagram source paths to exported SVG files.
	// Consulted only when Embed is set.
	Artifacts map[string]string
}

// Rewriter rewrites documentation files against a resolved diagram cache.
type Rewriter struct {
	cache  *resolve.Cache
	logger *log.Logger
}

// New creates a rewriter. A nil logger discards all output.
func New(cache *resolve.Cache, logger *log.Logger) *Rewriter {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Rewriter{cache: cache, logger: logger}
}

// RewriteFile rewrites one documentation file in place and reports
// whether the content changed. When any directive fails to resolve the
// file is left exactly as it was.
func (r *Rewriter) RewriteFile(path string, opts Options) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "read document %s", path)
	}
	text := string(raw)

	rewritten, n, err := r.Rewrite(path, text, opts)
	if err != nil {
		return false, err
	}
	if rewritten == text {
		r.logger.Debug("document unchanged", "path", path, "directives", n)
		return false, nil
	}
	if err := os.WriteFile(path, []byte(rewritten), 0o644); err != nil {
		return false, perrors.Wrap(perrors.ErrCodeInternal, err, "write document %s", path)
	}
	r.logger.Debug("rewrote document", "path", path, "directives", n)
	return true, nil
}

// Rewrite returns docText with every directive's visible rendering
// replaced, plus the number of directives processed. docPath anchors
// relative reference paths and is not read from disk.
func (r *Rewriter) Rewrite(docPath, docText string, opts Options) (string, int, error) {
	matches := markerPattern.FindAllStringSubmatchIndex(docText, -1)
	if len(matches) == 0 {
		return docText, 0, nil
	}
	regions := codeRegions(docText)

	var b strings.Builder
	b.Grow(len(docText) + 256)
	last := 0
	n := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if overlapsAny(regions, start, end) {
			continue
		}
		comment := docText[m[2]:m[3]]
		image := m[4] != m[5]
		label := docText[m[6]:m[7]]
		ref := docText[m[8]:m[9]]

		visible, err := r.render(docPath, label, ref, image, opts)
		if err != nil {
			return "", 0, err
		}
		b.WriteString(docText[last:start])
		b.WriteString(visible)
		b.WriteString(comment)
		last = end
		n++
	}
	b.WriteString(docText[last:])
	return b.String(), n, nil
}

// render produces the visible markdown for one directive.
func (r *Rewriter) render(docPath, label, ref string, image bool, opts Options) (string, error) {
	if err := perrors.ValidateReferencePath(ref); err != nil {
		return "", perrors.Wrap(perrors.GetCode(err), err, "document %s", docPath)
	}

	dir := filepath.Dir(docPath)
	target := resolve.CanonicalPath(dir, ref)
	entry, _ := r.cache.Get(target)
	if entry == nil {
		return "", perrors.New(perrors.ErrCodeDanglingReference,
			"document %s references unknown diagram %s", docPath, ref)
	}

	if image && opts.Embed {
		artifact, ok := opts.Artifacts[target]
		if !ok {
			r.logger.Error("no exported image for diagram, linking render URL instead",
				"document", docPath, "diagram", target)
			return fmt.Sprintf("[![%s](%s)](%s)", label, entry.URL, entry.URL), nil
		}
		if _, err := os.Stat(artifact); err != nil {
			r.logger.Error("exported image missing on disk",
				"document", docPath, "diagram", target, "artifact", artifact)
		}
		src := artifact
		if rel, err := filepath.Rel(dir, artifact); err == nil {
			src = rel
		}
		return fmt.Sprintf("![%s](%s)", label, filepath.ToSlash(src)), nil
	}
	if image {
		return fmt.Sprintf("[![%s](%s)](%s)", label, entry.URL, entry.URL), nil
	}
	return fmt.Sprintf("[%s](%s)", label, entry.URL), nil
}
