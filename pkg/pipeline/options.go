package pipeline

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	perrors "github.com/pumldock/pumldock/pkg/errors"
	"github.com/pumldock/pumldock/pkg/plantuml"
)

// =============================================================================
// DEFAULT VALUES - Single Source of Truth
// =============================================================================

// Default option values. CLI flag defaults come from here so that the
// flag help, the config starter and the pipeline never disagree.
const (
	// DefaultServer is the public PlantUML render service.
	DefaultServer = plantuml.DefaultServer

	// DefaultShortener is the URL shortening service used with --shorten.
	DefaultShortener = plantuml.DefaultShortener

	// DefaultOutputDir receives exported images, relative to the root.
	DefaultOutputDir = "rendered-diagrams"

	// DefaultIgnoreFile is picked up from the root when present.
	DefaultIgnoreFile = ".gitignore"

	// DefaultWorkers bounds concurrent resolution and export requests.
	DefaultWorkers = 4
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a documentation pass.
//
// Relative Docs, Diagrams, OutputDir and IgnoreFile paths are resolved
// against Root; Root itself is resolved against the working directory.
// The zero value plus ValidateAndSetDefaults yields a pass over the
// current directory.
type Options struct {
	// Root is the project directory. Defaults to ".".
	Root string `json:"root"`

	// Docs is the documentation tree to rewrite. Defaults to Root.
	Docs string `json:"docs"`

	// Diagrams is the diagram tree to resolve. Defaults to Root.
	Diagrams string `json:"diagrams"`

	// Server is the PlantUML render service base URL.
	Server string `json:"server"`

	// Formats lists the image formats for export. Defaults to SVG.
	Formats []plantuml.Format `json:"formats"`

	// Export writes rendered images below OutputDir.
	Export bool `json:"export"`

	// OutputDir receives exported images.
	OutputDir string `json:"output_dir"`

	// Embed makes image directives reference exported SVG files instead
	// of render URLs. Requires Export and the SVG format.
	Embed bool `json:"embed"`

	// Shorten passes every render URL through the shortener service.
	Shorten bool `json:"shorten"`

	// Shortener is the shortening service endpoint.
	Shortener string `json:"shortener"`

	// NoIgnore disables ignore-pattern filtering entirely.
	NoIgnore bool `json:"no_ignore"`

	// IgnoreFile holds gitignore-style patterns excluding paths from
	// both scans. When unset, Root's .gitignore is used if it exists.
	IgnoreFile string `json:"ignore_file"`

	// Workers bounds concurrent remote requests. Defaults to DefaultWorkers.
	Workers int `json:"workers"`

	// Logger receives pass progress. Defaults to a discarding logger.
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called
	validated bool
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateAndSetDefaults checks option consistency and fills in default
// values. It is idempotent and must be called before the options are
// used; Execute calls it on its own.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Root == "" {
		o.Root = "."
	}
	root, err := filepath.Abs(o.Root)
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "resolve root %s", o.Root)
	}
	o.Root = root
	if err := perrors.ValidateDir("project root", o.Root); err != nil {
		return err
	}

	o.Docs = o.resolvePath(o.Docs)
	if err := perrors.ValidateDir("documentation directory", o.Docs); err != nil {
		return err
	}
	o.Diagrams = o.resolvePath(o.Diagrams)
	if err := perrors.ValidateDir("diagram directory", o.Diagrams); err != nil {
		return err
	}

	if o.Server == "" {
		o.Server = DefaultServer
	}
	if err := perrors.ValidateURL("render server", o.Server); err != nil {
		return err
	}
	if o.Shortener == "" {
		o.Shortener = DefaultShortener
	}
	if o.Shorten {
		if err := perrors.ValidateURL("shortener", o.Shortener); err != nil {
			return err
		}
	}

	if len(o.Formats) == 0 {
		o.Formats = []plantuml.Format{plantuml.FormatSVG}
	}
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	o.OutputDir = o.resolvePath(o.OutputDir)

	// Export wipes the output directory, so it must never contain the
	// trees we read from.
	if o.Export {
		for _, dir := range []string{o.Root, o.Docs, o.Diagrams} {
			if within(dir, o.OutputDir) {
				return perrors.New(perrors.ErrCodeInvalidConfig,
					"output directory %s contains %s, refusing to delete it on export", o.OutputDir, dir)
			}
		}
	}

	if o.Embed && !o.Export {
		return perrors.New(perrors.ErrCodeInvalidConfig,
			"embed mode requires export (pass --export or set render.export)")
	}
	if o.Embed && !slices.Contains(o.Formats, plantuml.FormatSVG) {
		return perrors.New(perrors.ErrCodeInvalidConfig,
			"embed mode requires the svg image format")
	}

	if o.NoIgnore {
		o.IgnoreFile = ""
	} else if o.IgnoreFile == "" {
		// The default ignore file is optional, an explicit one is not.
		candidate := filepath.Join(o.Root, DefaultIgnoreFile)
		if _, err := os.Stat(candidate); err == nil {
			o.IgnoreFile = candidate
		}
	} else {
		o.IgnoreFile = o.resolvePath(o.IgnoreFile)
		if _, err := os.Stat(o.IgnoreFile); err != nil {
			return perrors.Wrap(perrors.ErrCodeFileNotFound, err, "ignore file %s", o.IgnoreFile)
		}
	}

	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// resolvePath anchors a relative path at the root. Empty means the root
// itself.
func (o *Options) resolvePath(path string) string {
	if path == "" {
		return o.Root
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(o.Root, path)
}

// within reports whether path equals dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
