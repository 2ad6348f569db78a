package cli

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pumldock/pumldock/pkg/config"
	perrors "github.com/pumldock/pumldock/pkg/errors"
	"github.com/pumldock/pumldock/pkg/pipeline"
	"github.com/pumldock/pumldock/pkg/plantuml"
)

// passFlags holds the command-line flags shared by run and watch.
type passFlags struct {
	root       string
	docs       string
	diagrams   string
	server     string
	formats    string
	export     bool
	output     string
	embed      bool
	shorten    bool
	shortener  string
	noIgnore   bool
	ignoreFile string
	workers    int
	configPath string
}

// addPassFlags registers the flags shared by run and watch on cmd.
func addPassFlags(cmd *cobra.Command, f *passFlags) {
	flags := cmd.Flags()
	flags.StringVarP(&f.root, "root", "r", "", "project root directory (default: \".\")")
	flags.StringVar(&f.docs, "docs", "", "documentation directory, relative to the root")
	flags.StringVar(&f.diagrams, "diagrams", "", "diagram directory, relative to the root")
	flags.StringVar(&f.server, "server", "", "PlantUML render server (default: "+pipeline.DefaultServer+")")
	flags.StringVarP(&f.formats, "format", "f", "", "export image format: png, svg or both (default: svg)")
	flags.BoolVarP(&f.export, "export", "e", false, "write rendered images to the output directory")
	flags.StringVarP(&f.output, "output", "o", "", "output directory for exported images (default: "+pipeline.DefaultOutputDir+")")
	flags.BoolVar(&f.embed, "embed", false, "embed exported SVG files instead of linking render URLs")
	flags.BoolVar(&f.shorten, "shorten", false, "shorten render URLs")
	flags.StringVar(&f.shortener, "shortener", "", "URL shortener endpoint (default: "+pipeline.DefaultShortener+")")
	flags.BoolVar(&f.noIgnore, "no-ignore", false, "do not apply ignore patterns")
	flags.StringVar(&f.ignoreFile, "ignore-file", "", "gitignore-style file excluding paths from the scan")
	flags.IntVar(&f.workers, "workers", 0, "concurrent render requests (default: 4)")
	flags.StringVar(&f.configPath, "config", "", "config file (default: "+config.FileName+" found from the root upward)")
}

// buildOptions layers pass configuration: built-in defaults, then the
// project's pumldock.toml (discovered by walking up from the root), then
// flags the user set explicitly.
func buildOptions(cmd *cobra.Command, f *passFlags, logger *log.Logger) (pipeline.Options, error) {
	opts := pipeline.Options{Logger: logger}

	path, found, err := locateConfig(f)
	if err != nil {
		return opts, err
	}
	if found {
		cfg, err := config.Load(path)
		if err != nil {
			return opts, err
		}
		if err := applyConfig(&opts, cfg, filepath.Dir(path)); err != nil {
			return opts, perrors.Wrap(perrors.GetCode(err), err, "config %s", path)
		}
		logger.Debug("loaded config", "path", path)
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		opts.Root = f.root
	}
	if flags.Changed("docs") {
		opts.Docs = f.docs
	}
	if flags.Changed("diagrams") {
		opts.Diagrams = f.diagrams
	}
	if flags.Changed("server") {
		opts.Server = f.server
	}
	if flags.Changed("format") {
		formats, err := plantuml.ParseFormats(f.formats)
		if err != nil {
			return opts, err
		}
		opts.Formats = formats
	}
	if flags.Changed("export") {
		opts.Export = f.export
	}
	if flags.Changed("output") {
		opts.OutputDir = f.output
	}
	if flags.Changed("embed") {
		opts.Embed = f.embed
	}
	if flags.Changed("shorten") {
		opts.Shorten = f.shorten
	}
	if flags.Changed("shortener") {
		opts.Shortener = f.shortener
	}
	if flags.Changed("no-ignore") {
		opts.NoIgnore = f.noIgnore
	}
	if flags.Changed("ignore-file") {
		opts.IgnoreFile = f.ignoreFile
	}
	if flags.Changed("workers") {
		opts.Workers = f.workers
	}

	return opts, nil
}

// locateConfig returns the config file to use: an explicit --config path,
// which must exist, or the nearest discovered file above the root.
func locateConfig(f *passFlags) (string, bool, error) {
	if f.configPath != "" {
		if _, err := os.Stat(f.configPath); err != nil {
			return "", false, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "config file %s", f.configPath)
		}
		return f.configPath, true, nil
	}

	start := f.root
	if start == "" {
		start = "."
	}
	return config.Find(start)
}

// applyConfig copies file settings onto opts. A relative root in the config
// resolves against the config file's directory; when the config sets no root
// at all, the file's directory becomes the root, so pumldock can run from
// any subdirectory of a project.
func applyConfig(opts *pipeline.Options, cfg *config.File, dir string) error {
	opts.Root = dir
	if cfg.Paths.Root != "" {
		if filepath.IsAbs(cfg.Paths.Root) {
			opts.Root = filepath.Clean(cfg.Paths.Root)
		} else {
			opts.Root = filepath.Join(dir, cfg.Paths.Root)
		}
	}
	opts.Docs = cfg.Paths.Docs
	opts.Diagrams = cfg.Paths.Diagrams
	opts.IgnoreFile = cfg.Paths.IgnoreFile
	opts.NoIgnore = cfg.Paths.NoIgnore

	opts.Server = cfg.Render.Server
	opts.Export = cfg.Render.Export
	opts.OutputDir = cfg.Render.Output
	if cfg.Render.Formats != "" {
		formats, err := plantuml.ParseFormats(cfg.Render.Formats)
		if err != nil {
			return err
		}
		opts.Formats = formats
	}

	opts.Embed = cfg.Links.Embed
	opts.Shorten = cfg.Links.Shorten
	opts.Shortener = cfg.Links.Shortener

	return nil
}
