// Package config loads the optional pumldock.toml project file.
//
// The file is discovered by walking up from the working directory, so
// pumldock can run from any subdirectory of a project. Every field is
// optional: flags given on the command line override file values, and file
// values override built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	perrors "github.com/pumldock/pumldock/pkg/errors"
)

// FileName is the project configuration file pumldock looks for.
const FileName = "pumldock.toml"

// File mirrors pumldock.toml. Zero values mean "not set" and defer to the
// defaults applied during option validation.
type File struct {
	Render RenderSection `toml:"render"`
	Paths  PathsSection  `toml:"paths"`
	Links  LinksSection  `toml:"links"`
}

// RenderSection configures the rendering server and artifact export.
type RenderSection struct {
	Server  string `toml:"server"`
	Formats string `toml:"formats"`
	Export  bool   `toml:"export"`
	Output  string `toml:"output"`
}

// PathsSection configures the trees pumldock scans.
type PathsSection struct {
	Root       string `toml:"root"`
	Docs       string `toml:"docs"`
	Diagrams   string `toml:"diagrams"`
	IgnoreFile string `toml:"ignore_file"`
	NoIgnore   bool   `toml:"no_ignore"`
}

// LinksSection configures how documentation links are written.
type LinksSection struct {
	Embed     bool   `toml:"embed"`
	Shorten   bool   `toml:"shorten"`
	Shortener string `toml:"shortener"`
}

// Find walks up from startDir looking for pumldock.toml. Returns the path
// and true when found; false with a nil error when no file exists up to the
// filesystem root.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses the TOML file at path.
func Load(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	return &f, nil
}

// Starter is the annotated template written by `pumldock init`.
const Starter = `# pumldock project configuration.
# Flags given on the command line override these values.

[render]
# server = "https://www.plantuml.com/plantuml"
# formats = "svg"   # png, svg or both
# export = true
# output = "rendered-diagrams"

[paths]
# root = "."
# docs = "docs"
# diagrams = "diagrams"
# ignore_file = ".gitignore"
# no_ignore = false

[links]
# embed = false
# shorten = false
# shortener = "https://tinyurl.com/api-create.php"
`
