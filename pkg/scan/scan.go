// Package scan lists diagram and documentation files under a project tree,
// applying gitignore-style filtering.
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	perrors "github.com/pumldock/pumldock/pkg/errors"
)

// DiagramExts lists the PlantUML source extensions the resolver manages.
var DiagramExts = []string{".puml", ".plantuml", ".pu", ".iuml"}

var docExts = []string{".md", ".markdown"}

// IsDiagramPath reports whether path names a PlantUML source file.
func IsDiagramPath(path string) bool {
	return slices.Contains(DiagramExts, strings.ToLower(filepath.Ext(path)))
}

// IsDocPath reports whether path names a Markdown documentation file.
func IsDocPath(path string) bool {
	return slices.Contains(docExts, strings.ToLower(filepath.Ext(path)))
}

// Scanner walks directory trees for diagram and documentation files.
// Results are absolute paths in sorted order for deterministic processing.
// Dot-directories are always skipped.
type Scanner struct {
	base    string
	matcher *gitignore.GitIgnore
}

// New creates a Scanner whose ignore patterns match paths relative to base.
// If ignoreFile is non-empty it must name a readable gitignore-style file;
// pass "" to scan without filtering.
func New(base, ignoreFile string) (*Scanner, error) {
	s := &Scanner{base: base}
	if ignoreFile != "" {
		m, err := gitignore.CompileIgnoreFile(ignoreFile)
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "read ignore file %s", ignoreFile)
		}
		s.matcher = m
	}
	return s, nil
}

// Diagrams returns every diagram source file under dir.
func (s *Scanner) Diagrams(dir string) ([]string, error) {
	return s.walk(dir, IsDiagramPath)
}

// Docs returns every Markdown documentation file under dir.
func (s *Scanner) Docs(dir string) ([]string, error) {
	return s.walk(dir, IsDocPath)
}

func (s *Scanner) walk(dir string, match func(string) bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || s.ignored(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !match(path) || s.ignored(path) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		files = append(files, abs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}

func (s *Scanner) ignored(path string) bool {
	if s.matcher == nil {
		return false
	}
	rel, err := filepath.Rel(s.base, path)
	if err != nil {
		return false
	}
	return s.matcher.MatchesPath(rel)
}
