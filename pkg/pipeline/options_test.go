package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	perrors "github.com/pumldock/pumldock/pkg/errors"
	"github.com/pumldock/pumldock/pkg/plantuml"
)

func TestOptionsDefaults(t *testing.T) {
	root := t.TempDir()
	opts := Options{Root: root}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}

	if opts.Server != DefaultServer {
		t.Errorf("Server = %q, want %q", opts.Server, DefaultServer)
	}
	if opts.Docs != opts.Root || opts.Diagrams != opts.Root {
		t.Errorf("Docs/Diagrams should default to root, got %q / %q", opts.Docs, opts.Diagrams)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != plantuml.FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if want := filepath.Join(opts.Root, DefaultOutputDir); opts.OutputDir != want {
		t.Errorf("OutputDir = %q, want %q", opts.OutputDir, want)
	}
	if opts.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", opts.Workers, DefaultWorkers)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}
}

func TestOptionsValidateIdempotent(t *testing.T) {
	opts := Options{Root: t.TempDir()}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("first validation failed: %v", err)
	}
	server, out, workers := opts.Server, opts.OutputDir, opts.Workers

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second validation failed: %v", err)
	}
	if opts.Server != server || opts.OutputDir != out || opts.Workers != workers {
		t.Error("options changed on second validation")
	}
}

func TestOptionsMissingRoot(t *testing.T) {
	opts := Options{Root: filepath.Join(t.TempDir(), "absent")}
	err := opts.ValidateAndSetDefaults()
	if !perrors.Is(err, perrors.ErrCodeDirNotFound) {
		t.Errorf("error = %v, want DIR_NOT_FOUND", err)
	}
}

func TestOptionsMissingDocsDir(t *testing.T) {
	opts := Options{Root: t.TempDir(), Docs: "docs"}
	err := opts.ValidateAndSetDefaults()
	if !perrors.Is(err, perrors.ErrCodeDirNotFound) {
		t.Errorf("error = %v, want DIR_NOT_FOUND", err)
	}
}

func TestOptionsBadServerURL(t *testing.T) {
	opts := Options{Root: t.TempDir(), Server: "ftp://files.example"}
	err := opts.ValidateAndSetDefaults()
	if !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestOptionsEmbedRequiresExport(t *testing.T) {
	opts := Options{Root: t.TempDir(), Embed: true}
	err := opts.ValidateAndSetDefaults()
	if !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestOptionsEmbedRequiresSVG(t *testing.T) {
	opts := Options{
		Root:    t.TempDir(),
		Embed:   true,
		Export:  true,
		Formats: []plantuml.Format{plantuml.FormatPNG},
	}
	err := opts.ValidateAndSetDefaults()
	if !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestOptionsRefusesUnsafeOutputDir(t *testing.T) {
	tests := []struct {
		name   string
		outDir string
	}{
		{"root itself", "."},
		{"parent of root", ".."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Root: t.TempDir(), Export: true, OutputDir: tt.outDir}
			err := opts.ValidateAndSetDefaults()
			if !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestOptionsIgnoreFileDiscovery(t *testing.T) {
	root := t.TempDir()

	opts := Options{Root: root}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.IgnoreFile != "" {
		t.Errorf("IgnoreFile = %q, want empty without .gitignore", opts.IgnoreFile)
	}

	ignorePath := filepath.Join(root, DefaultIgnoreFile)
	if err := os.WriteFile(ignorePath, []byte("build/\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts = Options{Root: root}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.IgnoreFile != ignorePath {
		t.Errorf("IgnoreFile = %q, want %q", opts.IgnoreFile, ignorePath)
	}
}

func TestOptionsNoIgnoreWins(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, DefaultIgnoreFile), []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := Options{Root: root, NoIgnore: true}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.IgnoreFile != "" {
		t.Errorf("IgnoreFile = %q, want empty with NoIgnore", opts.IgnoreFile)
	}
}

func TestOptionsExplicitIgnoreFileMustExist(t *testing.T) {
	opts := Options{Root: t.TempDir(), IgnoreFile: "missing.ignore"}
	err := opts.ValidateAndSetDefaults()
	if !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}
