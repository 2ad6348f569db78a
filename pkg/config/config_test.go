package config

import (
	"os"
	"path/filepath"
	"testing"

	perrors "github.com/pumldock/pumldock/pkg/errors"
)

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "docs", "api")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	want := filepath.Join(root, FileName)
	if err := os.WriteFile(want, []byte("[render]\nserver = \"http://localhost:8080\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, ok, err := Find(nested)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if !ok {
		t.Fatal("Find() ok = false, want true")
	}
	if got != want {
		t.Errorf("Find() = %q, want %q", got, want)
	}
}

func TestFindNotFound(t *testing.T) {
	// A fresh temp dir has no pumldock.toml anywhere up its (tmpfs) chain in
	// practice, but guard against one existing in a parent by checking ok
	// only for the known-clean subtree result.
	dir := t.TempDir()
	path, ok, err := Find(dir)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if ok && filepath.Dir(path) == dir {
		t.Errorf("Find() unexpectedly found %q", path)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	content := `
[render]
server = "http://plantuml.internal:8080/plantuml"
formats = "both"
export = true
output = "out/diagrams"

[paths]
root = "."
docs = "documentation"

[links]
embed = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if f.Render.Server != "http://plantuml.internal:8080/plantuml" {
		t.Errorf("Render.Server = %q", f.Render.Server)
	}
	if f.Render.Formats != "both" {
		t.Errorf("Render.Formats = %q", f.Render.Formats)
	}
	if !f.Render.Export {
		t.Error("Render.Export = false, want true")
	}
	if f.Paths.Docs != "documentation" {
		t.Errorf("Paths.Docs = %q", f.Paths.Docs)
	}
	if !f.Links.Embed {
		t.Error("Links.Embed = false, want true")
	}
	if f.Links.Shorten {
		t.Error("Links.Shorten = true, want false (unset)")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("[render\nserver = "), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := Load(path)
	if !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
		t.Fatalf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestStarterParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(Starter), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load(Starter) error = %v", err)
	}
	// Every starter value is commented out; the parsed file must be zero.
	if *f != (File{}) {
		t.Errorf("Load(Starter) = %+v, want zero File", *f)
	}
}
