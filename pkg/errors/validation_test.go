package errors

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()

	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		name     string
		path     string
		wantErr  bool
		wantCode Code
	}{
		{
			name:    "valid directory",
			path:    dir,
			wantErr: false,
		},
		{
			name:     "empty path",
			path:     "",
			wantErr:  true,
			wantCode: ErrCodeInvalidConfig,
		},
		{
			name:     "missing directory",
			path:     filepath.Join(dir, "does-not-exist"),
			wantErr:  true,
			wantCode: ErrCodeDirNotFound,
		},
		{
			name:     "path is a file",
			path:     file,
			wantErr:  true,
			wantCode: ErrCodeInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDir("docs root", tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDir() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !Is(err, tt.wantCode) {
				t.Errorf("ValidateDir() code = %v, want %v", GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{
			name:    "https URL",
			url:     "https://www.plantuml.com/plantuml",
			wantErr: false,
		},
		{
			name:    "http URL",
			url:     "http://localhost:8080",
			wantErr: false,
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
		{
			name:    "missing scheme",
			url:     "www.plantuml.com/plantuml",
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			url:     "ftp://example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL("server", tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("ValidateURL() code = %v, want %v", GetCode(err), ErrCodeInvalidConfig)
			}
		})
	}
}

func TestValidateReferencePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{
			name:    "simple relative path",
			path:    "./diagrams/overview.puml",
			wantErr: false,
		},
		{
			name:    "parent traversal",
			path:    "../shared/common.iuml",
			wantErr: false,
		},
		{
			name:    "empty",
			path:    "",
			wantErr: true,
		},
		{
			name:    "too long",
			path:    strings.Repeat("a", 501),
			wantErr: true,
		},
		{
			name:    "control character",
			path:    "diagrams/\x01bad.puml",
			wantErr: true,
		},
		{
			name:    "null byte",
			path:    "diagrams/\x00bad.puml",
			wantErr: true,
		},
		{
			name:    "backslash separator",
			path:    `diagrams\overview.puml`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReferencePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateReferencePath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateReferencePath() code = %v, want %v", GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidConfig,
		ErrCodeInvalidFormat,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeDirNotFound,
		ErrCodeDanglingReference,
		ErrCodeDiagramCycle,
		ErrCodeNetwork,
		ErrCodeRenderFailure,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
