package errors

import (
	"os"
	"strings"
	"unicode"
)

// ValidateDir validates that path names an existing directory.
// The label is used in the error message (e.g., "docs", "diagrams").
func ValidateDir(label, path string) error {
	if path == "" {
		return New(ErrCodeInvalidConfig, "%s directory cannot be empty", label)
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return New(ErrCodeDirNotFound, "%s directory does not exist: %s", label, path)
	}
	if err != nil {
		return Wrap(ErrCodeInvalidConfig, err, "%s directory: %s", label, path)
	}
	if !info.IsDir() {
		return New(ErrCodeInvalidConfig, "%s path is not a directory: %s", label, path)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(label, rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "%s URL cannot be empty", label)
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidConfig, "%s URL must use http or https scheme: %s", label, rawURL)
	}

	return nil
}

// ValidateReferencePath validates a diagram path found in a directive.
// It rejects paths that could be used for traversal outside the project
// or that contain characters no diagram file path should carry.
func ValidateReferencePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "reference path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "reference path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "reference path contains invalid characters")
		}
	}

	// No backslashes; directives use forward slashes on every platform
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "reference path cannot contain backslashes")
	}

	return nil
}
