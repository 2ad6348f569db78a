package plantuml

import (
	"strings"

	perrors "github.com/pumldock/pumldock/pkg/errors"
)

// Format identifies an image format understood by PlantUML rendering servers.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// Ext returns the artifact file extension for the format, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ParseFormats parses the user-facing format selector: "png", "svg" or
// "both". An empty selector defaults to SVG. "both" lists SVG first so
// embedded document links can rely on the SVG artifact existing.
func ParseFormats(s string) ([]Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return []Format{FormatPNG}, nil
	case "svg", "":
		return []Format{FormatSVG}, nil
	case "both":
		return []Format{FormatSVG, FormatPNG}, nil
	default:
		return nil, perrors.New(perrors.ErrCodeInvalidFormat, "unknown image format %q (expected png, svg or both)", s)
	}
}
