package resolve

import (
	"path/filepath"
	"regexp"
	"strings"
)

// refPattern matches PlantUML hyperlink markers whose target names a diagram
// source file: [[./other.puml]] or [[./other.puml Label text]]. Labels may
// not contain square brackets.
var refPattern = regexp.MustCompile(`\[\[(\S+?\.(?i:puml|plantuml|pu|iuml))([ \t][^\[\]]*)?\]\]`)

// Reference is one reference marker occurrence in diagram text.
type Reference struct {
	Marker string // full marker text, e.g. "[[./other.puml Label]]"
	Target string // referenced path as written
	Label  string // optional label, surrounding whitespace trimmed
}

// WithTarget returns the marker rewritten to point at target, label
// preserved.
func (r Reference) WithTarget(target string) string {
	if r.Label == "" {
		return "[[" + target + "]]"
	}
	return "[[" + target + " " + r.Label + "]]"
}

// FindReferences returns every reference marker in text in order of
// appearance. Repeated markers are repeated in the result.
func FindReferences(text string) []Reference {
	matches := refPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]Reference, len(matches))
	for i, m := range matches {
		refs[i] = Reference{Marker: m[0], Target: m[1], Label: strings.TrimSpace(m[2])}
	}
	return refs
}

// CanonicalPath resolves ref against dir into the cleaned path used as a
// cache key. dir must be absolute.
func CanonicalPath(dir, ref string) string {
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Join(dir, ref)
}
