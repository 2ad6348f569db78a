package resolve

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// includePattern matches PlantUML !include directives; the rest of the line
// is the target.
var includePattern = regexp.MustCompile(`(?m)^[ \t]*!include[ \t]+(.+)$`)

// ExpandIncludes splices the contents of readable local include targets into
// text. Targets resolve relative to dir. Targets that cannot be read (remote
// URLs, standard-library includes, typos) leave the directive line verbatim
// for the rendering server to interpret. Spliced content is not rescanned,
// so nested includes stay unexpanded.
func ExpandIncludes(text, dir string) string {
	return includePattern.ReplaceAllStringFunc(text, func(line string) string {
		m := includePattern.FindStringSubmatch(line)
		target := strings.TrimSpace(m[1])
		if target == "" {
			return line
		}
		path := target
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return line
		}
		return strings.TrimRight(string(data), "\r\n")
	})
}
