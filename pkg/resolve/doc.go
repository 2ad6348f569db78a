// Package resolve turns a tree of PlantUML files into render-ready entries.
//
// # Model
//
// Diagrams reference each other with PlantUML hyperlink markers whose target
// names another diagram file ([[./other.puml]], optionally with a label) and
// splice shared fragments with !include directives. Resolving a diagram
// means: resolve every referenced diagram, substitute each reference marker
// with one carrying the child's render URL, splice local includes, then
// encode the final text into its render URL.
//
// # Cache
//
// Every diagram scanned for a pass is registered in a [Cache] keyed by
// canonical absolute path. A slot moves pending -> resolving -> resolved and
// never reverts; the resolved [Entry] carries the final text, its encoding
// and the render URL. Concurrent resolutions of the same path are coalesced:
// one goroutine computes, the rest wait on the slot.
//
// # Cycles
//
// Reference graphs must be acyclic. Callers are expected to validate the
// reference graph up front (see the graph package); the [Resolver]
// additionally carries its ancestry chain and fails fast with the named
// chain if a resolution re-enters a path, so a cycle can never hang a pass.
//
// References to files outside the registered set are not errors: the marker
// is left verbatim and resolution continues ([ErrNotManaged] internally).
package resolve
