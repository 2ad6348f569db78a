// Package plantuml implements the text encoding and HTTP clients for PlantUML
// rendering servers.
//
// # Encoding
//
// PlantUML servers accept diagram source inside the URL itself. [Encode]
// compresses the text with raw DEFLATE and packs the bytes into the server's
// 64-character alphabet (not base64: digits sort first, the extra characters
// are '-' and '_'). The result is URL-safe without percent-encoding:
//
//	encoded, err := plantuml.Encode("@startuml\nA -> B\n@enduml")
//	url := client.RenderURL(encoded, plantuml.FormatSVG)
//
// # Rendering
//
// [Client] fetches rendered images via GET {server}/{format}/{encoded}.
// Transient failures (network errors, 5xx, 429) are retried with backoff.
// HTTP 400 is special: the server rejects diagrams with no renderable content
// but still answers with an image describing the problem, so the client
// returns a [BadRequestError] carrying the body instead of discarding it.
//
// # Shortening
//
// Render URLs for large diagrams grow to thousands of characters. [Client.Shorten]
// trades readability for an extra request by asking a shortening service
// (GET {shortener}?url={renderURL}, plain-text response) for a compact alias.
package plantuml
