package rewrite

import "strings"

// span is a half-open byte range [start, end) within a document.
type span struct {
	start, end int
}

func overlapsAny(spans []span, start, end int) bool {
	for _, s := range spans {
		if start < s.end && s.start < end {
			return true
		}
	}
	return false
}

// codeRegions returns the byte ranges of fenced code blocks and inline
// code spans in markdown text. Directives inside these ranges show the
// marker syntax itself and must never be rewritten.
func codeRegions(text string) []span {
	fences := fencedBlocks(text)
	return append(fences, inlineSpans(text, fences)...)
}

// fencedBlocks scans line by line for ``` and ~~~ fences. The opening
// fence may carry an info string; the closing fence must be a run of at
// least the opening length and nothing else. An unclosed fence extends
// to the end of the text.
func fencedBlocks(text string) []span {
	var blocks []span
	inFence := false
	var fenceChar byte
	fenceLen := 0
	blockStart := 0

	offset := 0
	for offset < len(text) {
		next := len(text)
		if i := strings.IndexByte(text[offset:], '\n'); i >= 0 {
			next = offset + i + 1
		}
		line := strings.TrimRight(text[offset:next], "\r\n")
		trimmed := strings.TrimLeft(line, " ")
		ch, run := leadingRun(trimmed)
		isFence := (ch == '`' || ch == '~') && run >= 3
		switch {
		case !inFence && isFence:
			inFence = true
			fenceChar = ch
			fenceLen = run
			blockStart = offset
		case inFence && isFence && ch == fenceChar && run >= fenceLen && strings.TrimSpace(trimmed[run:]) == "":
			blocks = append(blocks, span{blockStart, next})
			inFence = false
		}
		offset = next
	}
	if inFence {
		blocks = append(blocks, span{blockStart, len(text)})
	}
	return blocks
}

// inlineSpans finds backtick code spans outside fenced blocks. A span
// opens with a run of N backticks and closes at the next run of exactly
// N backticks with no blank line in between; an opener without a close
// is literal text.
func inlineSpans(text string, fences []span) []span {
	var spans []span
	i := 0
	for i < len(text) {
		if f, ok := containing(fences, i); ok {
			i = f.end
			continue
		}
		if text[i] != '`' {
			i++
			continue
		}
		_, open := leadingRun(text[i:])
		end, ok := closingRun(text, fences, i+open, open)
		if !ok || strings.Contains(text[i:end], "\n\n") {
			i += open
			continue
		}
		spans = append(spans, span{i, end})
		i = end
	}
	return spans
}

// closingRun searches from pos for a backtick run of exactly length n
// and returns the offset just past it.
func closingRun(text string, fences []span, pos, n int) (int, bool) {
	for pos < len(text) {
		i := strings.IndexByte(text[pos:], '`')
		if i < 0 {
			return 0, false
		}
		pos += i
		if _, ok := containing(fences, pos); ok {
			return 0, false
		}
		_, run := leadingRun(text[pos:])
		if run == n {
			return pos + run, true
		}
		pos += run
	}
	return 0, false
}

func containing(spans []span, pos int) (span, bool) {
	for _, s := range spans {
		if pos >= s.start && pos < s.end {
			return s, true
		}
	}
	return span{}, false
}

// leadingRun reports the first byte of s and how often it repeats.
func leadingRun(s string) (byte, int) {
	if s == "" {
		return 0, 0
	}
	ch := s[0]
	n := 1
	for n < len(s) && s[n] == ch {
		n++
	}
	return ch, n
}
