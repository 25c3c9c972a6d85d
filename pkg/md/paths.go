// paths.go locates image references in markdown and inline HTML.
package md

import (
	"strings"
	"unicode"
)

// ImageRef is an image path found in a text together with its location.
type ImageRef struct {
	Content string // path as written (HTML src values are unescaped)
	Start   int    // byte offset of the first path byte
	End     int    // byte offset after the last path byte
}

// ScanImageRefs returns every image reference in text, in document order.
// Recognized forms:
//   - ![alt](path) - markdown image
//   - <tag ... src="path" ...> - any HTML tag with a quoted src attribute
//
// Regions that do not match either form are skipped; the scan never fails.
func ScanImageRefs(text string) []ImageRef {
	var refs []ImageRef
	pos := 0

	for pos < len(text) {
		switch {
		case strings.HasPrefix(text[pos:], "!["):
			ref, endPos, ok := scanMarkdownImage(text, pos)
			if !ok {
				pos++
				continue
			}
			refs = append(refs, ref)
			pos = endPos
		case text[pos] == '<':
			ref, endPos, ok := scanHTMLSrc(text, pos)
			if !ok {
				pos++
				continue
			}
			refs = append(refs, ref)
			pos = endPos
		default:
			pos++
		}
	}

	return refs
}

// scanMarkdownImage parses ![alt](path) starting at pos.
// Returns the reference and the position after the closing ')'.
func scanMarkdownImage(text string, pos int) (ImageRef, int, bool) {
	pos += 2 // skip "!["

	// Alt text: anything up to the first ']'
	closeAlt := strings.IndexByte(text[pos:], ']')
	if closeAlt < 0 {
		return ImageRef{}, pos, false
	}
	pos += closeAlt + 1

	if pos >= len(text) || text[pos] != '(' {
		return ImageRef{}, pos, false
	}
	pos++ // skip '('

	pathStart := pos
	pathEnd := indexUnescaped(text, pos, ')')
	if pathEnd < 0 {
		return ImageRef{}, pos, false
	}

	return ImageRef{
		Content: text[pathStart:pathEnd],
		Start:   pathStart,
		End:     pathEnd,
	}, pathEnd + 1, true
}

// scanHTMLSrc parses a tag containing src="..." starting at the '<' at pos.
// The src attribute must appear before the tag's closing '>'.
func scanHTMLSrc(text string, pos int) (ImageRef, int, bool) {
	pos++ // skip '<'

	for pos < len(text) && text[pos] != '>' {
		if !strings.HasPrefix(text[pos:], "src") {
			pos++
			continue
		}

		valuePos, ok := skipAssignment(text, pos+len("src"))
		if !ok {
			pos++
			continue
		}

		content, start, end, ok := scanQuoted(text, valuePos)
		if !ok {
			pos++
			continue
		}

		// Skip the rest of the tag
		endPos := end + 1
		if closeTag := strings.IndexByte(text[endPos:], '>'); closeTag >= 0 {
			endPos += closeTag + 1
		} else {
			endPos = len(text)
		}

		return ImageRef{Content: content, Start: start, End: end}, endPos, true
	}

	return ImageRef{}, pos, false
}

// skipAssignment skips optional whitespace, '=' and optional whitespace.
// Returns the position of the value.
func skipAssignment(text string, pos int) (int, bool) {
	pos = skipSpace(text, pos)
	if pos >= len(text) || text[pos] != '=' {
		return pos, false
	}
	return skipSpace(text, pos+1), true
}

// scanQuoted reads a single or double quoted string starting at the opening
// quote at pos. Escaped quotes of the same kind are unescaped in the returned
// content; start and end delimit the raw text between the quotes.
func scanQuoted(text string, pos int) (content string, start, end int, ok bool) {
	if pos >= len(text) || (text[pos] != '"' && text[pos] != '\'') {
		return "", pos, pos, false
	}
	quoteChar := text[pos]
	start = pos + 1

	end = indexUnescaped(text, start, quoteChar)
	if end < 0 {
		return "", start, start, false
	}

	escaped := `\` + string(quoteChar)
	content = strings.ReplaceAll(text[start:end], escaped, string(quoteChar))
	return content, start, end, true
}

// indexUnescaped returns the index of the first c at or after pos that is not
// preceded by a backslash, or -1.
func indexUnescaped(text string, pos int, c byte) int {
	for pos < len(text) {
		if text[pos] == '\\' {
			pos += 2
			continue
		}
		if text[pos] == c {
			return pos
		}
		pos++
	}
	return -1
}

func skipSpace(text string, pos int) int {
	for pos < len(text) && unicode.IsSpace(rune(text[pos])) {
		pos++
	}
	return pos
}
