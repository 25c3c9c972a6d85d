package deck

import (
	"strings"
	"unicode"
)

// Default command-comment markers and separators.
const (
	DefaultStartMarker     = "<!--!"
	DefaultEndMarker       = "-->"
	DefaultCodeStartMarker = "# <!--!"
	DefaultCodeEndMarker   = "-->"
	DefaultPageSeparator   = "\n\n---\n"
)

// Markers delimit a command-comment region. Both are matched against lines
// trimmed of surrounding whitespace.
type Markers struct {
	Start string
	End   string
}

// DefaultMarkers returns the markers used in markdown blocks.
func DefaultMarkers() Markers {
	return Markers{Start: DefaultStartMarker, End: DefaultEndMarker}
}

// DefaultCodeMarkers returns the markers used in code blocks.
func DefaultCodeMarkers() Markers {
	return Markers{Start: DefaultCodeStartMarker, End: DefaultCodeEndMarker}
}

// regionState tracks whether a line is inside a command-comment region.
type regionState int

const (
	stateOutside regionState = iota // ordinary content
	stateWithin                     // inside an unterminated region
	stateEnd                        // the line completed a region
)

// regionScanner feeds lines through the outside/within/end automaton and
// collects the text of the current region.
type regionScanner struct {
	markers Markers
	state   regionState
	text    strings.Builder
}

// next advances the automaton by one line and returns the new state.
// After stateEnd the caller reads text() and calls reset().
func (s *regionScanner) next(line string) regionState {
	trimmed := strings.TrimSpace(line)

	switch s.state {
	case stateOutside:
		if !strings.HasPrefix(trimmed, s.markers.Start) {
			return stateOutside
		}
		rest := trimmed[len(s.markers.Start):]
		if strings.HasSuffix(rest, s.markers.End) {
			s.text.WriteString(strings.TrimSuffix(rest, s.markers.End))
			s.state = stateEnd
		} else {
			s.text.WriteString(rest)
			s.text.WriteByte('\n')
			s.state = stateWithin
		}
	case stateWithin:
		if strings.HasSuffix(trimmed, s.markers.End) {
			s.text.WriteString(strings.TrimSuffix(strings.TrimRightFunc(line, unicode.IsSpace), s.markers.End))
			s.state = stateEnd
		} else {
			s.text.WriteString(normalizeLine(line))
		}
	}

	return s.state
}

// regionText returns the trimmed text of the completed region.
func (s *regionScanner) regionText() string {
	return strings.TrimSpace(s.text.String())
}

func (s *regionScanner) reset() {
	s.text.Reset()
	s.state = stateOutside
}

// StripCommandRegions returns the block content with all command-comment
// regions removed. An unterminated region is dropped up to the end of the
// block.
func StripCommandRegions(lines []string, markers Markers) string {
	var sb strings.Builder
	scanner := regionScanner{markers: markers}

	for _, line := range lines {
		switch scanner.next(line) {
		case stateEnd:
			scanner.reset()
		case stateOutside:
			sb.WriteString(line)
		}
	}

	return sb.String()
}

// normalizeLine returns line with exactly one trailing "\n".
func normalizeLine(line string) string {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line + "\n"
}

// ensureNewline appends "\n" to non-empty text that does not end with one.
func ensureNewline(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}
