package command

import (
	"strings"
	"unicode"
)

// unescaper undoes the escapes allowed inside a [...] payload in one pass.
var unescaper = strings.NewReplacer(
	`\\`, `\`,
	`\[`, "[",
	`\]`, "]",
	`\n`, "\n",
	`\"`, `"`,
	`\'`, "'",
)

// Parse parses a sequence of ';'-terminated commands. Whitespace between
// tokens is ignored; an empty input yields no commands.
//
// Grammar:
//
//	commands := (command ';')*
//	command  := keyword | keyword '[' payload ']'
//
// Inside a payload '[' and ']' must be escaped with a backslash.
func Parse(input string) ([]Command, error) {
	var commands []Command
	pos := skipSpace(input, 0)

	for pos < len(input) {
		nameStart := pos
		for pos < len(input) && isIdentChar(rune(input[pos])) {
			pos++
		}
		if pos == nameStart {
			return nil, &ParseError{Err: ErrTrailingInput, Text: strings.TrimSpace(input[nameStart:])}
		}
		name := input[nameStart:pos]

		syntax, ok := Registry[name]
		if !ok {
			return nil, &ParseError{Err: ErrUnknownCommand, Text: name}
		}

		cmd := Command{Kind: syntax.Kind}
		if syntax.HasPayload {
			payload, endPos, ok := parsePayload(input, skipSpace(input, pos))
			if !ok {
				return nil, &ParseError{Err: ErrMissingPayload, Text: name}
			}
			if syntax.Kind == SetPageClass {
				payload = strings.TrimSpace(payload)
			}
			cmd.Payload = payload
			pos = endPos
		}

		pos = skipSpace(input, pos)
		if pos >= len(input) || input[pos] != ';' {
			return nil, &ParseError{Err: ErrMissingSeparator, Text: strings.TrimSpace(input[pos:])}
		}
		pos++ // skip ';'

		commands = append(commands, cmd)
		pos = skipSpace(input, pos)
	}

	return commands, nil
}

// parsePayload parses a [...] block starting at pos. A backslash escapes the
// next byte; an unescaped '[' or a missing ']' fails.
// Returns the unescaped payload and the position after ']'.
func parsePayload(input string, pos int) (string, int, bool) {
	if pos >= len(input) || input[pos] != '[' {
		return "", pos, false
	}
	pos++ // skip '['
	start := pos

	for pos < len(input) {
		switch input[pos] {
		case '\\':
			pos += 2
			continue
		case '[':
			return "", pos, false
		case ']':
			return unescaper.Replace(input[start:pos]), pos + 1, true
		}
		pos++
	}

	return "", pos, false
}

// isIdentChar returns true if r is valid in a command keyword.
func isIdentChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
}

func skipSpace(input string, pos int) int {
	for pos < len(input) && unicode.IsSpace(rune(input[pos])) {
		pos++
	}
	return pos
}
