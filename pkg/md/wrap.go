// wrap.go substitutes image references into {}/{N} templates.
package md

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidIndex      = errors.New("invalid placeholder index")
	ErrIndexOutOfRange   = errors.New("placeholder index out of range")
	ErrMalformedTemplate = errors.New("malformed template")
)

// WrapError describes why a template could not be applied.
type WrapError struct {
	Err       error  // one of the Err* sentinels above
	Raw       string // placeholder text for ErrInvalidIndex
	Index     int    // requested index for ErrIndexOutOfRange
	Available int    // number of references for ErrIndexOutOfRange
}

func (e *WrapError) Error() string {
	switch e.Err {
	case ErrInvalidIndex:
		return fmt.Sprintf("%v: %q", e.Err, e.Raw)
	case ErrIndexOutOfRange:
		return fmt.Sprintf("%v: index %d, %d image(s) available", e.Err, e.Index, e.Available)
	default:
		return fmt.Sprintf("%v: unclosed '{'", e.Err)
	}
}

func (e *WrapError) Unwrap() error { return e.Err }

// WrapImages replaces each placeholder in template with the matching
// reference content. A bare {} takes the index of its position among all
// placeholders in the template; {N} selects reference N explicitly.
func WrapImages(template string, refs []ImageRef) (string, error) {
	var sb strings.Builder
	pos := 0
	placeholder := 0

	for pos < len(template) {
		open := strings.IndexByte(template[pos:], '{')
		if open < 0 {
			break
		}
		open += pos
		sb.WriteString(template[pos:open])

		closing := strings.IndexByte(template[open:], '}')
		if closing < 0 {
			return "", &WrapError{Err: ErrMalformedTemplate}
		}
		closing += open

		index, err := placeholderIndex(template[open+1:closing], placeholder)
		if err != nil {
			return "", err
		}
		if index >= len(refs) {
			return "", &WrapError{Err: ErrIndexOutOfRange, Index: index, Available: len(refs)}
		}

		sb.WriteString(refs[index].Content)
		placeholder++
		pos = closing + 1
	}

	if pos < len(template) {
		sb.WriteString(template[pos:])
	}
	return sb.String(), nil
}

// placeholderIndex resolves the text between braces to a reference index.
func placeholderIndex(raw string, position int) (int, error) {
	if raw == "" {
		return position, nil
	}
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, &WrapError{Err: ErrInvalidIndex, Raw: raw}
	}
	return index, nil
}
