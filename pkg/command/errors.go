package command

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrMissingPayload   = errors.New("missing payload")
	ErrMissingSeparator = errors.New("missing ';'")
	ErrTrailingInput    = errors.New("unparsed input")
)

// ParseError reports where a command sequence could not be parsed.
type ParseError struct {
	Err  error  // one of the Err* sentinels above
	Text string // offending token, command name or remaining input
}

func (e *ParseError) Error() string {
	switch e.Err {
	case ErrUnknownCommand:
		return fmt.Sprintf("%v '%s'", e.Err, e.Text)
	case ErrMissingPayload:
		return fmt.Sprintf("%v: content after '%s' is not a closed [...] block", e.Err, e.Text)
	case ErrMissingSeparator:
		if e.Text == "" {
			return fmt.Sprintf("%v at end of input", e.Err)
		}
		return fmt.Sprintf("%v before '%s'", e.Err, e.Text)
	default:
		return fmt.Sprintf("%v '%s'", e.Err, e.Text)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }
