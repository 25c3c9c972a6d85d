package deck

import (
	"errors"
	"fmt"
)

var (
	ErrUninitializedPage  = errors.New("page not initialized")
	ErrUnterminatedRegion = errors.New("unterminated command region")
)

// BlockError reports a failure that aborted the processing of one block.
type BlockError struct {
	Document string
	Block    int // index of the block, -1 for the document itself
	Line     int // 1-based line within the block, 0 if unknown
	Err      error
}

func (e *BlockError) Error() string {
	var msg string
	switch {
	case e.Block < 0:
		msg = e.Err.Error()
	case e.Line > 0:
		msg = fmt.Sprintf("block %d, line %d: %v", e.Block, e.Line, e.Err)
	default:
		msg = fmt.Sprintf("block %d: %v", e.Block, e.Err)
	}
	if e.Document == "" {
		return msg
	}
	return e.Document + ": " + msg
}

func (e *BlockError) Unwrap() error { return e.Err }

// Level is the severity of a diagnostic.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

// Diagnostic is a problem found while building a deck. Diagnostics never stop
// the conversion of the remaining blocks.
type Diagnostic struct {
	Level Level
	Block int // -1 for document level diagnostics
	Line  int
	Err   error
}
