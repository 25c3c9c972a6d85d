// Package deck builds slide pages from notebook blocks by executing the
// commands embedded in their command-comments.
package deck

import (
	"strings"

	"github.com/open-cli-collective/nbslides/pkg/notebook"
)

// Logger is the leveled logger used to report diagnostics. It takes a
// message followed by key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Options configures a Deck. Zero values select the defaults.
type Options struct {
	Document      string  // document name used in diagnostics
	Markers       Markers // markers in markdown blocks
	CodeMarkers   Markers // markers in code blocks
	PageSeparator string
	Language      string // code fence language for appended code
	Logger        Logger
}

func (o Options) withDefaults() Options {
	if o.Markers == (Markers{}) {
		o.Markers = DefaultMarkers()
	}
	if o.CodeMarkers == (Markers{}) {
		o.CodeMarkers = DefaultCodeMarkers()
	}
	if o.PageSeparator == "" {
		o.PageSeparator = DefaultPageSeparator
	}
	if o.Language == "" {
		o.Language = notebook.DefaultLanguage
	}
	if o.Logger == nil {
		o.Logger = nopLogger{}
	}
	return o
}

// Deck accumulates the pages of one document. A Deck is not safe for
// concurrent use; build one per document.
type Deck struct {
	opts         Options
	pages        []string
	pendingClass *string
	diagnostics  []Diagnostic
}

// New creates an empty deck.
func New(opts Options) *Deck {
	return &Deck{opts: opts.withDefaults()}
}

// Pages returns a copy of the pages built so far.
func (d *Deck) Pages() []string {
	return append([]string(nil), d.pages...)
}

// Diagnostics returns the problems reported so far.
func (d *Deck) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), d.diagnostics...)
}

// ProcessBlock runs the command-comments of block and appends its content to
// the deck. On error the deck is left exactly as it was before the call.
func (d *Deck) ProcessBlock(index int, block notebook.Block) error {
	var markers Markers
	switch block.Kind {
	case notebook.BlockMarkdown:
		markers = d.opts.Markers
	case notebook.BlockCode:
		markers = d.opts.CodeMarkers
	default:
		d.opts.Logger.Info("skipping unsupported block",
			"document", d.opts.Document, "block", index, "type", block.Type)
		return nil
	}

	run := &blockRun{
		deck:         d,
		index:        index,
		block:        block,
		scanner:      regionScanner{markers: markers},
		pages:        append([]string(nil), d.pages...),
		pendingClass: d.pendingClass,
	}

	if err := run.process(); err != nil {
		d.diagnostics = append(d.diagnostics, Diagnostic{
			Level: LevelError,
			Block: index,
			Line:  err.Line,
			Err:   err,
		})
		return err
	}

	d.pages = run.pages
	d.pendingClass = run.pendingClass
	return nil
}

// Finish applies a pending page class and joins the pages with the page
// separator.
func (d *Deck) Finish() string {
	if d.pendingClass != nil {
		if len(d.pages) == 0 {
			err := &BlockError{Document: d.opts.Document, Block: -1, Err: ErrUninitializedPage}
			d.opts.Logger.Error("page class set without a page",
				"document", d.opts.Document, "class", *d.pendingClass)
			d.diagnostics = append(d.diagnostics, Diagnostic{Level: LevelError, Block: -1, Err: err})
		} else {
			d.pages[len(d.pages)-1] = classHeader(*d.pendingClass) + d.pages[len(d.pages)-1]
		}
		d.pendingClass = nil
	}

	return strings.Join(d.pages, d.opts.PageSeparator)
}

// report logs a non-fatal problem and records it as a diagnostic.
func (d *Deck) report(level Level, block, line int, err error) {
	args := []any{"document", d.opts.Document, "block", block, "line", line, "error", err}
	switch level {
	case LevelInfo:
		d.opts.Logger.Info("ignored command-comment", args...)
	case LevelWarn:
		d.opts.Logger.Warn("ignored command", args...)
	default:
		d.opts.Logger.Error("block failed", args...)
	}
	d.diagnostics = append(d.diagnostics, Diagnostic{Level: level, Block: block, Line: line, Err: err})
}

func classHeader(class string) string {
	return "class: " + class + "\n\n"
}

// Result is a converted document.
type Result struct {
	Text         string
	Pages        int
	FailedBlocks int
	Diagnostics  []Diagnostic
}

// Convert builds the deck of a whole notebook. Blocks that fail are logged
// and skipped; the remaining blocks are still converted.
func Convert(nb *notebook.Notebook, opts Options) *Result {
	if opts.Document == "" {
		opts.Document = nb.Path
	}
	if opts.Language == "" {
		opts.Language = nb.Language
	}

	d := New(opts)
	failed := 0
	for i, block := range nb.Blocks {
		if err := d.ProcessBlock(i, block); err != nil {
			d.opts.Logger.Error("failed to process block",
				"document", d.opts.Document, "block", i, "error", err)
			failed++
		}
	}

	text := d.Finish()
	return &Result{
		Text:         text,
		Pages:        len(d.pages),
		FailedBlocks: failed,
		Diagnostics:  d.Diagnostics(),
	}
}
