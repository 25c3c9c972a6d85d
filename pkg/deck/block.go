package deck

import (
	"errors"
	"fmt"
	"strings"

	"github.com/open-cli-collective/nbslides/pkg/command"
	"github.com/open-cli-collective/nbslides/pkg/md"
	"github.com/open-cli-collective/nbslides/pkg/notebook"
)

// blockRun is the state of processing one block. Pages and the pending
// class are working copies that the deck adopts only if the block succeeds.
type blockRun struct {
	deck         *Deck
	index        int
	block        notebook.Block
	scanner      regionScanner
	pages        []string
	pendingClass *string
	appendMode   bool
	line         int // current 1-based line
	regionLine   int // line on which the current region started
	code         strings.Builder
}

func (r *blockRun) process() *BlockError {
	for i, line := range r.block.Lines {
		r.line = i + 1
		prev := r.scanner.state

		switch r.scanner.next(line) {
		case stateOutside:
			if r.appendMode {
				if err := r.appendLine(line); err != nil {
					return err
				}
			}
		case stateWithin:
			if prev == stateOutside {
				r.regionLine = r.line
			}
		case stateEnd:
			if prev == stateOutside {
				r.regionLine = r.line
			}
			text := r.scanner.regionText()
			r.scanner.reset()
			if err := r.runRegion(text); err != nil {
				return err
			}
		}
	}

	if r.scanner.state == stateWithin {
		return r.failAt(r.regionLine, ErrUnterminatedRegion)
	}
	return r.flushCode()
}

// runRegion parses and applies the commands of one command-comment region.
// A region that does not parse is reported and skipped.
func (r *blockRun) runRegion(text string) *BlockError {
	if text == "" {
		return nil
	}

	cmds, err := command.Parse(text)
	if err != nil {
		level := LevelWarn
		if errors.Is(err, command.ErrUnknownCommand) {
			level = LevelInfo
		}
		r.deck.report(level, r.index, r.regionLine, err)
		return nil
	}

	if err := r.flushCode(); err != nil {
		return err
	}
	for _, cmd := range cmds {
		if err := r.apply(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (r *blockRun) apply(cmd command.Command) *BlockError {
	switch cmd.Kind {
	case command.NewPage:
		if r.pendingClass != nil {
			if len(r.pages) == 0 {
				return r.fail(ErrUninitializedPage)
			}
			r.pages[len(r.pages)-1] = classHeader(*r.pendingClass) + r.pages[len(r.pages)-1]
			r.pendingClass = nil
		}
		r.pages = append(r.pages, "")

	case command.StartAppend:
		r.appendMode = true

	case command.StopAppend:
		r.appendMode = false

	case command.AddStream:
		return r.appendOutput(cmd, r.block.StreamText)

	case command.AddError:
		return r.appendOutput(cmd, r.block.ErrorText)

	case command.Inject:
		if len(r.pages) == 0 {
			return r.fail(ErrUninitializedPage)
		}
		r.appendText(ensureNewline(cmd.Payload))

	case command.WrapImage:
		if len(r.pages) == 0 {
			return r.fail(ErrUninitializedPage)
		}
		content := StripCommandRegions(r.block.Lines, r.scanner.markers)
		wrapped, err := md.WrapImages(cmd.Payload, md.ScanImageRefs(content))
		if err != nil {
			r.deck.report(LevelWarn, r.index, r.regionLine, err)
			return nil
		}
		r.appendText(ensureNewline(wrapped))

	case command.SetPageClass:
		class := cmd.Payload
		r.pendingClass = &class
	}

	return nil
}

// appendOutput appends a rendered cell output. A missing output is reported
// and skipped.
func (r *blockRun) appendOutput(cmd command.Command, render func() (string, error)) *BlockError {
	if len(r.pages) == 0 {
		return r.fail(ErrUninitializedPage)
	}
	text, err := render()
	if err != nil {
		r.deck.report(LevelWarn, r.index, r.regionLine, fmt.Errorf("%s: %w", cmd.Kind, err))
		return nil
	}
	r.appendText(text)
	return nil
}

// appendLine adds an ordinary content line to the last page. Code lines are
// collected and written as one fenced block by flushCode.
func (r *blockRun) appendLine(line string) *BlockError {
	if len(r.pages) == 0 {
		return r.fail(ErrUninitializedPage)
	}
	if r.block.Kind == notebook.BlockCode {
		r.code.WriteString(normalizeLine(line))
		return nil
	}
	r.appendText(normalizeLine(line))
	return nil
}

// flushCode writes collected code lines as a fenced code block.
func (r *blockRun) flushCode() *BlockError {
	if r.code.Len() == 0 {
		return nil
	}
	if len(r.pages) == 0 {
		return r.fail(ErrUninitializedPage)
	}
	r.appendText("```" + r.deck.opts.Language + "\n" + r.code.String() + "```\n")
	r.code.Reset()
	return nil
}

func (r *blockRun) appendText(text string) {
	r.pages[len(r.pages)-1] += text
}

func (r *blockRun) fail(err error) *BlockError {
	return r.failAt(r.line, err)
}

func (r *blockRun) failAt(line int, err error) *BlockError {
	return &BlockError{
		Document: r.deck.opts.Document,
		Block:    r.index,
		Line:     line,
		Err:      err,
	}
}
