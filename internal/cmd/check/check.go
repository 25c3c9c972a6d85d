// Package check provides the check command, which converts documents without
// writing a deck and reports every problem found.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/nbslides/internal/cmd/cmdutil"
	"github.com/open-cli-collective/nbslides/internal/collect"
	"github.com/open-cli-collective/nbslides/internal/view"
	"github.com/open-cli-collective/nbslides/pkg/deck"
)

// ErrBlocksFailed is returned when at least one block could not be converted.
var ErrBlocksFailed = errors.New("blocks failed to convert")

// relocationTarget stands in for the output path, which check never writes.
const relocationTarget = "slides.md"

type checkOptions struct {
	inputs  []string
	globals cmdutil.Globals
	out     io.Writer // injectable for testing
}

// NewCmdCheck creates the check command.
func NewCmdCheck() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <input>...",
		Short: "Validate the command-comments of notebooks",
		Long: `Convert notebooks without writing a deck and list every problem:
unknown commands, malformed payloads, image templates that do not match
the block's images and blocks that failed to convert.

Exits with an error when any block failed.`,
		Example: `  # Check a notebook
  nbslides check talk.ipynb

  # Check a directory, JSON report
  nbslides check --format json notebooks/`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: cmdutil.InputCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.inputs = args
			opts.globals = cmdutil.ReadGlobals(cmd)
			return runCheck(cmd.Context(), opts)
		},
	}

	return cmd
}

// report is the JSON form of a check run.
type report struct {
	Documents   []documentReport   `json:"documents"`
	Diagnostics []diagnosticReport `json:"diagnostics"`
}

type documentReport struct {
	Path         string `json:"path"`
	Kind         string `json:"kind"`
	Pages        int    `json:"pages"`
	FailedBlocks int    `json:"failed_blocks"`
}

type diagnosticReport struct {
	Level    string `json:"level"`
	Document string `json:"document"`
	Block    int    `json:"block"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
}

func runCheck(ctx context.Context, opts *checkOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := cmdutil.Setup(opts.globals)
	if err != nil {
		return err
	}
	if opts.out != nil {
		env.Renderer.SetWriter(opts.out)
	}

	paths, err := collect.Discover(opts.inputs)
	if err != nil {
		return err
	}

	docs, err := collect.Collect(ctx, paths, env.CollectOptions(relocationTarget))
	if err != nil {
		return err
	}

	rep := buildReport(docs)
	if err := render(env.Renderer, rep); err != nil {
		return err
	}

	failed := 0
	for _, doc := range rep.Documents {
		failed += doc.FailedBlocks
	}
	if failed > 0 {
		return fmt.Errorf("%d %w", failed, ErrBlocksFailed)
	}
	return nil
}

func buildReport(docs []*collect.Document) report {
	rep := report{
		Documents:   []documentReport{},
		Diagnostics: []diagnosticReport{},
	}

	for _, doc := range docs {
		rep.Documents = append(rep.Documents, documentReport{
			Path:         doc.Path,
			Kind:         doc.Kind.String(),
			Pages:        doc.Pages,
			FailedBlocks: doc.FailedBlocks,
		})
		for _, d := range doc.Diagnostics {
			rep.Diagnostics = append(rep.Diagnostics, diagnosticReport{
				Level:    d.Level.String(),
				Document: doc.Path,
				Block:    d.Block,
				Line:     d.Line,
				Message:  message(d),
			})
		}
	}
	return rep
}

// message returns the diagnostic text without the location prefix that
// block errors carry.
func message(d deck.Diagnostic) string {
	var blockErr *deck.BlockError
	if errors.As(d.Err, &blockErr) {
		return blockErr.Err.Error()
	}
	return d.Err.Error()
}

func render(r *view.Renderer, rep report) error {
	if r.Format() == view.FormatJSON {
		return r.RenderJSON(rep)
	}

	rows := make([][]string, 0, len(rep.Documents))
	for _, doc := range rep.Documents {
		rows = append(rows, []string{doc.Path, doc.Kind, strconv.Itoa(doc.Pages), strconv.Itoa(doc.FailedBlocks)})
	}
	r.RenderTable([]string{"DOCUMENT", "KIND", "PAGES", "FAILED"}, rows)

	if len(rep.Diagnostics) == 0 {
		if r.Format() == view.FormatTable {
			r.RenderText("")
			r.Success("No problems found")
		}
		return nil
	}

	rows = rows[:0]
	for _, d := range rep.Diagnostics {
		rows = append(rows, []string{
			d.Level,
			d.Document,
			location(d.Block, d.Block >= 0),
			location(d.Line, d.Line > 0),
			view.Truncate(d.Message, 80),
		})
	}
	r.RenderText("")
	r.RenderTable([]string{"LEVEL", "DOCUMENT", "BLOCK", "LINE", "MESSAGE"}, rows)
	return nil
}

func location(n int, known bool) string {
	if !known {
		return "-"
	}
	return strconv.Itoa(n)
}
