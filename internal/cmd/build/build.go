// Package build provides the build command, which converts documents into a
// slide deck.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/nbslides/internal/cmd/cmdutil"
	"github.com/open-cli-collective/nbslides/internal/collect"
	"github.com/open-cli-collective/nbslides/internal/view"
	"github.com/open-cli-collective/nbslides/pkg/md"
)

// confirmFunc asks whether an existing output file may be replaced.
type confirmFunc func(path string) (bool, error)

type buildOptions struct {
	output  string
	force   bool
	html    bool
	workers int
	inputs  []string
	globals cmdutil.Globals
	confirm confirmFunc // nil when no one can be asked
	out     io.Writer   // injectable for testing
}

// NewCmdBuild creates the build command.
func NewCmdBuild() *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build -o <output> <input>...",
		Short: "Build a slide deck from notebooks",
		Long: `Convert notebooks and documents into one remark slide deck.

Inputs are processed in the order given. Directories are searched
recursively for .ipynb notebooks. Markdown (.md) and HTML (.html)
documents are included as they are, HTML converted to markdown.
Relative image paths are rewritten so they resolve from the output
file's directory.`,
		Example: `  # Build a deck from two notebooks
  nbslides build -o slides.md intro.ipynb details.ipynb

  # Build from a directory, replacing an existing deck
  nbslides build -o talk/slides.md -f notebooks/

  # Also export the deck as HTML sections
  nbslides build -o slides.md --html talk.ipynb`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: cmdutil.InputCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.inputs = args
			opts.globals = cmdutil.ReadGlobals(cmd)
			if cmdutil.IsTerminal() {
				opts.confirm = confirmOverwrite
			}
			return runBuild(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file for the deck (required)")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite the output file without asking")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Also write an HTML export next to the output")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Number of documents converted in parallel (default from config)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// buildResult is the JSON form of a finished build.
type buildResult struct {
	Output       string   `json:"output"`
	HTML         string   `json:"html,omitempty"`
	Documents    int      `json:"documents"`
	Pages        int      `json:"pages"`
	FailedBlocks int      `json:"failed_blocks"`
	Inputs       []string `json:"inputs"`
}

func runBuild(ctx context.Context, opts *buildOptions) error {
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
	if opts.workers > 0 {
		env.Config.Workers = opts.workers
	}
	logger := env.Logger.WithFields(map[string]any{"command": "build"})

	paths, err := collect.Discover(opts.inputs)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no documents found in the given inputs")
	}
	logger.Info("collected inputs", "count", len(paths))

	htmlPath := ""
	if opts.html {
		htmlPath = htmlOutputPath(opts.output)
	}

	proceed, err := mayOverwrite(opts, opts.output, htmlPath)
	if err != nil {
		return err
	}
	if !proceed {
		env.Renderer.RenderText("Build cancelled.")
		return nil
	}

	collectOpts := env.CollectOptions(opts.output)
	collectOpts.Logger = logger
	docs, err := collect.Collect(ctx, paths, collectOpts)
	if err != nil {
		return err
	}

	deckText := collect.Join(docs, env.Config.DocumentSeparator)
	if err := collect.Write(opts.output, deckText, true); err != nil {
		return err
	}

	if htmlPath != "" {
		html, err := md.ToHTML(deckText, env.Config.PageSeparator)
		if err != nil {
			return fmt.Errorf("failed to export HTML: %w", err)
		}
		if err := collect.Write(htmlPath, html, true); err != nil {
			return err
		}
	}

	result := buildResult{Output: opts.output, HTML: htmlPath, Documents: len(docs), Inputs: paths}
	for _, doc := range docs {
		result.Pages += doc.Pages
		result.FailedBlocks += doc.FailedBlocks
	}

	r := env.Renderer
	switch r.Format() {
	case view.FormatJSON:
		return r.RenderJSON(result)
	case view.FormatPlain:
		r.RenderKeyValue("output", result.Output)
		if result.HTML != "" {
			r.RenderKeyValue("html", result.HTML)
		}
		r.RenderKeyValue("documents", strconv.Itoa(result.Documents))
		r.RenderKeyValue("pages", strconv.Itoa(result.Pages))
		r.RenderKeyValue("failed_blocks", strconv.Itoa(result.FailedBlocks))
		return nil
	}

	r.Success(fmt.Sprintf("Wrote %d page(s) from %d document(s) to %s", result.Pages, result.Documents, opts.output))
	if htmlPath != "" {
		r.Success(fmt.Sprintf("Wrote HTML export to %s", htmlPath))
	}
	if result.FailedBlocks > 0 {
		r.Warning(fmt.Sprintf("%d block(s) were skipped; run 'nbslides check' for details", result.FailedBlocks))
	}
	return nil
}

// mayOverwrite decides whether existing output files may be replaced.
func mayOverwrite(opts *buildOptions, paths ...string) (bool, error) {
	if opts.force {
		return true, nil
	}

	for _, path := range paths {
		if path == "" || !collect.Exists(path) {
			continue
		}
		if opts.confirm == nil {
			return false, fmt.Errorf("%s: %w (use --force to overwrite)", path, collect.ErrOutputExists)
		}
		ok, err := opts.confirm(path)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func confirmOverwrite(path string) (bool, error) {
	var overwrite bool
	err := huh.NewConfirm().
		Title("Output file already exists").
		Description(fmt.Sprintf("Overwrite %s?", path)).
		Value(&overwrite).
		Run()
	return overwrite, err
}

// htmlOutputPath derives the HTML export path from the deck path.
func htmlOutputPath(output string) string {
	ext := filepath.Ext(output)
	if strings.EqualFold(ext, ".html") {
		return output + ".html"
	}
	return strings.TrimSuffix(output, ext) + ".html"
}
