package collect

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/sync/errgroup"

	"github.com/open-cli-collective/nbslides/internal/logging"
	"github.com/open-cli-collective/nbslides/pkg/deck"
	"github.com/open-cli-collective/nbslides/pkg/md"
	"github.com/open-cli-collective/nbslides/pkg/notebook"
)

const (
	documentLoadFailedCode = "DOCUMENT_LOAD_FAILED"
	relocationFailedCode   = "RELOCATION_FAILED"
)

// Kind is the type of an input document.
type Kind int

const (
	KindNotebook Kind = iota
	KindMarkdown
	KindHTML
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNotebook:
		return "notebook"
	case KindMarkdown:
		return "markdown"
	case KindHTML:
		return "html"
	default:
		return "text"
	}
}

// KindOf classifies a path by its extension.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ipynb":
		return KindNotebook
	case ".md", ".markdown":
		return KindMarkdown
	case ".html", ".htm":
		return KindHTML
	default:
		return KindText
	}
}

// Options configures a conversion run.
type Options struct {
	// Output is the path the deck will be written to. Relative image
	// references are rewritten relative to its directory.
	Output        string
	Markers       deck.Markers
	CodeMarkers   deck.Markers
	PageSeparator string
	Workers       int
	Logger        logging.Logger
}

// Document is the converted form of one input.
type Document struct {
	Path         string
	Kind         Kind
	Text         string
	Pages        int
	FailedBlocks int
	Diagnostics  []deck.Diagnostic
}

// Collect converts every path, running up to opts.Workers conversions at
// once. Documents are returned in input order. The first document that
// cannot be loaded or relocated cancels the run.
func Collect(ctx context.Context, paths []string, opts Options) ([]*Document, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOp()
	}

	docs := make([]*Document, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := convert(path, opts)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// convert loads and converts a single document.
func convert(path string, opts Options) (*Document, error) {
	logger := opts.Logger.WithFields(map[string]any{"document": path})
	doc := &Document{Path: path, Kind: KindOf(path)}

	logger.Debug("converting document", "kind", doc.Kind.String())

	switch doc.Kind {
	case KindNotebook:
		nb, err := notebook.Load(path)
		if err != nil {
			return nil, loadError(path, err)
		}
		result := deck.Convert(nb, deck.Options{
			Document:      path,
			Markers:       opts.Markers,
			CodeMarkers:   opts.CodeMarkers,
			PageSeparator: opts.PageSeparator,
			Logger:        logger,
		})
		doc.Text = result.Text
		doc.Pages = result.Pages
		doc.FailedBlocks = result.FailedBlocks
		doc.Diagnostics = result.Diagnostics

	case KindMarkdown:
		text, err := loadMarkdown(path)
		if err != nil {
			return nil, loadError(path, err)
		}
		doc.Text = text

	case KindHTML:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, loadError(path, err)
		}
		text, err := md.FromHTML(string(data))
		if err != nil {
			return nil, loadError(path, err)
		}
		doc.Text = text

	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, loadError(path, err)
		}
		doc.Text = string(data)
	}

	text, ok := md.Relocate(filepath.ToSlash(opts.Output), filepath.ToSlash(path), doc.Text)
	if !ok {
		return nil, goerrors.Wrap(
			fmt.Errorf("cannot relocate %s for output %q: path has no parent directory", path, opts.Output),
			goerrors.CategoryValidation, "failed to relocate image references").
			WithTextCode(relocationFailedCode)
	}
	doc.Text = text

	if doc.Kind != KindNotebook && doc.Text != "" {
		doc.Pages = 1
	}

	logger.Info("converted document", "pages", doc.Pages, "failed_blocks", doc.FailedBlocks)
	return doc, nil
}

// markdownMeta is the front matter recognized on markdown inputs.
type markdownMeta struct {
	Class string `yaml:"class"`
}

// loadMarkdown reads a markdown document, dropping its front matter. A class
// key in the front matter becomes the class of the first page.
func loadMarkdown(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var meta markdownMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return "", fmt.Errorf("parse frontmatter: %w", err)
	}

	text := string(body)
	if class := strings.TrimSpace(meta.Class); class != "" {
		text = "class: " + class + "\n\n" + strings.TrimLeft(text, "\n")
	}
	return text, nil
}

func loadError(path string, err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(fmt.Errorf("%s: %w", path, err), goerrors.CategoryCommand, "failed to load document").
		WithTextCode(documentLoadFailedCode)
}
