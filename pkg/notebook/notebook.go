// Package notebook reads Jupyter notebooks into the block sequence consumed
// by the deck builder.
package notebook

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DefaultLanguage is used for code fences when a notebook names no language.
const DefaultLanguage = "python"

// BlockKind identifies the type of a block.
type BlockKind int

const (
	BlockMarkdown BlockKind = iota // markdown cell
	BlockCode                      // code cell
	BlockOther                     // raw or unknown cell
)

// String returns the nbformat cell type name for k.
func (k BlockKind) String() string {
	switch k {
	case BlockMarkdown:
		return "markdown"
	case BlockCode:
		return "code"
	default:
		return "other"
	}
}

// Block is one cell of a notebook.
type Block struct {
	Kind    BlockKind
	Type    string   // cell_type as written in the notebook
	Lines   []string // source lines, each keeping its line break
	Outputs []Output // outputs of code cells
}

// Source returns the block's source text.
func (b Block) Source() string {
	return strings.Join(b.Lines, "")
}

// Notebook is a parsed notebook.
type Notebook struct {
	Path     string
	Language string
	Blocks   []Block
}

// Load reads and parses the notebook at path.
func Load(path string) (*Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read notebook: %w", err)
	}
	return Parse(path, data)
}

// Parse parses notebook JSON. path is recorded on the result only.
func Parse(path string, data []byte) (*Notebook, error) {
	var raw rawNotebook
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse notebook %s: %w", path, err)
	}

	nb := &Notebook{
		Path:     path,
		Language: raw.Metadata.language(),
		Blocks:   make([]Block, 0, len(raw.Cells)),
	}

	for _, cell := range raw.Cells {
		block := Block{
			Type:  cell.CellType,
			Lines: cell.Source,
		}
		switch cell.CellType {
		case "markdown":
			block.Kind = BlockMarkdown
		case "code":
			block.Kind = BlockCode
		default:
			block.Kind = BlockOther
		}
		for _, out := range cell.Outputs {
			block.Outputs = append(block.Outputs, out.toOutput())
		}
		nb.Blocks = append(nb.Blocks, block)
	}

	return nb, nil
}

// rawNotebook mirrors the parts of the nbformat v4 schema that are used.
type rawNotebook struct {
	Metadata rawMetadata `json:"metadata"`
	Cells    []rawCell   `json:"cells"`
}

type rawMetadata struct {
	Kernelspec struct {
		Language string `json:"language"`
	} `json:"kernelspec"`
	LanguageInfo struct {
		Name string `json:"name"`
	} `json:"language_info"`
}

func (m rawMetadata) language() string {
	if m.Kernelspec.Language != "" {
		return m.Kernelspec.Language
	}
	if m.LanguageInfo.Name != "" {
		return m.LanguageInfo.Name
	}
	return DefaultLanguage
}

type rawCell struct {
	CellType string      `json:"cell_type"`
	Source   multiline   `json:"source"`
	Outputs  []rawOutput `json:"outputs"`
}

// multiline is an nbformat multi-line string: either one string or a list of
// lines. It is always stored as lines that keep their line breaks.
type multiline []string

// UnmarshalJSON accepts both forms.
func (m *multiline) UnmarshalJSON(data []byte) error {
	var lines []string
	if err := json.Unmarshal(data, &lines); err == nil {
		*m = lines
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*m = SplitLines(text)
	return nil
}

// SplitLines splits text into lines, each keeping its trailing line break.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
