package notebook

import (
	"fmt"
	"strings"
)

// OutputKind identifies the type of a cell output.
type OutputKind int

const (
	OutputStream OutputKind = iota // text written to stdout/stderr
	OutputError                    // raised exception
	OutputOther                    // display data, execute results, ...
)

// Output is one captured output of a code cell.
type Output struct {
	Kind   OutputKind
	Name   string   // stream name (stdout, stderr)
	Text   []string // stream lines
	EName  string   // error kind
	EValue string   // error message
}

// StreamText returns the first stream output of the block as a fenced code block.
func (b Block) StreamText() (string, error) {
	for _, out := range b.Outputs {
		if out.Kind == OutputStream {
			return fmt.Sprintf("```\n%s\n```\n", strings.TrimRight(strings.Join(out.Text, ""), " \t\r\n")), nil
		}
	}
	if len(b.Outputs) == 0 {
		return "", fmt.Errorf("no output in cell")
	}
	return "", fmt.Errorf("no stream in cell")
}

// ErrorText returns the first error output of the block as a fenced code block.
func (b Block) ErrorText() (string, error) {
	for _, out := range b.Outputs {
		if out.Kind == OutputError {
			return fmt.Sprintf("```\n%s: %s\n```\n", out.EName, out.EValue), nil
		}
	}
	if len(b.Outputs) == 0 {
		return "", fmt.Errorf("no output in cell")
	}
	return "", fmt.Errorf("no error in cell")
}

type rawOutput struct {
	OutputType string    `json:"output_type"`
	Name       string    `json:"name"`
	Text       multiline `json:"text"`
	EName      string    `json:"ename"`
	EValue     string    `json:"evalue"`
}

func (o rawOutput) toOutput() Output {
	switch o.OutputType {
	case "stream":
		return Output{Kind: OutputStream, Name: o.Name, Text: o.Text}
	case "error":
		return Output{Kind: OutputError, EName: o.EName, EValue: o.EValue}
	default:
		return Output{Kind: OutputOther}
	}
}
