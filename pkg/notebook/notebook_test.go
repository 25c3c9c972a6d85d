package notebook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNotebook = `{
  "metadata": {
    "kernelspec": {"language": "python", "name": "python3"}
  },
  "nbformat": 4,
  "cells": [
    {
      "cell_type": "markdown",
      "metadata": {},
      "source": ["<!--! new; start-add; -->\n", "# Headline\n"]
    },
    {
      "cell_type": "code",
      "metadata": {},
      "execution_count": 1,
      "source": "print('hi')\nraise ValueError('bad')",
      "outputs": [
        {"output_type": "stream", "name": "stdout", "text": ["hi\n"]},
        {"output_type": "error", "ename": "ValueError", "evalue": "bad", "traceback": []},
        {"output_type": "display_data", "data": {"text/plain": ["x"]}, "metadata": {}}
      ]
    },
    {
      "cell_type": "raw",
      "metadata": {},
      "source": []
    }
  ]
}`

func TestParse(t *testing.T) {
	nb, err := Parse("nb/in.ipynb", []byte(sampleNotebook))
	require.NoError(t, err)

	assert.Equal(t, "nb/in.ipynb", nb.Path)
	assert.Equal(t, "python", nb.Language)
	require.Len(t, nb.Blocks, 3)

	md := nb.Blocks[0]
	assert.Equal(t, BlockMarkdown, md.Kind)
	assert.Equal(t, []string{"<!--! new; start-add; -->\n", "# Headline\n"}, md.Lines)
	assert.Empty(t, md.Outputs)

	code := nb.Blocks[1]
	assert.Equal(t, BlockCode, code.Kind)
	assert.Equal(t, []string{"print('hi')\n", "raise ValueError('bad')"}, code.Lines)
	require.Len(t, code.Outputs, 3)
	assert.Equal(t, Output{Kind: OutputStream, Name: "stdout", Text: []string{"hi\n"}}, code.Outputs[0])
	assert.Equal(t, Output{Kind: OutputError, EName: "ValueError", EValue: "bad"}, code.Outputs[1])
	assert.Equal(t, OutputOther, code.Outputs[2].Kind)

	raw := nb.Blocks[2]
	assert.Equal(t, BlockOther, raw.Kind)
	assert.Equal(t, "raw", raw.Type)
}

func TestParse_Language(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"kernelspec", `{"metadata": {"kernelspec": {"language": "julia"}}, "cells": []}`, "julia"},
		{"language info", `{"metadata": {"language_info": {"name": "R"}}, "cells": []}`, "R"},
		{"default", `{"metadata": {}, "cells": []}`, DefaultLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nb, err := Parse("x.ipynb", []byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, nb.Language)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("bad.ipynb", []byte(`{"cells": [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse notebook bad.ipynb")

	_, err = Parse("bad.ipynb", []byte(`{"cells": [{"cell_type": "code", "source": 42}]}`))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.ipynb")
	require.NoError(t, os.WriteFile(path, []byte(sampleNotebook), 0600))

	nb, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, nb.Path)
	assert.Len(t, nb.Blocks, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.ipynb"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read notebook")
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a\n"}},
		{"a\nb", []string{"a\n", "b"}},
		{"a\n\nb\n", []string{"a\n", "\n", "b\n"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitLines(tt.input), "input %q", tt.input)
	}
}

func TestBlock_Source(t *testing.T) {
	b := Block{Lines: []string{"a\n", "b"}}
	assert.Equal(t, "a\nb", b.Source())
}

func TestBlock_StreamText(t *testing.T) {
	b := Block{Outputs: []Output{
		{Kind: OutputOther},
		{Kind: OutputStream, Text: []string{"line 1\n", "line 2\n\n"}},
	}}
	text, err := b.StreamText()
	require.NoError(t, err)
	assert.Equal(t, "```\nline 1\nline 2\n```\n", text)

	_, err = Block{}.StreamText()
	assert.EqualError(t, err, "no output in cell")

	_, err = Block{Outputs: []Output{{Kind: OutputError}}}.StreamText()
	assert.EqualError(t, err, "no stream in cell")
}

func TestBlock_ErrorText(t *testing.T) {
	b := Block{Outputs: []Output{
		{Kind: OutputStream, Text: []string{"x"}},
		{Kind: OutputError, EName: "ZeroDivisionError", EValue: "division by zero"},
	}}
	text, err := b.ErrorText()
	require.NoError(t, err)
	assert.Equal(t, "```\nZeroDivisionError: division by zero\n```\n", text)

	_, err = Block{}.ErrorText()
	assert.EqualError(t, err, "no output in cell")

	_, err = Block{Outputs: []Output{{Kind: OutputStream}}}.ErrorText()
	assert.EqualError(t, err, "no error in cell")
}

func TestBlockKind_String(t *testing.T) {
	assert.Equal(t, "markdown", BlockMarkdown.String())
	assert.Equal(t, "code", BlockCode.String())
	assert.Equal(t, "other", BlockOther.String())
}
