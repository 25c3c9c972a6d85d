package deck

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/nbslides/pkg/command"
	"github.com/open-cli-collective/nbslides/pkg/md"
	"github.com/open-cli-collective/nbslides/pkg/notebook"
)

type logEntry struct {
	level string
	msg   string
}

type recordingLogger struct {
	entries []logEntry
}

func (l *recordingLogger) log(level, msg string) {
	l.entries = append(l.entries, logEntry{level: level, msg: msg})
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.log("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.log("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.log("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.log("error", msg) }

func (l *recordingLogger) count(level string) int {
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

func markdown(lines ...string) notebook.Block {
	return notebook.Block{Kind: notebook.BlockMarkdown, Type: "markdown", Lines: lines}
}

func code(lines ...string) notebook.Block {
	return notebook.Block{Kind: notebook.BlockCode, Type: "code", Lines: lines}
}

func TestProcessBlock_Pages(t *testing.T) {
	tests := []struct {
		name   string
		blocks []notebook.Block
		want   []string
	}{
		{
			name:   "new page and append",
			blocks: []notebook.Block{markdown("<!--! new; start-add; -->\n", "# Headline\n")},
			want:   []string{"# Headline\n"},
		},
		{
			name:   "four new pages",
			blocks: []notebook.Block{markdown("<!--! new; new; new; new; -->\n")},
			want:   []string{"", "", "", ""},
		},
		{
			name:   "no commands",
			blocks: []notebook.Block{markdown("# Title\n", "text\n")},
			want:   nil,
		},
		{
			name:   "stop appending",
			blocks: []notebook.Block{markdown("<!--! new; start-add; -->\n", "shown\n", "<!--! stop-add; -->\n", "hidden\n")},
			want:   []string{"shown\n"},
		},
		{
			name: "append mode resets per block",
			blocks: []notebook.Block{
				markdown("<!--! new; start-add; -->\n", "first\n"),
				markdown("second\n"),
			},
			want: []string{"first\n"},
		},
		{
			name:   "last line without newline is normalized",
			blocks: []notebook.Block{markdown("<!--! new; start-add; -->\n", "a\r\n", "b")},
			want:   []string{"a\nb\n"},
		},
		{
			name: "multi line region",
			blocks: []notebook.Block{markdown(
				"<!--!\n",
				"  new;\n",
				"  start-add;\n",
				"-->\n",
				"body\n",
			)},
			want: []string{"body\n"},
		},
		{
			name:   "region text on marker lines",
			blocks: []notebook.Block{markdown("<!--! new;\n", "start-add; -->\n", "body\n")},
			want:   []string{"body\n"},
		},
		{
			name:   "indented markers",
			blocks: []notebook.Block{markdown("   <!--! new; start-add; -->   \n", "x\n")},
			want:   []string{"x\n"},
		},
		{
			name:   "empty region",
			blocks: []notebook.Block{markdown("<!--! -->\n", "x\n")},
			want:   nil,
		},
		{
			name:   "inject",
			blocks: []notebook.Block{markdown(`<!--! new; inject[## Title]; inject[line\nnext\n]; -->` + "\n")},
			want:   []string{"## Title\nline\nnext\n"},
		},
		{
			name: "pages span blocks",
			blocks: []notebook.Block{
				markdown("<!--! new; start-add; -->\n", "one\n"),
				markdown("<!--! start-add; -->\n", "still one\n"),
				markdown("<!--! new; inject[two]; -->\n"),
			},
			want: []string{"one\nstill one\n", "two\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(Options{Document: "test.ipynb"})
			for i, b := range tt.blocks {
				require.NoError(t, d.ProcessBlock(i, b))
			}
			assert.Equal(t, tt.want, d.Pages())
		})
	}
}

func TestProcessBlock_PageClass(t *testing.T) {
	t.Run("class applied on next page", func(t *testing.T) {
		d := New(Options{})
		require.NoError(t, d.ProcessBlock(0, markdown("<!--! new; inject[a]; class[ center ]; new; inject[b]; -->\n")))
		assert.Equal(t, []string{"class: center\n\na\n", "b\n"}, d.Pages())
	})

	t.Run("last write wins", func(t *testing.T) {
		d := New(Options{})
		require.NoError(t, d.ProcessBlock(0, markdown("<!--! new; class[one]; class[two]; new; -->\n")))
		assert.Equal(t, []string{"class: two\n\n", ""}, d.Pages())
	})

	t.Run("class applied at document end", func(t *testing.T) {
		d := New(Options{})
		require.NoError(t, d.ProcessBlock(0, markdown("<!--! new; inject[a]; new; inject[b]; class[middle]; -->\n")))
		assert.Equal(t, "a\n\n\n---\nclass: middle\n\nb\n", d.Finish())
		assert.Empty(t, d.Diagnostics())
	})

	t.Run("pending class without page fails the block", func(t *testing.T) {
		d := New(Options{})
		err := d.ProcessBlock(0, markdown("<!--! class[x]; new; -->\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUninitializedPage)
		assert.Empty(t, d.Pages())
	})

	t.Run("pending class without page at document end", func(t *testing.T) {
		log := &recordingLogger{}
		d := New(Options{Logger: log})
		require.NoError(t, d.ProcessBlock(0, markdown("<!--! class[x]; -->\n")))

		assert.Equal(t, "", d.Finish())
		diags := d.Diagnostics()
		require.Len(t, diags, 1)
		assert.Equal(t, LevelError, diags[0].Level)
		assert.Equal(t, -1, diags[0].Block)
		assert.ErrorIs(t, diags[0].Err, ErrUninitializedPage)
		assert.Equal(t, 1, log.count("error"))
	})
}

func TestProcessBlock_BlockErrors(t *testing.T) {
	tests := []struct {
		name    string
		block   notebook.Block
		wantErr error
		line    int
	}{
		{
			name:    "append without page",
			block:   markdown("<!--! start-add; -->\n", "text\n"),
			wantErr: ErrUninitializedPage,
			line:    2,
		},
		{
			name:    "inject without page",
			block:   markdown("<!--! inject[x]; -->\n"),
			wantErr: ErrUninitializedPage,
			line:    1,
		},
		{
			name:    "image without page",
			block:   markdown("<!--! image[{}]; -->\n", "![a](a.png)\n"),
			wantErr: ErrUninitializedPage,
			line:    1,
		},
		{
			name:    "unterminated region",
			block:   markdown("text\n", "<!--! new;\n", "start-add;\n"),
			wantErr: ErrUnterminatedRegion,
			line:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(Options{Document: "doc.ipynb"})
			err := d.ProcessBlock(3, tt.block)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var blockErr *BlockError
			require.True(t, errors.As(err, &blockErr))
			assert.Equal(t, "doc.ipynb", blockErr.Document)
			assert.Equal(t, 3, blockErr.Block)
			assert.Equal(t, tt.line, blockErr.Line)

			diags := d.Diagnostics()
			require.Len(t, diags, 1)
			assert.Equal(t, LevelError, diags[0].Level)
		})
	}
}

func TestProcessBlock_Transactional(t *testing.T) {
	d := New(Options{})
	require.NoError(t, d.ProcessBlock(0, markdown("<!--! new; inject[kept]; -->\n")))

	err := d.ProcessBlock(1, markdown("<!--! new; inject[lost]; class[c]; -->\n", "<!--! start-add;\n"))
	require.ErrorIs(t, err, ErrUnterminatedRegion)
	assert.Equal(t, []string{"kept\n"}, d.Pages())

	// The discarded class must not reach the next page.
	require.NoError(t, d.ProcessBlock(2, markdown("<!--! new; -->\n")))
	assert.Equal(t, []string{"kept\n", ""}, d.Pages())
}

func TestProcessBlock_GrammarErrors(t *testing.T) {
	tests := []struct {
		name    string
		region  string
		wantErr error
		level   Level
	}{
		{"unknown command", "<!--! bogus; -->\n", command.ErrUnknownCommand, LevelInfo},
		{"missing payload", "<!--! inject; -->\n", command.ErrMissingPayload, LevelWarn},
		{"missing separator", "<!--! new -->\n", command.ErrMissingSeparator, LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &recordingLogger{}
			d := New(Options{Logger: log})
			block := markdown("<!--! new; -->\n", tt.region, "<!--! inject[after]; -->\n")

			require.NoError(t, d.ProcessBlock(0, block))
			assert.Equal(t, []string{"after\n"}, d.Pages())

			diags := d.Diagnostics()
			require.Len(t, diags, 1)
			assert.Equal(t, tt.level, diags[0].Level)
			assert.Equal(t, 2, diags[0].Line)
			assert.ErrorIs(t, diags[0].Err, tt.wantErr)
			assert.Equal(t, 1, log.count(tt.level.String()))
		})
	}
}

func TestProcessBlock_WrapImage(t *testing.T) {
	t.Run("wraps references of the block", func(t *testing.T) {
		d := New(Options{})
		block := markdown(
			"<!--! new; image[<div>{1}|{0}</div>]; -->\n",
			"![first](a.png)\n",
			"<img src=\"b.png\">\n",
		)
		require.NoError(t, d.ProcessBlock(0, block))
		assert.Equal(t, []string{"<div>b.png|a.png</div>\n"}, d.Pages())
	})

	t.Run("ignores references inside command regions", func(t *testing.T) {
		d := New(Options{})
		block := markdown(
			"<!--! new; image[{}]; -->\n",
			"<!--! inject[!\\[x\\](hidden.png)]; -->\n",
			"![shown](shown.png)\n",
		)
		require.NoError(t, d.ProcessBlock(0, block))
		assert.Equal(t, []string{"shown.png\n![x](hidden.png)\n"}, d.Pages())
	})

	t.Run("template error is skipped", func(t *testing.T) {
		d := New(Options{})
		block := markdown("<!--! new; image[{5}]; inject[x]; -->\n", "![a](a.png)\n")
		require.NoError(t, d.ProcessBlock(0, block))
		assert.Equal(t, []string{"x\n"}, d.Pages())

		diags := d.Diagnostics()
		require.Len(t, diags, 1)
		assert.Equal(t, LevelWarn, diags[0].Level)
		assert.ErrorIs(t, diags[0].Err, md.ErrIndexOutOfRange)
	})
}

func TestProcessBlock_CodeBlocks(t *testing.T) {
	t.Run("appended code is fenced", func(t *testing.T) {
		d := New(Options{Language: "julia"})
		block := code("# <!--! new; start-add; -->\n", "x = 1\n", "println(x)")
		require.NoError(t, d.ProcessBlock(0, block))
		assert.Equal(t, []string{"```julia\nx = 1\nprintln(x)\n```\n"}, d.Pages())
	})

	t.Run("code flushed before next command", func(t *testing.T) {
		d := New(Options{})
		block := code(
			"# <!--! new; start-add; -->\n",
			"a = 1\n",
			"# <!--! inject[between]; -->\n",
			"b = 2\n",
		)
		require.NoError(t, d.ProcessBlock(0, block))
		assert.Equal(t, []string{"```python\na = 1\n```\nbetween\n```python\nb = 2\n```\n"}, d.Pages())
	})

	t.Run("markdown markers are plain code", func(t *testing.T) {
		d := New(Options{})
		block := code("<!--! new; -->\n")
		require.NoError(t, d.ProcessBlock(0, block))
		assert.Empty(t, d.Pages())
	})

	t.Run("stream output", func(t *testing.T) {
		d := New(Options{})
		block := code("# <!--! new; add-stream; -->\n", "print('hi')\n")
		block.Outputs = []notebook.Output{
			{Kind: notebook.OutputStream, Name: "stdout", Text: []string{"hi\n", "\n"}},
		}
		require.NoError(t, d.ProcessBlock(0, block))
		assert.Equal(t, []string{"```\nhi\n```\n"}, d.Pages())
	})

	t.Run("error output", func(t *testing.T) {
		d := New(Options{})
		block := code("# <!--! new; add-error; -->\n")
		block.Outputs = []notebook.Output{
			{Kind: notebook.OutputError, EName: "ValueError", EValue: "bad"},
		}
		require.NoError(t, d.ProcessBlock(0, block))
		assert.Equal(t, []string{"```\nValueError: bad\n```\n"}, d.Pages())
	})

	t.Run("missing output is skipped", func(t *testing.T) {
		d := New(Options{})
		require.NoError(t, d.ProcessBlock(0, code("# <!--! new; add-stream; inject[x]; -->\n")))
		assert.Equal(t, []string{"x\n"}, d.Pages())
		require.Len(t, d.Diagnostics(), 1)
		assert.Equal(t, LevelWarn, d.Diagnostics()[0].Level)
	})
}

func TestProcessBlock_CustomMarkers(t *testing.T) {
	d := New(Options{Markers: Markers{Start: "%%", End: "%%"}})
	require.NoError(t, d.ProcessBlock(0, markdown("%% new; start-add; %%\n", "x\n")))
	assert.Equal(t, []string{"x\n"}, d.Pages())
}

func TestProcessBlock_OtherBlocksSkipped(t *testing.T) {
	log := &recordingLogger{}
	d := New(Options{Logger: log})
	block := notebook.Block{Kind: notebook.BlockOther, Type: "raw", Lines: []string{"<!--! inject[x]; -->\n"}}

	require.NoError(t, d.ProcessBlock(0, block))
	assert.Empty(t, d.Pages())
	assert.Equal(t, 1, log.count("info"))
}

func TestStripCommandRegions(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"no regions", []string{"a\n", "b\n"}, "a\nb\n"},
		{"single line region", []string{"a\n", "<!--! new; -->\n", "b\n"}, "a\nb\n"},
		{"multi line region", []string{"<!--!\n", "new;\n", "-->\n", "b\n"}, "b\n"},
		{"unterminated region", []string{"a\n", "<!--! new;\n", "b\n"}, "a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCommandRegions(tt.lines, DefaultMarkers()))
		})
	}
}

func TestConvert(t *testing.T) {
	nb := &notebook.Notebook{
		Path:     "talk.ipynb",
		Language: "python",
		Blocks: []notebook.Block{
			markdown("<!--! new; start-add; -->\n", "# One\n"),
			code("# <!--! start-add; -->\n", "1 + 1\n"),
			markdown("<!--! start-add; -->\n", "<!--! new;\n"),
			markdown("<!--! new; class[end]; start-add; -->\n", "# Two\n"),
		},
	}

	log := &recordingLogger{}
	result := Convert(nb, Options{Logger: log})

	assert.Equal(t, "# One\n```python\n1 + 1\n```\n\n\n---\nclass: end\n\n# Two\n", result.Text)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 1, result.FailedBlocks)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, 2, result.Diagnostics[0].Block)
	assert.Equal(t, 1, log.count("error"))
}

func TestBlockError_Error(t *testing.T) {
	tests := []struct {
		err  *BlockError
		want string
	}{
		{&BlockError{Document: "a.ipynb", Block: 2, Line: 5, Err: ErrUninitializedPage}, "a.ipynb: block 2, line 5: page not initialized"},
		{&BlockError{Document: "a.ipynb", Block: 2, Err: ErrUnterminatedRegion}, "a.ipynb: block 2: unterminated command region"},
		{&BlockError{Document: "a.ipynb", Block: -1, Err: ErrUninitializedPage}, "a.ipynb: page not initialized"},
		{&BlockError{Block: 3, Line: 1, Err: ErrUninitializedPage}, "block 3, line 1: page not initialized"},
		{&BlockError{Block: -1, Err: ErrUnterminatedRegion}, "unterminated command region"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func ExampleConvert() {
	nb := &notebook.Notebook{
		Blocks: []notebook.Block{
			{Kind: notebook.BlockMarkdown, Lines: []string{"<!--! new; start-add; -->\n", "# Hello\n"}},
		},
	}
	fmt.Print(Convert(nb, Options{}).Text)
	// Output: # Hello
}
