package collect

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const outputWriteFailedCode = "OUTPUT_WRITE_FAILED"

// ErrOutputExists is returned by Write when the output file exists and
// overwriting was not requested.
var ErrOutputExists = errors.New("output file already exists")

// Join combines the documents into one deck. Empty documents are skipped.
func Join(docs []*Document, separator string) string {
	var parts []string
	for _, doc := range docs {
		if doc == nil || doc.Text == "" {
			continue
		}
		parts = append(parts, doc.Text)
	}
	return strings.Join(parts, separator)
}

// Write stores content at path. An existing file is only replaced when force
// is set.
func Write(path, content string, force bool) error {
	if !force && Exists(path) {
		return writeError(fmt.Errorf("%s: %w", path, ErrOutputExists))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return writeError(fmt.Errorf("failed to create output directory: %w", err))
		}
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return writeError(err)
	}
	return nil
}

// Exists reports whether path names an existing file.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func writeError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryCommand, "failed to write output").
		WithTextCode(outputWriteFailedCode)
}
