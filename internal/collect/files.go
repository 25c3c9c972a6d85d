// Package collect discovers input documents, converts them to slide pages and
// writes the combined deck.
package collect

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const notebookExt = ".ipynb"

// checkpointDir holds Jupyter autosaves, which duplicate real notebooks.
const checkpointDir = ".ipynb_checkpoints"

// Discover expands inputs into the list of documents to convert. Files are
// taken as given; directories are searched recursively for notebooks, in
// lexical order. Hidden directories are skipped.
func Discover(inputs []string) ([]string, error) {
	var paths []string

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("failed to access input: %w", err)
		}

		if !info.IsDir() {
			paths = append(paths, input)
			continue
		}

		found, err := findNotebooks(input)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}

	return paths, nil
}

func findNotebooks(root string) ([]string, error) {
	var found []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), notebookExt) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", root, err)
	}

	sort.Strings(found)
	return found, nil
}

func isHidden(name string) bool {
	return name == checkpointDir || strings.HasPrefix(name, ".")
}
