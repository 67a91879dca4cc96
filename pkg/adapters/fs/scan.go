package fs

import (
	"fmt"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches every converted document.
const DefaultPattern = "**/*.md"

// Scan parses every file under root matching pattern, in path order.
func Scan(root, pattern string) ([]Document, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	fsys := os.DirFS(root)
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	slices.Sort(matches)

	s := NewMarkdownSerializer()
	docs := make([]Document, 0, len(matches))
	for _, m := range matches {
		f, err := fsys.Open(m)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", m, err)
		}
		doc, err := s.Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		doc.Path = m
		docs = append(docs, *doc)
	}
	return docs, nil
}
