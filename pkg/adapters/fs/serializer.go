package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/wxrmd/pkg/core"
)

// Document is a converted Markdown file read back from disk.
type Document struct {
	// Path is slash-separated and relative to the scanned root.
	Path        string         `json:"path"`
	Frontmatter map[string]any `json:"frontmatter"`
	Content     string         `json:"content"`
}

// Strings returns the frontmatter value under key as a list of strings.
// Scalars become a single-element list.
func (d Document) Strings(key string) []string {
	switch v := d.Frontmatter[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case nil:
		return nil
	default:
		return []string{fmt.Sprint(v)}
	}
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}

var plainKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// key renders a frontmatter key, quoting anything YAML could misread.
func key(k string) string {
	if plainKey.MatchString(k) {
		return k
	}
	return quote(k)
}

// MarkdownSerializer writes posts as frontmatter plus Markdown body.
type MarkdownSerializer struct{}

// NewMarkdownSerializer creates a new Markdown serializer.
func NewMarkdownSerializer() *MarkdownSerializer {
	return &MarkdownSerializer{}
}

// Serialize renders fm in order, skipping empty values, followed by content.
func (s *MarkdownSerializer) Serialize(fm core.Frontmatter, content string) []byte {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	for _, e := range fm {
		if e.Value.IsEmpty() {
			continue
		}
		switch e.Value.Kind {
		case core.KindList:
			buf.WriteString(key(e.Key) + ":")
			for _, item := range e.Value.List {
				buf.WriteString("\n  - " + quote(item))
			}
			buf.WriteString("\n")
		case core.KindDate:
			buf.WriteString(key(e.Key) + ": " + e.Value.Date.Format(time.RFC3339) + "\n")
		default:
			buf.WriteString(key(e.Key) + ": " + quote(e.Value.Str) + "\n")
		}
	}
	buf.WriteString("---\n\n")
	buf.WriteString(content)
	buf.WriteString("\n")
	return buf.Bytes()
}

// Parse reads a document written by Serialize, or any Markdown file with
// YAML frontmatter.
func (s *MarkdownSerializer) Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	doc := &Document{Frontmatter: make(map[string]any)}
	if !bytes.HasPrefix(data, []byte("---\n")) {
		doc.Content = strings.TrimSpace(string(data))
		return doc, nil
	}

	rest := data[len("---\n"):]
	var yamlData, contentData []byte
	if bytes.HasPrefix(rest, []byte("---\n")) {
		contentData = rest[len("---\n"):]
	} else {
		end := bytes.Index(rest, []byte("\n---\n"))
		if end < 0 {
			if !bytes.HasSuffix(rest, []byte("\n---")) {
				return nil, errors.New("frontmatter started but no closing delimiter found")
			}
			end = len(rest) - len("\n---")
		}
		yamlData = rest[:end+1]
		contentData = rest[min(end+len("\n---\n"), len(rest)):]
	}

	if err := yaml.Unmarshal(yamlData, &doc.Frontmatter); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if doc.Frontmatter == nil {
		doc.Frontmatter = make(map[string]any)
	}
	doc.Content = strings.TrimSpace(string(contentData))
	return doc, nil
}
