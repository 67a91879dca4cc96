// Package wxr decodes WXR export documents into raw items.
package wxr

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/aretw0/wxrmd/pkg/core"
)

// element is an open tag while the document is being decoded.
type element struct {
	name     string
	attrs    map[string]string
	text     bytes.Buffer
	children map[string][]core.Field
}

func (e *element) add(name string, f core.Field) {
	if e.children == nil {
		e.children = make(map[string][]core.Field)
	}
	e.children[name] = append(e.children[name], f)
}

func (e *element) field() core.Field {
	return core.Field{
		Text:     strings.TrimSpace(e.text.String()),
		Attrs:    e.attrs,
		Children: e.children,
	}
}

// LoadFile opens path and decodes it with Load.
func LoadFile(path string) ([]core.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes every rss > channel > item element into an Item, in document
// order. Namespace prefixes are dropped from element and attribute names.
func Load(r io.Reader) ([]core.Item, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel

	var (
		stack      []*element
		items      []core.Item
		sawChannel bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrMalformedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, &element{name: t.Name.Local, attrs: attrMap(t.Attr)})
			if isChannel(stack) {
				sawChannel = true
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unexpected </%s>", core.ErrMalformedDocument, t.Name.Local)
			}
			el := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if el.name == "item" && isChannel(stack) {
				items = append(items, core.Item{Fields: el.children})
				continue
			}
			if len(stack) > 0 {
				stack[len(stack)-1].add(el.name, el.field())
			}
		}
	}

	if !sawChannel {
		return nil, fmt.Errorf("%w: no rss channel found", core.ErrMalformedDocument)
	}
	return items, nil
}

func isChannel(stack []*element) bool {
	return len(stack) == 2 && stack[0].name == "rss" && stack[1].name == "channel"
}

func attrMap(attrs []xml.Attr) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		out[a.Name.Local] = a.Value
	}
	return out
}
