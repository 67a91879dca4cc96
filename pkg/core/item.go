package core

import "strings"

// Field is one occurrence of an element inside an export item.
// Leaf elements carry Text; grouped elements (postmeta) carry Children.
type Field struct {
	Text     string
	Attrs    map[string]string
	Children map[string][]Field
}

// Attr returns the attribute value or "".
func (f Field) Attr(name string) string {
	if f.Attrs == nil {
		return ""
	}
	return f.Attrs[name]
}

// Child returns the text of the first child with the given local name.
func (f Field) Child(name string) string {
	if values := f.Children[name]; len(values) > 0 {
		return values[0].Text
	}
	return ""
}

// Item is a raw export record keyed by local element name.
// Items are immutable once the loader returns them.
type Item struct {
	Fields map[string][]Field
}

// MetaEntry is a key/value pair from a postmeta group.
type MetaEntry struct {
	Key   string
	Value string
}

// Category is a taxonomy term attached to an item.
type Category struct {
	Domain   string
	Nicename string
	Name     string
}

// Values returns the texts of every occurrence of name, in document order.
func (i Item) Values(name string) []string {
	fields := i.Fields[name]
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Text)
	}
	return out
}

// First returns the text of the first occurrence of name, or "".
func (i Item) First(name string) string {
	return i.nth(name, 0)
}

func (i Item) nth(name string, n int) string {
	if fields := i.Fields[name]; len(fields) > n {
		return fields[n].Text
	}
	return ""
}

func (i Item) ID() string            { return i.First("post_id") }
func (i Item) ParentID() string      { return i.First("post_parent") }
func (i Item) Type() string          { return i.First("post_type") }
func (i Item) Status() string        { return i.First("status") }
func (i Item) Title() string         { return i.First("title") }
func (i Item) Link() string          { return i.First("link") }
func (i Item) Creator() string       { return i.First("creator") }
func (i Item) PostName() string      { return i.First("post_name") }
func (i Item) PubDate() string       { return i.First("pubDate") }
func (i Item) PostDate() string      { return i.First("post_date") }
func (i Item) AttachmentURL() string { return i.First("attachment_url") }
func (i Item) Description() string   { return i.First("description") }

// Content is the encoded HTML body.
func (i Item) Content() string { return i.nth("encoded", 0) }

// Excerpt is the optional second encoded field.
func (i Item) Excerpt() string { return i.nth("encoded", 1) }

// HasMeta reports whether the item carries any postmeta group.
func (i Item) HasMeta() bool {
	return len(i.Fields["postmeta"]) > 0
}

// Meta returns every postmeta entry in document order.
func (i Item) Meta() []MetaEntry {
	groups := i.Fields["postmeta"]
	out := make([]MetaEntry, 0, len(groups))
	for _, g := range groups {
		out = append(out, MetaEntry{Key: g.Child("meta_key"), Value: g.Child("meta_value")})
	}
	return out
}

// MetaValue returns the value of the first postmeta entry with key.
func (i Item) MetaValue(key string) (string, bool) {
	for _, m := range i.Meta() {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}

// Categories returns the taxonomy terms of the item.
func (i Item) Categories() []Category {
	fields := i.Fields["category"]
	out := make([]Category, 0, len(fields))
	for _, f := range fields {
		out = append(out, Category{
			Domain:   f.Attr("domain"),
			Nicename: f.Attr("nicename"),
			Name:     strings.TrimSpace(f.Text),
		})
	}
	return out
}
