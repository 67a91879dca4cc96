package core

import "time"

// ValueKind tags a frontmatter value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindList
	KindDate
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Value is a frontmatter value: a string, a list of strings or a date.
type Value struct {
	Kind ValueKind
	Str  string
	List []string
	Date time.Time
}

// String builds a single string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// List builds a string list value.
func List(items ...string) Value {
	return Value{Kind: KindList, List: append([]string{}, items...)}
}

// Date builds a date value.
func Date(t time.Time) Value { return Value{Kind: KindDate, Date: t} }

// IsEmpty reports whether the value would be omitted from a document.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindList:
		return len(v.List) == 0
	case KindDate:
		return v.Date.IsZero()
	default:
		return v.Str == ""
	}
}

// Entry is one key of a frontmatter block.
type Entry struct {
	Key   string
	Value Value
}

// Frontmatter is an ordered set of entries, unique by key.
type Frontmatter []Entry

// Set stores v under key, keeping the position of an existing key.
func (f Frontmatter) Set(key string, v Value) Frontmatter {
	for i := range f {
		if f[i].Key == key {
			f[i].Value = v
			return f
		}
	}
	return append(f, Entry{Key: key, Value: v})
}

// Get returns the value stored under key.
func (f Frontmatter) Get(key string) (Value, bool) {
	for _, e := range f {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}
