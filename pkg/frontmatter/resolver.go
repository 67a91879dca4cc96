// Package frontmatter resolves the configured frontmatter fields of a post.
//
// Fields are named in the configuration as "name" or "name:alias". The name
// selects an extractor from a fixed registry, the alias (when given) is the
// key written to the document.
package frontmatter

import (
	"fmt"
	"strings"

	"github.com/aretw0/wxrmd/pkg/core"
)

type field struct {
	key     string
	extract Extractor
}

// Resolver computes frontmatter for posts. Unknown fields are rejected when
// the Resolver is built, so a bad configuration fails before any input is read.
type Resolver struct {
	cfg    core.Config
	fields []field
}

// NewResolver parses cfg.FrontmatterFields.
func NewResolver(cfg core.Config) (*Resolver, error) {
	r := &Resolver{cfg: cfg}
	for _, spec := range cfg.FrontmatterFields {
		name, alias, _ := strings.Cut(spec, ":")
		name = strings.TrimSpace(name)
		alias = strings.TrimSpace(alias)
		if name == "" {
			return nil, fmt.Errorf("%w: %q", core.ErrUnknownField, spec)
		}
		extract, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", core.ErrUnknownField, name)
		}
		key := name
		if alias != "" {
			key = alias
		}
		r.fields = append(r.fields, field{key: key, extract: extract})
	}
	return r, nil
}

// Keys returns the output keys in order.
func (r *Resolver) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.key
	}
	return keys
}

// Resolve returns the frontmatter of p in configured order.
func (r *Resolver) Resolve(p *core.Post) core.Frontmatter {
	var fm core.Frontmatter
	for _, f := range r.fields {
		fm = fm.Set(f.key, f.extract(p, r.cfg))
	}
	return fm
}

// Apply resolves and stores the frontmatter of every post.
func (r *Resolver) Apply(posts []*core.Post) {
	for _, p := range posts {
		p.Frontmatter = r.Resolve(p)
	}
}
