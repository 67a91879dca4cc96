package frontmatter

import (
	"net/url"
	"path"
	"regexp"
	"slices"

	"github.com/aretw0/wxrmd/pkg/core"
	"github.com/aretw0/wxrmd/pkg/layout"
)

// Extractor computes one frontmatter value from a post.
type Extractor func(p *core.Post, cfg core.Config) core.Value

const (
	yoastDescription = "_yoast_wpseo_metadesc"
	yoastCornerstone = "_yoast_wpseo_is_cornerstone"
	yoastKeyword     = "_yoast_wpseo_focuskw"
	yoastReadingTime = "_yoast_wpseo_estimated-reading-time-minutes"
)

var lineBreaks = regexp.MustCompile(`[\r\n]+`)

var registry = map[string]Extractor{
	"author": func(p *core.Post, _ core.Config) core.Value {
		return core.String(p.Item.Creator())
	},
	"categories": func(p *core.Post, cfg core.Config) core.Value {
		names := terms(p, "category")
		names = slices.DeleteFunc(names, func(n string) bool {
			return slices.Contains(cfg.FilterCategories, n)
		})
		return core.List(names...)
	},
	"coverImage": func(p *core.Post, _ core.Config) core.Value {
		return core.String(p.CoverImage)
	},
	"cornerstone": func(p *core.Post, _ core.Config) core.Value {
		return core.String(meta(p, yoastCornerstone))
	},
	"date": func(p *core.Post, _ core.Config) core.Value {
		return core.String(p.Date)
	},
	"description": func(p *core.Post, _ core.Config) core.Value {
		return core.String(description(p))
	},
	"excerpt": func(p *core.Post, _ core.Config) core.Value {
		if excerpt := lineBreaks.ReplaceAllString(p.Item.Excerpt(), " "); excerpt != "" {
			return core.String(excerpt)
		}
		return core.String(description(p))
	},
	"id": func(p *core.Post, _ core.Config) core.Value {
		return core.String(p.ID)
	},
	"image": func(p *core.Post, cfg core.Config) core.Value {
		name, ok := layout.SafeFilename(p.CoverImage)
		if !ok {
			return core.String("")
		}
		return core.String(path.Join(layout.AssetDir(p, cfg), name))
	},
	"keyword": func(p *core.Post, _ core.Config) core.Value {
		if kw, ok := p.Item.MetaValue(yoastKeyword); ok {
			return core.List(kw)
		}
		return core.List()
	},
	"link": func(p *core.Post, _ core.Config) core.Value {
		return core.String(p.Item.Link())
	},
	"publishDate": func(p *core.Post, _ core.Config) core.Value {
		return core.Date(p.Time)
	},
	"reading_time": func(p *core.Post, _ core.Config) core.Value {
		return core.String(meta(p, yoastReadingTime))
	},
	"slug": func(p *core.Post, _ core.Config) core.Value {
		return core.String(p.Slug)
	},
	"tags": func(p *core.Post, _ core.Config) core.Value {
		return core.List(terms(p, "post_tag")...)
	},
	"title": func(p *core.Post, _ core.Config) core.Value {
		return core.String(p.Item.Title())
	},
	"type": func(p *core.Post, _ core.Config) core.Value {
		return core.String(p.Type)
	},
}

// Names returns the registered field names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func meta(p *core.Post, key string) string {
	v, _ := p.Item.MetaValue(key)
	return v
}

func description(p *core.Post) string {
	if d := p.Item.Description(); d != "" {
		return d
	}
	return meta(p, yoastDescription)
}

// terms returns the decoded nicenames of the taxonomy terms in domain.
func terms(p *core.Post, domain string) []string {
	var out []string
	for _, c := range p.Item.Categories() {
		if c.Domain != domain {
			continue
		}
		name, err := url.PathUnescape(c.Nicename)
		if err != nil {
			name = c.Nicename
		}
		out = append(out, name)
	}
	return out
}
