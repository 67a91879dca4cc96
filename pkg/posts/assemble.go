// Package posts classifies export items and assembles Post aggregates, then
// collects and associates their images.
package posts

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/ncruces/go-strftime"

	"github.com/aretw0/wxrmd/pkg/core"
)

// excludedTypes are never converted, even when other types are included.
var excludedTypes = map[string]struct{}{
	"attachment":          {},
	"revision":            {},
	"nav_menu_item":       {},
	"custom_css":          {},
	"customize_changeset": {},
	"et_body_layout":      {},
	"et_footer_layout":    {},
	"et_header_layout":    {},
	"et_pb_layout":        {},
	"et_template":         {},
	"wp_global_styles":    {},
}

const featuredImageKey = "_thumbnail_id"

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
}

// Types returns the in-scope type tags in discovery order.
func Types(items []core.Item, includeOther bool) []string {
	if !includeOther {
		return []string{core.DefaultType}
	}

	var types []string
	seen := make(map[string]struct{})
	for _, item := range items {
		t := item.Type()
		if _, skip := excludedTypes[t]; skip {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	return types
}

// Collect builds one Post per published item of each type, grouped by type
// in the given order. Trashed and draft items are skipped.
func Collect(items []core.Item, types []string, cfg core.Config, logger *slog.Logger) ([]*core.Post, error) {
	if logger == nil {
		logger = slog.Default()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var all []*core.Post
	ids := make(map[string]struct{})

	for _, postType := range types {
		count := 0
		for _, item := range items {
			if item.Type() != postType {
				continue
			}
			if status := item.Status(); status == "trash" || status == "draft" {
				continue
			}
			if _, dup := ids[item.ID()]; dup {
				logger.Warn("duplicate post id skipped", "id", item.ID(), "type", postType)
				continue
			}
			ids[item.ID()] = struct{}{}

			all = append(all, newPost(item, postType, cfg, loc, logger))
			count++
		}
		if len(types) > 1 {
			logger.Info("posts found", "type", postType, "count", count)
		}
	}

	if len(types) == 1 {
		logger.Info("posts found", "count", len(all))
	}
	return all, nil
}

func newPost(item core.Item, postType string, cfg core.Config, loc *time.Location, logger *slog.Logger) *core.Post {
	t, ok := itemTime(item, loc)
	if !ok {
		logger.Warn("post has no parseable date", "id", item.ID(), "pubDate", item.PubDate())
	}

	p := &core.Post{
		ID:   item.ID(),
		Slug: postSlug(item),
		Type: postType,
		Time: t,
		Date: FormatDate(t, cfg),
		Item: item,
	}
	if item.HasMeta() {
		p.CoverImageID, _ = item.MetaValue(featuredImageKey)
	}
	return p
}

func postSlug(item core.Item) string {
	if name := item.PostName(); name != "" {
		decoded, err := url.PathUnescape(name)
		if err != nil {
			decoded = name
		}
		// a slug is one path element
		if !strings.ContainsAny(decoded, `/\`) {
			return decoded
		}
		if s, err := slug.Normalize(decoded); err == nil && s != "" {
			return s
		}
	}
	if s, err := slug.Normalize(item.Title()); err == nil && s != "" {
		return s
	}
	return item.ID()
}

// itemTime parses the RFC 2822 publish date, falling back to post_date.
func itemTime(item core.Item, loc *time.Location) (time.Time, bool) {
	if raw := item.PubDate(); raw != "" {
		for _, layout := range pubDateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.In(loc), true
			}
		}
	}
	if raw := item.PostDate(); raw != "" {
		if t, err := time.ParseInLocation(time.DateTime, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders t with the custom strftime format, as an ISO date-time
// when time is included, or as an ISO date. A zero time renders as "".
func FormatDate(t time.Time, cfg core.Config) string {
	switch {
	case t.IsZero():
		return ""
	case cfg.DateFormat != "":
		return strftime.Format(cfg.DateFormat, t)
	case cfg.IncludeTime:
		return t.Format(time.RFC3339)
	default:
		return t.Format(time.DateOnly)
	}
}
