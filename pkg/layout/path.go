// Package layout computes output paths for converted posts and their images.
// Paths are slash-separated and computed without touching the filesystem.
package layout

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/aretw0/wxrmd/pkg/core"
)

const (
	imagesDir = "images"
	// fallbackName replaces a post name that is not a usable path element.
	fallbackName = "untitled"
)

var imageExtension = regexp.MustCompile(`(?i)\.(gif|jpe?g|png|webp)$`)

// IsImage reports whether name ends with a supported image extension.
func IsImage(name string) bool {
	return imageExtension.MatchString(name)
}

// PostPath returns the document path of p under cfg.Output. A slug that is
// not a single path element is replaced by the post id.
func PostPath(p *core.Post, cfg core.Config) string {
	segments := dateSegments(cfg.Output, false, p, cfg)

	slug := p.Slug
	if !isSegment(slug) {
		slug = p.ID
	}
	if !isSegment(slug) {
		slug = fallbackName
	}
	if cfg.PrefixDate {
		slug = p.Time.Format("2006-01-02") + "-" + slug
	}

	if cfg.PostFolders {
		segments = append(segments, slug, "index.md")
	} else {
		segments = append(segments, slug+".md")
	}
	return path.Join(segments...)
}

// ImageDir returns the directory images of p are written to.
func ImageDir(p *core.Post, cfg core.Config) string {
	return path.Join(dateSegments(cfg.Output, true, p, cfg)...)
}

// AssetDir returns the directory images of p are referenced from, rooted at
// cfg.AssetsRoot.
func AssetDir(p *core.Post, cfg core.Config) string {
	return path.Join(dateSegments(cfg.AssetsRoot, true, p, cfg)...)
}

func dateSegments(root string, image bool, p *core.Post, cfg core.Config) []string {
	segments := []string{root}
	if image {
		segments = append(segments, imagesDir)
	}
	if cfg.IncludeOtherTypes {
		postType := p.Type
		if !isSegment(postType) {
			postType = fallbackName
		}
		segments = append(segments, postType)
	}
	if cfg.YearFolders {
		segments = append(segments, p.Time.Format("2006"))
	}
	if cfg.MonthFolders {
		segments = append(segments, p.Time.Format("01"))
	}
	return segments
}

// isSegment reports whether name is a single path element that stays in
// its parent directory.
func isSegment(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// SafeFilename reduces a decoded filename to its last path element. ok is
// false when nothing usable is left.
func SafeFilename(name string) (string, bool) {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if !isSegment(base) {
		return "", false
	}
	return base, true
}

// FilenameFromURL returns the decoded last path segment of rawURL. A segment
// that cannot be decoded is returned as is.
func FilenameFromURL(rawURL string) string {
	name := rawURL
	if i := strings.LastIndex(rawURL, "/"); i >= 0 {
		name = rawURL[i+1:]
	}
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return name
	}
	return decoded
}
