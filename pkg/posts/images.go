package posts

import (
	"log/slog"
	"net/url"
	"regexp"

	"github.com/aretw0/wxrmd/pkg/core"
	"github.com/aretw0/wxrmd/pkg/layout"
)

var imgTag = regexp.MustCompile(`(?i)<img[^>]*src="([^"]+?\.(?:gif|jpe?g|png|webp))"[^>]*>`)

// CollectAttached returns an Image for every attachment with an image URL.
func CollectAttached(items []core.Item, logger *slog.Logger) []core.Image {
	if logger == nil {
		logger = slog.Default()
	}

	var images []core.Image
	for _, item := range items {
		if item.Type() != "attachment" {
			continue
		}
		u := item.AttachmentURL()
		if u == "" || !layout.IsImage(u) {
			continue
		}
		images = append(images, core.Image{
			ID:     item.ID(),
			PostID: item.ParentID(),
			URL:    u,
		})
	}

	logger.Info("attached images found", "count", len(images))
	return images
}

// CollectScraped returns an Image for every <img> in the bodies of in-scope
// items, resolved against the item link.
func CollectScraped(items []core.Item, types []string, logger *slog.Logger) []core.Image {
	if logger == nil {
		logger = slog.Default()
	}
	inScope := make(map[string]struct{}, len(types))
	for _, t := range types {
		inScope[t] = struct{}{}
	}

	var images []core.Image
	for _, item := range items {
		if _, ok := inScope[item.Type()]; !ok {
			continue
		}
		base, err := url.Parse(item.Link())
		if err != nil {
			logger.Debug("post link is not a URL", "id", item.ID(), "link", item.Link())
			continue
		}
		for _, m := range imgTag.FindAllStringSubmatch(item.Content(), -1) {
			ref, err := url.Parse(m[1])
			if err != nil {
				logger.Debug("image src is not a URL", "id", item.ID(), "src", m[1])
				continue
			}
			abs := base.ResolveReference(ref)
			if !abs.IsAbs() {
				logger.Debug("image src could not be made absolute", "id", item.ID(), "src", m[1])
				continue
			}
			images = append(images, core.Image{
				ID:     core.ScrapedImageID,
				PostID: item.ID(),
				URL:    abs.String(),
			})
		}
	}

	logger.Info("images scraped from post body content", "count", len(images))
	return images
}
