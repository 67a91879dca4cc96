package posts

import (
	"slices"

	"github.com/aretw0/wxrmd/pkg/core"
	"github.com/aretw0/wxrmd/pkg/layout"
)

// Associations maps post ids to their images and cover filename.
type Associations struct {
	// ImageURLs holds an ordered set of URLs per post id.
	ImageURLs map[string][]string
	// CoverImages holds the featured image filename per post id.
	CoverImages map[string]string
}

// Merge checks every image against every post. An image belongs to a post
// when the post owns it or uses it as featured image; one image may belong
// to several posts.
func Merge(images []core.Image, posts []*core.Post) Associations {
	a := Associations{
		ImageURLs:   make(map[string][]string),
		CoverImages: make(map[string]string),
	}
	seen := make(map[string]map[string]struct{})

	for _, img := range images {
		for _, p := range posts {
			attach := img.PostID == p.ID

			if p.CoverImageID != "" && img.ID == p.CoverImageID {
				attach = true
				if _, set := a.CoverImages[p.ID]; !set {
					a.CoverImages[p.ID] = layout.FilenameFromURL(img.URL)
				}
			}
			if !attach {
				continue
			}

			urls := seen[p.ID]
			if urls == nil {
				urls = make(map[string]struct{})
				seen[p.ID] = urls
			}
			if _, dup := urls[img.URL]; dup {
				continue
			}
			urls[img.URL] = struct{}{}
			a.ImageURLs[p.ID] = append(a.ImageURLs[p.ID], img.URL)
		}
	}
	return a
}

// Apply copies the associations onto posts. Existing URLs are kept and the
// cover filename is only set when the post has none.
func (a Associations) Apply(posts []*core.Post) {
	for _, p := range posts {
		for _, u := range a.ImageURLs[p.ID] {
			if !slices.Contains(p.ImageURLs, u) {
				p.ImageURLs = append(p.ImageURLs, u)
			}
		}
		if cover, ok := a.CoverImages[p.ID]; ok && p.CoverImage == "" {
			p.CoverImage = cover
		}
	}
}
