// Package core holds the domain model shared by every conversion stage.
package core

import "time"

// ScrapedImageID marks an image discovered in a post body rather than
// declared as an attachment. It never equals a real attachment id.
const ScrapedImageID = "-1"

// Post is the aggregate built for each in-scope export item.
// Stages mutate it in a fixed order: merge, translate, frontmatter.
type Post struct {
	ID   string
	Slug string
	Type string
	// Date is the normalized date string (custom format, ISO date or ISO date-time).
	Date string
	// Time is the publish instant in the configured zone; zero when unparseable.
	Time time.Time

	// CoverImageID is the featured image attachment id, empty when absent.
	CoverImageID string
	// ImageURLs is an ordered set of absolute image URLs.
	ImageURLs []string
	// CoverImage is the decoded filename of the featured image, set only by the merger.
	CoverImage string

	Content     string
	Frontmatter Frontmatter

	// Item is the raw record the post was built from.
	Item Item
}

// Image is a candidate image reference.
type Image struct {
	// ID is the attachment id, or ScrapedImageID.
	ID string
	// PostID is the attachment parent or the scraping post.
	PostID string
	URL    string
}
