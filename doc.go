// Package wxrmd converts WordPress WXR export files into Markdown documents
// with YAML frontmatter, and downloads the images the posts use.
//
// A run flows through a fixed pipeline:
//
//   - the export is decoded into raw items (pkg/wxr)
//   - items are classified and assembled into posts (pkg/posts)
//   - attached and scraped images are collected and merged into their posts
//   - post bodies are translated from HTML to Markdown (pkg/translate)
//   - frontmatter fields are resolved (pkg/frontmatter)
//   - documents and images are written under the output directory (pkg/adapters/fs)
//
// Usage:
//
//	cfg := wxrmd.DefaultConfig()
//	cfg.Input = "export.xml"
//	cfg.Output = "content"
//
//	report, err := wxrmd.Run(ctx, cfg, wxrmd.WithLogger(logger))
//
// Convert runs every stage except the write and returns the posts, which is
// useful for feeding another store.
package wxrmd
