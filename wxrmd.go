package wxrmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/wxrmd/internal/platform"
	"github.com/aretw0/wxrmd/pkg/adapters/fs"
	"github.com/aretw0/wxrmd/pkg/core"
	"github.com/aretw0/wxrmd/pkg/translate"
)

// --- Types ---

// Config is the run configuration.
type Config = core.Config

// Post is a converted post.
type Post = core.Post

// Report tallies the files written by Run.
type Report = fs.Report

// Fetcher downloads images.
type Fetcher = fs.Fetcher

// Rule overrides how matching HTML elements are translated.
type Rule = translate.Rule

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return core.DefaultConfig()
}

// --- Configuration ---

// Option defines a functional option for a conversion run.
type Option = platform.Option

// WithLogger sets the logger for every stage of the run.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithFetcher replaces the HTTP client used to download images.
func WithFetcher(f Fetcher) Option {
	return platform.WithFetcher(f)
}

// WithReader reads the export from r instead of the configured input file.
func WithReader(r io.Reader) Option {
	return platform.WithReader(r)
}

// WithRules adds translation rules ahead of the built-in ones.
func WithRules(rules ...Rule) Option {
	return platform.WithRules(rules...)
}

// --- Operations ---

// Convert returns the posts of the export with Markdown content and
// frontmatter, without writing anything.
func Convert(ctx context.Context, cfg Config, opts ...Option) ([]*Post, error) {
	return platform.Convert(ctx, cfg, opts...)
}

// Runner repeats conversions with one writer, keeping its totals.
type Runner = platform.Runner

// NewRunner prepares repeated runs of cfg.
func NewRunner(cfg Config, opts ...Option) *Runner {
	return platform.NewRunner(cfg, opts...)
}

// Run converts the export and writes documents and images.
func Run(ctx context.Context, cfg Config, opts ...Option) (Report, error) {
	return platform.Run(ctx, cfg, opts...)
}
