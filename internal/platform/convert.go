package platform

import (
	"context"
	"slices"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/wxrmd/pkg/adapters/fs"
	"github.com/aretw0/wxrmd/pkg/core"
	"github.com/aretw0/wxrmd/pkg/frontmatter"
	"github.com/aretw0/wxrmd/pkg/posts"
	"github.com/aretw0/wxrmd/pkg/translate"
	"github.com/aretw0/wxrmd/pkg/wxr"
)

// Convert loads the export and returns its posts with translated content and
// resolved frontmatter. Nothing is written.
func Convert(ctx context.Context, cfg core.Config, opts ...Option) ([]*core.Post, error) {
	o := newOptions(opts)
	logger := o.logger

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// unknown frontmatter fields fail before the export is read
	resolver, err := frontmatter.NewResolver(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var items []core.Item
	if o.reader != nil {
		items, err = wxr.Load(o.reader)
	} else {
		items, err = wxr.LoadFile(cfg.Input)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("export loaded", "items", len(items), "elapsed", time.Since(start).Round(time.Millisecond))

	types := posts.Types(items, cfg.IncludeOtherTypes)
	all, err := posts.Collect(items, types, cfg, logger)
	if err != nil {
		return nil, err
	}

	var images []core.Image
	if cfg.SaveAttachedImages {
		images = append(images, posts.CollectAttached(items, logger)...)
	}
	if cfg.SaveScrapedImages {
		images = append(images, posts.CollectScraped(items, types, logger)...)
	}
	posts.Merge(images, all).Apply(all)

	tr := translate.New(cfg, translate.WithLogger(logger), translate.WithRules(o.rules...))
	for _, p := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.Content = tr.Translate(p)
	}

	resolver.Apply(all)
	return all, nil
}

// Runner converts the export and writes the result with one Writer, so the
// writer state accumulates over repeated runs.
type Runner struct {
	cfg    core.Config
	opts   []Option
	writer *fs.Writer
}

// NewRunner prepares repeated runs of cfg.
func NewRunner(cfg core.Config, opts ...Option) *Runner {
	o := newOptions(opts)

	writerOpts := []fs.WriterOption{fs.WithWriterLogger(o.logger)}
	if o.fetcher != nil {
		writerOpts = append(writerOpts, fs.WithFetcher(o.fetcher))
	}
	return &Runner{
		cfg:    cfg,
		opts:   slices.Clone(opts),
		writer: fs.NewWriter(cfg, writerOpts...),
	}
}

// Run converts the export and writes documents and images under cfg.Output.
func (r *Runner) Run(ctx context.Context) (fs.Report, error) {
	all, err := Convert(ctx, r.cfg, r.opts...)
	if err != nil {
		return fs.Report{}, err
	}
	return r.writer.Write(ctx, all)
}

// State implements introspection.Introspectable.
func (r *Runner) State() any {
	return r.writer.State()
}

// ComponentType implements introspection.Component.
func (r *Runner) ComponentType() string {
	return "runner"
}

var _ introspection.Introspectable = (*Runner)(nil)
var _ introspection.Component = (*Runner)(nil)

// Run converts the export and writes documents and images under cfg.Output.
func Run(ctx context.Context, cfg core.Config, opts ...Option) (fs.Report, error) {
	return NewRunner(cfg, opts...).Run(ctx)
}

// NewWatcher returns a worker that runs a conversion every time the input
// file changes. The export is always read from cfg.Input.
func NewWatcher(cfg core.Config, opts ...Option) *fs.Watcher {
	o := newOptions(opts)
	runner := NewRunner(cfg, append(slices.Clip(opts), WithReader(nil))...)
	return fs.NewWatcher(cfg.Input, fs.DefaultWatchDelay, func(ctx context.Context) error {
		report, err := runner.Run(ctx)
		if err != nil {
			return err
		}
		state, _ := runner.State().(fs.WriterState)
		o.logger.Info("watch run finished",
			"saved", report.Saved, "skipped", report.Skipped, "failed", report.Failed,
			"total_saved", state.Totals.Saved, "total_failed", state.Totals.Failed)
		return nil
	}, o.logger)
}
