package fs

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/aretw0/wxrmd/pkg/core"
	"github.com/aretw0/wxrmd/pkg/layout"
)

// Report tallies the outcome of a write run.
type Report struct {
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func (r *Report) add(o Report) {
	r.Saved += o.Saved
	r.Skipped += o.Skipped
	r.Failed += o.Failed
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithFetcher replaces the HTTP image fetcher.
func WithFetcher(f Fetcher) WriterOption {
	return func(w *Writer) {
		w.fetcher = f
	}
}

// WithWriterLogger sets the logger used for per-item results.
func WithWriterLogger(logger *slog.Logger) WriterOption {
	return func(w *Writer) {
		w.logger = logger
	}
}

// Writer persists converted posts and downloads their images.
type Writer struct {
	cfg        core.Config
	fetcher    Fetcher
	serializer *MarkdownSerializer
	logger     *slog.Logger

	mu      sync.RWMutex
	running bool
	lastRun *time.Time
	totals  Report
}

// NewWriter creates a Writer for cfg.
func NewWriter(cfg core.Config, opts ...WriterOption) *Writer {
	w := &Writer{
		cfg:        cfg,
		serializer: NewMarkdownSerializer(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.fetcher == nil {
		w.fetcher = NewHTTPFetcher(cfg, w.logger)
	}
	return w
}

type job struct {
	dest    string
	payload func(ctx context.Context) ([]byte, error)
}

// Write saves every post document, then every image referenced by the
// posts. Destinations that already exist are skipped. Item failures are
// logged and counted; only cancellation of ctx returns an error.
func (w *Writer) Write(ctx context.Context, posts []*core.Post) (Report, error) {
	w.setRunning(true)
	defer w.setRunning(false)

	var report Report

	docs, err := w.run(ctx, "markdown", w.cfg.MarkdownWriteDelay, w.documentJobs(posts))
	report.add(docs)
	if err != nil {
		w.record(report)
		return report, err
	}

	jobs, rejected := w.imageJobs(posts)
	report.Failed += rejected
	images, err := w.run(ctx, "image", w.cfg.ImageRequestDelay, jobs)
	report.add(images)
	w.record(report)
	if err != nil {
		return report, err
	}

	if report.Failed > 0 {
		w.logger.Warn("write finished with failures", "saved", report.Saved, "skipped", report.Skipped, "failed", report.Failed)
	} else {
		w.logger.Info("write finished", "saved", report.Saved, "skipped", report.Skipped)
	}
	return report, nil
}

func (w *Writer) documentJobs(posts []*core.Post) []job {
	jobs := make([]job, 0, len(posts))
	for _, p := range posts {
		jobs = append(jobs, job{
			dest: filepath.FromSlash(layout.PostPath(p, w.cfg)),
			payload: func(context.Context) ([]byte, error) {
				return w.serializer.Serialize(p.Frontmatter, p.Content), nil
			},
		})
	}
	return jobs
}

// imageJobs returns one job per image URL. URLs without a usable filename
// are counted as rejected.
func (w *Writer) imageJobs(posts []*core.Post) ([]job, int) {
	var (
		jobs     []job
		rejected int
	)
	for _, p := range posts {
		dir := filepath.FromSlash(layout.ImageDir(p, w.cfg))
		for _, u := range p.ImageURLs {
			name, ok := layout.SafeFilename(layout.FilenameFromURL(u))
			if !ok {
				w.logger.Error("[FAILED] "+u, "kind", "image", "error", "no usable filename")
				rejected++
				continue
			}
			jobs = append(jobs, job{
				dest: filepath.Join(dir, name),
				payload: func(ctx context.Context) ([]byte, error) {
					return w.fetcher.Fetch(ctx, u)
				},
			})
		}
	}
	return jobs, rejected
}

// run starts jobs no faster than one per delay, at most cfg.Concurrency at a time.
func (w *Writer) run(ctx context.Context, kind string, delay time.Duration, jobs []job) (Report, error) {
	var report Report

	pending := make([]job, 0, len(jobs))
	seen := make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		if _, dup := seen[j.dest]; dup || exists(j.dest) {
			report.Skipped++
			continue
		}
		seen[j.dest] = struct{}{}
		pending = append(pending, j)
	}

	if len(pending) == 0 {
		w.logger.Info("no new files to save", "kind", kind, "skipped", report.Skipped)
		return report, nil
	}
	w.logger.Info("saving files", "kind", kind, "count", len(pending), "skipped", report.Skipped)

	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	var g errgroup.Group
	if w.cfg.Concurrency > 0 {
		g.SetLimit(w.cfg.Concurrency)
	}

	var mu sync.Mutex
	var waitErr error
	for _, j := range pending {
		if waitErr = limiter.Wait(ctx); waitErr != nil {
			break
		}
		g.Go(func() error {
			ok := w.do(ctx, kind, j)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				report.Saved++
			} else {
				report.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	if waitErr != nil {
		return report, ctx.Err()
	}
	return report, nil
}

func (w *Writer) do(ctx context.Context, kind string, j job) bool {
	data, err := j.payload(ctx)
	if err == nil {
		err = writeFileAtomic(j.dest, data, 0o644)
	}
	if err != nil {
		w.logger.Error("[FAILED] "+j.dest, "kind", kind, "error", err)
		return false
	}
	w.logger.Info("[OK] "+j.dest, "kind", kind, "size", humanize.Bytes(uint64(len(data))))
	return true
}

func (w *Writer) setRunning(running bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = running
}

func (w *Writer) record(r Report) {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	w.lastRun = &now
	w.totals.add(r)
}
