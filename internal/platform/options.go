package platform

import (
	"io"
	"log/slog"

	"github.com/aretw0/wxrmd/pkg/adapters/fs"
	"github.com/aretw0/wxrmd/pkg/translate"
)

// options holds the internal configuration of a conversion run.
type options struct {
	logger  *slog.Logger
	fetcher fs.Fetcher
	reader  io.Reader
	rules   []translate.Rule
}

// Option defines a functional option for a conversion run.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{}
}

func newOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithLogger sets the logger for every stage of the run.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFetcher replaces the HTTP client used to download images.
func WithFetcher(f fs.Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithReader reads the export from r instead of the configured input file.
func WithReader(r io.Reader) Option {
	return func(o *options) {
		o.reader = r
	}
}

// WithRules adds translation rules that take priority over the built-in ones.
func WithRules(rules ...translate.Rule) Option {
	return func(o *options) {
		o.rules = append(o.rules, rules...)
	}
}
