package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// WriterState exposes internal state for observability.
type WriterState struct {
	Output      string     `json:"output"`
	Concurrency int        `json:"concurrency"`
	StrictSSL   bool       `json:"strict_ssl"`
	Running     bool       `json:"running"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	Totals      Report     `json:"totals"`
}

// State implements introspection.Introspectable.
func (w *Writer) State() any {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return WriterState{
		Output:      w.cfg.Output,
		Concurrency: w.cfg.Concurrency,
		StrictSSL:   w.cfg.StrictSSL,
		Running:     w.running,
		LastRun:     w.lastRun,
		Totals:      w.totals,
	}
}

// ComponentType implements introspection.Component.
func (w *Writer) ComponentType() string {
	return "writer"
}

var _ introspection.Introspectable = (*Writer)(nil)
var _ introspection.Component = (*Writer)(nil)
