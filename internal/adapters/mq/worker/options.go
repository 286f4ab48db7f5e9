package worker

import (
	"time"

	"github.com/okian/deliberation/internal/domain/dedupe"
	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/internal/domain/snapshot"
	"github.com/okian/deliberation/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithPublisher sets where committed views go.
func WithPublisher(p Publisher) Option {
	return func(w *InMemoryWorker) { w.publisher = p }
}

// WithDeduper replaces the default in-memory deduper.
func WithDeduper(d dedupe.Deduper) Option {
	return func(w *InMemoryWorker) {
		if d != nil {
			w.deduper = d
		}
	}
}

// WithSnapshot sets the snapshot the writer starts from.
func WithSnapshot(snap model.Snapshot) Option {
	return func(w *InMemoryWorker) { w.snap = snap.Clone() }
}

// WithSnapshotRules sets the checks applied to incoming events and
// replacement snapshots.
func WithSnapshotRules(opts ...snapshot.Option) Option {
	return func(w *InMemoryWorker) { w.rules = opts }
}

// WithClock overrides the time source stamped on started and completed
// deliberations.
func WithClock(now func() time.Time) Option {
	return func(w *InMemoryWorker) {
		if now != nil {
			w.now = now
		}
	}
}
