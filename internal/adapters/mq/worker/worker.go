// Package worker runs the single writer that owns the authoritative
// deliberation state.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/deliberation/internal/adapters/repository"
	"github.com/okian/deliberation/internal/domain/dedupe"
	"github.com/okian/deliberation/internal/domain/deliberation"
	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/internal/domain/snapshot"
	"github.com/okian/deliberation/pkg/logger"
	"github.com/okian/deliberation/pkg/metrics"
)

// Queue is where the writer receives jobs.
type Queue interface {
	Dequeue() <-chan model.Job
}

// Decider validates a command against the latest state.
type Decider interface {
	Decide(state *model.State, snap *model.Snapshot, cmd *model.Command, now time.Time) (deliberation.Decision, error)
}

// Publisher receives every state and snapshot the writer commits.
type Publisher interface {
	Publish(st model.State, snap model.Snapshot)
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, the queue is
	// closed, or Shutdown is called.
	Run(ctx context.Context)

	// Shutdown stops the loop after the queued jobs are handled.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker is the single writer. Jobs are handled one at a time so
// every command is validated against the state the previous one produced.
type InMemoryWorker struct {
	queue     Queue
	store     repository.Store
	decider   Decider
	publisher Publisher
	deduper   dedupe.Deduper
	eventID   string
	snap      model.Snapshot
	rules     []snapshot.Option
	now       func() time.Time

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
	tracer trace.Tracer
}

// NewInMemoryWorker creates the writer for one event.
func NewInMemoryWorker(eventID string, q Queue, store repository.Store, decider Decider, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		store:    store,
		decider:  decider,
		eventID:  eventID,
		deduper:  dedupe.NewInMemoryDeduper(),
		now:      time.Now,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("writer"),
		tracer:   otel.Tracer("github.com/okian/deliberation/writer"),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(logger.String("event", eventID))
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			w.drain(ctx, jobs)
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.handle(ctx, job)
		}
	}
}

func (w *InMemoryWorker) drain(ctx context.Context, jobs <-chan model.Job) {
	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.handle(ctx, job)
		default:
			return
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) handle(ctx context.Context, job model.Job) {
	metrics.RecordQueueDequeue()
	res := w.process(ctx, job)
	if job.Reply != nil {
		select {
		case job.Reply <- res:
		default:
			w.logger.Warn(ctx, "reply dropped", logger.String("job", job.ID()))
		}
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job model.Job) model.JobResult {
	switch {
	case job.Command != nil:
		return w.command(ctx, job.Command)
	case job.Event != nil:
		return w.event(ctx, job.Event)
	case job.Snapshot != nil:
		return w.replace(ctx, job.Snapshot)
	}
	return model.JobResult{Err: errors.New("empty job")}
}

func (w *InMemoryWorker) command(ctx context.Context, cmd *model.Command) model.JobResult {
	kind := string(cmd.Kind)
	ctx, span := w.tracer.Start(ctx, "deliberation.command", trace.WithAttributes(
		attribute.String("command.kind", kind),
		attribute.String("command.id", cmd.ID),
		attribute.String("event.id", w.eventID),
	))
	defer span.End()

	start := time.Now()
	defer func() { metrics.RecordCommandLatency(kind, float64(time.Since(start).Microseconds())/1000) }()

	st, err := w.store.Load(ctx, w.eventID)
	if err != nil {
		return w.fail(ctx, span, kind, "", fmt.Errorf("load state: %w", err))
	}
	if w.deduper.SeenAndRecord(ctx, cmd.ID) {
		metrics.RecordDuplicate("command")
		metrics.RecordCommand(kind, metrics.OutcomeDuplicate)
		span.AddEvent("duplicate")
		return model.JobResult{State: st, Snapshot: w.snap, Duplicate: true}
	}

	d, err := w.decider.Decide(&st, &w.snap, cmd, w.now().UTC())
	if err != nil {
		w.deduper.Unrecord(ctx, cmd.ID)
		metrics.RecordCommand(kind, metrics.OutcomeRejected)
		span.SetStatus(codes.Error, err.Error())
		w.logger.Info(ctx, "command rejected", logger.String("kind", kind), logger.Error(err))
		return model.JobResult{State: st, Snapshot: w.snap, Err: err}
	}
	if !d.Changed {
		metrics.RecordCommand(kind, metrics.OutcomeNoop)
		return model.JobResult{State: st, Snapshot: w.snap}
	}

	saved, err := w.store.Save(ctx, d.State, st.Version)
	if err != nil {
		return w.fail(ctx, span, kind, cmd.ID, fmt.Errorf("save state: %w", err))
	}
	metrics.RecordCommand(kind, metrics.OutcomeAccepted)
	metrics.UpdateStateVersion(saved.Version)
	span.SetAttributes(attribute.Int64("state.version", saved.Version))
	span.SetStatus(codes.Ok, "")
	w.logger.Debug(ctx, "command applied", logger.String("kind", kind), logger.Int64("version", saved.Version))

	w.publish(saved)
	return model.JobResult{State: saved, Snapshot: w.snap}
}

func (w *InMemoryWorker) fail(ctx context.Context, span trace.Span, kind, id string, err error) model.JobResult {
	if id != "" {
		w.deduper.Unrecord(ctx, id)
	}
	metrics.RecordCommand(kind, metrics.OutcomeRejected)
	metrics.RecordError("writer", "store")
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	w.logger.Error(ctx, "command failed", logger.String("kind", kind), logger.Error(err))
	return model.JobResult{Snapshot: w.snap, Err: err}
}

func (w *InMemoryWorker) event(ctx context.Context, ev *model.Event) model.JobResult {
	kind := string(ev.Kind)
	ctx, span := w.tracer.Start(ctx, "deliberation.snapshot_event", trace.WithAttributes(
		attribute.String("snapshot_event.kind", kind),
		attribute.String("snapshot_event.id", ev.ID),
	))
	defer span.End()

	if w.deduper.SeenAndRecord(ctx, ev.ID) {
		metrics.RecordDuplicate("event")
		metrics.RecordSnapshotEvent(kind, metrics.OutcomeDuplicate)
		return model.JobResult{Snapshot: w.snap, Duplicate: true}
	}
	next, err := snapshot.Apply(&w.snap, ev, w.rules...)
	if err != nil {
		w.deduper.Unrecord(ctx, ev.ID)
		metrics.RecordSnapshotEvent(kind, metrics.OutcomeRejected)
		span.SetStatus(codes.Error, err.Error())
		w.logger.Warn(ctx, "snapshot event rejected", logger.String("kind", kind), logger.Error(err))
		return model.JobResult{Snapshot: w.snap, Err: err}
	}
	metrics.RecordSnapshotEvent(kind, metrics.OutcomeAccepted)
	return w.commitSnapshot(ctx, next)
}

func (w *InMemoryWorker) replace(ctx context.Context, snap *model.Snapshot) model.JobResult {
	ctx, span := w.tracer.Start(ctx, "deliberation.snapshot_replace",
		trace.WithAttributes(attribute.Int("snapshot.teams", len(snap.Teams))))
	defer span.End()

	if err := snapshot.Validate(snap, w.rules...); err != nil {
		span.SetStatus(codes.Error, err.Error())
		w.logger.Warn(ctx, "snapshot replacement rejected", logger.Error(err))
		return model.JobResult{Snapshot: w.snap, Err: err}
	}
	next := snap.Clone()
	next.Version = w.snap.Version + 1
	w.logger.Info(ctx, "snapshot replaced", logger.Int("teams", len(next.Teams)), logger.Int("awards", len(next.Awards)))
	return w.commitSnapshot(ctx, next)
}

func (w *InMemoryWorker) commitSnapshot(ctx context.Context, next model.Snapshot) model.JobResult {
	w.snap = next
	metrics.UpdateSnapshot(next.Version, len(next.Teams))

	st, err := w.store.Load(ctx, w.eventID)
	if err != nil {
		metrics.RecordError("writer", "store")
		return model.JobResult{Snapshot: next, Err: fmt.Errorf("load state: %w", err)}
	}
	w.publish(st)
	return model.JobResult{State: st, Snapshot: next}
}

func (w *InMemoryWorker) publish(st model.State) {
	if w.publisher != nil {
		w.publisher.Publish(st, w.snap)
	}
}
