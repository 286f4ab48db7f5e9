// Package service owns the authoritative deliberation state of one event
// and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/okian/deliberation/internal/adapters/mq/queue"
	"github.com/okian/deliberation/internal/adapters/mq/worker"
	"github.com/okian/deliberation/internal/adapters/repository"
	"github.com/okian/deliberation/internal/domain/dedupe"
	"github.com/okian/deliberation/internal/domain/deliberation"
	"github.com/okian/deliberation/internal/domain/eligibility"
	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/internal/domain/scoring"
	"github.com/okian/deliberation/internal/domain/snapshot"
	"github.com/okian/deliberation/internal/season"
	"github.com/okian/deliberation/pkg/logger"
	"github.com/okian/deliberation/pkg/metrics"
)

// view is one committed state and the snapshot it was decided against.
type view struct {
	state model.State
	snap  model.Snapshot
}

// Service serializes every command and snapshot event through a single
// writer and answers queries from the last committed view.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	deduper   dedupe.Deduper
	jobs      *queue.InMemoryQueue
	writer    *worker.InMemoryWorker
	computer  *scoring.Computer
	machine   *deliberation.Machine
	evaluator *eligibility.Evaluator

	// Configuration
	eventID            string
	queueSize          int
	dedupeSize         int
	season             *season.Season
	initial            model.Snapshot
	picklistMax        int
	picklistMultiplier float64
	championsPool      int
	exemptAwards       []string
	autoAssigned       string
	advancementPercent float64
	now                func() time.Time

	// State
	started bool
	current atomic.Pointer[view]
	derived atomic.Pointer[Derived]
	builds  singleflight.Group

	// Logging
	logger logger.Logger
}

// New constructs a Service. Queries work right away against the initial
// snapshot; commands need Start.
func New(opts ...Option) *Service {
	s := &Service{
		eventID:    "default",
		queueSize:  1024,
		dedupeSize: 10_000,
		season:     season.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}

	s.computer = scoring.NewComputer(scoring.WithSeason(s.season))
	s.machine = deliberation.NewMachine(
		deliberation.WithPicklistPolicy(s.picklistMax, s.picklistMultiplier),
		deliberation.WithExemptAwards(s.exemptAwards...),
		deliberation.WithAutoAssignedAward(s.autoAssigned),
		deliberation.WithAdvancementPercent(s.advancementPercent),
		deliberation.WithScorer(s.computer),
	)
	s.evaluator = eligibility.New(eligibility.WithChampionsPool(s.championsPool))
	s.current.Store(&view{state: model.NewState(s.eventID), snap: s.initial.Clone()})
	return s
}

// Start loads the authoritative state and starts the writer.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting deliberation service...", logger.String("event", s.eventID))

	st, err := s.store.Load(ctx, s.eventID)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	snap := s.current.Load().snap
	s.Publish(st, snap)
	metrics.UpdateStateVersion(st.Version)
	metrics.UpdateSnapshot(snap.Version, len(snap.Teams))

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.writer = worker.NewInMemoryWorker(s.eventID, s.jobs, s.store, s.machine,
		worker.WithPublisher(s),
		worker.WithDeduper(s.deduper),
		worker.WithSnapshot(snap),
		worker.WithClock(s.now),
		worker.WithSnapshotRules(snapshot.WithGPValues(s.season.GPValues...)),
	)
	go s.writer.Run(ctx)

	s.started = true
	s.logger.Info(ctx, "deliberation service started",
		logger.Int64("stateVersion", st.Version),
		logger.Int("teams", len(snap.Teams)),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop stops intake, lets the writer finish queued jobs and closes the
// store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	s.logger.Info(ctx, "stopping deliberation service...")

	_ = s.jobs.Close()
	var firstErr error
	if err := s.writer.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close store: %w", err)
	}

	s.logger.Info(ctx, "deliberation service stopped")
	return firstErr
}

// Publish makes a committed state and snapshot visible to queries.
func (s *Service) Publish(st model.State, snap model.Snapshot) {
	s.current.Store(&view{state: st, snap: snap})
}

// Result is the outcome of one command or snapshot job.
type Result struct {
	State     model.State    `json:"state"`
	Snapshot  model.Snapshot `json:"-"`
	Duplicate bool           `json:"duplicate"`
}

// submit hands a job to the writer and waits for its reply.
func (s *Service) submit(ctx context.Context, job model.Job) (Result, error) {
	s.mu.RLock()
	started, jobs := s.started, s.jobs
	s.mu.RUnlock()
	if !started {
		return Result{}, ErrNotStarted
	}

	job.Reply = make(chan model.JobResult, 1)
	if err := jobs.Enqueue(ctx, job); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	select {
	case res := <-job.Reply:
		out := Result{State: res.State, Snapshot: res.Snapshot, Duplicate: res.Duplicate}
		if res.Err != nil {
			return out, res.Err
		}
		return out, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Execute runs one command through the writer. A command without an id
// gets a fresh one, so it is never treated as a duplicate.
func (s *Service) Execute(ctx context.Context, cmd model.Command) (Result, error) {
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}
	return s.submit(ctx, model.Job{Command: &cmd})
}

// ApplyEvent applies one incremental upstream event to the snapshot.
func (s *Service) ApplyEvent(ctx context.Context, ev model.Event) (Result, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	return s.submit(ctx, model.Job{Event: &ev})
}

// ReplaceSnapshot swaps the whole upstream snapshot.
func (s *Service) ReplaceSnapshot(ctx context.Context, snap model.Snapshot) (Result, error) {
	return s.submit(ctx, model.Job{Snapshot: &snap})
}

// State returns the last committed deliberation state.
func (s *Service) State(_ context.Context) model.State {
	v := s.current.Load()
	return v.state.Clone()
}

// Snapshot returns the upstream snapshot the last commit was decided on.
func (s *Service) Snapshot(_ context.Context) model.Snapshot {
	v := s.current.Load()
	return v.snap.Clone()
}

// Capacity is the picklist capacity for the current snapshot.
func (s *Service) Capacity(_ context.Context) int {
	v := s.current.Load()
	return s.machine.Capacity(&v.snap)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.current.Load()
	stats := map[string]interface{}{
		"started":         s.started,
		"eventId":         s.eventID,
		"queueSize":       s.queueSize,
		"dedupeSize":      s.dedupeSize,
		"stateVersion":    v.state.Version,
		"snapshotVersion": v.snap.Version,
		"teams":           len(v.snap.Teams),
		"capacity":        s.machine.Capacity(&v.snap),
		"finalStage":      string(v.state.Final.Stage),
		"finalStatus":     string(v.state.Final.Status),
	}

	if s.started {
		stats["queueLength"] = s.jobs.Len()
		stats["dedupeEntries"] = s.deduper.Size()
	}

	return stats
}
