package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/pkg/metrics"
)

// MemoryStore keeps states in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	states  map[string]model.State
	history map[string][]model.State
	closed  bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{states: make(map[string]model.State), history: make(map[string][]model.State)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context, eventID string) (model.State, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("load", float64(time.Since(start).Microseconds())/1000) }()

	if err := ctx.Err(); err != nil {
		return model.State{}, err
	}
	if strings.TrimSpace(eventID) == "" {
		return model.State{}, ErrMissingEventID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.State{}, ErrClosed
	}
	st, ok := s.states[eventID]
	if !ok {
		return model.NewState(eventID), nil
	}
	return st.Clone(), nil
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, st model.State, expected int64) (model.State, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("save", float64(time.Since(start).Microseconds())/1000) }()

	if err := ctx.Err(); err != nil {
		return model.State{}, err
	}
	if strings.TrimSpace(st.EventID) == "" {
		return model.State{}, ErrMissingEventID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.State{}, ErrClosed
	}
	if cur := s.states[st.EventID]; cur.Version != expected {
		metrics.RecordStoreConflict()
		return model.State{}, ErrVersionConflict
	}
	saved := st.Clone()
	saved.Version = expected + 1
	s.states[st.EventID] = saved
	s.history[st.EventID] = append(s.history[st.EventID], saved.Clone())
	return saved.Clone(), nil
}

// History implements Historian.
func (s *MemoryStore) History(ctx context.Context, eventID string) ([]model.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]model.State, 0, len(s.history[eventID]))
	for _, st := range s.history[eventID] {
		out = append(out, st.Clone())
	}
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
