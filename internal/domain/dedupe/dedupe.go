// Package dedupe tracks command and event ids so a redelivered request is
// applied at most once.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it
	// if not. The empty id is never recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a rejected request can be retried under the
	// same id.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// window keeps the most recent ids. With a positive limit the oldest id is
// evicted once the ring wraps; otherwise ids are kept forever.
type window struct {
	mu    sync.Mutex
	limit int
	slots []string
	next  int
	seen  map[string]int
}

// NewInMemoryDeduper creates a Deduper that keeps ids in memory.
func NewInMemoryDeduper(opts ...Option) Deduper {
	w := &window{limit: 10000}
	for _, opt := range opts {
		opt(w)
	}
	w.seen = make(map[string]int)
	if w.limit > 0 {
		w.slots = make([]string, w.limit)
	}
	return w
}

func (w *window) SeenAndRecord(_ context.Context, id string) bool {
	if id == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.seen[id]; ok {
		return true
	}
	if w.limit <= 0 {
		w.seen[id] = -1
		return false
	}

	if old := w.slots[w.next]; old != "" && w.seen[old] == w.next {
		delete(w.seen, old)
	}
	w.slots[w.next] = id
	w.seen[id] = w.next
	w.next = (w.next + 1) % w.limit
	return false
}

func (w *window) Unrecord(_ context.Context, id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	slot, ok := w.seen[id]
	if !ok {
		return
	}
	delete(w.seen, id)
	if slot >= 0 {
		w.slots[slot] = ""
	}
}

func (w *window) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return int64(len(w.seen))
}
