// Package repository defines the authoritative deliberation state store.
package repository

import (
	"context"

	"github.com/okian/deliberation/internal/domain/model"
)

// Store persists the authoritative deliberation state of each event.
type Store interface {
	// Load returns the latest state of the event, or a fresh state at
	// version 0 if nothing was saved yet.
	Load(ctx context.Context, eventID string) (model.State, error)

	// Save stores st if the stored version still equals expected and
	// returns it with the bumped version. Otherwise it returns
	// ErrVersionConflict and stores nothing.
	Save(ctx context.Context, st model.State, expected int64) (model.State, error)

	Close() error
}

// Historian is implemented by stores that keep every saved version.
type Historian interface {
	// History returns every saved version of the event, oldest first.
	History(ctx context.Context, eventID string) ([]model.State, error)
}
