// Package sqlite provides a SQLite-backed deliberation state store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/deliberation/internal/adapters/repository"
	"github.com/okian/deliberation/internal/adapters/repository/sqlite/migrations"
	"github.com/okian/deliberation/internal/domain/model"
	"github.com/okian/deliberation/pkg/metrics"
	_ "modernc.org/sqlite"
)

// Store persists deliberation states in SQLite. Every save also appends
// the new version to a history table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ repository.Store     = (*Store)(nil)
	_ repository.Historian = (*Store)(nil)
)

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	if path == ":memory:" {
		dsn = path
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps :memory: databases shared and writes serialized.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load implements repository.Store.
func (s *Store) Load(ctx context.Context, eventID string) (model.State, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("load", float64(time.Since(start).Microseconds())/1000) }()

	if strings.TrimSpace(eventID) == "" {
		return model.State{}, repository.ErrMissingEventID
	}
	var (
		version int64
		body    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT version, body FROM deliberation_state WHERE event_id = ?`, eventID,
	).Scan(&version, &body)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return model.NewState(eventID), nil
	case err != nil:
		return model.State{}, fmt.Errorf("load state %s: %w", eventID, err)
	}

	var st model.State
	if err := json.Unmarshal([]byte(body), &st); err != nil {
		return model.State{}, fmt.Errorf("decode state %s: %w", eventID, err)
	}
	st.Version = version
	return st, nil
}

// Save implements repository.Store.
func (s *Store) Save(ctx context.Context, st model.State, expected int64) (model.State, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("save", float64(time.Since(start).Microseconds())/1000) }()

	if strings.TrimSpace(st.EventID) == "" {
		return model.State{}, repository.ErrMissingEventID
	}
	st.Version = expected + 1
	body, err := json.Marshal(st)
	if err != nil {
		return model.State{}, fmt.Errorf("encode state %s: %w", st.EventID, err)
	}
	now := s.now().UTC().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.State{}, fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var res sql.Result
	if expected == 0 {
		res, err = tx.ExecContext(ctx,
			`INSERT INTO deliberation_state (event_id, version, body, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(event_id) DO NOTHING`,
			st.EventID, st.Version, string(body), now)
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE deliberation_state SET version = ?, body = ?, updated_at = ?
			 WHERE event_id = ? AND version = ?`,
			st.Version, string(body), now, st.EventID, expected)
	}
	if err != nil {
		return model.State{}, fmt.Errorf("save state %s: %w", st.EventID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.State{}, fmt.Errorf("save state %s: %w", st.EventID, err)
	} else if n != 1 {
		metrics.RecordStoreConflict()
		return model.State{}, repository.ErrVersionConflict
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO deliberation_state_history (event_id, version, body, saved_at) VALUES (?, ?, ?, ?)`,
		st.EventID, st.Version, string(body), now); err != nil {
		return model.State{}, fmt.Errorf("append history %s: %w", st.EventID, err)
	}
	if err := tx.Commit(); err != nil {
		return model.State{}, fmt.Errorf("commit state %s: %w", st.EventID, err)
	}
	return st, nil
}

// History implements repository.Historian.
func (s *Store) History(ctx context.Context, eventID string) ([]model.State, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT version, body FROM deliberation_state_history WHERE event_id = ? ORDER BY version`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query history %s: %w", eventID, err)
	}
	defer rows.Close()

	var out []model.State
	for rows.Next() {
		var (
			version int64
			body    string
			st      model.State
		)
		if err := rows.Scan(&version, &body); err != nil {
			return nil, fmt.Errorf("scan history %s: %w", eventID, err)
		}
		if err := json.Unmarshal([]byte(body), &st); err != nil {
			return nil, fmt.Errorf("decode history %s@%d: %w", eventID, version, err)
		}
		st.Version = version
		out = append(out, st)
	}
	return out, rows.Err()
}
