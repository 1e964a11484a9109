package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const selectEvents = "SELECT id, build_id, event_type, timestamp, payload, metadata FROM events "

// SQLiteStore implements Store using SQLite. Timestamps are stored as Unix
// milliseconds.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the ledger at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDatabaseOpenFailed, err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseOpenFailed, err)
	}
	// every pooled connection to :memory: would get its own empty database
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrInitializeSchemaFailed, err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		payload BLOB NOT NULL,
		metadata TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_build_id ON events(build_id);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_event_type ON events(event_type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a new event to the store, stamped with the current time.
func (s *SQLiteStore) Append(ctx context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var metadataJSON []byte
	if metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("%w: marshal metadata: %w", ErrEventAppendFailed, err)
		}
	}
	if payload == nil {
		payload = []byte("{}")
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (build_id, event_type, timestamp, payload, metadata) VALUES (?, ?, ?, ?, ?)",
		buildID, eventType, s.now().UnixMilli(), payload, metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEventAppendFailed, err)
	}
	return nil
}

// GetByBuildID retrieves all events for a specific build.
func (s *SQLiteStore) GetByBuildID(ctx context.Context, buildID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		selectEvents+"WHERE build_id = ? ORDER BY id",
		buildID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEventQueryFailed, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetRange retrieves events within a time range (inclusive).
func (s *SQLiteStore) GetRange(ctx context.Context, start, end time.Time) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		selectEvents+"WHERE timestamp >= ? AND timestamp <= ? ORDER BY id",
		start.UnixMilli(), end.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEventQueryFailed, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// LatestBuildID returns the build that most recently appended eventType.
func (s *SQLiteStore) LatestBuildID(ctx context.Context, eventType string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buildID string
	err := s.db.QueryRowContext(ctx,
		"SELECT build_id FROM events WHERE event_type = ? ORDER BY id DESC LIMIT 1",
		eventType,
	).Scan(&buildID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEventQueryFailed, err)
	}
	return buildID, nil
}

// Prune removes builds that started before the cutoff, together with all of
// their events, so a build is never left half recorded.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEventPruneFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	const stale = "SELECT build_id FROM events GROUP BY build_id HAVING MIN(timestamp) < ?"
	var builds int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM ("+stale+")", before.UnixMilli()).Scan(&builds); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEventPruneFailed, err)
	}
	if builds == 0 {
		return 0, nil
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM events WHERE build_id IN ("+stale+")", before.UnixMilli()); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEventPruneFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEventPruneFailed, err)
	}
	return builds, nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e BaseEvent
		var timestampMilli int64
		var metadataJSON []byte

		if err := rows.Scan(&e.EventID, &e.EventBuildID, &e.EventType, &timestampMilli, &e.EventPayload, &metadataJSON); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrEventQueryFailed, err)
		}
		e.EventTimestamp = time.UnixMilli(timestampMilli)

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.EventMetadata); err != nil {
				return nil, fmt.Errorf("%w: metadata: %w", ErrUnmarshalPayloadFailed, err)
			}
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEventQueryFailed, err)
	}
	return events, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
