// Package sqlite persists factory-created instances into a SQLite file
// using the pure-Go modernc driver. Every instance becomes one row of the
// records table with its fields stored as JSON.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/forgo/factory/pkg/store"
)

// ErrNotFound is returned by Find for unknown ids.
var ErrNotFound = errors.New("record not found")

// Store instantiates registered types and writes persisted instances to SQLite.
type Store struct {
	*store.Types
	db     *sql.DB
	mu     sync.Mutex
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and prepares the schema.
func Open(ctx context.Context, path string, types *store.Types, logger *slog.Logger) (*Store, error) {
	if types == nil {
		types = store.NewTypes()
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{Types: types, db: db, logger: logger}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		attributes TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_records_type ON records(type);
	`
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Persist writes instance, assigning an id to new instances.
func (s *Store) Persist(ctx context.Context, instance any) (any, error) {
	id, ok := store.IDOf(instance)
	if !ok {
		return nil, fmt.Errorf("%w: %T", store.ErrNoIdentity, instance)
	}
	if id == "" {
		id = uuid.NewString()
		if err := store.SetID(instance, id); err != nil {
			return nil, err
		}
	}

	typeName := s.TypeName(instance)
	attrs, err := json.Marshal(store.Fields(instance))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", typeName, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, type, attributes, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET attributes = excluded.attributes`,
		id, typeName, string(attrs), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", typeName, err)
	}

	s.logger.Debug("record persisted",
		slog.String("type", typeName),
		slog.String("id", id),
	)
	return instance, nil
}

// IsNew reports whether instance has no row yet.
func (s *Store) IsNew(instance any) bool {
	id, ok := store.IDOf(instance)
	if !ok || id == "" {
		return true
	}
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM records WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		s.logger.Warn("record lookup failed", slog.String("id", id), slog.String("error", err.Error()))
		return true
	}
	return !exists
}

// Find loads a persisted row as a Record.
func (s *Store) Find(ctx context.Context, typeName, id string) (*store.Record, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT attributes FROM records WHERE type = ? AND id = ?", typeName, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, typeName, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", typeName, id, err)
	}

	values := make(map[string]any)
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", typeName, id, err)
	}
	return &store.Record{Type: typeName, ID: id, Values: values}, nil
}

// Count returns the number of rows of typeName.
func (s *Store) Count(ctx context.Context, typeName string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE type = ?", typeName).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", typeName, err)
	}
	return n, nil
}

// Reset deletes every row.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("reset records: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
