// Package surreal persists factory-created instances as SurrealDB records.
// Each type name maps to a table; instance ids hold the full "table:key"
// record id.
package surreal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/forgo/factory/internal/database"
	"github.com/forgo/factory/pkg/store"
)

// Store instantiates registered types and writes persisted instances to SurrealDB.
type Store struct {
	*store.Types
	db     database.Database
	logger *slog.Logger

	mu     sync.Mutex
	tables map[string]bool
}

// New wraps an already connected database.
func New(db database.Database, types *store.Types, logger *slog.Logger) *Store {
	if types == nil {
		types = store.NewTypes()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{Types: types, db: db, logger: logger, tables: make(map[string]bool)}
}

// Dial connects to SurrealDB and returns a store over the connection.
func Dial(ctx context.Context, cfg database.Config, types *store.Types, logger *slog.Logger) (*Store, error) {
	db := database.NewSurrealDB(cfg, logger)
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}
	return New(db, types, logger), nil
}

// Persist creates a record for a new instance, or replaces the content of
// an existing one.
func (s *Store) Persist(ctx context.Context, instance any) (any, error) {
	id, ok := store.IDOf(instance)
	if !ok {
		return nil, fmt.Errorf("%w: %T", store.ErrNoIdentity, instance)
	}
	typeName := s.TypeName(instance)
	content := store.Fields(instance)

	if id != "" {
		table, key, err := database.SplitRecordID(id)
		if err != nil {
			return nil, err
		}
		err = s.db.Execute(ctx, "UPSERT type::thing($table, $key) CONTENT $content", map[string]interface{}{
			"table":   table,
			"key":     key,
			"content": content,
		})
		if err != nil {
			return nil, fmt.Errorf("upsert %s: %w", id, err)
		}
		s.track(table)
		return instance, nil
	}

	record, err := s.db.QueryOne(ctx, "CREATE type::table($table) CONTENT $content", map[string]interface{}{
		"table":   typeName,
		"content": content,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", typeName, err)
	}
	id = database.RecordID(record)
	if id == "" {
		return nil, fmt.Errorf("create %s: %w: no record id in result", typeName, database.ErrQuery)
	}
	if err := store.SetID(instance, id); err != nil {
		return nil, err
	}
	s.track(typeName)

	s.logger.Debug("record persisted",
		slog.String("type", typeName),
		slog.String("id", id),
	)
	return instance, nil
}

func (s *Store) track(table string) {
	s.mu.Lock()
	s.tables[table] = true
	s.mu.Unlock()
}

// IsNew reports whether instance has no record yet.
func (s *Store) IsNew(instance any) bool {
	id, ok := store.IDOf(instance)
	if !ok || id == "" {
		return true
	}
	_, err := s.Find(context.Background(), id)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		s.logger.Warn("record lookup failed", slog.String("id", id), slog.String("error", err.Error()))
	}
	return err != nil
}

// Find loads a record by its "table:key" id.
func (s *Store) Find(ctx context.Context, id string) (*store.Record, error) {
	table, key, err := database.SplitRecordID(id)
	if err != nil {
		return nil, err
	}
	result, err := s.db.QueryOne(ctx, "SELECT * FROM type::thing($table, $key)", map[string]interface{}{
		"table": table,
		"key":   key,
	})
	if err != nil {
		return nil, err
	}
	fields, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: unexpected record %T", database.ErrQuery, result)
	}
	values := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != "id" {
			values[k] = v
		}
	}
	return &store.Record{Type: table, ID: id, Values: values}, nil
}

// Count returns the number of records in typeName's table.
func (s *Store) Count(ctx context.Context, typeName string) (int, error) {
	results, err := s.db.Query(ctx, "SELECT count() AS count FROM type::table($table) GROUP ALL", map[string]interface{}{
		"table": typeName,
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", typeName, err)
	}
	return database.Count(results), nil
}

// Reset deletes every record in the tables this store has written to.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	s.mu.Unlock()
	sort.Strings(names)

	for _, name := range names {
		err := s.db.Execute(ctx, "DELETE type::table($table)", map[string]interface{}{"table": name})
		if err != nil {
			return fmt.Errorf("reset %s: %w", name, err)
		}
	}
	return nil
}

// DB returns the underlying connection.
func (s *Store) DB() database.Database {
	return s.db
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}
