// Package testdb provides isolated object stores for tests.
//
// The backend is chosen by FACTORY_STORE_DRIVER: memory (default), sqlite
// (a fresh file under t.TempDir()) or surreal (a unique namespace on the
// configured SurrealDB, removed on Close).
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    defer tdb.Close()
//
//	    reg := factory.NewRegistry(factory.WithStore(tdb.Store))
//	}
package testdb

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/forgo/factory/internal/config"
	"github.com/forgo/factory/internal/database"
	"github.com/forgo/factory/pkg/factory"
	"github.com/forgo/factory/pkg/store"
	"github.com/forgo/factory/pkg/store/memory"
	"github.com/forgo/factory/pkg/store/sqlite"
	"github.com/forgo/factory/pkg/store/surreal"
)

// Store is an object store the tests can count, empty and close.
type Store interface {
	factory.ObjectStore
	Count(ctx context.Context, typeName string) (int, error)
	Reset(ctx context.Context) error
	Close() error
}

// TestDB provides an isolated store for one test.
type TestDB struct {
	Store     Store
	Driver    string
	Namespace string
	t         testing.TB
}

var (
	// counterMu protects the namespace counter
	counterMu sync.Mutex
	counter   int64
)

// uniqueNamespace generates a unique namespace for test isolation
func uniqueNamespace() string {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter)
}

// Open builds the store selected by cfg.
func Open(ctx context.Context, cfg *config.Config, types *store.Types, logger *slog.Logger) (Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return memory.New(types, logger), nil
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.Store.SQLitePath, types, logger)
	case config.DriverSurreal:
		return surreal.Dial(ctx, database.Config{
			Host:      cfg.Surreal.Host,
			Port:      cfg.Surreal.Port,
			User:      cfg.Surreal.User,
			Password:  cfg.Surreal.Password,
			Namespace: cfg.Surreal.Namespace,
			Database:  cfg.Surreal.Database,
		}, types, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// New creates an isolated store for t using the configured driver and the
// given type table. A nil types table starts empty.
func New(t testing.TB, types *store.Types) *TestDB {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("testdb: failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("testdb: invalid config: %v", err)
	}
	return NewWithConfig(t, cfg, types)
}

// NewWithConfig is New with an explicit configuration.
func NewWithConfig(t testing.TB, cfg *config.Config, types *store.Types) *TestDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	local := *cfg
	tdb := &TestDB{Driver: local.Store.Driver, t: t}
	switch local.Store.Driver {
	case config.DriverSQLite:
		local.Store.SQLitePath = filepath.Join(t.TempDir(), "factory.db")
	case config.DriverSurreal:
		tdb.Namespace = uniqueNamespace()
		local.Surreal.Namespace = tdb.Namespace
	}

	s, err := Open(ctx, &local, types, local.Logger(testWriter{t}))
	if err != nil {
		t.Fatalf("testdb: failed to open %s store: %v", local.Store.Driver, err)
	}
	tdb.Store = s
	return tdb
}

// Close releases the store. SurrealDB namespaces are removed first.
func (tdb *TestDB) Close() {
	if tdb.Store == nil {
		return
	}

	if s, ok := tdb.Store.(*surreal.Store); ok && tdb.Namespace != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		query := fmt.Sprintf("REMOVE NAMESPACE %s", tdb.Namespace)
		_ = s.DB().Execute(ctx, query, nil) // Ignore errors on cleanup
	}

	_ = tdb.Store.Close()
	tdb.Store = nil
}

// Reset empties the store between subtests.
func (tdb *TestDB) Reset(t testing.TB) {
	t.Helper()
	if err := tdb.Store.Reset(tdb.Ctx()); err != nil {
		t.Fatalf("testdb: failed to reset: %v", err)
	}
}

// Ctx returns a context with a reasonable timeout for test operations.
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// MustCount returns the number of persisted records of typeName, failing
// the test on error.
func (tdb *TestDB) MustCount(typeName string) int {
	tdb.t.Helper()
	n, err := tdb.Store.Count(tdb.Ctx(), typeName)
	if err != nil {
		tdb.t.Fatalf("testdb: count %s failed: %v", typeName, err)
	}
	return n
}

// testWriter routes store logs through t.Log.
type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
