// Package memory provides an in-process object store for factory runs.
// Persisted instances live in a go-cache keyed by type and id and never
// expire; Reset empties it between tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/forgo/factory/pkg/store"
)

// ErrNotFound is returned by Find for unknown ids.
var ErrNotFound = errors.New("record not found")

// Store instantiates registered types and keeps persisted instances in memory.
type Store struct {
	*store.Types
	cache  *gocache.Cache
	logger *slog.Logger
}

// New creates an empty store. A nil types table starts a fresh one and a
// nil logger uses slog.Default().
func New(types *store.Types, logger *slog.Logger) *Store {
	if types == nil {
		types = store.NewTypes()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		Types:  types,
		cache:  gocache.New(gocache.NoExpiration, 0),
		logger: logger,
	}
}

func key(typeName, id string) string {
	return typeName + ":" + id
}

// Persist assigns an id to a new instance and stores it. Saving an
// instance that already has an id overwrites the stored copy.
func (s *Store) Persist(ctx context.Context, instance any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
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
	s.cache.Set(key(typeName, id), instance, gocache.NoExpiration)
	s.logger.Debug("record persisted",
		slog.String("type", typeName),
		slog.String("id", id),
	)
	return instance, nil
}

// IsNew reports whether instance has not been persisted by this store.
func (s *Store) IsNew(instance any) bool {
	id, ok := store.IDOf(instance)
	if !ok || id == "" {
		return true
	}
	_, found := s.cache.Get(key(s.TypeName(instance), id))
	return !found
}

// Find returns a persisted instance.
func (s *Store) Find(typeName, id string) (any, error) {
	v, found := s.cache.Get(key(typeName, id))
	if !found {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, typeName, id)
	}
	return v, nil
}

// Count returns the number of persisted instances of typeName.
func (s *Store) Count(_ context.Context, typeName string) (int, error) {
	prefix := typeName + ":"
	n := 0
	for k := range s.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n, nil
}

// Reset removes every persisted instance.
func (s *Store) Reset(_ context.Context) error {
	s.cache.Flush()
	return nil
}

// Close releases the store. The in-memory table needs no teardown.
func (s *Store) Close() error {
	return nil
}
