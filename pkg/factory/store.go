package factory

import "context"

// ObjectStore constructs and persists instances for the build and create
// strategies. Implementations live in pkg/store.
type ObjectStore interface {
	// Instantiate constructs an in-memory instance of typeName with the given
	// field values. It must not perform I/O.
	Instantiate(typeName string, attrs map[string]any) (any, error)

	// Persist writes the instance to the backing store and returns it in its
	// persisted state, with any generated identity assigned.
	Persist(ctx context.Context, instance any) (any, error)

	// IsNew reports whether the instance has not been persisted.
	IsNew(instance any) bool
}
