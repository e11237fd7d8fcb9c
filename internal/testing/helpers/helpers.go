// Package helpers provides per-test registries and fail-fast wrappers
// around the strategy calls.
package helpers

import (
	"context"
	"io"
	"testing"

	"github.com/forgo/factory/internal/config"
	"github.com/forgo/factory/pkg/factory"
)

// ============================================================================
// Registry Helpers
// ============================================================================

// NewRegistry returns a registry private to t, backed by store (which may
// be nil for attributes and stub runs). Sequence and stub counters and the
// logger come from the environment configuration. The registry is reset
// when the test finishes.
func NewRegistry(t testing.TB, store factory.ObjectStore, opts ...factory.Option) *factory.Registry {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("helpers: failed to load config: %v", err)
	}

	base := []factory.Option{
		factory.WithLogger(cfg.Logger(logWriter{t})),
		factory.WithSequenceStart(cfg.Sequence.Start),
		factory.WithStubIDStart(cfg.Stub.IDStart),
	}
	if store != nil {
		base = append(base, factory.WithStore(store))
	}

	reg := factory.NewRegistry(append(base, opts...)...)
	t.Cleanup(reg.Reset)
	return reg
}

// UseDefault installs reg as the process-wide default registry for the
// duration of t. Tests using it must not run in parallel.
func UseDefault(t testing.TB, reg *factory.Registry) {
	t.Helper()
	prev := factory.SetDefault(reg)
	t.Cleanup(func() {
		factory.SetDefault(prev)
	})
}

type logWriter struct {
	t testing.TB
}

func (w logWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

var _ io.Writer = logWriter{}

// ============================================================================
// Strategy Helpers
// ============================================================================

// MustAttributes runs attributes_for, failing the test on error.
func MustAttributes(t testing.TB, reg *factory.Registry, name string, overrides factory.Attrs, traits ...string) *factory.Values {
	t.Helper()
	v, err := reg.AttributesFor(context.Background(), name, overrides, traits...)
	if err != nil {
		t.Fatalf("helpers: attributes_for %s failed: %v", name, err)
	}
	return v
}

// MustBuild runs build and asserts the result to T, failing the test on error.
func MustBuild[T any](t testing.TB, reg *factory.Registry, name string, overrides factory.Attrs, traits ...string) T {
	t.Helper()
	v, err := factory.As[T](reg.Build(context.Background(), name, overrides, traits...))
	if err != nil {
		t.Fatalf("helpers: build %s failed: %v", name, err)
	}
	return v
}

// MustCreate runs create and asserts the result to T, failing the test on error.
func MustCreate[T any](t testing.TB, reg *factory.Registry, name string, overrides factory.Attrs, traits ...string) T {
	t.Helper()
	v, err := factory.As[T](reg.Create(context.Background(), name, overrides, traits...))
	if err != nil {
		t.Fatalf("helpers: create %s failed: %v", name, err)
	}
	return v
}

// MustStub runs the stub strategy, failing the test on error.
func MustStub(t testing.TB, reg *factory.Registry, name string, overrides factory.Attrs, traits ...string) *factory.Stub {
	t.Helper()
	s, err := reg.Stub(context.Background(), name, overrides, traits...)
	if err != nil {
		t.Fatalf("helpers: stub %s failed: %v", name, err)
	}
	return s
}
