package factory

import (
	"context"
	"sync/atomic"
)

var defaultRegistry atomic.Pointer[Registry]

func init() {
	defaultRegistry.Store(NewRegistry())
}

// Default returns the process-wide registry used by the package functions.
func Default() *Registry {
	return defaultRegistry.Load()
}

// SetDefault swaps the process-wide registry and returns the previous one.
func SetDefault(r *Registry) *Registry {
	return defaultRegistry.Swap(r)
}

// Define registers a factory on the default registry.
func Define(name string, opts Options, block func(d *Definer)) error {
	return Default().Define(name, opts, block)
}

// DefineTrait registers a trait on the default registry.
func DefineTrait(name string, block func(d *Definer)) error {
	return Default().DefineTrait(name, block)
}

// DefineSequence registers a sequence on the default registry.
func DefineSequence(name string, format Formatter, opts ...SequenceOption) error {
	return Default().DefineSequence(name, format, opts...)
}

// Run runs strategy s on the default registry. ref is a Name or the
// TargetType the factory produces.
func Run(ctx context.Context, s Strategy, ref Ref, overrides Attrs, traits ...string) (any, error) {
	return Default().Run(ctx, s, ref, overrides, traits...)
}

// AttributesFor runs the attributes strategy on the default registry.
func AttributesFor(ctx context.Context, name string, overrides Attrs, traits ...string) (*Values, error) {
	return Default().AttributesFor(ctx, name, overrides, traits...)
}

// Build runs the build strategy on the default registry.
func Build(ctx context.Context, name string, overrides Attrs, traits ...string) (any, error) {
	return Default().Build(ctx, name, overrides, traits...)
}

// Create runs the create strategy on the default registry.
func Create(ctx context.Context, name string, overrides Attrs, traits ...string) (any, error) {
	return Default().Create(ctx, name, overrides, traits...)
}

// BuildStubbed runs the stub strategy on the default registry.
func BuildStubbed(ctx context.Context, name string, overrides Attrs, traits ...string) (*Stub, error) {
	return Default().Stub(ctx, name, overrides, traits...)
}

// Next draws from a sequence of the default registry.
func Next(name string) (any, error) {
	return Default().Next(name)
}

// ResetAll clears the default registry.
func ResetAll() {
	Default().Reset()
}
