package factory

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Ref addresses a factory either by name (Name) or by the type it produces
// (TargetType).
type Ref interface {
	lookup(r *Registry) (*Definition, error)
	String() string
}

// Name addresses a factory by its registry name.
type Name string

func (n Name) lookup(r *Registry) (*Definition, error) {
	return r.Lookup(string(n))
}

func (n Name) String() string {
	return string(n)
}

func (t TargetType) lookup(r *Registry) (*Definition, error) {
	return r.LookupByType(t)
}

func (t TargetType) String() string {
	return string(t)
}

// Run resolves the referenced factory and materializes it with strategy s.
// A failure in any phase aborts the run; partial results are discarded.
func (r *Registry) Run(ctx context.Context, s Strategy, ref Ref, overrides Attrs, traits ...string) (result any, err error) {
	ctx, span := r.tracer.Start(ctx, "factory."+s.String(), trace.WithAttributes(
		attribute.String("factory.ref", ref.String()),
		attribute.StringSlice("factory.traits", traits),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if s == StrategyInherit {
		return nil, fmt.Errorf("%w: %s cannot start a run", ErrUnknownStrategy, s)
	}

	def, err := ref.lookup(r)
	if err != nil {
		return nil, err
	}
	attrs, typ, err := r.effective(def, traits)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("factory.name", def.name),
		attribute.String("factory.type", string(typ)),
	)

	values, err := r.resolve(ctx, s, def.name, attrs, overrides)
	if err != nil {
		return nil, err
	}

	result, err = r.materialize(ctx, s, typ, values)
	if err != nil {
		return nil, fmt.Errorf("factory %q: %w", def.name, err)
	}

	r.logger.Debug("factory run",
		slog.String("factory", def.name),
		slog.String("strategy", s.String()),
		slog.Int("attributes", values.Len()),
	)
	return result, nil
}

// AttributesFor returns the resolved attributes of the named factory.
// Associations are skipped. AttributesFor, Build, Create and Stub address
// factories by name; Run also accepts a TargetType.
func (r *Registry) AttributesFor(ctx context.Context, name string, overrides Attrs, traits ...string) (*Values, error) {
	v, err := r.Run(ctx, StrategyAttributes, Name(name), overrides, traits...)
	if err != nil {
		return nil, err
	}
	return v.(*Values), nil
}

// Build returns an unsaved instance of the named factory.
func (r *Registry) Build(ctx context.Context, name string, overrides Attrs, traits ...string) (any, error) {
	return r.Run(ctx, StrategyBuild, Name(name), overrides, traits...)
}

// Create returns a persisted instance of the named factory.
func (r *Registry) Create(ctx context.Context, name string, overrides Attrs, traits ...string) (any, error) {
	return r.Run(ctx, StrategyCreate, Name(name), overrides, traits...)
}

// Stub returns a read-only stand-in for the named factory.
func (r *Registry) Stub(ctx context.Context, name string, overrides Attrs, traits ...string) (*Stub, error) {
	v, err := r.Run(ctx, StrategyStub, Name(name), overrides, traits...)
	if err != nil {
		return nil, err
	}
	return v.(*Stub), nil
}
