package factory

import (
	"context"
	"fmt"
)

// Strategy selects what a run produces from a resolved attribute set.
type Strategy int

const (
	// StrategyInherit is only meaningful on associations: the associated
	// factory runs with the strategy of the enclosing run.
	StrategyInherit Strategy = iota
	StrategyAttributes
	StrategyBuild
	StrategyCreate
	StrategyStub
)

func (s Strategy) String() string {
	switch s {
	case StrategyInherit:
		return "inherit"
	case StrategyAttributes:
		return "attributes_for"
	case StrategyBuild:
		return "build"
	case StrategyCreate:
		return "create"
	case StrategyStub:
		return "stub"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy maps a strategy name to its Strategy. "attributes" is
// accepted for attributes_for and the empty string for inherit.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "inherit":
		return StrategyInherit, nil
	case "attributes_for", "attributes":
		return StrategyAttributes, nil
	case "build":
		return StrategyBuild, nil
	case "create":
		return StrategyCreate, nil
	case "stub":
		return StrategyStub, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// associationStrategy returns the strategy an association runs with inside
// a run using s, or false when the association is skipped. An association
// declared with the attributes strategy produces no object, so it is
// skipped like every association of an attributes run.
func (s Strategy) associationStrategy(declared Strategy) (Strategy, bool) {
	switch s {
	case StrategyAttributes:
		return 0, false
	case StrategyStub:
		return StrategyStub, true
	}
	switch declared {
	case StrategyInherit:
		return s, true
	case StrategyAttributes:
		return 0, false
	}
	return declared, true
}

// materialize turns a resolved attribute set into the strategy's result.
func (r *Registry) materialize(ctx context.Context, s Strategy, typ TargetType, values *Values) (any, error) {
	switch s {
	case StrategyAttributes:
		return values, nil
	case StrategyStub:
		return newStub(r.nextStubID(), typ, values), nil
	case StrategyBuild, StrategyCreate:
		store := r.objectStore()
		if store == nil {
			return nil, ErrNoObjectStore
		}
		instance, err := store.Instantiate(string(typ), values.Map())
		if err != nil {
			return nil, fmt.Errorf("instantiate %s: %w", typ, err)
		}
		if s == StrategyBuild {
			return instance, nil
		}
		persisted, err := store.Persist(ctx, instance)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		return persisted, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, s)
	}
}

// As asserts the result of a strategy call to T.
//
//	user, err := factory.As[*model.User](reg.Build(ctx, "user", nil))
func As[T any](v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("factory result is %T, not %T", v, zero)
	}
	return typed, nil
}
