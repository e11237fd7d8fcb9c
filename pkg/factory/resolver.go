package factory

import (
	"context"
	"fmt"
	"sort"
)

// resolve evaluates the merged attributes of one run in order. Each value is
// recorded as soon as it is computed, so later lazy rules can read it.
// Overrides replace rules outright; override names matching no attribute
// are appended afterwards in sorted order.
func (r *Registry) resolve(ctx context.Context, s Strategy, factoryName string, attrs []*Attribute, overrides Attrs) (*Values, error) {
	values := newValues(len(attrs) + len(overrides))
	defined := make(map[string]bool, len(attrs))

	for _, attr := range attrs {
		defined[attr.Name] = true

		if attr.Kind == KindAssociation {
			if _, ok := overrides[attr.Association.foreignKey(attr.Name)]; ok {
				continue
			}
		}

		if v, ok := overrides[attr.Name]; ok {
			values.set(attr.Name, v)
			continue
		}

		switch attr.Kind {
		case KindStatic:
			values.set(attr.Name, attr.Value)

		case KindSequence:
			values.set(attr.Name, r.NextSequenceValue(attr.Sequence, attr.Format))

		case KindLazy:
			e := &Evaluator{
				registry:  r,
				factory:   factoryName,
				attribute: attr.Name,
				values:    values,
			}
			v, err := attr.Lazy(e)
			if e.err != nil {
				return nil, e.err
			}
			if err != nil {
				return nil, fmt.Errorf("factory %q attribute %q: %w", factoryName, attr.Name, err)
			}
			values.set(attr.Name, v)

		case KindAssociation:
			strategy, ok := s.associationStrategy(attr.Association.Strategy)
			if !ok {
				continue
			}
			v, err := r.Run(ctx, strategy, Name(attr.Association.Factory), attr.Association.Overrides, attr.Association.Traits...)
			if err != nil {
				return nil, fmt.Errorf("factory %q association %q: %w", factoryName, attr.Name, err)
			}
			values.set(attr.Name, v)

		default:
			return nil, fmt.Errorf("%w: factory %q attribute %q has kind %s", ErrInvalidDefinition, factoryName, attr.Name, attr.Kind)
		}
	}

	extra := make([]string, 0, len(overrides))
	for name := range overrides {
		if !defined[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		values.set(name, overrides[name])
	}
	return values, nil
}
