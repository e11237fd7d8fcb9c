package factory

import "fmt"

// chainLocked returns def's ancestry from the root to def itself.
// Callers hold r.mu for reading.
func (r *Registry) chainLocked(def *Definition) ([]*Definition, error) {
	var chain []*Definition
	visited := make(map[string]bool)
	for cur := def; cur != nil; {
		if visited[cur.name] {
			return nil, fmt.Errorf("%w: factory %q inherits from itself", ErrInvalidDefinition, cur.name)
		}
		visited[cur.name] = true
		chain = append(chain, cur)
		if cur.parent == "" {
			break
		}
		parent, ok := r.factories[cur.parent]
		if !ok {
			return nil, fmt.Errorf("%w: %q (parent of %q)", ErrUnknownFactory, cur.parent, cur.name)
		}
		cur = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// targetTypeLocked returns the type def produces: the nearest declared type
// in its chain, or the root factory's name.
func (r *Registry) targetTypeLocked(def *Definition) (TargetType, error) {
	chain, err := r.chainLocked(def)
	if err != nil {
		return "", err
	}
	return chainType(chain), nil
}

func chainType(chain []*Definition) TargetType {
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].targetType != "" {
			return chain[i].targetType
		}
	}
	return TargetType(chain[0].name)
}

// traitLocked resolves a trait name against the chain's scoped traits,
// nearest factory first, then the registry namespace.
func (r *Registry) traitLocked(chain []*Definition, name string) (*Trait, error) {
	for i := len(chain) - 1; i >= 0; i-- {
		if t, ok := chain[i].scoped[name]; ok {
			return t, nil
		}
	}
	if t, ok := r.traits[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q (factory %q)", ErrUnknownTrait, name, chain[len(chain)-1].name)
}

// effective merges the attributes a run of def sees before overrides:
// per level from root to leaf the level's own attributes then its
// always-applied traits, followed by the requested traits in order.
// The merge is recomputed on every run.
func (r *Registry) effective(def *Definition, requested []string) ([]*Attribute, TargetType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain, err := r.chainLocked(def)
	if err != nil {
		return nil, "", err
	}

	set := newAttributeSet()
	for _, level := range chain {
		set.putAll(level.attributes)
		for _, name := range level.traits {
			t, err := r.traitLocked(chain, name)
			if err != nil {
				return nil, "", err
			}
			set.putAll(t.attributes)
		}
	}
	for _, name := range requested {
		t, err := r.traitLocked(chain, name)
		if err != nil {
			return nil, "", err
		}
		set.putAll(t.attributes)
	}
	return set.list, chainType(chain), nil
}
