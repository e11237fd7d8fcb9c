package factory

import "fmt"

// Evaluator is the read-only view a lazy rule gets of the attributes
// resolved so far. The typed accessors record the first failure and return
// zero values; the resolver reports it after the rule returns.
type Evaluator struct {
	registry  *Registry
	factory   string
	attribute string
	values    *Values
	err       error
}

// Factory returns the name of the factory being run.
func (e *Evaluator) Factory() string {
	return e.factory
}

// Attribute returns the name of the attribute being computed.
func (e *Evaluator) Attribute() string {
	return e.attribute
}

// Get returns an already resolved attribute. Reading the attribute being
// computed, or one resolved later in the pass, fails with a ResolutionError.
func (e *Evaluator) Get(name string) (any, error) {
	if name == e.attribute {
		return nil, &ResolutionError{
			Factory:   e.factory,
			Attribute: e.attribute,
			Reference: name,
			Reason:    "self reference",
		}
	}
	v, ok := e.values.Get(name)
	if !ok {
		return nil, &ResolutionError{
			Factory:   e.factory,
			Attribute: e.attribute,
			Reference: name,
			Reason:    "attribute referenced before resolution",
		}
	}
	return v, nil
}

// Value is Get with a sticky error.
func (e *Evaluator) Value(name string) any {
	v, err := e.Get(name)
	if err != nil {
		e.fail(err)
		return nil
	}
	return v
}

// String returns a resolved string attribute.
func (e *Evaluator) String(name string) string {
	v := e.Value(name)
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		e.mismatch(name, v, "string")
	}
	return s
}

// Int returns a resolved int attribute.
func (e *Evaluator) Int(name string) int {
	v := e.Value(name)
	if v == nil {
		return 0
	}
	n, ok := v.(int)
	if !ok {
		e.mismatch(name, v, "int")
	}
	return n
}

// Bool returns a resolved bool attribute.
func (e *Evaluator) Bool(name string) bool {
	v := e.Value(name)
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		e.mismatch(name, v, "bool")
	}
	return b
}

// Next draws from a defined sequence.
func (e *Evaluator) Next(sequence string) any {
	v, err := e.registry.Next(sequence)
	if err != nil {
		e.fail(err)
		return nil
	}
	return v
}

// Err returns the first failure recorded by an accessor.
func (e *Evaluator) Err() error {
	return e.err
}

func (e *Evaluator) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *Evaluator) mismatch(name string, v any, want string) {
	e.fail(fmt.Errorf("%w: factory %q attribute %q: %q is %T, not %s",
		ErrResolution, e.factory, e.attribute, name, v, want))
}
