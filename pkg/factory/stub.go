package factory

import "fmt"

// Stub is a read-only stand-in carrying resolved attributes. It is never
// backed by the object store.
type Stub struct {
	id     int64
	typ    TargetType
	values *Values
}

func newStub(id int64, typ TargetType, values *Values) *Stub {
	return &Stub{id: id, typ: typ, values: values}
}

// ID returns the stub's fake identity.
func (s *Stub) ID() int64 {
	return s.id
}

// Type returns the type the stub stands in for.
func (s *Stub) Type() TargetType {
	return s.typ
}

// IsNew always reports false: stubs pose as persisted records.
func (s *Stub) IsNew() bool {
	return false
}

// Get returns an attribute value.
func (s *Stub) Get(name string) (any, bool) {
	return s.values.Get(name)
}

// String returns an attribute formatted with fmt, or "" when unset.
func (s *Stub) String(name string) string {
	v, ok := s.values.Get(name)
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Values returns the stub's attributes as a plain map.
func (s *Stub) Values() map[string]any {
	return s.values.Map()
}
