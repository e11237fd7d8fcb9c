package factory

// Values is a resolved attribute set in resolution order. A fresh Values is
// produced by every run and never shared between runs.
type Values struct {
	names []string
	m     map[string]any
}

func newValues(capacity int) *Values {
	return &Values{
		names: make([]string, 0, capacity),
		m:     make(map[string]any, capacity),
	}
}

func (v *Values) set(name string, value any) {
	if _, ok := v.m[name]; !ok {
		v.names = append(v.names, name)
	}
	v.m[name] = value
}

// Get returns the value resolved for name.
func (v *Values) Get(name string) (any, bool) {
	value, ok := v.m[name]
	return value, ok
}

// Has reports whether name was resolved.
func (v *Values) Has(name string) bool {
	_, ok := v.m[name]
	return ok
}

// Names returns attribute names in resolution order.
func (v *Values) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Len returns the number of resolved attributes.
func (v *Values) Len() int {
	return len(v.names)
}

// Map returns a copy of the values as a plain map.
func (v *Values) Map() map[string]any {
	out := make(map[string]any, len(v.m))
	for k, val := range v.m {
		out[k] = val
	}
	return out
}
