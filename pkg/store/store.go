// Package store provides the object-construction half of a factory object
// store. Types maps type names to Go structs and assigns resolved
// attributes onto new instances; unregistered types become Records.
// The memory, sqlite and surreal subpackages add persistence on top.
package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
)

// TagName is the struct tag naming the attribute a field receives.
const TagName = "factory"

// Standard errors for instantiation.
var (
	// ErrUnknownField indicates an attribute with no matching struct field.
	ErrUnknownField = errors.New("no field for attribute")

	// ErrNoIdentity indicates an instance without a string ID field.
	ErrNoIdentity = errors.New("instance has no identity field")

	// ErrNotStruct indicates a registered prototype that is not a struct.
	ErrNotStruct = errors.New("prototype is not a struct")
)

// Record is the instance produced for unregistered type names.
type Record struct {
	Type   string
	ID     string
	Values map[string]any
}

// Get returns a field value.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.Values[name]
	return v, ok
}

// Types maps type names to struct types.
type Types struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
}

// NewTypes creates an empty type table.
func NewTypes() *Types {
	return &Types{
		byName: make(map[string]reflect.Type),
		byType: make(map[reflect.Type]string),
	}
}

// Register maps typeName to the struct type of prototype (a struct value or
// pointer to one). Instances are built as pointers to that struct.
func (t *Types) Register(typeName string, prototype any) error {
	rt := reflect.TypeOf(prototype)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s is %T", ErrNotStruct, typeName, prototype)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byName[typeName] = rt
	t.byType[rt] = typeName
	return nil
}

// MustRegister is Register that panics on error.
func (t *Types) MustRegister(typeName string, prototype any) *Types {
	if err := t.Register(typeName, prototype); err != nil {
		panic(err)
	}
	return t
}

// Instantiate builds an instance of typeName carrying attrs. It performs
// no I/O.
func (t *Types) Instantiate(typeName string, attrs map[string]any) (any, error) {
	t.mu.RLock()
	rt, ok := t.byName[typeName]
	t.mu.RUnlock()
	if !ok {
		values := make(map[string]any, len(attrs))
		for k, v := range attrs {
			values[k] = v
		}
		return &Record{Type: typeName, Values: values}, nil
	}

	ptr := reflect.New(rt)
	elem := ptr.Elem()
	fields := fieldIndex(rt)
	for name, value := range attrs {
		idx, ok := fields[normalize(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, typeName, name)
		}
		if err := assign(elem.FieldByIndex(idx), value); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", typeName, name, err)
		}
	}
	return ptr.Interface(), nil
}

// TypeName returns the registered name of an instance's type.
func (t *Types) TypeName(instance any) string {
	if r, ok := instance.(*Record); ok {
		return r.Type
	}
	rt := reflect.TypeOf(instance)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil {
		return ""
	}
	t.mu.RLock()
	name, ok := t.byType[rt]
	t.mu.RUnlock()
	if ok {
		return name
	}
	return underscore(rt.Name())
}

// assign stores value into field. Directly assignable values keep their
// identity; anything else is decoded with weak typing.
func assign(field reflect.Value, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(field.Type()) {
		field.Set(v)
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           field.Addr().Interface(),
		TagName:          TagName,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(value)
}

// fieldIndex maps normalized attribute names to exported fields. A factory
// tag wins over the field name.
func fieldIndex(rt reflect.Type) map[string][]int {
	out := make(map[string][]int, rt.NumField())
	for _, f := range reflect.VisibleFields(rt) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		tag := strings.Split(f.Tag.Get(TagName), ",")[0]
		if tag == "-" {
			continue
		}
		if tag != "" {
			out[normalize(tag)] = f.Index
			continue
		}
		if _, taken := out[normalize(f.Name)]; !taken {
			out[normalize(f.Name)] = f.Index
		}
	}
	return out
}

// Fields returns the attribute map of an instance, keyed by tag or
// underscored field name. Nested instances with an identity collapse to
// their ID.
func Fields(instance any) map[string]any {
	if r, ok := instance.(*Record); ok {
		out := make(map[string]any, len(r.Values))
		for k, v := range r.Values {
			out[k] = collapse(v)
		}
		return out
	}
	v := reflect.Indirect(reflect.ValueOf(instance))
	if v.Kind() != reflect.Struct {
		return nil
	}
	out := make(map[string]any, v.NumField())
	for _, f := range reflect.VisibleFields(v.Type()) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		key := strings.Split(f.Tag.Get(TagName), ",")[0]
		if key == "-" {
			continue
		}
		if key == "" {
			key = underscore(f.Name)
		}
		if key == "id" {
			continue
		}
		out[key] = collapse(v.FieldByIndex(f.Index).Interface())
	}
	return out
}

func collapse(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		if id, ok := IDOf(v); ok {
			return id
		}
	}
	return v
}

// IDOf returns the identity of a Record or of a struct with a string ID field.
func IDOf(instance any) (string, bool) {
	if r, ok := instance.(*Record); ok {
		return r.ID, true
	}
	v := reflect.Indirect(reflect.ValueOf(instance))
	if v.Kind() != reflect.Struct {
		return "", false
	}
	f := v.FieldByName("ID")
	if !f.IsValid() || f.Kind() != reflect.String {
		return "", false
	}
	return f.String(), true
}

// SetID assigns the identity of a Record or of a pointer to a struct with a
// string ID field.
func SetID(instance any, id string) error {
	if r, ok := instance.(*Record); ok {
		r.ID = id
		return nil
	}
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("%w: %T", ErrNoIdentity, instance)
	}
	f := v.Elem().FieldByName("ID")
	if !f.IsValid() || f.Kind() != reflect.String || !f.CanSet() {
		return fmt.Errorf("%w: %T", ErrNoIdentity, instance)
	}
	f.SetString(id)
	return nil
}

func normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

func underscore(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
