package factory

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// TargetType names the type a factory produces. It also addresses a factory
// by the type it produces.
type TargetType string

// Options configure a factory definition.
type Options struct {
	// Type is the produced type. Sub-factories and factories with a Parent
	// inherit it when empty; other factories default to their name.
	Type TargetType

	// Parent names the factory this one inherits from.
	Parent string

	// Traits are applied on every run, in order.
	Traits []string

	// Replace allows Registry.Define to overwrite an existing definition.
	Replace bool
}

// Definition is an immutable factory definition.
type Definition struct {
	name       string
	targetType TargetType
	parent     string
	attributes []*Attribute
	traits     []string
	scoped     map[string]*Trait
	children   []*Definition
}

// NewDefinition evaluates block into a definition. Definition errors such as
// duplicate attribute names are reported here, not at build time.
func NewDefinition(name string, opts Options, block func(d *Definer)) (*Definition, error) {
	if name == "" {
		if opts.Type == "" {
			return nil, fmt.Errorf("%w: factory needs a name or a type", ErrInvalidDefinition)
		}
		name = underscore(string(opts.Type))
	}

	def := &Definition{
		name:       name,
		targetType: opts.Type,
		parent:     opts.Parent,
		traits:     append([]string(nil), opts.Traits...),
	}

	d := newDefiner(name, true)
	if block != nil {
		block(d)
	}
	if err := d.err(); err != nil {
		return nil, fmt.Errorf("factory %q: %w", name, err)
	}

	def.attributes = d.attributes
	def.scoped = d.traits
	for _, sub := range d.factories {
		child, err := NewDefinition(sub.name, sub.opts, sub.block)
		if err != nil {
			return nil, fmt.Errorf("factory %q: %w", name, err)
		}
		if child.parent == "" {
			child.parent = name
		}
		def.children = append(def.children, child)
	}
	return def, nil
}

// Name returns the registry key.
func (d *Definition) Name() string {
	return d.name
}

// Type returns the declared type, empty when inherited.
func (d *Definition) Type() TargetType {
	return d.targetType
}

// Parent returns the parent factory name, empty for a root factory.
func (d *Definition) Parent() string {
	return d.parent
}

// Attributes returns the factory's own attributes in declaration order.
func (d *Definition) Attributes() []*Attribute {
	return append([]*Attribute(nil), d.attributes...)
}

// Traits returns the always-applied trait names.
func (d *Definition) Traits() []string {
	return append([]string(nil), d.traits...)
}

// Children returns sub-factories declared inside this one.
func (d *Definition) Children() []*Definition {
	return append([]*Definition(nil), d.children...)
}

// flatten returns d followed by all nested sub-factories, depth first.
func (d *Definition) flatten() []*Definition {
	out := []*Definition{d}
	for _, c := range d.children {
		out = append(out, c.flatten()...)
	}
	return out
}

// Trait is a named bundle of attributes merged into a factory run.
type Trait struct {
	name       string
	attributes []*Attribute
}

// NewTrait evaluates block into a trait. Traits cannot declare traits or
// sub-factories.
func NewTrait(name string, block func(d *Definer)) (*Trait, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: trait needs a name", ErrInvalidDefinition)
	}
	d := newDefiner(name, false)
	if block != nil {
		block(d)
	}
	if err := d.err(); err != nil {
		return nil, fmt.Errorf("trait %q: %w", name, err)
	}
	return &Trait{name: name, attributes: d.attributes}, nil
}

// Name returns the trait name.
func (t *Trait) Name() string {
	return t.name
}

// Attributes returns the trait's attributes in declaration order.
func (t *Trait) Attributes() []*Attribute {
	return append([]*Attribute(nil), t.attributes...)
}

// Definer receives the attribute block of a factory or trait.
type Definer struct {
	owner      string
	nestable   bool
	attributes []*Attribute
	seen       map[string]bool
	traits     map[string]*Trait
	factories  []subFactory
	errs       []error
}

type subFactory struct {
	name  string
	opts  Options
	block func(d *Definer)
}

func newDefiner(owner string, nestable bool) *Definer {
	return &Definer{
		owner:    owner,
		nestable: nestable,
		seen:     make(map[string]bool),
	}
}

func (d *Definer) add(a *Attribute) {
	if a.Name == "" {
		d.errs = append(d.errs, fmt.Errorf("%w: attribute needs a name", ErrInvalidDefinition))
		return
	}
	if d.seen[a.Name] {
		d.errs = append(d.errs, fmt.Errorf("%w: attribute %q defined twice", ErrDuplicateName, a.Name))
		return
	}
	d.seen[a.Name] = true
	d.attributes = append(d.attributes, a)
}

// Set declares a static attribute.
func (d *Definer) Set(name string, value any) {
	d.add(&Attribute{Name: name, Kind: KindStatic, Value: value})
}

// Lazy declares an attribute computed from siblings resolved before it.
func (d *Definer) Lazy(name string, fn LazyFunc) {
	if fn == nil {
		d.errs = append(d.errs, fmt.Errorf("%w: lazy attribute %q has no rule", ErrInvalidDefinition, name))
		return
	}
	d.add(&Attribute{Name: name, Kind: KindLazy, Lazy: fn})
}

// Sequence declares an attribute drawn from the named sequence. An empty
// sequence name uses the attribute name.
func (d *Definer) Sequence(name, sequence string, format Formatter) {
	if sequence == "" {
		sequence = name
	}
	d.add(&Attribute{Name: name, Kind: KindSequence, Sequence: sequence, Format: format})
}

// Association declares an attribute produced by running another factory.
// An empty factoryName uses the attribute name.
func (d *Definer) Association(name, factoryName string, opts ...AssociationOption) {
	if factoryName == "" {
		factoryName = name
	}
	assoc := &Association{Factory: factoryName}
	for _, opt := range opts {
		opt(assoc)
	}
	d.add(&Attribute{Name: name, Kind: KindAssociation, Association: assoc})
}

// Trait declares a trait visible only to this factory and its descendants.
func (d *Definer) Trait(name string, block func(d *Definer)) {
	if !d.nestable {
		d.errs = append(d.errs, fmt.Errorf("%w: traits do not nest (%q inside %q)", ErrInvalidDefinition, name, d.owner))
		return
	}
	t, err := NewTrait(name, block)
	if err != nil {
		d.errs = append(d.errs, err)
		return
	}
	if d.traits == nil {
		d.traits = make(map[string]*Trait)
	}
	if _, ok := d.traits[name]; ok {
		d.errs = append(d.errs, fmt.Errorf("%w: trait %q defined twice", ErrDuplicateName, name))
		return
	}
	d.traits[name] = t
}

// Factory declares a sub-factory that inherits from this one unless
// opts.Parent says otherwise.
func (d *Definer) Factory(name string, opts Options, block func(d *Definer)) {
	if !d.nestable {
		d.errs = append(d.errs, fmt.Errorf("%w: trait %q cannot declare factory %q", ErrInvalidDefinition, d.owner, name))
		return
	}
	d.factories = append(d.factories, subFactory{name: name, opts: opts, block: block})
}

func (d *Definer) err() error {
	return errors.Join(d.errs...)
}

// underscore converts a type name such as BlogPost to blog_post.
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
