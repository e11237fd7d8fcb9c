package factory

// Kind identifies how an attribute's value is computed.
type Kind int

const (
	KindStatic Kind = iota
	KindLazy
	KindAssociation
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindLazy:
		return "lazy"
	case KindAssociation:
		return "association"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// LazyFunc computes an attribute from siblings resolved earlier in the same pass.
type LazyFunc func(e *Evaluator) (any, error)

// Formatter turns a sequence counter into an attribute value.
type Formatter func(n int) any

// Attribute is a single named rule for computing one field.
type Attribute struct {
	Name string
	Kind Kind

	// Value is used by KindStatic.
	Value any

	// Lazy is used by KindLazy.
	Lazy LazyFunc

	// Sequence and Format are used by KindSequence. A nil Format falls back
	// to the sequence's own formatter.
	Sequence string
	Format   Formatter

	// Association is used by KindAssociation.
	Association *Association
}

// Association delegates an attribute to another factory.
type Association struct {
	Factory    string
	Strategy   Strategy
	ForeignKey string
	Traits     []string
	Overrides  Attrs
}

// foreignKey returns the override name that suppresses this association.
func (a *Association) foreignKey(attribute string) string {
	if a.ForeignKey != "" {
		return a.ForeignKey
	}
	return attribute + "_id"
}

// AssociationOption customizes an association declared with Definer.Association.
type AssociationOption func(*Association)

// Using sets the strategy the associated factory runs with. The default,
// StrategyInherit, follows the strategy of the enclosing run.
// StrategyAttributes leaves the association out of build and create runs.
func Using(s Strategy) AssociationOption {
	return func(a *Association) {
		a.Strategy = s
	}
}

// ForeignKey names the override that replaces the association. Defaults to
// the attribute name suffixed with "_id".
func ForeignKey(name string) AssociationOption {
	return func(a *Association) {
		a.ForeignKey = name
	}
}

// WithTraits applies traits to the associated factory.
func WithTraits(traits ...string) AssociationOption {
	return func(a *Association) {
		a.Traits = append(a.Traits, traits...)
	}
}

// WithOverrides passes overrides to the associated factory.
func WithOverrides(overrides Attrs) AssociationOption {
	return func(a *Association) {
		if a.Overrides == nil {
			a.Overrides = make(Attrs, len(overrides))
		}
		for k, v := range overrides {
			a.Overrides[k] = v
		}
	}
}

// Attrs holds caller-supplied overrides keyed by attribute name.
type Attrs map[string]any

// attributeSet is an ordered attribute table. Replacing a name keeps the
// position of its first definition.
type attributeSet struct {
	list  []*Attribute
	index map[string]int
}

func newAttributeSet() *attributeSet {
	return &attributeSet{index: make(map[string]int)}
}

func (s *attributeSet) put(a *Attribute) {
	if i, ok := s.index[a.Name]; ok {
		s.list[i] = a
		return
	}
	s.index[a.Name] = len(s.list)
	s.list = append(s.list, a)
}

func (s *attributeSet) putAll(attrs []*Attribute) {
	for _, a := range attrs {
		s.put(a)
	}
}

func (s *attributeSet) has(name string) bool {
	_, ok := s.index[name]
	return ok
}
