package factory

import (
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultSequenceStart = 1
	defaultStubIDStart   = 1000
	tracerName           = "github.com/forgo/factory/pkg/factory"
)

// Registry owns factory definitions, traits and sequences.
// Definitions are immutable once registered; the tables themselves are
// guarded so a shared registry can serve parallel tests.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]*Definition
	order     []string
	traits    map[string]*Trait
	sequences map[string]*Sequence
	stubID    int64

	store         ObjectStore
	logger        *slog.Logger
	tracer        trace.Tracer
	sequenceStart int
	stubIDStart   int64
}

// Option configures a Registry.
type Option func(*Registry)

// WithStore sets the object store used by build and create.
func WithStore(store ObjectStore) Option {
	return func(r *Registry) {
		r.store = store
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithTracer sets the tracer used for strategy spans. Defaults to the
// global otel tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Registry) {
		r.tracer = tracer
	}
}

// WithSequenceStart sets the first value of sequences created without StartAt.
func WithSequenceStart(n int) Option {
	return func(r *Registry) {
		r.sequenceStart = n
	}
}

// WithStubIDStart sets the first id handed to stubs.
func WithStubIDStart(n int64) Option {
	return func(r *Registry) {
		r.stubIDStart = n
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sequenceStart: defaultSequenceStart,
		stubIDStart:   defaultStubIDStart,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}
	r.clear()
	return r
}

func (r *Registry) clear() {
	r.factories = make(map[string]*Definition)
	r.order = nil
	r.traits = make(map[string]*Trait)
	r.sequences = make(map[string]*Sequence)
	r.stubID = r.stubIDStart
}

// SetStore replaces the object store.
func (r *Registry) SetStore(store ObjectStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store = store
}

func (r *Registry) objectStore() ObjectStore {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store
}

// Register adds def and its sub-factories. It fails with ErrDuplicateName
// if any of those names is taken; nothing is registered in that case.
func (r *Registry) Register(def *Definition) error {
	return r.register(def, false)
}

// Replace registers def and its sub-factories, overwriting existing
// definitions of the same names.
func (r *Registry) Replace(def *Definition) {
	_ = r.register(def, true)
}

func (r *Registry) register(def *Definition, replace bool) error {
	if def == nil {
		return fmt.Errorf("%w: nil definition", ErrInvalidDefinition)
	}
	defs := def.flatten()

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if seen[d.name] {
			return fmt.Errorf("%w: factory %q declared twice in one family", ErrDuplicateName, d.name)
		}
		seen[d.name] = true
		if _, ok := r.factories[d.name]; ok && !replace {
			return fmt.Errorf("%w: factory %q", ErrDuplicateName, d.name)
		}
	}

	for _, d := range defs {
		if _, ok := r.factories[d.name]; ok {
			r.logger.Warn("replacing factory definition", slog.String("factory", d.name))
		} else {
			r.order = append(r.order, d.name)
		}
		r.factories[d.name] = d
		r.logger.Debug("factory registered",
			slog.String("factory", d.name),
			slog.String("parent", d.parent),
		)
	}
	return nil
}

// RegisterTrait adds a trait to the registry namespace.
func (r *Registry) RegisterTrait(t *Trait) error {
	return r.registerTrait(t, false)
}

// ReplaceTrait registers t, overwriting a trait of the same name.
func (r *Registry) ReplaceTrait(t *Trait) {
	_ = r.registerTrait(t, true)
}

func (r *Registry) registerTrait(t *Trait, replace bool) error {
	if t == nil {
		return fmt.Errorf("%w: nil trait", ErrInvalidDefinition)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.traits[t.name]; ok && !replace {
		return fmt.Errorf("%w: trait %q", ErrDuplicateName, t.name)
	}
	r.traits[t.name] = t
	r.logger.Debug("trait registered", slog.String("trait", t.name))
	return nil
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFactory, name)
	}
	return def, nil
}

// LookupByType returns the first registered factory producing t.
func (r *Registry) LookupByType(t TargetType) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		def := r.factories[name]
		typ, err := r.targetTypeLocked(def)
		if err != nil {
			continue
		}
		if typ == t {
			return def, nil
		}
	}
	return nil, fmt.Errorf("%w: no factory for type %q", ErrUnknownFactory, t)
}

// LookupTrait returns the global trait registered under name.
func (r *Registry) LookupTrait(name string) (*Trait, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.traits[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTrait, name)
	}
	return t, nil
}

// HasSequence reports whether a sequence was defined or already used,
// without drawing from it.
func (r *Registry) HasSequence(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sequences[name]
	return ok
}

// Names returns registered factory names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Reset clears all factories, traits and sequences.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clear()
	r.logger.Debug("registry reset")
}

// Define builds a definition from block and registers it. With
// opts.Replace an existing definition of the same name is overwritten.
func (r *Registry) Define(name string, opts Options, block func(d *Definer)) error {
	def, err := NewDefinition(name, opts, block)
	if err != nil {
		return err
	}
	if opts.Replace {
		r.Replace(def)
		return nil
	}
	return r.Register(def)
}

// DefineTrait builds a trait from block and registers it.
func (r *Registry) DefineTrait(name string, block func(d *Definer)) error {
	t, err := NewTrait(name, block)
	if err != nil {
		return err
	}
	return r.RegisterTrait(t)
}

// DefineSequence declares a named sequence with a formatter. A nil
// formatter yields the raw counter.
func (r *Registry) DefineSequence(name string, format Formatter, opts ...SequenceOption) error {
	if name == "" {
		return fmt.Errorf("%w: sequence needs a name", ErrInvalidDefinition)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sequences[name]; ok {
		return fmt.Errorf("%w: sequence %q", ErrDuplicateName, name)
	}
	seq := newSequence(name, r.sequenceStart, format)
	for _, opt := range opts {
		opt(seq)
	}
	r.sequences[name] = seq
	return nil
}

// NextSequenceValue draws from the named sequence, creating it if absent,
// and formats the value with format (or the sequence's own formatter).
// The formatter runs without the registry lock, so it may call back into
// the registry.
func (r *Registry) NextSequenceValue(name string, format Formatter) any {
	r.mu.Lock()
	seq, ok := r.sequences[name]
	if !ok {
		seq = newSequence(name, r.sequenceStart, nil)
		r.sequences[name] = seq
	}
	n, f := seq.draw(format)
	r.mu.Unlock()
	return formatValue(n, f)
}

// Next draws from a sequence that was defined or already used.
func (r *Registry) Next(name string) (any, error) {
	r.mu.Lock()
	seq, ok := r.sequences[name]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrUnknownSequence, name)
	}
	n, f := seq.draw(nil)
	r.mu.Unlock()
	return formatValue(n, f), nil
}

func (r *Registry) nextStubID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.stubID
	r.stubID++
	return id
}
