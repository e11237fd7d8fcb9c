// Package yamldef loads factory definitions from YAML files.
//
// A file declares sequences, global traits and factories. Attribute and
// factory order follows the file.
//
//	sequences:
//	  email:
//	    format: "person%d@example.com"
//	traits:
//	  with_login:
//	    login: Awesome!
//	factories:
//	  user:
//	    type: user
//	    attributes:
//	      first_name: Jimi
//	      email:
//	        template: '{{ .String "first_name" | lower }}@example.com'
//	      serial:
//	        sequence: serial
//	        format: "S-%04d"
//	    factories:
//	      admin:
//	        traits: [with_login]
//	        attributes:
//	          admin: true
//	  post:
//	    attributes:
//	      author:
//	        association: user
//	        strategy: create
//
// An attribute whose value is a mapping led by template, sequence,
// association or value is a rule; any other value is static. Use value to
// store a mapping that would otherwise read as a rule.
package yamldef

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/forgo/factory/pkg/factory"
)

// File is the root structure of a factory file.
type File struct {
	Sequences map[string]SequenceDef `yaml:"sequences"`
	Traits    yaml.Node              `yaml:"traits"`    // name -> attributes
	Factories yaml.Node              `yaml:"factories"` // name -> FactoryDef
}

// SequenceDef declares a named sequence.
type SequenceDef struct {
	Format string `yaml:"format"` // fmt verb applied to the counter
	Start  *int   `yaml:"start"`  // defaults to the registry's sequence start
}

// FactoryDef declares one factory.
type FactoryDef struct {
	Type         string    `yaml:"type"`
	Parent       string    `yaml:"parent"`
	Traits       []string  `yaml:"traits"` // always applied
	Replace      bool      `yaml:"replace"`
	Attributes   yaml.Node `yaml:"attributes"`
	ScopedTraits yaml.Node `yaml:"scoped_traits"` // name -> attributes
	Factories    yaml.Node `yaml:"factories"`     // name -> FactoryDef
}

// Load parses data and registers its sequences, traits and factories on reg.
// Loading is all or nothing: the file is parsed, compiled and checked for
// names already taken in reg before anything is registered.
func Load(reg *factory.Registry, data []byte) error {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse factory file: %w", err)
	}

	traitSpecs, err := compileTraits(&file.Traits)
	if err != nil {
		return err
	}
	factorySpecs, err := compileFactories(&file.Factories)
	if err != nil {
		return err
	}

	traits := make([]*factory.Trait, 0, len(traitSpecs))
	for _, t := range traitSpecs {
		trait, err := factory.NewTrait(t.name, t.block())
		if err != nil {
			return err
		}
		traits = append(traits, trait)
	}
	defs := make([]*factory.Definition, 0, len(factorySpecs))
	for _, f := range factorySpecs {
		def, err := factory.NewDefinition(f.name, f.opts, f.block())
		if err != nil {
			return err
		}
		defs = append(defs, def)
	}

	sequences := make([]string, 0, len(file.Sequences))
	for name := range file.Sequences {
		sequences = append(sequences, name)
	}
	sort.Strings(sequences)

	if err := checkNames(reg, sequences, traits, defs, factorySpecs); err != nil {
		return err
	}

	for _, name := range sequences {
		def := file.Sequences[name]
		var opts []factory.SequenceOption
		if def.Start != nil {
			opts = append(opts, factory.StartAt(*def.Start))
		}
		if err := reg.DefineSequence(name, formatter(def.Format), opts...); err != nil {
			return fmt.Errorf("sequence %s: %w", name, err)
		}
	}
	for _, t := range traits {
		if err := reg.RegisterTrait(t); err != nil {
			return err
		}
	}
	for i, def := range defs {
		if factorySpecs[i].opts.Replace {
			reg.Replace(def)
			continue
		}
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// checkNames reports every name the file would register that reg already
// holds or that the file declares twice. Factories marked replace may
// reuse registered names.
func checkNames(reg *factory.Registry, sequences []string, traits []*factory.Trait, defs []*factory.Definition, specs []factorySpec) error {
	var errs []error
	for _, name := range sequences {
		if reg.HasSequence(name) {
			errs = append(errs, fmt.Errorf("%w: sequence %q", factory.ErrDuplicateName, name))
		}
	}
	for _, t := range traits {
		if _, err := reg.LookupTrait(t.Name()); err == nil {
			errs = append(errs, fmt.Errorf("%w: trait %q", factory.ErrDuplicateName, t.Name()))
		}
	}

	seen := make(map[string]bool)
	for i, def := range defs {
		for _, d := range family(def) {
			if seen[d.Name()] {
				errs = append(errs, fmt.Errorf("%w: factory %q declared twice in file", factory.ErrDuplicateName, d.Name()))
				continue
			}
			seen[d.Name()] = true
			if specs[i].opts.Replace {
				continue
			}
			if _, err := reg.Lookup(d.Name()); err == nil {
				errs = append(errs, fmt.Errorf("%w: factory %q", factory.ErrDuplicateName, d.Name()))
			}
		}
	}
	return errors.Join(errs...)
}

// family returns def followed by its sub-factories, depth first.
func family(def *factory.Definition) []*factory.Definition {
	out := []*factory.Definition{def}
	for _, c := range def.Children() {
		out = append(out, family(c)...)
	}
	return out
}

// LoadFile reads path from fsys and loads it into reg.
func LoadFile(reg *factory.Registry, fsys fs.FS, path string) error {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := Load(reg, content); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadGlob loads every file in fsys matching pattern, in lexical order.
func LoadGlob(reg *factory.Registry, fsys fs.FS, pattern string) error {
	paths, err := fs.Glob(fsys, pattern)
	if err != nil {
		return fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if err := LoadFile(reg, fsys, path); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
// Compilation
// ============================================================================

type rule func(d *factory.Definer)

type traitSpec struct {
	name  string
	rules []rule
}

func (t traitSpec) block() func(d *factory.Definer) {
	return func(d *factory.Definer) {
		for _, r := range t.rules {
			r(d)
		}
	}
}

type factorySpec struct {
	name     string
	opts     factory.Options
	rules    []rule
	traits   []traitSpec
	children []factorySpec
}

func (f factorySpec) block() func(d *factory.Definer) {
	return func(d *factory.Definer) {
		for _, r := range f.rules {
			r(d)
		}
		for _, t := range f.traits {
			d.Trait(t.name, t.block())
		}
		for _, c := range f.children {
			d.Factory(c.name, c.opts, c.block())
		}
	}
}

type pair struct {
	key   string
	value *yaml.Node
}

// mappingPairs returns the entries of a mapping node in file order. An
// absent or null node has no entries.
func mappingPairs(node *yaml.Node) ([]pair, error) {
	if node == nil || node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	out := make([]pair, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, pair{key: node.Content[i].Value, value: node.Content[i+1]})
	}
	return out, nil
}

func compileTraits(node *yaml.Node) ([]traitSpec, error) {
	entries, err := mappingPairs(node)
	if err != nil {
		return nil, fmt.Errorf("traits: %w", err)
	}
	out := make([]traitSpec, 0, len(entries))
	for _, e := range entries {
		rules, err := compileAttributes(e.value)
		if err != nil {
			return nil, fmt.Errorf("trait %s: %w", e.key, err)
		}
		out = append(out, traitSpec{name: e.key, rules: rules})
	}
	return out, nil
}

func compileFactories(node *yaml.Node) ([]factorySpec, error) {
	entries, err := mappingPairs(node)
	if err != nil {
		return nil, fmt.Errorf("factories: %w", err)
	}
	out := make([]factorySpec, 0, len(entries))
	for _, e := range entries {
		spec, err := compileFactory(e.key, e.value)
		if err != nil {
			return nil, fmt.Errorf("factory %s: %w", e.key, err)
		}
		out = append(out, spec)
	}
	return out, nil
}

func compileFactory(name string, node *yaml.Node) (factorySpec, error) {
	var def FactoryDef
	if err := node.Decode(&def); err != nil {
		return factorySpec{}, err
	}

	rules, err := compileAttributes(&def.Attributes)
	if err != nil {
		return factorySpec{}, err
	}
	traits, err := compileTraits(&def.ScopedTraits)
	if err != nil {
		return factorySpec{}, err
	}
	children, err := compileFactories(&def.Factories)
	if err != nil {
		return factorySpec{}, err
	}

	return factorySpec{
		name: name,
		opts: factory.Options{
			Type:    factory.TargetType(def.Type),
			Parent:  def.Parent,
			Traits:  def.Traits,
			Replace: def.Replace,
		},
		rules:    rules,
		traits:   traits,
		children: children,
	}, nil
}

func compileAttributes(node *yaml.Node) ([]rule, error) {
	entries, err := mappingPairs(node)
	if err != nil {
		return nil, err
	}
	out := make([]rule, 0, len(entries))
	for _, e := range entries {
		r, err := compileAttribute(e.key, e.value)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", e.key, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// ruleKeys lists the keys each rule kind accepts; the first is the leader.
var ruleKeys = map[string][]string{
	"value":       {"value"},
	"template":    {"template"},
	"sequence":    {"sequence", "format"},
	"association": {"association", "strategy", "foreign_key", "traits", "overrides"},
}

func compileAttribute(name string, node *yaml.Node) (rule, error) {
	if node.Kind == yaml.MappingNode && len(node.Content) > 0 {
		if allowed, ok := ruleKeys[node.Content[0].Value]; ok {
			fields := make(map[string]*yaml.Node, len(node.Content)/2)
			for i := 0; i+1 < len(node.Content); i += 2 {
				key := node.Content[i].Value
				if !contains(allowed, key) {
					return nil, fmt.Errorf("line %d: %q is not valid in a %s rule", node.Content[i].Line, key, allowed[0])
				}
				fields[key] = node.Content[i+1]
			}
			return compileRule(name, allowed[0], node, fields)
		}
	}

	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return func(d *factory.Definer) { d.Set(name, v) }, nil
}

func compileRule(name, kind string, node *yaml.Node, fields map[string]*yaml.Node) (rule, error) {
	switch kind {
	case "value":
		var v any
		if err := fields["value"].Decode(&v); err != nil {
			return nil, err
		}
		return func(d *factory.Definer) { d.Set(name, v) }, nil

	case "template":
		var src string
		if err := fields["template"].Decode(&src); err != nil {
			return nil, err
		}
		tmpl, err := template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, err
		}
		return func(d *factory.Definer) {
			d.Lazy(name, func(e *factory.Evaluator) (any, error) {
				var b strings.Builder
				if err := tmpl.Execute(&b, e); err != nil {
					return nil, err
				}
				return b.String(), nil
			})
		}, nil

	case "sequence":
		var seq, format string
		if err := fields["sequence"].Decode(&seq); err != nil {
			return nil, err
		}
		if n, ok := fields["format"]; ok {
			if err := n.Decode(&format); err != nil {
				return nil, err
			}
		}
		f := formatter(format)
		return func(d *factory.Definer) { d.Sequence(name, seq, f) }, nil

	case "association":
		var def struct {
			Association string         `yaml:"association"`
			Strategy    string         `yaml:"strategy"`
			ForeignKey  string         `yaml:"foreign_key"`
			Traits      []string       `yaml:"traits"`
			Overrides   map[string]any `yaml:"overrides"`
		}
		if err := node.Decode(&def); err != nil {
			return nil, err
		}
		strategy, err := factory.ParseStrategy(def.Strategy)
		if err != nil {
			return nil, err
		}
		opts := []factory.AssociationOption{factory.Using(strategy)}
		if def.ForeignKey != "" {
			opts = append(opts, factory.ForeignKey(def.ForeignKey))
		}
		if len(def.Traits) > 0 {
			opts = append(opts, factory.WithTraits(def.Traits...))
		}
		if len(def.Overrides) > 0 {
			opts = append(opts, factory.WithOverrides(def.Overrides))
		}
		return func(d *factory.Definer) { d.Association(name, def.Association, opts...) }, nil
	}
	return nil, fmt.Errorf("unknown rule %q", kind)
}

func formatter(format string) factory.Formatter {
	if format == "" {
		return nil
	}
	return func(n int) any {
		return fmt.Sprintf(format, n)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var templateFuncs = template.FuncMap{
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
	"trim":  strings.TrimSpace,
	"title": func(s string) string {
		return cases.Title(language.English).String(s)
	},
}
