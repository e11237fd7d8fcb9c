// Package factory builds test fixtures from declarative definitions.
//
// A factory is a named, ordered set of attribute rules. Rules are static
// values, lazy functions of attributes resolved earlier in the same pass,
// sequence draws, or associations that delegate to another factory.
// Factories may inherit from a parent, absorb traits, and nest
// sub-factories that inherit from their lexical parent.
//
// # Defining Factories
//
//	reg := factory.NewRegistry(factory.WithStore(memory.New()))
//
//	reg.DefineSequence("email", func(n int) any {
//	    return fmt.Sprintf("somebody%d@example.com", n)
//	})
//
//	reg.Define("user", factory.Options{}, func(d *factory.Definer) {
//	    d.Set("first_name", "Jimi")
//	    d.Set("last_name", "Hendrix")
//	    d.Lazy("email", func(e *factory.Evaluator) (any, error) {
//	        return strings.ToLower(e.String("first_name") + "." + e.String("last_name") + "@example.com"), nil
//	    })
//
//	    d.Factory("admin", factory.Options{}, func(d *factory.Definer) {
//	        d.Set("admin", true)
//	        d.Sequence("email", "email", nil)
//	    })
//	})
//
//	reg.Define("post", factory.Options{}, func(d *factory.Definer) {
//	    d.Set("name", "Test Post")
//	    d.Association("author", "user")
//	})
//
// # Strategies
//
// Every factory can be run with four strategies:
//
//   - AttributesFor: the resolved attribute set; associations are skipped
//   - Build: an in-memory instance from the ObjectStore, never persisted
//   - Create: a built instance persisted through the ObjectStore
//   - Stub: a read-only stand-in that never touches the store
//
// Overrides always win, suppress the rule they replace, and are visible to
// lazy rules evaluated after them:
//
//	attrs, err := reg.AttributesFor(ctx, "user", factory.Attrs{"first_name": "Bill"})
//	// attrs.Get("email") == "bill.hendrix@example.com"
//
// Supplying an association's foreign key (author_id for author) skips the
// association entirely.
//
// # Precedence
//
// From lowest to highest: inherited attributes (root first), the factory's
// own attributes, its always-applied traits, traits requested at call time
// in order, and caller overrides.
//
// # Isolation
//
// Registry is an explicit value; tests should use their own registry or call
// Reset before and after. A process-wide default is available through the
// package-level functions.
package factory
