package factory_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/forgo/factory/internal/model"
	"github.com/forgo/factory/pkg/factory"
)

// attributesFor runs attributes_for inside a property, failing through rt
// so rapid can shrink the input.
func attributesFor(rt *rapid.T, reg *factory.Registry, name string, overrides factory.Attrs) *factory.Values {
	rt.Helper()
	v, err := reg.AttributesFor(context.Background(), name, overrides)
	if err != nil {
		rt.Fatalf("attributes_for %s: %v", name, err)
	}
	return v
}

func TestProperty_SequenceMonotonic(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	if err := reg.DefineSequence("n", nil); err != nil {
		t.Fatal(err)
	}

	rapid.Check(t, func(rt *rapid.T) {
		draws := rapid.IntRange(1, 50).Draw(rt, "draws")
		last := -1 << 31
		for i := 0; i < draws; i++ {
			v, err := reg.Next("n")
			if err != nil {
				rt.Fatal(err)
			}
			n := v.(int)
			if n <= last {
				rt.Fatalf("sequence went from %d to %d", last, n)
			}
			last = n
		}
	})
}

func TestProperty_OverridesWin(t *testing.T) {
	t.Parallel()
	reg, _ := newFixtureRegistry(t)

	rapid.Check(t, func(rt *rapid.T) {
		first := rapid.String().Draw(rt, "first_name")
		admin := rapid.Bool().Draw(rt, "admin")

		attrs := attributesFor(rt, reg, "admin", factory.Attrs{"first_name": first, "admin": admin})

		if got, _ := attrs.Get("first_name"); got != first {
			rt.Fatalf("first_name = %v, want %q", got, first)
		}
		if got, _ := attrs.Get("admin"); got != admin {
			rt.Fatalf("admin = %v, want %v", got, admin)
		}
	})
}

func TestProperty_LazyFollowsOverride(t *testing.T) {
	t.Parallel()
	reg, _ := newFixtureRegistry(t)

	rapid.Check(t, func(rt *rapid.T) {
		first := rapid.StringMatching(`[A-Za-z]{1,12}`).Draw(rt, "first_name")
		last := rapid.StringMatching(`[A-Za-z]{1,12}`).Draw(rt, "last_name")

		attrs := attributesFor(rt, reg, "user", factory.Attrs{"first_name": first, "last_name": last})

		want := strings.ToLower(fmt.Sprintf("%s.%s@example.com", first, last))
		if got, _ := attrs.Get("email"); got != want {
			rt.Fatalf("email = %v, want %q", got, want)
		}
	})
}

func TestProperty_Deterministic(t *testing.T) {
	t.Parallel()
	reg, _ := newFixtureRegistry(t)

	rapid.Check(t, func(rt *rapid.T) {
		overrides := factory.Attrs{}
		if rapid.Bool().Draw(rt, "override_last_name") {
			overrides["last_name"] = rapid.String().Draw(rt, "last_name")
		}

		a := attributesFor(rt, reg, "admin", overrides)
		b := attributesFor(rt, reg, "admin", overrides)

		for _, name := range []string{"first_name", "last_name", "admin"} {
			av, _ := a.Get(name)
			bv, _ := b.Get(name)
			if av != bv {
				rt.Fatalf("%s differs between runs: %v vs %v", name, av, bv)
			}
		}
		ae, _ := a.Get("email")
		be, _ := b.Get("email")
		if ae == be {
			rt.Fatalf("sequence-backed email repeated: %v", ae)
		}
	})
}

func TestProperty_AttributesMatchBuild(t *testing.T) {
	t.Parallel()
	reg, _ := newFixtureRegistry(t)

	rapid.Check(t, func(rt *rapid.T) {
		overrides := factory.Attrs{
			"first_name": rapid.String().Draw(rt, "first_name"),
			"admin":      rapid.Bool().Draw(rt, "admin"),
		}

		attrs := attributesFor(rt, reg, "user", overrides)
		user, err := factory.As[*model.User](reg.Build(context.Background(), "user", overrides))
		if err != nil {
			rt.Fatalf("build user: %v", err)
		}

		got := map[string]any{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"admin":      user.Admin,
			"email":      user.Email,
		}
		for name, want := range attrs.Map() {
			if got[name] != want {
				rt.Fatalf("%s: build gave %v, attributes_for gave %v", name, got[name], want)
			}
		}
	})
}
