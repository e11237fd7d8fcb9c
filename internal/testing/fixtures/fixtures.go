// Package fixtures provides the canonical factory definitions used by the
// engine's own tests and benchmarks.
//
// Define registers the user/post/admin set:
//
//	reg := factory.NewRegistry(factory.WithStore(memory.New(fixtures.RegisterTypes(nil), nil)))
//	if err := fixtures.Define(reg); err != nil {
//	    t.Fatal(err)
//	}
//	post, err := factory.As[*model.Post](reg.Build(ctx, "post", nil))
//
// DefineNested registers the nested admin family used by the benchmarks.
package fixtures

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/factory/internal/model"
	"github.com/forgo/factory/pkg/factory"
	"github.com/forgo/factory/pkg/store"
)

// Type names registered by RegisterTypes.
const (
	TypeUser factory.TargetType = "user"
	TypePost factory.TargetType = "post"
)

// DefaultPassword is the password set by the with_password trait.
const DefaultPassword = "password123"

// RegisterTypes maps the model types onto types, creating a table when nil.
func RegisterTypes(types *store.Types) *store.Types {
	if types == nil {
		types = store.NewTypes()
	}
	return types.
		MustRegister(string(TypeUser), model.User{}).
		MustRegister(string(TypePost), model.Post{})
}

// Define registers the email sequence, the with_password trait and the
// user, admin and post factories.
func Define(reg *factory.Registry) error {
	var errs []error

	errs = append(errs, reg.DefineSequence("email", func(n int) any {
		return fmt.Sprintf("somebody%d@example.com", n)
	}))

	errs = append(errs, reg.DefineTrait("with_password", func(d *factory.Definer) {
		d.Set("password", DefaultPassword)
		d.Lazy("hash", func(e *factory.Evaluator) (any, error) {
			hash, err := bcrypt.GenerateFromPassword([]byte(e.String("password")), bcrypt.MinCost)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			return string(hash), nil
		})
	}))

	errs = append(errs, reg.Define("user", factory.Options{Type: TypeUser}, func(d *factory.Definer) {
		d.Set("first_name", "Jimi")
		d.Set("last_name", "Hendrix")
		d.Set("admin", false)
		d.Lazy("email", func(e *factory.Evaluator) (any, error) {
			return strings.ToLower(fmt.Sprintf("%s.%s@example.com", e.String("first_name"), e.String("last_name"))), nil
		})
	}))

	errs = append(errs, reg.Define("post", factory.Options{Type: TypePost}, func(d *factory.Definer) {
		d.Set("name", "Test Post")
		d.Association("author", "user")

		d.Factory("saved_author_post", factory.Options{}, func(d *factory.Definer) {
			d.Association("author", "user", factory.Using(factory.StrategyCreate))
		})
	}))

	errs = append(errs, reg.Define("admin", factory.Options{Type: TypeUser}, func(d *factory.Definer) {
		d.Set("first_name", "Ben")
		d.Set("last_name", "Stein")
		d.Set("admin", true)
		d.Lazy("email", func(e *factory.Evaluator) (any, error) {
			return e.Next("email"), nil
		})
	}))

	return errors.Join(errs...)
}

// DefineNested registers the with_login trait and a user family nested
// four levels deep below user.
func DefineNested(reg *factory.Registry) error {
	var errs []error

	errs = append(errs, reg.DefineTrait("with_login", func(d *factory.Definer) {
		d.Set("login", "Awesome!")
	}))

	errs = append(errs, reg.Define("user", factory.Options{Type: TypeUser}, func(d *factory.Definer) {
		d.Set("name", "John")
		d.Lazy("email", func(e *factory.Evaluator) (any, error) {
			return strings.ToLower(e.String("name")) + "@example.com", nil
		})
		d.Lazy("login", func(e *factory.Evaluator) (any, error) {
			return e.Value("email"), nil
		})

		d.Factory("admin", factory.Options{}, func(d *factory.Definer) {
			d.Factory("admin_with_traits", factory.Options{Traits: []string{"with_login"}}, nil)

			d.Set("name", "admin")
			d.Set("admin", true)
			d.Lazy("upper_email", func(e *factory.Evaluator) (any, error) {
				return strings.ToUpper(e.String("email")), nil
			})

			d.Factory("nested_admin", factory.Options{}, func(d *factory.Definer) {
				d.Factory("double_nested_admin", factory.Options{}, func(d *factory.Definer) {
					d.Factory("triple_nested_admin", factory.Options{}, func(d *factory.Definer) {
						d.Set("admin", true)
					})
				})
			})
		})
	}))

	return errors.Join(errs...)
}

// MustDefine runs each define function against reg, failing the test on error.
func MustDefine(t testing.TB, reg *factory.Registry, defines ...func(*factory.Registry) error) {
	t.Helper()
	for _, define := range defines {
		if err := define(reg); err != nil {
			t.Fatalf("fixtures: failed to define factories: %v", err)
		}
	}
}
