package factory_test

import (
	"context"
	"testing"

	"github.com/forgo/factory/internal/testing/fixtures"
	"github.com/forgo/factory/internal/testing/helpers"
	"github.com/forgo/factory/pkg/factory"
	"github.com/forgo/factory/pkg/store/memory"
)

func newBenchRegistry(b *testing.B) *factory.Registry {
	b.Helper()
	reg := helpers.NewRegistry(b, memory.New(fixtures.RegisterTypes(nil), nil))
	fixtures.MustDefine(b, reg, fixtures.DefineNested)
	return reg
}

func benchmarkRun(b *testing.B, s factory.Strategy, name string, overrides factory.Attrs, traits ...string) {
	reg := newBenchRegistry(b)
	ctx := context.Background()
	ref := factory.Name(name)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := reg.Run(ctx, s, ref, overrides, traits...); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuild(b *testing.B) {
	benchmarkRun(b, factory.StrategyBuild, "admin", nil)
}

func BenchmarkTraitBuild(b *testing.B) {
	benchmarkRun(b, factory.StrategyBuild, "admin_with_traits", nil)
}

func BenchmarkInlineTraitBuild(b *testing.B) {
	benchmarkRun(b, factory.StrategyBuild, "admin", nil, "with_login")
}

func BenchmarkDeepBuild(b *testing.B) {
	benchmarkRun(b, factory.StrategyBuild, "triple_nested_admin", nil)
}

func BenchmarkOverridesBuild(b *testing.B) {
	benchmarkRun(b, factory.StrategyBuild, "admin", factory.Attrs{"admin": false, "email": "foo@example.com"})
}

func BenchmarkAttributesFor(b *testing.B) {
	benchmarkRun(b, factory.StrategyAttributes, "admin", nil)
}
