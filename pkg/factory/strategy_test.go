package factory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/factory/internal/model"
	"github.com/forgo/factory/internal/testing/fixtures"
	"github.com/forgo/factory/internal/testing/helpers"
	"github.com/forgo/factory/pkg/factory"
	"github.com/forgo/factory/pkg/store"
	"github.com/forgo/factory/pkg/store/memory"
)

// failingStore persists nothing.
type failingStore struct {
	*memory.Store
	err error
}

func (f failingStore) Persist(ctx context.Context, instance any) (any, error) {
	return nil, f.err
}

// ============================================================================
// build and create
// ============================================================================

func TestBuild_ReturnsUnsavedInstance(t *testing.T) {
	t.Parallel()
	s := memory.New(nil, nil)
	reg := helpers.NewRegistry(t, s)
	mustDefine(t, reg, "user", factory.Options{Type: "person"}, func(d *factory.Definer) { d.Set("name", "John") })

	user := helpers.MustBuild[*store.Record](t, reg, "user", nil)

	assert.Equal(t, "person", user.Type)
	assert.Equal(t, "John", user.Values["name"])
	assert.True(t, s.IsNew(user))
}

func TestCreate_PersistsInstance(t *testing.T) {
	t.Parallel()
	s := memory.New(nil, nil)
	reg := helpers.NewRegistry(t, s)
	mustDefine(t, reg, "user", factory.Options{}, func(d *factory.Definer) { d.Set("name", "John") })

	user := helpers.MustCreate[*store.Record](t, reg, "user", nil)

	assert.NotEmpty(t, user.ID)
	assert.False(t, s.IsNew(user))
	n, err := s.Count(context.Background(), "user")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreate_PersistenceErrorIsWrapped(t *testing.T) {
	t.Parallel()
	diskFull := errors.New("disk full")
	reg := helpers.NewRegistry(t, failingStore{Store: memory.New(nil, nil), err: diskFull})
	mustDefine(t, reg, "user", factory.Options{}, nil)

	v, err := reg.Create(context.Background(), "user", nil)

	assert.Nil(t, v)
	assert.ErrorIs(t, err, factory.ErrPersistence)
	assert.ErrorIs(t, err, diskFull)
}

func TestStrategies_WithoutStore(t *testing.T) {
	t.Parallel()
	reg := helpers.NewRegistry(t, nil)
	mustDefine(t, reg, "user", factory.Options{}, func(d *factory.Definer) { d.Set("name", "John") })
	ctx := context.Background()

	_, err := reg.Build(ctx, "user", nil)
	assert.ErrorIs(t, err, factory.ErrNoObjectStore)
	_, err = reg.Create(ctx, "user", nil)
	assert.ErrorIs(t, err, factory.ErrNoObjectStore)

	_, err = reg.AttributesFor(ctx, "user", nil)
	assert.NoError(t, err)
	_, err = reg.Stub(ctx, "user", nil)
	assert.NoError(t, err)

	reg.SetStore(memory.New(nil, nil))
	_, err = reg.Build(ctx, "user", nil)
	assert.NoError(t, err)
}

func TestRun_InheritCannotStartARun(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	mustDefine(t, reg, "user", factory.Options{}, nil)

	_, err := reg.Run(context.Background(), factory.StrategyInherit, factory.Name("user"), nil)

	assert.ErrorIs(t, err, factory.ErrUnknownStrategy)
}

// ============================================================================
// association strategies
// ============================================================================

func TestAssociationStrategies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		declared  factory.Strategy
		run       factory.Strategy
		wantSaved int
		check     func(t *testing.T, author any)
	}{
		{
			name: "inherit under build builds", declared: factory.StrategyInherit, run: factory.StrategyBuild,
			check: func(t *testing.T, author any) { assert.IsType(t, &store.Record{}, author) },
		},
		{
			name: "inherit under create creates", declared: factory.StrategyInherit, run: factory.StrategyCreate, wantSaved: 1,
			check: func(t *testing.T, author any) { assert.IsType(t, &store.Record{}, author) },
		},
		{
			name: "create under build creates", declared: factory.StrategyCreate, run: factory.StrategyBuild, wantSaved: 1,
			check: func(t *testing.T, author any) { assert.IsType(t, &store.Record{}, author) },
		},
		{
			name: "build under create builds", declared: factory.StrategyBuild, run: factory.StrategyCreate,
			check: func(t *testing.T, author any) { assert.IsType(t, &store.Record{}, author) },
		},
		{
			name: "create under stub stubs", declared: factory.StrategyCreate, run: factory.StrategyStub,
			check: func(t *testing.T, author any) { assert.IsType(t, &factory.Stub{}, author) },
		},
		{
			name: "create under attributes skips", declared: factory.StrategyCreate, run: factory.StrategyAttributes,
			check: func(t *testing.T, author any) { assert.Nil(t, author) },
		},
		{
			name: "attributes under build skips", declared: factory.StrategyAttributes, run: factory.StrategyBuild,
			check: func(t *testing.T, author any) { assert.Nil(t, author) },
		},
		{
			name: "attributes under create skips", declared: factory.StrategyAttributes, run: factory.StrategyCreate,
			check: func(t *testing.T, author any) { assert.Nil(t, author) },
		},
		{
			name: "attributes under stub stubs", declared: factory.StrategyAttributes, run: factory.StrategyStub,
			check: func(t *testing.T, author any) { assert.IsType(t, &factory.Stub{}, author) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := memory.New(nil, nil)
			reg := helpers.NewRegistry(t, s)
			definePost(t, reg, factory.Using(tt.declared))

			v, err := reg.Run(context.Background(), tt.run, factory.Name("post"), nil)
			require.NoError(t, err)

			var author any
			switch post := v.(type) {
			case *store.Record:
				author = post.Values["author"]
			case *factory.Stub:
				author, _ = post.Get("author")
			case *factory.Values:
				author, _ = post.Get("author")
			}
			tt.check(t, author)

			n, err := s.Count(context.Background(), "user")
			require.NoError(t, err)
			assert.Equal(t, tt.wantSaved, n)
		})
	}
}

func TestAssociationStrategies_AttributesLeavesTypedFieldEmpty(t *testing.T) {
	t.Parallel()
	reg := helpers.NewRegistry(t, memory.New(fixtures.RegisterTypes(nil), nil))
	mustDefine(t, reg, "user", factory.Options{Type: fixtures.TypeUser}, func(d *factory.Definer) {
		d.Set("first_name", "Jimi")
	})
	mustDefine(t, reg, "post", factory.Options{Type: fixtures.TypePost}, func(d *factory.Definer) {
		d.Set("name", "Test Post")
		d.Association("author", "user", factory.Using(factory.StrategyAttributes))
	})

	post := helpers.MustBuild[*model.Post](t, reg, "post", nil)
	assert.Equal(t, "Test Post", post.Name)
	assert.Nil(t, post.Author, "no zero-valued author is fabricated")
}

// ============================================================================
// stub
// ============================================================================

func TestStub_IDsIncrementFromStart(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t, factory.WithStubIDStart(1))
	mustDefine(t, reg, "user", factory.Options{Type: "User"}, func(d *factory.Definer) {
		d.Set("name", "John")
		d.Set("age", 40)
	})

	first := helpers.MustStub(t, reg, "user", nil)
	second := helpers.MustStub(t, reg, "user", nil)

	assert.Equal(t, int64(1), first.ID())
	assert.Equal(t, int64(2), second.ID())
	assert.Equal(t, factory.TargetType("User"), first.Type())
	assert.False(t, first.IsNew())
	assert.Equal(t, "40", first.String("age"))
	assert.Equal(t, "", first.String("missing"))
	assert.Equal(t, map[string]any{"name": "John", "age": 40}, first.Values())

	reg.Reset()
	mustDefine(t, reg, "user", factory.Options{}, nil)
	assert.Equal(t, int64(1), helpers.MustStub(t, reg, "user", nil).ID(), "reset restarts stub ids")
}

// ============================================================================
// helpers
// ============================================================================

func TestAs(t *testing.T) {
	t.Parallel()

	n, err := factory.As[int](42, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = factory.As[string](42, nil)
	assert.ErrorContains(t, err, "int")

	boom := errors.New("boom")
	_, err = factory.As[int](nil, boom)
	assert.ErrorIs(t, err, boom)
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want factory.Strategy
	}{
		{"", factory.StrategyInherit},
		{"inherit", factory.StrategyInherit},
		{"attributes_for", factory.StrategyAttributes},
		{"attributes", factory.StrategyAttributes},
		{"build", factory.StrategyBuild},
		{"create", factory.StrategyCreate},
		{"stub", factory.StrategyStub},
	}
	for _, tt := range tests {
		got, err := factory.ParseStrategy(tt.in)
		if err != nil {
			t.Errorf("ParseStrategy(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := factory.ParseStrategy("save"); !errors.Is(err, factory.ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestStrategy_String(t *testing.T) {
	t.Parallel()

	for s, want := range map[factory.Strategy]string{
		factory.StrategyInherit:    "inherit",
		factory.StrategyAttributes: "attributes_for",
		factory.StrategyBuild:      "build",
		factory.StrategyCreate:     "create",
		factory.StrategyStub:       "stub",
		factory.Strategy(42):       "strategy(42)",
	} {
		if got := s.String(); got != want {
			t.Errorf("Strategy(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

// ============================================================================
// default registry
// ============================================================================

func TestDefaultRegistry(t *testing.T) {
	reg := newRegistry(t)
	helpers.UseDefault(t, reg)
	ctx := context.Background()

	require.Same(t, reg, factory.Default())
	require.NoError(t, factory.DefineSequence("n", nil))
	require.NoError(t, factory.DefineTrait("loud", func(d *factory.Definer) { d.Set("volume", 11) }))
	require.NoError(t, factory.Define("user", factory.Options{}, func(d *factory.Definer) {
		d.Set("name", "John")
	}))

	attrs, err := factory.AttributesFor(ctx, "user", nil, "loud")
	require.NoError(t, err)
	assert.Equal(t, 11, get(t, attrs, "volume"))

	_, err = factory.Build(ctx, "user", nil)
	require.NoError(t, err)
	created, err := factory.Create(ctx, "user", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, created.(*store.Record).ID)

	stub, err := factory.BuildStubbed(ctx, "user", nil)
	require.NoError(t, err)
	assert.Equal(t, "John", stub.String("name"))

	n, err := factory.Next("n")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	byType, err := factory.Run(ctx, factory.StrategyBuild, factory.TargetType("user"), factory.Attrs{"name": "Jane"})
	require.NoError(t, err)
	name, _ := byType.(*store.Record).Get("name")
	assert.Equal(t, "Jane", name)

	byName, err := factory.Run(ctx, factory.StrategyAttributes, factory.Name("user"), nil, "loud")
	require.NoError(t, err)
	assert.Equal(t, 11, get(t, byName.(*factory.Values), "volume"))

	_, err = factory.Run(ctx, factory.StrategyBuild, factory.TargetType("ghost"), nil)
	assert.ErrorIs(t, err, factory.ErrUnknownFactory)

	factory.ResetAll()
	_, err = reg.Lookup("user")
	assert.ErrorIs(t, err, factory.ErrUnknownFactory)
}
