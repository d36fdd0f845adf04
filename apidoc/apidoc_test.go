package apidoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpt(t *testing.T) {
	var unknown Opt[int]
	assert.False(t, unknown.IsKnown())
	_, ok := unknown.Get()
	assert.False(t, ok)
	assert.Equal(t, 7, unknown.Or(7))
	assert.Panics(t, func() { unknown.MustGet() })

	known := Known(42)
	assert.True(t, known.IsKnown())
	v, ok := known.Get()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, 42, known.Or(7))

	// Known(zero) is still known; unknown and known-zero are distinct.
	zero := Known(0)
	assert.True(t, zero.IsKnown())
	assert.Equal(t, 0, zero.Or(7))
}

func TestDefaultPublic(t *testing.T) {
	tests := []struct {
		name   string
		public bool
	}{
		{"plain", true},
		{"_private", false},
		{"__mangled", false},
		{"__dunder__", true},
		{"trailing_", true},
		{"_both_", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.public, DefaultPublic(tt.name))
			assert.Equal(t, Known(tt.public), NewVariableDoc(tt.name).IsPublic)
		})
	}
}

func TestTakeOverSharesState(t *testing.T) {
	a := &GenericValueDoc{}
	b := &GenericValueDoc{}
	b.Repr = Known("<thing>")

	assert.False(t, Same(a, b))
	TakeOver(b, a)
	assert.True(t, Same(a, b))

	// Mutation through either handle is visible through both.
	Resolve(a).Base().Filename = Known("thing.py")
	f, ok := Resolve(b).Base().Filename.Get()
	require.True(t, ok)
	assert.Equal(t, "thing.py", f)

	// Idempotent; chains resolve fully.
	c := &GenericValueDoc{}
	TakeOver(c, b)
	assert.Same(t, c, Resolve(a).(*GenericValueDoc))
}

func TestTakeOverVar(t *testing.T) {
	a := NewVariableDoc("x")
	b := NewVariableDoc("x")
	b.Summary = Known("the x")

	TakeOverVar(b, a)
	assert.True(t, SameVar(a, b))
	s, ok := a.Resolve().Summary.Get()
	require.True(t, ok)
	assert.Equal(t, "the x", s)
}

func TestSpecializeTo(t *testing.T) {
	t.Run("generic to class", func(t *testing.T) {
		g := &GenericValueDoc{}
		g.CanonicalName = Known(MustName("m.C"))
		g.Repr = Known("<class m.C>")
		handle := ValueDoc(g)

		specialized, err := SpecializeTo(g, KindClass)
		require.NoError(t, err)
		cls, ok := specialized.(*ClassDoc)
		require.True(t, ok)

		// Common state carried over, old handle forwards to the new record.
		assert.Equal(t, Known(MustName("m.C")), cls.CanonicalName)
		assert.Equal(t, Known("<class m.C>"), cls.Repr)
		assert.Same(t, ValueDoc(cls), Resolve(handle))
	})

	t.Run("same kind is a no-op", func(t *testing.T) {
		m := &ModuleDoc{}
		out, err := SpecializeTo(m, KindModule)
		require.NoError(t, err)
		assert.Same(t, ValueDoc(m), out)
	})

	t.Run("cross-kind is rejected", func(t *testing.T) {
		m := &ModuleDoc{}
		_, err := SpecializeTo(m, KindClass)
		assert.ErrorIs(t, err, ErrNotSubtype)
	})

	t.Run("despecialization is rejected", func(t *testing.T) {
		c := &ClassDoc{}
		_, err := SpecializeTo(c, KindValue)
		assert.ErrorIs(t, err, ErrNotSubtype)
	})
}

func TestKindSubtypeOf(t *testing.T) {
	assert.True(t, KindClass.SubtypeOf(KindValue))
	assert.True(t, KindClass.SubtypeOf(KindClass))
	assert.False(t, KindValue.SubtypeOf(KindClass))
	assert.False(t, KindModule.SubtypeOf(KindClass))
}

func TestVariablesOf(t *testing.T) {
	cls := &ClassDoc{}
	shared := NewVariableDoc("b")
	cls.Variables = Known(map[string]*VariableDoc{
		"b": shared,
		"a": NewVariableDoc("a"),
	})
	cls.LocalVariables = Known(map[string]*VariableDoc{
		"b": NewVariableDoc("b"), // already present under "b"; ignored
		"c": NewVariableDoc("c"),
	})

	vars := VariablesOf(cls)
	require.Len(t, vars, 3)
	assert.Equal(t, "a", vars[0].Name)
	assert.Equal(t, "b", vars[1].Name)
	assert.Same(t, shared, vars[1])
	assert.Equal(t, "c", vars[2].Name)

	assert.Nil(t, VariablesOf(&RoutineDoc{}))
}

func TestStructuralLinksOf(t *testing.T) {
	base := &ClassDoc{}
	sub := &ClassDoc{}
	sub.Bases = Known([]ValueDoc{base})
	base.Subclasses = Known([]ValueDoc{sub})

	assert.Equal(t, []ValueDoc{base}, StructuralLinksOf(sub))
	assert.Equal(t, []ValueDoc{sub}, StructuralLinksOf(base))

	getter := &RoutineDoc{}
	prop := &PropertyDoc{
		Fget: Known[ValueDoc](getter),
		Fset: Known[ValueDoc](nil),
	}
	assert.Equal(t, []ValueDoc{getter}, StructuralLinksOf(prop))

	pkg := &ModuleDoc{}
	mod := &ModuleDoc{Package: Known(pkg)}
	assert.Equal(t, []ValueDoc{pkg}, StructuralLinksOf(mod))
}
