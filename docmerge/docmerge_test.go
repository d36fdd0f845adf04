package docmerge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/docgraph/apidoc"
	"github.com/teranos/docgraph/report"
)

func newMerger(p Precedence) *Merger {
	return New(p, &report.List{}, nil)
}

func named(v apidoc.ValueDoc, name string) apidoc.ValueDoc {
	v.Base().CanonicalName = apidoc.Known(apidoc.MustName(name))
	return v
}

func TestMergeSharesIdentity(t *testing.T) {
	live := &apidoc.ModuleDoc{}
	live.Docstring = apidoc.Known("live docstring")
	static := &apidoc.ModuleDoc{}
	static.Repr = apidoc.Known("<module M>")
	static.Filename = apidoc.Known("m.py")

	m := newMerger(Live)
	merged := m.Merge(live, static)

	assert.True(t, apidoc.Same(live, static))
	assert.Same(t, apidoc.Resolve(live), merged)

	// Attributes combine across sides.
	base := merged.Base()
	assert.Equal(t, apidoc.Known("<module M>"), base.Repr)
	assert.Equal(t, apidoc.Known("m.py"), base.Filename)
	assert.Equal(t, apidoc.Known("live docstring"), merged.Doc().Docstring)

	// Merging again is a no-op.
	assert.Same(t, merged, m.Merge(live, static))
	assert.Zero(t, m.Warnings().Len())
}

func TestMergeStaticAttributesWin(t *testing.T) {
	live := &apidoc.ModuleDoc{}
	live.Repr = apidoc.Known("<live repr>")
	live.Docformat = apidoc.Known("plaintext")
	live.IsPackage = apidoc.Known(false)
	static := &apidoc.ModuleDoc{}
	static.Repr = apidoc.Known("<static repr>")
	static.Docformat = apidoc.Known("epytext")
	static.IsPackage = apidoc.Known(true)

	merged := newMerger(Live).Merge(live, static).(*apidoc.ModuleDoc)

	// Source-level facts prefer the static side even under live default.
	assert.Equal(t, apidoc.Known("<static repr>"), merged.Repr)
	assert.Equal(t, apidoc.Known("epytext"), merged.Docformat)
	assert.Equal(t, apidoc.Known(true), merged.IsPackage)
}

func TestMergeImportedFromPrefersStatic(t *testing.T) {
	// Import provenance is a source-level fact; only the parsed side
	// knows it reliably.
	live := &apidoc.GenericValueDoc{}
	live.ImportedFrom = apidoc.Known(apidoc.MustName("pkg.reexport"))
	static := &apidoc.GenericValueDoc{}
	static.ImportedFrom = apidoc.Known(apidoc.MustName("pkg.impl.helper"))

	merged := newMerger(Live).Merge(live, static)
	assert.Equal(t, apidoc.Known(apidoc.MustName("pkg.impl.helper")), merged.Base().ImportedFrom)
}

func TestMergeSpecializesGenericSide(t *testing.T) {
	live := &apidoc.ClassDoc{}
	static := &apidoc.GenericValueDoc{}
	static.Filename = apidoc.Known("c.py")
	staticHandle := apidoc.ValueDoc(static)

	merged := newMerger(Live).Merge(live, static)

	cls, ok := merged.(*apidoc.ClassDoc)
	require.True(t, ok)
	assert.Same(t, apidoc.Resolve(staticHandle), apidoc.ValueDoc(cls))
	assert.Equal(t, apidoc.Known("c.py"), cls.Filename)
}

func TestMergeRejectsIncompatiblePairs(t *testing.T) {
	t.Run("kind mismatch", func(t *testing.T) {
		live := &apidoc.ModuleDoc{}
		static := &apidoc.ClassDoc{}
		m := newMerger(Live)
		merged := m.Merge(live, static)

		assert.Same(t, apidoc.ValueDoc(live), merged)
		assert.False(t, apidoc.Same(live, static))
		assert.NotEmpty(t, m.Warnings().ByKind(report.MergeConflict))
	})

	t.Run("name mismatch", func(t *testing.T) {
		live := named(&apidoc.ModuleDoc{}, "M")
		static := named(&apidoc.ModuleDoc{}, "N")
		m := newMerger(Static)
		merged := m.Merge(live, static)

		assert.Same(t, apidoc.ValueDoc(static), merged)
		assert.False(t, apidoc.Same(live, static))
		assert.Equal(t, 1, m.Warnings().Len())
	})

	t.Run("raw mismatch", func(t *testing.T) {
		live := &apidoc.ModuleDoc{}
		live.Raw = apidoc.Known[any](1)
		static := &apidoc.ModuleDoc{}
		static.Raw = apidoc.Known[any](2)
		m := newMerger(Live)
		m.Merge(live, static)

		assert.False(t, apidoc.Same(live, static))
		assert.Equal(t, 1, m.Warnings().Len())
	})

	t.Run("matching raw merges", func(t *testing.T) {
		live := &apidoc.ModuleDoc{}
		live.Raw = apidoc.Known[any](7)
		static := &apidoc.ModuleDoc{}
		static.Raw = apidoc.Known[any](7)
		m := newMerger(Live)
		m.Merge(live, static)
		assert.True(t, apidoc.Same(live, static))
	})
}

func TestMergeVariableMaps(t *testing.T) {
	liveOnly := apidoc.NewVariableDoc("live_only")
	staticOnly := apidoc.NewVariableDoc("static_only")
	liveShared := apidoc.NewVariableDoc("shared")
	liveShared.Summary = apidoc.Known("live summary")
	staticShared := apidoc.NewVariableDoc("shared")
	staticShared.IsImported = apidoc.Known(true)

	live := &apidoc.ModuleDoc{}
	live.Variables = apidoc.Known(map[string]*apidoc.VariableDoc{
		"live_only": liveOnly,
		"shared":    liveShared,
	})
	static := &apidoc.ModuleDoc{}
	static.Variables = apidoc.Known(map[string]*apidoc.VariableDoc{
		"static_only": staticOnly,
		"shared":      staticShared,
	})

	merged := newMerger(Live).Merge(live, static).(*apidoc.ModuleDoc)
	vars := merged.Variables.MustGet()
	require.Len(t, vars, 3)

	assert.Same(t, liveOnly, vars["live_only"])
	assert.Same(t, staticOnly, vars["static_only"])

	// Shared key merged into one binding carrying both sides' facts.
	assert.True(t, apidoc.SameVar(liveShared, staticShared))
	shared := vars["shared"]
	assert.Equal(t, apidoc.Known("live summary"), shared.Summary)
	assert.Equal(t, apidoc.Known(true), shared.IsImported)
}

func TestMergeBases(t *testing.T) {
	t.Run("matching bases merge pairwise", func(t *testing.T) {
		liveBase := named(&apidoc.ClassDoc{}, "m.Base")
		staticBase := named(&apidoc.ClassDoc{}, "m.Base")
		live := &apidoc.ClassDoc{}
		live.Bases = apidoc.Known([]apidoc.ValueDoc{liveBase})
		static := &apidoc.ClassDoc{}
		static.Bases = apidoc.Known([]apidoc.ValueDoc{staticBase})

		m := newMerger(Live)
		m.Merge(live, static)

		assert.True(t, apidoc.Same(liveBase, staticBase))
		assert.Zero(t, m.Warnings().Len())
	})

	t.Run("disagreeing lengths keep preferred side", func(t *testing.T) {
		liveBase := named(&apidoc.ClassDoc{}, "m.Base")
		live := &apidoc.ClassDoc{}
		live.Bases = apidoc.Known([]apidoc.ValueDoc{liveBase})
		static := &apidoc.ClassDoc{}
		static.Bases = apidoc.Known([]apidoc.ValueDoc{})

		m := newMerger(Live)
		merged := m.Merge(live, static).(*apidoc.ClassDoc)

		bases := merged.Bases.MustGet()
		require.Len(t, bases, 1)
		assert.Same(t, apidoc.Resolve(liveBase), apidoc.Resolve(bases[0]))
		assert.NotEmpty(t, m.Warnings().ByKind(report.MergeConflict))
	})
}

func TestMergeSignature(t *testing.T) {
	t.Run("unknown live signature yields to static", func(t *testing.T) {
		live := &apidoc.RoutineDoc{}
		live.Posargs = apidoc.Known([]string{apidoc.UnknownVariadic})
		static := &apidoc.RoutineDoc{}
		static.Posargs = apidoc.Known([]string{"self", "x"})
		static.PosargDefaults = apidoc.Known([]apidoc.ValueDoc{nil, &apidoc.GenericValueDoc{}})

		merged := newMerger(Live).Merge(live, static).(*apidoc.RoutineDoc)

		assert.Equal(t, []string{"self", "x"}, merged.Posargs.MustGet())
		defaults := merged.PosargDefaults.MustGet()
		require.Len(t, defaults, 2)
		assert.Nil(t, defaults[0])
		assert.NotNil(t, defaults[1])
	})

	t.Run("disagreeing signatures keep live under live precedence", func(t *testing.T) {
		live := &apidoc.RoutineDoc{}
		live.Posargs = apidoc.Known([]string{"a", "b"})
		static := &apidoc.RoutineDoc{}
		static.Posargs = apidoc.Known([]string{"x"})

		m := newMerger(Live)
		merged := m.Merge(live, static).(*apidoc.RoutineDoc)

		assert.Equal(t, []string{"a", "b"}, merged.Posargs.MustGet())
		assert.Equal(t, 1, m.Warnings().Len())
	})

	t.Run("disagreeing signatures keep static under static precedence", func(t *testing.T) {
		live := &apidoc.RoutineDoc{}
		live.Posargs = apidoc.Known([]string{"a", "b"})
		static := &apidoc.RoutineDoc{}
		static.Posargs = apidoc.Known([]string{"self", "a", "b"})
		static.PosargDefaults = apidoc.Known([]apidoc.ValueDoc{nil, nil, &apidoc.GenericValueDoc{}})

		m := newMerger(Static)
		merged := m.Merge(live, static).(*apidoc.RoutineDoc)

		assert.Equal(t, []string{"self", "a", "b"}, merged.Posargs.MustGet())
		require.Len(t, merged.PosargDefaults.MustGet(), 3)
		assert.Equal(t, 1, m.Warnings().Len())
	})

	t.Run("defaults merge positionally", func(t *testing.T) {
		liveDefault := &apidoc.GenericValueDoc{}
		staticDefault := &apidoc.GenericValueDoc{}
		staticDefault.Descr = apidoc.Known("taken from source")
		live := &apidoc.RoutineDoc{}
		live.Posargs = apidoc.Known([]string{"x"})
		live.PosargDefaults = apidoc.Known([]apidoc.ValueDoc{liveDefault})
		static := &apidoc.RoutineDoc{}
		static.Posargs = apidoc.Known([]string{"x"})
		static.PosargDefaults = apidoc.Known([]apidoc.ValueDoc{staticDefault})

		merged := newMerger(Live).Merge(live, static).(*apidoc.RoutineDoc)
		assert.True(t, apidoc.Same(liveDefault, staticDefault))

		// The static side's documentation survives on the merged default.
		defaults := merged.PosargDefaults.MustGet()
		require.Len(t, defaults, 1)
		assert.Equal(t, apidoc.Known("taken from source"), apidoc.Resolve(defaults[0]).Doc().Descr)
	})
}

func TestMergeValueSlot(t *testing.T) {
	t.Run("known nil follows precedence", func(t *testing.T) {
		liveVar := apidoc.NewVariableDoc("x")
		liveVar.Value = apidoc.Known[apidoc.ValueDoc](nil)
		staticVar := apidoc.NewVariableDoc("x")
		staticVar.Value = apidoc.Known[apidoc.ValueDoc](&apidoc.GenericValueDoc{})

		merged := newMerger(Static).MergeVar(liveVar, staticVar)
		v, known := merged.Value.Get()
		require.True(t, known)
		assert.NotNil(t, v)
	})

	t.Run("both values merge recursively", func(t *testing.T) {
		liveVal := &apidoc.RoutineDoc{}
		staticVal := &apidoc.RoutineDoc{}
		liveVar := apidoc.NewVariableDoc("f")
		liveVar.Value = apidoc.Known[apidoc.ValueDoc](liveVal)
		staticVar := apidoc.NewVariableDoc("f")
		staticVar.Value = apidoc.Known[apidoc.ValueDoc](staticVal)

		newMerger(Live).MergeVar(liveVar, staticVar)
		assert.True(t, apidoc.Same(liveVal, staticVal))
	})
}

func TestMergeCyclicGraphs(t *testing.T) {
	// Classes that appear in their own subclass lists on both sides.
	liveCls := &apidoc.ClassDoc{}
	named(liveCls, "m.C")
	liveCls.Subclasses = apidoc.Known([]apidoc.ValueDoc{liveCls})
	staticCls := &apidoc.ClassDoc{}
	named(staticCls, "m.C")
	staticCls.Subclasses = apidoc.Known([]apidoc.ValueDoc{staticCls})

	liveVar := apidoc.NewVariableDoc("C")
	liveVar.Value = apidoc.Known[apidoc.ValueDoc](liveCls)
	staticVar := apidoc.NewVariableDoc("C")
	staticVar.Value = apidoc.Known[apidoc.ValueDoc](staticCls)

	live := &apidoc.ModuleDoc{}
	live.Variables = apidoc.Known(map[string]*apidoc.VariableDoc{"C": liveVar})
	static := &apidoc.ModuleDoc{}
	static.Variables = apidoc.Known(map[string]*apidoc.VariableDoc{"C": staticVar})

	m := newMerger(Live)
	m.Merge(live, static)

	assert.True(t, apidoc.Same(liveCls, staticCls))
	assert.True(t, apidoc.Same(live, static))
}

func TestMergePropertyAccessors(t *testing.T) {
	liveGetter := &apidoc.RoutineDoc{}
	staticGetter := &apidoc.RoutineDoc{}
	live := &apidoc.PropertyDoc{Fget: apidoc.Known[apidoc.ValueDoc](liveGetter)}
	static := &apidoc.PropertyDoc{
		Fget: apidoc.Known[apidoc.ValueDoc](staticGetter),
		Fset: apidoc.Known[apidoc.ValueDoc](nil),
	}

	merged := newMerger(Live).Merge(live, static).(*apidoc.PropertyDoc)

	assert.True(t, apidoc.Same(liveGetter, staticGetter))
	fset, known := merged.Fset.Get()
	require.True(t, known)
	assert.Nil(t, fset)
}
