package docbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/docgraph/apidoc"
	"github.com/teranos/docgraph/docindex"
)

// liveFixture builds the inspector's view of module m: the class and
// its method, plus a runtime repr, but no source-level facts.
func liveFixture() (Source, *apidoc.ClassDoc) {
	method := &apidoc.RoutineDoc{}
	method.Posargs = apidoc.Known([]string{apidoc.UnknownVariadic})

	cls := &apidoc.ClassDoc{}
	methodVar := apidoc.NewVariableDoc("run")
	methodVar.Container = cls
	methodVar.Value = apidoc.Known[apidoc.ValueDoc](method)
	cls.LocalVariables = apidoc.Known(map[string]*apidoc.VariableDoc{"run": methodVar})
	cls.Repr = apidoc.Known("<class m.Worker at 0x1>")

	m := &apidoc.ModuleDoc{}
	clsVar := apidoc.NewVariableDoc("Worker")
	clsVar.Container = m
	clsVar.Value = apidoc.Known[apidoc.ValueDoc](cls)
	m.Variables = apidoc.Known(map[string]*apidoc.VariableDoc{"Worker": clsVar})

	return Source{Roots: []docindex.Root{{Name: apidoc.MustName("m"), Value: m}}}, cls
}

// staticFixture builds the parser's view: the same shape plus
// docstrings and the real signature.
func staticFixture() (Source, *apidoc.ClassDoc) {
	method := &apidoc.RoutineDoc{}
	method.Posargs = apidoc.Known([]string{"self", "count"})
	method.Docstring = apidoc.Known("Run the worker.")

	cls := &apidoc.ClassDoc{}
	methodVar := apidoc.NewVariableDoc("run")
	methodVar.Container = cls
	methodVar.Value = apidoc.Known[apidoc.ValueDoc](method)
	cls.LocalVariables = apidoc.Known(map[string]*apidoc.VariableDoc{"run": methodVar})
	cls.Docstring = apidoc.Known("A worker.")

	m := &apidoc.ModuleDoc{}
	m.Filename = apidoc.Known("m.py")
	clsVar := apidoc.NewVariableDoc("Worker")
	clsVar.Container = m
	clsVar.Value = apidoc.Known[apidoc.ValueDoc](cls)
	m.Variables = apidoc.Known(map[string]*apidoc.VariableDoc{"Worker": clsVar})

	return Source{Roots: []docindex.Root{{Name: apidoc.MustName("m"), Value: m}}}, cls
}

func TestBuildMergesBothSides(t *testing.T) {
	live, liveCls := liveFixture()
	static, staticCls := staticFixture()

	result, err := Build(live, static, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.BuildID)

	// The two views collapsed into one record.
	assert.True(t, apidoc.Same(liveCls, staticCls))
	cls := apidoc.Resolve(liveCls).(*apidoc.ClassDoc)
	assert.Equal(t, apidoc.Known("A worker."), cls.Docstring)
	assert.Equal(t, apidoc.Known("<class m.Worker at 0x1>"), cls.Repr)
	assert.Equal(t, "m.Worker", cls.CanonicalName.MustGet().String())

	// The uninspectable signature yielded to the parsed one.
	method := apidoc.Resolve(ix(t, result).GetValDoc(apidoc.MustName("m.Worker.run"))).(*apidoc.RoutineDoc)
	assert.Equal(t, []string{"self", "count"}, method.Posargs.MustGet())

	// Inheritance ran: the class has its resolved variable map and a
	// display order.
	assert.True(t, cls.Variables.IsKnown())
	assert.True(t, cls.SortedVariables.IsKnown())
}

func TestBuildSingleSide(t *testing.T) {
	static, staticCls := staticFixture()

	result, err := Build(Source{}, static, Options{})
	require.NoError(t, err)

	cls := apidoc.Resolve(staticCls).(*apidoc.ClassDoc)
	assert.Equal(t, "m.Worker", cls.CanonicalName.MustGet().String())
	assert.Len(t, result.Index.Roots(), 1)
}

func TestBuildPassesThroughOneSidedRoots(t *testing.T) {
	live, _ := liveFixture()

	other := &apidoc.ModuleDoc{}
	other.Variables = apidoc.Known(map[string]*apidoc.VariableDoc{})
	static := Source{Roots: []docindex.Root{{Name: apidoc.MustName("extra"), Value: other}}}

	result, err := Build(live, static, Options{})
	require.NoError(t, err)
	assert.Len(t, result.Index.Roots(), 2)
	assert.NotNil(t, result.Index.GetValDoc(apidoc.MustName("extra")))
	assert.NotNil(t, result.Index.GetValDoc(apidoc.MustName("m")))
}

func ix(t *testing.T, result *Result) *docindex.DocIndex {
	t.Helper()
	require.NotNil(t, result.Index)
	return result.Index
}
