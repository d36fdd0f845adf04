package graphio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/docgraph/apidoc"
	"github.com/teranos/docgraph/docindex"
)

// fixture builds a small graph with sharing and a cycle: two variables
// bind the same class, and the class lists itself as a subclass.
func fixture() []docindex.Root {
	method := &apidoc.RoutineDoc{}
	method.Posargs = apidoc.Known([]string{"self", "n"})
	method.PosargDefaults = apidoc.Known([]apidoc.ValueDoc{nil, &apidoc.GenericValueDoc{}})
	method.Docstring = apidoc.Known("Do the thing.")

	cls := &apidoc.ClassDoc{}
	cls.CanonicalName = apidoc.Known(apidoc.MustName("m.C"))
	cls.Subclasses = apidoc.Known([]apidoc.ValueDoc{cls})
	methodVar := apidoc.NewVariableDoc("run")
	methodVar.Container = cls
	methodVar.Value = apidoc.Known[apidoc.ValueDoc](method)
	cls.LocalVariables = apidoc.Known(map[string]*apidoc.VariableDoc{"run": methodVar})

	m := &apidoc.ModuleDoc{}
	m.CanonicalName = apidoc.Known(apidoc.MustName("m"))
	m.IsPackage = apidoc.Known(false)
	m.Filename = apidoc.Known("m.py")

	clsVar := apidoc.NewVariableDoc("C")
	clsVar.Container = m
	clsVar.Value = apidoc.Known[apidoc.ValueDoc](cls)

	aliasVar := apidoc.NewVariableDoc("Alias")
	aliasVar.Container = m
	aliasVar.Value = apidoc.Known[apidoc.ValueDoc](cls)
	aliasVar.IsAlias = apidoc.Known(true)

	noneVar := apidoc.NewVariableDoc("nothing")
	noneVar.Container = m
	noneVar.Value = apidoc.Known[apidoc.ValueDoc](nil)

	m.Variables = apidoc.Known(map[string]*apidoc.VariableDoc{
		"C":       clsVar,
		"Alias":   aliasVar,
		"nothing": noneVar,
	})

	return []docindex.Root{{Name: apidoc.MustName("m"), Value: m}}
}

func roundTrip(t *testing.T, encode func(*bytes.Buffer, []docindex.Root) error,
	decode func(*bytes.Buffer) ([]docindex.Root, error)) []docindex.Root {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, fixture()))
	roots, err := decode(&buf)
	require.NoError(t, err)
	return roots
}

func verify(t *testing.T, roots []docindex.Root) {
	require.Len(t, roots, 1)
	assert.Equal(t, "m", roots[0].Name.String())

	m, ok := roots[0].Value.(*apidoc.ModuleDoc)
	require.True(t, ok)
	assert.Equal(t, apidoc.Known("m.py"), m.Filename)
	assert.Equal(t, apidoc.Known(false), m.IsPackage)
	assert.False(t, m.Docformat.IsKnown())

	vars := m.Variables.MustGet()
	require.Len(t, vars, 3)

	// Shared value survives as one record.
	clsVal := vars["C"].Value.MustGet()
	aliasVal := vars["Alias"].Value.MustGet()
	assert.Same(t, clsVal, aliasVal)
	assert.Equal(t, apidoc.Known(true), vars["Alias"].IsAlias)

	// Known-nil stays known-nil, distinct from unknown.
	nothing, known := vars["nothing"].Value.Get()
	require.True(t, known)
	assert.Nil(t, nothing)
	assert.False(t, vars["C"].IsAlias.IsKnown())

	cls, ok := clsVal.(*apidoc.ClassDoc)
	require.True(t, ok)
	assert.Equal(t, "m.C", cls.CanonicalName.MustGet().String())

	// The cycle closed back on the same record.
	subs := cls.Subclasses.MustGet()
	require.Len(t, subs, 1)
	assert.Same(t, apidoc.ValueDoc(cls), subs[0])

	method, ok := cls.LocalVariables.MustGet()["run"].Value.MustGet().(*apidoc.RoutineDoc)
	require.True(t, ok)
	assert.Equal(t, []string{"self", "n"}, method.Posargs.MustGet())
	defaults := method.PosargDefaults.MustGet()
	require.Len(t, defaults, 2)
	assert.Nil(t, defaults[0])
	assert.NotNil(t, defaults[1])
	assert.Equal(t, apidoc.Known("Do the thing."), method.Docstring)
}

func TestRoundTripJSON(t *testing.T) {
	verify(t, roundTrip(t,
		func(buf *bytes.Buffer, roots []docindex.Root) error { return EncodeJSON(buf, roots) },
		func(buf *bytes.Buffer) ([]docindex.Root, error) { return DecodeJSON(buf) },
	))
}

func TestRoundTripYAML(t *testing.T) {
	verify(t, roundTrip(t,
		func(buf *bytes.Buffer, roots []docindex.Root) error { return EncodeYAML(buf, roots) },
		func(buf *bytes.Buffer) ([]docindex.Root, error) { return DecodeYAML(buf) },
	))
}

func TestDecodeRejectsBadDocuments(t *testing.T) {
	t.Run("wrong format", func(t *testing.T) {
		_, err := Decode(&Document{Format: "docgraph/v99"})
		assert.Error(t, err)
	})

	t.Run("dangling reference", func(t *testing.T) {
		doc := &Document{
			Format: FormatV1,
			Roots:  []RootRef{{Name: "m", Value: 0}},
			Values: []ValueRec{{ID: 0, Kind: "module", Variables: map[string]int{"x": 42}}},
		}
		_, err := Decode(doc)
		assert.Error(t, err)
	})

	t.Run("unknown kind", func(t *testing.T) {
		doc := &Document{
			Format: FormatV1,
			Values: []ValueRec{{ID: 0, Kind: "widget"}},
		}
		_, err := Decode(doc)
		assert.Error(t, err)
	})
}

func TestEncodeResolvesForwardedHandles(t *testing.T) {
	winner := &apidoc.ModuleDoc{}
	winner.CanonicalName = apidoc.Known(apidoc.MustName("m"))
	winner.Variables = apidoc.Known(map[string]*apidoc.VariableDoc{})
	loser := &apidoc.ModuleDoc{}
	apidoc.TakeOver(winner, loser)

	// Encoding through the stale handle serializes the surviving record.
	doc, err := Encode([]docindex.Root{{Name: apidoc.MustName("m"), Value: loser}})
	require.NoError(t, err)
	require.Len(t, doc.Values, 1)
	require.NotNil(t, doc.Values[0].CanonicalName)
	assert.Equal(t, "m", *doc.Values[0].CanonicalName)
}
