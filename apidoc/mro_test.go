package apidoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClass(name string, bases ...ValueDoc) *ClassDoc {
	c := &ClassDoc{}
	c.CanonicalName = Known(MustName(name))
	if bases != nil {
		c.Bases = Known(bases)
	}
	return c
}

func mroNames(t *testing.T, mro []*ClassDoc) []string {
	t.Helper()
	names := make([]string, len(mro))
	for i, c := range mro {
		names[i] = c.CanonicalName.MustGet().String()
	}
	return names
}

func alwaysC3(*ClassDoc) bool { return true }
func neverC3(*ClassDoc) bool  { return false }

func TestMRODiamond(t *testing.T) {
	// object <- Base <- {A, B} <- C
	object := newClass("object")
	base := newClass("m.Base", object)
	a := newClass("m.A", base)
	b := newClass("m.B", base)
	c := newClass("m.C", a, b)

	t.Run("c3", func(t *testing.T) {
		mro, err := c.MRO(alwaysC3)
		require.NoError(t, err)
		assert.Equal(t, []string{"m.C", "m.A", "m.B", "m.Base", "object"}, mroNames(t, mro))
	})

	t.Run("legacy depth first", func(t *testing.T) {
		mro, err := c.MRO(neverC3)
		require.NoError(t, err)
		assert.Equal(t, []string{"m.C", "m.A", "m.Base", "object", "m.B"}, mroNames(t, mro))
	})
}

func TestMROInconsistent(t *testing.T) {
	// C(A, B) with B(A): fine. C(A, B) where A(B) and bases (B, A) in
	// conflicting orders is unlinearizable:
	//   X(A, B), Y(B, A), Z(X, Y)
	a := newClass("m.A")
	b := newClass("m.B")
	x := newClass("m.X", a, b)
	y := newClass("m.Y", b, a)
	z := newClass("m.Z", x, y)

	_, err := z.MRO(alwaysC3)
	assert.ErrorIs(t, err, ErrInconsistentHierarchy)

	// The legacy order still yields a best-effort result.
	mro, err := z.MRO(neverC3)
	require.NoError(t, err)
	assert.Equal(t, []string{"m.Z", "m.X", "m.A", "m.B", "m.Y"}, mroNames(t, mro))
}

func TestMROCycle(t *testing.T) {
	a := newClass("m.A")
	b := newClass("m.B", a)
	a.Bases = Known([]ValueDoc{b})

	_, err := a.MRO(alwaysC3)
	assert.ErrorIs(t, err, ErrInconsistentHierarchy)

	mro, err := a.MRO(neverC3)
	require.NoError(t, err)
	assert.Equal(t, []string{"m.A", "m.B"}, mroNames(t, mro))
}

func TestMROSkipsNonClassBases(t *testing.T) {
	opaque := &GenericValueDoc{}
	base := newClass("m.Base")
	c := newClass("m.C", opaque, base)

	mro, err := c.MRO(alwaysC3)
	require.NoError(t, err)
	assert.Equal(t, []string{"m.C", "m.Base"}, mroNames(t, mro))
}

func TestRootedAt(t *testing.T) {
	object := newClass("object")
	base := newClass("m.Base", object)
	c := newClass("m.C", base)
	orphan := newClass("m.Orphan")

	assert.True(t, c.RootedAt(MustName("object")))
	assert.True(t, object.RootedAt(MustName("object")))
	assert.False(t, orphan.RootedAt(MustName("object")))

	// Cyclic hierarchies terminate.
	x := newClass("m.X")
	y := newClass("m.Y", x)
	x.Bases = Known([]ValueDoc{y})
	assert.False(t, x.RootedAt(MustName("object")))

	pred := RootedAtPredicate(MustName("object"))
	assert.True(t, pred(c))
	assert.False(t, pred(orphan))
}

func TestMROFollowsMergedBases(t *testing.T) {
	// A base referenced through a stale handle participates via its
	// resolved record.
	object := newClass("object")
	stale := newClass("m.Base")
	real := newClass("m.Base", object)
	TakeOver(real, stale)

	c := newClass("m.C", stale)
	mro, err := c.MRO(alwaysC3)
	require.NoError(t, err)
	assert.Equal(t, []string{"m.C", "m.Base", "object"}, mroNames(t, mro))
	assert.Same(t, real, mro[1])
}
