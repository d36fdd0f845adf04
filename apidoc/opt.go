package apidoc

import "github.com/teranos/docgraph/errors"

// Opt wraps a field value with a third truth state: unknown.
//
// Every declared attribute of an entity starts out unknown and stays
// unknown until some producer or build phase determines it. Unknown is
// distinct from a known zero value: a module whose Docformat is
// Known("") has been determined to have no docformat, while the zero
// Opt means nobody has looked yet.
//
// The zero value is unknown.
type Opt[T any] struct {
	value T
	known bool
}

// Known wraps v as a known value.
func Known[T any](v T) Opt[T] {
	return Opt[T]{value: v, known: true}
}

// Unknown returns the unknown value. Equivalent to the zero Opt; spelled
// out for call sites that reset a field.
func Unknown[T any]() Opt[T] {
	return Opt[T]{}
}

// IsKnown reports whether the value has been determined.
func (o Opt[T]) IsKnown() bool {
	return o.known
}

// Get returns the value and whether it is known.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.known
}

// Or returns the value if known, def otherwise.
func (o Opt[T]) Or(def T) T {
	if o.known {
		return o.value
	}
	return def
}

// MustGet returns the value, and panics if it is unknown. Using an
// unknown value as if it were concrete is a programmer error; the panic
// wraps ErrSentinelMisuse.
func (o Opt[T]) MustGet() T {
	if !o.known {
		panic(errors.WithStack(ErrSentinelMisuse))
	}
	return o.value
}
