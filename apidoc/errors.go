package apidoc

import "github.com/teranos/docgraph/errors"

// Sentinel errors for the entity model.
// Use these with errors.Is() for error checking.
var (
	// ErrBadIdentifier indicates a dotted-name piece that does not match
	// the identifier grammar. This is a producer bug and is fatal.
	ErrBadIdentifier = errors.New("malformed identifier")

	// ErrEmptyName indicates an attempt to build a DottedName from no
	// identifiers at all.
	ErrEmptyName = errors.New("empty dotted name")

	// ErrSentinelMisuse indicates an unknown field value was used where a
	// concrete value is required. Opt.MustGet panics with an error
	// wrapping this sentinel; treating "unknown" as a value is a
	// programmer error and must fail loudly.
	ErrSentinelMisuse = errors.New("unknown value used where a known value is required")

	// ErrNotSubtype indicates an attempt to specialize an entity to a
	// kind that is not a subtype of its current kind.
	ErrNotSubtype = errors.New("cannot specialize to non-subtype")

	// ErrInconsistentHierarchy indicates C3 linearization found no valid
	// next candidate for a class hierarchy.
	ErrInconsistentHierarchy = errors.New("inconsistent class hierarchy")
)
