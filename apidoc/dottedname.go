package apidoc

import (
	"regexp"
	"slices"
	"strings"

	"github.com/teranos/docgraph/errors"
)

// UnreachableMarker is the reserved identifier that prefixes synthetic
// names for entities reachable only through structural edges (or not at
// all). Collisions among synthetic names are disambiguated with "-2",
// "-3", ... suffixes on the final piece.
const UnreachableMarker = "??"

// identifierRE matches one dotted-name piece: a regular identifier, the
// unreachable marker, an optional trailing prime (used when renaming a
// self-shadowed value), and an optional numeric dedup suffix.
var identifierRE = regexp.MustCompile(`^(\?\?|[a-zA-Z_][a-zA-Z0-9_]*'?)(-[0-9]+)?$`)

// DottedName is an identifier path such as "pkg.module.Class.method".
// It is an immutable value type; all operations return new names.
type DottedName struct {
	parts []string
}

// NewDottedName builds a name from the given pieces. Each piece may
// itself contain dots and is split; every resulting identifier is
// validated against the identifier grammar. Building from zero pieces
// is an error.
func NewDottedName(pieces ...string) (DottedName, error) {
	var parts []string
	for _, piece := range pieces {
		for _, ident := range strings.Split(piece, ".") {
			if !identifierRE.MatchString(ident) {
				return DottedName{}, errors.Wrapf(ErrBadIdentifier, "%q in %q", ident, piece)
			}
			parts = append(parts, ident)
		}
	}
	if len(parts) == 0 {
		return DottedName{}, errors.WithStack(ErrEmptyName)
	}
	return DottedName{parts: parts}, nil
}

// MustName is NewDottedName for names known to be valid; it panics on a
// malformed piece. Intended for fixtures and constants.
func MustName(pieces ...string) DottedName {
	n, err := NewDottedName(pieces...)
	if err != nil {
		panic(err)
	}
	return n
}

// Append concatenates other onto n.
func (n DottedName) Append(other DottedName) DottedName {
	parts := make([]string, 0, len(n.parts)+len(other.parts))
	parts = append(parts, n.parts...)
	parts = append(parts, other.parts...)
	return DottedName{parts: parts}
}

// Child returns n extended with one more identifier.
func (n DottedName) Child(ident string) (DottedName, error) {
	if !identifierRE.MatchString(ident) {
		return DottedName{}, errors.Wrapf(ErrBadIdentifier, "%q", ident)
	}
	parts := make([]string, 0, len(n.parts)+1)
	parts = append(parts, n.parts...)
	parts = append(parts, ident)
	return DottedName{parts: parts}, nil
}

// Len returns the number of identifiers in the name. The zero
// DottedName has length 0 and is not a valid name.
func (n DottedName) Len() int {
	return len(n.parts)
}

// IsZero reports whether n is the zero (empty, invalid) name.
func (n DottedName) IsZero() bool {
	return len(n.parts) == 0
}

// At returns the i'th identifier.
func (n DottedName) At(i int) string {
	return n.parts[i]
}

// Last returns the final identifier.
func (n DottedName) Last() string {
	return n.parts[len(n.parts)-1]
}

// Slice returns the sub-name n[i:j]. The result is the zero name when
// the range is empty.
func (n DottedName) Slice(i, j int) DottedName {
	if i >= j {
		return DottedName{}
	}
	return DottedName{parts: slices.Clone(n.parts[i:j])}
}

// Container returns all but the last identifier. For a single-identifier
// name there is no container and ok is false.
func (n DottedName) Container() (DottedName, bool) {
	if len(n.parts) <= 1 {
		return DottedName{}, false
	}
	return DottedName{parts: slices.Clone(n.parts[:len(n.parts)-1])}, true
}

// Dominates reports whether n is a prefix of other. Every name dominates
// itself.
func (n DottedName) Dominates(other DottedName) bool {
	if len(n.parts) > len(other.parts) {
		return false
	}
	return slices.Equal(n.parts, other.parts[:len(n.parts)])
}

// Equal reports structural equality over the identifier sequence.
func (n DottedName) Equal(other DottedName) bool {
	return slices.Equal(n.parts, other.parts)
}

// Compare orders names lexicographically by identifier sequence.
func (n DottedName) Compare(other DottedName) int {
	return slices.Compare(n.parts, other.parts)
}

// String returns the dotted form. It doubles as the hash/map key
// representation: two names are Equal iff their Strings are equal.
func (n DottedName) String() string {
	return strings.Join(n.parts, ".")
}
