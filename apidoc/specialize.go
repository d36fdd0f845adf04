package apidoc

import "github.com/teranos/docgraph/errors"

// SpecializeTo converts a generic value in place into the given more
// specific kind. The new record takes ownership of the old one's common
// state and the old handle is forwarded to it, so existing references
// keep working. Specializing a record to its own kind is a no-op.
// Specializing to a non-subtype is a producer bug and returns
// ErrNotSubtype.
func SpecializeTo(v ValueDoc, kind Kind) (ValueDoc, error) {
	r := Resolve(v)
	if r.Kind() == kind {
		return r, nil
	}
	if r.Kind() != KindValue || kind == KindValue {
		return nil, errors.Wrapf(ErrNotSubtype, "%s to %s", r.Kind(), kind)
	}

	base := *r.Base()
	base.fwd = nil

	var specialized ValueDoc
	switch kind {
	case KindModule:
		specialized = &ModuleDoc{ValueBase: base}
	case KindClass:
		specialized = &ClassDoc{ValueBase: base}
	case KindRoutine:
		specialized = &RoutineDoc{ValueBase: base}
	case KindProperty:
		specialized = &PropertyDoc{ValueBase: base}
	default:
		return nil, errors.Wrapf(ErrNotSubtype, "%s to %s", r.Kind(), kind)
	}

	r.Base().fwd = specialized
	return specialized, nil
}
