package apidoc

import "github.com/teranos/docgraph/errors"

// RootedAt reports whether the class hierarchy starting at c reaches a
// class whose canonical name equals root (checking c itself first).
// Cycle-safe.
func (c *ClassDoc) RootedAt(root DottedName) bool {
	return c.rootedAt(root, map[*ClassDoc]bool{})
}

func (c *ClassDoc) rootedAt(root DottedName, seen map[*ClassDoc]bool) bool {
	c = Resolve(c).(*ClassDoc)
	if seen[c] {
		return false
	}
	seen[c] = true
	if name, known := c.CanonicalName.Get(); known && name.Equal(root) {
		return true
	}
	for _, base := range c.baseClasses() {
		if base.rootedAt(root, seen) {
			return true
		}
	}
	return false
}

// RootedAtPredicate adapts RootedAt into the per-class predicate MRO
// expects, for hierarchies whose universal base has the given name.
func RootedAtPredicate(root DottedName) func(*ClassDoc) bool {
	return func(c *ClassDoc) bool { return c.RootedAt(root) }
}

// MRO computes the method resolution order for c.
//
// Classes for which isLinearizable returns true get the C3
// linearization; C3 fails with ErrInconsistentHierarchy when no valid
// next candidate exists. All other classes get the legacy depth-first
// left-to-right order, which is best-effort only: it keeps first-seen
// positions and skips repeats rather than reordering, and carries no
// formal correctness guarantee.
func (c *ClassDoc) MRO(isLinearizable func(*ClassDoc) bool) ([]*ClassDoc, error) {
	c = Resolve(c).(*ClassDoc)
	if isLinearizable(c) {
		return c.c3MRO(isLinearizable, map[*ClassDoc]bool{})
	}
	var mro []*ClassDoc
	c.legacyMRO(&mro, map[*ClassDoc]bool{})
	return mro, nil
}

// legacyMRO appends c and then its bases depth-first, left to right.
func (c *ClassDoc) legacyMRO(mro *[]*ClassDoc, seen map[*ClassDoc]bool) {
	c = Resolve(c).(*ClassDoc)
	if seen[c] {
		return
	}
	seen[c] = true
	*mro = append(*mro, c)
	for _, base := range c.baseClasses() {
		base.legacyMRO(mro, seen)
	}
}

// c3MRO computes the C3 linearization: the merge of [c], the C3 MRO of
// each base in order, and the base list itself.
func (c *ClassDoc) c3MRO(isLinearizable func(*ClassDoc) bool, inProgress map[*ClassDoc]bool) ([]*ClassDoc, error) {
	c = Resolve(c).(*ClassDoc)
	if inProgress[c] {
		return nil, errors.Wrapf(ErrInconsistentHierarchy,
			"%s is its own ancestor", c.CanonicalName.Or(DottedName{}))
	}
	inProgress[c] = true
	defer delete(inProgress, c)

	bases := c.baseClasses()
	seqs := [][]*ClassDoc{{c}}
	for _, base := range bases {
		sub, err := base.c3MRO(isLinearizable, inProgress)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, sub)
	}
	if len(bases) > 0 {
		seqs = append(seqs, append([]*ClassDoc(nil), bases...))
	}
	return c3Merge(seqs)
}

// c3Merge repeatedly selects the earliest candidate head across all
// non-empty sequences that does not occur in the tail of any sequence.
func c3Merge(seqs [][]*ClassDoc) ([]*ClassDoc, error) {
	var result []*ClassDoc
	for {
		nonempty := seqs[:0:0]
		for _, seq := range seqs {
			if len(seq) > 0 {
				nonempty = append(nonempty, seq)
			}
		}
		if len(nonempty) == 0 {
			return result, nil
		}

		var cand *ClassDoc
		for _, seq := range nonempty {
			head := seq[0]
			if inTail(head, nonempty) {
				continue
			}
			cand = head
			break
		}
		if cand == nil {
			return nil, errors.WithStack(ErrInconsistentHierarchy)
		}

		result = append(result, cand)
		next := make([][]*ClassDoc, 0, len(nonempty))
		for _, seq := range nonempty {
			if seq[0] == cand {
				seq = seq[1:]
			}
			next = append(next, seq)
		}
		seqs = next
	}
}

func inTail(c *ClassDoc, seqs [][]*ClassDoc) bool {
	for _, seq := range seqs {
		for _, other := range seq[1:] {
			if other == c {
				return true
			}
		}
	}
	return false
}

// baseClasses returns the resolved direct bases that are classes.
// Bases documented only as generic values cannot contribute to an MRO
// and are skipped.
func (c *ClassDoc) baseClasses() []*ClassDoc {
	bases, known := c.Bases.Get()
	if !known {
		return nil
	}
	out := make([]*ClassDoc, 0, len(bases))
	for _, base := range bases {
		if cls, ok := Resolve(base).(*ClassDoc); ok {
			out = append(out, cls)
		}
	}
	return out
}
