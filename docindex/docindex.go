// Package docindex builds an index of every documentation record
// reachable from a root set of values.
//
// Constructing the index is what canonicalizes the graph: every
// reachable value ends up with a canonical name and container, alias
// links are resolved, and the contained/reachable partitions are
// computed. The members of the index can then be looked up by dotted
// name via GetValDoc and GetVarDoc.
//
// Contained values are those reachable from the roots following only
// variable edges whose IsImported is not known-true: they belong to
// this build. Reachable values additionally include anything reachable
// at all — imports, aliases, base classes, property accessors.
//
// All naming and cycle-tracking state (the score table, the
// unreachable-name set) is owned by the DocIndex instance, so several
// builds can run in one process without interfering.
package docindex

import (
	"sort"

	"go.uber.org/zap"

	"github.com/teranos/docgraph/apidoc"
	"github.com/teranos/docgraph/errors"
	"github.com/teranos/docgraph/report"
)

// Root is one externally supplied top-level entry: a name and the value
// documented under it.
type Root struct {
	Name  apidoc.DottedName
	Value apidoc.ValueDoc
}

// DocIndex is the canonicalized index of one build's entity graph.
type DocIndex struct {
	log      *zap.SugaredLogger
	warnings *report.List

	// roots, sorted by canonical-name length ascending so variables
	// shadow submodules when appropriate.
	roots []apidoc.ValueDoc

	containedList []apidoc.ValueDoc
	containedSet  map[apidoc.ValueDoc]bool
	reachableList []apidoc.ValueDoc
	reachableSet  map[apidoc.ValueDoc]bool
	varList       []*apidoc.VariableDoc
	varSet        map[*apidoc.VariableDoc]bool

	// scores maps each value to the score of its current canonical
	// name; assignNames only replaces a name for a strictly better score.
	scores map[apidoc.ValueDoc]int

	// unreachable records every synthetic name issued, keyed by string
	// form, so no two unreachable values share a name.
	unreachable map[string]bool
}

// New builds the index for the given root set, canonicalizing every
// record reachable from it. Advisories go on warnings (optional); a
// non-nil error means a producer bug such as a malformed variable name.
func New(roots []Root, warnings *report.List, log *zap.SugaredLogger) (*DocIndex, error) {
	if warnings == nil {
		warnings = &report.List{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ix := &DocIndex{
		log:          log.Named("docindex"),
		warnings:     warnings,
		containedSet: map[apidoc.ValueDoc]bool{},
		reachableSet: map[apidoc.ValueDoc]bool{},
		varSet:       map[*apidoc.VariableDoc]bool{},
		scores:       map[apidoc.ValueDoc]int{},
		unreachable:  map[string]bool{},
	}

	for _, root := range roots {
		if root.Value == nil {
			return nil, errors.Newf("root %s has no value", root.Name)
		}
		if root.Name.IsZero() {
			return nil, errors.Wrap(apidoc.ErrEmptyName, "root entry")
		}
		v := apidoc.Resolve(root.Value)
		if !v.Base().CanonicalName.IsKnown() {
			v.Base().CanonicalName = apidoc.Known(root.Name)
		}
		ix.roots = append(ix.roots, v)
	}
	ix.sortRoots()

	// First pass: contained/reachable partitions and scored naming.
	for _, root := range ix.roots {
		name := apidoc.Resolve(root).Base().CanonicalName.MustGet()
		ix.log.Debugw("indexing root", "name", name.String())
		ix.findContained(root)
		if err := ix.assignNames(root, name, 0); err != nil {
			return nil, err
		}
	}

	// Second pass: resolve alias links now that names are final.
	ix.resolveImports()
	ix.normalize()

	// Third pass: container back-references.
	ix.assignContainers()

	return ix, nil
}

// Roots returns the root values, in lookup order.
func (ix *DocIndex) Roots() []apidoc.ValueDoc {
	return ix.roots
}

// Contained returns the values owned by this build, in first-visit order.
func (ix *DocIndex) Contained() []apidoc.ValueDoc {
	return ix.containedList
}

// Reachable returns every value reachable from the roots, in
// first-visit order.
func (ix *DocIndex) Reachable() []apidoc.ValueDoc {
	return ix.reachableList
}

// ReachableVariables returns every variable binding reachable from the
// roots, in first-visit order.
func (ix *DocIndex) ReachableVariables() []*apidoc.VariableDoc {
	return ix.varList
}

// Warnings returns the advisory list the index reports on.
func (ix *DocIndex) Warnings() *report.List {
	return ix.warnings
}

// IsContained reports whether v is owned by this build.
func (ix *DocIndex) IsContained(v apidoc.ValueDoc) bool {
	return ix.containedSet[apidoc.Resolve(v)]
}

// IsReachable reports whether v is reachable from the roots.
func (ix *DocIndex) IsReachable(v apidoc.ValueDoc) bool {
	return ix.reachableSet[apidoc.Resolve(v)]
}

func (ix *DocIndex) sortRoots() {
	sort.SliceStable(ix.roots, func(i, j int) bool {
		ni := apidoc.Resolve(ix.roots[i]).Base().CanonicalName.MustGet()
		nj := apidoc.Resolve(ix.roots[j]).Base().CanonicalName.MustGet()
		return ni.Len() < nj.Len()
	})
}

// findContained walks value edges of non-imported variables, building
// the contained set. The set itself is the cycle guard.
func (ix *DocIndex) findContained(v apidoc.ValueDoc) {
	v = apidoc.Resolve(v)
	if v == nil || ix.containedSet[v] {
		return
	}
	ix.containedSet[v] = true
	ix.containedList = append(ix.containedList, v)

	for _, vd := range apidoc.VariablesOf(v) {
		vd = vd.Resolve()
		ix.addVariable(vd)
		val, known := vd.Value.Get()
		if !known || val == nil {
			continue
		}
		if imported, known := vd.IsImported.Get(); known && imported {
			continue
		}
		ix.findContained(val)
	}
}

func (ix *DocIndex) addReachable(v apidoc.ValueDoc) {
	if !ix.reachableSet[v] {
		ix.reachableSet[v] = true
		ix.reachableList = append(ix.reachableList, v)
	}
}

func (ix *DocIndex) addVariable(vd *apidoc.VariableDoc) {
	if !ix.varSet[vd] {
		ix.varSet[vd] = true
		ix.varList = append(ix.varList, vd)
	}
}

// normalize re-keys the contained/reachable sets through Resolve,
// dropping duplicate entries introduced when alias resolution merges
// records.
func (ix *DocIndex) normalize() {
	containedList := ix.containedList
	ix.containedList, ix.containedSet = nil, map[apidoc.ValueDoc]bool{}
	for _, v := range containedList {
		r := apidoc.Resolve(v)
		if !ix.containedSet[r] {
			ix.containedSet[r] = true
			ix.containedList = append(ix.containedList, r)
		}
	}

	reachableList := ix.reachableList
	ix.reachableList, ix.reachableSet = nil, map[apidoc.ValueDoc]bool{}
	for _, v := range reachableList {
		r := apidoc.Resolve(v)
		if !ix.reachableSet[r] {
			ix.reachableSet[r] = true
			ix.reachableList = append(ix.reachableList, r)
		}
	}

	varList := ix.varList
	ix.varList, ix.varSet = nil, map[*apidoc.VariableDoc]bool{}
	for _, vd := range varList {
		r := vd.Resolve()
		if !ix.varSet[r] {
			ix.varSet[r] = true
			ix.varList = append(ix.varList, r)
		}
	}
}

// assignContainers sets every reachable value's canonical container to
// the value found at its name's container path. Known(nil) means the
// container is absent or not indexed.
func (ix *DocIndex) assignContainers() {
	for _, v := range ix.reachableList {
		name, known := v.Base().CanonicalName.Get()
		if !known {
			continue
		}
		container, ok := name.Container()
		if !ok {
			v.Base().CanonicalContainer = apidoc.Known[apidoc.ValueDoc](nil)
			continue
		}
		v.Base().CanonicalContainer = apidoc.Known(ix.GetValDoc(container))
	}
}
