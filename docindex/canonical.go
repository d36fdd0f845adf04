package docindex

import (
	"math"
	"regexp"
	"strconv"

	"github.com/teranos/docgraph/apidoc"
	"github.com/teranos/docgraph/errors"
	"github.com/teranos/docgraph/report"
)

// Scoring for candidate canonical names. Every step into a namespace
// costs one point; edges that make a name less authoritative cost more.
// Higher is better, so a name reached through a plain local variable
// always beats one reached through an import or alias.
const (
	scoreStep          = -1
	scoreUnknownImport = -10
	scoreImported      = -100
	scoreUnknownAlias  = -10
	scoreAlias         = -1000
	scoreStructural    = -10000

	// scoreRootModule is given to a top-level module that is reachable
	// only structurally but already knows its own (unclaimed) name.
	scoreRootModule = -1000

	// scorePinned marks a value whose producer supplied the canonical
	// name; nothing found during the walk may replace it.
	scorePinned = math.MaxInt
)

// assignNames walks the value graph from v, proposing name (with the
// given score) for v and derived names for everything below it. A value
// keeps the best-scoring name proposed across the whole walk. Values
// reachable only through structural edges get synthetic names.
func (ix *DocIndex) assignNames(v apidoc.ValueDoc, name apidoc.DottedName, score int) error {
	v = apidoc.Resolve(v)
	if v == nil {
		return nil
	}
	if prev, visited := ix.scores[v]; visited && score <= prev {
		return nil
	}
	ix.addReachable(v)

	if _, visited := ix.scores[v]; !visited && v.Base().CanonicalName.IsKnown() {
		// The producer already named this value; pin that name and
		// derive children from it instead of the proposed path.
		ix.scores[v] = scorePinned
		name = v.Base().CanonicalName.MustGet()
		score = 0
	} else {
		v.Base().CanonicalName = apidoc.Known(name)
		ix.scores[v] = score
	}

	for _, vd := range apidoc.VariablesOf(v) {
		vd = vd.Resolve()
		ix.addVariable(vd)
		if val, known := vd.Value.Get(); !known || val == nil {
			continue
		}
		varName, err := name.Child(vd.Name)
		if err != nil {
			return errors.Wrapf(err, "variable of %s", name)
		}
		if ix.varShadowsSelf(vd, varName) {
			ix.fixSelfShadowingVar(vd, varName)
		}

		varScore := score + scoreStep
		if imported, known := vd.IsImported.Get(); !known {
			varScore += scoreUnknownImport
		} else if imported {
			varScore += scoreImported
		}
		if alias, known := vd.IsAlias.Get(); !known {
			varScore += scoreUnknownAlias
		} else if alias {
			varScore += scoreAlias
		}

		// Re-read the value: the self-shadow fix may have swapped it.
		if val, known := vd.Resolve().Value.Get(); known && val != nil {
			if err := ix.assignNames(val, varName, varScore); err != nil {
				return err
			}
		}
	}

	for _, linked := range apidoc.StructuralLinksOf(v) {
		linkName, linkScore := ix.unreachableName(linked)
		if err := ix.assignNames(linked, linkName, linkScore); err != nil {
			return err
		}
	}
	return nil
}

// varShadowsSelf reports whether naming vd's value under varName would
// make the value's existing canonical name a descendant of itself, i.e.
// the variable shadows the very value it binds (typically a module
// importing a submodule under its own name).
func (ix *DocIndex) varShadowsSelf(vd *apidoc.VariableDoc, varName apidoc.DottedName) bool {
	val, known := vd.Value.Get()
	if !known || val == nil {
		return false
	}
	current, known := apidoc.Resolve(val).Base().CanonicalName.Get()
	if !known {
		return false
	}
	return !current.Equal(varName) && varName.Dominates(current)
}

// fixSelfShadowingVar repairs a self-shadowing binding by rebinding the
// variable to a sibling value found under a primed variant of the
// value's canonical name. If no variant exists the value's name is
// invalidated instead; either way an advisory is recorded.
func (ix *DocIndex) fixSelfShadowingVar(vd *apidoc.VariableDoc, varName apidoc.DottedName) {
	val := apidoc.Resolve(vd.Value.MustGet())
	current := val.Base().CanonicalName.MustGet()

	for i := 1; i < current.Len()-1; i++ {
		parts := make([]string, current.Len())
		for j := 0; j < current.Len(); j++ {
			parts[j] = current.At(j)
			if j == i {
				parts[j] += "'"
			}
		}
		primed, err := apidoc.NewDottedName(parts...)
		if err != nil {
			continue
		}
		if alt := ix.GetValDoc(primed); alt != nil && !apidoc.Same(alt, val) {
			ix.warnings.Add(report.SelfShadow, varName.String(),
				"binding shadows its own value; rebound to %s", primed)
			vd.Value = apidoc.Known(alt)
			return
		}
	}

	ix.warnings.Add(report.SelfShadow, varName.String(),
		"binding shadows its own value %s", current)
	val.Base().CanonicalName = apidoc.Unknown[apidoc.DottedName]()
}

var dedupSuffixRE = regexp.MustCompile(`-[0-9]+$`)

// unreachableName synthesizes a name for a value reachable only through
// structural edges, plus the score to propose it with.
//
// One case gets a real name: a top-level module that knows its own
// single-identifier name and has no containing package keeps that name,
// at a score low enough that any variable-path name wins. If a root
// already claims the name, a conflict advisory is recorded and the
// module falls through to a synthetic name.
func (ix *DocIndex) unreachableName(v apidoc.ValueDoc) (apidoc.DottedName, int) {
	v = apidoc.Resolve(v)

	if mod, ok := v.(*apidoc.ModuleDoc); ok {
		if name, known := mod.CanonicalName.Get(); known && name.Len() == 1 {
			if pkg, pkgKnown := mod.Package.Get(); pkgKnown && pkg == nil {
				if root := ix.rootNamed(name); root == nil {
					return name, scoreRootModule
				} else if !apidoc.Same(root, v) {
					ix.warnings.Add(report.NameConflict, name.String(),
						"unreachable module collides with root of the same name")
				}
			}
		}
	}

	var name apidoc.DottedName
	if imp, known := v.Base().ImportedFrom.Get(); known && !imp.IsZero() {
		name = apidoc.MustName(apidoc.UnreachableMarker).Append(imp)
	} else if raw, known := v.Base().Raw.Get(); known {
		if named, ok := raw.(apidoc.NamedValue); ok {
			if n, err := apidoc.NewDottedName(apidoc.UnreachableMarker, named.ValueName()); err == nil {
				name = n
			}
		}
	}
	if name.IsZero() {
		name = apidoc.MustName(apidoc.UnreachableMarker)
	}

	if ix.unreachable[name.String()] {
		base := name.String()
		if name.Len() > 0 {
			base = dedupSuffixRE.ReplaceAllString(base, "")
		}
		for n := 2; ; n++ {
			candidate := base + "-" + strconv.Itoa(n)
			if ix.unreachable[candidate] {
				continue
			}
			deduped, err := apidoc.NewDottedName(candidate)
			if err != nil {
				// Base not suffixable; fall back to the bare marker.
				base = apidoc.UnreachableMarker
				continue
			}
			name = deduped
			break
		}
	}
	ix.unreachable[name.String()] = true
	return name, scoreStructural
}

// rootNamed returns the root whose canonical name equals name, or nil.
func (ix *DocIndex) rootNamed(name apidoc.DottedName) apidoc.ValueDoc {
	for _, root := range ix.roots {
		r := apidoc.Resolve(root)
		if rn, known := r.Base().CanonicalName.Get(); known && rn.Equal(name) {
			return r
		}
	}
	return nil
}
