package docindex

import (
	"github.com/teranos/docgraph/apidoc"
	"github.com/teranos/docgraph/report"
)

// resolveImports rewrites every alias proxy in the reachable set: each
// value whose ImportedFrom names an indexed value is merged into that
// value, and each one whose target is absent is promoted in place to a
// first-class record under the imported name.
func (ix *DocIndex) resolveImports() {
	// Merging mutates the reachable set's membership; work from a
	// snapshot of the handles.
	snapshot := append([]apidoc.ValueDoc(nil), ix.reachableList...)
	for _, v := range snapshot {
		ix.resolveImport(v)
	}
}

// resolveImport chases one value's alias link until it lands on a
// record that is not itself an alias.
func (ix *DocIndex) resolveImport(v apidoc.ValueDoc) {
	for {
		v = apidoc.Resolve(v)
		target, known := v.Base().ImportedFrom.Get()
		if !known || target.IsZero() {
			return
		}

		src := ix.GetValDoc(target)
		if src == nil {
			// Nothing indexed under the imported name: the proxy becomes
			// the authoritative record for it.
			ix.log.Debugw("promoting import proxy", "name", target.String())
			v.Base().CanonicalName = apidoc.Known(target)
			v.Base().ImportedFrom = apidoc.Unknown[apidoc.DottedName]()
			ix.roots = append(ix.roots, v)
			ix.sortRoots()
			// Rename anything below the proxy under its promoted name.
			delete(ix.scores, v)
			if err := ix.assignNames(v, target, 0); err != nil {
				ix.warnings.Add(report.NameConflict, target.String(),
					"renaming promoted import failed: %v", err)
			}
			return
		}

		if !apidoc.Same(src, v) {
			v.Base().ImportedFrom = apidoc.Unknown[apidoc.DottedName]()
			apidoc.TakeOver(src, v)
			// src may itself be an alias; keep chasing.
			continue
		}

		ix.repairSelfImport(v, target)
		return
	}
}

// repairSelfImport handles an alias whose target resolves back to the
// alias itself (an entity imported under a name it also owns). A primed
// variant of the target name is tried; if a distinct value lives there
// the alias is merged into it, otherwise the alias keeps its state but
// loses the canonical name so the conflict cannot propagate.
func (ix *DocIndex) repairSelfImport(v apidoc.ValueDoc, target apidoc.DottedName) {
	v.Base().ImportedFrom = apidoc.Unknown[apidoc.DottedName]()

	for i := 1; i < target.Len()-1; i++ {
		parts := make([]string, target.Len())
		for j := 0; j < target.Len(); j++ {
			parts[j] = target.At(j)
			if j == i {
				parts[j] += "'"
			}
		}
		primed, err := apidoc.NewDottedName(parts...)
		if err != nil {
			continue
		}
		if alt := ix.GetValDoc(primed); alt != nil && !apidoc.Same(alt, v) {
			ix.warnings.Add(report.SelfShadow, target.String(),
				"import of %s resolves to itself; merged with %s", target, primed)
			apidoc.TakeOver(alt, v)
			return
		}
	}

	ix.warnings.Add(report.SelfShadow, target.String(),
		"import of %s resolves to itself", target)
	v.Base().CanonicalName = apidoc.Unknown[apidoc.DottedName]()
}
