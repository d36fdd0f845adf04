// Package docinherit resolves class inheritance: it fills every class's
// full variable map from its method resolution order, links overriding
// variables to what they override, and derives the display ordering and
// grouping for every namespace.
//
// Inherited variables are adopted by reference: the subclass's map
// points at the very binding the ancestor owns, so documentation
// attached to the ancestor later is visible through the subclass.
package docinherit

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/docgraph/apidoc"
	"github.com/teranos/docgraph/docindex"
	"github.com/teranos/docgraph/report"
)

// Inheriter resolves inheritance for one build. The done set is per
// instance, so concurrent builds do not share state.
type Inheriter struct {
	log      *zap.SugaredLogger
	warnings *report.List

	// isLinearizable selects classes whose hierarchies get the C3
	// linearization; the rest get the legacy depth-first order.
	isLinearizable func(*apidoc.ClassDoc) bool

	done map[*apidoc.ClassDoc]bool
}

// New returns an Inheriter. Classes rooted at universalBase are
// linearized with C3; warnings and log are optional.
func New(universalBase apidoc.DottedName, warnings *report.List, log *zap.SugaredLogger) *Inheriter {
	if warnings == nil {
		warnings = &report.List{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Inheriter{
		log:            log.Named("docinherit"),
		warnings:       warnings,
		isLinearizable: apidoc.RootedAtPredicate(universalBase),
		done:           map[*apidoc.ClassDoc]bool{},
	}
}

// Warnings returns the advisory list the inheriter reports on.
func (h *Inheriter) Warnings() *report.List {
	return h.warnings
}

// Run resolves inheritance for every class reachable from the index's
// roots, then initializes sorted variables and groups for every
// reachable namespace. Imported and structurally linked values get the
// same treatment as contained ones.
func (h *Inheriter) Run(ix *docindex.DocIndex) {
	for _, v := range ix.Reachable() {
		if cls, ok := apidoc.Resolve(v).(*apidoc.ClassDoc); ok {
			h.InheritClass(cls)
		}
	}
	for _, v := range ix.Reachable() {
		if ns, ok := apidoc.Resolve(v).(apidoc.NamespaceDoc); ok {
			h.initSortedVariables(ns)
			h.initGroups(ns)
		}
	}
}

// InheritClass fills c's variable map from its MRO. Bases are resolved
// first so adopted bindings come from fully inherited ancestors. When
// the hierarchy cannot be linearized a BadHierarchy advisory is
// recorded and c keeps only its local variables.
func (h *Inheriter) InheritClass(c *apidoc.ClassDoc) {
	c = apidoc.Resolve(c).(*apidoc.ClassDoc)
	if h.done[c] {
		return
	}
	h.done[c] = true

	if bases, known := c.Bases.Get(); known {
		for _, base := range bases {
			if bc, ok := apidoc.Resolve(base).(*apidoc.ClassDoc); ok {
				h.InheritClass(bc)
			}
		}
	}

	mro, err := c.MRO(h.isLinearizable)
	if err != nil {
		h.warnings.Add(report.BadHierarchy, subjectName(c),
			"cannot resolve inheritance: %v", err)
		mro = []*apidoc.ClassDoc{c}
	}

	vars := map[string]*apidoc.VariableDoc{}
	for _, cls := range mro {
		inherited := cls != c
		for _, vd := range apidoc.VariablesOf(cls) {
			vd = vd.Resolve()
			if inherited && mangledPrivate(vd.Name) {
				continue
			}
			nearer, present := vars[vd.Name]
			if !present {
				vars[vd.Name] = vd
				continue
			}
			// Only c's own definitions record what they override; a
			// binding adopted from an ancestor is never mutated here.
			if inherited && apidoc.Same(nearer.Container, c) && !nearer.Overrides.IsKnown() {
				nearer.Overrides = apidoc.Known(vd)
				inheritDescription(nearer, vd)
			}
		}
	}
	c.Variables = apidoc.Known(vars)
}

// mangledPrivate reports whether name is subject to private name
// mangling: a leading "__" without a trailing "__". Such variables are
// invisible to subclasses.
func mangledPrivate(name string) bool {
	return strings.HasPrefix(name, "__") && !strings.HasSuffix(name, "__")
}

// inheritDescription shallowly copies description fields from the
// overridden binding onto the overriding one, and from the overridden
// value onto the overriding value, when the local side carries no
// documentation of its own.
func inheritDescription(vd, overridden *apidoc.VariableDoc) {
	if !vd.Docstring.IsKnown() && !vd.Descr.IsKnown() {
		vd.Descr = overridden.Descr
		vd.Summary = overridden.Summary
		if !vd.Metadata.IsKnown() {
			vd.Metadata = overridden.Metadata
		}
		if !vd.TypeDescr.IsKnown() {
			vd.TypeDescr = overridden.TypeDescr
		}
	}
	inheritValueDescription(vd, overridden)
}

// inheritValueDescription carries the overridden value's description
// over to the overriding value when the latter has none.
func inheritValueDescription(vd, overridden *apidoc.VariableDoc) {
	val, known := vd.Value.Get()
	if !known || val == nil {
		return
	}
	overVal, known := overridden.Value.Get()
	if !known || overVal == nil {
		return
	}
	doc, overDoc := apidoc.Resolve(val).Doc(), apidoc.Resolve(overVal).Doc()
	if doc.Docstring.IsKnown() || doc.Descr.IsKnown() {
		return
	}
	doc.Descr = overDoc.Descr
	doc.Summary = overDoc.Summary
}

// initSortedVariables derives the namespace's display order: names
// listed in the sort spec first (in spec order, "*" wildcards matching
// alphabetically), everything else alphabetically after.
func (h *Inheriter) initSortedVariables(ns apidoc.NamespaceDoc) {
	vars, known := ns.Namespace().Variables.Get()
	if !known {
		return
	}

	remaining := make(map[string]*apidoc.VariableDoc, len(vars))
	for name, vd := range vars {
		remaining[name] = vd.Resolve()
	}

	var sorted []*apidoc.VariableDoc
	take := func(name string) {
		if vd, ok := remaining[name]; ok {
			sorted = append(sorted, vd)
			delete(remaining, name)
		}
	}

	if spec, known := ns.Namespace().SortSpec.Get(); known {
		for _, entry := range spec {
			if !strings.Contains(entry, "*") {
				take(entry)
				continue
			}
			re, err := wildcardPattern(entry)
			if err != nil {
				continue
			}
			for _, name := range sortedNames(remaining) {
				if re.MatchString(name) {
					take(name)
				}
			}
		}
	}

	for _, name := range sortedNames(remaining) {
		take(name)
	}
	ns.Namespace().SortedVariables = apidoc.Known(sorted)
}

// initGroups assigns every sorted variable to the first group whose
// spec names it ("*" wildcards allowed); the unnamed group "" collects
// the rest. Group members that match no variable get an advisory.
func (h *Inheriter) initGroups(ns apidoc.NamespaceDoc) {
	sorted, known := ns.Namespace().SortedVariables.Get()
	if !known {
		return
	}
	specs, _ := ns.Namespace().GroupSpecs.Get()

	groupNames := make([]string, 0, len(specs)+1)
	groupNames = append(groupNames, "")
	groups := map[string][]*apidoc.VariableDoc{"": nil}

	grouped := map[*apidoc.VariableDoc]bool{}
	for _, spec := range specs {
		if _, ok := groups[spec.Name]; !ok {
			groupNames = append(groupNames, spec.Name)
			groups[spec.Name] = nil
		}
		for _, member := range spec.Variables {
			matched := false
			if strings.Contains(member, "*") {
				re, err := wildcardPattern(member)
				if err != nil {
					continue
				}
				for _, vd := range sorted {
					if !grouped[vd] && re.MatchString(vd.Name) {
						groups[spec.Name] = append(groups[spec.Name], vd)
						grouped[vd] = true
						matched = true
					}
				}
			} else {
				for _, vd := range sorted {
					if !grouped[vd] && vd.Name == member {
						groups[spec.Name] = append(groups[spec.Name], vd)
						grouped[vd] = true
						matched = true
						break
					}
				}
			}
			if !matched {
				h.warnings.Add(report.NameConflict, subjectName(ns),
					"group %q names unknown variable %q", spec.Name, member)
			}
		}
	}

	for _, vd := range sorted {
		if !grouped[vd] {
			groups[""] = append(groups[""], vd)
		}
	}

	ns.Namespace().GroupNames = apidoc.Known(groupNames)
	ns.Namespace().Groups = apidoc.Known(groups)
}

// wildcardPattern compiles a group/sort entry with "*" wildcards into
// an anchored regexp.
func wildcardPattern(entry string) (*regexp.Regexp, error) {
	pieces := strings.Split(entry, "*")
	for i, piece := range pieces {
		pieces[i] = regexp.QuoteMeta(piece)
	}
	return regexp.Compile("^" + strings.Join(pieces, ".*") + "$")
}

func sortedNames(vars map[string]*apidoc.VariableDoc) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func subjectName(v apidoc.ValueDoc) string {
	if name, known := apidoc.Resolve(v).Base().CanonicalName.Get(); known {
		return name.String()
	}
	return "<unnamed>"
}
