// Package docmerge combines two documentation graphs describing the
// same program, one produced by live inspection and one by static
// parsing, into a single graph.
//
// Merging is identity-forming: when two records are merged, one record
// takes over the other, so every existing handle to either ends up
// viewing the combined state. Which side's state wins an attribute is
// decided per attribute; most come from the live side by default, but
// source-level facts (reprs, import flags, docformats, filenames, sort
// specs) always come from the static side when it has them.
//
// Conflicts between the two sides are never fatal. An incompatible pair
// is left unmerged with a MergeConflict advisory, and the caller gets
// the side preferred by the merger's default precedence.
package docmerge

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/teranos/docgraph/apidoc"
	"github.com/teranos/docgraph/report"
)

// Precedence names one of the two input sides.
type Precedence int

const (
	// Live marks the graph produced by runtime inspection.
	Live Precedence = iota
	// Static marks the graph produced by parsing source.
	Static
)

func (p Precedence) String() string {
	if p == Static {
		return "static"
	}
	return "live"
}

// attrPrecedence fixes, per attribute, which side supplies the merged
// value when both sides know one. Attributes not listed follow the
// merger's default precedence.
var attrPrecedence = map[string]Precedence{
	"repr":          Static,
	"is_imported":   Static,
	"is_alias":      Static,
	"docformat":     Static,
	"is_package":    Static,
	"sort_spec":     Static,
	"filename":      Static,
	"imported_from": Static,

	"canonical_name": Live,
	"submodules":     Live,
}

type pairKey struct {
	live   any
	static any
}

// Merger merges value graphs pairwise. All cycle-tracking state is per
// instance; one Merger serves one build.
type Merger struct {
	log      *zap.SugaredLogger
	warnings *report.List

	// defaultPrecedence decides attributes with no fixed side, and which
	// side survives an unmergeable pair.
	defaultPrecedence Precedence

	// visited records pairs already merged (or being merged), keyed by
	// the records' identities at first visit. It makes merging cyclic
	// graphs terminate and re-merging idempotent.
	visited map[pairKey]bool
}

// New returns a Merger. warnings and log are optional.
func New(defaultPrecedence Precedence, warnings *report.List, log *zap.SugaredLogger) *Merger {
	if warnings == nil {
		warnings = &report.List{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Merger{
		log:               log.Named("docmerge"),
		warnings:          warnings,
		defaultPrecedence: defaultPrecedence,
		visited:           map[pairKey]bool{},
	}
}

// Warnings returns the advisory list the merger reports on.
func (m *Merger) Warnings() *report.List {
	return m.warnings
}

func (m *Merger) precedenceFor(attr string) Precedence {
	if p, ok := attrPrecedence[attr]; ok {
		return p
	}
	return m.defaultPrecedence
}

// prefer returns the side the merger keeps when a pair cannot merge.
func (m *Merger) prefer(live, static apidoc.ValueDoc) apidoc.ValueDoc {
	if m.defaultPrecedence == Static {
		return static
	}
	return live
}

// Merge combines the two records into one shared record and returns it.
// Nil on either side yields the other. An incompatible pair is returned
// unmerged (preferred side) with a MergeConflict advisory.
func (m *Merger) Merge(live, static apidoc.ValueDoc) apidoc.ValueDoc {
	live, static = apidoc.Resolve(live), apidoc.Resolve(static)
	if live == nil {
		return static
	}
	if static == nil {
		return live
	}
	if live == static {
		return live
	}

	key := pairKey{live: live, static: static}
	if m.visited[key] {
		// Already merged (or mid-merge) on another path through a cycle.
		return apidoc.Resolve(live)
	}

	if reason := incompatible(live, static); reason != "" {
		m.warnings.Add(report.MergeConflict, mergeSubject(live, static),
			"records cannot merge: %s; keeping %s side", reason, m.defaultPrecedence)
		return m.prefer(live, static)
	}

	m.visited[key] = true

	live, static, ok := m.alignKinds(live, static)
	if !ok {
		return m.prefer(live, static)
	}
	// Specialization may have replaced a handle; guard the aligned pair
	// too so a cycle re-entering through resolved handles is caught.
	m.visited[pairKey{live: live, static: static}] = true

	m.mergeBase(live.Base(), static.Base())

	switch l := live.(type) {
	case *apidoc.ModuleDoc:
		m.mergeModule(l, static.(*apidoc.ModuleDoc))
	case *apidoc.ClassDoc:
		m.mergeClass(l, static.(*apidoc.ClassDoc))
	case *apidoc.RoutineDoc:
		m.mergeRoutine(l, static.(*apidoc.RoutineDoc))
	case *apidoc.PropertyDoc:
		m.mergeProperty(l, static.(*apidoc.PropertyDoc))
	}

	winner, loser := live, static
	if m.defaultPrecedence == Static {
		winner, loser = static, live
	}
	apidoc.TakeOver(winner, loser)
	return apidoc.Resolve(winner)
}

// incompatible reports why the two records must not merge, or "".
func incompatible(live, static apidoc.ValueDoc) string {
	lk, sk := live.Kind(), static.Kind()
	if !lk.SubtypeOf(sk) && !sk.SubtypeOf(lk) {
		return "kind " + lk.String() + " vs " + sk.String()
	}
	if lr, known := live.Base().Raw.Get(); known {
		if sr, known := static.Base().Raw.Get(); known && !sameRaw(lr, sr) {
			return "distinct underlying values"
		}
	}
	if ln, known := live.Base().CanonicalName.Get(); known {
		if sn, known := static.Base().CanonicalName.Get(); known && !ln.Equal(sn) {
			return "canonical name " + ln.String() + " vs " + sn.String()
		}
	}
	return ""
}

// sameRaw compares two producer handles. Incomparable handles are
// treated as equal; only a provable mismatch blocks a merge.
func sameRaw(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return true
	}
	return a == b
}

// alignKinds specializes the generic side of a pair so both records have
// the same concrete kind.
func (m *Merger) alignKinds(live, static apidoc.ValueDoc) (apidoc.ValueDoc, apidoc.ValueDoc, bool) {
	switch {
	case live.Kind() == static.Kind():
		return live, static, true
	case live.Kind() == apidoc.KindValue:
		specialized, err := apidoc.SpecializeTo(live, static.Kind())
		if err != nil {
			m.warnings.Add(report.MergeConflict, mergeSubject(live, static),
				"cannot specialize: %v", err)
			return live, static, false
		}
		return specialized, static, true
	default:
		specialized, err := apidoc.SpecializeTo(static, live.Kind())
		if err != nil {
			m.warnings.Add(report.MergeConflict, mergeSubject(live, static),
				"cannot specialize: %v", err)
			return live, static, false
		}
		return live, specialized, true
	}
}

func mergeSubject(live, static apidoc.ValueDoc) string {
	if name, known := live.Base().CanonicalName.Get(); known {
		return name.String()
	}
	if name, known := static.Base().CanonicalName.Get(); known {
		return name.String()
	}
	return "<unnamed>"
}

// mergeOpt writes the merged value of one attribute into both sides:
// the preferred side's value when it is known, the other side's
// otherwise.
func mergeOpt[T any](live, static *apidoc.Opt[T], p Precedence) {
	merged := *live
	if p == Static {
		merged = *static
		if !merged.IsKnown() {
			merged = *live
		}
	} else if !merged.IsKnown() {
		merged = *static
	}
	*live = merged
	*static = merged
}

func (m *Merger) mergeDocInfo(live, static *apidoc.DocInfo) {
	p := m.defaultPrecedence
	mergeOpt(&live.Docstring, &static.Docstring, p)
	mergeOpt(&live.Descr, &static.Descr, p)
	mergeOpt(&live.Summary, &static.Summary, p)
	mergeOpt(&live.Metadata, &static.Metadata, p)
}

func (m *Merger) mergeBase(live, static *apidoc.ValueBase) {
	m.mergeDocInfo(&live.DocInfo, &static.DocInfo)
	mergeOpt(&live.CanonicalName, &static.CanonicalName, m.precedenceFor("canonical_name"))
	mergeOpt(&live.CanonicalContainer, &static.CanonicalContainer, m.defaultPrecedence)
	mergeOpt(&live.ImportedFrom, &static.ImportedFrom, m.precedenceFor("imported_from"))
	mergeOpt(&live.Raw, &static.Raw, m.defaultPrecedence)
	mergeOpt(&live.Repr, &static.Repr, m.precedenceFor("repr"))
	mergeOpt(&live.Filename, &static.Filename, m.precedenceFor("filename"))
}

func (m *Merger) mergeNamespace(live, static *apidoc.NamespaceVars) {
	m.mergeVariableMaps(&live.Variables, &static.Variables)
	mergeOpt(&live.SortedVariables, &static.SortedVariables, m.defaultPrecedence)
	mergeOpt(&live.GroupSpecs, &static.GroupSpecs, m.defaultPrecedence)
	mergeOpt(&live.GroupNames, &static.GroupNames, m.defaultPrecedence)
	mergeOpt(&live.Groups, &static.Groups, m.defaultPrecedence)
	mergeOpt(&live.SortSpec, &static.SortSpec, m.precedenceFor("sort_spec"))
}

func (m *Merger) mergeModule(live, static *apidoc.ModuleDoc) {
	m.mergeNamespace(&live.NamespaceVars, &static.NamespaceVars)
	mergeOpt(&live.Package, &static.Package, m.defaultPrecedence)
	mergeOpt(&live.Docformat, &static.Docformat, m.precedenceFor("docformat"))
	mergeOpt(&live.Submodules, &static.Submodules, m.precedenceFor("submodules"))
	mergeOpt(&live.IsPackage, &static.IsPackage, m.precedenceFor("is_package"))
}

func (m *Merger) mergeClass(live, static *apidoc.ClassDoc) {
	m.mergeNamespace(&live.NamespaceVars, &static.NamespaceVars)
	m.mergeVariableMaps(&live.LocalVariables, &static.LocalVariables)
	m.mergeBases(live, static)
	mergeOpt(&live.Subclasses, &static.Subclasses, m.defaultPrecedence)
}

func (m *Merger) mergeRoutine(live, static *apidoc.RoutineDoc) {
	m.mergeSignature(live, static)
	p := m.defaultPrecedence
	mergeOpt(&live.Vararg, &static.Vararg, p)
	mergeOpt(&live.Kwarg, &static.Kwarg, p)
	mergeOpt(&live.ArgDescrs, &static.ArgDescrs, p)
	mergeOpt(&live.ArgTypes, &static.ArgTypes, p)
	mergeOpt(&live.ReturnDescr, &static.ReturnDescr, p)
	mergeOpt(&live.ReturnType, &static.ReturnType, p)
	mergeOpt(&live.ExceptionDescrs, &static.ExceptionDescrs, p)
}

func (m *Merger) mergeProperty(live, static *apidoc.PropertyDoc) {
	m.mergeAccessor(&live.Fget, &static.Fget)
	m.mergeAccessor(&live.Fset, &static.Fset)
	m.mergeAccessor(&live.Fdel, &static.Fdel)
}

// mergeAccessor merges a property accessor pair: both known non-nil
// merges recursively, otherwise the usual prefer-known rule applies.
func (m *Merger) mergeAccessor(live, static *apidoc.Opt[apidoc.ValueDoc]) {
	lv, lknown := live.Get()
	sv, sknown := static.Get()
	if lknown && sknown && lv != nil && sv != nil {
		merged := apidoc.Known(m.Merge(lv, sv))
		*live, *static = merged, merged
		return
	}
	mergeOpt(live, static, m.defaultPrecedence)
}

// mergeVariableMaps merges two variable maps key by key: bindings
// present on both sides merge into one, the rest are unioned in.
func (m *Merger) mergeVariableMaps(live, static *apidoc.Opt[map[string]*apidoc.VariableDoc]) {
	lm, lknown := live.Get()
	sm, sknown := static.Get()
	if !lknown || !sknown {
		mergeOpt(live, static, m.defaultPrecedence)
		return
	}

	merged := make(map[string]*apidoc.VariableDoc, len(lm)+len(sm))
	for name, lv := range lm {
		if sv, ok := sm[name]; ok {
			merged[name] = m.MergeVar(lv, sv)
		} else {
			merged[name] = lv.Resolve()
		}
	}
	for name, sv := range sm {
		if _, ok := merged[name]; !ok {
			merged[name] = sv.Resolve()
		}
	}
	out := apidoc.Known(merged)
	*live, *static = out, out
}

// mergeBases merges the base-class lists. The lists must agree in
// length and per-position names; otherwise the hierarchy claims
// genuinely disagree and the preferred side is kept whole.
func (m *Merger) mergeBases(live, static *apidoc.ClassDoc) {
	lb, lknown := live.Bases.Get()
	sb, sknown := static.Bases.Get()
	if !lknown || !sknown {
		mergeOpt(&live.Bases, &static.Bases, m.defaultPrecedence)
		return
	}

	if len(lb) != len(sb) {
		m.warnings.Add(report.MergeConflict, mergeSubject(live, static),
			"base-class lists disagree: %d vs %d entries; keeping %s side",
			len(lb), len(sb), m.defaultPrecedence)
		mergeOpt(&live.Bases, &static.Bases, m.defaultPrecedence)
		return
	}
	for i := range lb {
		if !sameBaseName(lb[i], sb[i]) {
			m.warnings.Add(report.MergeConflict, mergeSubject(live, static),
				"base class %d disagrees between sides; keeping %s side",
				i, m.defaultPrecedence)
			mergeOpt(&live.Bases, &static.Bases, m.defaultPrecedence)
			return
		}
	}

	merged := make([]apidoc.ValueDoc, len(lb))
	for i := range lb {
		merged[i] = m.Merge(lb[i], sb[i])
	}
	out := apidoc.Known(merged)
	live.Bases, static.Bases = out, out
}

func sameBaseName(a, b apidoc.ValueDoc) bool {
	an, aknown := apidoc.Resolve(a).Base().CanonicalName.Get()
	bn, bknown := apidoc.Resolve(b).Base().CanonicalName.Get()
	if !aknown || !bknown {
		// Unnamed bases cannot be compared; give the merge the benefit
		// of the doubt.
		return true
	}
	return an.Equal(bn)
}

// mergeSignature merges positional arguments and their defaults as one
// unit, so names and defaults never come from different sides.
func (m *Merger) mergeSignature(live, static *apidoc.RoutineDoc) {
	lp, lknown := live.Posargs.Get()
	sp, sknown := static.Posargs.Get()

	switch {
	case !lknown && !sknown:
		return
	case lknown && !sknown:
		static.Posargs, static.PosargDefaults = live.Posargs, live.PosargDefaults
		return
	case !lknown:
		live.Posargs, live.PosargDefaults = static.Posargs, static.PosargDefaults
		return
	}

	// The live side reports a lone "..." when the true signature could
	// not be introspected; the static side then wins outright.
	if len(lp) == 1 && lp[0] == apidoc.UnknownVariadic {
		live.Posargs, live.PosargDefaults = static.Posargs, static.PosargDefaults
		return
	}

	// Disagreeing argument lists cannot merge; the whole signature,
	// names and defaults together, comes from the preferred side.
	if !equalStrings(lp, sp) {
		m.warnings.Add(report.MergeConflict, mergeSubject(live, static),
			"positional arguments disagree between sides; keeping %s signature",
			m.defaultPrecedence)
		if m.defaultPrecedence == Static {
			live.Posargs, live.PosargDefaults = static.Posargs, static.PosargDefaults
		} else {
			static.Posargs, static.PosargDefaults = live.Posargs, live.PosargDefaults
		}
		return
	}
	static.Posargs = live.Posargs

	// Defaults merge position by position when both sides carry them.
	ld, lknown := live.PosargDefaults.Get()
	sd, sknown := static.PosargDefaults.Get()
	if lknown && sknown && len(ld) == len(sd) {
		merged := make([]apidoc.ValueDoc, len(ld))
		for i := range ld {
			switch {
			case ld[i] == nil:
				merged[i] = apidoc.Resolve(sd[i])
			case sd[i] == nil:
				merged[i] = apidoc.Resolve(ld[i])
			default:
				merged[i] = m.Merge(ld[i], sd[i])
			}
		}
		out := apidoc.Known(merged)
		live.PosargDefaults, static.PosargDefaults = out, out
	} else {
		mergeOpt(&live.PosargDefaults, &static.PosargDefaults, m.defaultPrecedence)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MergeVar combines two bindings for the same name into one shared
// binding and returns it.
func (m *Merger) MergeVar(live, static *apidoc.VariableDoc) *apidoc.VariableDoc {
	live, static = live.Resolve(), static.Resolve()
	if live == nil {
		return static
	}
	if static == nil {
		return live
	}
	if live == static {
		return live
	}

	key := pairKey{live: live, static: static}
	if m.visited[key] {
		return live.Resolve()
	}
	m.visited[key] = true

	m.mergeDocInfo(&live.DocInfo, &static.DocInfo)
	m.mergeValueOpt(&live.Value, &static.Value)
	mergeOpt(&live.IsImported, &static.IsImported, m.precedenceFor("is_imported"))
	mergeOpt(&live.IsAlias, &static.IsAlias, m.precedenceFor("is_alias"))
	mergeOpt(&live.IsInstvar, &static.IsInstvar, m.defaultPrecedence)
	mergeOpt(&live.IsPublic, &static.IsPublic, m.defaultPrecedence)
	mergeOpt(&live.TypeDescr, &static.TypeDescr, m.defaultPrecedence)
	m.mergeOverrides(live, static)

	winner, loser := live, static
	if m.defaultPrecedence == Static {
		winner, loser = static, live
	}
	apidoc.TakeOverVar(winner, loser)
	return winner.Resolve()
}

// mergeValueOpt merges the value slot of a binding. Known(nil) is a
// real claim ("holds nothing documentable") and follows precedence
// against a non-nil claim.
func (m *Merger) mergeValueOpt(live, static *apidoc.Opt[apidoc.ValueDoc]) {
	lv, lknown := live.Get()
	sv, sknown := static.Get()
	if lknown && sknown {
		var merged apidoc.Opt[apidoc.ValueDoc]
		switch {
		case lv == nil && sv == nil:
			merged = apidoc.Known[apidoc.ValueDoc](nil)
		case lv == nil || sv == nil:
			if m.defaultPrecedence == Static {
				merged = apidoc.Known(apidoc.Resolve(sv))
			} else {
				merged = apidoc.Known(apidoc.Resolve(lv))
			}
		default:
			merged = apidoc.Known(m.Merge(lv, sv))
		}
		*live, *static = merged, merged
		return
	}
	mergeOpt(live, static, m.defaultPrecedence)
}

func (m *Merger) mergeOverrides(live, static *apidoc.VariableDoc) {
	lo, lknown := live.Overrides.Get()
	so, sknown := static.Overrides.Get()
	if lknown && sknown && lo != nil && so != nil {
		merged := apidoc.Known(m.MergeVar(lo, so))
		live.Overrides, static.Overrides = merged, merged
		return
	}
	mergeOpt(&live.Overrides, &static.Overrides, m.defaultPrecedence)
}
