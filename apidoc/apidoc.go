package apidoc

import (
	"sort"
	"strings"
)

// Kind identifies the concrete variant of a ValueDoc.
type Kind int

const (
	// KindValue is the generic variant: a value about which nothing more
	// specific is known. Every other kind is a subtype of it.
	KindValue Kind = iota
	KindModule
	KindClass
	KindRoutine
	KindProperty
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindModule:
		return "module"
	case KindClass:
		return "class"
	case KindRoutine:
		return "routine"
	case KindProperty:
		return "property"
	default:
		return "invalid"
	}
}

// SubtypeOf reports whether k is the same kind as other or a
// specialization of it. KindValue is the top of the (flat) lattice.
func (k Kind) SubtypeOf(other Kind) bool {
	return k == other || other == KindValue
}

// DocInfo holds the description fields every record carries.
type DocInfo struct {
	Docstring Opt[string]
	Descr     Opt[string]
	Summary   Opt[string]
	Metadata  Opt[map[string]string]
}

// Doc returns the record's description fields. It makes every record an
// APIDoc.
func (d *DocInfo) Doc() *DocInfo { return d }

// APIDoc is any documentation record: a variable binding or a value.
type APIDoc interface {
	Doc() *DocInfo
}

// ValueDoc is documentation for one program value.
type ValueDoc interface {
	APIDoc
	Kind() Kind
	// Base returns the record's shared value state. Callers should
	// normally go through Resolve first.
	Base() *ValueBase
}

// NamespaceDoc is a value that owns named variables: a module or class.
type NamespaceDoc interface {
	ValueDoc
	Namespace() *NamespaceVars
}

// ValueBase holds the state common to every value kind.
type ValueBase struct {
	// fwd is non-nil once this record has been merged into (or
	// specialized to) another; every handle then resolves there.
	fwd ValueDoc

	DocInfo

	// CanonicalName is the single dotted path chosen for this value.
	// Producers may supply it; otherwise the canonicalizer assigns it.
	CanonicalName Opt[DottedName]

	// CanonicalContainer is the value found at CanonicalName's container
	// path, assigned by the canonicalizer. Known(nil) means the container
	// is absent or not indexed. Back-reference only; never traversed for
	// ownership.
	CanonicalContainer Opt[ValueDoc]

	// ImportedFrom names the value this one is an alias/import proxy
	// for. Resolved (and cleared) by the canonicalizer.
	ImportedFrom Opt[DottedName]

	// Raw is the producer's opaque handle for the underlying value. Two
	// records whose raw handles denote different values must never be
	// merged. If the handle implements NamedValue, its short name seeds
	// synthetic unreachable names.
	Raw Opt[any]

	// Repr is a textual fallback representation of the value.
	Repr Opt[string]

	// Filename is the source file the value was parsed from.
	Filename Opt[string]
}

// Base returns b; it makes every embedding type a ValueDoc.
func (b *ValueBase) Base() *ValueBase { return b }

// NamedValue lets a producer's raw handle report a short name, used when
// synthesizing names for unreachable values.
type NamedValue interface {
	ValueName() string
}

// GroupSpec is one docstring-declared variable group.
type GroupSpec struct {
	Name      string
	Variables []string // member names; "*" wildcards allowed
}

// NamespaceVars holds the state shared by modules and classes.
type NamespaceVars struct {
	// Variables maps variable name to its binding. For classes this is
	// only complete after inheritance has run.
	Variables Opt[map[string]*VariableDoc]

	// SortedVariables is the display order, derived from SortSpec.
	SortedVariables Opt[[]*VariableDoc]

	// GroupSpecs, GroupNames and Groups carry the docstring-declared
	// variable grouping. GroupNames always starts with "" (ungrouped).
	GroupSpecs Opt[[]GroupSpec]
	GroupNames Opt[[]string]
	Groups     Opt[map[string][]*VariableDoc]

	// SortSpec is the docstring-declared ordering of variable names.
	SortSpec Opt[[]string]
}

// Namespace returns n; it makes every embedding type a NamespaceDoc.
func (n *NamespaceVars) Namespace() *NamespaceVars { return n }

// GenericValueDoc documents a value with no more specific kind.
type GenericValueDoc struct {
	ValueBase
}

func (*GenericValueDoc) Kind() Kind { return KindValue }

// ModuleDoc documents a module or package.
type ModuleDoc struct {
	ValueBase
	NamespaceVars

	// Package is the containing package. Weak back-reference;
	// Known(nil) means the module is top level.
	Package Opt[*ModuleDoc]

	// Docformat is the markup language claimed by the module for its
	// docstrings. Opaque to this package.
	Docformat Opt[string]

	// Submodules lists the module's direct submodules.
	Submodules Opt[[]*ModuleDoc]

	// IsPackage reports whether the module is a package.
	IsPackage Opt[bool]
}

func (*ModuleDoc) Kind() Kind { return KindModule }

// ClassDoc documents a class.
type ClassDoc struct {
	ValueBase
	NamespaceVars

	// LocalVariables are the variables declared directly by the class,
	// excluding anything inherited.
	LocalVariables Opt[map[string]*VariableDoc]

	// Bases are the direct base classes, in declaration order. Shared
	// ownership: one class may be a base of many.
	Bases Opt[[]ValueDoc]

	// Subclasses are known direct subclasses. Weak back-references,
	// populated externally.
	Subclasses Opt[[]ValueDoc]
}

func (*ClassDoc) Kind() Kind { return KindClass }

// UnknownVariadic is the placeholder argument name a live inspector
// reports when a routine's true signature could not be introspected.
const UnknownVariadic = "..."

// ArgDescr documents one argument (or argument group) of a routine.
type ArgDescr struct {
	Names []string
	Descr string
}

// ExceptionDescr documents one exception a routine may raise.
type ExceptionDescr struct {
	Name  DottedName
	Descr string
}

// RoutineDoc documents a function or method.
type RoutineDoc struct {
	ValueBase

	// Posargs are the positional argument names.
	Posargs Opt[[]string]

	// PosargDefaults aligns with Posargs by position; nil entries are
	// arguments without a default.
	PosargDefaults Opt[[]ValueDoc]

	// Vararg and Kwarg are the catch-all argument names, if any.
	Vararg Opt[string]
	Kwarg  Opt[string]

	ArgDescrs       Opt[[]ArgDescr]
	ArgTypes        Opt[map[string]string]
	ReturnDescr     Opt[string]
	ReturnType      Opt[string]
	ExceptionDescrs Opt[[]ExceptionDescr]
}

func (*RoutineDoc) Kind() Kind { return KindRoutine }

// PropertyDoc documents a property.
type PropertyDoc struct {
	ValueBase

	Fget Opt[ValueDoc]
	Fset Opt[ValueDoc]
	Fdel Opt[ValueDoc]
}

func (*PropertyDoc) Kind() Kind { return KindProperty }

// VariableDoc documents a named binding inside a namespace.
type VariableDoc struct {
	fwd *VariableDoc

	DocInfo

	// Container is the namespace the variable belongs to. Strong
	// ownership edge.
	Container ValueDoc

	// Name is the variable's short name within its container.
	Name string

	// Value documents the value the variable holds. Shared: many
	// variables may reference one value. Known(nil) means the variable is
	// known to hold nothing documentable.
	Value Opt[ValueDoc]

	IsImported Opt[bool]
	IsInstvar  Opt[bool]
	IsAlias    Opt[bool]
	IsPublic   Opt[bool]

	// Overrides is the shadowed inherited variable, if any. Weak
	// back-reference, populated by inheritance resolution.
	Overrides Opt[*VariableDoc]

	// TypeDescr describes the variable's expected type.
	TypeDescr Opt[string]
}

// NewVariableDoc creates a variable binding with IsPublic defaulted from
// the naming convention: private iff the name starts with "_" and does
// not end with "_".
func NewVariableDoc(name string) *VariableDoc {
	return &VariableDoc{
		Name:     name,
		IsPublic: Known(DefaultPublic(name)),
	}
}

// DefaultPublic reports the conventional visibility for a name.
func DefaultPublic(name string) bool {
	return !(strings.HasPrefix(name, "_") && !strings.HasSuffix(name, "_"))
}

// Resolve follows merge/specialization forwards to the record currently
// holding v's state. Returns nil for nil.
func Resolve(v ValueDoc) ValueDoc {
	for v != nil {
		b := v.Base()
		if b.fwd == nil {
			return v
		}
		v = b.fwd
	}
	return nil
}

// Resolve follows merge forwards to the record currently holding the
// variable's state.
func (v *VariableDoc) Resolve() *VariableDoc {
	for v != nil && v.fwd != nil {
		v = v.fwd
	}
	return v
}

// Same reports whether a and b document the same entity, i.e. share one
// underlying state record. Structural equality is irrelevant here.
func Same(a, b ValueDoc) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Resolve(a) == Resolve(b)
}

// SameVar is Same for variable bindings.
func SameVar(a, b *VariableDoc) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Resolve() == b.Resolve()
}

// TakeOver makes loser an indistinguishable view of winner: every handle
// that pointed at loser now resolves to winner, and all later mutation
// through either is visible through both. No-op if they already share
// state.
func TakeOver(winner, loser ValueDoc) {
	w, l := Resolve(winner), Resolve(loser)
	if w == l || w == nil || l == nil {
		return
	}
	l.Base().fwd = w
}

// TakeOverVar is TakeOver for variable bindings.
func TakeOverVar(winner, loser *VariableDoc) {
	w, l := winner.Resolve(), loser.Resolve()
	if w == l || w == nil || l == nil {
		return
	}
	l.fwd = w
}

// VariablesOf returns the variable bindings reachable directly from v:
// its namespace variables, plus, for classes, locally declared variables
// not yet present in the variables map. The result is sorted by name so
// traversal order is deterministic.
func VariablesOf(v ValueDoc) []*VariableDoc {
	ns, ok := Resolve(v).(NamespaceDoc)
	if !ok {
		return nil
	}
	byName := map[string]*VariableDoc{}
	if vars, known := ns.Namespace().Variables.Get(); known {
		for name, vd := range vars {
			byName[name] = vd
		}
	}
	if cls, isClass := ns.(*ClassDoc); isClass {
		if locals, known := cls.LocalVariables.Get(); known {
			for name, vd := range locals {
				if _, present := byName[name]; !present {
					byName[name] = vd
				}
			}
		}
	}
	if len(byName) == 0 {
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*VariableDoc, len(names))
	for i, name := range names {
		out[i] = byName[name]
	}
	return out
}

// StructuralLinksOf returns the values reachable from v through
// non-variable edges: a module's package, a class's bases and
// subclasses, a property's accessors. These edges never contribute
// canonical names directly; the canonicalizer assigns synthetic names
// along them.
func StructuralLinksOf(v ValueDoc) []ValueDoc {
	var out []ValueDoc
	add := func(x ValueDoc) {
		if r := Resolve(x); r != nil {
			out = append(out, r)
		}
	}
	switch doc := Resolve(v).(type) {
	case *ModuleDoc:
		if pkg, known := doc.Package.Get(); known && pkg != nil {
			add(pkg)
		}
	case *ClassDoc:
		if bases, known := doc.Bases.Get(); known {
			for _, base := range bases {
				add(base)
			}
		}
		if subs, known := doc.Subclasses.Get(); known {
			for _, sub := range subs {
				add(sub)
			}
		}
	case *PropertyDoc:
		for _, acc := range []Opt[ValueDoc]{doc.Fget, doc.Fset, doc.Fdel} {
			if fn, known := acc.Get(); known && fn != nil {
				add(fn)
			}
		}
	}
	return out
}
