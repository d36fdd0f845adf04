package graphio

import (
	"github.com/teranos/docgraph/apidoc"
	"github.com/teranos/docgraph/docindex"
	"github.com/teranos/docgraph/errors"
)

// Encode flattens the graph rooted at roots into a Document.
//
// Two fields never travel: Raw (an opaque in-process producer handle)
// and CanonicalContainer (rederived by reindexing after a load).
func Encode(roots []docindex.Root) (*Document, error) {
	e := &encoder{
		valIDs: map[apidoc.ValueDoc]int{},
		varIDs: map[*apidoc.VariableDoc]int{},
	}
	doc := &Document{Format: FormatV1}
	for _, root := range roots {
		id := e.value(root.Value)
		if id == nilRef {
			return nil, errors.Newf("root %s has no value", root.Name)
		}
		doc.Roots = append(doc.Roots, RootRef{Name: root.Name.String(), Value: id})
	}
	for _, rec := range e.values {
		doc.Values = append(doc.Values, *rec)
	}
	for _, rec := range e.vars {
		doc.Variables = append(doc.Variables, *rec)
	}
	return doc, nil
}

type encoder struct {
	values []*ValueRec
	vars   []*VariableRec
	valIDs map[apidoc.ValueDoc]int
	varIDs map[*apidoc.VariableDoc]int
}

// value returns the id for v, emitting its record (and everything it
// references) on first sight.
func (e *encoder) value(v apidoc.ValueDoc) int {
	v = apidoc.Resolve(v)
	if v == nil {
		return nilRef
	}
	if id, ok := e.valIDs[v]; ok {
		return id
	}

	id := len(e.values)
	e.valIDs[v] = id
	rec := &ValueRec{
		ID:       id,
		Kind:     v.Kind().String(),
		DescrRec: descrRec(v.Doc()),
	}
	e.values = append(e.values, rec)

	base := v.Base()
	rec.CanonicalName = optName(base.CanonicalName)
	rec.ImportedFrom = optName(base.ImportedFrom)
	rec.Repr = optString(base.Repr)
	rec.Filename = optString(base.Filename)

	if ns, ok := v.(apidoc.NamespaceDoc); ok {
		e.namespace(rec, ns.Namespace())
	}

	switch doc := v.(type) {
	case *apidoc.ModuleDoc:
		if pkg, known := doc.Package.Get(); known {
			rec.Package = ref(e.modRef(pkg))
		}
		rec.Docformat = optString(doc.Docformat)
		if subs, known := doc.Submodules.Get(); known {
			ids := make([]int, len(subs))
			for i, sub := range subs {
				ids[i] = e.modRef(sub)
			}
			rec.Submodules = &ids
		}
		rec.IsPackage = optBool(doc.IsPackage)

	case *apidoc.ClassDoc:
		if locals, known := doc.LocalVariables.Get(); known {
			rec.LocalVariables = e.variableMap(locals)
		}
		if bases, known := doc.Bases.Get(); known {
			ids := make([]int, len(bases))
			for i, b := range bases {
				ids[i] = e.value(b)
			}
			rec.Bases = &ids
		}
		if subs, known := doc.Subclasses.Get(); known {
			ids := make([]int, len(subs))
			for i, s := range subs {
				ids[i] = e.value(s)
			}
			rec.Subclasses = &ids
		}

	case *apidoc.RoutineDoc:
		if args, known := doc.Posargs.Get(); known {
			rec.Posargs = &args
		}
		if defaults, known := doc.PosargDefaults.Get(); known {
			ids := make([]int, len(defaults))
			for i, d := range defaults {
				ids[i] = e.value(d)
			}
			rec.PosargDefaults = &ids
		}
		rec.Vararg = optString(doc.Vararg)
		rec.Kwarg = optString(doc.Kwarg)
		if descrs, known := doc.ArgDescrs.Get(); known {
			for _, d := range descrs {
				rec.ArgDescrs = append(rec.ArgDescrs, ArgDescrRec{Names: d.Names, Descr: d.Descr})
			}
		}
		if types, known := doc.ArgTypes.Get(); known {
			rec.ArgTypes = types
		}
		rec.ReturnDescr = optString(doc.ReturnDescr)
		rec.ReturnType = optString(doc.ReturnType)
		if excs, known := doc.ExceptionDescrs.Get(); known {
			for _, x := range excs {
				rec.ExceptionDescrs = append(rec.ExceptionDescrs, ExceptionRec{Name: x.Name.String(), Descr: x.Descr})
			}
		}

	case *apidoc.PropertyDoc:
		rec.Fget = e.accessor(doc.Fget)
		rec.Fset = e.accessor(doc.Fset)
		rec.Fdel = e.accessor(doc.Fdel)
	}

	return id
}

func (e *encoder) namespace(rec *ValueRec, ns *apidoc.NamespaceVars) {
	if vars, known := ns.Variables.Get(); known {
		rec.Variables = e.variableMap(vars)
	}
	if spec, known := ns.SortSpec.Get(); known {
		rec.SortSpec = &spec
	}
	if specs, known := ns.GroupSpecs.Get(); known {
		for _, g := range specs {
			rec.GroupSpecs = append(rec.GroupSpecs, GroupRec{Name: g.Name, Variables: g.Variables})
		}
	}
}

func (e *encoder) variableMap(vars map[string]*apidoc.VariableDoc) map[string]int {
	out := make(map[string]int, len(vars))
	for name, vd := range vars {
		out[name] = e.variable(vd)
	}
	return out
}

func (e *encoder) variable(vd *apidoc.VariableDoc) int {
	vd = vd.Resolve()
	if vd == nil {
		return nilRef
	}
	if id, ok := e.varIDs[vd]; ok {
		return id
	}

	id := len(e.vars)
	e.varIDs[vd] = id
	rec := &VariableRec{
		ID:       id,
		Name:     vd.Name,
		DescrRec: descrRec(vd.Doc()),
	}
	e.vars = append(e.vars, rec)

	rec.Container = e.value(vd.Container)
	if val, known := vd.Value.Get(); known {
		rec.Value = ref(e.value(val))
	}
	rec.IsImported = optBool(vd.IsImported)
	rec.IsInstvar = optBool(vd.IsInstvar)
	rec.IsAlias = optBool(vd.IsAlias)
	rec.IsPublic = optBool(vd.IsPublic)
	if over, known := vd.Overrides.Get(); known {
		rec.Overrides = ref(e.variable(over))
	}
	rec.TypeDescr = optString(vd.TypeDescr)

	return id
}

// modRef encodes a module reference, tolerating a nil module.
func (e *encoder) modRef(mod *apidoc.ModuleDoc) int {
	if mod == nil {
		return nilRef
	}
	return e.value(mod)
}

func (e *encoder) accessor(acc apidoc.Opt[apidoc.ValueDoc]) *int {
	fn, known := acc.Get()
	if !known {
		return nil
	}
	return ref(e.value(fn))
}

func descrRec(d *apidoc.DocInfo) DescrRec {
	rec := DescrRec{
		Docstring: optString(d.Docstring),
		Descr:     optString(d.Descr),
		Summary:   optString(d.Summary),
	}
	if meta, known := d.Metadata.Get(); known {
		rec.Metadata = meta
	}
	return rec
}

func optString(o apidoc.Opt[string]) *string {
	if v, known := o.Get(); known {
		return &v
	}
	return nil
}

func optBool(o apidoc.Opt[bool]) *bool {
	if v, known := o.Get(); known {
		return &v
	}
	return nil
}

func optName(o apidoc.Opt[apidoc.DottedName]) *string {
	if v, known := o.Get(); known {
		s := v.String()
		return &s
	}
	return nil
}

func ref(id int) *int {
	return &id
}
