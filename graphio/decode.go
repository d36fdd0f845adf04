package graphio

import (
	"github.com/teranos/docgraph/apidoc"
	"github.com/teranos/docgraph/docindex"
	"github.com/teranos/docgraph/errors"
)

// Decode rebuilds a graph from a Document. References are checked;
// a dangling id is an error.
func Decode(doc *Document) ([]docindex.Root, error) {
	if doc.Format != FormatV1 {
		return nil, errors.Newf("unsupported graph format %q", doc.Format)
	}

	d := &decoder{
		values: make(map[int]apidoc.ValueDoc, len(doc.Values)),
		vars:   make(map[int]*apidoc.VariableDoc, len(doc.Variables)),
	}

	// First pass: allocate every record so references can be linked in
	// any order.
	for _, rec := range doc.Values {
		v, err := newValue(rec.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d", rec.ID)
		}
		if _, dup := d.values[rec.ID]; dup {
			return nil, errors.Newf("duplicate value id %d", rec.ID)
		}
		d.values[rec.ID] = v
	}
	for _, rec := range doc.Variables {
		if _, dup := d.vars[rec.ID]; dup {
			return nil, errors.Newf("duplicate variable id %d", rec.ID)
		}
		d.vars[rec.ID] = &apidoc.VariableDoc{Name: rec.Name}
	}

	// Second pass: fill fields and link references.
	for _, rec := range doc.Values {
		if err := d.fillValue(rec); err != nil {
			return nil, errors.Wrapf(err, "value %d", rec.ID)
		}
	}
	for _, rec := range doc.Variables {
		if err := d.fillVariable(rec); err != nil {
			return nil, errors.Wrapf(err, "variable %d", rec.ID)
		}
	}

	var roots []docindex.Root
	for _, ref := range doc.Roots {
		name, err := apidoc.NewDottedName(ref.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "root %q", ref.Name)
		}
		value, err := d.val(ref.Value)
		if err != nil || value == nil {
			return nil, errors.Newf("root %q: bad value ref %d", ref.Name, ref.Value)
		}
		roots = append(roots, docindex.Root{Name: name, Value: value})
	}
	return roots, nil
}

type decoder struct {
	values map[int]apidoc.ValueDoc
	vars   map[int]*apidoc.VariableDoc
}

func newValue(kind string) (apidoc.ValueDoc, error) {
	switch kind {
	case apidoc.KindValue.String():
		return &apidoc.GenericValueDoc{}, nil
	case apidoc.KindModule.String():
		return &apidoc.ModuleDoc{}, nil
	case apidoc.KindClass.String():
		return &apidoc.ClassDoc{}, nil
	case apidoc.KindRoutine.String():
		return &apidoc.RoutineDoc{}, nil
	case apidoc.KindProperty.String():
		return &apidoc.PropertyDoc{}, nil
	default:
		return nil, errors.Newf("unknown record kind %q", kind)
	}
}

func (d *decoder) val(id int) (apidoc.ValueDoc, error) {
	if id == nilRef {
		return nil, nil
	}
	v, ok := d.values[id]
	if !ok {
		return nil, errors.Newf("dangling value ref %d", id)
	}
	return v, nil
}

func (d *decoder) variable(id int) (*apidoc.VariableDoc, error) {
	if id == nilRef {
		return nil, nil
	}
	vd, ok := d.vars[id]
	if !ok {
		return nil, errors.Newf("dangling variable ref %d", id)
	}
	return vd, nil
}

func (d *decoder) fillValue(rec ValueRec) error {
	v := d.values[rec.ID]
	base := v.Base()

	fillDescr(v.Doc(), rec.DescrRec)
	if err := setOptName(&base.CanonicalName, rec.CanonicalName); err != nil {
		return err
	}
	if err := setOptName(&base.ImportedFrom, rec.ImportedFrom); err != nil {
		return err
	}
	setOptString(&base.Repr, rec.Repr)
	setOptString(&base.Filename, rec.Filename)

	if ns, ok := v.(apidoc.NamespaceDoc); ok {
		if err := d.fillNamespace(ns.Namespace(), rec); err != nil {
			return err
		}
	}

	switch doc := v.(type) {
	case *apidoc.ModuleDoc:
		if rec.Package != nil {
			pkg, err := d.val(*rec.Package)
			if err != nil {
				return err
			}
			mod, _ := pkg.(*apidoc.ModuleDoc)
			if pkg != nil && mod == nil {
				return errors.Newf("package ref %d is not a module", *rec.Package)
			}
			doc.Package = apidoc.Known(mod)
		}
		setOptString(&doc.Docformat, rec.Docformat)
		if rec.Submodules != nil {
			subs := make([]*apidoc.ModuleDoc, 0, len(*rec.Submodules))
			for _, id := range *rec.Submodules {
				sub, err := d.val(id)
				if err != nil {
					return err
				}
				mod, ok := sub.(*apidoc.ModuleDoc)
				if !ok {
					return errors.Newf("submodule ref %d is not a module", id)
				}
				subs = append(subs, mod)
			}
			doc.Submodules = apidoc.Known(subs)
		}
		setOptBool(&doc.IsPackage, rec.IsPackage)

	case *apidoc.ClassDoc:
		if rec.LocalVariables != nil {
			locals, err := d.variableMap(rec.LocalVariables)
			if err != nil {
				return err
			}
			doc.LocalVariables = apidoc.Known(locals)
		}
		if rec.Bases != nil {
			bases, err := d.valueList(*rec.Bases)
			if err != nil {
				return err
			}
			doc.Bases = apidoc.Known(bases)
		}
		if rec.Subclasses != nil {
			subs, err := d.valueList(*rec.Subclasses)
			if err != nil {
				return err
			}
			doc.Subclasses = apidoc.Known(subs)
		}

	case *apidoc.RoutineDoc:
		if rec.Posargs != nil {
			doc.Posargs = apidoc.Known(*rec.Posargs)
		}
		if rec.PosargDefaults != nil {
			defaults, err := d.valueList(*rec.PosargDefaults)
			if err != nil {
				return err
			}
			doc.PosargDefaults = apidoc.Known(defaults)
		}
		setOptString(&doc.Vararg, rec.Vararg)
		setOptString(&doc.Kwarg, rec.Kwarg)
		if rec.ArgDescrs != nil {
			descrs := make([]apidoc.ArgDescr, len(rec.ArgDescrs))
			for i, a := range rec.ArgDescrs {
				descrs[i] = apidoc.ArgDescr{Names: a.Names, Descr: a.Descr}
			}
			doc.ArgDescrs = apidoc.Known(descrs)
		}
		if rec.ArgTypes != nil {
			doc.ArgTypes = apidoc.Known(rec.ArgTypes)
		}
		setOptString(&doc.ReturnDescr, rec.ReturnDescr)
		setOptString(&doc.ReturnType, rec.ReturnType)
		if rec.ExceptionDescrs != nil {
			excs := make([]apidoc.ExceptionDescr, len(rec.ExceptionDescrs))
			for i, x := range rec.ExceptionDescrs {
				name, err := apidoc.NewDottedName(x.Name)
				if err != nil {
					return errors.Wrapf(err, "exception %q", x.Name)
				}
				excs[i] = apidoc.ExceptionDescr{Name: name, Descr: x.Descr}
			}
			doc.ExceptionDescrs = apidoc.Known(excs)
		}

	case *apidoc.PropertyDoc:
		var err error
		if doc.Fget, err = d.accessor(rec.Fget); err != nil {
			return err
		}
		if doc.Fset, err = d.accessor(rec.Fset); err != nil {
			return err
		}
		if doc.Fdel, err = d.accessor(rec.Fdel); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) fillNamespace(ns *apidoc.NamespaceVars, rec ValueRec) error {
	if rec.Variables != nil {
		vars, err := d.variableMap(rec.Variables)
		if err != nil {
			return err
		}
		ns.Variables = apidoc.Known(vars)
	}
	if rec.SortSpec != nil {
		ns.SortSpec = apidoc.Known(*rec.SortSpec)
	}
	if rec.GroupSpecs != nil {
		specs := make([]apidoc.GroupSpec, len(rec.GroupSpecs))
		for i, g := range rec.GroupSpecs {
			specs[i] = apidoc.GroupSpec{Name: g.Name, Variables: g.Variables}
		}
		ns.GroupSpecs = apidoc.Known(specs)
	}
	return nil
}

func (d *decoder) fillVariable(rec VariableRec) error {
	vd := d.vars[rec.ID]
	fillDescr(vd.Doc(), rec.DescrRec)

	container, err := d.val(rec.Container)
	if err != nil {
		return err
	}
	vd.Container = container

	if rec.Value != nil {
		value, err := d.val(*rec.Value)
		if err != nil {
			return err
		}
		vd.Value = apidoc.Known(value)
	}
	setOptBool(&vd.IsImported, rec.IsImported)
	setOptBool(&vd.IsInstvar, rec.IsInstvar)
	setOptBool(&vd.IsAlias, rec.IsAlias)
	setOptBool(&vd.IsPublic, rec.IsPublic)
	if rec.Overrides != nil {
		over, err := d.variable(*rec.Overrides)
		if err != nil {
			return err
		}
		vd.Overrides = apidoc.Known(over)
	}
	setOptString(&vd.TypeDescr, rec.TypeDescr)
	return nil
}

func (d *decoder) variableMap(refs map[string]int) (map[string]*apidoc.VariableDoc, error) {
	out := make(map[string]*apidoc.VariableDoc, len(refs))
	for name, id := range refs {
		vd, err := d.variable(id)
		if err != nil {
			return nil, err
		}
		out[name] = vd
	}
	return out, nil
}

func (d *decoder) valueList(ids []int) ([]apidoc.ValueDoc, error) {
	out := make([]apidoc.ValueDoc, len(ids))
	for i, id := range ids {
		v, err := d.val(id)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (d *decoder) accessor(id *int) (apidoc.Opt[apidoc.ValueDoc], error) {
	if id == nil {
		return apidoc.Unknown[apidoc.ValueDoc](), nil
	}
	v, err := d.val(*id)
	if err != nil {
		return apidoc.Unknown[apidoc.ValueDoc](), err
	}
	return apidoc.Known(v), nil
}

func fillDescr(info *apidoc.DocInfo, rec DescrRec) {
	setOptString(&info.Docstring, rec.Docstring)
	setOptString(&info.Descr, rec.Descr)
	setOptString(&info.Summary, rec.Summary)
	if rec.Metadata != nil {
		info.Metadata = apidoc.Known(rec.Metadata)
	}
}

func setOptString(dst *apidoc.Opt[string], src *string) {
	if src != nil {
		*dst = apidoc.Known(*src)
	}
}

func setOptBool(dst *apidoc.Opt[bool], src *bool) {
	if src != nil {
		*dst = apidoc.Known(*src)
	}
}

func setOptName(dst *apidoc.Opt[apidoc.DottedName], src *string) error {
	if src == nil {
		return nil
	}
	name, err := apidoc.NewDottedName(*src)
	if err != nil {
		return err
	}
	*dst = apidoc.Known(name)
	return nil
}
