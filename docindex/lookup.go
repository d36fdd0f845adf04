package docindex

import (
	"github.com/teranos/docgraph/apidoc"
)

// GetValDoc returns the value documented under name, or nil. A variable
// whose value is unknown hides anything beneath it.
func (ix *DocIndex) GetValDoc(name apidoc.DottedName) apidoc.ValueDoc {
	_, val := ix.lookup(name)
	return val
}

// GetVarDoc returns the variable binding documented under name, or nil.
// Roots and submodules are values, not bindings, so looking them up
// here yields nil.
func (ix *DocIndex) GetVarDoc(name apidoc.DottedName) *apidoc.VariableDoc {
	vr, _ := ix.lookup(name)
	return vr
}

// lookup finds name by walking down from the shortest dominating root,
// one identifier at a time. At each step the current namespace's
// variables are tried first; failing that, a module may descend into a
// submodule of the right name.
func (ix *DocIndex) lookup(name apidoc.DottedName) (*apidoc.VariableDoc, apidoc.ValueDoc) {
	if name.IsZero() {
		return nil, nil
	}
	for _, root := range ix.roots {
		r := apidoc.Resolve(root)
		rootName, known := r.Base().CanonicalName.Get()
		if !known || !rootName.Dominates(name) {
			continue
		}
		if vr, val := ix.walk(r, name.Slice(rootName.Len(), name.Len())); vr != nil || val != nil {
			return vr, val
		}
	}
	return nil, nil
}

func (ix *DocIndex) walk(from apidoc.ValueDoc, rest apidoc.DottedName) (*apidoc.VariableDoc, apidoc.ValueDoc) {
	var binding *apidoc.VariableDoc
	val := apidoc.Resolve(from)

	for i := 0; i < rest.Len(); i++ {
		if val == nil {
			return nil, nil
		}
		ident := rest.At(i)

		if vd := namespaceVariable(val, ident); vd != nil {
			binding = vd
			if v, known := vd.Value.Get(); known {
				val = apidoc.Resolve(v)
			} else {
				val = nil
			}
			continue
		}

		sub := submoduleNamed(val, ident)
		if sub == nil {
			return nil, nil
		}
		binding = nil
		val = sub
	}
	return binding, val
}

func namespaceVariable(v apidoc.ValueDoc, ident string) *apidoc.VariableDoc {
	for _, vd := range apidoc.VariablesOf(v) {
		if vd := vd.Resolve(); vd.Name == ident {
			return vd
		}
	}
	return nil
}

// submoduleNamed returns v's submodule whose canonical name is v's name
// extended with ident, or nil.
func submoduleNamed(v apidoc.ValueDoc, ident string) apidoc.ValueDoc {
	mod, ok := v.(*apidoc.ModuleDoc)
	if !ok {
		return nil
	}
	subs, known := mod.Submodules.Get()
	if !known {
		return nil
	}
	parentName, known := mod.CanonicalName.Get()
	if !known {
		return nil
	}
	want, err := parentName.Child(ident)
	if err != nil {
		return nil
	}
	for _, sub := range subs {
		s := apidoc.Resolve(sub)
		if s == nil {
			continue
		}
		if name, known := s.Base().CanonicalName.Get(); known && name.Equal(want) {
			return s
		}
	}
	return nil
}
