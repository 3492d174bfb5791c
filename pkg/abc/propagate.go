package abc

// propagateStrings is the back-fill pass run once by Decode. It resolves
// numeric constant-pool indices into the semantic strings used
// everywhere else in the program (qualified names, traits, exceptions),
// so later code never has to re-walk the pool to stringify an index.
//
// Grounded in the two-phase "decode raw, then lower" shape described in
// this repository's design notes: nothing here mutates an index field,
// only the back-fill fields declared alongside them.
func (img *Image) propagateStrings() {
	p := img.Pool

	for _, ns := range p.Namespaces {
		if ns == nil {
			continue
		}
		ns.Name = p.stringAt(ns.NameIx)
	}

	for _, m := range p.Multinames {
		if m == nil {
			continue
		}
		propagateMultinameName(m, p)
	}

	for i := range img.Instances {
		inst := &img.Instances[i]
		inst.Name = qualifiedNameAt(p, inst.NameIx)
		inst.SuperName = qualifiedNameAt(p, inst.SuperNameIx)
		propagateTraitNames(inst.Traits, p)
	}

	for i := range img.Classes {
		// Classes and Instances are paired 1:1 by index (spec.md §4.2).
		if i < len(img.Instances) {
			img.Classes[i].Name = img.Instances[i].Name
			img.Classes[i].SuperName = img.Instances[i].SuperName
		}
		propagateTraitNames(img.Classes[i].Traits, p)
	}

	for i := range img.Scripts {
		propagateTraitNames(img.Scripts[i].Traits, p)
	}

	for i := range img.Methods {
		m := &img.Methods[i]
		m.Name = p.stringAt(m.NameIx)
	}

	for bi := range img.MethodBodies {
		b := &img.MethodBodies[bi]
		if int(b.MethodIx) < len(img.Methods) {
			img.Methods[b.MethodIx].BodyIx = bi
		}
		for ei := range b.Exceptions {
			e := &b.Exceptions[ei]
			e.ExcTypeName = qualifiedNameAt(p, e.ExcTypeIx)
			e.VarName = p.stringAt(e.VarNameIx)
		}
		propagateTraitNames(b.Traits, p)
	}
}

func propagateTraitNames(traits []Trait, p *ConstantPool) {
	for i := range traits {
		t := &traits[i]
		t.Name = p.stringAt(t.NameIx)
		if t.Slot != nil {
			t.Slot.TypeName = qualifiedNameAt(p, t.Slot.TypeNameIx)
		}
	}
}

func (p *ConstantPool) stringAt(ix uint32) string {
	if int(ix) >= len(p.Strings) {
		return ""
	}
	return p.Strings[ix]
}

// qualifiedNameAt returns the qualified name ("namespace.name", or just
// "name" for an empty namespace) for the multiname at ix, or "" for an
// absent (0) index.
func qualifiedNameAt(p *ConstantPool, ix uint32) string {
	if ix == 0 || int(ix) >= len(p.Multinames) || p.Multinames[ix] == nil {
		return ""
	}
	return p.Multinames[ix].QualifiedName()
}

func propagateMultinameName(m Multiname, p *ConstantPool) {
	switch v := m.(type) {
	case *QName:
		v.setQualifiedName(qualifiedName(p.NamespaceName(v.NsIx), p.stringAt(v.NameIx)))
	case *RTQName:
		// namespace supplied at runtime; only the name half is known now.
		v.setQualifiedName(p.stringAt(v.NameIx))
	case *RTQNameL:
		// both halves supplied at runtime.
	case *Multiname_:
		v.setQualifiedName(p.stringAt(v.NameIx))
	case *MultinameL:
		// name supplied at runtime.
	case *TypeName:
		v.setQualifiedName(qualifiedNameAt(p, v.QNameIx))
	}
}

// qualifiedName joins a namespace and a name the way the link tables
// (spec.md §3.5) key on: "namespace.name", eliding the separator when
// the namespace is empty, matching a private namespace with no name.
func qualifiedName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}
