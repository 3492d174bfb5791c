package abc

import (
	"fmt"

	"github.com/kristofer/avm2/pkg/reader"
)

// Decode reads one complete ABC block from buf, in the canonical field
// order: version, constant pool, methods, metadata, instances+classes,
// scripts, method bodies. It then runs the name back-fill pass once
// before returning, so every record's back-filled fields (Name,
// QualifiedName, and friends) are populated by the time Decode returns.
//
// The input is assumed to contain exactly one ABC block with no trailing
// data; callers extracting ABC bytes from a SWF's DoABC tag (see package
// swf) already satisfy this.
func Decode(buf []byte) (*Image, error) {
	r := reader.New(buf)

	minor, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("abc: minor_version: %w", err)
	}
	major, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("abc: major_version: %w", err)
	}

	pool, err := decodeConstantPool(r)
	if err != nil {
		return nil, fmt.Errorf("abc: constant pool: %w", err)
	}

	methods, err := decodeMethods(r)
	if err != nil {
		return nil, fmt.Errorf("abc: methods: %w", err)
	}

	metadata, err := decodeMetadata(r)
	if err != nil {
		return nil, fmt.Errorf("abc: metadata: %w", err)
	}

	classCount, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("abc: class_count: %w", err)
	}
	instances := make([]Instance, classCount)
	for i := range instances {
		inst, err := decodeInstance(r)
		if err != nil {
			return nil, fmt.Errorf("abc: instance %d: %w", i, err)
		}
		instances[i] = *inst
	}
	classes := make([]Class, classCount)
	for i := range classes {
		cls, err := decodeClass(r)
		if err != nil {
			return nil, fmt.Errorf("abc: class %d: %w", i, err)
		}
		classes[i] = *cls
	}

	scripts, err := decodeScripts(r)
	if err != nil {
		return nil, fmt.Errorf("abc: scripts: %w", err)
	}

	bodies, err := decodeMethodBodies(r)
	if err != nil {
		return nil, fmt.Errorf("abc: method bodies: %w", err)
	}

	img := &Image{
		MinorVersion: minor,
		MajorVersion: major,
		Pool:         pool,
		Methods:      methods,
		Metadata:     metadata,
		Instances:    instances,
		Classes:      classes,
		Scripts:      scripts,
		MethodBodies: bodies,
	}
	img.propagateStrings()
	return img, nil
}

func decodeConstantPool(r *reader.Reader) (*ConstantPool, error) {
	p := newConstantPool()

	intCount, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("int_count: %w", err)
	}
	for i := uint32(1); i < intCount; i++ {
		v, err := r.ReadS32()
		if err != nil {
			return nil, fmt.Errorf("integers[%d]: %w", i, err)
		}
		p.Integers = append(p.Integers, v)
	}

	uintCount, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("uint_count: %w", err)
	}
	for i := uint32(1); i < uintCount; i++ {
		v, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("uints[%d]: %w", i, err)
		}
		p.UInts = append(p.UInts, v)
	}

	doubleCount, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("double_count: %w", err)
	}
	for i := uint32(1); i < doubleCount; i++ {
		v, err := r.ReadD64()
		if err != nil {
			return nil, fmt.Errorf("doubles[%d]: %w", i, err)
		}
		p.Doubles = append(p.Doubles, v)
	}

	stringCount, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("string_count: %w", err)
	}
	for i := uint32(1); i < stringCount; i++ {
		v, err := r.ReadLengthPrefixedString()
		if err != nil {
			return nil, fmt.Errorf("strings[%d]: %w", i, err)
		}
		p.Strings = append(p.Strings, v)
	}

	nsCount, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("namespace_count: %w", err)
	}
	for i := uint32(1); i < nsCount; i++ {
		kindByte, err := r.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("namespaces[%d] kind: %w", i, err)
		}
		nameIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("namespaces[%d] name_ix: %w", i, err)
		}
		p.Namespaces = append(p.Namespaces, &Namespace{Kind: NamespaceKind(kindByte), NameIx: nameIx})
	}

	nsSetCount, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("ns_set_count: %w", err)
	}
	for i := uint32(1); i < nsSetCount; i++ {
		count, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("ns_sets[%d] count: %w", i, err)
		}
		set := make(NsSet, count)
		for j := range set {
			set[j], err = r.ReadU30()
			if err != nil {
				return nil, fmt.Errorf("ns_sets[%d][%d]: %w", i, j, err)
			}
		}
		p.NsSets = append(p.NsSets, set)
	}

	multinameCount, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("multiname_count: %w", err)
	}
	for i := uint32(1); i < multinameCount; i++ {
		m, err := decodeMultiname(r)
		if err != nil {
			return nil, fmt.Errorf("multinames[%d]: %w", i, err)
		}
		p.Multinames = append(p.Multinames, m)
	}

	return p, nil
}

func decodeMethods(r *reader.Reader) ([]Method, error) {
	count, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("method_count: %w", err)
	}
	methods := make([]Method, count)
	for i := range methods {
		m, err := decodeMethod(r)
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
		methods[i] = *m
	}
	return methods, nil
}

func decodeMethod(r *reader.Reader) (*Method, error) {
	paramCount, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("param_count: %w", err)
	}
	returnTypeIx, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("return_type: %w", err)
	}
	paramTypeIxs := make([]uint32, paramCount)
	for i := range paramTypeIxs {
		paramTypeIxs[i], err = r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("param_type[%d]: %w", i, err)
		}
	}
	nameIx, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("name_ix: %w", err)
	}
	flagsByte, err := r.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	flags := MethodFlags(flagsByte)

	m := &Method{
		ParamCount:   paramCount,
		ReturnTypeIx: returnTypeIx,
		ParamTypeIxs: paramTypeIxs,
		NameIx:       nameIx,
		Flags:        flags,
		BodyIx:       -1,
	}

	if flags.Has(MethodFlagHasOptional) {
		optionCount, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("option_count: %w", err)
		}
		m.Options = make([]OptionDetail, optionCount)
		for i := range m.Options {
			valueIx, err := r.ReadU30()
			if err != nil {
				return nil, fmt.Errorf("option[%d] value: %w", i, err)
			}
			kindByte, err := r.ReadU8()
			if err != nil {
				return nil, fmt.Errorf("option[%d] kind: %w", i, err)
			}
			m.Options[i] = OptionDetail{ValueIx: valueIx, Kind: ConstantKind(kindByte)}
		}
	}

	if flags.Has(MethodFlagHasParamNames) {
		m.ParamNameIxs = make([]uint32, paramCount)
		for i := range m.ParamNameIxs {
			m.ParamNameIxs[i], err = r.ReadU30()
			if err != nil {
				return nil, fmt.Errorf("param_name[%d]: %w", i, err)
			}
		}
	}

	return m, nil
}

func decodeMetadata(r *reader.Reader) ([]Metadata, error) {
	count, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("metadata_count: %w", err)
	}
	metas := make([]Metadata, count)
	for i := range metas {
		nameIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("metadata %d name_ix: %w", i, err)
		}
		itemCount, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("metadata %d item_count: %w", i, err)
		}
		keys := make([]uint32, itemCount)
		values := make([]uint32, itemCount)
		for j := range keys {
			keys[j], err = r.ReadU30()
			if err != nil {
				return nil, fmt.Errorf("metadata %d key[%d]: %w", i, j, err)
			}
		}
		for j := range values {
			values[j], err = r.ReadU30()
			if err != nil {
				return nil, fmt.Errorf("metadata %d value[%d]: %w", i, j, err)
			}
		}
		metas[i] = Metadata{NameIx: nameIx, ItemKeyIxs: keys, ItemValueIxs: values}
	}
	return metas, nil
}

func decodeTraits(r *reader.Reader) ([]Trait, error) {
	count, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("trait_count: %w", err)
	}
	traits := make([]Trait, count)
	for i := range traits {
		t, err := decodeTrait(r)
		if err != nil {
			return nil, fmt.Errorf("trait %d: %w", i, err)
		}
		traits[i] = *t
	}
	return traits, nil
}

func decodeTrait(r *reader.Reader) (*Trait, error) {
	nameIx, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("name_ix: %w", err)
	}
	kindByte, err := r.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("kind: %w", err)
	}
	kind := TraitKind(kindByte & 0x0F)
	attrs := TraitAttributes(kindByte >> 4)

	t := &Trait{NameIx: nameIx, Kind: kind, Attributes: attrs}

	switch kind {
	case TraitKindSlot, TraitKindConst:
		slotId, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("slot_id: %w", err)
		}
		typeNameIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("type_name: %w", err)
		}
		vindex, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("vindex: %w", err)
		}
		slot := &TraitSlot{SlotId: slotId, TypeNameIx: typeNameIx, VIndex: vindex}
		if vindex != 0 {
			vkindByte, err := r.ReadU8()
			if err != nil {
				return nil, fmt.Errorf("vkind: %w", err)
			}
			slot.VKind = ConstantKind(vkindByte)
		}
		t.Slot = slot

	case TraitKindClass:
		slotId, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("slot_id: %w", err)
		}
		classIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("class_ix: %w", err)
		}
		t.ClassT = &TraitClass{SlotId: slotId, ClassIx: classIx}

	case TraitKindFunction:
		slotId, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("slot_id: %w", err)
		}
		functionIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("function_ix: %w", err)
		}
		t.Function = &TraitFunction{SlotId: slotId, FunctionIx: functionIx}

	case TraitKindMethod, TraitKindGetter, TraitKindSetter:
		dispId, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("disp_id: %w", err)
		}
		methodIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("method_ix: %w", err)
		}
		t.MethodT = &TraitMethod{DispositionId: dispId, MethodIx: methodIx}

	default:
		return nil, fmt.Errorf("unknown trait kind %d", kind)
	}

	if attrs.Has(TraitAttrMetadata) {
		count, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("metadata_count: %w", err)
		}
		t.MetadataIxs = make([]uint32, count)
		for i := range t.MetadataIxs {
			t.MetadataIxs[i], err = r.ReadU30()
			if err != nil {
				return nil, fmt.Errorf("metadata[%d]: %w", i, err)
			}
		}
	}

	return t, nil
}

func decodeInstance(r *reader.Reader) (*Instance, error) {
	nameIx, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("name_ix: %w", err)
	}
	superNameIx, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("super_name_ix: %w", err)
	}
	flagsByte, err := r.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	flags := ClassFlags(flagsByte)

	inst := &Instance{NameIx: nameIx, SuperNameIx: superNameIx, Flags: flags}

	if flags.Has(ClassFlagProtectedNS) {
		inst.ProtectedNamespaceIx, err = r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("protectedNS: %w", err)
		}
	}

	intfCount, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("interface_count: %w", err)
	}
	inst.InterfaceIxs = make([]uint32, intfCount)
	for i := range inst.InterfaceIxs {
		inst.InterfaceIxs[i], err = r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("interface[%d]: %w", i, err)
		}
	}

	inst.InitIx, err = r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("iinit: %w", err)
	}

	inst.Traits, err = decodeTraits(r)
	if err != nil {
		return nil, fmt.Errorf("traits: %w", err)
	}

	return inst, nil
}

func decodeClass(r *reader.Reader) (*Class, error) {
	initIx, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("cinit: %w", err)
	}
	traits, err := decodeTraits(r)
	if err != nil {
		return nil, fmt.Errorf("traits: %w", err)
	}
	return &Class{InitIx: initIx, Traits: traits}, nil
}

func decodeScripts(r *reader.Reader) ([]Script, error) {
	count, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("script_count: %w", err)
	}
	scripts := make([]Script, count)
	for i := range scripts {
		initIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("script %d init: %w", i, err)
		}
		traits, err := decodeTraits(r)
		if err != nil {
			return nil, fmt.Errorf("script %d traits: %w", i, err)
		}
		scripts[i] = Script{InitIx: initIx, Traits: traits}
	}
	return scripts, nil
}

func decodeMethodBodies(r *reader.Reader) ([]MethodBody, error) {
	count, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("method_body_count: %w", err)
	}
	bodies := make([]MethodBody, count)
	for i := range bodies {
		b, err := decodeMethodBody(r)
		if err != nil {
			return nil, fmt.Errorf("method body %d: %w", i, err)
		}
		bodies[i] = *b
	}
	return bodies, nil
}

func decodeMethodBody(r *reader.Reader) (*MethodBody, error) {
	methodIx, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("method_ix: %w", err)
	}
	maxStack, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("max_stack: %w", err)
	}
	localCount, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("local_count: %w", err)
	}
	initScopeDepth, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("init_scope_depth: %w", err)
	}
	maxScopeDepth, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("max_scope_depth: %w", err)
	}
	codeLen, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("code_length: %w", err)
	}
	code, err := r.ReadN(int(codeLen))
	if err != nil {
		return nil, fmt.Errorf("code: %w", err)
	}
	codeCopy := make([]byte, len(code))
	copy(codeCopy, code)

	exceptionCount, err := r.ReadU30()
	if err != nil {
		return nil, fmt.Errorf("exception_count: %w", err)
	}
	exceptions := make([]Exception, exceptionCount)
	for i := range exceptions {
		from, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("exception %d from: %w", i, err)
		}
		to, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("exception %d to: %w", i, err)
		}
		target, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("exception %d target: %w", i, err)
		}
		excTypeIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("exception %d exc_type: %w", i, err)
		}
		varNameIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("exception %d var_name: %w", i, err)
		}
		exceptions[i] = Exception{From: from, To: to, Target: target, ExcTypeIx: excTypeIx, VarNameIx: varNameIx}
	}

	traits, err := decodeTraits(r)
	if err != nil {
		return nil, fmt.Errorf("traits: %w", err)
	}

	return &MethodBody{
		MethodIx:       methodIx,
		MaxStack:       maxStack,
		LocalCount:     localCount,
		InitScopeDepth: initScopeDepth,
		MaxScopeDepth:  maxScopeDepth,
		Code:           codeCopy,
		Exceptions:     exceptions,
		Traits:         traits,
	}, nil
}
