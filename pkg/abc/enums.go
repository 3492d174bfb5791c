// Package abc decodes the ActionScript Byte Code (ABC) binary format into
// a cross-referenced in-memory program image: a constant pool, methods,
// metadata, instances, classes, scripts, and method bodies.
//
// Decoding is two phases. First the format is read field-by-field in
// canonical order (see Decode). Then a single back-fill pass
// (propagateStrings) resolves numeric pool indices into the semantic
// names used by qualified-name lookups, so the rest of the program never
// re-walks the constant pool to stringify an index.
package abc

// NamespaceKind is the one-byte tag preceding a namespace_info record.
type NamespaceKind uint8

const (
	NamespaceKindNamespace          NamespaceKind = 0x08
	NamespaceKindPackageNamespace   NamespaceKind = 0x16
	NamespaceKindPackageInternalNS  NamespaceKind = 0x17
	NamespaceKindProtectedNamespace NamespaceKind = 0x18
	NamespaceKindExplicitNamespace  NamespaceKind = 0x19
	NamespaceKindStaticProtectedNS  NamespaceKind = 0x1A
	NamespaceKindPrivateNS          NamespaceKind = 0x05
)

// MultinameKind is the one-byte tag preceding a multiname_info record;
// it selects which fields follow (see Multiname).
type MultinameKind uint8

const (
	MultinameKindQName      MultinameKind = 0x07
	MultinameKindQNameA     MultinameKind = 0x0D
	MultinameKindRTQName    MultinameKind = 0x0F
	MultinameKindRTQNameA   MultinameKind = 0x10
	MultinameKindRTQNameL   MultinameKind = 0x11
	MultinameKindRTQNameLA  MultinameKind = 0x12
	MultinameKindMultiname  MultinameKind = 0x09
	MultinameKindMultinameA MultinameKind = 0x0E
	MultinameKindMultinameL MultinameKind = 0x1B
	MultinameKindMultinameLA MultinameKind = 0x1C
	MultinameKindTypeName   MultinameKind = 0x1D
)

// MethodFlags are the bitflags in method_info.flags.
type MethodFlags uint8

const (
	MethodFlagNone           MethodFlags = 0x00
	MethodFlagNeedArguments  MethodFlags = 0x01
	MethodFlagNeedActivation MethodFlags = 0x02
	MethodFlagNeedRest       MethodFlags = 0x04
	MethodFlagHasOptional    MethodFlags = 0x08
	MethodFlagIgnoreRest     MethodFlags = 0x10
	MethodFlagExplicit       MethodFlags = 0x20
	MethodFlagSetDXNS        MethodFlags = 0x40
	MethodFlagHasParamNames  MethodFlags = 0x80
)

func (f MethodFlags) Has(bit MethodFlags) bool { return f&bit != 0 }

// ConstantKind tags the kind of an option_detail's default value, and of
// a Slot/Const trait's default value.
type ConstantKind uint8

const (
	ConstantKindInt                 ConstantKind = 0x03
	ConstantKindUInt                ConstantKind = 0x04
	ConstantKindDouble               ConstantKind = 0x06
	ConstantKindUTF8                ConstantKind = 0x01
	ConstantKindTrue                 ConstantKind = 0x0B
	ConstantKindFalse                ConstantKind = 0x0A
	ConstantKindNull                 ConstantKind = 0x0C
	ConstantKindUndefined            ConstantKind = 0x00
	ConstantKindNamespace            ConstantKind = 0x08
	ConstantKindPackageNamespace     ConstantKind = 0x16
	ConstantKindPackageInternalNS    ConstantKind = 0x17
	ConstantKindProtectedNamespace   ConstantKind = 0x18
	ConstantKindExplicitNamespace    ConstantKind = 0x19
	ConstantKindStaticProtectedNS    ConstantKind = 0x1A
	ConstantKindPrivateNS            ConstantKind = 0x05
	ConstantKindMultiname            ConstantKind = 0x09
)

// ClassFlags are the bitflags in instance_info.flags.
type ClassFlags uint8

const (
	ClassFlagDynamic     ClassFlags = 0x00
	ClassFlagSealed      ClassFlags = 0x01
	ClassFlagFinal       ClassFlags = 0x02
	ClassFlagInterface   ClassFlags = 0x04
	ClassFlagProtectedNS ClassFlags = 0x08
)

func (f ClassFlags) Has(bit ClassFlags) bool { return f&bit != 0 }

// TraitKind is the low nibble of a trait_info's kind byte.
type TraitKind uint8

const (
	TraitKindSlot     TraitKind = 0
	TraitKindMethod   TraitKind = 1
	TraitKindGetter   TraitKind = 2
	TraitKindSetter   TraitKind = 3
	TraitKindClass    TraitKind = 4
	TraitKindFunction TraitKind = 5
	TraitKindConst    TraitKind = 6
)

// TraitAttributes is the high nibble of a trait_info's kind byte.
type TraitAttributes uint8

const (
	TraitAttrFinal    TraitAttributes = 0x01
	TraitAttrOverride TraitAttributes = 0x02
	TraitAttrMetadata TraitAttributes = 0x04
)

func (f TraitAttributes) Has(bit TraitAttributes) bool { return f&bit != 0 }
