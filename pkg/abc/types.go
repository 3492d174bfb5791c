package abc

import "math"

// ConstantPool holds the seven parallel, 1-based-indexed arrays shared by
// every other record in the program image. Index 0 of each array is a
// reserved sentinel; valid indices from decoded records start at 1,
// except where a field is explicitly allowed to be 0 (meaning "absent").
type ConstantPool struct {
	Integers   []int32       // Integers[0] == 0
	UInts      []uint32      // UInts[0] == 0
	Doubles    []float64     // Doubles[0] == NaN
	Strings    []string      // Strings[0] == ""
	Namespaces []*Namespace  // Namespaces[0] == nil
	NsSets     []NsSet       // NsSets[0] == nil
	Multinames []Multiname   // Multinames[0] == nil
}

// NsSet is an ordered list of namespace indices into ConstantPool.Namespaces.
type NsSet []uint32

// Namespace pairs a kind tag with a name pulled from the string pool.
type Namespace struct {
	Kind   NamespaceKind
	NameIx uint32

	// back-filled
	Name string
}

func newConstantPool() *ConstantPool {
	return &ConstantPool{
		Integers:   []int32{0},
		UInts:      []uint32{0},
		Doubles:    []float64{math.NaN()},
		Strings:    []string{""},
		Namespaces: []*Namespace{nil},
		NsSets:     []NsSet{nil},
		Multinames: []Multiname{nil},
	}
}

// NamespaceName returns the qualified string for namespace index ix (""
// for index 0 or a private namespace with no name), looked up against
// the owning pool. Exposed so callers other than propagateStrings (the
// interpreter's multiname and pushnamespace handling) don't need
// direct array access.
func (p *ConstantPool) NamespaceName(ix uint32) string {
	if ix == 0 || int(ix) >= len(p.Namespaces) || p.Namespaces[ix] == nil {
		return ""
	}
	return p.Namespaces[ix].Name
}

// Method is the method_info record: a callable's signature and flags.
// The code (if any) lives in the MethodBody this method is linked to via
// the program image's method→body table, not here.
type Method struct {
	ParamCount    uint32
	ReturnTypeIx  uint32 // multiname index, 0 == "*"
	ParamTypeIxs  []uint32
	NameIx        uint32
	Flags         MethodFlags
	Options       []OptionDetail  // present iff HAS_OPTIONAL
	ParamNameIxs  []uint32        // present iff HAS_PARAM_NAMES

	// back-filled
	Name     string
	BodyIx   int // index into Image.MethodBodies, -1 if none
}

// OptionDetail is one entry of a method's optional-argument defaults.
type OptionDetail struct {
	ValueIx uint32
	Kind    ConstantKind
}

// Metadata is a metadata_info record: a name plus key/value item pairs.
type Metadata struct {
	NameIx  uint32
	ItemKeyIxs   []uint32
	ItemValueIxs []uint32
}

// Instance is the instance_info record: the per-instance half of a
// class declaration (fields/methods live as traits; statics live on the
// paired Class).
type Instance struct {
	NameIx              uint32 // qualified class name
	SuperNameIx         uint32
	Flags               ClassFlags
	ProtectedNamespaceIx uint32 // present iff PROTECTED_NS
	InterfaceIxs        []uint32
	InitIx              uint32 // instance-init method index
	Traits              []Trait

	// back-filled
	Name      string
	SuperName string
}

// Class is the class_info record: the static half of a class
// declaration, paired 1:1 by index with an Instance.
type Class struct {
	InitIx uint32 // class-init method index, runs once at activation
	Traits []Trait

	// back-filled, copied from the paired Instance
	Name      string
	SuperName string
}

// Script is a script_info record: a top-level compilation unit's init
// method plus the traits (typically Class traits) it declares.
type Script struct {
	InitIx uint32
	Traits []Trait
}

// Exception is one exception_info entry of a method body: a try-region
// and the catch target for a matching type.
type Exception struct {
	From      uint32
	To        uint32
	Target    uint32
	ExcTypeIx uint32
	VarNameIx uint32

	// back-filled
	ExcTypeName string
	VarName     string
}

// MethodBody is the method_body_info record: the executable half of a
// Method, with its code bytes and frame-sizing parameters.
type MethodBody struct {
	MethodIx       uint32
	MaxStack       uint32
	LocalCount     uint32
	InitScopeDepth uint32
	MaxScopeDepth  uint32
	Code           []byte
	Exceptions     []Exception
	Traits         []Trait
}

// Trait is the tagged trait_info record: a declared member of a class,
// instance, script, or method body. Exactly one of Slot, ClassT,
// Function, or MethodT is non-nil, selected by Kind.
type Trait struct {
	NameIx     uint32
	Kind       TraitKind
	Attributes TraitAttributes
	MetadataIxs []uint32 // present iff attributes has METADATA

	Slot     *TraitSlot     // Kind == Slot or Const
	ClassT   *TraitClass    // Kind == Class
	Function *TraitFunction // Kind == Function
	MethodT  *TraitMethod   // Kind == Method, Getter, or Setter

	// back-filled
	Name string
}

// TraitSlot is the Slot/Const trait payload: a typed storage slot with
// an optional constant initializer.
type TraitSlot struct {
	SlotId       uint32
	TypeNameIx   uint32
	VIndex       uint32 // constant pool index of the default value, 0 == none
	VKind        ConstantKind // present iff VIndex != 0

	// back-filled
	TypeName string
}

// TraitClass is the Class trait payload: a nested class declaration.
type TraitClass struct {
	SlotId  uint32
	ClassIx uint32
}

// TraitFunction is the Function trait payload: a named nested function.
type TraitFunction struct {
	SlotId     uint32
	FunctionIx uint32
}

// TraitMethod is the Method/Getter/Setter trait payload.
type TraitMethod struct {
	DispositionId uint32
	MethodIx      uint32
}

// Image is the complete decoded program: everything needed to build a
// VM over it. It is immutable once Decode returns; the only mutation
// after construction is the one-pass back-fill run internally by
// Decode itself.
type Image struct {
	MinorVersion uint16
	MajorVersion uint16
	Pool         *ConstantPool
	Methods      []Method
	Metadata     []Metadata
	Instances    []Instance
	Classes      []Class
	Scripts      []Script
	MethodBodies []MethodBody
}
