package abc

import (
	"fmt"

	"github.com/kristofer/avm2/pkg/reader"
)

// Multiname is the tagged variant described by the ABC multiname_info
// record. Exactly one of the concrete types below satisfies it; the
// concrete type is selected by the leading kind byte during decode and
// never changes afterward.
type Multiname interface {
	Kind() MultinameKind
	// NeedsNameFromStack reports whether resolving this multiname at
	// runtime requires popping a name off the operand stack.
	NeedsNameFromStack() bool
	// NeedsNamespaceFromStack reports whether resolving this multiname
	// at runtime requires popping a namespace off the operand stack.
	NeedsNamespaceFromStack() bool

	// back-fill, populated by propagateStrings; empty before that pass.
	setQualifiedName(name string)
	// QualifiedName returns "namespace.name" (back-filled), eliding the
	// separator when the namespace is empty.
	QualifiedName() string
}

type multinameBase struct {
	qualifiedName string
}

func (m *multinameBase) setQualifiedName(name string) { m.qualifiedName = name }
func (m *multinameBase) QualifiedName() string        { return m.qualifiedName }

// QName is a simple fully-qualified name: both the namespace and the
// name are known at decode time.
type QName struct {
	multinameBase
	NsIx   uint32
	NameIx uint32
	Attr   bool // true for the "A" (attribute) flavor
}

func (m *QName) Kind() MultinameKind {
	if m.Attr {
		return MultinameKindQNameA
	}
	return MultinameKindQName
}
func (m *QName) NeedsNameFromStack() bool      { return false }
func (m *QName) NeedsNamespaceFromStack() bool { return false }

// RTQName carries a fixed name but resolves its namespace from the
// operand stack at runtime.
type RTQName struct {
	multinameBase
	NameIx uint32
	Attr   bool
}

func (m *RTQName) Kind() MultinameKind {
	if m.Attr {
		return MultinameKindRTQNameA
	}
	return MultinameKindRTQName
}
func (m *RTQName) NeedsNameFromStack() bool      { return false }
func (m *RTQName) NeedsNamespaceFromStack() bool { return true }

// RTQNameL resolves both its name and its namespace from the operand
// stack at runtime; it carries no fields of its own.
type RTQNameL struct {
	multinameBase
	Attr bool
}

func (m *RTQNameL) Kind() MultinameKind {
	if m.Attr {
		return MultinameKindRTQNameLA
	}
	return MultinameKindRTQNameL
}
func (m *RTQNameL) NeedsNameFromStack() bool      { return true }
func (m *RTQNameL) NeedsNamespaceFromStack() bool { return true }

// Multiname_ (the unprefixed AVM2 "Multiname" kind; the Go type is
// suffixed to avoid colliding with the interface name) carries a fixed
// name and a set of candidate namespaces, resolved against the scope
// stack without any runtime operand.
type Multiname_ struct {
	multinameBase
	NameIx  uint32
	NsSetIx uint32
	Attr    bool
}

func (m *Multiname_) Kind() MultinameKind {
	if m.Attr {
		return MultinameKindMultinameA
	}
	return MultinameKindMultiname
}
func (m *Multiname_) NeedsNameFromStack() bool      { return false }
func (m *Multiname_) NeedsNamespaceFromStack() bool { return false }

// MultinameL carries a fixed namespace set but resolves its name from
// the operand stack at runtime.
type MultinameL struct {
	multinameBase
	NsSetIx uint32
	Attr    bool
}

func (m *MultinameL) Kind() MultinameKind {
	if m.Attr {
		return MultinameKindMultinameLA
	}
	return MultinameKindMultinameL
}
func (m *MultinameL) NeedsNameFromStack() bool      { return true }
func (m *MultinameL) NeedsNamespaceFromStack() bool { return false }

// TypeName is a parameterized type reference (e.g. Vector.<int>): a base
// QName plus a list of type-parameter multiname indices.
type TypeName struct {
	multinameBase
	QNameIx uint32
	TypeIxs []uint32
}

func (m *TypeName) Kind() MultinameKind               { return MultinameKindTypeName }
func (m *TypeName) NeedsNameFromStack() bool      { return false }
func (m *TypeName) NeedsNamespaceFromStack() bool { return false }

func decodeMultiname(r *reader.Reader) (Multiname, error) {
	kindByte, err := r.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("abc: multiname kind: %w", err)
	}
	kind := MultinameKind(kindByte)
	switch kind {
	case MultinameKindQName, MultinameKindQNameA:
		nsIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("abc: QName ns_ix: %w", err)
		}
		nameIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("abc: QName name_ix: %w", err)
		}
		return &QName{NsIx: nsIx, NameIx: nameIx, Attr: kind == MultinameKindQNameA}, nil

	case MultinameKindRTQName, MultinameKindRTQNameA:
		nameIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("abc: RTQName name_ix: %w", err)
		}
		return &RTQName{NameIx: nameIx, Attr: kind == MultinameKindRTQNameA}, nil

	case MultinameKindRTQNameL, MultinameKindRTQNameLA:
		return &RTQNameL{Attr: kind == MultinameKindRTQNameLA}, nil

	case MultinameKindMultiname, MultinameKindMultinameA:
		nameIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("abc: Multiname name_ix: %w", err)
		}
		nsSetIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("abc: Multiname ns_set_ix: %w", err)
		}
		if nsSetIx == 0 {
			return nil, fmt.Errorf("abc: Multiname ns_set_ix must be non-zero")
		}
		return &Multiname_{NameIx: nameIx, NsSetIx: nsSetIx, Attr: kind == MultinameKindMultinameA}, nil

	case MultinameKindMultinameL, MultinameKindMultinameLA:
		nsSetIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("abc: MultinameL ns_set_ix: %w", err)
		}
		if nsSetIx == 0 {
			return nil, fmt.Errorf("abc: MultinameL ns_set_ix must be non-zero")
		}
		return &MultinameL{NsSetIx: nsSetIx, Attr: kind == MultinameKindMultinameLA}, nil

	case MultinameKindTypeName:
		qnameIx, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("abc: TypeName q_name_ix: %w", err)
		}
		count, err := r.ReadU30()
		if err != nil {
			return nil, fmt.Errorf("abc: TypeName param count: %w", err)
		}
		ixs := make([]uint32, count)
		for i := range ixs {
			ixs[i], err = r.ReadU30()
			if err != nil {
				return nil, fmt.Errorf("abc: TypeName param %d: %w", i, err)
			}
		}
		return &TypeName{QNameIx: qnameIx, TypeIxs: ixs}, nil

	default:
		return nil, fmt.Errorf("abc: unknown multiname kind 0x%02x", kindByte)
	}
}
