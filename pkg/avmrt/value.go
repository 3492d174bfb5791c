// Package avmrt holds the AVM2 runtime object model: the tagged value
// that lives on the operand stack and in registers, and the Object type
// that backs every script-visible instance, including the global object.
package avmrt

import (
	"fmt"
	"math"
	"strconv"
)

// Value is the AVM2 runtime value: a closed sum type over the shapes
// the operand stack and registers can hold. Exactly one field is
// meaningful per instance, selected by kind; use the constructors
// (Int, UInt, Number, Bool, Str, Obj, Null, Undef) rather than
// building one directly.
type Value struct {
	kind valueKind
	i    int32
	u    uint32
	f    float64
	b    bool
	s    string
	obj  *Object
}

type valueKind uint8

const (
	kindUndefined valueKind = iota
	kindNull
	kindInt
	kindUInt
	kindNumber
	kindBool
	kindString
	kindObject
)

func Undef() Value         { return Value{kind: kindUndefined} }
func Null() Value          { return Value{kind: kindNull} }
func Int(v int32) Value    { return Value{kind: kindInt, i: v} }
func UInt(v uint32) Value  { return Value{kind: kindUInt, u: v} }
func Number(v float64) Value { return Value{kind: kindNumber, f: v} }
func Bool(v bool) Value    { return Value{kind: kindBool, b: v} }
func Str(v string) Value   { return Value{kind: kindString, s: v} }
func Obj(v *Object) Value  {
	if v == nil {
		return Null()
	}
	return Value{kind: kindObject, obj: v}
}

func (v Value) IsUndefined() bool { return v.kind == kindUndefined }
func (v Value) IsNull() bool      { return v.kind == kindNull }
func (v Value) IsNullOrUndefined() bool { return v.kind == kindNull || v.kind == kindUndefined }
func (v Value) IsObject() bool    { return v.kind == kindObject }

// Object returns the wrapped object, or nil if v is not an object (or
// is AVM2 null, which Go represents as a nil *Object too).
func (v Value) Object() *Object {
	if v.kind == kindObject {
		return v.obj
	}
	return nil
}

// ToBoolean implements the ECMA-262 ToBoolean abstract operation used
// by iftrue/iffalse and the logical opcodes.
func (v Value) ToBoolean() bool {
	switch v.kind {
	case kindUndefined, kindNull:
		return false
	case kindInt:
		return v.i != 0
	case kindUInt:
		return v.u != 0
	case kindNumber:
		return v.f != 0 && !math.IsNaN(v.f)
	case kindBool:
		return v.b
	case kindString:
		return v.s != ""
	case kindObject:
		return true
	}
	return false
}

// ToNumber implements the ECMA-262 ToNumber abstract operation used by
// the arithmetic opcodes' non-"_i" flavors.
func (v Value) ToNumber() float64 {
	switch v.kind {
	case kindUndefined:
		return math.NaN()
	case kindNull:
		return 0
	case kindInt:
		return float64(v.i)
	case kindUInt:
		return float64(v.u)
	case kindNumber:
		return v.f
	case kindBool:
		if v.b {
			return 1
		}
		return 0
	case kindString:
		if v.s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case kindObject:
		return math.NaN()
	}
	return math.NaN()
}

// ToInt32 implements ECMA-262 ToInt32, used by the "_i" arithmetic
// opcodes and the bitwise opcodes.
func (v Value) ToInt32() int32 {
	f := v.ToNumber()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(int64(f)))
}

// ToUint32 implements ECMA-262 ToUint32, used by urshift.
func (v Value) ToUint32() uint32 {
	return uint32(v.ToInt32())
}

// ToString implements convert_s: null and undefined stringify to their
// literal words. See ToStringCoerce for coerce_s, which differs on
// null/undefined (spec.md §4.4.4).
func (v Value) ToString() string {
	switch v.kind {
	case kindUndefined:
		return "undefined"
	case kindNull:
		return "null"
	case kindInt:
		return strconv.FormatInt(int64(v.i), 10)
	case kindUInt:
		return strconv.FormatUint(uint64(v.u), 10)
	case kindNumber:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case kindBool:
		return strconv.FormatBool(v.b)
	case kindString:
		return v.s
	case kindObject:
		return fmt.Sprintf("[object %s]", v.obj.TraceHint)
	}
	return ""
}

// ToStringCoerce implements coerce_s: unlike ToString/convert_s, null
// and undefined both coerce to AVM2 null rather than to the literal
// strings "null"/"undefined" (spec.md §4.4.4). The bool result reports
// whether the value coerced to null.
func (v Value) ToStringCoerce() (Value, bool) {
	if v.IsNullOrUndefined() {
		return Null(), true
	}
	return Str(v.ToString()), false
}

// TypeOf implements the typeof opcode's type-tag string.
func (v Value) TypeOf() string {
	switch v.kind {
	case kindUndefined:
		return "undefined"
	case kindNull:
		return "object"
	case kindInt, kindUInt, kindNumber:
		return "number"
	case kindBool:
		return "boolean"
	case kindString:
		return "string"
	case kindObject:
		return "object"
	}
	return "undefined"
}

// StrictEquals implements the strictequals opcode: no coercion, and
// values of different kinds (other than the numeric kinds, which are
// compared by value) are never equal.
func (v Value) StrictEquals(other Value) bool {
	if (v.kind == kindInt || v.kind == kindUInt || v.kind == kindNumber) &&
		(other.kind == kindInt || other.kind == kindUInt || other.kind == kindNumber) {
		return v.ToNumber() == other.ToNumber()
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case kindUndefined, kindNull:
		return true
	case kindBool:
		return v.b == other.b
	case kindString:
		return v.s == other.s
	case kindObject:
		return v.obj == other.obj
	}
	return false
}

// AbstractEquals implements the equals opcode's ECMA-262 abstract
// equality comparison (§11.9.3): unlike StrictEquals it coerces across
// a handful of kind pairs (null/undefined are mutually equal; numbers
// and strings coerce to numbers for comparison).
func (v Value) AbstractEquals(other Value) bool {
	if v.IsNullOrUndefined() && other.IsNullOrUndefined() {
		return true
	}
	if v.IsNullOrUndefined() != other.IsNullOrUndefined() {
		return false
	}
	if v.kind == kindString && other.kind == kindString {
		return v.s == other.s
	}
	if v.kind == kindObject || other.kind == kindObject {
		return v.StrictEquals(other)
	}
	return v.ToNumber() == other.ToNumber()
}

// Compare implements the abstract relational comparison used by
// lessthan/lessequals/greaterthan/greaterequals. ok is false when the
// comparison is undefined (either operand is NaN), matching AVM2's
// ifn* "NaN is non-comparable" rule (spec.md §4.4.4).
func (v Value) Compare(other Value) (cmp int, ok bool) {
	if v.kind == kindString && other.kind == kindString {
		switch {
		case v.s < other.s:
			return -1, true
		case v.s > other.s:
			return 1, true
		default:
			return 0, true
		}
	}
	a, b := v.ToNumber(), other.ToNumber()
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0, false
	}
	switch {
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	default:
		return 0, true
	}
}
