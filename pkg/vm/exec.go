package vm

import (
	"fmt"
	"math"

	"github.com/kristofer/avm2/pkg/abc"
	"github.com/kristofer/avm2/pkg/avmrt"
	"github.com/kristofer/avm2/pkg/resolver"
)

// run drives the fetch-decode-execute loop for one method body and
// returns the value passed to returnvalue, or undefined for
// returnvoid/falling off the end of the code array (spec.md §4.4.3).
func (v *VM) run(env *Environment, body abc.MethodBody) (avmrt.Value, error) {
	code := body.Code
	pc := 0
	for pc < len(code) {
		inst, next, err := DecodeInstruction(code, pc)
		if err != nil {
			return avmrt.Undef(), err
		}
		env.PC = pc
		env.recordInstruction(inst)
		if v.Debugger != nil {
			if err := v.Debugger.beforeStep(v, env, inst); err != nil {
				return avmrt.Undef(), err
			}
		}

		result, jumped, err := v.step(env, inst)
		if err != nil {
			if ve, ok := err.(*VmError); ok {
				ve.Frames = append(ve.Frames, Frame{MethodIx: env.MethodIx, PC: pc, Op: inst.Op})
			}
			return avmrt.Undef(), err
		}
		if result.isReturn {
			return result.value, nil
		}
		if jumped {
			pc = result.jumpTo
			continue
		}
		pc = next
	}
	return avmrt.Undef(), nil
}

type stepResult struct {
	isReturn bool
	value    avmrt.Value
	jumpTo   int
}

// step executes a single decoded instruction against env, returning
// whether control flow jumped (and where) or returned.
func (v *VM) step(env *Environment, inst Instruction) (stepResult, bool, error) {
	switch inst.Op {
	case OpNop, OpLabel, OpDebug, OpDebugLine, OpDebugFile:
		// no-ops for execution purposes

	case OpPushNull:
		env.PushOperand(avmrt.Null())
	case OpPushUndefined:
		env.PushOperand(avmrt.Undef())
	case OpPushTrue:
		env.PushOperand(avmrt.Bool(true))
	case OpPushFalse:
		env.PushOperand(avmrt.Bool(false))
	case OpPushNaN:
		env.PushOperand(avmrt.Number(math.NaN()))
	case OpPushByte:
		env.PushOperand(avmrt.Int(int32(int8(inst.Args[0]))))
	case OpPushShort, OpPushInt:
		pool := v.Image.Pool
		if inst.Op == OpPushShort {
			env.PushOperand(avmrt.Int(inst.Args[0]))
		} else {
			iv, err := poolInt(pool, inst.Args[0])
			if err != nil {
				return stepResult{}, false, err
			}
			env.PushOperand(avmrt.Int(iv))
		}
	case OpPushUInt:
		uv, err := poolUInt(v.Image.Pool, inst.Args[0])
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(avmrt.UInt(uv))
	case OpPushDouble:
		dv, err := poolDouble(v.Image.Pool, inst.Args[0])
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(avmrt.Number(dv))
	case OpPushString:
		sv, err := poolString(v.Image.Pool, inst.Args[0])
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(avmrt.Str(sv))
	case OpPushNamespace:
		name := v.Image.Pool.NamespaceName(uint32(inst.Args[0]))
		env.PushOperand(avmrt.Str(name))

	case OpPop:
		if _, err := env.PopOperand(); err != nil {
			return stepResult{}, false, err
		}
	case OpDup:
		top, err := env.PeekOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(top)
	case OpSwap:
		a, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		b, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(a)
		env.PushOperand(b)

	case OpGetLocal, OpGetLocal0, OpGetLocal1, OpGetLocal2, OpGetLocal3:
		idx := localRegisterIndex(inst)
		val, err := env.Register(idx)
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(val)
	case OpSetLocal, OpSetLocal0, OpSetLocal1, OpSetLocal2, OpSetLocal3:
		idx := localRegisterIndex(inst)
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		if err := env.SetRegister(idx, val); err != nil {
			return stepResult{}, false, err
		}
	case OpKill:
		if err := env.SetRegister(int(inst.Args[0]), avmrt.Undef()); err != nil {
			return stepResult{}, false, err
		}
	case OpIncLocal, OpDecLocal, OpIncLocalI, OpDecLocalI:
		idx := int(inst.Args[0])
		val, err := env.Register(idx)
		if err != nil {
			return stepResult{}, false, err
		}
		delta := float64(1)
		if inst.Op == OpDecLocal || inst.Op == OpDecLocalI {
			delta = -1
		}
		if inst.Op == OpIncLocalI || inst.Op == OpDecLocalI {
			if err := env.SetRegister(idx, avmrt.Int(val.ToInt32()+int32(delta))); err != nil {
				return stepResult{}, false, err
			}
		} else {
			if err := env.SetRegister(idx, avmrt.Number(val.ToNumber()+delta)); err != nil {
				return stepResult{}, false, err
			}
		}

	case OpPushScope:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushScope(resolver.ObjScope(val.Object()))
	case OpPushWith:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushScope(resolver.ObjScope(val.Object()))
	case OpPopScope:
		if err := env.PopScope(); err != nil {
			return stepResult{}, false, err
		}
	case OpGetGlobalScope:
		env.PushOperand(avmrt.Obj(v.Global))
	case OpGetScopeObject:
		idx := int(inst.Args[0])
		if idx < 0 || idx >= len(env.Scopes) {
			return stepResult{}, false, newVmError(RangeError, "scope index %d out of range", idx)
		}
		env.PushOperand(avmrt.Obj(env.Scopes[idx].Object))

	case OpFindPropStrict, OpFindProperty:
		mn, err := resolveMultinameOperand(v, env, inst.Args[0])
		if err != nil {
			return stepResult{}, false, err
		}
		res, rerr := resolver.Resolve(env.Scopes, mn.name, mn.namespaces)
		if rerr != nil {
			if inst.Op == OpFindPropStrict {
				return stepResult{}, false, newVmError(ReferenceError, "%s is not found", mn.name)
			}
			env.PushOperand(avmrt.Obj(v.Global))
		} else {
			env.PushOperand(res.Value)
		}

	case OpGetLex:
		mn, err := resolveMultinameOperand(v, env, inst.Args[0])
		if err != nil {
			return stepResult{}, false, err
		}
		res, rerr := resolver.Resolve(env.Scopes, mn.name, mn.namespaces)
		if rerr != nil {
			return stepResult{}, false, newVmError(ReferenceError, "%s is not found", mn.name)
		}
		env.PushOperand(res.Value)

	case OpGetProperty:
		mn, err := resolveMultinameOperand(v, env, inst.Args[0])
		if err != nil {
			return stepResult{}, false, err
		}
		obj, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		if obj.Object() == nil {
			return stepResult{}, false, newVmError(TypeError, "cannot read property %q of null", mn.name)
		}
		val, ok := obj.Object().Get(avmrt.PropertyKey{Namespace: firstNamespace(mn.namespaces), Name: mn.name})
		if !ok {
			val = avmrt.Undef()
		}
		env.PushOperand(val)
	case OpSetProperty, OpInitProperty:
		mn, err := resolveMultinameOperand(v, env, inst.Args[0])
		if err != nil {
			return stepResult{}, false, err
		}
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		obj, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		if obj.Object() == nil {
			return stepResult{}, false, newVmError(TypeError, "cannot set property %q of null", mn.name)
		}
		obj.Object().Set(avmrt.PropertyKey{Namespace: firstNamespace(mn.namespaces), Name: mn.name}, val)
	case OpDeleteProperty:
		mn, err := resolveMultinameOperand(v, env, inst.Args[0])
		if err != nil {
			return stepResult{}, false, err
		}
		obj, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		ok := false
		if obj.Object() != nil {
			ok = obj.Object().Delete(avmrt.PropertyKey{Namespace: firstNamespace(mn.namespaces), Name: mn.name})
		}
		env.PushOperand(avmrt.Bool(ok))

	case OpGetSlot:
		obj, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		if obj.Object() == nil {
			return stepResult{}, false, newVmError(TypeError, "getslot on null")
		}
		val, ok := obj.Object().Get(slotKey(inst.Args[0]))
		if !ok {
			val = avmrt.Undef()
		}
		env.PushOperand(val)
	case OpSetSlot:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		obj, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		if obj.Object() == nil {
			return stepResult{}, false, newVmError(TypeError, "setslot on null")
		}
		obj.Object().Set(slotKey(inst.Args[0]), val)
	case OpGetGlobalSlot:
		val, ok := v.Global.Get(slotKey(inst.Args[0]))
		if !ok {
			val = avmrt.Undef()
		}
		env.PushOperand(val)
	case OpSetGlobalSlot:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		v.Global.Set(slotKey(inst.Args[0]), val)

	case OpCoerce, OpCoerceS:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		if inst.Op == OpCoerceS {
			coerced, _ := val.ToStringCoerce()
			env.PushOperand(coerced)
		} else {
			env.PushOperand(val)
		}
	case OpConvertS:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(avmrt.Str(val.ToString()))
	case OpConvertI:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(avmrt.Int(val.ToInt32()))
	case OpConvertU:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(avmrt.UInt(val.ToUint32()))
	case OpConvertD:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(avmrt.Number(val.ToNumber()))
	case OpConvertB:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(avmrt.Bool(val.ToBoolean()))
	case OpConvertO:
		// objects pass through unchanged; no conversion is meaningful here

	case OpTypeOf:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(avmrt.Str(val.TypeOf()))
	case OpNot:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(avmrt.Bool(!val.ToBoolean()))
	case OpBitNot:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(avmrt.Int(^val.ToInt32()))
	case OpNegate, OpNegateI:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		if inst.Op == OpNegateI {
			env.PushOperand(avmrt.Int(-val.ToInt32()))
		} else {
			env.PushOperand(avmrt.Number(-val.ToNumber()))
		}
	case OpIncrement, OpIncrementI:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		if inst.Op == OpIncrementI {
			env.PushOperand(avmrt.Int(val.ToInt32() + 1))
		} else {
			env.PushOperand(avmrt.Number(val.ToNumber() + 1))
		}
	case OpDecrement, OpDecrementI:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		if inst.Op == OpDecrementI {
			env.PushOperand(avmrt.Int(val.ToInt32() - 1))
		} else {
			env.PushOperand(avmrt.Number(val.ToNumber() - 1))
		}

	case OpAdd:
		b, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		a, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		if a.TypeOf() == "string" || b.TypeOf() == "string" {
			env.PushOperand(avmrt.Str(a.ToString() + b.ToString()))
		} else {
			env.PushOperand(avmrt.Number(a.ToNumber() + b.ToNumber()))
		}
	case OpAddI:
		b, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		a, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(avmrt.Int(a.ToInt32() + b.ToInt32()))
	case OpSubtract, OpSubtractI, OpMultiply, OpMultiplyI, OpDivide, OpModulo,
		OpLShift, OpRShift, OpURShift, OpBitAnd, OpBitOr, OpBitXor:
		result, err := binaryArith(env, inst.Op)
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(result)

	case OpEquals:
		b, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		a, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(avmrt.Bool(a.AbstractEquals(b)))
	case OpStrictEquals:
		b, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		a, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		env.PushOperand(avmrt.Bool(a.StrictEquals(b)))
	case OpLessThan, OpLessEquals, OpGreaterThan, OpGreaterEquals:
		b, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		a, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		cmp, ok := a.Compare(b)
		env.PushOperand(avmrt.Bool(ok && compareMatches(inst.Op, cmp)))

	case OpJump:
		return stepResult{jumpTo: inst.Targets[0]}, true, nil
	case OpIfTrue, OpIfFalse:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		take := val.ToBoolean()
		if inst.Op == OpIfFalse {
			take = !take
		}
		if take {
			return stepResult{jumpTo: inst.Targets[0]}, true, nil
		}
	case OpIfEq, OpIfNE, OpIfLT, OpIfLE, OpIfGT, OpIfGE, OpIfStrictEq, OpIfStrictNE,
		OpIfNLT, OpIfNLE, OpIfNGT, OpIfNGE:
		b, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		a, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		if branchConditionHolds(inst.Op, a, b) {
			return stepResult{jumpTo: inst.Targets[0]}, true, nil
		}
	case OpLookupSwitch:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		idx := int(val.ToInt32())
		caseCount := int(inst.Args[1])
		target := inst.Targets[0]
		if idx >= 0 && idx < caseCount+1 {
			target = inst.Targets[idx+1]
		}
		return stepResult{jumpTo: target}, true, nil

	case OpReturnVoid:
		return stepResult{isReturn: true, value: avmrt.Undef()}, false, nil
	case OpReturnValue:
		val, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		return stepResult{isReturn: true, value: val}, false, nil

	case OpCallProperty, OpCallPropVoid, OpCallPropLex:
		return stepResult{}, false, v.execCallProperty(env, inst)
	case OpCallStatic:
		return stepResult{}, false, v.execCallStatic(env, inst)
	case OpConstructProp:
		return stepResult{}, false, v.execConstructProp(env, inst)
	case OpConstructSuper:
		argc := int(inst.Args[0])
		args, err := popArgs(env, argc)
		if err != nil {
			return stepResult{}, false, err
		}
		_, err = env.PopOperand() // receiver; superclass init not separately modeled
		if err != nil {
			return stepResult{}, false, err
		}
		_ = args
	case OpConstruct:
		return stepResult{}, false, v.execConstruct(env, inst)

	case OpNewObject:
		argc := int(inst.Args[0])
		obj := avmrt.NewObject("object", nil)
		for i := 0; i < argc; i++ {
			val, err := env.PopOperand()
			if err != nil {
				return stepResult{}, false, err
			}
			key, err := env.PopOperand()
			if err != nil {
				return stepResult{}, false, err
			}
			obj.Set(avmrt.PropertyKey{Name: key.ToString()}, val)
		}
		env.PushOperand(avmrt.Obj(obj))
	case OpNewArray:
		argc := int(inst.Args[0])
		obj := avmrt.NewObject("array", nil)
		elems := make([]avmrt.Value, argc)
		for i := argc - 1; i >= 0; i-- {
			val, err := env.PopOperand()
			if err != nil {
				return stepResult{}, false, err
			}
			elems[i] = val
		}
		for i, el := range elems {
			obj.Set(avmrt.PropertyKey{Name: fmt.Sprintf("%d", i)}, el)
		}
		env.PushOperand(avmrt.Obj(obj))

	case OpNewClass:
		classIx := int(inst.Args[0])
		baseObj, err := env.PopOperand()
		if err != nil {
			return stepResult{}, false, err
		}
		_ = baseObj
		marker := avmrt.NewObject(fmt.Sprintf("class#%d", classIx), &classIx)
		env.PushOperand(avmrt.Obj(marker))
	case OpNewFunction:
		methodIx := int(inst.Args[0])
		marker := avmrt.NewObject(fmt.Sprintf("function#%d", methodIx), nil)
		env.PushOperand(avmrt.Obj(marker))

	case OpInstanceOf, OpIsType, OpIsTypeLate, OpAsType, OpAsTypeLate, OpApplyType,
		OpCheckFilter, OpNewActivation, OpNewCatch, OpGetDescendants, OpIn,
		OpNextName, OpNextValue, OpHasNext, OpHasNext2, OpDXNS, OpDXNSLate,
		OpGetSuper, OpSetSuper, OpThrow, OpEscXElem, OpEscXAttr:
		return stepResult{}, false, newVmError(UnimplementedOpcode, "opcode %s not implemented", inst.Op)

	default:
		return stepResult{}, false, newVmError(UnimplementedOpcode, "opcode %s not implemented", inst.Op)
	}
	return stepResult{}, false, nil
}

func localRegisterIndex(inst Instruction) int {
	switch inst.Op {
	case OpGetLocal0, OpSetLocal0:
		return 0
	case OpGetLocal1, OpSetLocal1:
		return 1
	case OpGetLocal2, OpSetLocal2:
		return 2
	case OpGetLocal3, OpSetLocal3:
		return 3
	}
	return int(inst.Args[0])
}

func slotKey(slotIx int32) avmrt.PropertyKey {
	return avmrt.PropertyKey{Name: fmt.Sprintf("slot#%d", slotIx)}
}

func popArgs(env *Environment, argc int) ([]avmrt.Value, error) {
	args := make([]avmrt.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		v, err := env.PopOperand()
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func binaryArith(env *Environment, op Opcode) (avmrt.Value, error) {
	b, err := env.PopOperand()
	if err != nil {
		return avmrt.Value{}, err
	}
	a, err := env.PopOperand()
	if err != nil {
		return avmrt.Value{}, err
	}
	switch op {
	case OpSubtract:
		return avmrt.Number(a.ToNumber() - b.ToNumber()), nil
	case OpSubtractI:
		return avmrt.Int(a.ToInt32() - b.ToInt32()), nil
	case OpMultiply:
		return avmrt.Number(a.ToNumber() * b.ToNumber()), nil
	case OpMultiplyI:
		return avmrt.Int(a.ToInt32() * b.ToInt32()), nil
	case OpDivide:
		return avmrt.Number(a.ToNumber() / b.ToNumber()), nil
	case OpModulo:
		return avmrt.Number(math.Mod(a.ToNumber(), b.ToNumber())), nil
	case OpLShift:
		return avmrt.Int(a.ToInt32() << (uint32(b.ToInt32()) & 0x1F)), nil
	case OpRShift:
		return avmrt.Int(a.ToInt32() >> (uint32(b.ToInt32()) & 0x1F)), nil
	case OpURShift:
		return avmrt.UInt(a.ToUint32() >> (b.ToUint32() & 0x1F)), nil
	case OpBitAnd:
		return avmrt.Int(a.ToInt32() & b.ToInt32()), nil
	case OpBitOr:
		return avmrt.Int(a.ToInt32() | b.ToInt32()), nil
	case OpBitXor:
		return avmrt.Int(a.ToInt32() ^ b.ToInt32()), nil
	}
	return avmrt.Value{}, newVmError(UnimplementedOpcode, "opcode %s not implemented", op)
}

func compareMatches(op Opcode, cmp int) bool {
	switch op {
	case OpLessThan:
		return cmp < 0
	case OpLessEquals:
		return cmp <= 0
	case OpGreaterThan:
		return cmp > 0
	case OpGreaterEquals:
		return cmp >= 0
	}
	return false
}

// branchConditionHolds implements the ifXX family, each of which
// compares its two popped operands and branches on the result. The
// ifnXX variants treat an incomparable (NaN) result as "condition does
// not hold" rather than failing, per spec.md §4.4.4.
func branchConditionHolds(op Opcode, a, b avmrt.Value) bool {
	switch op {
	case OpIfEq:
		return a.AbstractEquals(b)
	case OpIfNE:
		return !a.AbstractEquals(b)
	case OpIfStrictEq:
		return a.StrictEquals(b)
	case OpIfStrictNE:
		return !a.StrictEquals(b)
	case OpIfLT, OpIfNGE:
		cmp, ok := a.Compare(b)
		return ok && cmp < 0
	case OpIfLE, OpIfNGT:
		cmp, ok := a.Compare(b)
		return ok && cmp <= 0
	case OpIfGT, OpIfNLE:
		cmp, ok := a.Compare(b)
		return ok && cmp > 0
	case OpIfGE, OpIfNLT:
		cmp, ok := a.Compare(b)
		return ok && cmp >= 0
	}
	return false
}

func firstNamespace(namespaces []string) string {
	if len(namespaces) == 0 {
		return ""
	}
	return namespaces[0]
}

func poolInt(pool *abc.ConstantPool, ix int32) (int32, error) {
	if ix < 0 || int(ix) >= len(pool.Integers) {
		return 0, newVmError(RangeError, "integer pool index %d out of range", ix)
	}
	return pool.Integers[ix], nil
}

func poolUInt(pool *abc.ConstantPool, ix int32) (uint32, error) {
	if ix < 0 || int(ix) >= len(pool.UInts) {
		return 0, newVmError(RangeError, "uint pool index %d out of range", ix)
	}
	return pool.UInts[ix], nil
}

func poolDouble(pool *abc.ConstantPool, ix int32) (float64, error) {
	if ix < 0 || int(ix) >= len(pool.Doubles) {
		return 0, newVmError(RangeError, "double pool index %d out of range", ix)
	}
	return pool.Doubles[ix], nil
}

func poolString(pool *abc.ConstantPool, ix int32) (string, error) {
	if ix < 0 || int(ix) >= len(pool.Strings) {
		return "", newVmError(RangeError, "string pool index %d out of range", ix)
	}
	return pool.Strings[ix], nil
}

// resolvedMultiname is the runtime-resolved (name, candidate
// namespaces) pair a multiname operand reduces to, after accounting
// for the runtime-supplied name/namespace an RTQName* variant needs
// popped from the operand stack.
type resolvedMultiname struct {
	name       string
	namespaces []string
}

func resolveMultinameOperand(v *VM, env *Environment, ix int32) (resolvedMultiname, error) {
	pool := v.Image.Pool
	if ix < 0 || int(ix) >= len(pool.Multinames) {
		return resolvedMultiname{}, newVmError(RangeError, "multiname pool index %d out of range", ix)
	}
	mn := pool.Multinames[ix]
	if mn == nil {
		return resolvedMultiname{}, newVmError(ReferenceError, "null multiname at index %d", ix)
	}

	var name string
	var namespaces []string

	switch t := mn.(type) {
	case *abc.QName:
		name = pool.Strings[t.NameIx]
		namespaces = []string{pool.NamespaceName(t.NsIx)}
	case *abc.Multiname_:
		name = pool.Strings[t.NameIx]
		namespaces = namespacesForSet(pool, t.NsSetIx)
	case *abc.MultinameL:
		namespaces = namespacesForSet(pool, t.NsSetIx)
	case *abc.TypeName:
		name = mn.QualifiedName()
		namespaces = []string{""}
	default:
		namespaces = []string{""}
	}

	if mn.NeedsNameFromStack() {
		val, err := env.PopOperand()
		if err != nil {
			return resolvedMultiname{}, err
		}
		name = val.ToString()
	}
	if mn.NeedsNamespaceFromStack() {
		val, err := env.PopOperand()
		if err != nil {
			return resolvedMultiname{}, err
		}
		namespaces = []string{val.ToString()}
	}
	return resolvedMultiname{name: name, namespaces: namespaces}, nil
}

// namespacesForSet resolves an ns_set index to its candidate namespace
// name list, in declared order (the order Resolve tries them in).
func namespacesForSet(pool *abc.ConstantPool, nsSetIx uint32) []string {
	if int(nsSetIx) >= len(pool.NsSets) {
		return []string{""}
	}
	set := pool.NsSets[nsSetIx]
	if len(set) == 0 {
		return []string{""}
	}
	out := make([]string, len(set))
	for i, nsIx := range set {
		out[i] = pool.NamespaceName(nsIx)
	}
	return out
}
