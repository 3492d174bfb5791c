package vm

import (
	"strings"

	"github.com/kristofer/avm2/pkg/avmrt"
)

// qualifyName joins a namespace and a local name the same way the ABC
// decoder's back-fill pass does (propagate.go), so link-table lookups
// built from multiname operands line up with the qualified names
// Instance/Class carry.
func qualifyName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// execCallProperty implements callproperty/callpropvoid/callproplex:
// pop argc arguments, pop the receiver, resolve the called member by
// name against the receiver (an ordinary object's traits, a builtin
// bridge method, or a string primitive's instance methods), and for
// callproperty/callproplex push the result back.
func (v *VM) execCallProperty(env *Environment, inst Instruction) error {
	mn, err := resolveMultinameOperand(v, env, inst.Args[0])
	if err != nil {
		return err
	}
	argc := int(inst.Args[1])
	args, err := popArgs(env, argc)
	if err != nil {
		return err
	}
	receiver, err := env.PopOperand()
	if err != nil {
		return err
	}

	result, err := v.dispatchCall(receiver, mn.name, args)
	if err != nil {
		return err
	}
	if inst.Op != OpCallPropVoid {
		env.PushOperand(result)
	}
	return nil
}

// dispatchCall resolves and invokes memberName on receiver: builtin
// bridge methods for string primitives and the Math/String builtin
// marker objects (spec.md §4.4.6), otherwise a decoded instance method
// looked up through the VM's qname link table.
func (v *VM) dispatchCall(receiver avmrt.Value, memberName string, args []avmrt.Value) (avmrt.Value, error) {
	if receiver.TypeOf() == "string" {
		return callStringBuiltin(receiver.ToString(), memberName, args)
	}
	obj := receiver.Object()
	if obj == nil {
		return avmrt.Undef(), newVmError(TypeError, "cannot call %q on null", memberName)
	}
	if strings.HasPrefix(obj.TraceHint, "Math#") {
		return callMathBuiltin(memberName, args)
	}
	if strings.HasPrefix(obj.TraceHint, "String#") {
		return callStringBuiltin("", memberName, args)
	}
	if obj.ClassIx != nil {
		qname := v.Image.Instances[*obj.ClassIx].Name
		if methodIx, ok := v.qnameMethod[qname+"."+memberName]; ok {
			return v.callMethodOn(methodIx, obj, args)
		}
	}
	return avmrt.Undef(), newVmError(ReferenceError, "method %q not found on %s", memberName, obj.TraceHint)
}

// execCallStatic implements callstatic: invoke a method-pool entry
// directly by index (no name resolution), bound to the popped
// receiver.
func (v *VM) execCallStatic(env *Environment, inst Instruction) error {
	methodIx := int(inst.Args[0])
	argc := int(inst.Args[1])
	args, err := popArgs(env, argc)
	if err != nil {
		return err
	}
	receiver, err := env.PopOperand()
	if err != nil {
		return err
	}
	result, err := v.callMethodOn(methodIx, receiver.Object(), args)
	if err != nil {
		return err
	}
	env.PushOperand(result)
	return nil
}

// execConstructProp implements constructprop: resolve a qualified
// class name off the multiname operand and the popped base object,
// construct a new instance of it, and push the instance.
func (v *VM) execConstructProp(env *Environment, inst Instruction) error {
	mn, err := resolveMultinameOperand(v, env, inst.Args[0])
	if err != nil {
		return err
	}
	argc := int(inst.Args[1])
	args, err := popArgs(env, argc)
	if err != nil {
		return err
	}
	if _, err := env.PopOperand(); err != nil { // base object, unused beyond name resolution
		return err
	}

	qname := qualifyName(firstNamespace(mn.namespaces), mn.name)
	classIx, ok := v.qnameToClass[qname]
	if !ok {
		return newVmError(ReferenceError, "class %q not found", qname)
	}
	inst2, err := v.NewInstance(classIx, args)
	if err != nil {
		return err
	}
	env.PushOperand(avmrt.Obj(inst2))
	return nil
}

// execConstruct implements construct: pop argc constructor arguments
// and a class marker object (as pushed by findpropstrict+getlex or
// newclass), then build and push a new instance of the class it names.
func (v *VM) execConstruct(env *Environment, inst Instruction) error {
	argc := int(inst.Args[0])
	args, err := popArgs(env, argc)
	if err != nil {
		return err
	}
	marker, err := env.PopOperand()
	if err != nil {
		return err
	}
	obj := marker.Object()
	if obj == nil || obj.ClassIx == nil {
		return newVmError(TypeError, "construct: operand is not a class")
	}
	inst2, err := v.NewInstance(*obj.ClassIx, args)
	if err != nil {
		return err
	}
	env.PushOperand(avmrt.Obj(inst2))
	return nil
}
