package vm

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/kristofer/avm2/pkg/abc"
	"github.com/kristofer/avm2/pkg/avmrt"
	"github.com/kristofer/avm2/pkg/resolver"
)

// VM is a loaded, executable program image: the decoded ABC data plus
// the link tables the interpreter needs to turn a qualified name into
// a class or method index without a linear scan on every lookup
// (spec.md §6.1's "link tables" component).
type VM struct {
	Image  *abc.Image
	Global *avmrt.Object

	qnameToClass  map[string]int
	classToScript map[int]int
	qnameMethod   map[string]int // "qname.memberName" -> method index

	scriptsRun map[int]bool

	TraceHook TraceHook
	Debugger  *Debugger
}

// NewVM builds the link tables over img and returns a VM ready to have
// its scripts initialized.
func NewVM(img *abc.Image) (*VM, error) {
	if img == nil {
		return nil, fmt.Errorf("vm: nil image")
	}
	v := &VM{
		Image:         img,
		Global:        avmrt.NewObject("global", nil),
		qnameToClass:  make(map[string]int),
		classToScript: make(map[int]int),
		qnameMethod:   make(map[string]int),
		scriptsRun:    make(map[int]bool),
	}

	v.Global.Set(avmrt.PropertyKey{Name: "Math"}, avmrt.Obj(avmrt.NewObject("Math#builtin", nil)))
	v.Global.Set(avmrt.PropertyKey{Name: "String"}, avmrt.Obj(avmrt.NewObject("String#builtin", nil)))

	for i, inst := range img.Instances {
		if inst.Name != "" {
			v.qnameToClass[inst.Name] = i
		}
		methodTraits := lo.Filter(inst.Traits, func(t abc.Trait, _ int) bool {
			isCallable := t.Kind == abc.TraitKindMethod || t.Kind == abc.TraitKindGetter || t.Kind == abc.TraitKindSetter
			return isCallable && t.MethodT != nil
		})
		lo.ForEach(methodTraits, func(t abc.Trait, _ int) {
			v.qnameMethod[inst.Name+"."+t.Name] = int(t.MethodT.MethodIx)
		})
	}
	for si, script := range img.Scripts {
		classTraits := lo.Filter(script.Traits, func(t abc.Trait, _ int) bool {
			return t.Kind == abc.TraitKindClass && t.ClassT != nil
		})
		lo.ForEach(classTraits, func(t abc.Trait, _ int) {
			v.classToScript[int(t.ClassT.ClassIx)] = si
		})
	}

	return v, nil
}

// LookupClass resolves a fully qualified class name (e.g.
// "flash.utils.Dictionary") to its class index.
func (v *VM) LookupClass(qname string) (int, bool) {
	ix, ok := v.qnameToClass[qname]
	return ix, ok
}

// LookupMethod resolves "Qname.memberName" to a method index, for
// class instance methods/getters/setters decoded from Instance traits.
func (v *VM) LookupMethod(qname string) (int, bool) {
	ix, ok := v.qnameMethod[qname]
	return ix, ok
}

// InitScript runs scriptIx's init method once, registering its
// top-level class, slot and const traits onto the global object,
// and returns the value that init method produced. Re-running an
// already-initialized script is a no-op returning undefined, mirroring
// how a SWF's scripts run exactly once at load.
func (v *VM) InitScript(scriptIx int) (avmrt.Value, error) {
	if v.scriptsRun[scriptIx] {
		return avmrt.Undef(), nil
	}
	if scriptIx < 0 || scriptIx >= len(v.Image.Scripts) {
		return avmrt.Undef(), newVmError(RangeError, "script index %d out of range", scriptIx)
	}
	v.scriptsRun[scriptIx] = true

	script := v.Image.Scripts[scriptIx]
	result, err := v.CallStatic(int(script.InitIx), nil)
	if err != nil {
		return avmrt.Undef(), fmt.Errorf("vm: running script %d init: %w", scriptIx, err)
	}
	for _, t := range script.Traits {
		v.bindTopLevelTrait(t)
	}
	return result, nil
}

// bindTopLevelTrait exposes one script-level trait on the global
// object, the way a top-level script's class/slot/const declarations
// become globally visible names (spec.md §4.4.5). Function, method,
// getter and setter traits are not bound.
func (v *VM) bindTopLevelTrait(t abc.Trait) {
	key := avmrt.PropertyKey{Name: t.Name}
	switch t.Kind {
	case abc.TraitKindClass:
		classIx := 0
		if t.ClassT != nil {
			classIx = int(t.ClassT.ClassIx)
		}
		marker := avmrt.NewObject("class:"+t.Name, &classIx)
		v.Global.Set(key, avmrt.Obj(marker))
	case abc.TraitKindSlot, abc.TraitKindConst:
		v.Global.Set(key, avmrt.Undef())
	}
}

// NewInstance constructs a new instance of classIx by running its
// instance initializer with a freshly allocated receiver, mirroring
// AVM2's constructsuper/constructor protocol (spec.md §4.4.5). args are
// passed to the instance initializer.
func (v *VM) NewInstance(classIx int, args []avmrt.Value) (*avmrt.Object, error) {
	if classIx < 0 || classIx >= len(v.Image.Instances) {
		return nil, newVmError(RangeError, "class index %d out of range", classIx)
	}
	inst := v.Image.Instances[classIx]
	ixCopy := classIx
	receiver := avmrt.NewObject(inst.Name, &ixCopy)

	if _, err := v.callMethodOn(int(inst.InitIx), receiver, args); err != nil {
		return nil, fmt.Errorf("vm: constructing %s: %w", inst.Name, err)
	}
	return receiver, nil
}

// CallStatic invokes methodIx with no receiver (`this` reads as the
// global object), as used for script and class static initializers.
func (v *VM) CallStatic(methodIx int, args []avmrt.Value) (avmrt.Value, error) {
	return v.callMethodOn(methodIx, v.Global, args)
}

// CallMethod invokes methodIx as bound to receiver, the entry point
// used for ordinary instance method calls from a host.
func (v *VM) CallMethod(methodIx int, receiver *avmrt.Object, args []avmrt.Value) (avmrt.Value, error) {
	return v.callMethodOn(methodIx, receiver, args)
}

func (v *VM) callMethodOn(methodIx int, receiver *avmrt.Object, args []avmrt.Value) (avmrt.Value, error) {
	if methodIx < 0 || methodIx >= len(v.Image.Methods) {
		return avmrt.Undef(), newVmError(RangeError, "method index %d out of range", methodIx)
	}
	m := v.Image.Methods[methodIx]
	if m.BodyIx < 0 || m.BodyIx >= len(v.Image.MethodBodies) {
		return avmrt.Undef(), newVmError(ReferenceError, "method %q has no body (native or abstract)", m.Name)
	}
	body := v.Image.MethodBodies[m.BodyIx]

	args, err := v.bindArguments(m, args)
	if err != nil {
		return avmrt.Undef(), err
	}

	env := NewEnvironment(methodIx, int(body.LocalCount))
	env.TraceHook = v.TraceHook
	if len(env.Registers) > 0 {
		env.Registers[0] = avmrt.Obj(receiver)
	}
	for i, a := range args {
		regIx := i + 1
		if regIx >= len(env.Registers) {
			break
		}
		env.Registers[regIx] = a
	}
	if m.Flags.Has(abc.MethodFlagNeedRest) {
		restIx := int(m.ParamCount) + 1
		if restIx < len(env.Registers) {
			env.Registers[restIx] = avmrt.Obj(restArray(args, int(m.ParamCount)))
		}
	} else if m.Flags.Has(abc.MethodFlagNeedArguments) {
		argsIx := int(m.ParamCount) + 1
		if argsIx < len(env.Registers) {
			env.Registers[argsIx] = avmrt.Obj(restArray(args, 0))
		}
	}
	env.PushScope(resolver.ObjScope(v.Global))
	if receiver != nil {
		env.PushScope(resolver.ObjScope(receiver))
	}

	return v.run(env, body)
}

// bindArguments applies method_info's HAS_OPTIONAL defaults for any
// trailing parameters the caller omitted (spec.md §4.4.5 step 4).
// Omitted parameters that have no default are bound to undefined.
func (v *VM) bindArguments(m abc.Method, args []avmrt.Value) ([]avmrt.Value, error) {
	if len(args) >= int(m.ParamCount) {
		return args, nil
	}
	required := int(m.ParamCount) - len(m.Options)
	if required < 0 {
		required = 0
	}
	out := make([]avmrt.Value, len(args), m.ParamCount)
	copy(out, args)
	for i := len(out); i < int(m.ParamCount); i++ {
		if i < required {
			out = append(out, avmrt.Undef())
			continue
		}
		out = append(out, v.optionDefault(m.Options[i-required]))
	}
	return out, nil
}

// optionDefault resolves one method_info option_detail entry to the
// Value it contributes when the caller omits that argument.
func (v *VM) optionDefault(opt abc.OptionDetail) avmrt.Value {
	pool := v.Image.Pool
	switch opt.Kind {
	case abc.ConstantKindInt:
		if int(opt.ValueIx) < len(pool.Integers) {
			return avmrt.Int(pool.Integers[opt.ValueIx])
		}
	case abc.ConstantKindUInt:
		if int(opt.ValueIx) < len(pool.UInts) {
			return avmrt.UInt(pool.UInts[opt.ValueIx])
		}
	case abc.ConstantKindDouble:
		if int(opt.ValueIx) < len(pool.Doubles) {
			return avmrt.Number(pool.Doubles[opt.ValueIx])
		}
	case abc.ConstantKindUTF8:
		if int(opt.ValueIx) < len(pool.Strings) {
			return avmrt.Str(pool.Strings[opt.ValueIx])
		}
	case abc.ConstantKindTrue:
		return avmrt.Bool(true)
	case abc.ConstantKindFalse:
		return avmrt.Bool(false)
	case abc.ConstantKindNull:
		return avmrt.Null()
	case abc.ConstantKindUndefined:
		return avmrt.Undef()
	}
	return avmrt.Undef()
}

// restArray packs args[from:] into an ad-hoc array object, the shape
// callproperty's arguments/rest-parameter binding needs (spec.md
// §4.4.5's NEED_REST/NEED_ARGUMENTS handling).
func restArray(args []avmrt.Value, from int) *avmrt.Object {
	arr := avmrt.NewObject("array", nil)
	n := 0
	for i := from; i < len(args); i++ {
		arr.Set(avmrt.PropertyKey{Name: fmt.Sprintf("%d", n)}, args[i])
		n++
	}
	arr.Set(avmrt.PropertyKey{Name: "length"}, avmrt.Int(int32(n)))
	return arr
}

// EntryPoint runs every script's init method in file order, mirroring
// a SWF player loading a DoABC tag's scripts top to bottom, and
// returns the value the last script's init produced.
func (v *VM) EntryPoint() (avmrt.Value, error) {
	var last avmrt.Value
	for i := range v.Image.Scripts {
		result, err := v.InitScript(i)
		if err != nil {
			return avmrt.Undef(), err
		}
		last = result
	}
	return last, nil
}

// SetTraceHook installs hook to be called once per executed
// instruction across all subsequent calls.
func (v *VM) SetTraceHook(hook TraceHook) {
	v.TraceHook = hook
}
