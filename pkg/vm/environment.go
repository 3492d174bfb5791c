package vm

import (
	"github.com/kristofer/avm2/pkg/avmrt"
	"github.com/kristofer/avm2/pkg/resolver"
)

// traceTrailSize is how many recently-executed instructions an
// Environment remembers for diagnostics — the Go equivalent of the
// reference interpreter's rolling instruction trail used by its
// progress tally (original_source/avm2/abc/instructions.py).
const traceTrailSize = 5

// TraceHook is invoked once per executed instruction, after the
// instruction count has been incremented, letting a host observe
// execution without the interpreter core depending on any particular
// presentation. It is installed with VM.SetTraceHook.
type TraceHook func(env *Environment, inst Instruction)

// Environment is the complete mutable state of one running method
// call: its local registers, its operand and scope stacks, and the
// bookkeeping the interpreter keeps for diagnostics (spec.md §4.4.2).
type Environment struct {
	MethodIx int
	Registers []avmrt.Value
	Operands  []avmrt.Value
	Scopes    []resolver.Scope

	PC int

	InstrCount int
	trail      []Instruction

	TraceHook TraceHook
}

// NewEnvironment allocates an Environment with localCount registers
// (register 0 conventionally holds `this`) and an empty operand and
// scope stack.
func NewEnvironment(methodIx int, localCount int) *Environment {
	regs := make([]avmrt.Value, localCount)
	for i := range regs {
		regs[i] = avmrt.Undef()
	}
	return &Environment{MethodIx: methodIx, Registers: regs}
}

// PushOperand pushes v onto the operand stack.
func (e *Environment) PushOperand(v avmrt.Value) {
	e.Operands = append(e.Operands, v)
}

// PopOperand pops and returns the top of the operand stack.
func (e *Environment) PopOperand() (avmrt.Value, error) {
	if len(e.Operands) == 0 {
		return avmrt.Value{}, newVmError(StackUnderflow, "pop from empty operand stack")
	}
	v := e.Operands[len(e.Operands)-1]
	e.Operands = e.Operands[:len(e.Operands)-1]
	return v, nil
}

// PeekOperand returns the top of the operand stack without removing it.
func (e *Environment) PeekOperand() (avmrt.Value, error) {
	if len(e.Operands) == 0 {
		return avmrt.Value{}, newVmError(StackUnderflow, "peek on empty operand stack")
	}
	return e.Operands[len(e.Operands)-1], nil
}

// PushScope pushes scope onto the scope stack.
func (e *Environment) PushScope(s resolver.Scope) {
	e.Scopes = append(e.Scopes, s)
}

// PopScope pops the top of the scope stack.
func (e *Environment) PopScope() error {
	if len(e.Scopes) == 0 {
		return newVmError(StackUnderflow, "popscope on empty scope stack")
	}
	e.Scopes = e.Scopes[:len(e.Scopes)-1]
	return nil
}

// Register reads register i, returning a RangeError if it's out of
// bounds.
func (e *Environment) Register(i int) (avmrt.Value, error) {
	if i < 0 || i >= len(e.Registers) {
		return avmrt.Value{}, newVmError(RangeError, "register %d out of range (have %d)", i, len(e.Registers))
	}
	return e.Registers[i], nil
}

// SetRegister writes register i.
func (e *Environment) SetRegister(i int, v avmrt.Value) error {
	if i < 0 || i >= len(e.Registers) {
		return newVmError(RangeError, "register %d out of range (have %d)", i, len(e.Registers))
	}
	e.Registers[i] = v
	return nil
}

// recordInstruction advances the instruction counter and rolling
// trail, then fires TraceHook if one is set. Called once per decoded
// instruction by the execution loop, regardless of opcode.
func (e *Environment) recordInstruction(inst Instruction) {
	e.InstrCount++
	e.trail = append(e.trail, inst)
	if len(e.trail) > traceTrailSize {
		e.trail = e.trail[len(e.trail)-traceTrailSize:]
	}
	if e.TraceHook != nil {
		e.TraceHook(e, inst)
	}
}

// Trail returns the most recently executed instructions, oldest first,
// capped at traceTrailSize entries, for a TraceHook or a Debugger's
// OnBreak callback to inspect.
func (e *Environment) Trail() []Instruction {
	out := make([]Instruction, len(e.trail))
	copy(out, e.trail)
	return out
}
