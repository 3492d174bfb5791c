package vm

import (
	"math"
	"testing"

	"github.com/kristofer/avm2/pkg/abc"
	"github.com/kristofer/avm2/pkg/avmrt"
)

// newTestVM builds a VM over an otherwise-empty image with a constant
// pool big enough for the arithmetic-coherence tests below.
func newTestVM(pool *abc.ConstantPool) *VM {
	img := &abc.Image{Pool: pool}
	v, err := NewVM(img)
	if err != nil {
		panic(err)
	}
	return v
}

func emptyPool() *abc.ConstantPool {
	return &abc.ConstantPool{
		Integers:   []int32{0},
		UInts:      []uint32{0},
		Doubles:    []float64{math.NaN()},
		Strings:    []string{""},
		Namespaces: []*abc.Namespace{nil},
		NsSets:     []abc.NsSet{nil},
		Multinames: []abc.Multiname{nil},
	}
}

// TestArithmeticCoherenceAddI executes `pushbyte 2; pushbyte 3; add_i;
// returnvalue`, the synthetic body spec.md §8's arithmetic-coherence
// scenario names, and expects 5.
func TestArithmeticCoherenceAddI(t *testing.T) {
	v := newTestVM(emptyPool())
	body := abc.MethodBody{
		LocalCount: 1,
		Code: []byte{
			byte(OpPushByte), 2,
			byte(OpPushByte), 3,
			byte(OpAddI),
			byte(OpReturnValue),
		},
	}
	env := NewEnvironment(0, int(body.LocalCount))
	result, err := v.run(env, body)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ToInt32() != 5 {
		t.Errorf("add_i result = %v, want 5", result.ToString())
	}
}

// TestArithmeticCoherenceDivide replaces add_i with divide on 6.0/4.0,
// the second half of the same scenario, and expects 1.5.
func TestArithmeticCoherenceDivide(t *testing.T) {
	pool := emptyPool()
	pool.Doubles = append(pool.Doubles, 6.0, 4.0)
	v := newTestVM(pool)
	body := abc.MethodBody{
		LocalCount: 1,
		Code: []byte{
			byte(OpPushDouble), 1,
			byte(OpPushDouble), 2,
			byte(OpDivide),
			byte(OpReturnValue),
		},
	}
	env := NewEnvironment(0, int(body.LocalCount))
	result, err := v.run(env, body)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ToNumber() != 1.5 {
		t.Errorf("divide result = %v, want 1.5", result.ToNumber())
	}
}

// TestIfTrueJumpSkipsFalseBranch exercises the jump/iftrue control-flow
// signals: `pushtrue; iftrue L; pushbyte 0; returnvalue; L: pushbyte 1;
// returnvalue` should skip the false branch and return 1.
func TestIfTrueJumpSkipsFalseBranch(t *testing.T) {
	v := newTestVM(emptyPool())
	// iftrue operand is an s24 relative to the byte after the
	// instruction; the false branch is 3 bytes (pushbyte 0; returnvalue).
	code := []byte{
		byte(OpPushTrue),
		byte(OpIfTrue), 3, 0, 0,
		byte(OpPushByte), 0,
		byte(OpReturnValue),
		byte(OpPushByte), 1,
		byte(OpReturnValue),
	}
	body := abc.MethodBody{LocalCount: 1, Code: code}
	env := NewEnvironment(0, int(body.LocalCount))
	result, err := v.run(env, body)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ToInt32() != 1 {
		t.Errorf("jump result = %v, want 1", result.ToInt32())
	}
}

func TestCallMathBuiltinMaxMin(t *testing.T) {
	max, err := callMathBuiltin("max", []avmrt.Value{avmrt.Number(45), avmrt.Number(123.45)})
	if err != nil {
		t.Fatalf("Math.max: %v", err)
	}
	if max.ToNumber() != 123.45 {
		t.Errorf("Math.max(45, 123.45) = %v, want 123.45", max.ToNumber())
	}

	min, err := callMathBuiltin("min", []avmrt.Value{avmrt.Number(23.45), avmrt.Number(123)})
	if err != nil {
		t.Fatalf("Math.min: %v", err)
	}
	if min.ToNumber() != 23.45 {
		t.Errorf("Math.min(23.45, 123) = %v, want 23.45", min.ToNumber())
	}

	max3, err := callMathBuiltin("max", []avmrt.Value{avmrt.Number(-123.45), avmrt.Number(23), avmrt.Number(234)})
	if err != nil {
		t.Fatalf("Math.max: %v", err)
	}
	if max3.ToNumber() != 234 {
		t.Errorf("Math.max(-123.45, 23, 234) = %v, want 234", max3.ToNumber())
	}
}

// TestCallMathBuiltinMaxMinRequireTwoArgs asserts spec.md §4.4.6's
// variadic-but-at-least-two-args contract: Math.max/Math.min must fail
// rather than silently returning an infinity or the lone argument.
func TestCallMathBuiltinMaxMinRequireTwoArgs(t *testing.T) {
	for _, name := range []string{"max", "min"} {
		if _, err := callMathBuiltin(name, nil); err == nil {
			t.Errorf("Math.%s() with 0 args: want error, got nil", name)
		}
		if _, err := callMathBuiltin(name, []avmrt.Value{avmrt.Number(1)}); err == nil {
			t.Errorf("Math.%s(1) with 1 arg: want error, got nil", name)
		}
	}
}

func TestCallStringBuiltinIndexOf(t *testing.T) {
	result, err := callStringBuiltin("some:kinda:string", "indexOf", []avmrt.Value{avmrt.Str(":")})
	if err != nil {
		t.Fatalf("String.indexOf: %v", err)
	}
	if result.ToInt32() != 4 {
		t.Errorf("indexOf(\"some:kinda:string\", \":\") = %d, want 4", result.ToInt32())
	}
}

func TestCallStringBuiltinTrim(t *testing.T) {
	cases := []struct {
		recv string
		want string
	}{
		{"  abc  ", "abc"},
		{"xyz", "xyz"},
		{"", ""},
	}
	for _, c := range cases {
		result, err := callStringBuiltin(c.recv, "trim", nil)
		if err != nil {
			t.Fatalf("String.trim(%q): %v", c.recv, err)
		}
		if result.ToString() != c.want {
			t.Errorf("trim(%q) = %q, want %q", c.recv, result.ToString(), c.want)
		}
	}
}

func TestStackUnderflowOnEmptyPop(t *testing.T) {
	v := newTestVM(emptyPool())
	body := abc.MethodBody{LocalCount: 1, Code: []byte{byte(OpPop)}}
	env := NewEnvironment(0, int(body.LocalCount))
	_, err := v.run(env, body)
	if err == nil {
		t.Fatal("run: want StackUnderflow error, got nil")
	}
	ve, ok := err.(*VmError)
	if !ok || ve.Kind != StackUnderflow {
		t.Errorf("run error = %v, want a StackUnderflow VmError", err)
	}
}
