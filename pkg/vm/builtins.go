package vm

import (
	"fmt"
	"math"
	"strings"

	"github.com/kristofer/avm2/pkg/avmrt"
)

// callMathBuiltin implements the handful of Math static methods
// spec.md §4.4.6 and §8's end-to-end scenarios exercise (Math.max,
// Math.min, and the rest of the ordinary single/double-argument
// numeric functions), bridging them directly to Go's math package
// rather than modeling them as decoded AVM2 bytecode.
func callMathBuiltin(name string, args []avmrt.Value) (avmrt.Value, error) {
	nums := make([]float64, len(args))
	for i, a := range args {
		nums[i] = a.ToNumber()
	}
	switch name {
	case "max":
		if len(nums) < 2 {
			return avmrt.Undef(), newVmError(TypeError, "Math.max requires at least 2 arguments, got %d", len(nums))
		}
		m := nums[0]
		for _, n := range nums[1:] {
			m = math.Max(m, n)
		}
		return avmrt.Number(m), nil
	case "min":
		if len(nums) < 2 {
			return avmrt.Undef(), newVmError(TypeError, "Math.min requires at least 2 arguments, got %d", len(nums))
		}
		m := nums[0]
		for _, n := range nums[1:] {
			m = math.Min(m, n)
		}
		return avmrt.Number(m), nil
	case "abs":
		return avmrt.Number(math.Abs(arg0(nums))), nil
	case "floor":
		return avmrt.Number(math.Floor(arg0(nums))), nil
	case "ceil":
		return avmrt.Number(math.Ceil(arg0(nums))), nil
	case "round":
		return avmrt.Number(math.Floor(arg0(nums) + 0.5)), nil
	case "sqrt":
		return avmrt.Number(math.Sqrt(arg0(nums))), nil
	case "pow":
		if len(nums) < 2 {
			return avmrt.Number(math.NaN()), nil
		}
		return avmrt.Number(math.Pow(nums[0], nums[1])), nil
	}
	return avmrt.Undef(), newVmError(ReferenceError, "Math.%s is not implemented", name)
}

func arg0(nums []float64) float64 {
	if len(nums) == 0 {
		return math.NaN()
	}
	return nums[0]
}

// callStringBuiltin implements the String instance methods spec.md
// §8's scenarios exercise (indexOf, trim, and their neighbors). recv
// is the receiving string's value; it is unused (empty) when
// dispatchCall routed here via the "String" static marker rather than
// a string primitive, which only the static StringUtil-style helpers
// reach.
func callStringBuiltin(recv, name string, args []avmrt.Value) (avmrt.Value, error) {
	arg := func(i int) string {
		if i < len(args) {
			return args[i].ToString()
		}
		return ""
	}
	switch name {
	case "indexOf":
		return avmrt.Int(int32(strings.Index(recv, arg(0)))), nil
	case "lastIndexOf":
		return avmrt.Int(int32(strings.LastIndex(recv, arg(0)))), nil
	case "charAt":
		i := int(args0Int(args))
		if i < 0 || i >= len(recv) {
			return avmrt.Str(""), nil
		}
		return avmrt.Str(string(recv[i])), nil
	case "substr":
		start := clampIndex(int(args0Int(args)), len(recv))
		length := len(recv) - start
		if len(args) > 1 {
			length = int(args[1].ToInt32())
		}
		end := clampIndex(start+length, len(recv))
		if end < start {
			end = start
		}
		return avmrt.Str(recv[start:end]), nil
	case "substring":
		start := clampIndex(int(args0Int(args)), len(recv))
		end := len(recv)
		if len(args) > 1 {
			end = clampIndex(int(args[1].ToInt32()), len(recv))
		}
		if start > end {
			start, end = end, start
		}
		return avmrt.Str(recv[start:end]), nil
	case "toUpperCase":
		return avmrt.Str(strings.ToUpper(recv)), nil
	case "toLowerCase":
		return avmrt.Str(strings.ToLower(recv)), nil
	case "split":
		sep := arg(0)
		var parts []string
		if sep == "" {
			parts = strings.Split(recv, "")
		} else {
			parts = strings.Split(recv, sep)
		}
		arr := avmrt.NewObject("array", nil)
		for i, p := range parts {
			arr.Set(avmrt.PropertyKey{Name: fmt.Sprintf("%d", i)}, avmrt.Str(p))
		}
		arr.Set(avmrt.PropertyKey{Name: "length"}, avmrt.Int(int32(len(parts))))
		return avmrt.Obj(arr), nil
	case "trim":
		return avmrt.Str(strings.TrimSpace(recv)), nil
	case "concat":
		var b strings.Builder
		b.WriteString(recv)
		for _, a := range args {
			b.WriteString(a.ToString())
		}
		return avmrt.Str(b.String()), nil
	}
	return avmrt.Undef(), newVmError(ReferenceError, "String.%s is not implemented", name)
}

func args0Int(args []avmrt.Value) int32 {
	if len(args) == 0 {
		return 0
	}
	return args[0].ToInt32()
}

// clampIndex bounds an AS3 string index (which may be negative or past
// the end) into [0, length], the way String.substr/substring tolerate
// out-of-range arguments rather than erroring.
func clampIndex(i, length int) int {
	if i < 0 {
		i = 0
	}
	if i > length {
		i = length
	}
	return i
}
