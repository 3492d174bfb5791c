package resolver

import (
	"errors"
	"testing"

	"github.com/kristofer/avm2/pkg/avmrt"
)

func TestResolveFindsPropertyOnNearestScope(t *testing.T) {
	inner := avmrt.NewObject("inner", nil)
	outer := avmrt.NewObject("outer", nil)
	target := avmrt.NewObject("target", nil)
	inner.Set(avmrt.PropertyKey{Namespace: "", Name: "x"}, avmrt.Obj(target))

	stack := []Scope{ObjScope(outer), ObjScope(inner)}
	res, err := Resolve(stack, "x", []string{""})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Value.Object() != target {
		t.Errorf("Resolve found %v, want the object on the innermost scope", res.Value)
	}
}

func TestResolveMostRecentScopeWins(t *testing.T) {
	outer := avmrt.NewObject("outer", nil)
	inner := avmrt.NewObject("inner", nil)
	outerVal := avmrt.NewObject("outerVal", nil)
	innerVal := avmrt.NewObject("innerVal", nil)
	outer.Set(avmrt.PropertyKey{Name: "x"}, avmrt.Obj(outerVal))
	inner.Set(avmrt.PropertyKey{Name: "x"}, avmrt.Obj(innerVal))

	stack := []Scope{ObjScope(outer), ObjScope(inner)}
	res, err := Resolve(stack, "x", []string{""})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Value.Object() != innerVal {
		t.Error("Resolve did not prefer the most-recent (innermost) scope")
	}
}

func TestResolveNamespaceOrderWithinScope(t *testing.T) {
	scope := avmrt.NewObject("scope", nil)
	first := avmrt.NewObject("first", nil)
	second := avmrt.NewObject("second", nil)
	scope.Set(avmrt.PropertyKey{Namespace: "ns1", Name: "x"}, avmrt.Obj(first))
	scope.Set(avmrt.PropertyKey{Namespace: "ns2", Name: "x"}, avmrt.Obj(second))

	stack := []Scope{ObjScope(scope)}
	res, err := Resolve(stack, "x", []string{"ns1", "ns2"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Value.Object() != first || res.Namespace != "ns1" {
		t.Errorf("Resolve did not honor namespace search order")
	}
}

func TestResolveStringPropertySurvives(t *testing.T) {
	scope := avmrt.NewObject("scope", nil)
	scope.Set(avmrt.PropertyKey{Name: "x"}, avmrt.Str("hello"))

	stack := []Scope{ObjScope(scope)}
	res, err := Resolve(stack, "x", []string{""})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Value.ToString() != "hello" {
		t.Errorf("Resolve lost a primitive string property, got %v", res.Value)
	}
}

func TestResolveDegenerateStringScopeShortCircuits(t *testing.T) {
	stack := []Scope{StrScope("builtin-receiver")}
	res, err := Resolve(stack, "whatever", []string{""})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.FoundIn.String != "builtin-receiver" {
		t.Errorf("Resolve did not short-circuit on the degenerate string scope")
	}
	if res.Value.ToString() != "builtin-receiver" {
		t.Errorf("Resolve returned %v as the resolved value, want the degenerate scope's own string", res.Value)
	}
}

func TestResolveNotFound(t *testing.T) {
	stack := []Scope{ObjScope(avmrt.NewObject("empty", nil))}
	_, err := Resolve(stack, "missing", []string{""})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve error = %v, want ErrNotFound", err)
	}
}

func TestResolveEmptyScopeStackFails(t *testing.T) {
	_, err := Resolve(nil, "x", []string{""})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve on empty scope stack = %v, want ErrNotFound", err)
	}
}
