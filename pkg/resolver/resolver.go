// Package resolver implements the AVM2 multiname/scope resolution
// algorithm (spec.md §4.3): binding a (scope stack, name, namespace set)
// triple to a runtime object.
package resolver

import (
	"errors"
	"fmt"

	"github.com/kristofer/avm2/pkg/avmrt"
)

// ErrNotFound is returned when no (scope, namespace) combination in the
// search holds the requested property. Callers surface this as a
// ReferenceError (spec.md §7).
var ErrNotFound = errors.New("resolver: property not found in any scope")

// Scope is one entry of a scope stack. Most entries wrap an Object; a
// "degenerate scope" instead carries a bare string and short-circuits
// the search, returning itself regardless of name or namespace — a
// deliberately preserved quirk (spec.md §9, §4.3) used to let built-in
// primitive receivers sit directly on the scope stack.
type Scope struct {
	Object *avmrt.Object
	String string
	IsString bool
}

// ObjScope wraps an Object as a scope-stack entry.
func ObjScope(o *avmrt.Object) Scope { return Scope{Object: o} }

// StrScope wraps a degenerate string scope-stack entry.
func StrScope(s string) Scope { return Scope{String: s, IsString: true} }

// Result is the output of a successful Resolve: the value the name was
// bound to, the (name, namespace) pair that matched, and the scope-stack
// entry it was found in.
type Result struct {
	Value     avmrt.Value
	Name      string
	Namespace string
	FoundIn   Scope
}

// Resolve implements the design-level algorithm from spec.md §4.3:
//
//	for scope in reverse(scopeStack):
//	    for ns in namespaces:
//	        if scope is a string: return (scope, name, ns, scope)
//	        if (ns, name) in scope.properties: return (...)
//	    fail NotFound
//
// Ties are broken by (a) most-recent scope first, (b) order of
// namespaces within the set — the loop order above already encodes
// both rules, so Resolve need not sort anything itself.
func Resolve(scopeStack []Scope, name string, namespaces []string) (Result, error) {
	for i := len(scopeStack) - 1; i >= 0; i-- {
		scope := scopeStack[i]
		for _, ns := range namespaces {
			if scope.IsString {
				return Result{Value: avmrt.Str(scope.String), Name: name, Namespace: ns, FoundIn: scope}, nil
			}
			if scope.Object == nil {
				continue
			}
			key := avmrt.PropertyKey{Namespace: ns, Name: name}
			if val, ok := scope.Object.Get(key); ok {
				return Result{Value: val, Name: name, Namespace: ns, FoundIn: scope}, nil
			}
		}
	}
	return Result{}, fmt.Errorf("%w: name=%q namespaces=%v", ErrNotFound, name, namespaces)
}
