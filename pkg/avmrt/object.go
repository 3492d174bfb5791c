package avmrt

import (
	"fmt"
	"sync/atomic"
)

// PropertyKey is the (namespace, name) pair every property lookup is
// keyed by (spec.md §3.4).
type PropertyKey struct {
	Namespace string
	Name      string
}

var objectSeq int64

// Object is the runtime representation of every script-visible instance
// — including the global object seeded into each method environment's
// scope stack. ClassIx names the decoded class this object was
// constructed from, or nil for ad-hoc objects (the global object, the
// built-in Math/String markers, and newobject/newarray results).
//
// Properties stores the full tagged Value (spec.md §3.4's "primitives
// may appear ... wrapped or unwrapped; the design fixes a single
// representation per VM"), not a further *Object: a property holding a
// string or number must round-trip through setproperty/getproperty
// without being truncated to null, which a map keyed to *Object alone
// cannot do.
type Object struct {
	TraceHint  string
	ClassIx    *int
	Properties map[PropertyKey]Value
}

// NewObject allocates an Object with a unique trace hint derived from
// hint, the way the reference implementation's ASObject numbers every
// instance for diagnostics (original_source/avm2/runtime.py's
// ASO_Seq). classIx is nil for objects with no decoded class.
func NewObject(hint string, classIx *int) *Object {
	seq := atomic.AddInt64(&objectSeq, 1)
	return &Object{
		TraceHint:  fmt.Sprintf("%s#%d", hint, seq),
		ClassIx:    classIx,
		Properties: make(map[PropertyKey]Value),
	}
}

// Get returns the property at key, and whether it was present.
func (o *Object) Get(key PropertyKey) (Value, bool) {
	v, ok := o.Properties[key]
	return v, ok
}

// Set creates or overwrites the property at key.
func (o *Object) Set(key PropertyKey, value Value) {
	o.Properties[key] = value
}

// Delete removes the property at key, reporting whether it existed.
func (o *Object) Delete(key PropertyKey) bool {
	if _, ok := o.Properties[key]; !ok {
		return false
	}
	delete(o.Properties, key)
	return true
}
