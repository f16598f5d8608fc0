package values

import (
	"sort"
	"strconv"
)

// PropertyKey is either a string or a *Symbol, per ECMA-262
// ToPropertyKey. It is used as a map key; symbol keys key by identity
// (the Symbol pointer) while string keys key by value.
type PropertyKey struct {
	str    string
	sym    *Symbol
	isSym  bool
}

// StringKey builds a string-valued PropertyKey.
func StringKey(s string) PropertyKey { return PropertyKey{str: s} }

// SymbolKey builds a symbol-valued PropertyKey.
func SymbolKey(s *Symbol) PropertyKey { return PropertyKey{sym: s, isSym: true} }

// IsSymbol reports whether the key is symbol-valued.
func (k PropertyKey) IsSymbol() bool { return k.isSym }

// String returns the key's string form (valid only when !IsSymbol()).
func (k PropertyKey) String() string { return k.str }

// Symbol returns the key's symbol (valid only when IsSymbol()).
func (k PropertyKey) Symbol() *Symbol { return k.sym }

// mapKey is the comparable form used as the underlying Go map key.
func (k PropertyKey) mapKey() any {
	if k.isSym {
		return k.sym
	}
	return k.str
}

// isArrayIndex reports whether the string key is a canonical
// non-negative integer index (spec.md §3.2: "integer-like keys in
// ascending numeric order").
func isArrayIndex(s string) (uint32, bool) {
	if s == "" || (s[0] == '0' && len(s) > 1) {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n >= 1<<32-1 {
		return 0, false
	}
	if strconv.FormatUint(n, 10) != s {
		return 0, false
	}
	return uint32(n), true
}

// PropertyDescriptor is either a data property (Get/Set nil) or an
// accessor property (Value nil), per spec.md §3.2.
type PropertyDescriptor struct {
	Value        Value
	Get          Value // callable, or nil
	Set          Value // callable, or nil
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// IsAccessor reports whether this descriptor is an accessor (as opposed
// to a data) property.
func (d *PropertyDescriptor) IsAccessor() bool { return d.Get != nil || d.Set != nil }

// Object is an ordinary JS object: a prototype-chained, insertion-
// ordered map from PropertyKey to PropertyDescriptor.
//
// Grounded on runtime/object.go's descriptor bookkeeping, adapted from
// DWScript's class/record property model to ECMA-262's
// [[DefineOwnProperty]]/[[Get]]/[[Set]]/[[Delete]] ordinary-object
// semantics, including the integer-keys-first iteration order spec.md
// §3.2 requires.
type Object struct {
	Proto      *Object
	Extensible bool
	Class      string // diagnostic tag, e.g. "Object", "Error", "Arguments"

	props map[any]*PropertyDescriptor
	order []PropertyKey // insertion order of string keys (excluding array indices)
}

// NewObject creates an empty, extensible ordinary object with the given
// prototype (nil for one whose [[Prototype]] is null).
func NewObject(proto *Object) *Object {
	return &Object{
		Proto:      proto,
		Extensible: true,
		Class:      "Object",
		props:      make(map[any]*PropertyDescriptor),
	}
}

func (*Object) Type() string   { return "object" }
func (o *Object) String() string { return "[object " + o.Class + "]" }

// GetOwnProperty returns the object's own property descriptor for key,
// without walking the prototype chain.
func (o *Object) GetOwnProperty(key PropertyKey) (*PropertyDescriptor, bool) {
	d, ok := o.props[key.mapKey()]
	return d, ok
}

// DefineOwnProperty installs desc for key, recording insertion order for
// fresh string keys. It does not implement the full
// ValidateAndApplyPropertyDescriptor transition-checking algorithm
// (callers that need strict conformance — e.g. the evaluator's
// `Object.defineProperty` builtin — validate before calling this).
func (o *Object) DefineOwnProperty(key PropertyKey, desc *PropertyDescriptor) {
	mk := key.mapKey()
	if _, exists := o.props[mk]; !exists && !key.isSym {
		if _, isIndex := isArrayIndex(key.str); !isIndex {
			o.order = append(o.order, key)
		}
	}
	o.props[mk] = desc
}

// DeleteOwnProperty removes key, reporting whether it existed and was
// configurable (non-configurable properties are not deleted).
func (o *Object) DeleteOwnProperty(key PropertyKey) bool {
	d, ok := o.props[key.mapKey()]
	if !ok {
		return true // deleting a non-existent property succeeds
	}
	if !d.Configurable {
		return false
	}
	delete(o.props, key.mapKey())
	if !key.isSym {
		for i, k := range o.order {
			if !k.isSym && k.str == key.str {
				o.order = append(o.order[:i], o.order[i+1:]...)
				break
			}
		}
	}
	return true
}

// OwnPropertyKeys returns own keys in ECMA-262 [[OwnPropertyKeys]]
// order: ascending-numeric integer-index string keys first, then
// remaining string keys in insertion order, then symbol keys in
// insertion order (spec.md §3.2).
func (o *Object) OwnPropertyKeys() []PropertyKey {
	var indices []uint32
	indexKeys := make(map[uint32]PropertyKey)
	var strKeys []PropertyKey
	var symKeys []PropertyKey

	for mk := range o.props {
		switch k := mk.(type) {
		case string:
			if idx, ok := isArrayIndex(k); ok {
				indices = append(indices, idx)
				indexKeys[idx] = StringKey(k)
			}
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	for _, k := range o.order {
		if _, ok := o.props[k.mapKey()]; ok {
			strKeys = append(strKeys, k)
		}
	}
	for mk, d := range o.props {
		if s, ok := mk.(*Symbol); ok {
			_ = d
			symKeys = append(symKeys, SymbolKey(s))
		}
	}

	keys := make([]PropertyKey, 0, len(indices)+len(strKeys)+len(symKeys))
	for _, idx := range indices {
		keys = append(keys, indexKeys[idx])
	}
	keys = append(keys, strKeys...)
	keys = append(keys, symKeys...)
	return keys
}

// Get implements [[Get]]: walk the prototype chain, invoking accessor
// getters with `this` bound to receiver (spec.md §4.4 "Member").
func (o *Object) Get(key PropertyKey, receiver Value, invoke func(callee Value, this Value, args []Value) (Value, error)) (Value, error) {
	for cur := o; cur != nil; cur = cur.Proto {
		if d, ok := cur.GetOwnProperty(key); ok {
			if d.IsAccessor() {
				if d.Get == nil {
					return Undefined, nil
				}
				return invoke(d.Get, receiver, nil)
			}
			return d.Value, nil
		}
	}
	return Undefined, nil
}

// Set implements ordinary [[Set]] on the object's own property (simple
// non-prototype-walking data assignment, sufficient once the caller has
// already resolved that no inherited accessor intercepts the write).
func (o *Object) Set(key PropertyKey, v Value) {
	if d, ok := o.GetOwnProperty(key); ok {
		d.Value = v
		return
	}
	o.DefineOwnProperty(key, &PropertyDescriptor{
		Value: v, Writable: true, Enumerable: true, Configurable: true,
	})
}

// FindAccessorInChain walks the prototype chain looking for an
// accessor or non-writable data property that should intercept a
// [[Set]] instead of a plain own-property write (spec.md §4.4 ordinary
// [[Set]]/ "Assignment").
func (o *Object) FindAccessorInChain(key PropertyKey) (*PropertyDescriptor, *Object) {
	for cur := o; cur != nil; cur = cur.Proto {
		if d, ok := cur.GetOwnProperty(key); ok {
			if d.IsAccessor() || !d.Writable {
				return d, cur
			}
			return nil, nil
		}
	}
	return nil, nil
}

// Array is the exotic Array object: an Object whose "length" property is
// kept in sync with the highest integer index written, per ECMA-262
// Array exotic [[DefineOwnProperty]].
type Array struct {
	*Object
	Elements []Value // dense backing store; holes are represented by the hole sentinel below
}

// Hole is the sentinel used for an array elision / sparse slot (spec.md
// §4.4 "array elisions become hole entries").
var Hole Value = holeValue{}

type holeValue struct{}

func (holeValue) Type() string   { return "hole" }
func (holeValue) String() string { return "undefined" }

// IsHole reports whether v is the elision sentinel.
func IsHole(v Value) bool { return v == Hole }

// NewArray creates an array object with proto as its prototype
// (typically Array.prototype from the realm) and the given initial
// elements.
func NewArray(proto *Object, elements []Value) *Array {
	obj := NewObject(proto)
	obj.Class = "Array"
	return &Array{Object: obj, Elements: elements}
}

func (*Array) Type() string { return "object" }
func (a *Array) String() string {
	parts := make([]string, 0, len(a.Elements))
	for _, e := range a.Elements {
		if IsHole(e) || e == nil {
			parts = append(parts, "")
			continue
		}
		parts = append(parts, e.String())
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}

// Length returns the array's current length.
func (a *Array) Length() int { return len(a.Elements) }

// Get returns element i, or Undefined if out of range or a hole.
func (a *Array) Get(i int) Value {
	if i < 0 || i >= len(a.Elements) {
		return Undefined
	}
	v := a.Elements[i]
	if IsHole(v) || v == nil {
		return Undefined
	}
	return v
}

// SetElement writes element i, growing the backing store (filling any
// new gap with holes) as needed.
func (a *Array) SetElement(i int, v Value) {
	if i < 0 {
		return
	}
	for len(a.Elements) <= i {
		a.Elements = append(a.Elements, Hole)
	}
	a.Elements[i] = v
}
