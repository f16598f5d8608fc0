package evaluator

import "github.com/solarframe/ecmawalk/internal/values"

// stringIterMethod is String.prototype[Symbol.iterator]: unlike Array,
// a JS string is a primitive (internal/values.String is not an Object),
// so there is no prototype chain to install this on — patterns.go's
// getIterMethod returns this directly for any String value instead of
// doing a property lookup.
func stringIterMethod(realm *Realm) values.Value {
	return &values.HostFunction{Name: "[Symbol.iterator]", Fn: func(this values.Value, args []values.Value) (values.Value, error) {
		str, ok := this.(values.String)
		if !ok {
			return nil, nil
		}
		return newStringIteratorObject(realm, str), nil
	}}
}

// newStringIteratorObject iterates by Unicode code point, not UTF-16
// code unit (spec.md §3.1/§4.8: "for-of over a string yields one string
// per code point, combining surrogate pairs"), each step's value being
// the one- or two-unit substring that code point occupies.
func newStringIteratorObject(realm *Realm, str values.String) *values.Object {
	obj := values.NewObject(realm.ObjectProto)
	obj.Class = "String Iterator"
	index := 0
	obj.Set(values.StringKey("next"), &values.HostFunction{Name: "next", Fn: func(this values.Value, args []values.Value) (values.Value, error) {
		result := values.NewObject(realm.ObjectProto)
		if index >= str.Length() {
			result.Set(values.StringKey("value"), values.Undefined)
			result.Set(values.StringKey("done"), values.Boolean(true))
			return result, nil
		}
		width := 1
		unit, _ := str.CharCodeAt(index)
		if isHighSurrogate(unit) {
			if next, ok := str.CharCodeAt(index + 1); ok && isLowSurrogate(next) {
				width = 2
			}
		}
		result.Set(values.StringKey("value"), values.String{Units: codePointUnits(str, index, width)})
		result.Set(values.StringKey("done"), values.Boolean(false))
		index += width
		return result, nil
	}})
	selfIter := &values.HostFunction{Name: "[Symbol.iterator]", Fn: func(this values.Value, args []values.Value) (values.Value, error) {
		return obj, nil
	}}
	obj.Set(realm.IterKey(), selfIter)
	return obj
}

func isHighSurrogate(u uint16) bool { return u >= 0xD800 && u <= 0xDBFF }
func isLowSurrogate(u uint16) bool  { return u >= 0xDC00 && u <= 0xDFFF }

func codePointUnits(str values.String, index, width int) []uint16 {
	units := make([]uint16, width)
	for i := 0; i < width; i++ {
		units[i], _ = str.CharCodeAt(index + i)
	}
	return units
}

// installArrayIterator wires Array.prototype[Symbol.iterator] so the
// realm's own intrinsic Array type satisfies the iteration protocol
// (spec.md §4.8) without needing a standard-library installer — for-of,
// spread, and destructuring all resolve iterability through this same
// well-known symbol (patterns.go's getIterMethod), so a literal array
// with no installer ever run would otherwise never be iterable.
//
// This is the evaluator core's own intrinsic, not a "standard library
// constructor" in spec.md §1's external-collaborator sense: it gives the
// language's built-in Array exotic object the one method every other
// iteration consumer in this package assumes exists, the same way the
// teacher's runtime wires its own array/string built-ins directly
// rather than leaving them to be registered later.
func installArrayIterator(realm *Realm) {
	iterFn := &values.HostFunction{Name: "[Symbol.iterator]", Fn: func(this values.Value, args []values.Value) (values.Value, error) {
		arr, ok := this.(*values.Array)
		if !ok {
			return nil, nil
		}
		return newArrayIteratorObject(realm, arr), nil
	}}
	realm.ArrayProto.DefineOwnProperty(realm.IterKey(), &values.PropertyDescriptor{
		Value: iterFn, Writable: true, Configurable: true,
	})
}

// newArrayIteratorObject builds the %ArrayIteratorPrototype%-shaped
// object an array's Symbol.iterator method returns: a one-shot next()
// over arr's current elements, closing over an index rather than
// snapshotting the backing slice (spec.md §4.8 "an open array iterator
// observes in-place mutation of the array it was opened over").
func newArrayIteratorObject(realm *Realm, arr *values.Array) *values.Object {
	obj := values.NewObject(realm.ObjectProto)
	obj.Class = "Array Iterator"
	index := 0
	obj.Set(values.StringKey("next"), &values.HostFunction{Name: "next", Fn: func(this values.Value, args []values.Value) (values.Value, error) {
		result := values.NewObject(realm.ObjectProto)
		if index >= arr.Length() {
			result.Set(values.StringKey("value"), values.Undefined)
			result.Set(values.StringKey("done"), values.Boolean(true))
			return result, nil
		}
		result.Set(values.StringKey("value"), arr.Get(index))
		result.Set(values.StringKey("done"), values.Boolean(false))
		index++
		return result, nil
	}})
	selfIter := &values.HostFunction{Name: "[Symbol.iterator]", Fn: func(this values.Value, args []values.Value) (values.Value, error) {
		return obj, nil
	}}
	obj.Set(realm.IterKey(), selfIter)
	return obj
}
