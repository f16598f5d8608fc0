package evaluator

import (
	"github.com/solarframe/ecmawalk/internal/class"
	"github.com/solarframe/ecmawalk/internal/errorsx"
	"github.com/solarframe/ecmawalk/internal/jsast"
	"github.com/solarframe/ecmawalk/internal/values"
)

// reference is a resolved assignment target: Get reads the current
// value, Set writes a new one. Both are closures over whatever the
// target expression needed evaluated exactly once (an object + a
// property key, or a scope + a binding name), so code like
// `a[i++] += 1` evaluates `i++` a single time even though the target
// is both read and written.
//
// Grounded directly on lvalue.go's `(currentVal, assignFunc, err)`
// triple idiom, generalized to return a struct of two closures instead
// of a raw tuple for readability; the single-evaluation guarantee is
// the same one DWScript's lvalue.go enforces for index/member
// assignment targets.
type reference struct {
	Get func() (values.Value, error)
	Set func(values.Value) error
}

// resolveReference evaluates target's object/index/identifier parts
// exactly once and returns a reference for reading/writing it
// (spec.md §4.4 "Assignment", "UpdateExpression").
func (e *Evaluator) resolveReference(target jsast.Node) (reference, error) {
	switch t := target.(type) {
	case *jsast.Identifier:
		sym := t.Name
		return reference{
			Get: func() (values.Value, error) { return e.Ctx.Scope.Get(sym, e.Realm.Names) },
			Set: func(v values.Value) error {
				return e.Ctx.Scope.Assign(sym, v, !e.Ctx.Strict, e.Realm.Names)
			},
		}, nil

	case *jsast.MemberExpression:
		if pid, ok := t.Property.(*jsast.PrivateIdentifier); ok {
			return e.resolvePrivateReference(t.Object, pid)
		}

		if _, isSuper := t.Object.(*jsast.SuperExpression); isSuper {
			return e.resolveSuperReference(t)
		}

		objVal, err := e.evalExpr(t.Object)
		if err != nil {
			return reference{}, err
		}
		if t.Optional && values.IsNullish(objVal) {
			return reference{
				Get: func() (values.Value, error) { return values.Undefined, nil },
				Set: func(values.Value) error { return nil },
			}, nil
		}
		var key values.PropertyKey
		if t.Computed {
			kv, err := e.evalExpr(t.Property)
			if err != nil {
				return reference{}, err
			}
			key = values.ToPropertyKey(kv)
		} else {
			id := t.Property.(*jsast.Identifier)
			key = values.StringKey(e.Realm.Names.Name(id.Name))
		}
		obj, _ := memberTargetObject(objVal)
		if obj == nil {
			return reference{}, errorsx.New(errorsx.CategoryType, "cannot create property on non-object")
		}
		return reference{
			Get: func() (values.Value, error) {
				if arr, ok := objVal.(*values.Array); ok {
					if v, handled := arrayGet(arr, key); handled {
						return v, nil
					}
				}
				return obj.Get(key, objVal, e.invoke)
			},
			Set: func(v values.Value) error {
				if arr, ok := objVal.(*values.Array); ok {
					if idx, isIdx := arrayIndexKey(key); isIdx {
						arr.SetElement(idx, v)
						return nil
					}
				}
				if desc, owner := obj.FindAccessorInChain(key); desc != nil {
					if desc.IsAccessor() {
						if desc.Set == nil {
							return nil // silently ignored: no setter, matches sloppy-mode [[Set]] failure path
						}
						_, err := e.invoke(desc.Set, objVal, []values.Value{v})
						return err
					}
					_ = owner
					return nil // non-writable data property: silently ignored in sloppy mode
				}
				obj.Set(key, v)
				return nil
			},
		}, nil

	default:
		return reference{}, errorsx.New(errorsx.CategoryInternal, "invalid assignment target")
	}
}

// resolveSuperReference handles `super.x`/`super[x]`: a read starts its
// prototype-chain search at the home object's [[Prototype]], but a
// write still lands on `this`, never on the prototype object itself
// (spec.md §4.7 "Super": "[[Set]] on a Super reference assigns through
// to the receiver, `this`, not to the home object's prototype").
func (e *Evaluator) resolveSuperReference(t *jsast.MemberExpression) (reference, error) {
	if e.Ctx.HomeObject == nil {
		return reference{}, errorsx.New(errorsx.CategoryType, "'super' keyword is only valid inside a method")
	}
	superProto := e.Ctx.HomeObject.Proto
	var key values.PropertyKey
	if t.Computed {
		kv, err := e.evalExpr(t.Property)
		if err != nil {
			return reference{}, err
		}
		key = values.ToPropertyKey(kv)
	} else {
		id := t.Property.(*jsast.Identifier)
		key = values.StringKey(e.Realm.Names.Name(id.Name))
	}
	receiver := e.Ctx.ThisValue
	return reference{
		Get: func() (values.Value, error) {
			if superProto == nil {
				return values.Undefined, nil
			}
			return superProto.Get(key, receiver, e.invoke)
		},
		Set: func(v values.Value) error {
			this, _ := memberTargetObject(receiver)
			if this == nil {
				return errorsx.New(errorsx.CategoryType, "cannot set property through 'super' on a non-object 'this'")
			}
			this.Set(key, v)
			return nil
		},
	}, nil
}

// resolvePrivateReference handles `obj.#name` get/set, verifying obj
// carries the declaring class's brand before touching per-instance
// private storage (spec.md §4.7 "a private name access on a value
// lacking the brand is a TypeError").
func (e *Evaluator) resolvePrivateReference(objExpr jsast.Expression, pid *jsast.PrivateIdentifier) (reference, error) {
	objVal, err := e.evalExpr(objExpr)
	if err != nil {
		return reference{}, err
	}
	return e.privateReferenceForValue(objVal, pid)
}

// privateReferenceForValue is resolvePrivateReference's value-taking
// half, reused by calls.go's method-call path so it can resolve
// `obj.#m(...)` without evaluating `obj` a second time just to build
// the reference.
func (e *Evaluator) privateReferenceForValue(objVal values.Value, pid *jsast.PrivateIdentifier) (reference, error) {
	info, known := e.privateOwners[pid.Name]
	if !known {
		return reference{}, errorsx.New(errorsx.CategorySyntax, "private field '#%s' must be declared in an enclosing class", e.Realm.Names.Name(pid.Name))
	}
	inst, ok := objVal.(*class.Instance)
	if !ok || !inst.HasBrand(info.Brand) {
		return reference{}, errorsx.New(errorsx.CategoryType, "cannot access private member #%s from an object whose class does not declare it", e.Realm.Names.Name(pid.Name))
	}
	return reference{
		Get: func() (values.Value, error) {
			if fn, ok := info.LookupPrivateGetter(pid.Name); ok {
				return e.invoke(fn, inst, nil)
			}
			if fn, ok := info.LookupPrivateMethod(pid.Name); ok {
				return fn, nil
			}
			v, _ := inst.GetPrivateField(pid.Name)
			return v, nil
		},
		Set: func(v values.Value) error {
			if fn, ok := info.LookupPrivateSetter(pid.Name); ok {
				_, err := e.invoke(fn, inst, []values.Value{v})
				return err
			}
			inst.SetPrivateField(pid.Name, v)
			return nil
		},
	}, nil
}

// arrayGet implements the Array exotic object's integer-indexed
// [[Get]] and its derived "length" property (spec.md §3.1 "Array"):
// reads that plain Object property storage never sees, because
// element values live in Array.Elements rather than as ordinary
// properties (see lvalue.go's symmetric SetElement fast path for
// writes). handled is false for any other key, which falls through to
// the prototype-chain lookup for inherited/own non-index properties.
func arrayGet(arr *values.Array, key values.PropertyKey) (v values.Value, handled bool) {
	if !key.IsSymbol() && key.String() == "length" {
		return values.Number(float64(len(arr.Elements))), true
	}
	idx, isIdx := arrayIndexKey(key)
	if !isIdx {
		return nil, false
	}
	if idx < 0 || idx >= len(arr.Elements) {
		return values.Undefined, true
	}
	elem := arr.Elements[idx]
	if values.IsHole(elem) || elem == nil {
		return values.Undefined, true
	}
	return elem, true
}

func arrayIndexKey(key values.PropertyKey) (int, bool) {
	if key.IsSymbol() {
		return 0, false
	}
	s := key.String()
	n := 0
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
