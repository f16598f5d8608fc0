package evaluator

import (
	"github.com/solarframe/ecmawalk/internal/class"
	"github.com/solarframe/ecmawalk/internal/errorsx"
	"github.com/solarframe/ecmawalk/internal/jsast"
	"github.com/solarframe/ecmawalk/internal/values"
)

// Call invokes callee with the given this/args, the single chokepoint
// every call site (ordinary calls, method calls, host callbacks handed
// into internal/iterator and internal/values) routes through so
// cancellation is observed uniformly (spec.md §4.5 "Call").
func (e *Evaluator) Call(callee values.Value, this values.Value, args []values.Value) (values.Value, error) {
	if e.Ctx.Cancelled() {
		return nil, e.Ctx.Go.Err()
	}
	callable, ok := callee.(values.Callable)
	if !ok {
		return nil, errorsx.New(errorsx.CategoryType, "%s is not a function", describeCallee(callee))
	}
	return callable.Invoke(args, this)
}

// New invokes callee's [[Construct]] (spec.md §4.4 "New").
func (e *Evaluator) New(callee values.Value, args []values.Value) (values.Value, error) {
	ctor, ok := callee.(values.Constructible)
	if !ok {
		return nil, errorsx.New(errorsx.CategoryType, "%s is not a constructor", describeCallee(callee))
	}
	return ctor.Construct(args, callee)
}

func describeCallee(v values.Value) string {
	if v == nil || values.IsUndefined(v) {
		return "undefined"
	}
	return v.String()
}

// evalArguments evaluates a call/new argument list, expanding any
// *jsast.SpreadElement entries in place (spec.md §4.4 "Call" step 3,
// "spread").
func (e *Evaluator) evalArguments(argNodes []jsast.Expression) ([]values.Value, error) {
	args := make([]values.Value, 0, len(argNodes))
	for _, a := range argNodes {
		if spread, ok := a.(*jsast.SpreadElement); ok {
			sv, err := e.evalExpr(spread.Argument)
			if err != nil {
				return nil, err
			}
			items, err := e.spreadIterable(sv)
			if err != nil {
				return nil, err
			}
			args = append(args, items...)
			continue
		}
		v, err := e.evalExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// evalCallExpression dispatches `f(...)`, `obj.m(...)`,
// `super(...)`/`super.m(...)`, and `?.()` optional calls (spec.md §4.4
// "Call", §4.7 "Super"). A `?.` short-circuit is local to its own link
// of the chain rather than threaded through the whole expression: it
// yields undefined for that link only, so later links such as `.c` in
// `a?.b().c` or `a.b?.().c` are still evaluated against undefined and
// throw a TypeError.
func (e *Evaluator) evalCallExpression(c *jsast.CallExpression) (values.Value, error) {
	if _, isSuper := c.Callee.(*jsast.SuperExpression); isSuper {
		args, err := e.evalArguments(c.Arguments)
		if err != nil {
			return nil, err
		}
		if err := e.superConstructCall(args); err != nil {
			return nil, err
		}
		return values.Undefined, nil
	}

	if m, ok := c.Callee.(*jsast.MemberExpression); ok {
		fn, this, err := e.resolveMethodCallee(m)
		if err != nil {
			return nil, err
		}
		if fn == nil {
			return values.Undefined, nil // optional chaining short-circuit
		}
		args, err := e.evalArguments(c.Arguments)
		if err != nil {
			return nil, err
		}
		if c.Optional && values.IsNullish(fn) {
			return values.Undefined, nil
		}
		return e.Call(fn, this, args)
	}

	calleeVal, err := e.evalExpr(c.Callee)
	if err != nil {
		return nil, err
	}
	if c.Optional && values.IsNullish(calleeVal) {
		return values.Undefined, nil
	}
	args, err := e.evalArguments(c.Arguments)
	if err != nil {
		return nil, err
	}
	return e.Call(calleeVal, values.Undefined, args)
}

// resolveMethodCallee evaluates the object/key halves of `obj.m` (or
// `super.m`/`obj.#m`) callee position and returns the method value plus
// the `this` a subsequent Call should bind, without re-evaluating obj
// (spec.md §4.4 "Call": "a method call's `this` is the base reference's
// object"). A nil method with a nil error signals an optional-chaining
// short-circuit.
func (e *Evaluator) resolveMethodCallee(m *jsast.MemberExpression) (fn values.Value, this values.Value, err error) {
	if _, isSuper := m.Object.(*jsast.SuperExpression); isSuper {
		if e.Ctx.HomeObject == nil {
			return nil, nil, errorsx.New(errorsx.CategoryType, "'super' keyword is only valid inside a method")
		}
		key, err := e.memberKey(m)
		if err != nil {
			return nil, nil, err
		}
		this := e.Ctx.ThisValue
		superProto := e.Ctx.HomeObject.Proto
		if superProto == nil {
			return values.Undefined, this, nil
		}
		fnVal, err := superProto.Get(key, this, e.invoke)
		return fnVal, this, err
	}

	if pid, ok := m.Property.(*jsast.PrivateIdentifier); ok {
		objVal, err := e.evalExpr(m.Object)
		if err != nil {
			return nil, nil, err
		}
		ref, err := e.privateReferenceForValue(objVal, pid)
		if err != nil {
			return nil, nil, err
		}
		fnVal, err := ref.Get()
		return fnVal, objVal, err
	}

	objVal, err := e.evalExpr(m.Object)
	if err != nil {
		return nil, nil, err
	}
	if m.Optional && values.IsNullish(objVal) {
		return nil, nil, nil
	}
	key, err := e.memberKey(m)
	if err != nil {
		return nil, nil, err
	}
	if arr, ok := objVal.(*values.Array); ok {
		if fnVal, handled := arrayGet(arr, key); handled {
			return fnVal, objVal, nil
		}
	}
	obj, receiver := memberTargetObject(objVal)
	if obj == nil {
		return nil, nil, errorsx.New(errorsx.CategoryType, "cannot read properties of %s", describeCallee(objVal))
	}
	fnVal, err := obj.Get(key, receiver, e.invoke)
	return fnVal, objVal, err
}

// evalMemberExpression is ordinary (non-assignment, non-call-position)
// property read: `obj.x`, `obj[x]`, `obj?.x`, `obj.#x`, `super.x`
// (spec.md §4.4 "Member").
func (e *Evaluator) evalMemberExpression(m *jsast.MemberExpression) (values.Value, error) {
	ref, err := e.resolveReference(m)
	if err != nil {
		return nil, err
	}
	return ref.Get()
}

func (e *Evaluator) memberKey(m *jsast.MemberExpression) (values.PropertyKey, error) {
	if m.Computed {
		kv, err := e.evalExpr(m.Property)
		if err != nil {
			return values.PropertyKey{}, err
		}
		return values.ToPropertyKey(kv), nil
	}
	id := m.Property.(*jsast.Identifier)
	return values.StringKey(e.Realm.Names.Name(id.Name)), nil
}

// memberTargetObject unwraps the *values.Object a property access
// should run against, for both ordinary objects and the exotic Array
// value (whose own Get(int) shadows Object.Get and so needs its
// embedded Object surfaced explicitly for generic key lookups).
func memberTargetObject(v values.Value) (obj *values.Object, receiver values.Value) {
	switch x := v.(type) {
	case *values.Object:
		return x, x
	case *values.Array:
		return x.Object, x
	case *class.Instance:
		return x.Object, x
	default:
		return nil, v
	}
}

// evalNewExpression implements `new Callee(...)` (spec.md §4.4 "New").
func (e *Evaluator) evalNewExpression(n *jsast.NewExpression) (values.Value, error) {
	calleeVal, err := e.evalExpr(n.Callee)
	if err != nil {
		return nil, err
	}
	args, err := e.evalArguments(n.Arguments)
	if err != nil {
		return nil, err
	}
	return e.New(calleeVal, args)
}

// evalCalleeWithThis evaluates a callee expression for tagged-template
// position, resolving method `this` the same way evalCallExpression's
// member-call path does (spec.md §4.4 "TaggedTemplate" step 2: "the tag
// is evaluated as a member or plain reference, not called yet").
func (e *Evaluator) evalCalleeWithThis(callee jsast.Expression) (fn values.Value, this values.Value, err error) {
	if m, ok := callee.(*jsast.MemberExpression); ok {
		return e.resolveMethodCallee(m)
	}
	v, err := e.evalExpr(callee)
	return v, values.Undefined, err
}
