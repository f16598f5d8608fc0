package evaluator

import (
	"github.com/solarframe/ecmawalk/internal/environment"
	"github.com/solarframe/ecmawalk/internal/errorsx"
	"github.com/solarframe/ecmawalk/internal/iterator"
	"github.com/solarframe/ecmawalk/internal/jsast"
	"github.com/solarframe/ecmawalk/internal/values"
)

// bindPattern destructures v into fresh bindings defined directly in
// scope (spec.md §4.8 "destructuring"): each leaf identifier becomes a
// new, already-initialized, non-lexical binding of that frame. Its
// callers are parameter lists, catch clauses and `let`/`const`
// for-in/for-of heads; isLexicalVar is passed down unchanged and does
// not alter how a binding is created. Assigning into already-resolved
// references is assignPattern's job (below), used for plain
// `({a} = x)` destructuring assignment expressions.
func (e *Evaluator) bindPattern(scope *environment.Frame, pat jsast.Pattern, v values.Value, isLexicalVar bool) error {
	switch p := pat.(type) {
	case *jsast.Identifier:
		return scope.Define(p.Name, v, false, false, false, false, e.Realm.Names)

	case *jsast.AssignmentPattern:
		if values.IsUndefined(v) {
			def, err := e.evalExpr(p.Default)
			if err != nil {
				return err
			}
			v = def
		}
		return e.bindPattern(scope, p.Target, v, isLexicalVar)

	case *jsast.ArrayPattern:
		return e.bindArrayPattern(scope, p, v)

	case *jsast.ObjectPattern:
		return e.bindObjectPattern(scope, p, v)

	case *jsast.RestElement:
		return e.bindPattern(scope, p.Argument, v, isLexicalVar)

	default:
		return errorsx.New(errorsx.CategoryInternal, "unsupported binding pattern")
	}
}

func (e *Evaluator) bindArrayPattern(scope *environment.Frame, p *jsast.ArrayPattern, v values.Value) error {
	iterMethod, err := e.getIterMethod(v)
	if err != nil {
		return err
	}
	src, err := iterator.Open(v, iterMethod, e.invoke)
	if err != nil {
		return err
	}
	nextMethod, err := e.getNextMethod(src)
	if err != nil {
		return err
	}
	exhausted := false
	for _, el := range p.Elements {
		// A trailing rest element collects every value the iterator has
		// left into a fresh array, rather than consuming just the next
		// one (spec.md §4.8 "BindingRestElement": "the rest target is
		// bound to a new array holding the remainder of the iterator").
		if rest, ok := el.(*jsast.RestElement); ok {
			var collected []values.Value
			for !exhausted {
				step, err := e.iterNext(src, nextMethod)
				if err != nil {
					return err
				}
				if step.done {
					exhausted = true
					break
				}
				collected = append(collected, step.value)
			}
			return e.bindPattern(scope, rest.Argument, values.NewArray(e.Realm.ArrayProto, collected), true)
		}
		val := values.Value(values.Undefined)
		if !exhausted {
			step, err := e.iterNext(src, nextMethod)
			if err != nil {
				return err
			}
			if step.done {
				exhausted = true
			} else {
				val = step.value
			}
		}
		if el == nil {
			continue // elision: skip this position
		}
		if err := e.bindPattern(scope, el, val, true); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) bindObjectPattern(scope *environment.Frame, p *jsast.ObjectPattern, v values.Value) error {
	obj, ok := v.(*values.Object)
	if !ok {
		if arr, ok2 := v.(*values.Array); ok2 {
			obj = arr.Object
		} else {
			return errorsx.New(errorsx.CategoryType, "cannot destructure non-object")
		}
	}
	seen := map[values.PropertyKey]bool{}
	for _, prop := range p.Properties {
		var key values.PropertyKey
		if id, ok := prop.Key.(*jsast.Identifier); ok && !prop.Computed {
			key = values.StringKey(e.Realm.Names.Name(id.Name))
		} else {
			kv, err := e.evalExpr(prop.Key)
			if err != nil {
				return err
			}
			key = values.ToPropertyKey(kv)
		}
		seen[key] = true
		val, err := obj.Get(key, obj, e.invoke)
		if err != nil {
			return err
		}
		if err := e.bindPattern(scope, prop.Value, val, true); err != nil {
			return err
		}
	}
	if p.Rest != nil {
		restObj := values.NewObject(e.Realm.ObjectProto)
		for _, k := range obj.OwnPropertyKeys() {
			if seen[k] {
				continue
			}
			if d, ok := obj.GetOwnProperty(k); ok && d.Enumerable {
				val, err := obj.Get(k, obj, e.invoke)
				if err != nil {
					return err
				}
				restObj.Set(k, val)
			}
		}
		if err := e.bindPattern(scope, p.Rest, restObj, true); err != nil {
			return err
		}
	}
	return nil
}

type iterStep struct {
	value values.Value
	done  bool
}

func (e *Evaluator) getIterMethod(v values.Value) (values.Value, error) {
	if _, ok := v.(values.String); ok {
		return stringIterMethod(e.Realm), nil
	}
	obj, ok := v.(*values.Object)
	if !ok {
		if arr, ok2 := v.(*values.Array); ok2 {
			obj = arr.Object
		} else {
			return nil, errorsx.New(errorsx.CategoryType, "value is not iterable")
		}
	}
	return obj.Get(e.Realm.IterKey(), obj, e.invoke)
}

func (e *Evaluator) getNextMethod(src *iterator.Source) (values.Value, error) {
	obj, ok := src.Iterator.(*values.Object)
	if !ok {
		return nil, errorsx.New(errorsx.CategoryType, "iterator is not an object")
	}
	return obj.Get(values.StringKey("next"), obj, e.invoke)
}

func (e *Evaluator) iterNext(src *iterator.Source, nextMethod values.Value) (iterStep, error) {
	results, err := src.Collect(nextMethod, 1)
	if err != nil {
		return iterStep{}, err
	}
	if len(results) == 0 {
		return iterStep{done: true}, nil
	}
	return iterStep{value: results[0]}, nil
}

// assignPattern is destructuring assignment into already-existing
// bindings/targets (`[a, b] = x;`), as opposed to declaring fresh ones.
// It resolves each leaf to a reference and calls Set, instead of
// Define, reusing resolveReference for identifier/member leaves so a
// destructuring assignment target can include arbitrary assignable
// expressions, not just bare identifiers (spec.md §4.8 "destructuring
// assignment").
func (e *Evaluator) assignPattern(target jsast.Node, v values.Value) error {
	switch t := target.(type) {
	case *jsast.Identifier, *jsast.MemberExpression:
		ref, err := e.resolveReference(target)
		if err != nil {
			return err
		}
		return ref.Set(v)

	case *jsast.AssignmentPattern:
		if values.IsUndefined(v) {
			def, err := e.evalExpr(t.Default)
			if err != nil {
				return err
			}
			v = def
		}
		return e.assignPattern(t.Target, v)

	case *jsast.ArrayPattern:
		iterMethod, err := e.getIterMethod(v)
		if err != nil {
			return err
		}
		src, err := iterator.Open(v, iterMethod, e.invoke)
		if err != nil {
			return err
		}
		nextMethod, err := e.getNextMethod(src)
		if err != nil {
			return err
		}
		exhausted := false
		for _, el := range t.Elements {
			if rest, ok := el.(*jsast.RestElement); ok {
				var collected []values.Value
				for !exhausted {
					step, err := e.iterNext(src, nextMethod)
					if err != nil {
						return err
					}
					if step.done {
						exhausted = true
						break
					}
					collected = append(collected, step.value)
				}
				return e.assignPattern(rest.Argument, values.NewArray(e.Realm.ArrayProto, collected))
			}
			val := values.Value(values.Undefined)
			if !exhausted {
				step, err := e.iterNext(src, nextMethod)
				if err != nil {
					return err
				}
				if step.done {
					exhausted = true
				} else {
					val = step.value
				}
			}
			if el == nil {
				continue
			}
			if err := e.assignPattern(el, val); err != nil {
				return err
			}
		}
		return nil

	case *jsast.ObjectPattern:
		obj, ok := v.(*values.Object)
		if !ok {
			return errorsx.New(errorsx.CategoryType, "cannot destructure non-object")
		}
		seen := map[values.PropertyKey]bool{}
		for _, prop := range t.Properties {
			var key values.PropertyKey
			if id, ok := prop.Key.(*jsast.Identifier); ok && !prop.Computed {
				key = values.StringKey(e.Realm.Names.Name(id.Name))
			} else {
				kv, err := e.evalExpr(prop.Key)
				if err != nil {
					return err
				}
				key = values.ToPropertyKey(kv)
			}
			seen[key] = true
			val, err := obj.Get(key, obj, e.invoke)
			if err != nil {
				return err
			}
			if err := e.assignPattern(prop.Value, val); err != nil {
				return err
			}
		}
		if t.Rest != nil {
			restObj := values.NewObject(e.Realm.ObjectProto)
			for _, k := range obj.OwnPropertyKeys() {
				if seen[k] {
					continue
				}
				if d, ok := obj.GetOwnProperty(k); ok && d.Enumerable {
					val, err := obj.Get(k, obj, e.invoke)
					if err != nil {
						return err
					}
					restObj.Set(k, val)
				}
			}
			if err := e.assignPattern(t.Rest, restObj); err != nil {
				return err
			}
		}
		return nil

	default:
		return errorsx.New(errorsx.CategoryInternal, "invalid destructuring assignment target")
	}
}
