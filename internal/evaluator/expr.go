package evaluator

import (
	"math"
	"strings"

	"github.com/solarframe/ecmawalk/internal/class"
	"github.com/solarframe/ecmawalk/internal/errorsx"
	"github.com/solarframe/ecmawalk/internal/iterator"
	"github.com/solarframe/ecmawalk/internal/jsast"
	"github.com/solarframe/ecmawalk/internal/values"
)

// evalExpr is the expression-dispatch switch (spec.md §4.4): every
// expression node produces exactly one values.Value or a Go error for a
// condition the evaluator itself must raise (a thrown JS exception
// instead rides the statement-level evalctx.Flow channel — see
// stmt.go's ThrowStatement/execTry).
func (e *Evaluator) evalExpr(expr jsast.Expression) (values.Value, error) {
	switch x := expr.(type) {
	case *jsast.Literal:
		return e.evalLiteral(x)

	case *jsast.Identifier:
		return e.Ctx.Scope.Get(x.Name, e.Realm.Names)

	case *jsast.ThisExpression:
		if !e.Ctx.ThisInitialized {
			return nil, errorsx.New(errorsx.CategoryReference, "Must call super constructor in derived class before accessing 'this'")
		}
		return e.Ctx.ThisValue, nil

	case *jsast.SuperExpression:
		return nil, errorsx.New(errorsx.CategorySyntax, "'super' keyword is only valid inside a method or constructor")

	case *jsast.NewTargetExpression:
		if e.Ctx.NewTarget == nil {
			return values.Undefined, nil
		}
		return e.Ctx.NewTarget, nil

	case *jsast.TemplateLiteral:
		return e.evalTemplateLiteral(x)

	case *jsast.TaggedTemplateExpression:
		return e.evalTaggedTemplate(x)

	case *jsast.ArrayExpression:
		return e.evalArrayExpression(x)

	case *jsast.ObjectExpression:
		return e.evalObjectExpression(x)

	case *jsast.FunctionLiteral:
		name := ""
		if x.ID != nil {
			name = e.Realm.Names.Name(x.ID.Name)
		}
		return e.makeFunction(x, e.Ctx.Scope, name), nil

	case *jsast.ClassLiteral:
		_, ctor, err := e.buildClass(x)
		return ctor, err

	case *jsast.UnaryExpression:
		return e.evalUnary(x)

	case *jsast.UpdateExpression:
		return e.evalUpdate(x)

	case *jsast.BinaryExpression:
		return e.evalBinary(x)

	case *jsast.LogicalExpression:
		return e.evalLogical(x)

	case *jsast.AssignmentExpression:
		return e.evalAssignment(x)

	case *jsast.ConditionalExpression:
		test, err := e.evalExpr(x.Test)
		if err != nil {
			return nil, err
		}
		if values.ToBoolean(test) {
			return e.evalExpr(x.Consequent)
		}
		return e.evalExpr(x.Alternate)

	case *jsast.CallExpression:
		return e.evalCallExpression(x)

	case *jsast.NewExpression:
		return e.evalNewExpression(x)

	case *jsast.MemberExpression:
		return e.evalMemberExpression(x)

	case *jsast.SequenceExpression:
		var last values.Value = values.Undefined
		for _, sub := range x.Expressions {
			v, err := e.evalExpr(sub)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil

	case *jsast.YieldExpression:
		return e.evalYield(x)

	case *jsast.AwaitExpression:
		return e.evalAwait(x)

	default:
		return nil, errorsx.New(errorsx.CategoryInternal, "internal error: unrecognized expression %T", expr)
	}
}

func (e *Evaluator) evalLiteral(lit *jsast.Literal) (values.Value, error) {
	switch lit.Kind {
	case jsast.LitUndefined:
		return values.Undefined, nil
	case jsast.LitNull:
		return values.Null, nil
	case jsast.LitBoolean:
		return values.Boolean(lit.Value.(bool)), nil
	case jsast.LitNumber:
		return values.Number(lit.Value.(float64)), nil
	case jsast.LitString:
		return values.NewString(lit.Value.(string)), nil
	case jsast.LitRegExp:
		re := lit.Value.(*jsast.RegExpLiteral)
		obj := values.NewObject(e.Realm.ObjectProto)
		obj.Class = "RegExp"
		obj.Set(values.StringKey("source"), values.NewString(re.Pattern))
		obj.Set(values.StringKey("flags"), values.NewString(re.Flags))
		return obj, nil
	default:
		return nil, errorsx.New(errorsx.CategoryInternal, "unsupported literal kind")
	}
}

func (e *Evaluator) evalTemplateLiteral(t *jsast.TemplateLiteral) (values.Value, error) {
	var sb strings.Builder
	for i, q := range t.Quasis {
		sb.WriteString(q.Cooked)
		if i < len(t.Expressions) {
			v, err := e.evalExpr(t.Expressions[i])
			if err != nil {
				return nil, err
			}
			s, err := e.toDisplayString(v)
			if err != nil {
				return nil, err
			}
			sb.WriteString(s)
		}
	}
	return values.NewString(sb.String()), nil
}

func (e *Evaluator) evalTaggedTemplate(t *jsast.TaggedTemplateExpression) (values.Value, error) {
	tagVal, this, err := e.evalCalleeWithThis(t.Tag)
	if err != nil {
		return nil, err
	}
	strs := make([]values.Value, 0, len(t.Quasi.Quasis))
	raw := make([]values.Value, 0, len(t.Quasi.Quasis))
	for _, q := range t.Quasi.Quasis {
		strs = append(strs, values.NewString(q.Cooked))
		raw = append(raw, values.NewString(q.Raw))
	}
	strsArr := values.NewArray(e.Realm.ArrayProto, strs)
	strsArr.Set(values.StringKey("raw"), values.NewArray(e.Realm.ArrayProto, raw))
	args := []values.Value{strsArr}
	for _, expr := range t.Quasi.Expressions {
		v, err := e.evalExpr(expr)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return e.Call(tagVal, this, args)
}

func (e *Evaluator) evalArrayExpression(a *jsast.ArrayExpression) (values.Value, error) {
	elems := make([]values.Value, 0, len(a.Elements))
	for _, el := range a.Elements {
		if el == nil {
			elems = append(elems, values.Hole)
			continue
		}
		if spread, ok := el.(*jsast.SpreadElement); ok {
			sv, err := e.evalExpr(spread.Argument)
			if err != nil {
				return nil, err
			}
			items, err := e.spreadIterable(sv)
			if err != nil {
				return nil, err
			}
			elems = append(elems, items...)
			continue
		}
		v, err := e.evalExpr(el)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return values.NewArray(e.Realm.ArrayProto, elems), nil
}

// spreadIterable drains value's iterator, used by array literals and
// call/new argument lists (spec.md §4.4 "spread").
func (e *Evaluator) spreadIterable(v values.Value) ([]values.Value, error) {
	iterMethod, err := e.getIterMethod(v)
	if err != nil {
		return nil, err
	}
	src, err := iterator.Open(v, iterMethod, e.invoke)
	if err != nil {
		return nil, err
	}
	nextMethod, err := e.getNextMethod(src)
	if err != nil {
		return nil, err
	}
	return src.Collect(nextMethod, -1)
}

func (e *Evaluator) evalObjectExpression(o *jsast.ObjectExpression) (values.Value, error) {
	obj := values.NewObject(e.Realm.ObjectProto)
	for _, prop := range o.Properties {
		if prop.Kind == jsast.PropSpread {
			sv, err := e.evalExpr(prop.Value)
			if err != nil {
				return nil, err
			}
			if src, ok := sv.(*values.Object); ok {
				for _, k := range src.OwnPropertyKeys() {
					if d, ok := src.GetOwnProperty(k); ok && d.Enumerable {
						val, err := src.Get(k, src, e.invoke)
						if err != nil {
							return nil, err
						}
						obj.Set(k, val)
					}
				}
			} else if arr, ok := sv.(*values.Array); ok {
				for i, el := range arr.Elements {
					if values.IsHole(el) {
						continue
					}
					obj.Set(values.StringKey(indexString(i)), el)
				}
			}
			continue
		}

		var key values.PropertyKey
		if id, ok := prop.Key.(*jsast.Identifier); ok && !prop.Computed {
			key = values.StringKey(e.Realm.Names.Name(id.Name))
		} else {
			kv, err := e.evalExpr(prop.Key)
			if err != nil {
				return nil, err
			}
			key = values.ToPropertyKey(kv)
		}

		switch prop.Kind {
		case jsast.PropGet, jsast.PropSet:
			fn := e.makeFunction(prop.Value.(*jsast.FunctionLiteral), e.Ctx.Scope, key.String())
			fn.HomeObject = obj
			desc, existing := obj.GetOwnProperty(key)
			if !existing || !desc.IsAccessor() {
				desc = &values.PropertyDescriptor{Enumerable: true, Configurable: true}
			}
			if prop.Kind == jsast.PropGet {
				desc.Get = fn
			} else {
				desc.Set = fn
			}
			obj.DefineOwnProperty(key, desc)
		case jsast.PropMethod:
			fn := e.makeFunction(prop.Value.(*jsast.FunctionLiteral), e.Ctx.Scope, key.String())
			fn.HomeObject = obj
			obj.Set(key, fn)
		default:
			v, err := e.evalExpr(prop.Value)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
	}
	return obj, nil
}

func (e *Evaluator) evalUnary(u *jsast.UnaryExpression) (values.Value, error) {
	if u.Op == "typeof" {
		if id, ok := u.Argument.(*jsast.Identifier); ok {
			v, err := e.Ctx.Scope.Get(id.Name, e.Realm.Names)
			if err != nil {
				return values.NewString("undefined"), nil
			}
			return values.NewString(jsTypeof(v)), nil
		}
	}
	if u.Op == "delete" {
		return e.evalDelete(u.Argument)
	}

	v, err := e.evalExpr(u.Argument)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case "typeof":
		return values.NewString(jsTypeof(v)), nil
	case "void":
		return values.Undefined, nil
	case "!":
		return values.Boolean(!values.ToBoolean(v)), nil
	case "-":
		return values.Number(-float64(values.ToNumber(v))), nil
	case "+":
		return values.Number(values.ToNumber(v)), nil
	case "~":
		return values.Number(float64(^values.ToInt32(v))), nil
	default:
		return nil, errorsx.New(errorsx.CategoryInternal, "unsupported unary operator %q", u.Op)
	}
}

func jsTypeof(v values.Value) string {
	switch v.(type) {
	case nil:
		return "undefined"
	}
	if values.IsUndefined(v) {
		return "undefined"
	}
	if values.IsNull(v) {
		return "object"
	}
	switch v.Type() {
	case "boolean":
		return "boolean"
	case "number":
		return "number"
	case "string":
		return "string"
	case "symbol":
		return "symbol"
	case "function":
		return "function"
	default:
		if _, ok := v.(values.Callable); ok {
			return "function"
		}
		return "object"
	}
}

func (e *Evaluator) evalDelete(target jsast.Expression) (values.Value, error) {
	m, ok := target.(*jsast.MemberExpression)
	if !ok {
		return values.Boolean(true), nil
	}
	objVal, err := e.evalExpr(m.Object)
	if err != nil {
		return nil, err
	}
	obj, ok := objVal.(*values.Object)
	if !ok {
		if arr, ok2 := objVal.(*values.Array); ok2 {
			obj = arr.Object
		} else {
			return values.Boolean(true), nil
		}
	}
	var key values.PropertyKey
	if m.Computed {
		kv, err := e.evalExpr(m.Property)
		if err != nil {
			return nil, err
		}
		key = values.ToPropertyKey(kv)
	} else {
		id := m.Property.(*jsast.Identifier)
		key = values.StringKey(e.Realm.Names.Name(id.Name))
	}
	return values.Boolean(obj.DeleteOwnProperty(key)), nil
}

func (e *Evaluator) evalUpdate(u *jsast.UpdateExpression) (values.Value, error) {
	ref, err := e.resolveReference(u.Argument)
	if err != nil {
		return nil, err
	}
	old, err := ref.Get()
	if err != nil {
		return nil, err
	}
	oldNum := values.ToNumber(old)
	var newNum values.Number
	if u.Op == "++" {
		newNum = oldNum + 1
	} else {
		newNum = oldNum - 1
	}
	if err := ref.Set(newNum); err != nil {
		return nil, err
	}
	if u.Prefix {
		return newNum, nil
	}
	return oldNum, nil
}

func (e *Evaluator) evalBinary(b *jsast.BinaryExpression) (values.Value, error) {
	if b.Op == "in" {
		return e.evalInOperator(b)
	}
	if b.Op == "instanceof" {
		return e.evalInstanceof(b)
	}
	left, err := e.evalExpr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(b.Right)
	if err != nil {
		return nil, err
	}
	return e.applyBinaryOp(b.Op, left, right)
}

func (e *Evaluator) evalInOperator(b *jsast.BinaryExpression) (values.Value, error) {
	if pid, ok := b.Left.(*jsast.PrivateIdentifier); ok {
		rightVal, err := e.evalExpr(b.Right)
		if err != nil {
			return nil, err
		}
		info, known := e.privateOwners[pid.Name]
		if !known {
			return values.Boolean(false), nil
		}
		inst, ok := rightVal.(*class.Instance)
		return values.Boolean(ok && inst.HasBrand(info.Brand)), nil
	}
	left, err := e.evalExpr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(b.Right)
	if err != nil {
		return nil, err
	}
	obj, ok := right.(*values.Object)
	if !ok {
		if arr, ok2 := right.(*values.Array); ok2 {
			if idx, isIdx := arrayIndexKey(values.ToPropertyKey(left)); isIdx {
				return values.Boolean(idx >= 0 && idx < len(arr.Elements) && !values.IsHole(arr.Elements[idx])), nil
			}
			obj = arr.Object
		} else {
			return nil, errorsx.New(errorsx.CategoryType, "cannot use 'in' operator on a non-object")
		}
	}
	key := values.ToPropertyKey(left)
	for cur := obj; cur != nil; cur = cur.Proto {
		if _, ok := cur.GetOwnProperty(key); ok {
			return values.Boolean(true), nil
		}
	}
	return values.Boolean(false), nil
}

func (e *Evaluator) evalInstanceof(b *jsast.BinaryExpression) (values.Value, error) {
	left, err := e.evalExpr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(b.Right)
	if err != nil {
		return nil, err
	}
	ctorObj, ok := right.(values.Callable)
	if !ok {
		return nil, errorsx.New(errorsx.CategoryType, "right-hand side of 'instanceof' is not callable")
	}
	var proto *values.Object
	switch c := ctorObj.(type) {
	case *ClassConstructor:
		proto = c.Info.Prototype
	case *Function:
		if c.Prototype != nil {
			proto = c.Prototype
		}
	}
	leftObj, ok := left.(*values.Object)
	if !ok {
		if arr, ok2 := left.(*values.Array); ok2 {
			leftObj = arr.Object
		} else if inst, ok3 := left.(*class.Instance); ok3 {
			leftObj = inst.Object
		} else {
			return values.Boolean(false), nil
		}
	}
	if proto == nil {
		return values.Boolean(false), nil
	}
	for cur := leftObj.Proto; cur != nil; cur = cur.Proto {
		if cur == proto {
			return values.Boolean(true), nil
		}
	}
	return values.Boolean(false), nil
}

func (e *Evaluator) applyBinaryOp(op string, left, right values.Value) (values.Value, error) {
	switch op {
	case "+":
		lp, err := e.toPrimitive(left)
		if err != nil {
			return nil, err
		}
		rp, err := e.toPrimitive(right)
		if err != nil {
			return nil, err
		}
		if lp.Type() == "string" || rp.Type() == "string" {
			ls, err := e.toDisplayString(lp)
			if err != nil {
				return nil, err
			}
			rs, err := e.toDisplayString(rp)
			if err != nil {
				return nil, err
			}
			return values.NewString(ls + rs), nil
		}
		return values.Number(float64(values.ToNumber(lp)) + float64(values.ToNumber(rp))), nil
	case "-":
		return values.Number(float64(values.ToNumber(left)) - float64(values.ToNumber(right))), nil
	case "*":
		return values.Number(float64(values.ToNumber(left)) * float64(values.ToNumber(right))), nil
	case "/":
		return values.Number(float64(values.ToNumber(left)) / float64(values.ToNumber(right))), nil
	case "%":
		return values.Number(math.Mod(float64(values.ToNumber(left)), float64(values.ToNumber(right)))), nil
	case "**":
		return values.Number(math.Pow(float64(values.ToNumber(left)), float64(values.ToNumber(right)))), nil
	case "&":
		return values.Number(float64(values.ToInt32(left) & values.ToInt32(right))), nil
	case "|":
		return values.Number(float64(values.ToInt32(left) | values.ToInt32(right))), nil
	case "^":
		return values.Number(float64(values.ToInt32(left) ^ values.ToInt32(right))), nil
	case "<<":
		return values.Number(float64(values.ToInt32(left) << (values.ToUint32(right) & 31))), nil
	case ">>":
		return values.Number(float64(values.ToInt32(left) >> (values.ToUint32(right) & 31))), nil
	case ">>>":
		return values.Number(float64(values.ToUint32(left) >> (values.ToUint32(right) & 31))), nil
	case "<", ">", "<=", ">=":
		return e.evalRelational(op, left, right)
	case "==":
		eq, err := e.looseEquals(left, right)
		return values.Boolean(eq), err
	case "!=":
		eq, err := e.looseEquals(left, right)
		return values.Boolean(!eq), err
	case "===":
		return values.Boolean(values.StrictEquals(left, right)), nil
	case "!==":
		return values.Boolean(!values.StrictEquals(left, right)), nil
	default:
		return nil, errorsx.New(errorsx.CategoryInternal, "unsupported binary operator %q", op)
	}
}

func (e *Evaluator) evalRelational(op string, left, right values.Value) (values.Value, error) {
	lp, err := e.toPrimitive(left)
	if err != nil {
		return nil, err
	}
	rp, err := e.toPrimitive(right)
	if err != nil {
		return nil, err
	}
	if lp.Type() == "string" && rp.Type() == "string" {
		ls, rs := lp.String(), rp.String()
		switch op {
		case "<":
			return values.Boolean(ls < rs), nil
		case ">":
			return values.Boolean(ls > rs), nil
		case "<=":
			return values.Boolean(ls <= rs), nil
		default:
			return values.Boolean(ls >= rs), nil
		}
	}
	ln, rn := float64(values.ToNumber(lp)), float64(values.ToNumber(rp))
	if math.IsNaN(ln) || math.IsNaN(rn) {
		return values.Boolean(false), nil
	}
	switch op {
	case "<":
		return values.Boolean(ln < rn), nil
	case ">":
		return values.Boolean(ln > rn), nil
	case "<=":
		return values.Boolean(ln <= rn), nil
	default:
		return values.Boolean(ln >= rn), nil
	}
}

// toPrimitive applies ECMA-262 ToPrimitive: objects consult valueOf then
// toString (spec.md §3.1 "a realm consults an object's valueOf/toString
// methods for numeric/string coercion, which internal/values cannot do
// on its own since it has no evaluator/invoke dependency").
func (e *Evaluator) toPrimitive(v values.Value) (values.Value, error) {
	obj, ok := v.(*values.Object)
	if !ok {
		if arr, ok2 := v.(*values.Array); ok2 {
			obj = arr.Object
		} else {
			return v, nil
		}
	}
	for _, name := range []string{"valueOf", "toString"} {
		fn, err := obj.Get(values.StringKey(name), v, e.invoke)
		if err != nil {
			return nil, err
		}
		if callable, ok := fn.(values.Callable); ok {
			result, err := callable.Invoke(nil, v)
			if err != nil {
				return nil, err
			}
			if _, isObj := result.(*values.Object); !isObj {
				return result, nil
			}
		}
	}
	return values.NewString(v.String()), nil
}

func (e *Evaluator) toDisplayString(v values.Value) (string, error) {
	p, err := e.toPrimitive(v)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}

// looseEquals implements `==`, consulting toPrimitive for the
// object-vs-primitive cases values.LooseEquals cannot handle alone.
func (e *Evaluator) looseEquals(a, b values.Value) (bool, error) {
	_, aIsObj := a.(*values.Object)
	_, aIsArr := a.(*values.Array)
	_, bIsObj := b.(*values.Object)
	_, bIsArr := b.(*values.Array)
	if (aIsObj || aIsArr) && !bIsObj && !bIsArr && !values.IsNullish(b) {
		ap, err := e.toPrimitive(a)
		if err != nil {
			return false, err
		}
		return e.looseEquals(ap, b)
	}
	if (bIsObj || bIsArr) && !aIsObj && !aIsArr && !values.IsNullish(a) {
		bp, err := e.toPrimitive(b)
		if err != nil {
			return false, err
		}
		return e.looseEquals(a, bp)
	}
	return values.LooseEquals(a, b), nil
}

func (e *Evaluator) evalLogical(l *jsast.LogicalExpression) (values.Value, error) {
	left, err := e.evalExpr(l.Left)
	if err != nil {
		return nil, err
	}
	switch l.Op {
	case "&&":
		if !values.ToBoolean(left) {
			return left, nil
		}
	case "||":
		if values.ToBoolean(left) {
			return left, nil
		}
	case "??":
		if !values.IsNullish(left) {
			return left, nil
		}
	default:
		return nil, errorsx.New(errorsx.CategoryInternal, "unsupported logical operator %q", l.Op)
	}
	return e.evalExpr(l.Right)
}

func (e *Evaluator) evalAssignment(a *jsast.AssignmentExpression) (values.Value, error) {
	if a.Op == "=" {
		if pat, ok := a.Target.(jsast.Pattern); ok {
			if _, isID := pat.(*jsast.Identifier); !isID {
				v, err := e.evalExpr(a.Value)
				if err != nil {
					return nil, err
				}
				if err := e.assignPattern(a.Target, v); err != nil {
					return nil, err
				}
				return v, nil
			}
		}
		ref, err := e.resolveReference(a.Target)
		if err != nil {
			return nil, err
		}
		v, err := e.evalExpr(a.Value)
		if err != nil {
			return nil, err
		}
		if err := ref.Set(v); err != nil {
			return nil, err
		}
		return v, nil
	}

	ref, err := e.resolveReference(a.Target)
	if err != nil {
		return nil, err
	}

	switch a.Op {
	case "&&=":
		cur, err := ref.Get()
		if err != nil {
			return nil, err
		}
		if !values.ToBoolean(cur) {
			return cur, nil
		}
		v, err := e.evalExpr(a.Value)
		if err != nil {
			return nil, err
		}
		return v, ref.Set(v)
	case "||=":
		cur, err := ref.Get()
		if err != nil {
			return nil, err
		}
		if values.ToBoolean(cur) {
			return cur, nil
		}
		v, err := e.evalExpr(a.Value)
		if err != nil {
			return nil, err
		}
		return v, ref.Set(v)
	case "??=":
		cur, err := ref.Get()
		if err != nil {
			return nil, err
		}
		if !values.IsNullish(cur) {
			return cur, nil
		}
		v, err := e.evalExpr(a.Value)
		if err != nil {
			return nil, err
		}
		return v, ref.Set(v)
	}

	cur, err := ref.Get()
	if err != nil {
		return nil, err
	}
	rhs, err := e.evalExpr(a.Value)
	if err != nil {
		return nil, err
	}
	op := strings.TrimSuffix(a.Op, "=")
	result, err := e.applyBinaryOp(op, cur, rhs)
	if err != nil {
		return nil, err
	}
	return result, ref.Set(result)
}

func (e *Evaluator) evalYield(y *jsast.YieldExpression) (values.Value, error) {
	yield, ok := e.currentYield()
	if !ok {
		return nil, errorsx.New(errorsx.CategorySyntax, "'yield' is only valid inside a generator")
	}
	if y.Delegate {
		return e.evalYieldDelegate(y, yield)
	}
	var arg values.Value = values.Undefined
	if y.Argument != nil {
		v, err := e.evalExpr(y.Argument)
		if err != nil {
			return nil, err
		}
		arg = v
	}
	return yield(arg)
}

// evalYieldDelegate implements `yield* iterable`: re-yields every value
// the delegate iterator produces and, once it's exhausted, evaluates to
// its final return value (spec.md §4.6 "yield*").
func (e *Evaluator) evalYieldDelegate(y *jsast.YieldExpression, yield func(values.Value) (values.Value, error)) (values.Value, error) {
	v, err := e.evalExpr(y.Argument)
	if err != nil {
		return nil, err
	}
	iterMethod, err := e.getIterMethod(v)
	if err != nil {
		return nil, err
	}
	src, err := iterator.Open(v, iterMethod, e.invoke)
	if err != nil {
		return nil, err
	}
	nextMethod, err := e.getNextMethod(src)
	if err != nil {
		return nil, err
	}
	var last values.Value = values.Undefined
	for {
		step, err := e.iterNext(src, nextMethod)
		if err != nil {
			return nil, err
		}
		if step.done {
			last = step.value
			break
		}
		if _, err := yield(step.value); err != nil {
			return nil, err
		}
	}
	return last, nil
}

func (e *Evaluator) evalAwait(a *jsast.AwaitExpression) (values.Value, error) {
	await, ok := e.currentAwait()
	if !ok {
		return nil, errorsx.New(errorsx.CategorySyntax, "'await' is only valid inside an async function")
	}
	v, err := e.evalExpr(a.Argument)
	if err != nil {
		return nil, err
	}
	return await(v)
}
