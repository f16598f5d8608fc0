package evaluator

import (
	"github.com/solarframe/ecmawalk/internal/environment"
	"github.com/solarframe/ecmawalk/internal/errorsx"
	"github.com/solarframe/ecmawalk/internal/evalctx"
	"github.com/solarframe/ecmawalk/internal/jsast"
	"github.com/solarframe/ecmawalk/internal/values"
)

// Function is the runtime closure value for every user-defined
// function form (regular/arrow/method/generator/async — spec.md §3.5
// "Function value"); the Arrow/Async/Generator flags on the underlying
// FunctionLiteral select the calling convention applied in Call/bind.
//
// Grounded on lvalue.go's closure-capture idiom generalized from
// DWScript's single function-value shape into ECMA-262's several
// calling conventions, which DWScript (no arrows, no generators, no
// async) never had to distinguish.
type Function struct {
	Literal    *jsast.FunctionLiteral
	Closure    *environment.Frame // the scope the function was defined in
	Eval       *Evaluator
	Name       string
	HomeObject *values.Object // for `super` resolution inside methods (spec.md §4.7)
	Prototype  *values.Object // the object `new f()` uses as [[Prototype]]; nil means Object.prototype

	// BoundThis/HasBoundThis are set for an arrow function: arrows
	// capture `this`/`new.target`/`arguments` lexically from their
	// enclosing non-arrow scope rather than receiving their own (spec.md
	// §3.5 "Arrow functions do not have their own `this` binding").
	BoundThis    values.Value
	HasBoundThis bool
}

func (*Function) Type() string { return "function" }

func (f *Function) String() string {
	name := f.Name
	if name == "" {
		name = ""
	}
	return "function " + name + "() { [native code] }"
}

// Invoke implements values.Callable for a plain (non-`new`) call.
func (f *Function) Invoke(args []values.Value, this values.Value) (values.Value, error) {
	return f.Eval.callAsFunctionKind(f, args, this, nil)
}

// Construct implements values.Constructible for `new f(...)` on an
// ordinary (non-class, non-arrow) function (spec.md §4.4 "New": a
// plain function used with `new` allocates a fresh `this` whose
// [[Prototype]] is f.Prototype, or Object.prototype when that is nil,
// before running the body).
func (f *Function) Construct(args []values.Value, newTarget values.Value) (values.Value, error) {
	if f.Literal.Arrow || f.Literal.Generator || f.Literal.Async {
		return nil, errorsx.New(errorsx.CategoryType, "%s is not a constructor", f.Name)
	}
	proto := f.Eval.Realm.ObjectProto
	if f.Prototype != nil {
		proto = f.Prototype
	}
	this := values.NewObject(proto)
	result, err := f.Eval.callFunction(f, args, this, newTarget, true)
	if err != nil {
		return nil, err
	}
	if obj, ok := result.(*values.Object); ok {
		return obj, nil
	}
	return this, nil
}

// callFunction runs f's body with args bound to its parameters,
// pushing a call-stack frame for overflow/diagnostic purposes (spec.md
// §4.5 "Call"). newTarget is non-nil only for a `new` invocation.
// bindThis is false only for a derived class constructor's own body
// running before its `super(...)` call has resolved — `this` stays
// whatever the caller already set (nil/uninitialized) so a reference
// to `this` before `super()` surfaces the TDZ-style ReferenceError
// spec.md §4.7 requires, instead of silently seeing undefined.
func (e *Evaluator) callFunction(f *Function, args []values.Value, this values.Value, newTarget values.Value, bindThis bool) (values.Value, error) {
	if err := e.Ctx.Calls.Push(evalctx.CallFrame{FunctionName: f.Name, Strict: f.Literal.Strict}); err != nil {
		return nil, err
	}
	defer e.Ctx.Calls.Pop()

	savedScope := e.Ctx.Scope
	savedThis := e.Ctx.ThisValue
	savedThisInit := e.Ctx.ThisInitialized
	savedNewTarget := e.Ctx.NewTarget
	savedStrict := e.Ctx.Strict
	savedHome := e.Ctx.HomeObject
	defer func() {
		e.Ctx.Scope = savedScope
		e.Ctx.ThisValue = savedThis
		e.Ctx.ThisInitialized = savedThisInit
		e.Ctx.NewTarget = savedNewTarget
		e.Ctx.Strict = savedStrict
		e.Ctx.HomeObject = savedHome
	}()

	fnScope := environment.NewEnclosedFrame(environment.FrameFunction, f.Closure)
	e.Ctx.Scope = fnScope
	e.Ctx.Strict = f.Literal.Strict || e.Ctx.Strict

	if f.Literal.Arrow {
		// Arrows never get their own `this`/`new.target`/`arguments`/home
		// object; they stay whatever the enclosing non-arrow scope bound
		// (spec.md §3.5).
	} else {
		if bindThis {
			e.Ctx.ThisValue = this
			e.Ctx.ThisInitialized = true
		}
		e.Ctx.NewTarget = newTarget
		e.Ctx.HomeObject = f.HomeObject
		argsObj := buildArgumentsObject(e, args)
		fnScope.Define(e.Realm.Names.Intern("arguments"), argsObj, false, false, false, false, e.Realm.Names)
	}

	if err := e.bindParameters(fnScope, f.Literal.Params, args); err != nil {
		return nil, err
	}

	switch body := f.Literal.Body.(type) {
	case *jsast.BlockStatement:
		if err := e.hoistBody(fnScope, body.Body); err != nil {
			return nil, err
		}
		flow, err := e.execStatements(body.Body)
		if err != nil {
			return nil, err
		}
		if flow.Signal == evalctx.SignalReturn {
			return flow.Value, nil
		}
		return values.Undefined, nil
	default:
		// Arrow with a concise (expression) body.
		return e.evalExpr(f.Literal.Body.(jsast.Expression))
	}
}

func buildArgumentsObject(e *Evaluator, args []values.Value) *values.Object {
	obj := values.NewObject(e.Realm.ObjectProto)
	obj.Class = "Arguments"
	for i, a := range args {
		obj.Set(values.StringKey(indexString(i)), a)
	}
	obj.Set(values.StringKey("length"), values.Number(float64(len(args))))
	return obj
}

func indexString(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

// bindParameters performs ordinary parameter-list binding: positional
// patterns (possibly destructuring, possibly defaulted), with a
// trailing rest parameter collecting the remainder (spec.md §4.2
// "function parameters are just patterns").
func (e *Evaluator) bindParameters(scope *environment.Frame, params []jsast.Pattern, args []values.Value) error {
	for i, p := range params {
		if rest, ok := p.(*jsast.RestElement); ok {
			var tail []values.Value
			if i < len(args) {
				tail = args[i:]
			}
			arr := values.NewArray(e.Realm.ArrayProto, append([]values.Value{}, tail...))
			if err := e.bindPattern(scope, rest.Argument, arr, true); err != nil {
				return err
			}
			return nil
		}
		var v values.Value = values.Undefined
		if i < len(args) {
			v = args[i]
		}
		if err := e.bindPattern(scope, p, v, true); err != nil {
			return err
		}
	}
	return nil
}
