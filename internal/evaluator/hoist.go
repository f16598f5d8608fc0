package evaluator

import (
	"github.com/solarframe/ecmawalk/internal/environment"
	"github.com/solarframe/ecmawalk/internal/jsast"
	"github.com/solarframe/ecmawalk/internal/symbols"
	"github.com/solarframe/ecmawalk/internal/values"
)

// hoistBody runs the Hoister's passes over body directly inside scope,
// then installs the real closure values for every function declaration
// the function-declaration pass pre-declared as a placeholder (spec.md
// §4.1) — internal/environment's Hoister only knows about bindings, not
// how to build a closure, so the evaluator finishes the job here.
func (e *Evaluator) hoistBody(scope *environment.Frame, body []jsast.Statement) error {
	hoister := &environment.Hoister{Names: e.Realm.Names}
	if err := hoister.HoistBody(scope, body, e.Ctx.Strict); err != nil {
		return err
	}
	for _, stmt := range body {
		if fd, ok := stmt.(*jsast.FunctionDeclaration); ok && fd.Function.ID != nil {
			fn := e.makeFunction(fd.Function, scope, e.Realm.Names.Name(fd.Function.ID.Name))
			scope.Initialize(fd.Function.ID.Name, fn)
		}
	}
	return nil
}

// syncAnnexBBlockFunction implements the half of spec.md §4.1's Annex-B
// extension that internal/environment's Hoister.annexBBlockFunctions
// cannot: once a sloppy-mode block-scoped function declaration actually
// runs, its value is copied up to the var-scoped binding of the same
// name the hoisting pass pre-declared in the enclosing function/program
// scope — unless an intervening lexical declaration masks it. Without
// this, the var-scope binding stays permanently undefined and the
// function is only reachable through the block's own lexical binding.
func (e *Evaluator) syncAnnexBBlockFunction(sym symbols.Symbol, fn values.Value) {
	if e.Ctx.Strict {
		return
	}
	block := e.Ctx.Scope
	funcScope := block.GetFunctionScope()
	if funcScope == block {
		return
	}
	if block.HasBodyLexicalName(sym) {
		return
	}
	if funcScope.HasOwnLexicalBinding(sym) {
		return
	}
	if _, ok := funcScope.GetLocal(sym); !ok {
		return
	}
	_ = funcScope.Assign(sym, fn, false, e.Realm.Names)
}

// makeFunction builds a Function closure over scope. Every non-arrow,
// non-generator, non-async function gets its own fresh `.prototype`
// object (spec.md §4.4 "New": "each function has a distinct prototype
// object, not a shared one — `new`/`instanceof` both key off identity,
// not structure").
func (e *Evaluator) makeFunction(lit *jsast.FunctionLiteral, scope *environment.Frame, name string) *Function {
	fn := &Function{Literal: lit, Closure: scope, Eval: e, Name: name}
	if !lit.Arrow && !lit.Generator && !lit.Async {
		proto := values.NewObject(e.Realm.ObjectProto)
		proto.DefineOwnProperty(values.StringKey("constructor"), &values.PropertyDescriptor{
			Value: fn, Writable: true, Configurable: true,
		})
		fn.Prototype = proto
	}
	return fn
}
