package evaluator

import (
	"fmt"

	"github.com/solarframe/ecmawalk/internal/environment"
	"github.com/solarframe/ecmawalk/internal/errorsx"
	"github.com/solarframe/ecmawalk/internal/evalctx"
	"github.com/solarframe/ecmawalk/internal/generator"
	"github.com/solarframe/ecmawalk/internal/iterator"
	"github.com/solarframe/ecmawalk/internal/jsast"
	"github.com/solarframe/ecmawalk/internal/loopplan"
	"github.com/solarframe/ecmawalk/internal/values"
)

// EvalProgram runs prog's top-level statements against the realm's
// global frame, draining the realm's microtask
// queue after each top-level statement and once more after the program
// finishes, exactly as internal/asynccps.Jobs.Drain's doc comment
// requires — otherwise a top-level `promise.then(...)` or a fire-and-
// forget async call's continuation would never run.
func (e *Evaluator) EvalProgram(prog *jsast.Program) (values.Value, error) {
	e.Ctx.Scope = e.Realm.Global
	if err := e.hoistBody(e.Ctx.Scope, prog.Body); err != nil {
		return nil, err
	}
	for _, stmt := range prog.Body {
		if e.Ctx.Cancelled() {
			return nil, errorsx.New(errorsx.CategoryInternal, "evaluation cancelled")
		}
		flow, err := e.execStmt(stmt)
		e.Realm.Jobs.Drain()
		if err != nil {
			if ee, ok := wrapEnvError(err).(*errorsx.EvalError); ok {
				return nil, errorsx.New(errorsx.CategoryInternal, "uncaught %s", ee.Error())
			}
			return nil, err
		}
		if flow.Signal == evalctx.SignalThrow {
			return nil, errorsx.New(errorsx.CategoryInternal, "uncaught exception: %s", flow.Value.String())
		}
		if flow.IsAbrupt() {
			break
		}
	}
	e.Realm.Jobs.Drain()
	return values.Undefined, nil
}

// execStatements runs a statement list in order, stopping at the first
// abrupt completion (spec.md §4.2 "a statement list's completion is the
// first non-normal completion it produces, or Normal if none").
func (e *Evaluator) execStatements(stmts []jsast.Statement) (evalctx.Flow, error) {
	for _, stmt := range stmts {
		if e.Ctx.Cancelled() {
			return evalctx.Normal(), errorsx.New(errorsx.CategoryInternal, "evaluation cancelled")
		}
		flow, err := e.execStmt(stmt)
		if err != nil {
			return evalctx.Flow{}, err
		}
		if flow.IsAbrupt() {
			return flow, nil
		}
	}
	return evalctx.Normal(), nil
}

func (e *Evaluator) execStmt(stmt jsast.Statement) (evalctx.Flow, error) {
	switch s := stmt.(type) {
	case *jsast.EmptyStatement:
		return evalctx.Normal(), nil

	case *jsast.ExpressionStatement:
		_, err := e.evalExpr(s.Expr)
		return evalctx.Normal(), err

	case *jsast.BlockStatement:
		return e.execBlock(s.Body)

	case *jsast.VariableDeclaration:
		return e.execVariableDeclaration(s)

	case *jsast.FunctionDeclaration:
		return evalctx.Normal(), nil // already installed during hoisting

	case *jsast.ClassDeclaration:
		return e.execClassDeclaration(s)

	case *jsast.IfStatement:
		test, err := e.evalExpr(s.Test)
		if err != nil {
			return evalctx.Flow{}, err
		}
		if values.ToBoolean(test) {
			return e.execStmt(s.Consequent)
		}
		if s.Alternate != nil {
			return e.execStmt(s.Alternate)
		}
		return evalctx.Normal(), nil

	case *jsast.WhileStatement, *jsast.DoWhileStatement, *jsast.ForStatement:
		return e.execLoop(loopplan.From(stmt), "")

	case *jsast.ForInStatement:
		return e.execForIn(s, "")

	case *jsast.ForOfStatement:
		return e.execForOf(s, "")

	case *jsast.SwitchStatement:
		return e.execSwitch(s)

	case *jsast.BreakStatement:
		label := ""
		if s.HasLabel {
			label = e.Realm.Names.Name(s.Label)
		}
		return evalctx.Break(label, s.HasLabel), nil

	case *jsast.ContinueStatement:
		label := ""
		if s.HasLabel {
			label = e.Realm.Names.Name(s.Label)
		}
		return evalctx.Continue(label, s.HasLabel), nil

	case *jsast.ReturnStatement:
		v := values.Value(values.Undefined)
		if s.Argument != nil {
			var err error
			v, err = e.evalExpr(s.Argument)
			if err != nil {
				return evalctx.Flow{}, err
			}
		}
		return evalctx.Return(v), nil

	case *jsast.ThrowStatement:
		v, err := e.evalExpr(s.Argument)
		if err != nil {
			return evalctx.Flow{}, err
		}
		return evalctx.Throw(v), nil

	case *jsast.TryStatement:
		return e.execTry(s)

	case *jsast.LabeledStatement:
		return e.execLabeled(s)

	default:
		return evalctx.Flow{}, errorsx.UnknownNode(fmt.Sprintf("%T", stmt))
	}
}

func (e *Evaluator) execBlock(body []jsast.Statement) (evalctx.Flow, error) {
	saved := e.Ctx.Scope
	e.Ctx.Scope = environment.NewEnclosedFrame(environment.FrameBlock, saved)
	defer func() { e.Ctx.Scope = saved }()

	hoister := &environment.Hoister{Names: e.Realm.Names}
	if err := hoister.HoistBody(e.Ctx.Scope, body, e.Ctx.Strict); err != nil {
		return evalctx.Flow{}, err
	}
	for _, stmt := range body {
		if fd, ok := stmt.(*jsast.FunctionDeclaration); ok && fd.Function.ID != nil {
			sym := fd.Function.ID.Name
			fn := e.makeFunction(fd.Function, e.Ctx.Scope, e.Realm.Names.Name(sym))
			e.Ctx.Scope.Initialize(sym, fn)
			e.syncAnnexBBlockFunction(sym, fn)
		}
	}
	return e.execStatements(body)
}

func (e *Evaluator) execVariableDeclaration(s *jsast.VariableDeclaration) (evalctx.Flow, error) {
	for _, decl := range s.Declarators {
		v := values.Value(values.Undefined)
		if decl.Init != nil {
			var err error
			v, err = e.evalExpr(decl.Init)
			if err != nil {
				return evalctx.Flow{}, err
			}
		} else if s.Kind == jsast.VarVar {
			continue // `var x;` with no initializer leaves the hoisted value alone
		}
		if id, ok := decl.ID.(*jsast.Identifier); ok {
			if s.Kind == jsast.VarVar {
				if err := e.Ctx.Scope.Assign(id.Name, v, true, e.Realm.Names); err != nil {
					return evalctx.Flow{}, err
				}
			} else {
				e.Ctx.Scope.Initialize(id.Name, v)
			}
			continue
		}
		if s.Kind == jsast.VarVar {
			if err := e.assignPattern(decl.ID, v); err != nil {
				return evalctx.Flow{}, err
			}
		} else {
			if err := e.bindDestructuringLexical(decl.ID, v); err != nil {
				return evalctx.Flow{}, err
			}
		}
	}
	return evalctx.Normal(), nil
}

// bindDestructuringLexical initializes already-hoisted (TDZ) let/const
// bindings produced by a destructuring declarator, since Hoister's
// pass-3 only pre-declared the flat identifier set — the values
// themselves are filled in here once the initializer has been
// evaluated.
func (e *Evaluator) bindDestructuringLexical(pat jsast.Pattern, v values.Value) error {
	switch p := pat.(type) {
	case *jsast.Identifier:
		e.Ctx.Scope.Initialize(p.Name, v)
		return nil
	case *jsast.AssignmentPattern:
		if values.IsUndefined(v) {
			def, err := e.evalExpr(p.Default)
			if err != nil {
				return err
			}
			v = def
		}
		return e.bindDestructuringLexical(p.Target, v)
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
		for _, el := range p.Elements {
			if rest, ok := el.(*jsast.RestElement); ok {
				var collected []values.Value
				for {
					step, err := e.iterNext(src, nextMethod)
					if err != nil {
						return err
					}
					if step.done {
						break
					}
					collected = append(collected, step.value)
				}
				return e.bindDestructuringLexical(rest.Argument, values.NewArray(e.Realm.ArrayProto, collected))
			}
			step, err := e.iterNext(src, nextMethod)
			if err != nil {
				return err
			}
			if el == nil {
				continue
			}
			val := values.Value(values.Undefined)
			if !step.done {
				val = step.value
			}
			if err := e.bindDestructuringLexical(el, val); err != nil {
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
			if err := e.bindDestructuringLexical(prop.Value, val); err != nil {
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
					val, _ := obj.Get(k, obj, e.invoke)
					restObj.Set(k, val)
				}
			}
			if err := e.bindDestructuringLexical(p.Rest, restObj); err != nil {
				return err
			}
		}
		return nil
	default:
		return errorsx.New(errorsx.CategoryInternal, "unsupported binding pattern")
	}
}

func (e *Evaluator) execClassDeclaration(s *jsast.ClassDeclaration) (evalctx.Flow, error) {
	info, ctor, err := e.buildClass(s.Class)
	if err != nil {
		return evalctx.Flow{}, err
	}
	if s.Class.ID != nil {
		e.Ctx.Scope.Initialize(s.Class.ID.Name, ctor)
	}
	_ = info
	return evalctx.Normal(), nil
}

// wrapEnvError converts the plain Go error types internal/environment
// raises for TDZ access, unresolved bindings, const reassignment, and
// lexical redeclaration into *errorsx.EvalError, so execTry's fold
// below treats them exactly like any other evaluator-raised condition
// (spec.md §4.1 "TDZ": "accessing a lexical binding before its
// declarator runs throws a ReferenceError", catchable like any other).
func wrapEnvError(err error) error {
	switch err.(type) {
	case *environment.TDZError, *environment.ReferenceError:
		return errorsx.Wrap(errorsx.CategoryReference, err, "%s", err.Error())
	case *environment.ConstAssignError:
		return errorsx.Wrap(errorsx.CategoryType, err, "%s", err.Error())
	case *environment.RedeclarationError:
		return errorsx.Wrap(errorsx.CategorySyntax, err, "%s", err.Error())
	default:
		return err
	}
}

func (e *Evaluator) execTry(s *jsast.TryStatement) (evalctx.Flow, error) {
	flow, err := e.execBlock(s.Block.Body)
	err = wrapEnvError(err)

	// A built-in-raised condition (a TypeError from an invalid operation,
	// a ReferenceError from an unresolved binding, …) surfaces as a Go
	// error rather than a flow.Throw completion (see evalExpr/evalctx).
	// Here, at the one place that actually distinguishes "caught" from
	// "not caught", fold any catchable EvalError into an ordinary throw
	// completion so `try { JSON.parse(bad) } catch (e) {}`-shaped code
	// behaves the same whether the exception came from `throw` or from
	// the evaluator itself (spec.md §4.3 "a TryStatement's catch clause
	// intercepts both `throw` and any evaluator-raised error category
	// other than InternalError").
	if ee, ok := err.(*errorsx.EvalError); ok && ee.Category != errorsx.CategoryInternal {
		flow, err = evalctx.Throw(e.errorValue(ee)), nil
	}

	// A value thrown across a generator/async boundary (generator.ThrowValue
	// from an uncaught `gen.throw()`/generator-body throw, asynccps.ThrownValue
	// from a rejected awaited promise) already carries the real JS value —
	// unwrap it straight into a throw completion rather than re-wrapping it
	// as an internal error, so `try { gen.next() } catch (e) {}` observes the
	// same value a synchronous `throw` would have produced.
	if tv, ok := err.(interface{ ThrownValue() values.Value }); ok {
		flow, err = evalctx.Throw(tv.ThrownValue()), nil
	} else if gv, ok := err.(*generator.ThrowValue); ok {
		flow, err = evalctx.Throw(gv.Value), nil
	}

	if err == nil && s.Handler != nil && flow.Signal == evalctx.SignalThrow {
		saved := e.Ctx.Scope
		e.Ctx.Scope = environment.NewEnclosedFrame(environment.FrameCatch, saved)
		if s.Handler.Param != nil {
			if bindErr := e.bindPattern(e.Ctx.Scope, s.Handler.Param, flow.Value, true); bindErr != nil {
				e.Ctx.Scope = saved
				return evalctx.Flow{}, bindErr
			}
		}
		flow, err = e.execBlock(s.Handler.Body.Body)
		e.Ctx.Scope = saved
	}

	if s.Finalizer != nil {
		finFlow, finErr := e.execBlock(s.Finalizer.Body)
		if finErr != nil {
			return evalctx.Flow{}, finErr
		}
		// A finally block's own abrupt completion overrides whatever the
		// try/catch was going to produce (spec.md §4.3 "TryStatement").
		if finFlow.IsAbrupt() {
			return finFlow, nil
		}
	}
	return flow, err
}

// errorValue turns a Go-level EvalError into the plain object a
// `catch (e)` clause observes: `.name` is the category's native
// constructor name, `.message` the detail text (spec.md §7).
func (e *Evaluator) errorValue(ee *errorsx.EvalError) values.Value {
	obj := values.NewObject(e.Realm.ErrorProto)
	obj.Class = "Error"
	obj.Set(values.StringKey("name"), values.NewString(string(ee.Category)))
	obj.Set(values.StringKey("message"), values.NewString(ee.Message))
	obj.Set(values.StringKey("stack"), values.NewString(ee.Error()))
	return obj
}

func (e *Evaluator) execLabeled(s *jsast.LabeledStatement) (evalctx.Flow, error) {
	label := e.Realm.Names.Name(s.Label)
	switch body := s.Body.(type) {
	case *jsast.WhileStatement, *jsast.DoWhileStatement, *jsast.ForStatement:
		return e.execLoop(loopplan.From(body), label)
	case *jsast.ForInStatement:
		return e.execForIn(body, label)
	case *jsast.ForOfStatement:
		return e.execForOf(body, label)
	default:
		flow, err := e.execStmt(s.Body)
		if err != nil {
			return evalctx.Flow{}, err
		}
		if flow.Signal == evalctx.SignalBreak && flow.MatchesLabel(label) && flow.HasLabel {
			return evalctx.Normal(), nil
		}
		return flow, nil
	}
}

func (e *Evaluator) execSwitch(s *jsast.SwitchStatement) (evalctx.Flow, error) {
	disc, err := e.evalExpr(s.Discriminant)
	if err != nil {
		return evalctx.Flow{}, err
	}

	saved := e.Ctx.Scope
	e.Ctx.Scope = environment.NewEnclosedFrame(environment.FrameBlock, saved)
	defer func() { e.Ctx.Scope = saved }()

	matchIdx := -1
	defaultIdx := -1
	for i, c := range s.Cases {
		if c.Test == nil {
			defaultIdx = i
			continue
		}
		tv, err := e.evalExpr(c.Test)
		if err != nil {
			return evalctx.Flow{}, err
		}
		if values.StrictEquals(disc, tv) {
			matchIdx = i
			break
		}
	}
	if matchIdx == -1 {
		matchIdx = defaultIdx
	}
	if matchIdx == -1 {
		return evalctx.Normal(), nil
	}
	for i := matchIdx; i < len(s.Cases); i++ {
		flow, err := e.execStatements(s.Cases[i].Consequents)
		if err != nil {
			return evalctx.Flow{}, err
		}
		if flow.Signal == evalctx.SignalBreak && !flow.HasLabel {
			return evalctx.Normal(), nil
		}
		if flow.IsAbrupt() {
			return flow, nil
		}
	}
	return evalctx.Normal(), nil
}

func (e *Evaluator) execLoop(plan loopplan.Plan, label string) (evalctx.Flow, error) {
	saved := e.Ctx.Scope
	e.Ctx.Scope = environment.NewEnclosedFrame(environment.FrameBlock, saved)
	defer func() { e.Ctx.Scope = saved }()

	if plan.Init != nil {
		if decl, ok := plan.Init.(*jsast.VariableDeclaration); ok && decl.Kind != jsast.VarVar {
			hoister := &environment.Hoister{Names: e.Realm.Names}
			if err := hoister.HoistBody(e.Ctx.Scope, []jsast.Statement{decl}, e.Ctx.Strict); err != nil {
				return evalctx.Flow{}, err
			}
		}
		if _, err := e.execStmt(plan.Init); err != nil {
			return evalctx.Flow{}, err
		}
	}

	first := true
	for {
		if !first || !plan.RunBodyFirst {
			if plan.Test != nil {
				tv, err := e.evalExpr(plan.Test)
				if err != nil {
					return evalctx.Flow{}, err
				}
				if !values.ToBoolean(tv) {
					return evalctx.Normal(), nil
				}
			}
		}
		first = false

		flow, err := e.execStmt(plan.Body)
		if err != nil {
			return evalctx.Flow{}, err
		}
		if flow.Signal == evalctx.SignalBreak {
			if flow.MatchesLabel(label) {
				return evalctx.Normal(), nil
			}
			return flow, nil
		}
		if flow.Signal == evalctx.SignalContinue {
			if !flow.MatchesLabel(label) {
				return flow, nil
			}
			// fall through to run the update clause and loop again
		} else if flow.IsAbrupt() {
			return flow, nil
		}

		if plan.RunBodyFirst && plan.Test != nil {
			tv, err := e.evalExpr(plan.Test)
			if err != nil {
				return evalctx.Flow{}, err
			}
			if !values.ToBoolean(tv) {
				return evalctx.Normal(), nil
			}
		}

		if plan.PerIterationCopy {
			e.Ctx.Scope = e.copyIterationScope(e.Ctx.Scope)
		}

		if plan.Update != nil {
			if _, err := e.evalExpr(plan.Update); err != nil {
				return evalctx.Flow{}, err
			}
		}
	}
}

// copyIterationScope clones the loop-header bindings into a fresh
// frame chained to the same outer scope, so closures created during
// one iteration's body keep seeing that iteration's values even as the
// next iteration starts mutating its own copy (spec.md §4.9
// "per-iteration binding").
func (e *Evaluator) copyIterationScope(prev *environment.Frame) *environment.Frame {
	fresh := environment.NewEnclosedFrame(environment.FrameBlock, prev.Outer)
	prev.CopyBindingsInto(fresh)
	return fresh
}

func (e *Evaluator) execForIn(s *jsast.ForInStatement, label string) (evalctx.Flow, error) {
	rightVal, err := e.evalExpr(s.Right)
	if err != nil {
		return evalctx.Flow{}, err
	}
	if values.IsNullish(rightVal) {
		return evalctx.Normal(), nil
	}
	obj, ok := rightVal.(*values.Object)
	if !ok {
		if arr, ok2 := rightVal.(*values.Array); ok2 {
			obj = arr.Object
		} else {
			return evalctx.Normal(), nil
		}
	}
	seen := map[values.PropertyKey]bool{}
	var keys []values.PropertyKey
	for cur := obj; cur != nil; cur = cur.Proto {
		for _, k := range cur.OwnPropertyKeys() {
			if k.IsSymbol() || seen[k] {
				continue
			}
			seen[k] = true
			if d, ok := cur.GetOwnProperty(k); ok && d.Enumerable {
				keys = append(keys, k)
			}
		}
	}

	for _, k := range keys {
		saved := e.Ctx.Scope
		e.Ctx.Scope = environment.NewEnclosedFrame(environment.FrameBlock, saved)
		if err := e.bindForHead(s.Left, values.NewString(k.String())); err != nil {
			e.Ctx.Scope = saved
			return evalctx.Flow{}, err
		}
		flow, err := e.execStmt(s.Body)
		e.Ctx.Scope = saved
		if err != nil {
			return evalctx.Flow{}, err
		}
		if flow.Signal == evalctx.SignalBreak {
			if flow.MatchesLabel(label) {
				return evalctx.Normal(), nil
			}
			return flow, nil
		}
		if flow.Signal == evalctx.SignalContinue {
			if !flow.MatchesLabel(label) {
				return flow, nil
			}
			continue
		}
		if flow.IsAbrupt() {
			return flow, nil
		}
	}
	return evalctx.Normal(), nil
}

func (e *Evaluator) execForOf(s *jsast.ForOfStatement, label string) (evalctx.Flow, error) {
	rightVal, err := e.evalExpr(s.Right)
	if err != nil {
		return evalctx.Flow{}, err
	}
	iterMethod, err := e.getIterMethod(rightVal)
	if err != nil {
		return evalctx.Flow{}, err
	}
	src, err := iterator.Open(rightVal, iterMethod, e.invoke)
	if err != nil {
		return evalctx.Flow{}, err
	}
	nextMethod, err := e.getNextMethod(src)
	if err != nil {
		return evalctx.Flow{}, err
	}

	var loopFlow evalctx.Flow
	forEachErr := src.ForEach(nextMethod, func(v values.Value) (bool, error) {
		saved := e.Ctx.Scope
		e.Ctx.Scope = environment.NewEnclosedFrame(environment.FrameBlock, saved)
		defer func() { e.Ctx.Scope = saved }()

		if err := e.bindForHead(s.Left, v); err != nil {
			return false, err
		}
		flow, err := e.execStmt(s.Body)
		if err != nil {
			return false, err
		}
		if flow.Signal == evalctx.SignalBreak {
			if flow.MatchesLabel(label) {
				return true, nil
			}
			loopFlow = flow
			return true, nil
		}
		if flow.Signal == evalctx.SignalContinue {
			if !flow.MatchesLabel(label) {
				loopFlow = flow
				return true, nil
			}
			return false, nil
		}
		if flow.IsAbrupt() {
			loopFlow = flow
			return true, nil
		}
		return false, nil
	})
	if forEachErr != nil {
		return evalctx.Flow{}, forEachErr
	}
	if loopFlow.IsAbrupt() {
		return loopFlow, nil
	}
	return evalctx.Normal(), nil
}

// bindForHead binds one for-in/for-of iteration's value into either a
// fresh declarator binding (`for (const x of ...)`) or an existing
// assignable target (`for (x of ...)`).
func (e *Evaluator) bindForHead(left jsast.Node, v values.Value) error {
	if decl, ok := left.(*jsast.VariableDeclaration); ok {
		target := decl.Declarators[0].ID
		if decl.Kind == jsast.VarVar {
			return e.assignPattern(target, v)
		}
		return e.bindPattern(e.Ctx.Scope, target, v, true)
	}
	return e.assignPattern(left, v)
}
