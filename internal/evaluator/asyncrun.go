package evaluator

import (
	"github.com/solarframe/ecmawalk/internal/asynccps"
	"github.com/solarframe/ecmawalk/internal/values"
)

// callAsFunctionKind dispatches a Function call to plain synchronous
// execution, a Promise-returning async run, a Generator object, or an
// async-Generator object, according to the function literal's
// Generator/Async flags (spec.md §4.6/§4.12). this covers every calling
// convention Function.Invoke/Construct need.
func (e *Evaluator) callAsFunctionKind(f *Function, args []values.Value, this values.Value, newTarget values.Value) (values.Value, error) {
	switch {
	case f.Literal.Generator:
		return e.runGeneratorCall(f, args, this, newTarget), nil
	case f.Literal.Async:
		return e.runAsyncCall(f, args, this, newTarget), nil
	default:
		return e.callFunction(f, args, this, newTarget, true)
	}
}

// runGeneratorCall returns a live GeneratorObject whose body runs f on
// its own goroutine, suspended at every yield/await point until the
// consumer drives it with next/throw/return (spec.md §4.6 "Generator
// value"). For an async generator (Generator && Async), both yield and
// await ride the same suspension channel, tagged by asyncAwaitSignal so
// generatorobj.go's drive loop can tell a user-visible yield from an
// internal await.
func (e *Evaluator) runGeneratorCall(f *Function, args []values.Value, this values.Value, newTarget values.Value) values.Value {
	forAsync := f.Literal.Async
	return newGeneratorObject(e, forAsync, func(yield func(values.Value) (values.Value, error)) (values.Value, error) {
		e.yieldStack = append(e.yieldStack, yield)
		if forAsync {
			await := func(v values.Value) (values.Value, error) { return yield(asyncAwaitSignal{value: v}) }
			e.awaitStack = append(e.awaitStack, await)
		}
		defer func() {
			e.yieldStack = e.yieldStack[:len(e.yieldStack)-1]
			if forAsync {
				e.awaitStack = e.awaitStack[:len(e.awaitStack)-1]
			}
		}()
		return e.callFunction(f, args, this, newTarget, true)
	})
}

// runAsyncCall returns the Promise spec.md §4.6 says calling a plain
// `async function` produces immediately, executing the body
// synchronously up to its first await via internal/asynccps.
func (e *Evaluator) runAsyncCall(f *Function, args []values.Value, this values.Value, newTarget values.Value) values.Value {
	return asynccps.Run(e.Realm.Jobs, e.Realm.PromiseProto, func(await func(values.Value) (values.Value, error)) (values.Value, error) {
		e.awaitStack = append(e.awaitStack, await)
		defer func() { e.awaitStack = e.awaitStack[:len(e.awaitStack)-1] }()
		return e.callFunction(f, args, this, newTarget, true)
	})
}

// currentYield/currentAwait resolve a yield/await expression's
// suspension callback to the innermost active generator/async-function
// call, erroring if none is active (a malformed `yield`/`await` outside
// any such body is rejected earlier, at parse/hoist time, in a
// conforming pipeline — these are the evaluator's last-resort guard).
func (e *Evaluator) currentYield() (func(values.Value) (values.Value, error), bool) {
	if len(e.yieldStack) == 0 {
		return nil, false
	}
	return e.yieldStack[len(e.yieldStack)-1], true
}

func (e *Evaluator) currentAwait() (func(values.Value) (values.Value, error), bool) {
	if len(e.awaitStack) == 0 {
		return nil, false
	}
	return e.awaitStack[len(e.awaitStack)-1], true
}
