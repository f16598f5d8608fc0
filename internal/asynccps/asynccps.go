// Package asynccps lowers an `async function`'s body into
// continuation-passing style on top of internal/generator's suspension
// primitive, driving it through a microtask job queue instead of
// blocking synchronous .next() calls the way a plain generator is
// consumed (spec.md §4.6 path 1: "async functions desugar to a state
// machine driven by promise resolution").
//
// Grounded, in *style* only, on esbuild's AST-to-AST lowering-pass
// approach (internal/js_parser's js_parser_lower_* family rewrites one
// surface construct in terms of a lower-level one) — no esbuild code or
// dependency is used; the only thing borrowed is the idea of lowering
// `await` to an explicit suspend/resume rather than adding a second
// evaluator code path for async bodies.
package asynccps

import (
	"github.com/solarframe/ecmawalk/internal/errorsx"
	"github.com/solarframe/ecmawalk/internal/generator"
	"github.com/solarframe/ecmawalk/internal/values"
)

// Jobs is the microtask queue async/await reactions run on (spec.md §5
// "a single FIFO job queue drains between statement-level yield
// points, approximating the microtask ordering guarantees user code
// depends on for `await` sequencing" — see DESIGN.md for why a full
// macrotask/microtask split is out of scope).
type Jobs struct {
	queue []func()
}

// Schedule enqueues fn to run the next time Drain is called — the
// function value Promise.Resolve/.Then expect for their `schedule`
// parameter.
func (j *Jobs) Schedule(fn func()) {
	j.queue = append(j.queue, fn)
}

// Drain runs every currently queued job, including jobs newly enqueued
// by earlier ones in the same drain (so a chain of `.then()`
// continuations all settle before Drain returns) — the evaluator calls
// this once per top-level statement and once after the program
// finishes, so a script with unresolved promises at exit still flushes
// every settled reaction before observing the final state.
func (j *Jobs) Drain() {
	for len(j.queue) > 0 {
		next := j.queue[0]
		j.queue = j.queue[1:]
		next()
	}
}

// Run drives an async function body to completion, returning the
// Promise that represents its eventual result (spec.md §4.6: "calling
// an async function immediately returns a pending Promise"). body is
// the function's statement-evaluation closure, written exactly like a
// generator body except each `await expr` calls the yield callback with
// the awaited value instead of a user-visible yielded value.
func Run(jobs *Jobs, promiseProto *values.Object, body func(await func(v values.Value) (values.Value, error)) (values.Value, error)) *values.Promise {
	result := values.NewPromise(promiseProto)

	m := generator.New(false, func(yield func(values.Value) (values.Value, error)) (values.Value, error) {
		return body(func(v values.Value) (values.Value, error) {
			r, err := yield(v)
			if gv, ok := err.(*generator.ThrowValue); ok {
				return nil, &ThrownValue{Value: gv.Value}
			}
			return r, err
		})
	})

	var step func(in generator.StepResult)
	step = func(in generator.StepResult) {
		if in.Done {
			if in.Err != nil {
				result.Reject(errToValue(in.Err), jobs.Schedule)
				return
			}
			result.Resolve(in.Value, jobs.Schedule)
			return
		}
		awaited := in.Value
		onSettle := func(resumeVal values.Value, err error) {
			var next generator.StepResult
			if err != nil {
				next = m.Throw(errToValue(err))
			} else {
				next = m.Next(resumeVal)
			}
			step(next)
		}
		if p, ok := awaited.(*values.Promise); ok {
			p.Then(promiseProto,
				func(v values.Value) (values.Value, error) { onSettle(v, nil); return values.Undefined, nil },
				func(v values.Value) (values.Value, error) { onSettle(nil, &ThrownValue{Value: v}); return values.Undefined, nil },
				jobs.Schedule,
			)
			return
		}
		// Awaiting a non-thenable resolves on the next microtask tick
		// with that value itself (spec.md §4.6 "Await" on a non-Promise
		// operand).
		jobs.Schedule(func() { onSettle(awaited, nil) })
	}

	// Kick off the body; it runs synchronously up to its first await
	// (or to completion, if it never awaits), per spec.md §4.6 "an
	// async function body runs synchronously until its first await".
	step(m.Next(values.Undefined))

	return result
}

// ThrownValue adapts a JS value being thrown/rejected-with into a Go
// error so it can travel through the ordinary (value, error) returns
// the evaluator and generator.Machine already use.
type ThrownValue struct{ Value values.Value }

func (t *ThrownValue) Error() string { return "async rejection" }

// ThrownValue implements the duck-typed ThrownValue() accessor
// values.Promise.Then checks for when adapting a Go error back into a
// rejection reason.
func (t *ThrownValue) ThrownValue() values.Value { return t.Value }

func errToValue(err error) values.Value {
	if tv, ok := err.(*ThrownValue); ok {
		return tv.Value
	}
	if gv, ok := err.(*generator.ThrowValue); ok {
		return gv.Value
	}
	if ee, ok := err.(*errorsx.EvalError); ok {
		return values.NewString(ee.Error())
	}
	return values.NewString(err.Error())
}
