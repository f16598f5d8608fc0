package evaluator

import (
	"github.com/solarframe/ecmawalk/internal/asynccps"
	"github.com/solarframe/ecmawalk/internal/errorsx"
	"github.com/solarframe/ecmawalk/internal/generator"
	"github.com/solarframe/ecmawalk/internal/values"
)

// asyncAwaitSignal is the value an `await` expression inside a
// generator body yields across the suspension channel, distinguishing
// it from a genuine user-visible `yield` at the consumer-driving layer
// below (spec.md §4.12 "an async generator's await suspends to the
// promise job queue; its yield suspends to the `.next()` consumer —
// both ride generator.Machine's single channel, tagged so the driver
// can tell them apart").
type asyncAwaitSignal struct{ value values.Value }

func (asyncAwaitSignal) Type() string   { return "internal" }
func (asyncAwaitSignal) String() string { return "" }

// GeneratorObject is the runtime value `function*`/`async function*`
// calls return: a live handle onto a suspended generator.Machine, with
// next/throw/return exposed as ordinary callable own-properties so
// `gen.next()` dispatches through the evaluator's normal member-call
// path like any other method (spec.md §4.6 "Generator value").
type GeneratorObject struct {
	*values.Object
	machine  *generator.Machine
	eval     *Evaluator
	forAsync bool
}

func newGeneratorObject(e *Evaluator, forAsync bool, body func(yield func(values.Value) (values.Value, error)) (values.Value, error)) *GeneratorObject {
	obj := values.NewObject(e.Realm.ObjectProto)
	obj.Class = "Generator"
	g := &GeneratorObject{Object: obj, machine: generator.New(forAsync, body), eval: e, forAsync: forAsync}
	install := func(name string, fn func(values.Value) (values.Value, error)) {
		obj.Set(values.StringKey(name), &values.HostFunction{Name: name, Fn: func(this values.Value, args []values.Value) (values.Value, error) {
			arg := values.Value(values.Undefined)
			if len(args) > 0 {
				arg = args[0]
			}
			return fn(arg)
		}})
	}
	install("next", g.Next)
	install("throw", g.Throw)
	install("return", g.Return)
	selfIter := &values.HostFunction{Name: "[Symbol.iterator]", Fn: func(this values.Value, args []values.Value) (values.Value, error) {
		return obj, nil
	}}
	obj.Set(e.Realm.IterKey(), selfIter)
	obj.Set(e.Realm.AsyncIterKey(), selfIter)
	return g
}

func (g *GeneratorObject) resultObject(v values.Value, done bool) *values.Object {
	obj := values.NewObject(g.eval.Realm.ObjectProto)
	if v == nil {
		v = values.Undefined
	}
	obj.Set(values.StringKey("value"), v)
	obj.Set(values.StringKey("done"), values.Boolean(done))
	return obj
}

// Next/Throw/Return adapt a generator.StepResult into the {value, done}
// object shape (spec.md §4.6 "IteratorResult"), synchronously for a
// plain generator or via a settled Promise for an async one.
func (g *GeneratorObject) Next(v values.Value) (values.Value, error) { return g.resume(g.machine.Next(v)) }
func (g *GeneratorObject) Throw(v values.Value) (values.Value, error) {
	return g.resume(g.machine.Throw(v))
}
func (g *GeneratorObject) Return(v values.Value) (values.Value, error) {
	return g.resume(g.machine.Return(v))
}

func (g *GeneratorObject) resume(step generator.StepResult) (values.Value, error) {
	if !g.forAsync {
		if step.Err != nil {
			return nil, unwrapGeneratorErr(step.Err)
		}
		return g.resultObject(step.Value, step.Done), nil
	}
	p := values.NewPromise(g.eval.Realm.PromiseProto)
	g.drive(step, p)
	return p, nil
}

// drive pumps a persistent async-generator Machine through any number
// of internal `await` suspensions (each one resolved via the realm's
// job queue, completely transparent to the external consumer) until it
// reaches either a genuine `yield` or completion, at which point the
// outer per-call Promise settles (spec.md §4.12).
func (g *GeneratorObject) drive(in generator.StepResult, outer *values.Promise) {
	jobs := g.eval.Realm.Jobs
	if in.Err != nil {
		outer.Reject(unwrapToValue(in.Err), jobs.Schedule)
		return
	}
	if in.Done {
		outer.Resolve(g.resultObject(in.Value, true), jobs.Schedule)
		return
	}
	if sig, ok := in.Value.(asyncAwaitSignal); ok {
		onSettle := func(v values.Value, err error) {
			var next generator.StepResult
			if err != nil {
				next = g.machine.Throw(unwrapToValue(err))
			} else {
				next = g.machine.Next(v)
			}
			g.drive(next, outer)
		}
		if p, ok := sig.value.(*values.Promise); ok {
			p.Then(g.eval.Realm.PromiseProto,
				func(v values.Value) (values.Value, error) { onSettle(v, nil); return values.Undefined, nil },
				func(v values.Value) (values.Value, error) { onSettle(nil, &asynccps.ThrownValue{Value: v}); return values.Undefined, nil },
				jobs.Schedule)
			return
		}
		jobs.Schedule(func() { onSettle(sig.value, nil) })
		return
	}
	outer.Resolve(g.resultObject(in.Value, false), jobs.Schedule)
}

// unwrapGeneratorErr passes a generator-body throw straight through: the
// *generator.ThrowValue already carries the real JS value, and execTry
// (stmt.go) unwraps it into an ordinary throw completion at the first
// enclosing try/catch, exactly like a throw raised synchronously.
func unwrapGeneratorErr(err error) error {
	return err
}

func unwrapToValue(err error) values.Value {
	if tv, ok := err.(*asynccps.ThrownValue); ok {
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
