// Package generator implements the generator/async-generator
// suspension model of spec.md §4.6/§4.12: a generator body runs on its
// own goroutine, handing control back and forth with its caller through
// two unbuffered channels — one carrying the value resumed with, one
// carrying each yielded step.
//
// This is the one core control-flow mechanism in the evaluator with no
// teacher precedent (DWScript has no generators); the goroutine+channel
// handshake is the idiomatic Go realization of "suspend in the middle
// of a recursive tree walk" that spec.md §4.6's design note calls for,
// chosen over hand-rolling an explicit state machine because Go can
// express arbitrary-point coroutine suspension natively. See DESIGN.md
// for why this diverges from the teacher.
package generator

import (
	"github.com/solarframe/ecmawalk/internal/values"
)

// resumeKind tags why the generator body's current `yield` expression
// is resuming — a plain `.next(v)`, a `.throw(e)` injecting an
// exception at the suspension point, or a `.return(v)` forcing early
// completion (spec.md §4.6 "generator resumption kinds").
type resumeKind int

const (
	resumeNext resumeKind = iota
	resumeThrow
	resumeReturn
)

type resumeMsg struct {
	kind resumeKind
	val  values.Value
}

// StepResult is what the consumer of a generator (the evaluator's
// `.next`/`.throw`/`.return` method implementations, or
// internal/iterator for `yield*` delegation) receives from one step.
type StepResult struct {
	Value values.Value
	Done  bool
	Err   error // a thrown-and-uncaught exception, or a Go-level evaluator error
}

// Machine drives one generator/async-generator instance. forAsync
// records the flag New was given; Machine itself never reads it, and
// Yield behaves the same either way — any Promise unwrapping for
// `await` is left to the caller driving the machine.
type Machine struct {
	forAsync bool

	toBody   chan resumeMsg
	fromBody chan StepResult

	started   bool
	completed bool
}

// New creates a Machine and starts body running on its own goroutine,
// suspended immediately before its first statement until the first
// Next/Throw/Return call sends a resume message. body receives a
// Yield func it must call at every `yield`/`await` point; it returns
// the function's final return value, or an error, which is reported as
// StepResult.Err. A panic in body is not recovered.
func New(forAsync bool, body func(yield func(v values.Value) (values.Value, error)) (values.Value, error)) *Machine {
	m := &Machine{
		forAsync: forAsync,
		toBody:   make(chan resumeMsg),
		fromBody: make(chan StepResult),
	}
	go m.run(body)
	return m
}

func (m *Machine) run(body func(yield func(v values.Value) (values.Value, error)) (values.Value, error)) {
	// Wait for the first resume before running any body code at all —
	// a generator object does nothing until its first .next() call
	// (spec.md §4.6 "a generator's body does not begin executing until
	// the first .next() call").
	first := <-m.toBody
	if first.kind == resumeReturn {
		m.fromBody <- StepResult{Value: first.val, Done: true}
		return
	}
	if first.kind == resumeThrow {
		m.fromBody <- StepResult{Done: true, Err: asThrow(first.val)}
		return
	}

	yield := func(v values.Value) (values.Value, error) {
		m.fromBody <- StepResult{Value: v, Done: false}
		msg := <-m.toBody
		switch msg.kind {
		case resumeThrow:
			return nil, asThrow(msg.val)
		case resumeReturn:
			return nil, &earlyReturn{val: msg.val}
		default:
			return msg.val, nil
		}
	}

	retVal, err := body(yield)
	if er, ok := err.(*earlyReturn); ok {
		m.fromBody <- StepResult{Value: er.val, Done: true}
		return
	}
	if err != nil {
		m.fromBody <- StepResult{Done: true, Err: err}
		return
	}
	m.fromBody <- StepResult{Value: retVal, Done: true}
}

// earlyReturn is the sentinel body() sees as its yield-point error when
// a `.return(v)` call forces completion; the evaluator's generator-body
// executor must recognize it and run pending `finally` blocks before
// propagating (spec.md §4.6 "a forced return still runs finally blocks
// on its way out, like a `return` statement reaching that point").
type earlyReturn struct{ val values.Value }

func (e *earlyReturn) Error() string { return "generator forced return" }

// ThrowValue wraps a JS value thrown across a yield point so the body's
// own try/catch machinery can distinguish it from a Go-level evaluator
// error (spec.md §4.6 "`.throw(e)` resumes as if `yield` itself threw
// e").
type ThrowValue struct{ Value values.Value }

func (t *ThrowValue) Error() string { return "generator .throw()" }

func asThrow(v values.Value) error { return &ThrowValue{Value: v} }

// Next resumes the generator with v as the yield expression's result
// (or, before the first call, as the function's argument list — always
// ignored there, per spec.md §4.6).
func (m *Machine) Next(v values.Value) StepResult {
	return m.send(resumeMsg{kind: resumeNext, val: v})
}

// Throw resumes the generator as if its suspended `yield` expression
// itself threw v.
func (m *Machine) Throw(v values.Value) StepResult {
	return m.send(resumeMsg{kind: resumeThrow, val: v})
}

// Return forces the generator to complete as if a `return v;` had been
// reached at the suspension point (running any enclosing finally
// blocks first).
func (m *Machine) Return(v values.Value) StepResult {
	return m.send(resumeMsg{kind: resumeReturn, val: v})
}

func (m *Machine) send(msg resumeMsg) StepResult {
	if m.completed {
		return StepResult{Value: values.Undefined, Done: true}
	}
	m.started = true
	m.toBody <- msg
	result := <-m.fromBody
	if result.Done {
		m.completed = true
	}
	return result
}

// Started reports whether the generator's body has begun executing.
func (m *Machine) Started() bool { return m.started }

// Completed reports whether the generator has run to completion
// (returned, thrown, or been forced to return).
func (m *Machine) Completed() bool { return m.completed }

// AbandonIfUnfinished is called when a generator object becomes
// unreachable without ever being driven to completion, so its goroutine
// doesn't leak blocked forever on toBody. Go's garbage collector cannot
// collect a goroutine parked on a channel receive, so an embedder that
// creates many short-lived abandoned generators should call this via a
// runtime.AddCleanup/finalizer hook of its own; neither this package nor
// the realm installs one.
func (m *Machine) AbandonIfUnfinished() {
	if m.completed {
		return
	}
	m.Return(values.Undefined)
}
