package values

// PromiseState is one of a Promise's three ECMA-262 states.
type PromiseState int

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

// reaction is one registered `.then(onFulfilled, onRejected)` pair,
// queued for microtask-style delivery once the promise settles.
type reaction struct {
	onFulfilled func(Value)
	onRejected  func(Value)
}

// Promise is the ECMA-262 Promise object (spec.md §4.6 async/await
// surface). Settling and reaction delivery are driven externally by
// internal/asynccps's job queue, which this type has no dependency on —
// Promise only tracks state and queues reaction callbacks, matching the
// layering the rest of internal/values already uses (Object.Get takes
// an injected invoke callback rather than importing the evaluator).
type Promise struct {
	*Object
	State     PromiseState
	Result    Value // the fulfillment value or rejection reason once settled
	reactions []reaction
}

// NewPromise creates a pending promise.
func NewPromise(proto *Object) *Promise {
	obj := NewObject(proto)
	obj.Class = "Promise"
	return &Promise{Object: obj, State: PromisePending}
}

// Resolve settles the promise as fulfilled with v, invoking (via
// schedule) every queued onFulfilled reaction. A no-op if already
// settled (spec.md "a promise settles at most once").
//
// If v is itself a Promise (a resolution with a thenable — ECMA-262's
// "Promise Resolve Functions" chain through the resolved value), this
// instead subscribes to v and adopts its eventual state, per
// ECMA-262's promise-chaining requirement.
func (p *Promise) Resolve(v Value, schedule func(func())) {
	if p.State != PromisePending {
		return
	}
	if inner, ok := v.(*Promise); ok {
		inner.subscribe(
			func(fv Value) { p.Resolve(fv, schedule) },
			func(rv Value) { p.Reject(rv, schedule) },
			schedule,
		)
		return
	}
	p.State = PromiseFulfilled
	p.Result = v
	p.flush(schedule)
}

// Reject settles the promise as rejected with reason.
func (p *Promise) Reject(reason Value, schedule func(func())) {
	if p.State != PromisePending {
		return
	}
	p.State = PromiseRejected
	p.Result = reason
	p.flush(schedule)
}

func (p *Promise) flush(schedule func(func())) {
	pending := p.reactions
	p.reactions = nil
	for _, r := range pending {
		r := r
		schedule(func() {
			if p.State == PromiseFulfilled {
				r.onFulfilled(p.Result)
			} else {
				r.onRejected(p.Result)
			}
		})
	}
}

// subscribe registers callbacks to run (via schedule, as a microtask)
// once the promise settles — immediately if it already has.
func (p *Promise) subscribe(onFulfilled, onRejected func(Value), schedule func(func())) {
	if p.State == PromisePending {
		p.reactions = append(p.reactions, reaction{onFulfilled: onFulfilled, onRejected: onRejected})
		return
	}
	r := reaction{onFulfilled: onFulfilled, onRejected: onRejected}
	schedule(func() {
		if p.State == PromiseFulfilled {
			r.onFulfilled(p.Result)
		} else {
			r.onRejected(p.Result)
		}
	})
}

// Then is the public `.then` surface used both by user code and by
// internal/asynccps's await-suspension driver: it returns a new derived
// promise whose resolution follows onFulfilled/onRejected's outcome.
// invoke is supplied by the caller to call into onFulfilled/onRejected
// if they are JS callables (Then itself only deals in Go closures; the
// evaluator's Promise.prototype.then builtin adapts JS callback values
// into these closures before calling this).
func (p *Promise) Then(proto *Object, onFulfilled, onRejected func(Value) (Value, error), schedule func(func())) *Promise {
	derived := NewPromise(proto)
	handle := func(v Value, handler func(Value) (Value, error), isRejection bool) {
		if handler == nil {
			if isRejection {
				derived.Reject(v, schedule)
			} else {
				derived.Resolve(v, schedule)
			}
			return
		}
		result, err := handler(v)
		if err != nil {
			if ev, ok := err.(interface{ ThrownValue() Value }); ok {
				derived.Reject(ev.ThrownValue(), schedule)
			} else {
				derived.Reject(NewString(err.Error()), schedule)
			}
			return
		}
		derived.Resolve(result, schedule)
	}
	p.subscribe(
		func(v Value) { handle(v, onFulfilled, false) },
		func(v Value) { handle(v, onRejected, true) },
		schedule,
	)
	return derived
}
