// Package evaluator is the statement/expression dispatch core: it walks
// a internal/jsast tree against a internal/environment scope chain,
// producing internal/values results and internal/evalctx completions.
//
// Grounded on internal/interp/evaluator/evaluator.go's per-node-kind
// dispatch shape and Config/DefaultConfig pattern (generalized here
// into internal/options), and on lvalue.go's single-evaluation
// reference-resolution idiom (a `(value, assign, error)` triple so an
// index/member expression used as an assignment target is evaluated
// exactly once even though it is both read and written — see lvalue.go
// in this package).
package evaluator

import (
	"github.com/solarframe/ecmawalk/internal/class"
	"github.com/solarframe/ecmawalk/internal/evalctx"
	"github.com/solarframe/ecmawalk/internal/options"
	"github.com/solarframe/ecmawalk/internal/realm"
	"github.com/solarframe/ecmawalk/internal/symbols"
	"github.com/solarframe/ecmawalk/internal/values"
)

// Realm is internal/realm's shared-state type, aliased here so the rest
// of this package (and its callers) can keep writing `*Realm` without
// importing internal/realm directly — the dispatch core and the realm's
// data are still two separate packages, matching spec.md §6's "Realm /
// standard library" as its own addressable unit (see internal/realm).
type Realm = realm.Realm

// NewRealm builds a realm with a fresh prototype chain and an empty
// global frame (internal/realm.New), then wires the core-language
// iteration intrinsics (Array/String `Symbol.iterator`, see
// iterinstall.go) every evaluation depends on regardless of whether an
// embedder ever registers a standard library on top. Standard-library
// population proper (Object/Array/Function *methods*) is the embedder's
// job via pkg/ecmawalk, matching spec.md §6's "the evaluator core ships
// no standard library; a realm is handed a set of already-built
// callables to register."
func NewRealm(opts *options.Options) *Realm {
	r := realm.New(opts)
	installArrayIterator(r)
	return r
}

// Evaluator runs one program/module against a Realm. It is not safe
// for concurrent use by multiple goroutines evaluating different
// programs simultaneously against the same *evalctx.EvaluationContext —
// each concurrent evaluation should build its own Evaluator sharing
// only the Realm (spec.md §5: "interned symbol tables are shared and
// safe for concurrent read; an individual evaluation's call stack and
// scope chain are not shared").
type Evaluator struct {
	Realm *Realm
	Ctx   *evalctx.EvaluationContext

	// ctorStack is the active super()-call chain for a derived class
	// under construction (spec.md §4.7); see classes.go's
	// runConstructorChain/superConstructCall.
	ctorStack []*pendingConstruction

	// yieldStack/awaitStack hold the innermost generator/async-function
	// body's suspension callback, pushed for the duration of its call and
	// consulted by expr.go's YieldExpression/AwaitExpression evaluation —
	// see generatorobj.go and asyncrun.go.
	yieldStack []func(values.Value) (values.Value, error)
	awaitStack []func(values.Value) (values.Value, error)

	// privateOwners maps each `#name` symbol to the class.Info that
	// declared it, so a `obj.#name` access site (lvalue.go, expr.go) can
	// find which class's brand/private storage to check without walking
	// the whole private-name scope stack at access time.
	privateOwners map[symbols.Symbol]*class.Info
}

// New creates an Evaluator rooted at realm's global frame.
func New(realm *Realm, maxCallDepth int) *Evaluator {
	ctx := evalctx.New(nil, realm.Names, realm.Global, maxCallDepth)
	return &Evaluator{Realm: realm, Ctx: ctx, privateOwners: make(map[symbols.Symbol]*class.Info)}
}

// invoke adapts a values.Callable invocation into the
// (callee, this, args) -> (value, error) shape internal/values and
// internal/iterator expect to be handed as a callback, routing it
// through Evaluator.Call so call-stack bookkeeping and cancellation
// checks stay centralized.
func (e *Evaluator) invoke(callee values.Value, this values.Value, args []values.Value) (values.Value, error) {
	return e.Call(callee, this, args)
}
