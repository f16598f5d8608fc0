// Package ecmawalk is the public embedding API for the evaluator core:
// an embedder builds an Engine, registers host globals on it, hands it
// an already-parsed internal/jsast.Program (its own lexer/parser/AST
// builder remains external per spec.md §1/§6), and calls Run to
// evaluate it.
//
// Grounded on internal/interp/runner.New/NewWithOptions's "wire up
// interpreter + evaluator, keep the caller's package free of evaluator
// internals" shape, adapted from DWScript's io.Writer + refCountMgr
// constructor to this module's Realm/Evaluator pair (there is no
// reference-counted GC here — internal/values is ordinary Go-GC'd).
package ecmawalk

import (
	"context"

	"github.com/solarframe/ecmawalk/internal/astio"
	"github.com/solarframe/ecmawalk/internal/environment"
	"github.com/solarframe/ecmawalk/internal/evaluator"
	"github.com/solarframe/ecmawalk/internal/fold"
	"github.com/solarframe/ecmawalk/internal/jsast"
	"github.com/solarframe/ecmawalk/internal/options"
	"github.com/solarframe/ecmawalk/internal/symbols"
	"github.com/solarframe/ecmawalk/internal/values"
)

// Engine owns one Realm (shared prototypes, interned names, microtask
// queue) and the Evaluator bound to it. A fresh Engine corresponds to
// one ECMAScript global environment (spec.md §6 "Evaluate(programNode,
// rootEnv, context) → value").
type Engine struct {
	realm *evaluator.Realm
	eval  *evaluator.Evaluator
}

// Option configures an Engine at construction time.
type Option func(*options.Options)

// WithMaxCallDepth overrides the default call-stack depth before a
// RangeError (spec.md §4.5 "Call").
func WithMaxCallDepth(depth int) Option {
	return func(o *options.Options) { o.MaxCallDepth = depth }
}

// WithStrictByDefault toggles whether top-level program code starts in
// strict mode absent an explicit directive (spec.md §4.1 Annex-B
// gating).
func WithStrictByDefault(strict bool) Option {
	return func(o *options.Options) { o.StrictByDefault = strict }
}

// New builds an Engine with a fresh Realm, applying opts over
// options.Default().
func New(opts ...Option) *Engine {
	o := options.Default()
	for _, apply := range opts {
		apply(o)
	}
	realm := evaluator.NewRealm(o)
	return &Engine{realm: realm, eval: evaluator.New(realm, o.MaxCallDepth)}
}

// NewFromConfig builds an Engine from a YAML options document (the
// `ecmawalk run --config` flag's file format).
func NewFromConfig(yamlText []byte) (*Engine, error) {
	o, err := options.Load(yamlText)
	if err != nil {
		return nil, err
	}
	realm := evaluator.NewRealm(o)
	return &Engine{realm: realm, eval: evaluator.New(realm, o.MaxCallDepth)}, nil
}

// RegisterFunction binds a host Go function into the global object
// under name, matching spec.md §6's "a realm is handed a set of
// already-built callables to register" — the standard-library/host-API
// surface this evaluator core deliberately does not ship.
func (e *Engine) RegisterFunction(name string, fn func(this values.Value, args []values.Value) (values.Value, error)) {
	e.RegisterGlobal(name, &values.HostFunction{Name: name, Fn: fn})
}

// RegisterGlobal binds an arbitrary value (a host function, a
// preconstructed object, a constant) into the global object under name.
func (e *Engine) RegisterGlobal(name string, v values.Value) {
	sym := e.realm.Names.Intern(name)
	// A global binding is re-registerable (an embedder calling
	// RegisterGlobal twice for the same name, e.g. to override a
	// default, should win rather than erroring), so clear any existing
	// binding first.
	e.realm.Global.DeleteBinding(sym)
	_ = e.realm.Global.Define(sym, v, false, false, true, false, e.realm.Names)
}

// Names returns the Engine's interned-symbol table, needed by an
// embedder that decodes its own AST nodes referencing the same
// identifiers Run will resolve.
func (e *Engine) Names() *symbols.Interner { return e.realm.Names }

// GlobalFrame returns the Engine's global environment frame, used by
// internal/diagnostic to dump top-level bindings after a run (the
// `ecmawalk run --trace` flag).
func (e *Engine) GlobalFrame() *environment.Frame { return e.realm.Global }

// Run evaluates prog's top-level statements against the Engine's
// global environment, draining the realm's microtask queue as
// EvalProgram requires. On success it returns undefined: statement
// completion values are not tracked. The Options' StrictByDefault sets
// the starting strict mode, and EnableConstantFolding runs
// internal/fold over prog first. ctx governs cancellation (spec.md §5);
// a nil ctx runs uncancellable.
func (e *Engine) Run(ctx context.Context, prog *jsast.Program) (values.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	e.eval.Ctx.Go = ctx
	e.eval.Ctx.Strict = e.realm.Options.StrictByDefault
	if e.realm.Options.EnableConstantFolding {
		prog = fold.Program(prog)
	}
	return e.eval.EvalProgram(prog)
}

// RunJSON decodes data as an astio-wire-format AST document and runs
// it, convenience for an embedder whose builder emits JSON rather than
// constructing *jsast.Program directly.
func (e *Engine) RunJSON(ctx context.Context, data []byte) (values.Value, error) {
	prog, err := astio.DecodeProgram(data, e.realm.Names)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, prog)
}
