// Package realm holds the process-wide state shared by every
// evaluation against one ECMAScript global environment: interned
// names, well-known prototypes, well-known symbols, and the microtask
// queue async functions schedule their continuations on (spec.md §6
// "a realm is the standard-library registration surface + shared
// prototypes").
//
// Split out of internal/evaluator so the type spec.md §6 calls "Realm /
// standard library" is an addressable package an embedder (pkg/ecmawalk)
// can construct and populate without importing the evaluator's dispatch
// internals — mirrors the teacher's separation between
// internal/interp/types (the registry) and internal/interp/evaluator
// (the code that consults it).
package realm

import (
	"github.com/solarframe/ecmawalk/internal/asynccps"
	"github.com/solarframe/ecmawalk/internal/environment"
	"github.com/solarframe/ecmawalk/internal/options"
	"github.com/solarframe/ecmawalk/internal/symbols"
	"github.com/solarframe/ecmawalk/internal/values"
)

// Realm holds the process-wide state shared by every evaluation:
// interned names, well-known prototypes, and the microtask queue async
// functions schedule their continuations on.
type Realm struct {
	Names *symbols.Interner
	Jobs  *asynccps.Jobs

	ObjectProto   *values.Object
	ArrayProto    *values.Object
	FunctionProto *values.Object
	ErrorProto    *values.Object
	PromiseProto  *values.Object
	StringProto   *values.Object
	NumberProto   *values.Object
	BooleanProto  *values.Object

	// Well-known symbols (spec.md §4.8 "iteration protocol"); stored on
	// the realm rather than reconstructed per access so every component —
	// the evaluator's for-of/spread/destructuring driver, its generator
	// objects, and any standard-library Array/String/Map/Set installer an
	// embedder registers — keys the same property.
	SymIterator      *values.Symbol
	SymAsyncIterator *values.Symbol

	Global *environment.Frame

	Options *options.Options
}

// New builds a realm with a fresh prototype chain and an empty global
// frame. Standard-library population (Object/Array/Function methods) is
// the embedder's job via pkg/ecmawalk, matching spec.md §6's "the
// evaluator core ships no standard library; a realm is handed a set of
// already-built callables to register." The evaluator package's own
// NewRealm wrapper additionally wires the core-language Array/String
// iterator intrinsics spec.md §4.8 requires regardless of any
// standard-library installer (see internal/evaluator/iterinstall.go).
func New(opts *options.Options) *Realm {
	if opts == nil {
		opts = options.Default()
	}
	objectProto := values.NewObject(nil)
	r := &Realm{
		Names:            symbols.NewInterner(),
		Jobs:             &asynccps.Jobs{},
		ObjectProto:      objectProto,
		ArrayProto:       values.NewObject(objectProto),
		FunctionProto:    values.NewObject(objectProto),
		ErrorProto:       values.NewObject(objectProto),
		PromiseProto:     values.NewObject(objectProto),
		StringProto:      values.NewObject(objectProto),
		NumberProto:      values.NewObject(objectProto),
		BooleanProto:     values.NewObject(objectProto),
		SymIterator:      values.NewSymbol("Symbol.iterator"),
		SymAsyncIterator: values.NewSymbol("Symbol.asyncIterator"),
		Options:          opts,
	}
	r.Global = environment.NewFrame(environment.FrameProgram)
	return r
}

// IterKey/AsyncIterKey are the property keys for the well-known
// iteration protocol methods, used by every component that installs or
// consults `obj[Symbol.iterator]`/`obj[Symbol.asyncIterator]`.
func (r *Realm) IterKey() values.PropertyKey      { return values.SymbolKey(r.SymIterator) }
func (r *Realm) AsyncIterKey() values.PropertyKey { return values.SymbolKey(r.SymAsyncIterator) }
