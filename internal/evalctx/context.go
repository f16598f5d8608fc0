// Package evalctx holds the per-evaluation mutable state threaded
// through every statement/expression dispatch: the call stack, the
// active completion (flow) signal, strict-mode/this-binding state, and
// a cancellation hook.
//
// Grounded on internal/interp/runtime/execution_context.go's
// ExecutionContext (env stack, call stack, control-flow enum, exception
// slot, old-values stack) and runtime/callstack.go's CallStack
// (maxDepth overflow, Frames()/FindFrame()/ContainsFunction()).
// DWScript's ExecutionContext tracks a single boolean exception slot;
// this generalizes that into evalctx.Flow so generator/async suspension
// and labeled break/continue can ride the same channel as throw/return.
package evalctx

import (
	"context"

	"github.com/solarframe/ecmawalk/internal/environment"
	"github.com/solarframe/ecmawalk/internal/errorsx"
	"github.com/solarframe/ecmawalk/internal/symbols"
	"github.com/solarframe/ecmawalk/internal/values"
)

// CallFrame is one entry in the call stack, used for stack-overflow
// detection and for building a stack trace string on an uncaught throw
// (spec.md §7 "error objects carry a stack trace string").
//
// Grounded on runtime/callstack.go's per-frame bookkeeping
// (function identity + call-site reference), generalized to also carry
// the strict-mode flag a function captures at definition time.
type CallFrame struct {
	FunctionName string
	CallSiteLine int
	Strict       bool
}

// CallStack is a bounded stack of CallFrame, grounded directly on
// runtime/callstack.go's maxDepth overflow guard and
// Frames()/FindFrame()/ContainsFunction() query surface.
type CallStack struct {
	frames   []CallFrame
	maxDepth int
}

// NewCallStack creates a call stack that errors with a RangeError once
// maxDepth frames are exceeded (spec.md §4.5).
func NewCallStack(maxDepth int) *CallStack {
	return &CallStack{maxDepth: maxDepth}
}

// Push adds a frame, returning *errorsx.EvalError (RangeError) if this
// would exceed maxDepth.
func (c *CallStack) Push(frame CallFrame) error {
	if len(c.frames) >= c.maxDepth {
		return errorsx.StackOverflow(c.maxDepth)
	}
	c.frames = append(c.frames, frame)
	return nil
}

// Pop removes the most recently pushed frame.
func (c *CallStack) Pop() {
	if len(c.frames) == 0 {
		return
	}
	c.frames = c.frames[:len(c.frames)-1]
}

// Depth reports the current stack depth.
func (c *CallStack) Depth() int { return len(c.frames) }

// Frames returns the stack from outermost to innermost.
func (c *CallStack) Frames() []CallFrame {
	out := make([]CallFrame, len(c.frames))
	copy(out, c.frames)
	return out
}

// FindFrame returns the nearest (innermost-first) frame named name.
func (c *CallStack) FindFrame(name string) (CallFrame, bool) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if c.frames[i].FunctionName == name {
			return c.frames[i], true
		}
	}
	return CallFrame{}, false
}

// ContainsFunction reports whether name appears anywhere on the stack.
func (c *CallStack) ContainsFunction(name string) bool {
	_, ok := c.FindFrame(name)
	return ok
}

// PrivateNameScope is one entry of the private-name scope stack
// (spec.md glossary "Private name scope"): the set of `#name` brands
// visible while evaluating the current class body, used to reject a
// private-name reference outside any class that declares it.
type PrivateNameScope struct {
	ClassName string
	Names     map[symbols.Symbol]bool
}

// EvaluationContext is the full mutable state threaded through one
// program/module evaluation (and, via goroutine handoff, through its
// generator/async-function bodies — spec.md §5).
type EvaluationContext struct {
	Go context.Context // cancellation / deadline (spec.md §5 "cancellation")

	Names *symbols.Interner
	Scope *environment.Frame // current lexical frame
	Calls *CallStack

	Flow Flow

	// Strict is the strict-mode status of the code currently executing
	// (per-function, toggled on call entry/exit by the evaluator).
	Strict bool

	// ThisValue and ThisInitialized implement the derived-constructor
	// TDZ on `this` (spec.md §4.7 "derived constructors: `this` is in
	// the TDZ until `super()` returns").
	ThisValue       values.Value
	ThisInitialized bool

	// NewTarget is the active `new.target` value, or nil outside any
	// constructor call (spec.md §4.4 "NewTargetExpression").
	NewTarget values.Value

	// HomeObject is the active method's defining class's prototype (or
	// static object, for a static method); a `super` property lookup
	// starts its prototype-chain search at HomeObject's [[Prototype]] —
	// spec.md §4.7
	// "Super": "property lookups on `super` start at the home object's
	// [[Prototype]]".
	HomeObject *values.Object

	// BlockedFunctionVarNames holds Annex-B block-function names whose
	// var-scoped mirror binding has not yet been reached by block entry
	// (spec.md §4.1 Annex-B), keyed by symbol within the current
	// function scope.
	BlockedFunctionVarNames map[symbols.Symbol]bool

	// PrivateNameScopeStack is the stack of classes currently being
	// evaluated, innermost last.
	PrivateNameScopeStack []PrivateNameScope

	// PendingClassFieldInitializer, when non-nil, names the class field
	// initializer currently executing (spec.md §4.7 "instance field
	// initializers run during construction, in declaration order").
	PendingClassFieldInitializer *symbols.Symbol
}

// New creates a fresh top-level evaluation context rooted at scope.
func New(goCtx context.Context, names *symbols.Interner, scope *environment.Frame, maxCallDepth int) *EvaluationContext {
	return &EvaluationContext{
		Go:                      goCtx,
		Names:                   names,
		Scope:                   scope,
		Calls:                   NewCallStack(maxCallDepth),
		Flow:                    Normal(),
		BlockedFunctionVarNames: make(map[symbols.Symbol]bool),
	}
}

// Cancelled reports whether the context's cancellation signal has
// fired (spec.md §5 "cancellation: evaluation checks a context.Context
// at statement boundaries").
func (c *EvaluationContext) Cancelled() bool {
	if c.Go == nil {
		return false
	}
	select {
	case <-c.Go.Done():
		return true
	default:
		return false
	}
}

// PushPrivateScope enters a new class body's private-name scope.
func (c *EvaluationContext) PushPrivateScope(className string) {
	c.PrivateNameScopeStack = append(c.PrivateNameScopeStack, PrivateNameScope{
		ClassName: className,
		Names:     make(map[symbols.Symbol]bool),
	})
}

// PopPrivateScope leaves the innermost class body's private-name scope.
func (c *EvaluationContext) PopPrivateScope() {
	if len(c.PrivateNameScopeStack) == 0 {
		return
	}
	c.PrivateNameScopeStack = c.PrivateNameScopeStack[:len(c.PrivateNameScopeStack)-1]
}

// HasPrivateName reports whether name is declared by any class body
// currently being evaluated (innermost to outermost).
func (c *EvaluationContext) HasPrivateName(name symbols.Symbol) bool {
	for i := len(c.PrivateNameScopeStack) - 1; i >= 0; i-- {
		if c.PrivateNameScopeStack[i].Names[name] {
			return true
		}
	}
	return false
}
