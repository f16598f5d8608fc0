// Package environment implements the lexical environment model of
// spec.md §3.3/§4.1: a stack of frames, each holding named bindings
// with TDZ/const/hoisting flags, chained to an outer frame for scope
// resolution.
//
// Grounded directly on internal/interp/runtime/environment.go's
// Environment (store + outer chain, Get/Set/Define/GetLocal/Has),
// generalized from DWScript's single case-insensitive store-of-Value
// into JS's per-binding flag set (isLexical/isConst/isInitialized/
// isFunctionScoped) that spec.md §3.3 requires and DWScript's
// case-insensitive var-only model never needed.
package environment

import (
	"fmt"

	"github.com/solarframe/ecmawalk/internal/symbols"
	"github.com/solarframe/ecmawalk/internal/values"
)

// FrameKind tags what kind of scope a frame represents (spec.md §3.3:
// "program, module, function (var env), parameter, body, block, catch
// (single binding), with (object binding), class").
type FrameKind int

const (
	FrameProgram FrameKind = iota
	FrameModule
	FrameFunction
	FrameParameter
	FrameBody
	FrameBlock
	FrameCatch
	FrameWith
	FrameClass
)

// Binding is one named slot in a Frame.
type Binding struct {
	Value              values.Value
	IsLexical          bool // let/const/class
	IsConst            bool
	IsInitialized      bool // false while in the TDZ
	BlocksFunctionScope bool // Annex-B: a lexical binding that masks var hoisting of the same name
	IsFunctionScoped    bool // var/function-hoisted
}

// Frame is one scope in the environment chain.
//
// Grounded on runtime/environment.go's Environment struct (store map +
// outer pointer); adds Kind and a With-frame object target, and
// replaces the case-insensitive ident.Map with a plain map keyed by
// interned symbols (JS identifiers are case-sensitive).
type Frame struct {
	Kind      FrameKind
	Outer     *Frame
	bindings  map[symbols.Symbol]*Binding
	// WithTarget is the bound object for a `with` statement's frame
	// (spec.md §3.3 "with (object binding)").
	WithTarget *values.Object
}

// NewFrame creates a root frame with no outer scope (used for the
// realm/global environment).
func NewFrame(kind FrameKind) *Frame {
	return &Frame{Kind: kind, bindings: make(map[symbols.Symbol]*Binding)}
}

// NewEnclosedFrame creates a frame nested inside outer.
func NewEnclosedFrame(kind FrameKind, outer *Frame) *Frame {
	return &Frame{Kind: kind, Outer: outer, bindings: make(map[symbols.Symbol]*Binding)}
}

// TDZError is returned by Get/Assign when a lexical binding is accessed
// before its declarator has run (spec.md §3.3 "ReferenceError: TDZ").
type TDZError struct{ Name string }

func (e *TDZError) Error() string {
	return fmt.Sprintf("Cannot access '%s' before initialization", e.Name)
}

// ReferenceError is returned for an unresolved identifier.
type ReferenceError struct{ Name string }

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s is not defined", e.Name)
}

// ConstAssignError is returned by Assign for a write to a const binding.
type ConstAssignError struct{ Name string }

func (e *ConstAssignError) Error() string {
	return fmt.Sprintf("Assignment to constant variable '%s'.", e.Name)
}

// RedeclarationError is returned by Define for a duplicate lexical
// declaration in the same block (spec.md §3.3).
type RedeclarationError struct{ Name string }

func (e *RedeclarationError) Error() string {
	return fmt.Sprintf("Identifier '%s' has already been declared", e.Name)
}

// GetLocal returns the binding defined directly in this frame (not
// walking Outer), mirroring runtime/environment.go's GetLocal.
func (f *Frame) GetLocal(name symbols.Symbol) (*Binding, bool) {
	b, ok := f.bindings[name]
	return b, ok
}

// HasOwnLexicalBinding reports whether this frame alone has a lexical
// binding for name (used by Annex-B hoisting guards, spec.md §4.1).
func (f *Frame) HasOwnLexicalBinding(name symbols.Symbol) bool {
	b, ok := f.bindings[name]
	return ok && b.IsLexical
}

// OwnNames returns the symbols bound directly in this frame, in no
// particular order — used by internal/diagnostic to list a frame's
// bindings in a trace dump (callers natural-sort the resolved name
// strings for stable, readable output).
func (f *Frame) OwnNames() []symbols.Symbol {
	out := make([]symbols.Symbol, 0, len(f.bindings))
	for name := range f.bindings {
		out = append(out, name)
	}
	return out
}

// Define creates name in this frame. hoistable routes the binding to
// the nearest var-scope frame (GetFunctionScope) instead of f itself,
// matching spec.md §4.1 Define's "create a binding in the current frame
// (or nearest var-env when hoistable)". It fails with *RedeclarationError
// on a lexical redeclaration in the same block.
func (f *Frame) Define(name symbols.Symbol, v values.Value, isLexical, isConst, hoistable, blocksFunctionScope bool, names *symbols.Interner) error {
	target := f
	if hoistable {
		target = f.GetFunctionScope()
	}
	if existing, ok := target.bindings[name]; ok {
		if isLexical || existing.IsLexical {
			return &RedeclarationError{Name: names.Name(name)}
		}
	}
	target.bindings[name] = &Binding{
		Value:               v,
		IsLexical:           isLexical,
		IsConst:             isConst,
		IsInitialized:       !isLexical, // lexicals start in the TDZ until initialized
		BlocksFunctionScope: blocksFunctionScope,
		IsFunctionScoped:    hoistable,
	}
	return nil
}

// Initialize marks a lexical binding as past its TDZ and sets its
// value — used by the declarator that actually runs (as opposed to the
// hoisting pre-declaration).
func (f *Frame) Initialize(name symbols.Symbol, v values.Value) {
	if b, ok := f.bindings[name]; ok {
		b.Value = v
		b.IsInitialized = true
	}
}

// Get walks the frame chain outward, returning *TDZError for an
// uninitialized lexical and *ReferenceError for an unresolved name
// (spec.md §4.1 "Get"). names resolves a Symbol back to its source text
// for error messages.
func (f *Frame) Get(name symbols.Symbol, names *symbols.Interner) (values.Value, error) {
	for cur := f; cur != nil; cur = cur.Outer {
		if b, ok := cur.bindings[name]; ok {
			if !b.IsInitialized {
				return nil, &TDZError{Name: names.Name(name)}
			}
			return b.Value, nil
		}
	}
	return nil, &ReferenceError{Name: names.Name(name)}
}

// Assign walks the frame chain outward and writes to the first matching
// binding, failing on an unresolved name, a TDZ binding, or a const
// binding (spec.md §4.1 "Assign"). sloppyAutoGlobal, when true, creates
// a fresh binding on the outermost frame instead of failing when no
// binding is found (sloppy-mode implicit global assignment).
func (f *Frame) Assign(name symbols.Symbol, v values.Value, sloppyAutoGlobal bool, names *symbols.Interner) error {
	var outermost *Frame
	for cur := f; cur != nil; cur = cur.Outer {
		outermost = cur
		if b, ok := cur.bindings[name]; ok {
			if !b.IsInitialized {
				return &TDZError{Name: names.Name(name)}
			}
			if b.IsConst {
				return &ConstAssignError{Name: names.Name(name)}
			}
			b.Value = v
			return nil
		}
	}
	if sloppyAutoGlobal && outermost != nil {
		outermost.bindings[name] = &Binding{Value: v, IsInitialized: true, IsFunctionScoped: true}
		return nil
	}
	return &ReferenceError{Name: names.Name(name)}
}

// DeleteBinding implements spec.md §4.1 DeleteBinding: returns
// (deleted, existed). Strict-mode callers should reject unqualified
// `delete` of a resolvable identifier before calling this at all
// (spec.md §7 SyntaxError), so this always performs the deletion on the
// owning frame when found and the binding is function-scoped (`var`);
// lexical bindings are never deletable.
func (f *Frame) DeleteBinding(name symbols.Symbol) (deleted bool, existed bool) {
	for cur := f; cur != nil; cur = cur.Outer {
		if b, ok := cur.bindings[name]; ok {
			if b.IsLexical {
				return false, true
			}
			delete(cur.bindings, name)
			return true, true
		}
	}
	return false, false
}

// GetFunctionScope returns the enclosing var-env: the nearest ancestor
// frame (including f) whose Kind is FrameFunction, FrameProgram, or
// FrameModule (spec.md §4.1 "GetFunctionScope: skips blocks & catches").
func (f *Frame) GetFunctionScope() *Frame {
	for cur := f; cur != nil; cur = cur.Outer {
		switch cur.Kind {
		case FrameFunction, FrameProgram, FrameModule:
			return cur
		}
	}
	return f
}

// HasFunctionScopedBinding reports whether name resolves, anywhere in
// the chain, to a var-hoisted (non-lexical) binding — used by Annex-B
// function-hoisting guards.
func (f *Frame) HasFunctionScopedBinding(name symbols.Symbol) bool {
	for cur := f; cur != nil; cur = cur.Outer {
		if b, ok := cur.bindings[name]; ok {
			return b.IsFunctionScoped
		}
	}
	return false
}

// HasBodyLexicalName reports whether name is declared lexically anywhere
// from f up to (but not including) the enclosing function scope — used
// to decide whether Annex-B block-function hoisting is masked by a
// same-named `let`/`const`/`class` in an intervening block.
func (f *Frame) HasBodyLexicalName(name symbols.Symbol) bool {
	funcScope := f.GetFunctionScope()
	for cur := f; cur != nil && cur != funcScope; cur = cur.Outer {
		if b, ok := cur.bindings[name]; ok && b.IsLexical {
			return true
		}
	}
	return false
}

// CopyBindingsInto copies every own binding of f into dst by value,
// used to give a classic for-loop's `let`-declared header a fresh
// per-iteration binding seeded from the previous iteration's final
// value (spec.md §4.9 "per-iteration binding").
func (f *Frame) CopyBindingsInto(dst *Frame) {
	for name, b := range f.bindings {
		dst.bindings[name] = &Binding{
			Value:               b.Value,
			IsLexical:           b.IsLexical,
			IsConst:             b.IsConst,
			IsInitialized:       b.IsInitialized,
			BlocksFunctionScope: b.BlocksFunctionScope,
			IsFunctionScoped:    b.IsFunctionScoped,
		}
	}
}

// TryAssignBlockedBinding late-initializes a class-scope inner name —
// used when a class's own name becomes readable/writable once the
// class's definition has fully evaluated (spec.md §4.3
// "ClassDeclaration": "a class scope that binds the class name (inner
// TDZ-protected self-reference)").
func (f *Frame) TryAssignBlockedBinding(name symbols.Symbol, v values.Value) bool {
	if b, ok := f.bindings[name]; ok {
		b.Value = v
		b.IsInitialized = true
		return true
	}
	return false
}
