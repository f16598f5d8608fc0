// Package loopplan normalizes every looping statement form
// (while/do-while/classic for/for-in/for-of) into one Plan shape
// (spec.md §4.9, §4.11). The evaluator drives while, do-while and
// classic for through a single routine built on Plan; for-in and for-of
// keep their own routines.
//
// Grounded in the teacher's pass-oriented AST-rewrite style (visible in
// internal/semantic's visitor shape — read for structure, not ported);
// the LoopPlan shape itself has no direct teacher analog since DWScript
// evaluates each loop form with its own routine.
package loopplan

import "github.com/solarframe/ecmawalk/internal/jsast"

// Kind tags which source form a Plan was built from, since for-in/
// for-of still need their own per-iteration binding step even after
// normalization (the Init/Test/Update shape fits `for`/`while`/
// `do-while` directly but for-in/for-of need their iterable driven
// externally by internal/iterator).
type Kind int

const (
	KindWhile Kind = iota
	KindDoWhile
	KindFor
	KindForIn
	KindForOf
)

// Plan is the normalized loop shape every kind reduces to. Test == nil
// means "always true" (an infinite loop, e.g. `for (;;)`).
//
// PerIterationCopy is true when the loop header declares `let`/`const`
// bindings that must get a fresh per-iteration binding copy (spec.md
// §4.9 "a classic for-loop with a `let`-declared loop variable creates
// a fresh per-iteration binding, copied from the previous iteration's
// final value, so closures captured inside the body each see their own
// iteration's value").
type Plan struct {
	Kind             Kind
	Init             jsast.Statement   // nil for while/do-while and for-in/for-of
	Test             jsast.Expression  // nil means unconditionally true
	Update           jsast.Expression  // nil if no update clause
	Body             jsast.Statement
	PerIterationCopy bool
	RunBodyFirst     bool // true for do-while: body runs once before the first Test check

	// Left/Right are only set for KindForIn/KindForOf, naming the
	// binding target and the iterated expression (spec.md §4.8).
	Left   jsast.Node
	Right  jsast.Expression
	Await  bool // for-await-of
}

// From builds the normalized Plan for any of the five loop statement
// node types; it panics on any other node, since callers are expected
// to dispatch only loop statements here.
func From(stmt jsast.Statement) Plan {
	switch s := stmt.(type) {
	case *jsast.WhileStatement:
		return Plan{Kind: KindWhile, Test: s.Test, Body: s.Body}
	case *jsast.DoWhileStatement:
		return Plan{Kind: KindDoWhile, Test: s.Test, Body: s.Body, RunBodyFirst: true}
	case *jsast.ForStatement:
		return Plan{
			Kind:             KindFor,
			Init:             s.Init,
			Test:             s.Test,
			Update:           s.Update,
			Body:             s.Body,
			PerIterationCopy: declaresLexicalLoopVar(s.Init),
		}
	case *jsast.ForInStatement:
		return Plan{Kind: KindForIn, Left: s.Left, Right: s.Right, Body: s.Body}
	case *jsast.ForOfStatement:
		return Plan{Kind: KindForOf, Left: s.Left, Right: s.Right, Body: s.Body, Await: s.Await}
	default:
		panic("loopplan.From: not a loop statement")
	}
}

// declaresLexicalLoopVar reports whether a classic for-loop's Init
// clause is a `let`/`const` VariableDeclaration, which triggers the
// per-iteration binding-copy semantics of spec.md §4.9. A `var` loop
// variable is function-scoped and shares one binding across every
// iteration, so it needs no copy.
func declaresLexicalLoopVar(init jsast.Statement) bool {
	decl, ok := init.(*jsast.VariableDeclaration)
	return ok && decl.Kind != jsast.VarVar
}
