package evalctx

import "github.com/solarframe/ecmawalk/internal/values"

// Signal tags which completion-record kind a statement produced (spec.md
// §4.2): normal, return, throw, break or continue. Yield and await are
// not signals; they suspend through internal/generator instead.
type Signal int

const (
	SignalNormal Signal = iota
	SignalReturn
	SignalThrow
	SignalBreak
	SignalContinue
)

// Flow carries the non-local control transfer out of a statement
// evaluation, mirroring ECMA-262's Completion Record. Label is set for
// a labeled break/continue; Value carries the return value or the
// thrown value.
//
// Grounded on runtime/execution_context.go's single control-flow enum
// field (ExecutionContext.ControlFlow), split here into a dedicated
// struct because ECMAScript completions carry a payload value that
// DWScript's simpler break/continue/return-only model didn't need to
// thread through every statement evaluation.
type Flow struct {
	Signal   Signal
	Value    values.Value // return value, or the thrown value for SignalThrow
	Label    string       // target label for a labeled break/continue, "" if unlabeled
	HasLabel bool
}

// Normal is the zero-value, ordinary completion.
func Normal() Flow { return Flow{Signal: SignalNormal} }

// Return builds a return completion.
func Return(v values.Value) Flow { return Flow{Signal: SignalReturn, Value: v} }

// Throw builds a throw completion.
func Throw(v values.Value) Flow { return Flow{Signal: SignalThrow, Value: v} }

// Break builds an (optionally labeled) break completion.
func Break(label string, hasLabel bool) Flow {
	return Flow{Signal: SignalBreak, Label: label, HasLabel: hasLabel}
}

// Continue builds an (optionally labeled) continue completion.
func Continue(label string, hasLabel bool) Flow {
	return Flow{Signal: SignalContinue, Label: label, HasLabel: hasLabel}
}

// IsNormal reports whether the statement completed without any
// non-local transfer, i.e. whether execution of the enclosing
// statement list should continue to the next statement.
func (f Flow) IsNormal() bool { return f.Signal == SignalNormal }

// IsAbrupt is the complement of IsNormal (spec.md §4.2 naming).
func (f Flow) IsAbrupt() bool { return f.Signal != SignalNormal }

// MatchesLabel reports whether an (unlabeled-or-labeled) break/continue
// targets the given enclosing label, per ECMA-262's label-matching
// rule: an unlabeled break/continue always matches the nearest
// applicable loop/switch, while a labeled one must match by name.
func (f Flow) MatchesLabel(label string) bool {
	if !f.HasLabel {
		return true
	}
	return f.Label == label
}
