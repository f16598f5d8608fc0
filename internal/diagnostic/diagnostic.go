// Package diagnostic formats evaluator trace and environment-listing
// output for the `ecmawalk --trace` CLI flag and verbose error reports
// (spec.md §1 "[AMBIENT] Logging / diagnostics: structured ... evaluator
// trace output ... behind an optional sink, never required for
// correctness").
//
// Value/frame dumps are built with github.com/kr/pretty's reflective
// formatter (the same tool the corpus reaches for whenever a debug dump
// needs to show a Go struct's fields without a hand-written String()
// method); binding and call-stack names are ordered with
// github.com/maruel/natural so `frame2 < frame10` sorts the way a human
// reads it instead of lexicographically.
package diagnostic

import (
	"sort"
	"strings"

	"github.com/kr/pretty"
	"github.com/maruel/natural"

	"github.com/solarframe/ecmawalk/internal/environment"
	"github.com/solarframe/ecmawalk/internal/evalctx"
	"github.com/solarframe/ecmawalk/internal/symbols"
	"github.com/solarframe/ecmawalk/internal/values"
)

// FormatValue pretty-prints v's underlying Go representation for a
// verbose trace line — unlike Value.String() (the JS-visible ToString
// conversion), this shows the Go struct shape (e.g. an Object's
// property map, a Promise's state) for debugging the evaluator itself.
func FormatValue(v values.Value) string {
	if v == nil {
		return "<nil>"
	}
	return pretty.Sprintf("%# v", v)
}

// FormatFrame lists one environment frame's own bindings, natural-
// sorted by name, as "name = <value>" lines — used by the `--trace`
// flag to dump the global frame once, after the program has run.
func FormatFrame(names *symbols.Interner, frame *environment.Frame) string {
	if frame == nil {
		return "<no scope>"
	}
	lines := bindingLines(names, frame)
	if len(lines) == 0 {
		return "(empty frame)"
	}
	return strings.Join(lines, "\n")
}

func bindingLines(names *symbols.Interner, frame *environment.Frame) []string {
	var nameStrs []string
	for _, sym := range frame.OwnNames() {
		nameStrs = append(nameStrs, names.Name(sym))
	}
	sort.Slice(nameStrs, func(i, j int) bool { return natural.Less(nameStrs[i], nameStrs[j]) })

	lines := make([]string, 0, len(nameStrs))
	for _, n := range nameStrs {
		sym, ok := names.Lookup(n)
		if !ok {
			continue
		}
		b, ok := frame.GetLocal(sym)
		if !ok {
			continue
		}
		if !b.IsInitialized {
			lines = append(lines, n+" = <in TDZ>")
			continue
		}
		lines = append(lines, n+" = "+FormatValue(b.Value))
	}
	return lines
}

// FormatCallStack renders a call stack as a trace-style listing,
// innermost frame first.
func FormatCallStack(stack *evalctx.CallStack) string {
	frames := stack.Frames()
	if len(frames) == 0 {
		return "(no active calls)"
	}
	lines := make([]string, 0, len(frames))
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		lines = append(lines, pretty.Sprintf("#%d %s (line %d, strict=%v)", len(frames)-1-i, f.FunctionName, f.CallSiteLine, f.Strict))
	}
	return strings.Join(lines, "\n")
}

// ContainsName reports whether a natural-sorted name list contains
// target, matching a binding name case-sensitively against the frame
// dump's own ordering.
func ContainsName(sortedNames []string, target string) bool {
	i := sort.Search(len(sortedNames), func(i int) bool { return !natural.Less(sortedNames[i], target) })
	return i < len(sortedNames) && sortedNames[i] == target
}
