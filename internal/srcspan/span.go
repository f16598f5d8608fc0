// Package srcspan carries source-location information from the external
// lexer/parser through to evaluator diagnostics. It is the evaluator's
// only dependency on "where did this node come from" — it never reads
// source text itself.
package srcspan

import "fmt"

// Position is a single line/column location in a source file.
//
// Grounded on pkg/token's tested Position shape (1-based line/column
// pair with case-insensitive-language-agnostic semantics).
type Position struct {
	Line   int
	Column int
}

// Reference is the SourceReference described in spec.md §6: every AST
// node may carry one, used for diagnostics and for span-keyed
// await/yield suspension state in the generator machine.
type Reference struct {
	File       string
	StartLine  int
	StartCol   int
	EndLine    int
	EndCol     int
	StartPos   int
	EndPos     int
}

// String renders a human-readable "file:line:col" span used in error text.
func (r *Reference) String() string {
	if r == nil {
		return "<unknown>"
	}
	if r.File == "" {
		return fmt.Sprintf("%d:%d", r.StartLine, r.StartCol)
	}
	return fmt.Sprintf("%s:%d:%d", r.File, r.StartLine, r.StartCol)
}

// Snippet returns up to maxLen characters of src framed by the
// reference's byte offsets, used for the "optional source snippet (≤50
// chars)" diagnostic text described in spec.md §6.
func (r *Reference) Snippet(src string, maxLen int) string {
	if r == nil || r.StartPos < 0 || r.EndPos > len(src) || r.StartPos >= r.EndPos {
		return ""
	}
	s := src[r.StartPos:r.EndPos]
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}
