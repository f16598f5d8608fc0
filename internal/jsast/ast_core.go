// Package jsast is the typed AST shape the evaluator consumes (spec.md
// §1.1, §6 "Typed AST"). It is pure data: a tagged union of statement,
// expression, pattern and class-member records, mirroring the lexer/
// parser/builder pipeline that sits outside this module's scope.
//
// Grounded on internal/ast's BaseNode/TypedExpressionBase embedding
// style — a small embedded struct carrying position info, reused by
// every concrete node type instead of a class hierarchy (spec.md §9
// "typed unions instead of class hierarchies").
package jsast

import "github.com/solarframe/ecmawalk/internal/srcspan"

// Node is implemented by every AST record.
type Node interface {
	Pos() *srcspan.Reference
}

// Statement is implemented by every statement node.
type Statement interface {
	Node
	stmtNode()
}

// Expression is implemented by every expression node.
type Expression interface {
	Node
	exprNode()
}

// Pattern is implemented by every binding-pattern node (identifiers,
// array/object destructuring targets, rest elements, defaulted
// targets). Patterns double as assignment targets for destructuring
// assignment (spec.md §4.4 "Destructuring assignment").
type Pattern interface {
	Node
	patternNode()
}

// BaseNode is embedded by every concrete node to supply Pos().
type BaseNode struct {
	Span *srcspan.Reference
}

// Pos returns the node's source span, or nil if none was attached.
func (b BaseNode) Pos() *srcspan.Reference { return b.Span }

// Program is the root of a parsed unit: a sequence of top-level
// statements plus whether the source was parsed as a module (affecting
// default strictness — modules are always strict).
type Program struct {
	BaseNode
	Body     []Statement
	IsModule bool
}
