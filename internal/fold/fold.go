// Package fold is a pure pre-evaluation pass that rewrites
// literal-operand binary/unary expressions to their folded literal
// result (spec.md §4.10); logical expressions are left unfolded. It
// trades a little evaluator dispatch
// overhead at parse time for fewer node visits at run time on
// expressions like `1 + 2` or `!true` that appear verbatim in source.
//
// Grounded in the teacher's pass-oriented, read-only AST-rewrite style
// (internal/semantic's visitor shape, read for structure only — no
// direct DWScript constant-folding analog since its semantic pass does
// type-checking, not folding).
package fold

import (
	"math"

	"github.com/solarframe/ecmawalk/internal/jsast"
)

// Program folds every foldable expression in prog's body in place and
// returns prog for chaining.
func Program(prog *jsast.Program) *jsast.Program {
	for i, stmt := range prog.Body {
		prog.Body[i] = foldStmt(stmt)
	}
	return prog
}

func foldStmt(stmt jsast.Statement) jsast.Statement {
	switch s := stmt.(type) {
	case *jsast.ExpressionStatement:
		s.Expr = foldExpr(s.Expr)
	case *jsast.BlockStatement:
		for i, inner := range s.Body {
			s.Body[i] = foldStmt(inner)
		}
	case *jsast.IfStatement:
		s.Test = foldExpr(s.Test)
		if s.Consequent != nil {
			s.Consequent = foldStmt(s.Consequent)
		}
		if s.Alternate != nil {
			s.Alternate = foldStmt(s.Alternate)
		}
	case *jsast.WhileStatement:
		s.Test = foldExpr(s.Test)
		s.Body = foldStmt(s.Body)
	case *jsast.DoWhileStatement:
		s.Test = foldExpr(s.Test)
		s.Body = foldStmt(s.Body)
	case *jsast.ForStatement:
		if s.Test != nil {
			s.Test = foldExpr(s.Test)
		}
		if s.Update != nil {
			s.Update = foldExpr(s.Update)
		}
		s.Body = foldStmt(s.Body)
	case *jsast.ReturnStatement:
		if s.Argument != nil {
			s.Argument = foldExpr(s.Argument)
		}
	case *jsast.VariableDeclaration:
		for _, d := range s.Declarators {
			if d.Init != nil {
				d.Init = foldExpr(d.Init)
			}
		}
	}
	return stmt
}

// foldExpr recurses into expr's children (so folding composes, e.g.
// `(1 + 2) * 3` folds in two steps) and then attempts to fold expr
// itself if every operand is now a side-effect-free literal.
func foldExpr(expr jsast.Expression) jsast.Expression {
	switch e := expr.(type) {
	case *jsast.UnaryExpression:
		e.Argument = foldExpr(e.Argument)
		return foldUnary(e)
	case *jsast.BinaryExpression:
		e.Left = foldExpr(e.Left)
		e.Right = foldExpr(e.Right)
		return foldBinary(e)
	case *jsast.LogicalExpression:
		e.Left = foldExpr(e.Left)
		e.Right = foldExpr(e.Right)
		return e // short-circuit operands may have side effects; never folded
	case *jsast.ConditionalExpression:
		e.Test = foldExpr(e.Test)
		e.Consequent = foldExpr(e.Consequent)
		e.Alternate = foldExpr(e.Alternate)
		if lit, ok := e.Test.(*jsast.Literal); ok {
			if toBool(lit) {
				return e.Consequent
			}
			return e.Alternate
		}
		return e
	}
	return expr
}

func isNumberLit(e jsast.Expression) (float64, bool) {
	lit, ok := e.(*jsast.Literal)
	if !ok || lit.Kind != jsast.LitNumber {
		return 0, false
	}
	n, ok := lit.Value.(float64)
	return n, ok
}

func numLit(n float64) *jsast.Literal {
	return &jsast.Literal{Kind: jsast.LitNumber, Value: n}
}

func boolLit(b bool) *jsast.Literal {
	return &jsast.Literal{Kind: jsast.LitBoolean, Value: b}
}

func toBool(lit *jsast.Literal) bool {
	switch lit.Kind {
	case jsast.LitUndefined, jsast.LitNull:
		return false
	case jsast.LitBoolean:
		return lit.Value.(bool)
	case jsast.LitNumber:
		n := lit.Value.(float64)
		return n != 0 && !math.IsNaN(n)
	case jsast.LitString:
		return lit.Value.(string) != ""
	}
	return true
}

// foldUnary folds `+ - ! ~` over a literal operand. `typeof`/`void`/
// `delete` are never folded: `void` always yields undefined regardless
// (folding it wouldn't save a node visit) and `typeof`/`delete` depend
// on reference resolution, which this pure-AST pass cannot perform.
func foldUnary(e *jsast.UnaryExpression) jsast.Expression {
	lit, ok := e.Argument.(*jsast.Literal)
	if !ok {
		return e
	}
	switch e.Op {
	case "-":
		if n, ok := isNumberLit(lit); ok {
			return numLit(-n)
		}
	case "+":
		if n, ok := isNumberLit(lit); ok {
			return numLit(n)
		}
	case "!":
		return boolLit(!toBool(lit))
	case "~":
		if n, ok := isNumberLit(lit); ok {
			return numLit(float64(^toInt32(n)))
		}
	}
	return e
}

func toInt32(n float64) int32 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int32(int64(n))
}

// foldBinary folds arithmetic/comparison operators over two literal
// numeric (or, for `+`, string) operands. Operators whose result
// depends on object identity or coercion through user-overridable
// methods (`==`/`!=` against non-primitives, `in`, `instanceof`) are
// left to the evaluator.
func foldBinary(e *jsast.BinaryExpression) jsast.Expression {
	ln, lok := isNumberLit(e.Left)
	rn, rok := isNumberLit(e.Right)
	if lok && rok {
		switch e.Op {
		case "+":
			return numLit(ln + rn)
		case "-":
			return numLit(ln - rn)
		case "*":
			return numLit(ln * rn)
		case "/":
			return numLit(ln / rn)
		case "%":
			return numLit(math.Mod(ln, rn))
		case "**":
			return numLit(math.Pow(ln, rn))
		case "<":
			return boolLit(ln < rn)
		case "<=":
			return boolLit(ln <= rn)
		case ">":
			return boolLit(ln > rn)
		case ">=":
			return boolLit(ln >= rn)
		case "===", "==":
			return boolLit(ln == rn)
		case "!==", "!=":
			return boolLit(ln != rn)
		}
	}
	if lLit, lok := e.Left.(*jsast.Literal); lok && e.Op == "+" {
		if rLit, rok := e.Right.(*jsast.Literal); rok {
			if ls, ok := lLit.Value.(string); ok && lLit.Kind == jsast.LitString {
				if rs, ok := rLit.Value.(string); ok && rLit.Kind == jsast.LitString {
					return &jsast.Literal{Kind: jsast.LitString, Value: ls + rs}
				}
			}
		}
	}
	return e
}
