package fold

import (
	"testing"

	"github.com/solarframe/ecmawalk/internal/jsast"
)

func numberLit(n float64) *jsast.Literal { return &jsast.Literal{Kind: jsast.LitNumber, Value: n} }

func TestFoldBinaryArithmetic(t *testing.T) {
	expr := &jsast.BinaryExpression{Op: "+", Left: numberLit(1), Right: numberLit(2)}
	got := foldExpr(expr)
	lit, ok := got.(*jsast.Literal)
	if !ok || lit.Kind != jsast.LitNumber || lit.Value.(float64) != 3 {
		t.Fatalf("expected folded literal 3, got %#v", got)
	}
}

func TestFoldNestedArithmetic(t *testing.T) {
	inner := &jsast.BinaryExpression{Op: "+", Left: numberLit(1), Right: numberLit(2)}
	outer := &jsast.BinaryExpression{Op: "*", Left: inner, Right: numberLit(3)}
	got := foldExpr(outer)
	lit, ok := got.(*jsast.Literal)
	if !ok || lit.Value.(float64) != 9 {
		t.Fatalf("expected folded literal 9, got %#v", got)
	}
}

func TestFoldUnaryNegation(t *testing.T) {
	expr := &jsast.UnaryExpression{Op: "-", Argument: numberLit(5)}
	got := foldExpr(expr)
	lit, ok := got.(*jsast.Literal)
	if !ok || lit.Value.(float64) != -5 {
		t.Fatalf("expected folded literal -5, got %#v", got)
	}
}

func TestFoldLogicalNeverFolds(t *testing.T) {
	expr := &jsast.LogicalExpression{Op: "&&", Left: &jsast.Literal{Kind: jsast.LitBoolean, Value: true}, Right: numberLit(1)}
	got := foldExpr(expr)
	if _, ok := got.(*jsast.LogicalExpression); !ok {
		t.Fatalf("logical expressions must never be folded (right operand may have side effects)")
	}
}

func TestFoldConditionalPicksBranch(t *testing.T) {
	expr := &jsast.ConditionalExpression{
		Test:       &jsast.Literal{Kind: jsast.LitBoolean, Value: true},
		Consequent: numberLit(1),
		Alternate:  numberLit(2),
	}
	got := foldExpr(expr)
	lit, ok := got.(*jsast.Literal)
	if !ok || lit.Value.(float64) != 1 {
		t.Fatalf("expected the consequent literal 1, got %#v", got)
	}
}

func TestFoldStringConcat(t *testing.T) {
	expr := &jsast.BinaryExpression{
		Op:    "+",
		Left:  &jsast.Literal{Kind: jsast.LitString, Value: "a"},
		Right: &jsast.Literal{Kind: jsast.LitString, Value: "b"},
	}
	got := foldExpr(expr)
	lit, ok := got.(*jsast.Literal)
	if !ok || lit.Kind != jsast.LitString || lit.Value.(string) != "ab" {
		t.Fatalf("expected folded string literal \"ab\", got %#v", got)
	}
}
