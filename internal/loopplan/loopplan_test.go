package loopplan

import (
	"testing"

	"github.com/solarframe/ecmawalk/internal/jsast"
)

func TestForWithLetTriggersPerIterationCopy(t *testing.T) {
	stmt := &jsast.ForStatement{
		Init: &jsast.VariableDeclaration{Kind: jsast.VarLet},
		Body: &jsast.EmptyStatement{},
	}
	plan := From(stmt)
	if plan.Kind != KindFor {
		t.Fatalf("expected KindFor")
	}
	if !plan.PerIterationCopy {
		t.Fatalf("expected PerIterationCopy for a let-declared loop variable")
	}
}

func TestForWithVarDoesNotCopy(t *testing.T) {
	stmt := &jsast.ForStatement{
		Init: &jsast.VariableDeclaration{Kind: jsast.VarVar},
		Body: &jsast.EmptyStatement{},
	}
	plan := From(stmt)
	if plan.PerIterationCopy {
		t.Fatalf("var loop variable must not get per-iteration copy semantics")
	}
}

func TestDoWhileRunsBodyFirst(t *testing.T) {
	stmt := &jsast.DoWhileStatement{Body: &jsast.EmptyStatement{}}
	plan := From(stmt)
	if !plan.RunBodyFirst {
		t.Fatalf("do-while must run its body before the first test")
	}
}

func TestForOfCarriesAwaitFlag(t *testing.T) {
	stmt := &jsast.ForOfStatement{Body: &jsast.EmptyStatement{}, Await: true}
	plan := From(stmt)
	if plan.Kind != KindForOf || !plan.Await {
		t.Fatalf("expected a for-await-of plan")
	}
}
