package environment

import (
	"testing"

	"github.com/solarframe/ecmawalk/internal/symbols"
	"github.com/solarframe/ecmawalk/internal/values"
)

func TestTDZBeforeInitialize(t *testing.T) {
	names := symbols.NewInterner()
	x := names.Intern("x")

	root := NewFrame(FrameProgram)
	if err := root.Define(x, values.Undefined, true, false, false, false, names); err != nil {
		t.Fatalf("Define: %v", err)
	}

	if _, err := root.Get(x, names); err == nil {
		t.Fatalf("expected TDZ error reading x before initialization")
	} else if _, ok := err.(*TDZError); !ok {
		t.Fatalf("expected *TDZError, got %T: %v", err, err)
	}

	root.Initialize(x, values.Number(42))
	v, err := root.Get(x, names)
	if err != nil {
		t.Fatalf("Get after Initialize: %v", err)
	}
	if n, ok := v.(values.Number); !ok || float64(n) != 42 {
		t.Fatalf("got %#v, want 42", v)
	}
}

func TestConstReassignmentFails(t *testing.T) {
	names := symbols.NewInterner()
	c := names.Intern("c")

	root := NewFrame(FrameProgram)
	root.Define(c, values.Number(1), true, true, false, false, names)
	root.Initialize(c, values.Number(1))

	if err := root.Assign(c, values.Number(2), false, names); err == nil {
		t.Fatalf("expected ConstAssignError")
	} else if _, ok := err.(*ConstAssignError); !ok {
		t.Fatalf("expected *ConstAssignError, got %T: %v", err, err)
	}
}

func TestDuplicateLexicalRedeclarationFails(t *testing.T) {
	names := symbols.NewInterner()
	y := names.Intern("y")

	root := NewFrame(FrameBlock)
	if err := root.Define(y, values.Undefined, true, false, false, false, names); err != nil {
		t.Fatalf("first Define: %v", err)
	}
	if err := root.Define(y, values.Undefined, true, false, false, false, names); err == nil {
		t.Fatalf("expected RedeclarationError on duplicate let")
	} else if _, ok := err.(*RedeclarationError); !ok {
		t.Fatalf("expected *RedeclarationError, got %T: %v", err, err)
	}
}

func TestVarRedeclarationIsFine(t *testing.T) {
	names := symbols.NewInterner()
	v := names.Intern("v")

	root := NewFrame(FrameFunction)
	if err := root.Define(v, values.Number(1), false, false, true, false, names); err != nil {
		t.Fatalf("first var Define: %v", err)
	}
	if err := root.Define(v, values.Number(2), false, false, true, false, names); err != nil {
		t.Fatalf("second var Define should not error: %v", err)
	}
}

func TestOuterChainResolution(t *testing.T) {
	names := symbols.NewInterner()
	outerName := names.Intern("outer")

	outer := NewFrame(FrameFunction)
	outer.Define(outerName, values.Number(7), false, false, true, false, names)

	inner := NewEnclosedFrame(FrameBlock, outer)
	v, err := inner.Get(outerName, names)
	if err != nil {
		t.Fatalf("Get through chain: %v", err)
	}
	if n := v.(values.Number); float64(n) != 7 {
		t.Fatalf("got %v, want 7", n)
	}
}

func TestSloppyAutoGlobalAssign(t *testing.T) {
	names := symbols.NewInterner()
	implicit := names.Intern("implicitGlobal")

	global := NewFrame(FrameProgram)
	fn := NewEnclosedFrame(FrameFunction, global)

	if err := fn.Assign(implicit, values.Number(1), true, names); err != nil {
		t.Fatalf("sloppy auto-global assign: %v", err)
	}
	if b, ok := global.GetLocal(implicit); !ok || b.Value.(values.Number) != 1 {
		t.Fatalf("expected implicit global created on the outermost frame")
	}
	if _, ok := fn.GetLocal(implicit); ok {
		t.Fatalf("implicit global should not be bound on the function frame")
	}
}

func TestDeleteBindingRejectsLexical(t *testing.T) {
	names := symbols.NewInterner()
	l := names.Intern("l")

	root := NewFrame(FrameBlock)
	root.Define(l, values.Number(1), true, false, false, false, names)
	root.Initialize(l, values.Number(1))

	deleted, existed := root.DeleteBinding(l)
	if !existed {
		t.Fatalf("expected binding to exist")
	}
	if deleted {
		t.Fatalf("lexical bindings must not be deletable")
	}
}

func TestGetFunctionScopeSkipsBlocks(t *testing.T) {
	fn := NewFrame(FrameFunction)
	block := NewEnclosedFrame(FrameBlock, fn)
	catch := NewEnclosedFrame(FrameCatch, block)

	if got := catch.GetFunctionScope(); got != fn {
		t.Fatalf("GetFunctionScope should skip block/catch frames and find the function frame")
	}
}
