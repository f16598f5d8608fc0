package generator

import (
	"testing"

	"github.com/solarframe/ecmawalk/internal/values"
)

func TestNextSequenceAndFinalReturn(t *testing.T) {
	m := New(false, func(yield func(values.Value) (values.Value, error)) (values.Value, error) {
		if _, err := yield(values.Number(1)); err != nil {
			return nil, err
		}
		if _, err := yield(values.Number(2)); err != nil {
			return nil, err
		}
		return values.Number(99), nil
	})

	r1 := m.Next(values.Undefined)
	if r1.Done || r1.Value.(values.Number) != 1 {
		t.Fatalf("step 1: got %+v", r1)
	}
	r2 := m.Next(values.Undefined)
	if r2.Done || r2.Value.(values.Number) != 2 {
		t.Fatalf("step 2: got %+v", r2)
	}
	r3 := m.Next(values.Undefined)
	if !r3.Done || r3.Value.(values.Number) != 99 {
		t.Fatalf("step 3 (final): got %+v", r3)
	}
	if !m.Completed() {
		t.Fatalf("expected machine to be completed")
	}
}

func TestThrowAtSuspensionPointIsCatchableByBody(t *testing.T) {
	m := New(false, func(yield func(values.Value) (values.Value, error)) (values.Value, error) {
		_, err := yield(values.Number(1))
		if tv, ok := err.(*ThrowValue); ok {
			return tv.Value, nil // "caught" and returned directly for this test
		}
		return values.Undefined, nil
	})

	m.Next(values.Undefined)
	result := m.Throw(values.Number(42))
	if !result.Done {
		t.Fatalf("expected completion after the body catches and returns")
	}
	if n, ok := result.Value.(values.Number); !ok || float64(n) != 42 {
		t.Fatalf("expected the caught value 42 to be returned, got %+v", result)
	}
}

func TestReturnForcesEarlyCompletion(t *testing.T) {
	ranFinally := false
	m := New(false, func(yield func(values.Value) (values.Value, error)) (values.Value, error) {
		defer func() { ranFinally = true }()
		_, err := yield(values.Number(1))
		return nil, err
	})

	m.Next(values.Undefined)
	result := m.Return(values.Number(7))
	if !result.Done || result.Value.(values.Number) != 7 {
		t.Fatalf("expected forced-return completion with value 7, got %+v", result)
	}
	if !ranFinally {
		t.Fatalf("expected the body's defer (standing in for a finally block) to run")
	}
}

func TestResumingAfterCompletionIsANoOp(t *testing.T) {
	m := New(false, func(yield func(values.Value) (values.Value, error)) (values.Value, error) {
		return values.Number(1), nil
	})
	m.Next(values.Undefined)
	if !m.Completed() {
		t.Fatalf("expected completion after one step with no yields")
	}
	again := m.Next(values.Undefined)
	if !again.Done || !values.IsUndefined(again.Value) {
		t.Fatalf("expected a done/undefined result from resuming a completed generator, got %+v", again)
	}
}
