package iterator

import (
	"errors"
	"testing"

	"github.com/solarframe/ecmawalk/internal/values"
)

func resultObj(v values.Value, done bool) *values.Object {
	o := values.NewObject(nil)
	o.Set(values.StringKey("value"), v)
	o.Set(values.StringKey("done"), values.Boolean(done))
	return o
}

func invoke(callee, this values.Value, args []values.Value) (values.Value, error) {
	c, ok := callee.(values.Callable)
	if !ok {
		return nil, errors.New("callee is not callable")
	}
	return c.Invoke(args, this)
}

// newFakeSource builds a real iterator object (with real "next"/"return"
// method properties) backed by vals, mirroring what the evaluator
// installs for an array/generator iterator at runtime.
func newFakeSource(vals []values.Value) (returnHits *int, src *Source) {
	pos := 0
	hits := 0
	iterObj := values.NewObject(nil)
	iterObj.Set(values.StringKey("next"), &values.HostFunction{
		Name: "next",
		Fn: func(this values.Value, args []values.Value) (values.Value, error) {
			if pos >= len(vals) {
				return resultObj(values.Undefined, true), nil
			}
			v := vals[pos]
			pos++
			return resultObj(v, false), nil
		},
	})
	iterObj.Set(values.StringKey("return"), &values.HostFunction{
		Name: "return",
		Fn: func(this values.Value, args []values.Value) (values.Value, error) {
			hits++
			return resultObj(values.Undefined, true), nil
		},
	})
	return &hits, &Source{Iterator: iterObj, Invoke: invoke}
}

func nextMethodOf(src *Source) values.Value {
	obj := src.Iterator.(*values.Object)
	v, _ := obj.Get(values.StringKey("next"), obj, func(c, t values.Value, a []values.Value) (values.Value, error) { return invoke(c, t, a) })
	return v
}

func TestForEachVisitsAllWithoutCloseOnExhaustion(t *testing.T) {
	hits, src := newFakeSource([]values.Value{values.Number(1), values.Number(2), values.Number(3)})

	var seen []float64
	err := src.ForEach(nextMethodOf(src), func(v values.Value) (bool, error) {
		seen = append(seen, float64(v.(values.Number)))
		return false, nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Fatalf("got %v, want [1 2 3]", seen)
	}
	if *hits != 0 {
		t.Fatalf("expected no IteratorClose call on natural exhaustion, got %d", *hits)
	}
}

func TestForEachClosesOnBreak(t *testing.T) {
	hits, src := newFakeSource([]values.Value{values.Number(1), values.Number(2), values.Number(3)})

	var seen []float64
	err := src.ForEach(nextMethodOf(src), func(v values.Value) (bool, error) {
		seen = append(seen, float64(v.(values.Number)))
		return v.(values.Number) == 2, nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("expected early break after 2 elements, got %v", seen)
	}
	if *hits != 1 {
		t.Fatalf("expected IteratorClose on break, got %d calls", *hits)
	}
}

func TestForEachClosesOnBodyErrorAndPreservesOriginalError(t *testing.T) {
	hits, src := newFakeSource([]values.Value{values.Number(1), values.Number(2)})
	bodyErr := errors.New("boom")

	err := src.ForEach(nextMethodOf(src), func(v values.Value) (bool, error) {
		return false, bodyErr
	})
	if err != bodyErr {
		t.Fatalf("expected the body's error to propagate, got %v", err)
	}
	if *hits != 1 {
		t.Fatalf("expected IteratorClose even when the body throws, got %d calls", *hits)
	}
}

func TestCollectWithLimitDoesNotClose(t *testing.T) {
	hits, src := newFakeSource([]values.Value{values.Number(1), values.Number(2), values.Number(3)})

	got, err := src.Collect(nextMethodOf(src), 2)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d elements, want 2", len(got))
	}
	if *hits != 0 {
		t.Fatalf("expected no IteratorClose call from Collect, got %d", *hits)
	}
}
