package asynccps

import (
	"testing"

	"github.com/solarframe/ecmawalk/internal/values"
)

func TestRunResolvesImmediatelyWhenNoAwait(t *testing.T) {
	jobs := &Jobs{}
	p := Run(jobs, nil, func(await func(values.Value) (values.Value, error)) (values.Value, error) {
		return values.Number(42), nil
	})
	jobs.Drain()
	if p.State != values.PromiseFulfilled {
		t.Fatalf("expected fulfilled, got state %v", p.State)
	}
	if n, ok := p.Result.(values.Number); !ok || float64(n) != 42 {
		t.Fatalf("got %#v, want 42", p.Result)
	}
}

func TestRunAwaitsAndResumesInOrder(t *testing.T) {
	jobs := &Jobs{}
	var order []string

	inner := values.NewPromise(nil)
	p := Run(jobs, nil, func(await func(values.Value) (values.Value, error)) (values.Value, error) {
		order = append(order, "before-await")
		v, err := await(inner)
		if err != nil {
			return nil, err
		}
		order = append(order, "after-await")
		return v, nil
	})

	if len(order) != 1 || order[0] != "before-await" {
		t.Fatalf("expected the body to run synchronously up to its first await, got %v", order)
	}

	inner.Resolve(values.Number(7), jobs.Schedule)
	jobs.Drain()

	if len(order) != 2 || order[1] != "after-await" {
		t.Fatalf("expected resumption after the awaited promise settles, got %v", order)
	}
	if p.State != values.PromiseFulfilled || p.Result.(values.Number) != 7 {
		t.Fatalf("expected the outer promise to fulfill with 7, got state=%v result=%#v", p.State, p.Result)
	}
}

func TestRunPropagatesRejectionThroughAwait(t *testing.T) {
	jobs := &Jobs{}
	inner := values.NewPromise(nil)
	var caught values.Value

	p := Run(jobs, nil, func(await func(values.Value) (values.Value, error)) (values.Value, error) {
		_, err := await(inner)
		if tv, ok := err.(*ThrownValue); ok {
			caught = tv.Value
			return values.NewString("handled"), nil
		}
		return nil, err
	})

	inner.Reject(values.NewString("boom"), jobs.Schedule)
	jobs.Drain()

	if caught == nil || caught.String() != "boom" {
		t.Fatalf("expected the rejection reason to surface as a catchable throw, got %#v", caught)
	}
	if p.State != values.PromiseFulfilled {
		t.Fatalf("expected the outer promise to fulfill once the rejection was handled, got state %v", p.State)
	}
}
