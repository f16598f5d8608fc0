// Package iterator drives the ECMAScript iteration protocol used by
// for-of, array/call spread, and destructuring (spec.md §4.8), with a
// single chokepoint (ForEach) that runs IteratorClose whenever the loop
// body exits early — break/return/throw out of the loop body. Normal
// exhaustion and an error thrown by the iterator's own next() leave the
// iterator unclosed, as ECMA-262's IteratorClose rules specify.
//
// Grounded on array.go's iteration-helper idioms (a small driver loop
// around a value-producing step function); ECMA-262's %IteratorPrototype%
// protocol (next/return/throw methods, IteratorClose) has no DWScript
// analog and is implemented fresh here.
package iterator

import (
	"github.com/solarframe/ecmawalk/internal/errorsx"
	"github.com/solarframe/ecmawalk/internal/values"
)

// Invoker calls a callable value with the given this/args — supplied by
// the evaluator so this package never needs to import it.
type Invoker func(callee values.Value, this values.Value, args []values.Value) (values.Value, error)

// Source is an opened iterator: the object returned by `obj[Symbol.iterator]()`
// (or `Symbol.asyncIterator` for for-await-of), together with the
// invoker used to call its next/return methods.
type Source struct {
	Iterator values.Value // the iterator object itself, passed as `this` to next/return
	Invoke   Invoker
}

// Open calls iterableSymbolMethod (already looked up by the evaluator
// via Symbol.iterator/Symbol.asyncIterator) on iterable and wraps the
// result.
func Open(iterable values.Value, iterableSymbolMethod values.Value, invoke Invoker) (*Source, error) {
	if iterableSymbolMethod == nil || values.IsUndefined(iterableSymbolMethod) || values.IsNull(iterableSymbolMethod) {
		return nil, errorsx.New(errorsx.CategoryType, "value is not iterable")
	}
	iter, err := invoke(iterableSymbolMethod, iterable, nil)
	if err != nil {
		return nil, err
	}
	return &Source{Iterator: iter, Invoke: invoke}, nil
}

// Step is one `{value, done}` IteratorResult.
type Step struct {
	Value values.Value
	Done  bool
}

// next calls the iterator's `next` method and unpacks the result
// object's `value`/`done` properties (spec.md §4.8 "IteratorStep").
func (s *Source) next(nextMethod values.Value, arg values.Value) (Step, error) {
	var args []values.Value
	if arg != nil {
		args = []values.Value{arg}
	}
	result, err := s.Invoke(nextMethod, s.Iterator, args)
	if err != nil {
		return Step{}, err
	}
	obj, ok := result.(*values.Object)
	if !ok {
		return Step{}, errorsx.New(errorsx.CategoryType, "iterator result is not an object")
	}
	doneVal, err := obj.Get(values.StringKey("done"), obj, s.invokeOnGet())
	if err != nil {
		return Step{}, err
	}
	value, err := obj.Get(values.StringKey("value"), obj, s.invokeOnGet())
	if err != nil {
		return Step{}, err
	}
	return Step{Value: value, Done: values.ToBoolean(doneVal)}, nil
}

func (s *Source) invokeOnGet() func(values.Value, values.Value, []values.Value) (values.Value, error) {
	return func(callee, this values.Value, args []values.Value) (values.Value, error) {
		return s.Invoke(callee, this, args)
	}
}

// Close implements IteratorClose: call the iterator's `return` method
// (if it has one) and discard the result, swallowing a "no such
// method" situation but NOT swallowing an error the return method
// itself throws unless overridden by completionErr (spec.md §4.8
// "IteratorClose": "if the loop is exiting due to an error, that error
// takes priority over any error from calling return").
func (s *Source) Close(completionErr error) error {
	obj, ok := s.Iterator.(*values.Object)
	if !ok {
		return completionErr
	}
	returnMethod, err := obj.Get(values.StringKey("return"), obj, s.invokeOnGet())
	if err != nil {
		if completionErr != nil {
			return completionErr
		}
		return err
	}
	if returnMethod == nil || values.IsUndefined(returnMethod) || values.IsNull(returnMethod) {
		return completionErr
	}
	_, closeErr := s.Invoke(returnMethod, s.Iterator, nil)
	if completionErr != nil {
		return completionErr
	}
	return closeErr
}

// ForEach drives the full for-of loop body: pulls successive steps via
// nextMethod and calls body for each non-done value, running Close
// exactly once when body breaks or returns an error (spec.md §4.8
// "for-of"); exhaustion and a next() error return without calling Close.
// body returns (brk, err): brk stops the loop (break/return out of the
// loop body), err propagates (a thrown exception from the body).
func (s *Source) ForEach(nextMethod values.Value, body func(v values.Value) (brk bool, err error)) (err error) {
	for {
		step, stepErr := s.next(nextMethod, nil)
		if stepErr != nil {
			return stepErr // the iterator itself threw; no IteratorClose (it never validly opened this step)
		}
		if step.Done {
			return nil
		}
		brk, bodyErr := body(step.Value)
		if bodyErr != nil {
			return s.Close(bodyErr)
		}
		if brk {
			return s.Close(nil)
		}
	}
}

// Collect drains the iterator fully into a slice, used by spread
// (`[...x]`, `f(...x)`) and array-destructuring-without-rest (spec.md
// §4.8 "spread", "destructuring"). limit, if >= 0, stops after that many
// elements without calling Close early (used by array-pattern
// destructuring, which must NOT close the iterator just because it only
// consumed a prefix — subsequent code may still hold a reference to it
// via a rest element).
func (s *Source) Collect(nextMethod values.Value, limit int) ([]values.Value, error) {
	var out []values.Value
	for limit < 0 || len(out) < limit {
		step, err := s.next(nextMethod, nil)
		if err != nil {
			return nil, err
		}
		if step.Done {
			return out, nil
		}
		out = append(out, step.Value)
	}
	return out, nil
}
