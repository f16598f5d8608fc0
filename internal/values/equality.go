package values

import "math"

// SameValue implements ECMA-262 SameValue: like StrictEquals but NaN
// equals NaN and +0/-0 are distinguished (spec.md §3.1).
func SameValue(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	an, aNum := a.(Number)
	bn, bNum := b.(Number)
	if aNum && bNum {
		if an.IsNaN() && bn.IsNaN() {
			return true
		}
		if float64(an) == 0 && float64(bn) == 0 {
			return math.Signbit(float64(an)) == math.Signbit(float64(bn))
		}
		return float64(an) == float64(bn)
	}
	return strictEqualsNonNumber(a, b)
}

// StrictEquals implements ECMA-262 `===`: NaN ≠ NaN, +0 == -0 (spec.md
// §3.1).
func StrictEquals(a, b Value) bool {
	an, aNum := a.(Number)
	bn, bNum := b.(Number)
	if aNum && bNum {
		return float64(an) == float64(bn) // Go float == already gives NaN!=NaN, +0==-0
	}
	return strictEqualsNonNumber(a, b)
}

func strictEqualsNonNumber(a, b Value) bool {
	switch av := a.(type) {
	case undefinedValue:
		_, ok := b.(undefinedValue)
		return ok
	case nullValue:
		_, ok := b.(nullValue)
		return ok
	case Boolean:
		bv, ok := b.(Boolean)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av.String() == bv.String()
	case *Symbol:
		bv, ok := b.(*Symbol)
		return ok && av == bv
	default:
		// Objects/arrays/functions: reference (identity) equality.
		return a == b
	}
}

// LooseEquals implements ECMA-262 Abstract Equality Comparison (`==`):
// number/string coercions per the comparison table (spec.md §3.1). It
// does not handle the object operand case (ToPrimitive), which needs
// the evaluator/realm; callers coerce objects before calling this for
// the `object == primitive` cases.
func LooseEquals(a, b Value) bool {
	ta, tb := a.Type(), b.Type()
	if ta == tb {
		if ta == "number" {
			return float64(a.(Number)) == float64(b.(Number))
		}
		return strictEqualsNonNumber(a, b)
	}

	if IsNullish(a) && IsNullish(b) {
		return true
	}
	if IsNullish(a) || IsNullish(b) {
		return false
	}

	switch {
	case ta == "number" && tb == "string":
		return float64(a.(Number)) == float64(ToNumber(b))
	case ta == "string" && tb == "number":
		return float64(ToNumber(a)) == float64(b.(Number))
	case ta == "boolean":
		return LooseEquals(Number(ToNumber(a)), b)
	case tb == "boolean":
		return LooseEquals(a, Number(ToNumber(b)))
	}
	// number/string vs object requires ToPrimitive, handled by the
	// evaluator before delegating here.
	return false
}
