package values

import (
	"math"
	"strconv"
	"strings"
)

// ToBoolean is ECMA-262 ToBoolean: the truthiness test used by
// `if`/`&&`/`||`/ternary (spec.md §4.4).
func ToBoolean(v Value) bool {
	switch x := v.(type) {
	case undefinedValue, nullValue:
		return false
	case Boolean:
		return bool(x)
	case Number:
		return !x.IsNaN() && float64(x) != 0
	case String:
		return len(x.Units) > 0
	default:
		return true // objects, symbols, functions are always truthy
	}
}

// ToNumber is ECMA-262 ToNumber.
func ToNumber(v Value) Number {
	switch x := v.(type) {
	case undefinedValue:
		return Number(math.NaN())
	case nullValue:
		return 0
	case Boolean:
		if x {
			return 1
		}
		return 0
	case Number:
		return x
	case String:
		return stringToNumber(x.String())
	default:
		return Number(math.NaN())
	}
}

func stringToNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if s == "Infinity" || s == "+Infinity" {
		return Number(math.Inf(1))
	}
	if s == "-Infinity" {
		return Number(math.Inf(-1))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number(math.NaN())
	}
	return Number(f)
}

// ToInt32 is ECMA-262 ToInt32, used by the bitwise operators (spec.md
// §4.4 "bitwise uses ToInt32 / ToUint32").
func ToInt32(v Value) int32 {
	return int32(ToUint32(v))
}

// ToUint32 is ECMA-262 ToUint32.
func ToUint32(v Value) uint32 {
	n := float64(ToNumber(v))
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return 0
	}
	n = math.Trunc(n)
	m := math.Mod(n, 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return uint32(m)
}

// ToString is ECMA-262 ToString applied to a non-object value. For
// object values, the evaluator's ToPrimitive/ToString must consult
// `Symbol.toPrimitive`/`toString`/`valueOf` via the realm, which this
// package (with no evaluator dependency) cannot do; callers coerce
// objects before reaching here.
func ToString(v Value) String {
	return NewString(v.String())
}

// ToPropertyKey is ECMA-262 ToPropertyKey for already-primitive values
// (symbols pass through, everything else stringifies) — spec.md §4.4
// "computed keys coerced via ToPropertyKey."
func ToPropertyKey(v Value) PropertyKey {
	if sym, ok := v.(*Symbol); ok {
		return SymbolKey(sym)
	}
	return StringKey(v.String())
}

// ToInteger coerces v to the ECMA-262 integer-or-Infinity used by
// typed-array index arguments and array length manipulation.
func ToInteger(v Value) float64 {
	n := float64(ToNumber(v))
	if math.IsNaN(n) {
		return 0
	}
	if math.IsInf(n, 0) {
		return n
	}
	return math.Trunc(n)
}
