package exprlang

import (
	"fmt"
	"reflect"
	"strings"
)

// asInt64 reports whether v is an integral number and returns it widened.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

// asFloat64 reports whether v is any numeric value and returns it as a
// float64.
func asFloat64(v any) (float64, bool) {
	if n, ok := asInt64(v); ok {
		return float64(n), true
	}
	switch f := v.(type) {
	case float32:
		return float64(f), true
	case float64:
		return f, true
	}
	return 0, false
}

func isNumber(v any) bool {
	_, ok := asFloat64(v)
	return ok
}

// truthy converts a value to a boolean condition: bool passes through, nil
// is false, numbers are true when nonzero, and the strings "true"/"false"
// convert case-insensitively. Anything else is an error rather than a
// guess.
func truthy(v any) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return false, fmt.Errorf("string %q is not a boolean", b)
	}
	if f, ok := asFloat64(v); ok {
		return f != 0, nil
	}
	return false, fmt.Errorf("value of type %T is not a boolean", v)
}

// equal compares two values with numeric cross-type awareness.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := asFloat64(a); ok {
		if fb, ok := asFloat64(b); ok {
			return fa == fb
		}
		return false
	}
	if reflect.TypeOf(a).Comparable() && reflect.TypeOf(b).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// compare orders two values: -1, 0 or +1. Numbers compare across types,
// strings lexicographically; anything else is a type mismatch.
func compare(a, b any) (int, error) {
	if fa, ok := asFloat64(a); ok {
		if fb, ok := asFloat64(b); ok {
			switch {
			case fa < fb:
				return -1, nil
			case fa > fb:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

// arith applies an arithmetic operator. Two integral operands stay in
// int64 arithmetic (truncating division); any float operand promotes both
// to float64. The + operator concatenates when either side is a string.
func arith(op string, a, b any) (any, error) {
	if op == "+" {
		if sa, ok := a.(string); ok {
			return sa + stringify(b), nil
		}
		if sb, ok := b.(string); ok {
			return stringify(a) + sb, nil
		}
	}

	ia, aInt := asInt64(a)
	ib, bInt := asInt64(b)
	if aInt && bInt {
		switch op {
		case "+":
			return ia + ib, nil
		case "-":
			return ia - ib, nil
		case "*":
			return ia * ib, nil
		case "/":
			if ib == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return ia / ib, nil
		case "%":
			if ib == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return ia % ib, nil
		}
	}

	fa, aNum := asFloat64(a)
	fb, bNum := asFloat64(b)
	if !aNum || !bNum {
		return nil, fmt.Errorf("operator %q needs numeric operands, got %T and %T", op, a, b)
	}
	switch op {
	case "+":
		return fa + fb, nil
	case "-":
		return fa - fb, nil
	case "*":
		return fa * fb, nil
	case "/":
		if fb == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return fa / fb, nil
	case "%":
		return nil, fmt.Errorf("operator %% needs integer operands, got %T and %T", a, b)
	}
	return nil, fmt.Errorf("unknown operator %q", op)
}

// stringify renders a value for string concatenation.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
