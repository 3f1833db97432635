package access

import (
	"fmt"
	"reflect"
	"strings"
)

// Capability classifies how a value can be traversed. Resolution logic
// depends only on the capability, never on concrete types.
type Capability int

const (
	// CapNone means the value supports no member or index access.
	CapNone Capability = iota

	// CapOrderedMap is any map; string keys are matched case-insensitively.
	CapOrderedMap

	// CapIndexedSequence is a slice, array or string with positional and
	// from-end indexing.
	CapIndexedSequence

	// CapStructuredRecord is a struct with field and zero-argument method
	// reads.
	CapStructuredRecord
)

// CapabilityOf reports the traversal capability of v.
func CapabilityOf(v any) Capability {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return CapNone
	}
	switch rv.Kind() {
	case reflect.Map:
		return CapOrderedMap
	case reflect.Slice, reflect.Array, reflect.String:
		return CapIndexedSequence
	case reflect.Struct:
		return CapStructuredRecord
	default:
		return CapNone
	}
}

// Member resolves a named member of v: a map entry, a struct field, a
// zero-argument method used as a computed read, or the synthetic
// length/count property shared by strings, sequences and maps. Names match
// case-insensitively. The second result reports whether the member exists;
// an error is returned only when access itself fails.
func Member(v any, name string) (any, bool, error) {
	if v == nil {
		return nil, false, nil
	}

	// Methods are looked up on the original value first so pointer
	// receivers stay reachable.
	if out, ok, err := callZeroArg(reflect.ValueOf(v), name); ok || err != nil {
		return out, ok, err
	}

	rv := indirect(reflect.ValueOf(v))
	if rv.IsValid() {
		switch rv.Kind() {
		case reflect.Map:
			if out, ok, err := mapMember(rv, name); ok || err != nil {
				return out, ok, err
			}
		case reflect.Struct:
			field := rv.FieldByNameFunc(func(f string) bool {
				return strings.EqualFold(f, name)
			})
			if field.IsValid() && field.CanInterface() {
				return field.Interface(), true, nil
			}
		}
	}

	// Synthetic members never shadow host ones.
	if strings.EqualFold(name, "length") || strings.EqualFold(name, "count") {
		if n, ok := Length(v); ok {
			return int64(n), true, nil
		}
	}
	return nil, false, nil
}

// mapMember reads a map entry, trying the exact key first and then a
// case-insensitive scan over string keys.
func mapMember(rv reflect.Value, name string) (any, bool, error) {
	keyType := rv.Type().Key()
	if keyType.Kind() == reflect.String {
		exact := rv.MapIndex(reflect.ValueOf(name).Convert(keyType))
		if exact.IsValid() {
			return exact.Interface(), true, nil
		}
		iter := rv.MapRange()
		for iter.Next() {
			if strings.EqualFold(iter.Key().String(), name) {
				return iter.Value().Interface(), true, nil
			}
		}
		return nil, false, nil
	}
	if keyType.Kind() == reflect.Interface {
		exact := rv.MapIndex(reflect.ValueOf(name))
		if exact.IsValid() {
			return exact.Interface(), true, nil
		}
		iter := rv.MapRange()
		for iter.Next() {
			if s, ok := iter.Key().Interface().(string); ok && strings.EqualFold(s, name) {
				return iter.Value().Interface(), true, nil
			}
		}
	}
	return nil, false, nil
}

// Index resolves v[idx]. Maps accept any key; sequences accept integer
// positions, with negative positions counting from the end.
func Index(v any, idx any) (any, error) {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return nil, fmt.Errorf("cannot index nil value")
	}

	switch rv.Kind() {
	case reflect.Map:
		if s, ok := idx.(string); ok {
			out, found, err := mapMember(rv, s)
			if err != nil {
				return nil, err
			}
			if !found {
				return nil, nil
			}
			return out, nil
		}
		key := reflect.ValueOf(idx)
		if !key.Type().AssignableTo(rv.Type().Key()) {
			if key.Type().ConvertibleTo(rv.Type().Key()) {
				key = key.Convert(rv.Type().Key())
			} else {
				return nil, fmt.Errorf("key type %T does not match map key type %s", idx, rv.Type().Key())
			}
		}
		out := rv.MapIndex(key)
		if !out.IsValid() {
			return nil, nil
		}
		return out.Interface(), nil

	case reflect.Slice, reflect.Array, reflect.String:
		n, ok := asInt(idx)
		if !ok {
			return nil, fmt.Errorf("sequence index must be an integer, got %T", idx)
		}
		length := rv.Len()
		if n < 0 {
			n += length
		}
		if n < 0 || n >= length {
			return nil, fmt.Errorf("index %v out of range for length %d", idx, length)
		}
		if rv.Kind() == reflect.String {
			return string(rv.String()[n]), nil
		}
		return rv.Index(n).Interface(), nil

	default:
		return nil, fmt.Errorf("value of type %T is not indexable", v)
	}
}

// FromEnd resolves the from-end index ^n, where ^1 is the last element.
func FromEnd(v any, n int) (any, error) {
	length, ok := Length(v)
	if !ok {
		return nil, fmt.Errorf("value of type %T has no length", v)
	}
	// Bounds-checked here: a stale ^n must not re-enter the negative
	// from-end path in Index and wrap around.
	if n < 1 || n > length {
		return nil, fmt.Errorf("from-end index ^%d out of range for length %d", n, length)
	}
	return Index(v, length-n)
}

// Length returns the element count of a sequence, map or string.
func Length(v any) (int, bool) {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.String, reflect.Map:
		return rv.Len(), true
	default:
		return 0, false
	}
}

// AsSequence materializes a slice or array as []any for the bounded
// collection operations. Strings are not treated as sequences here.
func AsSequence(v any) ([]any, bool) {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	default:
		return nil, false
	}
}

// indirect unwraps pointers and interfaces.
func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case float32:
		if float64(n) == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}
