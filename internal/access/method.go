package access

import (
	"fmt"
	"reflect"
	"strings"
)

// CallMethod invokes a host method on v by case-insensitive name with the
// given arguments. The second result reports whether a matching method
// exists. Methods may return (T) or (T, error).
func CallMethod(v any, name string, args []any) (any, bool, error) {
	if v == nil {
		return nil, false, nil
	}
	method, ok := findMethod(reflect.ValueOf(v), name)
	if !ok {
		return nil, false, nil
	}
	out, err := invoke(method, name, args)
	return out, true, err
}

// callZeroArg treats a zero-argument method as a computed member read.
func callZeroArg(rv reflect.Value, name string) (any, bool, error) {
	method, ok := findMethod(rv, name)
	if !ok || method.Type().NumIn() != 0 {
		return nil, false, nil
	}
	out, err := invoke(method, name, nil)
	return out, true, err
}

// findMethod looks a method up case-insensitively, checking the pointer
// method set when v is addressable through a fresh pointer.
func findMethod(rv reflect.Value, name string) (reflect.Value, bool) {
	if !rv.IsValid() {
		return reflect.Value{}, false
	}
	candidates := []reflect.Value{rv}
	if rv.Kind() != reflect.Pointer && rv.CanAddr() {
		candidates = append(candidates, rv.Addr())
	}
	for _, candidate := range candidates {
		t := candidate.Type()
		for i := 0; i < t.NumMethod(); i++ {
			if strings.EqualFold(t.Method(i).Name, name) {
				return candidate.Method(i), true
			}
		}
	}
	return reflect.Value{}, false
}

// invoke calls a method value with loose argument conversion.
func invoke(method reflect.Value, name string, args []any) (any, error) {
	mt := method.Type()
	if mt.IsVariadic() {
		return nil, fmt.Errorf("variadic method %q is not supported", name)
	}
	if mt.NumIn() != len(args) {
		return nil, fmt.Errorf("method %q expects %d arguments, got %d", name, mt.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := mt.In(i)
		av := reflect.ValueOf(arg)
		switch {
		case arg == nil:
			in[i] = reflect.Zero(want)
		case av.Type().AssignableTo(want):
			in[i] = av
		case av.Type().ConvertibleTo(want):
			in[i] = av.Convert(want)
		default:
			return nil, fmt.Errorf("method %q argument %d: cannot use %T as %s", name, i, arg, want)
		}
	}

	out := method.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return resultValue(out[0]), nil
	case 2:
		if err, ok := out[1].Interface().(error); ok && err != nil {
			return nil, fmt.Errorf("method %q: %w", name, err)
		}
		return resultValue(out[0]), nil
	default:
		return nil, fmt.Errorf("method %q returns %d values, want at most 2", name, len(out))
	}
}

func resultValue(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
