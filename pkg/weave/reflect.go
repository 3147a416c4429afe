package weave

import (
	"fmt"
	"math"
	"reflect"

	"github.com/alexisbeaulieu97/advisor/pkg/advice"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Reflect starts a builder for the dynamic type of sample with one instance
// method per exported method of that type. Supported result shapes are (),
// (T), (error), (T, error) and (T1, ..., Tn, error); several values are
// returned as []any.
func Reflect(sample any) (*Builder, error) {
	if sample == nil {
		return nil, fmt.Errorf("reflect: sample is nil")
	}
	typ := reflect.TypeOf(sample)
	b := NewBuilder(typ.String())
	for i := 0; i < typ.NumMethod(); i++ {
		m := typ.Method(i)
		b.Method(m.Name, methodBody(typ, m))
	}
	return b, b.Err()
}

// StaticFunc defines a static method backed by an ordinary Go function.
func (b *Builder) StaticFunc(name string, fn any) *Builder {
	body, err := funcBody(fn)
	if err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("%s.%s: %w", b.class, name, err)
		}
		return b
	}
	return b.Static(name, body)
}

// ConstructorFunc defines the constructor with an ordinary Go function such
// as NewAccount.
func (b *Builder) ConstructorFunc(fn any) *Builder {
	body, err := funcBody(fn)
	if err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("%s.%s: %w", b.class, ConstructorName, err)
		}
		return b
	}
	return b.Constructor(body)
}

func methodBody(recvType reflect.Type, m reflect.Method) Body {
	fnType := m.Type
	return func(target any, args advice.Args) (any, error) {
		recv := reflect.ValueOf(target)
		if !recv.IsValid() || !recv.Type().AssignableTo(recvType) {
			return nil, fmt.Errorf("receiver %T is not a %s", target, recvType)
		}
		in, err := convertArgs(fnType, 1, args)
		if err != nil {
			return nil, err
		}
		return unpackResults(m.Func.Call(append([]reflect.Value{recv}, in...)))
	}
}

func funcBody(fn any) (func(args advice.Args) (any, error), error) {
	value := reflect.ValueOf(fn)
	if !value.IsValid() || value.Kind() != reflect.Func || value.IsNil() {
		return nil, fmt.Errorf("expected a function, got %T", fn)
	}
	fnType := value.Type()
	return func(args advice.Args) (any, error) {
		in, err := convertArgs(fnType, 0, args)
		if err != nil {
			return nil, err
		}
		return unpackResults(value.Call(in))
	}, nil
}

// convertArgs maps args onto the parameters of fnType starting at offset,
// which skips the receiver of method expressions.
func convertArgs(fnType reflect.Type, offset int, args advice.Args) ([]reflect.Value, error) {
	params := fnType.NumIn() - offset
	variadic := fnType.IsVariadic()
	if variadic {
		if len(args) < params-1 {
			return nil, fmt.Errorf("expected at least %d arguments, got %d", params-1, len(args))
		}
	} else if len(args) != params {
		return nil, fmt.Errorf("expected %d arguments, got %d", params, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var paramType reflect.Type
		if variadic && i >= params-1 {
			paramType = fnType.In(fnType.NumIn() - 1).Elem()
		} else {
			paramType = fnType.In(offset + i)
		}
		v, err := convertArg(arg, paramType)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = v
	}
	return in, nil
}

func convertArg(arg any, paramType reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch paramType.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
			return reflect.Zero(paramType), nil
		default:
			return reflect.Value{}, fmt.Errorf("nil is not a valid %s", paramType)
		}
	}

	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(paramType) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(paramType.Kind()) && v.Type().ConvertibleTo(paramType) && fits(v, paramType) {
		return v.Convert(paramType), nil
	}
	return reflect.Value{}, fmt.Errorf("%T is not assignable to %s", arg, paramType)
}

// fits reports whether numeric v converts to t without changing its value.
// Floats only go into integer types when they have no fractional part.
func fits(v reflect.Value, t reflect.Type) bool {
	zero := reflect.Zero(t)
	switch {
	case isInt(v.Kind()):
		n := v.Int()
		switch {
		case isInt(t.Kind()):
			return !zero.OverflowInt(n)
		case isUint(t.Kind()):
			return n >= 0 && !zero.OverflowUint(uint64(n))
		}
		return true
	case isUint(v.Kind()):
		u := v.Uint()
		switch {
		case isInt(t.Kind()):
			return u <= math.MaxInt64 && !zero.OverflowInt(int64(u))
		case isUint(t.Kind()):
			return !zero.OverflowUint(u)
		}
		return true
	default:
		f := v.Float()
		if !isInt(t.Kind()) && !isUint(t.Kind()) {
			return !zero.OverflowFloat(f)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return false
		}
		if isInt(t.Kind()) {
			return f >= math.MinInt64 && f < math.MaxInt64 && !zero.OverflowInt(int64(f))
		}
		return f >= 0 && f < math.MaxUint64 && !zero.OverflowUint(uint64(f))
	}
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func unpackResults(out []reflect.Value) (any, error) {
	var err error
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if last := out[n-1]; !last.IsNil() {
			err = last.Interface().(error)
		}
		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	default:
		values := make([]any, len(out))
		for i, v := range out {
			values[i] = v.Interface()
		}
		return values, err
	}
}
