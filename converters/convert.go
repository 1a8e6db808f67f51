package converters

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/pipe"
)

type coercion func(any) (any, error)

// targets is the closed set of Convert targets. Decimal has no native Go
// type and converts to float64.
var targets = map[string]coercion{
	"ToBoolean":  func(v any) (any, error) { return cast.ToBoolE(v) },
	"ToByte":     unsignedTarget[uint8](8),
	"ToSByte":    signedTarget[int8](8),
	"ToInt16":    signedTarget[int16](16),
	"ToInt32":    signedTarget[int32](32),
	"ToInt64":    signedTarget[int64](64),
	"ToUInt16":   unsignedTarget[uint16](16),
	"ToUInt32":   unsignedTarget[uint32](32),
	"ToUInt64":   unsignedTarget[uint64](64),
	"ToSingle":   func(v any) (any, error) { return cast.ToFloat32E(v) },
	"ToDouble":   func(v any) (any, error) { return cast.ToFloat64E(v) },
	"ToDecimal":  func(v any) (any, error) { return cast.ToFloat64E(v) },
	"ToString":   func(v any) (any, error) { return cast.ToStringE(v) },
	"ToDateTime": func(v any) (any, error) { return cast.ToTimeE(v) },
}

// Targets returns the names accepted by Convert.
func Targets() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Convert coerces the value to the target named by its only argument.
// Unknown targets and values of a kind no target accepts are METHOD_NOT_FOUND;
// values of the right kind that do not parse are TYPE_MISMATCH. Nil passes
// through.
func Convert(v any, args []string) (any, error) {
	if err := expectArgs("Convert", args, 1); err != nil {
		return nil, err
	}
	method := args[0]
	fn, ok := targets[method]
	if !ok {
		return nil, errors.MethodNotFound(method, v)
	}

	v = pipe.Unwrap(v)
	if v == nil {
		return nil, nil
	}
	if !coercible(v) {
		return nil, errors.MethodNotFound(method, v)
	}
	out, err := fn(v)
	if err != nil {
		return nil, errors.TypeMismatch("Convert", method, v).WithCause(err)
	}
	return out, nil
}

// coercible reports whether v is of a primitive kind the targets accept.
func coercible(v any) bool {
	switch v.(type) {
	case []byte, time.Time, time.Duration:
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func signedTarget[T int8 | int16 | int32 | int64](bits int) coercion {
	return func(v any) (any, error) {
		n, err := toSigned(v, bits)
		if err != nil {
			return nil, err
		}
		return T(n), nil
	}
}

func unsignedTarget[T uint8 | uint16 | uint32 | uint64](bits int) coercion {
	return func(v any) (any, error) {
		n, err := toUnsigned(v, bits)
		if err != nil {
			return nil, err
		}
		return T(n), nil
	}
}

// toSigned converts v to an integer that fits in bits. Strings are parsed
// in base 10 and floats are rounded half to even.
func toSigned(v any, bits int) (int64, error) {
	lo := int64(-1) << (bits - 1)
	hi := -(lo + 1)
	switch reflect.ValueOf(v).Kind() {
	case reflect.String:
		return strconv.ParseInt(strings.TrimSpace(reflect.ValueOf(v).String()), 10, bits)
	case reflect.Float32, reflect.Float64:
		f, err := roundFloat(v)
		if err != nil {
			return 0, err
		}
		if f < float64(lo) || f >= -float64(lo) {
			return 0, overflow(v, bits)
		}
		return int64(f), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := cast.ToUint64E(v)
		if err != nil {
			return 0, err
		}
		if u > uint64(hi) {
			return 0, overflow(v, bits)
		}
		return int64(u), nil
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, overflow(v, bits)
	}
	return n, nil
}

// toUnsigned is toSigned for unsigned targets; negative values fail.
func toUnsigned(v any, bits int) (uint64, error) {
	hi := uint64(math.MaxUint64) >> (64 - bits)
	var u uint64
	switch reflect.ValueOf(v).Kind() {
	case reflect.String:
		return strconv.ParseUint(strings.TrimSpace(reflect.ValueOf(v).String()), 10, bits)
	case reflect.Float32, reflect.Float64:
		f, err := roundFloat(v)
		if err != nil {
			return 0, err
		}
		if f < 0 || f >= math.Ldexp(1, bits) {
			return 0, overflow(v, bits)
		}
		return uint64(f), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := cast.ToUint64E(v)
		if err != nil {
			return 0, err
		}
		u = n
	default:
		n, err := cast.ToInt64E(v)
		if err != nil {
			return 0, err
		}
		if n < 0 {
			return 0, overflow(v, bits)
		}
		u = uint64(n)
	}
	if u > hi {
		return 0, overflow(v, bits)
	}
	return u, nil
}

func roundFloat(v any) (float64, error) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not a finite number", v)
	}
	return math.RoundToEven(f), nil
}

func overflow(v any, bits int) error {
	return fmt.Errorf("%v is out of range for a %d-bit integer", v, bits)
}
