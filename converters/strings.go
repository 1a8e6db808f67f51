package converters

import (
	"reflect"
	"strings"

	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/pipe"
	"github.com/kbukum/convpipe/util"
)

// ToString returns the string form of the value. Nil stays nil.
func ToString(v any, _ []string) (any, error) {
	v = pipe.Unwrap(v)
	if util.IsNil(v) {
		return nil, nil
	}
	return util.ToString(v), nil
}

// ToLower lower-cases a string value.
func ToLower(v any, _ []string) (any, error) {
	return mapString("ToLower", v, strings.ToLower)
}

// ToUpper upper-cases a string value.
func ToUpper(v any, _ []string) (any, error) {
	return mapString("ToUpper", v, strings.ToUpper)
}

func mapString(converter string, v any, fn func(string) string) (any, error) {
	v = pipe.Unwrap(v)
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, errors.TypeMismatch(converter, "string", v)
	}
	return fn(s), nil
}

// Split splits a string on the delimiter given as its only argument. The
// delimiter may be quoted and may contain backslash escapes. An empty
// delimiter yields the whole string as a single element.
func Split(v any, args []string) (any, error) {
	if err := expectArgs("Split", args, 1); err != nil {
		return nil, err
	}
	v = pipe.Unwrap(v)
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, errors.TypeMismatch("Split", "string", v)
	}

	delim := util.Unescape(util.TrimQuotes(strings.TrimSpace(args[0])))
	if delim == "" {
		return pipe.Collection{s}, nil
	}
	parts := strings.Split(s, delim)
	out := make(pipe.Collection, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

// ConstValue ignores the value and returns the literal of its only argument.
func ConstValue(_ any, args []string) (any, error) {
	if err := expectArgs("ConstValue", args, 1); err != nil {
		return nil, err
	}
	return util.Literal(args[0]), nil
}

// AsArrayWithOneItem wraps the value in a one-element slice of its own type.
func AsArrayWithOneItem(v any, _ []string) (any, error) {
	v = pipe.Unwrap(v)
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	out := reflect.MakeSlice(reflect.SliceOf(rv.Type()), 1, 1)
	out.Index(0).Set(rv)
	return out.Interface(), nil
}

// AsFirstItemOfArray wraps a string, or nil, in a one-element collection.
func AsFirstItemOfArray(v any, _ []string) (any, error) {
	v = pipe.Unwrap(v)
	if v == nil {
		return pipe.Collection{nil}, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, errors.TypeMismatch("AsFirstItemOfArray", "string", v)
	}
	return pipe.Collection{s}, nil
}
