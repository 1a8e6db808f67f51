package converters

import (
	"fmt"
	"strings"

	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/pipe"
	"github.com/kbukum/convpipe/util"
)

// OneOf returns the first element that is not nil. With no arguments the
// elements are checked in index order; otherwise there must be one index
// argument per element, giving the check order.
func OneOf(vs []any, args []string) (any, error) {
	return firstNonNil("OneOf", vs, args)
}

// IfThenElse behaves exactly like OneOf.
func IfThenElse(vs []any, args []string) (any, error) {
	return firstNonNil("IfThenElse", vs, args)
}

func firstNonNil(converter string, vs []any, args []string) (any, error) {
	if err := expectArgs(converter, args, 0, len(vs)); err != nil {
		return nil, err
	}
	order, err := parseOrder(converter, args, len(vs))
	if err != nil {
		return nil, err
	}
	for _, i := range order {
		if !util.IsNil(pipe.Unwrap(vs[i])) {
			return vs[i], nil
		}
	}
	return nil, nil
}

// Join concatenates the string forms of the non-nil elements. The first
// argument is the delimiter, empty by default; the remaining arguments, one
// per element, give the order.
func Join(vs []any, args []string) (any, error) {
	if err := expectArgs("Join", args, 0, 1, len(vs)+1); err != nil {
		return nil, err
	}
	var delim string
	if len(args) > 0 {
		delim = util.Unescape(util.TrimQuotes(args[0]))
		args = args[1:]
	}
	order, err := parseOrder("Join", args, len(vs))
	if err != nil {
		return nil, err
	}

	parts := make([]string, 0, len(vs))
	for _, i := range order {
		v := pipe.Unwrap(vs[i])
		if util.IsNil(v) {
			continue
		}
		parts = append(parts, util.ToString(v))
	}
	return strings.Join(parts, delim), nil
}

// First returns the first element, or nil for an empty collection.
func First(vs []any, args []string) (any, error) {
	if err := expectArgs("First", args, 0); err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, nil
	}
	return vs[0], nil
}

// Last returns the last element, or nil for an empty collection.
func Last(vs []any, args []string) (any, error) {
	if err := expectArgs("Last", args, 0); err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, nil
	}
	return vs[len(vs)-1], nil
}

func parseOrder(converter string, args []string, n int) ([]int, error) {
	order, err := util.ParseOrder(args, n)
	if err != nil {
		return nil, errors.InvalidArgument(converter, fmt.Sprintf("bad order: %v", err))
	}
	return order, nil
}
