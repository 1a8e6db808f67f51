package converters

import (
	"reflect"

	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/pipe"
	"github.com/kbukum/convpipe/property"
	"github.com/kbukum/convpipe/util"
)

// Property resolves the property named by its only argument and returns it
// as a *property.Node, so a following Property stage still sees where the
// value came from.
func Property(v any, args []string) (any, error) {
	if err := expectArgs("Property", args, 1); err != nil {
		return nil, err
	}
	name := util.Literal(args[0])
	node, ok := property.Get(v, name)
	if !ok {
		return nil, errors.PropertyNotFound(name, pipe.Unwrap(v))
	}
	return node, nil
}

// ItemProperty resolves a property of a string-keyed map. Other iterable
// values (slices, arrays, strings, maps with other keys) pass through
// unchanged; anything else is TYPE_MISMATCH.
func ItemProperty(v any, args []string) (any, error) {
	if err := expectArgs("ItemProperty", args, 1); err != nil {
		return nil, err
	}
	if !iterable(pipe.Unwrap(v)) {
		return nil, errors.TypeMismatch("ItemProperty", "iterable", pipe.Unwrap(v))
	}
	if !property.IsDynamic(v) {
		return v, nil
	}
	return Property(v, args)
}

func iterable(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return true
	}
	return false
}
