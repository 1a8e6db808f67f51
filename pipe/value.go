package pipe

import "reflect"

// Shape is the runtime shape of a value, used to pick the converter table.
type Shape int

const (
	// ShapeScalar values dispatch to the unary table.
	ShapeScalar Shape = iota
	// ShapeCollection values dispatch to the n-ary table.
	ShapeCollection
)

func (s Shape) String() string {
	if s == ShapeCollection {
		return "collection"
	}
	return "scalar"
}

// Collection is the canonical collection value. Converters that produce a
// collection return a Collection; elements may be nil.
type Collection []any

// Wrapped is implemented by values that stand in for a resolved value while
// a pipeline runs, such as a property node that remembers the object it was
// read from. The engine replaces a Wrapped result with Origin() after the
// last stage.
type Wrapped interface {
	Origin() any
}

// ShapeOf reports the shape of v. Collection, []any and every other slice or
// array type except []byte are collections; everything else, nil included, is
// a scalar.
func ShapeOf(v any) Shape {
	switch v.(type) {
	case nil:
		return ShapeScalar
	case Collection, []any:
		return ShapeCollection
	case []byte, string:
		return ShapeScalar
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return ShapeScalar
		}
		return ShapeCollection
	case reflect.Array:
		return ShapeCollection
	}
	return ShapeScalar
}

// Elements returns the elements of a collection-shaped value as []any. The
// second result is false for scalars.
func Elements(v any) ([]any, bool) {
	switch c := v.(type) {
	case Collection:
		return []any(c), true
	case []any:
		return c, true
	}
	if ShapeOf(v) != ShapeCollection {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Unwrap returns v.Origin() when v is Wrapped, and v otherwise.
func Unwrap(v any) any {
	if w, ok := v.(Wrapped); ok {
		return w.Origin()
	}
	return v
}
