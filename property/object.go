package property

import (
	"reflect"
	"strconv"
	"strings"
)

// Object exposes the properties of a host value.
type Object interface {
	// Origin returns the host value.
	Origin() any
	// Property returns the named property and whether it exists.
	Property(name string) (any, bool)
	// Dynamic reports whether properties are map keys rather than fields.
	Dynamic() bool
}

// NewObject returns the Object view of v. A Node is viewed through its
// origin. String-keyed maps are dynamic; everything else is static.
func NewObject(v any) Object {
	if n, ok := v.(*Node); ok {
		v = n.Origin()
	}
	if isStringKeyedMap(v) {
		return dynamicObject{v: v}
	}
	return staticObject{v: v}
}

// IsDynamic reports whether v, or the origin of a Node, is a string-keyed map.
func IsDynamic(v any) bool {
	return NewObject(v).Dynamic()
}

func isStringKeyedMap(v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

type dynamicObject struct {
	v any
}

func (o dynamicObject) Origin() any   { return o.v }
func (o dynamicObject) Dynamic() bool { return true }

func (o dynamicObject) Property(name string) (any, bool) {
	if m, ok := o.v.(map[string]any); ok {
		val, found := m[name]
		return val, found
	}
	rv := reflect.ValueOf(o.v)
	if rv.IsNil() {
		return nil, false
	}
	val := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
	if !val.IsValid() {
		return nil, false
	}
	return val.Interface(), true
}

type staticObject struct {
	v any
}

func (o staticObject) Origin() any   { return o.v }
func (o staticObject) Dynamic() bool { return false }

func (o staticObject) Property(name string) (any, bool) {
	rv, ok := indirect(reflect.ValueOf(o.v))
	if !ok {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Struct:
		return structField(rv, name)
	case reflect.Slice, reflect.Array, reflect.String:
		if name == "Length" || name == "Count" {
			return rv.Len(), true
		}
		if rv.Kind() == reflect.String {
			return nil, false
		}
		idx, err := strconv.Atoi(name)
		if err != nil {
			return nil, false
		}
		return index(rv, idx)
	}
	return nil, false
}

// indirect follows pointers and interfaces. It returns false for nil.
func indirect(rv reflect.Value) (reflect.Value, bool) {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.IsValid()
}

// structField looks a field up by Go name, then by json or mapstructure tag.
func structField(rv reflect.Value, name string) (any, bool) {
	t := rv.Type()
	if sf, ok := t.FieldByName(name); ok && sf.IsExported() {
		return fieldValue(rv, sf)
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tagName(sf, "json") == name || tagName(sf, "mapstructure") == name {
			return fieldValue(rv, sf)
		}
	}
	return nil, false
}

func fieldValue(rv reflect.Value, sf reflect.StructField) (any, bool) {
	f, err := rv.FieldByIndexErr(sf.Index)
	if err != nil || !f.CanInterface() {
		return nil, false
	}
	return f.Interface(), true
}

func tagName(sf reflect.StructField, key string) string {
	tag := sf.Tag.Get(key)
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

// index reads element i of a slice or array; negative indices count from the end.
func index(rv reflect.Value, i int) (any, bool) {
	if i < 0 {
		i += rv.Len()
	}
	if i < 0 || i >= rv.Len() {
		return nil, false
	}
	return rv.Index(i).Interface(), true
}
