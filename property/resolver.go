package property

import (
	"fmt"
	"reflect"
	"sort"

	lru "github.com/hashicorp/golang-lru"

	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/pipe"
)

// Resolver resolves paths against values and a fixed set of named globals.
// It is safe for concurrent use.
type Resolver struct {
	globals map[string]any
	paths   *lru.Cache
}

// pathCacheSize bounds the number of parsed paths kept per Resolver.
const pathCacheSize = 512

// NewResolver creates a Resolver. globals are addressable as $name.
func NewResolver(globals map[string]any) *Resolver {
	paths, _ := lru.New(pathCacheSize)
	return &Resolver{globals: globals, paths: paths}
}

// Globals returns the names of the configured globals, sorted.
func (r *Resolver) Globals() []string {
	names := make([]string, 0, len(r.globals))
	for name := range r.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve reads path from object. Without a wildcard the single value is
// returned and a missing step is PROPERTY_NOT_FOUND. With a wildcard, steps
// that do not exist on a particular match are skipped; multi returns every
// match as a pipe.Collection, otherwise the first match or nil.
func (r *Resolver) Resolve(object any, path string, multi bool) (any, error) {
	p, err := r.parse(path)
	if err != nil {
		return nil, errors.InvalidArgument("path", err.Error())
	}

	root := pipe.Unwrap(object)
	if p.global != "" {
		g, ok := r.globals[p.global]
		if !ok {
			return nil, errors.PropertyNotFound("$"+p.global, object)
		}
		root = g
	}

	current := []any{root}
	fanned := false
	for _, seg := range p.segments {
		next := make([]any, 0, len(current))
		for _, v := range current {
			if seg.kind == segmentWildcard {
				next = append(next, expand(v)...)
				continue
			}
			val, ok := step(v, seg)
			if !ok {
				if fanned {
					continue
				}
				return nil, errors.PropertyNotFound(path, v).WithDetail("segment", seg.String())
			}
			next = append(next, val)
		}
		if seg.kind == segmentWildcard {
			fanned = true
		}
		current = next
	}

	if !fanned {
		return current[0], nil
	}
	if multi {
		return pipe.Collection(current), nil
	}
	if len(current) == 0 {
		return nil, nil
	}
	return current[0], nil
}

func (r *Resolver) parse(path string) (Path, error) {
	if cached, ok := r.paths.Get(path); ok {
		return cached.(Path), nil
	}
	p, err := ParsePath(path)
	if err != nil {
		return Path{}, err
	}
	r.paths.Add(path, p)
	return p, nil
}

func step(v any, seg segment) (any, bool) {
	v = pipe.Unwrap(v)
	obj := NewObject(v)
	switch seg.kind {
	case segmentKey:
		return obj.Property(seg.key)
	case segmentIndex:
		if obj.Dynamic() {
			return obj.Property(seg.key)
		}
		elems, ok := pipe.Elements(v)
		if !ok {
			return nil, false
		}
		i := seg.index
		if i < 0 {
			i += len(elems)
		}
		if i < 0 || i >= len(elems) {
			return nil, false
		}
		return elems[i], true
	}
	return nil, false
}

// expand returns the elements of a collection or the values of a map in key
// order. Scalars expand to nothing.
func expand(v any) []any {
	v = pipe.Unwrap(v)
	if elems, ok := pipe.Elements(v); ok {
		return elems
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = rv.MapIndex(k).Interface()
	}
	return out
}
