package pipe

import (
	"fmt"
	"strings"

	"github.com/kbukum/convpipe/errors"
)

// box is a Wrapped value used to observe the end-of-run unwrap.
type box struct{ v any }

func (b box) Origin() any { return b.v }

type funcProvider struct {
	name    string
	install func(b *Binder) error
}

func (p funcProvider) Name() string            { return p.name }
func (p funcProvider) Install(b *Binder) error { return p.install(b) }

func stringArg(args []string, i int) string {
	if i >= len(args) {
		return ""
	}
	return strings.Trim(args[i], `"`)
}

// testProvider registers a handful of small converters.
func testProvider() Provider {
	return funcProvider{name: "test", install: func(b *Binder) error {
		unary := map[string]Converter{
			"ToUpper": func(v any, _ []string) (any, error) {
				s, ok := v.(string)
				if !ok {
					return nil, errors.TypeMismatch("ToUpper", "string", v)
				}
				return strings.ToUpper(s), nil
			},
			"ToString": func(v any, _ []string) (any, error) {
				if v == nil {
					return nil, nil
				}
				return fmt.Sprint(v), nil
			},
			"Split": func(v any, args []string) (any, error) {
				s, ok := v.(string)
				if !ok {
					return nil, errors.TypeMismatch("Split", "string", v)
				}
				parts := strings.Split(s, stringArg(args, 0))
				out := make(Collection, len(parts))
				for i, p := range parts {
					out[i] = p
				}
				return out, nil
			},
			"Const": func(_ any, args []string) (any, error) {
				return stringArg(args, 0), nil
			},
			"Box": func(v any, _ []string) (any, error) {
				return box{v: v}, nil
			},
			"Strings": func(v any, _ []string) (any, error) {
				return []string{fmt.Sprint(v), fmt.Sprint(v)}, nil
			},
			"Fail": func(any, []string) (any, error) {
				return nil, fmt.Errorf("plain failure")
			},
			"Panic": func(any, []string) (any, error) {
				panic("boom")
			},
		}
		for name, fn := range unary {
			if err := b.Register(name, fn); err != nil {
				return err
			}
		}

		nary := map[string]NAryConverter{
			"Join": func(vs []any, args []string) (any, error) {
				parts := make([]string, 0, len(vs))
				for _, v := range vs {
					if v != nil {
						parts = append(parts, fmt.Sprint(v))
					}
				}
				return strings.Join(parts, stringArg(args, 0)), nil
			},
			"First": func(vs []any, _ []string) (any, error) {
				if len(vs) == 0 {
					return nil, nil
				}
				return vs[0], nil
			},
			"Count": func(vs []any, _ []string) (any, error) {
				return len(vs), nil
			},
		}
		for name, fn := range nary {
			if err := b.RegisterNAry(name, fn); err != nil {
				return err
			}
		}
		return nil
	}}
}

func newTestEngine(opts ...Option) *Engine {
	reg := NewRegistry()
	if err := reg.Install(testProvider()); err != nil {
		panic(err)
	}
	return NewEngine(reg, opts...)
}
