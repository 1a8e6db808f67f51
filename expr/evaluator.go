package expr

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru"

	"github.com/kbukum/convpipe/errors"
)

// DefaultCacheSize is the number of compiled programs kept by default.
const DefaultCacheSize = 128

const providerName = "expr"

// Evaluator compiles and runs expressions. It is safe for concurrent use.
type Evaluator struct {
	cache *lru.Cache
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCacheSize sets the program cache size; zero disables caching.
func WithCacheSize(n int) Option {
	return func(e *Evaluator) {
		e.cache = nil
		if n > 0 {
			e.cache, _ = lru.New(n)
		}
	}
}

// NewEvaluator creates an Evaluator with a program cache of DefaultCacheSize.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{}
	e.cache, _ = lru.New(DefaultCacheSize)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs text with bindings as its variables. Names that are not
// bound evaluate to nil.
func (e *Evaluator) Evaluate(text string, bindings map[string]any) (any, error) {
	program, err := e.compile(text)
	if err != nil {
		return nil, err
	}
	if bindings == nil {
		bindings = map[string]any{}
	}
	out, err := exprlang.Run(program, bindings)
	if err != nil {
		return nil, errors.ProviderExecution(providerName, err).WithDetail("expression", text)
	}
	return out, nil
}

func (e *Evaluator) compile(text string) (*vm.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(text); ok {
			return cached.(*vm.Program), nil
		}
	}
	program, err := exprlang.Compile(text, exprlang.AllowUndefinedVariables())
	if err != nil {
		return nil, errors.InvalidArgument(providerName, fmt.Sprintf("invalid expression %q", text)).WithCause(err)
	}
	if e.cache != nil {
		e.cache.Add(text, program)
	}
	return program, nil
}
