package converters

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/expr"
	"github.com/kbukum/convpipe/pipe"
)

// ProviderName is the name the built-in provider installs under.
const ProviderName = "builtin"

// Provider installs the built-in converters.
type Provider struct {
	evaluator *expr.Evaluator
}

// Option configures a Provider.
type Option func(*Provider)

// WithEvaluator sets the evaluator used by ExprEval and ExprEvalN.
func WithEvaluator(e *expr.Evaluator) Option {
	return func(p *Provider) { p.evaluator = e }
}

// New creates the built-in provider.
func New(opts ...Option) *Provider {
	p := &Provider{}
	for _, opt := range opts {
		opt(p)
	}
	if p.evaluator == nil {
		p.evaluator = expr.NewEvaluator()
	}
	return p
}

func (p *Provider) Name() string { return ProviderName }

// Install registers every built-in converter.
func (p *Provider) Install(b *pipe.Binder) error {
	unary := []struct {
		name string
		fn   pipe.Converter
	}{
		{"Convert", Convert},
		{"ToString", ToString},
		{"ToLower", ToLower},
		{"ToUpper", ToUpper},
		{"AsFirstItemOfArray", AsFirstItemOfArray},
		{"AsArrayWithOneItem", AsArrayWithOneItem},
		{"Split", Split},
		{"ConstValue", ConstValue},
		{"Property", Property},
		{"ItemProperty", ItemProperty},
		{"ExprEval", p.ExprEval},
	}
	for _, c := range unary {
		if err := b.Register(c.name, c.fn); err != nil {
			return err
		}
	}

	nary := []struct {
		name string
		fn   pipe.NAryConverter
	}{
		{"OneOf", OneOf},
		{"Join", Join},
		{"IfThenElse", IfThenElse},
		{"ExprEvalN", p.ExprEvalN},
		{"First", First},
		{"Last", Last},
	}
	for _, c := range nary {
		if err := b.RegisterNAry(c.name, c.fn); err != nil {
			return err
		}
	}
	return nil
}

// expectArgs fails unless len(args) is one of counts.
func expectArgs(converter string, args []string, counts ...int) error {
	if slices.Contains(counts, len(args)) {
		return nil
	}
	want := make([]string, len(counts))
	for i, n := range counts {
		want[i] = strconv.Itoa(n)
	}
	text := want[len(want)-1]
	if len(want) > 1 {
		text = strings.Join(want[:len(want)-1], ", ") + " or " + text
	}
	return errors.InvalidArgument(converter, fmt.Sprintf("expect %s arguments, got %d", text, len(args)))
}
