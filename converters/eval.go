package converters

import (
	"fmt"

	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/pipe"
	"github.com/kbukum/convpipe/util"
)

// ExprEval evaluates the expression given as its first argument. A second
// argument names the variable the value is bound to; nil binds as 0.
func (p *Provider) ExprEval(v any, args []string) (any, error) {
	if err := expectArgs("ExprEval", args, 1, 2); err != nil {
		return nil, err
	}
	bindings := map[string]any{}
	if len(args) == 2 {
		v = pipe.Unwrap(v)
		if v == nil {
			v = 0
		}
		bindings[args[1]] = v
	}
	return p.evaluator.Evaluate(util.TrimQuotes(args[0]), bindings)
}

// ExprEvalN evaluates the expression given as its first argument with the
// remaining arguments bound, in order, to the elements.
func (p *Provider) ExprEvalN(vs []any, args []string) (any, error) {
	if len(args) == 0 {
		return nil, errors.InvalidArgument("ExprEvalN", "expression expected")
	}
	names := args[1:]
	bindings := make(map[string]any, len(names))
	for i, name := range names {
		if i >= len(vs) {
			return nil, errors.InvalidArgument("ExprEvalN", fmt.Sprintf("expected value for %s", name))
		}
		bindings[name] = pipe.Unwrap(vs[i])
	}
	return p.evaluator.Evaluate(util.TrimQuotes(args[0]), bindings)
}
