// Package expr evaluates the arithmetic and boolean expressions used by the
// ExprEval and ExprEvalN converters. Expressions use the expr-lang syntax:
//
//	ev := expr.NewEvaluator()
//	out, err := ev.Evaluate("price * qty + 1", map[string]any{"price": 2, "qty": 3}) // 7
//
// Compiled programs are cached by source text.
package expr
