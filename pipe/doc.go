// Package pipe parses and executes pipe expressions.
//
// An expression is a sequence of stages separated by '|'. Each stage names a
// converter followed by positional arguments:
//
//	Split "," | Join "-"
//	Property Address | ItemProperty City | ToUpper
//
// A Registry holds two independent converter tables. Unary converters take a
// single value; n-ary converters take a collection. Before every stage the
// Engine inspects the current value and dispatches to the table matching its
// shape, so a pipeline may move between the two tables as values are split
// and joined. A Wrapped result is replaced by its origin once, after the last
// stage.
//
//	reg := pipe.NewRegistry()
//	if err := reg.Install(converters.New()); err != nil {
//		return err
//	}
//	engine := pipe.NewEngine(reg, pipe.WithCacheSize(256))
//	out, err := engine.Run(ctx, `Split "," | Join "-"`, "a,b,c") // "a-b-c"
package pipe
