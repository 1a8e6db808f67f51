// Package converters provides the built-in converters: coercion, string
// helpers, collection builders and selectors, property access and
// expression evaluation.
//
// Install the provider into a registry before building an engine:
//
//	reg := pipe.NewRegistry()
//	if err := reg.Install(converters.New()); err != nil {
//		return err
//	}
//	engine := pipe.NewEngine(reg)
//	out, err := engine.Run(ctx, `Split "," | Join "-"`, "a,b,c")
//
// Unary converters read through a pipe.Wrapped value, so a resolved property
// can be fed straight into ToUpper or Convert.
package converters
