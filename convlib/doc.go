// Package convlib assembles a ready-to-use converter library from
// configuration.
//
// New installs the built-in converters and, depending on what the
// configuration enables, the Lua, JavaScript and path providers, then builds
// a pipe.Engine over the resulting registry:
//
//	lib, err := convlib.New(ctx, &cfg)
//	if err != nil {
//	    return err
//	}
//	defer lib.Close(ctx)
//
//	out, err := lib.Engine().Run(ctx, `Split "," | Join "-"`, "a,b,c")
//
// Providers come from named factories run in install order. Extra factories
// are added with WithFactory and run after the defaults, so their converters
// shadow earlier ones of the same name.
package convlib
