// Package bootstrap runs a convpipe process: it validates configuration,
// initializes logging, starts registered components in order, prints a
// startup summary and shuts everything down in reverse order.
//
// Long-running commands use Run, which blocks until SIGINT, SIGTERM or
// context cancellation. One-shot commands use RunTask:
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(observability.NewTelemetry(cfg.ServiceConfig, cfg.Tracing))
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return convert(ctx)
//	})
package bootstrap
