// Package observability provides OpenTelemetry tracing and metrics for
// convpipe.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
// Every pipeline run is recorded as a SpanRun span and counted by RunMetrics:
//
//	metrics, err := observability.NewRunMetrics(observability.Meter("convpipe"))
//	metrics.RecordRun(ctx, "scalar", "", time.Since(start))
//
// Health:
//
//	health := observability.NewServiceHealth("convpipe", version.Get().Version)
//	for _, h := range components.HealthAll(ctx) {
//		health.AddComponent(h)
//	}
package observability
