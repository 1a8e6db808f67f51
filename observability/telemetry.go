package observability

import (
	"context"
	goerrors "errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/convpipe/component"
	"github.com/kbukum/convpipe/config"
)

// TelemetryComponent is the component name of the OTLP exporters.
const TelemetryComponent = "telemetry"

// NewTelemetry returns a lazy component that installs the global tracer and
// meter providers on Start and flushes them on Stop.
func NewTelemetry(svc config.ServiceConfig, cfg config.TracingConfig) *component.BaseLazyComponent {
	var (
		tp *sdktrace.TracerProvider
		mp *sdkmetric.MeterProvider
	)

	c := component.NewBaseLazyComponent(TelemetryComponent, func(ctx context.Context) error {
		tcfg := DefaultTracerConfig(svc.Name)
		tcfg.ServiceVersion = svc.Version
		tcfg.Environment = svc.Environment
		tcfg.Endpoint = cfg.Endpoint
		tcfg.Insecure = cfg.Insecure
		tcfg.SampleRate = cfg.SampleRate

		var err error
		if tp, err = InitTracer(ctx, &tcfg); err != nil {
			return err
		}

		mcfg := DefaultMeterConfig(svc.Name)
		mcfg.ServiceVersion = svc.Version
		mcfg.Environment = svc.Environment
		mcfg.Endpoint = cfg.Endpoint
		mcfg.Insecure = cfg.Insecure
		mcfg.Interval = cfg.MetricsInterval
		if mp, err = InitMeter(ctx, &mcfg); err != nil {
			return goerrors.Join(err, tp.Shutdown(ctx))
		}
		return nil
	})

	return c.
		WithCloser(func(ctx context.Context) error {
			var errs []error
			if mp != nil {
				errs = append(errs, mp.Shutdown(ctx))
			}
			if tp != nil {
				errs = append(errs, tp.Shutdown(ctx))
			}
			return goerrors.Join(errs...)
		}).
		WithDescription(component.Description{
			Name:    "Telemetry",
			Type:    "otlp",
			Details: fmt.Sprintf("endpoint=%s sample_rate=%.2f", cfg.Endpoint, cfg.SampleRate),
		})
}
