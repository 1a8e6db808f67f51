package main

import (
	"context"
	"fmt"
	"io"

	"github.com/kbukum/convpipe/bootstrap"
	"github.com/kbukum/convpipe/component"
	"github.com/kbukum/convpipe/config"
	"github.com/kbukum/convpipe/convlib"
	"github.com/kbukum/convpipe/logger"
	"github.com/kbukum/convpipe/mapping"
	"github.com/kbukum/convpipe/observability"
	"github.com/kbukum/convpipe/pipe"
	"github.com/kbukum/convpipe/version"
)

// process is an assembled convpipe process: the application lifecycle and
// the converter library it serves.
type process struct {
	app *bootstrap.App
	lib *convlib.Library
}

// buildProcess assembles the process around a loaded configuration.
// One-shot commands pass quiet to keep the startup summary off stderr.
func buildProcess(ctx context.Context, cfg *config.Config, stderr io.Writer, quiet bool) (*process, error) {
	if cfg.Version == "" {
		cfg.Version = version.GetShortVersion()
	}

	opts := []bootstrap.Option{bootstrap.WithSummaryWriter(stderr)}
	if quiet {
		opts = append(opts, bootstrap.WithQuietStartup())
	}
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}

	// telemetry is registered first so it starts before and stops after
	// everything that emits spans
	if cfg.Tracing.Enabled {
		if err := app.RegisterComponent(observability.NewTelemetry(cfg.ServiceConfig, cfg.Tracing)); err != nil {
			return nil, err
		}
	}

	lib, err := convlib.New(ctx, cfg, convlib.WithLogger(app.Logger.WithComponent("convlib")))
	if err != nil {
		return nil, err
	}
	app.OnStart(providersHealthy(lib))
	app.OnReady(func(context.Context) error {
		app.Logger.Info("converters ready", logger.Fields(
			"providers", lib.Providers(),
			"converters", len(lib.Registry().List()),
		))
		return nil
	})
	app.OnStop(lib.Close)
	trackProviders(app.Summary, lib.Registry())

	return &process{app: app, lib: lib}, nil
}

// providersHealthy fails startup when a script provider can no longer run.
func providersHealthy(lib *convlib.Library) bootstrap.Hook {
	return func(ctx context.Context) error {
		for _, h := range lib.Health(ctx) {
			if h.Status == component.StatusUnhealthy {
				return fmt.Errorf("provider %s is unhealthy: %s", h.Name, h.Message)
			}
		}
		return nil
	}
}

// loadMapper builds a mapper from path, falling back to mapping.file.
func (p *process) loadMapper(path string) (*mapping.Mapper, error) {
	if path == "" {
		path = p.app.Cfg.Mapping.File
	}
	if path == "" {
		return nil, nil
	}
	m, err := mapping.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading mapping %s: %w", path, err)
	}
	p.app.Summary.TrackMapping(path, len(m.Rules))
	return mapping.NewMapper(p.lib.Engine(), m, mapping.WithLogger(p.app.Logger.WithComponent("mapping"))), nil
}

func trackProviders(s *bootstrap.Summary, reg *pipe.Registry) {
	type counts struct{ unary, nary int }
	var order []string
	byProvider := make(map[string]*counts)
	for _, info := range reg.List() {
		c, ok := byProvider[info.Provider]
		if !ok {
			c = &counts{}
			byProvider[info.Provider] = c
			order = append(order, info.Provider)
		}
		if info.Table == pipe.TableNAry {
			c.nary++
		} else {
			c.unary++
		}
	}
	for _, name := range order {
		s.TrackProvider(name, byProvider[name].unary, byProvider[name].nary)
	}
}
