package convlib

import (
	"context"
	"fmt"

	"github.com/kbukum/convpipe/component"
	"github.com/kbukum/convpipe/config"
	"github.com/kbukum/convpipe/logger"
	"github.com/kbukum/convpipe/pipe"
)

// Library is an assembled converter library: a sealed registry, the engine
// over it and the components owning interpreter state.
type Library struct {
	engine     *pipe.Engine
	providers  []string
	components *component.Registry
	log        *logger.Logger
}

type options struct {
	factories  *Factories
	extra      []namedFactory
	log        *logger.Logger
	engineOpts []pipe.Option
}

type namedFactory struct {
	name    string
	factory Factory
}

// Option configures New.
type Option func(*options)

// WithFactories replaces the default factory set.
func WithFactories(f *Factories) Option {
	return func(o *options) { o.factories = f }
}

// WithFactory adds a factory that runs after the configured set.
func WithFactory(name string, f Factory) Option {
	return func(o *options) { o.extra = append(o.extra, namedFactory{name: name, factory: f}) }
}

// WithLogger sets the library logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithEngineOptions passes options through to pipe.NewEngine.
func WithEngineOptions(opts ...pipe.Option) Option {
	return func(o *options) { o.engineOpts = append(o.engineOpts, opts...) }
}

// New builds a Library from cfg. Every provider a factory returns is
// installed in factory order; providers that are also components are
// tracked and released by Close. On error everything created so far is
// released.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Library, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.factories == nil {
		o.factories = DefaultFactories()
	}
	if o.log == nil {
		o.log = logger.Get("convlib")
	}

	factories := o.factories
	if len(o.extra) > 0 {
		factories = NewFactories()
		for _, name := range o.factories.Names() {
			f, _ := o.factories.Get(name)
			factories.mustRegister(name, f)
		}
		for _, nf := range o.extra {
			if err := factories.Register(nf.name, nf.factory); err != nil {
				return nil, err
			}
		}
	}

	lib := &Library{
		components: component.NewRegistry(),
		log:        o.log,
	}
	lib.components.SetLogger(o.log)

	reg := pipe.NewRegistry()
	reg.SetLogger(o.log.WithComponent("pipe.registry"))

	for _, name := range factories.Names() {
		factory, _ := factories.Get(name)
		p, err := factory(ctx, cfg, o.log)
		if err != nil {
			lib.release(ctx)
			return nil, fmt.Errorf("creating provider %s: %w", name, err)
		}
		if p == nil {
			o.log.Debug("provider disabled", logger.Fields(logger.FieldProvider, name))
			continue
		}
		if c, ok := p.(component.Component); ok {
			if err := lib.components.Register(c); err != nil {
				_ = c.Stop(ctx)
				lib.release(ctx)
				return nil, err
			}
			// interpreters are live once constructed
			lib.components.MarkStarted(c.Name())
		}
		if err := reg.Install(p); err != nil {
			lib.release(ctx)
			return nil, err
		}
		lib.providers = append(lib.providers, p.Name())
	}

	engineOpts := append([]pipe.Option{
		pipe.WithCacheSize(cfg.Engine.CacheSize),
		pipe.WithLogger(o.log.WithComponent("pipe")),
	}, o.engineOpts...)
	lib.engine = pipe.NewEngine(reg, engineOpts...)

	o.log.Info("converter library ready", logger.Fields(
		"providers", lib.providers,
		"unary", len(reg.Names(pipe.TableUnary)),
		"nary", len(reg.Names(pipe.TableNAry)),
	))
	return lib, nil
}

// Engine returns the engine over the sealed registry.
func (l *Library) Engine() *pipe.Engine {
	return l.engine
}

// Registry returns the sealed converter registry.
func (l *Library) Registry() *pipe.Registry {
	return l.engine.Registry()
}

// Providers returns the names of the installed providers in install order.
func (l *Library) Providers() []string {
	return append([]string(nil), l.providers...)
}

// Components returns the registry of providers that own resources.
func (l *Library) Components() *component.Registry {
	return l.components
}

// Run is a shorthand for Engine().Run.
func (l *Library) Run(ctx context.Context, text string, value any) (any, error) {
	return l.engine.Run(ctx, text, value)
}

// RunCollection is a shorthand for Engine().RunCollection.
func (l *Library) RunCollection(ctx context.Context, text string, values []any) (any, error) {
	return l.engine.RunCollection(ctx, text, values)
}

// Health reports the health of every tracked provider.
func (l *Library) Health(ctx context.Context) []component.Health {
	return l.components.HealthAll(ctx)
}

// Close releases the tracked providers in reverse install order.
func (l *Library) Close(ctx context.Context) error {
	return l.components.StopAll(ctx)
}

func (l *Library) release(ctx context.Context) {
	if err := l.components.StopAll(ctx); err != nil {
		l.log.Warn("releasing providers failed", logger.Fields(logger.FieldError, err.Error()))
	}
}
