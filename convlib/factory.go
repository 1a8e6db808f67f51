package convlib

import (
	"context"
	"sync"

	"github.com/kbukum/convpipe/config"
	"github.com/kbukum/convpipe/converters"
	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/expr"
	"github.com/kbukum/convpipe/logger"
	"github.com/kbukum/convpipe/pipe"
	"github.com/kbukum/convpipe/property"
	"github.com/kbukum/convpipe/script"
	"github.com/kbukum/convpipe/script/js"
	"github.com/kbukum/convpipe/script/lua"
)

// Factory creates a provider from configuration. A nil provider with a nil
// error means the provider is disabled.
type Factory func(ctx context.Context, cfg *config.Config, log *logger.Logger) (pipe.Provider, error)

// Factories is an ordered set of named provider factories.
type Factories struct {
	mu        sync.RWMutex
	order     []string
	factories map[string]Factory
}

// NewFactories creates an empty factory set.
func NewFactories() *Factories {
	return &Factories{factories: make(map[string]Factory)}
}

// DefaultFactories returns the builtin, lua, js and paths factories in that
// order.
func DefaultFactories() *Factories {
	f := NewFactories()
	f.mustRegister(converters.ProviderName, builtinFactory)
	f.mustRegister(lua.ProviderName, luaFactory)
	f.mustRegister(js.ProviderName, jsFactory)
	f.mustRegister(property.ProviderName, pathsFactory)
	return f
}

// Register appends a named factory. Names are unique.
func (f *Factories) Register(name string, factory Factory) error {
	if name == "" || factory == nil {
		return errors.InvalidArgument("factories", "factory needs a name and a function")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.factories[name]; exists {
		return errors.AlreadyRegistered(name, "factory")
	}
	f.factories[name] = factory
	f.order = append(f.order, name)
	return nil
}

func (f *Factories) mustRegister(name string, factory Factory) {
	if err := f.Register(name, factory); err != nil {
		panic(err)
	}
}

// Names returns the factory names in install order.
func (f *Factories) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.order...)
}

// Get returns the named factory.
func (f *Factories) Get(name string) (Factory, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	factory, ok := f.factories[name]
	return factory, ok
}

func builtinFactory(_ context.Context, cfg *config.Config, _ *logger.Logger) (pipe.Provider, error) {
	return converters.New(converters.WithEvaluator(expr.NewEvaluator(expr.WithCacheSize(cfg.Engine.CacheSize)))), nil
}

func luaFactory(_ context.Context, cfg *config.Config, log *logger.Logger) (pipe.Provider, error) {
	sc := cfg.Scripts.Lua
	if !sc.Enabled() {
		return nil, nil
	}
	source, err := sc.LoadSource()
	if err != nil {
		return nil, errors.InvalidConfig("scripts.lua").WithCause(err)
	}
	opts := []lua.Option{lua.WithLimits(script.LimitsFromConfig(sc.Limits)), lua.WithLogger(log.WithComponent("script.lua"))}
	if sc.ModulesDir != "" {
		opts = append(opts, lua.WithModulesDir(sc.ModulesDir))
	}
	p, err := lua.New(source, opts...)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func jsFactory(_ context.Context, cfg *config.Config, log *logger.Logger) (pipe.Provider, error) {
	sc := cfg.Scripts.JS
	if !sc.Enabled() {
		return nil, nil
	}
	source, err := sc.LoadSource()
	if err != nil {
		return nil, errors.InvalidConfig("scripts.js").WithCause(err)
	}
	opts := []js.Option{js.WithLimits(script.LimitsFromConfig(sc.Limits)), js.WithLogger(log.WithComponent("script.js"))}
	if sc.ModulesDir != "" {
		opts = append(opts, js.WithModulesDir(sc.ModulesDir))
	}
	p, err := js.New(source, opts...)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func pathsFactory(_ context.Context, cfg *config.Config, _ *logger.Logger) (pipe.Provider, error) {
	if len(cfg.Paths.Globals) == 0 {
		return nil, nil
	}
	return property.NewPathProvider(cfg.Paths.Globals), nil
}
