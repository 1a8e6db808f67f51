package lua

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/kbukum/convpipe/component"
	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/logger"
	"github.com/kbukum/convpipe/pipe"
	"github.com/kbukum/convpipe/script"
)

const (
	// ProviderName is the name the provider installs under.
	ProviderName = "lua"
	// ConverterName is the converter registered in both tables.
	ConverterName = "Lua"

	// bytes per registry slot, used to turn MaxMemory into a registry ceiling
	slotSize = 16
)

var errClosed = fmt.Errorf("lua state closed")

// Provider owns one Lua state. It is safe for concurrent use; calls are
// serialized.
type Provider struct {
	mu     sync.Mutex
	state  *lua.LState
	cancel context.CancelFunc
	guard  *script.Guard
	log    *logger.Logger
	opts   options
}

type options struct {
	limits     script.Limits
	modulesDir string
	log        *logger.Logger
}

// Option configures a Provider.
type Option func(*options)

// WithLimits sets the per-call limits.
func WithLimits(l script.Limits) Option {
	return func(o *options) { o.limits = l }
}

// WithModulesDir adds dir to the search path of require.
func WithModulesDir(dir string) Option {
	return func(o *options) { o.modulesDir = dir }
}

// WithLogger sets the logger that receives print output and call failures.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// New creates a Lua state and runs source in it.
func New(source string, opts ...Option) (*Provider, error) {
	o := options{limits: script.DefaultLimits()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("script.lua")
	}

	p := &Provider{
		state: lua.NewState(stateOptions(o.limits)),
		guard: script.NewGuard(ProviderName, o.limits),
		log:   o.log,
		opts:  o,
	}
	p.state.SetGlobal("print", p.state.NewFunction(p.print))
	if o.modulesDir != "" {
		p.addModulesDir(o.modulesDir)
	}

	p.mu.Lock()
	err := p.protect(func() error { return p.state.DoString(source) })
	p.mu.Unlock()
	if err != nil {
		p.state.Close()
		return nil, err
	}
	return p, nil
}

func stateOptions(l script.Limits) lua.Options {
	o := lua.Options{CallStackSize: l.MaxCallDepth}
	if l.MaxMemory > 0 {
		o.RegistrySize = lua.RegistrySize
		o.RegistryMaxSize = int(l.MaxMemory / slotSize)
	}
	return o
}

func (p *Provider) addModulesDir(dir string) {
	pkg, ok := p.state.GetGlobal("package").(*lua.LTable)
	if !ok {
		return
	}
	current := lua.LVAsString(pkg.RawGetString("path"))
	pattern := filepath.Join(dir, "?.lua")
	pkg.RawSetString("path", lua.LString(pattern+";"+current))
}

func (p *Provider) print(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	p.log.Info(strings.Join(parts, "\t"), logger.Fields(logger.FieldProvider, ProviderName))
	return 0
}

func (p *Provider) Name() string { return ProviderName }

// Install registers Lua in both tables.
func (p *Provider) Install(b *pipe.Binder) error {
	if err := b.Register(ConverterName, p.Call); err != nil {
		return err
	}
	return b.RegisterNAry(ConverterName, p.CallN)
}

// Call runs `Lua fn arg...` against a single value.
func (p *Provider) Call(v any, args []string) (any, error) {
	return p.invoke(args, pipe.Unwrap(v))
}

// CallN runs `Lua fn arg...` against the elements of a collection.
func (p *Provider) CallN(vs []any, args []string) (any, error) {
	return p.invoke(args, pipe.Collection(vs))
}

func (p *Provider) invoke(args []string, v any) (any, error) {
	if len(args) == 0 {
		return nil, errors.InvalidArgument(ConverterName, "expect function name")
	}
	name := args[0]

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == nil {
		return nil, errors.ProviderExecution(ProviderName, errClosed)
	}

	fn, ok := p.state.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return nil, errors.ScriptFunctionNotFound(ProviderName, name)
	}

	L := p.state
	err := p.protect(func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, toLua(L, v), stringsTable(L, args[1:]))
	})
	if err != nil {
		p.log.Debug("lua call failed", logger.Fields("function", name, logger.FieldError, err.Error()))
		return nil, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return fromLua(ret)
}

// protect runs fn under the guard with a cancellable context on the state.
// Callers hold p.mu.
func (p *Provider) protect(fn func() error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.state.SetContext(ctx)
	defer p.state.RemoveContext()

	err := p.guard.Run(func(string) { cancel() }, fn)
	if err == nil || errors.Is(err, errors.ErrCodeResourceLimitExceeded) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "stack overflow"), strings.Contains(msg, "callstack overflow"):
		return p.guard.LimitExceeded(script.LimitCallDepth, err)
	case strings.Contains(msg, "registry overflow"):
		return p.guard.LimitExceeded(script.LimitMemory, err)
	}
	return errors.ProviderExecution(ProviderName, err)
}

// Limits returns the per-call limits.
func (p *Provider) Limits() script.Limits { return p.guard.Limits() }

// Close releases the Lua state. Calls after Close fail.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != nil {
		p.state.Close()
		p.state = nil
	}
	return nil
}

// Start is a no-op; the state is created by New.
func (p *Provider) Start(context.Context) error { return nil }

// Stop closes the state.
func (p *Provider) Stop(context.Context) error { return p.Close() }

// Health reports unhealthy once the state is closed.
func (p *Provider) Health(context.Context) component.Health {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == nil {
		return component.Health{Name: ProviderName, Status: component.StatusUnhealthy, Message: "closed"}
	}
	return component.Health{Name: ProviderName, Status: component.StatusHealthy}
}

// Describe implements component.Describable.
func (p *Provider) Describe() component.Description {
	details := p.guard.Limits().String()
	if p.opts.modulesDir != "" {
		details += " modules=" + p.opts.modulesDir
	}
	return component.Description{Name: "Lua scripts", Type: "script", Details: details}
}
