package js

import (
	"context"
	goerrors "errors"
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"

	"github.com/kbukum/convpipe/component"
	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/logger"
	"github.com/kbukum/convpipe/pipe"
	"github.com/kbukum/convpipe/script"
)

const (
	// ProviderName is the name the provider installs under.
	ProviderName = "js"
	// ConverterName is the converter registered in both tables.
	ConverterName = "Js"
)

var errClosed = fmt.Errorf("js runtime closed")

// Provider owns one goja runtime. It is safe for concurrent use; calls are
// serialized.
type Provider struct {
	mu    sync.Mutex
	vm    *goja.Runtime
	guard *script.Guard
	log   *logger.Logger
	opts  options
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

// WithModulesDir lets scripts require() modules from dir.
func WithModulesDir(dir string) Option {
	return func(o *options) { o.modulesDir = dir }
}

// WithLogger sets the logger that receives console output and call failures.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// New creates a runtime and runs source in it.
func New(source string, opts ...Option) (*Provider, error) {
	o := options{limits: script.DefaultLimits()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("script.js")
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	if o.limits.MaxCallDepth > 0 {
		vm.SetMaxCallStackSize(o.limits.MaxCallDepth)
	}

	var registryOpts []require.Option
	if o.modulesDir != "" {
		registryOpts = append(registryOpts, require.WithGlobalFolders(o.modulesDir))
	}
	registry := require.NewRegistry(registryOpts...)
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(printer{log: o.log}))
	registry.Enable(vm)
	console.Enable(vm)

	p := &Provider{
		vm:    vm,
		guard: script.NewGuard(ProviderName, o.limits),
		log:   o.log,
		opts:  o,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.protect(func() error {
		_, err := vm.RunString(source)
		return err
	}); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) Name() string { return ProviderName }

// Install registers Js in both tables.
func (p *Provider) Install(b *pipe.Binder) error {
	if err := b.Register(ConverterName, p.Call); err != nil {
		return err
	}
	return b.RegisterNAry(ConverterName, p.CallN)
}

// Call runs `Js fn arg...` against a single value.
func (p *Provider) Call(v any, args []string) (any, error) {
	return p.invoke(args, pipe.Unwrap(v))
}

// CallN runs `Js fn arg...` against the elements of a collection.
func (p *Provider) CallN(vs []any, args []string) (any, error) {
	return p.invoke(args, vs)
}

func (p *Provider) invoke(args []string, v any) (any, error) {
	if len(args) == 0 {
		return nil, errors.InvalidArgument(ConverterName, "expect function name")
	}
	name := args[0]

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.vm == nil {
		return nil, errors.ProviderExecution(ProviderName, errClosed)
	}

	fn, ok := goja.AssertFunction(p.vm.Get(name))
	if !ok {
		return nil, errors.ScriptFunctionNotFound(ProviderName, name)
	}

	callArgs := make([]goja.Value, 0, len(args))
	callArgs = append(callArgs, p.vm.ToValue(toJS(v)))
	for _, a := range args[1:] {
		callArgs = append(callArgs, p.vm.ToValue(a))
	}

	var ret goja.Value
	err := p.protect(func() error {
		var err error
		ret, err = fn(goja.Undefined(), callArgs...)
		return err
	})
	if err != nil {
		p.log.Debug("js call failed", logger.Fields("function", name, logger.FieldError, err.Error()))
		return nil, err
	}
	return fromJS(ret), nil
}

// protect runs fn under the guard. Callers hold p.mu.
func (p *Provider) protect(fn func() error) error {
	err := p.guard.Run(func(limit string) { p.vm.Interrupt(limit) }, fn)
	p.vm.ClearInterrupt()
	if err == nil || errors.Is(err, errors.ErrCodeResourceLimitExceeded) {
		return err
	}
	var overflow *goja.StackOverflowError
	if goerrors.As(err, &overflow) {
		return p.guard.LimitExceeded(script.LimitCallDepth, err)
	}
	return errors.ProviderExecution(ProviderName, err)
}

func toJS(v any) any {
	if c, ok := v.(pipe.Collection); ok {
		return []any(c)
	}
	return v
}

func fromJS(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	out := v.Export()
	if s, ok := out.([]any); ok {
		return pipe.Collection(s)
	}
	return out
}

// Limits returns the per-call limits.
func (p *Provider) Limits() script.Limits { return p.guard.Limits() }

// Close releases the runtime. Calls after Close fail.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vm = nil
	return nil
}

// Start is a no-op; the runtime is created by New.
func (p *Provider) Start(context.Context) error { return nil }

// Stop closes the runtime.
func (p *Provider) Stop(context.Context) error { return p.Close() }

// Health reports unhealthy once the runtime is closed.
func (p *Provider) Health(context.Context) component.Health {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.vm == nil {
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
	return component.Description{Name: "JavaScript scripts", Type: "script", Details: details}
}

// printer sends console output to the logger.
type printer struct {
	log *logger.Logger
}

func (pr printer) Log(s string)   { pr.log.Info(s, logger.Fields(logger.FieldProvider, ProviderName)) }
func (pr printer) Warn(s string)  { pr.log.Warn(s, logger.Fields(logger.FieldProvider, ProviderName)) }
func (pr printer) Error(s string) { pr.log.Error(s, logger.Fields(logger.FieldProvider, ProviderName)) }
