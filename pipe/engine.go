package pipe

import (
	"context"
	"fmt"
	"maps"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/logger"
	"github.com/kbukum/convpipe/observability"
)

const instrumentationName = "github.com/kbukum/convpipe/pipe"

// Engine parses pipe expressions and runs them against values. It seals the
// Registry it is built from. An Engine is safe for concurrent use as long as
// the registered converters are.
type Engine struct {
	registry *Registry
	cache    *lru.Cache
	log      *logger.Logger
	tracer   trace.Tracer
	metrics  *observability.RunMetrics
}

// NewEngine creates an Engine over reg and seals reg.
func NewEngine(reg *Registry, opts ...Option) *Engine {
	o := engineOptions{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("pipe")
	}
	if o.tracer == nil {
		o.tracer = observability.Tracer(instrumentationName)
	}
	if o.meter == nil {
		o.meter = observability.Meter(instrumentationName)
	}

	reg.Seal()
	e := &Engine{
		registry: reg,
		log:      o.log,
		tracer:   o.tracer,
	}

	if o.cacheSize > 0 {
		cache, err := lru.New(o.cacheSize)
		if err != nil {
			e.log.Warn("expression cache disabled", logger.Fields(logger.FieldError, err.Error()))
		} else {
			e.cache = cache
		}
	}

	metrics, err := observability.NewRunMetrics(o.meter)
	if err != nil {
		e.log.Warn("run metrics disabled", logger.Fields(logger.FieldError, err.Error()))
	} else {
		e.metrics = metrics
	}
	return e
}

// Registry returns the sealed registry the engine dispatches to.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Parse returns the parsed form of text, from the cache when possible.
func (e *Engine) Parse(text string) Expression {
	if e.cache != nil {
		if cached, ok := e.cache.Get(text); ok {
			return cached.(Expression)
		}
	}
	expr := Parse(text)
	if e.cache != nil {
		e.cache.Add(text, expr)
	}
	return expr
}

// Run parses text and threads value through its stages.
func (e *Engine) Run(ctx context.Context, text string, value any) (any, error) {
	return e.run(ctx, text, e.Parse(text), value)
}

// RunCollection parses text and threads values, as a Collection, through its
// stages.
func (e *Engine) RunCollection(ctx context.Context, text string, values []any) (any, error) {
	return e.run(ctx, text, e.Parse(text), Collection(values))
}

// Execute runs an already parsed expression.
func (e *Engine) Execute(ctx context.Context, expr Expression, value any) (any, error) {
	return e.run(ctx, "", expr, value)
}

// ConvertExpr runs a single stage against a scalar value using the unary table.
func (e *Engine) ConvertExpr(stage Stage, value any) (any, error) {
	if len(stage) == 0 {
		return nil, errors.Parse("expect converter name")
	}
	fn, ok := e.registry.Unary(stage.Name())
	if !ok {
		return nil, errors.UnknownConverter(stage.Name(), string(TableUnary))
	}
	return callUnary(fn, value, stage.Args())
}

// ConvertExprArray runs a single stage against the elements of a collection
// using the n-ary table.
func (e *Engine) ConvertExprArray(stage Stage, values []any) (any, error) {
	if len(stage) == 0 {
		return nil, errors.Parse("expect converter name")
	}
	fn, ok := e.registry.NAry(stage.Name())
	if !ok {
		return nil, errors.UnknownConverter(stage.Name(), string(TableNAry))
	}
	return callNAry(fn, values, stage.Args())
}

// IsCollectionConverterReference reports whether the first token of text
// names an n-ary converter.
func (e *Engine) IsCollectionConverterReference(text string) bool {
	tokens := Tokenize(text)
	if len(tokens) == 0 || tokens[0] == PipeToken {
		return false
	}
	_, ok := e.registry.NAry(tokens[0])
	return ok
}

// run threads value through expr. text is the source of expr; when empty it
// is rebuilt from expr only if a span or debug log needs it.
func (e *Engine) run(ctx context.Context, text string, expr Expression, value any) (any, error) {
	start := time.Now()
	shape := ShapeOf(value)

	ctx, span := e.tracer.Start(ctx, observability.SpanRun, trace.WithAttributes(
		attribute.Int(observability.AttrStages, len(expr)),
		attribute.String(observability.AttrShape, shape.String()),
	))
	defer span.End()
	if span.IsRecording() {
		text = sourceOf(text, expr)
		span.SetAttributes(attribute.String(observability.AttrExpression, text))
	}

	log := e.log.WithContext(ctx)
	debug := log.Enabled(zerolog.DebugLevel)

	acc := value
	for i, stage := range expr {
		next, err := e.step(stage, acc)
		if err != nil {
			err = stageError(err, i, stage)
			span.SetAttributes(attribute.Int(observability.AttrFailedStage, i))
			span.SetAttributes(attribute.String(observability.AttrErrorCode, string(errors.CodeOf(err))))
			observability.SetSpanError(span, err)
			e.record(ctx, shape, err, start)
			if debug {
				log.Debug("pipeline failed", logger.Fields(
					logger.FieldPipe, sourceOf(text, expr),
					logger.FieldStage, i,
					logger.FieldConverter, stage.Name(),
					logger.FieldError, err.Error(),
				))
			}
			return nil, err
		}
		if debug {
			log.Debug("stage done", logger.Fields(
				logger.FieldStage, i,
				logger.FieldConverter, stage.Name(),
				logger.FieldTable, string(tableFor(acc)),
			))
		}
		acc = next
	}

	acc = Unwrap(acc)
	e.record(ctx, shape, nil, start)
	return acc, nil
}

func (e *Engine) step(stage Stage, acc any) (any, error) {
	if values, ok := Elements(acc); ok {
		return e.ConvertExprArray(stage, values)
	}
	return e.ConvertExpr(stage, acc)
}

func (e *Engine) record(ctx context.Context, shape Shape, err error, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordRun(ctx, shape.String(), string(errors.CodeOf(err)), time.Since(start))
}

func sourceOf(text string, expr Expression) string {
	if text == "" {
		return expr.String()
	}
	return text
}

func tableFor(v any) Table {
	if ShapeOf(v) == ShapeCollection {
		return TableNAry
	}
	return TableUnary
}

func callUnary(fn Converter, value any, args []string) (out any, err error) {
	defer recoverConverter(&err)
	return fn(value, args)
}

func callNAry(fn NAryConverter, values []any, args []string) (out any, err error) {
	defer recoverConverter(&err)
	return fn(values, args)
}

func recoverConverter(err *error) {
	if r := recover(); r != nil {
		*err = errors.Internal(fmt.Errorf("converter panic: %v", r))
	}
}

// stageError returns a copy of the first AppError in err's chain carrying the
// failing stage index and converter name. Errors that are not AppErrors are
// reported as provider failures.
func stageError(err error, index int, stage Stage) error {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.ProviderExecution(stage.Name(), err)
	}
	decorated := *appErr
	decorated.Details = maps.Clone(appErr.Details)
	return decorated.
		WithDetail(logger.FieldStage, index).
		WithDetail(logger.FieldConverter, stage.Name())
}
