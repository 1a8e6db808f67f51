package mapping

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/logger"
	"github.com/kbukum/convpipe/observability"
	"github.com/kbukum/convpipe/pipe"
	"github.com/kbukum/convpipe/property"
)

const instrumentationName = "github.com/kbukum/convpipe/mapping"

// Mapper applies a Mapping with an engine. It is safe for concurrent use.
type Mapper struct {
	engine   *pipe.Engine
	mapping  *Mapping
	resolver *property.Resolver
	parsed   []pipe.Expression
	wrap     []bool
	log      *logger.Logger
	tracer   trace.Tracer
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger sets the mapper logger.
func WithLogger(l *logger.Logger) Option {
	return func(m *Mapper) { m.log = l }
}

// WithResolver sets the resolver used for source paths, for example one
// carrying globals.
func WithResolver(r *property.Resolver) Option {
	return func(m *Mapper) { m.resolver = r }
}

// NewMapper prepares m for application. Pipes are parsed once here.
func NewMapper(engine *pipe.Engine, m *Mapping, opts ...Option) *Mapper {
	mp := &Mapper{
		engine:  engine,
		mapping: m,
		tracer:  observability.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(mp)
	}
	if mp.log == nil {
		mp.log = logger.Get("mapping")
	}
	if mp.resolver == nil {
		mp.resolver = property.NewResolver(nil)
	}

	mp.parsed = make([]pipe.Expression, len(m.Rules))
	mp.wrap = make([]bool, len(m.Rules))
	for i, r := range m.Rules {
		mp.parsed[i] = engine.Parse(r.Pipe)
		mp.wrap[i] = !r.Multi() && collectionOnly(engine, r.Pipe, mp.parsed[i])
	}
	return mp
}

// collectionOnly reports whether expr starts with a converter that exists
// only in the n-ary table. Names present in both tables keep their scalar
// form for a single source.
func collectionOnly(engine *pipe.Engine, text string, expr pipe.Expression) bool {
	if len(expr) == 0 || !engine.IsCollectionConverterReference(text) {
		return false
	}
	_, scalar := engine.Registry().Unary(expr[0].Name())
	return !scalar
}

// Mapping returns the applied mapping.
func (m *Mapper) Mapping() *Mapping {
	return m.mapping
}

// Apply runs every rule against record and returns the produced fields.
// The first failing rule aborts the application; its error carries the
// rule target.
func (m *Mapper) Apply(ctx context.Context, record map[string]any) (map[string]any, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)

	ctx, span := m.tracer.Start(ctx, observability.SpanMap, trace.WithAttributes(
		attribute.Int(observability.AttrRules, len(m.mapping.Rules)),
	))
	defer span.End()

	log := m.log.WithContext(ctx)
	out := make(map[string]any, len(m.mapping.Rules))
	for i, r := range m.mapping.Rules {
		v, err := m.applyRule(ctx, record, r, m.parsed[i], m.wrap[i])
		if err != nil {
			err = ruleError(err, r)
			observability.SetSpanError(span, err)
			log.Warn("mapping failed", logger.Fields(
				logger.FieldTarget, r.Target,
				logger.FieldPipe, r.Pipe,
				logger.FieldError, err.Error(),
			))
			return nil, err
		}
		out[r.Target] = v
	}

	log.Debug("record mapped", logger.Fields(
		"rules", len(m.mapping.Rules),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return out, nil
}

func (m *Mapper) applyRule(ctx context.Context, record map[string]any, r Rule, expr pipe.Expression, wrap bool) (any, error) {
	if r.Multi() {
		values := make([]any, len(r.Sources))
		for i, src := range r.Sources {
			v, err := m.lookup(record, src)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return m.engine.Execute(ctx, expr, pipe.Collection(values))
	}

	v, err := m.lookup(record, r.Source)
	if err != nil {
		return nil, err
	}
	if wrap {
		if _, ok := pipe.Elements(v); !ok {
			v = pipe.Collection{v}
		}
	}
	return m.engine.Execute(ctx, expr, v)
}

// lookup resolves a dotted source path. Missing fields are nil; malformed
// paths are errors.
func (m *Mapper) lookup(record map[string]any, path string) (any, error) {
	v, err := m.resolver.Resolve(record, path, true)
	if errors.Is(err, errors.ErrCodePropertyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return pipe.Unwrap(v), nil
}

func ruleError(err error, r Rule) error {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return errors.Internal(err).WithDetail(logger.FieldTarget, r.Target)
	}
	decorated := *appErr
	decorated.Details = maps.Clone(appErr.Details)
	return decorated.WithDetail(logger.FieldTarget, r.Target)
}
