package server

import (
	"bytes"
	goerrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/mapping"
	"github.com/kbukum/convpipe/pipe"
	"github.com/kbukum/convpipe/server/endpoint"
	"github.com/kbukum/convpipe/validation"
)

// ConvertRequest runs Pipe against Value, or against Values as a collection
// when Values is present.
type ConvertRequest struct {
	Pipe   string `json:"pipe"`
	Value  any    `json:"value,omitempty"`
	Values []any  `json:"values,omitempty"`
}

// ConvertResponse carries the pipeline result.
type ConvertResponse struct {
	Result any `json:"result"`
}

// MapRequest carries one record to map.
type MapRequest struct {
	Record map[string]any `json:"record" validate:"required"`
}

// MapResponse carries the mapped record.
type MapResponse struct {
	Record map[string]any `json:"record"`
}

// API serves the converter endpoints.
type API struct {
	engine  *pipe.Engine
	mapper  *mapping.Mapper
	health  endpoint.HealthChecker
	service string
	version string
	started time.Time
}

// APIOption configures an API.
type APIOption func(*API)

// WithMapper enables POST /v1/map.
func WithMapper(m *mapping.Mapper) APIOption {
	return func(a *API) { a.mapper = m }
}

// WithHealth sets the component health source of /healthz.
func WithHealth(checker endpoint.HealthChecker) APIOption {
	return func(a *API) { a.health = checker }
}

// WithService names the service in health responses.
func WithService(name, version string) APIOption {
	return func(a *API) {
		a.service = name
		a.version = version
	}
}

// NewAPI creates the converter API over engine.
func NewAPI(engine *pipe.Engine, opts ...APIOption) *API {
	a := &API{engine: engine, service: "convpipe", started: time.Now()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register adds the API routes to r.
func (a *API) Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.POST("/convert", a.convert)
	v1.GET("/converters", a.converters)
	if a.mapper != nil {
		v1.POST("/map", a.mapRecord)
	}

	r.GET("/healthz", endpoint.Health(a.service, a.version, a.health))
	r.GET("/livez", endpoint.Liveness(a.service, a.started))
	r.GET("/version", endpoint.Version())
}

func (a *API) convert(c *gin.Context) {
	var req ConvertRequest
	if err := decode(c, &req); err != nil {
		RespondWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	var (
		out any
		err error
	)
	if req.Values != nil {
		out, err = a.engine.RunCollection(ctx, req.Pipe, req.Values)
	} else {
		out, err = a.engine.Run(ctx, req.Pipe, req.Value)
	}
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, ConvertResponse{Result: out})
}

func (a *API) mapRecord(c *gin.Context) {
	var req MapRequest
	if err := decode(c, &req); err != nil {
		RespondWithError(c, err)
		return
	}
	if err := validation.Validate(req); err != nil {
		RespondWithError(c, err)
		return
	}

	out, err := a.mapper.Apply(c.Request.Context(), req.Record)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, MapResponse{Record: out})
}

func (a *API) converters(c *gin.Context) {
	RespondOK(c, a.engine.Registry().List())
}

// decode reads a JSON body. Bodies over the size limit are 413.
func decode(c *gin.Context, v any) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if goerrors.As(err, &maxErr) {
			return errors.New(errors.ErrCodeInvalidArgument, "request body too large", http.StatusRequestEntityTooLarge)
		}
		return errors.New(errors.ErrCodeInvalidArgument, "reading request body", http.StatusBadRequest).WithCause(err)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New(errors.ErrCodeInvalidArgument, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
	}
	return nil
}
